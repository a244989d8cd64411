package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/floating-bridge/internal/config"
	"github.com/palemoky/floating-bridge/internal/game/table"
	"github.com/palemoky/floating-bridge/internal/protocol"
	"github.com/palemoky/floating-bridge/internal/protocol/codec"
	"github.com/palemoky/floating-bridge/internal/server/storage"
	"github.com/palemoky/floating-bridge/internal/transport"
)

func newTestServer(t *testing.T, tweaks ...func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Redis.Enabled = false
	cfg.Game.FillBots = false // 测试中手动补机器人
	cfg.Security.RateLimit.MaxPerSecond = 100
	cfg.Security.RateLimit.MaxPerMinute = 1000
	for _, tweak := range tweaks {
		tweak(cfg)
	}

	s, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.cancel()
		s.tablesWG.Wait()
	})
	return s
}

// dial 通过内存管道接入服务器
func dial(t *testing.T, s *Server) *transport.TCPConn {
	t.Helper()
	server, client := net.Pipe()
	s.handleTCP(server)
	c := transport.NewTCPConn(client)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func send(t *testing.T, c *transport.TCPConn, msg *protocol.Message) {
	t.Helper()
	line, err := codec.Encode(msg)
	require.NoError(t, err)
	require.NoError(t, c.WriteLine(line[:len(line)-1]))
}

// next 读取下一条满足 match 的消息
func next(t *testing.T, c *transport.TCPConn, match func(*protocol.Message) bool) *protocol.Message {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		line, err := c.ReadLine()
		require.NoError(t, err)
		msg, err := codec.Decode(line)
		require.NoError(t, err)
		if match(msg) {
			return msg
		}
	}
}

func isEvent(kind protocol.EventType) func(*protocol.Message) bool {
	return func(m *protocol.Message) bool { return m.Event == kind }
}

func isError(m *protocol.Message) bool { return m.Error != nil }

// drainInBackground 持续读取，避免管道写阻塞
func drainInBackground(c *transport.TCPConn) {
	go func() {
		for {
			if _, err := c.ReadLine(); err != nil {
				return
			}
		}
	}()
}

func TestServer_FourPlayersStartTable(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	seen := make(map[int]bool)
	conns := make([]*transport.TCPConn, 0, table.Seats)
	for i := range table.Seats {
		c := dial(t, s)
		send(t, c, protocol.NewJoin("player"+string(rune('A'+i))))
		welcome := next(t, c, isEvent(protocol.EvtWelcome))
		assert.NotEmpty(t, welcome.Token)
		seen[welcome.SeatOf()] = true
		conns = append(conns, c)
	}
	assert.Len(t, seen, table.Seats)

	state := next(t, conns[0], isEvent(protocol.EvtState))
	require.NotNil(t, state.State)
	for _, seat := range state.State.Seats {
		assert.False(t, seat.Bot)
		assert.True(t, seat.Online)
	}
	assert.Eventually(t, func() bool { return s.ActiveTables() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, s.lobby.Waiting())

	for _, c := range conns {
		drainInBackground(c)
	}
}

func TestServer_FillBots(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	c := dial(t, s)
	send(t, c, protocol.NewJoin("solo"))
	next(t, c, isEvent(protocol.EvtWelcome))
	assert.Equal(t, 1, s.lobby.Waiting())

	s.lobby.mu.Lock()
	pt := s.lobby.pending
	s.lobby.mu.Unlock()
	s.lobby.fill(pt)

	state := next(t, c, isEvent(protocol.EvtState))
	bots := 0
	for _, seat := range state.State.Seats {
		if seat.Bot {
			bots++
			assert.True(t, strings.HasPrefix(seat.Name, "🤖"))
		}
	}
	assert.Equal(t, table.Seats-1, bots)
	drainInBackground(c)
}

func TestServer_LeaveBeforeStart(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	c := dial(t, s)
	send(t, c, protocol.NewJoin("quitter"))
	welcome := next(t, c, isEvent(protocol.EvtWelcome))
	require.NoError(t, c.Close())

	assert.Eventually(t, func() bool { return s.lobby.Waiting() == 0 }, time.Second, 5*time.Millisecond)
	assert.Nil(t, s.sessions.GetSession(welcome.Token))
}

func TestServer_Reconnect(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	first := dial(t, s)
	send(t, first, protocol.NewJoin("wanderer"))
	welcome := next(t, first, isEvent(protocol.EvtWelcome))

	s.lobby.mu.Lock()
	pt := s.lobby.pending
	s.lobby.mu.Unlock()
	s.lobby.fill(pt)
	next(t, first, isEvent(protocol.EvtState))

	require.NoError(t, first.Close())
	assert.Eventually(t, func() bool {
		sess := s.sessions.GetSession(welcome.Token)
		return sess != nil && !sess.Online()
	}, time.Second, 5*time.Millisecond)

	second := dial(t, s)
	send(t, second, protocol.NewReconnect(welcome.Token))
	msg := next(t, second, isEvent(protocol.EvtReconnected))
	assert.Equal(t, welcome.SeatOf(), msg.SeatOf())
	assert.Equal(t, "wanderer", msg.Name)
	assert.Eventually(t, s.sessions.GetSession(welcome.Token).Online, time.Second, 5*time.Millisecond)
	drainInBackground(second)
}

func TestServer_HandshakeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  *protocol.Message
		code int
	}{
		{"Answer before join", protocol.MustNewValue(21), protocol.ErrCodeInvalidMsg},
		{"Unknown token", protocol.NewReconnect("nope"), protocol.ErrCodeReconnectFailed},
		{"Blank name", protocol.NewJoin("   "), protocol.ErrCodeInvalidMsg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t)
			c := dial(t, s)
			send(t, c, tt.msg)
			assert.Equal(t, tt.code, next(t, c, isError).Error.Code)
			assert.Zero(t, s.lobby.Waiting())
		})
	}
}

func TestServer_AnswerWhileWaiting(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	c := dial(t, s)
	send(t, c, protocol.NewJoin("eager"))
	next(t, c, isEvent(protocol.EvtWelcome))

	send(t, c, protocol.MustNewValue(11))
	assert.Equal(t, protocol.ErrCodeUnexpected, next(t, c, isError).Error.Code)
}

func TestServer_MaintenanceRejectsTCP(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.EnterMaintenanceMode()
	assert.True(t, s.IsMaintenanceMode())

	server, client := net.Pipe()
	go s.handleTCP(server)
	c := transport.NewTCPConn(client)
	defer c.Close()

	line, err := c.ReadLine()
	require.NoError(t, err)
	msg, err := codec.Decode(line)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeServerMaintenance, msg.Error.Code)
	_, err = c.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestServer_ConnectionLimit(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	for range s.maxConnections {
		s.semaphore <- struct{}{}
	}
	code, reason := s.admit("10.0.0.1")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "Server Full", reason)
}

func TestServer_AdmitFilters(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.IPBlacklist = []string{"10.0.0.9"}
		cfg.Security.RateLimit.MaxPerSecond = 1
	})

	code, reason := s.admit("10.0.0.9")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Forbidden", reason)

	code, _ = s.admit("10.0.0.1")
	require.Zero(t, code)
	<-s.semaphore

	code, reason = s.admit("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "Too Many Requests", reason)
	code, reason = s.admit("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "Banned", reason)
}

func TestServer_AdmitWhitelist(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.IPWhitelist = []string{"192.168.0.5"}
	})
	code, _ := s.admit("192.168.0.6")
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.admit("192.168.0.5")
	assert.Zero(t, code)
	<-s.semaphore
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var status HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status.Status)
	assert.False(t, status.Maintenance)
}

func TestServer_WebSocketJoin(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, err := transport.DialWS("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", time.Second)
	require.NoError(t, err)
	defer conn.Close()

	line, err := codec.Encode(protocol.NewJoin("websurfer"))
	require.NoError(t, err)
	require.NoError(t, conn.WriteLine(line))

	got, err := conn.ReadLine()
	require.NoError(t, err)
	msg, err := codec.Decode(got)
	require.NoError(t, err)
	assert.Equal(t, protocol.EvtWelcome, msg.Event)
	assert.Equal(t, "websurfer", msg.Name)
}

func TestServer_LeaderboardEndpoints(t *testing.T) {
	t.Parallel()

	// 未启用 Redis
	disabled := httptest.NewServer(newTestServer(t).Handler())
	defer disabled.Close()
	resp, err := http.Get(disabled.URL + "/leaderboard")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	s := newTestServer(t)
	mr := miniredis.RunT(t)
	s.useRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()
	require.NoError(t, s.leaderboard.RecordRound(ctx, "alice", storage.RoleDeclarer, true, 8))
	require.NoError(t, s.leaderboard.RecordRound(ctx, "bob", storage.RoleAttacker, false, 5))

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err = http.Get(srv.URL + "/leaderboard?period=daily&limit=5")
	require.NoError(t, err)
	var entries []storage.LeaderboardEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	resp.Body.Close()
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].PlayerName)
	assert.Equal(t, 30, entries[0].Score)
	assert.Zero(t, entries[1].Score, "score never drops below zero")

	resp, err = http.Get(srv.URL + "/stats?name=alice")
	require.NoError(t, err)
	var stats PlayerStatsResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	assert.Equal(t, int64(1), stats.Rank)
	assert.Equal(t, 8, stats.Tricks)
	assert.InDelta(t, 100.0, stats.WinRate, 0.001)

	resp, err = http.Get(srv.URL + "/stats?name=nobody")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
