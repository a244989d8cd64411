package model

import (
	"context"
	"math/rand/v2"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/floating-bridge/internal/config"
	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/player"
	"github.com/palemoky/floating-bridge/internal/game/table"
	netclient "github.com/palemoky/floating-bridge/internal/network/client"
	"github.com/palemoky/floating-bridge/internal/protocol"
	"github.com/palemoky/floating-bridge/internal/server"
)

var (
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
)

func newLocal(seed uint64) *LocalModel {
	return NewLocalModel(LocalOptions{Name: "me", Rand: rand.New(rand.NewPCG(seed, seed+1))})
}

// playLocalRound 用提示答复自己的每个请求，直到本局结束；返回各类请求的答复次数
func playLocalRound(t *testing.T, m *LocalModel) map[table.RequestKind]int {
	t.Helper()
	answers := make(map[table.RequestKind]int)
	for range 20000 {
		if m.engine.Phase() == table.PhaseEnding {
			return answers
		}
		if req := m.awaiting(); req != nil {
			m.Update(keyTab)
			require.NotEmpty(t, m.input.Value(), "hint for %s", req.Kind)
			m.Update(keyEnter)
			require.Empty(t, m.notice)
			answers[req.Kind]++
			continue
		}
		m.Update(frameMsg(time.Now()))
	}
	t.Fatal("round never ended")
	return nil
}

func TestLocalModel_FullRound(t *testing.T) {
	t.Parallel()

	m := newLocal(3)
	assert.NotNil(t, m.Init())

	for range 10 {
		answers := playLocalRound(t, m)
		res := m.engine.Result()
		require.NotNil(t, res)
		assert.Contains(t, m.View(), "按回车开始下一局")

		round := m.engine.Round()
		m.Update(keyEnter)
		assert.NotEqual(t, table.PhaseEnding, m.engine.Phase())
		m.Update(frameMsg(time.Now()))
		assert.Equal(t, round+1, m.engine.Round(), "next round dealt")

		if res.Voided {
			continue
		}
		assert.Positive(t, answers[table.RequestBid])
		assert.Equal(t, card.HandSize, answers[table.RequestPlay], "every card played from the human seat")
		assert.NotEmpty(t, m.log)
		return
	}
	t.Fatal("every round was voided")
}

// TestLocalModel_AnswerApplied 提交后的下一帧引擎即采用答复
func TestLocalModel_AnswerApplied(t *testing.T) {
	t.Parallel()

	m := newLocal(5)
	for range 2000 {
		if m.awaiting() != nil {
			break
		}
		if m.engine.Phase() == table.PhaseEnding {
			m.Update(keyEnter)
			continue
		}
		m.Update(frameMsg(time.Now()))
	}
	require.NotNil(t, m.awaiting())

	m.Update(keyTab)
	m.Update(keyEnter)
	require.Empty(t, m.notice)
	assert.Nil(t, m.awaiting(), "no prompt while the answer is queued")

	m.Update(frameMsg(time.Now()))
	req := m.engine.Pending()
	assert.True(t, req == nil || req.Seat != m.me, "pending %+v after the answer was applied", req)
}

func TestLocalModel_InvalidInput(t *testing.T) {
	t.Parallel()

	m := newLocal(7)
	for range 2000 {
		if req := m.engine.Pending(); req != nil && req.Seat == m.me {
			break
		}
		if m.engine.Phase() == table.PhaseEnding {
			m.Update(keyEnter)
			continue
		}
		m.Update(frameMsg(time.Now()))
	}
	req := m.engine.Pending()
	require.NotNil(t, req)
	require.Equal(t, m.me, req.Seat)

	m.input.SetValue("zz")
	_, cmd := m.Update(keyEnter)
	assert.NotNil(t, cmd)
	assert.NotEmpty(t, m.notice)
	assert.Equal(t, "zz", m.input.Value(), "input kept for correction")
	assert.Equal(t, req.Kind, m.engine.Pending().Kind)
}

func TestLocalModel_NotYourTurn(t *testing.T) {
	t.Parallel()

	m := newLocal(1)
	m.Update(keyEnter)
	assert.Equal(t, "还没轮到你", m.notice)

	m.Update(clearNoticeMsg{at: m.noticeAt})
	assert.Empty(t, m.notice)
}

func TestBase_Keys(t *testing.T) {
	t.Parallel()

	m := newLocal(1)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.True(t, m.showCounter)
	m.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.True(t, m.showRules)
	assert.Contains(t, m.View(), "规则")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showRules)
	assert.Nil(t, cmd)
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("qs")})
	assert.Equal(t, "qs", m.input.Value())
}

func TestBase_LogCapped(t *testing.T) {
	t.Parallel()

	b := newBase(nil)
	for range maxLogLines + 10 {
		b.addLog("line")
	}
	assert.Len(t, b.log, maxLogLines)
}

// next 同步执行 listen，超时则失败
func next(t *testing.T, m *OnlineModel) tea.Msg {
	t.Helper()
	ch := make(chan tea.Msg, 1)
	go func() { ch <- m.listen() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("no message from server")
		return nil
	}
}

func TestOnlineModel_FullRound(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Redis.Enabled = false
	cfg.Game.FillBots = false
	cfg.Security.RateLimit.MaxPerSecond = 100
	cfg.Security.RateLimit.MaxPerMinute = 1000
	cfg.Security.MessageLimit.MaxPerSecond = 1000
	s, err := server.NewServer(cfg)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	defer s.Shutdown()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	m := NewOnlineModel(OnlineOptions{Addr: url, Name: "me"})
	defer m.Close()
	assert.Contains(t, m.View(), "正在连接")
	m.Update(m.connect())
	assert.Contains(t, m.status, "已连接")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	for i := range table.Seats - 1 {
		c := netclient.NewClient(url, "bot"+string(rune('A'+i)))
		require.NoError(t, c.Connect())
		defer c.Close()
		go func() { _ = c.AutoPlay(ctx, player.NewBot(), nil) }()
	}

	sawWelcome := false
	for ctx.Err() == nil {
		msg := next(t, m)
		if sm, ok := msg.(ServerMessage); ok && sm.Msg.Event == protocol.EvtWelcome {
			sawWelcome = true
		}
		m.Update(msg)

		switch {
		case m.ready:
			require.NotNil(t, m.result)
			assert.Contains(t, m.View(), "按回车开始下一局")
			m.Update(keyEnter)
			assert.False(t, m.ready)
			assert.True(t, sawWelcome)
			assert.NotEmpty(t, m.log)
			assert.NotEmpty(t, m.names[0])
			return
		case m.pending != nil && m.state != nil:
			m.Update(keyTab)
			m.Update(keyEnter)
		}
	}
	t.Fatal("round did not finish")
}

func TestOnlineModel_ConnectionError(t *testing.T) {
	t.Parallel()

	m := NewOnlineModel(OnlineOptions{Addr: "127.0.0.1:1", Name: "me"})
	msg := m.connect()
	require.IsType(t, ConnectionErrorMsg{}, msg)
	_, cmd := m.Update(msg)
	assert.Nil(t, cmd)
	assert.Contains(t, m.status, "连接失败")
}

func TestOnlineModel_SeatEvents(t *testing.T) {
	t.Parallel()

	m := NewOnlineModel(OnlineOptions{Addr: "unused", Name: "me"})
	m.handleServer(&protocol.Message{Event: protocol.EvtState, State: &protocol.GameStateDTO{
		YourSeat: 2,
		Phase:    "bidding",
		Seats: []protocol.SeatInfo{
			{Seat: 0, Name: "a", Online: true},
			{Seat: 1, Name: "b", Bot: true},
			{Seat: 2, Name: "me", Online: true},
			{Seat: 3, Name: "d"},
		},
	}})
	assert.Equal(t, 2, m.me)
	assert.Equal(t, [table.Seats]bool{false, false, false, true}, m.offline)

	m.handleServer(protocol.NewEvent(protocol.EvtSeatOnline, 3))
	assert.False(t, m.offline[3])
	m.handleServer(protocol.NewEvent(protocol.EvtSeatOffline, 0))
	assert.True(t, m.offline[0])
	assert.Contains(t, m.log[len(m.log)-1], "a 掉线")

	m.handleServer(protocol.NewRequest(protocol.ReqReady, 2))
	assert.True(t, m.ready)

	cmd := m.handleServer(protocol.NewErrorWithMessage(protocol.ErrCodeReconnectFailed, "gone"))
	assert.NotNil(t, cmd)
	assert.Equal(t, "gone", m.notice)
	assert.Contains(t, m.status, "重连失败")
}
