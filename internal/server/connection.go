package server

import (
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/palemoky/floating-bridge/internal/apperrors"
	"github.com/palemoky/floating-bridge/internal/protocol"
	"github.com/palemoky/floating-bridge/internal/protocol/codec"
	"github.com/palemoky/floating-bridge/internal/server/session"
	"github.com/palemoky/floating-bridge/internal/transport"
)

// client 一条已接入的连接及其座位绑定
type client struct {
	peer *transport.Peer

	mu      sync.Mutex
	name    string
	token   string
	seat    int
	pending *pendingTable         // 等待开局
	table   *session.TableSession // 已开局
}

func (c *client) bind() (token string, seat int, ts *session.TableSession, pt *pendingTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.seat, c.table, c.pending
}

func (c *client) joined() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table != nil || c.pending != nil
}

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)
	if code, reason := s.admit(ip); code != 0 {
		http.Error(w, reason, code)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-s.semaphore
		log.Printf("WebSocket 升级失败: %v", err)
		return
	}
	s.accept(transport.NewWSConn(ws), ip)
}

// handleTCP 处理 TCP 连接；拒绝时写一行错误后关闭
func (s *Server) handleTCP(conn net.Conn) {
	ip := hostOf(conn.RemoteAddr().String())
	if code, reason := s.admit(ip); code != 0 {
		errCode := protocol.ErrCodeUnknown
		if code == http.StatusServiceUnavailable && s.IsMaintenanceMode() {
			errCode = protocol.ErrCodeServerMaintenance
		}
		if line, err := codec.Encode(protocol.NewErrorWithMessage(errCode, reason)); err == nil {
			_, _ = conn.Write(line)
		}
		_ = conn.Close()
		return
	}
	s.accept(transport.NewTCPConn(conn), ip)
}

// admit 依次检查维护模式、IP 过滤、封禁和来源频率、连接数；放行时占用一个连接名额
func (s *Server) admit(ip string) (int, string) {
	if s.IsMaintenanceMode() {
		log.Printf("🔧 维护模式，拒绝新连接: %s", ip)
		return http.StatusServiceUnavailable, "Server is under maintenance, please try again later"
	}
	if !s.ipFilter.IsAllowed(ip) {
		log.Printf("🚫 IP %s 被过滤器拒绝", ip)
		return http.StatusForbidden, "Forbidden"
	}
	if s.rateLimiter.IsBanned(ip) {
		log.Printf("🚫 IP %s 封禁中", ip)
		return http.StatusTooManyRequests, "Banned"
	}
	if !s.rateLimiter.Allow(ip) {
		log.Printf("🚫 IP %s 请求过于频繁", ip)
		return http.StatusTooManyRequests, "Too Many Requests"
	}
	select {
	case s.semaphore <- struct{}{}:
		return 0, ""
	default:
		log.Printf("🚫 达到最大连接数限制 (%d), IP: %s", s.maxConnections, ip)
		return http.StatusServiceUnavailable, "Server Full"
	}
}

// accept 为连接启动读写泵，名额在连接关闭时释放
func (s *Server) accept(conn transport.Conn, ip string) {
	p := transport.NewPeer(conn, transport.WithLimiter(s.messageLimiter), transport.WithAddr(ip))
	c := &client{peer: p}
	p.OnMessage = func(_ *transport.Peer, msg *protocol.Message) { s.handleMessage(c, msg) }
	p.OnClose = func(*transport.Peer) { s.handleClose(c) }

	s.clientsMu.Lock()
	s.clients[p.ID] = c
	s.clientsMu.Unlock()

	p.Start()
}

// handleMessage 首条消息必须是 join 或 reconnect，之后只接受答复
func (s *Server) handleMessage(c *client, msg *protocol.Message) {
	if !c.joined() {
		switch {
		case msg.Join != "":
			s.lobby.Join(c, msg.Join)
		case msg.Reconnect != "":
			s.reconnect(c, msg.Reconnect)
		default:
			s.sendError(c, apperrors.ErrInvalidMessage)
		}
		return
	}

	if msg.Value == nil {
		s.sendError(c, apperrors.ErrInvalidMessage)
		return
	}
	_, seat, ts, _ := c.bind()
	if ts == nil {
		s.sendError(c, apperrors.ErrUnexpectedAnswer)
		return
	}
	if err := ts.Deliver(seat, msg); err != nil {
		s.sendError(c, apperrors.ErrUnexpectedAnswer)
	}
}

// reconnect 凭令牌回到原座位
func (s *Server) reconnect(c *client, token string) {
	sess := s.sessions.GetSession(token)
	if sess == nil || (!sess.Online() && !s.sessions.CanReconnect(token)) {
		s.sendError(c, apperrors.ErrReconnectFailed)
		return
	}
	ts := s.table(sess.TableID)
	if ts == nil {
		s.sendError(c, apperrors.ErrReconnectFailed)
		return
	}

	s.detach(token)
	c.mu.Lock()
	c.name, c.token, c.seat, c.table = sess.Name, token, sess.Seat, ts
	c.mu.Unlock()

	if err := ts.Attach(sess.Seat, c.peer); err != nil {
		c.mu.Lock()
		c.table = nil
		c.mu.Unlock()
		s.sendError(c, apperrors.ErrReconnectFailed)
		return
	}
	s.sessions.SetOnline(token)
	log.Printf("🔄 玩家 %s 重连到牌桌 %s 座位 %d", sess.Name, sess.TableID, sess.Seat)
}

// detach 解除旧连接与令牌的绑定，旧连接随后断开时不影响座位
func (s *Server) detach(token string) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, other := range s.clients {
		other.mu.Lock()
		if other.token == token {
			other.token, other.table = "", nil
		}
		other.mu.Unlock()
	}
}

// handleClose 释放连接名额，已入座的玩家转为离线
func (s *Server) handleClose(c *client) {
	s.clientsMu.Lock()
	delete(s.clients, c.peer.ID)
	s.clientsMu.Unlock()
	s.messageLimiter.RemoveClient(c.peer.ID)
	<-s.semaphore

	token, seat, ts, pt := c.bind()
	switch {
	case ts != nil:
		s.sessions.SetOffline(token)
		ts.Leave(seat, c.peer)
	case pt != nil:
		s.lobby.Leave(c)
	}
}

func (s *Server) sendError(c *client, err error) {
	_ = c.peer.Send(protocol.NewErrorWithMessage(apperrors.CodeOf(err), err.Error()))
}
