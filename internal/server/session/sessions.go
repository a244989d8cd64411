package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// 会话过期时间，超过后即使牌桌仍在也不能重连
const sessionExpireTime = 10 * time.Minute

// SeatSession 座位会话（用于断线重连）
type SeatSession struct {
	Token   string
	Name    string
	TableID string
	Seat    int

	DisconnectedAt time.Time // 断线时间
	IsOnline       bool      // 是否在线

	mu sync.RWMutex
}

// Online 是否在线
func (s *SeatSession) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.IsOnline
}

// SessionManager 会话管理器，按重连令牌索引
type SessionManager struct {
	sessions         map[string]*SeatSession // token -> session
	reconnectTimeout time.Duration
	mu               sync.RWMutex
}

// NewSessionManager 创建会话管理器
func NewSessionManager(reconnectTimeout time.Duration) *SessionManager {
	return &SessionManager{
		sessions:         make(map[string]*SeatSession),
		reconnectTimeout: reconnectTimeout,
	}
}

// Run 定期清理过期会话，直到 ctx 结束
func (sm *SessionManager) Run(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sm.cleanup(now)
		}
	}
}

// CreateSession 为入座的玩家创建会话
func (sm *SessionManager) CreateSession(name, tableID string, seat int) *SeatSession {
	return sm.Register(generateToken(), name, tableID, seat, true)
}

// Register 以给定令牌登记会话（恢复牌桌时使用）
func (sm *SessionManager) Register(token, name, tableID string, seat int, online bool) *SeatSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session := &SeatSession{
		Token:    token,
		Name:     name,
		TableID:  tableID,
		Seat:     seat,
		IsOnline: online,
	}
	if !online {
		session.DisconnectedAt = time.Now()
	}
	sm.sessions[token] = session
	return session
}

// GetSession 通过令牌获取会话
func (sm *SessionManager) GetSession(token string) *SeatSession {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[token]
}

// SetOffline 设置离线
func (sm *SessionManager) SetOffline(token string) {
	if session := sm.GetSession(token); session != nil {
		session.mu.Lock()
		session.IsOnline = false
		session.DisconnectedAt = time.Now()
		session.mu.Unlock()
	}
}

// SetOnline 设置上线
func (sm *SessionManager) SetOnline(token string) {
	if session := sm.GetSession(token); session != nil {
		session.mu.Lock()
		session.IsOnline = true
		session.DisconnectedAt = time.Time{}
		session.mu.Unlock()
	}
}

// DeleteSession 删除会话
func (sm *SessionManager) DeleteSession(token string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, token)
}

// DeleteTable 删除某张牌桌的全部会话
func (sm *SessionManager) DeleteTable(tableID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for token, session := range sm.sessions {
		if session.TableID == tableID {
			delete(sm.sessions, token)
		}
	}
}

// CanReconnect 令牌有效、当前离线且在重连时限内
func (sm *SessionManager) CanReconnect(token string) bool {
	session := sm.GetSession(token)
	if session == nil {
		return false
	}

	session.mu.RLock()
	defer session.mu.RUnlock()
	if session.IsOnline {
		return false
	}
	return time.Since(session.DisconnectedAt) <= sm.reconnectTimeout
}

// cleanup 清理离线超过过期时间的会话
func (sm *SessionManager) cleanup(now time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for token, session := range sm.sessions {
		session.mu.RLock()
		expired := !session.IsOnline && now.Sub(session.DisconnectedAt) > sessionExpireTime
		session.mu.RUnlock()
		if expired {
			delete(sm.sessions, token)
		}
	}
}

// generateToken 生成随机令牌
func generateToken() string {
	bytes := make([]byte, 32)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
