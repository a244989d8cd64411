package server

import (
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/palemoky/floating-bridge/internal/apperrors"
	"github.com/palemoky/floating-bridge/internal/game/table"
	"github.com/palemoky/floating-bridge/internal/protocol"
	"github.com/palemoky/floating-bridge/internal/server/session"
)

// 昵称最大长度（字符）
const maxNameLen = 16

// 机器人昵称词库
var (
	adjectives = []string{
		"勇敢的", "聪明的", "快乐的", "神秘的", "沉稳的",
		"机智的", "潇洒的", "淡定的", "高冷的", "呆萌的",
	}
	nouns = []string{
		"熊猫", "狐狸", "海豚", "企鹅", "考拉",
		"柴犬", "龙猫", "刺猬", "水獭", "羊驼",
	}
)

// botName 随机的机器人昵称
func botName() string {
	return "🤖" + adjectives[rand.IntN(len(adjectives))] + nouns[rand.IntN(len(nouns))]
}

// pendingTable 正在凑人的牌桌
type pendingTable struct {
	id    string
	seats [table.Seats]*client
	timer *time.Timer
}

func (pt *pendingTable) humans() int {
	n := 0
	for _, c := range pt.seats {
		if c != nil {
			n++
		}
	}
	return n
}

// Lobby 按到达顺序入座，坐满或等待超时（补机器人）后开局
type Lobby struct {
	s *Server

	mu      sync.Mutex
	pending *pendingTable
}

func NewLobby(s *Server) *Lobby {
	return &Lobby{s: s}
}

// Join 分配座位并发送 welcome（含重连令牌）
func (l *Lobby) Join(c *client, name string) {
	name = normalizeName(name)
	if name == "" {
		l.s.sendError(c, apperrors.ErrInvalidMessage)
		return
	}
	if l.s.IsMaintenanceMode() {
		_ = c.peer.Send(protocol.NewError(protocol.ErrCodeServerMaintenance))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pt := l.pending
	if pt == nil {
		pt = &pendingTable{id: uuid.NewString()[:8]}
		l.pending = pt
	}
	seat := 0
	for pt.seats[seat] != nil {
		seat++
	}
	sess := l.s.sessions.CreateSession(name, pt.id, seat)
	pt.seats[seat] = c

	c.mu.Lock()
	c.name, c.token, c.seat, c.pending = name, sess.Token, seat, pt
	c.mu.Unlock()

	welcome := protocol.NewEvent(protocol.EvtWelcome, seat)
	welcome.Token = sess.Token
	welcome.Name = name
	_ = c.peer.Send(welcome)
	log.Printf("🪑 玩家 %s 入座牌桌 %s 座位 %d", name, pt.id, seat)

	switch {
	case pt.humans() == table.Seats:
		l.launch(pt)
	case pt.timer == nil && l.s.config.Game.FillBots:
		pt.timer = time.AfterFunc(l.s.config.Game.SeatWaitDuration(), func() { l.fill(pt) })
	}
}

// fill 等待超时，空座补机器人后开局
func (l *Lobby) fill(pt *pendingTable) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending != pt || pt.humans() == 0 {
		return
	}
	l.launch(pt)
}

// launch 创建牌桌并开始驱动，调用方持有 l.mu
func (l *Lobby) launch(pt *pendingTable) {
	if pt.timer != nil {
		pt.timer.Stop()
	}
	l.pending = nil

	var seats [table.Seats]session.SeatConfig
	for i, c := range pt.seats {
		if c == nil {
			seats[i] = session.SeatConfig{Name: botName(), Bot: true}
			continue
		}
		c.mu.Lock()
		seats[i] = session.SeatConfig{Name: c.name, Token: c.token, Conn: c.peer}
		c.mu.Unlock()
	}

	ts := session.NewTableSession(pt.id, seats, l.s.tableOptions())
	for _, c := range pt.seats {
		if c != nil {
			c.mu.Lock()
			c.pending, c.table = nil, ts
			c.mu.Unlock()
		}
	}
	l.s.startTable(ts)
}

// Leave 开局前离开释放座位；若已开局则转为离线
func (l *Lobby) Leave(c *client) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c.mu.Lock()
	pt, ts, token, seat := c.pending, c.table, c.token, c.seat
	c.pending = nil
	c.mu.Unlock()

	if ts != nil {
		l.s.sessions.SetOffline(token)
		ts.Leave(seat, c.peer)
		return
	}
	if pt == nil || pt.seats[seat] != c {
		return
	}
	pt.seats[seat] = nil
	l.s.sessions.DeleteSession(token)
	if pt.humans() == 0 && l.pending == pt {
		if pt.timer != nil {
			pt.timer.Stop()
		}
		l.pending = nil
	}
}

// Waiting 正在等待开局的人数
func (l *Lobby) Waiting() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending == nil {
		return 0
	}
	return l.pending.humans()
}

// Broadcast 通知所有等待开局的玩家
func (l *Lobby) Broadcast(msg *protocol.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending == nil {
		return
	}
	for _, c := range l.pending.seats {
		if c != nil {
			_ = c.peer.Send(msg)
		}
	}
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameLen {
		name = string([]rune(name)[:maxNameLen])
	}
	return name
}
