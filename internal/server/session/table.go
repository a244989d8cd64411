// Package session 驱动联网牌桌：每张牌桌一个 goroutine，按引擎的挂起请求收发座位消息
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/palemoky/floating-bridge/internal/game/player"
	"github.com/palemoky/floating-bridge/internal/game/table"
	"github.com/palemoky/floating-bridge/internal/protocol"
	"github.com/palemoky/floating-bridge/internal/server/storage"
)

var (
	// ErrAbandoned 所有真人座位离线超过重连时限
	ErrAbandoned = errors.New("table abandoned")
	// ErrTableClosed 牌桌已结束
	ErrTableClosed = errors.New("table closed")
)

// Conn 座位连接，由 transport.Peer 实现
type Conn interface {
	Send(msg *protocol.Message) error
	SendLine(line []byte) error
	Close()
}

// Store 牌局持久化
type Store interface {
	SaveSnapshot(ctx context.Context, tableID string, data []byte) error
	DeleteSnapshot(ctx context.Context, tableID string) error
	AppendRound(ctx context.Context, rec *storage.RoundRecord) error
}

// Recorder 战绩记录
type Recorder interface {
	RecordRound(ctx context.Context, name, role string, won bool, tricks int) error
}

// Options 牌桌选项，Store 和 Recorder 可为 nil
type Options struct {
	TurnTimeout      time.Duration
	ReadyTimeout     time.Duration
	ReconnectTimeout time.Duration
	Store            Store
	Recorder         Recorder
	Rand             *rand.Rand
}

// SeatConfig 入座信息，机器人没有令牌和连接
type SeatConfig struct {
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
	Bot   bool   `json:"bot,omitempty"`
	Conn  Conn   `json:"-"`
}

type seat struct {
	SeatConfig
	human *player.Human
}

func (s *seat) online() bool { return s.Bot || s.Conn != nil }

func (s *seat) send(msg *protocol.Message) {
	if s.Conn != nil {
		_ = s.Conn.Send(msg)
	}
}

type reply struct {
	seat int
	msg  protocol.Message
}

type attachment struct {
	seat int
	conn Conn
}

// progressMark 用于判断是否需要保存快照
type progressMark struct {
	round, currentRound int
	phase               table.Phase
}

// TableSession 一张联网牌桌
type TableSession struct {
	ID string

	opts   Options
	engine *table.Engine
	seats  [table.Seats]*seat

	replies  chan reply
	attaches chan attachment
	leaves   chan attachment
	done     chan struct{}

	saved         progressMark
	recordedRound int
}

// NewTableSession 按入座信息创建牌桌
func NewTableSession(id string, seats [table.Seats]SeatConfig, opts Options) *TableSession {
	ts := newTableSession(id, seats, opts)
	ts.engine = table.New(ts.providers(), ts.engineOptions()...)
	ts.engine.OnEvent(ts.onEvent)
	return ts
}

// tableRecord 持久化格式：座位信息加引擎快照
type tableRecord struct {
	ID            string                  `json:"id"`
	Seats         [table.Seats]SeatConfig `json:"seats"`
	RecordedRound int                     `json:"recorded_round"`
	Engine        table.Snapshot          `json:"engine"`
}

// RestoreTableSession 从持久化记录恢复牌桌，所有真人座位初始为离线，等待凭令牌重连
func RestoreTableSession(data []byte, opts Options) (*TableSession, error) {
	var rec tableRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode table record: %w", err)
	}
	ts := newTableSession(rec.ID, rec.Seats, opts)
	engine, err := table.Restore(rec.Engine, ts.providers(), ts.engineOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to restore table %s: %w", rec.ID, err)
	}
	ts.engine = engine
	ts.engine.OnEvent(ts.onEvent)
	ts.recordedRound = rec.RecordedRound
	ts.saved = ts.mark()
	return ts, nil
}

func newTableSession(id string, seats [table.Seats]SeatConfig, opts Options) *TableSession {
	ts := &TableSession{
		ID:       id,
		opts:     opts,
		replies:  make(chan reply, 16),
		attaches: make(chan attachment, table.Seats),
		leaves:   make(chan attachment, table.Seats),
		done:     make(chan struct{}),
	}
	for i, cfg := range seats {
		s := &seat{SeatConfig: cfg}
		if !cfg.Bot {
			s.human = player.NewHuman()
		}
		ts.seats[i] = s
	}
	return ts
}

func (ts *TableSession) providers() [table.Seats]table.Provider {
	var providers [table.Seats]table.Provider
	for i, s := range ts.seats {
		if s.Bot {
			providers[i] = player.NewBot()
		} else {
			providers[i] = s.human
		}
	}
	return providers
}

func (ts *TableSession) engineOptions() []table.Option {
	if ts.opts.Rand == nil {
		return nil
	}
	return []table.Option{table.WithRand(ts.opts.Rand)}
}

// Seats 入座信息（不含连接）
func (ts *TableSession) Seats() [table.Seats]SeatConfig {
	var out [table.Seats]SeatConfig
	for i, s := range ts.seats {
		out[i] = SeatConfig{Name: s.Name, Token: s.Token, Bot: s.Bot}
	}
	return out
}

// Record 序列化牌桌，只能在 Run 之前或之后调用
func (ts *TableSession) Record() ([]byte, error) {
	return json.Marshal(tableRecord{
		ID:            ts.ID,
		Seats:         ts.Seats(),
		RecordedRound: ts.recordedRound,
		Engine:        ts.engine.Snapshot(),
	})
}

// Done Run 返回后关闭
func (ts *TableSession) Done() <-chan struct{} {
	return ts.done
}

// Deliver 把座位发来的答复交给驱动循环，msg 会被复制
func (ts *TableSession) Deliver(seat int, msg *protocol.Message) error {
	if ts.closed() {
		return ErrTableClosed
	}
	select {
	case ts.replies <- reply{seat: seat, msg: *msg}:
		return nil
	case <-ts.done:
		return ErrTableClosed
	}
}

// Attach 座位重连
func (ts *TableSession) Attach(seat int, conn Conn) error {
	if ts.closed() {
		return ErrTableClosed
	}
	select {
	case ts.attaches <- attachment{seat: seat, conn: conn}:
		return nil
	case <-ts.done:
		return ErrTableClosed
	}
}

func (ts *TableSession) closed() bool {
	select {
	case <-ts.done:
		return true
	default:
		return false
	}
}

// Leave 座位的连接断开；conn 已被新连接替换时忽略
func (ts *TableSession) Leave(seat int, conn Conn) {
	select {
	case ts.leaves <- attachment{seat: seat, conn: conn}:
	case <-ts.done:
	}
}

func (ts *TableSession) names() string {
	names := make([]string, 0, table.Seats)
	for _, s := range ts.seats {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}
