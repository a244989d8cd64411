package transport

import (
	"errors"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/palemoky/floating-bridge/internal/logger"
	"github.com/palemoky/floating-bridge/internal/protocol"
	"github.com/palemoky/floating-bridge/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 发送缓冲区大小
	sendBufferSize = 256

	// 超速警告次数超过该值断开连接
	maxWarnings = 5
)

var (
	// ErrClosed 连接已关闭
	ErrClosed = errors.New("peer closed")
	// ErrSendBufferFull 发送缓冲区已满，连接随之关闭
	ErrSendBufferFull = errors.New("send buffer full")
)

// Limiter 已连接客户端的消息速率限制
type Limiter interface {
	AllowMessage(clientID string) (allowed bool, warning bool)
	GetWarningCount(clientID string) int
}

// Peer 一条连接及其读写泵。写泵独占写操作，任何 goroutine 都可以 Send。
type Peer struct {
	ID   string
	Addr string

	conn    Conn
	send    chan []byte
	done    chan struct{}
	limiter Limiter

	// OnMessage 在读泵中调用，msg 在回调返回后归还对象池，不要持有
	OnMessage func(p *Peer, msg *protocol.Message)
	// OnClose 读泵退出时调用一次
	OnClose func(p *Peer)

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// PeerOption Peer 选项
type PeerOption func(*Peer)

// WithLimiter 启用消息速率限制
func WithLimiter(l Limiter) PeerOption {
	return func(p *Peer) { p.limiter = l }
}

// WithAddr 覆盖远端地址（例如取自 X-Forwarded-For）
func WithAddr(addr string) PeerOption {
	return func(p *Peer) { p.Addr = addr }
}

// NewPeer 创建 Peer，调用 Start 后开始收发
func NewPeer(conn Conn, opts ...PeerOption) *Peer {
	p := &Peer{
		ID:   uuid.New().String(),
		Addr: conn.RemoteAddr(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start 启动读写泵
func (p *Peer) Start() {
	go p.WritePump()
	go p.ReadPump()
}

// Done 读泵退出后关闭
func (p *Peer) Done() <-chan struct{} {
	return p.done
}

// ReadPump 逐行读取并解码，交给 OnMessage
func (p *Peer) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			log.Printf("[PANIC] readPump panic recovered: %v", r)
		}
		p.Close()
		p.closeOnce.Do(func() {
			close(p.done)
			if p.OnClose != nil {
				p.OnClose(p)
			}
		})
	}()

	if pinger, ok := p.conn.(Pinger); ok {
		_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
		pinger.OnPong(func() {
			_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
		})
	}

	for {
		line, err := p.conn.ReadLine()
		if err != nil {
			if unexpected(err) {
				log.Printf("读取错误 %s: %v", p.Addr, err)
			}
			return
		}

		switch p.admit() {
		case drop:
			continue
		case disconnect:
			return
		}

		msg, err := codec.Decode(line)
		if err != nil {
			log.Printf("消息解析错误 %s: %v", p.Addr, err)
			_ = p.Send(protocol.NewError(protocol.ErrCodeInvalidMsg))
			continue
		}
		if p.OnMessage != nil {
			p.OnMessage(p, msg)
		}
		codec.PutMessage(msg)
	}
}

// verdict 速率检查的结果
type verdict int

const (
	deliver    verdict = iota
	drop               // 丢弃本条并警告
	disconnect         // 警告次数用尽
)

// admit 速率检查：超速的消息被丢弃，警告超过 maxWarnings 次后断开
func (p *Peer) admit() verdict {
	if p.limiter == nil {
		return deliver
	}
	allowed, warning := p.limiter.AllowMessage(p.ID)
	if !allowed {
		log.Printf("⚠️ 客户端 %s 消息过于频繁", p.Addr)
		_ = p.Send(protocol.NewError(protocol.ErrCodeRateLimit))
		if p.limiter.GetWarningCount(p.ID) > maxWarnings {
			log.Printf("🚫 客户端 %s 因多次超速被断开连接", p.Addr)
			return disconnect
		}
		return drop
	}
	if warning {
		_ = p.Send(protocol.NewErrorWithMessage(protocol.ErrCodeRateLimit, "slow down"))
	}
	return deliver
}

// WritePump 串行写出发送队列，并为支持心跳的连接定时 ping
func (p *Peer) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			log.Printf("[PANIC] writePump panic recovered: %v", r)
		}
		ticker.Stop()
		_ = p.conn.Close()
	}()

	pinger, canPing := p.conn.(Pinger)
	for {
		select {
		case line, ok := <-p.send:
			if !ok {
				// 队列已关闭且已写完
				return
			}
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteLine(line); err != nil {
				return
			}

		case <-ticker.C:
			if !canPing {
				continue
			}
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := pinger.Ping(); err != nil {
				return
			}
		}
	}
}

// Send 编码并排队发送
func (p *Peer) Send(msg *protocol.Message) error {
	line, err := codec.Encode(msg)
	if err != nil {
		log.Printf("消息编码错误: %v", err)
		return err
	}
	return p.SendLine(line)
}

// SendLine 排队发送已编码的一行，广播时只编码一次
func (p *Peer) SendLine(line []byte) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrClosed
	}
	select {
	case p.send <- line:
		p.mu.RUnlock()
		return nil
	default:
	}
	p.mu.RUnlock()

	log.Printf("客户端 %s 发送缓冲区已满", p.Addr)
	p.Close()
	return ErrSendBufferFull
}

// Close 关闭发送队列，写泵写完已排队的消息后断开连接
func (p *Peer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.closed = true
		close(p.send)
	}
}

// IsClosed 是否已关闭
func (p *Peer) IsClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// unexpected 对端正常断开之外的读错误
func unexpected(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return false
	}
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure)
	}
	return true
}
