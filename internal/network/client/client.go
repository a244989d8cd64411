// Package client 远程座位客户端：连接服务器、入座、收发答复并在断线后自动重连
package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/palemoky/floating-bridge/internal/protocol"
	"github.com/palemoky/floating-bridge/internal/transport"
)

const (
	dialTimeout = 10 * time.Second
	// 最大重连次数
	maxReconnectAttempts = 5
	// 重连间隔，之后按指数退避
	reconnectInterval = 2 * time.Second
	maxBackoff        = 30 * time.Second

	receiveBufferSize = 256
)

var (
	ErrClosed       = errors.New("connection closed")
	ErrNoToken      = errors.New("no reconnect token")
	ErrNotConnected = errors.New("not connected")
)

// Client 一个远程座位
//
// 地址以 ws:// 或 wss:// 开头时走 WebSocket，否则走 TCP。
type Client struct {
	Addr string
	Name string

	// 回调
	OnReconnecting func(attempt, max int) // 开始第 attempt 次重连
	OnReconnect    func()                 // 重连成功
	OnClose        func()                 // 放弃重连或主动关闭

	peer    *transport.Peer
	receive chan *protocol.Message
	done    chan struct{}

	mu             sync.RWMutex
	token          string
	seat           int
	closed         bool
	reconnectCount int
	interval       time.Duration // 首次重连等待
	backoff        time.Duration

	reconnecting atomic.Bool
	dial         func(addr string) (transport.Conn, error)
}

// NewClient 创建客户端
func NewClient(addr, name string) *Client {
	return &Client{
		Addr:     addr,
		Name:     name,
		seat:     -1,
		receive:  make(chan *protocol.Message, receiveBufferSize),
		done:     make(chan struct{}),
		interval: reconnectInterval,
		backoff:  reconnectInterval,
		dial:     Dial,
	}
}

// Dial 按地址协议建立连接
func Dial(addr string) (transport.Conn, error) {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return transport.DialWS(addr, dialTimeout)
	}
	return transport.DialTCP(addr, dialTimeout)
}

// Connect 连接服务器并入座；已有令牌时按令牌回到原座位
func (c *Client) Connect() error {
	conn, err := c.dial(c.Addr)
	if err != nil {
		return err
	}
	c.start(conn)

	if token := c.Token(); token != "" {
		return c.Send(protocol.NewReconnect(token))
	}
	return c.Send(protocol.NewJoin(c.Name))
}

func (c *Client) start(conn transport.Conn) {
	p := transport.NewPeer(conn)
	p.OnMessage = c.handleMessage
	p.OnClose = c.handleClose

	c.mu.Lock()
	c.peer = p
	c.mu.Unlock()
	p.Start()
}

// handleMessage 在读泵中运行，消息复制后交给 Receive
func (c *Client) handleMessage(_ *transport.Peer, msg *protocol.Message) {
	cp := *msg
	switch cp.Event {
	case protocol.EvtWelcome, protocol.EvtReconnected:
		c.mu.Lock()
		if cp.Token != "" {
			c.token = cp.Token
		}
		c.seat = cp.SeatOf()
		c.reconnectCount = 0
		c.backoff = c.interval
		c.mu.Unlock()
		if c.reconnecting.CompareAndSwap(true, false) && c.OnReconnect != nil {
			c.OnReconnect()
		}
	}
	if cp.Error != nil && cp.Error.Code == protocol.ErrCodeReconnectFailed {
		// 令牌失效，不再重连
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
		c.reconnecting.Store(false)
	}

	select {
	case c.receive <- &cp:
	case <-c.done:
	}
}

// handleClose 连接断开：有令牌时后台重连，否则关闭客户端
func (c *Client) handleClose(p *transport.Peer) {
	c.mu.RLock()
	closed, current := c.closed, c.peer == p
	c.mu.RUnlock()
	if closed || !current {
		return
	}
	if c.Token() != "" {
		go c.tryReconnect()
		return
	}
	c.Close()
}

// Send 发送一条消息
func (c *Client) Send(msg *protocol.Message) error {
	c.mu.RLock()
	p, closed := c.peer, c.closed
	c.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if p == nil {
		return ErrNotConnected
	}
	return p.Send(msg)
}

// Answer 答复当前请求：bool、叫牌值或牌值
func (c *Client) Answer(value any) error {
	msg, err := protocol.NewValue(value)
	if err != nil {
		return err
	}
	return c.Send(msg)
}

// Receive 接收消息 (阻塞)
func (c *Client) Receive(ctx context.Context) (*protocol.Message, error) {
	select {
	case msg := <-c.receive:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	}
}

// Messages 消息通道，配合 Done 使用
func (c *Client) Messages() <-chan *protocol.Message {
	return c.receive
}

// Done 客户端关闭后关闭
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Token 重连令牌，入座前为空
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken 设置重连令牌，Connect 将发送重连请求
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Seat 座位号，入座前为 -1
func (c *Client) Seat() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seat
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed && c.peer != nil && !c.peer.IsClosed()
}

// IsReconnecting 是否正在重连
func (c *Client) IsReconnecting() bool {
	return c.reconnecting.Load()
}

// Close 关闭连接，不再重连
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	p := c.peer
	c.mu.Unlock()

	if p != nil {
		p.Close()
	}
	if c.OnClose != nil {
		c.OnClose()
	}
}
