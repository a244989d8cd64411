//go:build !production

package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/palemoky/floating-bridge/internal/protocol"
	"github.com/palemoky/floating-bridge/internal/protocol/codec"
)

// MockConn 记录发给一个座位的所有消息，不使用 testify
type MockConn struct {
	// C 按发送顺序收到的消息
	C chan *protocol.Message

	mu       sync.Mutex
	messages []*protocol.Message
	closed   bool
}

// NewMockConn 创建带缓冲的连接
func NewMockConn() *MockConn {
	return &MockConn{C: make(chan *protocol.Message, 1024)}
}

func (m *MockConn) Send(msg *protocol.Message) error {
	cp := *msg
	m.record(&cp)
	return nil
}

func (m *MockConn) SendLine(line []byte) error {
	msg, err := codec.Decode(line)
	if err != nil {
		return err
	}
	cp := *msg
	codec.PutMessage(msg)
	m.record(&cp)
	return nil
}

func (m *MockConn) record(msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	select {
	case m.C <- msg:
	default:
	}
}

func (m *MockConn) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// Closed 是否已被关闭
func (m *MockConn) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Messages 已收到消息的副本
func (m *MockConn) Messages() []*protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*protocol.Message(nil), m.messages...)
}

// Next 等待下一条满足 match 的消息，跳过其余消息
func (m *MockConn) Next(t *testing.T, match func(*protocol.Message) bool) *protocol.Message {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case msg := <-m.C:
			if match(msg) {
				return msg
			}
		case <-deadline:
			t.Fatal("timed out waiting for message")
			return nil
		}
	}
}

// IsRequest 匹配指定类型的请求
func IsRequest(kind protocol.RequestType) func(*protocol.Message) bool {
	return func(msg *protocol.Message) bool { return msg.Request == kind }
}

// IsEvent 匹配指定类型的事件
func IsEvent(kind protocol.EventType) func(*protocol.Message) bool {
	return func(msg *protocol.Message) bool { return msg.Event == kind }
}

// IsError 匹配错误消息
func IsError(msg *protocol.Message) bool { return msg.Error != nil }
