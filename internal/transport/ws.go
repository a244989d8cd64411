package transport

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/floating-bridge/internal/protocol/codec"
)

// WSConn WebSocket 连接，每个文本帧是一条记录
type WSConn struct {
	conn *websocket.Conn
}

// NewWSConn 包装已升级的 websocket 连接
func NewWSConn(conn *websocket.Conn) *WSConn {
	conn.SetReadLimit(codec.MaxLineSize)
	return &WSConn{conn: conn}
}

// DialWS 连接 WebSocket 服务端，url 形如 ws://host:1780/ws
func DialWS(url string, timeout time.Duration) (*WSConn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, resp, err := dialer.Dial(url, http.Header{})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return NewWSConn(conn), nil
}

func (c *WSConn) ReadLine() ([]byte, error) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if line := bytes.TrimSpace(data); len(line) > 0 {
			return line, nil
		}
	}
}

// WriteLine 以文本帧发送，去掉结尾换行
func (c *WSConn) WriteLine(line []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, bytes.TrimRight(line, "\n"))
}

func (c *WSConn) Ping() error {
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *WSConn) OnPong(fn func()) {
	c.conn.SetPongHandler(func(string) error {
		fn()
		return nil
	})
}

func (c *WSConn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *WSConn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }
func (c *WSConn) RemoteAddr() string                 { return c.conn.RemoteAddr().String() }

// Close 先尽力发送关闭帧再断开
func (c *WSConn) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.conn.Close()
}
