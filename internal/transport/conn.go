// Package transport 提供按行分帧的连接（TCP 与 WebSocket）以及每条连接的读写泵
package transport

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"sync"
	"time"

	"github.com/palemoky/floating-bridge/internal/protocol/codec"
)

// Conn 一条按行分帧的双向连接，每次 ReadLine 返回一条完整记录
type Conn interface {
	ReadLine() ([]byte, error)
	WriteLine(line []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	RemoteAddr() string
	Close() error
}

// Pinger 支持心跳的连接，读泵据此维护读超时
type Pinger interface {
	Ping() error
	OnPong(fn func())
}

// TCPConn 换行分隔 JSON 的 TCP 连接
type TCPConn struct {
	conn    net.Conn
	scanner *bufio.Scanner
	wmu     sync.Mutex
}

// NewTCPConn 包装 net.Conn
func NewTCPConn(conn net.Conn) *TCPConn {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), codec.MaxLineSize+1)
	return &TCPConn{conn: conn, scanner: scanner}
}

// DialTCP 连接 TCP 服务端
func DialTCP(addr string, timeout time.Duration) (*TCPConn, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	return NewTCPConn(conn), nil
}

// ReadLine 读取下一行，跳过空行
func (c *TCPConn) ReadLine() ([]byte, error) {
	for c.scanner.Scan() {
		line := bytes.TrimSpace(c.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		return bytes.Clone(line), nil
	}
	if err := c.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// WriteLine 写入一行，缺少换行时补上
func (c *TCPConn) WriteLine(line []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if len(line) == 0 || line[len(line)-1] != '\n' {
		line = append(bytes.Clone(line), '\n')
	}
	_, err := c.conn.Write(line)
	return err
}

func (c *TCPConn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *TCPConn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }
func (c *TCPConn) RemoteAddr() string                 { return c.conn.RemoteAddr().String() }
func (c *TCPConn) Close() error                       { return c.conn.Close() }
