package client

import (
	"log"
	"time"

	"github.com/palemoky/floating-bridge/internal/logger"
	"github.com/palemoky/floating-bridge/internal/protocol"
)

// Reconnect 在当前连接上发送重连请求
func (c *Client) Reconnect() error {
	token := c.Token()
	if token == "" {
		return ErrNoToken
	}
	return c.Send(protocol.NewReconnect(token))
}

// tryReconnect 按指数退避重连，超过次数后关闭客户端
func (c *Client) tryReconnect() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			log.Printf("[PANIC] tryReconnect panic recovered: %v", r)
			c.reconnecting.Store(false)
		}
	}()

	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}

	for {
		attempt, wait, ok := c.nextAttempt()
		if !ok {
			break
		}
		if c.OnReconnecting != nil {
			c.OnReconnecting(attempt, maxReconnectAttempts)
		}

		select {
		case <-time.After(wait):
		case <-c.done:
			c.reconnecting.Store(false)
			return
		}

		conn, err := c.dial(c.Addr)
		if err != nil {
			log.Printf("重连失败 (%d/%d): %v", attempt, maxReconnectAttempts, err)
			continue
		}
		c.start(conn)

		// 成功与否由 reconnected 事件或错误消息通知
		if err := c.Reconnect(); err != nil {
			c.reconnecting.Store(false)
			c.Close()
		}
		return
	}

	c.reconnecting.Store(false)
	c.Close()
}

// nextAttempt 计入一次重连并返回本次等待时间 (最大 30 秒)
func (c *Client) nextAttempt() (attempt int, wait time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reconnectCount >= maxReconnectAttempts {
		return c.reconnectCount, 0, false
	}
	c.reconnectCount++
	wait = c.backoff
	c.backoff = min(c.backoff*2, maxBackoff)
	return c.reconnectCount, wait, true
}
