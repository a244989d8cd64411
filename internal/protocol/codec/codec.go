// Package codec 负责消息与换行分帧 JSON 之间的编解码
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/palemoky/floating-bridge/internal/protocol"
)

// MaxLineSize 单条记录的最大字节数
const MaxLineSize = 64 * 1024

var (
	// ErrEmptyLine 空行
	ErrEmptyLine = errors.New("empty line")
	// ErrNoKind 记录没有或有多个类型字段
	ErrNoKind = errors.New("message must set exactly one of request, event, value, error, join, reconnect")
)

// Encode 把消息编码为一行 JSON（以 '\n' 结尾）
func Encode(msg *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(msg); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Decode 解析一行 JSON，返回的消息来自对象池，用完后调用 PutMessage
func Decode(line []byte) (*protocol.Message, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, ErrEmptyLine
	}
	if len(line) > MaxLineSize {
		return nil, fmt.Errorf("line of %d bytes exceeds limit", len(line))
	}

	msg := GetMessage()
	if err := json.Unmarshal(line, msg); err != nil {
		PutMessage(msg)
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	if !wellFormed(msg) {
		PutMessage(msg)
		return nil, ErrNoKind
	}
	return msg, nil
}

func wellFormed(msg *protocol.Message) bool {
	n := 0
	if msg.Request != "" {
		n++
	}
	if msg.Event != "" {
		n++
	}
	if len(msg.Value) > 0 {
		n++
	}
	if msg.Error != nil {
		n++
	}
	if msg.Join != "" {
		n++
	}
	if msg.Reconnect != "" {
		n++
	}
	return n == 1
}
