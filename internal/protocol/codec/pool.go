package codec

import (
	"bytes"
	"sync"

	"github.com/palemoky/floating-bridge/internal/protocol"
)

// 解码出的消息和编码缓冲区都复用，读写泵每条消息各用一次
var (
	messages = sync.Pool{New: func() any { return new(protocol.Message) }}
	buffers  = sync.Pool{New: func() any { return bytes.NewBuffer(make([]byte, 0, 512)) }}
)

// GetMessage 取一条空消息
func GetMessage() *protocol.Message {
	return messages.Get().(*protocol.Message)
}

// PutMessage 清空后放回；调用后不得再持有 msg 或其中的指针字段
func PutMessage(msg *protocol.Message) {
	if msg == nil {
		return
	}
	msg.Reset()
	messages.Put(msg)
}

// GetBuffer 取一个空缓冲区
func GetBuffer() *bytes.Buffer {
	return buffers.Get().(*bytes.Buffer)
}

// PutBuffer 放回缓冲区；超过 MaxLineSize 的丢弃，避免池中长期占用大块内存
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > MaxLineSize {
		return
	}
	buf.Reset()
	buffers.Put(buf)
}
