package apperrors

import (
	"errors"

	"github.com/palemoky/floating-bridge/internal/protocol"
)

// GameError 带错误码的游戏错误，错误码随消息一起发给客户端
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// New 按错误码创建错误，消息取自 protocol.ErrorMessages
func New(code int) *GameError {
	msg, ok := protocol.ErrorMessages[code]
	if !ok {
		msg = protocol.ErrorMessages[protocol.ErrCodeUnknown]
	}
	return &GameError{Code: code, Message: msg}
}

// 预定义错误
var (
	ErrNotYourTurn      = New(protocol.ErrCodeNotYourTurn)
	ErrUnexpectedAnswer = New(protocol.ErrCodeUnexpected)
	ErrBidTooLow        = New(protocol.ErrCodeBidTooLow)
	ErrBidOutOfRange    = New(protocol.ErrCodeBidOutOfRange)
	ErrPartnerInHand    = New(protocol.ErrCodePartnerInHand)
	ErrInvalidCard      = New(protocol.ErrCodeInvalidCard)
	ErrCardNotInHand    = New(protocol.ErrCodeCardNotInHand)
	ErrMustFollowSuit   = New(protocol.ErrCodeMustFollowSuit)
	ErrTrumpNotBroken   = New(protocol.ErrCodeTrumpNotBroken)
	ErrRoundNotOver     = New(protocol.ErrCodeRoundNotOver)
	ErrTableFull        = New(protocol.ErrCodeTableFull)
	ErrReconnectFailed  = New(protocol.ErrCodeReconnectFailed)
	ErrInvalidMessage   = New(protocol.ErrCodeInvalidMsg)
)

// CodeOf 取出错误链中的错误码，非 GameError 返回 ErrCodeUnknown
func CodeOf(err error) int {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return protocol.ErrCodeUnknown
}
