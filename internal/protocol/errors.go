package protocol

// 错误码
const (
	ErrCodeUnknown         = 1000
	ErrCodeInvalidMsg      = 1001
	ErrCodeRateLimit       = 1002 // 速率限制
	ErrCodeTableFull       = 2001 // 没有空座位
	ErrCodeReconnectFailed = 2002 // 重连令牌无效或已过期
	ErrCodeNotYourTurn     = 3001
	ErrCodeUnexpected      = 3002 // 当前没有向该座位发起这种请求
	ErrCodeBidTooLow       = 3003
	ErrCodeBidOutOfRange   = 3004
	ErrCodePartnerInHand   = 3005
	ErrCodeInvalidCard     = 3006
	ErrCodeCardNotInHand   = 3007
	ErrCodeMustFollowSuit  = 3008
	ErrCodeTrumpNotBroken  = 3009
	ErrCodeRoundNotOver    = 3010

	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "unknown error",
	ErrCodeInvalidMsg:        "malformed message",
	ErrCodeRateLimit:         "too many messages",
	ErrCodeTableFull:         "no free seat",
	ErrCodeReconnectFailed:   "reconnect token rejected",
	ErrCodeNotYourTurn:       "not your turn",
	ErrCodeUnexpected:        "no such request is pending",
	ErrCodeBidTooLow:         "bid must be higher than the current bid",
	ErrCodeBidOutOfRange:     "bid must be 1-7 rounds of clubs, diamonds, hearts, spades or no trump",
	ErrCodePartnerInHand:     "partner card must not be in your own hand",
	ErrCodeInvalidCard:       "not a playing card",
	ErrCodeCardNotInHand:     "card is not in your hand",
	ErrCodeMustFollowSuit:    "you must follow the led suit",
	ErrCodeTrumpNotBroken:    "trump has not been broken",
	ErrCodeRoundNotOver:      "round is still in progress",
	ErrCodeServerMaintenance: "server under maintenance",
}
