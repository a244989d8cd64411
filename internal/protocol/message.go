package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingValue 答复中没有 value 字段
var ErrMissingValue = errors.New("missing value")

// Message 线路上的一条记录，按换行分帧
//
// 每条记录只设置 Request、Event、Value、Error、Join、Reconnect 之一，其余字段是它的上下文。
type Message struct {
	Request   RequestType     `json:"request,omitempty"`
	Event     EventType       `json:"event,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	Error     *ErrorPayload   `json:"error,omitempty"`
	Join      string          `json:"join,omitempty"`
	Reconnect string          `json:"reconnect,omitempty"`

	Seat *int `json:"seat,omitempty"`

	// 请求上下文
	CurrentBid int    `json:"current_bid,omitempty"`
	Leading    bool   `json:"leading,omitempty"`
	LedSuit    int    `json:"led_suit,omitempty"`
	Legal      []int  `json:"legal,omitempty"`
	Timeout    int    `json:"timeout,omitempty"` // 秒
	Rejected   string `json:"rejected,omitempty"`

	// 事件字段
	Bid    int           `json:"bid,omitempty"`
	Card   int           `json:"card,omitempty"`
	Token  string        `json:"token,omitempty"`
	Name   string        `json:"name,omitempty"`
	Trick  *TrickDTO     `json:"trick,omitempty"`
	Result *ResultDTO    `json:"result,omitempty"`
	State  *GameStateDTO `json:"state,omitempty"`
}

// RequestType 服务端 → 指定座位 的决策请求
type RequestType string

const (
	ReqReshuffle RequestType = "reshuffle" // 点数不足，是否重洗
	ReqBid       RequestType = "bid"       // 叫牌
	ReqPartner   RequestType = "partner"   // 叫伙伴牌
	ReqPlay      RequestType = "play"      // 出牌
	ReqReady     RequestType = "ready"     // 本局结束，确认继续
)

// EventType 服务端 → 所有座位 的广播
type EventType string

const (
	// 连接相关
	EvtWelcome     EventType = "welcome"      // 分配座位和重连令牌
	EvtReconnected EventType = "reconnected"  // 重连成功
	EvtSeatOffline EventType = "seat_offline" // 座位掉线，改为托管
	EvtSeatOnline  EventType = "seat_online"  // 座位恢复

	// 牌局流程
	EvtDeal            EventType = "deal"
	EvtReshuffle       EventType = "reshuffle"
	EvtBiddingStarted  EventType = "bidding_started"
	EvtBidUpdate       EventType = "bid_update"
	EvtAuctionWon      EventType = "auction_won"
	EvtPartnerCalled   EventType = "partner_called"
	EvtCardPlayed      EventType = "card_played"
	EvtTrumpBroken     EventType = "trump_broken"
	EvtPartnerRevealed EventType = "partner_revealed"
	EvtTrickResult     EventType = "trick_result"
	EvtRoundEnd        EventType = "round_end"
	EvtState           EventType = "state" // 完整状态（只含接收者自己的手牌）
)

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorPayload) Error() string {
	return fmt.Sprintf("error %d: %s", e.Code, e.Message)
}

// NewRequest 构造决策请求
func NewRequest(kind RequestType, seat int) *Message {
	return &Message{Request: kind, Seat: &seat}
}

// NewEvent 构造广播事件
func NewEvent(kind EventType, seat int) *Message {
	return &Message{Event: kind, Seat: &seat}
}

// NewValue 构造对请求的答复
func NewValue(v any) (*Message, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	return &Message{Value: raw}, nil
}

// MustNewValue 构造答复，v 必须可序列化
func MustNewValue(v any) *Message {
	msg, err := NewValue(v)
	if err != nil {
		panic(err)
	}
	return msg
}

// NewJoin 客户端首行：以昵称入座
func NewJoin(name string) *Message {
	return &Message{Join: name}
}

// NewReconnect 客户端首行：凭令牌重连
func NewReconnect(token string) *Message {
	return &Message{Reconnect: token}
}

// NewError 按错误码构造错误响应
func NewError(code int) *Message {
	return NewErrorWithMessage(code, ErrorMessages[code])
}

// NewErrorWithMessage 构造带自定义消息的错误响应
func NewErrorWithMessage(code int, message string) *Message {
	return &Message{Error: &ErrorPayload{Code: code, Message: message}}
}

// SeatOf 消息中的座位号，缺省为 -1
func (m *Message) SeatOf() int {
	if m.Seat == nil {
		return -1
	}
	return *m.Seat
}

// IntValue 把答复解析为整数（叫牌、牌值）
func (m *Message) IntValue() (int, error) {
	var v int
	if len(m.Value) == 0 {
		return 0, ErrMissingValue
	}
	if err := json.Unmarshal(m.Value, &v); err != nil {
		return 0, fmt.Errorf("value is not an integer: %w", err)
	}
	return v, nil
}

// BoolValue 把答复解析为布尔（重洗投票、ready）
func (m *Message) BoolValue() (bool, error) {
	var v bool
	if len(m.Value) == 0 {
		return false, ErrMissingValue
	}
	if err := json.Unmarshal(m.Value, &v); err != nil {
		return false, fmt.Errorf("value is not a boolean: %w", err)
	}
	return v, nil
}

// Reset 清空所有字段，供对象池复用
func (m *Message) Reset() {
	*m = Message{}
}
