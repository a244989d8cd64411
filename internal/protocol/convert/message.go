package convert

import (
	"fmt"
	"time"

	"github.com/palemoky/floating-bridge/internal/apperrors"
	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/rule"
	"github.com/palemoky/floating-bridge/internal/game/table"
	"github.com/palemoky/floating-bridge/internal/protocol"
)

var requestTypes = map[table.RequestKind]protocol.RequestType{
	table.RequestReshuffle: protocol.ReqReshuffle,
	table.RequestBid:       protocol.ReqBid,
	table.RequestPartner:   protocol.ReqPartner,
	table.RequestPlay:      protocol.ReqPlay,
}

var eventTypes = map[table.EventKind]protocol.EventType{
	table.EventDeal:            protocol.EvtDeal,
	table.EventReshuffle:       protocol.EvtReshuffle,
	table.EventBiddingStarted:  protocol.EvtBiddingStarted,
	table.EventBid:             protocol.EvtBidUpdate,
	table.EventAuctionWon:      protocol.EvtAuctionWon,
	table.EventPartnerCalled:   protocol.EvtPartnerCalled,
	table.EventCardPlayed:      protocol.EvtCardPlayed,
	table.EventTrumpBroken:     protocol.EvtTrumpBroken,
	table.EventPartnerRevealed: protocol.EvtPartnerRevealed,
	table.EventTrickResult:     protocol.EvtTrickResult,
	table.EventRoundEnd:        protocol.EvtRoundEnd,
}

// RequestType 引擎请求类型对应的线路请求类型
func RequestType(kind table.RequestKind) protocol.RequestType {
	return requestTypes[kind]
}

// RequestKind 线路请求类型对应的引擎请求类型，ready 没有对应类型
func RequestKind(t protocol.RequestType) table.RequestKind {
	for k, v := range requestTypes {
		if v == t {
			return k
		}
	}
	return table.RequestNone
}

// RequestToMessage 把挂起的请求编码为发给该座位的消息
func RequestToMessage(req *table.Request, timeout time.Duration) *protocol.Message {
	msg := protocol.NewRequest(RequestType(req.Kind), req.Seat)
	msg.CurrentBid = int(req.CurrentBid)
	msg.Leading = req.Leading
	msg.LedSuit = int(req.LedSuit)
	if req.Kind == table.RequestPlay {
		msg.Legal = CardsToInts(req.Legal)
	}
	msg.Timeout = int(timeout.Seconds())
	if req.Rejected != nil {
		msg.Rejected = req.Rejected.Error()
	}
	return msg
}

// EventToMessage 把引擎事件编码为广播消息
func EventToMessage(ev table.Event) *protocol.Message {
	msg := protocol.NewEvent(eventTypes[ev.Kind], ev.Seat)
	msg.Bid = int(ev.Bid)
	msg.Card = int(ev.Card)
	if ev.Trick != nil {
		msg.Trick = TrickToDTO(*ev.Trick)
	}
	msg.Result = ResultToDTO(ev.Result)
	return msg
}

// MessageToAnswer 按请求类型解析座位的答复
func MessageToAnswer(kind table.RequestKind, msg *protocol.Message) (table.Answer, error) {
	a := table.Answer{Kind: kind}
	switch kind {
	case table.RequestReshuffle:
		vote, err := msg.BoolValue()
		if err != nil {
			return a, fmt.Errorf("%w: %w", apperrors.ErrInvalidMessage, err)
		}
		a.Vote = vote
	case table.RequestBid:
		v, err := msg.IntValue()
		if err != nil {
			return a, fmt.Errorf("%w: %w", apperrors.ErrInvalidMessage, err)
		}
		a.Bid = rule.Bid(v)
	case table.RequestPartner, table.RequestPlay:
		v, err := msg.IntValue()
		if err != nil {
			return a, fmt.Errorf("%w: %w", apperrors.ErrInvalidMessage, err)
		}
		a.Card = card.Card(v)
	default:
		return a, apperrors.ErrUnexpectedAnswer
	}
	return a, nil
}

// AnswerToMessage 把答复编码为发给服务端的消息
func AnswerToMessage(a table.Answer) *protocol.Message {
	switch a.Kind {
	case table.RequestReshuffle:
		return protocol.MustNewValue(a.Vote)
	case table.RequestBid:
		return protocol.MustNewValue(int(a.Bid))
	default:
		return protocol.MustNewValue(int(a.Card))
	}
}

// MessageToEvent 还原广播消息中的引擎事件，非牌局事件返回 false
func MessageToEvent(msg *protocol.Message) (table.Event, bool) {
	for kind, t := range eventTypes {
		if t != msg.Event {
			continue
		}
		ev := table.Event{
			Kind:   kind,
			Seat:   msg.SeatOf(),
			Bid:    rule.Bid(msg.Bid),
			Card:   card.Card(msg.Card),
			Result: DTOToResult(msg.Result),
		}
		if msg.Trick != nil {
			trick := DTOToTrick(msg.Trick)
			ev.Trick = &trick
		}
		return ev, true
	}
	return table.Event{}, false
}
