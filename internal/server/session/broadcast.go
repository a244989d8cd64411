package session

import (
	"log"

	"github.com/palemoky/floating-bridge/internal/apperrors"
	"github.com/palemoky/floating-bridge/internal/game/table"
	"github.com/palemoky/floating-bridge/internal/protocol"
	"github.com/palemoky/floating-bridge/internal/protocol/codec"
	"github.com/palemoky/floating-bridge/internal/protocol/convert"
)

// onEvent 引擎事件广播给所有在线座位；发牌后各座位另收一份只含自己手牌的状态
func (ts *TableSession) onEvent(ev table.Event) {
	ts.broadcast(convert.EventToMessage(ev))

	switch ev.Kind {
	case table.EventDeal:
		for seat := range ts.seats {
			ts.sendState(seat)
		}
	case table.EventAuctionWon:
		log.Printf("📣 牌桌 %s 座位 %d 以 %s 定约", ts.ID, ev.Seat, ev.Bid)
	case table.EventRoundEnd:
		if ev.Result != nil {
			log.Printf("🏁 牌桌 %s 第 %d 局结束: %s", ts.ID, ts.engine.Round(), ev.Result.Winner)
		}
	}
}

// broadcast 编码一次，发给所有在线座位
func (ts *TableSession) broadcast(msg *protocol.Message) {
	line, err := codec.Encode(msg)
	if err != nil {
		log.Printf("消息编码错误: %v", err)
		return
	}
	for _, s := range ts.seats {
		if s.Conn != nil {
			_ = s.Conn.SendLine(line)
		}
	}
}

// sendState 发送该座位可见的完整状态
func (ts *TableSession) sendState(seat int) {
	s := ts.seats[seat]
	if s.Conn == nil {
		return
	}
	dto := convert.StateFor(ts.engine.View(), seat, ts.engine.Hand(seat))
	for i, other := range ts.seats {
		dto.Seats[i].Name = other.Name
		dto.Seats[i].Bot = other.Bot
		dto.Seats[i].Online = other.online()
	}
	msg := protocol.NewEvent(protocol.EvtState, seat)
	msg.State = dto
	s.send(msg)
}

// sendError 把错误发回座位
func (ts *TableSession) sendError(seat int, err error) {
	ts.seats[seat].send(protocol.NewErrorWithMessage(apperrors.CodeOf(err), err.Error()))
}
