package client

import (
	"context"
	"log"

	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/player"
	"github.com/palemoky/floating-bridge/internal/game/table"
	"github.com/palemoky/floating-bridge/internal/protocol"
	"github.com/palemoky/floating-bridge/internal/protocol/convert"
)

// AutoPlay 用 provider 答复服务器的每个请求，直到 ctx 结束或客户端关闭
//
// onMessage 不为 nil 时每条消息都会先交给它（用于打印牌局进度）。
func (c *Client) AutoPlay(ctx context.Context, provider table.Provider, onMessage func(*protocol.Message)) error {
	var state *protocol.GameStateDTO
	for {
		msg, err := c.Receive(ctx)
		if err != nil {
			return err
		}
		if onMessage != nil {
			onMessage(msg)
		}

		switch {
		case msg.Event == protocol.EvtState:
			state = msg.State
		case msg.Request == protocol.ReqReady:
			err = c.Answer(true)
		case msg.Request != "":
			req := ToRequest(msg)
			if req == nil || state == nil {
				continue
			}
			v := NewStateView(state)
			a, derr := Decide(provider, req, v, v.Hand())
			if derr != nil {
				log.Printf("座位 %d 无法决策 %s: %v", req.Seat, req.Kind, derr)
				continue
			}
			err = c.Send(convert.AnswerToMessage(a))
		case msg.Error != nil:
			log.Printf("服务器错误 %d: %s", msg.Error.Code, msg.Error.Message)
		}
		if err != nil {
			return err
		}
	}
}

// Decide 让 provider 答复请求；provider 失败或上次答复被拒绝时改用托管策略
func Decide(provider table.Provider, req *table.Request, v table.View, hand []card.Card) (table.Answer, error) {
	if req.Rejected != nil {
		return player.DefaultAction(req, v, hand)
	}

	a := table.Answer{Kind: req.Kind}
	var err error
	switch req.Kind {
	case table.RequestReshuffle:
		a.Vote, err = provider.ReshuffleVote(v, hand)
	case table.RequestBid:
		a.Bid, err = provider.MakeBid(v, hand)
	case table.RequestPartner:
		a.Card, err = provider.CallPartner(v, hand)
	case table.RequestPlay:
		a.Card, err = provider.MakePlay(v, hand, req.Leading)
	}
	if err != nil {
		return player.DefaultAction(req, v, hand)
	}
	return a, nil
}
