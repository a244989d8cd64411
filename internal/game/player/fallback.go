package player

import (
	"errors"
	"slices"

	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/rule"
	"github.com/palemoky/floating-bridge/internal/game/table"
)

// ErrNoLegalPlay 手中没有合法的牌（空手）
var ErrNoLegalPlay = errors.New("no legal play")

// Fallback 托管：超时或断线时代替玩家做出保守的决策
//
// 不要求重洗、不叫、叫手外最大的牌、出最小的合法牌。
type Fallback struct{}

var _ table.Provider = Fallback{}

func (Fallback) ReshuffleVote(table.View, []card.Card) (bool, error) {
	return false, nil
}

func (Fallback) MakeBid(table.View, []card.Card) (rule.Bid, error) {
	return rule.Pass, nil
}

func (Fallback) CallPartner(_ table.View, hand []card.Card) (card.Card, error) {
	return HighestOutside(hand), nil
}

func (Fallback) MakePlay(v table.View, hand []card.Card, _ bool) (card.Card, error) {
	legal := rule.LegalPlays(hand, v.PlayContext(v.CurrentSeat()))
	if len(legal) == 0 {
		return card.Empty, ErrNoLegalPlay
	}
	return legal[0], nil
}

// HighestOutside 手牌之外最大的牌
func HighestOutside(hand []card.Card) card.Card {
	for c := card.Highest; c >= card.Lowest; c-- {
		if c.Valid() && !slices.Contains(hand, c) {
			return c
		}
	}
	return card.Empty
}

// DefaultAction 按托管策略生成对挂起请求的答复
func DefaultAction(req *table.Request, v table.View, hand []card.Card) (table.Answer, error) {
	var fb Fallback
	a := table.Answer{Kind: req.Kind}
	switch req.Kind {
	case table.RequestReshuffle:
		a.Vote = false
	case table.RequestBid:
		a.Bid = rule.Pass
	case table.RequestPartner:
		a.Card, _ = fb.CallPartner(v, hand)
	case table.RequestPlay:
		if len(req.Legal) > 0 {
			a.Card = req.Legal[0]
			break
		}
		c, err := fb.MakePlay(v, hand, req.Leading)
		if err != nil {
			return a, err
		}
		a.Card = c
	}
	return a, nil
}
