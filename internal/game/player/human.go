package player

import (
	"sync"

	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/rule"
	"github.com/palemoky/floating-bridge/internal/game/table"
)

// Human 人类或远程玩家
//
// 答复由界面或网络层通过 Engine.Submit 投递到信箱，
// Engine 下一次询问时取走；信箱为空时返回 ErrPending。
type Human struct {
	mu     sync.Mutex
	answer *table.Answer
}

var (
	_ table.Provider = (*Human)(nil)
	_ table.Answerer = (*Human)(nil)
)

// NewHuman 创建人类玩家
func NewHuman() *Human {
	return &Human{}
}

// Answer 投递答复，覆盖尚未被取走的旧答复
func (h *Human) Answer(a table.Answer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.answer = &a
}

// Clear 丢弃未取走的答复
func (h *Human) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.answer = nil
}

func (h *Human) take(kind table.RequestKind) (table.Answer, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.answer == nil || h.answer.Kind != kind {
		return table.Answer{}, false
	}
	a := *h.answer
	h.answer = nil
	return a, true
}

func (h *Human) ReshuffleVote(table.View, []card.Card) (bool, error) {
	a, ok := h.take(table.RequestReshuffle)
	if !ok {
		return false, ErrPending
	}
	return a.Vote, nil
}

func (h *Human) MakeBid(table.View, []card.Card) (rule.Bid, error) {
	a, ok := h.take(table.RequestBid)
	if !ok {
		return rule.Pass, ErrPending
	}
	return a.Bid, nil
}

func (h *Human) CallPartner(table.View, []card.Card) (card.Card, error) {
	a, ok := h.take(table.RequestPartner)
	if !ok {
		return card.Empty, ErrPending
	}
	return a.Card, nil
}

func (h *Human) MakePlay(table.View, []card.Card, bool) (card.Card, error) {
	a, ok := h.take(table.RequestPlay)
	if !ok {
		return card.Empty, ErrPending
	}
	return a.Card, nil
}
