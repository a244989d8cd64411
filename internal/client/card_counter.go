// Package client 客户端本地状态：记牌器
package client

import (
	"slices"

	"github.com/palemoky/floating-bridge/internal/game/card"
)

// CardCounter 记录每种花色还没出现过的牌（不含自己的手牌）
type CardCounter struct {
	seen map[card.Card]bool
	hand map[card.Card]bool
}

// NewCardCounter creates and initializes a new card counter
func NewCardCounter() *CardCounter {
	cc := &CardCounter{}
	cc.Reset()
	return cc
}

// Reset 新的一局
func (cc *CardCounter) Reset() {
	cc.seen = make(map[card.Card]bool)
	cc.hand = make(map[card.Card]bool)
}

// SetHand 发牌后记录自己的手牌
func (cc *CardCounter) SetHand(hand []card.Card) {
	for _, c := range hand {
		cc.hand[c] = true
	}
}

// DeductCards 记录已出的牌
func (cc *CardCounter) DeductCards(cards ...card.Card) {
	for _, c := range cards {
		if c.Valid() {
			cc.seen[c] = true
		}
	}
}

// Remaining 某花色在其他三家手中可能剩下的点数，从大到小
func (cc *CardCounter) Remaining(s card.Suit) []card.Rank {
	var out []card.Rank
	for r := card.RankA; r >= card.Rank2; r-- {
		c := card.New(s, r)
		if !cc.seen[c] && !cc.hand[c] {
			out = append(out, r)
		}
	}
	return out
}

// GetRemaining 各花色剩余张数
func (cc *CardCounter) GetRemaining() map[card.Suit]int {
	out := make(map[card.Suit]int, len(card.Suits))
	for _, s := range card.Suits {
		out[s] = len(cc.Remaining(s))
	}
	return out
}

// Outstanding 其他三家手中可能还有的将牌
func (cc *CardCounter) Outstanding(trump card.Suit) []card.Rank {
	if !slices.Contains(card.Suits, trump) {
		return nil
	}
	return cc.Remaining(trump)
}
