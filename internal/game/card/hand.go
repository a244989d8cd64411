package card

import (
	"encoding/json"
	"slices"
)

// Hand 一个座位的手牌，始终按牌值升序且无重复
type Hand struct {
	cards []Card
}

// NewHand 由任意顺序的牌创建手牌
func NewHand(cards ...Card) *Hand {
	h := &Hand{cards: make([]Card, 0, HandSize)}
	for _, c := range cards {
		h.Add(c)
	}
	return h
}

// Add 二分查找插入位置，保持升序；已存在时返回 false
func (h *Hand) Add(c Card) bool {
	pos, found := slices.BinarySearch(h.cards, c)
	if found {
		return false
	}
	h.cards = slices.Insert(h.cards, pos, c)
	return true
}

// Remove 移除并返回指定位置的牌
func (h *Hand) Remove(pos int) Card {
	c := h.cards[pos]
	h.cards = slices.Delete(h.cards, pos, pos+1)
	return c
}

// RemoveCard 按牌值移除
func (h *Hand) RemoveCard(c Card) bool {
	found, pos := h.Contains(c)
	if !found {
		return false
	}
	h.Remove(pos)
	return true
}

// Contains 查询牌是否在手中以及所在位置
func (h *Hand) Contains(c Card) (bool, int) {
	pos, found := slices.BinarySearch(h.cards, c)
	return found, pos
}

// Values 返回手牌副本
func (h *Hand) Values() []Card {
	return slices.Clone(h.cards)
}

func (h *Hand) Len() int { return len(h.cards) }

func (h *Hand) IsEmpty() bool { return len(h.cards) == 0 }

// Clear 清空手牌并返回被移除的牌
func (h *Hand) Clear() []Card {
	out := h.cards
	h.cards = make([]Card, 0, HandSize)
	return out
}

func (h *Hand) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.cards)
}

func (h *Hand) UnmarshalJSON(data []byte) error {
	var cards []Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return err
	}
	h.cards = make([]Card, 0, len(cards))
	for _, c := range cards {
		h.Add(c)
	}
	return nil
}

// HasSuit 牌中是否有指定花色
func HasSuit(cards []Card, s Suit) bool {
	return slices.ContainsFunc(cards, func(c Card) bool { return c.Suit() == s })
}

// OnlySuit 牌中是否全部为指定花色（空牌返回 false）
func OnlySuit(cards []Card, s Suit) bool {
	if len(cards) == 0 {
		return false
	}
	for _, c := range cards {
		if c.Suit() != s {
			return false
		}
	}
	return true
}

// OfSuit 过滤出指定花色的牌
func OfSuit(cards []Card, s Suit) []Card {
	var out []Card
	for _, c := range cards {
		if c.Suit() == s {
			out = append(out, c)
		}
	}
	return out
}

// Points 手牌点数：每门花色 ⌊张数/5⌋ 加上每张 J/Q/K/A 的 (点数-10)
func Points(cards []Card) int {
	counts := make(map[Suit]int, len(Suits))
	points := 0
	for _, c := range cards {
		counts[c.Suit()]++
		if r := int(c.Rank()) - 10; r > 0 {
			points += r
		}
	}
	for _, n := range counts {
		points += n / 5
	}
	return points
}
