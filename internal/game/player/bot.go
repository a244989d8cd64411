// Package player 提供座位决策者：电脑、人类（信箱）与托管
package player

import (
	"slices"

	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/rule"
	"github.com/palemoky/floating-bridge/internal/game/table"
)

// ErrPending 决策者暂时没有答案
var ErrPending = table.ErrPending

// Bot 简单的启发式电脑玩家
type Bot struct {
	// ReshuffleBelow 点数低于该值时要求重洗
	ReshuffleBelow int
}

var _ table.Provider = (*Bot)(nil)

// NewBot 创建电脑玩家
func NewBot() *Bot {
	return &Bot{ReshuffleBelow: 2}
}

func (b *Bot) ReshuffleVote(_ table.View, hand []card.Card) (bool, error) {
	return card.Points(hand) < b.ReshuffleBelow, nil
}

// MakeBid 以最长花色为将，按点数与长度估算能赢的墩数，能叫就叫最低的一档
func (b *Bot) MakeBid(v table.View, hand []card.Card) (rule.Bid, error) {
	suit := longestSuit(hand)
	tricks := estimateTricks(hand, suit)
	maxRounds := tricks - rule.BaseTricks
	if maxRounds < 1 {
		return rule.Pass, nil
	}

	for _, bid := range rule.NextBids(v.Bid()) {
		if bid.Rounds() > maxRounds {
			break
		}
		if bid.Suit() == suit {
			return bid, nil
		}
	}
	return rule.Pass, nil
}

// CallPartner 叫不在手中的最大将牌，无将时叫最大的黑桃
func (b *Bot) CallPartner(v table.View, hand []card.Card) (card.Card, error) {
	suit := v.Bid().Suit()
	if suit == card.NoTrump {
		suit = card.Spade
	}
	for r := card.RankA; r >= card.Rank2; r-- {
		c := card.New(suit, r)
		if !slices.Contains(hand, c) {
			return c, nil
		}
	}
	return HighestOutside(hand), nil
}

// MakePlay 首攻出最大的非将牌；跟牌时能赢就出最小的赢牌，伙伴已赢时垫最小的牌
func (b *Bot) MakePlay(v table.View, hand []card.Card, leading bool) (card.Card, error) {
	seat := v.CurrentSeat()
	ctx := v.PlayContext(seat)
	legal := rule.LegalPlays(hand, ctx)
	if len(legal) == 0 {
		return card.Empty, ErrNoLegalPlay
	}

	if leading {
		for i := len(legal) - 1; i >= 0; i-- {
			if legal[i].Suit() != ctx.Trump {
				return legal[i], nil
			}
		}
		return legal[0], nil
	}

	played := v.PlayedCards()
	leader := v.LeadingPlayer()
	current := rule.TrickWinner(played, leader, ctx.Trump)
	if isTeammate(v, seat, current) {
		return lowest(legal, ctx.Trump), nil
	}

	for _, c := range byStrength(legal, ctx.Trump) {
		trial := played
		trial[seat] = c
		if rule.TrickWinner(trial, leader, ctx.Trump) == seat {
			return c, nil
		}
	}
	return lowest(legal, ctx.Trump), nil
}

// isTeammate 只有身份公开后才能确认队友
func isTeammate(v table.View, seat, other int) bool {
	if other < 0 || other == seat {
		return false
	}
	mine, theirs := v.Role(seat), v.Role(other)
	if mine == table.RoleUnknown || theirs == table.RoleUnknown {
		return false
	}
	return (mine == table.RoleAttacker) == (theirs == table.RoleAttacker)
}

// byStrength 按牌力从小到大排序：非将牌在前，同类按点数
func byStrength(cards []card.Card, trump card.Suit) []card.Card {
	sorted := slices.Clone(cards)
	slices.SortStableFunc(sorted, func(a, b card.Card) int {
		at, bt := a.Suit() == trump, b.Suit() == trump
		if at != bt {
			if at {
				return 1
			}
			return -1
		}
		return int(a.Rank()) - int(b.Rank())
	})
	return sorted
}

func lowest(cards []card.Card, trump card.Suit) card.Card {
	return byStrength(cards, trump)[0]
}

func longestSuit(hand []card.Card) card.Suit {
	best, bestLen := card.Club, -1
	for _, s := range card.Suits {
		if n := len(card.OfSuit(hand, s)); n >= bestLen {
			best, bestLen = s, n
		}
	}
	return best
}

// estimateTricks 粗略估计：大牌点数每 3 点一墩，将牌超过 4 张的部分各算一墩
func estimateTricks(hand []card.Card, trump card.Suit) int {
	high := 0
	for _, c := range hand {
		high += max(0, int(c.Rank())-10)
	}
	long := max(0, len(card.OfSuit(hand, trump))-4)
	return high/3 + long + 3
}
