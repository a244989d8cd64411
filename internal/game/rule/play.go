package rule

import (
	"slices"

	"github.com/palemoky/floating-bridge/internal/apperrors"
	"github.com/palemoky/floating-bridge/internal/game/card"
)

// Seats 座位数
const Seats = 4

// PlayContext 判断出牌是否合法所需的桌面信息
type PlayContext struct {
	Leading     bool
	LedSuit     card.Suit // 首家出牌的花色，Leading 时忽略
	Trump       card.Suit // 将牌花色，无将时为 card.NoTrump
	TrumpBroken bool
}

// CheckPlay 校验一次出牌
//
// 首家：将牌未破时不能出将牌，除非手中全是将牌。
// 跟牌：有首家花色的牌必须跟出，否则可以出任意牌。
func CheckPlay(c card.Card, hand []card.Card, ctx PlayContext) error {
	if !c.Valid() {
		return apperrors.ErrInvalidCard
	}
	if !slices.Contains(hand, c) {
		return apperrors.ErrCardNotInHand
	}

	if ctx.Leading {
		if !ctx.TrumpBroken && c.Suit() == ctx.Trump && !card.OnlySuit(hand, ctx.Trump) {
			return apperrors.ErrTrumpNotBroken
		}
		return nil
	}

	if c.Suit() != ctx.LedSuit && card.HasSuit(hand, ctx.LedSuit) {
		return apperrors.ErrMustFollowSuit
	}
	return nil
}

// LegalPlays 列出手中所有合法的出牌，按牌值升序
func LegalPlays(hand []card.Card, ctx PlayContext) []card.Card {
	legal := make([]card.Card, 0, len(hand))
	for _, c := range hand {
		if CheckPlay(c, hand, ctx) == nil {
			legal = append(legal, c)
		}
	}
	return legal
}

// TrickWinner 判断一墩的赢家座位
//
// 有人出将牌时最大的将牌赢；否则首家花色中点数最大的赢。
func TrickWinner(played [Seats]card.Card, leader int, trump card.Suit) int {
	led := played[leader].Suit()

	winner := -1
	best := card.Rank(0)
	trumped := false
	for seat, c := range played {
		if c == card.Empty {
			continue
		}
		isTrump := c.Suit() == trump
		switch {
		case isTrump && !trumped:
			winner, best, trumped = seat, c.Rank(), true
		case isTrump && trumped, !trumped && c.Suit() == led:
			if c.Rank() > best {
				winner, best = seat, c.Rank()
			}
		}
	}
	return winner
}
