package table

import (
	"slices"

	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/rule"
)

// View 桌面状态的只读视图，交给决策者和界面使用
type View interface {
	Phase() Phase
	Round() int
	CurrentSeat() int
	PlayedCards() [Seats]card.Card
	LeadingPlayer() int
	LedSuit() card.Suit
	TrumpSuit() card.Suit
	TrumpBroken() bool
	Bid() rule.Bid
	BidLeader() int
	PartnerCard() card.Card
	PartnerRevealed() bool
	PartnerSeat() int
	RoundHistory() []Trick
	Declarer() Team
	Attacker() Team
	CurrentRound() int
	Role(seat int) Role
	Score(seat int) int
	HandSize(seat int) int
	DiscardSize() int
	PlayContext(seat int) rule.PlayContext
	ScoreLine() string
}

// tableView 只暴露读方法，避免决策者拿到 *Engine
type tableView struct {
	e *Engine
}

var _ View = tableView{}

func (v tableView) Phase() Phase                  { return v.e.phase }
func (v tableView) Round() int                    { return v.e.round }
func (v tableView) CurrentSeat() int              { return v.e.current }
func (v tableView) PlayedCards() [Seats]card.Card { return v.e.state.PlayedCards }
func (v tableView) LeadingPlayer() int            { return v.e.state.LeadingPlayer }
func (v tableView) TrumpSuit() card.Suit          { return v.e.state.TrumpSuit }
func (v tableView) TrumpBroken() bool             { return v.e.state.TrumpBroken }
func (v tableView) Bid() rule.Bid                 { return v.e.state.Bid }
func (v tableView) BidLeader() int                { return v.e.state.Bidder }
func (v tableView) PartnerCard() card.Card        { return v.e.state.PartnerCard }
func (v tableView) PartnerRevealed() bool         { return v.e.state.PartnerRevealed }
func (v tableView) PartnerSeat() int              { return v.e.state.PartnerSeat }
func (v tableView) Declarer() Team                { return v.e.state.Declarer }
func (v tableView) Attacker() Team                { return v.e.state.Attacker }
func (v tableView) CurrentRound() int             { return v.e.state.CurrentRound }
func (v tableView) DiscardSize() int              { return len(v.e.state.Discard) }
func (v tableView) ScoreLine() string             { return v.e.state.ScoreLine() }

func (v tableView) RoundHistory() []Trick {
	return slices.Clone(v.e.state.RoundHistory)
}

// LedSuit 当前墩首家出牌的花色，首家未出牌时为 0
func (v tableView) LedSuit() card.Suit {
	lead := v.e.state.PlayedCards[v.e.state.LeadingPlayer]
	if lead == card.Empty {
		return 0
	}
	return lead.Suit()
}

func (v tableView) Role(seat int) Role {
	if seat < 0 || seat >= Seats {
		return RoleUnknown
	}
	return v.e.players[seat].Role
}

func (v tableView) Score(seat int) int {
	if seat < 0 || seat >= Seats {
		return 0
	}
	return v.e.players[seat].Score
}

func (v tableView) HandSize(seat int) int {
	if seat < 0 || seat >= Seats {
		return 0
	}
	return v.e.players[seat].Hand.Len()
}

// PlayContext 座位此刻出牌时适用的规则上下文
func (v tableView) PlayContext(seat int) rule.PlayContext {
	s := &v.e.state
	led := v.LedSuit()
	return rule.PlayContext{
		Leading:     led == 0 && seat == s.LeadingPlayer,
		LedSuit:     led,
		Trump:       s.TrumpSuit,
		TrumpBroken: s.TrumpBroken,
	}
}
