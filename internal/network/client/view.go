package client

import (
	"errors"

	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/rule"
	"github.com/palemoky/floating-bridge/internal/game/table"
	"github.com/palemoky/floating-bridge/internal/protocol"
	"github.com/palemoky/floating-bridge/internal/protocol/convert"
)

// StateView 把服务器推送的状态包装成 table.View，供本地决策者和界面使用
//
// 只包含最近一墩的历史；其他座位的手牌只有张数。
type StateView struct {
	dto *protocol.GameStateDTO
}

var _ table.View = StateView{}

// NewStateView 包装状态，dto 不能为 nil
func NewStateView(dto *protocol.GameStateDTO) StateView {
	return StateView{dto: dto}
}

// Hand 自己的手牌
func (v StateView) Hand() []card.Card {
	return convert.IntsToCards(v.dto.Hand)
}

// Seat 自己的座位
func (v StateView) Seat() int { return v.dto.YourSeat }

// SeatInfo 座位的公开信息
func (v StateView) SeatInfo(seat int) protocol.SeatInfo {
	if seat < 0 || seat >= len(v.dto.Seats) {
		return protocol.SeatInfo{Seat: seat}
	}
	return v.dto.Seats[seat]
}

func (v StateView) Phase() table.Phase {
	for p := table.PhaseDealing; p <= table.PhaseEnding; p++ {
		if p.String() == v.dto.Phase {
			return p
		}
	}
	return table.PhaseDealing
}

func (v StateView) Round() int             { return v.dto.Round }
func (v StateView) CurrentSeat() int       { return v.dto.CurrentSeat }
func (v StateView) LeadingPlayer() int     { return v.dto.LeadingPlayer }
func (v StateView) TrumpSuit() card.Suit   { return card.Suit(v.dto.TrumpSuit) }
func (v StateView) TrumpBroken() bool      { return v.dto.TrumpBroken }
func (v StateView) Bid() rule.Bid          { return rule.Bid(v.dto.Bid) }
func (v StateView) BidLeader() int         { return v.dto.BidLeader }
func (v StateView) PartnerCard() card.Card { return card.Card(v.dto.PartnerCard) }
func (v StateView) PartnerRevealed() bool  { return v.dto.PartnerRevealed }
func (v StateView) PartnerSeat() int       { return v.dto.PartnerSeat }
func (v StateView) Declarer() table.Team   { return table.Team(v.dto.Declarer) }
func (v StateView) Attacker() table.Team   { return table.Team(v.dto.Attacker) }
func (v StateView) CurrentRound() int      { return v.dto.CurrentRound }
func (v StateView) ScoreLine() string      { return v.dto.ScoreLine }

// DiscardSize 由各家手牌张数和桌面上的牌推算
func (v StateView) DiscardSize() int {
	size := card.DeckSize
	for _, s := range v.dto.Seats {
		size -= s.HandSize
	}
	for _, c := range v.dto.PlayedCards {
		if c != int(card.Empty) {
			size--
		}
	}
	return max(size, 0)
}

func (v StateView) PlayedCards() [table.Seats]card.Card {
	var out [table.Seats]card.Card
	for i, c := range v.dto.PlayedCards {
		if i < table.Seats {
			out[i] = card.Card(c)
		}
	}
	return out
}

func (v StateView) LedSuit() card.Suit {
	played := v.PlayedCards()
	lead := v.dto.LeadingPlayer
	if lead < 0 || lead >= table.Seats || played[lead] == card.Empty {
		return 0
	}
	return played[lead].Suit()
}

// RoundHistory 只有最近完成的一墩
func (v StateView) RoundHistory() []table.Trick {
	t := v.dto.LastTrick
	if t == nil {
		return nil
	}
	trick := table.Trick{Leader: t.Leader, Winner: t.Winner}
	copy(trick.Cards[:], convert.IntsToCards(t.Cards))
	return []table.Trick{trick}
}

func (v StateView) Role(seat int) table.Role {
	name := v.SeatInfo(seat).Role
	for r := table.RoleDeclarer; r <= table.RoleAttacker; r++ {
		if r.String() == name {
			return r
		}
	}
	return table.RoleUnknown
}

func (v StateView) Score(seat int) int    { return v.SeatInfo(seat).Tricks }
func (v StateView) HandSize(seat int) int { return v.SeatInfo(seat).HandSize }

func (v StateView) PlayContext(seat int) rule.PlayContext {
	led := v.LedSuit()
	return rule.PlayContext{
		Leading:     led == 0 && seat == v.dto.LeadingPlayer,
		LedSuit:     led,
		Trump:       v.TrumpSuit(),
		TrumpBroken: v.dto.TrumpBroken,
	}
}

// ToRequest 把服务器的请求消息还原为引擎请求，ready 返回 nil
func ToRequest(msg *protocol.Message) *table.Request {
	kind := convert.RequestKind(msg.Request)
	if kind == table.RequestNone {
		return nil
	}
	req := &table.Request{
		Kind:       kind,
		Seat:       msg.SeatOf(),
		CurrentBid: rule.Bid(msg.CurrentBid),
		Leading:    msg.Leading,
		LedSuit:    card.Suit(msg.LedSuit),
		Legal:      convert.IntsToCards(msg.Legal),
	}
	if msg.Rejected != "" {
		req.Rejected = errors.New(msg.Rejected)
	}
	return req
}
