// Package convert 在牌局类型与线路 DTO 之间转换
package convert

import (
	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/rule"
	"github.com/palemoky/floating-bridge/internal/game/table"
	"github.com/palemoky/floating-bridge/internal/protocol"
)

// CardsToInts 将 []card.Card 转换为线路上的整数
func CardsToInts(cards []card.Card) []int {
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = int(c)
	}
	return out
}

// IntsToCards 将线路上的整数转换为 []card.Card
func IntsToCards(values []int) []card.Card {
	out := make([]card.Card, len(values))
	for i, v := range values {
		out[i] = card.Card(v)
	}
	return out
}

// TrickToDTO 转换一墩
func TrickToDTO(t table.Trick) *protocol.TrickDTO {
	return &protocol.TrickDTO{
		Leader: t.Leader,
		Cards:  CardsToInts(t.Cards[:]),
		Winner: t.Winner,
	}
}

// ResultToDTO 转换一局结果
func ResultToDTO(r *table.RoundResult) *protocol.ResultDTO {
	if r == nil {
		return nil
	}
	return &protocol.ResultDTO{
		Winner:   r.Winner.String(),
		Voided:   r.Voided,
		Bid:      int(r.Bid),
		Declarer: r.Declarer,
		Partner:  r.Partner,
		Tricks:   r.Scores[:],
	}
}

// StateFor 生成某个座位可见的状态：只包含该座位自己的手牌
func StateFor(v table.View, seat int, hand []card.Card) *protocol.GameStateDTO {
	played := v.PlayedCards()
	dto := &protocol.GameStateDTO{
		Phase:           v.Phase().String(),
		Round:           v.Round(),
		YourSeat:        seat,
		Hand:            CardsToInts(hand),
		CurrentSeat:     v.CurrentSeat(),
		Bid:             int(v.Bid()),
		BidLeader:       v.BidLeader(),
		TrumpSuit:       int(v.TrumpSuit()),
		TrumpBroken:     v.TrumpBroken(),
		PartnerCard:     int(v.PartnerCard()),
		PartnerRevealed: v.PartnerRevealed(),
		PartnerSeat:     v.PartnerSeat(),
		LeadingPlayer:   v.LeadingPlayer(),
		PlayedCards:     CardsToInts(played[:]),
		Declarer:        protocol.TeamDTO(v.Declarer()),
		CurrentRound:    v.CurrentRound(),
		ScoreLine:       v.ScoreLine(),
		Seats:           make([]protocol.SeatInfo, table.Seats),
	}
	// 伙伴揭晓前防守方墩数无法确定
	if v.PartnerRevealed() {
		dto.Attacker = protocol.TeamDTO(v.Attacker())
	} else {
		dto.Attacker.Target = v.Attacker().Target
	}
	if history := v.RoundHistory(); len(history) > 0 {
		dto.LastTrick = TrickToDTO(history[len(history)-1])
	}
	for s := range table.Seats {
		dto.Seats[s] = protocol.SeatInfo{
			Seat:     s,
			Role:     v.Role(s).String(),
			Tricks:   v.Score(s),
			HandSize: v.HandSize(s),
		}
	}
	return dto
}

// DTOToTrick 还原一墩
func DTOToTrick(d *protocol.TrickDTO) table.Trick {
	t := table.Trick{Leader: d.Leader, Winner: d.Winner}
	copy(t.Cards[:], IntsToCards(d.Cards))
	return t
}

// DTOToResult 还原一局结果，身份信息不在线路上传输
func DTOToResult(d *protocol.ResultDTO) *table.RoundResult {
	if d == nil {
		return nil
	}
	r := &table.RoundResult{
		Voided:   d.Voided,
		Bid:      rule.Bid(d.Bid),
		Declarer: d.Declarer,
		Partner:  d.Partner,
	}
	switch d.Winner {
	case table.SideDeclarer.String():
		r.Winner = table.SideDeclarer
	case table.SideAttacker.String():
		r.Winner = table.SideAttacker
	}
	copy(r.Scores[:], d.Tricks)
	return r
}
