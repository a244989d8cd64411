package table

import (
	"errors"
	"math/rand/v2"

	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/rule"
)

// reset 回收手牌和桌面上的牌，清空本局状态
func (e *Engine) reset() {
	discard := e.state.Discard
	for _, c := range e.state.PlayedCards {
		if c != card.Empty {
			discard = append(discard, c)
		}
	}
	for _, p := range e.players {
		discard = append(discard, p.Hand.Clear()...)
		p.Role = RoleUnknown
		p.Score = 0
	}

	e.state = newState()
	e.state.Discard = discard
	e.phase = PhaseDealing
	e.candidates = nil
	e.candidateIdx = 0
	e.passes = 0
	e.openerTurn = false
	e.auctionDone = false
	e.pending = nil
	e.result = nil
}

// deal 洗牌后按座位顺序每人发 13 张
func (e *Engine) deal() {
	deck := card.Deck(e.state.Discard)
	deck.Shuffle(e.rnd)
	for _, p := range e.players {
		for range card.HandSize {
			last := len(deck) - 1
			p.Hand.Add(deck[last])
			deck = deck[:last]
		}
	}
	e.state.Discard = deck
	e.round++

	e.candidates = e.candidates[:0]
	for _, p := range e.players {
		if card.Points(p.Hand.Values()) < rule.ReshuffleThreshold {
			e.candidates = append(e.candidates, p.Seat)
		}
	}
	e.candidateIdx = 0
	e.emit(Event{Kind: EventDeal})

	if len(e.candidates) == 0 {
		e.startBidding()
		return
	}
	e.phase = PhasePointCheck
	e.current = e.candidates[0]
}

// stepPointCheck 按座位顺序询问点数不足的玩家是否要求重洗，任何一人同意即作废本局
func (e *Engine) stepPointCheck() (Status, error) {
	seat := e.candidates[e.candidateIdx]
	e.current = seat
	p := e.players[seat]

	vote, err := p.provider.ReshuffleVote(e.View(), p.Hand.Values())
	if errors.Is(err, ErrPending) {
		return e.wait(RequestReshuffle, seat)
	}
	if err != nil {
		return e.reject(RequestReshuffle, seat, err)
	}
	e.answered()

	if vote {
		e.result = &RoundResult{Winner: SideNone, Voided: true, Declarer: -1, Partner: -1}
		e.phase = PhaseEnding
		e.emit(Event{Kind: EventReshuffle, Seat: seat})
		e.emit(Event{Kind: EventRoundEnd, Seat: seat, Result: e.Result()})
		return StatusProgress, nil
	}

	e.candidateIdx++
	if e.candidateIdx == len(e.candidates) {
		e.startBidding()
	} else {
		e.current = e.candidates[e.candidateIdx]
	}
	return StatusProgress, nil
}

func (e *Engine) startBidding() {
	if e.rnd != nil {
		e.opener = e.rnd.IntN(Seats)
	} else {
		e.opener = rand.IntN(Seats)
	}
	e.phase = PhaseBidding
	e.current = e.opener
	e.openerTurn = true
	e.passes = 0
	e.auctionDone = false
	e.state.Bid = rule.Pass
	e.state.Bidder = -1
	e.emit(Event{Kind: EventBiddingStarted, Seat: e.opener})
}

func (e *Engine) stepBid() (Status, error) {
	seat := e.current
	p := e.players[seat]

	bid, err := p.provider.MakeBid(e.View(), p.Hand.Values())
	if errors.Is(err, ErrPending) {
		return e.wait(RequestBid, seat)
	}
	if err == nil {
		err = rule.CheckBid(e.state.Bid, bid)
	}
	if err != nil {
		return e.reject(RequestBid, seat, err)
	}
	e.answered()

	if bid.IsPass() {
		if !e.openerTurn {
			e.passes++
		}
	} else {
		e.state.Bid = bid
		e.state.Bidder = seat
		e.passes = 0
	}
	e.openerTurn = false
	e.emit(Event{Kind: EventBid, Seat: seat, Bid: bid})

	if e.passes >= rule.PassesToEnd || e.state.Bid == rule.MaxBid {
		e.finishAuction()
	} else {
		e.current = (seat + 1) % Seats
	}
	return StatusProgress, nil
}

// finishAuction 最后一个加价者成为庄家；无人叫牌时开叫者以 1 梅花成为庄家
func (e *Engine) finishAuction() {
	if e.state.Bidder < 0 {
		e.state.Bid = rule.MinBid
		e.state.Bidder = e.opener
	}
	e.auctionDone = true
	e.current = e.state.Bidder
	e.players[e.state.Bidder].Role = RoleDeclarer
	e.emit(Event{Kind: EventAuctionWon, Seat: e.state.Bidder, Bid: e.state.Bid})
}

func (e *Engine) stepPartner() (Status, error) {
	seat := e.state.Bidder
	e.current = seat
	p := e.players[seat]

	c, err := p.provider.CallPartner(e.View(), p.Hand.Values())
	if errors.Is(err, ErrPending) {
		return e.wait(RequestPartner, seat)
	}
	if err == nil {
		err = rule.CheckPartner(c, p.Hand.Values())
	}
	if err != nil {
		return e.reject(RequestPartner, seat, err)
	}
	e.answered()

	e.state.PartnerCard = c
	e.emit(Event{Kind: EventPartnerCalled, Seat: seat, Card: c})
	e.startPlaying()
	return StatusProgress, nil
}

// startPlaying 无将时庄家首攻，否则由庄家下家首攻
func (e *Engine) startPlaying() {
	s := &e.state
	s.TrumpSuit = s.Bid.Suit()
	if s.TrumpSuit == card.NoTrump {
		s.LeadingPlayer = s.Bidder
	} else {
		s.LeadingPlayer = (s.Bidder + 1) % Seats
	}
	s.TrumpBroken = false
	s.PlayedCards = [Seats]card.Card{}
	s.Declarer.Target, s.Attacker.Target = rule.Targets(s.Bid)
	s.Declarer.Wins, s.Attacker.Wins = 0, 0
	s.CurrentRound = 0
	e.phase = PhasePlaying
	e.current = s.LeadingPlayer
}

func (e *Engine) trickComplete() bool {
	for _, c := range e.state.PlayedCards {
		if c == card.Empty {
			return false
		}
	}
	return true
}

func (e *Engine) stepPlay() (Status, error) {
	seat := e.current
	p := e.players[seat]
	ctx := e.View().PlayContext(seat)

	c, err := p.provider.MakePlay(e.View(), p.Hand.Values(), ctx.Leading)
	if errors.Is(err, ErrPending) {
		return e.wait(RequestPlay, seat)
	}
	if err == nil {
		err = rule.CheckPlay(c, p.Hand.Values(), ctx)
	}
	if err != nil {
		return e.reject(RequestPlay, seat, err)
	}
	e.answered()

	s := &e.state
	p.Hand.RemoveCard(c)
	s.PlayedCards[seat] = c
	e.emit(Event{Kind: EventCardPlayed, Seat: seat, Card: c})

	if !s.TrumpBroken && c.Suit() == s.TrumpSuit {
		s.TrumpBroken = true
		e.emit(Event{Kind: EventTrumpBroken, Seat: seat, Card: c})
	}
	if !s.PartnerRevealed && c == s.PartnerCard {
		e.reveal(seat)
	}
	e.current = (seat + 1) % Seats
	return StatusProgress, nil
}

// reveal 公开伙伴身份，并把此前各人赢的墩补记到双方
func (e *Engine) reveal(seat int) {
	s := &e.state
	s.PartnerRevealed = true
	s.PartnerSeat = seat
	e.players[seat].Role = RolePartner
	s.Declarer.Wins += e.players[seat].Score
	for _, p := range e.players {
		if p.Role == RoleUnknown {
			p.Role = RoleAttacker
			s.Attacker.Wins += p.Score
		}
	}
	e.emit(Event{Kind: EventPartnerRevealed, Seat: seat, Card: s.PartnerCard})
}

func (e *Engine) resolveTrick() {
	s := &e.state
	winner := rule.TrickWinner(s.PlayedCards, s.LeadingPlayer, s.TrumpSuit)

	e.players[winner].Score++
	switch e.players[winner].Role {
	case RoleDeclarer, RolePartner:
		s.Declarer.Wins++
	case RoleAttacker:
		s.Attacker.Wins++
	}

	trick := Trick{Leader: s.LeadingPlayer, Cards: s.PlayedCards, Winner: winner}
	s.RoundHistory = append(s.RoundHistory, trick)
	s.Discard = append(s.Discard, s.PlayedCards[:]...)
	s.PlayedCards = [Seats]card.Card{}
	s.LeadingPlayer = winner
	s.CurrentRound++
	e.current = winner
	e.emit(Event{Kind: EventTrickResult, Seat: winner, Trick: &trick})

	if s.CurrentRound == card.HandSize {
		e.finishRound()
	}
}

func (e *Engine) finishRound() {
	s := &e.state
	r := &RoundResult{
		Bid:      s.Bid,
		Declarer: s.Bidder,
		Partner:  s.PartnerSeat,
	}
	for seat, p := range e.players {
		r.Scores[seat] = p.Score
		r.Roles[seat] = p.Role
	}
	switch {
	case s.Declarer.Wins >= s.Declarer.Target:
		r.Winner = SideDeclarer
	case s.Attacker.Wins >= s.Attacker.Target:
		r.Winner = SideAttacker
	}
	e.result = r
	e.phase = PhaseEnding
	e.emit(Event{Kind: EventRoundEnd, Seat: s.Bidder, Result: e.Result()})
}
