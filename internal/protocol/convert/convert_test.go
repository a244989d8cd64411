package convert

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/floating-bridge/internal/apperrors"
	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/player"
	"github.com/palemoky/floating-bridge/internal/game/rule"
	"github.com/palemoky/floating-bridge/internal/game/table"
	"github.com/palemoky/floating-bridge/internal/protocol"
)

func botEngine(t *testing.T, steps int) *table.Engine {
	t.Helper()
	var providers [table.Seats]table.Provider
	for i := range providers {
		providers[i] = player.NewBot()
	}
	e := table.New(providers, table.WithRand(rand.New(rand.NewPCG(3, 4))))
	for range steps {
		_, err := e.Advance()
		require.NoError(t, err)
	}
	return e
}

func TestCardsRoundTrip(t *testing.T) {
	t.Parallel()

	cards := []card.Card{102, 313, 414}
	assert.Equal(t, []int{102, 313, 414}, CardsToInts(cards))
	assert.Equal(t, cards, IntsToCards(CardsToInts(cards)))
	assert.Empty(t, CardsToInts(nil))
}

func TestStateFor_OnlyOwnHand(t *testing.T) {
	t.Parallel()

	e := botEngine(t, 12)
	for seat := range table.Seats {
		dto := StateFor(e.View(), seat, e.Hand(seat))
		assert.Equal(t, seat, dto.YourSeat)
		assert.Equal(t, CardsToInts(e.Hand(seat)), dto.Hand)
		assert.Len(t, dto.Seats, table.Seats)
		assert.Len(t, dto.PlayedCards, table.Seats)
		for s, info := range dto.Seats {
			assert.Equal(t, e.View().HandSize(s), info.HandSize)
		}
	}
}

func TestStateFor_HidesAttackerWinsBeforeReveal(t *testing.T) {
	t.Parallel()

	e := botEngine(t, 0)
	for !e.View().PartnerRevealed() {
		if e.View().Phase() == table.PhasePlaying && e.View().CurrentRound() > 0 {
			dto := StateFor(e.View(), 0, e.Hand(0))
			assert.Zero(t, dto.Attacker.Wins)
			assert.Equal(t, e.View().Attacker().Target, dto.Attacker.Target)
		}
		status, err := e.Advance()
		require.NoError(t, err)
		if status == table.StatusRoundOver {
			require.NoError(t, e.NextRound())
		}
	}
	dto := StateFor(e.View(), 0, e.Hand(0))
	assert.Equal(t, e.View().Attacker().Wins, dto.Attacker.Wins)
	assert.True(t, dto.PartnerRevealed)
}

func TestRequestToMessage(t *testing.T) {
	t.Parallel()

	req := &table.Request{
		Kind:     table.RequestPlay,
		Seat:     3,
		LedSuit:  card.Heart,
		Legal:    []card.Card{302, 311},
		Rejected: apperrors.ErrMustFollowSuit,
	}
	msg := RequestToMessage(req, 30*time.Second)
	assert.Equal(t, protocol.ReqPlay, msg.Request)
	assert.Equal(t, 3, msg.SeatOf())
	assert.Equal(t, int(card.Heart), msg.LedSuit)
	assert.Equal(t, []int{302, 311}, msg.Legal)
	assert.Equal(t, 30, msg.Timeout)
	assert.Equal(t, apperrors.ErrMustFollowSuit.Error(), msg.Rejected)

	bid := RequestToMessage(&table.Request{Kind: table.RequestBid, Seat: 0, CurrentBid: 32}, 0)
	assert.Equal(t, protocol.ReqBid, bid.Request)
	assert.Equal(t, 32, bid.CurrentBid)
	assert.Nil(t, bid.Legal)
}

func TestRequestKindMapping(t *testing.T) {
	t.Parallel()

	for _, kind := range []table.RequestKind{table.RequestReshuffle, table.RequestBid, table.RequestPartner, table.RequestPlay} {
		assert.Equal(t, kind, RequestKind(RequestType(kind)))
	}
	assert.Equal(t, table.RequestNone, RequestKind(protocol.ReqReady))
}

func TestEventToMessage(t *testing.T) {
	t.Parallel()

	trick := table.Trick{Leader: 1, Cards: [table.Seats]card.Card{310, 402, 314, 313}, Winner: 1}
	msg := EventToMessage(table.Event{Kind: table.EventTrickResult, Seat: 1, Trick: &trick})
	assert.Equal(t, protocol.EvtTrickResult, msg.Event)
	require.NotNil(t, msg.Trick)
	assert.Equal(t, []int{310, 402, 314, 313}, msg.Trick.Cards)
	assert.Nil(t, msg.Result)

	bid := EventToMessage(table.Event{Kind: table.EventBid, Seat: 2, Bid: 21})
	assert.Equal(t, protocol.EvtBidUpdate, bid.Event)
	assert.Equal(t, 21, bid.Bid)

	end := EventToMessage(table.Event{Kind: table.EventRoundEnd, Result: &table.RoundResult{Winner: table.SideAttacker, Bid: 44}})
	require.NotNil(t, end.Result)
	assert.Equal(t, "attacker", end.Result.Winner)
	assert.Len(t, end.Result.Tricks, table.Seats)
}

func TestMessageToEvent(t *testing.T) {
	t.Parallel()

	trick := table.Trick{Leader: 3, Cards: [table.Seats]card.Card{102, 105, 414, 109}, Winner: 2}
	result := &table.RoundResult{Winner: table.SideDeclarer, Bid: 31, Declarer: 2, Partner: 0, Scores: [table.Seats]int{3, 2, 6, 2}}
	tests := []table.Event{
		{Kind: table.EventBid, Seat: 1, Bid: 23},
		{Kind: table.EventCardPlayed, Seat: 0, Card: 412},
		{Kind: table.EventTrickResult, Seat: 2, Trick: &trick},
		{Kind: table.EventRoundEnd, Seat: 2, Result: result},
	}
	for _, ev := range tests {
		t.Run(string(ev.Kind), func(t *testing.T) {
			t.Parallel()
			got, ok := MessageToEvent(EventToMessage(ev))
			require.True(t, ok)
			assert.Equal(t, ev, got)
		})
	}

	_, ok := MessageToEvent(protocol.NewEvent(protocol.EvtWelcome, 0))
	assert.False(t, ok)
}

func TestMessageToAnswer(t *testing.T) {
	t.Parallel()

	a, err := MessageToAnswer(table.RequestBid, protocol.MustNewValue(42))
	require.NoError(t, err)
	assert.Equal(t, rule.Bid(42), a.Bid)

	a, err = MessageToAnswer(table.RequestPlay, protocol.MustNewValue(313))
	require.NoError(t, err)
	assert.Equal(t, card.Card(313), a.Card)

	a, err = MessageToAnswer(table.RequestReshuffle, protocol.MustNewValue(true))
	require.NoError(t, err)
	assert.True(t, a.Vote)

	_, err = MessageToAnswer(table.RequestPlay, protocol.MustNewValue("qs"))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidMessage))

	_, err = MessageToAnswer(table.RequestNone, protocol.MustNewValue(1))
	assert.ErrorIs(t, err, apperrors.ErrUnexpectedAnswer)
}

func TestAnswerToMessage(t *testing.T) {
	t.Parallel()

	for _, a := range []table.Answer{
		{Kind: table.RequestReshuffle, Vote: true},
		{Kind: table.RequestBid, Bid: 55},
		{Kind: table.RequestPartner, Card: 414},
		{Kind: table.RequestPlay, Card: 102},
	} {
		back, err := MessageToAnswer(a.Kind, AnswerToMessage(a))
		require.NoError(t, err)
		assert.Equal(t, a, back)
	}
}
