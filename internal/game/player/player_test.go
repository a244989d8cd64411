package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/rule"
	"github.com/palemoky/floating-bridge/internal/game/table"
)

// stubView 只实现测试需要的读方法
type stubView struct {
	table.View
	seat   int
	bid    rule.Bid
	played [table.Seats]card.Card
	leader int
	ctx    rule.PlayContext
	roles  [table.Seats]table.Role
}

func (v stubView) CurrentSeat() int                    { return v.seat }
func (v stubView) Bid() rule.Bid                       { return v.bid }
func (v stubView) PlayedCards() [table.Seats]card.Card { return v.played }
func (v stubView) LeadingPlayer() int                  { return v.leader }
func (v stubView) PlayContext(int) rule.PlayContext    { return v.ctx }
func (v stubView) Role(seat int) table.Role            { return v.roles[seat] }

func TestHuman_Mailbox(t *testing.T) {
	t.Parallel()

	h := NewHuman()
	_, err := h.MakeBid(nil, nil)
	assert.ErrorIs(t, err, ErrPending)

	h.Answer(table.Answer{Kind: table.RequestBid, Bid: 23})
	_, err = h.MakePlay(nil, nil, false)
	assert.ErrorIs(t, err, ErrPending, "answer of another kind is not consumed")

	bid, err := h.MakeBid(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, rule.Bid(23), bid)

	_, err = h.MakeBid(nil, nil)
	assert.ErrorIs(t, err, ErrPending, "answer is taken once")

	h.Answer(table.Answer{Kind: table.RequestReshuffle, Vote: true})
	h.Clear()
	_, err = h.ReshuffleVote(nil, nil)
	assert.ErrorIs(t, err, ErrPending)

	h.Answer(table.Answer{Kind: table.RequestPartner, Card: 313})
	c, err := h.CallPartner(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, card.Card(313), c)
}

func TestHighestOutside(t *testing.T) {
	t.Parallel()

	assert.Equal(t, card.Card(414), HighestOutside([]card.Card{102, 313}))
	assert.Equal(t, card.Card(412), HighestOutside([]card.Card{413, 414}))
}

func TestFallback(t *testing.T) {
	t.Parallel()

	var fb Fallback
	hand := []card.Card{105, 212, 302, 313}

	vote, err := fb.ReshuffleVote(nil, hand)
	require.NoError(t, err)
	assert.False(t, vote)

	bid, err := fb.MakeBid(nil, hand)
	require.NoError(t, err)
	assert.True(t, bid.IsPass())

	partner, err := fb.CallPartner(nil, hand)
	require.NoError(t, err)
	assert.Equal(t, card.Highest, partner)

	v := stubView{ctx: rule.PlayContext{LedSuit: card.Heart, Trump: card.Spade}}
	c, err := fb.MakePlay(v, hand, false)
	require.NoError(t, err)
	assert.Equal(t, card.Card(302), c, "lowest card of the led suit")

	_, err = fb.MakePlay(v, nil, false)
	assert.ErrorIs(t, err, ErrNoLegalPlay)
}

func TestDefaultAction(t *testing.T) {
	t.Parallel()

	hand := []card.Card{105, 212, 302, 313}
	v := stubView{ctx: rule.PlayContext{Leading: true, Trump: card.Club}}

	tests := []struct {
		name     string
		req      *table.Request
		expected table.Answer
	}{
		{"Never reshuffle", &table.Request{Kind: table.RequestReshuffle}, table.Answer{Kind: table.RequestReshuffle}},
		{"Pass", &table.Request{Kind: table.RequestBid, CurrentBid: 32}, table.Answer{Kind: table.RequestBid}},
		{"Highest outside hand", &table.Request{Kind: table.RequestPartner}, table.Answer{Kind: table.RequestPartner, Card: 414}},
		{"First legal card", &table.Request{Kind: table.RequestPlay, Legal: []card.Card{212, 313}}, table.Answer{Kind: table.RequestPlay, Card: 212}},
		{"Computes legal cards", &table.Request{Kind: table.RequestPlay, Leading: true}, table.Answer{Kind: table.RequestPlay, Card: 212}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, err := DefaultAction(tt.req, v, hand)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, a)
		})
	}
}

func TestBot_MakeBid(t *testing.T) {
	t.Parallel()

	b := NewBot()
	strong := []card.Card{110, 211, 212, 213, 214, 409, 410, 411, 412, 413, 414, 314, 313}
	weak := []card.Card{102, 103, 104, 105, 202, 203, 204, 302, 303, 304, 402, 403, 404}

	bid, err := b.MakeBid(stubView{bid: rule.Pass}, strong)
	require.NoError(t, err)
	assert.Equal(t, card.Spade, bid.Suit())
	assert.NoError(t, rule.CheckBid(rule.Pass, bid))

	bid, err = b.MakeBid(stubView{bid: rule.Pass}, weak)
	require.NoError(t, err)
	assert.True(t, bid.IsPass())

	bid, err = b.MakeBid(stubView{bid: 74}, strong)
	require.NoError(t, err)
	assert.True(t, bid.IsPass(), "never overbids its estimate")
}

func TestBot_CallPartner(t *testing.T) {
	t.Parallel()

	b := NewBot()
	hand := []card.Card{314, 414, 413}

	c, err := b.CallPartner(stubView{bid: 44}, hand)
	require.NoError(t, err)
	assert.Equal(t, card.Card(412), c)

	c, err = b.CallPartner(stubView{bid: 13}, hand)
	require.NoError(t, err)
	assert.Equal(t, card.Card(313), c)
	assert.NoError(t, rule.CheckPartner(c, hand))
}

func TestBot_MakePlay(t *testing.T) {
	t.Parallel()

	b := NewBot()

	t.Run("Lead highest non trump", func(t *testing.T) {
		t.Parallel()
		v := stubView{ctx: rule.PlayContext{Leading: true, Trump: card.Spade, TrumpBroken: true}}
		c, err := b.MakePlay(v, []card.Card{105, 212, 414}, true)
		require.NoError(t, err)
		assert.Equal(t, card.Card(212), c)
	})

	t.Run("Win with smallest winner", func(t *testing.T) {
		t.Parallel()
		v := stubView{
			seat:   1,
			leader: 0,
			played: [table.Seats]card.Card{310},
			ctx:    rule.PlayContext{LedSuit: card.Heart, Trump: card.Spade},
		}
		c, err := b.MakePlay(v, []card.Card{305, 311, 314}, false)
		require.NoError(t, err)
		assert.Equal(t, card.Card(311), c)
	})

	t.Run("Trump when void", func(t *testing.T) {
		t.Parallel()
		v := stubView{
			seat:   2,
			leader: 0,
			played: [table.Seats]card.Card{310, 313},
			ctx:    rule.PlayContext{LedSuit: card.Heart, Trump: card.Spade},
		}
		c, err := b.MakePlay(v, []card.Card{105, 402, 409}, false)
		require.NoError(t, err)
		assert.Equal(t, card.Card(402), c)
	})

	t.Run("Duck under revealed partner", func(t *testing.T) {
		t.Parallel()
		v := stubView{
			seat:   2,
			leader: 0,
			played: [table.Seats]card.Card{314, 302},
			ctx:    rule.PlayContext{LedSuit: card.Heart, Trump: card.Spade},
			roles:  [table.Seats]table.Role{table.RolePartner, table.RoleAttacker, table.RoleDeclarer, table.RoleAttacker},
		}
		c, err := b.MakePlay(v, []card.Card{105, 402, 409}, false)
		require.NoError(t, err)
		assert.Equal(t, card.Card(105), c)
	})
}
