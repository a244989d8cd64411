package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/floating-bridge/internal/apperrors"
	"github.com/palemoky/floating-bridge/internal/game/card"
)

func TestCheckPlay_Leading(t *testing.T) {
	t.Parallel()

	mixed := []card.Card{105, 212, 403, 414}
	allTrump := []card.Card{402, 409, 414}

	tests := []struct {
		name   string
		card   card.Card
		hand   []card.Card
		broken bool
		err    error
	}{
		{"Non trump lead", 212, mixed, false, nil},
		{"Trump lead before broken", 414, mixed, false, apperrors.ErrTrumpNotBroken},
		{"Trump lead after broken", 414, mixed, true, nil},
		{"Only trump in hand", 402, allTrump, false, nil},
		{"Card not in hand", 313, mixed, true, apperrors.ErrCardNotInHand},
		{"Not a card", 0, mixed, true, apperrors.ErrInvalidCard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckPlay(tt.card, tt.hand, PlayContext{
				Leading:     true,
				Trump:       card.Spade,
				TrumpBroken: tt.broken,
			})
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCheckPlay_Following(t *testing.T) {
	t.Parallel()

	withHearts := []card.Card{105, 302, 313, 404}
	noHearts := []card.Card{105, 211, 404}
	ctx := PlayContext{LedSuit: card.Heart, Trump: card.Spade}

	assert.NoError(t, CheckPlay(302, withHearts, ctx))
	assert.ErrorIs(t, CheckPlay(404, withHearts, ctx), apperrors.ErrMustFollowSuit)
	assert.ErrorIs(t, CheckPlay(105, withHearts, ctx), apperrors.ErrMustFollowSuit)
	assert.NoError(t, CheckPlay(404, noHearts, ctx), "trump allowed when void in led suit")
	assert.NoError(t, CheckPlay(211, noHearts, ctx))
}

func TestLegalPlays(t *testing.T) {
	t.Parallel()

	hand := []card.Card{105, 212, 302, 313, 403}

	lead := LegalPlays(hand, PlayContext{Leading: true, Trump: card.Spade})
	assert.Equal(t, []card.Card{105, 212, 302, 313}, lead)

	follow := LegalPlays(hand, PlayContext{LedSuit: card.Heart, Trump: card.Spade})
	assert.Equal(t, []card.Card{302, 313}, follow)

	single := LegalPlays(hand, PlayContext{LedSuit: card.Diamond, Trump: card.NoTrump})
	assert.Equal(t, []card.Card{212}, single)
}

func TestTrickWinner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		played   [Seats]card.Card
		leader   int
		trump    card.Suit
		expected int
	}{
		{
			name:     "Low trump beats led suit",
			played:   [Seats]card.Card{310, 402, 314, 313},
			leader:   0,
			trump:    card.Spade,
			expected: 1,
		},
		{
			name:     "Highest of led suit without trump",
			played:   [Seats]card.Card{310, 114, 312, 305},
			leader:   0,
			trump:    card.Spade,
			expected: 2,
		},
		{
			name:     "Highest trump among several",
			played:   [Seats]card.Card{409, 310, 413, 402},
			leader:   1,
			trump:    card.Spade,
			expected: 2,
		},
		{
			name:     "No trump round ignores off suits",
			played:   [Seats]card.Card{214, 414, 203, 209},
			leader:   2,
			trump:    card.NoTrump,
			expected: 0,
		},
		{
			name:     "Single trump wins from any seat",
			played:   [Seats]card.Card{105, 214, 314, 302},
			leader:   3,
			trump:    card.Club,
			expected: 0,
		},
		{
			name:     "Leader keeps trick",
			played:   [Seats]card.Card{208, 203, 114, 414},
			leader:   0,
			trump:    card.Heart,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, TrickWinner(tt.played, tt.leader, tt.trump))
		})
	}
}
