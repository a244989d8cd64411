package card

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHand_AddKeepsAscendingOrder(t *testing.T) {
	t.Parallel()

	h := NewHand()
	for _, c := range []Card{414, 102, 313, 210, 105, 414} {
		h.Add(c)
	}

	assert.Equal(t, []Card{102, 105, 210, 313, 414}, h.Values())
	assert.Equal(t, 5, h.Len())
}

func TestHand_AddDuplicate(t *testing.T) {
	t.Parallel()

	h := NewHand(312)
	assert.False(t, h.Add(312))
	assert.True(t, h.Add(311))
	assert.Equal(t, 2, h.Len())
}

func TestHand_ContainsAndRemove(t *testing.T) {
	t.Parallel()

	h := NewHand(102, 214, 309, 411)

	found, pos := h.Contains(309)
	require.True(t, found)
	assert.Equal(t, 2, pos)

	found, _ = h.Contains(410)
	assert.False(t, found)

	removed := h.Remove(pos)
	assert.Equal(t, Card(309), removed)
	assert.Equal(t, []Card{102, 214, 411}, h.Values())

	assert.True(t, h.RemoveCard(102))
	assert.False(t, h.RemoveCard(102))
	assert.Equal(t, []Card{214, 411}, h.Values())
}

func TestHand_ValuesIsCopy(t *testing.T) {
	t.Parallel()

	h := NewHand(102, 203)
	values := h.Values()
	values[0] = 414

	assert.Equal(t, []Card{102, 203}, h.Values())
}

func TestHand_Clear(t *testing.T) {
	t.Parallel()

	h := NewHand(102, 203, 304)
	removed := h.Clear()

	assert.Len(t, removed, 3)
	assert.True(t, h.IsEmpty())
}

func TestHand_JSON(t *testing.T) {
	t.Parallel()

	h := NewHand(414, 102)
	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `[102,414]`, string(data))

	var restored Hand
	require.NoError(t, json.Unmarshal([]byte(`[313,105,313]`), &restored))
	assert.Equal(t, []Card{105, 313}, restored.Values())
}

func TestSuitHelpers(t *testing.T) {
	t.Parallel()

	cards := []Card{102, 110, 405}
	assert.True(t, HasSuit(cards, Club))
	assert.False(t, HasSuit(cards, Heart))
	assert.False(t, OnlySuit(cards, Club))
	assert.True(t, OnlySuit([]Card{402, 414}, Spade))
	assert.False(t, OnlySuit(nil, Spade))
	assert.Equal(t, []Card{102, 110}, OfSuit(cards, Club))
}

func TestPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cards    []Card
		expected int
	}{
		{
			name:     "No honours, short suits",
			cards:    []Card{102, 103, 104, 202, 203, 204, 302, 303, 304, 402, 403, 404, 405},
			expected: 0,
		},
		{
			name:     "Five card suit",
			cards:    []Card{102, 103, 104, 105, 106, 202, 203, 204, 302, 303, 304, 402, 403},
			expected: 1,
		},
		{
			name:     "Honours",
			cards:    []Card{114, 213, 312, 411, 102, 103, 202, 203, 302, 303, 402, 403, 404},
			expected: 4 + 3 + 2 + 1,
		},
		{
			name:     "Long suit with ace",
			cards:    []Card{402, 403, 404, 405, 406, 407, 408, 409, 410, 414, 102, 202, 302},
			expected: 2 + 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Points(tt.cards))
		})
	}
}
