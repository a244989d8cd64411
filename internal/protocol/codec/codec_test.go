package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/floating-bridge/internal/protocol"
)

func TestEncode_OneLine(t *testing.T) {
	t.Parallel()

	req := protocol.NewRequest(protocol.ReqBid, 2)
	req.CurrentBid = 21

	line, err := Encode(req)
	require.NoError(t, err)
	assert.Equal(t, `{"request":"bid","seat":2,"current_bid":21}`+"\n", string(line))
	assert.Equal(t, 1, bytes.Count(line, []byte("\n")))
}

func TestEncode_SeatZeroKept(t *testing.T) {
	t.Parallel()

	line, err := Encode(protocol.NewEvent(protocol.EvtCardPlayed, 0))
	require.NoError(t, err)
	assert.Contains(t, string(line), `"seat":0`)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		line     string
		hasError bool
		check    func(t *testing.T, msg *protocol.Message)
	}{
		{
			name: "Integer reply",
			line: `{"value":414}` + "\n",
			check: func(t *testing.T, msg *protocol.Message) {
				v, err := msg.IntValue()
				require.NoError(t, err)
				assert.Equal(t, 414, v)
			},
		},
		{
			name: "Boolean reply",
			line: `{"value":true}`,
			check: func(t *testing.T, msg *protocol.Message) {
				v, err := msg.BoolValue()
				require.NoError(t, err)
				assert.True(t, v)
				_, err = msg.IntValue()
				assert.Error(t, err)
			},
		},
		{
			name: "Reconnect",
			line: `{"reconnect":"abc"}`,
			check: func(t *testing.T, msg *protocol.Message) {
				assert.Equal(t, "abc", msg.Reconnect)
				assert.Equal(t, -1, msg.SeatOf())
			},
		},
		{
			name: "Join",
			line: `{"join":"alice"}`,
			check: func(t *testing.T, msg *protocol.Message) {
				assert.Equal(t, "alice", msg.Join)
			},
		},
		{
			name: "Error",
			line: `{"error":{"code":3003,"message":"bid too low"}}`,
			check: func(t *testing.T, msg *protocol.Message) {
				require.NotNil(t, msg.Error)
				assert.Equal(t, protocol.ErrCodeBidTooLow, msg.Error.Code)
			},
		},
		{name: "Empty line", line: "  \n", hasError: true},
		{name: "Not JSON", line: "play 414", hasError: true},
		{name: "No kind", line: `{"seat":1}`, hasError: true},
		{name: "Two kinds", line: `{"value":1,"event":"deal"}`, hasError: true},
		{name: "Join and reconnect", line: `{"join":"a","reconnect":"b"}`, hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg, err := Decode([]byte(tt.line))
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer PutMessage(msg)
			tt.check(t, msg)
		})
	}
}

func TestEncodeDecode_State(t *testing.T) {
	t.Parallel()

	ev := protocol.NewEvent(protocol.EvtState, 1)
	ev.State = &protocol.GameStateDTO{
		Phase:       "playing",
		YourSeat:    1,
		Hand:        []int{102, 313},
		PlayedCards: []int{0, 0, 0, 0},
	}
	line, err := Encode(ev)
	require.NoError(t, err)

	msg, err := Decode(line)
	require.NoError(t, err)
	defer PutMessage(msg)
	require.NotNil(t, msg.State)
	assert.Equal(t, []int{102, 313}, msg.State.Hand)
	assert.Equal(t, 1, msg.SeatOf())
}
