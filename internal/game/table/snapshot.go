package table

import (
	"encoding/json"
	"fmt"

	"github.com/palemoky/floating-bridge/internal/game/card"
)

// Snapshot Engine 的可序列化延续点
//
// 挂起的请求不保存，恢复后的第一次 Advance 会重新询问当前座位。
type Snapshot struct {
	Phase        Phase              `json:"phase"`
	Round        int                `json:"round"`
	Current      int                `json:"current"`
	State        State              `json:"state"`
	Hands        [Seats][]card.Card `json:"hands"`
	Roles        [Seats]Role        `json:"roles"`
	Scores       [Seats]int         `json:"scores"`
	Candidates   []int              `json:"candidates,omitempty"`
	CandidateIdx int                `json:"candidate_idx"`
	Opener       int                `json:"opener"`
	OpenerTurn   bool               `json:"opener_turn"`
	Passes       int                `json:"passes"`
	AuctionDone  bool               `json:"auction_done"`
	Result       *RoundResult       `json:"result,omitempty"`
	AutoRestart  bool               `json:"auto_restart"`
}

// Snapshot 导出当前延续点
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Phase:        e.phase,
		Round:        e.round,
		Current:      e.current,
		State:        e.State(),
		Candidates:   append([]int(nil), e.candidates...),
		CandidateIdx: e.candidateIdx,
		Opener:       e.opener,
		OpenerTurn:   e.openerTurn,
		Passes:       e.passes,
		AuctionDone:  e.auctionDone,
		Result:       e.Result(),
		AutoRestart:  e.autoRestart,
	}
	for seat, p := range e.players {
		s.Hands[seat] = p.Hand.Values()
		s.Roles[seat] = p.Role
		s.Scores[seat] = p.Score
	}
	return s
}

// MarshalSnapshot 序列化为 JSON
func (e *Engine) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(e.Snapshot())
}

// Restore 从延续点重建 Engine
func Restore(s Snapshot, providers [Seats]Provider, opts ...Option) (*Engine, error) {
	e := New(providers, opts...)
	e.phase = s.Phase
	e.round = s.Round
	e.current = s.Current
	e.state = s.State
	e.candidates = s.Candidates
	e.candidateIdx = s.CandidateIdx
	e.opener = s.Opener
	e.openerTurn = s.OpenerTurn
	e.passes = s.Passes
	e.auctionDone = s.AuctionDone
	e.result = s.Result
	if s.AutoRestart {
		e.autoRestart = true
	}
	for seat, p := range e.players {
		p.Hand = card.NewHand(s.Hands[seat]...)
		p.Role = s.Roles[seat]
		p.Score = s.Scores[seat]
	}

	if n := e.CardCount(); n != card.DeckSize {
		return nil, fmt.Errorf("corrupt snapshot: %d cards on table", n)
	}
	if e.phase == PhasePointCheck && e.candidateIdx >= len(e.candidates) {
		return nil, fmt.Errorf("corrupt snapshot: reshuffle candidate %d of %d", e.candidateIdx, len(e.candidates))
	}
	return e, nil
}

// UnmarshalSnapshot 从 JSON 重建 Engine
func UnmarshalSnapshot(data []byte, providers [Seats]Provider, opts ...Option) (*Engine, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return Restore(s, providers, opts...)
}
