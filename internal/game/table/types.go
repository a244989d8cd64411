package table

import (
	"errors"
	"fmt"

	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/rule"
)

// Seats 座位数
const Seats = rule.Seats

// Phase 牌局阶段
type Phase int

const (
	PhaseDealing Phase = iota
	PhasePointCheck
	PhaseBidding
	PhasePlaying
	PhaseEnding
)

var phaseNames = map[Phase]string{
	PhaseDealing:    "dealing",
	PhasePointCheck: "point_check",
	PhaseBidding:    "bidding",
	PhasePlaying:    "playing",
	PhaseEnding:     "ending",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Role 玩家身份
type Role int

const (
	RoleUnknown Role = iota
	RoleDeclarer
	RolePartner
	RoleAttacker
)

var roleNames = map[Role]string{
	RoleUnknown:  "",
	RoleDeclarer: "Declarer",
	RolePartner:  "Partner",
	RoleAttacker: "Attacker",
}

func (r Role) String() string { return roleNames[r] }

// Side 获胜方
type Side int

const (
	SideNone Side = iota
	SideDeclarer
	SideAttacker
)

func (s Side) String() string {
	switch s {
	case SideDeclarer:
		return "declarer"
	case SideAttacker:
		return "attacker"
	default:
		return "none"
	}
}

// Team 一方的目标墩数与已赢墩数
type Team struct {
	Target int `json:"target"`
	Wins   int `json:"wins"`
}

// Trick 一墩已完成的出牌
type Trick struct {
	Leader int              `json:"leader"`
	Cards  [Seats]card.Card `json:"cards"`
	Winner int              `json:"winner"`
}

// RoundResult 一局的结果
//
// Voided 表示因重新洗牌作废，此时 Bid/Declarer/Partner 为零值。
type RoundResult struct {
	Winner   Side        `json:"winner"`
	Voided   bool        `json:"voided"`
	Bid      rule.Bid    `json:"bid"`
	Declarer int         `json:"declarer"`
	Partner  int         `json:"partner"`
	Scores   [Seats]int  `json:"scores"`
	Roles    [Seats]Role `json:"roles"`
}

// State 桌面共享状态，只由 Engine 修改
type State struct {
	PlayedCards     [Seats]card.Card `json:"played_cards"`
	LeadingPlayer   int              `json:"leading_player"`
	TrumpSuit       card.Suit        `json:"trump_suit"`
	TrumpBroken     bool             `json:"trump_broken"`
	Bid             rule.Bid         `json:"bid"`
	Bidder          int              `json:"bidder"` // 当前最高叫牌者，-1 表示还没人叫
	PartnerCard     card.Card        `json:"partner_card"`
	PartnerRevealed bool             `json:"partner_revealed"`
	PartnerSeat     int              `json:"partner_seat"`
	RoundHistory    []Trick          `json:"round_history"`
	Declarer        Team             `json:"declarer"`
	Attacker        Team             `json:"attacker"`
	CurrentRound    int              `json:"current_round"` // 已完成的墩数
	Discard         []card.Card      `json:"discard"`
}

func newState() State {
	return State{
		Bidder:      -1,
		PartnerSeat: -1,
		Discard:     card.NewDeck(),
	}
}

// ScoreLine 双方进度，伙伴未揭晓时防守方墩数未知
func (s *State) ScoreLine() string {
	if s.PartnerRevealed {
		return fmt.Sprintf("Declarer: %d/%d, Attacker: %d/%d",
			s.Declarer.Wins, s.Declarer.Target, s.Attacker.Wins, s.Attacker.Target)
	}
	return fmt.Sprintf("Declarer: %d?/%d, Attacker: ?/%d",
		s.Declarer.Wins, s.Declarer.Target, s.Attacker.Target)
}

// RequestKind 向座位请求的决策类型
type RequestKind int

const (
	RequestNone RequestKind = iota
	RequestReshuffle
	RequestBid
	RequestPartner
	RequestPlay
)

var requestNames = map[RequestKind]string{
	RequestNone:      "",
	RequestReshuffle: "reshuffle",
	RequestBid:       "bid",
	RequestPartner:   "partner",
	RequestPlay:      "play",
}

func (k RequestKind) String() string { return requestNames[k] }

// Request 引擎正在等待的决策
type Request struct {
	Kind       RequestKind
	Seat       int
	CurrentBid rule.Bid
	Leading    bool
	LedSuit    card.Suit
	// Legal 出牌请求时手中合法的牌
	Legal []card.Card
	// Rejected 上一次答复被拒绝的原因
	Rejected error
}

// Answer 对 Request 的答复，按 Kind 读取对应字段
type Answer struct {
	Kind RequestKind
	Vote bool
	Bid  rule.Bid
	Card card.Card
}

// Status Advance 的结果
type Status int

const (
	StatusProgress  Status = iota // 推进了一步
	StatusWaiting                 // 等待某个座位答复
	StatusRoundOver               // 本局结束，等待 NextRound
)

func (s Status) String() string {
	switch s {
	case StatusProgress:
		return "progress"
	case StatusWaiting:
		return "waiting"
	default:
		return "round_over"
	}
}

// ErrPending 决策者暂时没有答案
var ErrPending = errors.New("decision pending")

// Provider 决策者，由 Engine 在轮到对应座位时调用
//
// View 只读；hand 是副本。人类/远程座位在答案到达前返回 ErrPending。
// Engine 不信任返回值，所有答复都会被重新校验。
type Provider interface {
	ReshuffleVote(v View, hand []card.Card) (bool, error)
	MakeBid(v View, hand []card.Card) (rule.Bid, error)
	CallPartner(v View, hand []card.Card) (card.Card, error)
	MakePlay(v View, hand []card.Card, leading bool) (card.Card, error)
}

// Answerer 可以接收外部答复的决策者（人类、远程座位）
type Answerer interface {
	Answer(a Answer)
}

// EventKind 牌局事件类型
type EventKind string

const (
	EventDeal            EventKind = "deal"
	EventReshuffle       EventKind = "reshuffle"
	EventBiddingStarted  EventKind = "bidding_started"
	EventBid             EventKind = "bid_update"
	EventAuctionWon      EventKind = "auction_won"
	EventPartnerCalled   EventKind = "partner_called"
	EventCardPlayed      EventKind = "card_played"
	EventTrumpBroken     EventKind = "trump_broken"
	EventPartnerRevealed EventKind = "partner_revealed"
	EventTrickResult     EventKind = "trick_result"
	EventRoundEnd        EventKind = "round_end"
)

// Event 每次状态变更后发出的事件
type Event struct {
	Kind   EventKind
	Seat   int
	Bid    rule.Bid
	Card   card.Card
	Trick  *Trick
	Result *RoundResult
}
