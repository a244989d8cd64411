package table

import (
	"math/rand/v2"
	"slices"

	"github.com/palemoky/floating-bridge/internal/apperrors"
	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/rule"
)

// Player 座位上的玩家
type Player struct {
	Seat     int
	Hand     *card.Hand
	Role     Role
	Score    int // 本局赢得的墩数
	provider Provider
}

// Engine 一张桌子的可恢复状态机
//
// Engine 不是并发安全的，调用方负责串行化（服务端由每桌一个驱动协程持有）。
// 每次 Advance 最多推进一步：向一个座位要一个决策，或结算一墩。
type Engine struct {
	players [Seats]*Player
	state   State
	phase   Phase
	round   int // 已开始的局数
	current int // 正在决策的座位

	candidates   []int // 点数不足、有权要求重洗的座位
	candidateIdx int

	opener      int
	openerTurn  bool // 开叫者第一次 pass 不计数
	passes      int
	auctionDone bool

	pending *Request
	result  *RoundResult

	rnd         *rand.Rand
	autoRestart bool

	onChange []func()
	onEvent  []func(Event)
}

// Option 配置 Engine
type Option func(*Engine)

// WithRand 指定随机源，用于洗牌和选择开叫者
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rnd = r }
}

// WithAutoRestart 一局结束后自动开始下一局
func WithAutoRestart() Option {
	return func(e *Engine) { e.autoRestart = true }
}

// New 创建一张新桌子，从发牌阶段开始
func New(providers [Seats]Provider, opts ...Option) *Engine {
	e := &Engine{
		state: newState(),
		phase: PhaseDealing,
	}
	for seat := range Seats {
		e.players[seat] = &Player{
			Seat:     seat,
			Hand:     card.NewHand(),
			provider: providers[seat],
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnChange 注册状态变化监听器
func (e *Engine) OnChange(fn func()) {
	e.onChange = append(e.onChange, fn)
}

// OnEvent 注册事件监听器
func (e *Engine) OnEvent(fn func(Event)) {
	e.onEvent = append(e.onEvent, fn)
}

func (e *Engine) emit(ev Event) {
	for _, fn := range e.onEvent {
		fn(ev)
	}
}

func (e *Engine) changed() {
	for _, fn := range e.onChange {
		fn()
	}
}

// View 返回只读视图
func (e *Engine) View() View { return tableView{e: e} }

// Phase 当前阶段
func (e *Engine) Phase() Phase { return e.phase }

// Round 已开始的局数
func (e *Engine) Round() int { return e.round }

// Current 正在决策的座位
func (e *Engine) Current() int { return e.current }

// Hand 座位手牌的副本
func (e *Engine) Hand(seat int) []card.Card {
	if seat < 0 || seat >= Seats {
		return nil
	}
	return e.players[seat].Hand.Values()
}

// State 状态副本
func (e *Engine) State() State {
	s := e.state
	s.RoundHistory = slices.Clone(e.state.RoundHistory)
	s.Discard = slices.Clone(e.state.Discard)
	return s
}

// Result 本局结果，未结束时为 nil
func (e *Engine) Result() *RoundResult {
	if e.result == nil {
		return nil
	}
	r := *e.result
	return &r
}

// Pending 正在等待的请求，没有时为 nil
func (e *Engine) Pending() *Request {
	if e.pending == nil {
		return nil
	}
	r := *e.pending
	r.Legal = slices.Clone(e.pending.Legal)
	return &r
}

// SetProvider 替换座位的决策者（断线托管、重连接管）
func (e *Engine) SetProvider(seat int, p Provider) {
	if seat < 0 || seat >= Seats {
		return
	}
	e.players[seat].provider = p
}

// Provider 座位当前的决策者
func (e *Engine) Provider(seat int) Provider {
	if seat < 0 || seat >= Seats {
		return nil
	}
	return e.players[seat].provider
}

// CardCount 弃牌堆、手牌与桌面上牌的总数，任何时候都应为 52
func (e *Engine) CardCount() int {
	n := len(e.state.Discard)
	for _, p := range e.players {
		n += p.Hand.Len()
	}
	for _, c := range e.state.PlayedCards {
		if c != card.Empty {
			n++
		}
	}
	return n
}

// Advance 推进一步
//
// 返回 StatusWaiting 时调用方应等待答复（Submit）后再次调用；
// 返回 StatusRoundOver 时调用 NextRound 开始下一局。
// 决策者返回非法答复时，请求保持挂起并带上 Rejected 原因，同时返回该错误。
func (e *Engine) Advance() (Status, error) {
	var (
		status Status
		err    error
	)
	switch e.phase {
	case PhaseDealing:
		e.deal()
	case PhasePointCheck:
		status, err = e.stepPointCheck()
	case PhaseBidding:
		if e.auctionDone {
			status, err = e.stepPartner()
		} else {
			status, err = e.stepBid()
		}
	case PhasePlaying:
		if e.trickComplete() {
			e.resolveTrick()
		} else {
			status, err = e.stepPlay()
		}
	case PhaseEnding:
		if !e.autoRestart {
			return StatusRoundOver, nil
		}
		e.reset()
	}
	if status == StatusProgress && err == nil {
		e.changed()
	}
	return status, err
}

// Submit 提交外部答复
//
// 答复立即校验：非法时记录在 Pending().Rejected 并返回错误；
// 合法时交给座位的 Answerer，由下一次 Advance 应用。
func (e *Engine) Submit(seat int, a Answer) error {
	if e.pending == nil {
		return apperrors.ErrUnexpectedAnswer
	}
	if seat != e.pending.Seat {
		return apperrors.ErrNotYourTurn
	}
	if a.Kind != e.pending.Kind {
		return apperrors.ErrUnexpectedAnswer
	}
	answerer, ok := e.players[seat].provider.(Answerer)
	if !ok {
		return apperrors.ErrUnexpectedAnswer
	}
	if err := e.validate(seat, a); err != nil {
		e.pending.Rejected = err
		e.changed()
		return err
	}
	e.pending.Rejected = nil
	answerer.Answer(a)
	return nil
}

// NextRound 回收所有牌并回到发牌阶段
func (e *Engine) NextRound() error {
	if e.phase != PhaseEnding {
		return apperrors.ErrRoundNotOver
	}
	e.reset()
	e.changed()
	return nil
}

func (e *Engine) validate(seat int, a Answer) error {
	hand := e.players[seat].Hand.Values()
	switch a.Kind {
	case RequestReshuffle:
		return nil
	case RequestBid:
		return rule.CheckBid(e.state.Bid, a.Bid)
	case RequestPartner:
		return rule.CheckPartner(a.Card, hand)
	case RequestPlay:
		return rule.CheckPlay(a.Card, hand, e.View().PlayContext(seat))
	default:
		return apperrors.ErrUnexpectedAnswer
	}
}

// wait 挂起请求；同一请求重复等待时保留 Rejected
func (e *Engine) wait(kind RequestKind, seat int) (Status, error) {
	if e.pending != nil && e.pending.Kind == kind && e.pending.Seat == seat {
		return StatusWaiting, nil
	}
	e.pending = e.newRequest(kind, seat)
	e.changed()
	return StatusWaiting, nil
}

func (e *Engine) reject(kind RequestKind, seat int, err error) (Status, error) {
	if e.pending == nil || e.pending.Kind != kind || e.pending.Seat != seat {
		e.pending = e.newRequest(kind, seat)
	}
	e.pending.Rejected = err
	e.changed()
	return StatusWaiting, err
}

func (e *Engine) newRequest(kind RequestKind, seat int) *Request {
	req := &Request{
		Kind:       kind,
		Seat:       seat,
		CurrentBid: e.state.Bid,
	}
	if kind == RequestPlay {
		ctx := e.View().PlayContext(seat)
		req.Leading = ctx.Leading
		req.LedSuit = ctx.LedSuit
		req.Legal = rule.LegalPlays(e.players[seat].Hand.Values(), ctx)
	}
	return req
}

// answered 请求已被应用
func (e *Engine) answered() {
	e.pending = nil
}
