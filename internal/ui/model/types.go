// Package model contains the bubbletea models for local and online play.
package model

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/floating-bridge/internal/client"
	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/table"
	"github.com/palemoky/floating-bridge/internal/protocol"
	"github.com/palemoky/floating-bridge/internal/sound"
	"github.com/palemoky/floating-bridge/internal/ui/view"
)

const (
	maxLogLines   = 50
	noticeTimeout = 3 * time.Second
)

// --- Tea Messages ---

// frameMsg 本地对局的一帧
type frameMsg time.Time

// ServerMessage wraps a protocol message for tea.Msg.
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg indicates successful connection.
type ConnectedMsg struct{}

// ConnectionErrorMsg indicates a connection error.
type ConnectionErrorMsg struct {
	Err error
}

// ReconnectingMsg indicates reconnection in progress.
type ReconnectingMsg struct {
	Attempt  int
	MaxTries int
}

// ReconnectSuccessMsg indicates successful reconnection.
type ReconnectSuccessMsg struct{}

// DisconnectedMsg 客户端已关闭，不再重连
type DisconnectedMsg struct{}

// clearNoticeMsg clears the notice set at the given time.
type clearNoticeMsg struct {
	at time.Time
}

// base 本地和联网模式共用的界面状态
type base struct {
	input   textinput.Model
	log     []string
	counter *client.CardCounter
	sound   *sound.Manager

	notice   string
	noticeAt time.Time

	showCounter bool
	showRules   bool
	width       int
	height      int
}

func newBase(sm *sound.Manager) base {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "输入答复，回车确认"
	ti.CharLimit = 8
	ti.Width = 20
	ti.Focus()
	return base{
		input:   ti,
		counter: client.NewCardCounter(),
		sound:   sm,
	}
}

func (b *base) addLog(line string) {
	b.log = append(b.log, line)
	if len(b.log) > maxLogLines {
		b.log = b.log[len(b.log)-maxLogLines:]
	}
}

func (b *base) play(cue sound.Cue) {
	if b.sound != nil {
		b.sound.Play(cue)
	}
}

// setNotice 显示一条提示，几秒后自动消失
func (b *base) setNotice(text string) tea.Cmd {
	now := time.Now()
	b.notice, b.noticeAt = text, now
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg { return clearNoticeMsg{at: now} })
}

// trackEvent 更新记牌器并播放提示音
func (b *base) trackEvent(ev table.Event, me int, hand []card.Card) {
	switch ev.Kind {
	case table.EventDeal:
		b.counter.Reset()
		b.counter.SetHand(hand)
	case table.EventCardPlayed:
		b.counter.DeductCards(ev.Card)
		b.play(sound.CueCardPlay)
	case table.EventTrumpBroken:
		b.play(sound.CueTrump)
	case table.EventTrickResult:
		b.play(sound.CueTrick)
	case table.EventRoundEnd:
		if r := ev.Result; r != nil && !r.Voided && me >= 0 && me < table.Seats {
			if view.Won(r.Roles[me], r.Winner) {
				b.play(sound.CueWin)
			} else {
				b.play(sound.CueLose)
			}
		}
	}
}

// handleKey 共用快捷键，返回 true 表示已处理
func (b *base) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return true, tea.Quit
	case tea.KeyCtrlT:
		b.showCounter = !b.showCounter
		return true, nil
	case tea.KeyF1:
		b.showRules = !b.showRules
		return true, nil
	case tea.KeyEsc:
		if b.showRules {
			b.showRules = false
			return true, nil
		}
		return true, tea.Quit
	}
	return false, nil
}

// update 处理共用消息，返回 true 表示已处理
func (b *base) update(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		return true, nil
	case clearNoticeMsg:
		if msg.at.Equal(b.noticeAt) {
			b.notice = ""
		}
		return true, nil
	case tea.KeyMsg:
		return b.handleKey(msg)
	}
	return false, nil
}

// board 填入共用字段
func (b *base) board() view.Board {
	vb := view.Board{
		Log:    b.log,
		Input:  b.input.View(),
		Notice: b.notice,
		Width:  b.width,
	}
	if b.showCounter {
		vb.Counter = b.counter
	}
	return vb
}

func (b *base) render(vb view.Board) string {
	if b.showRules {
		return view.RulesView(b.width)
	}
	return view.Render(vb)
}
