package model

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/floating-bridge/internal/game/player"
	"github.com/palemoky/floating-bridge/internal/game/table"
	netclient "github.com/palemoky/floating-bridge/internal/network/client"
	"github.com/palemoky/floating-bridge/internal/sound"
	"github.com/palemoky/floating-bridge/internal/ui/input"
	"github.com/palemoky/floating-bridge/internal/ui/view"
)

// DefaultFrame 本地对局每帧间隔，电脑玩家每帧最多走一步
const DefaultFrame = 250 * time.Millisecond

// LocalModel 单机对局：自己坐 0 号位，其余三家由电脑操作
//
// 引擎只在 Update 中被访问，每帧调用一次 Advance，等待自己答复时不阻塞渲染。
type LocalModel struct {
	base

	engine *table.Engine
	me     int
	names  [table.Seats]string
	hint   table.Provider
	frame  time.Duration

	answered bool // 答复已交给引擎，等下一帧生效
}

// LocalOptions 单机对局选项
type LocalOptions struct {
	Name  string
	Frame time.Duration
	Rand  *rand.Rand
	Sound *sound.Manager
}

// NewLocalModel 创建单机对局
func NewLocalModel(opts LocalOptions) *LocalModel {
	if opts.Name == "" {
		opts.Name = "你"
	}
	if opts.Frame <= 0 {
		opts.Frame = DefaultFrame
	}

	var providers [table.Seats]table.Provider
	providers[0] = player.NewHuman()
	for seat := 1; seat < table.Seats; seat++ {
		providers[seat] = player.NewBot()
	}
	var engineOpts []table.Option
	if opts.Rand != nil {
		engineOpts = append(engineOpts, table.WithRand(opts.Rand))
	}

	m := &LocalModel{
		base:   newBase(opts.Sound),
		engine: table.New(providers, engineOpts...),
		names:  [table.Seats]string{opts.Name, "🤖 东家", "🤖 对家", "🤖 西家"},
		hint:   player.NewBot(),
		frame:  opts.Frame,
	}
	m.engine.OnEvent(func(ev table.Event) {
		m.addLog(view.DescribeEvent(ev, m.names))
		m.trackEvent(ev, m.me, m.engine.Hand(m.me))
	})
	return m
}

func (m *LocalModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.tick())
}

func (m *LocalModel) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *LocalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		cmd := m.step()
		return m, tea.Batch(cmd, m.tick())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			return m, m.submit()
		case tea.KeyTab:
			m.suggest()
			return m, nil
		}
	}

	if handled, cmd := m.update(msg); handled {
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// awaiting 等待自己答复、尚未提交的请求
func (m *LocalModel) awaiting() *table.Request {
	if m.answered {
		return nil
	}
	if req := m.engine.Pending(); req != nil && req.Seat == m.me {
		return req
	}
	return nil
}

// step 推进引擎一步；等待自己答复或本局结束时不推进
func (m *LocalModel) step() tea.Cmd {
	if m.awaiting() != nil || m.engine.Phase() == table.PhaseEnding {
		return nil
	}

	status, err := m.engine.Advance()
	m.answered = false
	if err != nil {
		return m.setNotice(fmt.Sprintf("电脑玩家出错: %v", err))
	}
	if status == table.StatusWaiting && m.engine.Pending().Seat == m.me {
		m.play(sound.CueYourTurn)
	}
	return nil
}

// submit 提交输入框中的答复，本局结束时开始下一局
func (m *LocalModel) submit() tea.Cmd {
	if m.engine.Phase() == table.PhaseEnding {
		if err := m.engine.NextRound(); err != nil {
			return m.setNotice(err.Error())
		}
		m.input.Reset()
		return nil
	}

	req := m.awaiting()
	if req == nil {
		return m.setNotice("还没轮到你")
	}
	a, err := input.ParseAnswer(req, m.input.Value())
	if err != nil {
		m.play(sound.CueError)
		return m.setNotice(err.Error())
	}
	if err := m.engine.Submit(m.me, a); err != nil {
		m.play(sound.CueError)
		return m.setNotice(err.Error())
	}
	m.answered = true
	m.input.Reset()
	m.notice = ""
	return nil
}

// suggest 在输入框填入电脑的建议
func (m *LocalModel) suggest() {
	req := m.awaiting()
	if req == nil {
		return
	}
	a, err := netclient.Decide(m.hint, req, m.engine.View(), m.engine.Hand(m.me))
	if err != nil {
		return
	}
	m.input.SetValue(input.FormatAnswer(a))
	m.input.CursorEnd()
}

func (m *LocalModel) View() string {
	b := m.board()
	b.View = m.engine.View()
	b.Hand = m.engine.Hand(m.me)
	b.Me = m.me
	b.Names = m.names
	if req := m.awaiting(); req != nil {
		b.Pending = req
	}
	if m.engine.Phase() == table.PhaseEnding {
		b.Ready = true
		b.Result = m.engine.Result()
	}
	return m.render(b)
}
