package model

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/player"
	"github.com/palemoky/floating-bridge/internal/game/table"
	netclient "github.com/palemoky/floating-bridge/internal/network/client"
	"github.com/palemoky/floating-bridge/internal/protocol"
	"github.com/palemoky/floating-bridge/internal/protocol/convert"
	"github.com/palemoky/floating-bridge/internal/sound"
	"github.com/palemoky/floating-bridge/internal/ui/input"
	"github.com/palemoky/floating-bridge/internal/ui/view"
)

// OnlineModel 联网对局
//
// 服务器消息和重连回调都经 listen 转成 tea.Msg，只在 Update 中修改状态。
type OnlineModel struct {
	base

	client *netclient.Client
	events chan tea.Msg
	hint   table.Provider

	me      int
	names   [table.Seats]string
	offline [table.Seats]bool
	state   *protocol.GameStateDTO
	pending *table.Request
	ready   bool
	result  *table.RoundResult
	status  string
}

// OnlineOptions 联网对局选项
type OnlineOptions struct {
	Addr  string
	Name  string
	Sound *sound.Manager
}

// NewOnlineModel 创建联网对局，Init 时才连接服务器
func NewOnlineModel(opts OnlineOptions) *OnlineModel {
	m := &OnlineModel{
		base:   newBase(opts.Sound),
		client: netclient.NewClient(opts.Addr, opts.Name),
		events: make(chan tea.Msg, 16),
		hint:   player.NewBot(),
		me:     -1,
		status: fmt.Sprintf("正在连接 %s...", opts.Addr),
	}
	m.client.OnReconnecting = func(attempt, max int) {
		m.emit(ReconnectingMsg{Attempt: attempt, MaxTries: max})
	}
	m.client.OnReconnect = func() { m.emit(ReconnectSuccessMsg{}) }
	m.client.OnClose = func() { m.emit(DisconnectedMsg{}) }
	return m
}

// emit 在连接的 goroutine 中调用，队列满时丢弃
func (m *OnlineModel) emit(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

func (m *OnlineModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.connect)
}

func (m *OnlineModel) connect() tea.Msg {
	if err := m.client.Connect(); err != nil {
		return ConnectionErrorMsg{Err: err}
	}
	return ConnectedMsg{}
}

// listen 等待下一条服务器消息或连接事件
func (m *OnlineModel) listen() tea.Msg {
	select {
	case msg := <-m.client.Messages():
		return ServerMessage{Msg: msg}
	case ev := <-m.events:
		return ev
	case <-m.client.Done():
		return DisconnectedMsg{}
	}
}

func (m *OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ConnectedMsg:
		m.status = "已连接，等待入座..."
		return m, m.listen

	case ConnectionErrorMsg:
		m.status = fmt.Sprintf("连接失败: %v", msg.Err)
		return m, nil

	case ReconnectingMsg:
		m.status = fmt.Sprintf("连接断开，正在重连 (%d/%d)...", msg.Attempt, msg.MaxTries)
		return m, m.listen

	case ReconnectSuccessMsg:
		m.status = "已重连"
		return m, m.listen

	case DisconnectedMsg:
		m.status = "连接已关闭，按 Esc 退出"
		m.pending, m.ready = nil, false
		return m, nil

	case ServerMessage:
		cmd := m.handleServer(msg.Msg)
		return m, tea.Batch(cmd, m.listen)

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

func (m *OnlineModel) handleServer(msg *protocol.Message) tea.Cmd {
	switch {
	case msg.Error != nil:
		m.play(sound.CueError)
		switch msg.Error.Code {
		case protocol.ErrCodeReconnectFailed:
			m.status = "重连失败，座位已被释放"
		case protocol.ErrCodeServerMaintenance:
			m.status = "服务器维护中"
		}
		return m.setNotice(msg.Error.Message)

	case msg.Request == protocol.ReqReady:
		m.ready, m.pending = true, nil
		return nil

	case msg.Request != "":
		m.pending = netclient.ToRequest(msg)
		if m.pending != nil && m.pending.Rejected != nil {
			return m.setNotice(m.pending.Rejected.Error())
		}
		m.play(sound.CueYourTurn)
		return nil
	}

	switch msg.Event {
	case protocol.EvtWelcome:
		m.me = msg.SeatOf()
		m.names[m.me] = msg.Name
		m.status = fmt.Sprintf("已入座 %d 号位，等待其他玩家...", m.me)
	case protocol.EvtReconnected:
		m.me = msg.SeatOf()
		m.status = fmt.Sprintf("已回到 %d 号位", m.me)
	case protocol.EvtState:
		m.applyState(msg.State)
	case protocol.EvtSeatOffline, protocol.EvtSeatOnline:
		seat := msg.SeatOf()
		if seat < 0 || seat >= table.Seats {
			return nil
		}
		m.offline[seat] = msg.Event == protocol.EvtSeatOffline
		if m.offline[seat] {
			m.addLog(fmt.Sprintf("%s 掉线，改为托管", m.names[seat]))
		} else {
			m.addLog(fmt.Sprintf("%s 回来了", m.names[seat]))
		}
	default:
		ev, ok := convert.MessageToEvent(msg)
		if !ok {
			return nil
		}
		m.handleEvent(ev)
	}
	return nil
}

func (m *OnlineModel) applyState(dto *protocol.GameStateDTO) {
	if dto == nil {
		return
	}
	m.state = dto
	m.me = dto.YourSeat
	for i, s := range dto.Seats {
		if i >= table.Seats {
			break
		}
		m.names[i] = s.Name
		m.offline[i] = !s.Online && !s.Bot
	}
	m.counter.SetHand(convert.IntsToCards(dto.Hand))
	m.status = ""
}

func (m *OnlineModel) handleEvent(ev table.Event) {
	var hand []card.Card
	if m.state != nil {
		hand = convert.IntsToCards(m.state.Hand)
	}
	switch ev.Kind {
	case table.EventDeal:
		m.result = nil
	case table.EventRoundEnd:
		// 服务器不下发身份，结算时从最近的状态补上
		if ev.Result != nil && m.state != nil {
			v := netclient.NewStateView(m.state)
			for seat := range table.Seats {
				ev.Result.Roles[seat] = v.Role(seat)
			}
		}
		m.result = ev.Result
	}
	m.addLog(view.DescribeEvent(ev, m.names))
	m.trackEvent(ev, m.me, hand)
}

// submit 发送输入框中的答复
func (m *OnlineModel) submit() tea.Cmd {
	if m.ready {
		if err := m.client.Answer(true); err != nil {
			return m.setNotice(err.Error())
		}
		m.ready, m.result = false, nil
		m.input.Reset()
		return nil
	}
	if m.pending == nil {
		return m.setNotice("还没轮到你")
	}

	a, err := input.ParseAnswer(m.pending, m.input.Value())
	if err != nil {
		m.play(sound.CueError)
		return m.setNotice(err.Error())
	}
	if err := m.client.Send(convert.AnswerToMessage(a)); err != nil {
		return m.setNotice(err.Error())
	}
	m.pending = nil
	m.input.Reset()
	m.notice = ""
	return nil
}

// suggest 在输入框填入电脑的建议
func (m *OnlineModel) suggest() {
	if m.pending == nil || m.state == nil {
		return
	}
	v := netclient.NewStateView(m.state)
	a, err := netclient.Decide(m.hint, m.pending, v, v.Hand())
	if err != nil {
		return
	}
	m.input.SetValue(input.FormatAnswer(a))
	m.input.CursorEnd()
}

// Close 断开连接
func (m *OnlineModel) Close() {
	m.client.Close()
}

func (m *OnlineModel) View() string {
	b := m.board()
	b.Status = m.status
	if m.state != nil {
		v := netclient.NewStateView(m.state)
		b.View = v
		b.Hand = v.Hand()
	}
	b.Me = m.me
	b.Names = m.names
	b.Offline = m.offline
	b.Pending = m.pending
	if m.ready {
		b.Ready = true
		b.Result = m.result
	}
	return m.render(b)
}
