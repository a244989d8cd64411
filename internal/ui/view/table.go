package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/rule"
	"github.com/palemoky/floating-bridge/internal/game/table"
	"github.com/palemoky/floating-bridge/internal/ui/common"
)

const logLines = 8

// Render 整个牌桌界面
func Render(b Board) string {
	var sb strings.Builder

	sb.WriteString(common.TitleStyle("🃏 浮动桥牌"))
	if b.Status != "" {
		sb.WriteString("  " + common.HintStyle.Render(b.Status))
	}
	sb.WriteString("\n\n")

	if b.View == nil {
		sb.WriteString("等待开局...\n")
		if b.Notice != "" {
			sb.WriteString(common.ErrorStyle.Render(b.Notice) + "\n")
		}
		return common.DocStyle.Render(sb.String())
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		common.BoxStyle.Render(RenderStatus(b.View, b.Names)),
		common.BoxStyle.Render(RenderSeats(b)),
		common.BoxStyle.Render(RenderTrick(b.View, b.Names)),
	)
	right := common.BoxStyle.Render(RenderLog(b.Log, logLines))
	if b.Counter != nil {
		right = lipgloss.JoinVertical(lipgloss.Left, right,
			common.BoxStyle.Render(RenderCounter(b.Counter, b.View.TrumpSuit())))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	sb.WriteString("\n")

	if b.Result != nil {
		sb.WriteString(common.BoxStyle.Render(RenderResult(b.Result, b.Names, b.Me)))
		sb.WriteString("\n")
	}

	sb.WriteString("你的手牌:\n")
	sb.WriteString(RenderHand(b.Hand))
	sb.WriteString("\n")

	switch {
	case b.Ready:
		sb.WriteString(common.PromptStyle.Render("本局结束，按回车开始下一局"))
	case b.Pending != nil:
		sb.WriteString(common.PromptStyle.Render(RenderPrompt(b.Pending)))
		sb.WriteString("\n> " + b.Input)
	default:
		sb.WriteString(common.PromptStyle.Render(common.HintStyle.Render(
			fmt.Sprintf("等待 %s ...", nameOf(b.Names, b.View.CurrentSeat())))))
	}
	if b.Notice != "" {
		sb.WriteString("\n" + common.ErrorStyle.Render(b.Notice))
	}
	sb.WriteString("\n" + common.HintStyle.Render("Tab 提示 · Ctrl+T 记牌器 · F1 规则 · Ctrl+C 退出"))
	return common.DocStyle.Render(sb.String())
}

// RenderCard 彩色的单张牌，空位显示为 "--"
func RenderCard(c card.Card) string {
	return common.CardStyle(c).Render(c.String())
}

// RenderHand 按花色分行，每行从大到小
func RenderHand(hand []card.Card) string {
	if len(hand) == 0 {
		return common.HintStyle.Render("(无)") + "\n"
	}
	var sb strings.Builder
	for i := len(card.Suits) - 1; i >= 0; i-- {
		s := card.Suits[i]
		cards := card.OfSuit(hand, s)
		if len(cards) == 0 {
			continue
		}
		sb.WriteString(common.SuitStyle(s).Render(s.String()) + " ")
		for j := len(cards) - 1; j >= 0; j-- {
			sb.WriteString(RenderCard(cards[j]) + " ")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderStatus 局数、阶段、定约、将牌和伙伴牌
func RenderStatus(v table.View, names [table.Seats]string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "第 %d 局 · %s\n", v.Round(), phaseName(v.Phase()))

	if bid := v.Bid(); !bid.IsPass() {
		fmt.Fprintf(&sb, "定约: %s (%s)\n", bid, nameOf(names, v.BidLeader()))
	} else {
		sb.WriteString("定约: -\n")
	}

	if trump := v.TrumpSuit(); trump != 0 {
		broken := ""
		if v.TrumpBroken() {
			broken = " 已破"
		}
		fmt.Fprintf(&sb, "将牌: %s%s\n", trump.Name(), broken)
	}

	if pc := v.PartnerCard(); pc.Valid() {
		partner := "未揭晓"
		if v.PartnerRevealed() {
			partner = nameOf(names, v.PartnerSeat())
		}
		fmt.Fprintf(&sb, "伙伴牌: %s (%s)\n", RenderCard(pc), partner)
	}
	if v.Phase() == table.PhasePlaying || v.Phase() == table.PhaseEnding {
		sb.WriteString(v.ScoreLine())
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RenderSeats 四个座位的身份、墩数与剩余张数
func RenderSeats(b Board) string {
	var sb strings.Builder
	for seat := range table.Seats {
		marker := "  "
		if seat == b.View.CurrentSeat() && b.View.Phase() != table.PhaseEnding {
			marker = common.TurnIcon
		}
		name := nameOf(b.Names, seat)
		if seat == b.Me {
			name += " (你)"
		}
		if b.Offline[seat] {
			name += " " + common.OfflineIcon
		}
		fmt.Fprintf(&sb, "%s %s %-16s 墩 %d · 余 %d\n", marker, common.RoleIcon(b.View.Role(seat)),
			name, b.View.Score(seat), b.View.HandSize(seat))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RenderTrick 当前一墩；刚结算时显示上一墩
func RenderTrick(v table.View, names [table.Seats]string) string {
	played := v.PlayedCards()
	title := "本墩"
	leader := v.LeadingPlayer()
	empty := true
	for _, c := range played {
		if c != card.Empty {
			empty = false
		}
	}
	if history := v.RoundHistory(); empty && len(history) > 0 {
		last := history[len(history)-1]
		played = last.Cards
		leader = last.Leader
		title = fmt.Sprintf("上一墩 · %s 赢", nameOf(names, last.Winner))
	}

	var sb strings.Builder
	sb.WriteString(title + "\n")
	for i := range table.Seats {
		seat := (leader + i) % table.Seats
		fmt.Fprintf(&sb, "%-12s %s\n", nameOf(names, seat), RenderCard(played[seat]))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RenderPrompt 请求对应的输入提示
func RenderPrompt(req *table.Request) string {
	var sb strings.Builder
	switch req.Kind {
	case table.RequestReshuffle:
		sb.WriteString("你的点数不足，是否要求重新洗牌？(y/n)")
	case table.RequestBid:
		if req.CurrentBid.IsPass() {
			sb.WriteString("请叫牌，如 1c、2h、3n，回车不叫")
		} else {
			fmt.Fprintf(&sb, "当前最高 %s，请叫更高的牌，回车不叫", req.CurrentBid)
		}
		if next := rule.NextBids(req.CurrentBid); len(next) > 0 {
			fmt.Fprintf(&sb, "\n最低可叫: %s", next[0])
		}
	case table.RequestPartner:
		sb.WriteString("请叫伙伴牌（不能在自己手中），如 as")
	case table.RequestPlay:
		if req.Leading {
			sb.WriteString("请首攻")
		} else {
			fmt.Fprintf(&sb, "请跟牌（首家 %s）", req.LedSuit.Name())
		}
		sb.WriteString("，可输入牌名或序号:\n")
		for i, c := range req.Legal {
			fmt.Fprintf(&sb, "%d.%s ", i+1, RenderCard(c))
		}
	}
	if req.Rejected != nil {
		sb.WriteString("\n" + common.ErrorStyle.Render("上次输入无效: "+req.Rejected.Error()))
	}
	return sb.String()
}

// RenderResult 一局结果
func RenderResult(r *table.RoundResult, names [table.Seats]string, me int) string {
	if r.Voided {
		return "本局作废，重新发牌"
	}
	var sb strings.Builder
	winner := "防守方"
	if r.Winner == table.SideDeclarer {
		winner = "庄家方"
	}
	fmt.Fprintf(&sb, "本局结束 · 定约 %s · %s获胜\n", r.Bid, winner)
	fmt.Fprintf(&sb, "庄家 %s，伙伴 %s\n", nameOf(names, r.Declarer), nameOf(names, r.Partner))
	for seat, n := range r.Scores {
		fmt.Fprintf(&sb, "%s: %d 墩  ", nameOf(names, seat), n)
	}
	if me >= 0 && me < table.Seats && r.Roles[me] != table.RoleUnknown {
		if Won(r.Roles[me], r.Winner) {
			sb.WriteString("\n" + common.WinStyle.Render("🎉 你赢了"))
		} else {
			sb.WriteString("\n你输了")
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// Won 身份是否属于获胜方
func Won(role table.Role, winner table.Side) bool {
	switch role {
	case table.RoleDeclarer, table.RolePartner:
		return winner == table.SideDeclarer
	case table.RoleAttacker:
		return winner == table.SideAttacker
	default:
		return false
	}
}

// RenderLog 最近 n 条牌局记录
func RenderLog(lines []string, n int) string {
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	if len(lines) == 0 {
		return "牌局记录\n" + common.HintStyle.Render("(空)")
	}
	return "牌局记录\n" + strings.Join(lines, "\n")
}

func nameOf(names [table.Seats]string, seat int) string {
	if seat < 0 || seat >= table.Seats {
		return "-"
	}
	if names[seat] == "" {
		return fmt.Sprintf("座位%d", seat)
	}
	return names[seat]
}

var phaseNames = map[table.Phase]string{
	table.PhaseDealing:    "发牌",
	table.PhasePointCheck: "点数检查",
	table.PhaseBidding:    "叫牌",
	table.PhasePlaying:    "出牌",
	table.PhaseEnding:     "结算",
}

func phaseName(p table.Phase) string {
	return phaseNames[p]
}
