package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/floating-bridge/internal/client"
	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/table"
	"github.com/palemoky/floating-bridge/internal/ui/common"
)

// RenderCounter 记牌器：各花色在其他三家手中可能剩下的牌
func RenderCounter(cc *client.CardCounter, trump card.Suit) string {
	var sb strings.Builder
	sb.WriteString("记牌器\n")
	for i := len(card.Suits) - 1; i >= 0; i-- {
		s := card.Suits[i]
		ranks := cc.Remaining(s)
		label := common.SuitStyle(s).Render(s.String())
		if s == trump {
			label += "*"
		}
		parts := make([]string, len(ranks))
		for j, r := range ranks {
			parts[j] = r.String()
		}
		if len(parts) == 0 {
			parts = append(parts, common.HintStyle.Render("无"))
		}
		fmt.Fprintf(&sb, "%s %s\n", label, strings.Join(parts, " "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RenderRules 规则说明
func RenderRules() string {
	var sb strings.Builder

	sb.WriteString("【游戏目标】\n")
	sb.WriteString("四人各 13 张牌。叫牌最高者成为庄家，叫一张伙伴牌，持有者暗中成为伙伴。\n")
	sb.WriteString("庄家方需赢得 叫牌墩数+6 墩，防守方需赢得 14 减去庄家方目标 墩。\n\n")

	sb.WriteString("【重新洗牌】\n")
	sb.WriteString("发牌后点数不足 4 的玩家可以要求重新洗牌（A=4 K=3 Q=2 J=1，每门每满 5 张加 1 点）。\n\n")

	sb.WriteString("【叫牌】\n")
	sb.WriteString("叫牌为 墩数+花色，如 1c、3h、2n（无将），必须高于当前叫牌。\n")
	sb.WriteString("花色顺序: ♣ < ♦ < ♥ < ♠ < 无将。有人加价后连续三家不叫即结束。\n\n")

	sb.WriteString("【出牌】\n")
	sb.WriteString("有首家花色必须跟出；将牌未破时不能首攻将牌，除非手中只剩将牌。\n")
	sb.WriteString("有将牌时最大的将牌赢，否则首家花色最大的牌赢，赢家下一墩首攻。\n\n")

	sb.WriteString("【快捷键】\n")
	sb.WriteString("• Tab：填入建议的答复\n")
	sb.WriteString("• Ctrl+T：切换记牌器\n")
	sb.WriteString("• F1：显示/隐藏规则\n")
	sb.WriteString("• Ctrl+C：退出\n")

	return common.BoxStyle.Render(sb.String())
}

// RulesView renders the full rules view.
func RulesView(width int) string {
	var sb strings.Builder
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.TitleStyle("📖 游戏规则")))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, RenderRules()))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "按 F1 或 ESC 返回"))
	return sb.String()
}

// DescribeEvent 牌局记录中的一行
func DescribeEvent(ev table.Event, names [table.Seats]string) string {
	who := nameOf(names, ev.Seat)
	switch ev.Kind {
	case table.EventDeal:
		return "🂠 发牌"
	case table.EventReshuffle:
		return fmt.Sprintf("🔀 %s 要求重新洗牌", who)
	case table.EventBiddingStarted:
		return fmt.Sprintf("📣 %s 开始叫牌", who)
	case table.EventBid:
		return fmt.Sprintf("%s 叫 %s", who, ev.Bid)
	case table.EventAuctionWon:
		return fmt.Sprintf("%s %s 以 %s 成为庄家", common.DeclarerIcon, who, ev.Bid)
	case table.EventPartnerCalled:
		return fmt.Sprintf("%s 叫伙伴牌 %s", who, RenderCard(ev.Card))
	case table.EventCardPlayed:
		return fmt.Sprintf("%s 出 %s", who, RenderCard(ev.Card))
	case table.EventTrumpBroken:
		return fmt.Sprintf("💥 %s 破将", who)
	case table.EventPartnerRevealed:
		return fmt.Sprintf("%s %s 是伙伴", common.PartnerIcon, who)
	case table.EventTrickResult:
		return fmt.Sprintf("✅ %s 赢得本墩", who)
	case table.EventRoundEnd:
		if ev.Result != nil && ev.Result.Voided {
			return "🔀 本局作废"
		}
		return "🏁 本局结束"
	default:
		return string(ev.Kind)
	}
}
