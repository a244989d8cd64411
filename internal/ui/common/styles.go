// Package common provides shared styles and icons for the UI.
package common

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/table"
)

// Icon constants
const (
	DeclarerIcon = "👑"
	PartnerIcon  = "🤝"
	AttackerIcon = "⚔️"
	UnknownIcon  = "🙂"
	TurnIcon     = "👉"
	OfflineIcon  = "📴"
	BotIcon      = "🤖"
)

// Lipgloss Styles - shared across local and online modes
var (
	DocStyle    = lipgloss.NewStyle().Margin(1, 2)
	RedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CD0000")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	BlackStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	GrayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	TitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	PromptStyle = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	HintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	WinStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// SuitStyle 红色花色用红字
func SuitStyle(s card.Suit) lipgloss.Style {
	if s.IsRed() {
		return RedStyle
	}
	return BlackStyle
}

// CardStyle 已出或空位的牌用灰色
func CardStyle(c card.Card) lipgloss.Style {
	if !c.Valid() {
		return GrayStyle
	}
	return SuitStyle(c.Suit())
}

// RoleIcon 身份图标
func RoleIcon(r table.Role) string {
	switch r {
	case table.RoleDeclarer:
		return DeclarerIcon
	case table.RolePartner:
		return PartnerIcon
	case table.RoleAttacker:
		return AttackerIcon
	default:
		return UnknownIcon
	}
}
