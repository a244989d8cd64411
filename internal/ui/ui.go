// Package ui 终端界面入口
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/floating-bridge/internal/sound"
	"github.com/palemoky/floating-bridge/internal/ui/model"
)

// NewOnlineModel 连接 addr 的联网对局
func NewOnlineModel(addr, name string, sm *sound.Manager) *model.OnlineModel {
	return model.NewOnlineModel(model.OnlineOptions{Addr: addr, Name: name, Sound: sm})
}

// NewLocalModel 与三个电脑玩家的单机对局
func NewLocalModel(name string, sm *sound.Manager) *model.LocalModel {
	return model.NewLocalModel(model.LocalOptions{Name: name, Sound: sm})
}

// Run 在全屏模式下运行界面直到退出
func Run(m tea.Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
