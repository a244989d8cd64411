// Package view provides UI rendering functions.
package view

import (
	"github.com/palemoky/floating-bridge/internal/client"
	"github.com/palemoky/floating-bridge/internal/game/card"
	"github.com/palemoky/floating-bridge/internal/game/table"
)

// Board 渲染一帧所需的全部信息
type Board struct {
	View  table.View
	Hand  []card.Card
	Me    int
	Names [table.Seats]string
	// Offline 掉线托管中的座位
	Offline [table.Seats]bool

	Pending *table.Request // 等待自己答复的请求
	Ready   bool           // 本局结束，等待确认
	Result  *table.RoundResult

	Log     []string
	Counter *client.CardCounter // nil 表示不显示记牌器
	Input   string              // 输入框
	Notice  string              // 错误或提示
	Status  string              // 连接状态
	Width   int
}
