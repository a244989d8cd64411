package main

import (
	"flag"
	"log"
	"os"

	"github.com/palemoky/floating-bridge/internal/logger"
	"github.com/palemoky/floating-bridge/internal/sound"
	"github.com/palemoky/floating-bridge/internal/ui"
)

func main() {
	serverAddr := flag.String("server", "ws://localhost:1780/ws", "服务器地址（ws:// 或 host:port 的 TCP 地址）")
	name := flag.String("name", defaultName(), "玩家昵称")
	local := flag.Bool("local", false, "单机模式，与三个电脑玩家对局")
	soundDir := flag.String("sounds", sound.DefaultDir, "音效目录")
	mute := flag.Bool("mute", false, "关闭音效")
	flag.Parse()

	if err := logger.Init("client"); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer logger.Close()

	var sm *sound.Manager
	if !*mute {
		sm = sound.NewManager(*soundDir)
		if err := sm.Init(); err != nil {
			log.Printf("音效不可用: %v", err)
		}
		defer sm.Close()
	}

	if *local {
		if err := ui.Run(ui.NewLocalModel(*name, sm)); err != nil {
			log.Fatalf("启动客户端时出错: %v", err)
		}
		return
	}

	m := ui.NewOnlineModel(*serverAddr, *name, sm)
	defer m.Close()
	if err := ui.Run(m); err != nil {
		log.Fatalf("启动客户端时出错: %v", err)
	}
}

func defaultName() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "玩家"
}
