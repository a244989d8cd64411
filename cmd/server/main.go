package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/palemoky/floating-bridge/internal/config"
	"github.com/palemoky/floating-bridge/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("加载配置文件失败，使用默认配置: %v", err)
		cfg = config.Default()
	}

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("创建服务器失败: %v", err)
	}

	// SIGUSR1 进入维护模式并等待牌桌打完；SIGINT/SIGTERM 立即保存并关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)

	go func() {
		sig := <-quit
		if sig == syscall.SIGUSR1 {
			log.Println("收到维护信号，等待牌桌结束...")
			srv.GracefulShutdown(cfg.Game.ShutdownTimeoutDuration())
		} else {
			log.Println("正在关闭服务器...")
			srv.Shutdown()
		}
		os.Exit(0)
	}()

	// 启动服务器
	log.Println("🃏 浮动桥牌服务器启动中...")
	if err := srv.Start(); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
}
