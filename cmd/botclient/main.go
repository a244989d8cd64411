package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/palemoky/floating-bridge/internal/game/player"
	"github.com/palemoky/floating-bridge/internal/network/client"
	"github.com/palemoky/floating-bridge/internal/protocol"
)

func main() {
	addr := flag.String("server", "localhost:1781", "服务器地址（TCP host:port 或 ws:// URL）")
	name := flag.String("name", "bot", "玩家名，多个机器人时追加序号")
	count := flag.Int("n", 1, "机器人数量")
	verbose := flag.Bool("v", false, "打印每条消息")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for i := range *count {
		playerName := *name
		if *count > 1 {
			playerName = fmt.Sprintf("%s%d", *name, i+1)
		}

		c := client.NewClient(*addr, playerName)
		c.OnReconnecting = func(attempt, max int) {
			log.Printf("[%s] 正在重连 (%d/%d)", playerName, attempt, max)
		}
		if err := c.Connect(); err != nil {
			log.Printf("[%s] 连接失败: %v", playerName, err)
			os.Exit(1)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer c.Close()
			err := c.AutoPlay(ctx, player.NewBot(), func(msg *protocol.Message) {
				report(playerName, msg, *verbose)
			})
			if err != nil && ctx.Err() == nil {
				log.Printf("[%s] 退出: %v", playerName, err)
			}
		}()
	}
	wg.Wait()
}

// report 打印入座和每局结果
func report(name string, msg *protocol.Message, verbose bool) {
	switch msg.Event {
	case protocol.EvtWelcome:
		log.Printf("[%s] 入座 %d", name, msg.SeatOf())
	case protocol.EvtReconnected:
		log.Printf("[%s] 重连成功，座位 %d", name, msg.SeatOf())
	case protocol.EvtRoundEnd:
		if r := msg.Result; r != nil {
			if r.Voided {
				log.Printf("[%s] 本局作废，重新发牌", name)
			} else {
				log.Printf("[%s] 本局结束: %s 获胜，墩数 %v", name, r.Winner, r.Tricks)
			}
		}
	default:
		if verbose {
			log.Printf("[%s] %+v", name, *msg)
		}
	}
}
