package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"dungeonbot/internal/client"
	"dungeonbot/pkg/ai"
)

func main() {
	address := flag.String("addr", "localhost:8080", "服务器地址")
	proto := flag.String("proto", "tcp", "传输协议: tcp 或 kcp")
	name := flag.String("name", "bot", "玩家名")
	token := flag.String("token", "", "重连 Token")
	cautious := flag.Bool("cautious", false, "使用谨慎配置")
	flag.Parse()

	cfg := &ai.AIConfigNormal
	if *cautious {
		cfg = &ai.AIConfigCautious
	}

	bot := client.NewBotClient(*address, *proto, *name, cfg)
	if err := bot.Connect(*token); err != nil {
		log.Fatalf("加入对局失败: %v", err)
	}
	defer bot.Close()

	log.Printf("玩家 ID: %d", bot.PlayerID())
	log.Printf("重连 Token: %s", bot.Token())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	over, err := bot.Wait(ctx)
	if err != nil {
		log.Printf("对局中断: %v", err)
		return
	}

	if over.Winner < 0 {
		log.Printf("对局结束于 tick %d: 平局", over.Tick)
	} else {
		log.Printf("对局结束于 tick %d: 玩家 %d 获胜", over.Tick, over.Winner)
	}
	for _, p := range over.Players {
		log.Printf("玩家 %d: 奖励 %d，生命 %d", p.ID, p.Reward, p.HP)
	}
	st := bot.Controller().State()
	log.Printf("逃生失败 %d 次，位置重同步 %d 次", st.EscapeFailures, st.Resyncs)
}
