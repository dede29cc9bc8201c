package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"dungeonbot/internal/server"
	"dungeonbot/pkg/ai"
)

func main() {
	// 命令行参数
	address := flag.String("addr", ":8080", "服务器监听地址")
	proto := flag.String("proto", "tcp", "传输协议: tcp 或 kcp")
	tps := flag.Int("tps", server.DefaultTPS, "每秒 tick 数")
	seed := flag.Int64("seed", 1, "地图随机种子，第 N 个房间使用 seed+N")
	withAI := flag.Bool("ai", false, "每个房间的最后一个座位由内置 AI 占据")
	cautious := flag.Bool("cautious", false, "内置 AI 使用谨慎配置")
	flag.Parse()

	cfg := server.Config{
		Addr:     *address,
		Proto:    *proto,
		TPS:      *tps,
		Seed:     *seed,
		EnableAI: *withAI,
	}
	if *cautious {
		cfg.AIConfig = &ai.AIConfigCautious
	}

	// 创建服务器
	gameServer := server.NewGameServer(cfg)

	// 启动服务器（在新的 goroutine 中）
	go func() {
		if err := gameServer.Start(); err != nil {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	log.Println("========================================")
	log.Println("  地牢机器人对战服务器")
	log.Println("========================================")
	log.Printf("监听地址: %s (%s)", *address, *proto)
	log.Printf("服务器 TPS: %d", *tps)
	log.Printf("内置 AI: %v", *withAI)
	log.Println("========================================")
	log.Println("服务器正在运行...")
	log.Println("按 Ctrl+C 停止服务器")

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("正在关闭服务器...")
	gameServer.Shutdown()

	log.Println("服务器已关闭，再见！")
}
