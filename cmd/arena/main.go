package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"dungeonbot/internal/client"
	"dungeonbot/pkg/ai"
)

func main() {
	n := flag.Int("n", 10, "对局数")
	seed := flag.Int64("seed", 1, "起始种子，第 i 局使用 seed+i")
	view := flag.Bool("view", false, "打开窗口观看单局")
	tps := flag.Int("tps", 10, "观看时每秒 tick 数")
	flag.Parse()

	if *view {
		match := client.NewMatch(*seed, &ai.AIConfigNormal, &ai.AIConfigCautious)
		viewer := client.NewViewer(match, *tps)
		w, h := viewer.ScreenSize()
		ebiten.SetWindowSize(w, h)
		ebiten.SetWindowTitle(fmt.Sprintf("地牢机器人 - 种子 %d", *seed))
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
		ebiten.SetTPS(client.FPS)
		if err := ebiten.RunGame(viewer); err != nil {
			log.Fatal(err)
		}
		return
	}

	wins := make(map[int]int)
	var ticks, escapeFailures int
	for i := 0; i < *n; i++ {
		res := client.NewMatch(*seed+int64(i), &ai.AIConfigNormal, &ai.AIConfigCautious).Run()
		fmt.Println(res)
		wins[res.Winner]++
		ticks += res.Ticks
		for _, p := range res.Players {
			escapeFailures += p.EscapeFailures
		}
	}
	if *n <= 0 {
		return
	}

	fmt.Println("========================================")
	fmt.Printf("共 %d 局，平均 %.1f tick\n", *n, float64(ticks)/float64(*n))
	fmt.Printf("P0 (普通) 胜 %d，P1 (谨慎) 胜 %d，平局 %d\n", wins[0], wins[1], wins[-1])
	fmt.Printf("逃生失败合计 %d 次\n", escapeFailures)
}
