package client

import (
	"fmt"
	"io"
	"log"

	"dungeonbot/pkg/ai"
	"dungeonbot/pkg/core"
)

// Match 本地对局：权威引擎加上每个玩家一个 AIController
type Match struct {
	Seed int64
	Game *core.Game
	Bots []*ai.AIController
}

// PlayerResult 单个玩家的对局统计
type PlayerResult struct {
	ID             int
	Reward         int
	HP             int
	Missed         int
	EscapeFailures int
	Resyncs        int
}

// MatchResult 对局结果，Winner 为 -1 表示平局
type MatchResult struct {
	Seed    int64
	Winner  int
	Ticks   int
	Players []PlayerResult
}

// NewMatch 用默认地图创建对局，configs 按玩家顺序给出，不足的使用默认配置
func NewMatch(seed int64, configs ...*ai.AIConfig) *Match {
	g := core.NewGame(seed)
	m := &Match{Seed: seed, Game: g}
	quiet := log.New(io.Discard, "", 0)
	for i, p := range g.Players {
		var cfg *ai.AIConfig
		if i < len(configs) {
			cfg = configs[i]
		}
		bot := ai.NewAIControllerWithConfig(p.ID, cfg)
		bot.SetLogger(quiet)
		m.Bots = append(m.Bots, bot)
	}
	return m
}

// SetLogger 为所有控制器设置日志
func (m *Match) SetLogger(logger *log.Logger) {
	for _, bot := range m.Bots {
		bot.SetLogger(logger)
	}
}

// Step 所有存活玩家各决策一次并推进一个 tick，对局结束返回 false
func (m *Match) Step() bool {
	if m.Game.Over {
		return false
	}
	actions := make(map[int]core.Action, len(m.Bots))
	for _, bot := range m.Bots {
		if p := m.Game.GetPlayer(bot.PlayerID); p == nil || p.Dead() {
			continue
		}
		actions[bot.PlayerID] = bot.Decide(m.Game.View(bot.PlayerID))
	}
	m.Game.Step(actions)
	return !m.Game.Over
}

// Run 一直推进到对局结束
func (m *Match) Run() MatchResult {
	for m.Step() {
	}
	return m.Result()
}

// Result 当前统计（对局未结束时 Winner 为 -1）
func (m *Match) Result() MatchResult {
	res := MatchResult{Seed: m.Seed, Winner: -1, Ticks: m.Game.TickNum}
	if m.Game.Over {
		res.Winner = m.Game.Winner
	}
	for _, bot := range m.Bots {
		p := m.Game.GetPlayer(bot.PlayerID)
		st := bot.State()
		res.Players = append(res.Players, PlayerResult{
			ID:             p.ID,
			Reward:         p.Reward,
			HP:             p.HP,
			Missed:         p.Missed,
			EscapeFailures: st.EscapeFailures,
			Resyncs:        st.Resyncs,
		})
	}
	return res
}

func (r MatchResult) String() string {
	winner := "平局"
	if r.Winner >= 0 {
		winner = fmt.Sprintf("玩家 %d", r.Winner)
	}
	s := fmt.Sprintf("种子 %d: %d tick，获胜者 %s", r.Seed, r.Ticks, winner)
	for _, p := range r.Players {
		s += fmt.Sprintf(" | P%d 奖励=%d 生命=%d 逃生失败=%d", p.ID, p.Reward, p.HP, p.EscapeFailures)
	}
	return s
}
