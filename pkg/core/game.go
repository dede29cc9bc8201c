package core

import (
	"fmt"
	"math/rand"
)

// Game 游戏状态（纯逻辑，不包含渲染），以 tick 为单位推进
type Game struct {
	Rules      Rules
	Map        *GameMap
	Players    []*Player
	Bombs      []*Bomb
	Explosions []*Explosion
	TickNum    int

	Over   bool
	Winner int // -1 表示平局

	rng *rand.Rand
}

// NewGame 使用默认地图创建新游戏
func NewGame(seed int64) *Game {
	g, err := NewGameWithTemplate(DefaultRules, DefaultTemplate, seed)
	if err != nil {
		// 默认模板是固定的，解析失败属于编程错误
		panic(err)
	}
	return g
}

// NewGameWithTemplate 使用指定规则与地图模板创建游戏（种子保证确定性）
func NewGameWithTemplate(rules Rules, template []string, seed int64) (*Game, error) {
	m, err := NewGameMap(template, rules.OreHits)
	if err != nil {
		return nil, err
	}
	rules.Width, rules.Height = m.Width, m.Height

	g := &Game{
		Rules:  rules,
		Map:    m,
		Winner: -1,
		rng:    rand.New(rand.NewSource(seed)),
	}
	for id := 0; id <= 9; id++ {
		if pos, ok := m.Spawns[id]; ok {
			g.Players = append(g.Players, NewPlayer(id, pos, rules))
		}
	}
	if len(g.Players) < 2 {
		return nil, fmt.Errorf("地图至少需要两个出生点，实际 %d", len(g.Players))
	}
	return g, nil
}

// GetPlayer 根据ID获取玩家
func (g *Game) GetPlayer(id int) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// BombAt 返回指定格子上的炸弹
func (g *Game) BombAt(pos GridPos) *Bomb {
	for _, b := range g.Bombs {
		if b.Pos == pos {
			return b
		}
	}
	return nil
}

// View 返回指定玩家视角的快照
func (g *Game) View(playerID int) *Snapshot {
	snap := &Snapshot{
		Width:   g.Map.Width,
		Height:  g.Map.Height,
		Cells:   make([]Entity, len(g.Map.Tiles)),
		Bombs:   make([]GridPos, 0, len(g.Bombs)),
		Players: make([]PlayerState, 0, len(g.Players)),
		Self:    playerID,
		TickNum: g.TickNum,
	}
	copy(snap.Cells, g.Map.Tiles)
	for _, b := range g.Bombs {
		snap.Bombs = append(snap.Bombs, b.Pos)
	}
	for _, p := range g.Players {
		snap.Players = append(snap.Players, p.PlayerState)
	}
	return snap
}

// Step 应用本 tick 所有玩家的动作并推进一个 tick
//
// 缺少动作的玩家视为 no_op，并记一次 Missed。
func (g *Game) Step(actions map[int]Action) {
	if g.Over {
		return
	}
	g.TickNum++

	g.applyMoves(actions)
	g.applyPlants(actions)
	g.detonate()
	g.expireExplosions()
	g.spawnPickup()
	g.checkGameOver()
}

// applyMoves 同时结算所有移动，目标冲突的玩家都留在原地
func (g *Game) applyMoves(actions map[int]Action) {
	targets := make(map[int]GridPos, len(g.Players))
	for _, p := range g.Players {
		if p.Dead() {
			continue
		}
		action, ok := actions[p.ID]
		if !ok {
			p.Missed++
			continue
		}
		if !action.IsMove() {
			continue
		}
		next := p.Pos.Add(action.Delta())
		if !g.Map.InBounds(next) || g.Map.GetTile(next).IsBlock() || g.BombAt(next) != nil {
			continue
		}
		targets[p.ID] = next
	}

	for id, next := range targets {
		blocked := false
		for _, other := range g.Players {
			if other.ID == id || other.Dead() {
				continue
			}
			otherNext, moving := targets[other.ID]
			self := g.GetPlayer(id).Pos
			swapping := moving && otherNext == self && other.Pos == next
			if (moving && otherNext == next) || (!moving && other.Pos == next) || swapping {
				blocked = true
				break
			}
		}
		if !blocked {
			g.GetPlayer(id).Pos = next
		}
	}

	for _, p := range g.Players {
		if !p.Dead() {
			g.collectPickup(p)
		}
	}
}

func (g *Game) collectPickup(p *Player) {
	switch g.Map.GetTile(p.Pos) {
	case EntityAmmo:
		p.Ammo++
		g.Map.SetTile(p.Pos, EntityEmpty)
	case EntityTreasure:
		p.Reward += RewardTreasure
		g.Map.SetTile(p.Pos, EntityEmpty)
	}
}

func (g *Game) applyPlants(actions map[int]Action) {
	for _, p := range g.Players {
		if p.Dead() || actions[p.ID] != ActionPlantBomb {
			continue
		}
		if p.Ammo <= 0 || g.BombAt(p.Pos) != nil {
			continue
		}
		p.Ammo--
		g.Bombs = append(g.Bombs, NewBomb(p.Pos, p.ID, g.TickNum, g.Rules.FuseTicks))
	}
}

// detonate 引爆到期的炸弹，波及到的炸弹在同一 tick 连锁爆炸
func (g *Game) detonate() {
	queue := make([]*Bomb, 0)
	exploding := make(map[*Bomb]bool)
	for _, b := range g.Bombs {
		if b.ShouldExplode(g.TickNum) {
			queue = append(queue, b)
			exploding[b] = true
		}
	}
	if len(queue) == 0 {
		return
	}

	view := g.View(-1)
	hitBy := make(map[GridPos][]int) // 格子 -> 炸弹所有者
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		for _, cell := range BlastFootprint(view, b.Pos, g.Rules.BlastRadius) {
			hitBy[cell] = append(hitBy[cell], b.OwnerID)
			if other := g.BombAt(cell); other != nil && !exploding[other] {
				exploding[other] = true
				queue = append(queue, other)
			}
		}
	}

	cells := make([]GridPos, 0, len(hitBy))
	for cell, owners := range hitBy {
		cells = append(cells, cell)
		owner := g.GetPlayer(owners[0])
		switch g.Map.GetTile(cell) {
		case EntitySoftBlock:
			g.Map.SetTile(cell, EntityEmpty)
			if owner != nil {
				owner.Reward += RewardSoftBlock
			}
		case EntityOreBlock:
			if g.Map.HitOre(cell) && owner != nil {
				owner.Reward += RewardOre
			}
		}
		for _, p := range g.Players {
			if p.Dead() || p.Pos != cell {
				continue
			}
			p.Damage()
			for _, ownerID := range owners {
				if ownerID != p.ID {
					if attacker := g.GetPlayer(ownerID); attacker != nil {
						attacker.Reward += RewardHit
					}
					break
				}
			}
		}
	}

	remaining := g.Bombs[:0]
	for _, b := range g.Bombs {
		if !exploding[b] {
			remaining = append(remaining, b)
		}
	}
	g.Bombs = remaining

	g.Explosions = append(g.Explosions, &Explosion{
		Cells:     cells,
		CreatedAt: g.TickNum,
		ExpiresAt: g.TickNum + 3,
	})
}

func (g *Game) expireExplosions() {
	remaining := g.Explosions[:0]
	for _, e := range g.Explosions {
		if !e.IsExpired(g.TickNum) {
			remaining = append(remaining, e)
		}
	}
	g.Explosions = remaining
}

// spawnPickup 按固定间隔在随机空地刷新弹药或宝藏
func (g *Game) spawnPickup() {
	if g.Rules.PickupInterval <= 0 || g.TickNum%g.Rules.PickupInterval != 0 {
		return
	}
	free := make([]GridPos, 0)
	for y := 0; y < g.Map.Height; y++ {
		for x := 0; x < g.Map.Width; x++ {
			pos := GridPos{X: x, Y: y}
			if g.Map.GetTile(pos) != EntityEmpty || g.BombAt(pos) != nil {
				continue
			}
			occupied := false
			for _, p := range g.Players {
				if !p.Dead() && p.Pos == pos {
					occupied = true
					break
				}
			}
			if !occupied {
				free = append(free, pos)
			}
		}
	}
	if len(free) == 0 {
		return
	}
	pos := free[g.rng.Intn(len(free))]
	if g.rng.Intn(2) == 0 {
		g.Map.SetTile(pos, EntityAmmo)
	} else {
		g.Map.SetTile(pos, EntityTreasure)
	}
}

// checkGameOver 有玩家死亡或达到最大 tick 时结束
func (g *Game) checkGameOver() {
	alive := make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		if !p.Dead() {
			alive = append(alive, p)
		}
	}

	switch {
	case len(alive) == 1:
		g.Over = true
		g.Winner = alive[0].ID
	case len(alive) == 0:
		g.Over = true
		g.Winner = -1
	case g.Rules.MaxTicks > 0 && g.TickNum >= g.Rules.MaxTicks:
		g.Over = true
		g.Winner = g.leader()
	}
}

// leader 奖励最高的存活玩家，平手返回 -1
func (g *Game) leader() int {
	best, bestReward := -1, -1
	for _, p := range g.Players {
		if p.Dead() {
			continue
		}
		switch {
		case p.Reward > bestReward:
			best, bestReward = p.ID, p.Reward
		case p.Reward == bestReward:
			best = -1
		}
	}
	return best
}
