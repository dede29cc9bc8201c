package ai

import (
	"math"
	"sort"

	"dungeonbot/pkg/core"
)

const neverTick = math.MaxInt32

// ThreatModel 跟踪场上炸弹与矿石耐久，每个 tick 从引擎的炸弹列表完整重建危险图
//
// 炸弹以首次观察到的 tick 作为放置 tick，引爆 tick = 放置 tick + FuseTicks。
// 矿石伤害在放置时预先计入。
type ThreatModel struct {
	FuseTicks int
	Radius    int

	Bombs map[core.GridPos]int // 炸弹位置 -> 放置 tick
	Ores  map[core.GridPos]int // 矿石位置 -> 剩余耐久（扣除已放置炸弹的预计伤害）

	// Earliest 格子 -> 最早不安全的 tick
	Earliest map[core.GridPos]int

	detonate map[core.GridPos]int   // 炸弹 -> 考虑连锁后的实际引爆 tick
	cover    map[core.GridPos][]int // 格子 -> 覆盖它的所有引爆 tick
	grid     core.GridQuery
	tick     int
}

func NewThreatModel() *ThreatModel {
	return &ThreatModel{
		FuseTicks: core.FuseTicks,
		Radius:    core.BlastRadius,
		Bombs:     make(map[core.GridPos]int),
		Earliest:  make(map[core.GridPos]int),
		detonate:  make(map[core.GridPos]int),
		cover:     make(map[core.GridPos][]int),
	}
}

// Update 使用快照中的炸弹列表与 tick 更新模型
func (tm *ThreatModel) Update(q core.GridQuery) {
	tm.Observe(q, q.LiveBombs(), q.Tick())
}

// Observe 与引擎炸弹列表比对：新炸弹记录放置 tick 并计入矿石伤害，
// 已到引爆时间或引擎不再上报的炸弹被移除，最后重算危险图。
// 同一 tick 重复调用结果不变。
func (tm *ThreatModel) Observe(q core.GridQuery, liveBombs []core.GridPos, tick int) {
	tm.grid = q
	tm.tick = tick
	tm.syncOres(q)

	live := make(map[core.GridPos]bool, len(liveBombs))
	for _, pos := range liveBombs {
		live[pos] = true
	}

	expired := make(map[core.GridPos]bool)
	for pos, planted := range tm.Bombs {
		if planted+tm.FuseTicks <= tick {
			expired[pos] = true
			delete(tm.Bombs, pos)
		} else if !live[pos] {
			delete(tm.Bombs, pos)
		}
	}

	fresh := make([]core.GridPos, 0)
	for _, pos := range liveBombs {
		if _, ok := tm.Bombs[pos]; ok || expired[pos] {
			continue
		}
		fresh = append(fresh, pos)
	}
	sortCells(fresh)
	for _, pos := range fresh {
		tm.Bombs[pos] = tick
		tm.onBombPlant(pos)
	}

	tm.recompute()
}

// syncOres 首次观察时把所有矿石耐久设为 OreHits，之后移除已被摧毁的矿石
func (tm *ThreatModel) syncOres(q core.GridQuery) {
	ores := q.OreBlocks()
	if tm.Ores == nil {
		tm.Ores = make(map[core.GridPos]int, len(ores))
	}
	present := make(map[core.GridPos]bool, len(ores))
	for _, pos := range ores {
		present[pos] = true
		if _, ok := tm.Ores[pos]; !ok {
			tm.Ores[pos] = core.OreHits
		}
	}
	for pos := range tm.Ores {
		if !present[pos] {
			delete(tm.Ores, pos)
		}
	}
}

// onBombPlant 预先扣除新炸弹会造成的矿石伤害
//
// 紧邻炸弹的矿石如果另一侧已有炸弹，则认为这次命中已经被计入过。
func (tm *ThreatModel) onBombPlant(pos core.GridPos) {
	for _, cell := range tm.BlastFootprint(pos) {
		hits, ok := tm.Ores[cell]
		if !ok {
			continue
		}
		if core.IsAdjacent(pos, cell) {
			behind := cell.Add(cell.Sub(pos))
			if _, queued := tm.Bombs[behind]; queued {
				continue
			}
		}
		if hits > 0 {
			tm.Ores[cell] = hits - 1
		}
	}
}

// recompute 计算连锁后的引爆 tick，并生成每个格子的危险时间
func (tm *ThreatModel) recompute() {
	tm.detonate = make(map[core.GridPos]int, len(tm.Bombs))
	tm.cover = make(map[core.GridPos][]int)
	tm.Earliest = make(map[core.GridPos]int)

	footprints := make(map[core.GridPos][]core.GridPos, len(tm.Bombs))
	for pos, planted := range tm.Bombs {
		tm.detonate[pos] = planted + tm.FuseTicks
		footprints[pos] = tm.BlastFootprint(pos)
	}

	// 连锁爆炸：被波及的炸弹提前到引爆者的时间，直到稳定
	changed := true
	for changed {
		changed = false
		for pos, cells := range footprints {
			when := tm.detonate[pos]
			for _, cell := range cells {
				if other, ok := tm.detonate[cell]; ok && cell != pos && other > when {
					tm.detonate[cell] = when
					changed = true
				}
			}
		}
	}

	for pos, cells := range footprints {
		when := tm.detonate[pos]
		for _, cell := range cells {
			tm.cover[cell] = append(tm.cover[cell], when)
			if earliest, ok := tm.Earliest[cell]; !ok || when < earliest {
				tm.Earliest[cell] = when
			}
		}
	}
}

// BlastFootprint 以当前快照计算炸弹在 loc 爆炸的波及范围（包含 loc）
func (tm *ThreatModel) BlastFootprint(loc core.GridPos) []core.GridPos {
	if tm.grid == nil {
		return []core.GridPos{loc}
	}
	return core.BlastFootprint(tm.grid, loc, tm.Radius)
}

// IsSafe 若有炸弹覆盖 loc 且引爆 tick 落在 [at, at+margin] 内则不安全
func (tm *ThreatModel) IsSafe(loc core.GridPos, at, margin int) bool {
	for _, when := range tm.cover[loc] {
		if when >= at && when <= at+margin {
			return false
		}
	}
	return true
}

// InBlast loc 是否处于任何已跟踪炸弹的波及范围内
func (tm *ThreatModel) InBlast(loc core.GridPos) bool {
	return len(tm.cover[loc]) > 0
}

// EarliestAt 返回 loc 最早不安全的 tick，不受威胁时返回 neverTick
func (tm *ThreatModel) EarliestAt(loc core.GridPos) int {
	if when, ok := tm.Earliest[loc]; ok {
		return when
	}
	return neverTick
}

// HasBomb loc 上是否有已跟踪的炸弹
func (tm *ThreatModel) HasBomb(loc core.GridPos) bool {
	_, ok := tm.Bombs[loc]
	return ok
}

// DetonationTick 返回炸弹考虑连锁后的引爆 tick
func (tm *ThreatModel) DetonationTick(loc core.GridPos) (int, bool) {
	when, ok := tm.detonate[loc]
	return when, ok
}

// OreHits 矿石剩余耐久，未知矿石返回 0
func (tm *ThreatModel) OreHits(loc core.GridPos) int {
	return tm.Ores[loc]
}

func (tm *ThreatModel) Tick() int {
	return tm.tick
}

// WithBomb 返回假设在 loc 放置炸弹后的模型副本，原模型不变
func (tm *ThreatModel) WithBomb(loc core.GridPos) *ThreatModel {
	clone := tm.Clone()
	if _, ok := clone.Bombs[loc]; !ok {
		clone.Bombs[loc] = tm.tick
		clone.onBombPlant(loc)
	}
	clone.recompute()
	return clone
}

// Clone 深拷贝
func (tm *ThreatModel) Clone() *ThreatModel {
	if tm == nil {
		return nil
	}
	clone := &ThreatModel{
		FuseTicks: tm.FuseTicks,
		Radius:    tm.Radius,
		Bombs:     make(map[core.GridPos]int, len(tm.Bombs)),
		Earliest:  make(map[core.GridPos]int, len(tm.Earliest)),
		detonate:  make(map[core.GridPos]int, len(tm.detonate)),
		cover:     make(map[core.GridPos][]int, len(tm.cover)),
		grid:      tm.grid,
		tick:      tm.tick,
	}
	for k, v := range tm.Bombs {
		clone.Bombs[k] = v
	}
	if tm.Ores != nil {
		clone.Ores = make(map[core.GridPos]int, len(tm.Ores))
		for k, v := range tm.Ores {
			clone.Ores[k] = v
		}
	}
	for k, v := range tm.Earliest {
		clone.Earliest[k] = v
	}
	for k, v := range tm.detonate {
		clone.detonate[k] = v
	}
	for k, v := range tm.cover {
		clone.cover[k] = append([]int(nil), v...)
	}
	return clone
}

// sortCells 按 (Y, X) 排序，保证遍历顺序确定
func sortCells(cells []core.GridPos) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
}
