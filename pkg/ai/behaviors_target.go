package ai

import (
	"sort"

	"dungeonbot/pkg/ai/bt"
	"dungeonbot/pkg/core"
)

// actUpdateStage 更新对局阶段，阶段只前进不后退
//
// 还有软砖时停留在开局（软砖长时间不变则进入中局）；软砖清空后按是否还有矿石进入中局或终局。
func actUpdateStage(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	st := board.State
	q := board.Query

	soft := q.SoftBlockCount()
	next := StageOpening
	switch {
	case soft == 0 && len(q.OreBlocks()) == 0:
		next = StageEnd
	case soft == 0:
		next = StageMiddle
	case soft != st.SoftCount:
		st.SoftCount = soft
		st.SoftChangedAt = board.Tick
	case board.Tick-st.SoftChangedAt >= board.Config.StageStallTicks && len(st.Threat.Bombs) == 0:
		// 软砖长时间没有变化，剩下的大概率够不着
		next = StageMiddle
	}
	if next > st.Stage {
		st.Stage = next
	}
	return bt.StatusSuccess
}

type valueTier struct {
	Value float64
	Tiles []core.GridPos
}

// rankTiles 按得分把可走入的格子分层，得分高的在前；同层按距离、坐标排序
func rankTiles(board *Blackboard) []valueTier {
	q := board.Query
	st := board.State
	w, h := q.Size()

	byValue := make(map[float64][]core.GridPos)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pos := core.GridPos{X: x, Y: y}
			if !board.passable(pos) || st.Threat.InBlast(pos) {
				continue
			}
			if v := board.Scorer.Score(pos, st.Stage, board.Ammo); v > 0 {
				byValue[v] = append(byValue[v], pos)
			}
		}
	}

	tiers := make([]valueTier, 0, len(byValue))
	for v, tiles := range byValue {
		sort.Slice(tiles, func(i, j int) bool {
			di, dj := core.Manhattan(st.Location, tiles[i]), core.Manhattan(st.Location, tiles[j])
			if di != dj {
				return di < dj
			}
			if tiles[i].Y != tiles[j].Y {
				return tiles[i].Y < tiles[j].Y
			}
			return tiles[i].X < tiles[j].X
		})
		tiers = append(tiers, valueTier{Value: v, Tiles: tiles})
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Value > tiers[j].Value })
	return tiers
}

// vetoed 目标处于陷阱中，且出口不存在或者在往返期间会被炸
func vetoed(board *Blackboard, tile core.GridPos) bool {
	if tile == board.State.Location {
		return false
	}
	info := board.Traps.Classify(tile)
	if !info.IsTrap {
		return false
	}
	if info.Escape == nil {
		return true
	}
	roundTrip := 2*core.Manhattan(board.State.Location, tile) + board.Config.MaxDesync
	return !board.State.Threat.IsSafe(*info.Escape, board.Tick, roundTrip)
}

// pathStillValid 已有路径的下一步仍是可走入的相邻格
func pathStillValid(board *Blackboard) bool {
	st := board.State
	if len(st.Path) == 0 {
		return false
	}
	next := st.Path[0]
	return core.IsAdjacent(st.Location, next) && board.passable(next)
}

// actSelectTarget 选择目标并规划路径
//
// 从得分最高的一层开始：当前位置就在该层则原地行动；原目标仍在该层且路径有效则沿用；
// 否则对该层所有候选寻路，取最短的一条。所有层都不可达时转入待命。
func actSelectTarget(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	st := board.State
	cur := st.Location

	for _, tier := range rankTiles(board) {
		if core.ContainsCell(tier.Tiles, cur) {
			target := cur
			st.Target = &target
			st.Path = nil
			return bt.StatusSuccess
		}
		if st.Target != nil && core.ContainsCell(tier.Tiles, *st.Target) && pathStillValid(board) {
			return bt.StatusSuccess
		}

		var bestPath []core.GridPos
		var bestTile core.GridPos
		found := false
		for _, tile := range tier.Tiles {
			if vetoed(board, tile) {
				continue
			}
			budget := Budget(board.Config.PathBudgetBase, cur, tile)
			path, ok := board.Paths.FindPath(cur, tile, budget, true)
			if !ok {
				continue
			}
			if !found || len(path) < len(bestPath) {
				bestPath, bestTile, found = path, tile, true
			}
		}
		if found {
			st.Target = &bestTile
			st.Path = bestPath
			return bt.StatusSuccess
		}
	}

	return actStandBy(bb)
}
