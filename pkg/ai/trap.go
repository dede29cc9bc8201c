package ai

import "dungeonbot/pkg/core"

// TrapInfo 陷阱检测结果
type TrapInfo struct {
	IsTrap bool
	// Escape 唯一出口（走廊尽头的岔路口），没有出口时为 nil
	Escape *core.GridPos
	// Classifiable 地形能否归类；出口或死胡同多于一个时为 false
	Classifiable bool
}

// TrapDetector 沿走廊有限深度搜索，判断格子是否处于只有一个出口的死胡同里
type TrapDetector struct {
	Grid     core.GridQuery
	Opponent int
	Depth    int
}

// Classify 对 loc 周围地形分类
//
// 从每个可通行邻格出发沿走廊前进：没有后继的格子是死胡同，
// 有两个以上后继的格子（或者超出搜索深度）是出口。
func (d *TrapDetector) Classify(loc core.GridPos) TrapInfo {
	starts := passableNeighbors(d.Grid, loc, d.Opponent)
	if len(starts) == 0 {
		return TrapInfo{IsTrap: true, Classifiable: true}
	}

	var exits []core.GridPos
	deadEnds := 0
	for _, start := range starts {
		exit, dead := d.walkCorridor(loc, start)
		if dead {
			deadEnds++
		} else {
			exits = append(exits, exit)
		}
		if len(exits) > 1 || deadEnds > 1 {
			return TrapInfo{}
		}
	}

	if len(exits) == 1 {
		escape := exits[0]
		return TrapInfo{IsTrap: true, Escape: &escape, Classifiable: true}
	}
	return TrapInfo{IsTrap: true, Classifiable: true}
}

// walkCorridor 从 start 沿单行道前进，返回出口格或者是否走进死胡同
func (d *TrapDetector) walkCorridor(origin, start core.GridPos) (core.GridPos, bool) {
	visited := map[core.GridPos]bool{origin: true, start: true}
	prev, cur := origin, start
	for depth := 0; ; depth++ {
		if depth >= d.Depth {
			return cur, false
		}
		var next []core.GridPos
		for _, n := range passableNeighbors(d.Grid, cur, d.Opponent) {
			if n != prev {
				next = append(next, n)
			}
		}
		switch {
		case len(next) == 0:
			return cur, true
		case len(next) >= 2:
			return cur, false
		}
		// 绕回走过的格子说明是环路，可以自由进出
		if visited[next[0]] {
			return cur, false
		}
		visited[next[0]] = true
		prev, cur = cur, next[0]
	}
}
