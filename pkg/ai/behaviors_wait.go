package ai

import (
	"dungeonbot/pkg/ai/bt"
	"dungeonbot/pkg/core"
)

// actStandBy 没有可达的有价值目标
//
// 有弹药时原地待命（等待新的机会），没有弹药时去地图中心的等待点。
func actStandBy(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	st := board.State
	st.dropPlan()

	if board.Ammo > 0 {
		return bt.StatusSuccess
	}

	tiles := board.Config.waitingTiles(board.Query)
	if core.ContainsCell(tiles, st.Location) {
		return bt.StatusSuccess
	}
	for _, tile := range tiles {
		if !board.passable(tile) {
			continue
		}
		budget := Budget(board.Config.PathBudgetBase, st.Location, tile)
		if path, ok := board.Paths.FindPath(st.Location, tile, budget, true); ok {
			target := tile
			st.Target = &target
			st.Path = path
			return bt.StatusSuccess
		}
	}
	return bt.StatusSuccess
}
