package ai

import (
	"dungeonbot/pkg/ai/bt"
	"dungeonbot/pkg/core"
)

// canPlant 可以在当前位置放炸弹：有弹药、有收益、脚下没有炸弹，且放下后能逃出爆炸范围
func canPlant(board *Blackboard) bool {
	st := board.State
	loc := st.Location
	if board.Ammo <= 0 || st.Threat.HasBomb(loc) || board.Query.EntityAt(loc) == core.EntityBomb {
		return false
	}
	if board.Scorer.BombingValue(loc, st.Stage, board.Ammo) <= 0 {
		return false
	}
	_, ok := escapeRoute(board.Query, st.Threat.WithBomb(loc), loc, st.Opponent)
	return ok
}

// actFollowPath 根据路径产生本 tick 的动作
//
// 路径为空：能放炸弹就放，身处爆炸范围就撤离，否则不动。
// 路径非空：下一步必须是可走入的相邻格；下一步即将被炸而当前格安全时原地等待。
func actFollowPath(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	st := board.State
	loc := st.Location

	if len(st.Path) == 0 {
		switch {
		case canPlant(board):
			board.emit(core.ActionPlantBomb)
		case st.Threat.InBlast(loc):
			if route, ok := escapeRoute(board.Query, st.Threat, loc, st.Opponent); ok && len(route) > 0 {
				board.emit(core.ActionToward(loc, route[0]))
			} else {
				board.emit(core.ActionNoOp)
			}
		default:
			board.emit(core.ActionNoOp)
		}
		return bt.StatusSuccess
	}

	next := st.Path[0]
	if !core.IsAdjacent(loc, next) || !board.passable(next) {
		st.dropPlan()
		board.emit(core.ActionNoOp)
		return bt.StatusSuccess
	}

	window := board.Config.MaxDesync + 1
	if !st.Threat.IsSafe(next, board.Tick, window) && st.Threat.IsSafe(loc, board.Tick, window) {
		board.emit(core.ActionNoOp)
		return bt.StatusSuccess
	}

	st.Path = st.Path[1:]
	board.emit(core.ActionToward(loc, next))
	return bt.StatusSuccess
}
