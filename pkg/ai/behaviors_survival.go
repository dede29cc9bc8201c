package ai

import (
	"dungeonbot/pkg/ai/bt"
	"dungeonbot/pkg/core"
)

// syncCheck 比较预测位置与引擎位置
//
// 不一致时累加不同步计数并丢弃当前计划；超过 MaxDesync 后直接采用引擎位置。
func syncCheck(board *Blackboard) {
	st := board.State
	if st.Location == board.Engine {
		st.Desync = 0
		st.Synced = true
		return
	}
	st.Desync++
	if st.Desync > board.Config.MaxDesync {
		st.Location = board.Engine
		st.Desync = 0
		st.Resyncs++
		st.Synced = true
		st.dropPlan()
		return
	}
	st.Missed++
	st.Synced = false
	st.dropPlan()
}

func condDesynced(bb bt.Blackboard) bool {
	board := bb.(*Blackboard)
	return !board.State.Synced
}

// actHoldForResync 位置不可信时原地等待
func actHoldForResync(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	board.emit(core.ActionNoOp)
	return bt.StatusSuccess
}

func dangerWindow(cfg *AIConfig) int {
	return cfg.MaxDesync + 3
}

// condInDanger 当前格即将被炸，或者身处陷阱且唯一出口即将被炸
func condInDanger(bb bt.Blackboard) bool {
	board := bb.(*Blackboard)
	loc := board.State.Location
	threat := board.State.Threat
	window := dangerWindow(board.Config)
	if !threat.IsSafe(loc, board.Tick, window) {
		return true
	}
	info := board.Traps.Classify(loc)
	return info.IsTrap && info.Escape != nil && !threat.IsSafe(*info.Escape, board.Tick, window)
}

// actEscape 逃离危险
//
// 依次尝试：一段时间内安全的邻格；下一步之后还有安全格的邻格。
// 两步之内没有安全格时记录一次逃生失败并原地不动。
func actEscape(bb bt.Blackboard) bt.Status {
	board := bb.(*Blackboard)
	st := board.State
	st.dropPlan()

	if step, ok := findEscapeStep(board); ok {
		board.emit(core.ActionToward(st.Location, step))
		return bt.StatusSuccess
	}
	st.EscapeFailures++
	board.emit(core.ActionNoOp)
	return bt.StatusFailure
}

func findEscapeStep(board *Blackboard) (core.GridPos, bool) {
	st := board.State
	threat := st.Threat
	loc := st.Location
	hold := 2*board.Config.MaxDesync + 1

	neighbors := passableNeighbors(board.Query, loc, st.Opponent)
	for _, n := range neighbors {
		if threat.IsSafe(n, board.Tick, hold) {
			return n, true
		}
	}
	for _, n := range neighbors {
		if !threat.IsSafe(n, board.Tick+1, 0) {
			continue
		}
		for _, next := range passableNeighbors(board.Query, n, st.Opponent) {
			if next != loc && threat.IsSafe(next, board.Tick, hold) {
				return n, true
			}
		}
	}
	return core.GridPos{}, false
}
