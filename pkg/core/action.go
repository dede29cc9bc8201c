package core

import "fmt"

// Action 每个 tick 玩家提交的单个动作
type Action int

const (
	ActionNoOp Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionPlantBomb
)

// Actions 全部动作
var Actions = []Action{ActionNoOp, ActionUp, ActionDown, ActionLeft, ActionRight, ActionPlantBomb}

// Symbol 引擎使用的动作字符
func (a Action) Symbol() string {
	switch a {
	case ActionUp:
		return "u"
	case ActionDown:
		return "d"
	case ActionLeft:
		return "l"
	case ActionRight:
		return "r"
	case ActionPlantBomb:
		return "b"
	}
	return ""
}

func (a Action) String() string {
	switch a {
	case ActionNoOp:
		return "no_op"
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionPlantBomb:
		return "plant_bomb"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// IsMove 是否为移动动作
func (a Action) IsMove() bool {
	return a >= ActionUp && a <= ActionRight
}

// Delta 移动动作对应的坐标偏移
func (a Action) Delta() GridPos {
	switch a {
	case ActionUp:
		return GridPos{X: 0, Y: 1}
	case ActionDown:
		return GridPos{X: 0, Y: -1}
	case ActionLeft:
		return GridPos{X: -1, Y: 0}
	case ActionRight:
		return GridPos{X: 1, Y: 0}
	}
	return GridPos{}
}

// ParseAction 解析动作字符
func ParseAction(s string) (Action, error) {
	switch s {
	case "":
		return ActionNoOp, nil
	case "u":
		return ActionUp, nil
	case "d":
		return ActionDown, nil
	case "l":
		return ActionLeft, nil
	case "r":
		return ActionRight, nil
	case "b", "p":
		return ActionPlantBomb, nil
	}
	return ActionNoOp, fmt.Errorf("未知动作: %q", s)
}

// ActionToward 从 from 走到相邻格 to 的动作，不相邻时返回 ActionNoOp
func ActionToward(from, to GridPos) Action {
	switch to.Sub(from) {
	case GridPos{X: 0, Y: 1}:
		return ActionUp
	case GridPos{X: 0, Y: -1}:
		return ActionDown
	case GridPos{X: -1, Y: 0}:
		return ActionLeft
	case GridPos{X: 1, Y: 0}:
		return ActionRight
	}
	return ActionNoOp
}
