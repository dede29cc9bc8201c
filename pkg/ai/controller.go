package ai

import (
	"log"

	"dungeonbot/pkg/ai/bt"
	"dungeonbot/pkg/core"
)

// decisionTree 每个 tick 的决策流程：
// 不同步则等待；有危险则逃生；否则更新阶段、选目标、沿路径行动
var decisionTree bt.Node = &bt.Selector{Children: []bt.Node{
	&bt.Sequence{Children: []bt.Node{
		&bt.Condition{Check: condDesynced},
		&bt.Action{Do: actHoldForResync},
	}},
	&bt.Sequence{Children: []bt.Node{
		&bt.Condition{Check: condInDanger},
		&bt.Succeeder{Child: &bt.Action{Do: actEscape}},
	}},
	&bt.Sequence{Children: []bt.Node{
		&bt.Action{Do: actUpdateStage},
		&bt.Action{Do: actSelectTarget},
		&bt.Action{Do: actFollowPath},
	}},
}}

// Decide 根据快照计算本 tick 的动作，返回新的状态，不修改传入的 state
func Decide(state AgentState, q core.GridQuery, cfg *AIConfig) (core.Action, AgentState) {
	if cfg == nil {
		cfg = &AIConfigNormal
	}
	if _, alive := q.PlayerLocation(q.PlayerID()); !alive {
		return core.ActionNoOp, state
	}

	var next AgentState
	if state.Started {
		next = state.Clone()
	} else {
		next = NewAgentState(q)
	}

	board := newBlackboard(q, cfg, &next)
	syncCheck(board)
	next.Threat.Update(q)

	board.Action = core.ActionNoOp
	decisionTree.Tick(board.AsBT())

	next.record(board.Action, cfg.MoveHistorySize)
	return board.Action, next
}

// AIController 为单个玩家持有决策状态，每个 tick 调用一次 Decide
type AIController struct {
	PlayerID int
	config   *AIConfig
	state    AgentState
	logger   *log.Logger
}

// NewAIController 创建 AI 控制器，使用默认配置
func NewAIController(playerID int) *AIController {
	return NewAIControllerWithConfig(playerID, &AIConfigNormal)
}

// NewAIControllerWithConfig 创建 AI 控制器，使用指定配置
func NewAIControllerWithConfig(playerID int, config *AIConfig) *AIController {
	if config == nil {
		config = &AIConfigNormal
	}
	return &AIController{
		PlayerID: playerID,
		config:   config,
		logger:   log.Default(),
	}
}

// Decide 计算动作并记录关键状态变化（逃生失败、强制同步、阶段切换）
func (c *AIController) Decide(q core.GridQuery) core.Action {
	prev := c.state
	action, next := Decide(c.state, q, c.config)
	c.state = next

	if next.EscapeFailures > prev.EscapeFailures {
		c.logger.Printf("玩家 %d 在 tick %d 无路可逃，位置 %v", c.PlayerID, q.Tick(), next.Location)
	}
	if next.Resyncs > prev.Resyncs {
		c.logger.Printf("玩家 %d 连续 %d 次不同步，采用引擎位置 %v", c.PlayerID, c.config.MaxDesync+1, next.Location)
	}
	if prev.Started && next.Stage != prev.Stage {
		c.logger.Printf("玩家 %d 进入 %s 阶段 (tick %d)", c.PlayerID, next.Stage, q.Tick())
	}
	return action
}

// Reset 清空状态，开始新的一局
func (c *AIController) Reset() {
	c.state = AgentState{}
}

// State 返回当前决策状态的副本
func (c *AIController) State() AgentState {
	return c.state.Clone()
}

// GetConfig 获取当前配置
func (c *AIController) GetConfig() *AIConfig {
	return c.config
}

// SetConfig 设置新配置
func (c *AIController) SetConfig(config *AIConfig) {
	if config == nil {
		return
	}
	c.config = config
}

// SetLogger 设置日志输出，nil 表示恢复默认
func (c *AIController) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	c.logger = logger
}
