package ai

import "dungeonbot/pkg/core"

// AIConfig 定义 AI 的行为参数（评分权重、寻路预算、同步容忍度等）
type AIConfig struct {
	// AmmoWeights 各阶段弹药道具的基础权重，按 Stage 索引
	// 实际得分为 max(权重-当前弹药, MinAmmoWeight)，阶段越靠后越重视补给
	AmmoWeights   [stageCount]float64
	MinAmmoWeight float64

	TreasureReward  float64
	SoftBlockReward float64
	// OreReward 除以矿石剩余耐久得到单次命中的得分
	OreReward    float64
	AttackReward float64
	// IdleReward 终局阶段无事可做时原地待命的得分
	IdleReward float64

	// PathHeuristicWeight 启发式权重，大于 1 时牺牲最优性换取速度
	PathHeuristicWeight float64
	// PathBudgetBase 寻路迭代预算基数，实际预算为 base + d²
	PathBudgetBase int

	// MaxDesync 连续不同步超过该次数后直接采用引擎位置
	MaxDesync int

	MoveHistorySize int

	// StageStallTicks 软砖数量多久没有变化即视为进入中局
	StageStallTicks int

	// TrapSearchDepth 陷阱检测沿走廊搜索的最大深度
	TrapSearchDepth int

	// WaitingTiles 没有目标且没有弹药时的等待点，为空时取地图中心 2x2
	WaitingTiles []core.GridPos

	// ShuffleSeed 非 0 时寻路按种子打乱邻居扩展顺序
	ShuffleSeed int64
}

// 预设配置：普通
var AIConfigNormal = AIConfig{
	AmmoWeights:         [stageCount]float64{3, 5, 7},
	MinAmmoWeight:       1,
	TreasureReward:      1,
	SoftBlockReward:     2,
	OreReward:           10,
	AttackReward:        0.5,
	IdleReward:          0.1,
	PathHeuristicWeight: 2,
	PathBudgetBase:      10,
	MaxDesync:           2,
	MoveHistorySize:     16,
	StageStallTicks:     49,
	TrapSearchDepth:     8,
}

// 预设配置：谨慎，更看重补给，寻路预算更大
var AIConfigCautious = AIConfig{
	AmmoWeights:         [stageCount]float64{5, 5, 7},
	MinAmmoWeight:       1,
	TreasureReward:      1,
	SoftBlockReward:     2,
	OreReward:           10,
	AttackReward:        0,
	IdleReward:          0.1,
	PathHeuristicWeight: 1.5,
	PathBudgetBase:      40,
	MaxDesync:           2,
	MoveHistorySize:     32,
	StageStallTicks:     60,
	TrapSearchDepth:     12,
	ShuffleSeed:         7,
}

// waitingTiles 返回配置的等待点，未配置时取地图中心 2x2
func (c *AIConfig) waitingTiles(q core.GridQuery) []core.GridPos {
	if len(c.WaitingTiles) > 0 {
		return c.WaitingTiles
	}
	w, h := q.Size()
	cx, cy := w/2, h/2
	tiles := make([]core.GridPos, 0, 4)
	for _, p := range []core.GridPos{{X: cx - 1, Y: cy}, {X: cx - 1, Y: cy - 1}, {X: cx, Y: cy}, {X: cx, Y: cy - 1}} {
		if q.InBounds(p) {
			tiles = append(tiles, p)
		}
	}
	return tiles
}
