package ai

import (
	"math/rand"

	"dungeonbot/pkg/ai/bt"
	"dungeonbot/pkg/core"
)

// Stage 对局阶段
type Stage int

const (
	StageOpening Stage = iota // 还有软砖
	StageMiddle               // 软砖清空（或长时间没有变化），还有矿石
	StageEnd                  // 矿石耗尽

	stageCount
)

func (s Stage) String() string {
	switch s {
	case StageOpening:
		return "opening"
	case StageMiddle:
		return "middle"
	case StageEnd:
		return "end"
	}
	return "unknown"
}

// AgentState 跨 tick 保存的决策状态，每局新建，不跨局持久化
type AgentState struct {
	Started bool

	// Location 根据上一动作预测的位置
	Location core.GridPos
	History  []core.Action
	Desync   int
	Synced   bool

	Stage  Stage
	Target *core.GridPos
	Path   []core.GridPos
	Threat *ThreatModel

	// 阶段判断：软砖数量及其最近一次变化的 tick
	SoftCount     int
	SoftChangedAt int

	Missed         int
	Resyncs        int
	EscapeFailures int
	Opponent       int
}

// NewAgentState 以首个快照初始化状态：位置取引擎位置，矿石耐久初始化
func NewAgentState(q core.GridQuery) AgentState {
	loc, _ := q.PlayerLocation(q.PlayerID())
	threat := NewThreatModel()
	threat.Update(q)
	return AgentState{
		Started:       true,
		Location:      loc,
		Synced:        true,
		Threat:        threat,
		SoftCount:     q.SoftBlockCount(),
		SoftChangedAt: q.Tick(),
		Opponent:      findOpponent(q),
	}
}

// Clone 深拷贝，保证 Decide 不修改调用方持有的状态
func (s AgentState) Clone() AgentState {
	out := s
	out.History = append([]core.Action(nil), s.History...)
	out.Path = append([]core.GridPos(nil), s.Path...)
	if s.Target != nil {
		t := *s.Target
		out.Target = &t
	}
	out.Threat = s.Threat.Clone()
	return out
}

func (s *AgentState) record(action core.Action, limit int) {
	s.History = append(s.History, action)
	if limit > 0 && len(s.History) > limit {
		s.History = s.History[len(s.History)-limit:]
	}
}

func (s *AgentState) dropPlan() {
	s.Path = nil
	s.Target = nil
}

// findOpponent 返回除自己以外第一个存活玩家的 ID，没有时返回 -1
func findOpponent(q core.GridQuery) int {
	self := q.PlayerID()
	for id := 0; id <= 9; id++ {
		if id == self {
			continue
		}
		if _, ok := q.PlayerLocation(id); ok {
			return id
		}
	}
	return -1
}

// Blackboard 单个 tick 决策过程中各节点共享的数据
type Blackboard struct {
	Query  core.GridQuery
	Config *AIConfig
	State  *AgentState

	Scorer *TileScorer
	Traps  *TrapDetector
	Paths  *PathFinder

	Tick   int
	Engine core.GridPos // 引擎上报的位置
	Ammo   int

	Action core.Action
}

func newBlackboard(q core.GridQuery, cfg *AIConfig, state *AgentState) *Blackboard {
	engine, _ := q.PlayerLocation(q.PlayerID())
	bb := &Blackboard{
		Query:  q,
		Config: cfg,
		State:  state,
		Tick:   q.Tick(),
		Engine: engine,
		Ammo:   q.Ammo(),
	}
	bb.Scorer = &TileScorer{Grid: q, Threat: state.Threat, Config: cfg, Opponent: state.Opponent}
	bb.Traps = &TrapDetector{Grid: q, Opponent: state.Opponent, Depth: cfg.TrapSearchDepth}
	bb.Paths = &PathFinder{Grid: q, Opponent: state.Opponent, Weight: cfg.PathHeuristicWeight}
	if cfg.ShuffleSeed != 0 {
		bb.Paths.Rand = rand.New(rand.NewSource(cfg.ShuffleSeed + int64(bb.Tick)))
	}
	return bb
}

// emit 记录本 tick 的动作并更新预测位置
func (bb *Blackboard) emit(action core.Action) {
	bb.Action = action
	if action.IsMove() {
		bb.State.Location = bb.State.Location.Add(action.Delta())
	}
}

func (bb *Blackboard) passable(pos core.GridPos) bool {
	return isPassable(bb.Query, pos, bb.State.Opponent)
}

func (bb *Blackboard) AsBT() bt.Blackboard {
	return bb
}
