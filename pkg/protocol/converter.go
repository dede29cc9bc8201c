package protocol

import (
	"errors"
	"fmt"

	"dungeonbot/pkg/core"
)

// ========== Player 转换 ==========

// CorePlayerToProto 将 core.PlayerState 转换为 PlayerInfo
func CorePlayerToProto(p core.PlayerState) PlayerInfo {
	return PlayerInfo{
		ID:     p.ID,
		X:      p.Pos.X,
		Y:      p.Pos.Y,
		Ammo:   p.Ammo,
		HP:     p.HP,
		Reward: p.Reward,
	}
}

// ProtoPlayerToCore 将 PlayerInfo 转换为 core.PlayerState
func ProtoPlayerToCore(p PlayerInfo) core.PlayerState {
	return core.PlayerState{
		ID:     p.ID,
		Pos:    core.GridPos{X: p.X, Y: p.Y},
		Ammo:   p.Ammo,
		HP:     p.HP,
		Reward: p.Reward,
	}
}

// ========== Snapshot 转换 ==========

// CoreSnapshotToProto 将快照转换为 StateUpdate
func CoreSnapshotToProto(s *core.Snapshot) *StateUpdate {
	m := &StateUpdate{
		Tick:    s.TickNum,
		Width:   s.Width,
		Height:  s.Height,
		Cells:   make([]byte, len(s.Cells)),
		Bombs:   make([]Cell, 0, len(s.Bombs)),
		Players: make([]PlayerInfo, 0, len(s.Players)),
		Self:    s.Self,
	}
	for i, e := range s.Cells {
		m.Cells[i] = e.Symbol()
	}
	for _, b := range s.Bombs {
		m.Bombs = append(m.Bombs, Cell{X: b.X, Y: b.Y})
	}
	for _, p := range s.Players {
		m.Players = append(m.Players, CorePlayerToProto(p))
	}
	return m
}

// ProtoSnapshotToCore 将 StateUpdate 还原为快照
//
// 静态层只允许方块、道具与空地；炸弹必须在地图内。
func ProtoSnapshotToCore(m *StateUpdate) (*core.Snapshot, error) {
	if m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("地图尺寸无效: %dx%d", m.Width, m.Height)
	}
	if len(m.Cells) != m.Width*m.Height {
		return nil, fmt.Errorf("格子数 %d 与尺寸 %dx%d 不符", len(m.Cells), m.Width, m.Height)
	}

	s := core.NewSnapshot(m.Width, m.Height)
	s.TickNum = m.Tick
	s.Self = m.Self
	for i, c := range m.Cells {
		e, err := core.ParseEntity(c)
		if err != nil {
			return nil, err
		}
		if e == core.EntityBomb || e.IsPlayer() {
			return nil, fmt.Errorf("静态层第 %d 格不能是 %v", i, e)
		}
		s.Cells[i] = e
	}

	s.Bombs = make([]core.GridPos, 0, len(m.Bombs))
	for _, b := range m.Bombs {
		pos := core.GridPos{X: b.X, Y: b.Y}
		if !s.InBounds(pos) {
			return nil, fmt.Errorf("炸弹 %v 不在地图内", pos)
		}
		s.Bombs = append(s.Bombs, pos)
	}
	s.Players = make([]core.PlayerState, 0, len(m.Players))
	for _, p := range m.Players {
		s.Players = append(s.Players, ProtoPlayerToCore(p))
	}
	return s, nil
}

// ========== Action 转换 ==========

// CoreActionToProto 将动作转换为 Action 消息
func CoreActionToProto(tick int, a core.Action) *Action {
	return &Action{Tick: tick, Symbol: a.Symbol()}
}

// ProtoActionToCore 解析 Action 消息中的动作字符
func ProtoActionToCore(m *Action) (core.Action, error) {
	return core.ParseAction(m.Symbol)
}

// ========== GameOver 转换 ==========

// CoreGameOverToProto 对局结束消息
func CoreGameOverToProto(g *core.Game) (*GameOver, error) {
	if !g.Over {
		return nil, errors.New("对局尚未结束")
	}
	m := &GameOver{
		Winner:  g.Winner,
		Tick:    g.TickNum,
		Players: make([]PlayerInfo, 0, len(g.Players)),
	}
	for _, p := range g.Players {
		m.Players = append(m.Players, CorePlayerToProto(p.PlayerState))
	}
	return m, nil
}
