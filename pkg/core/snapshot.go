package core

import (
	"errors"
	"fmt"
)

// PlayerState 玩家在某个 tick 的状态
type PlayerState struct {
	ID     int
	Pos    GridPos
	Ammo   int
	HP     int
	Reward int
}

// Alive 玩家是否存活
func (p PlayerState) Alive() bool {
	return p.HP > 0
}

// Snapshot 某个 tick、某个玩家视角下的棋盘快照，实现 GridQuery
//
// Cells 只保存静态层（方块、道具、空地），炸弹与玩家单独保存，
// EntityAt 按 方块 > 炸弹 > 玩家 > 道具 的优先级合成。
type Snapshot struct {
	Width, Height int
	Cells         []Entity // 行优先：Cells[y*Width+x]
	Bombs         []GridPos
	Players       []PlayerState
	Self          int
	TickNum       int
}

var _ GridQuery = (*Snapshot)(nil)

// NewSnapshot 创建空快照
func NewSnapshot(width, height int) *Snapshot {
	return &Snapshot{
		Width:  width,
		Height: height,
		Cells:  make([]Entity, width*height),
	}
}

// ParseSnapshot 从地图模板创建快照
//
// 模板第 i 行对应 y=i。字符含义：'.' 空地，'S' 软砖，'O' 矿石，'I' 不可破坏方块，
// 'B' 炸弹，'a' 弹药，'t' 宝藏，'0'-'9' 玩家。玩家初始弹药与生命取默认值。
func ParseSnapshot(rows []string, self int) (*Snapshot, error) {
	if len(rows) == 0 {
		return nil, errors.New("地图模板为空")
	}
	width := len(rows[0])
	snap := NewSnapshot(width, len(rows))
	snap.Self = self

	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("第 %d 行宽度 %d，期望 %d", y, len(row), width)
		}
		for x := 0; x < width; x++ {
			entity, err := ParseEntity(row[x])
			if err != nil {
				return nil, fmt.Errorf("解析 (%d,%d) 失败: %w", x, y, err)
			}
			pos := GridPos{X: x, Y: y}
			switch {
			case entity == EntityBomb:
				snap.Bombs = append(snap.Bombs, pos)
			case entity.IsPlayer():
				snap.Players = append(snap.Players, PlayerState{
					ID:   entity.PlayerID(),
					Pos:  pos,
					Ammo: StartAmmo,
					HP:   StartHP,
				})
			default:
				snap.Cells[y*width+x] = entity
			}
		}
	}
	return snap, nil
}

// MustParseSnapshot 同 ParseSnapshot，失败时 panic，用于测试夹具与固定地图
func MustParseSnapshot(rows []string, self int) *Snapshot {
	snap, err := ParseSnapshot(rows, self)
	if err != nil {
		panic(err)
	}
	return snap
}

// Player 返回指定玩家状态的指针，不存在时返回 nil
func (s *Snapshot) Player(id int) *PlayerState {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// SetCell 设置静态层格子
func (s *Snapshot) SetCell(pos GridPos, e Entity) {
	if s.InBounds(pos) {
		s.Cells[pos.Y*s.Width+pos.X] = e
	}
}

func (s *Snapshot) cell(pos GridPos) Entity {
	return s.Cells[pos.Y*s.Width+pos.X]
}

func (s *Snapshot) EntityAt(pos GridPos) Entity {
	if !s.InBounds(pos) {
		return EntityIndestructible
	}
	static := s.cell(pos)
	if static.IsBlock() {
		return static
	}
	if ContainsCell(s.Bombs, pos) {
		return EntityBomb
	}
	for _, p := range s.Players {
		if p.Alive() && p.Pos == pos {
			return PlayerEntity(p.ID)
		}
	}
	return static
}

func (s *Snapshot) InBounds(pos GridPos) bool {
	return pos.X >= 0 && pos.X < s.Width && pos.Y >= 0 && pos.Y < s.Height
}

func (s *Snapshot) Size() (int, int) {
	return s.Width, s.Height
}

func (s *Snapshot) SoftBlockCount() int {
	count := 0
	for _, e := range s.Cells {
		if e == EntitySoftBlock {
			count++
		}
	}
	return count
}

func (s *Snapshot) OreBlocks() []GridPos {
	return s.collect(EntityOreBlock)
}

func (s *Snapshot) LiveBombs() []GridPos {
	out := make([]GridPos, len(s.Bombs))
	copy(out, s.Bombs)
	return out
}

func (s *Snapshot) Pickups() []GridPos {
	var out []GridPos
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			if s.Cells[y*s.Width+x].IsPickup() {
				out = append(out, GridPos{X: x, Y: y})
			}
		}
	}
	return out
}

func (s *Snapshot) PlayerLocation(id int) (GridPos, bool) {
	p := s.Player(id)
	if p == nil || !p.Alive() {
		return GridPos{}, false
	}
	return p.Pos, true
}

func (s *Snapshot) Tick() int     { return s.TickNum }
func (s *Snapshot) PlayerID() int { return s.Self }

func (s *Snapshot) Ammo() int {
	if p := s.Player(s.Self); p != nil {
		return p.Ammo
	}
	return 0
}

func (s *Snapshot) HP() int {
	if p := s.Player(s.Self); p != nil {
		return p.HP
	}
	return 0
}

func (s *Snapshot) Reward() int {
	if p := s.Player(s.Self); p != nil {
		return p.Reward
	}
	return 0
}

// Rows 将快照渲染回地图模板（第 i 行对应 y=i）
func (s *Snapshot) Rows() []string {
	rows := make([]string, s.Height)
	for y := 0; y < s.Height; y++ {
		line := make([]byte, s.Width)
		for x := 0; x < s.Width; x++ {
			line[x] = s.EntityAt(GridPos{X: x, Y: y}).Symbol()
		}
		rows[y] = string(line)
	}
	return rows
}

func (s *Snapshot) collect(kind Entity) []GridPos {
	var out []GridPos
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			if s.Cells[y*s.Width+x] == kind {
				out = append(out, GridPos{X: x, Y: y})
			}
		}
	}
	return out
}
