package core

import "fmt"

// DefaultTemplate 默认竞技场（12x10，中心对称），第 i 行对应 y=i
//
// 'I' 不可破坏方块，'S' 软砖，'O' 矿石，'.' 空地，'0'/'1' 出生点
var DefaultTemplate = []string{
	"0.SS.O..S.I.",
	".I.S.I.SO.S.",
	"S.O..S.I..S.",
	".S.I.S..S.OS",
	"I..S.O..S.I.",
	".I.S..O.S..I",
	"SO.S..S.I.S.",
	".S..I.S..O.S",
	".S.OS.I.S.I.",
	".I.S..O.SS.1",
}

// GameMap 游戏地图（静态层：方块与道具，另记录矿石剩余耐久）
type GameMap struct {
	Width  int
	Height int
	Tiles  []Entity
	OreHP  []int
	Spawns map[int]GridPos // 玩家ID -> 出生点
}

// NewGameMap 从模板创建地图
func NewGameMap(template []string, oreHits int) (*GameMap, error) {
	snap, err := ParseSnapshot(template, 0)
	if err != nil {
		return nil, fmt.Errorf("加载地图模板失败: %w", err)
	}
	if len(snap.Bombs) > 0 {
		return nil, fmt.Errorf("地图模板不能包含炸弹")
	}

	m := &GameMap{
		Width:  snap.Width,
		Height: snap.Height,
		Tiles:  snap.Cells,
		OreHP:  make([]int, len(snap.Cells)),
		Spawns: make(map[int]GridPos, len(snap.Players)),
	}
	for i, tile := range m.Tiles {
		if tile == EntityOreBlock {
			m.OreHP[i] = oreHits
		}
	}
	for _, p := range snap.Players {
		m.Spawns[p.ID] = p.Pos
	}
	return m, nil
}

// InBounds 坐标是否在地图内
func (m *GameMap) InBounds(pos GridPos) bool {
	return pos.X >= 0 && pos.X < m.Width && pos.Y >= 0 && pos.Y < m.Height
}

// GetTile 获取指定位置的地图块，越界视为不可破坏方块
func (m *GameMap) GetTile(pos GridPos) Entity {
	if !m.InBounds(pos) {
		return EntityIndestructible
	}
	return m.Tiles[pos.Y*m.Width+pos.X]
}

// SetTile 设置指定位置的地图块
func (m *GameMap) SetTile(pos GridPos, tile Entity) {
	if m.InBounds(pos) {
		m.Tiles[pos.Y*m.Width+pos.X] = tile
	}
}

// HitOre 对矿石造成一次伤害，返回矿石是否被摧毁
func (m *GameMap) HitOre(pos GridPos) bool {
	if m.GetTile(pos) != EntityOreBlock {
		return false
	}
	i := pos.Y*m.Width + pos.X
	m.OreHP[i]--
	if m.OreHP[i] <= 0 {
		m.OreHP[i] = 0
		m.Tiles[i] = EntityEmpty
		return true
	}
	return false
}

// OreRemaining 矿石剩余耐久
func (m *GameMap) OreRemaining(pos GridPos) int {
	if !m.InBounds(pos) {
		return 0
	}
	return m.OreHP[pos.Y*m.Width+pos.X]
}
