package core

import "fmt"

// GridPos 格子坐标（值类型，可作为 map 的键）
// 坐标系与引擎一致：x 轴向右，y 轴向上，(0,0) 在左下角
type GridPos struct {
	X, Y int
}

func (p GridPos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add 返回 p 平移 d 后的坐标
func (p GridPos) Add(d GridPos) GridPos {
	return GridPos{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub 返回 p - q
func (p GridPos) Sub(q GridPos) GridPos {
	return GridPos{X: p.X - q.X, Y: p.Y - q.Y}
}

// Directions 四个轴向偏移，顺序为 上、下、左、右
var Directions = [4]GridPos{
	{X: 0, Y: 1},  // 上
	{X: 0, Y: -1}, // 下
	{X: -1, Y: 0}, // 左
	{X: 1, Y: 0},  // 右
}

// Manhattan 曼哈顿距离
func Manhattan(a, b GridPos) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

// IsAdjacent 两格是否正交相邻
func IsAdjacent(a, b GridPos) bool {
	return Manhattan(a, b) == 1
}

// Neighbors 返回 pos 在地图范围内的四邻格
func Neighbors(q GridQuery, pos GridPos) []GridPos {
	out := make([]GridPos, 0, 4)
	for _, d := range Directions {
		n := pos.Add(d)
		if q.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// Entity 格子上的实体标记
type Entity int

const (
	EntityEmpty Entity = iota
	EntitySoftBlock
	EntityOreBlock
	EntityIndestructible
	EntityBomb
	EntityAmmo
	EntityTreasure
	entityPlayerBase // 玩家实体为 entityPlayerBase + 玩家ID
)

// PlayerEntity 返回指定玩家的实体标记
func PlayerEntity(id int) Entity {
	return entityPlayerBase + Entity(id)
}

// IsPlayer 是否为玩家
func (e Entity) IsPlayer() bool {
	return e >= entityPlayerBase
}

// PlayerID 玩家实体对应的玩家ID，非玩家返回 -1
func (e Entity) PlayerID() int {
	if !e.IsPlayer() {
		return -1
	}
	return int(e - entityPlayerBase)
}

// IsBlock 是否为方块（软砖、矿石、不可破坏方块）
func (e Entity) IsBlock() bool {
	return e == EntitySoftBlock || e == EntityOreBlock || e == EntityIndestructible
}

// IsObstacle 是否阻挡移动与爆炸（方块或炸弹）
func (e Entity) IsObstacle() bool {
	return e.IsBlock() || e == EntityBomb
}

// IsPickup 是否为道具
func (e Entity) IsPickup() bool {
	return e == EntityAmmo || e == EntityTreasure
}

// Symbol 返回实体在地图模板中的字符
func (e Entity) Symbol() byte {
	switch e {
	case EntityEmpty:
		return '.'
	case EntitySoftBlock:
		return 'S'
	case EntityOreBlock:
		return 'O'
	case EntityIndestructible:
		return 'I'
	case EntityBomb:
		return 'B'
	case EntityAmmo:
		return 'a'
	case EntityTreasure:
		return 't'
	}
	if id := e.PlayerID(); id >= 0 && id <= 9 {
		return byte('0' + id)
	}
	return '?'
}

func (e Entity) String() string {
	switch e {
	case EntityEmpty:
		return "empty"
	case EntitySoftBlock:
		return "soft_block"
	case EntityOreBlock:
		return "ore_block"
	case EntityIndestructible:
		return "indestructible_block"
	case EntityBomb:
		return "bomb"
	case EntityAmmo:
		return "ammo"
	case EntityTreasure:
		return "treasure"
	}
	if e.IsPlayer() {
		return fmt.Sprintf("player_%d", e.PlayerID())
	}
	return "unknown"
}

// ParseEntity 解析地图模板字符
func ParseEntity(c byte) (Entity, error) {
	switch c {
	case '.':
		return EntityEmpty, nil
	case 'S':
		return EntitySoftBlock, nil
	case 'O':
		return EntityOreBlock, nil
	case 'I':
		return EntityIndestructible, nil
	case 'B':
		return EntityBomb, nil
	case 'a':
		return EntityAmmo, nil
	case 't':
		return EntityTreasure, nil
	}
	if c >= '0' && c <= '9' {
		return PlayerEntity(int(c - '0')), nil
	}
	return EntityEmpty, fmt.Errorf("未知的地图字符: %q", c)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
