package core

// GridQuery 只读的棋盘查询接口，每个 tick 重新获取
//
// 玩家相关的方法（PlayerID、Ammo、HP、Reward）都针对查询方自己。
type GridQuery interface {
	EntityAt(pos GridPos) Entity
	InBounds(pos GridPos) bool
	Size() (width, height int)

	SoftBlockCount() int
	OreBlocks() []GridPos
	LiveBombs() []GridPos
	Pickups() []GridPos

	// PlayerLocation 返回指定玩家的位置，玩家不存在时 ok 为 false
	PlayerLocation(id int) (pos GridPos, ok bool)

	Tick() int
	PlayerID() int
	Ammo() int
	HP() int
	Reward() int
}
