package core

// Bomb 炸弹（纯逻辑结构，不包含渲染）
type Bomb struct {
	Pos       GridPos
	OwnerID   int
	PlantedAt int // 首次出现在快照中的 tick
	ExplodeAt int // 爆炸 tick
}

// NewBomb 创建新炸弹
func NewBomb(pos GridPos, ownerID, tick, fuse int) *Bomb {
	return &Bomb{
		Pos:       pos,
		OwnerID:   ownerID,
		PlantedAt: tick,
		ExplodeAt: tick + fuse,
	}
}

// ShouldExplode 检查炸弹在指定 tick 是否应该爆炸
func (b *Bomb) ShouldExplode(tick int) bool {
	return tick >= b.ExplodeAt
}

// Remaining 距离爆炸还剩多少 tick
func (b *Bomb) Remaining(tick int) int {
	if tick >= b.ExplodeAt {
		return 0
	}
	return b.ExplodeAt - tick
}

// Explosion 一次（可能连锁的）爆炸留下的效果，仅用于展示
type Explosion struct {
	Cells     []GridPos
	CreatedAt int
	ExpiresAt int
}

// IsExpired 检查爆炸效果是否已结束
func (e *Explosion) IsExpired(tick int) bool {
	return tick >= e.ExpiresAt
}
