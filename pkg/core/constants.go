package core

// 地图配置（默认竞技场 12x10）
const (
	DefaultMapWidth  = 12
	DefaultMapHeight = 10
)

// 炸弹配置（单位：tick）
const (
	FuseTicks   = 35 // 放置到爆炸的延迟
	BlastRadius = 2  // 爆炸沿每个轴向的最大距离
	OreHits     = 3  // 矿石需要的命中次数
)

// 玩家配置
const (
	StartAmmo = 3
	StartHP   = 3
)

// 奖励配置
const (
	RewardSoftBlock = 2
	RewardOre       = 10
	RewardTreasure  = 1
	RewardHit       = 25
)

// Rules 引擎规则，默认值见 DefaultRules
type Rules struct {
	Width, Height int

	FuseTicks   int
	BlastRadius int
	OreHits     int

	StartAmmo int
	StartHP   int

	// PickupInterval 每隔多少 tick 尝试刷新一个道具，0 表示不刷新
	PickupInterval int
	// MaxTicks 对局最长 tick 数
	MaxTicks int
}

// DefaultRules 默认规则
var DefaultRules = Rules{
	Width:          DefaultMapWidth,
	Height:         DefaultMapHeight,
	FuseTicks:      FuseTicks,
	BlastRadius:    BlastRadius,
	OreHits:        OreHits,
	StartAmmo:      StartAmmo,
	StartHP:        StartHP,
	PickupInterval: 20,
	MaxTicks:       1800,
}
