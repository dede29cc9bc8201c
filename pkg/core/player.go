package core

// Player 玩家（纯逻辑，不包含渲染）
type Player struct {
	PlayerState

	Missed int // 未按时提交动作的 tick 数
}

// NewPlayer 创建新玩家
func NewPlayer(id int, pos GridPos, rules Rules) *Player {
	return &Player{
		PlayerState: PlayerState{
			ID:   id,
			Pos:  pos,
			Ammo: rules.StartAmmo,
			HP:   rules.StartHP,
		},
	}
}

// Dead 是否已死亡
func (p *Player) Dead() bool {
	return p.HP <= 0
}

// Damage 扣除一点生命
func (p *Player) Damage() {
	if p.HP > 0 {
		p.HP--
	}
}
