package ai

import "dungeonbot/pkg/core"

// TileScorer 评估"走到某格并在此放炸弹"的价值，纯函数，不含随机
type TileScorer struct {
	Grid     core.GridQuery
	Threat   *ThreatModel
	Config   *AIConfig
	Opponent int // -1 表示没有对手
}

// AttackMode 终局且场上已无道具时才把对手计入得分
func (s *TileScorer) AttackMode(stage Stage) bool {
	return stage == StageEnd && len(s.Grid.Pickups()) == 0
}

// Score 格子的总价值：道具 + 爆破收益，终局无事可做时给一个待命分
func (s *TileScorer) Score(tile core.GridPos, stage Stage, ammo int) float64 {
	points := s.pickupValue(tile, stage, ammo) + s.BombingValue(tile, stage, ammo)
	if points == 0 && stage == StageEnd && !s.AttackMode(stage) && !s.crowded(tile) {
		points = s.Config.IdleReward
	}
	return points
}

func (s *TileScorer) pickupValue(tile core.GridPos, stage Stage, ammo int) float64 {
	switch s.Grid.EntityAt(tile) {
	case core.EntityTreasure:
		return s.Config.TreasureReward
	case core.EntityAmmo:
		weight := s.Config.AmmoWeights[stage] - float64(ammo)
		if weight < s.Config.MinAmmoWeight {
			weight = s.Config.MinAmmoWeight
		}
		return weight
	}
	return 0
}

// BombingValue 在 tile 放置炸弹能获得的收益，没有弹药时为 0
func (s *TileScorer) BombingValue(tile core.GridPos, stage Stage, ammo int) float64 {
	if ammo <= 0 {
		return 0
	}
	attack := s.AttackMode(stage)
	points := 0.0
	for _, cell := range s.Threat.BlastFootprint(tile) {
		if cell == tile {
			continue
		}
		if core.IsAdjacent(tile, cell) {
			behind := cell.Add(cell.Sub(tile))
			if s.Threat.HasBomb(cell) || s.Threat.HasBomb(behind) {
				continue
			}
		}

		entity := s.Grid.EntityAt(cell)
		switch {
		case entity == core.EntityOreBlock:
			hits := s.Threat.OreHits(cell)
			if hits > 0 && ((stage == StageOpening && hits == 1) || (stage == StageMiddle && ammo >= hits)) {
				points += s.Config.OreReward / float64(hits)
			}
		case entity.IsPlayer() && entity.PlayerID() == s.Opponent:
			if attack {
				points += s.Config.AttackReward
			}
		case s.Threat.InBlast(cell):
			continue
		case entity == core.EntitySoftBlock:
			points += s.Config.SoftBlockReward
		}
	}
	return points
}

// crowded 四邻是否有障碍或其他玩家
func (s *TileScorer) crowded(tile core.GridPos) bool {
	self := s.Grid.PlayerID()
	for _, n := range core.Neighbors(s.Grid, tile) {
		e := s.Grid.EntityAt(n)
		if e.IsObstacle() || (e.IsPlayer() && e.PlayerID() != self) {
			return true
		}
	}
	return false
}
