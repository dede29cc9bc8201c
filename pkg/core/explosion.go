package core

// BlastFootprint 计算在 center 处爆炸会影响的所有格子（含中心）
//
// 四个方向各扩散 radius 格：越界停止；遇到方块或炸弹时包含该格后停止；
// 第二格及更远处的矿石不会被波及（矿石只在距离 1 处受爆炸影响）。
func BlastFootprint(q GridQuery, center GridPos, radius int) []GridPos {
	cells := make([]GridPos, 0, 1+4*radius)
	cells = append(cells, center)

	for _, dir := range Directions {
		for i := 1; i <= radius; i++ {
			cell := GridPos{X: center.X + dir.X*i, Y: center.Y + dir.Y*i}

			// 检查边界
			if !q.InBounds(cell) {
				break
			}

			entity := q.EntityAt(cell)
			if i > 1 && entity == EntityOreBlock {
				break
			}

			cells = append(cells, cell)

			if entity.IsObstacle() {
				// 炸到方块或其他炸弹后停止该方向
				break
			}
		}
	}

	return cells
}

// ContainsCell 检查格子列表是否包含指定格子
func ContainsCell(cells []GridPos, pos GridPos) bool {
	for _, cell := range cells {
		if cell == pos {
			return true
		}
	}
	return false
}
