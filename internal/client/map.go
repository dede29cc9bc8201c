package client

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"dungeonbot/pkg/core"
)

// 渲染尺寸（像素）
const (
	TileSize  = 40
	HUDHeight = 56
)

// TileOrigin 格子左上角的屏幕坐标；y 轴向上，所以第 0 行画在最下面
func TileOrigin(pos core.GridPos, height int) (float32, float32) {
	return float32(pos.X * TileSize), float32((height - 1 - pos.Y) * TileSize)
}

// TileCenter 格子中心的屏幕坐标
func TileCenter(pos core.GridPos, height int) (float32, float32) {
	x, y := TileOrigin(pos, height)
	return x + TileSize/2, y + TileSize/2
}

// MapRenderer 地图渲染器，只画静态层（方块与道具）
type MapRenderer struct{}

// Draw 绘制地图
func (m *MapRenderer) Draw(screen *ebiten.Image, g *core.Game) {
	gameMap := g.Map
	for y := 0; y < gameMap.Height; y++ {
		for x := 0; x < gameMap.Width; x++ {
			pos := core.GridPos{X: x, Y: y}
			px, py := TileOrigin(pos, gameMap.Height)
			tile := gameMap.GetTile(pos)

			var c color.Color
			switch tile {
			case core.EntitySoftBlock:
				c = color.RGBA{205, 133, 63, 255} // 砖块棕色
			case core.EntityOreBlock:
				c = color.RGBA{120, 110, 140, 255} // 矿石紫灰
			case core.EntityIndestructible:
				c = color.RGBA{80, 80, 80, 255} // 灰色墙
			default:
				c = color.RGBA{34, 139, 34, 255} // 草地绿
			}

			vector.DrawFilledRect(screen, px, py, TileSize, TileSize, c, false)
			vector.StrokeRect(screen, px, py, TileSize, TileSize, 1, color.RGBA{0, 0, 0, 100}, false)

			switch tile {
			case core.EntitySoftBlock:
				// 横线模拟砖块纹理
				for i := 0; i < 3; i++ {
					lineY := py + float32(i*12+8)
					vector.StrokeLine(screen, px+2, lineY, px+TileSize-2, lineY, 1,
						color.RGBA{180, 118, 53, 255}, false)
				}
			case core.EntityOreBlock:
				drawOreCracks(screen, px, py, g.Rules.OreHits-gameMap.OreRemaining(pos))
			case core.EntityIndestructible:
				vector.StrokeLine(screen, px+TileSize/2, py+5, px+TileSize/2, py+TileSize-5,
					2, color.RGBA{60, 60, 60, 255}, false)
				vector.StrokeLine(screen, px+5, py+TileSize/2, px+TileSize-5, py+TileSize/2,
					2, color.RGBA{60, 60, 60, 255}, false)
			case core.EntityAmmo:
				cx, cy := TileCenter(pos, gameMap.Height)
				vector.DrawFilledCircle(screen, cx, cy, 7, color.RGBA{30, 30, 30, 255}, false)
				vector.StrokeCircle(screen, cx, cy, 9, 2, color.RGBA{255, 220, 0, 255}, false)
			case core.EntityTreasure:
				cx, cy := TileCenter(pos, gameMap.Height)
				vector.DrawFilledRect(screen, cx-7, cy-7, 14, 14, color.RGBA{255, 200, 0, 255}, false)
				vector.StrokeRect(screen, cx-7, cy-7, 14, 14, 2, color.RGBA{160, 110, 0, 255}, false)
			}
		}
	}
}

// drawOreCracks 每受一次伤害多一道裂纹
func drawOreCracks(screen *ebiten.Image, px, py float32, cracks int) {
	crack := color.RGBA{60, 50, 70, 255}
	for i := 0; i < cracks; i++ {
		off := float32(8 + i*10)
		vector.StrokeLine(screen, px+off, py+6, px+off+6, py+TileSize-6, 2, crack, false)
	}
}
