package client

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"dungeonbot/pkg/core"
)

// BombRenderer 炸弹渲染器
type BombRenderer struct {
	Bomb *core.Bomb
}

// NewBombRenderer 创建炸弹渲染器
func NewBombRenderer(bomb *core.Bomb) *BombRenderer {
	return &BombRenderer{Bomb: bomb}
}

// Draw 绘制炸弹，引线随剩余 tick 变短
func (b *BombRenderer) Draw(screen *ebiten.Image, mapHeight, tick int) {
	bomb := b.Bomb
	cx, cy := TileCenter(bomb.Pos, mapHeight)

	fuse := bomb.ExplodeAt - bomb.PlantedAt
	elapsed := tick - bomb.PlantedAt
	ratio := 0.0
	if fuse > 0 {
		ratio = math.Min(math.Max(float64(elapsed)/float64(fuse), 0), 1)
	}

	radius := float32(12)

	// 越接近爆炸闪得越快
	blink := math.Sin(float64(elapsed) * (0.5 + 1.5*ratio))
	alpha := uint8(200 + 55*blink)

	vector.DrawFilledCircle(screen, cx, cy, radius, color.RGBA{0, 0, 0, alpha}, false)
	vector.StrokeCircle(screen, cx, cy, radius, 2, color.RGBA{50, 50, 50, 255}, false)

	fuseLength := float32(15 * (1 - ratio))
	if fuseLength > 0 {
		fuseX := cx - radius*0.5
		fuseY := cy - radius
		vector.StrokeLine(screen, fuseX, fuseY, fuseX-fuseLength*0.5, fuseY-fuseLength,
			2, color.RGBA{139, 69, 19, 255}, false)

		if blink > 0 {
			sparkX := fuseX - fuseLength*0.5
			sparkY := fuseY - fuseLength
			sparkColor := color.RGBA{255, uint8(100 + 155*blink), 0, 255}
			vector.DrawFilledCircle(screen, sparkX, sparkY, 3, sparkColor, false)
		}
	}

	if ratio > 0.7 {
		warningAlpha := uint8((ratio - 0.7) / 0.3 * 100)
		warningRadius := radius + float32(10*(ratio-0.7)/0.3)
		vector.StrokeCircle(screen, cx, cy, warningRadius, 2,
			color.RGBA{255, 0, 0, warningAlpha}, false)
	}
}

// ExplosionRenderer 爆炸渲染器
type ExplosionRenderer struct {
	Explosion *core.Explosion
}

// NewExplosionRenderer 创建爆炸渲染器
func NewExplosionRenderer(explosion *core.Explosion) *ExplosionRenderer {
	return &ExplosionRenderer{Explosion: explosion}
}

// Draw 绘制爆炸效果，颜色按剩余时间由黄变红
func (e *ExplosionRenderer) Draw(screen *ebiten.Image, mapHeight, tick int) {
	explosion := e.Explosion
	ratio := 1.0
	if total := explosion.ExpiresAt - explosion.CreatedAt; total > 0 {
		ratio = math.Min(float64(tick-explosion.CreatedAt)/float64(total), 1)
	}
	alpha := uint8(255 * (1 - 0.6*ratio))

	var flame color.RGBA
	switch {
	case ratio < 0.3:
		flame = color.RGBA{255, 255, 0, alpha}
	case ratio < 0.6:
		flame = color.RGBA{255, 165, 0, alpha}
	default:
		flame = color.RGBA{255, 0, 0, alpha}
	}

	scale := float32(0.5 + 0.5*math.Min(ratio*2, 1.0))
	offset := float32(TileSize) * (1 - scale) / 2
	for _, cell := range explosion.Cells {
		px, py := TileOrigin(cell, mapHeight)
		vector.DrawFilledRect(screen, px+offset, py+offset,
			TileSize*scale, TileSize*scale, flame, false)
		vector.StrokeRect(screen, px+offset, py+offset,
			TileSize*scale, TileSize*scale, 2, color.RGBA{255, 100, 0, alpha}, false)
	}
}
