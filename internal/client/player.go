package client

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"dungeonbot/pkg/core"
)

// PlayerRenderer 玩家渲染器
type PlayerRenderer struct {
	Player   *core.Player
	CharInfo CharacterInfo
}

// NewPlayerRenderer 创建玩家渲染器
func NewPlayerRenderer(p *core.Player) *PlayerRenderer {
	return &PlayerRenderer{Player: p, CharInfo: GetCharacterInfo(p.ID)}
}

// Draw 绘制玩家：身体、双脚和头顶的生命值
func (r *PlayerRenderer) Draw(screen *ebiten.Image, mapHeight int) {
	p := r.Player
	if p.Dead() {
		return
	}
	px, py := TileOrigin(p.Pos, mapHeight)
	info := r.CharInfo

	bodyWidth := float32(TileSize) * 0.6
	bodyHeight := float32(TileSize) * 0.6
	drawX := px + (TileSize-bodyWidth)/2
	drawY := py + TileSize*0.18

	// 脚
	footY := drawY + bodyHeight
	vector.DrawFilledRect(screen, drawX+2, footY, bodyWidth*0.35, 5, info.ShoeColor, false)
	vector.DrawFilledRect(screen, drawX+bodyWidth*0.65-2, footY, bodyWidth*0.35, 5, info.ShoeColor, false)

	// 身体
	vector.DrawFilledRect(screen, drawX, drawY, bodyWidth, bodyHeight, info.BodyColor, false)
	vector.StrokeRect(screen, drawX, drawY, bodyWidth, bodyHeight, 2, info.OutlineColor, false)

	// 眼睛
	eyeY := drawY + bodyHeight*0.35
	eyeSize := bodyWidth * 0.12
	for _, ex := range []float32{drawX + bodyWidth*0.3, drawX + bodyWidth*0.7} {
		vector.DrawFilledCircle(screen, ex, eyeY, eyeSize, color.RGBA{255, 255, 255, 255}, false)
		vector.DrawFilledCircle(screen, ex, eyeY, eyeSize*0.5, color.RGBA{0, 0, 0, 255}, false)
	}

	// 生命值
	for i := 0; i < p.HP; i++ {
		vector.DrawFilledRect(screen, px+4+float32(i*7), py+2, 5, 4, color.RGBA{220, 20, 60, 255}, false)
	}
}
