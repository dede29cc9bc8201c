package client

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// FPS 窗口刷新率
const FPS = 60

var hudFont = text.NewGoXFace(basicfont.Face7x13)

// Viewer 本地对局的观战窗口（Ebiten 游戏循环）
//
// 每 framesPerTick 帧推进一个引擎 tick。空格暂停，右方向键在暂停时单步。
type Viewer struct {
	match         *Match
	framesPerTick int
	frame         int
	paused        bool

	mapRenderer *MapRenderer
}

// NewViewer 创建观战窗口，tps 为每秒推进的引擎 tick 数
func NewViewer(match *Match, tps int) *Viewer {
	if tps <= 0 || tps > FPS {
		tps = FPS
	}
	return &Viewer{
		match:         match,
		framesPerTick: FPS / tps,
		mapRenderer:   &MapRenderer{},
	}
}

// ScreenSize 窗口尺寸
func (v *Viewer) ScreenSize() (int, int) {
	m := v.match.Game.Map
	return m.Width * TileSize, m.Height*TileSize + HUDHeight
}

// Update 推进对局
func (v *Viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.paused = !v.paused
	}
	if v.paused {
		if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
			v.match.Step()
		}
		return nil
	}

	v.frame++
	if v.frame >= v.framesPerTick {
		v.frame = 0
		v.match.Step()
	}
	return nil
}

// Draw 绘制游戏画面
func (v *Viewer) Draw(screen *ebiten.Image) {
	g := v.match.Game
	height := g.Map.Height

	v.mapRenderer.Draw(screen, g)
	for _, e := range g.Explosions {
		NewExplosionRenderer(e).Draw(screen, height, g.TickNum)
	}
	for _, b := range g.Bombs {
		NewBombRenderer(b).Draw(screen, height, g.TickNum)
	}
	for _, p := range g.Players {
		NewPlayerRenderer(p).Draw(screen, height)
	}

	v.drawHUD(screen)

	if g.Over {
		w, h := v.ScreenSize()
		overlay := ebiten.NewImage(w, h-HUDHeight)
		overlay.Fill(color.RGBA{0, 0, 0, 128})
		screen.DrawImage(overlay, nil)
	}
}

func (v *Viewer) drawHUD(screen *ebiten.Image) {
	g := v.match.Game
	top := g.Map.Height*TileSize + 4

	status := fmt.Sprintf("TICK %d/%d  SEED %d", g.TickNum, g.Rules.MaxTicks, v.match.Seed)
	switch {
	case g.Over && g.Winner >= 0:
		status += fmt.Sprintf("  WINNER P%d", g.Winner)
	case g.Over:
		status += "  DRAW"
	case v.paused:
		status += "  PAUSED (space/right)"
	}
	drawText(screen, 8, top+12, status, color.RGBA{240, 240, 240, 255})

	for i, bot := range v.match.Bots {
		p := g.GetPlayer(bot.PlayerID)
		st := bot.State()
		line := fmt.Sprintf("P%d %-6s hp=%d ammo=%d reward=%d fail=%d", p.ID, st.Stage, p.HP, p.Ammo, p.Reward, st.EscapeFailures)
		drawText(screen, 8, top+28+i*14, line, GetCharacterInfo(p.ID).BodyColor)
	}
}

// Layout 设置屏幕布局
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.ScreenSize()
}

func drawText(screen *ebiten.Image, x, y int, msg string, clr color.Color) {
	options := &text.DrawOptions{}
	options.GeoM.Translate(float64(x), float64(y))
	options.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, msg, hudFont, options)
}
