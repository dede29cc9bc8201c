package client

import "image/color"

// CharacterInfo 玩家外观（渲染相关）
type CharacterInfo struct {
	BodyColor    color.RGBA
	OutlineColor color.RGBA
	ShoeColor    color.RGBA
}

var characters = []CharacterInfo{
	{
		BodyColor:    color.RGBA{255, 80, 80, 255},
		OutlineColor: color.RGBA{150, 0, 0, 255},
		ShoeColor:    color.RGBA{100, 0, 0, 255},
	},
	{
		BodyColor:    color.RGBA{100, 180, 255, 255},
		OutlineColor: color.RGBA{0, 50, 150, 255},
		ShoeColor:    color.RGBA{0, 30, 100, 255},
	},
	{
		BodyColor:    color.RGBA{255, 255, 255, 255},
		OutlineColor: color.RGBA{0, 0, 0, 255},
		ShoeColor:    color.RGBA{50, 50, 50, 255},
	},
	{
		BodyColor:    color.RGBA{40, 40, 40, 255},
		OutlineColor: color.RGBA{200, 200, 200, 255},
		ShoeColor:    color.RGBA{180, 180, 180, 255},
	},
}

// GetCharacterInfo 按玩家 ID 循环分配外观
func GetCharacterInfo(playerID int) CharacterInfo {
	if playerID < 0 {
		playerID = 0
	}
	return characters[playerID%len(characters)]
}
