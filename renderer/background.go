package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/savanna/systems"
)

// fertilityCell is the size in world units of one fertility texel.
const fertilityCell = 4

// BackgroundRenderer clears to the sky colour and can overlay the soil
// fertility map that biases food growth.
type BackgroundRenderer struct {
	worldW, worldH float32

	fertility   rl.Texture2D
	initialized bool
}

// NewBackgroundRenderer creates a background for a worldW x worldH map.
func NewBackgroundRenderer(worldW, worldH float64) *BackgroundRenderer {
	return &BackgroundRenderer{worldW: float32(worldW), worldH: float32(worldH)}
}

// Init bakes the fertility texture (must be called after the raylib window is created).
func (b *BackgroundRenderer) Init(fertility func(x, y float64) float64) {
	if b.initialized {
		return
	}

	w := int32(b.worldW) / fertilityCell
	h := int32(b.worldH) / fertilityCell
	img := rl.GenImageColor(int(w), int(h), rl.Blank)
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			f := fertility(float64(x*fertilityCell), float64(y*fertilityCell))
			rl.ImageDrawPixel(img, x, y, rl.Color{R: 34, G: 110, B: 34, A: uint8(f * 160)})
		}
	}
	b.fertility = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	b.initialized = true
}

// Draw clears the frame to the sky colour. The fertility overlay fades out
// with the daylight.
func (b *BackgroundRenderer) Draw(sky systems.Color, daylight float64, showFertility bool) {
	rl.ClearBackground(rl.Color{R: sky.R, G: sky.G, B: sky.B, A: 255})

	if !showFertility || !b.initialized {
		return
	}
	src := rl.Rectangle{Width: float32(b.fertility.Width), Height: float32(b.fertility.Height)}
	dst := rl.Rectangle{Width: b.worldW, Height: b.worldH}
	tint := rl.ColorAlpha(rl.White, float32(0.25+0.75*daylight))
	rl.DrawTexturePro(b.fertility, src, dst, rl.Vector2{}, 0, tint)
}

// Unload frees resources.
func (b *BackgroundRenderer) Unload() {
	if b.initialized {
		rl.UnloadTexture(b.fertility)
		b.initialized = false
	}
}
