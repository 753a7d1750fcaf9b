package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Time scale slider bounds.
const (
	MinTimeScale = 0.1
	MaxTimeScale = 10.0
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Herbivores     int
	Predators      int
	MaxHerbivores  int
	MaxPredators   int
	Food           int
	Carcasses      int
	Tick           int32
	SimTime        float64
	IsDay          bool
	CycleProgress  float64
	TimeScale      float64
	StepsPerUpdate int
	FPS            int32
	Paused         bool
	ScreenWidth    int32
	ScreenHeight   int32
}

// HUDActions reports what the user did with the HUD controls this frame.
type HUDActions struct {
	TogglePause      bool
	TimeScale        float64
	TimeScaleChanged bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	width    int32
	height   int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer(), width: 260, height: 176}
}

// Contains reports whether a screen point lies on the HUD panel.
func (h *HUD) Contains(x, y float32) bool {
	return rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y},
		rl.Rectangle{X: 10, Y: 10, Width: float32(h.width), Height: float32(h.height)})
}

// Renderer returns the styling renderer shared with other panels.
func (h *HUD) Renderer() *Renderer { return h.renderer }

// Draw renders the HUD and its controls.
func (h *HUD) Draw(data HUDData) HUDActions {
	r := h.renderer
	x, y := int32(10), int32(10)
	pad := r.Theme.Padding

	r.DrawPanel(x, y, h.width, h.height)
	x += pad
	y += pad

	phase := "Night"
	if data.IsDay {
		phase = "Day"
	}
	rl.DrawText(fmt.Sprintf("Savanna - %s %.0f%%", phase, data.CycleProgress*100), x, y, 16, rl.White)
	y += 22

	inner := h.width - 2*pad
	y = r.DrawCapBar(x, y, "Herbivores", data.Herbivores, data.MaxHerbivores, inner)
	y = r.DrawCapBar(x, y, "Predators", data.Predators, data.MaxPredators, inner)
	y = r.DrawLabelValue(x, y, "Food", humanize.Comma(int64(data.Food)))
	y = r.DrawLabelValue(x, y, "Carcasses", humanize.Comma(int64(data.Carcasses)))

	elapsed := time.Duration(data.SimTime * float64(time.Second)).Round(time.Second)
	y = r.DrawLabelValue(x, y, "Tick", fmt.Sprintf("%s (%s)", humanize.Comma(int64(data.Tick)), elapsed))
	y = r.DrawLabelValue(x, y, "Speed", fmt.Sprintf("%dx | FPS %d", data.StepsPerUpdate, data.FPS))
	y += 4

	var actions HUDActions
	label := "Pause"
	if data.Paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: 60, Height: 20}, label) {
		actions.TogglePause = true
	}

	bounds := rl.Rectangle{X: float32(x + 100), Y: float32(y), Width: float32(inner - 140), Height: 20}
	scale := gui.SliderBar(bounds, "Time", fmt.Sprintf("%.2f", data.TimeScale),
		float32(data.TimeScale), MinTimeScale, MaxTimeScale)
	if float64(scale) != float64(float32(data.TimeScale)) {
		actions.TimeScale = float64(scale)
		actions.TimeScaleChanged = true
	}

	if data.Paused {
		rl.DrawText("PAUSED", data.ScreenWidth/2-40, 10, 20, rl.Yellow)
	}

	return actions
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32) {
	const controls = "Space pause | I info | Click food/select | =/- time | 0 reset | ,/. steps | F fertility"
	rl.DrawText(controls, 10, screenHeight-20, 12, rl.Gray)
}
