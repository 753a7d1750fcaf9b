// Package renderer draws the savanna with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/ecosystem"
)

var (
	colorHerbivore = rl.Color{R: 0, G: 255, B: 0, A: 255}
	colorPredator  = rl.Color{R: 255, G: 0, B: 0, A: 255}
	colorFood      = rl.Color{R: 0, G: 200, B: 0, A: 255}
	colorWater     = rl.Color{R: 0, G: 0, B: 255, A: 255}
	colorCarcass   = rl.Color{R: 255, G: 255, B: 0, A: 255}
	colorSelection = rl.Color{R: 255, G: 255, B: 255, A: 200}
)

// Scene draws resources and agents. View slices are reused across frames.
type Scene struct {
	background *BackgroundRenderer
	agents     []ecosystem.AgentView
	resources  []ecosystem.ResourceView
}

// NewScene creates a scene for the ecosystem's world.
func NewScene(eco *ecosystem.Ecosystem) *Scene {
	cfg := eco.Config()
	bg := NewBackgroundRenderer(cfg.Derived.WorldW, cfg.Derived.WorldH)
	bg.Init(eco.Fertility)
	return &Scene{background: bg}
}

// Draw renders the background, then food, water, agents and carcass marks.
func (s *Scene) Draw(eco *ecosystem.Ecosystem, showFertility bool) {
	cycle := eco.Cycle()
	s.background.Draw(cycle.BackgroundColor(), cycle.Daylight(), showFertility)

	s.resources = eco.Resources(s.resources[:0])
	for _, r := range s.resources {
		if r.Kind != components.ResourceCarcass {
			drawResource(r)
		}
	}

	s.agents = eco.Agents(s.agents)
	for _, a := range s.agents {
		drawAgent(a)
	}

	for _, r := range s.resources {
		if r.Kind == components.ResourceCarcass {
			drawResource(r)
		}
	}
}

// DrawSelection rings an agent.
func (s *Scene) DrawSelection(x, y, size float64) {
	rl.DrawCircleLines(int32(x), int32(y), float32(size+4), colorSelection)
}

func drawAgent(a ecosystem.AgentView) {
	c := colorHerbivore
	if a.Kind == components.KindPredator {
		c = colorPredator
	}
	if a.Asleep {
		c = rl.ColorAlpha(c, 0.5)
	}
	rl.DrawCircle(int32(a.X), int32(a.Y), float32(a.Size), c)
}

func drawResource(r ecosystem.ResourceView) {
	x, y, size := float32(r.X), float32(r.Y), float32(r.Size)
	switch r.Kind {
	case components.ResourceFood:
		rl.DrawRectangleV(rl.Vector2{X: x - size/2, Y: y - size/2}, rl.Vector2{X: size, Y: size}, colorFood)
	case components.ResourceWater:
		rl.DrawCircleV(rl.Vector2{X: x, Y: y}, size, colorWater)
	case components.ResourceCarcass:
		rl.DrawLineEx(rl.Vector2{X: x - size, Y: y}, rl.Vector2{X: x + size, Y: y}, 3, colorCarcass)
		rl.DrawLineEx(rl.Vector2{X: x, Y: y - size}, rl.Vector2{X: x, Y: y + size}, 3, colorCarcass)
	}
}

// Unload frees resources.
func (s *Scene) Unload() {
	s.background.Unload()
}
