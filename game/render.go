package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/ui"
)

// Draw renders the frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	g.scene.Draw(g.eco, g.showFertility)
	g.drawSelection()
	g.drawHoverStatus()

	cycle := g.eco.Cycle()
	actions := g.hud.Draw(ui.HUDData{
		Herbivores:     g.eco.Population(components.KindHerbivore),
		Predators:      g.eco.Population(components.KindPredator),
		MaxHerbivores:  g.cfg.Population.MaxHerbivores,
		MaxPredators:   g.cfg.Population.MaxPredators,
		Food:           g.eco.FoodCount(),
		Carcasses:      g.eco.CarcassCount(),
		Tick:           g.eco.Tick(),
		SimTime:        g.eco.SimTime(),
		IsDay:          cycle.IsDay(),
		CycleProgress:  cycle.Progress(),
		TimeScale:      cycle.TimeScale(),
		StepsPerUpdate: g.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         g.eco.Paused(),
		ScreenWidth:    g.screenWidth,
		ScreenHeight:   g.screenHeight,
	})
	if actions.TogglePause {
		g.eco.TogglePaused()
	}
	if actions.TimeScaleChanged {
		cycle.SetTimeScale(actions.TimeScale)
	}

	g.panelHeight = 0
	if g.showInfo {
		g.panelHeight = g.inspector.Draw(g.eco)
		if _, ok := g.inspector.Selected(); !ok {
			g.showInfo = false
		}
	}

	g.hud.DrawControls(g.screenHeight)
}
