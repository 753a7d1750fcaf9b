package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// timeScaleStep is the factor applied by one press of = or -.
const timeScaleStep = 1.1

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	cycle := g.eco.Cycle()

	if rl.IsKeyPressed(rl.KeySpace) {
		g.eco.TogglePaused()
	}

	if rl.IsKeyPressed(rl.KeyI) {
		g.toggleInfo()
	}

	if rl.IsKeyPressed(rl.KeyF) {
		g.showFertility = !g.showFertility
	}

	// Clock speed
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		cycle.ScaleTime(timeScaleStep)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		cycle.ScaleTime(1 / timeScaleStep)
	}
	if rl.IsKeyPressed(rl.KeyZero) {
		cycle.ResetTimeScale()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonRight) || rl.IsKeyPressed(rl.KeyBackspace) {
		g.inspector.Deselect()
		g.showInfo = false
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		g.handleClick(rl.GetMousePosition())
	}
}

// handleClick selects the agent under the cursor, or drops food on empty
// ground. Clicks on the HUD or the inspector panel are left to them.
func (g *Game) handleClick(mouse rl.Vector2) {
	if g.hud.Contains(mouse.X, mouse.Y) {
		return
	}
	if g.showInfo && g.inspector.HandleClick(int32(mouse.X), int32(mouse.Y), g.panelHeight) {
		if _, ok := g.inspector.Selected(); !ok {
			g.showInfo = false
		}
		return
	}
	if g.selectAt(mouse) {
		return
	}
	g.eco.AddFood(float64(mouse.X), float64(mouse.Y))
}
