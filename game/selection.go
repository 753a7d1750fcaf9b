package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
)

// hovered returns the agent under the mouse cursor.
func (g *Game) hovered() (ecs.Entity, bool) {
	mouse := rl.GetMousePosition()
	return g.eco.AgentAt(float64(mouse.X), float64(mouse.Y))
}

// selectAt selects the agent at a screen point and reports whether one was hit.
func (g *Game) selectAt(p rl.Vector2) bool {
	e, ok := g.eco.AgentAt(float64(p.X), float64(p.Y))
	if !ok {
		return false
	}
	g.inspector.Select(e)
	return true
}

// toggleInfo shows or hides the inspector. Showing it with nothing selected
// picks the hovered agent.
func (g *Game) toggleInfo() {
	if g.showInfo {
		g.showInfo = false
		return
	}
	if _, ok := g.inspector.Selected(); !ok {
		e, ok := g.hovered()
		if !ok {
			return
		}
		g.inspector.Select(e)
	}
	g.showInfo = true
}

// drawSelection rings the selected agent, dropping selections that died.
func (g *Game) drawSelection() {
	e, ok := g.inspector.Selected()
	if !ok {
		return
	}
	view, alive := g.eco.Lookup(e)
	if !alive {
		g.inspector.Deselect()
		g.showInfo = false
		return
	}
	g.scene.DrawSelection(view.X, view.Y, view.Size)
}

// drawHoverStatus shows the status line of the agent under the cursor.
func (g *Game) drawHoverStatus() {
	e, ok := g.hovered()
	if !ok {
		return
	}
	view, _ := g.eco.Lookup(e)
	g.hud.Renderer().DrawTooltip(int32(view.X), int32(view.Y-view.Size-20), g.eco.Status(e))
}
