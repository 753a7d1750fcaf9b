// Package inspector draws a panel with the live component values of one
// selected agent.
package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/ecosystem"
)

// Panel dimensions
const (
	PanelWidth   = 320
	PanelPadding = 10
	HeaderHeight = 30
	rowHeight    = 18
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
)

// Inspector tracks the selected agent and renders its panel.
type Inspector struct {
	selected    ecs.Entity
	hasSelected bool
	panelX      int32
	panelY      int32
}

// NewInspector creates an inspector docked to the right edge of the screen.
func NewInspector(screenWidth int32) *Inspector {
	return &Inspector{
		panelX: screenWidth - PanelWidth - 10,
		panelY: 10,
	}
}

// Select makes e the inspected agent.
func (ins *Inspector) Select(e ecs.Entity) {
	ins.selected = e
	ins.hasSelected = true
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
	ins.selected = ecs.Entity{}
}

// Selected returns the currently selected entity.
func (ins *Inspector) Selected() (ecs.Entity, bool) {
	return ins.selected, ins.hasSelected
}

// HandleClick reports whether a left click at (mouseX, mouseY) landed on the
// panel. A click on the close button also clears the selection.
func (ins *Inspector) HandleClick(mouseX, mouseY int32, panelHeight int32) bool {
	if !ins.hasSelected {
		return false
	}
	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	if mouseX >= closeX && mouseX <= closeX+20 && mouseY >= closeY && mouseY <= closeY+20 {
		ins.Deselect()
		return true
	}
	return mouseX >= ins.panelX && mouseX <= ins.panelX+PanelWidth &&
		mouseY >= ins.panelY && mouseY <= ins.panelY+panelHeight
}

// Draw renders the panel for the selected agent and returns its height. A
// selection that no longer exists is dropped and nothing is drawn.
func (ins *Inspector) Draw(eco *ecosystem.Ecosystem) int32 {
	if !ins.hasSelected {
		return 0
	}
	comps := eco.Components(ins.selected)
	if comps == nil {
		ins.Deselect()
		return 0
	}

	sections := make([][]Field, len(comps))
	panelHeight := int32(HeaderHeight + PanelPadding + 2*rowHeight)
	for i, c := range comps {
		sections[i] = ExtractFields(c.Value)
		panelHeight += 20 + int32(len(sections[i]))*rowHeight + 4
	}
	panelHeight += PanelPadding

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(panelHeight)},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("INSPECTOR", ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	x := ins.panelX + PanelPadding
	y := ins.panelY + HeaderHeight + PanelPadding

	kind, target := components.KindHerbivore, components.Target{}
	for _, c := range comps {
		switch v := c.Value.(type) {
		case components.State:
			target = v.Target
		case components.Hunter:
			kind = components.KindPredator
		}
	}
	rl.DrawText(fmt.Sprintf("ID: %d  Kind: %s", ins.selected.ID(), kind), x, y, 14, ColorHeaderText)
	y += rowHeight
	y += DrawLabel(x, y, "Target", target.Kind.String(), nil)

	for i, c := range comps {
		ins.drawSectionHeader(x, y, c.Name)
		y += 20
		for _, f := range sections[i] {
			y += DrawField(x, y, f)
		}
		y += 4
	}

	return panelHeight
}

// drawSectionHeader renders a section title.
func (ins *Inspector) drawSectionHeader(x, y int32, title string) {
	rl.DrawRectangle(x-2, y-2, PanelWidth-2*PanelPadding+4, 18, ColorSection)
	rl.DrawText(title, x+2, y, 14, ColorSectionText)
}
