package ecosystem

import (
	"testing"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/systems"
)

// takeSnapshot fills the agent list the way Advance does, for tests that
// call movement helpers directly.
func takeSnapshot(eco *Ecosystem) {
	eco.snapshot = eco.snapshot[:0]
	query := eco.agentFilter.Query()
	for query.Next() {
		eco.snapshot = append(eco.snapshot, query.Entity())
	}
}

func TestAvoidEdges(t *testing.T) {
	tests := []struct {
		name     string
		x, y     float64
		wantPush bool
		wantDX   int // sign of the x change
		wantDY   int // sign of the y change
	}{
		{"left edge", 5, 300, true, 1, 0},
		{"right edge", 795, 300, true, -1, 0},
		{"top edge", 400, 5, true, 0, 1},
		{"bottom edge", 400, 595, true, 0, -1},
		{"top-left corner moves along x only", 5, 5, true, 1, 0},
		{"bottom-right corner moves along x only", 795, 595, true, -1, 0},
		{"interior", 400, 100, false, 0, 0},
	}

	sign := func(d float64) int {
		switch {
		case d > 0:
			return 1
		case d < 0:
			return -1
		}
		return 0
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eco := newTestEcosystem(t, middayT)
			v := eco.view(spawn(eco, components.KindHerbivore, tt.x, tt.y))

			got := eco.avoidEdges(&v, testDT)

			if got != tt.wantPush {
				t.Fatalf("avoidEdges() = %v, want %v", got, tt.wantPush)
			}
			if dx := sign(v.pos.X - tt.x); dx != tt.wantDX {
				t.Errorf("x moved %v -> %v, want direction %d", tt.x, v.pos.X, tt.wantDX)
			}
			if dy := sign(v.pos.Y - tt.y); dy != tt.wantDY {
				t.Errorf("y moved %v -> %v, want direction %d", tt.y, v.pos.Y, tt.wantDY)
			}
		})
	}
}

func TestWaterPushBlockedByPredator(t *testing.T) {
	tests := []struct {
		name       string
		predator   bool
		predAsleep bool
		predDist   float64
		wantPushed bool
	}{
		{"no predator", false, false, 0, true},
		{"awake predator close", true, false, 30, false},
		{"sleeping predator close", true, true, 30, false},
		{"predator beyond fear distance", true, false, 120, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eco := newTestEcosystem(t, middayT)
			wx, wy := 0.5*eco.cfg.Derived.WorldW, 0.5*eco.cfg.Derived.WorldH

			// Inside the contact band of the central pond.
			e := spawn(eco, components.KindHerbivore, wx+60, wy)
			if tt.predator {
				p := eco.view(spawn(eco, components.KindPredator, wx+60, wy+tt.predDist))
				p.st.Asleep = tt.predAsleep
			}
			takeSnapshot(eco)

			v := eco.view(e)
			before := systems.Distance(v.pos.X, v.pos.Y, wx, wy)
			eco.avoidWater(&v, testDT)
			after := systems.Distance(v.pos.X, v.pos.Y, wx, wy)

			if tt.wantPushed && after <= before {
				t.Errorf("distance to water %v -> %v, want pushed out", before, after)
			}
			if !tt.wantPushed && after != before {
				t.Errorf("distance to water %v -> %v, want no push", before, after)
			}
		})
	}
}

func TestAgentsWrapAroundWorld(t *testing.T) {
	tests := []struct {
		name         string
		x, y         float64
		wayX, wayY   float64
		wantX, wantY float64
	}{
		{"off the right edge", 799.9, 100, 820, 100, 0.15, 100},
		{"off the left edge", 0.1, 100, -20, 100, 799.85, 100},
		{"off the bottom edge", 100, 599.9, 100, 620, 100, 0.15},
		{"off the top edge", 100, 0.1, 100, -20, 100, 599.85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eco := newTestEcosystem(t, midnightT)
			e := spawn(eco, components.KindPredator, tt.x, tt.y)
			v := eco.view(e)
			v.st.Target = components.Waypoint(tt.wayX, tt.wayY)

			eco.Advance(testDT)

			pos := eco.view(e).pos
			w, h := eco.cfg.Derived.WorldW, eco.cfg.Derived.WorldH
			if pos.X < 0 || pos.X >= w || pos.Y < 0 || pos.Y >= h {
				t.Fatalf("position (%v, %v) outside [0, %v) x [0, %v)", pos.X, pos.Y, w, h)
			}
			if d := systems.Distance(pos.X, pos.Y, tt.wantX, tt.wantY); d > 0.01 {
				t.Errorf("position (%v, %v), want (%v, %v)", pos.X, pos.Y, tt.wantX, tt.wantY)
			}
		})
	}
}
