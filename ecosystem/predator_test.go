package ecosystem

import (
	"testing"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/systems"
)

func TestChaseGivesUpAfterMaxChaseTime(t *testing.T) {
	eco := newTestEcosystem(t, midnightT)
	pred := spawn(eco, components.KindPredator, 300, 60)
	prey := spawn(eco, components.KindHerbivore, 380, 60)

	pv := eco.view(pred)
	pv.st.Target = components.EntityTarget(components.TargetAgent, prey)
	limit := pv.sp.MaxChaseTime

	// Hold both in place so the prey stays 80 units ahead for the whole chase.
	dropped := -1.0
	elapsed := 0.0
	for elapsed < limit+10 {
		p, v := eco.view(pred), eco.view(prey)
		p.pos.X, p.pos.Y = 300, 60
		v.pos.X, v.pos.Y = 380, 60
		p.vit.Hunger = 5
		p.vit.Thirst = 0

		eco.Advance(testDT)
		elapsed += testDT

		if eco.view(pred).st.Target.Kind != components.TargetAgent {
			dropped = elapsed
			break
		}
	}

	if dropped < 0 {
		t.Fatalf("predator still chasing after %.1fs, max chase time %v", elapsed, limit)
	}
	if dropped < limit-0.1 || dropped > limit+0.1 {
		t.Errorf("chase dropped after %.2fs, want %v", dropped, limit)
	}
	if got := eco.view(pred).hunt.ChaseTimer; got != 0 {
		t.Errorf("chase timer = %v after giving up, want 0", got)
	}
}

func TestDesperationOverridesTarget(t *testing.T) {
	tests := []struct {
		name   string
		hunger float64
		want   components.TargetKind
	}{
		{"desperate predator hunts", 25, components.TargetAgent},
		{"peckish predator keeps waypoint", 5, components.TargetWaypoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eco := newTestEcosystem(t, midnightT)
			pred := spawn(eco, components.KindPredator, 300, 100)
			prey := spawn(eco, components.KindHerbivore, 380, 100)

			v := eco.view(pred)
			v.vit.Hunger = tt.hunger
			v.st.Target = components.Waypoint(300, 500)

			eco.Advance(testDT)

			got := eco.view(pred).st.Target
			if got.Kind != tt.want {
				t.Fatalf("target = %v, want %v", got.Kind, tt.want)
			}
			if tt.want == components.TargetAgent && got.Entity != prey {
				t.Errorf("target = %v, want the herbivore %v", got.Entity, prey)
			}
		})
	}
}

func TestPredatorsSpaceOutAfterBirth(t *testing.T) {
	tests := []struct {
		name       string
		avoidTimer float64
		wantApart  bool
	}{
		{"avoid timer running", 5, true},
		{"avoid timer expired", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Predators rest by day, so only the avoidance push moves them.
			eco := newTestEcosystem(t, middayT)
			a := spawn(eco, components.KindPredator, 400, 100)
			b := spawn(eco, components.KindPredator, 450, 100)
			eco.view(a).drv.AvoidTimer = tt.avoidTimer

			dist := func() float64 {
				pa, pb := eco.view(a).pos, eco.view(b).pos
				return systems.Distance(pa.X, pa.Y, pb.X, pb.Y)
			}
			before := dist()

			eco.Advance(testDT)

			after := dist()
			if tt.wantApart && after <= before {
				t.Errorf("distance %v -> %v, want predators pushed apart", before, after)
			}
			if !tt.wantApart && after != before {
				t.Errorf("distance %v -> %v, want unchanged", before, after)
			}
		})
	}
}
