package components

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
)

func carcasses(n int) []ecs.Entity {
	world := ecs.NewWorld()
	m := ecs.NewMap[Carcass](world)
	out := make([]ecs.Entity, n)
	for i := range out {
		out[i] = m.NewEntity(&Carcass{})
	}
	return out
}

func TestHunter_RememberDropsOldest(t *testing.T) {
	es := carcasses(4)
	var h Hunter
	for _, e := range es {
		h.Remember(e, 3)
	}

	if len(h.History) != 3 {
		t.Fatalf("history length = %d, want 3", len(h.History))
	}
	for i, want := range es[1:] {
		if h.History[i] != want {
			t.Errorf("History[%d] = %v, want %v", i, h.History[i], want)
		}
	}
}

func TestHunter_Forget(t *testing.T) {
	es := carcasses(3)
	h := Hunter{Current: es[1], EatingCarcass: true}
	for _, e := range es {
		h.Remember(e, 5)
	}

	h.Forget(es[1])

	if len(h.History) != 2 || h.History[0] != es[0] || h.History[1] != es[2] {
		t.Errorf("history = %v, want [%v %v]", h.History, es[0], es[2])
	}
	if !h.Current.IsZero() {
		t.Error("current carcass should be cleared")
	}
	if h.EatingCarcass {
		t.Error("eating flag should be cleared with the current carcass")
	}

	h.Current = es[0]
	h.EatingCarcass = true
	h.Forget(es[2])
	if h.Current != es[0] || !h.EatingCarcass {
		t.Error("forgetting another carcass should keep the current one")
	}
}

func TestTargetVariants(t *testing.T) {
	es := carcasses(1)

	tests := []struct {
		name      string
		target    Target
		none      bool
		hasEntity bool
	}{
		{"none", NoTarget, true, false},
		{"waypoint", Waypoint(10, 20), false, false},
		{"food", EntityTarget(TargetFood, es[0]), false, true},
		{"water", EntityTarget(TargetWater, es[0]), false, true},
		{"carcass", EntityTarget(TargetCarcass, es[0]), false, true},
		{"agent", EntityTarget(TargetAgent, es[0]), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.target.IsNone(); got != tt.none {
				t.Errorf("IsNone() = %v, want %v", got, tt.none)
			}
			if got := tt.target.HasEntity(); got != tt.hasEntity {
				t.Errorf("HasEntity() = %v, want %v", got, tt.hasEntity)
			}
			if got := tt.target.Kind.String(); got != tt.name {
				t.Errorf("Kind.String() = %q, want %q", got, tt.name)
			}
		})
	}
}

func TestCarcass_Spent(t *testing.T) {
	tests := []struct {
		name string
		c    Carcass
		want bool
	}{
		{"fresh", Carcass{Remaining: 100, Lifespan: 60}, false},
		{"eaten", Carcass{Remaining: 0, Lifespan: 60}, true},
		{"rotten", Carcass{Remaining: 40, Age: 60, Lifespan: 60}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Spent(); got != tt.want {
				t.Errorf("Spent() = %v, want %v", got, tt.want)
			}
		})
	}
}
