package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/savanna/components"
)

func cost(total time.Duration, herbs, preds int, q QueueSizes) tickCost {
	c := tickCost{total: total, queued: q}
	c.phases[PhaseAgents] = total * 3 / 4
	c.phases[PhaseFlush] = total / 4
	c.agents[components.KindHerbivore] = herbs
	c.agents[components.KindPredator] = preds
	c.agentTime[components.KindHerbivore] = time.Duration(herbs) * 10 * time.Microsecond
	c.agentTime[components.KindPredator] = time.Duration(preds) * 30 * time.Microsecond
	return c
}

func TestPerfCollector_Stats(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.push(cost(1*time.Millisecond, 20, 10, QueueSizes{}))
	pc.push(cost(2*time.Millisecond, 20, 10, QueueSizes{Removals: 1, Carcasses: 1}))
	pc.push(cost(3*time.Millisecond, 22, 8, QueueSizes{Removals: 2, Births: 3}))
	pc.push(cost(6*time.Millisecond, 22, 8, QueueSizes{}))

	s := pc.Stats()

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"ticks", float64(s.Ticks), 4},
		{"avg tick", float64(s.AvgTick), float64(3 * time.Millisecond)},
		{"p95 tick", float64(s.P95Tick), float64(6 * time.Millisecond)},
		{"max tick", float64(s.MaxTick), float64(6 * time.Millisecond)},
		{"agents pct", s.PhasePct[PhaseAgents], 75},
		{"flush pct", s.PhasePct[PhaseFlush], 25},
		{"clock pct", s.PhasePct[PhaseClock], 0},
		{"herbivore us", s.AgentUS[components.KindHerbivore], 10},
		{"predator us", s.AgentUS[components.KindPredator], 30},
		{"herbivores per tick", s.AgentsPerTick[components.KindHerbivore], 21},
		{"predators per tick", s.AgentsPerTick[components.KindPredator], 9},
		{"removals per tick", s.RemovalsPerTick, 0.75},
		{"births per tick", s.BirthsPerTick, 0.75},
		{"carcasses per tick", s.CarcassesPerTick, 0.25},
		{"max queued", float64(s.MaxQueued), 5},
	}
	for _, tt := range tests {
		if diff := tt.got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if s.TicksPerSecond < 333 || s.TicksPerSecond > 334 {
		t.Errorf("ticks per second = %v, want about 333", s.TicksPerSecond)
	}
}

func TestPerfCollector_WindowKeepsNewest(t *testing.T) {
	pc := NewPerfCollector(3)
	for i := 1; i <= 5; i++ {
		pc.push(cost(time.Duration(i)*time.Millisecond, 1, 1, QueueSizes{}))
	}

	s := pc.Stats()
	if s.Ticks != 3 {
		t.Errorf("ticks = %d, want 3", s.Ticks)
	}
	if s.AvgTick != 4*time.Millisecond {
		t.Errorf("avg tick = %v, want 4ms", s.AvgTick)
	}
	if s.MaxTick != 5*time.Millisecond {
		t.Errorf("max tick = %v, want 5ms", s.MaxTick)
	}
}

func TestPerfCollector_BracketedTick(t *testing.T) {
	pc := NewPerfCollector(4)

	pc.StartTick()
	pc.StartPhase(PhaseClock)
	pc.StartPhase(PhaseAgents)
	pc.AgentUpdated(components.KindHerbivore, 10*time.Microsecond)
	pc.AgentUpdated(components.KindHerbivore, 30*time.Microsecond)
	pc.AgentUpdated(components.KindPredator, 50*time.Microsecond)
	pc.StartPhase(PhaseFlush)
	pc.Flushed(QueueSizes{Removals: 1, Births: 2})
	pc.StartPhase(PhaseResources)
	pc.Flushed(QueueSizes{Births: 1, Carcasses: 1})
	pc.EndTick()

	s := pc.Stats()
	if s.Ticks != 1 {
		t.Fatalf("ticks = %d, want 1", s.Ticks)
	}
	if s.AgentUS[components.KindHerbivore] != 20 {
		t.Errorf("herbivore us = %v, want 20", s.AgentUS[components.KindHerbivore])
	}
	if s.AgentUS[components.KindPredator] != 50 {
		t.Errorf("predator us = %v, want 50", s.AgentUS[components.KindPredator])
	}
	if s.BirthsPerTick != 3 || s.RemovalsPerTick != 1 || s.CarcassesPerTick != 1 {
		t.Errorf("queues = %v/%v/%v, want 1/3/1", s.RemovalsPerTick, s.BirthsPerTick, s.CarcassesPerTick)
	}
	if s.MaxQueued != 5 {
		t.Errorf("max queued = %d, want 5", s.MaxQueued)
	}

	// The next tick starts from zero.
	pc.StartTick()
	pc.EndTick()
	if got := pc.Stats().MaxQueued; got != 5 {
		t.Errorf("max queued after empty tick = %d, want 5", got)
	}
	if got := pc.Stats().BirthsPerTick; got != 1.5 {
		t.Errorf("births per tick = %v, want 1.5", got)
	}
}

func TestPerfCollector_Empty(t *testing.T) {
	s := NewPerfCollector(0).Stats()
	if s.Ticks != 0 || s.AvgTick != 0 || s.TicksPerSecond != 0 {
		t.Errorf("empty stats = %+v, want zero", s)
	}
}

func TestPerfCollector_FPS(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.frame = 20 * time.Millisecond
	if got := pc.Stats().FPS; got != 50 {
		t.Errorf("fps = %v, want 50", got)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	var s PerfStats
	s.AvgTick = 1500 * time.Microsecond
	s.PhasePct[PhaseAgents] = 60
	s.PhasePct[PhaseTelemetry] = 5
	s.AgentUS[components.KindPredator] = 12.5
	s.CarcassesPerTick = 0.1
	s.MaxQueued = 4

	row := s.ToCSV(600)
	if row.WindowEnd != 600 || row.AvgTickUS != 1500 {
		t.Errorf("row = %+v", row)
	}
	if row.AgentsPct != 60 || row.TelemetryPct != 5 || row.ClockPct != 0 {
		t.Errorf("phase columns = %v/%v/%v", row.AgentsPct, row.TelemetryPct, row.ClockPct)
	}
	if row.PredatorUS != 12.5 || row.CarcassesPerTick != 0.1 || row.MaxQueued != 4 {
		t.Errorf("agent/queue columns = %+v", row)
	}
}
