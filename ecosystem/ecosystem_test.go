package ecosystem

import (
	"strings"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
	"github.com/pthm-cable/savanna/telemetry"
)

const (
	testDT    = 1.0 / 60
	middayT   = 50.0
	midnightT = 200.0
)

type recordingObserver struct {
	births [components.NumKinds]int
	deaths map[components.DeathCause]int
	kills  int
	food   int
	drinks int
	bites  int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{deaths: make(map[components.DeathCause]int)}
}

func (o *recordingObserver) RecordBirth(kind components.Kind) { o.births[kind]++ }
func (o *recordingObserver) RecordDeath(_ components.Kind, cause components.DeathCause) {
	o.deaths[cause]++
}
func (o *recordingObserver) RecordKill()                 { o.kills++ }
func (o *recordingObserver) RecordFoodEaten()            { o.food++ }
func (o *recordingObserver) RecordDrink(components.Kind) { o.drinks++ }
func (o *recordingObserver) RecordCarcassBite()          { o.bites++ }

// newTestEcosystem returns an empty ecosystem at the given clock time, with
// random food growth switched off.
func newTestEcosystem(t *testing.T, timer float64) *Ecosystem {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Food.SpawnRate = 0
	eco := New(cfg, 1)
	eco.Cycle().SetTimer(timer)
	for _, wc := range cfg.Water {
		eco.AddWater(wc.XFrac*cfg.Derived.WorldW, wc.YFrac*cfg.Derived.WorldH, wc.Radius)
	}
	return eco
}

func spawn(eco *Ecosystem, kind components.Kind, x, y float64) ecs.Entity {
	size := eco.species(kind).Size
	return eco.createAgent(birth{kind: kind, x: x, y: y, size: size, maxSize: size})
}

func countKind(eco *Ecosystem, kind components.Kind) int {
	n := 0
	for _, a := range eco.Agents(nil) {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

func TestTwoReadyHerbivoresProduceOneBaby(t *testing.T) {
	eco := newTestEcosystem(t, middayT)
	a := spawn(eco, components.KindHerbivore, 400, 100)
	b := spawn(eco, components.KindHerbivore, 404, 100)
	for _, e := range []ecs.Entity{a, b} {
		v := eco.view(e)
		v.drv.Reproductive = v.sp.TimeToReproduce
		v.drv.Ready = true
	}

	eco.Advance(testDT)

	if got := eco.Population(components.KindHerbivore); got != 3 {
		t.Fatalf("herbivores = %d, want 3", got)
	}

	babies := 0
	query := eco.agentFilter.Query()
	for query.Next() {
		_, _, body, _, _, _, _ := query.Get()
		if body.IsBaby {
			babies++
			if body.Size >= body.MaxSize {
				t.Errorf("baby size %v should be below max %v", body.Size, body.MaxSize)
			}
		}
	}
	if babies != 1 {
		t.Errorf("babies = %d, want 1", babies)
	}

	for _, e := range []ecs.Entity{a, b} {
		v := eco.view(e)
		if v.drv.Ready {
			t.Errorf("parent %v still ready", e)
		}
		if v.drv.Cooldown <= 0 {
			t.Errorf("parent %v cooldown = %v, want > 0", e, v.drv.Cooldown)
		}
		if v.st.Target.Kind != components.TargetWaypoint {
			t.Errorf("parent %v target = %v, want waypoint", e, v.st.Target.Kind)
		}
	}
}

func countBabies(eco *Ecosystem) int {
	n := 0
	query := eco.agentFilter.Query()
	for query.Next() {
		_, _, body, _, _, _, _ := query.Get()
		if body.IsBaby {
			n++
		}
	}
	return n
}

func TestReproductionRespectsCap(t *testing.T) {
	tests := []struct {
		name       string
		kind       components.Kind
		timer      float64
		cap        int
		wantPop    int
		wantBabies int
	}{
		{"herbivores with room for both pairs", components.KindHerbivore, middayT, 10, 6, 2},
		{"herbivore pairs race for last slot", components.KindHerbivore, middayT, 5, 5, 1},
		{"herbivores at cap", components.KindHerbivore, middayT, 4, 4, 0},
		{"predators with room for both pairs", components.KindPredator, midnightT, 10, 6, 2},
		{"predator pairs race for last slot", components.KindPredator, midnightT, 5, 5, 1},
		{"predators at cap", components.KindPredator, midnightT, 4, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eco := newTestEcosystem(t, tt.timer)
			if tt.kind == components.KindPredator {
				eco.cfg.Population.MaxPredators = tt.cap
			} else {
				eco.cfg.Population.MaxHerbivores = tt.cap
			}
			for _, x := range []float64{300, 304, 500, 504} {
				v := eco.view(spawn(eco, tt.kind, x, 100))
				v.drv.Reproductive = v.sp.TimeToReproduce
				v.drv.Ready = true
			}

			for i := 0; i < 30; i++ {
				eco.Advance(testDT)
				if got := eco.Population(tt.kind); got > tt.cap {
					t.Fatalf("tick %d: population %d exceeds cap %d", i, got, tt.cap)
				}
			}
			if got := eco.Population(tt.kind); got != tt.wantPop {
				t.Errorf("population = %d, want %d", got, tt.wantPop)
			}
			if got := countBabies(eco); got != tt.wantBabies {
				t.Errorf("babies = %d, want %d", got, tt.wantBabies)
			}
		})
	}
}

func TestThirstThresholdScenario(t *testing.T) {
	eco := newTestEcosystem(t, middayT)
	e := spawn(eco, components.KindHerbivore, 200, 450)
	v := eco.view(e)
	v.vit.Thirst = v.sp.ThirstThreshold()

	eco.Advance(testDT)
	if got := eco.view(e).st.Target.Kind; got == components.TargetWater {
		t.Fatalf("after tick 1 target = %v, want no water target yet", got)
	}
	if got := eco.view(e).vit.Thirst; got <= v.sp.ThirstThreshold() {
		t.Fatalf("thirst %v should be above threshold after a tick", got)
	}

	eco.Advance(testDT)
	if got := eco.view(e).st.Target.Kind; got != components.TargetWater {
		t.Errorf("after tick 2 target = %v, want water", got)
	}
}

func TestOldAgeRemoval(t *testing.T) {
	tests := []struct {
		name   string
		asleep bool
	}{
		{"awake", false},
		{"asleep", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eco := newTestEcosystem(t, middayT)
			obs := newRecordingObserver()
			eco.SetObserver(obs)
			e := spawn(eco, components.KindHerbivore, 400, 100)
			v := eco.view(e)
			v.vit.Age = v.vit.MaxAge - 0.001
			v.st.Asleep = tt.asleep

			eco.Advance(0.01)

			if eco.Exists(e) {
				t.Error("agent past its lifespan still exists")
			}
			if got := countKind(eco, components.KindHerbivore); got != 0 {
				t.Errorf("herbivores in world = %d, want 0", got)
			}
			if obs.deaths[components.CauseAge] != 1 {
				t.Errorf("age deaths = %d, want 1", obs.deaths[components.CauseAge])
			}
		})
	}
}

func TestDehydrationAtFullHealth(t *testing.T) {
	eco := newTestEcosystem(t, middayT)
	obs := newRecordingObserver()
	eco.SetObserver(obs)
	e := spawn(eco, components.KindPredator, 300, 520)
	v := eco.view(e)
	v.vit.Thirst = eco.cfg.Agent.DehydrationLimit * v.vit.MaxThirst
	v.st.Asleep = false
	v.st.RestPhase = true

	if v.vit.Health != v.vit.MaxHealth {
		t.Fatalf("health = %v, want full", v.vit.Health)
	}

	eco.Advance(testDT)

	if eco.Exists(e) {
		t.Error("dehydrated agent still exists")
	}
	if obs.deaths[components.CauseDehydration] != 1 {
		t.Errorf("dehydration deaths = %d, want 1", obs.deaths[components.CauseDehydration])
	}
}

func TestKillCreatesOneCarcass(t *testing.T) {
	eco := newTestEcosystem(t, midnightT)
	obs := newRecordingObserver()
	eco.SetObserver(obs)

	prey := spawn(eco, components.KindHerbivore, 305, 500)
	pv := eco.view(prey)
	pv.st.Asleep = true
	px, py := pv.pos.X, pv.pos.Y

	pred := spawn(eco, components.KindPredator, 300, 500)
	eco.view(pred).vit.Hunger = 20

	killed := false
	for i := 0; i < 10 && !killed; i++ {
		eco.Advance(testDT)
		killed = !eco.Exists(prey)
	}
	if !killed {
		t.Fatal("predator never killed adjacent prey")
	}

	if got := eco.CarcassCount(); got != 1 {
		t.Fatalf("carcasses = %d, want 1", got)
	}
	c := eco.Carcasses(nil)[0]
	if c.X != px || c.Y != py {
		t.Errorf("carcass at (%v, %v), want (%v, %v)", c.X, c.Y, px, py)
	}
	if obs.kills != 1 {
		t.Errorf("kills = %d, want 1", obs.kills)
	}

	h := eco.hunterMap.Get(pred)
	if h.Current != c.Entity {
		t.Error("carcass is not the predator's current carcass")
	}
	if len(h.History) != 1 || h.History[0] != c.Entity {
		t.Errorf("history = %v, want [%v]", h.History, c.Entity)
	}
	if got := eco.view(pred).vit.Hunger; got >= 20 {
		t.Errorf("predator hunger = %v, want reduced by the kill", got)
	}

	eco.Advance(testDT)
	if got := countKind(eco, components.KindHerbivore); got != 0 {
		t.Errorf("herbivores = %d after kill, want 0", got)
	}
}

func TestPredatorBitesCarcass(t *testing.T) {
	eco := newTestEcosystem(t, midnightT)
	obs := newRecordingObserver()
	eco.SetObserver(obs)

	pred := spawn(eco, components.KindPredator, 300, 500)
	eco.queueCarcass(305, 500, pred)
	eco.flush()

	v := eco.view(pred)
	v.vit.Hunger = 20
	v.hunt.EatingCarcass = true
	v.hunt.EatTimer = eco.cfg.Carcass.BiteInterval

	c := v.hunt.Current
	eco.Advance(testDT)

	if obs.bites != 1 {
		t.Fatalf("bites = %d, want 1", obs.bites)
	}
	car := eco.carcassOnly.Get(c)
	if want := eco.cfg.Carcass.Hunger - eco.cfg.Carcass.BiteSize; car.Remaining != want {
		t.Errorf("carcass remaining = %v, want %v", car.Remaining, want)
	}
	if got := eco.view(pred).vit.Hunger; got > 20-eco.cfg.Carcass.BiteSize+0.1 {
		t.Errorf("hunger = %v, want reduced by a bite", got)
	}
}

func TestCarcassRotsAway(t *testing.T) {
	eco := newTestEcosystem(t, middayT)
	eco.cfg.Carcass.Lifespan = 1
	eco.queueCarcass(100, 100, ecs.Entity{})
	eco.flush()

	if eco.CarcassCount() != 1 {
		t.Fatalf("carcasses = %d, want 1", eco.CarcassCount())
	}
	eco.Advance(0.6)
	if eco.CarcassCount() != 1 {
		t.Fatalf("carcass removed early")
	}
	eco.Advance(0.6)
	if eco.CarcassCount() != 0 {
		t.Errorf("carcasses = %d after lifespan, want 0", eco.CarcassCount())
	}
	if len(eco.Carcasses(nil)) != 0 {
		t.Error("rotted carcass still in world")
	}
}

func TestFoodEatenOnlyOnce(t *testing.T) {
	eco := newTestEcosystem(t, middayT)
	obs := newRecordingObserver()
	eco.SetObserver(obs)
	eco.AddFood(400, 100)

	a := spawn(eco, components.KindHerbivore, 400, 95)
	b := spawn(eco, components.KindHerbivore, 400, 105)
	eco.view(a).vit.Hunger = 20
	eco.view(b).vit.Hunger = 20

	eco.Advance(testDT)

	if eco.FoodCount() != 0 {
		t.Fatalf("food = %d, want 0", eco.FoodCount())
	}
	if obs.food != 1 {
		t.Errorf("food eaten = %d, want 1", obs.food)
	}
	fed := 0
	for _, e := range []ecs.Entity{a, b} {
		v := eco.view(e)
		if v.vit.Hunger == 0 {
			fed++
		}
		if v.st.Target.Kind == components.TargetFood {
			t.Errorf("agent %v still targets eaten food", e)
		}
	}
	if fed != 1 {
		t.Errorf("fed herbivores = %d, want 1", fed)
	}
}

func TestStaleTargetBecomesNone(t *testing.T) {
	eco := newTestEcosystem(t, middayT)
	eco.AddFood(600, 100)
	food := eco.Foods(nil)[0].Entity

	e := spawn(eco, components.KindHerbivore, 400, 100)
	eco.view(e).st.Target = components.EntityTarget(components.TargetFood, food)

	eco.Remove(food)
	if eco.Exists(food) {
		t.Fatal("removed food still exists")
	}

	eco.Advance(testDT)
	if got := eco.view(e).st.Target.Kind; got != components.TargetNone {
		t.Errorf("target = %v, want none", got)
	}
}

func TestHerbivoreFallsAsleepAtNight(t *testing.T) {
	eco := newTestEcosystem(t, middayT)
	e := spawn(eco, components.KindHerbivore, 400, 100)

	eco.Cycle().SetTimer(midnightT)
	eco.Advance(testDT)

	v := eco.view(e)
	if !v.st.Asleep {
		t.Fatal("herbivore should sleep at night")
	}
	if v.vit.Sleep <= 0 || v.vit.Sleep > v.vit.MaxSleep {
		t.Errorf("sleep = %v, want in (0, %v]", v.vit.Sleep, v.vit.MaxSleep)
	}
	x, y := v.pos.X, v.pos.Y
	eco.Advance(testDT)
	if v := eco.view(e); v.pos.X != x || v.pos.Y != y {
		t.Error("sleeping herbivore moved")
	}
}

func TestBabyGrowsUp(t *testing.T) {
	eco := newTestEcosystem(t, middayT)
	e := eco.createAgent(birth{kind: components.KindHerbivore, x: 400, y: 100, size: 9.9, maxSize: 10, baby: true})

	eco.Advance(0.5)

	v := eco.view(e)
	if v.body.IsBaby {
		t.Error("baby at max size should be grown")
	}
	if v.body.Size != v.body.MaxSize {
		t.Errorf("size = %v, want %v", v.body.Size, v.body.MaxSize)
	}
	if v.body.GrowthTime != 0 {
		t.Errorf("growth time = %v, want reset to 0", v.body.GrowthTime)
	}
}

func TestAdvanceZeroIsNoop(t *testing.T) {
	eco := newTestEcosystem(t, middayT)
	eco.Populate()
	for i := 0; i < 30; i++ {
		eco.Advance(testDT)
	}

	type state struct {
		pos components.Position
		vit components.Vitals
		drv components.Drive
	}
	capture := func() map[ecs.Entity]state {
		out := make(map[ecs.Entity]state)
		query := eco.agentFilter.Query()
		for query.Next() {
			pos, _, _, vit, drv, _, _ := query.Get()
			out[query.Entity()] = state{*pos, *vit, *drv}
		}
		return out
	}

	before := capture()
	food, timer, tick := eco.FoodCount(), eco.Cycle().Timer(), eco.Tick()

	eco.Advance(0)

	after := capture()
	if len(after) != len(before) {
		t.Fatalf("agents = %d, want %d", len(after), len(before))
	}
	for e, s := range before {
		if after[e] != s {
			t.Errorf("agent %v changed: %+v -> %+v", e, s, after[e])
		}
	}
	if eco.FoodCount() != food || eco.Cycle().Timer() != timer || eco.Tick() != tick {
		t.Error("Advance(0) changed world state")
	}
}

func TestPausedAdvanceIsNoop(t *testing.T) {
	eco := newTestEcosystem(t, middayT)
	e := spawn(eco, components.KindHerbivore, 400, 100)
	age := eco.view(e).vit.Age

	if !eco.TogglePaused() {
		t.Fatal("TogglePaused should report paused")
	}
	eco.Advance(1)

	if got := eco.view(e).vit.Age; got != age {
		t.Errorf("age = %v while paused, want %v", got, age)
	}
	if eco.Tick() != 0 {
		t.Errorf("tick = %d while paused, want 0", eco.Tick())
	}
}

type phaseRecorder struct{ edges []bool }

func (p *phaseRecorder) PhaseChanged(isDay bool) { p.edges = append(p.edges, isDay) }

func TestPhaseListenerEdges(t *testing.T) {
	eco := newTestEcosystem(t, 159.9)
	rec := &phaseRecorder{}
	eco.SetPhaseListener(rec)

	eco.Advance(0.05)
	if len(rec.edges) != 0 {
		t.Fatalf("edges = %v before dusk, want none", rec.edges)
	}
	eco.Advance(0.1)
	eco.Advance(0.1)
	if len(rec.edges) != 1 || rec.edges[0] {
		t.Errorf("edges = %v, want [false]", rec.edges)
	}
}

func TestStatusAndAgentAt(t *testing.T) {
	eco := newTestEcosystem(t, middayT)
	e := spawn(eco, components.KindHerbivore, 400, 100)

	got, ok := eco.AgentAt(403, 100)
	if !ok || got != e {
		t.Fatalf("AgentAt = %v, %v; want %v", got, ok, e)
	}
	if _, ok := eco.AgentAt(450, 100); ok {
		t.Error("AgentAt found an agent in empty space")
	}

	status := eco.Status(e)
	for _, part := range []string{"Health: 80/80", "Hunger: 0/60", "Ready: no"} {
		if !strings.Contains(status, part) {
			t.Errorf("status %q missing %q", status, part)
		}
	}
	if eco.Status(ecs.Entity{}) != "" {
		t.Error("status of a dead handle should be empty")
	}
}

func TestLongRunInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("long simulation")
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	eco := New(cfg, 42)
	eco.Populate()

	const eps = 1e-9
	for i := 0; i < 600; i++ {
		eco.Advance(0.5)

		counts := [components.NumKinds]int{}
		query := eco.agentFilter.Query()
		for query.Next() {
			_, _, body, vit, _, _, spc := query.Get()
			counts[spc.Kind]++
			if vit.Hunger < 0 || vit.Thirst < 0 || vit.Health < 0 || vit.Age < 0 {
				t.Errorf("tick %d: negative vitals %+v", i, *vit)
			}
			if vit.Sleep < 0 || vit.Sleep > vit.MaxSleep+eps {
				t.Errorf("tick %d: sleep %v outside [0, %v]", i, vit.Sleep, vit.MaxSleep)
			}
			if body.Size <= 0 || body.Size > body.MaxSize+eps {
				t.Errorf("tick %d: size %v outside (0, %v]", i, body.Size, body.MaxSize)
			}
		}
		if t.Failed() {
			return
		}

		for k := components.Kind(0); k < components.NumKinds; k++ {
			if counts[k] != eco.Population(k) {
				t.Fatalf("tick %d: %v count %d, tracked %d", i, k, counts[k], eco.Population(k))
			}
		}
		if counts[components.KindHerbivore] > cfg.Population.MaxHerbivores {
			t.Fatalf("tick %d: herbivores %d over cap", i, counts[components.KindHerbivore])
		}
		if counts[components.KindPredator] > cfg.Population.MaxPredators {
			t.Fatalf("tick %d: predators %d over cap", i, counts[components.KindPredator])
		}
		if len(eco.Foods(nil)) != eco.FoodCount() || len(eco.Carcasses(nil)) != eco.CarcassCount() {
			t.Fatalf("tick %d: resource counters out of sync", i)
		}
	}
}

func TestAdvanceRecordsPerf(t *testing.T) {
	eco := newTestEcosystem(t, midnightT)
	perf := telemetry.NewPerfCollector(1)
	eco.SetPerf(perf)

	prey := spawn(eco, components.KindHerbivore, 305, 500)
	eco.view(prey).st.Asleep = true
	pred := spawn(eco, components.KindPredator, 300, 500)
	eco.view(pred).vit.Hunger = 20

	for i := 0; i < 10 && eco.Exists(prey); i++ {
		perf.StartTick()
		eco.Advance(testDT)
		perf.EndTick()
	}
	if eco.Exists(prey) {
		t.Fatal("predator never killed adjacent prey")
	}

	s := perf.Stats()
	if s.Ticks != 1 {
		t.Fatalf("ticks = %d, want 1", s.Ticks)
	}
	if s.AgentsPerTick[components.KindPredator] != 1 {
		t.Errorf("predators per tick = %v, want 1", s.AgentsPerTick[components.KindPredator])
	}
	if s.AgentsPerTick[components.KindHerbivore] > 1 {
		t.Errorf("herbivores per tick = %v, want at most 1", s.AgentsPerTick[components.KindHerbivore])
	}
	if s.RemovalsPerTick != 1 || s.CarcassesPerTick != 1 || s.BirthsPerTick != 0 {
		t.Errorf("kill tick queues = %v/%v/%v, want 1/0/1",
			s.RemovalsPerTick, s.BirthsPerTick, s.CarcassesPerTick)
	}
	if s.PhasePct[telemetry.PhaseTelemetry] != 0 {
		t.Errorf("telemetry phase = %v%%, want 0 outside the game loop", s.PhasePct[telemetry.PhaseTelemetry])
	}
}
