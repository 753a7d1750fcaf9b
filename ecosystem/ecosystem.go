// Package ecosystem runs the predator/herbivore simulation: agents, resources
// and the day/night clock stored in an ECS world.
//
// Agents may kill, eat, mate and die while the agent pass is running. All
// structural changes to the world are deferred: removals go to a queue and a
// removed set, births and carcasses to a pending-insert queue, and both are
// applied after the pass. Every dereference of a target handle goes through
// Exists, so a stale handle reads as "no target".
package ecosystem

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
	"github.com/pthm-cable/savanna/systems"
	"github.com/pthm-cable/savanna/telemetry"
)

// Observer receives simulation events. telemetry.Collector implements it.
type Observer interface {
	RecordBirth(kind components.Kind)
	RecordDeath(kind components.Kind, cause components.DeathCause)
	RecordKill()
	RecordFoodEaten()
	RecordDrink(kind components.Kind)
	RecordCarcassBite()
}

// PhaseListener is told about day/night edges, e.g. to switch music.
type PhaseListener interface {
	PhaseChanged(isDay bool)
}

type nopObserver struct{}

func (nopObserver) RecordBirth(components.Kind)                       {}
func (nopObserver) RecordDeath(components.Kind, components.DeathCause) {}
func (nopObserver) RecordKill()                                       {}
func (nopObserver) RecordFoodEaten()                                  {}
func (nopObserver) RecordDrink(components.Kind)                       {}
func (nopObserver) RecordCarcassBite()                                {}

// Ecosystem owns the world, the clock and the deferred mutation queues.
type Ecosystem struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	cycle *systems.DayNightCycle
	soil  *systems.FertilityField

	agentMap *ecs.Map7[
		components.Position,
		components.Motion,
		components.Body,
		components.Vitals,
		components.Drive,
		components.State,
		components.Species,
	]
	agentFilter *ecs.Filter7[
		components.Position,
		components.Motion,
		components.Body,
		components.Vitals,
		components.Drive,
		components.State,
		components.Species,
	]
	hunterMap  *ecs.Map[components.Hunter]
	posMap     *ecs.Map[components.Position]
	speciesMap *ecs.Map[components.Species]

	foodMap       *ecs.Map2[components.Position, components.Food]
	foodOnly      *ecs.Map[components.Food]
	foodFilter    *ecs.Filter2[components.Position, components.Food]
	waterMap      *ecs.Map2[components.Position, components.Water]
	waterFilter   *ecs.Filter2[components.Position, components.Water]
	carcassMap    *ecs.Map2[components.Position, components.Carcass]
	carcassFilter *ecs.Filter2[components.Position, components.Carcass]
	carcassOnly   *ecs.Map[components.Carcass]

	// Deferred mutation
	updating      bool
	snapshot      []ecs.Entity
	removals      []removal
	removed       map[ecs.Entity]struct{}
	births        []birth
	carcasses     []pendingCarcass
	pendingBirths [components.NumKinds]int
	population    [components.NumKinds]int
	foodCount     int
	carcassCount  int

	observer Observer
	listener PhaseListener
	perf     *telemetry.PerfCollector

	tick    int32
	simTime float64
	paused  bool
}

// New creates an empty ecosystem. Call Populate for the initial population.
func New(cfg *config.Config, seed int64) *Ecosystem {
	world := ecs.NewWorld()

	eco := &Ecosystem{
		cfg:   cfg,
		world: world,
		rng:   rand.New(rand.NewSource(seed)),
		cycle: systems.NewDayNightCycleFromConfig(cfg.Cycle),
		soil: systems.NewFertilityField(seed, cfg.Derived.WorldW, cfg.Derived.WorldH,
			cfg.Food.FertilityScale, cfg.Food.FertilityFloor, cfg.Agent.WanderMargin),
		agentMap: ecs.NewMap7[
			components.Position,
			components.Motion,
			components.Body,
			components.Vitals,
			components.Drive,
			components.State,
			components.Species,
		](world),
		agentFilter: ecs.NewFilter7[
			components.Position,
			components.Motion,
			components.Body,
			components.Vitals,
			components.Drive,
			components.State,
			components.Species,
		](world),
		hunterMap:     ecs.NewMap[components.Hunter](world),
		posMap:        ecs.NewMap[components.Position](world),
		speciesMap:    ecs.NewMap[components.Species](world),
		foodMap:       ecs.NewMap2[components.Position, components.Food](world),
		foodOnly:      ecs.NewMap[components.Food](world),
		foodFilter:    ecs.NewFilter2[components.Position, components.Food](world),
		waterMap:      ecs.NewMap2[components.Position, components.Water](world),
		waterFilter:   ecs.NewFilter2[components.Position, components.Water](world),
		carcassMap:    ecs.NewMap2[components.Position, components.Carcass](world),
		carcassFilter: ecs.NewFilter2[components.Position, components.Carcass](world),
		carcassOnly:   ecs.NewMap[components.Carcass](world),
		removed:       make(map[ecs.Entity]struct{}),
		observer:      nopObserver{},
	}

	return eco
}

// Populate spawns the configured water sources, food and agents.
func (eco *Ecosystem) Populate() {
	w, h := eco.cfg.Derived.WorldW, eco.cfg.Derived.WorldH
	margin := eco.cfg.Agent.WanderMargin

	for _, wc := range eco.cfg.Water {
		eco.AddWater(wc.XFrac*w, wc.YFrac*h, wc.Radius)
	}
	for i := 0; i < eco.cfg.Population.InitialFood; i++ {
		x, y := eco.soil.Sample(eco.rng, eco.cfg.Food.SpawnAttempts)
		eco.AddFood(x, y)
	}
	for i := 0; i < eco.cfg.Population.InitialHerbivores; i++ {
		eco.AddHerbivore(margin+eco.rng.Float64()*(w-2*margin), margin+eco.rng.Float64()*(h-2*margin))
	}
	for i := 0; i < eco.cfg.Population.InitialPredators; i++ {
		eco.AddPredator(margin+eco.rng.Float64()*(w-2*margin), margin+eco.rng.Float64()*(h-2*margin))
	}
}

// SetObserver installs the event sink. nil restores the no-op observer.
func (eco *Ecosystem) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	eco.observer = o
}

// SetPhaseListener installs the day/night edge listener.
func (eco *Ecosystem) SetPhaseListener(l PhaseListener) { eco.listener = l }

// SetPerf installs a phase timer for Advance. The caller brackets each tick
// with StartTick and EndTick. nil disables timing.
func (eco *Ecosystem) SetPerf(p *telemetry.PerfCollector) { eco.perf = p }

// Advance steps the simulation by dt seconds: clock, agent pass, deferred
// mutations, carcass decay and food growth. It is a no-op while paused or
// when dt is not positive.
func (eco *Ecosystem) Advance(dt float64) {
	if eco.paused || dt <= 0 {
		return
	}

	eco.startPhase(telemetry.PhaseClock)
	wasDay := eco.cycle.IsDay()
	eco.cycle.Update(dt)
	if isDay := eco.cycle.IsDay(); isDay != wasDay {
		slog.Info("phase_change", "tick", eco.tick, "is_day", isDay, "timer", eco.cycle.Timer())
		if eco.listener != nil {
			eco.listener.PhaseChanged(isDay)
		}
	}

	eco.startPhase(telemetry.PhaseAgents)
	eco.snapshot = eco.snapshot[:0]
	query := eco.agentFilter.Query()
	for query.Next() {
		eco.snapshot = append(eco.snapshot, query.Entity())
	}

	eco.updating = true
	for _, e := range eco.snapshot {
		if !eco.Exists(e) {
			continue
		}
		a := eco.view(e)
		if eco.perf == nil {
			behaviors[a.kind].update(eco, &a, dt)
			continue
		}
		start := time.Now()
		behaviors[a.kind].update(eco, &a, dt)
		eco.perf.AgentUpdated(a.kind, time.Since(start))
	}
	eco.updating = false

	eco.startPhase(telemetry.PhaseFlush)
	eco.flush()

	eco.startPhase(telemetry.PhaseResources)
	eco.ageCarcasses(dt)
	eco.growFood(dt)
	eco.flush()

	eco.tick++
	eco.simTime += dt
}

// Exists reports whether e is a live entity not queued for removal.
func (eco *Ecosystem) Exists(e ecs.Entity) bool {
	if e.IsZero() || !eco.world.Alive(e) {
		return false
	}
	_, gone := eco.removed[e]
	return !gone
}

// Cycle returns the day/night clock.
func (eco *Ecosystem) Cycle() *systems.DayNightCycle { return eco.cycle }

// Fertility returns the food acceptance probability at (x, y).
func (eco *Ecosystem) Fertility(x, y float64) float64 { return eco.soil.At(x, y) }

// Config returns the configuration the ecosystem was built with.
func (eco *Ecosystem) Config() *config.Config { return eco.cfg }

// Tick returns the number of completed Advance steps.
func (eco *Ecosystem) Tick() int32 { return eco.tick }

// SimTime returns the simulated seconds elapsed.
func (eco *Ecosystem) SimTime() float64 { return eco.simTime }

// Population returns the number of live agents of a kind.
func (eco *Ecosystem) Population(kind components.Kind) int { return eco.population[kind] }

// FoodCount returns the number of food items in the world.
func (eco *Ecosystem) FoodCount() int { return eco.foodCount }

// CarcassCount returns the number of carcasses in the world.
func (eco *Ecosystem) CarcassCount() int { return eco.carcassCount }

// Paused reports whether Advance is currently a no-op.
func (eco *Ecosystem) Paused() bool { return eco.paused }

// SetPaused sets the pause flag.
func (eco *Ecosystem) SetPaused(p bool) { eco.paused = p }

// TogglePaused flips the pause flag and returns the new value.
func (eco *Ecosystem) TogglePaused() bool {
	eco.paused = !eco.paused
	return eco.paused
}

func (eco *Ecosystem) startPhase(ph telemetry.Phase) {
	if eco.perf != nil {
		eco.perf.StartPhase(ph)
	}
}
