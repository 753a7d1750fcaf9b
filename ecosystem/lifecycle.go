package ecosystem

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
	"github.com/pthm-cable/savanna/systems"
	"github.com/pthm-cable/savanna/telemetry"
)

type removal struct {
	entity ecs.Entity
	kind   removalKind
	cause  components.DeathCause
	agent  components.Kind
}

type removalKind uint8

const (
	removeAgent removalKind = iota
	removeFood
	removeCarcass
	removeOther
)

// birth is an agent waiting for the end of the pass.
type birth struct {
	kind          components.Kind
	x, y          float64
	size, maxSize float64
	baby          bool
	target        components.Target
}

type pendingCarcass struct {
	x, y   float64
	hunter ecs.Entity
}

// AddHerbivore spawns an adult herbivore. During a pass the spawn is deferred.
func (eco *Ecosystem) AddHerbivore(x, y float64) {
	size := eco.cfg.Herbivore.Size
	eco.spawnAgent(birth{kind: components.KindHerbivore, x: x, y: y, size: size, maxSize: size})
}

// AddPredator spawns an adult predator. During a pass the spawn is deferred.
func (eco *Ecosystem) AddPredator(x, y float64) {
	size := eco.cfg.Predator.Size
	eco.spawnAgent(birth{kind: components.KindPredator, x: x, y: y, size: size, maxSize: size})
}

func (eco *Ecosystem) spawnAgent(b birth) {
	if eco.updating {
		eco.births = append(eco.births, b)
		eco.pendingBirths[b.kind]++
		return
	}
	eco.createAgent(b)
}

// createAgent materializes an agent. Never called while a pass is running.
func (eco *Ecosystem) createAgent(b birth) ecs.Entity {
	sp := eco.species(b.kind)
	ac := &eco.cfg.Agent

	pos := components.Position{X: systems.Wrap(b.x, eco.cfg.Derived.WorldW), Y: systems.Wrap(b.y, eco.cfg.Derived.WorldH)}
	dx, dy := systems.Normalize(eco.rng.Float64()*2-1, eco.rng.Float64()*2-1)
	mot := components.Motion{DirX: dx, DirY: dy, Speed: sp.MaxSpeed, MaxSpeed: sp.MaxSpeed}
	body := components.Body{Size: math.Min(b.size, b.maxSize), MaxSize: b.maxSize, IsBaby: b.baby}
	vit := components.Vitals{
		Health:    sp.MaxHealth,
		MaxHealth: sp.MaxHealth,
		MaxHunger: sp.MaxHunger,
		MaxThirst: sp.MaxThirst,
		MaxSleep:  ac.MaxSleep,
		MaxAge:    sp.Lifespan,
	}
	drv := components.Drive{}
	st := components.State{
		Target:         b.target,
		RestPhase:      eco.resting(b.kind),
		WanderInterval: eco.wanderInterval(),
	}
	spc := components.Species{Kind: b.kind}

	e := eco.agentMap.NewEntity(&pos, &mot, &body, &vit, &drv, &st, &spc)
	if b.kind == components.KindPredator {
		eco.hunterMap.Add(e, &components.Hunter{})
	}
	eco.population[b.kind]++
	return e
}

// AddFood places a food item, wrapped into the world. Calls made while a
// pass is running are ignored.
func (eco *Ecosystem) AddFood(x, y float64) {
	if eco.updating {
		return
	}
	pos := components.Position{X: systems.Wrap(x, eco.cfg.Derived.WorldW), Y: systems.Wrap(y, eco.cfg.Derived.WorldH)}
	food := components.Food{Size: eco.cfg.Food.Size}
	eco.foodMap.NewEntity(&pos, &food)
	eco.foodCount++
}

// AddWater places a water source.
func (eco *Ecosystem) AddWater(x, y, radius float64) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	water := components.Water{Radius: radius}
	return eco.waterMap.NewEntity(&pos, &water)
}

// Remove takes any entity out of the world. Agents removed this way count
// as a death by age.
func (eco *Ecosystem) Remove(e ecs.Entity) {
	if !eco.Exists(e) {
		return
	}
	switch {
	case eco.speciesMap.Has(e):
		eco.removeAgent(e, eco.speciesMap.Get(e).Kind, components.CauseAge)
	case eco.foodOnly.Has(e):
		eco.queueRemoval(removal{entity: e, kind: removeFood})
	case eco.carcassOnly.Has(e):
		eco.queueRemoval(removal{entity: e, kind: removeCarcass})
	default:
		eco.queueRemoval(removal{entity: e, kind: removeOther})
	}
	if !eco.updating {
		eco.flush()
	}
}

// removeAgent queues an agent's death. The population count drops at once
// so cap checks later in the pass see it.
func (eco *Ecosystem) removeAgent(e ecs.Entity, kind components.Kind, cause components.DeathCause) {
	if !eco.Exists(e) {
		return
	}
	eco.queueRemoval(removal{entity: e, kind: removeAgent, cause: cause, agent: kind})
	eco.population[kind]--
	eco.observer.RecordDeath(kind, cause)
	if eco.population[kind] == 0 && eco.pendingBirths[kind] == 0 {
		slog.Info("extinction", "kind", kind.String(), "tick", eco.tick, "cause", cause.String())
	}
}

// consumeFood queues a food item for removal. Returns false if it is gone.
func (eco *Ecosystem) consumeFood(e ecs.Entity) bool {
	if !eco.Exists(e) || !eco.foodOnly.Has(e) {
		return false
	}
	eco.queueRemoval(removal{entity: e, kind: removeFood})
	return true
}

func (eco *Ecosystem) removeCarcass(e ecs.Entity) {
	if !eco.Exists(e) {
		return
	}
	eco.queueRemoval(removal{entity: e, kind: removeCarcass})
}

func (eco *Ecosystem) queueRemoval(r removal) {
	eco.removals = append(eco.removals, r)
	eco.removed[r.entity] = struct{}{}
}

// queueBirth defers a newborn to the end of the pass.
func (eco *Ecosystem) queueBirth(b birth) {
	eco.births = append(eco.births, b)
	eco.pendingBirths[b.kind]++
}

// queueCarcass defers a carcass at a kill site to the end of the pass.
func (eco *Ecosystem) queueCarcass(x, y float64, hunter ecs.Entity) {
	eco.carcasses = append(eco.carcasses, pendingCarcass{x: x, y: y, hunter: hunter})
}

// atCap reports whether live plus pending agents of a kind reach the cap.
func (eco *Ecosystem) atCap(kind components.Kind) bool {
	limit := eco.cfg.Population.MaxHerbivores
	if kind == components.KindPredator {
		limit = eco.cfg.Population.MaxPredators
	}
	return eco.population[kind]+eco.pendingBirths[kind] >= limit
}

// flush applies queued removals, then queued births and carcasses.
func (eco *Ecosystem) flush() {
	if eco.perf != nil {
		eco.perf.Flushed(telemetry.QueueSizes{
			Removals:  len(eco.removals),
			Births:    len(eco.births),
			Carcasses: len(eco.carcasses),
		})
	}
	for _, r := range eco.removals {
		if !eco.world.Alive(r.entity) {
			continue
		}
		switch r.kind {
		case removeFood:
			eco.foodCount--
		case removeCarcass:
			eco.carcassCount--
		case removeAgent, removeOther:
		}
		eco.world.RemoveEntity(r.entity)
	}
	eco.removals = eco.removals[:0]
	clear(eco.removed)

	for _, b := range eco.births {
		eco.pendingBirths[b.kind]--
		eco.createAgent(b)
		eco.observer.RecordBirth(b.kind)
	}
	eco.births = eco.births[:0]

	for _, pc := range eco.carcasses {
		pos := components.Position{X: pc.x, Y: pc.y}
		car := components.Carcass{Remaining: eco.cfg.Carcass.Hunger, Lifespan: eco.cfg.Carcass.Lifespan}
		c := eco.carcassMap.NewEntity(&pos, &car)
		eco.carcassCount++
		if eco.Exists(pc.hunter) && eco.hunterMap.Has(pc.hunter) {
			h := eco.hunterMap.Get(pc.hunter)
			h.Current = c
			h.Remember(c, eco.cfg.Carcass.HistorySize)
		}
	}
	eco.carcasses = eco.carcasses[:0]
}

// ageCarcasses rots carcasses and queues the spent ones.
func (eco *Ecosystem) ageCarcasses(dt float64) {
	query := eco.carcassFilter.Query()
	for query.Next() {
		_, car := query.Get()
		car.Age += dt
		if car.Spent() {
			eco.queueRemoval(removal{entity: query.Entity(), kind: removeCarcass})
		}
	}
}

// growFood sprouts food during the day at the configured rate, biased
// toward fertile ground.
func (eco *Ecosystem) growFood(dt float64) {
	fc := &eco.cfg.Food
	if !eco.cycle.IsDay() || eco.foodCount >= fc.MaxFood {
		return
	}
	if eco.rng.Float64() >= fc.SpawnRate*dt {
		return
	}
	x, y := eco.soil.Sample(eco.rng, fc.SpawnAttempts)
	eco.AddFood(x, y)
}

func (eco *Ecosystem) species(kind components.Kind) *config.SpeciesConfig {
	if kind == components.KindPredator {
		return &eco.cfg.Predator
	}
	return &eco.cfg.Herbivore
}

// resting reports whether the species is in its rest phase right now.
func (eco *Ecosystem) resting(kind components.Kind) bool {
	return !activeIn(kind, eco.cycle.IsDay())
}

func (eco *Ecosystem) wanderInterval() float64 {
	ac := &eco.cfg.Agent
	return float64(ac.WanderIntervalMin + eco.rng.Intn(ac.WanderIntervalMax-ac.WanderIntervalMin+1))
}

// activeIn reports whether a species forages in the given phase.
func activeIn(kind components.Kind, isDay bool) bool {
	if kind == components.KindPredator {
		return !isDay
	}
	return isDay
}
