package ecosystem

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/systems"
)

// updatePredator runs the nocturnal hunter. Timers are driven by the
// simulation clock.
func updatePredator(eco *Ecosystem, a *agent, dt float64) {
	h := a.hunt
	isDay := eco.cycle.IsDay()

	h.SearchTimer += dt
	if h.SearchTimer >= a.sp.SearchInterval {
		h.SearchTimer = 0
		if a.st.Target.Kind == components.TargetAgent && !eco.Exists(a.st.Target.Entity) {
			a.st.Target = components.NoTarget
		}
		// A chase in progress keeps its timer.
		if a.st.Target.IsNone() {
			a.st.Target = huntSearch(eco, a)
			h.ChaseTimer = 0
		}
	}

	if a.vit.Hunger >= a.sp.Desperation*a.vit.MaxHunger {
		if t := huntSearch(eco, a); !t.IsNone() {
			a.st.Target = t
			eco.baseUpdate(a, dt)
			return
		}
	}

	if a.vit.Thirst > a.sp.ThirstThreshold() && eco.seekWater(a) {
		eco.baseUpdate(a, dt)
		return
	}

	if a.drv.Ready && a.st.Target.IsNone() && !eco.atCap(a.kind) {
		if mate, ok := eco.findMate(a); ok {
			a.st.Target = components.EntityTarget(components.TargetAgent, mate)
			eco.baseUpdate(a, dt)
			return
		}
	}

	if a.st.Target.IsNone() && !a.st.Drinking && !isDay && !a.st.Asleep {
		eco.wander(a, dt)
	}

	if a.st.Target.Kind == components.TargetAgent && eco.isPrey(a.st.Target.Entity) {
		h.ChaseTimer += dt
		if h.ChaseTimer >= a.sp.MaxChaseTime {
			a.st.Target = components.NoTarget
			h.ChaseTimer = 0
		}
	}

	if !eco.baseUpdate(a, dt) {
		return
	}

	if !a.st.Asleep {
		a.drv.Reproductive += a.sp.DriveRate * dt
	}
	if a.drv.Reproductive >= a.sp.ReproductionThreshold() {
		checkReproduce(eco, a)
	}

	if !isDay && a.vit.Hunger > a.vit.MaxHunger/2 {
		a.st.Asleep = false
	}

	if !h.Current.IsZero() && !eco.Exists(h.Current) {
		h.Forget(h.Current)
	}
	if a.vit.Hunger <= a.sp.AttackThreshold {
		h.EatingCarcass = false
	} else {
		interval := a.sp.EatInterval
		if h.EatingCarcass {
			interval = eco.cfg.Carcass.BiteInterval
		}
		h.EatTimer += dt
		if h.EatTimer >= interval {
			h.EatTimer = 0
			tryEat(eco, a)
		}
	}

	if a.drv.AvoidTimer > 0 {
		a.drv.AvoidTimer -= dt
	}
}

// isPrey reports whether e is a live herbivore.
func (eco *Ecosystem) isPrey(e ecs.Entity) bool {
	return eco.Exists(e) && eco.speciesMap.Has(e) && eco.speciesMap.Get(e).Kind == components.KindHerbivore
}

// huntSearch targets the nearest herbivore in hunt range. Predators only hunt
// at night, when hungry enough, and not while drinking or looking for a mate.
func huntSearch(eco *Ecosystem, a *agent) components.Target {
	if a.st.Drinking || a.drv.Ready || eco.cycle.IsDay() || a.vit.Hunger <= a.sp.AttackThreshold {
		return components.NoTarget
	}
	var best ecs.Entity
	bestDist := a.sp.HuntRange
	eco.others(a, func(o *agent) {
		if o.kind != components.KindHerbivore {
			return
		}
		if d := systems.Distance(a.pos.X, a.pos.Y, o.pos.X, o.pos.Y); d <= bestDist {
			bestDist = d
			best = o.e
		}
	})
	if best.IsZero() {
		return components.NoTarget
	}
	return components.EntityTarget(components.TargetAgent, best)
}

func predatorReached(eco *Ecosystem, a *agent) {
	t := a.st.Target
	switch t.Kind {
	case components.TargetAgent:
		if eco.isPrey(t.Entity) {
			if a.vit.Hunger > a.sp.AttackThreshold {
				eco.attack(a, t.Entity)
			}
			a.st.Target = components.NoTarget
			return
		}
		if a.drv.Ready {
			checkReproduce(eco, a)
		}
		if a.st.Target.Kind == components.TargetAgent {
			a.st.Target = components.NoTarget
		}
	case components.TargetWater:
		eco.startDrinking(a)
	case components.TargetCarcass:
		if a.hunt.EatingCarcass {
			a.hunt.Current = t.Entity
			tryEat(eco, a)
		}
		a.st.Target = components.NoTarget
	case components.TargetNone, components.TargetFood, components.TargetWaypoint:
		a.st.Target = components.NoTarget
	}
}

// attack kills prey in contact range. The carcass is placed at the prey's
// position once the pass ends, and the kill feeds the predator partially.
func (eco *Ecosystem) attack(a *agent, prey ecs.Entity) bool {
	if !eco.isPrey(prey) {
		return false
	}
	p := eco.view(prey)
	if systems.Distance(a.pos.X, a.pos.Y, p.pos.X, p.pos.Y) > a.body.Size+p.body.Size+eco.cfg.Agent.ContactGap {
		return false
	}
	x, y := p.pos.X, p.pos.Y
	eco.removeAgent(prey, components.KindHerbivore, components.CausePredation)
	eco.queueCarcass(x, y, a.e)
	a.vit.Hunger = math.Max(0, a.vit.Hunger-eco.cfg.Carcass.FeedEfficiency*a.vit.MaxHunger)
	eco.observer.RecordKill()
	return true
}

// tryEat bites the current carcass, walks to the nearest remembered one, or
// kills an adjacent herbivore, in that order.
func tryEat(eco *Ecosystem, a *agent) {
	h := a.hunt
	if h.EatingCarcass && eco.Exists(h.Current) {
		p := eco.posMap.Get(h.Current)
		if systems.Distance(a.pos.X, a.pos.Y, p.X, p.Y) <= a.sp.EatDistance {
			eco.bite(a, h.Current)
		} else {
			a.st.Target = components.EntityTarget(components.TargetCarcass, h.Current)
		}
		return
	}

	if c, ok := eco.nearestRemembered(a); ok {
		h.Current = c
		h.EatingCarcass = true
		a.st.Target = components.EntityTarget(components.TargetCarcass, c)
		return
	}

	var prey ecs.Entity
	bestDist := math.Inf(1)
	eco.others(a, func(o *agent) {
		if o.kind != components.KindHerbivore {
			return
		}
		d := systems.Distance(a.pos.X, a.pos.Y, o.pos.X, o.pos.Y)
		if d <= a.body.Size+o.body.Size+eco.cfg.Agent.ContactGap && d < bestDist {
			bestDist = d
			prey = o.e
		}
	})
	if !prey.IsZero() && eco.attack(a, prey) {
		h.EatingCarcass = true
	}
}

// nearestRemembered returns the closest live carcass in the history, pruning
// the ones that are gone.
func (eco *Ecosystem) nearestRemembered(a *agent) (ecs.Entity, bool) {
	h := a.hunt
	var best ecs.Entity
	bestDist := math.Inf(1)
	kept := h.History[:0]
	for _, c := range h.History {
		if !eco.Exists(c) {
			continue
		}
		kept = append(kept, c)
		p := eco.posMap.Get(c)
		if d := systems.DistanceSq(a.pos.X, a.pos.Y, p.X, p.Y); d < bestDist {
			bestDist = d
			best = c
		}
	}
	h.History = kept
	return best, !best.IsZero()
}

// bite takes one bite from a carcass. An exhausted carcass is removed and
// forgotten.
func (eco *Ecosystem) bite(a *agent, c ecs.Entity) {
	car := eco.carcassOnly.Get(c)
	b := math.Min(eco.cfg.Carcass.BiteSize, car.Remaining)
	car.Remaining -= b
	a.vit.Hunger = math.Max(0, a.vit.Hunger-b)
	eco.observer.RecordCarcassBite()
	if car.Remaining <= 0 {
		eco.removeCarcass(c)
		a.hunt.Forget(c)
	}
}

// spaceOut keeps a predator away from other predators while its post-birth
// timer runs.
func spaceOut(eco *Ecosystem, a *agent, dt float64) {
	if a.drv.AvoidTimer <= 0 {
		return
	}
	radius := eco.cfg.Agent.AvoidanceDistance
	push := eco.cfg.Agent.AvoidPush
	eco.others(a, func(o *agent) {
		if o.kind != components.KindPredator {
			return
		}
		if systems.Distance(a.pos.X, a.pos.Y, o.pos.X, o.pos.Y) < radius {
			eco.moveAway(a, o.pos.X, o.pos.Y, push, dt)
		}
	})
}
