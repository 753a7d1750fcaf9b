package ecosystem

import (
	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/systems"
)

// updateHerbivore runs the diurnal grazer. Herbivores choose their water and
// food targets here, before the shared update.
func updateHerbivore(eco *Ecosystem, a *agent, dt float64) {
	if eco.avoidEdges(a, dt) {
		return
	}

	if a.drv.Ready && a.st.Target.IsNone() {
		if mate, ok := eco.findMate(a); ok {
			a.st.Target = components.EntityTarget(components.TargetAgent, mate)
		}
	}

	if a.st.Drinking {
		eco.baseUpdate(a, dt)
		return
	}

	if a.st.Target.Kind != components.TargetWater {
		if a.vit.Thirst > a.sp.ThirstThreshold() {
			eco.seekWater(a)
		} else if a.vit.Hunger > a.sp.HungerThreshold() {
			a.st.Target = findPlant(eco, a)
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
	if a.drv.AvoidTimer > 0 {
		a.drv.AvoidTimer -= dt
	}
}

// avoidEdges shoves a herbivore near the map border back inward along a
// single axis. Only the first matching edge counts.
func (eco *Ecosystem) avoidEdges(a *agent, dt float64) bool {
	w, h := eco.cfg.Derived.WorldW, eco.cfg.Derived.WorldH
	half := a.body.Size / 2
	reach := a.body.Size + eco.cfg.Agent.EdgeMargin

	var vx, vy float64
	switch {
	case a.pos.X-half < reach:
		vx = reach - (a.pos.X - half)
	case a.pos.X+half > w-reach:
		vx = w - reach - (a.pos.X + half)
	case a.pos.Y-half < reach:
		vy = reach - (a.pos.Y - half)
	case a.pos.Y+half > h-reach:
		vy = h - reach - (a.pos.Y + half)
	default:
		return false
	}

	dx, dy := systems.Normalize(vx, vy)
	step := a.mot.Speed * eco.cfg.Agent.EdgePush * dt
	a.pos.X += dx * step
	a.pos.Y += dy * step
	return true
}

// findPlant targets the nearest food. Herbivores do not graze at night.
func findPlant(eco *Ecosystem, a *agent) components.Target {
	if !eco.cycle.IsDay() {
		return components.NoTarget
	}
	if f, ok := eco.nearestFood(a); ok {
		return components.EntityTarget(components.TargetFood, f)
	}
	return components.NoTarget
}

func herbivoreReached(eco *Ecosystem, a *agent) {
	t := a.st.Target
	switch t.Kind {
	case components.TargetFood:
		if eco.Exists(t.Entity) {
			p := eco.posMap.Get(t.Entity)
			if systems.Distance(a.pos.X, a.pos.Y, p.X, p.Y) < a.sp.EatDistance && eco.consumeFood(t.Entity) {
				a.vit.Hunger = 0
				eco.observer.RecordFoodEaten()
			}
		}
		a.st.Target = components.NoTarget
	case components.TargetWater:
		eco.startDrinking(a)
	case components.TargetAgent:
		if a.drv.Ready {
			checkReproduce(eco, a)
		}
		if a.st.Target.Kind == components.TargetAgent {
			a.st.Target = components.NoTarget
		}
	case components.TargetNone, components.TargetCarcass, components.TargetWaypoint:
		a.st.Target = components.NoTarget
	}
}

// startDrinking begins a drink when close enough to the targeted source.
func (eco *Ecosystem) startDrinking(a *agent) {
	t := a.st.Target
	if !eco.Exists(t.Entity) {
		a.st.Target = components.NoTarget
		return
	}
	p := eco.posMap.Get(t.Entity)
	if systems.Distance(a.pos.X, a.pos.Y, p.X, p.Y) < a.sp.DrinkDistance {
		a.st.Drinking = true
	}
}

// fleePredators runs from the nearest awake predator. The flee radius widens
// while the post-birth timer runs.
func fleePredators(eco *Ecosystem, a *agent, dt float64) {
	radius := a.sp.FearDistance
	if a.drv.AvoidTimer > 0 && eco.cfg.Agent.AvoidanceDistance > radius {
		radius = eco.cfg.Agent.AvoidanceDistance
	}
	if radius <= 0 {
		return
	}
	p, ok := eco.nearestPredator(a, radius)
	if !ok {
		return
	}
	eco.moveAway(a, p.pos.X, p.pos.Y, 1, dt)
	if !a.st.Escaping {
		a.st.Escaping = true
		a.st.EscapeTimer = 0
	}
}
