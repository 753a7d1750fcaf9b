package ecosystem

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
	"github.com/pthm-cable/savanna/systems"
)

// agent is a read/write view of one agent's components for the current pass.
// The pointers stay valid until the next flush.
type agent struct {
	e    ecs.Entity
	pos  *components.Position
	mot  *components.Motion
	body *components.Body
	vit  *components.Vitals
	drv  *components.Drive
	st   *components.State
	kind components.Kind
	sp   *config.SpeciesConfig
	hunt *components.Hunter // nil for herbivores
}

func (eco *Ecosystem) view(e ecs.Entity) agent {
	pos, mot, body, vit, drv, st, spc := eco.agentMap.Get(e)
	a := agent{
		e:    e,
		pos:  pos,
		mot:  mot,
		body: body,
		vit:  vit,
		drv:  drv,
		st:   st,
		kind: spc.Kind,
		sp:   eco.species(spc.Kind),
	}
	if spc.Kind == components.KindPredator {
		a.hunt = eco.hunterMap.Get(e)
	}
	return a
}

// others calls fn for every live agent of the pass except a itself.
func (eco *Ecosystem) others(a *agent, fn func(o *agent)) {
	for _, e := range eco.snapshot {
		if e == a.e || !eco.Exists(e) {
			continue
		}
		o := eco.view(e)
		fn(&o)
	}
}

// baseUpdate runs the update shared by both species. It returns false when
// the agent died this tick.
func (eco *Ecosystem) baseUpdate(a *agent, dt float64) bool {
	ac := &eco.cfg.Agent
	active := activeIn(a.kind, eco.cycle.IsDay())

	// Rest phase edge
	if !active && !a.st.RestPhase {
		a.st.Asleep = true
		a.vit.Sleep = 0
		a.st.WakeDelay = eco.rng.Float64() * ac.WakeDelayMax
	}
	a.st.RestPhase = !active
	if a.vit.MaxAge == 0 {
		a.vit.MaxAge = a.sp.DefaultLifespan
	}

	a.vit.Age += dt
	if a.vit.Age >= a.vit.MaxAge {
		eco.removeAgent(a.e, a.kind, components.CauseAge)
		return false
	}

	if a.st.Asleep {
		a.vit.Sleep = math.Min(a.vit.Sleep+ac.SleepRate*dt, a.vit.MaxSleep)
		if a.vit.Sleep >= a.vit.MaxSleep {
			a.st.WakeDelay -= dt
			if a.st.WakeDelay <= 0 {
				a.st.WakeDelay = 0
				a.st.Asleep = false
			}
		}
		return true
	}

	rate := 1.0
	if !active {
		rate = a.sp.RestFactor
	}
	a.vit.Hunger = math.Min(a.vit.Hunger+a.sp.HungerRate*rate*dt, ac.HungerCap*a.vit.MaxHunger)
	a.vit.Thirst += a.sp.ThirstRate * rate * dt
	if a.vit.Hunger >= a.vit.MaxHunger || a.vit.Thirst >= a.vit.MaxThirst {
		a.vit.Health = math.Max(0, a.vit.Health-ac.StarvationDamage*dt)
	}

	if a.vit.Health <= 0 {
		eco.removeAgent(a.e, a.kind, components.CauseStarvation)
		return false
	}
	if a.vit.Thirst >= ac.DehydrationLimit*a.vit.MaxThirst {
		eco.removeAgent(a.e, a.kind, components.CauseDehydration)
		return false
	}

	a.mot.MaxSpeed = a.sp.MaxSpeed
	a.mot.Speed = a.sp.MaxSpeed * (1 - math.Min(1, a.vit.Hunger/a.vit.MaxHunger/2))
	if a.st.Escaping {
		a.mot.Speed = a.sp.MaxSpeed * a.sp.FleeMultiplier
		a.st.EscapeTimer += dt
		if a.st.EscapeTimer >= ac.EscapeDuration {
			a.st.Escaping = false
			a.st.EscapeTimer = 0
			return true
		}
	}

	if a.body.IsBaby {
		eco.grow(a, dt)
	}

	if a.st.Drinking {
		a.st.DrinkTimer += dt
		if a.st.DrinkTimer >= ac.DrinkDuration {
			a.st.Drinking = false
			a.st.DrinkTimer = 0
			a.vit.Thirst = 0
			a.st.Target = components.NoTarget
			eco.observer.RecordDrink(a.kind)
			return true
		}
	} else {
		eco.avoidWater(a, dt)
	}

	if x, y, ok := eco.resolveTarget(a); ok {
		eco.moveToward(a, x, y, 1, dt)
		if systems.Distance(a.pos.X, a.pos.Y, x, y) <= ac.ArrivalDistance {
			behaviors[a.kind].onTargetReached(eco, a)
		}
	} else if active {
		eco.wander(a, dt)
	}

	a.drv.Ready = a.drv.Reproductive >= a.sp.TimeToReproduce
	if a.drv.Cooldown > 0 {
		a.drv.Cooldown = math.Max(0, a.drv.Cooldown-dt)
	}

	b := &behaviors[a.kind]
	b.seekNeeds(eco, a)
	b.avoidOthers(eco, a, dt)

	a.pos.X = systems.Wrap(a.pos.X, eco.cfg.Derived.WorldW)
	a.pos.Y = systems.Wrap(a.pos.Y, eco.cfg.Derived.WorldH)
	return true
}

// grow enlarges a baby until it reaches its adult size or the species'
// growth time limit.
func (eco *Ecosystem) grow(a *agent, dt float64) {
	a.body.GrowthTime += dt
	a.body.Size = math.Min(a.body.Size+eco.cfg.Agent.GrowthRate*dt, a.body.MaxSize)
	limit := a.sp.MaxGrowthTime
	if a.body.Size >= a.body.MaxSize || (limit > 0 && a.body.GrowthTime >= limit) {
		a.body.Size = a.body.MaxSize
		a.body.IsBaby = false
		a.body.GrowthTime = 0
	}
}

// resolveTarget returns the target position. A stale handle clears the target.
func (eco *Ecosystem) resolveTarget(a *agent) (x, y float64, ok bool) {
	t := a.st.Target
	switch t.Kind {
	case components.TargetNone:
		return 0, 0, false
	case components.TargetWaypoint:
		return t.X, t.Y, true
	case components.TargetFood, components.TargetWater, components.TargetCarcass, components.TargetAgent:
		if !eco.Exists(t.Entity) {
			a.st.Target = components.NoTarget
			return 0, 0, false
		}
		p := eco.posMap.Get(t.Entity)
		return p.X, p.Y, true
	default:
		a.st.Target = components.NoTarget
		return 0, 0, false
	}
}

// moveToward steps toward (x, y) at mult times the current speed.
func (eco *Ecosystem) moveToward(a *agent, x, y, mult, dt float64) {
	dx, dy := systems.Normalize(x-a.pos.X, y-a.pos.Y)
	if dx == 0 && dy == 0 {
		return
	}
	a.mot.DirX, a.mot.DirY = dx, dy
	a.pos.X += dx * a.mot.Speed * mult * dt
	a.pos.Y += dy * a.mot.Speed * mult * dt
}

// moveAway steps directly away from (x, y).
func (eco *Ecosystem) moveAway(a *agent, x, y, mult, dt float64) {
	dx, dy := systems.Normalize(a.pos.X-x, a.pos.Y-y)
	a.pos.X += dx * a.mot.Speed * mult * dt
	a.pos.Y += dy * a.mot.Speed * mult * dt
}

// wander walks toward a random interior waypoint, picking a new one when the
// interval elapses or the waypoint is reached.
func (eco *Ecosystem) wander(a *agent, dt float64) {
	ac := &eco.cfg.Agent
	st := a.st
	st.WanderTimer += dt
	if st.WanderTimer >= st.WanderInterval || !st.HasWander ||
		systems.Distance(a.pos.X, a.pos.Y, st.WanderX, st.WanderY) <= ac.ArrivalDistance {
		st.WanderTimer = 0
		st.WanderInterval = eco.wanderInterval()
		st.WanderX, st.WanderY = eco.interiorPoint()
		st.HasWander = true
	}
	eco.moveToward(a, st.WanderX, st.WanderY, 1, dt)
}

func (eco *Ecosystem) interiorPoint() (float64, float64) {
	m := eco.cfg.Agent.WanderMargin
	w, h := eco.cfg.Derived.WorldW, eco.cfg.Derived.WorldH
	return m + eco.rng.Float64()*(w-2*m), m + eco.rng.Float64()*(h-2*m)
}

// clampInterior keeps a point inside the wander margins.
func (eco *Ecosystem) clampInterior(x, y float64) (float64, float64) {
	m := eco.cfg.Agent.WanderMargin
	return systems.Clamp(x, m, eco.cfg.Derived.WorldW-m), systems.Clamp(y, m, eco.cfg.Derived.WorldH-m)
}

// avoidWater pushes the agent out of water sources it is not heading for.
// A herbivore with any predator within its fear distance is not pushed.
func (eco *Ecosystem) avoidWater(a *agent, dt float64) {
	if a.kind == components.KindHerbivore && a.sp.FearDistance > 0 && eco.predatorNear(a, a.sp.FearDistance) {
		return
	}

	gap := eco.cfg.Agent.ContactGap
	push := eco.cfg.Agent.WaterPush
	query := eco.waterFilter.Query()
	for query.Next() {
		wpos, water := query.Get()
		if a.st.Target.Kind == components.TargetWater && a.st.Target.Entity == query.Entity() {
			continue
		}
		if systems.Distance(a.pos.X, a.pos.Y, wpos.X, wpos.Y) < water.Radius+a.body.Size+gap {
			eco.moveAway(a, wpos.X, wpos.Y, push, dt)
		}
	}
}

// nearestWater returns the closest water source.
func (eco *Ecosystem) nearestWater(a *agent) (ecs.Entity, bool) {
	var best ecs.Entity
	bestDist := math.Inf(1)
	query := eco.waterFilter.Query()
	for query.Next() {
		wpos, _ := query.Get()
		if d := systems.DistanceSq(a.pos.X, a.pos.Y, wpos.X, wpos.Y); d < bestDist {
			bestDist = d
			best = query.Entity()
		}
	}
	return best, !best.IsZero()
}

// nearestFood returns the closest food item not already eaten this pass.
func (eco *Ecosystem) nearestFood(a *agent) (ecs.Entity, bool) {
	var best ecs.Entity
	bestDist := math.Inf(1)
	query := eco.foodFilter.Query()
	for query.Next() {
		e := query.Entity()
		if _, gone := eco.removed[e]; gone {
			continue
		}
		fpos, _ := query.Get()
		if d := systems.DistanceSq(a.pos.X, a.pos.Y, fpos.X, fpos.Y); d < bestDist {
			bestDist = d
			best = e
		}
	}
	return best, !best.IsZero()
}

// nearestPredator returns the closest awake predator within radius.
func (eco *Ecosystem) nearestPredator(a *agent, radius float64) (agent, bool) {
	var best agent
	found := false
	bestDist := radius
	eco.others(a, func(o *agent) {
		if o.kind != components.KindPredator || o.st.Asleep {
			return
		}
		if d := systems.Distance(a.pos.X, a.pos.Y, o.pos.X, o.pos.Y); d < bestDist {
			bestDist = d
			best = *o
			found = true
		}
	})
	return best, found
}

// predatorNear reports whether a predator, awake or asleep, is within radius.
func (eco *Ecosystem) predatorNear(a *agent, radius float64) bool {
	near := false
	eco.others(a, func(o *agent) {
		if !near && o.kind == components.KindPredator &&
			systems.Distance(a.pos.X, a.pos.Y, o.pos.X, o.pos.Y) < radius {
			near = true
		}
	})
	return near
}

// findMate returns the closest other agent of the same kind that is ready and
// off cooldown.
func (eco *Ecosystem) findMate(a *agent) (ecs.Entity, bool) {
	var best ecs.Entity
	bestDist := math.Inf(1)
	eco.others(a, func(o *agent) {
		if o.kind != a.kind || !o.drv.Ready || o.drv.Cooldown > 0 {
			return
		}
		if d := systems.DistanceSq(a.pos.X, a.pos.Y, o.pos.X, o.pos.Y); d < bestDist {
			bestDist = d
			best = o.e
		}
	})
	return best, !best.IsZero()
}

// seekWater targets the nearest water source if there is one.
func (eco *Ecosystem) seekWater(a *agent) bool {
	w, ok := eco.nearestWater(a)
	if !ok {
		return false
	}
	a.st.Target = components.EntityTarget(components.TargetWater, w)
	return true
}

// seekNeeds is the generic needs policy: an idle agent in its active phase
// looks for water when thirsty, otherwise for food when hungry.
func seekNeeds(eco *Ecosystem, a *agent) {
	if !a.st.Target.IsNone() || !activeIn(a.kind, eco.cycle.IsDay()) {
		return
	}
	if a.vit.Thirst > a.sp.ThirstThreshold() {
		eco.seekWater(a)
	} else if a.vit.Hunger > a.sp.HungerThreshold() {
		a.st.Target = behaviors[a.kind].findFood(eco, a)
	}
}
