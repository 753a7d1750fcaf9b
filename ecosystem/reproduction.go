package ecosystem

import (
	"math"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/systems"
)

// checkReproduce pairs a ready agent with the nearest ready, cooldown-free
// partner of its kind in contact range. The population cap is checked before
// the search and again before committing, counting pending births.
func checkReproduce(eco *Ecosystem, a *agent) {
	if !a.drv.Ready || a.drv.Cooldown > 0 || eco.atCap(a.kind) {
		return
	}

	var partner agent
	found := false
	bestDist := math.Inf(1)
	gap := eco.cfg.Agent.ContactGap
	eco.others(a, func(o *agent) {
		if o.kind != a.kind || !o.drv.Ready || o.drv.Cooldown > 0 {
			return
		}
		d := systems.Distance(a.pos.X, a.pos.Y, o.pos.X, o.pos.Y)
		if d <= a.body.Size+o.body.Size+gap && d < bestDist {
			bestDist = d
			partner = *o
			found = true
		}
	})
	if !found {
		return
	}
	if a.body.GrowthTime != 0 || partner.body.GrowthTime != 0 {
		return
	}
	if eco.atCap(a.kind) {
		return
	}
	eco.reproduce(a, &partner)
}

// reproduce queues a baby and sends the parents and the baby off in three
// directions so they do not mate again on the spot.
func (eco *Ecosystem) reproduce(a, b *agent) {
	ac := &eco.cfg.Agent
	sep := ac.SeparationDistance

	ax, ay := systems.Normalize(b.pos.X-a.pos.X, b.pos.Y-a.pos.Y)
	if ax == 0 && ay == 0 {
		angle := eco.rng.Float64() * 2 * math.Pi
		ax, ay = math.Cos(angle), math.Sin(angle)
	}
	px, py := -ay, ax

	x, y := a.pos.X, a.pos.Y
	a.st.Target = components.Waypoint(eco.clampInterior(x-ax*sep, y-ay*sep))
	b.st.Target = components.Waypoint(eco.clampInterior(b.pos.X+ax*sep, b.pos.Y+ay*sep))
	babyTarget := components.Waypoint(eco.clampInterior(x+px*sep, y+py*sep))

	eco.queueBirth(birth{
		kind:    a.kind,
		x:       x,
		y:       y,
		size:    (a.body.Size + b.body.Size) / 4,
		maxSize: math.Min(a.body.Size, b.body.Size),
		baby:    true,
		target:  babyTarget,
	})

	for _, p := range []*agent{a, b} {
		p.drv.Reproductive = 0
		p.drv.Ready = false
		p.drv.Cooldown = ac.ReproductionCooldown
		p.drv.AvoidTimer = p.sp.AvoidDuration
	}
}
