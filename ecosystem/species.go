package ecosystem

import "github.com/pthm-cable/savanna/components"

// behavior is the per-species dispatch table.
type behavior struct {
	update          func(eco *Ecosystem, a *agent, dt float64)
	findFood        func(eco *Ecosystem, a *agent) components.Target
	onTargetReached func(eco *Ecosystem, a *agent)
	checkReproduce  func(eco *Ecosystem, a *agent)
	seekNeeds       func(eco *Ecosystem, a *agent)
	avoidOthers     func(eco *Ecosystem, a *agent, dt float64)
}

var behaviors [components.NumKinds]behavior

func init() {
	behaviors[components.KindHerbivore] = behavior{
		update:          updateHerbivore,
		findFood:        findPlant,
		onTargetReached: herbivoreReached,
		checkReproduce:  checkReproduce,
		seekNeeds:       func(*Ecosystem, *agent) {},
		avoidOthers:     fleePredators,
	}
	behaviors[components.KindPredator] = behavior{
		update:          updatePredator,
		findFood:        huntSearch,
		onTargetReached: predatorReached,
		checkReproduce:  checkReproduce,
		seekNeeds:       seekNeeds,
		avoidOthers:     spaceOut,
	}
}
