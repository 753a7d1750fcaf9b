// Package telemetry tracks ecosystem health: windowed stats, bookmarks,
// tick timing and CSV output.
package telemetry

import "github.com/pthm-cable/savanna/components"

// Collector accumulates events within time windows and produces WindowStats.
// It satisfies ecosystem.Observer.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartTick int32
	windowStartTime float64

	// Event counters for current window
	births       [components.NumKinds]int
	deaths       [components.NumKinds]int
	causes       [4]int
	drinks       [components.NumKinds]int
	kills        int
	carcassBites int
	foodEaten    int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 1
	}
	return &Collector{windowDurationSec: windowDurationSec}
}

// RecordBirth records a birth event.
func (c *Collector) RecordBirth(kind components.Kind) {
	c.births[kind]++
}

// RecordDeath records a death event and its cause.
func (c *Collector) RecordDeath(kind components.Kind, cause components.DeathCause) {
	c.deaths[kind]++
	if int(cause) < len(c.causes) {
		c.causes[cause]++
	}
}

// RecordKill records a kill.
func (c *Collector) RecordKill() {
	c.kills++
}

// RecordFoodEaten records a herbivore eating a food item.
func (c *Collector) RecordFoodEaten() {
	c.foodEaten++
}

// RecordDrink records a completed drink.
func (c *Collector) RecordDrink(kind components.Kind) {
	c.drinks[kind]++
}

// RecordCarcassBite records a predator biting a carcass.
func (c *Collector) RecordCarcassBite() {
	c.carcassBites++
}

// ShouldFlush returns true once the window's simulated time has elapsed.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStartTime >= c.windowDurationSec
}

// Snapshot is the world state sampled when a window closes.
type Snapshot struct {
	Tick       int32
	SimTime    float64
	IsDay      bool
	Herbivores int
	Predators  int
	Food       int
	Carcasses  int
	HerbHunger []float64
	HerbThirst []float64
	PredHunger []float64
	PredThirst []float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(snap Snapshot) WindowStats {
	hMean, hP10, hP50, hP90 := ComputeNeedStats(snap.HerbHunger)
	pMean, pP10, pP50, pP90 := ComputeNeedStats(snap.PredHunger)

	herb, pred := components.KindHerbivore, components.KindPredator
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   snap.Tick,
		SimTimeSec:      snap.SimTime,
		IsDay:           snap.IsDay,

		HerbivoreCount: snap.Herbivores,
		PredatorCount:  snap.Predators,
		FoodCount:      snap.Food,
		CarcassCount:   snap.Carcasses,

		HerbivoreBirths: c.births[herb],
		PredatorBirths:  c.births[pred],
		HerbivoreDeaths: c.deaths[herb],
		PredatorDeaths:  c.deaths[pred],

		DeathsAge:         c.causes[components.CauseAge],
		DeathsStarvation:  c.causes[components.CauseStarvation],
		DeathsDehydration: c.causes[components.CauseDehydration],
		DeathsPredation:   c.causes[components.CausePredation],

		Kills:           c.kills,
		CarcassBites:    c.carcassBites,
		FoodEaten:       c.foodEaten,
		HerbivoreDrinks: c.drinks[herb],
		PredatorDrinks:  c.drinks[pred],

		HerbivoreHungerMean: hMean,
		HerbivoreHungerP10:  hP10,
		HerbivoreHungerP50:  hP50,
		HerbivoreHungerP90:  hP90,
		HerbivoreThirstMean: Mean(snap.HerbThirst),

		PredatorHungerMean: pMean,
		PredatorHungerP10:  pP10,
		PredatorHungerP50:  pP50,
		PredatorHungerP90:  pP90,
		PredatorThirstMean: Mean(snap.PredThirst),
	}

	// Reset for next window
	c.windowStartTick = snap.Tick
	c.windowStartTime = snap.SimTime
	c.births = [components.NumKinds]int{}
	c.deaths = [components.NumKinds]int{}
	c.causes = [4]int{}
	c.drinks = [components.NumKinds]int{}
	c.kills = 0
	c.carcassBites = 0
	c.foodEaten = 0

	return stats
}

// WindowDuration returns the window length in simulated seconds.
func (c *Collector) WindowDuration() float64 {
	return c.windowDurationSec
}
