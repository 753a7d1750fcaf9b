package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	IsDay           bool    `csv:"is_day"`

	// Population counts at window end
	HerbivoreCount int `csv:"herbivores"`
	PredatorCount  int `csv:"predators"`
	FoodCount      int `csv:"food"`
	CarcassCount   int `csv:"carcasses"`

	// Events during window
	HerbivoreBirths int `csv:"herbivore_births"`
	PredatorBirths  int `csv:"predator_births"`
	HerbivoreDeaths int `csv:"herbivore_deaths"`
	PredatorDeaths  int `csv:"predator_deaths"`

	DeathsAge         int `csv:"deaths_age"`
	DeathsStarvation  int `csv:"deaths_starvation"`
	DeathsDehydration int `csv:"deaths_dehydration"`
	DeathsPredation   int `csv:"deaths_predation"`

	// Feeding
	Kills           int `csv:"kills"`
	CarcassBites    int `csv:"carcass_bites"`
	FoodEaten       int `csv:"food_eaten"`
	HerbivoreDrinks int `csv:"herbivore_drinks"`
	PredatorDrinks  int `csv:"predator_drinks"`

	// Needs distribution (fraction of max, sampled at window end)
	HerbivoreHungerMean float64 `csv:"herbivore_hunger_mean"`
	HerbivoreHungerP10  float64 `csv:"herbivore_hunger_p10"`
	HerbivoreHungerP50  float64 `csv:"herbivore_hunger_p50"`
	HerbivoreHungerP90  float64 `csv:"herbivore_hunger_p90"`
	HerbivoreThirstMean float64 `csv:"herbivore_thirst_mean"`

	PredatorHungerMean float64 `csv:"predator_hunger_mean"`
	PredatorHungerP10  float64 `csv:"predator_hunger_p10"`
	PredatorHungerP50  float64 `csv:"predator_hunger_p50"`
	PredatorHungerP90  float64 `csv:"predator_hunger_p90"`
	PredatorThirstMean float64 `csv:"predator_thirst_mean"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeNeedStats calculates mean and percentiles of need ratios.
func ComputeNeedStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// Mean returns the mean of values, or 0 when empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Bool("is_day", s.IsDay),
		slog.Int("herbivores", s.HerbivoreCount),
		slog.Int("predators", s.PredatorCount),
		slog.Int("food", s.FoodCount),
		slog.Int("carcasses", s.CarcassCount),
		slog.Int("herbivore_births", s.HerbivoreBirths),
		slog.Int("predator_births", s.PredatorBirths),
		slog.Int("herbivore_deaths", s.HerbivoreDeaths),
		slog.Int("predator_deaths", s.PredatorDeaths),
		slog.Int("deaths_age", s.DeathsAge),
		slog.Int("deaths_starvation", s.DeathsStarvation),
		slog.Int("deaths_dehydration", s.DeathsDehydration),
		slog.Int("deaths_predation", s.DeathsPredation),
		slog.Int("kills", s.Kills),
		slog.Int("carcass_bites", s.CarcassBites),
		slog.Int("food_eaten", s.FoodEaten),
		slog.Int("herbivore_drinks", s.HerbivoreDrinks),
		slog.Int("predator_drinks", s.PredatorDrinks),
		slog.Float64("herbivore_hunger_mean", s.HerbivoreHungerMean),
		slog.Float64("herbivore_hunger_p50", s.HerbivoreHungerP50),
		slog.Float64("herbivore_thirst_mean", s.HerbivoreThirstMean),
		slog.Float64("predator_hunger_mean", s.PredatorHungerMean),
		slog.Float64("predator_hunger_p50", s.PredatorHungerP50),
		slog.Float64("predator_thirst_mean", s.PredatorThirstMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"is_day", s.IsDay,
		"herbivores", s.HerbivoreCount,
		"predators", s.PredatorCount,
		"food", s.FoodCount,
		"carcasses", s.CarcassCount,
		"herbivore_births", s.HerbivoreBirths,
		"predator_births", s.PredatorBirths,
		"herbivore_deaths", s.HerbivoreDeaths,
		"predator_deaths", s.PredatorDeaths,
		"deaths_age", s.DeathsAge,
		"deaths_starvation", s.DeathsStarvation,
		"deaths_dehydration", s.DeathsDehydration,
		"deaths_predation", s.DeathsPredation,
		"kills", s.Kills,
		"carcass_bites", s.CarcassBites,
		"food_eaten", s.FoodEaten,
		"herbivore_drinks", s.HerbivoreDrinks,
		"predator_drinks", s.PredatorDrinks,
		"herbivore_hunger_mean", s.HerbivoreHungerMean,
		"herbivore_hunger_p10", s.HerbivoreHungerP10,
		"herbivore_hunger_p50", s.HerbivoreHungerP50,
		"herbivore_hunger_p90", s.HerbivoreHungerP90,
		"herbivore_thirst_mean", s.HerbivoreThirstMean,
		"predator_hunger_mean", s.PredatorHungerMean,
		"predator_hunger_p10", s.PredatorHungerP10,
		"predator_hunger_p50", s.PredatorHungerP50,
		"predator_hunger_p90", s.PredatorHungerP90,
		"predator_thirst_mean", s.PredatorThirstMean,
	)
}
