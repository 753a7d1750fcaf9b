package main

import (
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/savanna/config"
	"github.com/pthm-cable/savanna/game"
	"github.com/pthm-cable/savanna/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: baseCfg.Telemetry.StatsWindow,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Minimum viable population: if either species stays below this for
// extinctionGraceSec simulated seconds, it counts as functionally extinct.
const (
	minViablePop       = 2
	extinctionGraceSec = 60.0
	warmupSec          = 5.0
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int32                   // ticks before functional extinction (or maxTicks if survived)
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Seeds run in parallel, each in its own ecosystem.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			results[idx] = seedResult{
				fitness: computeFitness(result),
				quality: computeQuality(result.windowStats),
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless simulation run.
// Runs until functional extinction or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{survivalTicks: fe.maxTicks}

	g := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	defer g.Unload()

	dt := cfg.Physics.DT
	warmupTicks := int32(warmupSec / dt)
	var herbBelowSec, predBelowSec float64

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()

		tick := g.Tick()
		if tick < warmupTicks {
			continue
		}

		herbs := g.HerbivoreCount()
		preds := g.PredatorCount()

		// Hard extinction: either species completely gone
		if herbs == 0 || preds == 0 {
			result.survivalTicks = tick
			return result
		}

		herbBelowSec = belowFor(herbBelowSec, herbs, dt)
		predBelowSec = belowFor(predBelowSec, preds, dt)
		if herbBelowSec >= extinctionGraceSec || predBelowSec >= extinctionGraceSec {
			result.survivalTicks = tick
			return result
		}
	}

	return result
}

// belowFor extends a below-viable streak by dt, or resets it.
func belowFor(streak float64, count int, dt float64) float64 {
	if count < minViablePop {
		return streak + dt
	}
	return 0
}

// copyConfig returns a deep copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Water = slices.Clone(fe.baseConfig.Water)
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
func computeFitness(r *runResult) float64 {
	survival := float64(r.survivalTicks)
	return -(survival * (1.0 + 0.2*computeQuality(r.windowStats)))
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.30
	qualityWeightStability = 0.25
	qualityWeightNeeds     = 0.25
	qualityWeightHunting   = 0.20

	qualityWarmupWindows = 3 // skip first N windows (warmup)
	qualityMinPop        = 3 // exclude windows where either species < this

	targetRatio  = 2.5 // herbivores per predator
	targetHunger = 0.35
)

// computeQuality computes ecosystem quality ∈ [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var ratioSum, needsSum, huntSum float64
	var count int
	herbCounts := make([]float64, 0, len(valid))
	predCounts := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.HerbivoreCount < qualityMinPop || w.PredatorCount < qualityMinPop {
			continue
		}
		count++

		herbCounts = append(herbCounts, float64(w.HerbivoreCount))
		predCounts = append(predCounts, float64(w.PredatorCount))

		// Population ratio, scored on a log scale around the target
		logErr := math.Log(float64(w.HerbivoreCount) / float64(w.PredatorCount) / targetRatio)
		ratioSum += math.Exp(-logErr * logErr)

		// Median hunger near the seek threshold for both species
		herbH := math.Exp(-math.Pow((w.HerbivoreHungerP50-targetHunger)/0.2, 2))
		predH := math.Exp(-math.Pow((w.PredatorHungerP50-targetHunger)/0.2, 2))
		needsSum += (herbH + predH) / 2

		// Hunting activity: kills plus carcass feeding per predator
		perPred := float64(w.Kills+w.CarcassBites) / float64(w.PredatorCount)
		huntSum += 1 - math.Exp(-perPred)
	}

	if count == 0 {
		return 0
	}

	stabilityScore := 0.0
	if len(herbCounts) >= 2 {
		cvHerb := cv(herbCounts)
		cvPred := cv(predCounts)
		stabilityScore = math.Exp(-(cvHerb*cvHerb + cvPred*cvPred))
	}

	n := float64(count)
	quality := qualityWeightRatio*ratioSum/n +
		qualityWeightStability*stabilityScore +
		qualityWeightNeeds*needsSum/n +
		qualityWeightHunting*huntSum/n

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
