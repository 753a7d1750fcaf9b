package game

import (
	"log/slog"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/telemetry"
)

// flushTelemetry closes the stats window when it has elapsed, then reports
// the stats and any bookmarks they trigger.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.eco.SimTime()) {
		return
	}

	g.herbHunger, g.herbThirst = g.eco.Needs(components.KindHerbivore, g.herbHunger[:0], g.herbThirst[:0])
	g.predHunger, g.predThirst = g.eco.Needs(components.KindPredator, g.predHunger[:0], g.predThirst[:0])

	stats := g.collector.Flush(telemetry.Snapshot{
		Tick:       g.eco.Tick(),
		SimTime:    g.eco.SimTime(),
		IsDay:      g.eco.Cycle().IsDay(),
		Herbivores: g.eco.Population(components.KindHerbivore),
		Predators:  g.eco.Population(components.KindPredator),
		Food:       g.eco.FoodCount(),
		Carcasses:  g.eco.CarcassCount(),
		HerbHunger: g.herbHunger,
		HerbThirst: g.herbThirst,
		PredHunger: g.predHunger,
		PredThirst: g.predThirst,
	})
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}
