package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/savanna/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHerbivoreCrash   BookmarkType = "herbivore_crash"
	BookmarkPredatorRecovery BookmarkType = "predator_recovery"
	BookmarkStableEcosystem  BookmarkType = "stable_ecosystem"
	BookmarkExtinction       BookmarkType = "extinction"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	SimTime     float64      `csv:"sim_time"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"sim_time", b.SimTime,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	cfg config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentPredMin      int // minimum predator count in recent history
	recentHerbPeak     int // peak herbivore count in recent history
	stableWindowsCount int // consecutive windows with stable populations
	extinct            [2]bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, cfg config.BookmarksConfig) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		cfg:           cfg,
		history:       make([]WindowStats, historySize),
		historySize:   historySize,
		recentPredMin: -1,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	bookmarks = append(bookmarks, bd.checkExtinction(stats)...)

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkPredatorRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkHerbivoreCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStableEcosystem(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if bd.recentPredMin < 0 || stats.PredatorCount < bd.recentPredMin {
		bd.recentPredMin = stats.PredatorCount
	}
	if stats.HerbivoreCount > bd.recentHerbPeak {
		bd.recentHerbPeak = stats.HerbivoreCount
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the most recent windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	if n > count {
		n = count
	}
	out := make([]WindowStats, 0, n)
	for i := n; i > 0; i-- {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		out = append(out, bd.history[idx])
	}
	return out
}

// checkExtinction fires once per species when its count first reaches zero.
func (bd *BookmarkDetector) checkExtinction(stats WindowStats) []Bookmark {
	var out []Bookmark
	counts := [2]int{stats.HerbivoreCount, stats.PredatorCount}
	names := [2]string{"herbivores", "predators"}
	for i, n := range counts {
		if n == 0 && !bd.extinct[i] {
			bd.extinct[i] = true
			out = append(out, Bookmark{
				Type:        BookmarkExtinction,
				Tick:        stats.WindowEndTick,
				SimTime:     stats.SimTimeSec,
				Description: fmt.Sprintf("All %s died out", names[i]),
			})
		}
		if n > 0 {
			bd.extinct[i] = false
		}
	}
	return out
}

func (bd *BookmarkDetector) checkPredatorRecovery(stats WindowStats) *Bookmark {
	pc := bd.cfg.PredatorRecovery
	if bd.recentPredMin <= 0 || bd.recentPredMin > pc.MinPopulation {
		return nil
	}

	threshold := bd.recentPredMin * pc.RecoveryMultiplier
	if stats.PredatorCount >= threshold && stats.PredatorCount >= pc.MinFinal {
		oldMin := bd.recentPredMin
		bd.recentPredMin = stats.PredatorCount

		return &Bookmark{
			Type:        BookmarkPredatorRecovery,
			Tick:        stats.WindowEndTick,
			SimTime:     stats.SimTimeSec,
			Description: fmt.Sprintf("Predator population recovered from %d to %d", oldMin, stats.PredatorCount),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkHerbivoreCrash(stats WindowStats) *Bookmark {
	if bd.recentHerbPeak == 0 {
		return nil
	}

	hc := bd.cfg.HerbivoreCrash
	dropPercent := 1.0 - float64(stats.HerbivoreCount)/float64(bd.recentHerbPeak)
	if dropPercent > hc.DropPercent && stats.HerbivoreCount <= bd.recentHerbPeak-hc.MinDrop {
		oldPeak := bd.recentHerbPeak
		bd.recentHerbPeak = stats.HerbivoreCount

		return &Bookmark{
			Type:        BookmarkHerbivoreCrash,
			Tick:        stats.WindowEndTick,
			SimTime:     stats.SimTimeSec,
			Description: fmt.Sprintf("Herbivores crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.HerbivoreCount),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	sc := bd.cfg.StableEcosystem
	if stats.HerbivoreCount < sc.MinHerbivores || stats.PredatorCount < sc.MinPredators {
		bd.stableWindowsCount = 0
		return nil
	}

	window := bd.recent(4)
	if len(window) < 4 {
		return nil
	}

	herbs := make([]float64, len(window))
	preds := make([]float64, len(window))
	for i, h := range window {
		herbs[i] = float64(h.HerbivoreCount)
		preds[i] = float64(h.PredatorCount)
	}

	if coefficientOfVariation(herbs) < sc.CVThreshold && coefficientOfVariation(preds) < sc.CVThreshold {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == sc.StableWindows {
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Tick:        stats.WindowEndTick,
			SimTime:     stats.SimTimeSec,
			Description: fmt.Sprintf("Stable ecosystem with %d herbivores, %d predators over %d windows", stats.HerbivoreCount, stats.PredatorCount, sc.StableWindows),
		}
	}

	return nil
}

// coefficientOfVariation returns the population std dev over the mean.
func coefficientOfVariation(values []float64) float64 {
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
