package telemetry

import (
	"testing"

	"github.com/pthm-cable/savanna/config"
)

func testBookmarksConfig(t *testing.T) config.BookmarksConfig {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg.Bookmarks
}

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_HerbivoreCrash(t *testing.T) {
	bd := NewBookmarkDetector(10, testBookmarksConfig(t))

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{
			WindowEndTick:  int32(i * 600),
			HerbivoreCount: 60,
			PredatorCount:  10,
		})
	}

	crash := WindowStats{
		WindowEndTick:  3000,
		HerbivoreCount: 30, // 50% drop
		PredatorCount:  10,
	}
	if !hasBookmark(bd.Check(crash), BookmarkHerbivoreCrash) {
		t.Error("expected herbivore_crash bookmark")
	}
}

func TestBookmarkDetector_NoCrashOnSmallDrop(t *testing.T) {
	bd := NewBookmarkDetector(10, testBookmarksConfig(t))

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 600), HerbivoreCount: 60, PredatorCount: 10})
	}
	if hasBookmark(bd.Check(WindowStats{WindowEndTick: 3000, HerbivoreCount: 55, PredatorCount: 10}), BookmarkHerbivoreCrash) {
		t.Error("unexpected herbivore_crash bookmark for a 8% drop")
	}
}

func TestBookmarkDetector_PredatorRecovery(t *testing.T) {
	bd := NewBookmarkDetector(10, testBookmarksConfig(t))

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{
			WindowEndTick:  int32(i * 600),
			HerbivoreCount: 50,
			PredatorCount:  2, // critical low
		})
	}

	recovery := WindowStats{
		WindowEndTick:  2400,
		HerbivoreCount: 50,
		PredatorCount:  8, // 4x the minimum of 2
	}
	if !hasBookmark(bd.Check(recovery), BookmarkPredatorRecovery) {
		t.Error("expected predator_recovery bookmark")
	}
}

func TestBookmarkDetector_StableEcosystem(t *testing.T) {
	bd := NewBookmarkDetector(10, testBookmarksConfig(t))

	fired := 0
	for i := 0; i < 12; i++ {
		bookmarks := bd.Check(WindowStats{
			WindowEndTick:  int32(i * 600),
			HerbivoreCount: 40,
			PredatorCount:  8,
		})
		if hasBookmark(bookmarks, BookmarkStableEcosystem) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("stable_ecosystem fired %d times, want 1", fired)
	}
}

func TestBookmarkDetector_Extinction(t *testing.T) {
	bd := NewBookmarkDetector(10, testBookmarksConfig(t))

	bd.Check(WindowStats{WindowEndTick: 600, HerbivoreCount: 20, PredatorCount: 3})
	if !hasBookmark(bd.Check(WindowStats{WindowEndTick: 1200, HerbivoreCount: 20, PredatorCount: 0}), BookmarkExtinction) {
		t.Error("expected extinction bookmark")
	}
	if hasBookmark(bd.Check(WindowStats{WindowEndTick: 1800, HerbivoreCount: 20, PredatorCount: 0}), BookmarkExtinction) {
		t.Error("extinction should fire only once")
	}
}
