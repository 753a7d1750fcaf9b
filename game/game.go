// Package game wires the ecosystem to the window, input, HUD and telemetry.
package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
	"github.com/pthm-cable/savanna/ecosystem"
	"github.com/pthm-cable/savanna/inspector"
	"github.com/pthm-cable/savanna/renderer"
	"github.com/pthm-cable/savanna/telemetry"
	"github.com/pthm-cable/savanna/ui"
)

// maxFrameTime clamps the frame delta so a stalled window does not step the
// world by seconds at once.
const maxFrameTime = 0.25

// Options configures a new game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
	Config         *config.Config // nil = config.Cfg()
	StatsCallback  func(telemetry.WindowStats)
}

// Game holds the ecosystem and everything around it.
type Game struct {
	cfg *config.Config
	eco *ecosystem.Ecosystem

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	herbHunger       []float64
	herbThirst       []float64
	predHunger       []float64
	predThirst       []float64

	// Front end, nil when headless
	scene     *renderer.Scene
	hud       *ui.HUD
	inspector *inspector.Inspector
	music     *musicPlayer

	// UI state
	headless       bool
	stepsPerUpdate int
	showInfo       bool
	showFertility  bool
	panelHeight    int32
	screenWidth    int32
	screenHeight   int32
}

// NewGameWithOptions creates a game and spawns the initial population.
// Graphical games must be created after rl.InitWindow.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}
	window := opts.StatsWindowSec
	if window <= 0 {
		window = cfg.Telemetry.StatsWindow
	}

	g := &Game{
		cfg:              cfg,
		eco:              ecosystem.New(cfg, opts.Seed),
		collector:        telemetry.NewCollector(window),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize, cfg.Bookmarks),
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
		headless:         opts.Headless,
		stepsPerUpdate:   steps,
		screenWidth:      int32(cfg.Screen.Width),
		screenHeight:     int32(cfg.Screen.Height),
	}
	g.eco.SetObserver(g.collector)
	g.eco.SetPerf(g.perfCollector)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
	}
	g.outputManager = om
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	g.eco.Populate()

	if !g.headless {
		g.scene = renderer.NewScene(g.eco)
		g.hud = ui.NewHUD()
		g.inspector = inspector.NewInspector(g.screenWidth)
		g.music = newMusicPlayer(cfg.Audio)
		g.eco.SetPhaseListener(g.music)
		g.music.PhaseChanged(g.eco.Cycle().IsDay())
	}

	slog.Info("game created",
		"seed", opts.Seed,
		"herbivores", g.eco.Population(components.KindHerbivore),
		"predators", g.eco.Population(components.KindPredator),
		"food", g.eco.FoodCount(),
		"headless", g.headless,
	)

	return g
}

// Update runs one graphical frame: input, then stepsPerUpdate ticks of the
// frame time.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	g.handleInput()

	dt := min(float64(rl.GetFrameTime()), maxFrameTime)
	for range g.stepsPerUpdate {
		g.step(dt)
	}

	g.music.Update()
}

// UpdateHeadless runs stepsPerUpdate ticks of the fixed physics step.
func (g *Game) UpdateHeadless() {
	for range g.stepsPerUpdate {
		g.step(g.cfg.Physics.DT)
	}
}

// step advances the ecosystem once and flushes telemetry when a window ends.
func (g *Game) step(dt float64) {
	if g.eco.Paused() {
		return
	}
	g.perfCollector.StartTick()
	g.eco.Advance(dt)
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.perfCollector.EndTick()
}

// Tick returns the number of completed simulation ticks.
func (g *Game) Tick() int32 { return g.eco.Tick() }

// HerbivoreCount returns the live herbivore population.
func (g *Game) HerbivoreCount() int { return g.eco.Population(components.KindHerbivore) }

// PredatorCount returns the live predator population.
func (g *Game) PredatorCount() int { return g.eco.Population(components.KindPredator) }

// Ecosystem exposes the simulation for tools and tests.
func (g *Game) Ecosystem() *ecosystem.Ecosystem { return g.eco }

// Unload releases window resources and closes output files.
func (g *Game) Unload() {
	if g.scene != nil {
		g.scene.Unload()
	}
	if g.music != nil {
		g.music.Unload()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
