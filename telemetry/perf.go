package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/savanna/components"
)

// Phase is one stage of a simulation tick.
type Phase uint8

const (
	PhaseClock Phase = iota
	PhaseAgents
	PhaseFlush
	PhaseResources
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{"clock", "agents", "flush", "resources", "telemetry"}

func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// QueueSizes counts the deferred mutations applied by flushes.
type QueueSizes struct {
	Removals  int
	Births    int
	Carcasses int
}

func (q QueueSizes) total() int { return q.Removals + q.Births + q.Carcasses }

// tickCost is what one tick spent, per phase and per species.
type tickCost struct {
	total     time.Duration
	phases    [numPhases]time.Duration
	agentTime [components.NumKinds]time.Duration
	agents    [components.NumKinds]int
	queued    QueueSizes
}

// PerfCollector keeps the cost of the most recent ticks in a ring buffer.
// The game brackets each tick with StartTick and EndTick; the ecosystem marks
// its phases, agent updates and flushes in between.
type PerfCollector struct {
	ring  []tickCost
	next  int
	count int

	cur        tickCost
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time
	frame     time.Duration

	scratch []float64
}

// NewPerfCollector returns a collector averaging over window ticks.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]tickCost, window)}
}

// StartTick opens a new tick.
func (p *PerfCollector) StartTick() {
	p.cur = tickCost{}
	p.inPhase = false
	p.tickStart = time.Now()
}

// StartPhase closes the running phase, if any, and opens ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = ph
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// AgentUpdated adds the cost of one agent update.
func (p *PerfCollector) AgentUpdated(kind components.Kind, d time.Duration) {
	p.cur.agentTime[kind] += d
	p.cur.agents[kind]++
}

// Flushed adds the queue sizes one flush applied.
func (p *PerfCollector) Flushed(q QueueSizes) {
	p.cur.queued.Removals += q.Removals
	p.cur.queued.Births += q.Births
	p.cur.queued.Carcasses += q.Carcasses
}

// EndTick closes the tick and stores it.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.inPhase = false
	p.cur.total = now.Sub(p.tickStart)
	p.push(p.cur)
}

func (p *PerfCollector) push(c tickCost) {
	p.ring[p.next] = c
	p.next = (p.next + 1) % len(p.ring)
	if p.count < len(p.ring) {
		p.count++
	}
}

// RecordFrame measures the time since the previous frame.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarizes the ticks in the window.
type PerfStats struct {
	Ticks          int
	AvgTick        time.Duration
	P95Tick        time.Duration
	MaxTick        time.Duration
	TicksPerSecond float64

	// Share of tick time per phase, in percent.
	PhasePct [numPhases]float64

	// Mean microseconds per agent update, and agents updated per tick.
	AgentUS       [components.NumKinds]float64
	AgentsPerTick [components.NumKinds]float64

	// Deferred mutations applied per tick, and the busiest tick.
	RemovalsPerTick  float64
	BirthsPerTick    float64
	CarcassesPerTick float64
	MaxQueued        int

	FrameDuration time.Duration
	FPS           float64
}

// Stats summarizes the current window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Ticks: p.count, FrameDuration: p.frame}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	p.scratch = p.scratch[:0]
	var phases [numPhases]time.Duration
	var agentTime [components.NumKinds]time.Duration
	var agents [components.NumKinds]int
	var queued QueueSizes
	for _, c := range p.ring[:p.count] {
		p.scratch = append(p.scratch, float64(c.total))
		s.MaxTick = max(s.MaxTick, c.total)
		for i, d := range c.phases {
			phases[i] += d
		}
		for k := range agents {
			agentTime[k] += c.agentTime[k]
			agents[k] += c.agents[k]
		}
		queued.Removals += c.queued.Removals
		queued.Births += c.queued.Births
		queued.Carcasses += c.queued.Carcasses
		s.MaxQueued = max(s.MaxQueued, c.queued.total())
	}

	n := float64(p.count)
	s.AvgTick = time.Duration(stat.Mean(p.scratch, nil))
	slices.Sort(p.scratch)
	s.P95Tick = time.Duration(stat.Quantile(0.95, stat.Empirical, p.scratch, nil))
	if s.AvgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	}

	var total time.Duration
	for _, d := range phases {
		total += d
	}
	if total > 0 {
		for i, d := range phases {
			s.PhasePct[i] = float64(d) / float64(total) * 100
		}
	}

	for k := range agents {
		if agents[k] > 0 {
			s.AgentUS[k] = float64(agentTime[k].Nanoseconds()) / 1e3 / float64(agents[k])
		}
		s.AgentsPerTick[k] = float64(agents[k]) / n
	}

	s.RemovalsPerTick = float64(queued.Removals) / n
	s.BirthsPerTick = float64(queued.Births) / n
	s.CarcassesPerTick = float64(queued.Carcasses) / n
	return s
}

// LogStats logs the summary at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("p95_tick_us", s.P95Tick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
		slog.Float64("herbivore_us", s.AgentUS[components.KindHerbivore]),
		slog.Float64("predator_us", s.AgentUS[components.KindPredator]),
		slog.Int("max_queued", s.MaxQueued),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for ph := Phase(0); ph < numPhases; ph++ {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd        int32   `csv:"window_end"`
	AvgTickUS        int64   `csv:"avg_tick_us"`
	P95TickUS        int64   `csv:"p95_tick_us"`
	MaxTickUS        int64   `csv:"max_tick_us"`
	TicksPerSec      float64 `csv:"ticks_per_sec"`
	FPS              float64 `csv:"fps"`
	ClockPct         float64 `csv:"clock_pct"`
	AgentsPct        float64 `csv:"agents_pct"`
	FlushPct         float64 `csv:"flush_pct"`
	ResourcesPct     float64 `csv:"resources_pct"`
	TelemetryPct     float64 `csv:"telemetry_pct"`
	HerbivoreUS      float64 `csv:"herbivore_us"`
	PredatorUS       float64 `csv:"predator_us"`
	RemovalsPerTick  float64 `csv:"removals_per_tick"`
	BirthsPerTick    float64 `csv:"births_per_tick"`
	CarcassesPerTick float64 `csv:"carcasses_per_tick"`
	MaxQueued        int     `csv:"max_queued"`
}

// ToCSV flattens the summary into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:        windowEnd,
		AvgTickUS:        s.AvgTick.Microseconds(),
		P95TickUS:        s.P95Tick.Microseconds(),
		MaxTickUS:        s.MaxTick.Microseconds(),
		TicksPerSec:      s.TicksPerSecond,
		FPS:              s.FPS,
		ClockPct:         s.PhasePct[PhaseClock],
		AgentsPct:        s.PhasePct[PhaseAgents],
		FlushPct:         s.PhasePct[PhaseFlush],
		ResourcesPct:     s.PhasePct[PhaseResources],
		TelemetryPct:     s.PhasePct[PhaseTelemetry],
		HerbivoreUS:      s.AgentUS[components.KindHerbivore],
		PredatorUS:       s.AgentUS[components.KindPredator],
		RemovalsPerTick:  s.RemovalsPerTick,
		BirthsPerTick:    s.BirthsPerTick,
		CarcassesPerTick: s.CarcassesPerTick,
		MaxQueued:        s.MaxQueued,
	}
}
