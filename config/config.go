// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Cycle      CycleConfig      `yaml:"cycle"`
	Population PopulationConfig `yaml:"population"`
	Agent      AgentConfig      `yaml:"agent"`
	Herbivore  SpeciesConfig    `yaml:"herbivore"`
	Predator   SpeciesConfig    `yaml:"predator"`
	Food       FoodConfig       `yaml:"food"`
	Water      []WaterConfig    `yaml:"water"`
	Carcass    CarcassConfig    `yaml:"carcass"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Bookmarks  BookmarksConfig  `yaml:"bookmarks"`
	Audio      AudioConfig      `yaml:"audio"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
type WorldConfig struct {
	Width  int `yaml:"width"`  // World width in world units (0 = use screen width)
	Height int `yaml:"height"` // World height in world units (0 = use screen height)
}

// PhysicsConfig holds simulation stepping parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"` // fixed step used by headless runs
}

// CycleConfig holds the day/night clock parameters.
type CycleConfig struct {
	DayLength   float64  `yaml:"day_length"`
	NightLength float64  `yaml:"night_length"`
	Transition  float64  `yaml:"transition"`
	TimeScale   float64  `yaml:"time_scale"`
	DayColor    [3]uint8 `yaml:"day_color"`
	NightColor  [3]uint8 `yaml:"night_color"`
}

// PopulationConfig holds initial counts and hard caps.
type PopulationConfig struct {
	InitialHerbivores int `yaml:"initial_herbivores"`
	InitialPredators  int `yaml:"initial_predators"`
	InitialFood       int `yaml:"initial_food"`
	MaxHerbivores     int `yaml:"max_herbivores"`
	MaxPredators      int `yaml:"max_predators"`
}

// AgentConfig holds behaviour constants shared by every species.
type AgentConfig struct {
	MaxSleep             float64 `yaml:"max_sleep"`
	SleepRate            float64 `yaml:"sleep_rate"`     // sleep gained per second while asleep
	WakeDelayMax         float64 `yaml:"wake_delay_max"` // upper bound of the random wake delay
	ArrivalDistance      float64 `yaml:"arrival_distance"`
	WanderIntervalMin    int     `yaml:"wander_interval_min"` // seconds, inclusive
	WanderIntervalMax    int     `yaml:"wander_interval_max"` // seconds, inclusive
	WanderMargin         float64 `yaml:"wander_margin"`
	EscapeDuration       float64 `yaml:"escape_duration"`
	DrinkDuration        float64 `yaml:"drink_duration"`
	ReproductionCooldown float64 `yaml:"reproduction_cooldown"`
	AvoidanceDistance    float64 `yaml:"avoidance_distance"`
	SeparationDistance   float64 `yaml:"separation_distance"` // post-birth waypoint spacing
	ContactGap           float64 `yaml:"contact_gap"`         // slack added to size sums for mating, kills and water
	EdgeMargin           float64 `yaml:"edge_margin"`
	EdgePush             float64 `yaml:"edge_push"`  // speed multiplier when shoved off an edge
	WaterPush            float64 `yaml:"water_push"` // speed multiplier when pushed out of water
	AvoidPush            float64 `yaml:"avoid_push"` // speed multiplier for post-birth spacing
	GrowthRate           float64 `yaml:"growth_rate"` // baby size gained per second
	HungerCap            float64 `yaml:"hunger_cap"`  // hunger clamp as a multiple of max_hunger
	DehydrationLimit     float64 `yaml:"dehydration_limit"`
	StarvationDamage     float64 `yaml:"starvation_damage"` // health lost per second while starving or parched
}

// SpeciesConfig holds the per-species constant table.
type SpeciesConfig struct {
	MaxSpeed        float64 `yaml:"max_speed"`
	Size            float64 `yaml:"size"`
	MaxHealth       float64 `yaml:"max_health"`
	MaxHunger       float64 `yaml:"max_hunger"`
	MaxThirst       float64 `yaml:"max_thirst"`
	Lifespan        float64 `yaml:"lifespan"`         // 0 = assigned lazily from default_lifespan
	DefaultLifespan float64 `yaml:"default_lifespan"` // lazy lifespan for agents spawned without one
	HungerRate      float64 `yaml:"hunger_rate"`      // per second in the active phase
	ThirstRate      float64 `yaml:"thirst_rate"`      // per second in the active phase
	RestFactor      float64 `yaml:"rest_factor"`      // needs multiplier outside the active phase
	TimeToReproduce float64 `yaml:"time_to_reproduce"`
	DriveRate       float64 `yaml:"drive_rate"` // reproductive drive per second
	FleeMultiplier  float64 `yaml:"flee_multiplier"`
	FearDistance    float64 `yaml:"fear_distance"`
	EatDistance     float64 `yaml:"eat_distance"`
	DrinkDistance   float64 `yaml:"drink_distance"`
	AvoidDuration   float64 `yaml:"avoid_duration"`  // post-birth avoidance timer
	MaxGrowthTime   float64 `yaml:"max_growth_time"` // 0 = grow until max size only

	// Predator-only hunting parameters
	HuntRange       float64 `yaml:"hunt_range"`
	SearchInterval  float64 `yaml:"search_interval"`
	AttackThreshold float64 `yaml:"attack_threshold"`
	MaxChaseTime    float64 `yaml:"max_chase_time"`
	EatInterval     float64 `yaml:"eat_interval"`
	Desperation     float64 `yaml:"desperation"` // fraction of max_hunger forcing a hunt
}

// HungerThreshold returns the hunger level above which the species seeks food.
func (s *SpeciesConfig) HungerThreshold() float64 { return s.MaxHunger / 4 }

// ThirstThreshold returns the thirst level above which the species seeks water.
func (s *SpeciesConfig) ThirstThreshold() float64 { return s.MaxThirst / 4 }

// ReproductionThreshold returns the drive at which mating checks begin.
func (s *SpeciesConfig) ReproductionThreshold() float64 { return s.TimeToReproduce / 2 }

// FoodConfig holds food spawning parameters.
type FoodConfig struct {
	Size           float64 `yaml:"size"`
	SpawnRate      float64 `yaml:"spawn_rate"` // expected spawns per second of daytime
	MaxFood        int     `yaml:"max_food"`
	FertilityScale float64 `yaml:"fertility_scale"` // noise frequency of the fertility field
	FertilityFloor float64 `yaml:"fertility_floor"` // minimum acceptance probability
	SpawnAttempts  int     `yaml:"spawn_attempts"`
}

// WaterConfig places one water source as fractions of the world size.
type WaterConfig struct {
	XFrac  float64 `yaml:"x_frac"`
	YFrac  float64 `yaml:"y_frac"`
	Radius float64 `yaml:"radius"`
}

// CarcassConfig holds carcass parameters.
type CarcassConfig struct {
	Hunger         float64 `yaml:"hunger"`          // edible units in a fresh carcass
	BiteSize       float64 `yaml:"bite_size"`       // units removed per feeding bite
	BiteInterval   float64 `yaml:"bite_interval"`   // seconds between bites while feeding
	Lifespan       float64 `yaml:"lifespan"`        // seconds before it rots away
	HistorySize    int     `yaml:"history_size"`    // remembered carcasses per predator
	FeedEfficiency float64 `yaml:"feed_efficiency"` // fraction of max_hunger restored by a kill
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	HerbivoreCrash   HerbivoreCrashConfig   `yaml:"herbivore_crash"`
	PredatorRecovery PredatorRecoveryConfig `yaml:"predator_recovery"`
	StableEcosystem  StableEcosystemConfig  `yaml:"stable_ecosystem"`
}

// HerbivoreCrashConfig holds herbivore crash detection parameters.
type HerbivoreCrashConfig struct {
	DropPercent float64 `yaml:"drop_percent"`
	MinDrop     int     `yaml:"min_drop"`
}

// PredatorRecoveryConfig holds predator recovery detection parameters.
type PredatorRecoveryConfig struct {
	MinPopulation      int `yaml:"min_population"`
	RecoveryMultiplier int `yaml:"recovery_multiplier"`
	MinFinal           int `yaml:"min_final"`
}

// StableEcosystemConfig holds stable ecosystem detection parameters.
type StableEcosystemConfig struct {
	MinHerbivores int     `yaml:"min_herbivores"`
	MinPredators  int     `yaml:"min_predators"`
	CVThreshold   float64 `yaml:"cv_threshold"`
	StableWindows int     `yaml:"stable_windows"`
}

// AudioConfig names the music played for each phase. Empty paths disable playback.
type AudioConfig struct {
	DayMusic   string  `yaml:"day_music"`
	NightMusic string  `yaml:"night_music"`
	Volume     float64 `yaml:"volume"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32          float32 // Physics.DT as float32
	WorldW        float64 // Effective world width
	WorldH        float64 // Effective world height
	CycleDuration float64 // day + night + 2*transition
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)

	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW = float64(worldW)
	c.Derived.WorldH = float64(worldH)

	c.Derived.CycleDuration = c.Cycle.DayLength + c.Cycle.NightLength + 2*c.Cycle.Transition

	if c.Cycle.TimeScale == 0 {
		c.Cycle.TimeScale = 1
	}
}

// Validate reports configuration values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Derived.WorldW <= 0 || c.Derived.WorldH <= 0 {
		errs = append(errs, fmt.Errorf("world size must be positive, got %vx%v", c.Derived.WorldW, c.Derived.WorldH))
	}
	if c.Physics.DT <= 0 {
		errs = append(errs, fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT))
	}
	if c.Cycle.DayLength < 0 || c.Cycle.NightLength < 0 || c.Cycle.Transition < 0 {
		errs = append(errs, errors.New("cycle lengths must not be negative"))
	}
	if c.Derived.CycleDuration <= 0 {
		errs = append(errs, errors.New("cycle duration must be positive"))
	}
	if c.Cycle.TimeScale < 0 {
		errs = append(errs, fmt.Errorf("cycle.time_scale must be positive, got %v", c.Cycle.TimeScale))
	}
	if c.Population.MaxHerbivores < 0 || c.Population.MaxPredators < 0 {
		errs = append(errs, errors.New("population caps must not be negative"))
	}
	if c.Agent.MaxSleep <= 0 {
		errs = append(errs, fmt.Errorf("agent.max_sleep must be positive, got %v", c.Agent.MaxSleep))
	}
	if c.Agent.WanderIntervalMin <= 0 || c.Agent.WanderIntervalMax < c.Agent.WanderIntervalMin {
		errs = append(errs, fmt.Errorf("agent wander interval [%d,%d] is invalid",
			c.Agent.WanderIntervalMin, c.Agent.WanderIntervalMax))
	}
	if 2*c.Agent.WanderMargin >= c.Derived.WorldW || 2*c.Agent.WanderMargin >= c.Derived.WorldH {
		errs = append(errs, errors.New("agent.wander_margin leaves no room to wander"))
	}
	if c.Carcass.HistorySize < 1 {
		errs = append(errs, fmt.Errorf("carcass.history_size must be at least 1, got %d", c.Carcass.HistorySize))
	}
	for name, s := range map[string]*SpeciesConfig{"herbivore": &c.Herbivore, "predator": &c.Predator} {
		if s.Size <= 0 || s.MaxHealth <= 0 || s.MaxHunger <= 0 || s.MaxThirst <= 0 {
			errs = append(errs, fmt.Errorf("%s: size and maxima must be positive", name))
		}
		if s.Lifespan <= 0 && s.DefaultLifespan <= 0 {
			errs = append(errs, fmt.Errorf("%s: lifespan or default_lifespan must be positive", name))
		}
	}
	for i, w := range c.Water {
		if w.Radius <= 0 {
			errs = append(errs, fmt.Errorf("water[%d]: radius must be positive, got %v", i, w.Radius))
		}
	}

	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
