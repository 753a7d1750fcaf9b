// Package components defines ECS components for the simulation.
package components

import "github.com/mlange-42/ark/ecs"

// Kind distinguishes the two agent species.
type Kind uint8

const (
	KindHerbivore Kind = iota
	KindPredator
)

// NumKinds is the number of agent species.
const NumKinds = 2

// String returns the display name for a Kind.
func (k Kind) String() string {
	switch k {
	case KindHerbivore:
		return "herbivore"
	case KindPredator:
		return "predator"
	default:
		return "unknown"
	}
}

// Position is the single source of truth for an entity's location.
type Position struct {
	X, Y float64
}

// Motion holds the normalized heading and the speed derived each tick.
type Motion struct {
	DirX, DirY float64 `inspect:"skip"`
	Speed      float64 `inspect:"label,fmt:%.1f"`
	MaxSpeed   float64 `inspect:"label,fmt:%.1f"`
}

// Body holds size and growth state.
type Body struct {
	Size       float64 `inspect:"label,fmt:%.1f"`
	MaxSize    float64 `inspect:"label,fmt:%.1f"`
	IsBaby     bool    `inspect:"bool"`
	GrowthTime float64 `inspect:"label,fmt:%.1fs"` // seconds spent growing; 0 once grown
}

// Vitals tracks the needs and life span of an agent.
type Vitals struct {
	Health    float64 `inspect:"bar,max:MaxHealth"`
	MaxHealth float64 `inspect:"skip"`
	Hunger    float64 `inspect:"bar,max:MaxHunger"`
	MaxHunger float64 `inspect:"skip"`
	Thirst    float64 `inspect:"bar,max:MaxThirst"`
	MaxThirst float64 `inspect:"skip"`
	Sleep     float64 `inspect:"bar,max:MaxSleep"`
	MaxSleep  float64 `inspect:"skip"`
	Age       float64 `inspect:"label,fmt:%.0fs"`
	MaxAge    float64 `inspect:"label,fmt:%.0fs"` // 0 until assigned lazily
}

// Drive holds reproductive state.
type Drive struct {
	Reproductive float64 `inspect:"label,fmt:%.1f"`
	Ready        bool    `inspect:"bool"`
	Cooldown     float64 `inspect:"label,fmt:%.1fs"`
	AvoidTimer   float64 `inspect:"label,fmt:%.1fs"` // post-birth spacing
}

// State holds behavioural flags and timers.
type State struct {
	Target Target `inspect:"skip"`

	Asleep    bool    `inspect:"bool"`
	RestPhase bool    `inspect:"skip"` // whether the last tick was in the species' rest phase
	WakeDelay float64 `inspect:"label,fmt:%.1fs"`

	Drinking   bool    `inspect:"bool"`
	DrinkTimer float64 `inspect:"skip"`

	Escaping    bool    `inspect:"bool"`
	EscapeTimer float64 `inspect:"skip"`

	WanderTimer    float64 `inspect:"skip"`
	WanderInterval float64 `inspect:"skip"`
	WanderX        float64 `inspect:"skip"`
	WanderY        float64 `inspect:"skip"`
	HasWander      bool    `inspect:"skip"`
}

// Species tags an agent with its kind.
type Species struct {
	Kind Kind
}

// Hunter holds predator-only hunting and feeding state.
type Hunter struct {
	SearchTimer   float64      `inspect:"skip"`
	ChaseTimer    float64      `inspect:"label,fmt:%.1fs"`
	EatTimer      float64      `inspect:"label,fmt:%.1fs"`
	EatingCarcass bool         `inspect:"bool"`
	Current       ecs.Entity   `inspect:"skip"`
	History       []ecs.Entity `inspect:"skip"` // most recent last
}

// Remember appends a carcass to the history, dropping the oldest beyond limit.
func (h *Hunter) Remember(carcass ecs.Entity, limit int) {
	h.History = append(h.History, carcass)
	if over := len(h.History) - limit; over > 0 {
		h.History = append(h.History[:0], h.History[over:]...)
	}
}

// Forget drops a carcass from the history and clears it if current.
func (h *Hunter) Forget(carcass ecs.Entity) {
	kept := h.History[:0]
	for _, e := range h.History {
		if e != carcass {
			kept = append(kept, e)
		}
	}
	h.History = kept
	if h.Current == carcass {
		h.Current = ecs.Entity{}
		h.EatingCarcass = false
	}
}

// DeathCause records why an agent left the world.
type DeathCause uint8

const (
	CauseAge DeathCause = iota
	CauseStarvation
	CauseDehydration
	CausePredation
)

// String returns the display name for a DeathCause.
func (c DeathCause) String() string {
	switch c {
	case CauseAge:
		return "age"
	case CauseStarvation:
		return "starvation"
	case CauseDehydration:
		return "dehydration"
	case CausePredation:
		return "predation"
	default:
		return "unknown"
	}
}
