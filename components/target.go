package components

import "github.com/mlange-42/ark/ecs"

// TargetKind selects the active variant of a Target.
type TargetKind uint8

const (
	TargetNone TargetKind = iota
	TargetFood
	TargetWater
	TargetCarcass
	TargetAgent
	TargetWaypoint
)

// String returns the display name for a TargetKind.
func (k TargetKind) String() string {
	switch k {
	case TargetNone:
		return "none"
	case TargetFood:
		return "food"
	case TargetWater:
		return "water"
	case TargetCarcass:
		return "carcass"
	case TargetAgent:
		return "agent"
	case TargetWaypoint:
		return "waypoint"
	default:
		return "unknown"
	}
}

// Target is what an agent is moving toward. Entity is set for the resource and
// agent variants, X/Y for waypoints. Handles may go stale and must be checked
// for liveness before every use.
type Target struct {
	Kind   TargetKind
	Entity ecs.Entity
	X, Y   float64
}

// NoTarget is the empty target.
var NoTarget = Target{}

// EntityTarget returns a target referencing an entity.
func EntityTarget(kind TargetKind, e ecs.Entity) Target {
	return Target{Kind: kind, Entity: e}
}

// Waypoint returns a raw coordinate target.
func Waypoint(x, y float64) Target {
	return Target{Kind: TargetWaypoint, X: x, Y: y}
}

// IsNone reports whether no target is set.
func (t Target) IsNone() bool { return t.Kind == TargetNone }

// HasEntity reports whether the variant carries an entity handle.
func (t Target) HasEntity() bool {
	switch t.Kind {
	case TargetFood, TargetWater, TargetCarcass, TargetAgent:
		return true
	case TargetNone, TargetWaypoint:
		return false
	default:
		return false
	}
}
