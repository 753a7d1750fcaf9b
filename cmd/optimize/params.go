// Package main provides CMA-ES optimization for savanna species parameters.
package main

import (
	"github.com/pthm-cable/savanna/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	field func(*config.Config) *float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Herbivore needs and breeding
			{Name: "herb_hunger_rate", Path: "herbivore.hunger_rate", Min: 0.03, Max: 0.20, Default: 0.08,
				field: func(c *config.Config) *float64 { return &c.Herbivore.HungerRate }},
			{Name: "herb_thirst_rate", Path: "herbivore.thirst_rate", Min: 0.08, Max: 0.40, Default: 0.2,
				field: func(c *config.Config) *float64 { return &c.Herbivore.ThirstRate }},
			{Name: "herb_drive_rate", Path: "herbivore.drive_rate", Min: 0.5, Max: 2.0, Default: 1,
				field: func(c *config.Config) *float64 { return &c.Herbivore.DriveRate }},
			{Name: "herb_fear_distance", Path: "herbivore.fear_distance", Min: 20, Max: 100, Default: 45,
				field: func(c *config.Config) *float64 { return &c.Herbivore.FearDistance }},
			{Name: "herb_flee_multiplier", Path: "herbivore.flee_multiplier", Min: 1, Max: 8, Default: 5,
				field: func(c *config.Config) *float64 { return &c.Herbivore.FleeMultiplier }},
			// Predator needs, breeding and hunting
			{Name: "pred_hunger_rate", Path: "predator.hunger_rate", Min: 0.03, Max: 0.20, Default: 0.08,
				field: func(c *config.Config) *float64 { return &c.Predator.HungerRate }},
			{Name: "pred_drive_rate", Path: "predator.drive_rate", Min: 0.2, Max: 1.5, Default: 0.5,
				field: func(c *config.Config) *float64 { return &c.Predator.DriveRate }},
			{Name: "pred_hunt_range", Path: "predator.hunt_range", Min: 50, Max: 200, Default: 100,
				field: func(c *config.Config) *float64 { return &c.Predator.HuntRange }},
			{Name: "pred_attack_threshold", Path: "predator.attack_threshold", Min: 1, Max: 10, Default: 3,
				field: func(c *config.Config) *float64 { return &c.Predator.AttackThreshold }},
			{Name: "pred_max_chase_time", Path: "predator.max_chase_time", Min: 10, Max: 60, Default: 30,
				field: func(c *config.Config) *float64 { return &c.Predator.MaxChaseTime }},
			{Name: "pred_eat_interval", Path: "predator.eat_interval", Min: 5, Max: 40, Default: 20,
				field: func(c *config.Config) *float64 { return &c.Predator.EatInterval }},
			{Name: "pred_desperation", Path: "predator.desperation", Min: 0.4, Max: 0.95, Default: 0.75,
				field: func(c *config.Config) *float64 { return &c.Predator.Desperation }},
			// Resources
			{Name: "food_spawn_rate", Path: "food.spawn_rate", Min: 0.2, Max: 2.0, Default: 0.6,
				field: func(c *config.Config) *float64 { return &c.Food.SpawnRate }},
			{Name: "carcass_feed_eff", Path: "carcass.feed_efficiency", Min: 0.2, Max: 1.0, Default: 0.5,
				field: func(c *config.Config) *float64 { return &c.Carcass.FeedEfficiency }},
			{Name: "carcass_bite_size", Path: "carcass.bite_size", Min: 5, Max: 30, Default: 10,
				field: func(c *config.Config) *float64 { return &c.Carcass.BiteSize }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].field(cfg) = v
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.field(cfg)
	}
	return v
}
