package systems

import (
	"math"

	"github.com/pthm-cable/savanna/config"
)

// DayNightCycle is a cyclic clock. The cycle starts with a dawn transition,
// followed by the day, a dusk transition and the night.
type DayNightCycle struct {
	dayLength   float64
	nightLength float64
	transition  float64
	duration    float64

	timer     float64
	timeScale float64

	dayColor   Color
	nightColor Color
}

// NewDayNightCycle creates a cycle with timer 0 and time scale 1.
func NewDayNightCycle(dayLength, nightLength, transition float64) *DayNightCycle {
	return &DayNightCycle{
		dayLength:   dayLength,
		nightLength: nightLength,
		transition:  transition,
		duration:    dayLength + nightLength + 2*transition,
		timeScale:   1,
		dayColor:    Color{144, 238, 144},
		nightColor:  Color{0, 0, 20},
	}
}

// NewDayNightCycleFromConfig creates a cycle from the cycle config section.
func NewDayNightCycleFromConfig(cfg config.CycleConfig) *DayNightCycle {
	c := NewDayNightCycle(cfg.DayLength, cfg.NightLength, cfg.Transition)
	if cfg.TimeScale > 0 {
		c.timeScale = cfg.TimeScale
	}
	c.dayColor = Color{cfg.DayColor[0], cfg.DayColor[1], cfg.DayColor[2]}
	c.nightColor = Color{cfg.NightColor[0], cfg.NightColor[1], cfg.NightColor[2]}
	return c
}

// Update advances the clock by dt scaled by the time scale.
func (c *DayNightCycle) Update(dt float64) {
	if c.duration <= 0 {
		return
	}
	c.timer = math.Mod(c.timer+dt*c.timeScale, c.duration)
}

// IsDay reports whether the clock is inside the day window, bounds included.
func (c *DayNightCycle) IsDay() bool {
	return c.transition <= c.timer && c.timer <= c.transition+c.dayLength
}

// Daylight returns the ambient light level in [0, 1]: a sine-eased dawn,
// full day, a sine-eased dusk, then darkness.
func (c *DayNightCycle) Daylight() float64 {
	t := c.timer
	switch {
	case t < c.transition:
		return math.Sin(t / c.transition * math.Pi / 2)
	case t < c.transition+c.dayLength:
		return 1
	case t < 2*c.transition+c.dayLength:
		p := (t - c.transition - c.dayLength) / c.transition
		return 1 - math.Sin(p*math.Pi/2)
	default:
		return 0
	}
}

// BackgroundColor returns the sky colour for the current time.
func (c *DayNightCycle) BackgroundColor() Color {
	return LerpColor(c.nightColor, c.dayColor, c.Daylight())
}

// Timer returns the raw clock position in [0, duration).
func (c *DayNightCycle) Timer() float64 { return c.timer }

// SetTimer moves the clock, wrapping into [0, duration).
func (c *DayNightCycle) SetTimer(t float64) {
	if c.duration <= 0 {
		return
	}
	c.timer = Wrap(t, c.duration)
}

// Progress returns the clock position as a fraction of the full cycle.
func (c *DayNightCycle) Progress() float64 {
	if c.duration <= 0 {
		return 0
	}
	return c.timer / c.duration
}

// Duration returns the length of one full cycle.
func (c *DayNightCycle) Duration() float64 { return c.duration }

// TimeScale returns the clock speed multiplier.
func (c *DayNightCycle) TimeScale() float64 { return c.timeScale }

// ScaleTime multiplies the time scale by f. Non-positive factors are ignored.
func (c *DayNightCycle) ScaleTime(f float64) {
	if f <= 0 {
		return
	}
	c.timeScale *= f
}

// SetTimeScale sets the time scale. Non-positive values are ignored.
func (c *DayNightCycle) SetTimeScale(s float64) {
	if s <= 0 {
		return
	}
	c.timeScale = s
}

// ResetTimeScale restores real-time speed.
func (c *DayNightCycle) ResetTimeScale() { c.timeScale = 1 }
