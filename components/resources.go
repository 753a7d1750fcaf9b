package components

// ResourceKind distinguishes passive world objects.
type ResourceKind uint8

const (
	ResourceFood ResourceKind = iota
	ResourceWater
	ResourceCarcass
)

// String returns the display name for a ResourceKind.
func (k ResourceKind) String() string {
	switch k {
	case ResourceFood:
		return "food"
	case ResourceWater:
		return "water"
	case ResourceCarcass:
		return "carcass"
	default:
		return "unknown"
	}
}

// Food is consumed whole on contact.
type Food struct {
	Size float64
}

// Water is a reusable source that is never depleted.
type Water struct {
	Radius float64
}

// Carcass is the remains of a kill. Remaining drains with each bite.
type Carcass struct {
	Remaining float64
	Age       float64
	Lifespan  float64
}

// Spent reports whether the carcass is eaten up or rotted away.
func (c *Carcass) Spent() bool {
	return c.Remaining <= 0 || c.Age >= c.Lifespan
}
