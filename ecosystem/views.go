package ecosystem

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/systems"
)

// carcassMarkSize is the half-length of the cross drawn for a carcass.
const carcassMarkSize = 15

// AgentView is the per-frame renderer data for one agent.
type AgentView struct {
	Entity ecs.Entity
	X, Y   float64
	Size   float64
	Kind   components.Kind
	Asleep bool
	Baby   bool
}

// ResourceView is the per-frame renderer data for one resource.
type ResourceView struct {
	Entity ecs.Entity
	X, Y   float64
	Size   float64
	Kind   components.ResourceKind
}

// Agents appends a view of every live agent to dst[:0].
func (eco *Ecosystem) Agents(dst []AgentView) []AgentView {
	dst = dst[:0]
	query := eco.agentFilter.Query()
	for query.Next() {
		pos, _, body, _, _, st, spc := query.Get()
		dst = append(dst, AgentView{
			Entity: query.Entity(),
			X:      pos.X,
			Y:      pos.Y,
			Size:   body.Size,
			Kind:   spc.Kind,
			Asleep: st.Asleep,
			Baby:   body.IsBaby,
		})
	}
	return dst
}

// Foods appends a view of every food item to dst.
func (eco *Ecosystem) Foods(dst []ResourceView) []ResourceView {
	query := eco.foodFilter.Query()
	for query.Next() {
		pos, food := query.Get()
		dst = append(dst, ResourceView{Entity: query.Entity(), X: pos.X, Y: pos.Y, Size: food.Size, Kind: components.ResourceFood})
	}
	return dst
}

// Waters appends a view of every water source to dst.
func (eco *Ecosystem) Waters(dst []ResourceView) []ResourceView {
	query := eco.waterFilter.Query()
	for query.Next() {
		pos, water := query.Get()
		dst = append(dst, ResourceView{Entity: query.Entity(), X: pos.X, Y: pos.Y, Size: water.Radius, Kind: components.ResourceWater})
	}
	return dst
}

// Carcasses appends a view of every carcass to dst.
func (eco *Ecosystem) Carcasses(dst []ResourceView) []ResourceView {
	query := eco.carcassFilter.Query()
	for query.Next() {
		pos, _ := query.Get()
		dst = append(dst, ResourceView{Entity: query.Entity(), X: pos.X, Y: pos.Y, Size: carcassMarkSize, Kind: components.ResourceCarcass})
	}
	return dst
}

// Resources returns water, food and carcasses in draw order.
func (eco *Ecosystem) Resources(dst []ResourceView) []ResourceView {
	dst = eco.Waters(dst[:0])
	dst = eco.Foods(dst)
	return eco.Carcasses(dst)
}

// AgentAt returns the topmost agent whose body contains (x, y).
func (eco *Ecosystem) AgentAt(x, y float64) (ecs.Entity, bool) {
	var hit ecs.Entity
	query := eco.agentFilter.Query()
	for query.Next() {
		pos, _, body, _, _, _, _ := query.Get()
		if systems.Distance(pos.X, pos.Y, x, y) < body.Size {
			hit = query.Entity()
		}
	}
	return hit, !hit.IsZero()
}

// Status formats the health, needs, age and readiness of an agent.
func (eco *Ecosystem) Status(e ecs.Entity) string {
	if !eco.Exists(e) || !eco.speciesMap.Has(e) {
		return ""
	}
	_, _, _, vit, drv, _, _ := eco.agentMap.Get(e)
	ready := "no"
	if drv.Ready {
		ready = "yes"
	}
	return fmt.Sprintf("Health: %d/%d, Hunger: %d/%d, Thirst: %d/%d, Age: %d/%d, Ready: %s",
		int(vit.Health), int(vit.MaxHealth),
		int(vit.Hunger), int(vit.MaxHunger),
		int(vit.Thirst), int(vit.MaxThirst),
		int(vit.Age), int(vit.MaxAge),
		ready)
}

// Needs appends the hunger and thirst ratios of every agent of a kind.
func (eco *Ecosystem) Needs(kind components.Kind, hunger, thirst []float64) ([]float64, []float64) {
	query := eco.agentFilter.Query()
	for query.Next() {
		_, _, _, vit, _, _, spc := query.Get()
		if spc.Kind != kind {
			continue
		}
		hunger = append(hunger, vit.Hunger/vit.MaxHunger)
		thirst = append(thirst, vit.Thirst/vit.MaxThirst)
	}
	return hunger, thirst
}

// NamedComponent is one component value of an inspected agent.
type NamedComponent struct {
	Name  string
	Value any
}

// Components returns copies of an agent's components for inspection, or nil
// if e is not a live agent.
func (eco *Ecosystem) Components(e ecs.Entity) []NamedComponent {
	if !eco.Exists(e) || !eco.speciesMap.Has(e) {
		return nil
	}
	_, mot, body, vit, drv, st, spc := eco.agentMap.Get(e)
	out := []NamedComponent{
		{"Vitals", *vit},
		{"Body", *body},
		{"Drive", *drv},
		{"State", *st},
		{"Motion", *mot},
	}
	if spc.Kind == components.KindPredator {
		out = append(out, NamedComponent{"Hunter", *eco.hunterMap.Get(e)})
	}
	return out
}

// Lookup returns the view of a single live agent.
func (eco *Ecosystem) Lookup(e ecs.Entity) (AgentView, bool) {
	if !eco.Exists(e) || !eco.speciesMap.Has(e) {
		return AgentView{}, false
	}
	pos, _, body, _, _, st, spc := eco.agentMap.Get(e)
	return AgentView{
		Entity: e,
		X:      pos.X,
		Y:      pos.Y,
		Size:   body.Size,
		Kind:   spc.Kind,
		Asleep: st.Asleep,
		Baby:   body.IsBaby,
	}, true
}
