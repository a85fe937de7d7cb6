// Package selection implements the storefront variant selector: a pure,
// synchronous reducer that narrows four ordered attribute dimensions to the
// combinations that actually exist in a product's available pool.
//
// Every state change triggers a full recomputation of all candidate sets
// from the pool; no incremental cached state is kept, so the engine cannot
// go stale when the pool or an upstream selection changes.
package selection

import (
	"sort"

	"github.com/google/uuid"
)

// Dimension is one selectable variant attribute.
type Dimension string

const (
	DimensionBrand    Dimension = "brand"
	DimensionSize     Dimension = "size"
	DimensionModel    Dimension = "model"
	DimensionMaterial Dimension = "material"
)

// Order is the fixed narrowing order of the dimensions.
var Order = []Dimension{DimensionBrand, DimensionSize, DimensionModel, DimensionMaterial}

// PoolVariant is one member of the available pool (a live, in-stock
// variant) projected onto the selectable dimensions. Values holds only the
// dimensions the variant has a non-empty value for. Price is the effective
// unit price precomputed by the caller.
type PoolVariant struct {
	VariantID uuid.UUID            `json:"variantId"`
	Values    map[Dimension]string `json:"values"`
	Price     int64                `json:"price"`
}

// State is the shopper's current selection: at most one value per
// dimension. It is a plain serializable value; the reducer never mutates
// its input.
type State struct {
	Brand    *string `json:"brand,omitempty"`
	Size     *string `json:"size,omitempty"`
	Model    *string `json:"model,omitempty"`
	Material *string `json:"material,omitempty"`
}

// Value returns the selected value for a dimension, or nil.
func (s State) Value(d Dimension) *string {
	switch d {
	case DimensionBrand:
		return s.Brand
	case DimensionSize:
		return s.Size
	case DimensionModel:
		return s.Model
	case DimensionMaterial:
		return s.Material
	}
	return nil
}

func (s State) withValue(d Dimension, v *string) State {
	switch d {
	case DimensionBrand:
		s.Brand = v
	case DimensionSize:
		s.Size = v
	case DimensionModel:
		s.Model = v
	case DimensionMaterial:
		s.Material = v
	}
	return s
}

// EventType distinguishes selector events.
type EventType string

const (
	EventSelect EventType = "select"
	EventClear  EventType = "clear"
)

// Event is one selector interaction.
type Event struct {
	Type      EventType `json:"type"`
	Dimension Dimension `json:"dimension"`
	Value     string    `json:"value,omitempty"`
}

// Level describes one offered dimension after reduction.
type Level struct {
	Dimension    Dimension `json:"dimension"`
	Candidates   []string  `json:"candidates"`
	Selected     *string   `json:"selected,omitempty"`
	AutoSelected bool      `json:"autoSelected,omitempty"`
}

// PriceRange is the effective price span over the pool subset consistent
// with the current selection. Min equals Max when a variant is resolved.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Result is the full reducer output for one state against one pool.
type Result struct {
	State      State        `json:"state"`
	Levels     []Level      `json:"levels"`
	Resolved   *PoolVariant `json:"resolvedVariant,omitempty"`
	PriceRange PriceRange   `json:"priceRange"`
}

// Apply handles one selector event and reduces the resulting state.
// Selecting a value clears every downstream slot before reduction, so a
// brand change always re-derives size, model and material from scratch.
func Apply(pool []PoolVariant, state State, event Event) Result {
	switch event.Type {
	case EventSelect:
		v := event.Value
		state = state.withValue(event.Dimension, &v)
		for _, d := range downstreamOf(event.Dimension) {
			state = state.withValue(d, nil)
		}
	case EventClear:
		state = state.withValue(event.Dimension, nil)
	}
	return Reduce(pool, state)
}

// Reduce recomputes every candidate set for the given state, drops
// selections that are no longer valid, auto-selects singleton candidate
// sets in order, and resolves the variant when the selection is complete.
func Reduce(pool []PoolVariant, state State) Result {
	dims := offeredDimensions(pool)

	levels := make([]Level, 0, len(dims))
	validated := State{}
	for _, d := range dims {
		candidates := candidateValues(pool, validated, d)

		selected := state.Value(d)
		if selected != nil && !contains(candidates, *selected) {
			// Invalidated by an upstream change; clearing cascades downward
			// implicitly since downstream candidates are computed against
			// validated selections only.
			selected = nil
		}

		autoSelected := false
		if selected == nil && len(candidates) == 1 {
			selected = &candidates[0]
			autoSelected = true
		}

		if selected != nil {
			validated = validated.withValue(d, selected)
		}

		levels = append(levels, Level{
			Dimension:    d,
			Candidates:   candidates,
			Selected:     selected,
			AutoSelected: autoSelected,
		})
	}

	result := Result{State: validated, Levels: levels}

	subset := matching(pool, validated)
	if len(pool) == 1 {
		// A single-member pool resolves immediately regardless of how many
		// dimensions the product nominally has.
		v := pool[0]
		result.Resolved = &v
	} else if allSelected(levels) && len(subset) == 1 {
		v := subset[0]
		result.Resolved = &v
	}

	if result.Resolved != nil {
		result.PriceRange = PriceRange{Min: result.Resolved.Price, Max: result.Resolved.Price}
	} else {
		result.PriceRange = priceRangeOf(subset)
	}

	return result
}

// offeredDimensions returns, in narrowing order, the dimensions that have a
// non-empty value somewhere in the pool. A dimension absent from the whole
// pool is not offered as a level at all.
func offeredDimensions(pool []PoolVariant) []Dimension {
	dims := make([]Dimension, 0, len(Order))
	for _, d := range Order {
		for _, v := range pool {
			if _, ok := v.Values[d]; ok {
				dims = append(dims, d)
				break
			}
		}
	}
	return dims
}

// candidateValues returns the distinct values of dimension d among pool
// members that match every upstream selection, sorted for determinism.
func candidateValues(pool []PoolVariant, upstream State, d Dimension) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, v := range matching(pool, upstream) {
		value, ok := v.Values[d]
		if !ok {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}

// matching returns the pool subset consistent with every set dimension.
func matching(pool []PoolVariant, state State) []PoolVariant {
	subset := make([]PoolVariant, 0, len(pool))
	for _, v := range pool {
		if matches(v, state) {
			subset = append(subset, v)
		}
	}
	return subset
}

func matches(v PoolVariant, state State) bool {
	for _, d := range Order {
		selected := state.Value(d)
		if selected == nil {
			continue
		}
		if v.Values[d] != *selected {
			return false
		}
	}
	return true
}

func allSelected(levels []Level) bool {
	for _, l := range levels {
		if l.Selected == nil {
			return false
		}
	}
	return len(levels) > 0
}

func priceRangeOf(subset []PoolVariant) PriceRange {
	if len(subset) == 0 {
		return PriceRange{}
	}
	r := PriceRange{Min: subset[0].Price, Max: subset[0].Price}
	for _, v := range subset[1:] {
		if v.Price < r.Min {
			r.Min = v.Price
		}
		if v.Price > r.Max {
			r.Max = v.Price
		}
	}
	return r
}

func downstreamOf(d Dimension) []Dimension {
	for i, dim := range Order {
		if dim == d {
			return Order[i+1:]
		}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
