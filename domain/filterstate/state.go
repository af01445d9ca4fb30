// Package filterstate holds the column visibility partition and range filters of the examples
// table. State values are immutable: every reducer returns a new State and leaves its receiver alone.
package filterstate

import (
	"strings"

	"goldendash/domain/columns"
)

// Mode selects how a featured column filters
type Mode string

const (
	// ModeFilter hides rows outside the range
	ModeFilter Mode = "filter"
	// ModeElimination keeps rows and flags the failing cells
	ModeElimination Mode = "elimination"
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeFilter || m == ModeElimination
}

// Label is the slider button text
func (m Mode) Label() string {
	if m == ModeElimination {
		return "Elimination"
	}
	return "Filter"
}

// Handle names one end of a range slider
type Handle string

const (
	HandleMin Handle = "min"
	HandleMax Handle = "max"
)

// Tier is one of the three disjoint column sets
type Tier int

const (
	Hidden Tier = iota
	Shown
	Featured
)

func (t Tier) String() string {
	switch t {
	case Hidden:
		return "hidden"
	case Shown:
		return "shown"
	case Featured:
		return "featured"
	default:
		return "unknown"
	}
}

// ParseTier reads a tier name
func ParseTier(name string) (Tier, bool) {
	switch name {
	case "hidden":
		return Hidden, true
	case "shown":
		return Shown, true
	case "featured":
		return Featured, true
	}
	return 0, false
}

// Range is a percentile window on a featured column
type Range struct {
	Min  int  `json:"min"`
	Max  int  `json:"max"`
	Mode Mode `json:"mode"`
}

// DefaultRange is the range given to a newly featured column
func DefaultRange() Range {
	return Range{Min: 0, Max: 100, Mode: ModeFilter}
}

// Contains reports whether rank lies within [Min, Max]
func (r Range) Contains(rank int) bool {
	return rank >= r.Min && rank <= r.Max
}

// FeaturedColumn is a featured key with its range; featured columns keep the order they were added in
type FeaturedColumn struct {
	Key   string
	Range Range
}

// State is the persisted table configuration
type State struct {
	Hidden   []string
	Shown    []string
	Featured []FeaturedColumn
	Search   string
}

// Default shows every column, features none and has no search
func Default(reg *columns.Registry) State {
	return State{
		Hidden:   []string{},
		Shown:    reg.Keys(),
		Featured: []FeaturedColumn{},
	}
}

// Clone deep-copies the state
func (s State) Clone() State {
	out := State{
		Hidden:   make([]string, len(s.Hidden)),
		Shown:    make([]string, len(s.Shown)),
		Featured: make([]FeaturedColumn, len(s.Featured)),
		Search:   s.Search,
	}
	copy(out.Hidden, s.Hidden)
	copy(out.Shown, s.Shown)
	copy(out.Featured, s.Featured)
	return out
}

// TierOf returns the set key belongs to
func (s State) TierOf(key string) (Tier, bool) {
	if indexOf(s.Hidden, key) >= 0 {
		return Hidden, true
	}
	if indexOf(s.Shown, key) >= 0 {
		return Shown, true
	}
	if s.featuredIndex(key) >= 0 {
		return Featured, true
	}
	return 0, false
}

// Range returns the range of a featured key
func (s State) Range(key string) (Range, bool) {
	if i := s.featuredIndex(key); i >= 0 {
		return s.Featured[i].Range, true
	}
	return Range{}, false
}

// FeaturedKeys lists featured keys in the order they were featured
func (s State) FeaturedKeys() []string {
	keys := make([]string, len(s.Featured))
	for i, f := range s.Featured {
		keys[i] = f.Key
	}
	return keys
}

// IsVisible reports whether key is shown or featured
func (s State) IsVisible(key string) bool {
	tier, ok := s.TierOf(key)
	return ok && tier != Hidden
}

// IsIdle reports whether evaluation has nothing to do
func (s State) IsIdle() bool {
	return len(s.Featured) == 0 && s.SearchTerm() == ""
}

// Move transfers key from one set to another. Requests that do not match the current state, or that
// would feature a non-filterable column, return the state unchanged.
func (s State) Move(reg *columns.Registry, key string, from, to Tier) State {
	if !reg.Has(key) || from == to {
		return s
	}
	if current, ok := s.TierOf(key); !ok || current != from {
		return s
	}
	if to == Featured && !reg.IsFilterable(key) {
		return s
	}

	next := s.Clone()
	next.remove(key)
	switch to {
	case Hidden:
		next.Hidden = append(next.Hidden, key)
	case Shown:
		next.Shown = append(next.Shown, key)
	case Featured:
		next.Featured = append(next.Featured, FeaturedColumn{Key: key, Range: DefaultRange()})
	}
	return next
}

// SetRange moves one handle of a featured range. The value is clamped to [0, 100]; a handle dragged
// past the other one pushes it along so that Min <= Max always holds.
func (s State) SetRange(key string, handle Handle, value int) State {
	i := s.featuredIndex(key)
	if i < 0 {
		return s
	}
	value = clamp(value)

	next := s.Clone()
	r := &next.Featured[i].Range
	switch handle {
	case HandleMin:
		r.Min = value
		if value > r.Max {
			r.Max = value
		}
	case HandleMax:
		r.Max = value
		if value < r.Min {
			r.Min = value
		}
	default:
		return s
	}
	return next
}

// ToggleMode flips a featured column between filter and elimination
func (s State) ToggleMode(key string) State {
	i := s.featuredIndex(key)
	if i < 0 {
		return s
	}

	next := s.Clone()
	if next.Featured[i].Range.Mode == ModeElimination {
		next.Featured[i].Range.Mode = ModeFilter
	} else {
		next.Featured[i].Range.Mode = ModeElimination
	}
	return next
}

// ClearFeatured returns every featured column to the shown set
func (s State) ClearFeatured() State {
	next := s.Clone()
	for _, f := range next.Featured {
		if indexOf(next.Shown, f.Key) < 0 {
			next.Shown = append(next.Shown, f.Key)
		}
	}
	next.Featured = []FeaturedColumn{}
	return next
}

// SetSearch stores the search term as typed
func (s State) SetSearch(term string) State {
	next := s.Clone()
	next.Search = term
	return next
}

// SearchTerm is the search term rows are matched against: lowercased and trimmed
func (s State) SearchTerm() string {
	return strings.ToLower(strings.TrimSpace(s.Search))
}

// Normalize repairs a decoded state against the registry: unknown, duplicate and misplaced keys are
// dropped or moved, ranges are clamped and ordered, a missing mode becomes filter, and registry keys
// found in no set are appended to shown. It is the identity on any state built by the reducers.
func (s State) Normalize(reg *columns.Registry) State {
	seen := make(map[string]bool, reg.Len())
	next := State{
		Hidden:   []string{},
		Shown:    []string{},
		Featured: []FeaturedColumn{},
		Search:   s.Search,
	}

	keep := func(key string) bool {
		if !reg.Has(key) || seen[key] {
			return false
		}
		seen[key] = true
		return true
	}

	for _, key := range s.Hidden {
		if keep(key) {
			next.Hidden = append(next.Hidden, key)
		}
	}
	for _, key := range s.Shown {
		if keep(key) {
			next.Shown = append(next.Shown, key)
		}
	}
	for _, f := range s.Featured {
		if !keep(f.Key) {
			continue
		}
		if !reg.IsFilterable(f.Key) {
			next.Shown = append(next.Shown, f.Key)
			continue
		}
		r := f.Range
		if !r.Mode.Valid() {
			r.Mode = ModeFilter
		}
		r.Min, r.Max = clamp(r.Min), clamp(r.Max)
		if r.Min > r.Max {
			r.Max = r.Min
		}
		next.Featured = append(next.Featured, FeaturedColumn{Key: f.Key, Range: r})
	}
	for _, key := range reg.Keys() {
		if !seen[key] {
			next.Shown = append(next.Shown, key)
		}
	}
	return next
}

// VisibleColumns returns shown and featured descriptors in registry order
func VisibleColumns(reg *columns.Registry, s State) []columns.Descriptor {
	return reg.Select(s.IsVisible)
}

func (s *State) remove(key string) {
	if i := indexOf(s.Hidden, key); i >= 0 {
		s.Hidden = append(s.Hidden[:i], s.Hidden[i+1:]...)
	}
	if i := indexOf(s.Shown, key); i >= 0 {
		s.Shown = append(s.Shown[:i], s.Shown[i+1:]...)
	}
	if i := s.featuredIndex(key); i >= 0 {
		s.Featured = append(s.Featured[:i], s.Featured[i+1:]...)
	}
}

func (s State) featuredIndex(key string) int {
	for i, f := range s.Featured {
		if f.Key == key {
			return i
		}
	}
	return -1
}

func indexOf(list []string, key string) int {
	for i, k := range list {
		if k == key {
			return i
		}
	}
	return -1
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
