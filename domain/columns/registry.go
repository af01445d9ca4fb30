// Package columns describes every displayable attribute of the examples table.
package columns

// Category labels used for grouped headers
const (
	CategoryIdentifiers = "Identifiers"
	CategoryMetrics     = "Metrics"
)

// Descriptor is the static metadata of one column
type Descriptor struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Filterable bool   `json:"filterable"`
}

// Registry is an ordered, immutable set of column descriptors
type Registry struct {
	columns []Descriptor
	index   map[string]int
}

// NewRegistry builds a registry; later duplicates of a key are ignored
func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{index: make(map[string]int, len(descriptors))}
	for _, d := range descriptors {
		if _, dup := r.index[d.Key]; dup {
			continue
		}
		r.index[d.Key] = len(r.columns)
		r.columns = append(r.columns, d)
	}
	return r
}

// Default returns the examples table columns
func Default() *Registry {
	return NewRegistry(
		Descriptor{Key: "name", Name: "Name", Category: CategoryIdentifiers},
		Descriptor{Key: "category", Name: "Category", Category: CategoryIdentifiers},
		Descriptor{Key: "status", Name: "Status", Category: CategoryIdentifiers},

		Descriptor{Key: "priority", Name: "Priority", Category: CategoryMetrics, Filterable: true},
		Descriptor{Key: "score", Name: "Score", Category: CategoryMetrics, Filterable: true},
		Descriptor{Key: "complexity", Name: "Complexity", Category: CategoryMetrics, Filterable: true},
		Descriptor{Key: "speed", Name: "Speed", Category: CategoryMetrics, Filterable: true},
		Descriptor{Key: "quality", Name: "Quality", Category: CategoryMetrics, Filterable: true},
		Descriptor{Key: "average_metrics", Name: "Avg Metrics", Category: CategoryMetrics, Filterable: true},
	)
}

// All returns the descriptors in registry order
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.columns))
	copy(out, r.columns)
	return out
}

// Keys returns every key in registry order
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.columns))
	for i, c := range r.columns {
		keys[i] = c.Key
	}
	return keys
}

// FilterableKeys returns the keys of numeric columns in registry order
func (r *Registry) FilterableKeys() []string {
	var keys []string
	for _, c := range r.columns {
		if c.Filterable {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// Lookup finds a descriptor by key
func (r *Registry) Lookup(key string) (Descriptor, bool) {
	i, ok := r.index[key]
	if !ok {
		return Descriptor{}, false
	}
	return r.columns[i], true
}

// Has reports whether key is registered
func (r *Registry) Has(key string) bool {
	_, ok := r.index[key]
	return ok
}

// IsFilterable reports whether key is a registered numeric column
func (r *Registry) IsFilterable(key string) bool {
	d, ok := r.Lookup(key)
	return ok && d.Filterable
}

// Position returns the registry index of key, or -1
func (r *Registry) Position(key string) int {
	if i, ok := r.index[key]; ok {
		return i
	}
	return -1
}

// Select returns the descriptors whose key satisfies keep, in registry order
func (r *Registry) Select(keep func(key string) bool) []Descriptor {
	var out []Descriptor
	for _, c := range r.columns {
		if keep(c.Key) {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of columns
func (r *Registry) Len() int {
	return len(r.columns)
}
