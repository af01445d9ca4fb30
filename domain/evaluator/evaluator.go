// Package evaluator decides which rows of the examples table are visible and which cells are
// highlighted, given the current filter state.
package evaluator

import (
	"fmt"
	"strings"

	"goldendash/domain/catalog"
	"goldendash/domain/columns"
	"goldendash/domain/filterstate"
	"goldendash/domain/percentile"
)

// Cell addresses one cell by row position and column key
type Cell struct {
	Row int
	Key string
}

// Result is the outcome of one evaluation pass
type Result struct {
	Visible      []bool
	Eliminated   []bool
	Failing      map[Cell]bool
	VisibleCount int
	Total        int
}

// IsFailing reports whether the cell is outside an elimination range
func (r Result) IsFailing(row int, key string) bool {
	return r.Failing[Cell{Row: row, Key: key}]
}

// Summary is the result count line shown above the table
func (r Result) Summary() string {
	return fmt.Sprintf("Showing %d of %d examples", r.VisibleCount, r.Total)
}

type featuredRange struct {
	column columns.Descriptor
	rng    filterstate.Range
	sample []float64
}

func descriptorFor(visible []columns.Descriptor, key string) columns.Descriptor {
	for _, d := range visible {
		if d.Key == key {
			return d
		}
	}
	return columns.Descriptor{Key: key, Filterable: true}
}

// Evaluate runs search, filter and elimination over every record. visible is the ordered set of
// rendered columns; its text is what the search term is matched against. Ranks are computed
// against the full dataset on every call, from the values as they are displayed.
func Evaluate(records []catalog.Record, st filterstate.State, visible []columns.Descriptor) Result {
	res := Result{
		Visible:    make([]bool, len(records)),
		Eliminated: make([]bool, len(records)),
		Failing:    map[Cell]bool{},
		Total:      len(records),
	}

	if st.IsIdle() {
		for i := range res.Visible {
			res.Visible[i] = true
		}
		res.VisibleCount = len(records)
		return res
	}

	term := st.SearchTerm()
	var filters, eliminations []featuredRange
	for _, f := range st.Featured {
		d := descriptorFor(visible, f.Key)
		fr := featuredRange{column: d, rng: f.Range, sample: columns.Sample(d, records)}
		if f.Range.Mode == filterstate.ModeElimination {
			eliminations = append(eliminations, fr)
		} else {
			filters = append(filters, fr)
		}
	}

	for i, record := range records {
		if term != "" && !strings.Contains(columns.RowText(visible, record), term) {
			continue
		}
		if !passesFilters(record, filters) {
			continue
		}

		res.Visible[i] = true
		res.VisibleCount++

		for _, e := range eliminations {
			v, ok := columns.Number(e.column, record)
			if !ok {
				continue
			}
			if !e.rng.Contains(percentile.Rank(v, e.sample)) {
				res.Failing[Cell{Row: i, Key: e.column.Key}] = true
				res.Eliminated[i] = true
			}
		}
	}
	return res
}

func passesFilters(record catalog.Record, filters []featuredRange) bool {
	for _, f := range filters {
		v, ok := columns.Number(f.column, record)
		if !ok {
			return false
		}
		if !f.rng.Contains(percentile.Rank(v, f.sample)) {
			return false
		}
	}
	return true
}
