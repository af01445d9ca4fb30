// Package table is the render model of the examples table: grouped headers, formatted cells,
// top-performer highlighting, filter marks and single-column sorting. Painting it is left to templates.
package table

import (
	"sort"

	"goldendash/domain/catalog"
	"goldendash/domain/columns"
	"goldendash/domain/evaluator"
	"goldendash/domain/percentile"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort directions
const (
	Ascending  = "asc"
	Descending = "desc"
)

// Header is one <th>. Column is the index of the sortable column it heads, or -1 for a group cell.
type Header struct {
	Label     string
	Column    int
	Rowspan   int
	Colspan   int
	Indicator string
}

// Group reports whether the header spans a category rather than a column
func (h Header) Group() bool {
	return h.Column < 0
}

// Cell is one formatted <td>
type Cell struct {
	columns.Cell
	Key     string
	Class   string
	Failing bool
}

// Row is one record. Index is the record's position in the dataset.
type Row struct {
	Index      int
	ID         string
	Cells      []Cell
	Hidden     bool
	Eliminated bool
}

// SortState is the active single-column sort; Column is -1 when unsorted
type SortState struct {
	Column    int
	Direction string
}

// Table is built for one column set and reused until the set changes
type Table struct {
	columns []columns.Descriptor
	headers [][]Header
	rows    []Row
	sort    SortState
}

// Build lays out headers and rows for the visible columns in dataset order
func Build(records []catalog.Record, cols []columns.Descriptor) *Table {
	t := &Table{
		columns: append([]columns.Descriptor(nil), cols...),
		headers: buildHeaders(cols),
		rows:    make([]Row, len(records)),
		sort:    SortState{Column: -1},
	}

	samples := make(map[string][]float64)
	for _, c := range cols {
		if c.Filterable {
			samples[c.Key] = columns.Sample(c, records)
		}
	}

	for i, record := range records {
		row := Row{Index: i, ID: record.ID, Cells: make([]Cell, len(cols))}
		for j, c := range cols {
			cell := Cell{Cell: columns.Format(c, record), Key: c.Key}
			if c.Filterable {
				if v, ok := columns.Number(c, record); ok {
					cell.Class = TopPerformerClass(percentile.Rank(v, samples[c.Key]))
				}
			}
			row.Cells[j] = cell
		}
		t.rows[i] = row
	}
	return t
}

// TopPerformerClass highlights cells ranked in the top quarter of their column
func TopPerformerClass(rank int) string {
	switch {
	case rank >= 95:
		return "bg-green-100 font-bold"
	case rank >= 90:
		return "bg-green-50"
	case rank >= 75:
		return "bg-yellow-50"
	default:
		return ""
	}
}

func buildHeaders(cols []columns.Descriptor) [][]Header {
	type group struct {
		category string
		columns  []int
		labels   bool
	}
	var groups []*group
	byCategory := map[string]*group{}
	for i, c := range cols {
		g, ok := byCategory[c.Category]
		if !ok {
			g = &group{category: c.Category, labels: true}
			byCategory[c.Category] = g
			groups = append(groups, g)
		}
		g.columns = append(g.columns, i)
		if c.Filterable {
			g.labels = false
		}
	}

	if len(groups) <= 1 {
		row := make([]Header, len(cols))
		for i, c := range cols {
			row[i] = Header{Label: c.Name, Column: i, Rowspan: 1, Colspan: 1}
		}
		return [][]Header{row}
	}

	var top, bottom []Header
	for _, g := range groups {
		if g.labels {
			for _, i := range g.columns {
				top = append(top, Header{Label: cols[i].Name, Column: i, Rowspan: 2, Colspan: 1})
			}
			continue
		}
		top = append(top, Header{Label: g.category, Column: -1, Rowspan: 1, Colspan: len(g.columns)})
		for _, i := range g.columns {
			bottom = append(bottom, Header{Label: cols[i].Name, Column: i, Rowspan: 1, Colspan: 1})
		}
	}
	return [][]Header{top, bottom}
}

// Columns returns the column set the table was built for
func (t *Table) Columns() []columns.Descriptor {
	return t.columns
}

// Headers returns the header rows with the sort indicator applied
func (t *Table) Headers() [][]Header {
	out := make([][]Header, len(t.headers))
	for i, row := range t.headers {
		out[i] = make([]Header, len(row))
		for j, h := range row {
			if !h.Group() && h.Column == t.sort.Column {
				h.Indicator = indicator(t.sort.Direction)
			}
			out[i][j] = h
		}
	}
	return out
}

// Rows returns the rows in display order
func (t *Table) Rows() []Row {
	return t.rows
}

// Sort returns the active sort
func (t *Table) Sort() SortState {
	return t.sort
}

// Apply marks hidden rows, eliminated rows and failing cells from an evaluation result
func (t *Table) Apply(res evaluator.Result) {
	for i := range t.rows {
		row := &t.rows[i]
		if row.Index >= len(res.Visible) {
			continue
		}
		row.Hidden = !res.Visible[row.Index]
		row.Eliminated = res.Eliminated[row.Index]
		for j := range row.Cells {
			row.Cells[j].Failing = res.IsFailing(row.Index, row.Cells[j].Key)
		}
	}
}

// SortBy toggles the sort on one column, starting ascending, and reorders the visible rows.
// Hidden rows keep their relative order after the visible ones.
func (t *Table) SortBy(column int) {
	if column < 0 || column >= len(t.columns) {
		return
	}
	direction := Ascending
	if t.sort.Column == column && t.sort.Direction == Ascending {
		direction = Descending
	}
	t.sort = SortState{Column: column, Direction: direction}

	visible := make([]Row, 0, len(t.rows))
	hidden := make([]Row, 0)
	for _, row := range t.rows {
		if row.Hidden {
			hidden = append(hidden, row)
		} else {
			visible = append(visible, row)
		}
	}

	collator := collate.New(language.English)
	sort.SliceStable(visible, func(i, j int) bool {
		a, b := visible[i].Cells[column].Text, visible[j].Cells[column].Text
		if direction == Descending {
			a, b = b, a
		}
		return less(collator, a, b)
	})

	t.rows = append(visible, hidden...)
}

func less(collator *collate.Collator, a, b string) bool {
	an, aok := catalog.ParseNumber(a)
	bn, bok := catalog.ParseNumber(b)
	if aok && bok {
		return an < bn
	}
	return collator.CompareString(a, b) < 0
}

func indicator(direction string) string {
	if direction == Descending {
		return "▼"
	}
	return "▲"
}
