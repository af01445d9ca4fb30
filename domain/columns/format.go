package columns

import (
	"fmt"
	"sort"
	"strings"

	"goldendash/domain/catalog"
)

// Missing is the placeholder text of an empty cell
const Missing = "-"

// Badge is a coloured label rendered for known enum values
type Badge struct {
	Label string
	Class string
}

var categoryBadges = map[string]Badge{
	"ui_pattern":         {Label: "UI", Class: "bg-purple-100 text-purple-700"},
	"backend_pattern":    {Label: "Backend", Class: "bg-green-100 text-green-700"},
	"data_pattern":       {Label: "Data", Class: "bg-blue-100 text-blue-700"},
	"deployment_pattern": {Label: "Deploy", Class: "bg-orange-100 text-orange-700"},
}

var statusBadges = map[string]Badge{
	"new":         {Label: "New", Class: "bg-blue-100 text-blue-700"},
	"in_progress": {Label: "In Progress", Class: "bg-yellow-100 text-yellow-700"},
	"completed":   {Label: "Completed", Class: "bg-green-100 text-green-700"},
	"archived":    {Label: "Archived", Class: "bg-gray-100 text-gray-700"},
}

// Cell is the formatted content of one table cell
type Cell struct {
	Text    string
	Badge   *Badge
	Muted   bool
	Numeric bool
}

// Format renders the value of column d for record
func Format(d Descriptor, record catalog.Record) Cell {
	if !d.Filterable {
		label, ok := record.Label(d.Key)
		if !ok {
			return Cell{Text: Missing, Muted: true}
		}
		if badge, ok := BadgeFor(d.Key, label); ok {
			return Cell{Text: badge.Label, Badge: &badge}
		}
		return Cell{Text: label}
	}

	raw := record.Value(d.Key)
	if raw == nil || raw == "" {
		return Cell{Text: Missing, Muted: true, Numeric: true}
	}
	if n, ok := raw.(float64); ok {
		return Cell{Text: fmt.Sprintf("%.1f", n), Numeric: true}
	}
	// non-number payloads render verbatim, as the browser would
	return Cell{Text: fmt.Sprint(raw), Numeric: true}
}

// Text is the rendered text of the cell, used for search and sort
func Text(d Descriptor, record catalog.Record) string {
	return Format(d, record).Text
}

// Number parses the rendered text of the cell, so two values that display alike compare alike
func Number(d Descriptor, record catalog.Record) (float64, bool) {
	return catalog.ParseNumber(Text(d, record))
}

// Sample collects the displayed values of column d across records, sorted ascending
func Sample(d Descriptor, records []catalog.Record) []float64 {
	values := make([]float64, 0, len(records))
	for _, record := range records {
		if v, ok := Number(d, record); ok {
			values = append(values, v)
		}
	}
	sort.Float64s(values)
	return values
}

// RowText joins the rendered text of the given columns, lowercased and space separated
func RowText(cols []Descriptor, record catalog.Record) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = strings.ToLower(Text(c, record))
	}
	return strings.Join(parts, " ")
}

// BadgeFor looks up the badge of an enum label column
func BadgeFor(key, value string) (Badge, bool) {
	var badges map[string]Badge
	switch key {
	case "category":
		badges = categoryBadges
	case "status":
		badges = statusBadges
	default:
		return Badge{}, false
	}
	b, ok := badges[value]
	return b, ok
}
