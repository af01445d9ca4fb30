package catalog

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Example statuses
const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusArchived   = "archived"
)

// Statuses lists every valid status
var Statuses = []string{StatusNew, StatusInProgress, StatusCompleted, StatusArchived}

// Categories lists every valid category
var Categories = []string{"ui_pattern", "backend_pattern", "data_pattern", "deployment_pattern"}

// Example is a catalogued engineering pattern
type Example struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Category    *string   `db:"category" json:"category"`
	Status      string    `db:"status" json:"status"`
	Description *string   `db:"description" json:"description"`
	Priority    *int      `db:"priority" json:"priority"`
	Score       *float64  `db:"score" json:"score"`
	Complexity  *int      `db:"complexity" json:"complexity"`
	Speed       *int      `db:"speed" json:"speed"`
	Quality     *int      `db:"quality" json:"quality"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// AverageMetrics is the mean of the present complexity, speed and quality ratings,
// rounded to one decimal. Nil when none are set.
func (e Example) AverageMetrics() *float64 {
	var sum float64
	var n int
	for _, m := range []*int{e.Complexity, e.Speed, e.Quality} {
		if m != nil {
			sum += float64(*m)
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := math.Round(sum/float64(n)*10) / 10
	return &avg
}

// IsCompleted reports whether the example is completed
func (e Example) IsCompleted() bool {
	return e.Status == StatusCompleted
}

// Validate returns one message per failed rule; empty when valid
func (e Example) Validate() []string {
	var problems []string

	if e.Name == "" {
		problems = append(problems, "Name can't be blank")
	}
	if !ValidStatus(e.Status) {
		problems = append(problems, "Status is not included in the list")
	}
	if e.Category != nil && !contains(Categories, *e.Category) {
		problems = append(problems, "Category is not included in the list")
	}
	if e.Score != nil && (*e.Score < 0 || *e.Score > 100) {
		problems = append(problems, "Score must be between 0 and 100")
	}

	ratings := []struct {
		label string
		value *int
	}{
		{"Priority", e.Priority},
		{"Complexity", e.Complexity},
		{"Speed", e.Speed},
		{"Quality", e.Quality},
	}
	for _, r := range ratings {
		if r.value != nil && (*r.value < 1 || *r.value > 5) {
			problems = append(problems, fmt.Sprintf("%s must be between 1 and 5", r.label))
		}
	}

	return problems
}

// ValidStatus reports whether status is a known status
func ValidStatus(status string) bool {
	return contains(Statuses, status)
}

// Record converts the example into the table row shape
func (e Example) Record() Record {
	fields := map[string]any{
		"name":            e.Name,
		"category":        optional(e.Category),
		"status":          e.Status,
		"description":     optional(e.Description),
		"priority":        optionalInt(e.Priority),
		"score":           optional(e.Score),
		"complexity":      optionalInt(e.Complexity),
		"speed":           optionalInt(e.Speed),
		"quality":         optionalInt(e.Quality),
		"average_metrics": optional(e.AverageMetrics()),
	}
	return NewRecord(strconv.FormatInt(e.ID, 10), fields)
}

// Records converts a slice of examples
func Records(examples []Example) []Record {
	records := make([]Record, len(examples))
	for i, e := range examples {
		records[i] = e.Record()
	}
	return records
}

func optional[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func optionalInt(v *int) any {
	if v == nil {
		return nil
	}
	return float64(*v)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// Merge applies the non-empty fields of patch on top of e. Name, ID and timestamps are kept.
func (e Example) Merge(patch Example) Example {
	if patch.Status != "" {
		e.Status = patch.Status
	}
	if patch.Category != nil {
		e.Category = patch.Category
	}
	if patch.Description != nil {
		e.Description = patch.Description
	}
	if patch.Priority != nil {
		e.Priority = patch.Priority
	}
	if patch.Score != nil {
		e.Score = patch.Score
	}
	if patch.Complexity != nil {
		e.Complexity = patch.Complexity
	}
	if patch.Speed != nil {
		e.Speed = patch.Speed
	}
	if patch.Quality != nil {
		e.Quality = patch.Quality
	}
	return e
}
