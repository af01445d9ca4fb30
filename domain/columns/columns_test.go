package columns

import (
	"testing"

	"goldendash/domain/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()

	assert.Equal(t, 9, reg.Len())
	assert.Equal(t, []string{"priority", "score", "complexity", "speed", "quality", "average_metrics"}, reg.FilterableKeys())
	assert.Equal(t, "name", reg.Keys()[0])

	d, ok := reg.Lookup("average_metrics")
	require.True(t, ok)
	assert.Equal(t, "Avg Metrics", d.Name)
	assert.Equal(t, CategoryMetrics, d.Category)

	assert.False(t, reg.IsFilterable("status"))
	assert.False(t, reg.IsFilterable("unknown"))
	assert.Equal(t, -1, reg.Position("unknown"))
	assert.Equal(t, 4, reg.Position("score"))
}

func TestNewRegistryIgnoresDuplicates(t *testing.T) {
	reg := NewRegistry(
		Descriptor{Key: "a", Name: "A"},
		Descriptor{Key: "a", Name: "Again"},
		Descriptor{Key: "b", Name: "B"},
	)

	assert.Equal(t, []string{"a", "b"}, reg.Keys())
	d, _ := reg.Lookup("a")
	assert.Equal(t, "A", d.Name)
}

func TestFormat(t *testing.T) {
	reg := Default()
	record := catalog.NewRecord("1", map[string]any{
		"name":     "Retry with jitter",
		"category": "ui_pattern",
		"status":   "paused",
		"score":    85.0,
		"speed":    "fast",
	})

	col := func(key string) Descriptor {
		d, _ := reg.Lookup(key)
		return d
	}

	name := Format(col("name"), record)
	assert.Equal(t, "Retry with jitter", name.Text)
	assert.Nil(t, name.Badge)

	category := Format(col("category"), record)
	require.NotNil(t, category.Badge)
	assert.Equal(t, "UI", category.Text)

	status := Format(col("status"), record)
	assert.Equal(t, "paused", status.Text, "unknown enum values render as-is")

	score := Format(col("score"), record)
	assert.Equal(t, "85.0", score.Text)
	assert.True(t, score.Numeric)

	quality := Format(col("quality"), record)
	assert.Equal(t, Missing, quality.Text)
	assert.True(t, quality.Muted)

	assert.Equal(t, "fast", Text(col("speed"), record))
}

func TestRowText(t *testing.T) {
	reg := Default()
	record := catalog.NewRecord("1", map[string]any{"name": "Banana", "status": "in_progress", "score": 90.0})

	cols := reg.Select(func(key string) bool { return key == "name" || key == "status" || key == "score" })
	assert.Equal(t, "banana in progress 90.0", RowText(cols, record))
}

func TestSampleReadsDisplayedValues(t *testing.T) {
	score, ok := Default().Lookup("score")
	require.True(t, ok)

	records := []catalog.Record{
		catalog.NewRecord("1", map[string]any{"score": 85.34}),
		catalog.NewRecord("2", map[string]any{"score": "12.5"}),
		catalog.NewRecord("3", map[string]any{"score": "n/a"}),
		catalog.NewRecord("4", map[string]any{}),
	}

	v, ok := Number(score, records[0])
	require.True(t, ok)
	assert.Equal(t, 85.3, v)
	assert.Equal(t, []float64{12.5, 85.3}, Sample(score, records))
}
