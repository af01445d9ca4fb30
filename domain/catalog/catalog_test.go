package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func stringPtr(v string) *string  { return &v }

func TestDecodeDataset(t *testing.T) {
	raw := []byte(`[
		{"id": 1, "name": "Retry", "score": "85.5", "speed": 4, "category": null},
		{"id": "abc", "name": "Outbox", "score": 12}
	]`)

	records, err := DecodeDataset(raw)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "abc", records[1].ID)

	score, ok := records[0].Number("score")
	require.True(t, ok)
	assert.Equal(t, 85.5, score)

	_, ok = records[0].Number("category")
	assert.False(t, ok)

	_, ok = records[0].Label("category")
	assert.False(t, ok)

	name, ok := records[1].Label("name")
	require.True(t, ok)
	assert.Equal(t, "Outbox", name)
}

func TestDecodeDatasetErrors(t *testing.T) {
	_, err := DecodeDataset(nil)
	assert.Error(t, err)

	_, err = DecodeDataset([]byte(`{"id":1}`))
	assert.Error(t, err)

	_, err = DecodeDataset([]byte(`[1, 2]`))
	assert.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{nil, 0, false},
		{3.5, 3.5, true},
		{7, 7, true},
		{" 12.25 ", 12.25, true},
		{"abc", 0, false},
		{"NaN", 0, false},
		{json.Number("4"), 4, true},
		{true, 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseNumber(tc.in)
		assert.Equalf(t, tc.ok, ok, "input %v", tc.in)
		assert.Equalf(t, tc.want, got, "input %v", tc.in)
	}
}

func TestRecordJSONRoundTrip(t *testing.T) {
	record := NewRecord("9", map[string]any{"name": "Saga", "score": 40.0})

	raw, err := json.Marshal(record)
	require.NoError(t, err)

	var back Record
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, record, back)
}

func TestAverageMetrics(t *testing.T) {
	e := Example{Complexity: intPtr(3), Speed: intPtr(4), Quality: intPtr(4)}
	require.NotNil(t, e.AverageMetrics())
	assert.Equal(t, 3.7, *e.AverageMetrics())

	e = Example{Speed: intPtr(2)}
	assert.Equal(t, 2.0, *e.AverageMetrics())

	assert.Nil(t, Example{}.AverageMetrics())
}

func TestValidate(t *testing.T) {
	valid := Example{Name: "Retry", Status: StatusNew, Category: stringPtr("ui_pattern"), Score: floatPtr(100), Priority: intPtr(5)}
	assert.Empty(t, valid.Validate())

	invalid := Example{
		Status:     "paused",
		Category:   stringPtr("mobile_pattern"),
		Score:      floatPtr(101),
		Complexity: intPtr(0),
	}
	assert.ElementsMatch(t, []string{
		"Name can't be blank",
		"Status is not included in the list",
		"Category is not included in the list",
		"Score must be between 0 and 100",
		"Complexity must be between 1 and 5",
	}, invalid.Validate())
}

func TestExampleRecord(t *testing.T) {
	e := Example{ID: 4, Name: "Circuit breaker", Status: StatusCompleted, Score: floatPtr(88), Speed: intPtr(5)}
	record := e.Record()

	assert.Equal(t, "4", record.ID)
	v, ok := record.Number("speed")
	require.True(t, ok)
	assert.Equal(t, 5.0, v)

	avg, ok := record.Number("average_metrics")
	require.True(t, ok)
	assert.Equal(t, 5.0, avg)

	_, ok = record.Number("priority")
	assert.False(t, ok)
}

func TestMergeKeepsUnsetFields(t *testing.T) {
	base := Example{ID: 9, Name: "Saga", Status: StatusNew, Score: floatPtr(40), Speed: intPtr(2)}
	merged := base.Merge(Example{Name: "ignored", Score: floatPtr(75), Quality: intPtr(4)})

	assert.Equal(t, int64(9), merged.ID)
	assert.Equal(t, "Saga", merged.Name)
	assert.Equal(t, StatusNew, merged.Status)
	assert.Equal(t, 75.0, *merged.Score)
	assert.Equal(t, 2, *merged.Speed)
	assert.Equal(t, 4, *merged.Quality)
	assert.Equal(t, 40.0, *base.Score)
}
