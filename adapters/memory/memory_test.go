package memory

import (
	"context"
	"testing"
	"time"

	"goldendash/domain/catalog"
	"goldendash/domain/quality"
	"goldendash/internal/errors"
	"goldendash/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string   { return &v }
func fltPtr(v float64) *float64 { return &v }

func TestStateStorage(t *testing.T) {
	ctx := context.Background()
	s := NewStateStorage()
	session := uuid.New()

	_, ok, err := s.GetState(ctx, session, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	blob := []byte(`{"a":1}`)
	require.NoError(t, s.PutState(ctx, session, "k", blob))
	blob[0] = 'x'

	got, ok, err := s.GetState(ctx, session, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(got), "stored blob is a copy")

	require.NoError(t, s.DeleteState(ctx, session, "k"))
	require.NoError(t, s.DeleteState(ctx, session, "k"))
	_, ok, _ = s.GetState(ctx, session, "k")
	assert.False(t, ok)
}

func TestExampleBulkUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewExampleRepository()

	res, err := repo.BulkUpsert(ctx, []catalog.Example{
		{Name: "Outbox", Status: catalog.StatusNew, Category: strPtr("backend_pattern")},
		{Name: "Skeleton loader", Status: catalog.StatusCompleted, Score: fltPtr(92)},
	})
	require.NoError(t, err)
	assert.Len(t, res.Created, 2)
	assert.Empty(t, res.Updated)
	assert.Equal(t, int64(1), res.Created[0].ID)

	res, err = repo.BulkUpsert(ctx, []catalog.Example{
		{Name: "Outbox", Score: fltPtr(70)},
		{Name: "Bulkhead", Status: catalog.StatusInProgress},
	})
	require.NoError(t, err)
	require.Len(t, res.Updated, 1)
	assert.Equal(t, catalog.StatusNew, res.Updated[0].Status, "unset fields are kept")
	assert.Equal(t, 70.0, *res.Updated[0].Score)
	assert.Len(t, res.Created, 1)

	outbox, err := repo.FindByName(ctx, "Outbox")
	require.NoError(t, err)
	require.NotNil(t, outbox)
	assert.Equal(t, "backend_pattern", *outbox.Category)

	missing, err := repo.FindByName(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestExampleBulkUpsertIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewExampleRepository()

	res, err := repo.BulkUpsert(ctx, []catalog.Example{
		{Name: "Good", Status: catalog.StatusNew},
		{Name: "Bad", Status: "paused"},
	})
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ports.UpsertError{Index: 1, Name: "Bad", Errors: []string{"Status is not included in the list"}}, res.Errors[0])

	all, err := repo.List(ctx, ports.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestExampleListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewExampleRepository()
	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}

	for _, e := range []catalog.Example{
		{Name: "A", Status: catalog.StatusNew, Category: strPtr("ui_pattern")},
		{Name: "B", Status: catalog.StatusCompleted, Category: strPtr("ui_pattern")},
		{Name: "C", Status: catalog.StatusCompleted},
	} {
		_, err := repo.BulkUpsert(ctx, []catalog.Example{e})
		require.NoError(t, err)
	}

	all, _ := repo.List(ctx, ports.ListFilter{})
	require.Len(t, all, 3)
	assert.Equal(t, "C", all[0].Name, "newest first")

	completed, _ := repo.List(ctx, ports.ListFilter{Status: catalog.StatusCompleted})
	assert.Len(t, completed, 2)

	ui, _ := repo.List(ctx, ports.ListFilter{Category: "ui_pattern", Limit: 1})
	require.Len(t, ui, 1)
	assert.Equal(t, "B", ui[0].Name)

	_, err := repo.Get(ctx, 42)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestExampleUpdateStatuses(t *testing.T) {
	ctx := context.Background()
	repo := NewExampleRepository()
	_, err := repo.BulkUpsert(ctx, []catalog.Example{
		{Name: "A", Status: catalog.StatusNew},
		{Name: "B", Status: catalog.StatusNew},
	})
	require.NoError(t, err)

	n, err := repo.UpdateStatuses(ctx, []int64{1, 2, 99}, catalog.StatusArchived)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = repo.UpdateStatuses(ctx, []int64{1}, "gone")
	assert.True(t, errors.HasCode(err, errors.CodeValidationError))
}

func TestQualityRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewQualityRepository()

	app, err := repo.UpsertApp(ctx, "billing", "/srv/billing")
	require.NoError(t, err)
	assert.Equal(t, quality.StatusPending, app.Status)

	again, err := repo.UpsertApp(ctx, "billing", "/srv/billing-v2")
	require.NoError(t, err)
	assert.Equal(t, app.ID, again.ID)
	assert.Equal(t, "/srv/billing-v2", again.Path)

	at := time.Now()
	first := []quality.Scan{{Severity: quality.SeverityHigh}, {Severity: quality.SeverityLow}}
	require.NoError(t, repo.ReplaceScans(ctx, app.ID, quality.ScanSecurity, first, quality.Summarize(app.ID, quality.ScanSecurity, nil, at)))
	require.NoError(t, repo.ReplaceScans(ctx, app.ID, quality.ScanRubocop, []quality.Scan{{Severity: quality.SeverityMedium}}, quality.Summary{}))
	require.NoError(t, repo.ReplaceScans(ctx, app.ID, quality.ScanSecurity, first[:1], quality.Summary{TotalIssues: 1, HighSeverity: 1}))

	scans, err := repo.ListScans(ctx, app.ID)
	require.NoError(t, err)
	assert.Len(t, scans, 2)

	summaries, err := repo.ListSummaries(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, quality.ScanRubocop, summaries[0].ScanType)
	assert.Equal(t, 1, summaries[1].HighSeverity)

	require.NoError(t, repo.UpdateAppStatus(ctx, app.ID, quality.StatusCritical, at))
	got, err := repo.GetApp(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, quality.StatusCritical, got.Status)
	require.NotNil(t, got.LastScannedAt)

	assert.Error(t, repo.ReplaceScans(ctx, 404, quality.ScanSecurity, nil, quality.Summary{}))
}
