package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"goldendash/domain/catalog"
	"goldendash/domain/columns"
	"goldendash/internal/errors"
	"goldendash/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockExampleRepository struct {
	mock.Mock
}

func (m *MockExampleRepository) List(ctx context.Context, filter ports.ListFilter) ([]catalog.Example, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Example), args.Error(1)
}

func (m *MockExampleRepository) Get(ctx context.Context, id int64) (*catalog.Example, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*catalog.Example), args.Error(1)
}

func (m *MockExampleRepository) FindByName(ctx context.Context, name string) (*catalog.Example, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(*catalog.Example), args.Error(1)
}

func (m *MockExampleRepository) BulkUpsert(ctx context.Context, examples []catalog.Example) (ports.UpsertResult, error) {
	args := m.Called(ctx, examples)
	return args.Get(0).(ports.UpsertResult), args.Error(1)
}

func (m *MockExampleRepository) UpdateStatuses(ctx context.Context, ids []int64, status string) (int, error) {
	args := m.Called(ctx, ids, status)
	return args.Int(0), args.Error(1)
}

func intPtr(v int) *int         { return &v }
func fltPtr(v float64) *float64 { return &v }
func strPtr(v string) *string   { return &v }
func day(n int) time.Time       { return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC) }

func names(list []catalog.Example) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Name
	}
	return out
}

func newExampleService(t *testing.T, repo ports.ExampleRepository) *ExampleService {
	t.Helper()
	svc, err := NewExampleService(repo, columns.Default(), time.Hour, zerolog.Nop())
	require.NoError(t, err)
	return svc
}

var sampleExamples = []catalog.Example{
	{ID: 1, Name: "Outbox", Status: catalog.StatusCompleted, Priority: intPtr(5), Score: fltPtr(92), CreatedAt: day(1)},
	{ID: 2, Name: "Saga", Status: catalog.StatusCompleted, Priority: intPtr(2), Score: fltPtr(70), CreatedAt: day(2)},
	{ID: 3, Name: "Retry", Status: catalog.StatusInProgress, Priority: intPtr(4), Score: fltPtr(81), CreatedAt: day(3)},
	{ID: 4, Name: "Circuit breaker", Status: catalog.StatusNew, Priority: intPtr(5), CreatedAt: day(4)},
	{ID: 5, Name: "Bulkhead", Status: catalog.StatusNew, Priority: intPtr(4), CreatedAt: day(2)},
	{ID: 6, Name: "CQRS", Status: catalog.StatusCompleted, Score: fltPtr(88.5), CreatedAt: day(5)},
}

func completedOnly() []catalog.Example {
	var out []catalog.Example
	for _, e := range sampleExamples {
		if e.Status == catalog.StatusCompleted {
			out = append(out, e)
		}
	}
	return out
}

func TestStatistics(t *testing.T) {
	repo := new(MockExampleRepository)
	repo.On("List", mock.Anything, ports.ListFilter{}).Return(sampleExamples, nil)

	st, err := newExampleService(t, repo).Statistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, st.TotalCount)
	assert.Equal(t, 3, st.CompletedCount)
	assert.Equal(t, 1, st.InProgressCount)
	assert.Equal(t, 2, st.NewCount)
	assert.InDelta(t, 0.5, st.CompletionRate, 1e-9)
	require.NotNil(t, st.AverageScore)
	assert.Equal(t, 82.88, *st.AverageScore)
	require.NotNil(t, st.AveragePriority)
	assert.Equal(t, 4.0, *st.AveragePriority)
}

func TestStatisticsEmptyCatalogue(t *testing.T) {
	repo := new(MockExampleRepository)
	repo.On("List", mock.Anything, ports.ListFilter{}).Return([]catalog.Example{}, nil)

	st, err := newExampleService(t, repo).Statistics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.CompletionRate)
	assert.Nil(t, st.AverageScore)
	assert.Nil(t, st.AveragePriority)
}

func TestTopPerformers(t *testing.T) {
	repo := new(MockExampleRepository)
	repo.On("List", mock.Anything, ports.ListFilter{Status: catalog.StatusCompleted}).Return(completedOnly(), nil)
	svc := newExampleService(t, repo)

	top, err := svc.TopPerformers(context.Background(), DefaultTopLimit, DefaultMinScore)
	require.NoError(t, err)
	assert.Equal(t, []string{"Outbox", "CQRS"}, names(top))

	top, err = svc.TopPerformers(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Outbox"}, names(top))
}

func TestNeedsAttention(t *testing.T) {
	repo := new(MockExampleRepository)
	repo.On("List", mock.Anything, ports.ListFilter{}).Return(sampleExamples, nil)

	urgent, err := newExampleService(t, repo).NeedsAttention(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Circuit breaker", "Bulkhead", "Retry"}, names(urgent))
}

func TestBulkUpdateStatus(t *testing.T) {
	repo := new(MockExampleRepository)
	repo.On("UpdateStatuses", mock.Anything, []int64{1, 2}, catalog.StatusArchived).Return(2, nil)
	svc := newExampleService(t, repo)

	n, err := svc.BulkUpdateStatus(context.Background(), []int64{1, 2}, catalog.StatusArchived)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = svc.BulkUpdateStatus(context.Background(), []int64{1}, "done")
	assert.True(t, errors.HasCode(err, errors.CodeValidationError))
	repo.AssertNumberOfCalls(t, "UpdateStatuses", 1)
}

func TestPercentileRank(t *testing.T) {
	repo := new(MockExampleRepository)
	repo.On("List", mock.Anything, ports.ListFilter{}).Return(sampleExamples, nil)
	svc := newExampleService(t, repo)

	rank, err := svc.PercentileRank(context.Background(), 85, "score")
	require.NoError(t, err)
	assert.Equal(t, 50, rank, "two of four scores are <= 85")

	_, err = svc.PercentileRank(context.Background(), 1, "name")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestLeaderboardIsCachedUntilCleared(t *testing.T) {
	repo := new(MockExampleRepository)
	repo.On("List", mock.Anything, ports.ListFilter{Status: catalog.StatusCompleted}).Return(completedOnly(), nil)
	svc := newExampleService(t, repo)

	board, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Outbox", "CQRS"}, names(board))

	_, err = svc.Leaderboard(context.Background())
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "List", 1)

	svc.ClearCache()
	_, err = svc.Leaderboard(context.Background())
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "List", 2)
}

func TestBulkUpsertKeepsCacheOnRejection(t *testing.T) {
	repo := new(MockExampleRepository)
	rejected := ports.UpsertResult{Errors: []ports.UpsertError{{Index: 0, Name: "", Errors: []string{"Name can't be blank"}}}}
	repo.On("BulkUpsert", mock.Anything, mock.Anything).Return(rejected, nil)

	result, err := newExampleService(t, repo).BulkUpsert(context.Background(), []catalog.Example{{}})
	require.NoError(t, err)
	assert.Len(t, result.Errors, 1)
}

func TestDashboardPayload(t *testing.T) {
	repo := new(MockExampleRepository)
	repo.On("List", mock.Anything, ports.ListFilter{}).Return(sampleExamples, nil)

	payload, err := newExampleService(t, repo).DashboardPayload(context.Background())
	require.NoError(t, err)

	records, err := catalog.DecodeDataset(payload.Dataset)
	require.NoError(t, err)
	require.Len(t, records, len(sampleExamples))
	assert.Equal(t, "1", records[0].ID, "oldest example first")

	var table map[string]map[string]float64
	require.NoError(t, json.Unmarshal(payload.Percentiles, &table))
	assert.Equal(t, 70.0, table["score"]["0"])
	assert.Equal(t, 92.0, table["score"]["100"])
	assert.Contains(t, table, "priority")
}
