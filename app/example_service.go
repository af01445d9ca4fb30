package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"goldendash/domain/catalog"
	"goldendash/domain/columns"
	"goldendash/domain/percentile"
	"goldendash/internal/errors"
	"goldendash/ports"

	"github.com/dgraph-io/ristretto"
	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"
)

const (
	leaderboardKey  = "example_leaderboard"
	leaderboardSize = 20

	// DefaultTopLimit and DefaultMinScore are the TopPerformers defaults
	DefaultTopLimit = 10
	DefaultMinScore = 75.0
)

// Statistics aggregates the example catalogue
type Statistics struct {
	TotalCount      int      `json:"total_count"`
	CompletedCount  int      `json:"completed_count"`
	InProgressCount int      `json:"in_progress_count"`
	NewCount        int      `json:"new_count"`
	CompletionRate  float64  `json:"completion_rate"`
	AverageScore    *float64 `json:"average_score"`
	AveragePriority *float64 `json:"average_priority"`
}

// DashboardPayload is the pair of JSON documents the examples page is built from
type DashboardPayload struct {
	Dataset     []byte
	Percentiles []byte
}

// ExampleService holds the catalogue queries behind the pages and the API
type ExampleService struct {
	repo     ports.ExampleRepository
	registry *columns.Registry
	cache    *ristretto.Cache
	ttl      time.Duration
	log      zerolog.Logger
}

// NewExampleService creates the service with a leaderboard cache entry living for ttl
func NewExampleService(repo ports.ExampleRepository, registry *columns.Registry, ttl time.Duration, log zerolog.Logger) (*ExampleService, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create leaderboard cache")
	}
	return &ExampleService{
		repo:     repo,
		registry: registry,
		cache:    cache,
		ttl:      ttl,
		log:      log.With().Str("component", "ExampleService").Logger(),
	}, nil
}

// Repository exposes the underlying repository to the API layer
func (s *ExampleService) Repository() ports.ExampleRepository {
	return s.repo
}

// Statistics counts examples per status and averages score and priority
func (s *ExampleService) Statistics(ctx context.Context) (Statistics, error) {
	all, err := s.repo.List(ctx, ports.ListFilter{})
	if err != nil {
		return Statistics{}, errors.Wrap(err, "failed to load examples")
	}

	var st Statistics
	var scores, priorities []float64
	for _, e := range all {
		st.TotalCount++
		switch e.Status {
		case catalog.StatusCompleted:
			st.CompletedCount++
		case catalog.StatusInProgress:
			st.InProgressCount++
		case catalog.StatusNew:
			st.NewCount++
		}
		if e.Score != nil {
			scores = append(scores, *e.Score)
		}
		if e.Priority != nil {
			priorities = append(priorities, float64(*e.Priority))
		}
	}

	if st.TotalCount > 0 {
		st.CompletionRate = float64(st.CompletedCount) / float64(st.TotalCount)
	}
	st.AverageScore = roundedMean(scores)
	st.AveragePriority = roundedMean(priorities)
	return st, nil
}

func roundedMean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return nil
	}
	rounded, err := stats.Round(mean, 2)
	if err != nil {
		return nil
	}
	return &rounded
}

// TopPerformers returns completed examples scoring at least minScore, best first
func (s *ExampleService) TopPerformers(ctx context.Context, limit int, minScore float64) ([]catalog.Example, error) {
	completed, err := s.repo.List(ctx, ports.ListFilter{Status: catalog.StatusCompleted})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load completed examples")
	}

	var top []catalog.Example
	for _, e := range completed {
		if e.Score != nil && *e.Score >= minScore {
			top = append(top, e)
		}
	}
	sort.SliceStable(top, func(i, j int) bool { return *top[i].Score > *top[j].Score })
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

// NeedsAttention returns high-priority examples that are not completed, most urgent and oldest first
func (s *ExampleService) NeedsAttention(ctx context.Context) ([]catalog.Example, error) {
	all, err := s.repo.List(ctx, ports.ListFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load examples")
	}

	var urgent []catalog.Example
	for _, e := range all {
		if e.Priority != nil && *e.Priority >= 4 && *e.Priority <= 5 && !e.IsCompleted() {
			urgent = append(urgent, e)
		}
	}
	sort.SliceStable(urgent, func(i, j int) bool {
		if *urgent[i].Priority != *urgent[j].Priority {
			return *urgent[i].Priority > *urgent[j].Priority
		}
		return urgent[i].CreatedAt.Before(urgent[j].CreatedAt)
	})
	return urgent, nil
}

// BulkUpdateStatus sets one status on many examples and drops the cached leaderboard
func (s *ExampleService) BulkUpdateStatus(ctx context.Context, ids []int64, status string) (int, error) {
	if !catalog.ValidStatus(status) {
		return 0, errors.ValidationError("Invalid status")
	}
	n, err := s.repo.UpdateStatuses(ctx, ids, status)
	if err != nil {
		return 0, errors.Wrap(err, "failed to update statuses")
	}
	s.ClearCache()
	s.log.Info().Int("updated", n).Str("status", status).Msg("bulk status update")
	return n, nil
}

// BulkUpsert forwards to the repository and drops the cached leaderboard when anything was written
func (s *ExampleService) BulkUpsert(ctx context.Context, examples []catalog.Example) (ports.UpsertResult, error) {
	result, err := s.repo.BulkUpsert(ctx, examples)
	if err != nil {
		return ports.UpsertResult{}, errors.WithCode(errors.CodeDatabaseError, err)
	}
	if len(result.Errors) == 0 {
		s.ClearCache()
		s.log.Info().Int("created", len(result.Created)).Int("updated", len(result.Updated)).Msg("bulk upsert")
	}
	return result, nil
}

// PercentileRank ranks value among the non-empty values of a filterable column
func (s *ExampleService) PercentileRank(ctx context.Context, value float64, column string) (int, error) {
	if !s.registry.IsFilterable(column) {
		return 0, errors.InvalidInput(fmt.Sprintf("column %q is not numeric", column))
	}
	all, err := s.repo.List(ctx, ports.ListFilter{})
	if err != nil {
		return 0, errors.Wrap(err, "failed to load examples")
	}
	return percentile.Rank(value, percentile.Sample(catalog.Records(all), column)), nil
}

// Leaderboard returns the top completed examples, cached for the configured TTL
func (s *ExampleService) Leaderboard(ctx context.Context) ([]catalog.Example, error) {
	if cached, ok := s.cache.Get(leaderboardKey); ok {
		if board, ok := cached.([]catalog.Example); ok {
			return board, nil
		}
	}

	board, err := s.TopPerformers(ctx, leaderboardSize, DefaultMinScore)
	if err != nil {
		return nil, err
	}
	s.cache.SetWithTTL(leaderboardKey, board, 1, s.ttl)
	s.cache.Wait()
	return board, nil
}

// ClearCache drops the cached leaderboard
func (s *ExampleService) ClearCache() {
	s.cache.Del(leaderboardKey)
}

// Get returns one example
func (s *ExampleService) Get(ctx context.Context, id int64) (*catalog.Example, error) {
	return s.repo.Get(ctx, id)
}

// DashboardPayload renders every example as the dataset document and computes the
// percentile table over the full catalogue
func (s *ExampleService) DashboardPayload(ctx context.Context) (DashboardPayload, error) {
	all, err := s.repo.List(ctx, ports.ListFilter{})
	if err != nil {
		return DashboardPayload{}, errors.Wrap(err, "failed to load examples")
	}
	// dataset order is oldest first
	ordered := append([]catalog.Example(nil), all...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].CreatedAt.Before(ordered[j].CreatedAt) })

	records := catalog.Records(ordered)
	dataset, err := catalog.EncodeDataset(records)
	if err != nil {
		return DashboardPayload{}, errors.Wrap(err, "failed to encode dataset")
	}
	table, err := json.Marshal(percentile.ComputeTable(records, s.registry.FilterableKeys()))
	if err != nil {
		return DashboardPayload{}, errors.Wrap(err, "failed to encode percentile table")
	}
	return DashboardPayload{Dataset: dataset, Percentiles: table}, nil
}
