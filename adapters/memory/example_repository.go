package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"goldendash/domain/catalog"
	"goldendash/internal/errors"
	"goldendash/ports"
)

// ExampleRepository is an in-memory ports.ExampleRepository
type ExampleRepository struct {
	mu       sync.RWMutex
	examples []catalog.Example
	nextID   int64
	now      func() time.Time
}

// NewExampleRepository creates an empty repository
func NewExampleRepository() *ExampleRepository {
	return &ExampleRepository{nextID: 1, now: time.Now}
}

func (r *ExampleRepository) List(_ context.Context, filter ports.ListFilter) ([]catalog.Example, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []catalog.Example
	for _, e := range r.examples {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Category != "" && (e.Category == nil || *e.Category != filter.Category) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *ExampleRepository) Get(_ context.Context, id int64) (*catalog.Example, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.examples {
		if e.ID == id {
			found := e
			return &found, nil
		}
	}
	return nil, errors.NotFound("example")
}

func (r *ExampleRepository) FindByName(_ context.Context, name string) (*catalog.Example, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexByName(r.examples, name); i >= 0 {
		found := r.examples[i]
		return &found, nil
	}
	return nil, nil
}

// BulkUpsert works on a copy and swaps it in only when every row validates
func (r *ExampleRepository) BulkUpsert(_ context.Context, examples []catalog.Example) (ports.UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	working := make([]catalog.Example, len(r.examples))
	copy(working, r.examples)
	nextID := r.nextID
	now := r.now()

	var result ports.UpsertResult
	for index, input := range examples {
		if i := r.indexByName(working, input.Name); i >= 0 {
			updated := working[i].Merge(input)
			if problems := updated.Validate(); len(problems) > 0 {
				return ports.UpsertResult{Errors: []ports.UpsertError{{Index: index, Name: input.Name, Errors: problems}}}, nil
			}
			updated.UpdatedAt = now
			working[i] = updated
			result.Updated = append(result.Updated, updated)
			continue
		}

		created := input
		if problems := created.Validate(); len(problems) > 0 {
			return ports.UpsertResult{Errors: []ports.UpsertError{{Index: index, Name: input.Name, Errors: problems}}}, nil
		}
		created.ID = nextID
		nextID++
		created.CreatedAt, created.UpdatedAt = now, now
		working = append(working, created)
		result.Created = append(result.Created, created)
	}

	r.examples = working
	r.nextID = nextID
	return result, nil
}

func (r *ExampleRepository) UpdateStatuses(_ context.Context, ids []int64, status string) (int, error) {
	if !catalog.ValidStatus(status) {
		return 0, errors.ValidationError("Status is not included in the list")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	changed := 0
	now := r.now()
	for i := range r.examples {
		if wanted[r.examples[i].ID] {
			r.examples[i].Status = status
			r.examples[i].UpdatedAt = now
			changed++
		}
	}
	return changed, nil
}

func (r *ExampleRepository) indexByName(list []catalog.Example, name string) int {
	for i, e := range list {
		if e.Name == name {
			return i
		}
	}
	return -1
}
