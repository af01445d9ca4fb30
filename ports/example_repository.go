package ports

import (
	"context"

	"goldendash/domain/catalog"
)

// ListFilter narrows an example listing; zero values mean no constraint
type ListFilter struct {
	Status   string
	Category string
	Limit    int
}

// UpsertError reports the validation failures of one input row
type UpsertError struct {
	Index  int      `json:"index"`
	Name   string   `json:"name"`
	Errors []string `json:"errors"`
}

// UpsertResult is the outcome of a bulk upsert. When Errors is non-empty nothing was written.
type UpsertResult struct {
	Created []catalog.Example
	Updated []catalog.Example
	Errors  []UpsertError
}

// ExampleRepository defines the interface for example persistence
type ExampleRepository interface {
	// List returns examples ordered by creation time, newest first
	List(ctx context.Context, filter ListFilter) ([]catalog.Example, error)

	// Get retrieves an example by ID
	Get(ctx context.Context, id int64) (*catalog.Example, error)

	// FindByName retrieves an example by its unique name, nil when absent
	FindByName(ctx context.Context, name string) (*catalog.Example, error)

	// BulkUpsert creates or updates examples matched by name, all or nothing
	BulkUpsert(ctx context.Context, examples []catalog.Example) (UpsertResult, error)

	// UpdateStatuses sets status on the given IDs and returns how many rows changed
	UpdateStatuses(ctx context.Context, ids []int64, status string) (int, error)
}
