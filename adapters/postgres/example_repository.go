package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"goldendash/domain/catalog"
	"goldendash/internal/errors"
	"goldendash/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const exampleColumns = `id, name, category, status, description, priority, score, complexity, speed, quality, created_at, updated_at`

// exampleRepository implements ports.ExampleRepository
type exampleRepository struct {
	db *sqlx.DB
}

// NewExampleRepository creates a new example repository
func NewExampleRepository(db *sqlx.DB) ports.ExampleRepository {
	return &exampleRepository{db: db}
}

// List returns examples newest first, narrowed by status and category
func (r *exampleRepository) List(ctx context.Context, filter ports.ListFilter) ([]catalog.Example, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `SELECT ` + exampleColumns + ` FROM examples`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var examples []catalog.Example
	if err := r.db.SelectContext(ctx, &examples, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list examples: %w", err)
	}
	return examples, nil
}

// Get retrieves an example by ID
func (r *exampleRepository) Get(ctx context.Context, id int64) (*catalog.Example, error) {
	var example catalog.Example
	err := r.db.GetContext(ctx, &example, `SELECT `+exampleColumns+` FROM examples WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("example")
		}
		return nil, fmt.Errorf("failed to get example: %w", err)
	}
	return &example, nil
}

// FindByName retrieves an example by name, nil when absent
func (r *exampleRepository) FindByName(ctx context.Context, name string) (*catalog.Example, error) {
	return findByName(ctx, r.db, name)
}

// BulkUpsert runs every row in one transaction and rolls back on the first invalid row
func (r *exampleRepository) BulkUpsert(ctx context.Context, examples []catalog.Example) (ports.UpsertResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return ports.UpsertResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var result ports.UpsertResult
	now := time.Now()
	for index, input := range examples {
		existing, err := findByName(ctx, tx, input.Name)
		if err != nil {
			return ports.UpsertResult{}, err
		}

		if existing != nil {
			updated := existing.Merge(input)
			if problems := updated.Validate(); len(problems) > 0 {
				return rejected(index, input.Name, problems), nil
			}
			updated.UpdatedAt = now
			if _, err := tx.NamedExecContext(ctx, `
				UPDATE examples SET
					category = :category, status = :status, description = :description,
					priority = :priority, score = :score, complexity = :complexity,
					speed = :speed, quality = :quality, updated_at = :updated_at
				WHERE id = :id`, updated); err != nil {
				return ports.UpsertResult{}, fmt.Errorf("failed to update example %q: %w", input.Name, err)
			}
			result.Updated = append(result.Updated, updated)
			continue
		}

		created := input
		if problems := created.Validate(); len(problems) > 0 {
			return rejected(index, input.Name, problems), nil
		}
		created.CreatedAt, created.UpdatedAt = now, now
		rows, err := sqlx.NamedQueryContext(ctx, tx, `
			INSERT INTO examples (name, category, status, description, priority, score, complexity, speed, quality, created_at, updated_at)
			VALUES (:name, :category, :status, :description, :priority, :score, :complexity, :speed, :quality, :created_at, :updated_at)
			RETURNING id`, created)
		if err != nil {
			return ports.UpsertResult{}, fmt.Errorf("failed to create example %q: %w", input.Name, err)
		}
		if rows.Next() {
			err = rows.Scan(&created.ID)
		}
		rows.Close()
		if err != nil {
			return ports.UpsertResult{}, fmt.Errorf("failed to read example id: %w", err)
		}
		result.Created = append(result.Created, created)
	}

	if err := tx.Commit(); err != nil {
		return ports.UpsertResult{}, fmt.Errorf("failed to commit bulk upsert: %w", err)
	}
	return result, nil
}

// UpdateStatuses sets status on every listed example
func (r *exampleRepository) UpdateStatuses(ctx context.Context, ids []int64, status string) (int, error) {
	if !catalog.ValidStatus(status) {
		return 0, errors.ValidationError("Status is not included in the list")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE examples SET status = $1, updated_at = NOW() WHERE id = ANY($2)`,
		status, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to update example statuses: %w", err)
	}
	changed, _ := result.RowsAffected()
	return int(changed), nil
}

func findByName(ctx context.Context, q sqlx.QueryerContext, name string) (*catalog.Example, error) {
	var example catalog.Example
	err := sqlx.GetContext(ctx, q, &example, `SELECT `+exampleColumns+` FROM examples WHERE name = $1 LIMIT 1`, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find example %q: %w", name, err)
	}
	return &example, nil
}

func rejected(index int, name string, problems []string) ports.UpsertResult {
	return ports.UpsertResult{Errors: []ports.UpsertError{{Index: index, Name: name, Errors: problems}}}
}
