// ABOUTME: Request type catalog repository backed by Postgres
// ABOUTME: Duplicate labels surface as ErrConflict via the unique constraint

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-tools/lettertrack/backend/models"
)

type RequestTypes struct {
	pool *pgxpool.Pool
}

func NewRequestTypes(pool *pgxpool.Pool) *RequestTypes {
	return &RequestTypes{pool: pool}
}

// List returns the full catalog ordered by label.
func (r *RequestTypes) List(ctx context.Context) ([]*models.RequestType, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, label FROM request_types ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("list request types: %w", err)
	}
	defer rows.Close()

	var types []*models.RequestType
	for rows.Next() {
		var t models.RequestType
		if err := rows.Scan(&t.ID, &t.Label); err != nil {
			return nil, fmt.Errorf("scan request type: %w", err)
		}
		types = append(types, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate request types: %w", err)
	}

	return types, nil
}

// ByID returns a single catalog entry, or ErrNotFound.
func (r *RequestTypes) ByID(ctx context.Context, id int64) (*models.RequestType, error) {
	var t models.RequestType
	err := r.pool.QueryRow(ctx, `SELECT id, label FROM request_types WHERE id = $1`, id).Scan(&t.ID, &t.Label)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get request type by id: %w", err)
	}
	return &t, nil
}

// Create adds a catalog entry. Returns ErrConflict on a duplicate label.
func (r *RequestTypes) Create(ctx context.Context, label string) (*models.RequestType, error) {
	var t models.RequestType
	err := r.pool.QueryRow(ctx, `INSERT INTO request_types (label) VALUES ($1) RETURNING id, label`, label).Scan(&t.ID, &t.Label)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create request type: %w", err)
	}
	return &t, nil
}

// Update renames a catalog entry. Returns ErrNotFound for a missing id and
// ErrConflict on a duplicate label.
func (r *RequestTypes) Update(ctx context.Context, id int64, label string) (*models.RequestType, error) {
	var t models.RequestType
	err := r.pool.QueryRow(ctx, `UPDATE request_types SET label = $1 WHERE id = $2 RETURNING id, label`, label, id).Scan(&t.ID, &t.Label)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("update request type: %w", err)
	}
	return &t, nil
}

// Delete removes a catalog entry. Returns ErrNotFound if no row matched.
func (r *RequestTypes) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM request_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete request type: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
