// ABOUTME: Recommendation request repository backed by Postgres
// ABOUTME: Point reads and writes keyed by id; no multi-record transactions needed

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-tools/lettertrack/backend/models"
)

type Requests struct {
	pool *pgxpool.Pool
}

func NewRequests(pool *pgxpool.Pool) *Requests {
	return &Requests{pool: pool}
}

const requestColumns = "id, requester_id, professor_id, request_type, details, needed_by_date, submission_date, completion_date, status"

func scanRequest(row pgx.Row) (*models.RecommendationRequest, error) {
	var req models.RecommendationRequest
	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.ProfessorID,
		&req.RequestType,
		&req.Details,
		&req.NeededByDate,
		&req.SubmissionDate,
		&req.CompletionDate,
		&req.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// Create inserts a new request. SubmissionDate and the Pending status come
// from the database defaults; the returned record carries them.
func (r *Requests) Create(ctx context.Context, req *models.RecommendationRequest) (*models.RecommendationRequest, error) {
	query := `
		INSERT INTO recommendation_requests (requester_id, professor_id, request_type, details, needed_by_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + requestColumns

	created, err := scanRequest(r.pool.QueryRow(
		ctx, query,
		req.RequesterID,
		req.ProfessorID,
		req.RequestType,
		req.Details,
		req.NeededByDate,
	))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return created, nil
}

// ByID returns the request with the given id, or ErrNotFound.
func (r *Requests) ByID(ctx context.Context, id int64) (*models.RecommendationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM recommendation_requests WHERE id = $1`

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get request by id: %w", err)
	}
	return req, nil
}

// List returns all requests, newest first.
func (r *Requests) List(ctx context.Context) ([]*models.RecommendationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM recommendation_requests ORDER BY submission_date DESC`
	return r.queryMany(ctx, query)
}

// ByRequester returns all requests owned by the given requester, newest first.
func (r *Requests) ByRequester(ctx context.Context, requesterID int64) ([]*models.RecommendationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM recommendation_requests WHERE requester_id = $1 ORDER BY submission_date DESC`
	return r.queryMany(ctx, query, requesterID)
}

// ByProfessor returns all requests targeting the given professor, newest first.
func (r *Requests) ByProfessor(ctx context.Context, professorID int64) ([]*models.RecommendationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM recommendation_requests WHERE professor_id = $1 ORDER BY submission_date DESC`
	return r.queryMany(ctx, query, professorID)
}

func (r *Requests) queryMany(ctx context.Context, query string, args ...any) ([]*models.RecommendationRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.RecommendationRequest
	for rows.Next() {
		var req models.RecommendationRequest
		err := rows.Scan(
			&req.ID,
			&req.RequesterID,
			&req.ProfessorID,
			&req.RequestType,
			&req.Details,
			&req.NeededByDate,
			&req.SubmissionDate,
			&req.CompletionDate,
			&req.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}

	return requests, nil
}

// Update replaces all mutable fields of a request. SubmissionDate and the
// requester reference are immutable; last write wins on concurrent edits.
func (r *Requests) Update(ctx context.Context, req *models.RecommendationRequest) (*models.RecommendationRequest, error) {
	query := `
		UPDATE recommendation_requests
		SET professor_id = $1, request_type = $2, details = $3, needed_by_date = $4, completion_date = $5, status = $6
		WHERE id = $7
		RETURNING ` + requestColumns

	updated, err := scanRequest(r.pool.QueryRow(
		ctx, query,
		req.ProfessorID,
		req.RequestType,
		req.Details,
		req.NeededByDate,
		req.CompletionDate,
		req.Status,
		req.ID,
	))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update request: %w", err)
	}
	return updated, nil
}

// Delete removes a request. Returns ErrNotFound if no row matched.
func (r *Requests) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM recommendation_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
