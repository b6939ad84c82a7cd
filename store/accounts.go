// ABOUTME: Account repository backed by Postgres
// ABOUTME: Upsert keyed by email; flags read fresh on every lookup (no caching)

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-tools/lettertrack/backend/models"
)

type Accounts struct {
	pool *pgxpool.Pool
}

func NewAccounts(pool *pgxpool.Pool) *Accounts {
	return &Accounts{pool: pool}
}

const accountColumns = "id, email, name, is_admin, is_professor, is_student, created_at"

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.IsAdmin, &a.IsProfessor, &a.IsStudent, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Upsert creates an account for the given email if none exists, or refreshes
// the display name on an existing one. Capability flags are never touched
// here; they change only through SetFlags.
func (r *Accounts) Upsert(ctx context.Context, email, name string) (*models.Account, error) {
	query := `
		INSERT INTO accounts (email, name)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING ` + accountColumns

	a, err := scanAccount(r.pool.QueryRow(ctx, query, email, name))
	if err != nil {
		return nil, fmt.Errorf("upsert account: %w", err)
	}
	return a, nil
}

// ByEmail returns the account with the given email, or ErrNotFound.
func (r *Accounts) ByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

// ByID returns the account with the given id, or ErrNotFound.
func (r *Accounts) ByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// List returns all accounts ordered by email.
func (r *Accounts) List(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY email`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.IsAdmin, &a.IsProfessor, &a.IsStudent, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

// SetFlags replaces the capability flags on an account.
func (r *Accounts) SetFlags(ctx context.Context, id int64, flags models.AccountFlags) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET is_admin = $1, is_professor = $2, is_student = $3
		WHERE id = $4
		RETURNING ` + accountColumns

	a, err := scanAccount(r.pool.QueryRow(ctx, query, flags.IsAdmin, flags.IsProfessor, flags.IsStudent, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set account flags: %w", err)
	}
	return a, nil
}
