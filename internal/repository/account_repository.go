package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/quickgeo/fullgeo-backend/internal/domain"
)

// AccountRepository handles database operations for accounts and the
// unsubscribe opt-out list.
type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT id, name, email, password_hash, credits, subscription_id, created_at, updated_at
		FROM accounts
		WHERE email = ?
	`

	var account domain.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return &account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := `
		SELECT id, name, email, password_hash, credits, subscription_id, created_at, updated_at
		FROM accounts
		WHERE id = ?
	`

	var account domain.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}

func (r *AccountRepository) GetCredits(ctx context.Context, id int64) (int, error) {
	var credits int
	if err := r.db.GetContext(ctx, &credits, "SELECT credits FROM accounts WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to get credits: %w", err)
	}

	return credits, nil
}

// DebitCredit atomically removes one credit. The balance guard in the WHERE
// clause makes the debit mutation-free at zero.
func (r *AccountRepository) DebitCredit(ctx context.Context, id int64) error {
	query := `
		UPDATE accounts
		SET credits = credits - 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND credits > 0
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to debit credit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return ErrNoCredits
	}

	return nil
}

// Upsert creates the account or, when the email already exists, resets its
// password hash and adds the purchased credits in a single statement.
func (r *AccountRepository) Upsert(ctx context.Context, name, email, passwordHash string, credits int, subscriptionID *string) error {
	query := `
		INSERT INTO accounts (name, email, password_hash, credits, subscription_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON DUPLICATE KEY UPDATE
			password_hash = VALUES(password_hash),
			credits = credits + VALUES(credits),
			subscription_id = COALESCE(VALUES(subscription_id), subscription_id),
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.ExecContext(ctx, query, name, email, passwordHash, credits, subscriptionID); err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}

	return nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE email = ?
	`

	result, err := r.db.ExecContext(ctx, query, passwordHash, email)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// InsertUnsubscribe records an email opt-out. Re-submitting the same email
// is a no-op thanks to the unique key.
func (r *AccountRepository) InsertUnsubscribe(ctx context.Context, email string) error {
	query := `INSERT IGNORE INTO unsubscribes (email, created_at) VALUES (?, CURRENT_TIMESTAMP)`

	if _, err := r.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("failed to insert unsubscribe: %w", err)
	}

	return nil
}

func (r *AccountRepository) IsUnsubscribed(ctx context.Context, email string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM unsubscribes WHERE email = ?", email); err != nil {
		return false, fmt.Errorf("failed to check unsubscribe: %w", err)
	}

	return count > 0, nil
}
