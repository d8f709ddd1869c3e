package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/quickgeo/fullgeo-backend/internal/domain"
)

// BillingRepository handles database operations for pending orders.
type BillingRepository struct {
	db *sqlx.DB
}

func NewBillingRepository(db *sqlx.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

func (r *BillingRepository) InsertPendingOrder(ctx context.Context, paymentIntent, name, email, locale string) error {
	query := `
		INSERT INTO pending_orders (payment_intent, name, email, locale, paid, created_at)
		VALUES (?, ?, ?, ?, FALSE, CURRENT_TIMESTAMP)
	`

	if _, err := r.db.ExecContext(ctx, query, paymentIntent, name, email, locale); err != nil {
		return fmt.Errorf("failed to insert pending order: %w", err)
	}

	return nil
}

// MarkPaid flips the order's paid flag. The paid = FALSE guard means only one
// caller ever observes claimed = true for a given payment intent, which gates
// provisioning against duplicate webhook deliveries.
func (r *BillingRepository) MarkPaid(ctx context.Context, paymentIntent string) (order *domain.PendingOrder, claimed bool, err error) {
	query := `UPDATE pending_orders SET paid = TRUE WHERE payment_intent = ? AND paid = FALSE`

	result, err := r.db.ExecContext(ctx, query, paymentIntent)
	if err != nil {
		return nil, false, fmt.Errorf("failed to mark order as paid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	order, err = r.GetByPaymentIntent(ctx, paymentIntent)
	if err != nil {
		return nil, false, err
	}

	return order, rows > 0, nil
}

func (r *BillingRepository) GetByPaymentIntent(ctx context.Context, paymentIntent string) (*domain.PendingOrder, error) {
	query := `
		SELECT id, payment_intent, name, email, locale, paid, created_at
		FROM pending_orders
		WHERE payment_intent = ?
	`

	var order domain.PendingOrder
	if err := r.db.GetContext(ctx, &order, query, paymentIntent); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending order: %w", err)
	}

	return &order, nil
}
