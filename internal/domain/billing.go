package domain

import "time"

// PendingOrder is created at checkout time and flipped to paid by the
// payment webhook, which then provisions the account.
type PendingOrder struct {
	ID            int64     `db:"id" json:"id"`
	PaymentIntent string    `db:"payment_intent" json:"paymentIntent"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	Locale        string    `db:"locale" json:"locale"`
	Paid          bool      `db:"paid" json:"paid"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}
