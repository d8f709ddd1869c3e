package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/quickgeo/fullgeo-backend/internal/domain"
)

// LocationRepository handles database operations for location requests and
// their reports.
type LocationRepository struct {
	db *sqlx.DB
}

func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Insert records a tracking attempt. Rows are written for every gateway
// outcome, including rejections and errors.
func (r *LocationRepository) Insert(ctx context.Context, req *domain.LocationRequest) error {
	query := `
		INSERT INTO location_requests
			(correlation_id, account_id, phone_code, phone_number, country_code, sms_status, fulfilled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, FALSE, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		req.CorrelationID, req.AccountID, req.PhoneCode, req.PhoneNumber,
		req.CountryCode, req.SMSStatus, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert location request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	req.ID = id
	return nil
}

func (r *LocationRepository) GetByCorrelationID(ctx context.Context, correlationID string) (*domain.LocationRequest, error) {
	query := `
		SELECT id, correlation_id, account_id, phone_code, phone_number, country_code, sms_status, fulfilled, created_at
		FROM location_requests
		WHERE correlation_id = ?
	`

	var req domain.LocationRequest
	if err := r.db.GetContext(ctx, &req, query, correlationID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get location request: %w", err)
	}

	return &req, nil
}

func (r *LocationRepository) MarkFulfilled(ctx context.Context, id int64) error {
	query := `UPDATE location_requests SET fulfilled = TRUE WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark location request fulfilled: %w", err)
	}

	return nil
}

// UpsertReport writes the report for a request. The unique key on
// location_request_id turns a second submission into an update, so at most
// one report exists per request and the last write wins.
func (r *LocationRepository) UpsertReport(ctx context.Context, requestID int64, latitude, longitude float64, city string, capturedAt time.Time) error {
	query := `
		INSERT INTO location_reports (location_request_id, latitude, longitude, city, captured_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			latitude = VALUES(latitude),
			longitude = VALUES(longitude),
			city = VALUES(city),
			captured_at = VALUES(captured_at)
	`

	if _, err := r.db.ExecContext(ctx, query, requestID, latitude, longitude, city, capturedAt); err != nil {
		return fmt.Errorf("failed to upsert location report: %w", err)
	}

	return nil
}

// History returns the account's requests newest-first, joined with any
// captured report. The product shows the full list, so no pagination here.
func (r *LocationRepository) History(ctx context.Context, accountID int64) ([]domain.HistoryEntry, error) {
	query := `
		SELECT
			lr.correlation_id, lr.phone_code, lr.phone_number, lr.country_code,
			lr.sms_status, lr.fulfilled, lr.created_at,
			rep.latitude, rep.longitude, rep.city, rep.captured_at
		FROM location_requests lr
		LEFT JOIN location_reports rep ON rep.location_request_id = lr.id
		WHERE lr.account_id = ?
		ORDER BY lr.created_at DESC
	`

	var entries []domain.HistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, accountID); err != nil {
		return nil, fmt.Errorf("failed to get location history: %w", err)
	}

	return entries, nil
}
