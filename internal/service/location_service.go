package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quickgeo/fullgeo-backend/environments"
	"github.com/quickgeo/fullgeo-backend/internal/domain"
	"github.com/quickgeo/fullgeo-backend/pkg/logger"
	"github.com/quickgeo/fullgeo-backend/pkg/phone"
	"github.com/quickgeo/fullgeo-backend/pkg/sms"
)

// Sentinel errors handlers branch on.
var (
	ErrNoCredits       = errors.New("no credits available")
	ErrRequestNotFound = errors.New("location request not found")
)

// Small internal interfaces so we can test without touching real DB/Redis/gateway.
type locationRepository interface {
	Insert(ctx context.Context, req *domain.LocationRequest) error
	GetByCorrelationID(ctx context.Context, correlationID string) (*domain.LocationRequest, error)
	MarkFulfilled(ctx context.Context, id int64) error
	UpsertReport(ctx context.Context, requestID int64, latitude, longitude float64, city string, capturedAt time.Time) error
	History(ctx context.Context, accountID int64) ([]domain.HistoryEntry, error)
}

type creditStore interface {
	GetCredits(ctx context.Context, id int64) (int, error)
	DebitCredit(ctx context.Context, id int64) error
}

type smsGateway interface {
	Send(ctx context.Context, to, body string) (sms.Delivery, string, error)
}

// CreditCache is exported so the wiring in main can hand over a nil
// interface when Redis is unavailable.
type CreditCache interface {
	GetCachedCredits(ctx context.Context, accountID int64) (int, bool, error)
	CacheCredits(ctx context.Context, accountID int64, credits int) error
	InvalidateCredits(ctx context.Context, accountID int64) error
}

type phoneLookup interface {
	Info(code, number, lang string) (*phone.Info, error)
}

// SendOutcome describes one tracking attempt to the caller.
type SendOutcome struct {
	CorrelationID string           `json:"correlationId"`
	Status        domain.SMSStatus `json:"status"`
	Description   string           `json:"description"`
}

type LocationService struct {
	repo     locationRepository
	credits  creditStore
	gateway  smsGateway
	cache    CreditCache
	lookup   phoneLookup
	tracking environments.TrackingConfig
}

func NewLocationService(
	repo locationRepository,
	credits creditStore,
	gateway smsGateway,
	cache CreditCache,
	lookup phoneLookup,
	tracking environments.TrackingConfig,
) *LocationService {
	return &LocationService{
		repo:     repo,
		credits:  credits,
		gateway:  gateway,
		cache:    cache,
		lookup:   lookup,
		tracking: tracking,
	}
}

// SendTracking issues a tracking SMS for the given target number and records
// the attempt. One credit is debited only after the gateway accepted the
// message AND the attempt row is durably persisted.
func (s *LocationService) SendTracking(ctx context.Context, accountID int64, code, number string) (*SendOutcome, error) {
	credits, err := s.balance(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if credits <= 0 {
		return nil, ErrNoCredits
	}

	correlationID := uuid.NewString()
	trackingURL := fmt.Sprintf("%s?uuid=%s", s.tracking.BaseURL, correlationID)
	body := fmt.Sprintf(s.tracking.MessageTemplate, trackingURL)

	target := phone.Target(code, number)

	delivery, sid, sendErr := s.gateway.Send(ctx, target, body)

	status := domain.SMSStatusError
	switch delivery {
	case sms.DeliveryAccepted:
		status = domain.SMSStatusSent
	case sms.DeliveryRejected:
		status = domain.SMSStatusRejected
	}

	if sendErr != nil {
		logger.Warnf("SMS to %s not delivered (%s): %v", target, status, sendErr)
	}

	region := s.regionForTarget(code, number)

	req := &domain.LocationRequest{
		CorrelationID: correlationID,
		AccountID:     accountID,
		PhoneCode:     code,
		PhoneNumber:   number,
		CountryCode:   region,
		SMSStatus:     status,
		CreatedAt:     time.Now().UTC(),
	}

	// The attempt is recorded for every outcome, including rejections.
	if err := s.repo.Insert(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to record tracking attempt: %w", err)
	}

	if status == domain.SMSStatusSent {
		if err := s.credits.DebitCredit(ctx, accountID); err != nil {
			return nil, fmt.Errorf("failed to debit credit: %w", err)
		}

		if s.cache != nil {
			if err := s.cache.InvalidateCredits(ctx, accountID); err != nil {
				logger.Warnf("Failed to invalidate cached credits for account %d: %v", accountID, err)
			}
		}

		logger.Infof("Tracking SMS sent to %s (correlation: %s, gateway sid: %s)", target, correlationID, sid)
	}

	return &SendOutcome{
		CorrelationID: correlationID,
		Status:        status,
		Description:   describe(status),
	}, nil
}

// SaveReport records the coordinates posted by the tracking page. The
// correlation id is the only capability required; an unknown id yields
// ErrRequestNotFound and writes nothing.
func (s *LocationService) SaveReport(ctx context.Context, correlationID string, latitude, longitude float64, city string, capturedAt time.Time) error {
	req, err := s.repo.GetByCorrelationID(ctx, correlationID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}

	if err := s.repo.MarkFulfilled(ctx, req.ID); err != nil {
		return err
	}

	return s.repo.UpsertReport(ctx, req.ID, latitude, longitude, city, capturedAt)
}

// History returns the account's tracking attempts newest-first together with
// the current credit balance.
func (s *LocationService) History(ctx context.Context, accountID int64) ([]domain.HistoryEntry, int, error) {
	entries, err := s.repo.History(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}

	credits, err := s.balance(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}

	return entries, credits, nil
}

func (s *LocationService) balance(ctx context.Context, accountID int64) (int, error) {
	if s.cache != nil {
		credits, ok, err := s.cache.GetCachedCredits(ctx, accountID)
		if err != nil {
			logger.Warnf("Credit cache read failed for account %d: %v", accountID, err)
		} else if ok {
			return credits, nil
		}
	}

	credits, err := s.credits.GetCredits(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to get credit balance: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.CacheCredits(ctx, accountID, credits); err != nil {
			logger.Warnf("Credit cache write failed for account %d: %v", accountID, err)
		}
	}

	return credits, nil
}

func describe(status domain.SMSStatus) string {
	switch status {
	case domain.SMSStatusSent:
		return "SMS sent successfully"
	case domain.SMSStatusRejected:
		return "SMS rejected by the gateway"
	default:
		return "SMS gateway error"
	}
}

// regionForTarget derives an ISO region for the stored attempt. Lookup
// failures degrade to an empty region rather than blocking the send.
func (s *LocationService) regionForTarget(code, number string) string {
	if s.lookup == nil {
		return ""
	}
	info, err := s.lookup.Info(code, number, "en")
	if err != nil {
		return ""
	}
	return info.Region
}
