package service

import (
	"context"
	"fmt"

	"github.com/quickgeo/fullgeo-backend/internal/domain"
	"github.com/quickgeo/fullgeo-backend/pkg/logger"
	"github.com/quickgeo/fullgeo-backend/pkg/payments"
)

type billingRepository interface {
	InsertPendingOrder(ctx context.Context, paymentIntent, name, email, locale string) error
	MarkPaid(ctx context.Context, paymentIntent string) (*domain.PendingOrder, bool, error)
}

type paymentProcessor interface {
	CreateIntent(email string) (*payments.Intent, error)
	CreateSubscription(name, email string) (string, error)
}

type accountProvisioner interface {
	Provision(ctx context.Context, name, email, locale string, credits int, subscriptionID *string) error
}

// PaymentMarkCache is exported so the wiring in main can hand over a nil
// interface when Redis is unavailable.
type PaymentMarkCache interface {
	MarkPaymentProcessed(ctx context.Context, paymentIntent string) (bool, error)
}

type BillingService struct {
	repo         billingRepository
	processor    paymentProcessor
	accounts     accountProvisioner
	cache        PaymentMarkCache
	creditBundle int
}

func NewBillingService(
	repo billingRepository,
	processor paymentProcessor,
	accounts accountProvisioner,
	cache PaymentMarkCache,
	creditBundle int,
) *BillingService {
	return &BillingService{
		repo:         repo,
		processor:    processor,
		accounts:     accounts,
		cache:        cache,
		creditBundle: creditBundle,
	}
}

// Checkout opens a payment intent and records the pending order the webhook
// will later provision from.
func (s *BillingService) Checkout(ctx context.Context, name, email, locale string) (*payments.Intent, error) {
	intent, err := s.processor.CreateIntent(email)
	if err != nil {
		return nil, err
	}

	if err := s.repo.InsertPendingOrder(ctx, intent.ID, name, email, locale); err != nil {
		return nil, err
	}

	return intent, nil
}

// HandlePaymentSucceeded provisions the account behind a successful payment.
// Duplicate webhook deliveries are absorbed twice over: a cache NX mark when
// available, and the paid-flag claim in the store either way.
func (s *BillingService) HandlePaymentSucceeded(ctx context.Context, paymentIntent string) error {
	if s.cache != nil {
		first, err := s.cache.MarkPaymentProcessed(ctx, paymentIntent)
		if err != nil {
			logger.Warnf("Payment mark cache unavailable for %s: %v", paymentIntent, err)
		} else if !first {
			logger.Infof("Duplicate webhook delivery for %s, skipping", paymentIntent)
			return nil
		}
	}

	order, claimed, err := s.repo.MarkPaid(ctx, paymentIntent)
	if err != nil {
		return err
	}

	if order == nil {
		logger.Warnf("No pending order found for payment intent %s", paymentIntent)
		return nil
	}

	if !claimed {
		logger.Infof("Order for %s already processed, skipping", paymentIntent)
		return nil
	}

	subscriptionID, err := s.processor.CreateSubscription(order.Name, order.Email)
	if err != nil {
		return fmt.Errorf("failed to create subscription for %s: %w", paymentIntent, err)
	}

	if err := s.accounts.Provision(ctx, order.Name, order.Email, order.Locale, s.creditBundle, &subscriptionID); err != nil {
		return fmt.Errorf("failed to provision account for %s: %w", paymentIntent, err)
	}

	logger.Infof("Provisioned account for %s (order %d)", order.Email, order.ID)

	return nil
}
