package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/quickgeo/fullgeo-backend/internal/domain"
	"github.com/quickgeo/fullgeo-backend/pkg/payments"
)

//
// Test fakes – only for this file.
//

type fakeBillingRepo struct {
	orders map[string]*domain.PendingOrder

	insertCalls []string
}

func (r *fakeBillingRepo) InsertPendingOrder(ctx context.Context, paymentIntent, name, email, locale string) error {
	if r.orders == nil {
		r.orders = make(map[string]*domain.PendingOrder)
	}
	r.orders[paymentIntent] = &domain.PendingOrder{
		ID:            int64(len(r.orders) + 1),
		PaymentIntent: paymentIntent,
		Name:          name,
		Email:         email,
		Locale:        locale,
	}
	r.insertCalls = append(r.insertCalls, paymentIntent)
	return nil
}

func (r *fakeBillingRepo) MarkPaid(ctx context.Context, paymentIntent string) (*domain.PendingOrder, bool, error) {
	order, ok := r.orders[paymentIntent]
	if !ok {
		return nil, false, nil
	}
	if order.Paid {
		return order, false, nil
	}
	order.Paid = true
	return order, true, nil
}

type fakePaymentProcessor struct {
	intentErr error

	subscriptionCalls int
}

func (p *fakePaymentProcessor) CreateIntent(email string) (*payments.Intent, error) {
	if p.intentErr != nil {
		return nil, p.intentErr
	}
	return &payments.Intent{ID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

func (p *fakePaymentProcessor) CreateSubscription(name, email string) (string, error) {
	p.subscriptionCalls++
	return "sub_test", nil
}

type provisionCall struct {
	name           string
	email          string
	locale         string
	credits        int
	subscriptionID *string
}

type fakeProvisioner struct {
	calls []provisionCall
}

func (p *fakeProvisioner) Provision(ctx context.Context, name, email, locale string, credits int, subscriptionID *string) error {
	p.calls = append(p.calls, provisionCall{
		name:           name,
		email:          email,
		locale:         locale,
		credits:        credits,
		subscriptionID: subscriptionID,
	})
	return nil
}

type fakePaymentMarkCache struct {
	marked map[string]bool
}

func (c *fakePaymentMarkCache) MarkPaymentProcessed(ctx context.Context, paymentIntent string) (bool, error) {
	if c.marked == nil {
		c.marked = make(map[string]bool)
	}
	if c.marked[paymentIntent] {
		return false, nil
	}
	c.marked[paymentIntent] = true
	return true, nil
}

//
// Tests
//

func TestCheckout_OpensIntentAndRecordsPendingOrder(t *testing.T) {
	ctx := context.Background()

	repo := &fakeBillingRepo{}
	processor := &fakePaymentProcessor{}

	svc := NewBillingService(repo, processor, &fakeProvisioner{}, nil, 10)

	intent, err := svc.Checkout(ctx, "Jane Doe", "jane@example.com", "en")
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}

	if intent.ID != "pi_test" {
		t.Fatalf("expected intent id %q, got %q", "pi_test", intent.ID)
	}
	if intent.ClientSecret == "" {
		t.Fatalf("expected a client secret")
	}

	order, ok := repo.orders["pi_test"]
	if !ok {
		t.Fatalf("expected a pending order for the intent")
	}
	if order.Email != "jane@example.com" || order.Locale != "en" {
		t.Fatalf("unexpected pending order: %+v", order)
	}
	if order.Paid {
		t.Fatalf("expected pending order to start unpaid")
	}
}

func TestCheckout_IntentFailureRecordsNothing(t *testing.T) {
	ctx := context.Background()

	repo := &fakeBillingRepo{}
	processor := &fakePaymentProcessor{intentErr: fmt.Errorf("simulated processor outage")}

	svc := NewBillingService(repo, processor, &fakeProvisioner{}, nil, 10)

	if _, err := svc.Checkout(ctx, "Jane Doe", "jane@example.com", "en"); err == nil {
		t.Fatalf("expected error, got nil")
	}

	if len(repo.insertCalls) != 0 {
		t.Fatalf("expected no pending order, got %d", len(repo.insertCalls))
	}
}

func TestHandlePaymentSucceeded_ProvisionsOnce(t *testing.T) {
	ctx := context.Background()

	repo := &fakeBillingRepo{}
	processor := &fakePaymentProcessor{}
	accounts := &fakeProvisioner{}

	svc := NewBillingService(repo, processor, accounts, nil, 10)

	if _, err := svc.Checkout(ctx, "Jane Doe", "jane@example.com", "fr"); err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}

	if err := svc.HandlePaymentSucceeded(ctx, "pi_test"); err != nil {
		t.Fatalf("HandlePaymentSucceeded returned error: %v", err)
	}

	if len(accounts.calls) != 1 {
		t.Fatalf("expected exactly one provision call, got %d", len(accounts.calls))
	}

	call := accounts.calls[0]
	if call.email != "jane@example.com" || call.locale != "fr" {
		t.Fatalf("unexpected provision call: %+v", call)
	}
	if call.credits != 10 {
		t.Fatalf("expected credit bundle 10, got %d", call.credits)
	}
	if call.subscriptionID == nil || *call.subscriptionID != "sub_test" {
		t.Fatalf("expected subscription id sub_test, got %v", call.subscriptionID)
	}
}

func TestHandlePaymentSucceeded_DuplicateDeliveryIsAbsorbed(t *testing.T) {
	ctx := context.Background()

	repo := &fakeBillingRepo{}
	processor := &fakePaymentProcessor{}
	accounts := &fakeProvisioner{}

	svc := NewBillingService(repo, processor, accounts, nil, 10)

	if _, err := svc.Checkout(ctx, "Jane Doe", "jane@example.com", "en"); err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}

	// Same webhook delivered twice: the paid-flag claim stops the second one.
	if err := svc.HandlePaymentSucceeded(ctx, "pi_test"); err != nil {
		t.Fatalf("first HandlePaymentSucceeded returned error: %v", err)
	}
	if err := svc.HandlePaymentSucceeded(ctx, "pi_test"); err != nil {
		t.Fatalf("second HandlePaymentSucceeded returned error: %v", err)
	}

	if len(accounts.calls) != 1 {
		t.Fatalf("expected exactly one provision across duplicate deliveries, got %d", len(accounts.calls))
	}
	if processor.subscriptionCalls != 1 {
		t.Fatalf("expected exactly one subscription, got %d", processor.subscriptionCalls)
	}
}

func TestHandlePaymentSucceeded_CacheMarkShortCircuits(t *testing.T) {
	ctx := context.Background()

	repo := &fakeBillingRepo{}
	processor := &fakePaymentProcessor{}
	accounts := &fakeProvisioner{}
	cache := &fakePaymentMarkCache{}

	svc := NewBillingService(repo, processor, accounts, cache, 10)

	if _, err := svc.Checkout(ctx, "Jane Doe", "jane@example.com", "en"); err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}

	if err := svc.HandlePaymentSucceeded(ctx, "pi_test"); err != nil {
		t.Fatalf("first HandlePaymentSucceeded returned error: %v", err)
	}
	if err := svc.HandlePaymentSucceeded(ctx, "pi_test"); err != nil {
		t.Fatalf("second HandlePaymentSucceeded returned error: %v", err)
	}

	if len(accounts.calls) != 1 {
		t.Fatalf("expected exactly one provision, got %d", len(accounts.calls))
	}
}

func TestHandlePaymentSucceeded_UnknownIntentIsNoop(t *testing.T) {
	ctx := context.Background()

	repo := &fakeBillingRepo{}
	accounts := &fakeProvisioner{}

	svc := NewBillingService(repo, &fakePaymentProcessor{}, accounts, nil, 10)

	// Webhook for an intent we never opened: logged and dropped, never an error
	// so the processor does not keep retrying.
	if err := svc.HandlePaymentSucceeded(ctx, "pi_unknown"); err != nil {
		t.Fatalf("expected nil error for unknown intent, got %v", err)
	}

	if len(accounts.calls) != 0 {
		t.Fatalf("expected no provision for unknown intent, got %d", len(accounts.calls))
	}
}
