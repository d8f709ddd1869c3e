package payments

import (
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/quickgeo/fullgeo-backend/environments"
)

// Intent is the subset of a created payment intent the API exposes.
type Intent struct {
	ID           string `json:"paymentIntentId"`
	ClientSecret string `json:"clientSecret"`
}

// Client wraps the Stripe SDK behind the three operations the product needs.
type Client struct {
	api           *client.API
	webhookSecret string
	priceID       string
	amount        int64
	currency      string
}

func NewClient(cfg environments.StripeConfig) *Client {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &Client{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		priceID:       cfg.PriceID,
		amount:        cfg.Amount,
		currency:      cfg.Currency,
	}
}

// CreateIntent opens a payment intent for the configured plan amount.
func (c *Client) CreateIntent(email string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(c.amount),
		Currency: stripe.String(c.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		ReceiptEmail: stripe.String(email),
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// CreateSubscription creates the recurring subscription for a paying
// customer and returns its id.
func (c *Client) CreateSubscription(name, email string) (string, error) {
	cust, err := c.api.Customers.New(&stripe.CustomerParams{
		Name:  stripe.String(name),
		Email: stripe.String(email),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}

	sub, err := c.api.Subscriptions.New(&stripe.SubscriptionParams{
		Customer: stripe.String(cust.ID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(c.priceID)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create subscription: %w", err)
	}

	return sub.ID, nil
}

// VerifyEvent checks the webhook signature and decodes the event payload.
func (c *Client) VerifyEvent(payload []byte, signature string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("failed to verify webhook signature: %w", err)
	}

	return event, nil
}
