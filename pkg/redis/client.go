package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/quickgeo/fullgeo-backend/environments"
	"github.com/quickgeo/fullgeo-backend/pkg/logger"
)

type Client struct {
	client valkey.Client
}

const (
	paymentMarkKeyPrefix = "payment_processed:"
	paymentMarkTTL       = 24 * time.Hour

	creditsKeyPrefix = "credits:"
	creditsTTL       = 30 * time.Second
)

func NewRedisClient(cfg environments.RedisConfig) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Infof("Connected to Redis (via Valkey client)")

	return &Client{client: client}, nil
}

// MarkPaymentProcessed places a NX mark for a payment intent. It returns
// true the first time the mark is set, so duplicate webhook deliveries can
// be short-circuited before they hit the database.
func (c *Client) MarkPaymentProcessed(ctx context.Context, paymentIntent string) (bool, error) {
	key := paymentMarkKeyPrefix + paymentIntent

	result := c.client.Do(ctx, c.client.B().Set().Key(key).Value("1").Nx().Ex(paymentMarkTTL).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			// Mark already present: not the first delivery.
			return false, nil
		}
		return false, fmt.Errorf("failed to set payment mark: %w", result.Error())
	}

	return true, nil
}

// CacheCredits stores a short-lived copy of an account's credit balance.
func (c *Client) CacheCredits(ctx context.Context, accountID int64, credits int) error {
	key := fmt.Sprintf("%s%d", creditsKeyPrefix, accountID)

	err := c.client.Do(ctx, c.client.B().Set().Key(key).Value(strconv.Itoa(credits)).Ex(creditsTTL).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to cache credits: %w", err)
	}

	return nil
}

func (c *Client) GetCachedCredits(ctx context.Context, accountID int64) (int, bool, error) {
	key := fmt.Sprintf("%s%d", creditsKeyPrefix, accountID)

	result := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get cached credits: %w", result.Error())
	}

	credits, err := result.AsInt64()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read cached credits: %w", err)
	}

	return int(credits), true, nil
}

// InvalidateCredits drops the cached balance after a debit or a grant.
func (c *Client) InvalidateCredits(ctx context.Context, accountID int64) error {
	key := fmt.Sprintf("%s%d", creditsKeyPrefix, accountID)

	if err := c.client.Do(ctx, c.client.B().Del().Key(key).Build()).Error(); err != nil {
		return fmt.Errorf("failed to invalidate cached credits: %w", err)
	}

	return nil
}

func (c *Client) Close() error {
	c.client.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}
