package sms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/quickgeo/fullgeo-backend/environments"
	"github.com/quickgeo/fullgeo-backend/pkg/logger"
)

// Delivery is the gateway's verdict for one send attempt.
type Delivery int

const (
	// DeliveryAccepted: the gateway queued the message for the handsets.
	DeliveryAccepted Delivery = iota
	// DeliveryRejected: the gateway refused the destination or payload (4xx).
	DeliveryRejected
	// DeliveryFailed: the gateway or the transport broke (5xx, timeouts).
	DeliveryFailed
)

type sendResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Message      string `json:"message"`
}

// Client talks to a Twilio-compatible SMS gateway.
type Client struct {
	httpClient *resty.Client
	accountSID string
	fromNumber string
	baseURL    string
}

func NewClient(cfg environments.SMSConfig) *Client {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		accountSID: cfg.AccountSID,
		fromNumber: cfg.FromNumber,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Send submits one SMS and classifies the gateway's answer. A non-nil error
// always accompanies DeliveryRejected and DeliveryFailed; the returned sid is
// empty in those cases.
func (c *Client) Send(ctx context.Context, to, body string) (Delivery, string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	var gwResp sendResponse

	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":   to,
			"From": c.fromNumber,
			"Body": body,
		}).
		SetResult(&gwResp).
		SetError(&gwResp).
		Post(endpoint)

	duration := time.Since(startTime)

	if err != nil {
		return DeliveryFailed, "", fmt.Errorf("failed to reach SMS gateway: %w", err)
	}

	logger.Infof("SMS gateway request completed in %v (status: %d)", duration, resp.StatusCode())

	switch {
	case resp.StatusCode() >= 200 && resp.StatusCode() < 300:
		return DeliveryAccepted, gwResp.SID, nil
	case resp.StatusCode() >= 400 && resp.StatusCode() < 500:
		return DeliveryRejected, "", fmt.Errorf("gateway rejected message: %s", gatewayDetail(&gwResp, resp.StatusCode()))
	default:
		return DeliveryFailed, "", fmt.Errorf("gateway error: %s", gatewayDetail(&gwResp, resp.StatusCode()))
	}
}

func gatewayDetail(resp *sendResponse, status int) string {
	if resp.Message != "" {
		return resp.Message
	}
	if resp.ErrorMessage != "" {
		return resp.ErrorMessage
	}
	return fmt.Sprintf("status %d", status)
}
