package handlers

import (
	"encoding/json"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v79"

	"github.com/quickgeo/fullgeo-backend/internal/service"
	"github.com/quickgeo/fullgeo-backend/pkg/logger"
	"github.com/quickgeo/fullgeo-backend/pkg/payments"
	"github.com/quickgeo/fullgeo-backend/pkg/response"
	"github.com/quickgeo/fullgeo-backend/pkg/validator"
)

type BillingHandler struct {
	service   *service.BillingService
	processor *payments.Client
}

func NewBillingHandler(service *service.BillingService, processor *payments.Client) *BillingHandler {
	return &BillingHandler{service: service, processor: processor}
}

type CheckoutRequest struct {
	Name   string `json:"name" validate:"required,max=255"`
	Email  string `json:"email" validate:"required,email"`
	Locale string `json:"locale" validate:"omitempty,max=8"`
}

// Checkout godoc
// @Summary Start a purchase
// @Description Creates a payment intent and records the pending order
// @Tags billing
// @Accept json
// @Produce json
// @Param request body CheckoutRequest true "Payer details"
// @Success 200 {object} response.SuccessResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/checkout [post]
func (h *BillingHandler) Checkout(c echo.Context) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	locale := req.Locale
	if locale == "" {
		locale = "en"
	}

	intent, err := h.service.Checkout(c.Request().Context(), req.Name, req.Email, locale)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, intent)
}

// Webhook godoc
// @Summary Payment processor webhook
// @Description Verifies the event signature and provisions the account on successful payment
// @Tags billing
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Event signature"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /webhook [post]
func (h *BillingHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return response.BadRequest(c, err)
	}

	event, err := h.processor.VerifyEvent(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		logger.Warnf("Rejected webhook with bad signature: %v", err)
		return response.BadRequestWithMessage(c, "Invalid signature")
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return response.BadRequest(c, err)
		}

		if err := h.service.HandlePaymentSucceeded(c.Request().Context(), intent.ID); err != nil {
			return response.InternalServerError(c, err)
		}
	default:
		logger.Debugf("Ignoring webhook event type %s", event.Type)
	}

	return response.OkWithMessage(c, "received", nil)
}
