package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickgeo/fullgeo-backend/internal/domain"
	"github.com/quickgeo/fullgeo-backend/internal/middlewares"
	"github.com/quickgeo/fullgeo-backend/internal/service"
	"github.com/quickgeo/fullgeo-backend/pkg/response"
	"github.com/quickgeo/fullgeo-backend/pkg/validator"
)

type LocationHandler struct {
	service *service.LocationService
}

func NewLocationHandler(service *service.LocationService) *LocationHandler {
	return &LocationHandler{service: service}
}

type SendSMSRequest struct {
	Code        string `json:"code" validate:"required,max=8"`
	PhoneNumber string `json:"phone_number" validate:"required,max=20"`
}

// SendSMSResponse is the product wire contract for send-sms.
type SendSMSResponse struct {
	Status        bool   `json:"status"`
	Description   string `json:"description"`
	CorrelationID string `json:"correlationId,omitempty"`
}

type SaveLocationRequest struct {
	UUID      string   `json:"uuid" validate:"required,uuid4"`
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	City      string   `json:"city" validate:"max=255"`
	Timestamp string   `json:"timestamp" validate:"omitempty"`
}

// SendSMS godoc
// @Summary Issue a tracking SMS
// @Description Sends an SMS with a tracking link to the target number and debits one credit on success
// @Tags location
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param request body SendSMSRequest true "Target number"
// @Success 200 {object} SendSMSResponse
// @Failure 400 {object} SendSMSResponse
// @Failure 500 {object} SendSMSResponse
// @Router /api/send-sms [post]
func (h *LocationHandler) SendSMS(c echo.Context) error {
	var req SendSMSRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	accountID := middlewares.AccountID(c)

	outcome, err := h.service.SendTracking(c.Request().Context(), accountID, req.Code, req.PhoneNumber)
	if err != nil {
		if errors.Is(err, service.ErrNoCredits) {
			return response.BadRequestWithMessage(c, "No credits available")
		}
		return response.InternalServerError(c, err)
	}

	// HTTP status mirrors the gateway classification.
	status := http.StatusOK
	switch outcome.Status {
	case domain.SMSStatusRejected:
		status = http.StatusBadRequest
	case domain.SMSStatusError:
		status = http.StatusInternalServerError
	}

	return c.JSON(status, SendSMSResponse{
		Status:        outcome.Status == domain.SMSStatusSent,
		Description:   outcome.Description,
		CorrelationID: outcome.CorrelationID,
	})
}

// SaveLocation godoc
// @Summary Record a GPS report
// @Description Stores coordinates posted by the tracking page; the correlation id is the capability
// @Tags location
// @Accept json
// @Produce json
// @Param request body SaveLocationRequest true "Captured coordinates"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /api/save-location [post]
func (h *LocationHandler) SaveLocation(c echo.Context) error {
	var req SaveLocationRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	capturedAt := time.Now().UTC()
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return response.BadRequestWithMessage(c, "timestamp must be RFC3339")
		}
		capturedAt = parsed
	}

	err := h.service.SaveReport(c.Request().Context(), req.UUID, *req.Latitude, *req.Longitude, req.City, capturedAt)
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			return response.NotFound(c, "Unknown location request")
		}
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Location saved", nil)
}

// History godoc
// @Summary List past location requests
// @Description Returns the account's tracking attempts newest-first with captured coordinates and the credit balance
// @Tags location
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} response.SuccessResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/location-requests [get]
func (h *LocationHandler) History(c echo.Context) error {
	accountID := middlewares.AccountID(c)

	entries, credits, err := h.service.History(c.Request().Context(), accountID)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	if entries == nil {
		entries = []domain.HistoryEntry{}
	}

	return response.Ok(c, map[string]any{
		"requests": entries,
		"credits":  credits,
	})
}
