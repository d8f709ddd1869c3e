package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickgeo/fullgeo-backend/pkg/phone"
	"github.com/quickgeo/fullgeo-backend/pkg/response"
	"github.com/quickgeo/fullgeo-backend/pkg/validator"
)

type PhoneHandler struct {
	lookup *phone.Lookup
}

func NewPhoneHandler(lookup *phone.Lookup) *PhoneHandler {
	return &PhoneHandler{lookup: lookup}
}

type PhoneInfoRequest struct {
	Code        string `json:"code" validate:"required,max=8"`
	PhoneNumber string `json:"phone_number" validate:"required,max=20"`
	CodeLang    string `json:"code_lang" validate:"required,max=8"`
}

// PhoneInfoResponse is the product wire contract for phone-info.
type PhoneInfoResponse struct {
	Status   bool   `json:"status"`
	Country  string `json:"country"`
	Operator string `json:"operator"`
}

// PhoneInfo godoc
// @Summary Look up country and carrier for a phone number
// @Description Parses dialing code + local number and returns localized country and carrier names
// @Tags phone
// @Accept json
// @Produce json
// @Param x-fg-auth-key header string true "API key"
// @Param request body PhoneInfoRequest true "Number to look up"
// @Success 200 {object} PhoneInfoResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/phone-info [post]
func (h *PhoneHandler) PhoneInfo(c echo.Context) error {
	var req PhoneInfoRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	info, err := h.lookup.Info(req.Code, req.PhoneNumber, req.CodeLang)
	if err != nil {
		if errors.Is(err, phone.ErrInvalidNumber) {
			return response.BadRequest(c, err)
		}
		return response.InternalServerError(c, err)
	}

	// Never answer 200 with an empty country and operator.
	if info.Country == "" && info.Carrier == "" {
		return response.NotFound(c, "No metadata available for this number")
	}

	return c.JSON(http.StatusOK, PhoneInfoResponse{
		Status:   true,
		Country:  info.Country,
		Operator: info.Carrier,
	})
}
