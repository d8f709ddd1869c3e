package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/quickgeo/fullgeo-backend/internal/service"
	"github.com/quickgeo/fullgeo-backend/pkg/response"
	"github.com/quickgeo/fullgeo-backend/pkg/validator"
)

type AuthHandler struct {
	service *service.AccountService
}

func NewAuthHandler(service *service.AccountService) *AuthHandler {
	return &AuthHandler{service: service}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
	Lang  string `json:"lang" validate:"omitempty,max=8"`
}

type UnsubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Login godoc
// @Summary Sign in
// @Description Verifies credentials and returns a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} response.SuccessResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	token, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return response.UnauthorizedWithMessage(c, "Invalid email or password")
		}
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, map[string]any{"token": token})
}

// ResetPassword godoc
// @Summary Reset an account password
// @Description Generates a new password and emails it to the account owner
// @Tags auth
// @Accept json
// @Produce json
// @Param x-fg-auth-key header string true "API key"
// @Param request body ResetPasswordRequest true "Account email"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/reset-psw [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	if err := h.service.ResetPassword(c.Request().Context(), req.Email, req.Lang); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return response.NotFound(c, "Account not found")
		}
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Password reset, new credentials sent by email", nil)
}

// Unsubscribe godoc
// @Summary Opt an email out of notifications
// @Tags auth
// @Accept json
// @Produce json
// @Param x-fg-auth-key header string true "API key"
// @Param request body UnsubscribeRequest true "Email to opt out"
// @Success 200 {object} response.SuccessResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /api/unsubscribe [post]
func (h *AuthHandler) Unsubscribe(c echo.Context) error {
	var req UnsubscribeRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	if err := h.service.Unsubscribe(c.Request().Context(), req.Email); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Unsubscribed", nil)
}
