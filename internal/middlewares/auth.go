package middlewares

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/quickgeo/fullgeo-backend/pkg/response"
)

const (
	APIKeyHeader = "x-fg-auth-key"

	// accountIDContextKey is where JWTAuth stores the authenticated account id.
	accountIDContextKey = "account_id"
)

// secureCompare compares two strings in a way that is safer against timing attacks.
func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// APIKeyAuth gates a route group behind a shared-secret header.
func APIKeyAuth(apiKey string) echo.MiddlewareFunc {
	// If the API key is not configured, treat this as a server-side misconfiguration.
	if apiKey == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return response.InternalServerError(
					c,
					fmt.Errorf("API key is not configured for this endpoint group"),
				)
			}
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(APIKeyHeader)
			if token == "" || !secureCompare(token, apiKey) {
				return response.Unauthorized(c)
			}

			return next(c)
		}
	}
}

// JWTAuth gates a route group behind a bearer token issued by the login
// endpoint. The authenticated account id is stored in the echo context and
// read back with AccountID.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return response.Unauthorized(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				return response.Unauthorized(c)
			}

			accountID, err := parseAccountID(parts[1], secret)
			if err != nil {
				return response.Unauthorized(c)
			}

			c.Set(accountIDContextKey, accountID)

			return next(c)
		}
	}
}

// AccountID returns the account id set by JWTAuth, or 0 when the request is
// unauthenticated.
func AccountID(c echo.Context) int64 {
	id, ok := c.Get(accountIDContextKey).(int64)
	if !ok {
		return 0
	}
	return id
}

func parseAccountID(tokenString, secret string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}

	// JSON numbers decode as float64 in MapClaims.
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, fmt.Errorf("sub claim not found in token")
	}

	return int64(sub), nil
}
