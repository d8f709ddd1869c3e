package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/quickgeo/fullgeo-backend/environments"
	"github.com/quickgeo/fullgeo-backend/internal/domain"
	"github.com/quickgeo/fullgeo-backend/internal/service"
	"github.com/quickgeo/fullgeo-backend/pkg/mailer"
	"github.com/quickgeo/fullgeo-backend/pkg/response"
)

//
// Test fakes – only for this file.
//

type stubAccountRepo struct {
	accounts map[string]*domain.Account
}

func (r *stubAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.accounts[email], nil
}

func (r *stubAccountRepo) Upsert(ctx context.Context, name, email, passwordHash string, credits int, subscriptionID *string) error {
	return nil
}

func (r *stubAccountRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return nil
}

func (r *stubAccountRepo) InsertUnsubscribe(ctx context.Context, email string) error {
	return nil
}

func (r *stubAccountRepo) IsUnsubscribed(ctx context.Context, email string) (bool, error) {
	return false, nil
}

type stubMailer struct{}

func (m *stubMailer) SendCredentials(ctx context.Context, creds mailer.Credentials, lang string) error {
	return nil
}

func newAuthTestHandler(t *testing.T, repo *stubAccountRepo) *AuthHandler {
	t.Helper()

	svc := service.NewAccountService(repo, &stubMailer{}, nil, environments.AuthConfig{
		JWTSecret: "test-secret",
		JWTTTL:    time.Hour,
	})
	return NewAuthHandler(svc)
}

//
// Tests
//

func TestLogin_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	handler := newAuthTestHandler(t, &stubAccountRepo{
		accounts: map[string]*domain.Account{
			"jane@example.com": {ID: 1, Email: "jane@example.com", PasswordHash: string(hash)},
		},
	})

	body := `{"email": "jane@example.com", "password": "hunter22"}`
	c, rec := newTestContext(t, http.MethodPost, "/api/login", body)

	if err := handler.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d (body: %s)", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatalf("expected a token in the response")
	}
}

func TestLogin_WrongCredentials(t *testing.T) {
	handler := newAuthTestHandler(t, &stubAccountRepo{})

	body := `{"email": "nobody@example.com", "password": "wrong"}`
	c, rec := newTestContext(t, http.MethodPost, "/api/login", body)

	if err := handler.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}

	var resp response.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	if resp.Error != "Invalid email or password" {
		t.Fatalf("expected error %q, got %q", "Invalid email or password", resp.Error)
	}
}

func TestLogin_MalformedEmail(t *testing.T) {
	handler := newAuthTestHandler(t, &stubAccountRepo{})

	body := `{"email": "not-an-email", "password": "whatever"}`
	c, rec := newTestContext(t, http.MethodPost, "/api/login", body)

	if err := handler.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}
}

func TestResetPassword_UnknownAccount(t *testing.T) {
	handler := newAuthTestHandler(t, &stubAccountRepo{})

	body := `{"email": "nobody@example.com"}`
	c, rec := newTestContext(t, http.MethodPost, "/api/reset-psw", body)

	if err := handler.ResetPassword(c); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestUnsubscribe_Ok(t *testing.T) {
	handler := newAuthTestHandler(t, &stubAccountRepo{})

	body := `{"email": "jane@example.com"}`
	c, rec := newTestContext(t, http.MethodPost, "/api/unsubscribe", body)

	if err := handler.Unsubscribe(c); err != nil {
		t.Fatalf("Unsubscribe returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
