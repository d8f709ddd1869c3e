package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/quickgeo/fullgeo-backend/environments"
	"github.com/quickgeo/fullgeo-backend/internal/domain"
	"github.com/quickgeo/fullgeo-backend/pkg/logger"
	"github.com/quickgeo/fullgeo-backend/pkg/mailer"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
)

const (
	passwordLength = 12
	passwordChars  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type accountRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Upsert(ctx context.Context, name, email, passwordHash string, credits int, subscriptionID *string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	InsertUnsubscribe(ctx context.Context, email string) error
	IsUnsubscribed(ctx context.Context, email string) (bool, error)
}

type credentialMailer interface {
	SendCredentials(ctx context.Context, creds mailer.Credentials, lang string) error
}

type AccountService struct {
	repo  accountRepository
	mail  credentialMailer
	cache CreditCache
	auth  environments.AuthConfig
}

func NewAccountService(repo accountRepository, mail credentialMailer, cache CreditCache, auth environments.AuthConfig) *AccountService {
	return &AccountService{
		repo:  repo,
		mail:  mail,
		cache: cache,
		auth:  auth,
	}
}

// Login verifies the credentials and returns a signed bearer token.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	account, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return "", fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		return "", ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub": account.ID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(s.auth.JWTTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.auth.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Provision creates or refreshes the account for a paying customer: fresh
// random password, purchased credits added, credentials emailed once. Only
// the bcrypt hash is stored.
func (s *AccountService) Provision(ctx context.Context, name, email, locale string, credits int, subscriptionID *string) error {
	email = strings.ToLower(email)

	password, err := generatePassword()
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.Upsert(ctx, name, email, string(hash), credits, subscriptionID); err != nil {
		return err
	}

	// The granted credits must be visible to the next send immediately; a
	// balance cached at zero would otherwise block a freshly paid account
	// until the entry expires.
	s.invalidateBalance(ctx, email)

	s.sendCredentials(ctx, name, email, password, locale)

	return nil
}

func (s *AccountService) invalidateBalance(ctx context.Context, email string) {
	if s.cache == nil {
		return
	}

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil || account == nil {
		logger.Warnf("Could not resolve account %s for credit cache invalidation: %v", email, err)
		return
	}

	if err := s.cache.InvalidateCredits(ctx, account.ID); err != nil {
		logger.Warnf("Failed to invalidate cached credits for account %d: %v", account.ID, err)
	}
}

// ResetPassword regenerates the account password and emails it.
func (s *AccountService) ResetPassword(ctx context.Context, email, lang string) error {
	email = strings.ToLower(email)

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		return ErrAccountNotFound
	}

	password, err := generatePassword()
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, email, string(hash)); err != nil {
		return err
	}

	s.sendCredentials(ctx, account.Name, email, password, lang)

	return nil
}

// Unsubscribe records an email opt-out; repeated calls are no-ops.
func (s *AccountService) Unsubscribe(ctx context.Context, email string) error {
	return s.repo.InsertUnsubscribe(ctx, strings.ToLower(email))
}

// sendCredentials delivers the credential email unless the address opted
// out. Mail failures are logged but never fail the calling flow.
func (s *AccountService) sendCredentials(ctx context.Context, name, email, password, lang string) {
	unsubscribed, err := s.repo.IsUnsubscribed(ctx, email)
	if err != nil {
		logger.Warnf("Failed to check unsubscribe list for %s: %v", email, err)
	}
	if unsubscribed {
		logger.Infof("Skipping credentials email for unsubscribed address %s", email)
		return
	}

	creds := mailer.Credentials{Name: name, Email: email, Password: password}
	if err := s.mail.SendCredentials(ctx, creds, lang); err != nil {
		logger.Errorf("Failed to send credentials email to %s: %v", email, err)
	}
}

func generatePassword() (string, error) {
	password := make([]byte, passwordLength)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		password[i] = passwordChars[n.Int64()]
	}
	return string(password), nil
}
