package environments

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	SMS      SMSConfig
	Tracking TrackingConfig
	Auth     AuthConfig
	Stripe   StripeConfig
	Mail     MailConfig
	Chat     ChatConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SMSConfig holds credentials for the SMS gateway (Twilio-compatible REST API).
type SMSConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
	Timeout    time.Duration
}

// TrackingConfig controls the tracking link embedded in outbound SMS.
// MessageTemplate must contain a single %s placeholder for the URL.
type TrackingConfig struct {
	BaseURL         string
	MessageTemplate string
}

type AuthConfig struct {
	JWTSecret          string
	JWTTTL             time.Duration
	PhoneInfoAPIKey    string
	HousekeepingAPIKey string
	ChatAPIKey         string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
	Amount        int64
	Currency      string
	CreditBundle  int
}

type MailConfig struct {
	APIKey    string
	FromName  string
	FromEmail string
	Subject   string
}

type ChatConfig struct {
	APIKey       string
	Model        string
	SystemPrompt string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: GetEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     GetEnv("DB_PORT", "3306"),
			User:     GetEnv("DB_USER", "fullgeo"),
			Password: GetEnv("DB_PASSWORD", "fullgeo123"),
			DBName:   GetEnv("DB_NAME", "fullgeo"),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		SMS: SMSConfig{
			AccountSID: GetEnv("SMS_ACCOUNT_SID", ""),
			AuthToken:  GetEnv("SMS_AUTH_TOKEN", ""),
			FromNumber: GetEnv("SMS_FROM_NUMBER", ""),
			BaseURL:    GetEnv("SMS_BASE_URL", "https://api.twilio.com"),
			Timeout:    time.Duration(GetEnvAsInt("SMS_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Tracking: TrackingConfig{
			BaseURL:         GetEnv("TRACKING_BASE_URL", "https://app.fullgeo.io/track"),
			MessageTemplate: GetEnv("TRACKING_SMS_TEMPLATE", "Someone shared their location with you. Open to view: %s"),
		},
		Auth: AuthConfig{
			JWTSecret:          GetEnv("JWT_SECRET", ""),
			JWTTTL:             GetEnvAsDuration("JWT_TTL", 24*time.Hour),
			PhoneInfoAPIKey:    GetEnv("PHONE_INFO_API_KEY", ""),
			HousekeepingAPIKey: GetEnv("HOUSEKEEPING_API_KEY", ""),
			ChatAPIKey:         GetEnv("CHAT_API_KEY", ""),
		},
		Stripe: StripeConfig{
			SecretKey:     GetEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: GetEnv("STRIPE_WEBHOOK_SECRET", ""),
			PriceID:       GetEnv("STRIPE_PRICE_ID", ""),
			Amount:        int64(GetEnvAsInt("CHECKOUT_AMOUNT_CENTS", 999)),
			Currency:      GetEnv("CHECKOUT_CURRENCY", "usd"),
			CreditBundle:  GetEnvAsInt("CREDITS_PER_PURCHASE", 10),
		},
		Mail: MailConfig{
			APIKey:    GetEnv("RESEND_API_KEY", ""),
			FromName:  GetEnv("MAIL_FROM_NAME", "Fullgeo"),
			FromEmail: GetEnv("MAIL_FROM_EMAIL", "no-reply@fullgeo.io"),
			Subject:   GetEnv("MAIL_SUBJECT", "Your Fullgeo account"),
		},
		Chat: ChatConfig{
			APIKey:       GetEnv("OPENAI_API_KEY", ""),
			Model:        GetEnv("CHAT_MODEL", "gpt-4o-mini"),
			SystemPrompt: GetEnv("CHAT_SYSTEM_PROMPT", "You are the Fullgeo support assistant. Answer questions about phone location tracking, credits and billing. Be brief and polite."),
		},
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
