// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Retry and polling defaults. The quote API answers slowly, so the request
// timeout is generous; transport failures get a small fixed-delay budget.
const (
	DefaultQuoteRequestTimeout = 60 * time.Second
	DefaultQuoteMaxRetries     = 2
	DefaultQuoteRetryDelay     = 2 * time.Second
	DefaultPollInterval        = 5 * time.Second
	DefaultPollMaxAttempts     = 30
	DefaultSessionTTL          = 2 * time.Hour
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// QuoteAPIConfig provides settings for the external quoting API client.
type QuoteAPIConfig interface {
	GetQuoteAPIURL() string
	GetQuoteSource() string
	GetQuoteRequestTimeout() time.Duration
	GetQuoteMaxRetries() int
	GetQuoteRetryDelay() time.Duration
}

// PollConfig provides settings for resolving pending quotes.
type PollConfig interface {
	GetPollInterval() time.Duration
	GetPollMaxAttempts() int
}

// LeadTransferConfig provides settings for the lead transfer API.
type LeadTransferConfig interface {
	GetLeadTransferURL() string
	GetLeadTransferPublicHost() string
	IsLeadTransferEnabled() bool
}

// SMTPConfig provides settings for the SMTP relay.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUser() string
	GetSMTPPass() string
	GetSMTPSecure() bool
	GetEmailFromAddress() string
	GetEmailFromName() string
	GetNotificationEmails() []string
	IsSMTPEnabled() bool
}

// RedisConfig provides settings for the Redis-backed session store.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetSessionTTL() time.Duration
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                    string
	HTTPAddr               string
	CORSAllowAll           bool
	CORSOrigins            []string
	DatabaseURL            string
	QuoteAPIURL            string
	QuoteSource            string
	QuoteRequestTimeout    time.Duration
	QuoteMaxRetries        int
	QuoteRetryDelay        time.Duration
	PollInterval           time.Duration
	PollMaxAttempts        int
	LeadTransferURL        string
	LeadTransferPublicHost string
	SMTPHost               string
	SMTPPort               int
	SMTPUser               string
	SMTPPass               string
	SMTPSecure             bool
	EmailFromAddress       string
	EmailFromName          string
	NotificationEmails     []string
	RedisURL               string
	RedisTLSInsecure       bool
	SessionTTL             time.Duration
	AsynqQueueName         string
	AsynqConcurrency       int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string  { return c.DatabaseURL }
func (c *Config) IsDatabaseEnabled() bool { return c.DatabaseURL != "" }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// QuoteAPIConfig implementation
func (c *Config) GetQuoteAPIURL() string                { return c.QuoteAPIURL }
func (c *Config) GetQuoteSource() string                { return c.QuoteSource }
func (c *Config) GetQuoteRequestTimeout() time.Duration { return c.QuoteRequestTimeout }
func (c *Config) GetQuoteMaxRetries() int               { return c.QuoteMaxRetries }
func (c *Config) GetQuoteRetryDelay() time.Duration     { return c.QuoteRetryDelay }

// PollConfig implementation
func (c *Config) GetPollInterval() time.Duration { return c.PollInterval }
func (c *Config) GetPollMaxAttempts() int        { return c.PollMaxAttempts }

// LeadTransferConfig implementation
func (c *Config) GetLeadTransferURL() string        { return c.LeadTransferURL }
func (c *Config) GetLeadTransferPublicHost() string { return c.LeadTransferPublicHost }
func (c *Config) IsLeadTransferEnabled() bool       { return c.LeadTransferURL != "" }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string             { return c.SMTPHost }
func (c *Config) GetSMTPPort() int                { return c.SMTPPort }
func (c *Config) GetSMTPUser() string             { return c.SMTPUser }
func (c *Config) GetSMTPPass() string             { return c.SMTPPass }
func (c *Config) GetSMTPSecure() bool             { return c.SMTPSecure }
func (c *Config) GetEmailFromAddress() string     { return c.EmailFromAddress }
func (c *Config) GetEmailFromName() string        { return c.EmailFromName }
func (c *Config) GetNotificationEmails() []string { return c.NotificationEmails }
func (c *Config) IsSMTPEnabled() bool             { return c.SMTPHost != "" }

// RedisConfig / SchedulerConfig implementation
func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool    { return c.RedisTLSInsecure }
func (c *Config) GetSessionTTL() time.Duration { return c.SessionTTL }
func (c *Config) GetAsynqQueueName() string    { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int     { return c.AsynqConcurrency }
func (c *Config) IsRedisEnabled() bool         { return c.RedisURL != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:           corsAllowAll,
		CORSOrigins:            corsOrigins,
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		QuoteAPIURL:            strings.TrimRight(getEnv("QUOTE_API_URL", "http://localhost:4000/api/v1/quote"), "/"),
		QuoteSource:            getEnv("QUOTE_SOURCE", "SureStrat-Portal"),
		QuoteRequestTimeout:    durationOr(getEnv("QUOTE_REQUEST_TIMEOUT", ""), DefaultQuoteRequestTimeout),
		QuoteMaxRetries:        intOr(getEnv("QUOTE_MAX_RETRIES", ""), DefaultQuoteMaxRetries),
		QuoteRetryDelay:        durationOr(getEnv("QUOTE_RETRY_DELAY", ""), DefaultQuoteRetryDelay),
		PollInterval:           durationOr(getEnv("QUOTE_POLL_INTERVAL", ""), DefaultPollInterval),
		PollMaxAttempts:        intOr(getEnv("QUOTE_POLL_MAX_ATTEMPTS", ""), DefaultPollMaxAttempts),
		LeadTransferURL:        getEnv("LEAD_TRANSFER_URL", ""),
		LeadTransferPublicHost: getEnv("LEAD_TRANSFER_PUBLIC_HOST", "web.pineapple.co.za"),
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               intOr(getEnv("SMTP_PORT", ""), 465),
		SMTPUser:               getEnv("SMTP_USER", ""),
		SMTPPass:               getEnv("SMTP_PASS", ""),
		SMTPSecure:             !strings.EqualFold(getEnv("SMTP_SECURE", "true"), "false"),
		EmailFromAddress:       getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailFromName:          getEnv("EMAIL_FROM_NAME", "Quote Portal"),
		NotificationEmails:     splitCSV(getEnv("NOTIFICATION_EMAILS", "")),
		RedisURL:               getEnv("REDIS_URL", ""),
		RedisTLSInsecure:       strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		SessionTTL:             durationOr(getEnv("SESSION_TTL", ""), DefaultSessionTTL),
		AsynqQueueName:         getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:       intOr(getEnv("ASYNQ_CONCURRENCY", ""), 5),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface as runtime surprises.
func (c *Config) Validate() error {
	if c.QuoteAPIURL == "" {
		return fmt.Errorf("QUOTE_API_URL is required")
	}
	if c.QuoteRequestTimeout <= 0 {
		return fmt.Errorf("QUOTE_REQUEST_TIMEOUT must be positive")
	}
	if c.QuoteMaxRetries < 0 {
		return fmt.Errorf("QUOTE_MAX_RETRIES cannot be negative")
	}
	if c.PollInterval <= 0 || c.PollMaxAttempts <= 0 {
		return fmt.Errorf("QUOTE_POLL_INTERVAL and QUOTE_POLL_MAX_ATTEMPTS must be positive")
	}
	if c.IsSMTPEnabled() && c.EmailFromAddress == "" {
		return fmt.Errorf("EMAIL_FROM_ADDRESS is required when SMTP_HOST is set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func durationOr(value string, fallback time.Duration) time.Duration {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func intOr(value string, fallback int) int {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
