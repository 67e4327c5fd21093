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

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	IsDatabaseEnabled() bool
}

// RedisConfig provides Redis connection settings.
type RedisConfig interface {
	GetRedisURL() string
	IsRedisEnabled() bool
}

// JWTConfig provides JWT validation settings for admin middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// WebhookConfig provides settings for the inbound message webhook.
type WebhookConfig interface {
	GetWebhookAPIKey() string
}

// WhatsAppConfig provides settings for the WhatsApp gateway client.
type WhatsAppConfig interface {
	GetWhatsAppBaseURL() string
	GetWhatsAppAPIKey() string
	GetWhatsAppDeviceID() string
	IsWhatsAppEnabled() bool
}

// ExtractorConfig provides settings for the AI extraction agent.
type ExtractorConfig interface {
	GetExtractorAPIKey() string
	GetExtractorBaseURL() string
	GetExtractorModel() string
	GetExtractorTimeout() time.Duration
	IsExtractorEnabled() bool
}

// TranscribeConfig provides settings for voice note transcription.
type TranscribeConfig interface {
	GetOpenAIAPIKey() string
	GetOpenAIBaseURL() string
	GetTranscribeModel() string
	IsTranscribeEnabled() bool
}

// MailConfig provides settings for outbound SMTP mail.
type MailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetMailFromName() string
	GetMailFromAddress() string
	GetSalesDeskAddress() string
	IsMailEnabled() bool
}

// NotificationConfig provides the sales desk notification targets.
type NotificationConfig interface {
	GetSalesDeskAddress() string
	GetOpsWhatsAppNumber() string
}

// IntakeConfig provides settings for the IMAP email intake poller.
type IntakeConfig interface {
	GetIMAPHost() string
	GetIMAPPort() int
	GetIMAPUsername() string
	GetIMAPPassword() string
	GetIntakeFolder() string
	GetIntakePollInterval() time.Duration
	IsIntakeEnabled() bool
}

// ArchiveConfig provides settings for MinIO proforma storage.
type ArchiveConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketProformas() string
	IsArchiveEnabled() bool
}

// PricingConfig provides the commercial constants of the calculator.
type PricingConfig interface {
	GetFixedCost() float64
	GetFreightMin() float64
	GetFreightMax() float64
}

// SessionConfig provides conversation session lifecycle settings.
type SessionConfig interface {
	GetSessionTTL() time.Duration
	GetDedupeTTL() time.Duration
	GetFollowUpDelay() time.Duration
}

// SchedulerConfig provides settings for the asynq follow-up scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetFollowUpDelay() time.Duration
}

// CatalogConfig provides settings for the price sheet fallback source.
type CatalogConfig interface {
	GetPriceSheetPath() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	RedisURL             string
	RedisTLSInsecure     bool
	AsynqQueue           string
	AsynqConcurrency     int
	JWTAccessSecret      string
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	WebhookAPIKey        string
	WhatsAppBaseURL      string
	WhatsAppAPIKey       string
	WhatsAppDeviceID     string
	ExtractorAPIKey      string
	ExtractorBaseURL     string
	ExtractorModel       string
	ExtractorTimeout     time.Duration
	ExtractorEnabled     bool
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	TranscribeModel      string
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	MailEnabled          bool
	MailFromName         string
	MailFromAddress      string
	SalesDeskAddress     string
	OpsWhatsAppNumber    string
	IMAPHost             string
	IMAPPort             int
	IMAPUsername         string
	IMAPPassword         string
	IntakeFolder         string
	IntakePollInterval   time.Duration
	MinIOEndpoint        string
	MinIOAccessKey       string
	MinIOSecretKey       string
	MinIOUseSSL          bool
	MinioBucketProformas string
	FixedCost            float64
	FreightMin           float64
	FreightMax           float64
	SessionTTL           time.Duration
	DedupeTTL            time.Duration
	FollowUpDelay        time.Duration
	PriceSheetPath       string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string  { return c.DatabaseURL }
func (c *Config) IsDatabaseEnabled() bool { return c.DatabaseURL != "" }

// RedisConfig implementation
func (c *Config) GetRedisURL() string  { return c.RedisURL }
func (c *Config) IsRedisEnabled() bool { return c.RedisURL != "" }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// WebhookConfig implementation
func (c *Config) GetWebhookAPIKey() string { return c.WebhookAPIKey }

// WhatsAppConfig implementation
func (c *Config) GetWhatsAppBaseURL() string  { return c.WhatsAppBaseURL }
func (c *Config) GetWhatsAppAPIKey() string   { return c.WhatsAppAPIKey }
func (c *Config) GetWhatsAppDeviceID() string { return c.WhatsAppDeviceID }
func (c *Config) IsWhatsAppEnabled() bool     { return c.WhatsAppBaseURL != "" }

// ExtractorConfig implementation
func (c *Config) GetExtractorAPIKey() string         { return c.ExtractorAPIKey }
func (c *Config) GetExtractorBaseURL() string        { return c.ExtractorBaseURL }
func (c *Config) GetExtractorModel() string          { return c.ExtractorModel }
func (c *Config) GetExtractorTimeout() time.Duration { return c.ExtractorTimeout }
func (c *Config) IsExtractorEnabled() bool {
	return c.ExtractorEnabled && c.ExtractorAPIKey != ""
}

// TranscribeConfig implementation
func (c *Config) GetOpenAIAPIKey() string    { return c.OpenAIAPIKey }
func (c *Config) GetOpenAIBaseURL() string   { return c.OpenAIBaseURL }
func (c *Config) GetTranscribeModel() string { return c.TranscribeModel }
func (c *Config) IsTranscribeEnabled() bool  { return c.OpenAIAPIKey != "" }

// MailConfig implementation
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetMailFromName() string     { return c.MailFromName }
func (c *Config) GetMailFromAddress() string  { return c.MailFromAddress }
func (c *Config) GetSalesDeskAddress() string { return c.SalesDeskAddress }
func (c *Config) IsMailEnabled() bool         { return c.MailEnabled && c.SMTPHost != "" }

// NotificationConfig implementation
func (c *Config) GetOpsWhatsAppNumber() string { return c.OpsWhatsAppNumber }

// IntakeConfig implementation
func (c *Config) GetIMAPHost() string                  { return c.IMAPHost }
func (c *Config) GetIMAPPort() int                     { return c.IMAPPort }
func (c *Config) GetIMAPUsername() string              { return c.IMAPUsername }
func (c *Config) GetIMAPPassword() string              { return c.IMAPPassword }
func (c *Config) GetIntakeFolder() string              { return c.IntakeFolder }
func (c *Config) GetIntakePollInterval() time.Duration { return c.IntakePollInterval }
func (c *Config) IsIntakeEnabled() bool                { return c.IMAPHost != "" && c.IMAPUsername != "" }

// ArchiveConfig implementation
func (c *Config) GetMinIOEndpoint() string        { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string       { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string       { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool            { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketProformas() string { return c.MinioBucketProformas }
func (c *Config) IsArchiveEnabled() bool          { return c.MinIOEndpoint != "" }

// PricingConfig implementation
func (c *Config) GetFixedCost() float64  { return c.FixedCost }
func (c *Config) GetFreightMin() float64 { return c.FreightMin }
func (c *Config) GetFreightMax() float64 { return c.FreightMax }

// SessionConfig implementation
func (c *Config) GetSessionTTL() time.Duration    { return c.SessionTTL }
func (c *Config) GetDedupeTTL() time.Duration     { return c.DedupeTTL }
func (c *Config) GetFollowUpDelay() time.Duration { return c.FollowUpDelay }

// SchedulerConfig implementation
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueue }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// CatalogConfig implementation
func (c *Config) GetPriceSheetPath() string { return c.PriceSheetPath }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	mailEnabled := strings.EqualFold(getEnv("MAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisTLSInsecure:     strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueue:           getEnv("ASYNQ_QUEUE", "quoting"),
		AsynqConcurrency:     int(mustInt64(getEnv("ASYNQ_CONCURRENCY", "5"))),
		JWTAccessSecret:      getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		WebhookAPIKey:        getEnv("WEBHOOK_API_KEY", ""),
		WhatsAppBaseURL:      strings.TrimRight(getEnv("WHATSAPP_BASE_URL", ""), "/"),
		WhatsAppAPIKey:       getEnv("WHATSAPP_API_KEY", ""),
		WhatsAppDeviceID:     getEnv("WHATSAPP_DEVICE_ID", ""),
		ExtractorAPIKey:      getEnv("EXTRACTOR_API_KEY", getEnv("OPENAI_API_KEY", "")),
		ExtractorBaseURL:     getEnv("EXTRACTOR_BASE_URL", ""),
		ExtractorModel:       getEnv("EXTRACTOR_MODEL", "gpt-4o-mini"),
		ExtractorTimeout:     mustDuration(getEnv("EXTRACTOR_TIMEOUT", "8s")),
		ExtractorEnabled:     strings.EqualFold(getEnv("EXTRACTOR_ENABLED", "true"), "true"),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", ""),
		TranscribeModel:      getEnv("TRANSCRIBE_MODEL", "whisper-1"),
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             int(mustInt64(getEnv("SMTP_PORT", "587"))),
		SMTPUsername:         getEnv("SMTP_USERNAME", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		MailEnabled:          mailEnabled,
		MailFromName:         getEnv("MAIL_FROM_NAME", "BGR Export"),
		MailFromAddress:      getEnv("MAIL_FROM_ADDRESS", ""),
		SalesDeskAddress:     getEnv("SALES_DESK_ADDRESS", ""),
		OpsWhatsAppNumber:    getEnv("OPS_WHATSAPP_NUMBER", ""),
		IMAPHost:             getEnv("IMAP_HOST", ""),
		IMAPPort:             int(mustInt64(getEnv("IMAP_PORT", "993"))),
		IMAPUsername:         getEnv("IMAP_USERNAME", ""),
		IMAPPassword:         getEnv("IMAP_PASSWORD", ""),
		IntakeFolder:         getEnv("IMAP_FOLDER", "INBOX"),
		IntakePollInterval:   mustDuration(getEnv("IMAP_POLL_INTERVAL", "1m")),
		MinIOEndpoint:        getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:       getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:       getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:          strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketProformas: getEnv("MINIO_BUCKET_PROFORMAS", "proformas"),
		FixedCost:            mustFloat(getEnv("PRICING_FIXED_COST", "0.29")),
		FreightMin:           mustFloat(getEnv("PRICING_FREIGHT_MIN", "0.01")),
		FreightMax:           mustFloat(getEnv("PRICING_FREIGHT_MAX", "5.00")),
		SessionTTL:           mustDuration(getEnv("SESSION_TTL", "24h")),
		DedupeTTL:            mustDuration(getEnv("DEDUPE_TTL", "5m")),
		FollowUpDelay:        mustDuration(getEnv("FOLLOWUP_DELAY", "24h")),
		PriceSheetPath:       getEnv("PRICE_SHEET_PATH", ""),
	}

	if cfg.Env == "production" && cfg.WebhookAPIKey == "" {
		return nil, fmt.Errorf("WEBHOOK_API_KEY is required in production")
	}
	if cfg.Env == "production" && cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required in production")
	}
	if mailEnabled && cfg.SMTPHost != "" && cfg.MailFromAddress == "" {
		return nil, fmt.Errorf("MAIL_FROM_ADDRESS is required when SMTP is configured")
	}
	if cfg.IsIntakeEnabled() && !cfg.IsMailEnabled() {
		return nil, fmt.Errorf("SMTP settings are required when IMAP intake is enabled")
	}
	if cfg.FixedCost < 0 {
		return nil, fmt.Errorf("PRICING_FIXED_COST must not be negative")
	}
	if cfg.FreightMin <= 0 || cfg.FreightMax <= cfg.FreightMin {
		return nil, fmt.Errorf("PRICING_FREIGHT_MIN and PRICING_FREIGHT_MAX must describe a positive band")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
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
