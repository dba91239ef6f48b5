package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Store     StoreConfig     `yaml:"store"`
	Firebase  FirebaseConfig  `yaml:"firebase"`
	Auth      AuthConfig      `yaml:"auth"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	Stripe    StripeConfig    `yaml:"stripe"`
	Booking   BookingConfig   `yaml:"booking"`
	Session   SessionConfig   `yaml:"session"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Advisor   AdvisorConfig   `yaml:"advisor"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains the HTTP and gRPC listener settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"`
	// AllowedOrigins is the CORS allow-list of the booking site
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// StoreConfig selects where bookings and profiles live
type StoreConfig struct {
	Type string `yaml:"type"` // "postgres" or "firestore"
}

type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	StorageBucket   string `yaml:"storage_bucket"`
}

// AuthConfig selects the identity provider
type AuthConfig struct {
	Provider    string   `yaml:"provider"` // "firebase" or "jwt"
	AdminEmails []string `yaml:"admin_emails"`
}

// JWTConfig contains the local token settings used when auth.provider is "jwt"
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// StorageConfig contains document storage settings
type StorageConfig struct {
	Type      string `yaml:"type"`       // "mock" or "firebase"
	UploadDir string `yaml:"upload_dir"` // For mock storage
	BaseURL   string `yaml:"base_url"`   // Server base URL for mock URLs
}

type StripeConfig struct {
	SecretKey string `yaml:"secret_key"`
	ReturnURL string `yaml:"return_url"`
	Mock      bool   `yaml:"mock"`
}

// BookingConfig holds the commercial constants of the checkout
type BookingConfig struct {
	Company            string   `yaml:"company"`
	CatalogFile        string   `yaml:"catalog_file"`
	Currency           string   `yaml:"currency"`
	DeliveryFeeCents   int64    `yaml:"delivery_fee_cents"`
	DownPaymentCents   int64    `yaml:"down_payment_cents"`
	MaxDocumentSizeMB  int64    `yaml:"max_document_size_mb"`
	NotificationEmails []string `yaml:"notification_emails"`
}

// SessionConfig controls where checkout drafts are kept
type SessionConfig struct {
	Type           string `yaml:"type"` // "memory" or "redis"
	TTLMinutes     int    `yaml:"ttl_minutes"`
	BusyTTLSeconds int    `yaml:"busy_ttl_seconds"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// KafkaConfig enables booking events when brokers are set
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// SendGridConfig enables outgoing mail when an API key is set
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

type AdvisorConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	PendingDigest string `yaml:"pending_digest"`
}

// Load reads configuration from a YAML file. A .env file next to the
// working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Server
	setString(&c.Server.Host, "SERVER_HOST")
	setInt(&c.Server.Port, "SERVER_PORT")
	setInt(&c.Server.GRPCPort, "GRPC_PORT")

	// Database
	setString(&c.Database.Host, "DB_HOST")
	setInt(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Database, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSL_MODE")
	setString(&c.Store.Type, "STORE_TYPE")

	// Firebase
	setString(&c.Firebase.ProjectID, "FIREBASE_PROJECT_ID")
	setString(&c.Firebase.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&c.Firebase.StorageBucket, "FIREBASE_STORAGE_BUCKET")

	// Auth
	setString(&c.Auth.Provider, "AUTH_PROVIDER")
	if val := os.Getenv("ADMIN_EMAILS"); val != "" {
		c.Auth.AdminEmails = splitList(val)
	}
	setString(&c.JWT.Secret, "JWT_SECRET")

	// Storage
	setString(&c.Storage.Type, "STORAGE_TYPE")
	setString(&c.Storage.UploadDir, "UPLOAD_DIR")
	setString(&c.Storage.BaseURL, "STORAGE_BASE_URL")

	// Stripe
	setString(&c.Stripe.SecretKey, "STRIPE_SECRET_KEY")
	setString(&c.Stripe.ReturnURL, "STRIPE_RETURN_URL")

	// Session
	setString(&c.Session.Type, "SESSION_TYPE")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	// Kafka
	if val := os.Getenv("KAFKA_BROKERS"); val != "" {
		c.Kafka.Brokers = splitList(val)
	}
	setString(&c.Kafka.Topic, "KAFKA_TOPIC")

	// SendGrid
	setString(&c.SendGrid.APIKey, "SENDGRID_API_KEY")
	setString(&c.SendGrid.FromEmail, "SENDGRID_FROM_EMAIL")

	// Advisor
	setString(&c.Advisor.APIKey, "GEMINI_API_KEY")

	// Log
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.Server.GRPCPort)
	}

	// Store validation
	if c.Store.Type == "" {
		c.Store.Type = "postgres"
	}
	switch c.Store.Type {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	case "firestore":
		if c.Firebase.ProjectID == "" {
			return fmt.Errorf("firebase project id is required for the firestore store")
		}
	default:
		return fmt.Errorf("unknown store type: %s", c.Store.Type)
	}

	// Auth validation
	if c.Auth.Provider == "" {
		c.Auth.Provider = "firebase"
	}
	switch c.Auth.Provider {
	case "firebase":
		if c.Firebase.ProjectID == "" {
			return fmt.Errorf("firebase project id is required for firebase auth")
		}
	case "jwt":
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("JWT secret must be at least 32 characters")
		}
		if c.JWT.AccessTokenExpiry == 0 {
			c.JWT.AccessTokenExpiry = 60
		}
	default:
		return fmt.Errorf("unknown auth provider: %s", c.Auth.Provider)
	}

	// Storage validation
	if c.Storage.Type == "" {
		c.Storage.Type = "mock"
	}
	switch c.Storage.Type {
	case "mock":
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("upload directory is required")
		}
	case "firebase":
		if c.Firebase.StorageBucket == "" {
			return fmt.Errorf("firebase storage bucket is required")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage.Type)
	}

	// Stripe validation
	if !c.Stripe.Mock && c.Stripe.SecretKey == "" {
		return fmt.Errorf("stripe secret key is required unless stripe.mock is set")
	}

	// Booking defaults
	if c.Booking.Currency == "" {
		c.Booking.Currency = "eur"
	}
	if c.Booking.DeliveryFeeCents == 0 {
		c.Booking.DeliveryFeeCents = 3000 // 30 EUR
	}
	if c.Booking.DownPaymentCents == 0 {
		c.Booking.DownPaymentCents = 5000 // 50 EUR
	}
	if c.Booking.DeliveryFeeCents < 0 || c.Booking.DownPaymentCents < 0 {
		return fmt.Errorf("booking amounts must not be negative")
	}
	if c.Booking.MaxDocumentSizeMB == 0 {
		c.Booking.MaxDocumentSizeMB = 10
	}
	if len(c.Booking.NotificationEmails) == 0 {
		c.Booking.NotificationEmails = c.Auth.AdminEmails
	}

	// Session validation
	if c.Session.Type == "" {
		c.Session.Type = "memory"
	}
	if c.Session.Type != "memory" && c.Session.Type != "redis" {
		return fmt.Errorf("unknown session type: %s", c.Session.Type)
	}
	if c.Session.Type == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required for redis sessions")
	}
	if c.Session.TTLMinutes == 0 {
		c.Session.TTLMinutes = 120
	}
	if c.Session.BusyTTLSeconds == 0 {
		c.Session.BusyTTLSeconds = 60
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		c.Kafka.Topic = "bookings"
	}

	if c.Advisor.Enabled && c.Advisor.APIKey == "" {
		return fmt.Errorf("advisor api key is required when the advisor is enabled")
	}

	// Scheduler defaults
	if c.Scheduler.PendingDigest == "" {
		c.Scheduler.PendingDigest = "0 0 8 * * *" // 8 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the gRPC health server address, or "" when disabled
func (c *Config) GetGRPCAddress() string {
	if c.Server.GRPCPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

func (c *SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

func (c *SessionConfig) BusyTTL() time.Duration {
	return time.Duration(c.BusyTTLSeconds) * time.Second
}

func (c *BookingConfig) MaxDocumentBytes() int64 {
	return c.MaxDocumentSizeMB << 20
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setInt(dst *int, key string) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
