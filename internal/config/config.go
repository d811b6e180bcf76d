// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application. Everything is
// env-driven; main loads .env via godotenv before calling Load.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	SMTP     SMTPConfig
	IMAP     IMAPConfig
	Gemini   GeminiConfig
	Bridge   BridgeConfig
	AMQP     AMQPConfig
	Workers  WorkerConfig
	FollowUp FollowUpConfig
}

type ServerConfig struct {
	Port string
}

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

// DSN builds the postgres connection string the way the original deployment
// configured it (individual DB_* variables, sslmode disabled).
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
	FromAddr string
}

type IMAPConfig struct {
	Addr     string // host:port, implicit TLS
	Username string
	Password string
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type BridgeConfig struct {
	BaseURL string // LinkedIn automation sidecar
}

type AMQPConfig struct {
	URL   string // empty disables the AMQP publisher
	Queue string
}

type WorkerConfig struct {
	DraftingInterval    time.Duration
	FollowUpInterval    time.Duration
	SendingInterval     time.Duration
	InboundInterval     time.Duration
	CollaboratorTimeout time.Duration
}

// FollowUpConfig is the outreach cadence policy.
type FollowUpConfig struct {
	MaxFollowUps    int
	Delay           time.Duration
	FetchRetries    int
	FetchRetryDelay time.Duration
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "5001"),
		},
		DB: DBConfig{
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "outreach"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getInt("SMTP_PORT", 587),
			Username: getEnv("EMAIL_USER", ""),
			Password: getEnv("EMAIL_PASS", ""),
			FromName: getEnv("EMAIL_FROM_NAME", "Outreach"),
			FromAddr: getEnv("EMAIL_FROM_ADDR", getEnv("EMAIL_USER", "")),
		},
		IMAP: IMAPConfig{
			Addr:     getEnv("IMAP_ADDR", "imap.gmail.com:993"),
			Username: getEnv("EMAIL_USER", ""),
			Password: getEnv("EMAIL_PASS", ""),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		},
		Bridge: BridgeConfig{
			BaseURL: getEnv("LINKEDIN_BRIDGE_URL", "http://localhost:4444"),
		},
		AMQP: AMQPConfig{
			URL:   getEnv("AMQP_URL", ""),
			Queue: getEnv("AMQP_QUEUE", "outreach_events"),
		},
		Workers: WorkerConfig{
			DraftingInterval:    getDuration("DRAFTING_INTERVAL", time.Minute),
			FollowUpInterval:    getDuration("FOLLOWUP_INTERVAL", 30*time.Second),
			SendingInterval:     getDuration("SENDING_INTERVAL", 15*time.Second),
			InboundInterval:     getDuration("INBOUND_INTERVAL", 2*time.Minute),
			CollaboratorTimeout: getDuration("COLLABORATOR_TIMEOUT", 30*time.Second),
		},
		FollowUp: FollowUpConfig{
			MaxFollowUps:    getInt("MAX_FOLLOW_UPS", 3),
			Delay:           getDuration("FOLLOW_UP_DELAY", 72*time.Hour),
			FetchRetries:    getInt("INBOUND_FETCH_RETRIES", 3),
			FetchRetryDelay: getDuration("INBOUND_FETCH_RETRY_DELAY", 1500*time.Millisecond),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
