package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mail     MailConfig
	Queue    QueueConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	MetricsPort  int
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	GracefulStop int // seconds
}

type DatabaseConfig struct {
	Driver   string // postgres, sqlite
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
}

// MailConfig holds outbound mail settings. FromAddress, SupportAddress
// and SiteURL end up in rendered email bodies.
type MailConfig struct {
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	FromAddress    string
	SupportAddress string
	SiteURL        string
}

type QueueConfig struct {
	WorkerCount  int
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	RetryDelay   time.Duration
	SoftTimeout  time.Duration
	HardTimeout  time.Duration
}

type SecurityConfig struct {
	JWTSecret          string
	JWTExpirationHours int
}

// Load reads configuration from the environment, with a best-effort .env
// file on top of it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", ""),
			Port:         getEnvInt("PORT", 8080),
			MetricsPort:  getEnvInt("METRICS_PORT", 9090),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			GracefulStop: getEnvInt("SERVER_GRACEFUL_STOP", 30),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			Host:            getEnv("PGHOST", "localhost"),
			Port:            getEnvInt("PGPORT", 5432),
			Database:        getEnv("PGDATABASE", "booking"),
			Username:        getEnv("PGUSER", "postgres"),
			Password:        getEnv("PGPASSWORD", ""),
			SSLMode:         getEnv("PGSSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
		},
		Mail: MailConfig{
			SMTPHost:       getEnv("SMTP_HOST", "localhost"),
			SMTPPort:       getEnvInt("SMTP_PORT", 587),
			SMTPUsername:   getEnv("SMTP_USERNAME", ""),
			SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
			FromAddress:    getEnv("MAIL_FROM", "no-reply@stayloop.local"),
			SupportAddress: getEnv("MAIL_SUPPORT", "support@stayloop.local"),
			SiteURL:        getEnv("SITE_URL", "https://stayloop.local"),
		},
		Queue: QueueConfig{
			WorkerCount:  getEnvInt("QUEUE_WORKER_COUNT", 5),
			PollInterval: getEnvDuration("QUEUE_POLL_INTERVAL", 5*time.Second),
			BatchSize:    getEnvInt("QUEUE_BATCH_SIZE", 10),
			MaxAttempts:  getEnvInt("QUEUE_MAX_ATTEMPTS", 3),
			RetryDelay:   getEnvDuration("QUEUE_RETRY_DELAY", 60*time.Second),
			SoftTimeout:  getEnvDuration("QUEUE_SOFT_TIMEOUT", 5*time.Minute),
			HardTimeout:  getEnvDuration("QUEUE_HARD_TIMEOUT", 10*time.Minute),
		},
		Security: SecurityConfig{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			JWTExpirationHours: getEnvInt("JWT_EXPIRATION_HOURS", 24),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Queue.MaxAttempts <= 0 {
		return fmt.Errorf("QUEUE_MAX_ATTEMPTS must be positive")
	}
	if cfg.Queue.HardTimeout < cfg.Queue.SoftTimeout {
		return fmt.Errorf("QUEUE_HARD_TIMEOUT must not be below QUEUE_SOFT_TIMEOUT")
	}
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", cfg.Database.Driver)
	}
	return nil
}

// DSN returns the database connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	switch c.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
	case "sqlite":
		return c.Database
	default:
		return ""
	}
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) MetricsAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
