package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func baseConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "sqlite", Database: "test.db"},
		Queue: QueueConfig{
			MaxAttempts: 3,
			SoftTimeout: 5 * time.Minute,
			HardTimeout: 10 * time.Minute,
		},
		Security: SecurityConfig{JWTSecret: "secret"},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validate(baseConfig()))

	cfg := baseConfig()
	cfg.Security.JWTSecret = ""
	require.Error(t, validate(cfg))

	cfg = baseConfig()
	cfg.Queue.MaxAttempts = 0
	require.Error(t, validate(cfg))

	cfg = baseConfig()
	cfg.Queue.HardTimeout = time.Minute
	require.Error(t, validate(cfg))

	cfg = baseConfig()
	cfg.Database.Driver = "mongodb"
	require.Error(t, validate(cfg))
}

func TestDSN(t *testing.T) {
	pg := &DatabaseConfig{
		Driver: "postgres", Host: "dbhost", Port: 5433,
		Username: "u", Password: "p", Database: "booking", SSLMode: "disable",
	}
	require.Equal(t,
		"host=dbhost port=5433 user=u password=p dbname=booking sslmode=disable",
		pg.DSN())

	lite := &DatabaseConfig{Driver: "sqlite", Database: "booking.db"}
	require.Equal(t, "booking.db", lite.DSN())
}
