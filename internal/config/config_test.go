package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Driver: "postgres",
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "test",
				Password: "test",
				Database: "test_db",
			},
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		Mirror: MirrorConfig{
			Sink:   "redis",
			Stream: "cashdesk:mirror",
		},
		Auth: AuthConfig{JWTSecret: "secret"},
	}
}

func TestConfig_Validate_Success(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_SQLiteDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = "sqlite"
	cfg.Store.SQLite.Path = "./data/test.db"
	assert.NoError(t, cfg.Validate())

	cfg.Store.SQLite.Path = ""
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.sqlite.path")
}

func TestConfig_Validate_InvalidServerPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"port too low", 0},
		{"port negative", -1},
		{"port too high", 99999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "server.port")
		})
	}
}

func TestConfig_Validate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
}

func TestConfig_Validate_WebhookSinkRequiresURL(t *testing.T) {
	cfg := validConfig()
	cfg.Mirror.Sink = "webhook"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mirror.webhook_url")

	cfg.Mirror.WebhookURL = "http://localhost:9090/mirror"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_MissingJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret")
}

func TestDatabaseDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host: "db", Port: 5433, User: "u", Password: "p", Database: "cash", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=cash sslmode=disable", cfg.DatabaseDSN())
}

func TestRedisAddr(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
}
