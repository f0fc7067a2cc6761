package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/glebarez/sqlite"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	JWTSecret string

	Port        string
	Environment string
	LogLevel    string
	ServiceName string
	CORSOrigins []string
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present. Connection settings are
// returned as-is (empty when unset); only process-level settings get defaults.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "formbase.db"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ServiceName: getEnv("SERVICE_NAME", "formbase-api"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}
}

// Validate rejects settings the server cannot run with. Tokens are signed
// with JWTSecret, so an empty one is refused.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.JWTSecret, validation.Required.Error("JWT_SECRET is required")),
		validation.Field(&c.DBDriver, validation.By(knownDriver)),
	)
}

func knownDriver(value interface{}) error {
	switch strings.ToLower(value.(string)) {
	case "postgres", "sqlite", "":
		return nil
	}
	return errors.New("DB_DRIVER must be postgres or sqlite")
}

// DSN is the postgres connection string.
func (c Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode
}

// OpenDatabase connects to the configured store. Unique-index failures are
// translated to gorm.ErrDuplicatedKey.
func OpenDatabase(c Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	switch strings.ToLower(c.DBDriver) {
	case "sqlite":
		return gorm.Open(sqlite.Open(c.SQLitePath), gormCfg)
	case "postgres", "":
		return gorm.Open(postgres.Open(c.DSN()), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
