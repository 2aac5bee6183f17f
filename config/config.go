package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Token      TokenConfig
	AWS        AWSConfig
	SuperAdmin SuperAdminConfig
	App        AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds admin JWT signing and validation settings.
type JWTConfig struct {
	Secret               string
	AdminExpireHours     int
	SuperAdminExpireMins int
}

// TokenConfig holds the short-lived participant access token settings.
type TokenConfig struct {
	TTLMinutes int
}

// AWSConfig holds AWS credentials and S3 bucket names.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	AssetsBucket         string
	ExportsBucket        string
	PresignExpireMinutes int
}

// SuperAdminConfig holds the env-configured superadmin credential.
// Password may be a bcrypt hash or plain text.
type SuperAdminConfig struct {
	Email    string
	Password string
}

// AppConfig holds front-end facing settings.
type AppConfig struct {
	// PlayBaseURL is the phone questionnaire URL encoded into QR codes,
	// e.g. https://kiosk.example.com/play.
	PlayBaseURL string
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "signage"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:               getEnv("JWT_SECRET", "change-me-in-production"),
			AdminExpireHours:     getEnvInt("JWT_ADMIN_EXPIRE_HOURS", 168),
			SuperAdminExpireMins: getEnvInt("JWT_SUPERADMIN_EXPIRE_MINUTES", 30),
		},
		Token: TokenConfig{
			TTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 5),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			AssetsBucket:         getEnv("AWS_S3_ASSETS_BUCKET", "signage-assets-bucket"),
			ExportsBucket:        getEnv("AWS_S3_EXPORTS_BUCKET", "signage-exports-bucket"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		SuperAdmin: SuperAdminConfig{
			Email:    strings.TrimSpace(getEnv("SUPERADMIN_EMAIL", "")),
			Password: getEnv("SUPERADMIN_PASSWORD", ""),
		},
		App: AppConfig{
			PlayBaseURL: getEnv("PLAY_BASE_URL", "http://localhost:8080/play"),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
