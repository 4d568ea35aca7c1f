package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Env         string
	Server      ServerConfig
	LandmarkAPI LandmarkAPIConfig
	ImageHost   ImageHostConfig
	Redis       RedisConfig
	OTEL        OTELConfig
}

// ServerConfig holds page glue server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
	MaxUploadBytes int64
	AdminJWTSecret string
}

// LandmarkAPIConfig holds the landmark server configuration
type LandmarkAPIConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Landmark string
}

// ImageHostConfig holds the image hosting API configuration
type ImageHostConfig struct {
	UploadURL string
	ClientID  string
	Timeout   time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// LoadDotEnv copies variables from .env files into the environment. Missing
// files are skipped and variables already set are left alone.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),
			AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		},
		LandmarkAPI: LandmarkAPIConfig{
			BaseURL:  getEnv("LANDMARK_API_URL", "http://localhost:5000"),
			Timeout:  getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second),
			Landmark: getEnv("LANDMARK_ID", ""),
		},
		ImageHost: ImageHostConfig{
			UploadURL: getEnv("IMAGE_HOST_URL", "https://api.imgur.com/3/image"),
			ClientID:  getEnv("IMAGE_HOST_CLIENT_ID", ""),
			Timeout:   getEnvAsDuration("IMAGE_HOST_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "landmark-page"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if strings.TrimSpace(cfg.LandmarkAPI.BaseURL) == "" {
		return nil, fmt.Errorf("LANDMARK_API_URL must not be empty")
	}
	if cfg.LandmarkAPI.Timeout <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	return cfg, nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ServerAddr returns the listen address of the page glue server
func (c *ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
