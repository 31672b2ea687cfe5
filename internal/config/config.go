package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds the application configuration
type Config struct {
	Environment string
	LogLevel    string

	APIBaseURL    string
	AdminToken    string
	PublicSiteURL string
	HTTPTimeout   time.Duration

	WhatsAppDataDir       string
	WhatsAppContactNumber string
	CacheDBPath           string

	HeatmapBatchSize     int
	HeatmapFlushInterval time.Duration
	TextsCacheTTL        time.Duration
	ToastTTL             time.Duration

	WeddingDate     string
	WeddingLocation string
	BrideName       string
	GroomName       string
}

// LoadConfig loads configuration from environment variables or defaults.
// Outside production a .env file in the working directory is read first.
func LoadConfig() (*Config, error) {
	env := getEnv("ENVIRONMENT", "development")
	if env != "production" {
		// a missing .env is fine, the process environment still applies
		_ = godotenv.Load()
	}

	dataDir := getEnv("WHATSAPP_DATA_DIR", "data")
	cfg := &Config{
		Environment: env,
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		APIBaseURL:    strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/"),
		AdminToken:    getEnv("ADMIN_TOKEN", ""),
		PublicSiteURL: strings.TrimRight(getEnv("PUBLIC_SITE_URL", "http://localhost:5173"), "/"),
		HTTPTimeout:   getEnvAsDuration("HTTP_TIMEOUT", "30s"),

		WhatsAppDataDir:       dataDir,
		WhatsAppContactNumber: getEnv("WHATSAPP_CONTACT_NUMBER", ""),
		CacheDBPath:           getEnv("CACHE_DB_PATH", dataDir+"/cache.db"),

		HeatmapBatchSize:     getEnvAsInt("HEATMAP_BATCH_SIZE", 50),
		HeatmapFlushInterval: getEnvAsDuration("HEATMAP_FLUSH_INTERVAL", "5s"),
		TextsCacheTTL:        getEnvAsDuration("TEXTS_CACHE_TTL", "1h"),
		ToastTTL:             getEnvAsDuration("TOAST_TTL", "5s"),

		WeddingDate:     getEnv("WEDDING_DATE", "Saturday, June 20, 2026"),
		WeddingLocation: getEnv("WEDDING_LOCATION", ""),
		BrideName:       getEnv("BRIDE_NAME", "Bride"),
		GroomName:       getEnv("GROOM_NAME", "Groom"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.HeatmapBatchSize <= 0 {
		return fmt.Errorf("HEATMAP_BATCH_SIZE must be positive, got %d", c.HeatmapBatchSize)
	}
	if c.HeatmapFlushInterval <= 0 {
		return fmt.Errorf("HEATMAP_FLUSH_INTERVAL must be positive")
	}
	return nil
}

// NewLogger returns the root logger: JSON in production, console otherwise
func NewLogger(level, env string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if env == "production" {
		return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		d, _ = time.ParseDuration(defaultValue)
	}
	return d
}
