// Package config centralises configuration parsing for the sync job.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

var ErrMissingSetting = errors.New("missing required setting")

// Config captures runtime configuration values for one batch run.
type Config struct {
	GarminToken   string
	GarminBaseURL string

	NotionToken         string
	StepsTableID        string
	WellnessTableID     string // Empty disables wellness sync.
	ActivityTableID     string
	LookbackDays        int
	RateLimitBaseDelay  time.Duration
	RateLimitMaxRetries int
	RequestPause        time.Duration

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	FetchCacheTTL time.Duration

	DatabaseURL    string
	PushgatewayURL string
	LogFile        string
}

// Load reads environment variables into Config. Call godotenv first to pick
// up a local .env file.
func Load() Config {
	return Config{
		GarminToken:   getEnv("GARMIN_TOKEN", ""),
		GarminBaseURL: getEnv("GARMIN_BASE_URL", "https://connectapi.garmin.com"),

		NotionToken:         getEnv("NOTION_TOKEN", ""),
		StepsTableID:        getEnv("NOTION_STEPS_DB_ID", ""),
		WellnessTableID:     getEnv("NOTION_WELLNESS_DB_ID", ""),
		ActivityTableID:     getEnv("NOTION_DB_ID", ""),
		LookbackDays:        getIntEnv("SYNC_LOOKBACK_DAYS", 7),
		RateLimitBaseDelay:  getDurationEnv("RATE_LIMIT_BASE_DELAY", 10*time.Second),
		RateLimitMaxRetries: getIntEnv("RATE_LIMIT_MAX_RETRIES", 3),
		RequestPause:        getDurationEnv("REQUEST_PAUSE", 500*time.Millisecond),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		FetchCacheTTL: getDurationEnv("FETCH_CACHE_TTL", 6*time.Hour),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		PushgatewayURL: getEnv("PUSHGATEWAY_URL", ""),
		LogFile:        getEnv("LOG_FILE", ""),
	}
}

func (c Config) Validate() error {
	var errs []error

	required := []struct {
		key, value string
	}{
		{"GARMIN_TOKEN", c.GarminToken},
		{"NOTION_TOKEN", c.NotionToken},
		{"NOTION_STEPS_DB_ID", c.StepsTableID},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingSetting, r.key))
		}
	}

	if c.WellnessEnabled() && c.ActivityTableID == "" {
		errs = append(errs, fmt.Errorf("%w: NOTION_DB_ID (required with NOTION_WELLNESS_DB_ID)", ErrMissingSetting))
	}
	if c.LookbackDays < 0 {
		errs = append(errs, fmt.Errorf("SYNC_LOOKBACK_DAYS must not be negative, got %d", c.LookbackDays))
	}
	if c.RateLimitMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_MAX_RETRIES must not be negative, got %d", c.RateLimitMaxRetries))
	}

	return errors.Join(errs...)
}

func (c Config) WellnessEnabled() bool {
	return c.WellnessTableID != ""
}

func (c Config) CacheEnabled() bool {
	return c.RedisHost != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
