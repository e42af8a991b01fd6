package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// AppConfig holds every runtime setting, read from the environment.
type AppConfig struct {
	// DiscordToken authenticates the bot session.
	DiscordToken string `validate:"required"`

	// PostTime is the daily wall-clock trigger for forecast posts, "HH:MM"
	// in UTC.
	PostTime string `validate:"required"`

	// HTTPTimeout bounds each outbound call (geocoder, forecast API,
	// Discord REST).
	HTTPTimeout time.Duration

	// SelectionTTL is how long a /weather dropdown stays answerable.
	SelectionTTL time.Duration

	// File paths for the persisted geocoding cache and subscription table.
	CacheFile    string
	SettingsFile string

	// NominatimUserAgent identifies us to the geocoder, per its usage policy.
	NominatimUserAgent string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		DiscordToken:       os.Getenv("DISCORD_TOKEN"),
		PostTime:           getenvDefault("FORECAST_POST_TIME", "08:00"),
		CacheFile:          getenvDefault("LOCATION_CACHE_FILE", "location_cache.json"),
		SettingsFile:       getenvDefault("FORECAST_SETTINGS_FILE", "forecast_settings.json"),
		NominatimUserAgent: getenvDefault("NOMINATIM_USER_AGENT", "weatherbot/1.0 (discord-bot-collab)"),
		Port:               getenvDefault("PORT", "8080"),
	}

	timeout, err := getenvDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	ttl, err := getenvDuration("SELECTION_TTL", 3*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid SELECTION_TTL: %w", err)
	}
	cfg.SelectionTTL = ttl

	if _, err := time.Parse("15:04", cfg.PostTime); err != nil {
		return nil, fmt.Errorf("invalid FORECAST_POST_TIME %q: want HH:MM", cfg.PostTime)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}
