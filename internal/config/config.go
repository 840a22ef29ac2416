package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	// OpenWeatherAPIKey is the server-held credential for the geocoding and
	// weather endpoints. It may be empty at startup; requests that need it
	// fail with a configuration error instead.
	OpenWeatherAPIKey string

	// HTTPTimeout bounds outbound calls to the weather provider.
	HTTPTimeout time.Duration

	// StorePath is the sqlite file holding client preferences (theme, saved places).
	StorePath string

	// DefaultCountry is the sentinel country code used when reverse geocoding
	// resolves nothing usable.
	DefaultCountry string

	// GeolocationTimeout bounds the wait for a position fix.
	GeolocationTimeout time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		log.Printf("INFO: OPENWEATHER_API_KEY is not set; geocode and forecast requests will fail")
	}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	geoTimeoutStr := getenvDefault("GEOLOCATION_TIMEOUT", "15s")
	geoTimeout, err := time.ParseDuration(geoTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid GEOLOCATION_TIMEOUT: %w", err)
	}
	cfg.GeolocationTimeout = geoTimeout

	cfg.StorePath = getenvDefault("STORE_PATH", "skycast.db")
	cfg.DefaultCountry = getenvDefault("DEFAULT_COUNTRY", "NG")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
