package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/city-risk-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const (
	defaultCities = "Dhaka:23.8103:90.4125;Chattogram:22.3569:91.7832"
	defaultFIRMS  = "https://firms.modaps.eosdis.nasa.gov/active_fire/c7/csv/VIIRS_SNPP_NRT_Global_24h.csv," +
		"https://firms.modaps.eosdis.nasa.gov/active_fire/c7/csv/VIIRS_NOAA20_NRT_Global_24h.csv," +
		"https://firms.modaps.eosdis.nasa.gov/active_fire/c7/csv/MODIS_C6_1_Global_24h.csv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	Cities          []domain.City
	RefreshInterval time.Duration

	// Stability filter thresholds.
	MinConsecutive int
	MaxWait        time.Duration

	// Upstream data sources.
	HTTPClientTimeout    time.Duration
	OpenMeteoForecastURL string
	OpenMeteoAirURL      string
	OpenMeteoRPS         float64
	FIRMSURLs            []string
	CacheSize            int

	// Band change publishing; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// PublishEnabled reports whether committed band changes go to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	refresh, err := parsePositiveDuration("REFRESH_INTERVAL", "60s")
	if err != nil {
		return nil, err
	}
	maxWait, err := parsePositiveDuration("MAX_WAIT", "30s")
	if err != nil {
		return nil, err
	}
	clientTimeout, err := parsePositiveDuration("HTTP_CLIENT_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	minConsecutive, err := parsePositiveInt("MIN_CONSECUTIVE", "2")
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("CACHE_SIZE", "256")
	if err != nil {
		return nil, err
	}

	rps, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("OPENMETEO_RPS", "5"), 64)
	if err != nil || rps <= 0 {
		return nil, errors.New("invalid OPENMETEO_RPS")
	}

	cities, err := ParseCities(sharedcfg.EnvOrDefault("CITIES", defaultCities))
	if err != nil {
		return nil, fmt.Errorf("invalid CITIES: %w", err)
	}

	var brokers []string
	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		Cities:          cities,
		RefreshInterval: refresh,

		MinConsecutive: minConsecutive,
		MaxWait:        maxWait,

		HTTPClientTimeout:    clientTimeout,
		OpenMeteoForecastURL: sharedcfg.EnvOrDefault("OPENMETEO_FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
		OpenMeteoAirURL:      sharedcfg.EnvOrDefault("OPENMETEO_AIR_URL", "https://air-quality-api.open-meteo.com/v1/air-quality"),
		OpenMeteoRPS:         rps,
		FIRMSURLs:            splitList(sharedcfg.EnvOrDefault("FIRMS_URLS", defaultFIRMS)),
		CacheSize:            cacheSize,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "city-risk-bands"),
	}

	if cfg.PublishEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// ParseCities parses "Name:lat:lon" entries separated by semicolons.
func ParseCities(s string) ([]domain.City, error) {
	var cities []domain.City
	seen := map[string]bool{}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("entry %q: want Name:lat:lon", part)
		}
		name := strings.TrimSpace(fields[0])
		if name == "" {
			return nil, fmt.Errorf("entry %q: empty name", part)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil || lat < -90 || lat > 90 {
			return nil, fmt.Errorf("entry %q: bad latitude", part)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil || lon < -180 || lon > 180 {
			return nil, fmt.Errorf("entry %q: bad longitude", part)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("duplicate city %q", name)
		}
		seen[key] = true
		cities = append(cities, domain.City{Name: name, Lat: lat, Lon: lon})
	}
	if len(cities) == 0 {
		return nil, errors.New("at least one city is required")
	}
	return cities, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key, def string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, def))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
