// Package config reads service settings from the environment, with an
// optional .env file in the working directory.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
	"truck-eta-service/internal/domain"
	"truck-eta-service/internal/duty"

	"github.com/joho/godotenv"
)

const (
	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"
)

type Config struct {
	Port        string
	MetricsAddr string

	ORSAPIKey  string
	ORSBaseURL string
	ORSProfile string

	TimeZone string
	Location *time.Location

	// Nil means segment durations come from the route provider.
	DefaultSpeedKmph *float64
	MaxDrivingHours  float64
	RestHours        float64
	WindowHours      float64
	SampleSpacingKm  float64
	BanRadiusKm      float64

	CatalogSource         string
	BanPolygonsPath       string
	BanTimesPath          string
	CatalogReloadInterval time.Duration

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RouteCacheTTL time.Duration

	NATSURL           string
	NATSSubjectPrefix string
	LogNATSSubjects   bool

	TripConcurrency int
	AllowedOrigins  []string
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads .env (if present) and the environment into a validated Config.
// Invalid values are reported as configuration errors naming the variable.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        Get("PORT", "8080"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),

		ORSAPIKey:  os.Getenv("ORS_API_KEY"),
		ORSBaseURL: Get("ORS_BASE_URL", "https://api.openrouteservice.org"),
		ORSProfile: Get("ORS_PROFILE", "driving-car"),

		TimeZone: Get("TIMEZONE", "Asia/Riyadh"),

		CatalogSource:   strings.ToLower(Get("CATALOG_SOURCE", CatalogSourceFile)),
		BanPolygonsPath: Get("BAN_POLYGONS_PATH", "data/ban_polygons.geojson"),
		BanTimesPath:    Get("BAN_TIMES_PATH", "data/ban_times.json"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		NATSURL:           os.Getenv("NATS_URL"),
		NATSSubjectPrefix: Get("NATS_SUBJECT_PREFIX", "eta"),
		LogNATSSubjects:   parseBool(os.Getenv("LOG_NATS_SUBJECTS")),

		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, domain.Configuration("TIMEZONE", err)
	}
	cfg.Location = loc

	if v := Get("VEHICLE_SPEED_KMPH", ""); v != "" {
		speed, err := positiveFloat("VEHICLE_SPEED_KMPH", v)
		if err != nil {
			return nil, err
		}
		cfg.DefaultSpeedKmph = &speed
	}

	floats := []struct {
		key string
		def string
		dst *float64
	}{
		{"MAX_DRIVING_HOURS", "10", &cfg.MaxDrivingHours},
		{"REST_HOURS", "14", &cfg.RestHours},
		{"DUTY_WINDOW_HOURS", "24", &cfg.WindowHours},
		{"SAMPLE_SPACING_KM", "10", &cfg.SampleSpacingKm},
		{"BAN_RADIUS_KM", "20", &cfg.BanRadiusKm},
	}
	for _, f := range floats {
		v, err := positiveFloat(f.key, Get(f.key, f.def))
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	if cfg.TripConcurrency, err = positiveInt("TRIP_CONCURRENCY", Get("TRIP_CONCURRENCY", "5")); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = strconv.Atoi(Get("REDIS_DB", "0")); err != nil || cfg.RedisDB < 0 {
		return nil, domain.Configuration("REDIS_DB", fmt.Errorf("invalid value %q", os.Getenv("REDIS_DB")))
	}
	if cfg.RouteCacheTTL, err = duration("ROUTE_CACHE_TTL", Get("ROUTE_CACHE_TTL", "24h")); err != nil {
		return nil, err
	}
	if cfg.CatalogReloadInterval, err = duration("CATALOG_RELOAD_INTERVAL", Get("CATALOG_RELOAD_INTERVAL", "0s")); err != nil {
		return nil, err
	}

	switch cfg.CatalogSource {
	case CatalogSourceFile:
		if strings.TrimSpace(cfg.BanTimesPath) == "" {
			return nil, domain.Configuration("BAN_TIMES_PATH", fmt.Errorf("required for file catalog"))
		}
	case CatalogSourcePostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, domain.Configuration("DATABASE_URL", fmt.Errorf("required for postgres catalog"))
		}
	default:
		return nil, domain.Configuration("CATALOG_SOURCE", fmt.Errorf("unknown source %q", cfg.CatalogSource))
	}

	return cfg, nil
}

// Rules returns the duty-cycle limits.
func (c *Config) Rules() duty.Rules {
	return duty.Rules{
		MaxDriving: hours(c.MaxDrivingHours),
		Window:     hours(c.WindowHours),
		MinRest:    hours(c.RestHours),
	}
}

func hours(h float64) time.Duration {
	return time.Duration(math.Round(h * float64(time.Hour)))
}

func positiveFloat(key, v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, domain.Configuration(key, fmt.Errorf("must be a positive number, got %q", v))
	}
	return f, nil
}

func positiveInt(key, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0, domain.Configuration(key, fmt.Errorf("must be a positive integer, got %q", v))
	}
	return n, nil
}

func duration(key, v string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d < 0 {
		return 0, domain.Configuration(key, fmt.Errorf("invalid duration %q", v))
	}
	return d, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
