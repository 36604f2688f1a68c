package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers   []string
	KafkaSinkTopic string
	HTTPAddr       string
	LogLevel       string
	LogFormat      string

	// File-based configuration surfaces.
	SubjectsPath   string
	RiskTablesPath string
	StorePath      string

	// Cycle behaviour.
	CycleSchedule         string
	FetchTimeout          time.Duration
	MaxConcurrentSubjects int
	ShutdownTimeout       time.Duration

	// Upstream credentials. Collectors with a missing key still run; their
	// fetches fail and default, which keeps local development possible.
	WeatherAPIKey string
	NewsAPIKey    string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	maxConcurrent, err := parsePositiveInt("MAX_CONCURRENT_SUBJECTS", 4)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:   parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "supplier-risk-assessments"),
		HTTPAddr:       envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		LogFormat:      envOrDefault("LOG_FORMAT", "json"),

		SubjectsPath:   envOrDefault("SUBJECTS_PATH", "config/subjects.yaml"),
		RiskTablesPath: os.Getenv("RISK_TABLES_PATH"),
		StorePath:      envOrDefault("STORE_PATH", "data/assessments"),

		CycleSchedule:         envOrDefault("CYCLE_SCHEDULE", "@every 15m"),
		FetchTimeout:          fetchTimeout,
		MaxConcurrentSubjects: maxConcurrent,
		ShutdownTimeout:       shutdownTimeout,

		WeatherAPIKey: os.Getenv("WEATHER_API_KEY"),
		NewsAPIKey:    os.Getenv("NEWS_API_KEY"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.SubjectsPath == "" {
		return nil, errors.New("SUBJECTS_PATH is required")
	}

	return cfg, nil
}

// envOrDefault returns the environment value or the default when unset.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseDuration(key, def string) (time.Duration, error) {
	raw := envOrDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}
