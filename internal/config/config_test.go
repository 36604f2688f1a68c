package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads so ambient shell state never
// leaks into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"KAFKA_BROKERS", "KAFKA_SINK_TOPIC", "HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT",
		"SUBJECTS_PATH", "RISK_TABLES_PATH", "STORE_PATH",
		"CYCLE_SCHEDULE", "FETCH_TIMEOUT", "MAX_CONCURRENT_SUBJECTS", "SHUTDOWN_TIMEOUT",
		"WEATHER_API_KEY", "NEWS_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "supplier-risk-assessments", cfg.KafkaSinkTopic)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "config/subjects.yaml", cfg.SubjectsPath)
	assert.Empty(t, cfg.RiskTablesPath)
	assert.Equal(t, "data/assessments", cfg.StorePath)
	assert.Equal(t, "@every 15m", cfg.CycleSchedule)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 4, cfg.MaxConcurrentSubjects)
	assert.Empty(t, cfg.WeatherAPIKey)
	assert.Empty(t, cfg.NewsAPIKey)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_BROKERS", "kafka-0:9092, kafka-1:9092,")
	t.Setenv("KAFKA_SINK_TOPIC", "risk-out")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("CYCLE_SCHEDULE", "@hourly")
	t.Setenv("FETCH_TIMEOUT", "30s")
	t.Setenv("MAX_CONCURRENT_SUBJECTS", "8")
	t.Setenv("WEATHER_API_KEY", "owm-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-0:9092", "kafka-1:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "risk-out", cfg.KafkaSinkTopic)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "@hourly", cfg.CycleSchedule)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 8, cfg.MaxConcurrentSubjects)
	assert.Equal(t, "owm-key", cfg.WeatherAPIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unparseable fetch timeout", "FETCH_TIMEOUT", "soon"},
		{"negative fetch timeout", "FETCH_TIMEOUT", "-5s"},
		{"unparseable shutdown timeout", "SHUTDOWN_TIMEOUT", "whenever"},
		{"non-numeric concurrency", "MAX_CONCURRENT_SUBJECTS", "many"},
		{"zero concurrency", "MAX_CONCURRENT_SUBJECTS", "0"},
		{"blank broker list", "KAFKA_BROKERS", " , "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
