package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default fetch identity. The site rejects requests without a browser-like
// User-Agent, so the default mimics desktop Chrome.
const (
	DefaultBaseURL   = "http://www.tianqihoubao.com/lishi"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	BaseURL      string
	UserAgent    string
	FetchTimeout time.Duration
	OutputDir    string

	// Cities to export. Entries may be Chinese names (深圳市) or already
	// romanized slugs (shenzhen); slug derivation happens at wiring time.
	Cities       []string
	LookbackDays int

	RefreshInterval time.Duration
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional Kafka record sink.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "6h")
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	lookbackDays, err := parseInt("LOOKBACK_DAYS", 30)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BaseURL:      strings.TrimRight(envOrDefault("WEATHER_BASE_URL", DefaultBaseURL), "/"),
		UserAgent:    envOrDefault("WEATHER_USER_AGENT", DefaultUserAgent),
		FetchTimeout: fetchTimeout,
		OutputDir:    envOrDefault("OUTPUT_DIR", "output"),

		Cities:       splitList(envOrDefault("CITIES", "shenzhen")),
		LookbackDays: lookbackDays,

		RefreshInterval: refreshInterval,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: strings.TrimSpace(envOrDefault("KAFKA_SINK_TOPIC", "daily-weather-records")),
	}

	if len(cfg.Cities) == 0 {
		return nil, errors.New("CITIES is required")
	}
	if cfg.LookbackDays <= 0 {
		return nil, errors.New("LOOKBACK_DAYS must be positive")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("WEATHER_BASE_URL is required")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	raw := envOrDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}

// splitList splits a comma-separated value, trimming whitespace and dropping
// empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
