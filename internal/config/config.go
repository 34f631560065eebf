// Package config assembles the service configuration from defaults, an
// optional YAML file named by CONFIG_FILE and environment overrides, in that
// order.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"go-equation-solver/internal/recognition"
)

type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	// LogExportLevel is the minimum level shipped over OTLP when telemetry
	// is enabled.
	LogExportLevel string `yaml:"log_export_level"`

	// TelemetryEnabled turns on the OTLP trace, metric and log exporters.
	TelemetryEnabled bool `yaml:"telemetry_enabled"`

	Recognizer RecognizerConfig `yaml:"recognizer"`
	Session    SessionConfig    `yaml:"session"`

	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type RecognizerConfig struct {
	// Engine is "fake" or "tesseract".
	Engine   string        `yaml:"engine"`
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout"`

	// Samples and FakeDelay drive the fake engine.
	Samples   []string      `yaml:"samples"`
	FakeDelay time.Duration `yaml:"fake_delay"`

	Preprocess recognition.PreprocessOptions `yaml:"preprocess"`
}

type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	MaxWait       time.Duration `yaml:"max_wait"`
	EvictInterval time.Duration `yaml:"evict_interval"`

	// MaxSessions caps live sessions; creation beyond it answers 503.
	MaxSessions int `yaml:"max_sessions"`
}

func Default() Config {
	return Config{
		Host:             "0.0.0.0",
		Port:             8080,
		LogLevel:         "info",
		LogExportLevel:   "info",
		TelemetryEnabled: true,
		Recognizer: RecognizerConfig{
			Engine:     recognition.EngineFake,
			Language:   "eng",
			Timeout:    10 * time.Second,
			Preprocess: recognition.DefaultPreprocessOptions(),
		},
		Session: SessionConfig{
			TTL:           15 * time.Minute,
			MaxWait:       30 * time.Second,
			EvictInterval: time.Minute,
			MaxSessions:   10000,
		},
		MaxBodyBytes:    10 << 20,
		ShutdownTimeout: 5 * time.Second,
	}
}

func (c Config) Addr() string {
	return net.JoinHostPort(strings.TrimSpace(c.Host), strconv.Itoa(c.Port))
}

// Load builds the configuration. A missing CONFIG_FILE is not an error; an
// unreadable or malformed one is.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error

	c.Host = getEnvOrDefault("HOST", c.Host)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogExportLevel = getEnvOrDefault("LOG_EXPORT_LEVEL", c.LogExportLevel)
	c.Recognizer.Engine = getEnvOrDefault("RECOGNIZER_ENGINE", c.Recognizer.Engine)
	c.Recognizer.Language = getEnvOrDefault("RECOGNIZER_LANGUAGE", c.Recognizer.Language)

	if v := os.Getenv("RECOGNIZER_SAMPLES"); v != "" {
		c.Recognizer.Samples = splitList(v)
	}

	parseInt(&errs, "PORT", &c.Port)
	parseBool(&errs, "TELEMETRY_ENABLED", &c.TelemetryEnabled)
	parseInt64(&errs, "MAX_BODY_BYTES", &c.MaxBodyBytes)
	parseDuration(&errs, "SHUTDOWN_TIMEOUT", &c.ShutdownTimeout)
	parseDuration(&errs, "RECOGNITION_TIMEOUT", &c.Recognizer.Timeout)
	parseDuration(&errs, "FAKE_RECOGNIZER_DELAY", &c.Recognizer.FakeDelay)
	parseDuration(&errs, "SESSION_TTL", &c.Session.TTL)
	parseDuration(&errs, "SESSION_MAX_WAIT", &c.Session.MaxWait)
	parseDuration(&errs, "SESSION_EVICT_INTERVAL", &c.Session.EvictInterval)
	parseInt(&errs, "SESSION_MAX_SESSIONS", &c.Session.MaxSessions)
	parseInt(&errs, "PREPROCESS_MAX_PIXELS", &c.Recognizer.Preprocess.MaxPixels)

	if v := os.Getenv("PREPROCESS_THRESHOLD"); v != "" {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 8)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid PREPROCESS_THRESHOLD %q: must be 0-255", v))
		} else {
			c.Recognizer.Preprocess.Threshold = uint8(n)
		}
	}

	return errors.Join(errs...)
}

func (c Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be 1-65535, got %d", c.Port))
	}
	for name, level := range map[string]string{"log level": c.LogLevel, "log export level": c.LogExportLevel} {
		if _, err := zapcore.ParseLevel(level); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("max body bytes must be > 0, got %d", c.MaxBodyBytes))
	}
	if c.Session.MaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("session max sessions must be > 0, got %d", c.Session.MaxSessions))
	}

	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"shutdown timeout", c.ShutdownTimeout},
		{"recognition timeout", c.Recognizer.Timeout},
		{"session ttl", c.Session.TTL},
		{"session max wait", c.Session.MaxWait},
		{"session evict interval", c.Session.EvictInterval},
	}
	for _, t := range timeouts {
		if t.d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %s", t.name, t.d))
		}
	}
	if c.Recognizer.FakeDelay < 0 {
		errs = append(errs, fmt.Errorf("fake recognizer delay must not be negative, got %s", c.Recognizer.FakeDelay))
	}

	switch c.Recognizer.Engine {
	case recognition.EngineFake, recognition.EngineTesseract:
	default:
		errs = append(errs, fmt.Errorf("unknown recognizer engine %q", c.Recognizer.Engine))
	}

	if err := c.Recognizer.Preprocess.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("preprocess: %w", err))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(errs *[]error, key string, dst *int) {
	if value := os.Getenv(key); value != "" {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s %q: %w", key, value, err))
			return
		}
		*dst = n
	}
}

func parseInt64(errs *[]error, key string, dst *int64) {
	if value := os.Getenv(key); value != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s %q: %w", key, value, err))
			return
		}
		*dst = n
	}
}

func parseBool(errs *[]error, key string, dst *bool) {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s %q: %w", key, value, err))
			return
		}
		*dst = b
	}
}

func parseDuration(errs *[]error, key string, dst *time.Duration) {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s %q: %w", key, value, err))
			return
		}
		*dst = d
	}
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
