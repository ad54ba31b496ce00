package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"linkscope-backend/domain/services"
)

// FindingSourceMode selects the finding source implementation.
type FindingSourceMode string

const (
	// SourceMemory keeps findings in process and accepts ingestion over HTTP.
	SourceMemory FindingSourceMode = "memory"
	// SourceHTTP pulls findings from an external collection service.
	SourceHTTP FindingSourceMode = "http"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Finding source configuration
	SourceMode        FindingSourceMode
	SourceBaseURL     string
	SourceTimeout     time.Duration
	SourceMaxFailures uint32

	// Simulation configuration
	FrameInterval   time.Duration
	BloomMillis     int64
	SeedRadius      float64
	DefaultWidth    float64
	DefaultHeight   float64
	TuningFile      string
	Tuning          services.Tuning

	// Logging
	LogLevel string

	// Feature flags
	EnableCORS    bool
	EnableMetrics bool
}

// LoadConfig loads configuration from environment variables, then overlays
// force constants from the tuning file when one is configured.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		SourceMode:        FindingSourceMode(getEnv("FINDING_SOURCE", string(SourceMemory))),
		SourceBaseURL:     getEnv("FINDING_SOURCE_URL", ""),
		SourceTimeout:     time.Duration(getEnvInt("FINDING_SOURCE_TIMEOUT_MS", 5000)) * time.Millisecond,
		SourceMaxFailures: uint32(getEnvInt("FINDING_SOURCE_MAX_FAILURES", 5)),

		FrameInterval: time.Duration(getEnvInt("FRAME_INTERVAL_MS", 33)) * time.Millisecond,
		BloomMillis:   int64(getEnvInt("BLOOM_DURATION_MS", 400)),
		SeedRadius:    getEnvFloat("SEED_RADIUS", 60),
		DefaultWidth:  getEnvFloat("DEFAULT_VIEWPORT_WIDTH", 1280),
		DefaultHeight: getEnvFloat("DEFAULT_VIEWPORT_HEIGHT", 800),
		TuningFile:    getEnv("TUNING_FILE", ""),
		Tuning:        services.DefaultTuning(),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
	}

	if cfg.TuningFile != "" {
		tuning, err := LoadTuning(cfg.TuningFile)
		if err != nil {
			return nil, err
		}
		cfg.Tuning = tuning
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is an alias for LoadConfig.
func Load() (*Config, error) {
	return LoadConfig()
}

// LoadTuning reads force constants from a YAML file, overlaying the defaults
// so a partial file only overrides what it names.
func LoadTuning(path string) (services.Tuning, error) {
	tuning := services.DefaultTuning()

	data, err := os.ReadFile(path)
	if err != nil {
		return tuning, fmt.Errorf("read tuning file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return tuning, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	if err := ValidateTuning(tuning); err != nil {
		return tuning, fmt.Errorf("tuning file %s: %w", path, err)
	}
	return tuning, nil
}

// ValidateTuning rejects force constants that cannot converge.
func ValidateTuning(t services.Tuning) error {
	if t.Damping <= 0 || t.Damping >= 1 {
		return fmt.Errorf("damping must be in (0, 1), got %v", t.Damping)
	}
	if t.Repulsion <= 0 {
		return fmt.Errorf("repulsion must be positive, got %v", t.Repulsion)
	}
	if t.MinDistance <= 0 {
		return fmt.Errorf("min_distance must be positive, got %v", t.MinDistance)
	}
	if t.SpringConstant <= 0 {
		return fmt.Errorf("spring_constant must be positive, got %v", t.SpringConstant)
	}
	if t.RestLength <= 0 {
		return fmt.Errorf("rest_length must be positive, got %v", t.RestLength)
	}
	if t.SettleThreshold <= 0 {
		return fmt.Errorf("settle_threshold must be positive, got %v", t.SettleThreshold)
	}
	return nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.SourceMode {
	case SourceMemory:
	case SourceHTTP:
		if c.SourceBaseURL == "" {
			return fmt.Errorf("FINDING_SOURCE_URL is required when FINDING_SOURCE is http")
		}
	default:
		return fmt.Errorf("unknown FINDING_SOURCE %q", c.SourceMode)
	}

	if c.FrameInterval <= 0 {
		return fmt.Errorf("FRAME_INTERVAL_MS must be positive")
	}
	if c.DefaultWidth <= 0 || c.DefaultHeight <= 0 {
		return fmt.Errorf("default viewport dimensions must be positive")
	}
	return ValidateTuning(c.Tuning)
}

// IsDevelopment checks if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
