package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads path (skipped when empty), applies environment overrides and
// defaults, and validates the result.
func Load(path string) (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{}
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return AppConfig{}, err
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string, cfg *AppConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("config: %s: %w", path, err)
		}
	case ".yml", ".yaml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("config: %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config: unsupported file type %q", filepath.Ext(path))
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	if val := os.Getenv("BUSLOC_PORT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = parsed
		}
	}
	if val := os.Getenv("BUSLOC_ALLOWED_ORIGINS"); val != "" {
		cfg.Server.AllowedOrigins = strings.Split(val, ",")
	}
	if val := os.Getenv("BUSLOC_STATIC_DIR"); val != "" {
		cfg.Server.StaticDir = val
	}
	if val := os.Getenv("BUSLOC_TELEMETRY_URL"); val != "" {
		cfg.Telemetry.BaseURL = val
	}
	if val := os.Getenv("BUSLOC_TELEMETRY_FORMAT"); val != "" {
		cfg.Telemetry.Format = val
	}
	if val := os.Getenv("BUSLOC_VEHICLE_REF"); val != "" {
		cfg.Telemetry.VehicleRef = val
	}
	envDuration("BUSLOC_POLL_INTERVAL", &cfg.Telemetry.PollInterval)
	envDuration("BUSLOC_TELEMETRY_TIMEOUT", &cfg.Telemetry.Timeout)
	envDuration("BUSLOC_SETTLE_DELAY", &cfg.Surface.SettleDelay)
	envDuration("BUSLOC_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	if val := os.Getenv("BUSLOC_LOG_LEVEL"); val != "" {
		cfg.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("BUSLOC_LOG_PRETTY"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			cfg.Log.Pretty = parsed
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			*dst = parsed
		}
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if cfg.Telemetry.Format == "" {
		cfg.Telemetry.Format = defaults.Telemetry.Format
	}
	if cfg.Telemetry.PollInterval == 0 {
		cfg.Telemetry.PollInterval = defaults.Telemetry.PollInterval
	}
	if cfg.Telemetry.Timeout == 0 {
		cfg.Telemetry.Timeout = defaults.Telemetry.Timeout
	}
	if cfg.Surface.SettleDelay == 0 {
		cfg.Surface.SettleDelay = defaults.Surface.SettleDelay
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}
