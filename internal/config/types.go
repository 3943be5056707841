package config

import "time"

type ServerConfig struct {
	Port            int           `yaml:"port" toml:"port" validate:"gte=1,lte=65535"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" toml:"shutdownTimeout" validate:"gte=0"`
	AllowedOrigins  []string      `yaml:"allowedOrigins" toml:"allowedOrigins"`
	StaticDir       string        `yaml:"staticDir" toml:"staticDir"`
}

// TelemetryConfig describes where the vehicle position is read from. For
// the json format BaseURL is the service root and /get_location is
// appended; for the feed formats it is the feed URL.
type TelemetryConfig struct {
	BaseURL      string        `yaml:"baseURL" toml:"baseURL" validate:"required,url"`
	Format       string        `yaml:"format" toml:"format" validate:"oneof=json gtfsrt siri-json siri-xml"`
	VehicleRef   string        `yaml:"vehicleRef" toml:"vehicleRef" validate:"required_unless=Format json"`
	PollInterval time.Duration `yaml:"pollInterval" toml:"pollInterval" validate:"gt=0"`
	Timeout      time.Duration `yaml:"timeout" toml:"timeout" validate:"gte=0"`
}

type SurfaceConfig struct {
	SettleDelay time.Duration `yaml:"settleDelay" toml:"settleDelay" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `yaml:"pretty" toml:"pretty"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
	Surface   SurfaceConfig   `yaml:"surface" toml:"surface"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

var defaults = AppConfig{
	Server: ServerConfig{
		Port:            8080,
		ShutdownTimeout: 10 * time.Second,
	},
	Telemetry: TelemetryConfig{
		Format:       "json",
		PollInterval: 5 * time.Second,
		Timeout:      10 * time.Second,
	},
	Surface: SurfaceConfig{
		SettleDelay: 300 * time.Millisecond,
	},
	Log: LogConfig{
		Level: "info",
	},
}
