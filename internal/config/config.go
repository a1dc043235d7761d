// Package config loads the service configuration: a YAML file, then
// environment overrides, then validation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	symdiff "github.com/njchilds90/symdiff"
	"github.com/njchilds90/symdiff/internal/logging"
)

// Environment variables
const (
	EnvConfigFile = "SYMDIFF_CONFIG_FILE"
	EnvPort       = "SYMDIFF_PORT"
	EnvLogLevel   = "SYMDIFF_LOG_LEVEL"
)

var (
	errMissingPort      = errors.New("server.port is required")
	errInvalidPort      = errors.New("server.port must be a number between 1 and 65535")
	errInvalidBodyLimit = errors.New("server.max_body_bytes must be positive")
	errInvalidMaxDepth  = errors.New("engine.max_depth must not be negative")
	errInvalidLogLevel  = errors.New("logging.log_level must be one of debug, info, warn, error")
	errInvalidLogFormat = errors.New("logging.format must be json or text")
)

type Config struct {
	Logging       logging.Config      `json:"logging" yaml:"logging"`
	Server        ServerConfig        `json:"server" yaml:"server"`
	Engine        EngineConfig        `json:"engine" yaml:"engine"`
	Observability ObservabilityConfig `json:"observability" yaml:"observability"`
}

type ServerConfig struct {
	Port              string        `json:"port" yaml:"port"`
	DebugMode         bool          `json:"debug_mode" yaml:"debug_mode"`
	AllowOrigins      []string      `json:"allow_origins" yaml:"allow_origins"`
	MaxBodyBytes      int64         `json:"max_body_bytes" yaml:"max_body_bytes"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
	ServerTiming      bool          `json:"server_timing" yaml:"server_timing"`
}

type EngineConfig struct {
	MaxDepth  int  `json:"max_depth" yaml:"max_depth"`
	UnitChain bool `json:"unit_chain" yaml:"unit_chain"`
}

type ObservabilityConfig struct {
	ServiceName    string `json:"service_name" yaml:"service_name"`
	ServiceVersion string `json:"service_version" yaml:"service_version"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Logging: logging.Config{LogLevel: "info", Format: "json"},
		Server: ServerConfig{
			Port:              "8080",
			AllowOrigins:      []string{"*"},
			MaxBodyBytes:      1 << 20,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Engine:        EngineConfig{MaxDepth: symdiff.DefaultMaxDepth},
		Observability: ObservabilityConfig{ServiceName: "symdiff"},
	}
}

// Load reads the YAML file at path (or at $SYMDIFF_CONFIG_FILE when path is
// empty) over the defaults, applies environment overrides and validates the
// result. With neither a path nor the variable set, Load starts from Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := Decode(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode strictly unmarshals YAML into cfg: unknown keys are an error.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables looked up with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvPort); v != "" {
		c.Server.Port = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Logging.LogLevel = v
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return errMissingPort
	}
	if p, err := strconv.Atoi(c.Server.Port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errInvalidBodyLimit
	}
	if c.Engine.MaxDepth < 0 {
		return errInvalidMaxDepth
	}
	switch strings.ToLower(c.Logging.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", errInvalidLogLevel, c.Logging.LogLevel)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("%w: %q", errInvalidLogFormat, c.Logging.Format)
	}
	return nil
}

// EngineOptions translates the engine section into symdiff options.
func (c Config) EngineOptions() []symdiff.Option {
	return []symdiff.Option{
		symdiff.WithMaxDepth(c.Engine.MaxDepth),
		symdiff.WithUnitChain(c.Engine.UnitChain),
	}
}
