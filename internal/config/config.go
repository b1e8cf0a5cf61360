// Package config loads service configuration from defaults, an optional
// YAML config file, and SLICERD_* environment overrides, in ascending
// precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// EngineConfig holds external slicing engine settings.
type EngineConfig struct {
	// Bin is the engine executable path.
	Bin string `mapstructure:"bin"`

	// SliceTimeout bounds one engine run. It is fixed per deployment,
	// not adjustable per request.
	SliceTimeout time.Duration `mapstructure:"slice_timeout"`
}

// PathsConfig holds the on-disk locations the service owns or reads.
type PathsConfig struct {
	// ProfilesDir is the root of the user profile store.
	ProfilesDir string `mapstructure:"profiles_dir"`

	// BundledDir is the root of the vendor-bundled profile tree.
	BundledDir string `mapstructure:"bundled_dir"`

	// WorkDir is the parent directory for per-job slice workspaces.
	WorkDir string `mapstructure:"work_dir"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// LimitsConfig holds request admission limits.
type LimitsConfig struct {
	// MaxUploadBytes caps multipart request bodies.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`

	// UploadRPS and UploadBurst shape the write-endpoint rate limiter.
	UploadRPS   float64 `mapstructure:"upload_rps"`
	UploadBurst int     `mapstructure:"upload_burst"`
}

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Paths   PathsConfig   `mapstructure:"paths"`
	Logging LoggingConfig `mapstructure:"logging"`
	Limits  LimitsConfig  `mapstructure:"limits"`
}

// Load reads configuration. filePath may be empty, in which case only
// defaults and environment overrides apply; a named file that does not
// exist is an error.
func Load(filePath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Minute)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("engine.bin", "/opt/orcaslicer/AppRun")
	v.SetDefault("engine.slice_timeout", 300*time.Second)

	v.SetDefault("paths.profiles_dir", "/data/profiles")
	v.SetDefault("paths.bundled_dir", "/opt/orcaslicer/resources/profiles")
	v.SetDefault("paths.work_dir", "/tmp/slicing")

	v.SetDefault("logging.level", "info")

	v.SetDefault("limits.max_upload_bytes", int64(100*1024*1024))
	v.SetDefault("limits.upload_rps", 5.0)
	v.SetDefault("limits.upload_burst", 10)

	v.SetEnvPrefix("SLICERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filePath != "" {
		v.SetConfigFile(filePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service could not run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Engine.Bin) == "" {
		return fmt.Errorf("engine binary path is required")
	}
	if c.Engine.SliceTimeout <= 0 {
		return fmt.Errorf("slice timeout must be positive")
	}
	if strings.TrimSpace(c.Paths.ProfilesDir) == "" {
		return fmt.Errorf("profiles dir is required")
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return fmt.Errorf("work dir is required")
	}
	if c.Limits.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	return nil
}
