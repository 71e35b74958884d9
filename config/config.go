package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/ini.v1"
)

const (
	DefaultAddr        = "127.0.0.1:7878"
	DefaultServiceName = "hello"
	DefaultLogLevel    = "info"
)

var (
	ErrInvalidConfig = errors.New("config: invalid config")
)

// ServerConf holds the listener settings.
type ServerConf struct {
	Addr string `ini:"addr"`
	// MaxHandlers caps the number of connections handled at once. Zero means unbounded.
	MaxHandlers      int           `ini:"max_handlers"`
	AcceptBackoffMax time.Duration `ini:"accept_backoff_max"`
	StatsInterval    time.Duration `ini:"stats_interval"`
}

type LogConf struct {
	Level string `ini:"level"`
}

type TelemetryConf struct {
	ServiceName  string `ini:"service_name"`
	OTLPEndpoint string `ini:"otlp_endpoint"`
}

type Config struct {
	ServerConf    `ini:"server"`
	LogConf       `ini:"log"`
	TelemetryConf `ini:"telemetry"`
}

func Default() Config {
	return Config{
		ServerConf: ServerConf{
			Addr: DefaultAddr,
		},
		LogConf: LogConf{
			Level: DefaultLogLevel,
		},
		TelemetryConf: TelemetryConf{
			ServiceName: DefaultServiceName,
		},
	}
}

// Load returns the defaults, overlaid with the INI file at fileName (when
// not empty) and then with HELLO_* environment variables.
func Load(fileName string) (Config, error) {
	cfg := Default()

	if fileName != "" {
		iniFile, err := ini.Load(fileName)
		if err != nil {
			return cfg, fmt.Errorf("config: load %s: %w", fileName, err)
		}
		if err := iniFile.MapTo(&cfg); err != nil {
			return cfg, fmt.Errorf("config: map %s: %w", fileName, err)
		}
	}

	overrideFromEnv(&cfg.Addr, "HELLO_ADDR")
	overrideFromEnvInt(&cfg.MaxHandlers, "HELLO_MAX_HANDLERS")
	overrideFromEnvDuration(&cfg.AcceptBackoffMax, "HELLO_ACCEPT_BACKOFF_MAX")
	overrideFromEnvDuration(&cfg.StatsInterval, "HELLO_STATS_INTERVAL")
	overrideFromEnv(&cfg.Level, "HELLO_LOG_LEVEL")
	overrideFromEnv(&cfg.OTLPEndpoint, "HELLO_OTLP_ENDPOINT")

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (cfg Config) Validate() error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: empty server address", ErrInvalidConfig)
	}
	if cfg.MaxHandlers < 0 {
		return fmt.Errorf("%w: max_handlers must not be negative", ErrInvalidConfig)
	}
	if cfg.AcceptBackoffMax < 0 {
		return fmt.Errorf("%w: accept_backoff_max must not be negative", ErrInvalidConfig)
	}
	if cfg.StatsInterval < 0 {
		return fmt.Errorf("%w: stats_interval must not be negative", ErrInvalidConfig)
	}
	if cfg.ServiceName == "" {
		return fmt.Errorf("%w: empty service name", ErrInvalidConfig)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, cfg.Level)
	}

	return nil
}

// SlogLevel returns the configured level, falling back to info.
func (conf LogConf) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(conf.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func overrideFromEnv(target *string, envName string) {
	if envValue := os.Getenv(envName); envValue != "" {
		*target = envValue
	}
}

func overrideFromEnvInt(target *int, envName string) {
	envValue := os.Getenv(envName)
	if envValue != "" {
		if intValue, err := strconv.Atoi(envValue); err == nil {
			*target = intValue
		}
	}
}

func overrideFromEnvDuration(target *time.Duration, envName string) {
	envValue := os.Getenv(envName)
	if envValue != "" {
		if d, err := time.ParseDuration(envValue); err == nil {
			*target = d
		}
	}
}
