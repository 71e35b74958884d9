package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/freekieb7/hello/config"
	"github.com/freekieb7/hello/test"
)

func writeIni(t *testing.T, content string) string {
	t.Helper()

	fileName := filepath.Join(t.TempDir(), "hello.ini")
	if err := os.WriteFile(fileName, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return fileName
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	test.AssertEqual(t, "127.0.0.1:7878", cfg.Addr)
	test.AssertEqual(t, 0, cfg.MaxHandlers)
	test.AssertEqual(t, time.Duration(0), cfg.AcceptBackoffMax)
	test.AssertEqual(t, time.Duration(0), cfg.StatsInterval)
	test.AssertEqual(t, "hello", cfg.ServiceName)
	test.AssertEqual(t, "", cfg.OTLPEndpoint)
	test.AssertEqual(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadIni(t *testing.T) {
	fileName := writeIni(t, `
[server]
addr = 0.0.0.0:9000
max_handlers = 64
accept_backoff_max = 1s
stats_interval = 30s

[log]
level = debug

[telemetry]
service_name = hello-test
otlp_endpoint = 127.0.0.1:4317
`)

	cfg, err := config.Load(fileName)
	if err != nil {
		t.Fatal(err)
	}

	test.AssertEqual(t, "0.0.0.0:9000", cfg.Addr)
	test.AssertEqual(t, 64, cfg.MaxHandlers)
	test.AssertEqual(t, time.Second, cfg.AcceptBackoffMax)
	test.AssertEqual(t, 30*time.Second, cfg.StatsInterval)
	test.AssertEqual(t, slog.LevelDebug, cfg.SlogLevel())
	test.AssertEqual(t, "hello-test", cfg.ServiceName)
	test.AssertEqual(t, "127.0.0.1:4317", cfg.OTLPEndpoint)
}

func TestLoadPartialIniKeepsDefaults(t *testing.T) {
	fileName := writeIni(t, "[server]\nmax_handlers = 8\n")

	cfg, err := config.Load(fileName)
	if err != nil {
		t.Fatal(err)
	}

	test.AssertEqual(t, config.DefaultAddr, cfg.Addr)
	test.AssertEqual(t, 8, cfg.MaxHandlers)
	test.AssertEqual(t, config.DefaultLogLevel, cfg.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	fileName := writeIni(t, "[server]\naddr = 0.0.0.0:9000\n")

	t.Setenv("HELLO_ADDR", "127.0.0.1:9999")
	t.Setenv("HELLO_MAX_HANDLERS", "3")
	t.Setenv("HELLO_STATS_INTERVAL", "5s")
	t.Setenv("HELLO_LOG_LEVEL", "warn")

	cfg, err := config.Load(fileName)
	if err != nil {
		t.Fatal(err)
	}

	test.AssertEqual(t, "127.0.0.1:9999", cfg.Addr)
	test.AssertEqual(t, 3, cfg.MaxHandlers)
	test.AssertEqual(t, 5*time.Second, cfg.StatsInterval)
	test.AssertEqual(t, slog.LevelWarn, cfg.SlogLevel())
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("HELLO_MAX_HANDLERS", "many")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	test.AssertEqual(t, 0, cfg.MaxHandlers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.ini"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
	}{
		{"empty addr", func(cfg *config.Config) { cfg.Addr = "" }},
		{"negative max handlers", func(cfg *config.Config) { cfg.MaxHandlers = -1 }},
		{"negative backoff", func(cfg *config.Config) { cfg.AcceptBackoffMax = -time.Second }},
		{"negative stats interval", func(cfg *config.Config) { cfg.StatsInterval = -time.Second }},
		{"empty service name", func(cfg *config.Config) { cfg.ServiceName = "" }},
		{"unknown level", func(cfg *config.Config) { cfg.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			test.AssertErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
		})
	}

	test.AssertNoError(t, config.Default().Validate())
}
