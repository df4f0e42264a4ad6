package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/safebuf/internal/logging"
	"github.com/danmuck/safebuf/internal/protocol/frame"
)

const (
	OutputYAML = "yaml"
	OutputText = "text"
)

// DumpConfig drives framedump. Zero-valued file keys keep their defaults.
type DumpConfig struct {
	Limits      frame.Limits
	LogLevel    string
	Output      string
	Decompress  bool
	CheckHeader bool
	MetricsOut  string
	AuthToken   string
}

type fileConfig struct {
	MaxAuthBytes    int64  `toml:"max_auth_bytes"`
	MaxPayloadBytes int64  `toml:"max_payload_bytes"`
	LogLevel        string `toml:"log_level"`
	Output          string `toml:"output"`
	Decompress      bool   `toml:"decompress"`
	CheckHeader     bool   `toml:"check_header"`
	MetricsOut      string `toml:"metrics_out"`
	AuthToken       string `toml:"auth_token"`
}

func DefaultDumpConfig() DumpConfig {
	return DumpConfig{
		Limits:      frame.DefaultLimits(),
		LogLevel:    "info",
		Output:      OutputYAML,
		Decompress:  true,
		CheckHeader: true,
	}
}

// LoadDumpConfig layers the keys present in path over DefaultDumpConfig.
func LoadDumpConfig(path string) (DumpConfig, error) {
	cfg := DefaultDumpConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return DumpConfig{}, fmt.Errorf("load framedump config (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return DumpConfig{}, fmt.Errorf("load framedump config (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("max_auth_bytes") {
		if raw.MaxAuthBytes < 0 {
			return DumpConfig{}, fmt.Errorf("max_auth_bytes must be >= 0, got %d", raw.MaxAuthBytes)
		}
		cfg.Limits.MaxAuthBytes = uint64(raw.MaxAuthBytes)
	}
	if meta.IsDefined("max_payload_bytes") {
		if raw.MaxPayloadBytes < 0 {
			return DumpConfig{}, fmt.Errorf("max_payload_bytes must be >= 0, got %d", raw.MaxPayloadBytes)
		}
		cfg.Limits.MaxPayloadBytes = uint64(raw.MaxPayloadBytes)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("output") {
		cfg.Output = strings.ToLower(strings.TrimSpace(raw.Output))
	}
	if meta.IsDefined("decompress") {
		cfg.Decompress = raw.Decompress
	}
	if meta.IsDefined("check_header") {
		cfg.CheckHeader = raw.CheckHeader
	}
	if meta.IsDefined("metrics_out") {
		cfg.MetricsOut = strings.TrimSpace(raw.MetricsOut)
	}
	if meta.IsDefined("auth_token") {
		cfg.AuthToken = raw.AuthToken
	}

	if err := ValidateDumpConfig(cfg); err != nil {
		return DumpConfig{}, err
	}
	return cfg, nil
}

func ValidateDumpConfig(cfg DumpConfig) error {
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("framedump config invalid log_level: %q", cfg.LogLevel)
	}
	switch cfg.Output {
	case OutputYAML, OutputText:
	default:
		return fmt.Errorf("framedump config invalid output: %q (want %s or %s)", cfg.Output, OutputYAML, OutputText)
	}
	if cfg.Limits.MaxPayloadBytes == 0 {
		return fmt.Errorf("framedump config max_payload_bytes must be > 0")
	}
	return nil
}
