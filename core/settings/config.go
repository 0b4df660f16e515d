package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Mode selects how history defaults are applied.
type Mode string

const (
	// ModeOffline is interactive tooling: history is always recorded.
	ModeOffline Mode = "offline"
	// ModeRuntime is an application at runtime: history follows
	// History.Enabled.
	ModeRuntime Mode = "runtime"
)

// History backends understood by the CLI.
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config is the file and environment representation of the settings.
// Environment variables override values read from the file.
type Config struct {
	Mode       Mode   `yaml:"mode" env:"AITASK_MODE"`
	OutputRoot string `yaml:"output_root" env:"AITASK_OUTPUT_ROOT"`

	// DefaultProvider is used for every kind without an entry in
	// DefaultProviders.
	DefaultProvider string `yaml:"default_provider" env:"AITASK_DEFAULT_PROVIDER"`
	// DefaultProviders maps kind names to provider ids, e.g.
	// AITASK_DEFAULT_PROVIDERS="speech:elevenlabs,chat:anthropic".
	DefaultProviders map[string]string `yaml:"default_providers" env:"AITASK_DEFAULT_PROVIDERS"`
	// DefaultMimes maps kind names to output mime types.
	DefaultMimes map[string]string `yaml:"default_mimes" env:"AITASK_DEFAULT_MIMES"`

	History HistoryConfig `yaml:"history" envPrefix:"AITASK_HISTORY_"`

	LogLevel     string `yaml:"log_level" env:"AITASK_LOG_LEVEL"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"AITASK_OTLP_ENDPOINT"`
}

// HistoryConfig configures task recording.
type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled" env:"ENABLED"`
	Backend string `yaml:"backend" env:"BACKEND"`
	// DSN is a file path for sqlite and a connection string for postgres.
	DSN string `yaml:"dsn" env:"DSN"`
	// Table overrides the postgres table name.
	Table string `yaml:"table" env:"TABLE"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	enabled := true
	return Config{
		Mode:       ModeRuntime,
		OutputRoot: "aitask-output",
		History: HistoryConfig{
			Enabled: &enabled,
			Backend: BackendMemory,
		},
		LogLevel: "info",
	}
}

// LoadDotEnv loads variables from .env files into the process environment
// without overriding variables that are already set. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// ReadConfig builds a Config from the defaults, the YAML file at path (when
// path is not empty) and the environment, in that order of precedence.
func ReadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Load reads .env, the optional YAML file and the environment, applies each
// adjust function to the result and returns the Settings built from it.
func Load(path string, adjust ...func(*Config)) (*Settings, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}
	for _, fn := range adjust {
		fn(&cfg)
	}
	return New(cfg)
}
