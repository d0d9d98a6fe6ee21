package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/leofalp/localllm/core/adapter"
	"github.com/leofalp/localllm/providers/ai"
)

// EnvPrefix is prepended to every environment override: LOCALLLM_PROVIDER,
// LOCALLLM_TIMEOUTS_CHAT, LOCALLLM_LOG_LEVEL and so on.
const EnvPrefix = "LOCALLLM"

// Config is the resolved CLI configuration.
type Config struct {
	Provider    string           `mapstructure:"provider" yaml:"provider"`
	BaseURL     string           `mapstructure:"base_url" yaml:"base_url"`
	Model       string           `mapstructure:"model" yaml:"model"`
	LenientJSON bool             `mapstructure:"lenient_json" yaml:"lenient_json"`
	Timeouts    adapter.Timeouts `mapstructure:"timeouts" yaml:"timeouts"`
	Log         LogConfig        `mapstructure:"log" yaml:"log"`
	Metrics     MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"` // Empty disables the /metrics endpoint
}

// ProviderKind resolves the configured provider name.
func (c *Config) ProviderKind() (ai.ProviderKind, error) {
	return ai.ParseProviderKind(c.Provider)
}

// Load resolves the configuration from, in increasing precedence: built-in
// defaults, the YAML file at path (optional), and LOCALLLM_* environment
// variables. Call LoadDotEnv first to have .env files feed the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		)
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv loads each existing file into the process environment without
// overriding variables that are already set. With no arguments it loads
// ".env" from the working directory. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	timeouts := adapter.DefaultTimeouts()

	v.SetDefault("provider", ai.ProviderOllama.Slug())
	v.SetDefault("base_url", "")
	v.SetDefault("model", "")
	v.SetDefault("lenient_json", false)
	v.SetDefault("timeouts.list", timeouts.List)
	v.SetDefault("timeouts.chat", timeouts.Chat)
	v.SetDefault("timeouts.unload", timeouts.Unload)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "compact")
	v.SetDefault("metrics.addr", "")
}

func validate(cfg *Config) error {
	if _, err := cfg.ProviderKind(); err != nil {
		return fmt.Errorf("invalid provider: %w", err)
	}

	switch strings.ToLower(cfg.Log.Format) {
	case "compact", "json":
	default:
		return fmt.Errorf("invalid log.format %q (expected compact or json)", cfg.Log.Format)
	}

	if cfg.Timeouts.List < 0 || cfg.Timeouts.Chat < 0 || cfg.Timeouts.Unload < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}
