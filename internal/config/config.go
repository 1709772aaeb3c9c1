package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// UnicodeForm names a Unicode normalization form. Empty means none.
type UnicodeForm string

// Form returns the x/text form and whether one is configured.
func (u UnicodeForm) Form() (norm.Form, bool) {
	switch u {
	case "NFC":
		return norm.NFC, true
	case "NFD":
		return norm.NFD, true
	case "NFKC":
		return norm.NFKC, true
	case "NFKD":
		return norm.NFKD, true
	}
	return 0, false
}

// Config is the effective configuration of every demark command.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Assistant struct {
		URL     string        `mapstructure:"url" yaml:"url"`
		Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
		Retries int           `mapstructure:"retries" yaml:"retries"`
		Backoff time.Duration `mapstructure:"backoff" yaml:"backoff"`
	} `mapstructure:"assistant" yaml:"assistant"`

	Normalize struct {
		UnicodeForm UnicodeForm `mapstructure:"unicode_form" yaml:"unicode_form"`
	} `mapstructure:"normalize" yaml:"normalize"`

	Input struct {
		MaxSize int `mapstructure:"max_size" yaml:"max_size"`
	} `mapstructure:"input" yaml:"input"`

	Cache struct {
		Backend string        `mapstructure:"backend" yaml:"backend"`
		TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
		Limit   int           `mapstructure:"limit" yaml:"limit"`
		Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
		Redis   struct {
			Addr     string `mapstructure:"addr" yaml:"addr"`
			Password string `mapstructure:"password" yaml:"password"`
			DB       int    `mapstructure:"db" yaml:"db"`
			Prefix   string `mapstructure:"prefix" yaml:"prefix"`
		} `mapstructure:"redis" yaml:"redis"`
	} `mapstructure:"cache" yaml:"cache"`

	Archive struct {
		Dir string `mapstructure:"dir" yaml:"dir"`
	} `mapstructure:"archive" yaml:"archive"`

	Server struct {
		Addr    string `mapstructure:"addr" yaml:"addr"`
		Metrics bool   `mapstructure:"metrics" yaml:"metrics"`
	} `mapstructure:"server" yaml:"server"`

	MCP struct {
		Transport string `mapstructure:"transport" yaml:"transport"`
		Port      int    `mapstructure:"port" yaml:"port"`
	} `mapstructure:"mcp" yaml:"mcp"`
}

// applyDefaults seeds Viper with defaults defined in Options.
func applyDefaults(v *viper.Viper) {
	for _, o := range Options() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The file is optional unless it was set explicitly with SetConfigFile.
func Load(v *viper.Viper) (Config, error) {
	explicit := v.ConfigFileUsed() != ""
	if !explicit {
		v.SetConfigName("demark")
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Environment variables: DEMARK_* (highest among these sources)
	v.SetEnvPrefix("demark")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToUnicodeFormHook(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// stringToUnicodeFormHook upper-cases form names so "nfc" works in files and env.
func stringToUnicodeFormHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(UnicodeForm("")) {
			return data, nil
		}
		return UnicodeForm(strings.ToUpper(strings.TrimSpace(reflect.ValueOf(data).String()))), nil
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Assistant.URL == "" {
		errs = append(errs, errors.New("assistant.url is required"))
	}
	if c.Assistant.Retries < 0 {
		errs = append(errs, errors.New("assistant.retries must not be negative"))
	}
	if _, ok := c.Normalize.UnicodeForm.Form(); !ok && c.Normalize.UnicodeForm != "" {
		errs = append(errs, fmt.Errorf("normalize.unicode_form must be NFC, NFD, NFKC or NFKD, got %q", c.Normalize.UnicodeForm))
	}
	if c.Input.MaxSize <= 0 {
		errs = append(errs, errors.New("input.max_size must be greater than 0"))
	}
	switch c.Cache.Backend {
	case "none", "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be none, memory or redis, got %q", c.Cache.Backend))
	}
	if c.Cache.Limit < 0 {
		errs = append(errs, errors.New("cache.limit must not be negative"))
	}
	if c.MCP.Transport != "stdio" && c.MCP.Transport != "sse" {
		errs = append(errs, fmt.Errorf("mcp.transport must be stdio or sse, got %q", c.MCP.Transport))
	}
	if c.MCP.Port <= 0 || c.MCP.Port > 65535 {
		errs = append(errs, fmt.Errorf("mcp.port out of range: %d", c.MCP.Port))
	}
	return errors.Join(errs...)
}

// Dump renders the effective configuration as YAML with secrets redacted.
func (c Config) Dump() (string, error) {
	if c.Cache.Redis.Password != "" {
		c.Cache.Redis.Password = "********"
	}
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	return string(out), nil
}
