package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/dataqa-cli/internal/ai"
	"github.com/KaramelBytes/dataqa-cli/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	Provider    string  `mapstructure:"provider" yaml:"provider"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Model       string  `mapstructure:"model" yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	// Models catalog overrides (JSON, see ai.LoadCatalogFromJSON)
	ModelsFile string `mapstructure:"models_file" yaml:"models_file,omitempty"`

	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	PreviewRows    int `mapstructure:"preview_rows" yaml:"preview_rows"`
	MaxUploadMB    int `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	// Server
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`

	// Logging. An empty level lets each command pick its own default.
	LogLevel  string `mapstructure:"log_level" yaml:"log_level,omitempty"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// DefaultDir returns ~/.dataqa.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dataqa"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dataqa/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. CLI flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DATAQA")
	v.AutomaticEnv()
	// The credential may also come from the provider's conventional variable.
	if err := v.BindEnv("api_key", "DATAQA_API_KEY", "GROQ_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	// Defaults
	v.SetDefault("provider", ai.ProviderGroq)
	v.SetDefault("base_url", "")
	v.SetDefault("model", "llama-3.1-8b-instant")
	v.SetDefault("temperature", 0.3)
	v.SetDefault("models_file", "")
	v.SetDefault("http_timeout_sec", 30)
	v.SetDefault("preview_rows", 5)
	v.SetDefault("max_upload_mb", 10)
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_level", "")
	v.SetDefault("log_format", "text")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	return &c, nil
}

// HTTPTimeout returns the completion call timeout.
func (c *Global) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSec <= 0 {
		return ai.DefaultHTTPTimeout
	}
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// MaxUploadBytes returns the upload cap in bytes.
func (c *Global) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(c.MaxUploadMB) << 20
}

// ResolveBaseURL returns the completion endpoint root for the configured provider.
func (c *Global) ResolveBaseURL() (string, error) {
	return ai.ResolveBaseURL(c.Provider, c.BaseURL)
}

// Set updates a single key from its string form, validating the value.
func (c *Global) Set(key, val string) error {
	switch key {
	case "api_key":
		c.APIKey = strings.TrimSpace(val)
	case "provider":
		p, ok := ai.LookupProvider(val)
		if !ok {
			return fmt.Errorf("invalid provider: %s (use %s)", val, strings.Join(ai.Providers(), ", "))
		}
		c.Provider = p.Name
	case "base_url":
		c.BaseURL = strings.TrimRight(strings.TrimSpace(val), "/")
	case "model":
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("model cannot be empty")
		}
		c.Model = strings.TrimSpace(val)
	case "models_file":
		c.ModelsFile = val
	case "temperature":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 || f > 2 {
			return fmt.Errorf("invalid float for temperature (0-2): %v", val)
		}
		c.Temperature = f
	case "http_timeout_sec", "preview_rows", "max_upload_mb":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		switch key {
		case "http_timeout_sec":
			c.HTTPTimeoutSec = i
		case "preview_rows":
			c.PreviewRows = i
		case "max_upload_mb":
			c.MaxUploadMB = i
		}
	case "listen_addr":
		c.ListenAddr = val
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Mask hides all but the edges of a secret for display.
func Mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
