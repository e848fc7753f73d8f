package models

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the runtime configuration of the explorer
type Config struct {
	SyncNode     string        `mapstructure:"sync_node" yaml:"sync_node"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit    float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst" yaml:"rate_burst"`
	UserAgent    string        `mapstructure:"user_agent" yaml:"user_agent"`
	PageSize     int           `mapstructure:"page_size" yaml:"page_size"`
	Breakpoint   int           `mapstructure:"breakpoint" yaml:"breakpoint"`
	Throttle     time.Duration `mapstructure:"throttle" yaml:"throttle"`
	AutoRefresh  time.Duration `mapstructure:"auto_refresh" yaml:"auto_refresh"`
	Wallets      []string      `mapstructure:"wallets" yaml:"wallets"`
	StateFile    string        `mapstructure:"state_file" yaml:"state_file"`
	LogFile      string        `mapstructure:"log_file" yaml:"log_file"`
	LogLevel     string        `mapstructure:"log_level" yaml:"log_level"`
	LogFileSize  int           `mapstructure:"log_file_size" yaml:"log_file_size"`
	LogFileCount int           `mapstructure:"log_file_count" yaml:"log_file_count"`
	LogCompress  bool          `mapstructure:"log_compress" yaml:"log_compress"`
}

var DefaultConfig = Config{
	SyncNode:     "https://krist.dev",
	Timeout:      15 * time.Second,
	RateLimit:    5,
	RateBurst:    10,
	UserAgent:    "krist-explorer",
	PageSize:     15,
	Breakpoint:   100,
	Throttle:     300 * time.Millisecond,
	AutoRefresh:  0,
	StateFile:    "./state/explorer.db",
	LogFile:      "./logs/explorer.log",
	LogLevel:     "info",
	LogFileSize:  10,
	LogFileCount: 5,
}

// Validate checks required fields and fills zero values from DefaultConfig
func (c *Config) Validate() error {
	if c.SyncNode == "" {
		return &ConfigError{Field: "sync_node", Message: "sync node URL is required"}
	}

	if !strings.HasPrefix(c.SyncNode, "http://") && !strings.HasPrefix(c.SyncNode, "https://") {
		return &ConfigError{Field: "sync_node", Message: "sync node URL must be http or https"}
	}

	if c.RateLimit < 0 {
		return &ConfigError{Field: "rate_limit", Message: "rate limit cannot be negative"}
	}

	if c.Timeout <= 0 {
		c.Timeout = DefaultConfig.Timeout
	}

	if c.RateBurst <= 0 {
		c.RateBurst = DefaultConfig.RateBurst
	}

	if c.PageSize <= 0 {
		c.PageSize = DefaultConfig.PageSize
	}

	if c.Breakpoint <= 0 {
		c.Breakpoint = DefaultConfig.Breakpoint
	}

	if c.Throttle <= 0 {
		c.Throttle = DefaultConfig.Throttle
	}

	if c.LogFileSize <= 0 {
		c.LogFileSize = DefaultConfig.LogFileSize
	}

	if c.LogFileCount <= 0 {
		c.LogFileCount = DefaultConfig.LogFileCount
	}

	if c.UserAgent == "" {
		c.UserAgent = DefaultConfig.UserAgent
	}

	c.SyncNode = strings.TrimRight(c.SyncNode, "/")

	return nil
}

type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

// BindFlags registers the command-line overrides understood by LoadConfig
func BindFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a krist-explorer.yaml file")
	fs.String("sync-node", DefaultConfig.SyncNode, "Krist sync node base URL")
	fs.Duration("timeout", DefaultConfig.Timeout, "HTTP request timeout")
	fs.Int("page-size", DefaultConfig.PageSize, "default listing page size")
	fs.Int("breakpoint", DefaultConfig.Breakpoint, "terminal width below which listings use the condensed list")
	fs.StringSlice("wallet", nil, "wallet address to track (repeatable)")
	fs.String("state-file", DefaultConfig.StateFile, "file used to persist history and wallets")
	fs.String("log-file", DefaultConfig.LogFile, "log file path")
	fs.String("log-level", DefaultConfig.LogLevel, "log level (debug, info, warn, error)")
}

// LoadConfig reads configuration from file, KRIST_* environment variables
// and the given flag set, in increasing order of precedence.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("krist-explorer")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "krist-explorer"))
	}
	v.SetEnvPrefix("KRIST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if path, _ := fs.GetString("config"); path != "" {
			v.SetConfigFile(path)
		}
		bindFlag(v, fs, "sync_node", "sync-node")
		bindFlag(v, fs, "timeout", "timeout")
		bindFlag(v, fs, "page_size", "page-size")
		bindFlag(v, fs, "breakpoint", "breakpoint")
		bindFlag(v, fs, "wallets", "wallet")
		bindFlag(v, fs, "state_file", "state-file")
		bindFlag(v, fs, "log_file", "log-file")
		bindFlag(v, fs, "log_level", "log-level")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	cfg := DefaultConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sync_node", DefaultConfig.SyncNode)
	v.SetDefault("timeout", DefaultConfig.Timeout)
	v.SetDefault("rate_limit", DefaultConfig.RateLimit)
	v.SetDefault("rate_burst", DefaultConfig.RateBurst)
	v.SetDefault("user_agent", DefaultConfig.UserAgent)
	v.SetDefault("page_size", DefaultConfig.PageSize)
	v.SetDefault("breakpoint", DefaultConfig.Breakpoint)
	v.SetDefault("throttle", DefaultConfig.Throttle)
	v.SetDefault("auto_refresh", DefaultConfig.AutoRefresh)
	v.SetDefault("wallets", []string{})
	v.SetDefault("state_file", DefaultConfig.StateFile)
	v.SetDefault("log_file", DefaultConfig.LogFile)
	v.SetDefault("log_level", DefaultConfig.LogLevel)
	v.SetDefault("log_file_size", DefaultConfig.LogFileSize)
	v.SetDefault("log_file_count", DefaultConfig.LogFileCount)
	v.SetDefault("log_compress", DefaultConfig.LogCompress)
}

// bindFlag only binds flags the user actually set, so file and environment
// values are not shadowed by flag defaults.
func bindFlag(v *viper.Viper, fs *pflag.FlagSet, key, name string) {
	f := fs.Lookup(name)
	if f == nil || !f.Changed {
		return
	}
	_ = v.BindPFlag(key, f)
}
