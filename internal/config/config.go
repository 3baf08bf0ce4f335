// Package config loads repolens settings from defaults, an optional
// .repolens.yaml, REPOLENS_* environment variables and bound CLI flags.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/phobologic/repolens/internal/lang"
)

// FileName is the base name of the per-repository config file.
const FileName = ".repolens"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Formats lists the supported output formats.
var Formats = []string{"toon", "json", "yaml"}

// Config holds analysis and output settings.
type Config struct {
	MaxFiles        int      `mapstructure:"max_files"`
	MaxFileSize     int      `mapstructure:"max_file_size"`
	Workers         int      `mapstructure:"workers"`
	Languages       []string `mapstructure:"languages"`
	Include         []string `mapstructure:"include"`
	Exclude         []string `mapstructure:"exclude"`
	Format          string   `mapstructure:"format"`
	LogLevel        string   `mapstructure:"log_level"`
	LogFormat       string   `mapstructure:"log_format"`
	CacheDir        string   `mapstructure:"cache_dir"`
	MaxCycles       int      `mapstructure:"max_cycles"`
	MemoSize        int      `mapstructure:"memo_size"`
	DevDependencies bool     `mapstructure:"dev_dependencies"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("max_files", 50)
	v.SetDefault("max_file_size", 1_000_000)
	v.SetDefault("workers", 0)
	v.SetDefault("languages", []string{})
	v.SetDefault("include", []string{})
	v.SetDefault("exclude", []string{})
	v.SetDefault("format", "toon")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("cache_dir", "")
	v.SetDefault("max_cycles", 100)
	v.SetDefault("memo_size", 4096)
	v.SetDefault("dev_dependencies", false)
}

// Load reads configuration into v and decodes it. configFile, when set,
// must exist; otherwise .repolens.yaml in root is used if present.
func Load(v *viper.Viper, root, configFile string) (*Config, error) {
	v.SetEnvPrefix("REPOLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(root)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.CacheDir != "" && !filepath.IsAbs(cfg.CacheDir) {
		cfg.CacheDir = filepath.Join(root, cfg.CacheDir)
	}
	return &cfg, cfg.Validate()
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if !contains(Formats, c.Format) {
		return fmt.Errorf("%w: unsupported format %q (want one of %s)", ErrInvalid, c.Format, strings.Join(Formats, ", "))
	}
	if c.MaxFiles < 0 {
		return fmt.Errorf("%w: max_files must not be negative", ErrInvalid)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("%w: max_file_size must be positive", ErrInvalid)
	}
	known := lang.Names()
	for _, name := range c.Languages {
		if !contains(known, name) {
			return fmt.Errorf("%w: unsupported language %q", ErrInvalid, name)
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
