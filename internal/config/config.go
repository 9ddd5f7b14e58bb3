// Package config loads speccheck settings from the user config, the project
// config, SPECCHECK_ environment variables and command line flags, in
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ProjectFile is the per-project config file name.
const ProjectFile = ".speccheck.yaml"

// EnvPrefix prefixes environment overrides, e.g. SPECCHECK_MODE.
const EnvPrefix = "SPECCHECK"

// Config holds settings shared by all commands.
type Config struct {
	Mode               string       `mapstructure:"mode"`
	LateSubmission     bool         `mapstructure:"late_submission"`
	Theme              string       `mapstructure:"theme"`
	Format             string       `mapstructure:"format"`
	Wrap               int          `mapstructure:"wrap"`
	LogLevel           string       `mapstructure:"log_level"`
	History            string       `mapstructure:"history"`
	CheckerName        string       `mapstructure:"checker_name"`
	CapabilityPackages []string     `mapstructure:"capability_packages"`
	Checklist          []string     `mapstructure:"checklist"`
	Source             SourceConfig `mapstructure:"source"`
}

// SourceConfig holds the source-level checks added to snapshots.
type SourceConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedImports []string `mapstructure:"allowed_imports"`
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "student")
	v.SetDefault("late_submission", false)
	v.SetDefault("theme", "default")
	v.SetDefault("format", "auto")
	v.SetDefault("wrap", 65)
	v.SetDefault("log_level", "warn")
	v.SetDefault("history", "")
	v.SetDefault("checker_name", "")
	v.SetDefault("capability_packages", []string{})
	v.SetDefault("checklist", []string{})
	v.SetDefault("source.enabled", false)
	v.SetDefault("source.allowed_imports", []string{})
}

// BindFlags binds the flags of fs whose names match config keys. Dashes in
// flag names map to underscores.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !isKnownKey(key) {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("bind flag %s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

func isKnownKey(key string) bool {
	for _, k := range knownKeys {
		if k == key {
			return true
		}
	}
	return false
}

var knownKeys = []string{
	"mode", "late_submission", "theme", "format", "wrap", "log_level",
	"history", "checker_name", "capability_packages", "checklist",
}

// Load reads the user config, then merges the nearest project config found
// from dir upwards. Missing files are not errors.
func Load(v *viper.Viper, dir string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(UserConfigDir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if path := FindProjectConfig(dir); path != "" {
		pv := viper.New()
		pv.SetConfigFile(path)
		if err := pv.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", path, err)
		}
		if err := v.MergeConfigMap(pv.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}
	return Decode(v)
}

// LoadFromPath reads one config file over the defaults.
func LoadFromPath(path string) (*Config, error) {
	v := New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return Decode(v)
}

// Decode unmarshals the current settings of v.
func Decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// UserConfigDir returns the XDG config directory for speccheck.
func UserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "speccheck")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "speccheck")
	}
	return filepath.Join(home, ".config", "speccheck")
}

// FindProjectConfig searches dir and its parents for ProjectFile.
func FindProjectConfig(dir string) string {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, ProjectFile)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
