// Package config loads warifuri's own configuration: workspace
// discovery mode, execution limits, and GitHub/template integration
// settings. Defaults are set on the viper instance before any file is
// read, then overridden by whatever config file is found.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds warifuri's runtime configuration.
type Config struct {
	Discover DiscoverConfig `mapstructure:"discover"`
	Run      RunConfig      `mapstructure:"run"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Template TemplateConfig `mapstructure:"template"`
}

// DiscoverConfig controls workspace discovery.
type DiscoverConfig struct {
	// Mode is "strict" (a malformed task aborts discovery) or "safe"
	// (malformed tasks are skipped and recorded as discovery errors).
	Mode string `mapstructure:"mode"`
}

// RunConfig controls task execution.
type RunConfig struct {
	// TimeoutSeconds bounds a single task invocation; zero means no bound.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Timeout returns TimeoutSeconds as a time.Duration, or zero if unset.
func (r RunConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// GitHubConfig controls the `issue`/`pr` commands.
type GitHubConfig struct {
	Repo   string   `mapstructure:"repo"`
	Labels []string `mapstructure:"labels"`
}

// TemplateConfig controls `template init`.
type TemplateConfig struct {
	SkipPatterns []string `mapstructure:"skip_patterns"`
}

// LoadConfigWithFile loads configuration from a specific file if provided,
// otherwise falls back to LoadConfig with the working directory.
//
// The load order below (defaults on a fresh viper instance, then a
// local file, then a global fallback) is a standard viper idiom kept
// close to its usual shape; the settings it loads into are warifuri's own.
func LoadConfigWithFile(workDir, configFile string) (*Config, error) {
	if configFile != "" {
		return LoadConfigFromPath(configFile)
	}

	localPath := filepath.Join(workDir, "warifuri.yaml")
	if _, err := os.Stat(localPath); err == nil {
		return LoadConfig(workDir)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	globalPath, err := GlobalConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadConfigFromPath(globalPath)
}

// LoadConfig loads configuration from warifuri.yaml in the given
// directory. If no config file exists, sensible defaults are returned.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure viper
	v.SetConfigName("warifuri")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	// Read config file (ignore not found errors)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfigFromPath loads configuration from a specific file path
func LoadConfigFromPath(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Check if file exists
	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			cfg := &Config{}
			if err := v.Unmarshal(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	// Configure viper to read from specific file
	v.SetConfigFile(configPath)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults sets all default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("discover.mode", "safe")
	v.SetDefault("run.timeout_seconds", 0)
	v.SetDefault("github.labels", []string{})
	v.SetDefault("template.skip_patterns", []string{"*.pyc", "__pycache__", ".git", ".gitignore"})
}
