// Package config provides project-level configuration for nitpicker.
// It supports loading configuration from .nitpicker/config.yaml files with
// proper precedence: CLI flags > action inputs > project config > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name for nitpicker configuration
	ConfigDir = ".nitpicker"
	// ConfigFile is the name of the configuration file
	ConfigFile = "config.yaml"
	// ConfigPath is the full path to the config file relative to project root
	ConfigPath = ConfigDir + "/" + ConfigFile

	// DefaultRulesPath is where rules are read from when nothing else is configured.
	DefaultRulesPath = ".github/nitpicks.yml"
	// DefaultCheckName is the name of the check run reporting the conclusion.
	DefaultCheckName = "nitpicker"
	// DefaultConcurrency bounds concurrent comment writes.
	DefaultConcurrency = 4
)

// ProjectConfig represents the project-level configuration for nitpicker.
// It provides defaults that can be overridden by action inputs and CLI flags.
type ProjectConfig struct {
	// Rules is the path of the rules file, relative to the repository root.
	Rules string `yaml:"rules,omitempty"`

	// BotLogin is the login existing comments are attributed to.
	BotLogin string `yaml:"bot_login,omitempty"`

	// CheckName names the check run.
	CheckName string `yaml:"check_name,omitempty"`

	// LogLevel is the default log level (debug, info, warn, error)
	LogLevel string `yaml:"log_level,omitempty"`

	// Concurrency bounds concurrent comment writes; zero means the default.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Dir is the directory the config was found in. Empty when no file exists.
	Dir string `yaml:"-"`
}

// Load loads the project configuration from the given directory.
// It searches for .nitpicker/config.yaml in the directory and its parents.
//
// If no config file is found, it returns a zero config and nil error.
// If a config file is found but cannot be parsed, it returns an error.
func Load(dir string) (*ProjectConfig, error) {
	configPath, err := findConfigPath(dir)
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		return &ProjectConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Concurrency < 0 {
		return nil, fmt.Errorf("invalid concurrency %d in %s", cfg.Concurrency, configPath)
	}
	cfg.Dir = filepath.Dir(filepath.Dir(configPath))

	return &cfg, nil
}

// LoadFromCurrentDir loads the project configuration from the current working directory.
func LoadFromCurrentDir() (*ProjectConfig, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return Load(dir)
}

// findConfigPath searches for .nitpicker/config.yaml in dir and its parent directories.
// It returns the full path to the config file, or empty string if not found.
func findConfigPath(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	for {
		configPath := filepath.Join(absDir, ConfigPath)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parentDir := filepath.Dir(absDir)
		if parentDir == absDir {
			return "", nil
		}
		absDir = parentDir
	}
}

// ResolveString returns the effective value for a string configuration field.
// Precedence: cliValue > configValue > defaultValue.
// Returns the effective value and its source ("cli", "config", or "default").
func (c *ProjectConfig) ResolveString(cliValue, configValue, defaultValue string) (string, string) {
	if cliValue != "" {
		return cliValue, "cli"
	}
	if configValue != "" {
		return configValue, "config"
	}
	return defaultValue, "default"
}

// ResolveRules returns the effective rules path and its source.
// A relative path from the project config is anchored at the project root.
func (c *ProjectConfig) ResolveRules(cliValue string) (string, string) {
	path, source := c.ResolveString(cliValue, c.Rules, DefaultRulesPath)
	if source == "config" && c.Dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(c.Dir, path)
	}
	return path, source
}

// ResolveBotLogin returns the effective bot login and its source.
func (c *ProjectConfig) ResolveBotLogin(cliValue, defaultValue string) (string, string) {
	return c.ResolveString(cliValue, c.BotLogin, defaultValue)
}

// ResolveCheckName returns the effective check run name and its source.
func (c *ProjectConfig) ResolveCheckName(cliValue string) (string, string) {
	return c.ResolveString(cliValue, c.CheckName, DefaultCheckName)
}

// ResolveLogLevel returns the effective log level and its source.
func (c *ProjectConfig) ResolveLogLevel(cliValue, defaultValue string) (string, string) {
	return c.ResolveString(cliValue, c.LogLevel, defaultValue)
}

// ResolveConcurrency returns the effective write concurrency and its source.
func (c *ProjectConfig) ResolveConcurrency(cliValue int) (int, string) {
	if cliValue > 0 {
		return cliValue, "cli"
	}
	if c.Concurrency > 0 {
		return c.Concurrency, "config"
	}
	return DefaultConcurrency, "default"
}
