// Package config loads editor settings from defaults, an optional YAML file
// and SUBEDIT_ environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFileName = ".subedit.yaml"
	EnvPrefix       = "SUBEDIT"
)

// ErrExists is returned by WriteDefault when the file is already there.
var ErrExists = errors.New("config file already exists")

type Config struct {
	History   HistoryConfig   `mapstructure:"history"`
	Editing   EditingConfig   `mapstructure:"editing"`
	Translate TranslateConfig `mapstructure:"translate"`

	// file the settings were read from; empty when none was found
	Path string `mapstructure:"-"`
}

type HistoryConfig struct {
	AmendWindow time.Duration `mapstructure:"amend_window"`
}

type EditingConfig struct {
	SoftLinebreaks bool   `mapstructure:"soft_linebreaks"`
	DefaultStyle   string `mapstructure:"default_style"`
}

type TranslateConfig struct {
	Provider       string `mapstructure:"provider"`
	Model          string `mapstructure:"model"`
	SourceLanguage string `mapstructure:"source_language"`
	TargetLanguage string `mapstructure:"target_language"`
	Prompt         string `mapstructure:"prompt"`
	Concurrency    int    `mapstructure:"concurrency"`
	BatchSize      int    `mapstructure:"batch_size"`
}

// defaults, in the order they are written by WriteDefault
var defaults = []struct {
	key   string
	value interface{}
}{
	{"history.amend_window", "30s"},
	{"editing.soft_linebreaks", false},
	{"editing.default_style", "Default"},
	{"translate.provider", "gemini"},
	{"translate.model", ""},
	{"translate.source_language", ""},
	{"translate.target_language", ""},
	{"translate.prompt", ""},
	{"translate.concurrency", 3},
	{"translate.batch_size", 50},
}

// DefaultPath is ~/.subedit.yaml.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, DefaultFileName), nil
}

// Load reads the settings. An empty path means DefaultPath; a leading ~ is
// expanded. A missing file is not an error.
func Load(path string) (*Config, error) {
	path, err := resolve(path)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	for _, d := range defaults {
		v.SetDefault(d.key, d.value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	found := false
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
		found = true
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if found {
		cfg.Path = path
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.History.AmendWindow < 0 {
		return fmt.Errorf("history.amend_window must not be negative, got %s", c.History.AmendWindow)
	}
	if c.Translate.Concurrency <= 0 {
		return fmt.Errorf("translate.concurrency must be positive, got %d", c.Translate.Concurrency)
	}
	if c.Translate.BatchSize <= 0 {
		return fmt.Errorf("translate.batch_size must be positive, got %d", c.Translate.BatchSize)
	}
	return nil
}

// WriteDefault writes a YAML file holding every default setting. It will
// not overwrite an existing file.
func WriteDefault(path string) (string, error) {
	path, err := resolve(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrExists, path)
	}

	data, err := yaml.Marshal(defaultTree())
	if err != nil {
		return "", fmt.Errorf("failed to encode defaults: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// nests the dotted default keys
func defaultTree() map[string]map[string]interface{} {
	tree := make(map[string]map[string]interface{})
	for _, d := range defaults {
		section, key, _ := strings.Cut(d.key, ".")
		if tree[section] == nil {
			tree[section] = make(map[string]interface{})
		}
		tree[section][key] = d.value
	}
	return tree
}

func resolve(path string) (string, error) {
	if path == "" {
		return DefaultPath()
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	return expanded, nil
}
