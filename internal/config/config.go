// Package config loads the gr configuration file and bootstraps credentials on first run.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTheme   = "emacs"
	DefaultBGColor = "default"

	// FileName is the config file created inside the config directory.
	FileName = "config.yaml"
)

// Auth is the HTTP credential pair sent with every request.
type Auth struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Config is the effective configuration for one invocation. It is built once at startup
// and never mutated afterwards.
type Config struct {
	Auth    Auth
	Theme   string
	BGColor string
	BaseURL string
	Path    string
}

// fileConfig is the on-disk layout written on first run.
type fileConfig struct {
	Auth    Auth   `yaml:"auth"`
	Theme   string `yaml:"theme,omitempty"`
	BGColor string `yaml:"bg_color,omitempty"`
}

// DefaultDir returns ~/.config/gr.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gr"), nil
}

// SetDefaults registers the defaults for every known key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("auth.user", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("theme", DefaultTheme)
	v.SetDefault("bg_color", DefaultBGColor)
	v.SetDefault("base_url", "")
}

// Load reads the config file at path into v. When the file does not exist and the
// environment does not already supply a user, the credentials are requested through
// prompter and written to path before returning.
func Load(v *viper.Viper, path string, prompter Prompter, out io.Writer) (*Config, error) {
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	case errors.Is(statErr, os.ErrNotExist):
		if v.GetString("auth.user") == "" {
			auth, err := Bootstrap(path, prompter, out)
			if err != nil {
				return nil, err
			}
			v.Set("auth.user", auth.User)
			v.Set("auth.password", auth.Password)
		}
	default:
		return nil, fmt.Errorf("stat config %s: %w", path, statErr)
	}

	return &Config{
		Auth: Auth{
			User:     v.GetString("auth.user"),
			Password: v.GetString("auth.password"),
		},
		Theme:   v.GetString("theme"),
		BGColor: v.GetString("bg_color"),
		BaseURL: v.GetString("base_url"),
		Path:    path,
	}, nil
}

// Bootstrap prompts for credentials and persists them to a new config file at path.
func Bootstrap(path string, prompter Prompter, out io.Writer) (Auth, error) {
	if prompter == nil {
		return Auth{}, fmt.Errorf("config file %s not found and no prompt available", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Auth{}, fmt.Errorf("create config directory: %w", err)
	}

	fmt.Fprintln(out, "Enter the review server's HTTP credentials (Settings > HTTP Credentials):")
	user, err := prompter.Prompt("user> ")
	if err != nil {
		return Auth{}, fmt.Errorf("read user: %w", err)
	}
	password, err := prompter.PromptSecret("pswd> ")
	if err != nil {
		return Auth{}, fmt.Errorf("read password: %w", err)
	}
	auth := Auth{User: user, Password: password}

	if err := Write(path, fileConfig{Auth: auth}); err != nil {
		return Auth{}, err
	}
	return auth, nil
}

// Write marshals cfg as YAML to path, readable by the owner only.
func Write(path string, cfg any) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
