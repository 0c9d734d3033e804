// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the application configuration from defaults, the
// clientbook.yaml file, CLIENTBOOK_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/clientbook/internal/db"
)

const (
	configName = "clientbook"
	envPrefix  = "clientbook"
	// localConfigFile is merged from the working directory when present.
	localConfigFile = ".clientbook.yaml"
)

// Config is the complete application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Language string         `mapstructure:"language" yaml:"language"`
	LogLevel string         `mapstructure:"log_level" yaml:"log_level"`
	// Format is the default output format of listing commands.
	Format string `mapstructure:"format" yaml:"format"`
	// Menu is the console front end on a terminal: "tui" or "prompt".
	Menu string `mapstructure:"menu" yaml:"menu"`
}

// DatabaseConfig selects and addresses the store.
type DatabaseConfig struct {
	Type     string `mapstructure:"type" yaml:"type"`
	Name     string `mapstructure:"name" yaml:"name"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port,omitempty"`
	Dsn      string `mapstructure:"dsn" yaml:"dsn,omitempty"`
	Path     string `mapstructure:"path" yaml:"path,omitempty"`
	// Create makes startup create a missing database (CREATE DATABASE on
	// postgres and mysql, the parent directory on sqlite).
	Create bool `mapstructure:"create" yaml:"create"`
}

// ConnParams converts the database section for db.Open.
func (c Config) ConnParams() db.ConnParams {
	d := c.Database
	return db.ConnParams{
		Engine:   d.Type,
		Name:     d.Name,
		User:     d.User,
		Password: d.Password,
		Host:     d.Host,
		Port:     d.Port,
		DSN:      d.Dsn,
		Path:     d.Path,
	}
}

// Defaults returns the built-in configuration values keyed the way viper
// and the command-line flags name them.
func Defaults() map[string]any {
	return map[string]any{
		"database.type":   string(db.EngineSQLite),
		"database.name":   "clients_db",
		"database.user":   "postgres",
		"database.host":   "localhost",
		"database.port":   0,
		"database.path":   defaultSQLitePath(),
		"database.create": true,
		"language":        "en",
		"log_level":       "info",
		"format":          "table",
		"menu":            "tui",
	}
}

func defaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return db.DefaultSQLitePath
	}
	return filepath.Join(dir, configName, db.DefaultSQLitePath)
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		// System-wide configuration paths
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Clientbook")
		default: // Linux, macOS, etc.
			configDir = "/etc/clientbook"
		}
	} else {
		// User-specific configuration paths
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, configName)
	}

	return filepath.Join(configDir, configName+".yaml"), nil
}

// LoadConfig builds a T from defaults, the first clientbook.yaml found (or
// explicitPath), the environment and the flags of cmd. Not finding a file in
// the search path is not an error; a missing explicit file is.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitPath *string) (T, error) {
	var c T
	v := viper.New()

	// 1. Set defaults
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// 2. Set up file search paths
	v.SetConfigName(configName)
	v.SetConfigType("yaml")

	// 3. Add explicit config file path if provided via --config flag.
	// This has the highest precedence for file-based configuration.
	if explicitPath != nil && *explicitPath != "" {
		v.SetConfigFile(*explicitPath)
	}

	// 4. Add standard config locations
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	// 5. Read in the primary config file.
	if err := v.ReadInConfig(); err != nil {
		// It's okay if the file is not found, but other errors are fatal.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 6. A .clientbook.yaml in the working directory overrides the file above.
	mergeLocalConfig(v)

	// 7. Read from environment variables
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 8. Flags win over everything that was set explicitly on the command line.
	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// mergeLocalConfig merges .clientbook.yaml from the current directory into v
// if the file exists. A malformed file is ignored so startup is not blocked.
func mergeLocalConfig(v *viper.Viper) {
	if _, err := os.Stat(localConfigFile); err != nil {
		return
	}
	local := viper.New()
	local.SetConfigFile(localConfigFile)
	local.SetConfigType("yaml")
	if err := local.ReadInConfig(); err != nil {
		return
	}
	_ = v.MergeConfigMap(local.AllSettings())
}

// WriteConfigFile writes c as YAML to the user (or system) config path and
// returns that path. The file is created with mode 0600 because it may hold
// the database password.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}
	return path, WriteConfigFileTo(c, path)
}

// WriteConfigFileTo writes c as YAML to path, creating parent directories.
func WriteConfigFileTo[T any](c *T, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Exists reports whether a config file is present in the user or system location.
func Exists() bool {
	for _, system := range []bool{false, true} {
		if p, err := GetConfigPath(system); err == nil {
			if _, err := os.Stat(p); err == nil {
				return true
			}
		}
	}
	return false
}
