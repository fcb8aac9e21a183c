// Package config loads the expand-go configuration from config files, the
// environment and .env files.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the file system used for config and source files.
var AppFs = afero.NewOsFs()

// FileName is the config file name without extension.
const FileName = ".expand-go"

// Config holds the application configuration
type Config struct {
	MemoCapacity  int
	MaxDepth      int
	ReportDSN     string
	Env           map[string]string
	ConfigVersion string
	// File is the config file that was read, if any.
	File string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("memo_capacity", 0)
	v.SetDefault("max_depth", 16)
	v.SetDefault("report_dsn", "")
	v.SetDefault("config_version", "1.0.0")
}

// Load reads configuration into v. An explicit path overrides the search
// in ., $HOME and $HOME/.config/expand-go.
func Load(v *viper.Viper, path string) (*Config, error) {
	v.SetFs(AppFs)
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "expand-go"))
	}

	v.SetEnvPrefix("EXPAND_GO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	env, err := loadDotEnv()
	if err != nil {
		return nil, err
	}
	// Entries are KEY=VALUE strings; viper would fold map keys to lower case.
	for _, entry := range v.GetStringSlice("env") {
		k, val, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("env entry %q: expected KEY=VALUE", entry)
		}
		env[k] = val
	}

	return &Config{
		MemoCapacity:  v.GetInt("memo_capacity"),
		MaxDepth:      v.GetInt("max_depth"),
		ReportDSN:     v.GetString("report_dsn"),
		Env:           env,
		ConfigVersion: v.GetString("config_version"),
		File:          v.ConfigFileUsed(),
	}, nil
}

// loadDotEnv reads .env and then .env.local, later files overriding
// earlier ones. The values become the environment of env! and option_env!.
func loadDotEnv() (map[string]string, error) {
	env := map[string]string{}
	for _, name := range []string{".env", ".env.local"} {
		f, err := AppFs.Open(name)
		if err != nil {
			continue
		}
		vals, err := godotenv.Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		for k, val := range vals {
			env[k] = val
		}
	}
	return env, nil
}

// Save writes cfg to path.
func Save(cfg *Config, path string) error {
	v := viper.New()
	v.SetFs(AppFs)
	v.Set("memo_capacity", cfg.MemoCapacity)
	v.Set("max_depth", cfg.MaxDepth)
	v.Set("report_dsn", cfg.ReportDSN)
	v.Set("config_version", cfg.ConfigVersion)
	if len(cfg.Env) > 0 {
		entries := make([]string, 0, len(cfg.Env))
		for k, val := range cfg.Env {
			entries = append(entries, k+"="+val)
		}
		sort.Strings(entries)
		v.Set("env", entries)
	}

	if err := AppFs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return v.WriteConfigAs(path)
}

// DefaultPath is the user-level config file.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "expand-go", FileName+".yaml"), nil
}
