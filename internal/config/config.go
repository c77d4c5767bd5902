/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type PresenterConfig struct {
	// ReloadDebounceMs coalesces file events before the script is reparsed.
	ReloadDebounceMs int  `yaml:"reload_debounce_ms"`
	Autoplay         bool `yaml:"autoplay"`
	// History enables the per-script SQLite history next to the script.
	History       bool `yaml:"history"`
	KeepSnapshots int  `yaml:"keep_snapshots"`
	KeepBackups   int  `yaml:"keep_backups"`
	StageColumns  int  `yaml:"stage_columns"`
	StageRows     int  `yaml:"stage_rows"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Presenter     PresenterConfig `yaml:"presenter"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Presenter: PresenterConfig{
			ReloadDebounceMs: 200,
			Autoplay:         false,
			History:          true,
			KeepSnapshots:    100,
			KeepBackups:      20,
			StageColumns:     80,
			StageRows:        24,
		},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvReloadDebounceMs = "GPP_RELOAD_DEBOUNCE_MS"
	EnvAutoplay         = "GPP_AUTOPLAY"
	EnvHistory          = "GPP_HISTORY"
	EnvKeepSnapshots    = "GPP_KEEP_SNAPSHOTS"
	EnvKeepBackups      = "GPP_KEEP_BACKUPS"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GPP_LOG_LEVEL"
	EnvLogFormat = "GPP_LOG_FORMAT"
	EnvLogSource = "GPP_LOG_SOURCE"
	EnvLogFile   = "GPP_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "gopinpoint")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "gopinpoint")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "gopinpoint")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "gopinpoint")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), err
	}
	return LoadFrom(path)
}

// LoadFrom is Load for an explicit file path. A missing file yields the defaults;
// a malformed one is reported and the defaults stay in place.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// absent keys keep their default values
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes cfg as YAML to path.
func SaveTo(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Presenter.ReloadDebounceMs > 0 {
		dst.Presenter.ReloadDebounceMs = src.Presenter.ReloadDebounceMs
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Presenter.Autoplay = src.Presenter.Autoplay
	dst.Presenter.History = src.Presenter.History
	if src.Presenter.KeepSnapshots >= 0 {
		dst.Presenter.KeepSnapshots = src.Presenter.KeepSnapshots
	}
	if src.Presenter.KeepBackups >= 0 {
		dst.Presenter.KeepBackups = src.Presenter.KeepBackups
	}
	if src.Presenter.StageColumns > 0 {
		dst.Presenter.StageColumns = src.Presenter.StageColumns
	}
	if src.Presenter.StageRows > 0 {
		dst.Presenter.StageRows = src.Presenter.StageRows
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvReloadDebounceMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Presenter.ReloadDebounceMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutoplay)); v != "" {
		cfg.Presenter.Autoplay = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistory)); v != "" {
		cfg.Presenter.History = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvKeepSnapshots)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Presenter.KeepSnapshots = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvKeepBackups)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Presenter.KeepBackups = n
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var name string
	switch key {
	case "presenter.reload_debounce_ms":
		name = EnvReloadDebounceMs
	case "presenter.autoplay":
		name = EnvAutoplay
	case "presenter.history":
		name = EnvHistory
	case "presenter.keep_snapshots":
		name = EnvKeepSnapshots
	case "presenter.keep_backups":
		name = EnvKeepBackups
	case "logging.level":
		name = EnvLogLevel
	case "logging.format":
		name = EnvLogFormat
	case "logging.source":
		name = EnvLogSource
	case "logging.file":
		name = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(name) != "" {
		return name, true
	}
	return "", false
}

// ReloadDebounce returns the debounce delay in milliseconds, falling back to the default.
func (p PresenterConfig) ReloadDebounce() int {
	if p.ReloadDebounceMs <= 0 {
		return Defaults().Presenter.ReloadDebounceMs
	}
	return p.ReloadDebounceMs
}
