/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
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

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Background     string `yaml:"background"` // viewport colour as #rrggbb
	History        string `yaml:"history"`    // replay history db; empty means the user cache dir, "off" disables
}

// EngineConfig holds the pan/zoom tunables. Zero values mean "use the default".
type EngineConfig struct {
	MaxScale      float64 `yaml:"max_scale"`
	MediumScale   float64 `yaml:"medium_scale"`
	TouchSlop     float64 `yaml:"touch_slop"`
	StepIn        float64 `yaml:"step_in"`
	StepOut       float64 `yaml:"step_out"`
	TickMs        int     `yaml:"tick_ms"`
	TapMs         int     `yaml:"tap_ms"`
	DoubleTapMs   int     `yaml:"double_tap_ms"`
	DoubleTapSlop float64 `yaml:"double_tap_slop"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Engine        EngineConfig  `yaml:"engine"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Background: "#1e1e22"},
		Engine: EngineConfig{
			MaxScale:      4,
			MediumScale:   2,
			TouchSlop:     8,
			StepIn:        1.07,
			StepOut:       0.93,
			TickMs:        16,
			TapMs:         400,
			DoubleTapMs:   300,
			DoubleTapSlop: 100,
		},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile     = "ZV_CONFIG_FILE"
	EnvMaxScale       = "ZV_MAX_SCALE"
	EnvTouchSlop      = "ZV_TOUCH_SLOP"
	EnvTickMs         = "ZV_TICK_MS"
	EnvTelemetryOptIn = "ZV_TELEMETRY_OPT_IN"
	EnvHistory        = "ZV_HISTORY_DB"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "ZV_LOG_LEVEL"
	EnvLogFormat = "ZV_LOG_FORMAT"
	EnvLogSource = "ZV_LOG_SOURCE"
	EnvLogFile   = "ZV_LOG_FILE"
)

// ConfigPath returns the per-user config file path. ZV_CONFIG_FILE wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "ZoomView")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "ZoomView")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "zoomview")
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
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path. A missing file is not an error;
// a malformed one is.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
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
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if strings.TrimSpace(src.General.Background) != "" {
		dst.General.Background = strings.TrimSpace(src.General.Background)
	}
	if strings.TrimSpace(src.General.History) != "" {
		dst.General.History = strings.TrimSpace(src.General.History)
	}
	// engine: only positive values override
	e, s := &dst.Engine, src.Engine
	if s.MaxScale > 0 {
		e.MaxScale = s.MaxScale
	}
	if s.MediumScale > 0 {
		e.MediumScale = s.MediumScale
	}
	if s.TouchSlop > 0 {
		e.TouchSlop = s.TouchSlop
	}
	if s.StepIn > 0 {
		e.StepIn = s.StepIn
	}
	if s.StepOut > 0 {
		e.StepOut = s.StepOut
	}
	if s.TickMs > 0 {
		e.TickMs = s.TickMs
	}
	if s.TapMs > 0 {
		e.TapMs = s.TapMs
	}
	if s.DoubleTapMs > 0 {
		e.DoubleTapMs = s.DoubleTapMs
	}
	if s.DoubleTapSlop > 0 {
		e.DoubleTapSlop = s.DoubleTapSlop
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
	if v := strings.TrimSpace(os.Getenv(EnvMaxScale)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.MaxScale = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTouchSlop)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.TouchSlop = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTickMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.TickMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistory)); v != "" {
		cfg.General.History = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "engine.max_scale":
		env = EnvMaxScale
	case "engine.touch_slop":
		env = EnvTouchSlop
	case "engine.tick_ms":
		env = EnvTickMs
	case "general.telemetry_opt_in":
		env = EnvTelemetryOptIn
	case "general.history":
		env = EnvHistory
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}
