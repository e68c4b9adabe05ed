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
	"os"
	"path/filepath"
	"testing"
)

// isolate points the config file into a temp dir for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigFile, p)
	return p
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Engine.MaxScale != 4 || cfg.Engine.MediumScale != 2 || cfg.Engine.TickMs != 16 {
		t.Fatalf("unexpected engine defaults: %#v", cfg.Engine)
	}
}

func TestLoadFileMergesEngine(t *testing.T) {
	p := isolate(t)
	data := []byte("engine:\n  max_scale: 6\n  touch_slop: 12\ngeneral:\n  background: '#000000'\n")
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Engine.MaxScale != 6 || cfg.Engine.TouchSlop != 12 {
		t.Fatalf("file values not merged: %#v", cfg.Engine)
	}
	if cfg.Engine.StepIn != 1.07 {
		t.Fatalf("unset values should keep defaults, got step_in=%v", cfg.Engine.StepIn)
	}
	if cfg.General.Background != "#000000" {
		t.Fatalf("background = %q", cfg.General.Background)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	p := isolate(t)
	if err := os.WriteFile(p, []byte("engine: [1, 2"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Engine.MaxScale != 4 {
		t.Fatalf("defaults expected alongside the error, got %#v", cfg.Engine)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Engine.MaxScale = 8
	cfg.Logging.Level = "debug"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Engine.MaxScale != 8 || got.Logging.Level != "debug" {
		t.Fatalf("saved values lost: %#v", got)
	}
}

func TestEnvOverridesEngine(t *testing.T) {
	isolate(t)
	t.Setenv(EnvMaxScale, "5.5")
	t.Setenv(EnvTickMs, "20")
	t.Setenv(EnvTelemetryOptIn, "yes")
	t.Setenv(EnvHistory, "off")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Engine.MaxScale != 5.5 || cfg.Engine.TickMs != 20 || !cfg.General.TelemetryOptIn || cfg.General.History != "off" {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if env, ok := EnvOverrideFor("engine.max_scale"); !ok || env != EnvMaxScale {
		t.Fatalf("EnvOverrideFor(engine.max_scale) = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("engine.step_in"); ok {
		t.Fatalf("step_in has no env override")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/zv.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/zv.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/zv.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/zv.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}
