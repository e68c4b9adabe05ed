/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zoomview/internal/config"
)

// lastJSONLine returns the last non-empty line of b decoded as a JSON object.
func lastJSONLine(t *testing.T, b []byte) map[string]any {
	t.Helper()
	scanner := bufio.NewScanner(bytes.NewReader(b))
	var last string
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	return m
}

// TestInitAndStructuredLoggingToFile verifies that Init with a file handler writes JSON logs
// and that static and contextual attributes are present.
func TestInitAndStructuredLoggingToFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "zv.json")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "console", File: fpath, Console: &console})

	l := WithOperation(WithComponent("zoom"), "fit")
	l.Info("content fitted", slog.Float64("fit", 0.25))

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	m := lastJSONLine(t, b)
	if m["app"] != "zoomview" {
		t.Fatalf("missing app attr: %v", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "zoom" || m["op"] != "fit" {
		t.Fatalf("context attrs mismatch: %v", m)
	}
	if m["msg"] != "content fitted" || m["fit"] != 0.25 {
		t.Fatalf("record mismatch: %v", m)
	}

	// the console handler saw the same record
	if out := console.String(); !strings.Contains(out, "INF content fitted") || !strings.Contains(out, "component=zoom") {
		t.Fatalf("console output mismatch: %q", out)
	}
}

func TestInitJSONConsoleFiltersLevel(t *testing.T) {
	var console bytes.Buffer
	Init(Options{Level: "warn", Format: "JSON", Console: &console})
	L().Info("dropped")
	L().Warn("kept")
	if strings.Contains(console.String(), "dropped") {
		t.Fatalf("info record should be filtered at warn: %q", console.String())
	}
	if m := lastJSONLine(t, console.Bytes()); m["msg"] != "kept" || m["level"] != "WARN" {
		t.Fatalf("unexpected record: %v", m)
	}
}

func TestFromConfig(t *testing.T) {
	opts := FromConfig(config.LoggingConfig{Level: "debug", Format: "json", Source: true, File: "/tmp/zv.log"})
	if opts.Level != "debug" || opts.Format != "json" || !opts.AddSource || opts.File != "/tmp/zv.log" {
		t.Fatalf("FromConfig mismatch: %+v", opts)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in).Level(); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
