/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"zoomview/internal/telemetry"
)

func TestWriteReportCreatesFile(t *testing.T) {
	dir := t.TempDir()
	info := &Info{Dir: dir, Content: "/pics/a.png", State: func() string { return "scale=2" }}
	path, err := writeReport(info, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("report outside %s: %s", dir, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	for _, want := range []string{"ZoomView Crash Report", "Content: /pics/a.png", "State: scale=2", "Panic: boom", "stacktrace"} {
		if !strings.Contains(s, want) {
			t.Fatalf("report missing %q:\n%s", want, s)
		}
	}
}

func TestWriteReportNilInfoUsesTemp(t *testing.T) {
	path, err := writeReport(nil, "boom", nil)
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	defer os.Remove(path)
	if filepath.Dir(path) != filepath.Clean(os.TempDir()) {
		t.Fatalf("expected report in temp dir, got %s", path)
	}
}

func TestWriteReportPanickingState(t *testing.T) {
	info := &Info{Dir: t.TempDir(), State: func() string { panic("corrupt") }}
	path, err := writeReport(info, "boom", nil)
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "State: <unavailable: corrupt>") {
		t.Fatalf("state panic not contained: %s", b)
	}
}

// TestRecover_Panicking ensures Recover handles a panic, writes a report and
// asks to exit with ExitCode.
func TestRecover_Panicking(t *testing.T) {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	func() {
		defer Recover(&Info{Dir: dir})
		panic("boom")
	}()

	files, _ := os.ReadDir(dir)
	var found string
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log") {
			found = filepath.Join(dir, f.Name())
		}
	}
	if found == "" {
		t.Fatalf("expected crash report file in %s", dir)
	}
	b, _ := os.ReadFile(found)
	if !strings.Contains(string(b), "Panic: boom") {
		t.Fatalf("report does not contain panic: %s", b)
	}
	if called != ExitCode {
		t.Fatalf("expected exit code %d, got %d", ExitCode, called)
	}
}

func TestRecover_NoPanic(t *testing.T) {
	called := -1
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()
	func() {
		defer Recover(nil)
	}()
	if called != -1 {
		t.Fatalf("exit must not be called without a panic")
	}
}

// The report must reach the crash endpoint before exit is requested.
func TestRecover_UploadsBeforeExit(t *testing.T) {
	oldStderr := os.Stderr
	devnull, _ := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	os.Stderr = devnull
	defer func() {
		os.Stderr = oldStderr
		_ = devnull.Close()
	}()

	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	telemetry.NewDefault(telemetry.Config{OptIn: true, CrashURL: srv.URL, Timeout: 2 * time.Second})
	defer telemetry.Close()

	uploaded := -1
	oldExit := exitFn
	exitFn = func(code int) {
		mu.Lock()
		uploaded = len(bodies)
		mu.Unlock()
	}
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(&Info{Dir: t.TempDir()})
		panic("upload me")
	}()

	if uploaded != 1 {
		t.Fatalf("expected 1 upload before exit, got %d", uploaded)
	}
	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(bodies[0], "Panic: upload me") {
		t.Fatalf("upload does not carry the report: %q", bodies[0])
	}
}
