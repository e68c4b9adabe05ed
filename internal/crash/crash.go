/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a report file, a log record and an
// optional telemetry upload before exiting.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "zoomview/internal/log"
	"zoomview/internal/telemetry"
	"zoomview/internal/version"
)

// ExitCode is the process exit code after a recovered panic. It differs
// from the CLI's usage (2) and runtime error (1) codes.
const ExitCode = 3

// exitFn is swapped in tests so Recover does not terminate the process.
var exitFn = os.Exit

// Info describes what the application was doing. All fields are optional.
type Info struct {
	Dir     string        // report directory; os.TempDir() when empty
	Content string        // path of the image being viewed
	State   func() string // snapshot of the viewer state, e.g. the transform
}

// Recover captures a panic, logs it with its stack, writes and uploads a
// report, flushes pending telemetry and exits with ExitCode. Deferred calls
// above the panicking frame do not run after that, so telemetry is closed here.
//
// Usage: defer crash.Recover(info)
func Recover(info *Info) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(info, r, stack)
	if err != nil {
		l.Error("crash report not written", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\n", version.String()); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	telemetry.Close()
	exitFn(ExitCode)
}

func writeReport(info *Info, panicVal any, stack []byte) (string, error) {
	if info == nil {
		info = &Info{}
	}
	dir := info.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "ZoomView Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if info.Content != "" {
		_, _ = fmt.Fprintf(&buf, "Content: %s\n", info.Content)
	}
	if info.State != nil {
		_, _ = fmt.Fprintf(&buf, "State: %s\n", stateOf(info.State))
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}

// stateOf calls fn, which may itself panic when the viewer is corrupt.
func stateOf(fn func() string) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("<unavailable: %v>", r)
		}
	}()
	return fn()
}
