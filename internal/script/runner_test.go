/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"zoomview/internal/vector"
	"zoomview/internal/zoom"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func mustParse(t *testing.T, input string) Script {
	t.Helper()
	s, errs := Parse([]byte(input))
	if len(errs) != 0 {
		t.Fatalf("parse errors: %+v", errs)
	}
	return s
}

func TestRunDoubleTapCycle(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "cycle.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	var events []string
	res, err := Run(s, Options{Params: zoom.DefaultParams(), Events: func(name string, _ map[string]any) {
		events = append(events, name)
	}})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("expectations failed: %v", res.Failures)
	}
	if res.Scale != 0.25 || res.Fit != 0.25 || !res.Fitted {
		t.Fatalf("unexpected end state: %+v", res)
	}
	if res.Frames != 4 || res.Ticks == 0 || res.Pushes <= res.Ticks {
		t.Fatalf("counters: frames=%d ticks=%d pushes=%d", res.Frames, res.Ticks, res.Pushes)
	}
	if len(events) != 7 || events[0] != "fit" || events[6] != "autozoom.done" {
		t.Fatalf("events = %v", events)
	}
}

func TestRunPinchClampsAtMax(t *testing.T) {
	s := mustParse(t, `viewport: {width: 1000, height: 800}
content: {width: 1000, height: 800}
steps:
  - layout: {}
  - pinch: {factor: 1.5, x: 500, y: 400}
  - pinch: {factor: 1.5, x: 500, y: 400}
  - pinch: {factor: 1.5, x: 500, y: 400}
  - expect: {scale: 3.375}
  - pinch: {factor: 1.5, x: 500, y: 400}
  - expect: {scale: 4, tolerance: 0.000001}
  - pinch: {factor: 0}
  - pinch: {factor: -3}
  - expect: {scale: 4, tolerance: 0.000001}
`)
	res, err := Run(s, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("expectations failed: %v", res.Failures)
	}
}

func TestRunReportsFailures(t *testing.T) {
	s := mustParse(t, `viewport: {width: 1000, height: 800}
content: {width: 1000, height: 800}
steps:
  - layout: {}
  - expect: {scale: 3, fitted: false}
  - doubletap: {x: 1, y: 1}
  - settle: {max_ticks: 2}
`)
	res, err := Run(s, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(res.Failures) != 3 {
		t.Fatalf("expected 3 failures, got %v", res.Failures)
	}
	if res.Failures[0].Step != 1 || res.Failures[0].LineNo != 5 {
		t.Fatalf("failure position: %+v", res.Failures[0])
	}
	if res.Failures[2].Step != 3 || res.Ticks != 2 {
		t.Fatalf("settle failure: %+v ticks=%d", res.Failures[2], res.Ticks)
	}
}

func TestRunWithoutContentIsNoOp(t *testing.T) {
	s := mustParse(t, `viewport: {width: 1000, height: 800}
steps:
  - layout: {}
  - pointer: {action: down, points: [[1, 1]]}
  - pointer: {action: move, points: [[300, 300]]}
  - pinch: {factor: 2, x: 1, y: 1}
  - doubletap: {x: 1, y: 1}
  - expect: {fitted: false, animating: false, scale: 1}
  - expect: {left: 0}
`)
	res, err := Run(s, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.HasContent || res.Pushes != 0 || res.Frames != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Failures) != 1 || res.Failures[0].Message != "no content loaded" {
		t.Fatalf("failures = %v", res.Failures)
	}
}

func TestRunImageContent(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "image.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if _, err := Run(s, Options{}); err == nil {
		t.Fatalf("expected an error without an image loader")
	}

	var asked string
	res, err := Run(s, Options{ImageSize: func(path string) (vector.Size, error) {
		asked = path
		return vector.Size{W: 20, H: 10}, nil
	}})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if asked != s.ImagePath() || !res.OK() {
		t.Fatalf("asked=%q failures=%v", asked, res.Failures)
	}

	boom := errors.New("boom")
	if _, err := Run(s, Options{ImageSize: func(string) (vector.Size, error) { return vector.Size{}, boom }}); !errors.Is(err, boom) {
		t.Fatalf("loader error not wrapped: %v", err)
	}
}

func TestScriptParamsOverrides(t *testing.T) {
	s := Script{Engine: EngineOverrides{MaxScale: 8, StepIn: 1.2}}
	p := s.Params(zoom.DefaultParams())
	if p.MaxScale != 8 || p.StepIn != 1.2 || p.MediumScale != 2 {
		t.Fatalf("overrides not applied: %+v", p)
	}
}
