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
	"fmt"
	"log/slog"
	"time"

	"zoomview/internal/gesture"
	applog "zoomview/internal/log"
	"zoomview/internal/vector"
	"zoomview/internal/zoom"
)

const (
	frameGap         = 16 * time.Millisecond
	defaultMaxTicks  = 1000
	defaultTolerance = 1e-3
)

// Options configure a replay.
type Options struct {
	Params zoom.Params
	// ImageSize reports the intrinsic size of the script's image. Required
	// when the script names one.
	ImageSize func(path string) (vector.Size, error)
	// Events receives engine milestones.
	Events zoom.EventFunc
}

// Failure is a failed expectation or a step that could not complete.
type Failure struct {
	Step    int // 0-based step index
	LineNo  int
	Message string
}

func (f Failure) String() string { return fmt.Sprintf("step %d (line %d): %s", f.Step, f.LineNo, f.Message) }

// Result summarises a replay.
type Result struct {
	Name       string
	Viewport   vector.Size
	Content    vector.Size
	HasContent bool
	Transform  vector.Affine2D
	Scale      float32
	Fit        float32
	Fitted     bool
	Frames     int
	Ticks      int
	Pushes     int
	Elapsed    time.Duration // replay clock, not wall time
	Failures   []Failure
}

// OK reports whether every expectation held.
func (r Result) OK() bool { return len(r.Failures) == 0 }

// memHost is the in-memory surface a replay renders into.
type memHost struct {
	vp      vector.Size
	content vector.Size
	loaded  bool
	pushes  int
	last    vector.Affine2D
}

func (h *memHost) ViewportSize() vector.Size        { return h.vp }
func (h *memHost) ContentSize() (vector.Size, bool) { return h.content, h.loaded }
func (h *memHost) ApplyTransform(m vector.Affine2D) { h.pushes++; h.last = m }

// Params returns p with the script's engine overrides applied.
func (s Script) Params(p zoom.Params) zoom.Params {
	o := s.Engine
	if o.MaxScale > 0 {
		p.MaxScale = o.MaxScale
	}
	if o.MediumScale > 0 {
		p.MediumScale = o.MediumScale
	}
	if o.TouchSlop > 0 {
		p.TouchSlop = o.TouchSlop
	}
	if o.StepIn > 0 {
		p.StepIn = o.StepIn
	}
	if o.StepOut > 0 {
		p.StepOut = o.StepOut
	}
	return p
}

// Run replays s on a fresh engine. Ticks are delivered synchronously; the
// replay clock advances by the tick period per tick so tap timing behaves as
// it would on screen. The error reports setup problems only; failed
// expectations are collected in the Result.
func Run(s Script, opts Options) (Result, error) {
	l := applog.WithOperation(applog.WithComponent("script"), "run")
	h := &memHost{vp: vector.Size{W: s.Viewport.Width, H: s.Viewport.Height}}
	switch {
	case s.Content != nil:
		h.content, h.loaded = vector.Size{W: s.Content.Width, H: s.Content.Height}, true
	case s.Image != "":
		if opts.ImageSize == nil {
			return Result{}, errors.New("script names an image but no image loader is configured")
		}
		sz, err := opts.ImageSize(s.ImagePath())
		if err != nil {
			return Result{}, fmt.Errorf("image %s: %w", s.ImagePath(), err)
		}
		h.content, h.loaded = sz, true
	}

	p := s.Params(opts.Params)
	e := zoom.New(h, p)
	p = e.Params()
	if opts.Events != nil {
		e.SetEventFunc(opts.Events)
	}
	res := Result{Name: s.Name, Viewport: h.vp, Content: h.content, HasContent: h.loaded}
	var clock time.Duration
	fail := func(i int, st Step, format string, args ...any) {
		res.Failures = append(res.Failures, Failure{Step: i, LineNo: st.LineNo, Message: fmt.Sprintf(format, args...)})
	}

	for i, st := range s.Steps {
		switch st.Kind {
		case StepLayout:
			e.Layout()
		case StepContentChanged:
			e.ContentChanged()
		case StepPointer:
			f, err := pointerFrame(st.Pointer)
			if err != nil {
				fail(i, st, "%v", err)
				continue
			}
			gap := frameGap
			if st.Pointer.AfterMs != nil {
				gap = time.Duration(*st.Pointer.AfterMs) * time.Millisecond
			}
			clock += gap
			f.At = clock
			e.HandleFrame(f)
			res.Frames++
		case StepPinch:
			e.Pinch(st.Pinch.Factor, vector.Pt{X: st.Pinch.X, Y: st.Pinch.Y})
		case StepDoubleTap:
			e.DoubleTap(vector.Pt{X: st.DoubleTap.X, Y: st.DoubleTap.Y})
		case StepWait:
			clock += time.Duration(st.Wait.Ms) * time.Millisecond
		case StepSettle:
			limit := st.Settle.MaxTicks
			if limit <= 0 {
				limit = defaultMaxTicks
			}
			n := 0
			for e.Animating() && n < limit {
				e.Tick()
				n++
				clock += p.TickPeriod
			}
			res.Ticks += n
			if e.Animating() {
				fail(i, st, "auto-zoom still running after %d ticks", limit)
			}
		case StepExpect:
			for _, msg := range check(e, st.Expect) {
				fail(i, st, "%s", msg)
			}
		}
	}

	res.Transform = e.Transform()
	res.Scale = e.Scale()
	res.Fit = e.InitialFitScale()
	res.Fitted = e.Fitted()
	res.Pushes = h.pushes
	res.Elapsed = clock
	l.Debug("script replayed",
		slog.String("name", s.Name), slog.Int("steps", len(s.Steps)),
		slog.Int("frames", res.Frames), slog.Int("ticks", res.Ticks),
		slog.Float64("scale", float64(res.Scale)), slog.Int("failures", len(res.Failures)))
	return res, nil
}

func pointerFrame(ps *PointerStep) (gesture.Frame, error) {
	a, err := gesture.ParseAction(ps.Action)
	if err != nil {
		return gesture.Frame{}, err
	}
	f := gesture.Frame{Action: a, Points: make([]vector.Pt, 0, len(ps.Points))}
	for _, xy := range ps.Points {
		if len(xy) != 2 {
			return gesture.Frame{}, fmt.Errorf("point %v: want [x, y]", xy)
		}
		f.Points = append(f.Points, vector.Pt{X: xy[0], Y: xy[1]})
	}
	return f, nil
}

func check(e *zoom.Engine, x *ExpectStep) []string {
	tol := x.Tolerance
	if tol <= 0 {
		tol = defaultTolerance
	}
	near := func(a, b float32) bool { return a-b <= tol && b-a <= tol }
	var out []string
	if x.Scale != nil && !near(e.Scale(), *x.Scale) {
		out = append(out, fmt.Sprintf("scale = %g, want %g", e.Scale(), *x.Scale))
	}
	if x.Left != nil || x.Top != nil {
		r, ok := e.ContentRect()
		switch {
		case !ok:
			out = append(out, "no content loaded")
		default:
			if x.Left != nil && !near(r.Left(), *x.Left) {
				out = append(out, fmt.Sprintf("left = %g, want %g", r.Left(), *x.Left))
			}
			if x.Top != nil && !near(r.Top(), *x.Top) {
				out = append(out, fmt.Sprintf("top = %g, want %g", r.Top(), *x.Top))
			}
		}
	}
	if x.Fitted != nil && e.Fitted() != *x.Fitted {
		out = append(out, fmt.Sprintf("fitted = %t, want %t", e.Fitted(), *x.Fitted))
	}
	if x.Animating != nil && e.Animating() != *x.Animating {
		out = append(out, fmt.Sprintf("animating = %t, want %t", e.Animating(), *x.Animating))
	}
	return out
}
