/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package zoom turns pointer input into a constrained pan/zoom transform for
// a single content surface shown inside a smaller viewport.
//
// An Engine is driven from one goroutine (the UI thread): pointer frames go
// to HandleFrame, animation ticks to Tick. It is not safe for concurrent use.
package zoom

import (
	"log/slog"

	"zoomview/internal/gesture"
	applog "zoomview/internal/log"
	"zoomview/internal/vector"
)

// Host is the surface the engine works for.
type Host interface {
	// ViewportSize is read on every correction; it may change between calls.
	ViewportSize() vector.Size
	// ContentSize returns the intrinsic content size, or false when no
	// content is loaded.
	ContentSize() (vector.Size, bool)
	// ApplyTransform receives the transform after every mutation.
	ApplyTransform(vector.Affine2D)
}

// EventFunc observes engine milestones ("fit", "autozoom.start",
// "autozoom.done"). Its signature matches telemetry.Event.
type EventFunc func(name string, props map[string]any)

type lifecycle int

const (
	stateUninitialized lifecycle = iota
	stateFitted
)

// Engine owns the content transform and the gesture state feeding it.
type Engine struct {
	host    Host
	params  Params
	log     *slog.Logger
	onEvent EventFunc

	m          vector.Affine2D
	state      lifecycle
	initialFit float32
	detached   bool

	taps  *gesture.TapDetector
	pinch *gesture.PinchDetector
	pan   panTracker
	anim  *autoZoom
}

// New creates an engine for host. The transform starts as the identity and
// is fitted on the first Layout with content.
func New(host Host, p Params) *Engine {
	p = p.normalized()
	return &Engine{
		host:       host,
		params:     p,
		log:        applog.WithComponent("zoom"),
		m:          vector.Identity,
		initialFit: 1,
		taps:       gesture.NewTapDetector(p.Tap),
		pinch:      gesture.NewPinchDetector(),
	}
}

// SetEventFunc installs an observer for engine milestones.
func (e *Engine) SetEventFunc(fn EventFunc) { e.onEvent = fn }

func (e *Engine) Params() Params             { return e.params }
func (e *Engine) Transform() vector.Affine2D { return e.m }
func (e *Engine) Scale() float32             { return e.m.ScaleX() }
func (e *Engine) InitialFitScale() float32   { return e.initialFit }
func (e *Engine) Fitted() bool               { return e.state == stateFitted }
func (e *Engine) Animating() bool            { return e.anim != nil }

// ContentRect returns the content bounds in viewport coordinates.
func (e *Engine) ContentRect() (vector.Rect, bool) { return e.mapped() }

// ContentChanged marks a new content load. The next Layout fits it.
func (e *Engine) ContentChanged() {
	e.state = stateUninitialized
	e.initialFit = 1
	e.anim = nil
	e.pan.reset()
	e.taps.Reset()
	e.pinch = gesture.NewPinchDetector()
}

// Layout is the layout-pass notification. It fits the content once per
// content load and does nothing afterwards.
func (e *Engine) Layout() {
	if e.state == stateFitted {
		return
	}
	content, ok := e.host.ContentSize()
	if !ok {
		return
	}
	vp := e.host.ViewportSize()
	fit, ok := InitialFit(content, vp)
	if !ok {
		return
	}
	e.m = vector.Identity
	e.m.PostTranslate((vp.W-content.W)/2, (vp.H-content.H)/2)
	e.m.PostScaleAbout(fit, vp.W/2, vp.H/2)
	e.initialFit = fit
	e.state = stateFitted
	e.push()
	e.log.Debug("content fitted",
		slog.Float64("fit", float64(fit)),
		slog.Float64("content_w", float64(content.W)), slog.Float64("content_h", float64(content.H)),
		slog.Float64("viewport_w", float64(vp.W)), slog.Float64("viewport_h", float64(vp.H)))
	e.emit("fit", map[string]any{"scale": fit})
}

// HandleFrame dispatches one pointer frame: double-tap recognition first
// (a recognized double tap claims the frame), then pinch, then panning.
// It always reports the frame as consumed.
func (e *Engine) HandleFrame(f gesture.Frame) bool {
	if at, ok := e.taps.Observe(f); ok {
		e.DoubleTap(at)
		return true
	}
	if p, ok := e.pinch.Observe(f); ok && p.Phase == gesture.PinchUpdate {
		e.Pinch(p.Factor, p.Focus)
	}
	e.pan.observe(e, f)
	return true
}

// Pinch applies a pinch update: factor is the ratio since the previous
// update, anchored at focus. The resulting scale stays within
// [InitialFitScale, MaxScale].
func (e *Engine) Pinch(factor float32, focus vector.Pt) {
	if _, ok := e.host.ContentSize(); !ok {
		return
	}
	if !vector.Finite(factor) || factor <= 0 {
		return
	}
	cur := e.m.ScaleX()
	if !vector.Finite(cur) || cur <= 0 {
		return
	}
	maxScale := e.params.MaxScale
	if !(cur < maxScale && factor > 1 || cur > e.initialFit && factor < 1) {
		return
	}
	switch {
	case cur*factor < e.initialFit:
		e.scaleTo(e.initialFit, focus)
	case cur*factor > maxScale:
		e.scaleTo(maxScale, focus)
	default:
		e.m.PostScaleAbout(factor, focus.X, focus.Y)
	}
	e.correctCenter()
	e.push()
}

// DoubleTap starts an auto-zoom anchored at at. It reports false when the
// tap is ignored: an animation is already running, no content is loaded, or
// the engine is detached.
func (e *Engine) DoubleTap(at vector.Pt) bool {
	if e.anim != nil || e.detached {
		return false
	}
	if _, ok := e.host.ContentSize(); !ok {
		return false
	}
	cur := e.m.ScaleX()
	target := nextLevel(cur, e.params, e.initialFit)
	e.anim = newAutoZoom(cur, target, at, e.params)
	e.log.Debug("auto-zoom start", slog.Float64("from", float64(cur)), slog.Float64("to", float64(target)))
	e.emit("autozoom.start", map[string]any{"from": cur, "to": target})
	return true
}

// Tick advances the auto-zoom by one frame and reports whether another tick
// should be scheduled.
func (e *Engine) Tick() bool {
	if e.anim == nil || e.detached {
		return false
	}
	if e.anim.advance(e) {
		return true
	}
	a := e.anim
	e.anim = nil
	e.log.Debug("auto-zoom done", slog.Float64("scale", float64(e.m.ScaleX())), slog.Int("ticks", a.ticks))
	e.emit("autozoom.done", map[string]any{"scale": e.m.ScaleX(), "ticks": a.ticks})
	return false
}

// Detach stops any running animation; ticks are ignored until Attach.
func (e *Engine) Detach() {
	if e.anim != nil {
		e.log.Debug("auto-zoom dropped on detach")
	}
	e.anim = nil
	e.detached = true
}

// Attach re-enables animation after Detach.
func (e *Engine) Attach() { e.detached = false }

func (e *Engine) mapped() (vector.Rect, bool) {
	content, ok := e.host.ContentSize()
	if !ok {
		return vector.Rect{}, false
	}
	return e.m.MapRect(vector.R(0, 0, content.W, content.H)), true
}

// panBy applies a dragging move of (dx, dy). Axes whose content is narrower
// than the viewport are locked.
func (e *Engine) panBy(t *panTracker, dx, dy float32) {
	r, ok := e.mapped()
	if !ok {
		return
	}
	vp := e.host.ViewportSize()
	t.panX, t.panY = true, true
	if r.W < vp.W {
		dx = 0
		t.panX = false
	}
	if r.H < vp.H {
		dy = 0
		t.panY = false
	}
	e.m.PostTranslate(dx, dy)
	if r, ok = e.mapped(); ok {
		e.m.PostTranslate(DragCorrection(r, vp, t.panX, t.panY))
	}
	e.push()
}

// scaleTo scales about anchor so the matrix scale becomes exactly target.
func (e *Engine) scaleTo(target float32, anchor vector.Pt) {
	cur := e.m.ScaleX()
	if !vector.Finite(cur) || cur <= 0 || !vector.Finite(target) || target <= 0 {
		return
	}
	e.m.PostScaleAbout(target/cur, anchor.X, anchor.Y)
	// drop the rounding residue of target/cur*cur
	e.m.A, e.m.D = target, target
}

func (e *Engine) correctCenter() {
	r, ok := e.mapped()
	if !ok {
		return
	}
	e.m.PostTranslate(CenterCorrection(r, e.host.ViewportSize()))
}

func (e *Engine) push() { e.host.ApplyTransform(e.m) }

func (e *Engine) emit(name string, props map[string]any) {
	if e.onEvent != nil {
		e.onEvent(name, props)
	}
}
