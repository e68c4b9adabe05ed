/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gesture

import (
	"time"

	"zoomview/internal/vector"
)

// TapConfig holds the thresholds used by TapDetector.
type TapConfig struct {
	// TouchSlop is how far a pointer may travel and still count as a tap.
	TouchSlop float32
	// TapTimeout is the longest press that still counts as a tap.
	TapTimeout time.Duration
	// DoubleTapTimeout is the longest gap between the first tap's release
	// and the second press.
	DoubleTapTimeout time.Duration
	// DoubleTapSlop is the largest distance between the two taps.
	DoubleTapSlop float32
}

// DefaultTapConfig mirrors common touch platform defaults.
func DefaultTapConfig() TapConfig {
	return TapConfig{
		TouchSlop:        8,
		TapTimeout:       400 * time.Millisecond,
		DoubleTapTimeout: 300 * time.Millisecond,
		DoubleTapSlop:    100,
	}
}

// TapDetector recognizes double taps from a single-pointer frame stream.
// The double tap is reported on the second press, at the first tap's position.
type TapDetector struct {
	cfg TapConfig

	pressing bool
	downAt   time.Duration
	downPos  vector.Pt

	haveTap bool
	tapPos  vector.Pt
	tapUpAt time.Duration
}

func NewTapDetector(cfg TapConfig) *TapDetector { return &TapDetector{cfg: cfg} }

// Observe feeds one frame and reports a double tap position when the frame
// completes one.
func (d *TapDetector) Observe(f Frame) (vector.Pt, bool) {
	switch f.Action {
	case Down:
		if f.Count() != 1 {
			d.Reset()
			return vector.Pt{}, false
		}
		pos := f.Centroid()
		if d.haveTap && f.At-d.tapUpAt <= d.cfg.DoubleTapTimeout && pos.Sub(d.tapPos).Len() <= d.cfg.DoubleTapSlop {
			at := d.tapPos
			d.Reset()
			return at, true
		}
		d.haveTap = false
		d.pressing = true
		d.downAt = f.At
		d.downPos = pos
	case Move:
		if d.pressing && (f.Count() != 1 || f.Centroid().Sub(d.downPos).Len() > d.cfg.TouchSlop) {
			d.pressing = false
		}
	case Up:
		if d.pressing && f.At-d.downAt <= d.cfg.TapTimeout {
			d.haveTap = true
			d.tapPos = d.downPos
			d.tapUpAt = f.At
		}
		d.pressing = false
	case Cancel:
		d.Reset()
	}
	return vector.Pt{}, false
}

// Reset forgets any pending tap.
func (d *TapDetector) Reset() {
	d.pressing = false
	d.haveTap = false
}

// PinchPhase tells where a pinch gesture is in its lifetime.
type PinchPhase int

const (
	PinchBegin PinchPhase = iota
	PinchUpdate
	PinchEnd
)

// Pinch is a pinch recognition result. Factor is the span ratio since the
// previous update; it is 1 for begin and end notifications.
type Pinch struct {
	Phase  PinchPhase
	Factor float32
	Focus  vector.Pt
}

// PinchDetector turns two-or-more pointer frames into incremental scale
// factors anchored at the pointer centroid.
type PinchDetector struct {
	active    bool
	prevSpan  float32
	prevCount int
}

func NewPinchDetector() *PinchDetector { return &PinchDetector{} }

// Active reports whether a pinch is in progress.
func (d *PinchDetector) Active() bool { return d.active }

// Observe feeds one frame and returns a pinch notification if any.
func (d *PinchDetector) Observe(f Frame) (Pinch, bool) {
	if f.Action == Up || f.Action == Cancel || f.Count() < 2 {
		if d.active {
			d.active = false
			return Pinch{Phase: PinchEnd, Factor: 1, Focus: f.Centroid()}, true
		}
		return Pinch{}, false
	}
	span := f.span()
	if !d.active {
		d.active = true
		d.prevSpan = span
		d.prevCount = f.Count()
		return Pinch{Phase: PinchBegin, Factor: 1, Focus: f.Centroid()}, true
	}
	if f.Count() != d.prevCount {
		// re-baseline so an added finger does not read as a jump in span
		d.prevSpan = span
		d.prevCount = f.Count()
		return Pinch{}, false
	}
	if f.Action != Move || d.prevSpan <= 0 || span <= 0 {
		d.prevSpan = span
		return Pinch{}, false
	}
	p := Pinch{Phase: PinchUpdate, Factor: span / d.prevSpan, Focus: f.Centroid()}
	d.prevSpan = span
	return p, true
}
