/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package zoom

import (
	"time"

	"zoomview/internal/config"
	"zoomview/internal/gesture"
)

// Params are the engine tunables. Zero or out-of-range values fall back to
// the defaults when the engine is constructed.
type Params struct {
	// MaxScale bounds the matrix scale from above and is the top double-tap level.
	MaxScale float32
	// MediumScale is the intermediate double-tap level.
	MediumScale float32
	// TouchSlop is the drag threshold in viewport pixels.
	TouchSlop float32
	// StepIn and StepOut are the per-tick multipliers of the auto-zoom.
	StepIn  float32
	StepOut float32
	// TickPeriod is the auto-zoom frame period.
	TickPeriod time.Duration
	// Tap configures double-tap recognition. Its TouchSlop is overwritten
	// with the engine's TouchSlop.
	Tap gesture.TapConfig
}

// DefaultParams returns the stock engine tunables.
func DefaultParams() Params {
	return Params{
		MaxScale:    4,
		MediumScale: 2,
		TouchSlop:   8,
		StepIn:      1.07,
		StepOut:     0.93,
		TickPeriod:  16 * time.Millisecond,
		Tap:         gesture.DefaultTapConfig(),
	}
}

func (p Params) normalized() Params {
	d := DefaultParams()
	if !(p.MaxScale >= 1) {
		p.MaxScale = d.MaxScale
	}
	if !(p.MediumScale >= 1) {
		p.MediumScale = d.MediumScale
	}
	if p.MediumScale > p.MaxScale {
		p.MediumScale = p.MaxScale
	}
	if !(p.TouchSlop >= 0) {
		p.TouchSlop = d.TouchSlop
	}
	if !(p.StepIn > 1) {
		p.StepIn = d.StepIn
	}
	if !(p.StepOut > 0 && p.StepOut < 1) {
		p.StepOut = d.StepOut
	}
	if p.TickPeriod <= 0 {
		p.TickPeriod = d.TickPeriod
	}
	if p.Tap.TapTimeout <= 0 {
		p.Tap.TapTimeout = d.Tap.TapTimeout
	}
	if p.Tap.DoubleTapTimeout <= 0 {
		p.Tap.DoubleTapTimeout = d.Tap.DoubleTapTimeout
	}
	if !(p.Tap.DoubleTapSlop > 0) {
		p.Tap.DoubleTapSlop = d.Tap.DoubleTapSlop
	}
	p.Tap.TouchSlop = p.TouchSlop
	return p
}

// ParamsFromConfig maps the user-editable engine section onto Params.
func ParamsFromConfig(c config.EngineConfig) Params {
	p := Params{
		MaxScale:    float32(c.MaxScale),
		MediumScale: float32(c.MediumScale),
		TouchSlop:   float32(c.TouchSlop),
		StepIn:      float32(c.StepIn),
		StepOut:     float32(c.StepOut),
		TickPeriod:  time.Duration(c.TickMs) * time.Millisecond,
		Tap: gesture.TapConfig{
			TapTimeout:       time.Duration(c.TapMs) * time.Millisecond,
			DoubleTapTimeout: time.Duration(c.DoubleTapMs) * time.Millisecond,
			DoubleTapSlop:    float32(c.DoubleTapSlop),
		},
	}
	return p.normalized()
}
