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

import "zoomview/internal/vector"

// autoZoom is the in-flight double-tap animation. It exists only between the
// double tap and the tick that snaps onto the target.
type autoZoom struct {
	target float32
	step   float32
	anchor vector.Pt
	ticks  int
}

// nextLevel picks the double-tap target for the current scale s:
// medium, then max, then back to the initial fit.
func nextLevel(s float32, p Params, initialFit float32) float32 {
	switch {
	case s < p.MediumScale:
		return p.MediumScale
	case s < p.MaxScale:
		return p.MaxScale
	default:
		return initialFit
	}
}

func newAutoZoom(current, target float32, anchor vector.Pt, p Params) *autoZoom {
	a := &autoZoom{target: target, anchor: anchor, step: p.StepOut}
	if current < target {
		a.step = p.StepIn
	}
	return a
}

// advance applies one animation frame and reports whether another is needed.
// The last frame snaps exactly onto the target.
func (a *autoZoom) advance(e *Engine) bool {
	e.m.PostScaleAbout(a.step, a.anchor.X, a.anchor.Y)
	e.correctCenter()
	e.push()
	a.ticks++

	cur := e.m.ScaleX()
	if a.step > 1 && cur < a.target || a.step < 1 && a.target < cur {
		return true
	}
	e.scaleTo(a.target, a.anchor)
	e.correctCenter()
	e.push()
	return false
}
