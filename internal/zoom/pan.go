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
	"zoomview/internal/gesture"
	"zoomview/internal/vector"
)

// panTracker is the per-interaction drag state.
type panTracker struct {
	lastCount int
	last      vector.Pt
	dragging  bool
	// sticky axis flags, refreshed on each dragging move
	panX, panY bool
}

func (t *panTracker) reset() { *t = panTracker{} }

// observe consumes one frame and pans the engine transform when a drag is
// in progress.
func (t *panTracker) observe(e *Engine, f gesture.Frame) {
	c := f.Centroid()
	n := f.Count()
	if n != t.lastCount {
		t.dragging = false
		t.last = c
	}
	t.lastCount = n

	switch f.Action {
	case gesture.Move:
		if n == 0 {
			return
		}
		dx := c.X - t.last.X
		dy := c.Y - t.last.Y
		if !t.dragging {
			t.dragging = (vector.Pt{X: dx, Y: dy}).Len() >= e.params.TouchSlop
		}
		if t.dragging {
			e.panBy(t, dx, dy)
		}
		t.last = c
	case gesture.Up, gesture.Cancel:
		t.lastCount = 0
	}
}
