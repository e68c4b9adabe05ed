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

// InitialFit returns the matrix scale that fits content into the viewport:
// 1/max(1, cw/vw, ch/vh). ok is false when either size is empty.
func InitialFit(content, viewport vector.Size) (scale float32, ok bool) {
	if content.Empty() || viewport.Empty() {
		return 0, false
	}
	k := max(1, content.W/viewport.W, content.H/viewport.H)
	return 1 / k, true
}

// CenterCorrection is the translation to apply after a scale change. An axis
// at least as large as the viewport has leading/trailing gaps closed; a
// smaller axis is centred.
func CenterCorrection(mapped vector.Rect, viewport vector.Size) (dx, dy float32) {
	if mapped.W >= viewport.W {
		if mapped.Left() > 0 {
			dx = -mapped.Left()
		}
		if mapped.Right() < viewport.W {
			dx = viewport.W - mapped.Right()
		}
	} else {
		dx = viewport.W/2 - mapped.Center().X
	}
	if mapped.H >= viewport.H {
		if mapped.Top() > 0 {
			dy = -mapped.Top()
		}
		if mapped.Bottom() < viewport.H {
			dy = viewport.H - mapped.Bottom()
		}
	} else {
		dy = viewport.H/2 - mapped.Center().Y
	}
	return dx, dy
}

// DragCorrection is the translation to apply after a pan. Only axes flagged
// as pannable are clamped; other axes are left untouched.
func DragCorrection(mapped vector.Rect, viewport vector.Size, panX, panY bool) (dx, dy float32) {
	if panX {
		if mapped.Left() > 0 {
			dx = -mapped.Left()
		}
		if mapped.Right() < viewport.W {
			dx = viewport.W - mapped.Right()
		}
	}
	if panY {
		if mapped.Top() > 0 {
			dy = -mapped.Top()
		}
		if mapped.Bottom() < viewport.H {
			dy = viewport.H - mapped.Bottom()
		}
	}
	return dx, dy
}
