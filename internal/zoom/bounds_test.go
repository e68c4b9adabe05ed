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
	"testing"

	"github.com/stretchr/testify/assert"

	"zoomview/internal/vector"
)

func TestInitialFit(t *testing.T) {
	cases := []struct {
		name        string
		content, vp vector.Size
		want        float32
		ok          bool
	}{
		{"both larger", vector.Size{W: 4000, H: 3000}, vector.Size{W: 1000, H: 800}, 0.25, true},
		{"height dominates", vector.Size{W: 500, H: 2000}, vector.Size{W: 1000, H: 800}, 0.4, true},
		{"smaller", vector.Size{W: 200, H: 100}, vector.Size{W: 1000, H: 800}, 1, true},
		{"exact", vector.Size{W: 1000, H: 800}, vector.Size{W: 1000, H: 800}, 1, true},
		{"empty content", vector.Size{W: 0, H: 100}, vector.Size{W: 1000, H: 800}, 0, false},
		{"empty viewport", vector.Size{W: 10, H: 10}, vector.Size{W: 1000, H: 0}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := InitialFit(tc.content, tc.vp)
			assert.Equal(t, tc.ok, ok)
			assert.InDelta(t, tc.want, got, 1e-6)
		})
	}
}

func TestCenterCorrection(t *testing.T) {
	vp := vector.Size{W: 1000, H: 800}

	dx, dy := CenterCorrection(vector.R(0, 0, 400, 300), vp)
	assert.Equal(t, float32(300), dx)
	assert.Equal(t, float32(250), dy)

	// leading gap on a wide axis
	dx, dy = CenterCorrection(vector.R(100, -50, 1200, 900), vp)
	assert.Equal(t, float32(-100), dx)
	assert.Equal(t, float32(0), dy)

	// trailing gap on a wide axis
	dx, dy = CenterCorrection(vector.R(-500, -200, 1200, 900), vp)
	assert.Equal(t, float32(300), dx)
	assert.Equal(t, float32(100), dy)

	// already covering
	dx, dy = CenterCorrection(vector.R(-10, -10, 1100, 900), vp)
	assert.Zero(t, dx)
	assert.Zero(t, dy)
}

func TestDragCorrectionOnlyTouchesPannableAxes(t *testing.T) {
	vp := vector.Size{W: 1000, H: 800}
	r := vector.R(50, 100, 2000, 400)

	dx, dy := DragCorrection(r, vp, true, false)
	assert.Equal(t, float32(-50), dx)
	assert.Zero(t, dy)

	dx, dy = DragCorrection(r, vp, false, false)
	assert.Zero(t, dx)
	assert.Zero(t, dy)

	dx, _ = DragCorrection(vector.R(-1500, 0, 2000, 800), vp, true, true)
	assert.Equal(t, float32(500), dx)
}
