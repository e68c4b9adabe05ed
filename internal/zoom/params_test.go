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
	"time"

	"github.com/stretchr/testify/assert"

	"zoomview/internal/config"
)

func TestParamsFromConfigDefaults(t *testing.T) {
	p := ParamsFromConfig(config.Defaults().Engine)
	d := DefaultParams()
	assert.Equal(t, d.MaxScale, p.MaxScale)
	assert.Equal(t, d.MediumScale, p.MediumScale)
	assert.Equal(t, d.TouchSlop, p.TouchSlop)
	assert.InDelta(t, d.StepIn, p.StepIn, 1e-6)
	assert.InDelta(t, d.StepOut, p.StepOut, 1e-6)
	assert.Equal(t, 16*time.Millisecond, p.TickPeriod)
	assert.Equal(t, d.Tap.TapTimeout, p.Tap.TapTimeout)
	assert.Equal(t, d.Tap.DoubleTapTimeout, p.Tap.DoubleTapTimeout)
	assert.Equal(t, p.TouchSlop, p.Tap.TouchSlop)
}

func TestParamsNormalized(t *testing.T) {
	p := Params{MaxScale: 3, MediumScale: 5, TouchSlop: -1, StepIn: 0.5, StepOut: 1.5}.normalized()
	d := DefaultParams()
	assert.Equal(t, float32(3), p.MaxScale)
	assert.Equal(t, float32(3), p.MediumScale, "medium is capped by max")
	assert.Equal(t, d.TouchSlop, p.TouchSlop)
	assert.Equal(t, d.StepIn, p.StepIn)
	assert.Equal(t, d.StepOut, p.StepOut)
	assert.Equal(t, d.TickPeriod, p.TickPeriod)
	assert.Equal(t, d.Tap.DoubleTapSlop, p.Tap.DoubleTapSlop)

	zero := Params{}.normalized()
	assert.Equal(t, d.MaxScale, zero.MaxScale)
	assert.Equal(t, d.MediumScale, zero.MediumScale)
}

func TestNextLevel(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, float32(2), nextLevel(0.25, p, 0.25))
	assert.Equal(t, float32(2), nextLevel(1.99, p, 0.25))
	assert.Equal(t, float32(4), nextLevel(2, p, 0.25))
	assert.Equal(t, float32(0.25), nextLevel(4, p, 0.25))
}
