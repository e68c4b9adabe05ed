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
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStepper struct {
	n     atomic.Int32
	until int32
}

func (s *countingStepper) Tick() bool { return s.n.Add(1) < s.until }

func inline(fn func()) { fn() }

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 2*time.Millisecond)
}

func TestDriverStopsWhenStepperIsDone(t *testing.T) {
	s := &countingStepper{until: 5}
	d := NewDriver(s, time.Millisecond, inline)
	d.Kick(context.Background())
	eventually(t, func() bool { return !d.Running() })
	assert.Equal(t, int32(5), s.n.Load())
}

func TestDriverKickIsIdempotent(t *testing.T) {
	s := &countingStepper{until: 1 << 30}
	d := NewDriver(s, time.Millisecond, inline)
	d.Kick(context.Background())
	d.Kick(context.Background())
	assert.True(t, d.Running())
	d.Stop()
	assert.False(t, d.Running())
	d.Stop()

	d.Kick(context.Background())
	assert.True(t, d.Running())
	d.Stop()
}

func TestDriverStopsOnContextCancel(t *testing.T) {
	s := &countingStepper{until: 1 << 30}
	d := NewDriver(s, time.Millisecond, inline)
	ctx, cancel := context.WithCancel(context.Background())
	d.Kick(ctx)
	cancel()
	eventually(t, func() bool { return !d.Running() })
}

func TestDriverRunsEngineOnOwnerGoroutine(t *testing.T) {
	h := newHost(1000, 800, 1000, 800)
	e := fitted(t, h)
	ui := make(chan func(), 1)
	d := NewDriver(e, e.Params().TickPeriod/4, func(fn func()) { ui <- fn })

	require.True(t, e.DoubleTap(pt(500, 400)))
	d.Kick(context.Background())
	deadline := time.After(5 * time.Second)
	for e.Animating() {
		select {
		case fn := <-ui:
			fn()
		case <-deadline:
			t.Fatalf("animation did not finish")
		}
	}
	assert.Equal(t, float32(2), e.Scale())
	eventually(t, func() bool { return !d.Running() })
}

func TestNewDriverDefaultsPeriod(t *testing.T) {
	d := NewDriver(&countingStepper{}, 0, inline)
	assert.Equal(t, DefaultParams().TickPeriod, d.period)
}
