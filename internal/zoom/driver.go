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
	"sync"
	"time"
)

// Stepper advances an animation by one frame and reports whether another
// frame is needed. *Engine implements it.
type Stepper interface {
	Tick() bool
}

// Driver is the frame clock for a Stepper. Each period it hands one Tick to
// post, which must run it on the goroutine that owns the engine (fyne.Do in
// the UI). The clock stops itself once Tick reports false.
type Driver struct {
	s      Stepper
	period time.Duration
	post   func(func())

	mu   sync.Mutex
	stop chan struct{}
}

func NewDriver(s Stepper, period time.Duration, post func(func())) *Driver {
	if period <= 0 {
		period = DefaultParams().TickPeriod
	}
	return &Driver{s: s, period: period, post: post}
}

// Kick starts the clock unless it is already running.
func (d *Driver) Kick(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return
	}
	stop := make(chan struct{})
	d.stop = stop
	go d.run(ctx, stop)
}

// Running reports whether the clock is scheduling ticks.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop != nil
}

// Stop halts the clock. Ticks already handed to post may still run.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
}

func (d *Driver) run(ctx context.Context, stop chan struct{}) {
	tk := time.NewTicker(d.period)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			d.finish(stop)
			return
		case <-stop:
			return
		case <-tk.C:
			select {
			case <-stop:
				return
			default:
			}
			d.post(func() {
				if !d.s.Tick() {
					d.finish(stop)
				}
			})
		}
	}
}

// finish closes stop if it still belongs to the current run.
func (d *Driver) finish(stop chan struct{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop == stop {
		close(stop)
		d.stop = nil
	}
}
