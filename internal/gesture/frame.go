/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package gesture models raw pointer frames and the small recognizers
// (tap/double-tap and pinch) that observe them ahead of the pan tracker.
package gesture

import (
	"fmt"
	"strings"
	"time"

	"zoomview/internal/vector"
)

// Action is the kind of a pointer frame. Pointer-count changes are not an
// action of their own; consumers detect them by comparing Count().
type Action int

const (
	Down Action = iota
	Move
	Up
	Cancel
)

func (a Action) String() string {
	switch a {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	case Cancel:
		return "cancel"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction converts "down", "move", "up" or "cancel" to an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "down":
		return Down, nil
	case "move":
		return Move, nil
	case "up":
		return Up, nil
	case "cancel":
		return Cancel, nil
	}
	return 0, fmt.Errorf("unknown pointer action %q", s)
}

// Frame is one pointer event as delivered by the windowing system.
// Points holds every active pointer in viewport coordinates; At is a
// monotonic timestamp relative to an arbitrary origin.
type Frame struct {
	Action Action
	Points []vector.Pt
	At     time.Duration
}

// Count returns the number of active pointers.
func (f Frame) Count() int { return len(f.Points) }

// Centroid returns the average of all pointer coordinates, or the zero point
// when no pointer is present.
func (f Frame) Centroid() vector.Pt {
	if len(f.Points) == 0 {
		return vector.Pt{}
	}
	var x, y float32
	for _, p := range f.Points {
		x += p.X
		y += p.Y
	}
	n := float32(len(f.Points))
	return vector.Pt{X: x / n, Y: y / n}
}

// span is the mean distance of the pointers from their centroid.
func (f Frame) span() float32 {
	if len(f.Points) < 2 {
		return 0
	}
	c := f.Centroid()
	var sum float32
	for _, p := range f.Points {
		sum += p.Sub(c).Len()
	}
	return sum / float32(len(f.Points))
}
