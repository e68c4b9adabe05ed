/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import "fmt"

// Script is a parsed gesture script: a viewport, optional content and the
// steps replayed against a fresh engine.

type Script struct {
	Name     string
	Viewport Dim
	Content  *Dim   // nil when the size comes from Image or no content is loaded
	Image    string // resolved against Dir
	Dir      string // directory of the script file; empty for in-memory scripts
	Engine   EngineOverrides
	Steps    []Step
}

type Dim struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// EngineOverrides replaces individual engine tunables for one script.
// Zero fields keep the caller's value.
type EngineOverrides struct {
	MaxScale    float32 `yaml:"max_scale"`
	MediumScale float32 `yaml:"medium_scale"`
	TouchSlop   float32 `yaml:"touch_slop"`
	StepIn      float32 `yaml:"step_in"`
	StepOut     float32 `yaml:"step_out"`
}

// StepKind names the single key of a step mapping.

type StepKind int

const (
	StepLayout StepKind = iota
	StepContentChanged
	StepPointer
	StepPinch
	StepDoubleTap
	StepWait
	StepSettle
	StepExpect
)

var stepNames = [...]string{"layout", "content_changed", "pointer", "pinch", "doubletap", "wait", "settle", "expect"}

func (k StepKind) String() string {
	if int(k) < len(stepNames) {
		return stepNames[k]
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// Step is one script instruction. Exactly the field matching Kind is set.
type Step struct {
	Kind   StepKind
	LineNo int // 1-based line of the step in the source

	Pointer   *PointerStep
	Pinch     *PinchStep
	DoubleTap *TapStep
	Wait      *WaitStep
	Settle    *SettleStep
	Expect    *ExpectStep
}

// PointerStep is one raw frame. AfterMs advances the replay clock before
// the frame is delivered (default 16).
type PointerStep struct {
	Action  string      `yaml:"action"`
	Points  [][]float32 `yaml:"points"`
	AfterMs *int        `yaml:"after_ms"`
}

// PinchStep is a recognized pinch update.
type PinchStep struct {
	Factor float32 `yaml:"factor"`
	X      float32 `yaml:"x"`
	Y      float32 `yaml:"y"`
}

type TapStep struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
}

type WaitStep struct {
	Ms int `yaml:"ms"`
}

// SettleStep ticks the engine until the auto-zoom finishes.
type SettleStep struct {
	MaxTicks int `yaml:"max_ticks"`
}

// ExpectStep asserts on the engine state. Unset fields are not checked.
type ExpectStep struct {
	Scale     *float32 `yaml:"scale"`
	Left      *float32 `yaml:"left"`
	Top       *float32 `yaml:"top"`
	Fitted    *bool    `yaml:"fitted"`
	Animating *bool    `yaml:"animating"`
	Tolerance float32  `yaml:"tolerance"`
}

// Error represents a parse or validation error with position context.
// Line and Column are 0 when the position is unknown.

type Error struct {
	Line    int
	Column  int
	Message string
}

func (e Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}
