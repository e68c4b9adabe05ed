/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Errors is the error returned by Load when a script does not parse.
type Errors []Error

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Load reads and parses the script at path. Image paths in the script are
// resolved against the script's directory.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	s, errs := Parse(data)
	if len(errs) > 0 {
		return s, fmt.Errorf("%s: %w", path, Errors(errs))
	}
	s.Dir = filepath.Dir(path)
	return s, nil
}

// ImagePath returns the content image path, or "" when the script names none.
func (s Script) ImagePath() string {
	if s.Image == "" || filepath.IsAbs(s.Image) || s.Dir == "" {
		return s.Image
	}
	return filepath.Join(s.Dir, s.Image)
}

type rawScript struct {
	Name     string          `yaml:"name"`
	Viewport Dim             `yaml:"viewport"`
	Content  *Dim            `yaml:"content"`
	Image    string          `yaml:"image"`
	Engine   EngineOverrides `yaml:"engine"`
	Steps    []yaml.Node     `yaml:"steps"`
}

// Parse decodes a YAML gesture script. The document is validated against the
// embedded JSON schema first; every violation is reported with the position
// of the offending node.
func Parse(data []byte) (Script, []Error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Script{}, []Error{{Message: err.Error()}}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return Script{}, []Error{{Message: "empty script"}}
	}

	var generic any
	if err := root.Decode(&generic); err != nil {
		return Script{}, []Error{{Line: root.Line, Column: root.Column, Message: err.Error()}}
	}
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(generic))
	if err != nil {
		return Script{}, []Error{{Message: fmt.Sprintf("schema validation: %v", err)}}
	}
	if !res.Valid() {
		var errs []Error
		for _, re := range res.Errors() {
			n := locate(&root, re.Field())
			errs = append(errs, Error{Line: n.Line, Column: n.Column, Message: fmt.Sprintf("%s: %s", re.Field(), re.Description())})
		}
		return Script{}, errs
	}

	var raw rawScript
	if err := root.Decode(&raw); err != nil {
		return Script{}, []Error{{Message: err.Error()}}
	}
	s := Script{Name: raw.Name, Viewport: raw.Viewport, Content: raw.Content, Image: raw.Image, Engine: raw.Engine}
	var errs []Error
	for i := range raw.Steps {
		st, err := decodeStep(&raw.Steps[i])
		if err != nil {
			errs = append(errs, Error{Line: raw.Steps[i].Line, Column: raw.Steps[i].Column, Message: err.Error()})
			continue
		}
		s.Steps = append(s.Steps, st)
	}
	return s, errs
}

func decodeStep(n *yaml.Node) (Step, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return Step{}, fmt.Errorf("step must be a single-key mapping")
	}
	key, val := n.Content[0].Value, n.Content[1]
	st := Step{LineNo: n.Line}
	var target any
	switch key {
	case "layout":
		st.Kind = StepLayout
	case "content_changed":
		st.Kind = StepContentChanged
	case "pointer":
		st.Kind, st.Pointer = StepPointer, &PointerStep{}
		target = st.Pointer
	case "pinch":
		st.Kind, st.Pinch = StepPinch, &PinchStep{}
		target = st.Pinch
	case "doubletap":
		st.Kind, st.DoubleTap = StepDoubleTap, &TapStep{}
		target = st.DoubleTap
	case "wait":
		st.Kind, st.Wait = StepWait, &WaitStep{}
		target = st.Wait
	case "settle":
		st.Kind, st.Settle = StepSettle, &SettleStep{}
		target = st.Settle
	case "expect":
		st.Kind, st.Expect = StepExpect, &ExpectStep{}
		target = st.Expect
	default:
		return Step{}, fmt.Errorf("unknown step %q", key)
	}
	if target != nil && val.Tag != "!!null" {
		if err := val.Decode(target); err != nil {
			return Step{}, fmt.Errorf("%s: %w", key, err)
		}
	}
	return st, nil
}

// locate walks a gojsonschema field path ("steps.2.pinch") through the YAML
// tree and returns the deepest node it reaches.
func locate(root *yaml.Node, field string) *yaml.Node {
	n := root
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if field == "" || field == "(root)" {
		return n
	}
	for _, seg := range strings.Split(field, ".") {
		next := child(n, seg)
		if next == nil {
			break
		}
		n = next
	}
	return n
}

func child(n *yaml.Node, seg string) *yaml.Node {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == seg {
				return n.Content[i+1]
			}
		}
	case yaml.SequenceNode:
		if i, err := strconv.Atoi(seg); err == nil && i >= 0 && i < len(n.Content) {
			return n.Content[i]
		}
	}
	return nil
}
