/*
 * Copyright 2026 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package replay runs scripted editing sessions against a document. Scripts
// are YAML files holding a list of steps, each step being one call of the
// document API.
package replay

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/redline/internal/validation"
	"github.com/yorkie-team/redline/pkg/document"
	"github.com/yorkie-team/redline/pkg/errors"
	"github.com/yorkie-team/redline/pkg/revision"
)

// ErrInvalidStep is returned when a step of a script cannot be run.
var ErrInvalidStep = errors.InvalidArgument("invalid step").WithCode("ErrInvalidStep")

// Op is the operation of a step.
type Op string

// Below are the operations of steps.
const (
	OpAuthor        Op = "author"
	OpTrack         Op = "track"
	OpCaret         Op = "caret"
	OpSelect        Op = "select"
	OpInsert        Op = "insert"
	OpDelete        Op = "delete"
	OpAccept        Op = "accept"
	OpReject        Op = "reject"
	OpAcceptAll     Op = "accept-all"
	OpRejectAll     Op = "reject-all"
	OpAcceptAuthor  Op = "accept-author"
	OpRejectAuthor  Op = "reject-author"
	OpShowDeletions Op = "show-deletions"
)

// Step is one step of a script. Only the fields used by its operation are
// read.
type Step struct {
	Op Op `yaml:"op" validate:"required"`

	// Author is the author of the following edits for OpAuthor.
	Author *revision.Author `yaml:"author,omitempty"`

	// Enabled is the new state for OpTrack and OpShowDeletions. Tracking is
	// toggled when it is omitted.
	Enabled *bool `yaml:"enabled,omitempty"`

	Pos  int `yaml:"pos,omitempty"`
	From int `yaml:"from,omitempty"`
	To   int `yaml:"to,omitempty"`

	Text  string   `yaml:"text,omitempty"`
	Marks []string `yaml:"marks,omitempty"`

	Direction document.Direction `yaml:"direction,omitempty"`
	Unit      document.Unit      `yaml:"unit,omitempty"`

	// Ref is the 1-based ordinal of a revision created earlier by the script.
	Ref int `yaml:"ref,omitempty" validate:"min=0"`

	// ID is the identifier of a revision, e.g. one of a loaded document. It is
	// used when Ref is zero.
	ID revision.ID `yaml:"id,omitempty"`

	// AuthorID is the author whose revisions are resolved by OpAcceptAuthor
	// and OpRejectAuthor.
	AuthorID string `yaml:"authorID,omitempty"`
}

// Script is a list of steps.
type Script struct {
	Steps []Step `yaml:"steps" validate:"dive"`
}

// Outcome is the outcome of one step.
type Outcome struct {
	Step     int             `json:"step" yaml:"step"`
	Op       Op              `json:"op" yaml:"op"`
	Status   document.Status `json:"status" yaml:"status"`
	Created  []revision.ID   `json:"created,omitempty" yaml:"created,omitempty"`
	Resolved []revision.ID   `json:"resolved,omitempty" yaml:"resolved,omitempty"`
}

// Parse parses the given YAML bytes into a Script.
func Parse(data []byte) (*Script, error) {
	script := &Script{}
	if err := yaml.Unmarshal(data, script); err != nil {
		return nil, fmt.Errorf("unmarshal script: %w", err)
	}
	if err := validation.ValidateStruct(script); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidStep)
	}

	return script, nil
}

// Load reads the script of the given path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	return Parse(data)
}

// Run runs the steps of the script against the given document. It stops at
// the first step returning an error.
func (s *Script) Run(doc *document.Document) ([]Outcome, error) {
	r := &runner{doc: doc}

	outcomes := make([]Outcome, 0, len(s.Steps))
	for i, step := range s.Steps {
		outcome, err := r.run(step)
		if err != nil {
			return outcomes, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
		outcome.Step = i + 1
		outcome.Op = step.Op
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// runner keeps the revisions created while running a script, so that later
// steps can refer to them.
type runner struct {
	doc     *document.Document
	created []revision.ID
}

func (r *runner) run(step Step) (Outcome, error) {
	applied := Outcome{Status: document.StatusApplied}

	switch step.Op {
	case OpAuthor:
		if step.Author == nil {
			return Outcome{}, fmt.Errorf("author is required: %w", ErrInvalidStep)
		}
		return applied, r.doc.SetAuthor(*step.Author)
	case OpTrack:
		switch {
		case step.Enabled == nil:
			r.doc.ToggleTracking()
		case *step.Enabled:
			r.doc.EnableTracking()
		default:
			r.doc.DisableTracking()
		}
		return applied, nil
	case OpShowDeletions:
		r.doc.SetShowDeletions(step.Enabled == nil || *step.Enabled)
		return applied, nil
	case OpCaret:
		return applied, r.doc.SetCaret(step.Pos)
	case OpSelect:
		return applied, r.doc.Select(step.From, step.To)
	case OpInsert:
		if len(step.Marks) > 0 {
			return r.edit(r.doc.InsertTextWithMarks(step.Text, step.Marks))
		}
		return r.edit(r.doc.InsertText(step.Text))
	case OpDelete:
		direction, unit := step.Direction, step.Unit
		if direction == "" {
			direction = document.Backward
		}
		if unit == "" {
			unit = document.Character
		}
		return r.edit(r.doc.Delete(direction, unit))
	case OpAccept, OpReject:
		id, err := r.revision(step)
		if err != nil {
			return Outcome{}, err
		}
		resolve := r.doc.Accept
		if step.Op == OpReject {
			resolve = r.doc.Reject
		}
		resolution, err := resolve(id)
		if err != nil {
			return Outcome{}, err
		}
		return resolved(resolution.Status, []document.Resolution{resolution}), nil
	case OpAcceptAll:
		return r.bulk(r.doc.AcceptAll())
	case OpRejectAll:
		return r.bulk(r.doc.RejectAll())
	case OpAcceptAuthor, OpRejectAuthor:
		if step.AuthorID == "" {
			return Outcome{}, fmt.Errorf("authorID is required: %w", ErrInvalidStep)
		}
		if step.Op == OpAcceptAuthor {
			return r.bulk(r.doc.AcceptByAuthor(step.AuthorID))
		}
		return r.bulk(r.doc.RejectByAuthor(step.AuthorID))
	}

	return Outcome{}, fmt.Errorf("unknown op %q: %w", step.Op, ErrInvalidStep)
}

func (r *runner) edit(result document.Result, err error) (Outcome, error) {
	if err != nil {
		return Outcome{}, err
	}

	r.created = append(r.created, result.Created...)
	return Outcome{Status: result.Status, Created: result.Created}, nil
}

func (r *runner) bulk(resolutions []document.Resolution, err error) (Outcome, error) {
	if err != nil {
		return Outcome{}, err
	}

	status := document.StatusNoop
	if len(resolutions) > 0 {
		status = document.StatusApplied
	}
	return resolved(status, resolutions), nil
}

// revision returns the revision a step refers to.
func (r *runner) revision(step Step) (revision.ID, error) {
	if step.Ref == 0 {
		if step.ID == "" {
			return "", fmt.Errorf("ref or id is required: %w", ErrInvalidStep)
		}
		return step.ID, nil
	}

	if step.Ref > len(r.created) {
		return "", fmt.Errorf("ref %d of %d revisions: %w", step.Ref, len(r.created), ErrInvalidStep)
	}
	return r.created[step.Ref-1], nil
}

// resolved builds the outcome of a resolution with the revisions whose
// status was changed.
func resolved(status document.Status, resolutions []document.Resolution) Outcome {
	outcome := Outcome{Status: status}
	for _, resolution := range resolutions {
		if resolution.Status == document.StatusApplied || resolution.Status == document.StatusStaleReference {
			outcome.Resolved = append(outcome.Resolved, resolution.ID)
		}
	}
	return outcome
}
