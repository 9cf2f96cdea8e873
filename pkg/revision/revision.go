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

// Package revision provides the value types of tracked changes: revision
// identifiers, authors and revision records.
package revision

import (
	"fmt"
	gotime "time"

	"github.com/rs/xid"

	"github.com/yorkie-team/redline/internal/validation"
	"github.com/yorkie-team/redline/pkg/errors"
)

var (
	// ErrInvalidID is returned when the given string is not a revision ID.
	ErrInvalidID = errors.InvalidArgument("invalid revision id").WithCode("ErrInvalidID")

	// ErrInvalidAuthor is returned when the given author is not valid.
	ErrInvalidAuthor = errors.InvalidArgument("invalid author").WithCode("ErrInvalidAuthor")

	// ErrInvalidKind is returned when the given kind is unknown.
	ErrInvalidKind = errors.InvalidArgument("invalid revision kind").WithCode("ErrInvalidKind")
)

// ID is the identifier of a revision. IDs are globally unique and never
// reused.
type ID string

// NewID creates a new instance of ID.
func NewID() ID {
	return ID(xid.New().String())
}

// ParseID parses the given string into an ID.
func ParseID(s string) (ID, error) {
	if _, err := xid.FromString(s); err != nil {
		return "", fmt.Errorf("%s: %w", s, ErrInvalidID)
	}
	return ID(s), nil
}

// String returns the string representation of this ID.
func (id ID) String() string {
	return string(id)
}

// Kind is the kind of a revision.
type Kind string

const (
	// Insertion is the kind of a revision that inserted text.
	Insertion Kind = "insertion"

	// Deletion is the kind of a revision that marked text as deleted.
	Deletion Kind = "deletion"

	// Format is the kind of a revision that changed formatting. It has no
	// effect on the tree when resolved.
	Format Kind = "format"
)

// Kinds is the list of every kind.
var Kinds = []Kind{Insertion, Deletion, Format}

// ParseKind parses the given string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Insertion, Deletion, Format:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%s: %w", s, ErrInvalidKind)
}

// Status is the resolution status of a revision.
type Status string

const (
	// Pending is the status of a revision that is not resolved yet.
	Pending Status = "pending"

	// Accepted is the status of an accepted revision.
	Accepted Status = "accepted"

	// Rejected is the status of a rejected revision.
	Rejected Status = "rejected"
)

// Statuses is the list of every status.
var Statuses = []Status{Pending, Accepted, Rejected}

// IsTerminal returns whether the status can no longer change.
func (s Status) IsTerminal() bool {
	return s == Accepted || s == Rejected
}

// Author is the author of a revision. Authors are compared by ID.
type Author struct {
	ID    string `bson:"id" json:"id" yaml:"ID" validate:"required"`
	Name  string `bson:"name" json:"name" yaml:"Name" validate:"required"`
	Email string `bson:"email,omitempty" json:"email,omitempty" yaml:"Email" validate:"omitempty,email"`
	Color string `bson:"color,omitempty" json:"color,omitempty" yaml:"Color" validate:"omitempty,hexcolor"`
}

// Validate validates this author.
func (a Author) Validate() error {
	if err := validation.ValidateStruct(a); err != nil {
		return fmt.Errorf("%s: %v: %w", a.ID, err, ErrInvalidAuthor)
	}
	return nil
}

// Equal returns whether the given author is the same author.
func (a Author) Equal(other Author) bool {
	return a.ID == other.ID
}

// Record is the ledger entry of a revision.
type Record struct {
	ID      ID
	Kind    Kind
	Status  Status
	Content string
	Author  Author

	CreatedAt gotime.Time

	// NodeRef is a weak reference to the first live fragment of the revision
	// in the tree. It is empty when no fragment is left.
	NodeRef string
}

// IsPending returns whether the record is still pending.
func (r *Record) IsPending() bool {
	return r.Status == Pending
}

// DeepCopy returns a deep copy of this record.
func (r *Record) DeepCopy() *Record {
	if r == nil {
		return nil
	}

	clone := *r
	return &clone
}
