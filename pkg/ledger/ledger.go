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

// Package ledger provides the registry of revisions of a document. Records
// are kept in go-memdb with secondary indexes, and every read returns copies.
package ledger

import (
	"fmt"
	"sort"
	"sync"
	gotime "time"

	"github.com/hashicorp/go-memdb"

	"github.com/yorkie-team/redline/pkg/errors"
	"github.com/yorkie-team/redline/pkg/pubsub"
	"github.com/yorkie-team/redline/pkg/revision"
)

var (
	// ErrRecordNotFound is returned when the record could not be found.
	ErrRecordNotFound = errors.NotFound("revision record not found").WithCode("ErrRecordNotFound")

	// ErrInvalidStatus is returned when a record is moved to a status it
	// cannot take.
	ErrInvalidStatus = errors.InvalidArgument("invalid revision status").WithCode("ErrInvalidStatus")
)

// EventType is the type of Event.
type EventType string

const (
	// EventAdded is published when a record is added or restored.
	EventAdded EventType = "added"

	// EventUpdated is published when the content or the node reference of a
	// pending record changes.
	EventUpdated EventType = "updated"

	// EventStatusChanged is published when a record is resolved.
	EventStatusChanged EventType = "status-changed"

	// EventCleared is published when every record is dropped.
	EventCleared EventType = "cleared"
)

// Event is a change notification of the ledger. Record is a copy and is nil
// for EventCleared.
type Event struct {
	Type   EventType
	Record *revision.Record
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Kind     revision.Kind
	Status   revision.Status
	AuthorID string
}

// matches returns whether the given record passes this filter.
func (f Filter) matches(record *revision.Record) bool {
	if f.Kind != "" && record.Kind != f.Kind {
		return false
	}
	if f.Status != "" && record.Status != f.Status {
		return false
	}
	if f.AuthorID != "" && record.Author.ID != f.AuthorID {
		return false
	}
	return true
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used for the creation time of records.
func WithClock(clock func() gotime.Time) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

// Ledger is the registry of revision records.
type Ledger struct {
	db *memdb.MemDB

	// mu serializes writers so that sequence numbers follow commit order.
	mu  sync.Mutex
	seq uint64

	clock         func() gotime.Time
	subscriptions *pubsub.Subscriptions[Event]
}

// New creates a new empty Ledger.
func New(opts ...Option) (*Ledger, error) {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	l := &Ledger{
		db:            db,
		clock:         gotime.Now,
		subscriptions: pubsub.NewSubscriptions[Event]("ledger"),
	}
	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Add registers a new pending record and returns its fresh identifier. The
// creation time is truncated to milliseconds, the precision kept by saved
// documents.
func (l *Ledger) Add(
	kind revision.Kind,
	content string,
	author revision.Author,
	nodeRef string,
) (revision.ID, error) {
	if _, err := revision.ParseKind(string(kind)); err != nil {
		return "", err
	}
	if err := author.Validate(); err != nil {
		return "", err
	}

	record := &revision.Record{
		ID:        revision.NewID(),
		Kind:      kind,
		Status:    revision.Pending,
		Content:   content,
		Author:    author,
		CreatedAt: l.clock().Truncate(gotime.Millisecond),
		NodeRef:   nodeRef,
	}
	if err := l.insert(record); err != nil {
		return "", err
	}

	return record.ID, nil
}

// Restore registers the given record with its own identifier. It is used to
// rebuild the ledger of an imported document and does nothing when a record
// with the same identifier already exists.
func (l *Ledger) Restore(record *revision.Record) (bool, error) {
	if _, err := revision.ParseKind(string(record.Kind)); err != nil {
		return false, err
	}
	if record.ID == "" || record.Author.ID == "" {
		return false, fmt.Errorf("restore %q by %q: %w", record.ID, record.Author.ID, revision.ErrInvalidAuthor)
	}
	if record.Status == "" {
		record = record.DeepCopy()
		record.Status = revision.Pending
	}

	if _, ok := l.Get(record.ID); ok {
		return false, nil
	}

	if err := l.insert(record.DeepCopy()); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Ledger) insert(record *revision.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn := l.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblRevisions, "id", record.ID.String())
	if err != nil {
		return fmt.Errorf("find revision by id: %w", err)
	}
	if raw != nil {
		return fmt.Errorf("%s: revision already exists", record.ID)
	}

	l.seq++
	if err := txn.Insert(tblRevisions, newEntry(record, l.seq)); err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	txn.Commit()

	l.publish(EventAdded, record)
	return nil
}

// Get returns a copy of the record of the given id.
func (l *Ledger) Get(id revision.ID) (*revision.Record, bool) {
	txn := l.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblRevisions, "id", id.String())
	if err != nil || raw == nil {
		return nil, false
	}

	return raw.(*entry).Record.DeepCopy(), true
}

// FindByNodeRef returns a copy of the record whose first live fragment is
// the given node.
func (l *Ledger) FindByNodeRef(nodeRef string) (*revision.Record, bool) {
	if nodeRef == "" {
		return nil, false
	}

	txn := l.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblRevisions, "node_ref", nodeRef)
	if err != nil || raw == nil {
		return nil, false
	}

	return raw.(*entry).Record.DeepCopy(), true
}

// ListPending returns the pending records in insertion order.
func (l *Ledger) ListPending() []*revision.Record {
	return l.find("status", string(revision.Pending))
}

// ListByKind returns the records of the given kind in insertion order.
func (l *Ledger) ListByKind(kind revision.Kind) []*revision.Record {
	return l.find("kind", string(kind))
}

// ListByAuthor returns the records of the given author in insertion order.
func (l *Ledger) ListByAuthor(authorID string) []*revision.Record {
	return l.find("author_id", authorID)
}

// ListPendingByAuthor returns the pending records of the given author in
// insertion order.
func (l *Ledger) ListPendingByAuthor(authorID string) []*revision.Record {
	return l.find("status_author_id", string(revision.Pending), authorID)
}

// All returns every record in insertion order.
func (l *Ledger) All() []*revision.Record {
	return l.find("seq")
}

// List returns the records passing the given filter, newest first. Records
// created at the same time keep their insertion order.
func (l *Ledger) List(filter Filter) []*revision.Record {
	var entries []*entry
	switch {
	case filter.Status != "" && filter.AuthorID != "":
		entries = l.findEntries("status_author_id", string(filter.Status), filter.AuthorID)
	case filter.Status != "":
		entries = l.findEntries("status", string(filter.Status))
	case filter.AuthorID != "":
		entries = l.findEntries("author_id", filter.AuthorID)
	case filter.Kind != "":
		entries = l.findEntries("kind", string(filter.Kind))
	default:
		entries = l.findEntries("seq")
	}

	var filtered []*entry
	for _, e := range entries {
		if filter.matches(e.Record) {
			filtered = append(filtered, e)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if !a.Record.CreatedAt.Equal(b.Record.CreatedAt) {
			return a.Record.CreatedAt.After(b.Record.CreatedAt)
		}
		return a.Seq < b.Seq
	})

	return toRecords(filtered)
}

func (l *Ledger) find(index string, args ...interface{}) []*revision.Record {
	return toRecords(l.findEntries(index, args...))
}

// findEntries returns the rows of the given index ordered by sequence.
func (l *Ledger) findEntries(index string, args ...interface{}) []*entry {
	txn := l.db.Txn(false)
	defer txn.Abort()

	iterator, err := txn.Get(tblRevisions, index, args...)
	if err != nil {
		return nil
	}

	var entries []*entry
	for raw := iterator.Next(); raw != nil; raw = iterator.Next() {
		entries = append(entries, raw.(*entry))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Seq < entries[j].Seq
	})

	return entries
}

func toRecords(entries []*entry) []*revision.Record {
	records := make([]*revision.Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, e.Record.DeepCopy())
	}
	return records
}

// SetStatus moves the record of the given id to the given terminal status.
// It returns false without error when the record is already terminal.
func (l *Ledger) SetStatus(id revision.ID, status revision.Status) (bool, error) {
	if !status.IsTerminal() {
		return false, fmt.Errorf("%s to %s: %w", id, status, ErrInvalidStatus)
	}

	return l.update(id, EventStatusChanged, func(record *revision.Record) bool {
		if record.Status.IsTerminal() {
			return false
		}
		record.Status = status
		record.NodeRef = ""
		return true
	})
}

// UpdateContent replaces the content snapshot of a pending record.
func (l *Ledger) UpdateContent(id revision.ID, content string) (bool, error) {
	return l.update(id, EventUpdated, func(record *revision.Record) bool {
		if !record.IsPending() || record.Content == content {
			return false
		}
		record.Content = content
		return true
	})
}

// SetNodeRef replaces the node reference of a pending record.
func (l *Ledger) SetNodeRef(id revision.ID, nodeRef string) (bool, error) {
	return l.update(id, EventUpdated, func(record *revision.Record) bool {
		if !record.IsPending() || record.NodeRef == nodeRef {
			return false
		}
		record.NodeRef = nodeRef
		return true
	})
}

// update applies the given mutation to a copy of the record and stores it
// when the mutation reports a change.
func (l *Ledger) update(
	id revision.ID,
	eventType EventType,
	mutate func(record *revision.Record) bool,
) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn := l.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblRevisions, "id", id.String())
	if err != nil {
		return false, fmt.Errorf("find revision by id: %w", err)
	}
	if raw == nil {
		return false, fmt.Errorf("%s: %w", id, ErrRecordNotFound)
	}

	stored := raw.(*entry)
	record := stored.Record.DeepCopy()
	if !mutate(record) {
		return false, nil
	}

	if err := txn.Insert(tblRevisions, stored.with(record)); err != nil {
		return false, fmt.Errorf("update revision: %w", err)
	}
	txn.Commit()

	l.publish(eventType, record)
	return true, nil
}

// Clear drops every record. Sequence numbers keep growing, so identifiers
// and insertion order are never reused.
func (l *Ledger) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn := l.db.Txn(true)
	defer txn.Abort()

	if _, err := txn.DeleteAll(tblRevisions, "id"); err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}
	txn.Commit()

	l.subscriptions.Publish(Event{Type: EventCleared})
	return nil
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	return len(l.findEntries("id"))
}

// CountByKind returns the number of pending records per kind.
func (l *Ledger) CountByKind() map[revision.Kind]int {
	counts := make(map[revision.Kind]int)
	for _, e := range l.findEntries("status", string(revision.Pending)) {
		counts[e.Record.Kind]++
	}
	return counts
}

// CountByStatus returns the number of records per status.
func (l *Ledger) CountByStatus() map[revision.Status]int {
	counts := make(map[revision.Status]int)
	for _, e := range l.findEntries("id") {
		counts[e.Record.Status]++
	}
	return counts
}

// Authors returns the distinct authors of the records in order of first
// appearance.
func (l *Ledger) Authors() []revision.Author {
	seen := make(map[string]bool)
	var authors []revision.Author
	for _, e := range l.findEntries("seq") {
		if seen[e.AuthorID] {
			continue
		}
		seen[e.AuthorID] = true
		authors = append(authors, e.Record.Author)
	}
	return authors
}

// Subscribe registers a new subscriber of ledger events. Events are dropped
// for a subscriber whose buffer is full.
func (l *Ledger) Subscribe(bufSize int) *pubsub.Subscription[Event] {
	return l.subscriptions.Subscribe(bufSize)
}

// Unsubscribe closes the subscription of the given id.
func (l *Ledger) Unsubscribe(id string) bool {
	return l.subscriptions.Delete(id)
}

func (l *Ledger) publish(eventType EventType, record *revision.Record) {
	l.subscriptions.Publish(Event{
		Type:   eventType,
		Record: record.DeepCopy(),
	})
}
