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

// Package document provides the editing session of a tracked document: the
// tree, the ledger of its revisions, the current author and the selection.
// Every public method of Document runs to completion under one lock, so the
// tree and the ledger are always observed together.
package document

import (
	"fmt"
	"sync"
	gotime "time"

	"github.com/yorkie-team/redline/internal/logging"
	"github.com/yorkie-team/redline/pkg/document/tree"
	"github.com/yorkie-team/redline/pkg/errors"
	"github.com/yorkie-team/redline/pkg/ledger"
	"github.com/yorkie-team/redline/pkg/metrics/prometheus"
	"github.com/yorkie-team/redline/pkg/pubsub"
	"github.com/yorkie-team/redline/pkg/revision"
)

var (
	// ErrInvalidArgument is returned when an argument of an edit is invalid.
	ErrInvalidArgument = errors.InvalidArgument("invalid argument").WithCode("ErrInvalidArgument")

	// ErrInvariantViolation is raised in debug mode when the tree and the
	// ledger disagree.
	ErrInvariantViolation = errors.Internal("invariant violation").WithCode("ErrInvariantViolation")
)

// Status is the outcome of an edit or a resolution.
type Status string

const (
	// StatusApplied means the operation changed the document.
	StatusApplied Status = "applied"

	// StatusNoop means the operation left the tree as it was. The selection
	// may still have moved.
	StatusNoop Status = "noop"

	// StatusStaleSelection means the selection referenced a node that is no
	// longer in the tree. Nothing was changed.
	StatusStaleSelection Status = "stale-selection"

	// StatusUnknownRevision means the revision is not in the ledger.
	StatusUnknownRevision Status = "unknown-revision"

	// StatusAlreadyResolved means the revision was already accepted or
	// rejected.
	StatusAlreadyResolved Status = "already-resolved"

	// StatusStaleReference means the revision was pending but none of its
	// spans were left in the tree. The record has been finalized.
	StatusStaleReference Status = "stale-reference"
)

// Range is a range of positions, From <= To.
type Range struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

// IsCollapsed returns whether the range is a caret.
func (r Range) IsCollapsed() bool {
	return r.From == r.To
}

// Result is the result of an edit.
type Result struct {
	Status Status

	// Created holds the revisions created by the edit in document order.
	Created []revision.ID

	// Selection is the selection after the edit.
	Selection Range
}

// Document is an editing session that intercepts edits into revisions while
// tracking is enabled.
type Document struct {
	mu sync.Mutex

	config  *Config
	tree    *tree.Tree
	ledger  *ledger.Ledger
	logger  logging.Logger
	metrics *prometheus.Metrics

	tracking      bool
	showDeletions bool
	author        revision.Author

	// anchor and head are the ends of the selection. They are re-anchored
	// after every mutation.
	anchor tree.Anchor
	head   tree.Anchor
}

// New creates a new instance of Document holding an empty paragraph.
func New(conf *Config, opts ...Option) (*Document, error) {
	if conf == nil {
		conf = NewConfig()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	o := &options{clock: gotime.Now}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.New("document", logging.NewField("author", conf.Author.ID))
	}
	if o.metrics == nil {
		o.metrics = prometheus.NewMetrics()
	}
	if o.ledger == nil {
		l, err := ledger.New(ledger.WithClock(o.clock))
		if err != nil {
			return nil, err
		}
		o.ledger = l
	}

	d := &Document{
		config:        conf,
		tree:          tree.NewTree(),
		ledger:        o.ledger,
		logger:        o.logger,
		metrics:       o.metrics,
		tracking:      conf.Tracking.Enabled,
		showDeletions: conf.Tracking.ShowDeletions,
		author:        conf.Author,
	}
	d.resetSelection()

	return d, nil
}

// Ledger returns the ledger of this document. Records returned by the
// ledger are copies.
func (d *Document) Ledger() *ledger.Ledger {
	return d.ledger
}

// Subscribe registers a new subscriber of the changes of the ledger.
func (d *Document) Subscribe() *pubsub.Subscription[ledger.Event] {
	return d.ledger.Subscribe(d.config.Ledger.SubscriptionBufferSize)
}

// Unsubscribe closes the subscription of the given id.
func (d *Document) Unsubscribe(id string) bool {
	return d.ledger.Unsubscribe(id)
}

// EnableTracking makes the following edits tracked.
func (d *Document) EnableTracking() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.tracking = true
}

// DisableTracking makes the following edits pass through untouched.
func (d *Document) DisableTracking() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.tracking = false
}

// ToggleTracking flips the tracking state and returns the new state.
func (d *Document) ToggleTracking() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.tracking = !d.tracking
	return d.tracking
}

// IsTrackingEnabled returns whether edits are tracked.
func (d *Document) IsTrackingEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.tracking
}

// SetAuthor sets the author of the following edits.
func (d *Document) SetAuthor(author revision.Author) error {
	if err := author.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.author = author
	return nil
}

// Author returns the author of the following edits.
func (d *Document) Author() revision.Author {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.author
}

// Select sets the selection to the given positions. Both positions must be
// inside the content of a block.
func (d *Document) Select(from, to int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, pos := range []int{from, to} {
		if _, err := d.tree.BlockAt(pos); err != nil {
			return err
		}
	}

	return d.setSelection(from, to)
}

// SetCaret collapses the selection to the given position.
func (d *Document) SetCaret(pos int) error {
	return d.Select(pos, pos)
}

// SetSelection sets the selection to the given anchors as is. Anchors that
// no longer reference the tree make the following edits report a stale
// selection.
func (d *Document) SetSelection(anchor, head tree.Anchor) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.anchor = anchor
	d.head = head
}

// SelectionAnchors returns the anchors of the selection.
func (d *Document) SelectionAnchors() (tree.Anchor, tree.Anchor) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.anchor, d.head
}

// Selection returns the selection as positions. It returns false when the
// selection is stale.
func (d *Document) Selection() (Range, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	from, to, err := d.selection()
	if err != nil {
		return Range{}, false
	}
	return Range{From: from, To: to}, true
}

// AnchorOf returns the anchor of the given position.
func (d *Document) AnchorOf(pos int) (tree.Anchor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.tree.AnchorOf(pos)
}

// Verify checks that the tree and the ledger agree. In debug mode any span
// without a record panics; otherwise the missing records are synthesized.
func (d *Document) Verify() (Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.verify(d.tree.Spans())
}

// Len returns the size of the content of the tree.
func (d *Document) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.tree.Len()
}

// Blocks returns the blocks of the tree in document order.
func (d *Document) Blocks() []tree.Block {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.tree.Blocks()
}

// Structure returns the structure of the tree for debugging.
func (d *Document) Structure() tree.TreeNodeForTest {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.tree.Structure()
}

// selection returns the ordered positions of the selection.
func (d *Document) selection() (int, int, error) {
	anchor, err := d.tree.PosOf(d.anchor)
	if err != nil {
		return 0, 0, err
	}
	head, err := d.tree.PosOf(d.head)
	if err != nil {
		return 0, 0, err
	}

	if head < anchor {
		return head, anchor, nil
	}
	return anchor, head, nil
}

// currentRange returns the selection or an empty range when it is stale.
func (d *Document) currentRange() Range {
	from, to, err := d.selection()
	if err != nil {
		return Range{}
	}
	return Range{From: from, To: to}
}

func (d *Document) setSelection(from, to int) error {
	anchor, err := d.tree.AnchorOf(from)
	if err != nil {
		return err
	}
	head, err := d.tree.AnchorOf(to)
	if err != nil {
		return err
	}

	d.anchor, d.head = anchor, head
	return nil
}

func (d *Document) setCaret(pos int) error {
	return d.setSelection(pos, pos)
}

// resetSelection puts the caret at the start of the first block.
func (d *Document) resetSelection() {
	blocks := d.tree.Blocks()
	if len(blocks) == 0 {
		return
	}
	if err := d.setCaret(blocks[0].Start); err != nil {
		d.logger.Errorf("reset selection: %v", err)
	}
}

// result builds the result of an edit with the current selection.
func (d *Document) result(status Status, created []revision.ID) Result {
	return Result{
		Status:    status,
		Created:   created,
		Selection: d.currentRange(),
	}
}

func (d *Document) staleSelection(op string) Result {
	d.logger.Warnf("%s ignored: stale selection %s..%s", op, d.anchor, d.head)
	d.metrics.AddStaleSelection()
	return Result{Status: StatusStaleSelection}
}

// cursor is the selection as positions, kept while spans are removed and
// the tree is normalized.
type cursor struct {
	anchor int
	head   int
	ok     bool
}

func (d *Document) saveCursor() *cursor {
	anchor, err := d.tree.PosOf(d.anchor)
	if err != nil {
		return &cursor{}
	}
	head, err := d.tree.PosOf(d.head)
	if err != nil {
		return &cursor{}
	}
	return &cursor{anchor: anchor, head: head, ok: true}
}

// shift moves the cursor as if the given range was removed.
func (c *cursor) shift(from, to int) {
	c.anchor = shiftPos(c.anchor, from, to)
	c.head = shiftPos(c.head, from, to)
}

func shiftPos(pos, from, to int) int {
	if pos <= from {
		return pos
	}
	if pos < to {
		return from
	}
	return pos - (to - from)
}

func (d *Document) restoreCursor(c *cursor) {
	if !c.ok {
		return
	}

	anchor, err := d.tree.AnchorOf(c.anchor)
	if err != nil {
		d.logger.Errorf("restore selection: %v", err)
		return
	}
	head, err := d.tree.AnchorOf(c.head)
	if err != nil {
		d.logger.Errorf("restore selection: %v", err)
		return
	}
	d.anchor, d.head = anchor, head
}

// reconcile brings the records of the given revisions in line with the tree:
// content and node references follow the live fragments, and a pending
// revision whose fragments are all gone is finalized with the status that
// matches the tree.
func (d *Document) reconcile(ids ...revision.ID) error {
	seen := make(map[revision.ID]bool)
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		record, ok := d.ledger.Get(id)
		if !ok || !record.IsPending() || record.Kind == revision.Format {
			continue
		}

		fragments := d.tree.Fragments(id)
		if len(fragments) == 0 {
			status := revision.Accepted
			if record.Kind == revision.Insertion {
				status = revision.Rejected
			}
			if _, err := d.ledger.SetStatus(id, status); err != nil {
				return err
			}
			d.metrics.AddRevisionResolved(record.Kind, status)
			d.logger.Debugf("%s %s finalized as %s: no span left", record.Kind, id, status)
			continue
		}

		if _, err := d.ledger.UpdateContent(id, d.tree.RevisionText(id)); err != nil {
			return err
		}
		if _, err := d.ledger.SetNodeRef(id, fragments[0].ID.String()); err != nil {
			return err
		}
	}

	return nil
}

// revisionsOf returns the revisions of the given leaves.
func revisionsOf(nodes []*tree.TreeNode) []revision.ID {
	var ids []revision.ID
	for _, node := range nodes {
		if node.IsSpan() {
			ids = append(ids, node.RevisionID())
		}
	}
	return ids
}

// Report is the outcome of a verification of the tree against the ledger.
type Report struct {
	// Repaired holds the revisions of spans that had no record. A pending
	// record has been synthesized for each of them.
	Repaired []revision.ID

	// Settled holds the revisions of spans whose record is already terminal.
	Settled []revision.ID

	// Orphaned holds the pending records without any span in the tree.
	Orphaned []revision.ID
}

// IsClean returns whether no inconsistency was found.
func (r Report) IsClean() bool {
	return len(r.Repaired) == 0 && len(r.Settled) == 0 && len(r.Orphaned) == 0
}

func (d *Document) verify(groups []tree.SpanGroup) (Report, error) {
	report := Report{}

	live := make(map[revision.ID]bool)
	for _, group := range groups {
		live[group.RevisionID] = true

		record, ok := d.ledger.Get(group.RevisionID)
		if ok {
			if record.Status.IsTerminal() {
				report.Settled = append(report.Settled, group.RevisionID)
				d.violated("%s %s is %s but still has spans", group.Kind, group.RevisionID, record.Status)
			}
			continue
		}

		d.violated("%s %s has spans but no record", group.Kind, group.RevisionID)
		if err := d.restoreRecord(group); err != nil {
			return report, err
		}
		report.Repaired = append(report.Repaired, group.RevisionID)
		d.metrics.AddInvariantRepair()
	}

	for _, record := range d.ledger.ListPending() {
		if record.Kind == revision.Format || live[record.ID] {
			continue
		}
		report.Orphaned = append(report.Orphaned, record.ID)
		d.logger.Warnf("%s %s is pending but has no span", record.Kind, record.ID)
	}

	return report, nil
}

// violated panics in debug mode and logs the violation otherwise.
func (d *Document) violated(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if d.config.Debug {
		panic(fmt.Errorf("%s: %w", msg, ErrInvariantViolation))
	}
	d.logger.Errorf("%s: repairing", msg)
}

// restoreRecord registers a pending record rebuilt from the fragments of the
// given group.
func (d *Document) restoreRecord(group tree.SpanGroup) error {
	if len(group.Fragments) == 0 {
		return nil
	}

	first := group.Fragments[0]
	created, err := d.ledger.Restore(&revision.Record{
		ID:        group.RevisionID,
		Kind:      group.Kind,
		Status:    revision.Pending,
		Content:   d.tree.RevisionText(group.RevisionID),
		Author:    first.Span.Author,
		CreatedAt: first.Span.Timestamp,
		NodeRef:   first.ID.String(),
	})
	if err != nil {
		return fmt.Errorf("restore %s: %w", group.RevisionID, err)
	}
	if created {
		d.metrics.AddRevisionCreated(group.Kind)
	}
	return nil
}
