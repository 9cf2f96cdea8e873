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

package document

import (
	"github.com/yorkie-team/redline/pkg/document/tree"
	"github.com/yorkie-team/redline/pkg/revision"
)

// Resolution is the outcome of the resolution of one revision.
type Resolution struct {
	ID     revision.ID
	Status Status

	// Kind is the kind of the resolved record. It is empty for unknown
	// revisions.
	Kind revision.Kind
}

// Accept accepts the given revision: insertions become plain text and
// deletions are removed with their text.
func (d *Document) Accept(id revision.ID) (Resolution, error) {
	return d.resolveOne(id, revision.Accepted)
}

// Reject rejects the given revision: insertions are removed with their text
// and deletions become plain text again.
func (d *Document) Reject(id revision.ID) (Resolution, error) {
	return d.resolveOne(id, revision.Rejected)
}

// AcceptAll accepts every pending revision.
func (d *Document) AcceptAll() ([]Resolution, error) {
	return d.resolvePending(revision.Accepted, "")
}

// RejectAll rejects every pending revision.
func (d *Document) RejectAll() ([]Resolution, error) {
	return d.resolvePending(revision.Rejected, "")
}

// AcceptByAuthor accepts every pending revision of the given author.
func (d *Document) AcceptByAuthor(authorID string) ([]Resolution, error) {
	return d.resolvePending(revision.Accepted, authorID)
}

// RejectByAuthor rejects every pending revision of the given author.
func (d *Document) RejectByAuthor(authorID string) ([]Resolution, error) {
	return d.resolvePending(revision.Rejected, authorID)
}

// AcceptMany accepts the given revisions in the given order.
func (d *Document) AcceptMany(ids ...revision.ID) ([]Resolution, error) {
	return d.resolveIDs(ids, revision.Accepted)
}

// RejectMany rejects the given revisions in the given order.
func (d *Document) RejectMany(ids ...revision.ID) ([]Resolution, error) {
	return d.resolveIDs(ids, revision.Rejected)
}

func (d *Document) resolveOne(id revision.ID, status revision.Status) (Resolution, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c := d.saveCursor()
	resolution, err := d.resolve(id, status, d.tree.Fragments(id), c)
	if err != nil {
		return Resolution{}, err
	}
	if err := d.tree.Normalize(); err != nil {
		return Resolution{}, err
	}
	d.restoreCursor(c)

	return resolution, nil
}

func (d *Document) resolvePending(status revision.Status, authorID string) ([]Resolution, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	groups := d.tree.Spans()
	if _, err := d.verify(groups); err != nil {
		return nil, err
	}

	records := d.ledger.ListPending()
	if authorID != "" {
		records = d.ledger.ListPendingByAuthor(authorID)
	}

	ids := make([]revision.ID, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	return d.resolveMany(ids, status, groups)
}

func (d *Document) resolveIDs(ids []revision.ID, status revision.Status) ([]Resolution, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	groups := d.tree.Spans()
	if _, err := d.verify(groups); err != nil {
		return nil, err
	}
	return d.resolveMany(ids, status, groups)
}

// resolveMany resolves the given revisions with the spans collected by one
// traversal of the tree.
func (d *Document) resolveMany(
	ids []revision.ID,
	status revision.Status,
	groups []tree.SpanGroup,
) ([]Resolution, error) {
	fragments := make(map[revision.ID][]*tree.TreeNode, len(groups))
	for _, group := range groups {
		fragments[group.RevisionID] = group.Fragments
	}

	c := d.saveCursor()
	resolutions := make([]Resolution, 0, len(ids))
	for _, id := range ids {
		resolution, err := d.resolve(id, status, fragments[id], c)
		if err != nil {
			return nil, err
		}
		delete(fragments, id)
		resolutions = append(resolutions, resolution)
	}

	if err := d.tree.Normalize(); err != nil {
		return nil, err
	}
	d.restoreCursor(c)
	d.metrics.ObserveBulkResolution(len(ids))

	return resolutions, nil
}

// resolve rewrites the given fragments of a revision and moves its record to
// the given status. The tree is left unnormalized.
func (d *Document) resolve(
	id revision.ID,
	status revision.Status,
	fragments []*tree.TreeNode,
	c *cursor,
) (Resolution, error) {
	record, ok := d.ledger.Get(id)
	if !ok {
		d.logger.Debugf("resolve %s: unknown revision", id)
		return Resolution{ID: id, Status: StatusUnknownRevision}, nil
	}

	result := Resolution{ID: id, Status: StatusApplied, Kind: record.Kind}
	if record.Status.IsTerminal() {
		d.logger.Debugf("resolve %s: already %s", id, record.Status)
		result.Status = StatusAlreadyResolved
		return result, nil
	}
	if record.Kind != revision.Format && len(fragments) == 0 {
		d.logger.Warnf("resolve %s: no span left, finalizing as %s", id, status)
		result.Status = StatusStaleReference
	}

	for _, node := range fragments {
		kind := node.Span.Kind(node.Type())
		if (kind == revision.Insertion) == (status == revision.Accepted) {
			d.tree.Convert(node, tree.TextType, nil)
			continue
		}

		start, err := d.tree.PosOf(tree.Anchor{NodeID: node.ID})
		if err != nil {
			return Resolution{}, err
		}
		c.shift(start, start+node.Len())
		if err := d.tree.RemoveLeaf(node); err != nil {
			return Resolution{}, err
		}
	}

	if _, err := d.ledger.SetStatus(id, status); err != nil {
		return Resolution{}, err
	}
	d.metrics.AddRevisionResolved(record.Kind, status)
	d.logger.Debugf("%s %s by %s %s", record.Kind, id, record.Author.ID, status)

	return result, nil
}
