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
	"sort"

	"github.com/yorkie-team/redline/api/converter"
	"github.com/yorkie-team/redline/pkg/document/tree"
	"github.com/yorkie-team/redline/pkg/revision"
)

// Save returns the BSON encoding of the tree. Span timestamps are kept with
// millisecond precision.
func (d *Document) Save() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return converter.TreeToBytes(d.tree)
}

// ToRecord returns the record of the tree.
func (d *Document) ToRecord() *converter.Record {
	d.mu.Lock()
	defer d.mu.Unlock()

	return converter.ToRecord(d.tree)
}

// Load replaces the tree with the one encoded in the given BSON bytes.
func (d *Document) Load(bytes []byte) error {
	record, err := converter.FromBytes(bytes)
	if err != nil {
		return err
	}
	return d.LoadRecord(record)
}

// LoadRecord replaces the tree with the one of the given record.
func (d *Document) LoadRecord(record *converter.Record) error {
	node, err := converter.FromRecord(record)
	if err != nil {
		return err
	}
	return d.LoadTree(node)
}

// LoadTree replaces the tree with one built from the given nodes. Every span
// whose revision is missing from the ledger gets a pending record, so the
// loaded changes can be resolved again. The caret is moved to the start of
// the document.
func (d *Document) LoadTree(node *tree.JSONTreeNode) error {
	t, err := tree.NewTreeFromJSON(node)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.tree = t
	d.resetSelection()

	var known []revision.ID
	var missing []tree.SpanGroup
	for _, group := range t.Spans() {
		if _, ok := d.ledger.Get(group.RevisionID); ok {
			known = append(known, group.RevisionID)
			continue
		}
		missing = append(missing, group)
	}

	// restore in creation order, ties in document order
	sort.SliceStable(missing, func(i, j int) bool {
		return missing[i].CreatedAt().Before(missing[j].CreatedAt())
	})
	for _, group := range missing {
		if err := d.restoreRecord(group); err != nil {
			return err
		}
	}
	if err := d.reconcile(known...); err != nil {
		return err
	}

	if len(missing) > 0 {
		d.logger.Debugf("restored %d pending revisions from loaded spans", len(missing))
	}

	_, err = d.verify(t.Spans())
	return err
}

// Reset drops every record and replaces the tree with an empty paragraph.
func (d *Document) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ledger.Clear(); err != nil {
		return err
	}
	d.tree = tree.NewTree()
	d.resetSelection()

	return nil
}
