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
	"fmt"

	"github.com/yorkie-team/redline/pkg/document/tree"
	"github.com/yorkie-team/redline/pkg/revision"
)

// Run is a displayed run of text.
type Run struct {
	// Block is the index of the block holding the run.
	Block int

	// Type is the type of the leaf: text, insertion or deletion.
	Type string
	Text string

	RevisionID revision.ID
	Author     revision.Author
	Marks      []string
}

// SetShowDeletions sets whether deletion spans are displayed. It changes
// neither the tree nor the ledger.
func (d *Document) SetShowDeletions(show bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.showDeletions = show
}

// ShowDeletions returns whether deletion spans are displayed.
func (d *Document) ShowDeletions() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.showDeletions
}

// Text returns the displayed text. Deletion spans are included only when
// they are shown.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.tree.Text(d.showDeletions)
}

// PlainText returns the text of the document without deletion spans,
// whatever the display policy.
func (d *Document) PlainText() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.tree.Text(false)
}

// Runs returns the displayed runs in document order.
func (d *Document) Runs() []Run {
	d.mu.Lock()
	defer d.mu.Unlock()

	var runs []Run
	for i, block := range d.tree.Blocks() {
		for _, leaf := range d.tree.LeavesOf(block) {
			node := leaf.Node
			if node.IsDeletion() && !d.showDeletions {
				continue
			}

			run := Run{
				Block: i,
				Type:  node.Type(),
				Text:  node.Value,
				Marks: node.Marks,
			}
			if node.Span != nil {
				run.RevisionID = node.Span.RevisionID
				run.Author = node.Span.Author
			}
			runs = append(runs, run)
		}
	}
	return runs
}

// DisplayPos converts an offset into the displayed text into a position.
// Hidden deletion spans at the offset are skipped when afterHidden is true,
// otherwise the position before them is returned. The end of a block is
// returned as is in both cases.
func (d *Document) DisplayPos(offset int, afterHidden bool) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	count := 0
	for _, block := range d.tree.Blocks() {
		pos := block.Start
		for _, leaf := range d.tree.LeavesOf(block) {
			hidden := leaf.Node.IsDeletion() && !d.showDeletions
			for i := 0; i < leaf.Node.Len(); i++ {
				if count == offset && (!afterHidden || !hidden) {
					return pos, nil
				}
				if !hidden {
					count++
				}
				pos++
			}
		}

		// the end of a block is never skipped
		if count == offset {
			return pos, nil
		}
	}

	return 0, fmt.Errorf("offset %d of %d: %w", offset, count, tree.ErrInvalidPosition)
}

// ToXML returns the XML encoding of the tree with every span.
func (d *Document) ToXML() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.tree.ToXML()
}
