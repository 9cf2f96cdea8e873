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
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/yorkie-team/redline/internal/validation"
	"github.com/yorkie-team/redline/pkg/document/tree"
	"github.com/yorkie-team/redline/pkg/revision"
)

// Direction is the direction of a deletion.
type Direction string

const (
	// Backward deletes before the caret, like backspace.
	Backward Direction = "backward"

	// Forward deletes after the caret, like the delete key.
	Forward Direction = "forward"
)

// Unit is the extent of a deletion with a collapsed selection.
type Unit string

const (
	// Character deletes one character.
	Character Unit = "character"

	// Word deletes the whitespace next to the caret and the word after it.
	Word Unit = "word"

	// Line deletes up to the edge of the block.
	Line Unit = "line"
)

// InsertText inserts the given text at the selection. A non-collapsed
// selection is deleted first.
func (d *Document) InsertText(text string) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.insert(text, nil, false)
}

// InsertTextWithMarks inserts the given text with the given marks instead of
// the marks of the leaf at the caret.
func (d *Document) InsertTextWithMarks(text string, marks []string) (Result, error) {
	for _, mark := range marks {
		if err := validation.ValidateValue(mark, "mark"); err != nil {
			return Result{}, fmt.Errorf("mark %q: %v: %w", mark, err, ErrInvalidArgument)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.insert(text, marks, true)
}

// Delete deletes the selection, or the given unit in the given direction
// when the selection is collapsed.
func (d *Document) Delete(direction Direction, unit Unit) (Result, error) {
	if direction != Backward && direction != Forward {
		return Result{}, fmt.Errorf("direction %q: %w", direction, ErrInvalidArgument)
	}
	if unit != Character && unit != Word && unit != Line {
		return Result{}, fmt.Errorf("unit %q: %w", unit, ErrInvalidArgument)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	from, to, err := d.selection()
	if err != nil {
		return d.staleSelection("delete"), nil
	}
	if from != to {
		return d.deleteSelection(from, to)
	}

	return d.deleteUnit(from, direction, unit)
}

// DeleteSelection deletes the selection. A collapsed selection is a no-op.
func (d *Document) DeleteSelection() (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	from, to, err := d.selection()
	if err != nil {
		return d.staleSelection("delete selection"), nil
	}
	if from == to {
		return d.result(StatusNoop, nil), nil
	}

	return d.deleteSelection(from, to)
}

func (d *Document) insert(text string, marks []string, explicit bool) (Result, error) {
	from, to, err := d.selection()
	if err != nil {
		return d.staleSelection("insert"), nil
	}
	if text == "" {
		return d.result(StatusNoop, nil), nil
	}

	var created []revision.ID
	if from != to {
		_, ids, _, err := d.deleteRange(from, to, Backward)
		if err != nil {
			return Result{}, err
		}
		created = append(created, ids...)
	}

	var end int
	if d.tracking {
		var id revision.ID
		end, id, err = d.trackedInsert(from, text, marks, explicit)
		if err != nil {
			return Result{}, err
		}
		if id != "" {
			created = append(created, id)
		}
		d.metrics.AddTrackedEdit("insert")
	} else {
		if end, err = d.untrackedInsert(from, text, marks, explicit); err != nil {
			return Result{}, err
		}
	}

	if err := d.setCaret(end); err != nil {
		return Result{}, err
	}
	return d.result(StatusApplied, created), nil
}

// trackedInsert inserts the given text as an insertion span and returns the
// position after the text. A pending insertion of the current author at the
// caret is extended instead of creating a new revision.
func (d *Document) trackedInsert(
	pos int,
	text string,
	marks []string,
	explicit bool,
) (int, revision.ID, error) {
	block, err := d.tree.BlockAt(pos)
	if err != nil {
		return 0, "", err
	}
	leaves := d.tree.LeavesOf(block)

	// Text is never inserted into the middle of a deletion span.
	for _, leaf := range leaves {
		if leaf.Node.IsDeletion() && leaf.Start < pos && pos < leaf.End() {
			pos = leaf.Start
			break
		}
	}
	end := pos + utf16Len(text)

	if leaf := d.ownInsertionAt(leaves, pos); leaf != nil {
		id := leaf.Node.RevisionID()
		if !explicit || tree.EqualMarks(tree.NormalizeMarks(marks), leaf.Node.Marks) {
			if err := leaf.Node.InsertText(pos-leaf.Start, text); err != nil {
				return 0, "", err
			}
		} else {
			span := *leaf.Node.Span
			node := d.tree.NewLeaf(tree.InsertionType, text, marks, &span)
			if err := d.tree.InsertLeaf(pos, node); err != nil {
				return 0, "", err
			}
			if err := d.tree.Normalize(); err != nil {
				return 0, "", err
			}
		}

		d.logger.Debugf("insertion %s extended by %q", id, text)
		return end, "", d.reconcile(id)
	}

	if !explicit {
		marks = marksAt(leaves, pos)
	}

	id, err := d.ledger.Add(revision.Insertion, text, d.author, "")
	if err != nil {
		return 0, "", err
	}
	span, err := d.newSpan(id)
	if err != nil {
		return 0, "", err
	}

	node := d.tree.NewLeaf(tree.InsertionType, text, marks, span)
	if err := d.tree.InsertLeaf(pos, node); err != nil {
		return 0, "", err
	}
	if err := d.tree.Normalize(); err != nil {
		return 0, "", err
	}
	if _, err := d.ledger.SetNodeRef(id, node.ID.String()); err != nil {
		return 0, "", err
	}

	d.metrics.AddRevisionCreated(revision.Insertion)
	d.logger.Debugf("insertion %s created by %s: %q", id, d.author.ID, text)
	return end, id, nil
}

// newSpan creates the span of the given revision with the creation time of
// its record.
func (d *Document) newSpan(id revision.ID) (*tree.Span, error) {
	record, ok := d.ledger.Get(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrInvariantViolation)
	}

	return &tree.Span{
		RevisionID: id,
		Author:     d.author,
		Timestamp:  record.CreatedAt,
	}, nil
}

// ownInsertionAt returns the pending insertion of the current author that
// contains the given position or touches it on the left or on the right, in
// that order of preference.
func (d *Document) ownInsertionAt(leaves []tree.Leaf, pos int) *tree.Leaf {
	var containing, left, right *tree.Leaf
	for i := range leaves {
		leaf := &leaves[i]
		switch {
		case leaf.Start < pos && pos < leaf.End():
			containing = leaf
		case leaf.End() == pos:
			left = leaf
		case leaf.Start == pos:
			right = leaf
		}
	}

	for _, leaf := range []*tree.Leaf{containing, left, right} {
		if leaf != nil && d.isOwnPendingInsertion(leaf.Node) {
			return leaf
		}
	}
	return nil
}

func (d *Document) isOwnPendingInsertion(node *tree.TreeNode) bool {
	if !node.IsInsertion() || !node.Span.Author.Equal(d.author) {
		return false
	}

	record, ok := d.ledger.Get(node.RevisionID())
	return ok && record.IsPending()
}

// marksAt returns the marks of the leaf the given position touches,
// preferring the leaf on the left.
func marksAt(leaves []tree.Leaf, pos int) []string {
	for _, leaf := range leaves {
		if leaf.Start < pos && pos <= leaf.End() {
			return leaf.Node.Marks
		}
	}
	for _, leaf := range leaves {
		if leaf.Start == pos {
			return leaf.Node.Marks
		}
	}
	return nil
}

// untrackedInsert inserts the given text as plain text.
func (d *Document) untrackedInsert(pos int, text string, marks []string, explicit bool) (int, error) {
	block, err := d.tree.BlockAt(pos)
	if err != nil {
		return 0, err
	}
	leaves := d.tree.LeavesOf(block)
	if !explicit {
		marks = marksAt(leaves, pos)
	}

	var touched []revision.ID
	for _, leaf := range leaves {
		if leaf.Start < pos && pos < leaf.End() && leaf.Node.IsSpan() {
			touched = append(touched, leaf.Node.RevisionID())
		}
	}

	node := d.tree.NewLeaf(tree.TextType, text, marks, nil)
	if err := d.tree.InsertLeaf(pos, node); err != nil {
		return 0, err
	}
	if err := d.tree.Normalize(); err != nil {
		return 0, err
	}

	return pos + utf16Len(text), d.reconcile(touched...)
}

func (d *Document) deleteSelection(from, to int) (Result, error) {
	caret, created, changed, err := d.deleteRange(from, to, Backward)
	if err != nil {
		return Result{}, err
	}
	if err := d.setCaret(caret); err != nil {
		return Result{}, err
	}
	if d.tracking {
		d.metrics.AddTrackedEdit("delete")
	}

	if !changed {
		return d.result(StatusNoop, nil), nil
	}
	return d.result(StatusApplied, created), nil
}

// deleteRange deletes the given range and returns the caret after it.
func (d *Document) deleteRange(
	from, to int,
	direction Direction,
) (int, []revision.ID, bool, error) {
	if d.tracking {
		return d.trackedDelete(from, to, direction)
	}

	caret, changed, err := d.untrackedDelete(from, to)
	return caret, nil, changed, err
}

// trackedDelete marks the given range as deleted. Pending insertions inside
// the range are removed outright, deletion spans are left as they are and
// each run of plain text inside one block becomes a deletion span of its
// own revision. Block structure is never changed.
func (d *Document) trackedDelete(
	from, to int,
	direction Direction,
) (int, []revision.ID, bool, error) {
	var segments []tree.Block
	for _, block := range d.tree.Blocks() {
		start, end := max(from, block.Start), min(to, block.End)
		if start < end {
			segments = append(segments, tree.Block{Node: block.Node, Start: start, End: end})
		}
	}

	for _, segment := range segments {
		if err := d.tree.SplitAt(segment.Start); err != nil {
			return 0, nil, false, err
		}
		if err := d.tree.SplitAt(segment.End); err != nil {
			return 0, nil, false, err
		}
	}

	var runs [][]*tree.TreeNode
	var removals []*tree.TreeNode
	for _, segment := range segments {
		var run []*tree.TreeNode
		for _, leaf := range d.tree.LeavesBetween(segment.Start, segment.End) {
			switch {
			case leaf.Node.IsDeletion():
				if len(run) > 0 {
					runs = append(runs, run)
				}
				run = nil
			case leaf.Node.IsInsertion():
				removals = append(removals, leaf.Node)
			default:
				run = append(run, leaf.Node)
			}
		}
		if len(run) > 0 {
			runs = append(runs, run)
		}
	}

	var created []revision.ID
	for _, run := range runs {
		sb := strings.Builder{}
		for _, node := range run {
			sb.WriteString(node.Value)
		}

		id, err := d.ledger.Add(revision.Deletion, sb.String(), d.author, "")
		if err != nil {
			return 0, nil, false, err
		}
		span, err := d.newSpan(id)
		if err != nil {
			return 0, nil, false, err
		}
		for _, node := range run {
			copied := *span
			d.tree.Convert(node, tree.DeletionType, &copied)
		}

		created = append(created, id)
		d.metrics.AddRevisionCreated(revision.Deletion)
		d.logger.Debugf("deletion %s created by %s: %q", id, d.author.ID, sb.String())
	}

	removed := 0
	touched := append([]revision.ID{}, created...)
	for _, node := range removals {
		if err := d.tree.RemoveLeaf(node); err != nil {
			return 0, nil, false, err
		}
		removed += node.Len()
		touched = append(touched, node.RevisionID())
	}

	if err := d.tree.Normalize(); err != nil {
		return 0, nil, false, err
	}
	if err := d.reconcile(touched...); err != nil {
		return 0, nil, false, err
	}

	caret := from
	if direction == Forward {
		caret = to - removed
	}
	return caret, created, len(created) > 0 || removed > 0, nil
}

// untrackedDelete removes the text of the given range whatever the kind of
// its leaves. A range crossing blocks joins the first and the last blocks.
func (d *Document) untrackedDelete(from, to int) (int, bool, error) {
	first, err := d.tree.BlockAt(from)
	if err != nil {
		return 0, false, err
	}
	last, err := d.tree.BlockAt(to)
	if err != nil {
		return 0, false, err
	}

	if first.Node == last.Node {
		removed, err := d.tree.RemoveRange(from, to)
		if err != nil {
			return 0, false, err
		}
		if err := d.tree.Normalize(); err != nil {
			return 0, false, err
		}
		return from, len(removed) > 0, d.reconcile(revisionsOf(removed)...)
	}

	blocks := d.tree.Blocks()
	var middle []tree.Block
	for _, block := range blocks {
		if block.Start > first.End && block.End < last.Start {
			middle = append(middle, block)
		}
	}

	var touched []revision.ID
	removed, err := d.tree.RemoveRange(last.Start, to)
	if err != nil {
		return 0, false, err
	}
	touched = append(touched, revisionsOf(removed)...)

	for i := len(middle) - 1; i >= 0; i-- {
		touched = append(touched, revisionsOf(middle[i].Node.Children())...)
		if err := d.tree.RemoveBlock(middle[i].Node); err != nil {
			return 0, false, err
		}
	}

	if removed, err = d.tree.RemoveRange(from, first.End); err != nil {
		return 0, false, err
	}
	touched = append(touched, revisionsOf(removed)...)

	touched = append(touched, revisionsOf(last.Node.Children())...)
	if err := d.tree.JoinBlocks(first.Node, last.Node); err != nil {
		return 0, false, err
	}
	if err := d.tree.Normalize(); err != nil {
		return 0, false, err
	}

	return from, true, d.reconcile(touched...)
}

// char is a code point of a block with its position.
type char struct {
	pos   int
	width int
	r     rune
	leaf  tree.Leaf
}

// charsOf returns the code points of the given leaves. Deletion spans are
// skipped when visibleOnly is true.
func charsOf(leaves []tree.Leaf, visibleOnly bool) []char {
	var chars []char
	for _, leaf := range leaves {
		if visibleOnly && leaf.Node.IsDeletion() {
			continue
		}

		pos := leaf.Start
		for _, r := range leaf.Node.Value {
			width := runeWidth(r)
			chars = append(chars, char{pos: pos, width: width, r: r, leaf: leaf})
			pos += width
		}
	}
	return chars
}

func (d *Document) deleteUnit(caret int, direction Direction, unit Unit) (Result, error) {
	block, err := d.tree.BlockAt(caret)
	if err != nil {
		return Result{}, err
	}

	atEdge := (direction == Backward && caret == block.Start) ||
		(direction == Forward && caret == block.End)
	if atEdge {
		if d.tracking {
			return d.result(StatusNoop, nil), nil
		}
		return d.joinAt(block, direction)
	}

	leaves := d.tree.LeavesOf(block)
	var from, to int
	switch unit {
	case Character:
		c, ok := charAt(charsOf(leaves, false), caret, direction)
		if !ok {
			return d.result(StatusNoop, nil), nil
		}

		if d.tracking && c.leaf.Node.IsDeletion() {
			pos := c.leaf.Start
			if direction == Forward {
				pos = c.leaf.End()
			}
			if err := d.setCaret(pos); err != nil {
				return Result{}, err
			}
			d.metrics.AddTrackedEdit("delete")
			return d.result(StatusNoop, nil), nil
		}
		from, to = c.pos, c.pos+c.width
	case Word:
		from, to = wordRange(charsOf(leaves, d.tracking), caret, direction)
	case Line:
		from, to = caret, block.End
		if direction == Backward {
			from, to = block.Start, caret
		}
	}

	if from == to {
		return d.result(StatusNoop, nil), nil
	}

	caret, created, changed, err := d.deleteRange(from, to, direction)
	if err != nil {
		return Result{}, err
	}
	if err := d.setCaret(caret); err != nil {
		return Result{}, err
	}
	if d.tracking {
		d.metrics.AddTrackedEdit("delete")
	}

	if !changed {
		return d.result(StatusNoop, nil), nil
	}
	return d.result(StatusApplied, created), nil
}

// charAt returns the character before the caret for a backward deletion and
// the character after it for a forward deletion.
func charAt(chars []char, caret int, direction Direction) (char, bool) {
	for _, c := range chars {
		if direction == Backward && c.pos+c.width == caret {
			return c, true
		}
		if direction == Forward && c.pos == caret {
			return c, true
		}
	}
	return char{}, false
}

// wordRange returns the range made of the whitespace next to the caret and
// the word after it in the given direction.
func wordRange(chars []char, caret int, direction Direction) (int, int) {
	if direction == Backward {
		i := len(chars) - 1
		for i >= 0 && chars[i].pos+chars[i].width > caret {
			i--
		}

		start := caret
		for i >= 0 && unicode.IsSpace(chars[i].r) {
			start = chars[i].pos
			i--
		}
		for i >= 0 && !unicode.IsSpace(chars[i].r) {
			start = chars[i].pos
			i--
		}
		return start, caret
	}

	j := 0
	for j < len(chars) && chars[j].pos < caret {
		j++
	}

	end := caret
	for j < len(chars) && unicode.IsSpace(chars[j].r) {
		end = chars[j].pos + chars[j].width
		j++
	}
	for j < len(chars) && !unicode.IsSpace(chars[j].r) {
		end = chars[j].pos + chars[j].width
		j++
	}
	return caret, end
}

// joinAt joins the given block with its neighbor in the given direction.
func (d *Document) joinAt(block tree.Block, direction Direction) (Result, error) {
	blocks := d.tree.Blocks()
	index := -1
	for i, b := range blocks {
		if b.Node == block.Node {
			index = i
			break
		}
	}

	var left, right tree.Block
	switch {
	case direction == Backward && index > 0:
		left, right = blocks[index-1], block
	case direction == Forward && index >= 0 && index < len(blocks)-1:
		left, right = block, blocks[index+1]
	default:
		return d.result(StatusNoop, nil), nil
	}

	touched := append(revisionsOf(left.Node.Children()), revisionsOf(right.Node.Children())...)
	if err := d.tree.JoinBlocks(left.Node, right.Node); err != nil {
		return Result{}, err
	}
	if err := d.tree.Normalize(); err != nil {
		return Result{}, err
	}
	if err := d.reconcile(touched...); err != nil {
		return Result{}, err
	}

	if err := d.setCaret(left.End); err != nil {
		return Result{}, err
	}
	return d.result(StatusApplied, nil), nil
}

func runeWidth(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

func utf16Len(text string) int {
	return len(utf16.Encode([]rune(text)))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
