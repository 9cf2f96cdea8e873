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

// Package tree provides the document tree of the editor: elements holding
// blocks, blocks holding leaves, and leaves that are plain text, insertion
// spans or deletion spans.
package tree

import (
	"fmt"
	"sort"
	"strings"
	gotime "time"

	"github.com/yorkie-team/redline/pkg/errors"
	"github.com/yorkie-team/redline/pkg/index"
	"github.com/yorkie-team/redline/pkg/revision"
)

var (
	// ErrNodeNotFound is returned when the node is not found.
	ErrNodeNotFound = errors.NotFound("node not found").WithCode("ErrNodeNotFound")

	// ErrInvalidPosition is returned when a position is out of range or does
	// not fall inside the content of a block.
	ErrInvalidPosition = errors.InvalidArgument("invalid position").WithCode("ErrInvalidPosition")

	// ErrInvalidAnchor is returned when an anchor does not reference a live
	// position of the tree.
	ErrInvalidAnchor = errors.InvalidArgument("invalid anchor").WithCode("ErrInvalidAnchor")

	// ErrInvalidStructure is returned when a tree cannot be built from the
	// given nodes.
	ErrInvalidStructure = errors.InvalidArgument("invalid tree structure").WithCode("ErrInvalidStructure")
)

// JSONTreeNode is a structure to represent a node in the tree before it is
// built.
type JSONTreeNode struct {
	Type       string
	Attributes map[string]string
	Children   []JSONTreeNode
	Value      string
	Marks      []string
	Span       *Span
}

// Anchor is a position expressed against a node: an offset in code units for
// leaves, a child offset for elements.
type Anchor struct {
	NodeID NodeID
	Offset int
}

// String returns the string representation of this anchor.
func (a Anchor) String() string {
	return fmt.Sprintf("%s:%d", a.NodeID, a.Offset)
}

// Block is an element holding leaves, with the range of its content.
type Block struct {
	Node  *TreeNode
	Start int
	End   int
}

// Contains returns whether the given position is inside the content of this
// block, edges included.
func (b Block) Contains(pos int) bool {
	return b.Start <= pos && pos <= b.End
}

// Leaf is a leaf with the position where its text starts.
type Leaf struct {
	Node  *TreeNode
	Start int
}

// End returns the position where the text of the leaf ends.
func (l Leaf) End() int {
	return l.Start + l.Node.Len()
}

// SpanGroup is the set of fragments of one revision in document order.
type SpanGroup struct {
	RevisionID revision.ID
	Kind       revision.Kind
	Fragments  []*TreeNode
}

// CreatedAt returns the timestamp carried by the first fragment of the group.
func (g SpanGroup) CreatedAt() gotime.Time {
	if len(g.Fragments) == 0 || g.Fragments[0].Span == nil {
		return gotime.Time{}
	}
	return g.Fragments[0].Span.Timestamp
}

// Tree is the document tree.
type Tree struct {
	IndexTree *index.Tree[*TreeNode]

	nodeMapByID       map[NodeID]*TreeNode
	spanMapByRevision map[revision.ID]map[NodeID]*TreeNode
	lastID            NodeID
}

// NewTree creates a new tree holding one empty paragraph.
func NewTree() *Tree {
	tree, _ := NewTreeFromJSON(&JSONTreeNode{Type: DefaultRootType})
	return tree
}

// NewTreeFromJSON builds a tree from the given nodes. A root without
// children gets an empty paragraph.
func NewTreeFromJSON(root *JSONTreeNode) (*Tree, error) {
	if root == nil || IsLeafType(root.Type) || root.Type == "" {
		return nil, fmt.Errorf("root must be an element: %w", ErrInvalidStructure)
	}

	t := &Tree{
		nodeMapByID:       make(map[NodeID]*TreeNode),
		spanMapByRevision: make(map[revision.ID]map[NodeID]*TreeNode),
	}

	rootNode := t.newElement(root.Type, root.Attributes)
	t.IndexTree = index.NewTree(rootNode.IndexTreeNode)

	children := root.Children
	if len(children) == 0 {
		children = []JSONTreeNode{{Type: DefaultBlockType}}
	}
	for _, child := range children {
		if IsLeafType(child.Type) {
			return nil, fmt.Errorf("%s under root: %w", child.Type, ErrInvalidStructure)
		}
		if err := t.build(rootNode, &child); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Tree) build(parent *TreeNode, json *JSONTreeNode) error {
	if IsLeafType(json.Type) {
		if json.Value == "" {
			return nil
		}
		if IsSpanType(json.Type) && (json.Span == nil || json.Span.RevisionID == "") {
			return fmt.Errorf("%s without revision: %w", json.Type, ErrInvalidStructure)
		}

		var span *Span
		if IsSpanType(json.Type) {
			copied := *json.Span
			span = &copied
		}
		return parent.IndexTreeNode.Append(t.NewLeaf(json.Type, json.Value, json.Marks, span).IndexTreeNode)
	}

	if json.Type == "" {
		return fmt.Errorf("element without type: %w", ErrInvalidStructure)
	}
	if json.Value != "" {
		return fmt.Errorf("%s with value: %w", json.Type, ErrInvalidStructure)
	}

	hasLeaf, hasElement := false, false
	for _, child := range json.Children {
		if IsLeafType(child.Type) {
			hasLeaf = true
		} else {
			hasElement = true
		}
	}
	if hasLeaf && hasElement {
		return fmt.Errorf("%s mixes text and elements: %w", json.Type, ErrInvalidStructure)
	}

	node := t.newElement(json.Type, json.Attributes)
	if err := parent.IndexTreeNode.Append(node.IndexTreeNode); err != nil {
		return err
	}
	for _, child := range json.Children {
		if err := t.build(node, &child); err != nil {
			return err
		}
	}

	return nil
}

func (t *Tree) nextID() NodeID {
	t.lastID++
	return t.lastID
}

func (t *Tree) newElement(nodeType string, attrs map[string]string) *TreeNode {
	node := NewTreeNode(t.nextID(), nodeType, "")
	if len(attrs) > 0 {
		node.Attrs = make(map[string]string, len(attrs))
		for key, value := range attrs {
			node.Attrs[key] = value
		}
	}
	t.nodeMapByID[node.ID] = node
	return node
}

// NewLeaf creates a new detached leaf registered in this tree.
func (t *Tree) NewLeaf(nodeType, value string, marks []string, span *Span) *TreeNode {
	node := NewTreeNode(t.nextID(), nodeType, value)
	node.Marks = NormalizeMarks(marks)
	node.Span = span
	t.register(node)
	return node
}

func (t *Tree) register(node *TreeNode) {
	t.nodeMapByID[node.ID] = node
	if node.Span == nil {
		return
	}

	fragments, ok := t.spanMapByRevision[node.Span.RevisionID]
	if !ok {
		fragments = make(map[NodeID]*TreeNode)
		t.spanMapByRevision[node.Span.RevisionID] = fragments
	}
	fragments[node.ID] = node
}

func (t *Tree) unregister(node *TreeNode) {
	delete(t.nodeMapByID, node.ID)
	if node.Span == nil {
		return
	}

	fragments := t.spanMapByRevision[node.Span.RevisionID]
	delete(fragments, node.ID)
	if len(fragments) == 0 {
		delete(t.spanMapByRevision, node.Span.RevisionID)
	}
}

// Root returns the root node of the tree.
func (t *Tree) Root() *TreeNode {
	return t.IndexTree.Root().Value
}

// Len returns the size of the content of the root.
func (t *Tree) Len() int {
	return t.Root().Len()
}

// FindNode returns the live node of the given ID.
func (t *Tree) FindNode(id NodeID) (*TreeNode, bool) {
	node, ok := t.nodeMapByID[id]
	return node, ok
}

// Blocks returns the blocks of the tree in document order.
func (t *Tree) Blocks() []Block {
	var blocks []Block

	var visit func(node *TreeNode, start int)
	visit = func(node *TreeNode, start int) {
		if node != t.Root() && node.isBlock() {
			blocks = append(blocks, Block{Node: node, Start: start, End: start + node.Len()})
			return
		}

		pos := start
		for _, child := range node.IndexTreeNode.Children() {
			visit(child.Value, pos+1)
			pos += child.PaddedLength()
		}
	}
	visit(t.Root(), 0)

	return blocks
}

// BlockAt returns the block whose content contains the given position.
func (t *Tree) BlockAt(pos int) (Block, error) {
	if pos < 0 || pos > t.Len() {
		return Block{}, fmt.Errorf("%d of %d: %w", pos, t.Len(), ErrInvalidPosition)
	}

	for _, block := range t.Blocks() {
		if block.Contains(pos) {
			return block, nil
		}
	}

	return Block{}, fmt.Errorf("%d is between blocks: %w", pos, ErrInvalidPosition)
}

// blockOf returns the block of the given node.
func (t *Tree) blockOf(node *TreeNode) (Block, error) {
	for _, block := range t.Blocks() {
		if block.Node == node {
			return block, nil
		}
	}
	return Block{}, fmt.Errorf("block %s: %w", node.ID, ErrNodeNotFound)
}

// LeavesOf returns the leaves of the given block with their positions.
func (t *Tree) LeavesOf(block Block) []Leaf {
	var leaves []Leaf
	pos := block.Start
	for _, child := range block.Node.IndexTreeNode.Children() {
		leaves = append(leaves, Leaf{Node: child.Value, Start: pos})
		pos += child.PaddedLength()
	}
	return leaves
}

// Leaves returns every leaf of the tree in document order.
func (t *Tree) Leaves() []Leaf {
	var leaves []Leaf
	for _, block := range t.Blocks() {
		leaves = append(leaves, t.LeavesOf(block)...)
	}
	return leaves
}

// LeavesBetween returns the leaves overlapping the given range in document
// order. Callers split the range edges first to get whole leaves.
func (t *Tree) LeavesBetween(from, to int) []Leaf {
	var leaves []Leaf
	for _, leaf := range t.Leaves() {
		if leaf.Start < to && leaf.End() > from {
			leaves = append(leaves, leaf)
		}
	}
	return leaves
}

// SplitAt makes sure that no leaf crosses the given position.
func (t *Tree) SplitAt(pos int) error {
	block, err := t.BlockAt(pos)
	if err != nil {
		return err
	}

	for _, leaf := range t.LeavesOf(block) {
		if leaf.Start < pos && pos < leaf.End() {
			_, err := t.SplitLeaf(leaf.Node, pos-leaf.Start)
			return err
		}
	}

	return nil
}

// SplitLeaf splits the given leaf at the given offset and returns the right
// part.
func (t *Tree) SplitLeaf(node *TreeNode, offset int) (*TreeNode, error) {
	right, err := node.SplitText(offset, t.nextID())
	if err != nil {
		return nil, err
	}
	if right != nil {
		t.register(right)
	}
	return right, nil
}

// InsertLeaf inserts the given detached leaf at the given position, splitting
// the leaf that crosses it.
func (t *Tree) InsertLeaf(pos int, node *TreeNode) error {
	if err := t.SplitAt(pos); err != nil {
		return err
	}

	block, err := t.BlockAt(pos)
	if err != nil {
		return err
	}

	offset := len(block.Node.IndexTreeNode.Children())
	for i, leaf := range t.LeavesOf(block) {
		if leaf.Start >= pos {
			offset = i
			break
		}
	}

	if _, ok := t.nodeMapByID[node.ID]; !ok {
		t.register(node)
	}
	return block.Node.IndexTreeNode.InsertAt(node.IndexTreeNode, offset)
}

// RemoveLeaf detaches the given leaf from the tree.
func (t *Tree) RemoveLeaf(node *TreeNode) error {
	parent := node.IndexTreeNode.Parent
	if parent == nil {
		return fmt.Errorf("leaf %s: %w", node.ID, ErrNodeNotFound)
	}
	if err := parent.RemoveChild(node.IndexTreeNode); err != nil {
		return err
	}

	t.unregister(node)
	return nil
}

// RemoveRange removes the text of every leaf inside the given range of one
// block.
func (t *Tree) RemoveRange(from, to int) ([]*TreeNode, error) {
	if from >= to {
		return nil, nil
	}
	if err := t.SplitAt(from); err != nil {
		return nil, err
	}
	if err := t.SplitAt(to); err != nil {
		return nil, err
	}

	var removed []*TreeNode
	for _, leaf := range t.LeavesBetween(from, to) {
		if err := t.RemoveLeaf(leaf.Node); err != nil {
			return nil, err
		}
		removed = append(removed, leaf.Node)
	}
	return removed, nil
}

// Convert changes the type and the span of the given leaf in place.
func (t *Tree) Convert(node *TreeNode, nodeType string, span *Span) {
	t.unregister(node)
	node.IndexTreeNode.Type = nodeType
	node.Span = span
	t.register(node)
}

// JoinBlocks moves the leaves of the right block to the end of the left block
// and removes the right block. Elements emptied by the removal are removed
// as well.
func (t *Tree) JoinBlocks(left, right *TreeNode) error {
	if left == right || !left.isBlock() || !right.isBlock() {
		return fmt.Errorf("join %s and %s: %w", left.ID, right.ID, ErrInvalidStructure)
	}

	for _, child := range right.Children() {
		if err := right.IndexTreeNode.RemoveChild(child.IndexTreeNode); err != nil {
			return err
		}
		if err := left.IndexTreeNode.Append(child.IndexTreeNode); err != nil {
			return err
		}
	}

	return t.removeElement(right)
}

// RemoveBlock removes the given block with all its leaves.
func (t *Tree) RemoveBlock(block *TreeNode) error {
	if len(t.Blocks()) <= 1 {
		return fmt.Errorf("remove last block %s: %w", block.ID, ErrInvalidStructure)
	}

	for _, child := range block.Children() {
		t.unregister(child)
	}
	return t.removeElement(block)
}

func (t *Tree) removeElement(node *TreeNode) error {
	for node != t.Root() {
		parent := node.Parent()
		if parent == nil {
			return fmt.Errorf("element %s: %w", node.ID, ErrNodeNotFound)
		}
		if err := parent.IndexTreeNode.RemoveChild(node.IndexTreeNode); err != nil {
			return err
		}
		delete(t.nodeMapByID, node.ID)

		if parent == t.Root() || len(parent.IndexTreeNode.Children()) > 0 {
			break
		}
		node = parent
	}

	return nil
}

// Normalize merges adjacent leaves of the same type, marks and revision and
// drops empty leaves.
func (t *Tree) Normalize() error {
	for _, block := range t.Blocks() {
		var prev *TreeNode
		for _, child := range block.Node.Children() {
			if child.Len() == 0 {
				if err := t.RemoveLeaf(child); err != nil {
					return err
				}
				continue
			}

			if prev != nil && prev.canMerge(child) {
				if err := prev.InsertText(prev.Len(), child.Value); err != nil {
					return err
				}
				if err := t.RemoveLeaf(child); err != nil {
					return err
				}
				continue
			}
			prev = child
		}
	}

	return nil
}

// Fragments returns the live fragments of the given revision in document
// order.
func (t *Tree) Fragments(id revision.ID) []*TreeNode {
	fragments, ok := t.spanMapByRevision[id]
	if !ok {
		return nil
	}

	type positioned struct {
		node *TreeNode
		pos  int
	}
	var nodes []positioned
	for _, node := range fragments {
		pos, err := t.IndexTree.IndexOf(&index.TreePos[*TreeNode]{Node: node.IndexTreeNode})
		if err != nil {
			continue
		}
		nodes = append(nodes, positioned{node: node, pos: pos})
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].pos < nodes[j].pos
	})

	result := make([]*TreeNode, 0, len(nodes))
	for _, node := range nodes {
		result = append(result, node.node)
	}
	return result
}

// HasFragments returns whether the given revision still has live fragments.
func (t *Tree) HasFragments(id revision.ID) bool {
	return len(t.spanMapByRevision[id]) > 0
}

// RevisionText returns the concatenated text of the fragments of the given
// revision.
func (t *Tree) RevisionText(id revision.ID) string {
	sb := strings.Builder{}
	for _, node := range t.Fragments(id) {
		sb.WriteString(node.Value)
	}
	return sb.String()
}

// Spans collects the fragments of every revision with a single traversal.
// Groups are ordered by the first appearance of the revision.
func (t *Tree) Spans() []SpanGroup {
	var groups []SpanGroup
	indexes := make(map[revision.ID]int)

	for _, leaf := range t.Leaves() {
		node := leaf.Node
		if !node.IsSpan() {
			continue
		}

		id := node.Span.RevisionID
		i, ok := indexes[id]
		if !ok {
			i = len(groups)
			indexes[id] = i
			groups = append(groups, SpanGroup{
				RevisionID: id,
				Kind:       node.Span.Kind(node.Type()),
			})
		}
		groups[i].Fragments = append(groups[i].Fragments, node)
	}

	return groups
}

// Text returns the concatenated text of the leaves in document order.
// Deletion spans are included only when includeDeleted is true.
func (t *Tree) Text(includeDeleted bool) string {
	sb := strings.Builder{}
	for _, leaf := range t.Leaves() {
		if leaf.Node.Type() == DeletionType && !includeDeleted {
			continue
		}
		sb.WriteString(leaf.Node.Value)
	}
	return sb.String()
}

// PosOf converts the given anchor into a position.
func (t *Tree) PosOf(anchor Anchor) (int, error) {
	node, ok := t.nodeMapByID[anchor.NodeID]
	if !ok {
		return 0, fmt.Errorf("anchor %s: %w", anchor, ErrInvalidAnchor)
	}

	limit := len(node.IndexTreeNode.Children())
	if node.IsText() {
		limit = node.Len()
	}
	if anchor.Offset < 0 || anchor.Offset > limit {
		return 0, fmt.Errorf("anchor %s beyond %d: %w", anchor, limit, ErrInvalidAnchor)
	}

	pos, err := t.IndexTree.IndexOf(&index.TreePos[*TreeNode]{
		Node:   node.IndexTreeNode,
		Offset: anchor.Offset,
	})
	if err != nil {
		return 0, fmt.Errorf("anchor %s: %v: %w", anchor, err, ErrInvalidAnchor)
	}
	return pos, nil
}

// AnchorOf converts the given position into an anchor. Positions between two
// leaves are anchored at the end of the left leaf.
func (t *Tree) AnchorOf(pos int) (Anchor, error) {
	treePos, err := t.IndexTree.FindTreePos(pos)
	if err != nil {
		return Anchor{}, fmt.Errorf("%d: %v: %w", pos, err, ErrInvalidPosition)
	}

	return Anchor{
		NodeID: treePos.Node.Value.ID,
		Offset: treePos.Offset,
	}, nil
}

// ToXML returns the XML encoding of this tree.
func (t *Tree) ToXML() string {
	return index.ToXML(t.IndexTree.Root())
}

// Structure returns the structure of this tree for debugging.
func (t *Tree) Structure() TreeNodeForTest {
	return t.Root().Structure()
}
