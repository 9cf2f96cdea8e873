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

package tree

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	gotime "time"
	"unicode/utf16"

	"github.com/yorkie-team/redline/pkg/index"
	"github.com/yorkie-team/redline/pkg/revision"
)

const (
	// DefaultRootType is the type of the root node.
	DefaultRootType = "doc"

	// DefaultBlockType is the type of the block created for empty documents.
	DefaultBlockType = "p"

	// TextType is the type of a plain text leaf.
	TextType = "text"

	// InsertionType is the type of a leaf holding text inserted by a pending
	// revision.
	InsertionType = "insertion"

	// DeletionType is the type of a leaf holding text marked as deleted by a
	// pending revision.
	DeletionType = "deletion"
)

// IsLeafType returns whether nodes of the given type hold text.
func IsLeafType(nodeType string) bool {
	return nodeType == TextType || nodeType == InsertionType || nodeType == DeletionType
}

// IsSpanType returns whether nodes of the given type carry a revision.
func IsSpanType(nodeType string) bool {
	return nodeType == InsertionType || nodeType == DeletionType
}

// SpanTypeOf returns the node type of spans of the given revision kind.
func SpanTypeOf(kind revision.Kind) (string, bool) {
	switch kind {
	case revision.Insertion:
		return InsertionType, true
	case revision.Deletion:
		return DeletionType, true
	}
	return "", false
}

// NodeID is the identifier of a node in the tree. It is allocated by the tree
// and never reused by the same tree.
type NodeID uint64

// ParseNodeID parses the given string into a NodeID.
func ParseNodeID(s string) (NodeID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse node id %q: %w", s, ErrInvalidAnchor)
	}
	return NodeID(id), nil
}

// String returns the string representation of this ID.
func (id NodeID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Span is the revision metadata carried by insertion and deletion leaves.
// Several leaves may carry the same revision when the span is split.
type Span struct {
	RevisionID revision.ID
	Author     revision.Author
	Timestamp  gotime.Time
}

// Kind returns the revision kind matching the given node type.
func (s *Span) Kind(nodeType string) revision.Kind {
	if nodeType == DeletionType {
		return revision.Deletion
	}
	return revision.Insertion
}

// TreeNodeForTest is a TreeNode for test.
type TreeNodeForTest struct {
	Type     string
	Children []TreeNodeForTest
	Value    string
	Size     int
	Marks    []string
	AuthorID string
}

// TreeNode is a node of Tree.
type TreeNode struct {
	IndexTreeNode *index.Node[*TreeNode]

	ID NodeID

	// Value is the text of a leaf. It is empty for elements.
	Value string

	// Marks are the sorted formatting flags of a leaf, e.g. "bold".
	Marks []string

	// Attrs are the attributes of an element.
	Attrs map[string]string

	// Span is set only for insertion and deletion leaves.
	Span *Span
}

// NewTreeNode creates a new instance of TreeNode.
func NewTreeNode(id NodeID, nodeType string, value string) *TreeNode {
	node := &TreeNode{
		ID:    id,
		Value: value,
	}
	node.IndexTreeNode = index.NewNode(nodeType, node)

	return node
}

// Type returns the type of the Node.
func (n *TreeNode) Type() string {
	return n.IndexTreeNode.Type
}

// Len returns the length of the Node.
func (n *TreeNode) Len() int {
	return n.IndexTreeNode.Len()
}

// IsText returns whether the Node is a leaf holding text.
func (n *TreeNode) IsText() bool {
	return IsLeafType(n.IndexTreeNode.Type)
}

// IsSpan returns whether the Node is an insertion or deletion leaf.
func (n *TreeNode) IsSpan() bool {
	return n.Span != nil && IsSpanType(n.Type())
}

// IsInsertion returns whether the Node is an insertion leaf.
func (n *TreeNode) IsInsertion() bool {
	return n.IsSpan() && n.Type() == InsertionType
}

// IsDeletion returns whether the Node is a deletion leaf.
func (n *TreeNode) IsDeletion() bool {
	return n.IsSpan() && n.Type() == DeletionType
}

// RevisionID returns the revision of the span or empty.
func (n *TreeNode) RevisionID() revision.ID {
	if n.Span == nil {
		return ""
	}
	return n.Span.RevisionID
}

// Length returns the length of this node's value in UTF-16 code units.
func (n *TreeNode) Length() int {
	return len(utf16.Encode([]rune(n.Value)))
}

// String returns the XML fragment of a leaf. Plain leaves without marks are
// written as raw text.
func (n *TreeNode) String() string {
	if n.Type() == TextType && len(n.Marks) == 0 {
		return n.Value
	}

	sb := strings.Builder{}
	sb.WriteString("<" + n.Type())
	if n.Span != nil {
		sb.WriteString(fmt.Sprintf(` author="%s"`, n.Span.Author.ID))
	}
	if len(n.Marks) > 0 {
		sb.WriteString(fmt.Sprintf(` marks="%s"`, strings.Join(n.Marks, ",")))
	}
	sb.WriteString(">" + n.Value + "</" + n.Type() + ">")

	return sb.String()
}

// Attributes returns the string representation of this node's attributes.
func (n *TreeNode) Attributes() string {
	if len(n.Attrs) == 0 {
		return ""
	}

	keys := make([]string, 0, len(n.Attrs))
	for key := range n.Attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	sb := strings.Builder{}
	for _, key := range keys {
		sb.WriteString(fmt.Sprintf(` %s="%s"`, key, n.Attrs[key]))
	}
	return sb.String()
}

// Children returns the children of this node.
func (n *TreeNode) Children() []*TreeNode {
	var children []*TreeNode
	for _, child := range n.IndexTreeNode.Children() {
		children = append(children, child.Value)
	}
	return children
}

// Parent returns the parent of this node or nil.
func (n *TreeNode) Parent() *TreeNode {
	if n.IndexTreeNode.Parent == nil {
		return nil
	}
	return n.IndexTreeNode.Parent.Value
}

// isBlock returns whether this node is an element holding leaves.
func (n *TreeNode) isBlock() bool {
	if n.IsText() {
		return false
	}

	children := n.IndexTreeNode.Children()
	return len(children) == 0 || children[0].IsText()
}

// canMerge returns whether the given leaf can be merged into this leaf.
func (n *TreeNode) canMerge(other *TreeNode) bool {
	if !n.IsText() || n.Type() != other.Type() {
		return false
	}
	if n.RevisionID() != other.RevisionID() {
		return false
	}
	return EqualMarks(n.Marks, other.Marks)
}

// SplitText splits the leaf at the given offset in UTF-16 code units. The
// left part stays in this node, and the right part gets the given ID.
func (n *TreeNode) SplitText(offset int, rightID NodeID) (*TreeNode, error) {
	if offset <= 0 || offset >= n.Len() {
		return nil, nil
	}

	encoded := utf16.Encode([]rune(n.Value))
	leftRune := utf16.Decode(encoded[0:offset])
	rightRune := utf16.Decode(encoded[offset:])

	n.Value = string(leftRune)
	n.IndexTreeNode.Resize(offset)

	rightNode := NewTreeNode(rightID, n.Type(), string(rightRune))
	rightNode.Marks = copyMarks(n.Marks)
	if n.Span != nil {
		span := *n.Span
		rightNode.Span = &span
	}

	if err := n.IndexTreeNode.Parent.InsertAfter(
		rightNode.IndexTreeNode,
		n.IndexTreeNode,
	); err != nil {
		return nil, err
	}

	return rightNode, nil
}

// InsertText inserts the given text into the leaf at the given offset.
func (n *TreeNode) InsertText(offset int, text string) error {
	if offset < 0 || offset > n.Len() {
		return fmt.Errorf("insert at %d of %d: %w", offset, n.Len(), ErrInvalidPosition)
	}

	encoded := utf16.Encode([]rune(n.Value))
	value := string(utf16.Decode(encoded[:offset])) + text + string(utf16.Decode(encoded[offset:]))
	n.Value = value
	n.IndexTreeNode.Resize(n.Length())

	return nil
}

// Structure returns the structure of this node for debugging.
func (n *TreeNode) Structure() TreeNodeForTest {
	if n.IsText() {
		node := TreeNodeForTest{
			Type:  n.Type(),
			Value: n.Value,
			Size:  n.Len(),
			Marks: n.Marks,
		}
		if n.Span != nil {
			node.AuthorID = n.Span.Author.ID
		}
		return node
	}

	var children []TreeNodeForTest
	for _, child := range n.Children() {
		children = append(children, child.Structure())
	}

	return TreeNodeForTest{
		Type:     n.Type(),
		Children: children,
		Size:     n.Len(),
	}
}

// NormalizeMarks returns the given marks sorted and without duplicates.
func NormalizeMarks(marks []string) []string {
	if len(marks) == 0 {
		return nil
	}

	sorted := copyMarks(marks)
	sort.Strings(sorted)

	result := sorted[:1]
	for _, mark := range sorted[1:] {
		if mark != result[len(result)-1] {
			result = append(result, mark)
		}
	}
	return result
}

func copyMarks(marks []string) []string {
	if len(marks) == 0 {
		return nil
	}
	clone := make([]string, len(marks))
	copy(clone, marks)
	return clone
}

// EqualMarks returns whether the given sorted marks are the same.
func EqualMarks(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
