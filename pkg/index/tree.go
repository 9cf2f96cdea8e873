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

// Package index implements the ordered tree that maps integer positions of a
// structured document to its nodes.
package index

import (
	"errors"
	"fmt"
	"strings"
)

// Positions of a Tree count the content of its leaves and the tags of its
// elements. An element adds one position for its opening tag and one for its
// closing tag, and a leaf adds one position per UTF-16 code unit of its text,
// whatever its kind. Positions are therefore stable while a span is pending:
//
//	      0   1 2 3 4 5 6 7 8 9 10 11 12   13
//	<doc> <p> H e l l o _ w o r l  d  </p>  </doc>
//	             text   |  deletion |
//
// The size of an element is the sum of the padded sizes of its children, and
// a TreePos, a node with an offset into it, converts to a position and back.

var (
	// ErrInvalidMethodCallForTextNode is returned by child operations of leaves.
	ErrInvalidMethodCallForTextNode = errors.New("text node cannot have children")

	// ErrChildNotFound is returned when a node is not a child of the receiver.
	ErrChildNotFound = errors.New("child not found")

	// ErrInvalidTreePos is returned for positions outside of the tree.
	ErrInvalidTreePos = errors.New("invalid tree pos")
)

// tagsPerElement is the number of positions taken by the tags of an element.
const tagsPerElement = 2

// walk visits the subtree of node children first. The children are copied
// so that visit may detach the node it is given.
func walk[V Value](node *Node[V], depth int, visit func(node *Node[V], depth int)) {
	if node == nil {
		return
	}

	for _, child := range append([]*Node[V](nil), node.children...) {
		walk(child, depth+1, visit)
	}
	visit(node, depth)
}

// Traverse calls visit for every node of the tree, children before parents.
func Traverse[V Value](tree *Tree[V], visit func(node *Node[V], depth int)) {
	walk(tree.root, 0, visit)
}

// ToXML renders the subtree of the given node. Leaves render themselves.
func ToXML[V Value](node *Node[V]) string {
	var sb strings.Builder
	writeXML(&sb, node)
	return sb.String()
}

func writeXML[V Value](sb *strings.Builder, node *Node[V]) {
	if node.IsText() {
		sb.WriteString(node.Value.String())
		return
	}

	sb.WriteString("<" + node.Type + node.Value.Attributes() + ">")
	for _, child := range node.children {
		writeXML(sb, child)
	}
	sb.WriteString("</" + node.Type + ">")
}

// Value is the payload of a Node. Leaves report their own length, elements
// report their attributes for rendering.
type Value interface {
	IsText() bool
	Length() int
	String() string
	Attributes() string
}

// Node is an element or a leaf of a Tree. Length of an element is the padded
// size of its children.
type Node[V Value] struct {
	Type string

	Parent   *Node[V]
	children []*Node[V]

	Value  V
	Length int
}

// NewNode returns a detached node holding the given value.
func NewNode[V Value](nodeType string, value V) *Node[V] {
	return &Node[V]{Type: nodeType, Value: value, Length: value.Length()}
}

// Len returns the size of the node without its tags.
func (n *Node[V]) Len() int { return n.Length }

// IsText reports whether the node is a leaf.
func (n *Node[V]) IsText() bool { return n.Value.IsText() }

// Children returns the children of the node. The slice must not be modified.
func (n *Node[V]) Children() []*Node[V] { return n.children }

// Append adds the given nodes after the last child.
func (n *Node[V]) Append(nodes ...*Node[V]) error {
	for _, node := range nodes {
		if err := n.InsertAt(node, len(n.children)); err != nil {
			return err
		}
	}

	return nil
}

// Child returns the child at the given offset.
func (n *Node[V]) Child(index int) (*Node[V], error) {
	if n.IsText() {
		return nil, ErrInvalidMethodCallForTextNode
	}
	if index < 0 || index >= len(n.children) {
		return nil, fmt.Errorf("child %d of %d: %w", index, len(n.children), ErrChildNotFound)
	}

	return n.children[index], nil
}

// grow adds delta to the size of every ancestor of the node.
func (n *Node[V]) grow(delta int) {
	for p := n.Parent; p != nil; p = p.Parent {
		p.Length += delta
	}
}

// Resize changes the length of this node and keeps the size of ancestors
// consistent. It is used when the value of a text node is edited in place.
func (n *Node[V]) Resize(length int) {
	delta := length - n.Length
	n.Length = length
	n.grow(delta)
}

// PaddedLength returns the size of the node including its tags.
func (n *Node[V]) PaddedLength() int {
	if n.IsText() {
		return n.Length
	}
	return n.Length + tagsPerElement
}

// InsertAt inserts the given node as the child at offset, clamped to the
// children of n.
func (n *Node[V]) InsertAt(newNode *Node[V], offset int) error {
	if n.IsText() {
		return ErrInvalidMethodCallForTextNode
	}

	if offset < 0 {
		offset = 0
	}
	if offset > len(n.children) {
		offset = len(n.children)
	}

	n.children = append(n.children, nil)
	copy(n.children[offset+1:], n.children[offset:])
	n.children[offset] = newNode
	newNode.Parent = n
	newNode.grow(newNode.PaddedLength())

	return nil
}

// InsertAfter inserts newNode right after the child referenceNode.
func (n *Node[V]) InsertAfter(newNode, referenceNode *Node[V]) error {
	offset := n.OffsetOfChild(referenceNode)
	if offset == -1 {
		return ErrChildNotFound
	}

	return n.InsertAt(newNode, offset+1)
}

// RemoveChild removes the given child and shrinks the size of ancestors.
func (n *Node[V]) RemoveChild(child *Node[V]) error {
	if n.IsText() {
		return ErrInvalidMethodCallForTextNode
	}

	offset := n.OffsetOfChild(child)
	if offset == -1 {
		return ErrChildNotFound
	}

	child.grow(-child.PaddedLength())
	copy(n.children[offset:], n.children[offset+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
	child.Parent = nil

	return nil
}

// OffsetOfChild returns the offset of the given child, or -1.
func (n *Node[V]) OffsetOfChild(node *Node[V]) int {
	for i := range n.children {
		if n.children[i] == node {
			return i
		}
	}

	return -1
}

// PrevSibling returns the previous sibling of the node or nil.
func (n *Node[V]) PrevSibling() *Node[V] {
	if n.Parent == nil {
		return nil
	}

	offset := n.Parent.OffsetOfChild(n)
	if offset <= 0 {
		return nil
	}
	return n.Parent.children[offset-1]
}

// NextSibling returns the next sibling of the node or nil.
func (n *Node[V]) NextSibling() *Node[V] {
	if n.Parent == nil {
		return nil
	}

	offset := n.Parent.OffsetOfChild(n)
	if offset == -1 || offset+1 >= len(n.Parent.children) {
		return nil
	}
	return n.Parent.children[offset+1]
}

// IsAncestorOf reports whether n is a strict ancestor of node.
func (n *Node[V]) IsAncestorOf(node *Node[V]) bool {
	for p := node.Parent; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}

	return false
}

// TreePos addresses a point of the tree: a UTF-16 offset into a leaf, or a
// child offset of an element.
type TreePos[V Value] struct {
	Node   *Node[V]
	Offset int
}

// Tree converts between positions and TreePos over the subtree of a root.
type Tree[V Value] struct {
	root *Node[V]
}

// NewTree returns a Tree rooted at the given node.
func NewTree[V Value](root *Node[V]) *Tree[V] {
	return &Tree[V]{root: root}
}

// Root returns the root of the tree.
func (t *Tree[V]) Root() *Node[V] { return t.root }

// FindTreePos returns the TreePos of the given position. Unless false is
// given, a position touching a leaf resolves into the leaf, and the left leaf
// wins at a boundary between two leaves.
func (t *Tree[V]) FindTreePos(index int, preferText ...bool) (*TreePos[V], error) {
	prefer := len(preferText) == 0 || preferText[0]

	if index < 0 {
		return nil, fmt.Errorf("index %d: %w", index, ErrInvalidTreePos)
	}

	return t.findTreePos(t.root, index, prefer)
}

func (t *Tree[V]) findTreePos(node *Node[V], index int, preferText bool) (*TreePos[V], error) {
	if index > node.Length {
		return nil, fmt.Errorf("index %d beyond %s of %d: %w", index, node.Type, node.Length, ErrInvalidTreePos)
	}
	if node.IsText() {
		return &TreePos[V]{Node: node, Offset: index}, nil
	}

	// rest is the distance between the index and the start of the child.
	rest := index
	for i, child := range node.children {
		switch {
		case preferText && child.IsText() && rest <= child.Length:
			return t.findTreePos(child, rest, preferText)
		case rest == 0:
			return &TreePos[V]{Node: node, Offset: i}, nil
		case !preferText && rest == child.PaddedLength():
			return &TreePos[V]{Node: node, Offset: i + 1}, nil
		case rest < child.PaddedLength():
			if child.IsText() {
				return t.findTreePos(child, rest, preferText)
			}
			// skip the opening tag
			return t.findTreePos(child, rest-1, preferText)
		}
		rest -= child.PaddedLength()
	}

	return &TreePos[V]{Node: node, Offset: len(node.children)}, nil
}

// leftSiblingsSize returns the size of left siblings of the given offset.
func leftSiblingsSize[V Value](parent *Node[V], offset int) int {
	size := 0
	children := parent.Children()
	for i := 0; i < offset && i < len(children); i++ {
		size += children[i].PaddedLength()
	}

	return size
}

// IndexOf returns the position of the given TreePos. Every element on the
// way up to the root, except the root itself, adds its opening tag.
func (t *Tree[V]) IndexOf(pos *TreePos[V]) (int, error) {
	node, offset := pos.Node, pos.Offset
	if node != t.root && !t.root.IsAncestorOf(node) {
		return 0, ErrInvalidTreePos
	}

	limit := len(node.children)
	if node.IsText() {
		limit = node.Length
	}
	if offset < 0 || offset > limit {
		return 0, fmt.Errorf("offset %d of %s %d: %w", offset, node.Type, limit, ErrInvalidTreePos)
	}

	index := offset
	if !node.IsText() {
		index = leftSiblingsSize(node, offset)
	}

	for ; node.Parent != nil; node = node.Parent {
		i := node.Parent.OffsetOfChild(node)
		if i == -1 {
			return 0, ErrChildNotFound
		}

		index += leftSiblingsSize(node.Parent, i)
		if !node.IsText() {
			index++
		}
	}

	return index, nil
}
