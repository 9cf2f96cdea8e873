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

// Package helper provides helper functions for testing.
package helper

import (
	"sync"
	"testing"
	gotime "time"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/redline/internal/logging"
	"github.com/yorkie-team/redline/pkg/document"
	"github.com/yorkie-team/redline/pkg/document/tree"
	"github.com/yorkie-team/redline/pkg/index"
	"github.com/yorkie-team/redline/pkg/revision"
)

var (
	// Alice is an author used by tests.
	Alice = revision.Author{ID: "alice", Name: "Alice", Color: "#e91e63"}

	// Bob is an author used by tests.
	Bob = revision.Author{ID: "bob", Name: "Bob", Email: "bob@example.com"}
)

// Epoch is the first instant returned by clocks of tests.
var Epoch = gotime.Date(2026, 1, 2, 3, 4, 5, 0, gotime.UTC)

// Clock is a clock that advances one second each time it is read.
type Clock struct {
	mu  sync.Mutex
	now gotime.Time
}

// NewClock creates a new Clock starting at Epoch.
func NewClock() *Clock {
	return &Clock{now: Epoch}
}

// Now returns the current time and advances the clock.
func (c *Clock) Now() gotime.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now
	c.now = c.now.Add(gotime.Second)
	return now
}

// ToDiagnostic is a helper function that converts the given node to a
// diagnostic string.
func ToDiagnostic(node *tree.TreeNode) string {
	if node.IsText() {
		return node.Type() + "." + node.Value
	}

	return node.Type()
}

// BuildTree builds a tree from the given node.
func BuildTree(t testing.TB, node *tree.JSONTreeNode) *tree.Tree {
	tr, err := tree.NewTreeFromJSON(node)
	assert.NoError(t, err)
	return tr
}

// BuildIndexTree builds an index tree from the given node.
func BuildIndexTree(t testing.TB, node *tree.JSONTreeNode) *index.Tree[*tree.TreeNode] {
	return BuildTree(t, node).IndexTree
}

// Paragraphs returns a root holding one paragraph per given text.
func Paragraphs(texts ...string) *tree.JSONTreeNode {
	root := &tree.JSONTreeNode{Type: tree.DefaultRootType}
	for _, text := range texts {
		block := tree.JSONTreeNode{Type: tree.DefaultBlockType}
		if text != "" {
			block.Children = []tree.JSONTreeNode{{Type: tree.TextType, Value: text}}
		}
		root.Children = append(root.Children, block)
	}
	return root
}

// NewDocument creates a document with a deterministic clock, a discarding
// logger and the given content, one paragraph per text.
func NewDocument(t testing.TB, texts ...string) *document.Document {
	conf := document.NewConfig()
	conf.Author = Alice

	doc, err := document.New(
		conf,
		document.WithClock(NewClock().Now),
		document.WithLogger(logging.Nop()),
	)
	assert.NoError(t, err)

	if len(texts) > 0 {
		assert.NoError(t, doc.LoadTree(Paragraphs(texts...)))
	}
	return doc
}
