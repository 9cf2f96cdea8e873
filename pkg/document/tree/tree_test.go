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

package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/redline/pkg/document/tree"
	"github.com/yorkie-team/redline/pkg/revision"
	"github.com/yorkie-team/redline/test/helper"
)

func span(id revision.ID, author revision.Author) *tree.Span {
	return &tree.Span{RevisionID: id, Author: author, Timestamp: helper.Epoch}
}

func TestTree(t *testing.T) {
	t.Run("new tree holds an empty paragraph test", func(t *testing.T) {
		tr := tree.NewTree()
		assert.Equal(t, "<doc><p></p></doc>", tr.ToXML())
		assert.Equal(t, 2, tr.Len())

		blocks := tr.Blocks()
		assert.Len(t, blocks, 1)
		assert.Equal(t, 1, blocks[0].Start)
		assert.Equal(t, 1, blocks[0].End)
	})

	t.Run("build validates structure test", func(t *testing.T) {
		_, err := tree.NewTreeFromJSON(&tree.JSONTreeNode{Type: "text", Value: "a"})
		assert.ErrorIs(t, err, tree.ErrInvalidStructure)

		_, err = tree.NewTreeFromJSON(&tree.JSONTreeNode{Type: "doc", Children: []tree.JSONTreeNode{
			{Type: "text", Value: "a"},
		}})
		assert.ErrorIs(t, err, tree.ErrInvalidStructure)

		_, err = tree.NewTreeFromJSON(&tree.JSONTreeNode{Type: "doc", Children: []tree.JSONTreeNode{
			{Type: "p", Children: []tree.JSONTreeNode{{Type: "insertion", Value: "a"}}},
		}})
		assert.ErrorIs(t, err, tree.ErrInvalidStructure)

		_, err = tree.NewTreeFromJSON(&tree.JSONTreeNode{Type: "doc", Children: []tree.JSONTreeNode{
			{Type: "blockquote", Children: []tree.JSONTreeNode{
				{Type: "p"},
				{Type: "text", Value: "a"},
			}},
		}})
		assert.ErrorIs(t, err, tree.ErrInvalidStructure)
	})

	t.Run("blocks and leaves with positions test", func(t *testing.T) {
		//       0   1 2 3    4             5   6 7 8 9 10
		// <doc> <p> a b </p> <blockquote> <p> c d e f </p> </blockquote> </doc>
		tr := helper.BuildTree(t, &tree.JSONTreeNode{
			Type: "doc",
			Children: []tree.JSONTreeNode{
				{Type: "p", Children: []tree.JSONTreeNode{{Type: "text", Value: "ab"}}},
				{Type: "blockquote", Children: []tree.JSONTreeNode{
					{Type: "p", Children: []tree.JSONTreeNode{
						{Type: "text", Value: "cd"},
						{Type: "deletion", Value: "ef", Span: span("r1", helper.Bob)},
					}},
				}},
			},
		})

		blocks := tr.Blocks()
		assert.Len(t, blocks, 2)
		assert.Equal(t, tree.Block{Node: blocks[0].Node, Start: 1, End: 3}, blocks[0])
		assert.Equal(t, tree.Block{Node: blocks[1].Node, Start: 6, End: 10}, blocks[1])

		leaves := tr.LeavesOf(blocks[1])
		assert.Equal(t, 6, leaves[0].Start)
		assert.Equal(t, 8, leaves[1].Start)
		assert.Equal(t, 10, leaves[1].End())

		_, err := tr.BlockAt(4)
		assert.ErrorIs(t, err, tree.ErrInvalidPosition)
		_, err = tr.BlockAt(99)
		assert.ErrorIs(t, err, tree.ErrInvalidPosition)
		block, err := tr.BlockAt(10)
		assert.NoError(t, err)
		assert.Equal(t, blocks[1].Node, block.Node)

		assert.Equal(t, "abcd", tr.Text(false))
		assert.Equal(t, "abcdef", tr.Text(true))
		assert.Equal(t,
			`<doc><p>ab</p><blockquote><p>cd<deletion author="bob">ef</deletion></p></blockquote></doc>`,
			tr.ToXML(),
		)
	})

	t.Run("split and insert leaves test", func(t *testing.T) {
		tr := helper.BuildTree(t, helper.Paragraphs("Hello"))

		leaf := tr.NewLeaf(tree.InsertionType, "XY", []string{"italic", "bold", "bold"}, span("r1", helper.Alice))
		assert.Equal(t, []string{"bold", "italic"}, leaf.Marks)
		assert.NoError(t, tr.InsertLeaf(3, leaf))
		assert.Equal(t, `<doc><p>He<insertion author="alice" marks="bold,italic">XY</insertion>llo</p></doc>`, tr.ToXML())
		assert.Equal(t, 9, tr.Len())

		assert.Len(t, tr.Fragments("r1"), 1)
		assert.Equal(t, "XY", tr.RevisionText("r1"))

		right, err := tr.SplitLeaf(leaf, 1)
		assert.NoError(t, err)
		assert.Equal(t, "Y", right.Value)
		assert.Equal(t, "r1", right.RevisionID().String())
		assert.Equal(t, []*tree.TreeNode{leaf, right}, tr.Fragments("r1"))
		assert.Equal(t, "XY", tr.RevisionText("r1"))

		assert.NoError(t, tr.Normalize())
		assert.Len(t, tr.Fragments("r1"), 1)
		_, ok := tr.FindNode(right.ID)
		assert.False(t, ok)
	})

	t.Run("split keeps surrogate pairs test", func(t *testing.T) {
		tr := helper.BuildTree(t, helper.Paragraphs("a😀b"))
		assert.Equal(t, 6, tr.Len())

		assert.NoError(t, tr.SplitAt(4))
		leaves := tr.Leaves()
		assert.Len(t, leaves, 2)
		assert.Equal(t, "a😀", leaves[0].Node.Value)
		assert.Equal(t, "b", leaves[1].Node.Value)
	})

	t.Run("remove range across leaf kinds test", func(t *testing.T) {
		tr := helper.BuildTree(t, &tree.JSONTreeNode{Type: "doc", Children: []tree.JSONTreeNode{
			{Type: "p", Children: []tree.JSONTreeNode{
				{Type: "text", Value: "ab"},
				{Type: "insertion", Value: "cd", Span: span("r1", helper.Alice)},
				{Type: "text", Value: "ef"},
			}},
		}})

		removed, err := tr.RemoveRange(2, 4)
		assert.NoError(t, err)
		assert.Len(t, removed, 2)
		assert.NoError(t, tr.Normalize())
		assert.Equal(t, `<doc><p>a<insertion author="alice">d</insertion>ef</p></doc>`, tr.ToXML())
		assert.True(t, tr.HasFragments("r1"))

		_, err = tr.RemoveRange(2, 3)
		assert.NoError(t, err)
		assert.False(t, tr.HasFragments("r1"))
		assert.NoError(t, tr.Normalize())
		assert.Equal(t, "<doc><p>aef</p></doc>", tr.ToXML())
		assert.Len(t, tr.Leaves(), 1)
	})

	t.Run("convert and collect spans test", func(t *testing.T) {
		tr := helper.BuildTree(t, &tree.JSONTreeNode{Type: "doc", Children: []tree.JSONTreeNode{
			{Type: "p", Children: []tree.JSONTreeNode{
				{Type: "insertion", Value: "a", Span: span("r1", helper.Alice)},
				{Type: "deletion", Value: "b", Span: span("r2", helper.Bob)},
			}},
			{Type: "p", Children: []tree.JSONTreeNode{
				{Type: "insertion", Value: "c", Span: span("r1", helper.Alice)},
			}},
		}})

		groups := tr.Spans()
		assert.Len(t, groups, 2)
		assert.Equal(t, revision.ID("r1"), groups[0].RevisionID)
		assert.Equal(t, revision.Insertion, groups[0].Kind)
		assert.Len(t, groups[0].Fragments, 2)
		assert.Equal(t, helper.Epoch, groups[0].CreatedAt())
		assert.True(t, tree.SpanGroup{}.CreatedAt().IsZero())
		assert.Equal(t, revision.Deletion, groups[1].Kind)
		assert.Equal(t, "ac", tr.RevisionText("r1"))

		for _, node := range groups[0].Fragments {
			tr.Convert(node, tree.TextType, nil)
		}
		assert.False(t, tr.HasFragments("r1"))
		assert.Equal(t, `<doc><p>a<deletion author="bob">b</deletion></p><p>c</p></doc>`, tr.ToXML())
	})

	t.Run("anchors follow nodes test", func(t *testing.T) {
		tr := helper.BuildTree(t, helper.Paragraphs("ab", ""))

		anchor, err := tr.AnchorOf(2)
		assert.NoError(t, err)
		pos, err := tr.PosOf(anchor)
		assert.NoError(t, err)
		assert.Equal(t, 2, pos)

		empty, err := tr.AnchorOf(5)
		assert.NoError(t, err)
		pos, err = tr.PosOf(empty)
		assert.NoError(t, err)
		assert.Equal(t, 5, pos)

		_, err = tr.PosOf(tree.Anchor{NodeID: 999})
		assert.ErrorIs(t, err, tree.ErrInvalidAnchor)
		_, err = tr.PosOf(tree.Anchor{NodeID: anchor.NodeID, Offset: 3})
		assert.ErrorIs(t, err, tree.ErrInvalidAnchor)
	})

	t.Run("join and remove blocks test", func(t *testing.T) {
		tr := helper.BuildTree(t, helper.Paragraphs("ab", "cd", "ef"))
		blocks := tr.Blocks()

		assert.NoError(t, tr.JoinBlocks(blocks[0].Node, blocks[1].Node))
		assert.NoError(t, tr.Normalize())
		assert.Equal(t, "<doc><p>abcd</p><p>ef</p></doc>", tr.ToXML())

		assert.NoError(t, tr.RemoveBlock(blocks[2].Node))
		assert.Equal(t, "<doc><p>abcd</p></doc>", tr.ToXML())
		assert.ErrorIs(t, tr.RemoveBlock(blocks[0].Node), tree.ErrInvalidStructure)
		assert.Equal(t, 6, tr.Len())
	})

	t.Run("structure test", func(t *testing.T) {
		tr := helper.BuildTree(t, &tree.JSONTreeNode{Type: "doc", Children: []tree.JSONTreeNode{
			{Type: "p", Attributes: map[string]string{"align": "center"}, Children: []tree.JSONTreeNode{
				{Type: "insertion", Value: "hi", Span: span("r1", helper.Alice), Marks: []string{"bold"}},
			}},
		}})

		assert.Equal(t, tree.TreeNodeForTest{
			Type: "doc",
			Size: 4,
			Children: []tree.TreeNodeForTest{{
				Type: "p",
				Size: 2,
				Children: []tree.TreeNodeForTest{{
					Type:     "insertion",
					Value:    "hi",
					Size:     2,
					Marks:    []string{"bold"},
					AuthorID: "alice",
				}},
			}},
		}, tr.Structure())
		assert.Equal(t, `<doc><p align="center"><insertion author="alice" marks="bold">hi</insertion></p></doc>`, tr.ToXML())
	})
}
