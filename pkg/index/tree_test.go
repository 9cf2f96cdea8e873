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

package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/redline/pkg/document/tree"
	"github.com/yorkie-team/redline/pkg/index"
	"github.com/yorkie-team/redline/test/helper"
)

// TestIndexTree is a test for IndexTree.
func TestIndexTree(t *testing.T) {
	t.Run("find position from the given offset", func(t *testing.T) {
		//    0   1 2 3 4 5 6    7   8 9  10 11 12 13    14
		// <r> <p> h e l l o </p> <p> w  o  r  l  d  </p>  </r>
		tr := helper.BuildIndexTree(t, &tree.JSONTreeNode{
			Type: "r",
			Children: []tree.JSONTreeNode{
				{Type: "p", Children: []tree.JSONTreeNode{{Type: "text", Value: "hello"}}},
				{Type: "p", Children: []tree.JSONTreeNode{{Type: "text", Value: "world"}}},
			},
		})

		pos, err := tr.FindTreePos(0)
		assert.NoError(t, err)
		assert.Equal(t, "r", helper.ToDiagnostic(pos.Node.Value))
		assert.Equal(t, 0, pos.Offset)
		pos, _ = tr.FindTreePos(1)
		assert.Equal(t, "text.hello", helper.ToDiagnostic(pos.Node.Value))
		assert.Equal(t, 0, pos.Offset)
		pos, _ = tr.FindTreePos(6)
		assert.Equal(t, "text.hello", helper.ToDiagnostic(pos.Node.Value))
		assert.Equal(t, 5, pos.Offset)
		pos, _ = tr.FindTreePos(6, false)
		assert.Equal(t, "p", helper.ToDiagnostic(pos.Node.Value))
		assert.Equal(t, 1, pos.Offset)
		pos, _ = tr.FindTreePos(7)
		assert.Equal(t, "r", helper.ToDiagnostic(pos.Node.Value))
		assert.Equal(t, 1, pos.Offset)
		pos, _ = tr.FindTreePos(8)
		assert.Equal(t, "text.world", helper.ToDiagnostic(pos.Node.Value))
		assert.Equal(t, 0, pos.Offset)
		pos, _ = tr.FindTreePos(13)
		assert.Equal(t, "text.world", helper.ToDiagnostic(pos.Node.Value))
		assert.Equal(t, 5, pos.Offset)
		pos, _ = tr.FindTreePos(14)
		assert.Equal(t, "r", helper.ToDiagnostic(pos.Node.Value))
		assert.Equal(t, 2, pos.Offset)

		_, err = tr.FindTreePos(15)
		assert.Error(t, err)
		_, err = tr.FindTreePos(-1)
		assert.Error(t, err)
	})

	t.Run("spans count like text test", func(t *testing.T) {
		//       0   1 2 3 4 5 6 7 8 9 10 11 12   13
		// <doc> <p> H e l l o _ w o r l  d  </p>  </doc>
		tr := helper.BuildIndexTree(t, &tree.JSONTreeNode{
			Type: "doc",
			Children: []tree.JSONTreeNode{{Type: "p", Children: []tree.JSONTreeNode{
				{Type: "text", Value: "Hello "},
				{Type: "deletion", Value: "world", Span: &tree.Span{RevisionID: "r1"}},
			}}},
		})
		assert.Equal(t, 13, tr.Root().Len())

		pos, _ := tr.FindTreePos(7)
		assert.Equal(t, "text.Hello ", helper.ToDiagnostic(pos.Node.Value))
		assert.Equal(t, 6, pos.Offset)
		pos, _ = tr.FindTreePos(8)
		assert.Equal(t, "deletion.world", helper.ToDiagnostic(pos.Node.Value))
		assert.Equal(t, 1, pos.Offset)
	})

	t.Run("index of the given position test", func(t *testing.T) {
		tr := helper.BuildIndexTree(t, &tree.JSONTreeNode{
			Type: "r",
			Children: []tree.JSONTreeNode{
				{Type: "p", Children: []tree.JSONTreeNode{{Type: "text", Value: "ab"}}},
				{Type: "p", Children: []tree.JSONTreeNode{
					{Type: "text", Value: "cd"},
					{Type: "insertion", Value: "ef", Span: &tree.Span{RevisionID: "r1"}},
				}},
			},
		})

		for _, idx := range []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10} {
			pos, err := tr.FindTreePos(idx)
			assert.NoError(t, err)
			actual, err := tr.IndexOf(pos)
			assert.NoError(t, err)
			assert.Equal(t, idx, actual)
		}
	})

	t.Run("remove and resize keep sizes test", func(t *testing.T) {
		tr := helper.BuildIndexTree(t, &tree.JSONTreeNode{
			Type: "r",
			Children: []tree.JSONTreeNode{
				{Type: "p", Children: []tree.JSONTreeNode{
					{Type: "text", Value: "ab"},
					{Type: "text", Value: "cd", Marks: []string{"bold"}},
				}},
			},
		})
		p := tr.Root().Children()[0]
		assert.Equal(t, 6, tr.Root().Len())

		second := p.Children()[1]
		assert.NoError(t, p.RemoveChild(second))
		assert.Equal(t, 2, p.Len())
		assert.Equal(t, 4, tr.Root().Len())
		assert.Nil(t, second.Parent)
		assert.ErrorIs(t, p.RemoveChild(second), index.ErrChildNotFound)

		first := p.Children()[0]
		first.Resize(5)
		assert.Equal(t, 5, p.Len())
		assert.Equal(t, 7, tr.Root().Len())

		assert.NoError(t, p.InsertAfter(second, first))
		assert.Equal(t, 9, tr.Root().Len())
		assert.Equal(t, second, first.NextSibling())
		assert.Equal(t, first, second.PrevSibling())
		assert.Nil(t, second.NextSibling())
	})

	t.Run("text node cannot have children test", func(t *testing.T) {
		tr := helper.BuildIndexTree(t, &tree.JSONTreeNode{
			Type:     "r",
			Children: []tree.JSONTreeNode{{Type: "p", Children: []tree.JSONTreeNode{{Type: "text", Value: "ab"}}}},
		})
		text := tr.Root().Children()[0].Children()[0]

		assert.ErrorIs(t, text.Append(text), index.ErrInvalidMethodCallForTextNode)
		_, err := text.Child(0)
		assert.ErrorIs(t, err, index.ErrInvalidMethodCallForTextNode)
	})

	t.Run("traverse in postorder test", func(t *testing.T) {
		tr := helper.BuildIndexTree(t, &tree.JSONTreeNode{
			Type: "root",
			Children: []tree.JSONTreeNode{
				{Type: "p", Children: []tree.JSONTreeNode{{Type: "text", Value: "ab"}}},
				{Type: "p", Children: []tree.JSONTreeNode{{Type: "text", Value: "cd"}}},
			},
		})

		var nodes []string
		index.Traverse(tr, func(node *index.Node[*tree.TreeNode], depth int) {
			nodes = append(nodes, helper.ToDiagnostic(node.Value))
		})
		assert.Equal(t, []string{"text.ab", "p", "text.cd", "p", "root"}, nodes)
		assert.Equal(t, "<root><p>ab</p><p>cd</p></root>", index.ToXML(tr.Root()))
	})
}
