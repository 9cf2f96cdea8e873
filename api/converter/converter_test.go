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

package converter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/redline/api/converter"
	"github.com/yorkie-team/redline/pkg/document/tree"
	"github.com/yorkie-team/redline/test/helper"
)

func TestConverter(t *testing.T) {
	build := func(t *testing.T) *tree.Tree {
		return helper.BuildTree(t, &tree.JSONTreeNode{Type: "doc", Children: []tree.JSONTreeNode{
			{Type: "h1", Attributes: map[string]string{"id": "title"}, Children: []tree.JSONTreeNode{
				{Type: "text", Value: "Title", Marks: []string{"bold"}},
			}},
			{Type: "p", Children: []tree.JSONTreeNode{
				{Type: "text", Value: "Hello "},
				{Type: "insertion", Value: "big ", Span: &tree.Span{
					RevisionID: "r1", Author: helper.Alice, Timestamp: helper.Epoch,
				}},
				{Type: "deletion", Value: "world", Marks: []string{"italic"}, Span: &tree.Span{
					RevisionID: "r2", Author: helper.Bob, Timestamp: helper.Epoch,
				}},
			}},
		}})
	}

	t.Run("tree to bytes and back test", func(t *testing.T) {
		tr := build(t)

		bytes, err := converter.TreeToBytes(tr)
		require.NoError(t, err)

		clone, err := converter.BytesToTree(bytes)
		require.NoError(t, err)
		assert.Equal(t, tr.ToXML(), clone.ToXML())
		assert.Equal(t, tr.Structure(), clone.Structure())

		fragments := clone.Fragments("r2")
		require.Len(t, fragments, 1)
		assert.Equal(t, helper.Bob, fragments[0].Span.Author)
		assert.True(t, helper.Epoch.Equal(fragments[0].Span.Timestamp))
		assert.Equal(t, "title", clone.Root().Children()[0].Attrs["id"])
	})

	t.Run("record carries span fields test", func(t *testing.T) {
		record := converter.ToRecord(build(t))
		assert.Equal(t, "doc", record.Type)
		require.Len(t, record.Children, 2)

		span := record.Children[1].Children[1]
		assert.Equal(t, "insertion", span.Type)
		assert.Equal(t, "big ", span.Text)
		assert.Equal(t, "r1", span.RevisionID)
		assert.Equal(t, "alice", span.Author.ID)
		assert.True(t, helper.Epoch.Equal(*span.Timestamp))

		plain := record.Children[1].Children[0]
		assert.Nil(t, plain.Author)
		assert.Nil(t, plain.Timestamp)
	})

	t.Run("json round trip test", func(t *testing.T) {
		tr := build(t)

		bytes, err := converter.ToJSON(converter.ToRecord(tr))
		require.NoError(t, err)
		assert.Contains(t, string(bytes), `"revision_id":"r2"`)

		record, err := converter.FromJSON(bytes)
		require.NoError(t, err)
		node, err := converter.FromRecord(record)
		require.NoError(t, err)
		assert.Equal(t, tr.ToXML(), helper.BuildTree(t, node).ToXML())
	})

	t.Run("invalid records test", func(t *testing.T) {
		_, err := converter.FromBytes([]byte("not bson"))
		assert.ErrorIs(t, err, converter.ErrInvalidRecord)

		_, err = converter.FromJSON([]byte("{"))
		assert.ErrorIs(t, err, converter.ErrInvalidRecord)

		_, err = converter.FromRecord(nil)
		assert.ErrorIs(t, err, converter.ErrInvalidRecord)

		_, err = converter.FromRecord(&converter.Record{Type: "doc", Children: []*converter.Record{
			{Type: "p", Children: []*converter.Record{{Type: "deletion", Text: "x", Author: &helper.Alice}}},
		}})
		assert.ErrorIs(t, err, converter.ErrInvalidRecord)

		_, err = converter.FromRecord(&converter.Record{Type: "doc", Children: []*converter.Record{
			{Type: "p", Children: []*converter.Record{{Type: "insertion", Text: "x", RevisionID: "r1"}}},
		}})
		assert.ErrorIs(t, err, converter.ErrInvalidRecord)
	})
}
