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

package ledger

import (
	"fmt"

	"github.com/hashicorp/go-memdb"

	"github.com/yorkie-team/redline/pkg/revision"
)

var (
	tblRevisions = "revisions"
)

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblRevisions: {
			Name: tblRevisions,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"seq": {
					Name:    "seq",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "SeqKey"},
				},
				"kind": {
					Name:    "kind",
					Indexer: &memdb.StringFieldIndex{Field: "Kind"},
				},
				"status": {
					Name:    "status",
					Indexer: &memdb.StringFieldIndex{Field: "Status"},
				},
				"author_id": {
					Name:    "author_id",
					Indexer: &memdb.StringFieldIndex{Field: "AuthorID"},
				},
				"status_author_id": {
					Name: "status_author_id",
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "Status"},
							&memdb.StringFieldIndex{Field: "AuthorID"},
						},
					},
				},
				"node_ref": {
					Name:         "node_ref",
					AllowMissing: true,
					Indexer:      &memdb.StringFieldIndex{Field: "NodeRef"},
				},
			},
		},
	},
}

// entry is the row stored in the revisions table. Indexed fields are
// flattened out of the record so that go-memdb can read them.
type entry struct {
	ID       string
	SeqKey   string
	Kind     string
	Status   string
	AuthorID string
	NodeRef  string

	Seq    uint64
	Record *revision.Record
}

// newEntry creates a new row for the given record.
func newEntry(record *revision.Record, seq uint64) *entry {
	return &entry{
		ID:       record.ID.String(),
		SeqKey:   seqKey(seq),
		Kind:     string(record.Kind),
		Status:   string(record.Status),
		AuthorID: record.Author.ID,
		NodeRef:  record.NodeRef,
		Seq:      seq,
		Record:   record,
	}
}

// with returns a new row holding the given record. Stored rows are never
// modified in place.
func (e *entry) with(record *revision.Record) *entry {
	return newEntry(record, e.Seq)
}

// seqKey encodes the sequence so that the lexical order of keys is the
// insertion order.
func seqKey(seq uint64) string {
	return fmt.Sprintf("%020d", seq)
}
