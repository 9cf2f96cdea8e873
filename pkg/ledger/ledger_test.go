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

package ledger_test

import (
	"testing"
	gotime "time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/redline/pkg/errors"
	"github.com/yorkie-team/redline/pkg/ledger"
	"github.com/yorkie-team/redline/pkg/revision"
)

var (
	alice = revision.Author{ID: "alice", Name: "Alice"}
	bob   = revision.Author{ID: "bob", Name: "Bob"}
)

// steppingClock returns a clock that advances one second per call, starting
// from the given time.
func steppingClock(start gotime.Time) func() gotime.Time {
	now := start
	return func() gotime.Time {
		current := now
		now = now.Add(gotime.Second)
		return current
	}
}

func TestLedger(t *testing.T) {
	t.Run("add and get test", func(t *testing.T) {
		l, err := ledger.New()
		require.NoError(t, err)

		id, err := l.Add(revision.Insertion, "Hello", alice, "3")
		assert.NoError(t, err)

		record, ok := l.Get(id)
		assert.True(t, ok)
		assert.Equal(t, revision.Pending, record.Status)
		assert.Equal(t, "Hello", record.Content)
		assert.Equal(t, alice, record.Author)

		record.Content = "changed"
		stored, _ := l.Get(id)
		assert.Equal(t, "Hello", stored.Content)

		_, ok = l.Get(revision.NewID())
		assert.False(t, ok)
	})

	t.Run("creation time keeps milliseconds test", func(t *testing.T) {
		now := gotime.Date(2026, 1, 2, 3, 4, 5, 123456789, gotime.UTC)
		l, err := ledger.New(ledger.WithClock(func() gotime.Time { return now }))
		require.NoError(t, err)

		id, err := l.Add(revision.Insertion, "a", alice, "")
		require.NoError(t, err)
		record, _ := l.Get(id)
		assert.True(t, gotime.Date(2026, 1, 2, 3, 4, 5, 123000000, gotime.UTC).Equal(record.CreatedAt))
	})

	t.Run("identifiers are unique test", func(t *testing.T) {
		l, err := ledger.New()
		require.NoError(t, err)

		seen := make(map[revision.ID]bool)
		for i := 0; i < 200; i++ {
			id, err := l.Add(revision.Deletion, "x", bob, "")
			assert.NoError(t, err)
			assert.False(t, seen[id])
			seen[id] = true
		}
		assert.Equal(t, 200, l.Len())
	})

	t.Run("add validates input test", func(t *testing.T) {
		l, err := ledger.New()
		require.NoError(t, err)

		_, err = l.Add("move", "x", alice, "")
		assert.ErrorIs(t, err, revision.ErrInvalidKind)

		_, err = l.Add(revision.Insertion, "x", revision.Author{Name: "anonymous"}, "")
		assert.True(t, errors.IsStatus(err, errors.ErrCodeInvalidArgument))
		assert.Equal(t, 0, l.Len())
	})

	t.Run("set status is idempotent test", func(t *testing.T) {
		l, err := ledger.New()
		require.NoError(t, err)

		id, err := l.Add(revision.Insertion, "Hello", alice, "3")
		require.NoError(t, err)

		changed, err := l.SetStatus(id, revision.Accepted)
		assert.NoError(t, err)
		assert.True(t, changed)

		changed, err = l.SetStatus(id, revision.Rejected)
		assert.NoError(t, err)
		assert.False(t, changed)

		record, _ := l.Get(id)
		assert.Equal(t, revision.Accepted, record.Status)
		assert.Equal(t, "", record.NodeRef)

		_, err = l.SetStatus(id, revision.Pending)
		assert.ErrorIs(t, err, ledger.ErrInvalidStatus)

		_, err = l.SetStatus(revision.NewID(), revision.Accepted)
		assert.ErrorIs(t, err, ledger.ErrRecordNotFound)
	})

	t.Run("update pending records only test", func(t *testing.T) {
		l, err := ledger.New()
		require.NoError(t, err)

		id, err := l.Add(revision.Insertion, "fo", alice, "3")
		require.NoError(t, err)

		changed, err := l.UpdateContent(id, "foo")
		assert.NoError(t, err)
		assert.True(t, changed)

		changed, err = l.SetNodeRef(id, "7")
		assert.NoError(t, err)
		assert.True(t, changed)

		record, ok := l.FindByNodeRef("7")
		assert.True(t, ok)
		assert.Equal(t, "foo", record.Content)
		_, ok = l.FindByNodeRef("3")
		assert.False(t, ok)

		_, err = l.SetStatus(id, revision.Rejected)
		require.NoError(t, err)
		changed, err = l.UpdateContent(id, "bar")
		assert.NoError(t, err)
		assert.False(t, changed)

		_, ok = l.FindByNodeRef("7")
		assert.False(t, ok)
	})

	t.Run("queries by kind, status and author test", func(t *testing.T) {
		l, err := ledger.New()
		require.NoError(t, err)

		a1, _ := l.Add(revision.Insertion, "Hello", alice, "")
		b1, _ := l.Add(revision.Deletion, "world", bob, "")
		a2, _ := l.Add(revision.Deletion, "!", alice, "")
		_, err = l.SetStatus(a2, revision.Accepted)
		require.NoError(t, err)

		assert.Equal(t, []revision.ID{a1, b1}, ids(l.ListPending()))
		assert.Equal(t, []revision.ID{b1, a2}, ids(l.ListByKind(revision.Deletion)))
		assert.Equal(t, []revision.ID{a1, a2}, ids(l.ListByAuthor("alice")))
		assert.Equal(t, []revision.ID{a1}, ids(l.ListPendingByAuthor("alice")))
		assert.Equal(t, []revision.ID{a1, b1, a2}, ids(l.All()))

		assert.Equal(t, map[revision.Kind]int{revision.Insertion: 1, revision.Deletion: 1}, l.CountByKind())
		assert.Equal(t, map[revision.Status]int{revision.Pending: 2, revision.Accepted: 1}, l.CountByStatus())
		assert.Equal(t, []revision.Author{alice, bob}, l.Authors())
	})

	t.Run("list sorts newest first with stable ties test", func(t *testing.T) {
		start := gotime.Date(2026, 1, 1, 0, 0, 0, 0, gotime.UTC)
		clock := steppingClock(start)
		sameTime := func() gotime.Time { return start }

		l, err := ledger.New(ledger.WithClock(clock))
		require.NoError(t, err)
		first, _ := l.Add(revision.Insertion, "a", alice, "")
		second, _ := l.Add(revision.Insertion, "b", bob, "")
		third, _ := l.Add(revision.Deletion, "c", alice, "")
		assert.Equal(t, []revision.ID{third, second, first}, ids(l.List(ledger.Filter{})))
		assert.Equal(t, []revision.ID{third, first}, ids(l.List(ledger.Filter{AuthorID: "alice"})))
		assert.Equal(t, []revision.ID{third}, ids(l.List(ledger.Filter{
			Kind:     revision.Deletion,
			Status:   revision.Pending,
			AuthorID: "alice",
		})))

		tied, err := ledger.New(ledger.WithClock(sameTime))
		require.NoError(t, err)
		x, _ := tied.Add(revision.Insertion, "x", alice, "")
		y, _ := tied.Add(revision.Insertion, "y", alice, "")
		z, _ := tied.Add(revision.Insertion, "z", alice, "")
		assert.Equal(t, []revision.ID{x, y, z}, ids(tied.List(ledger.Filter{Kind: revision.Insertion})))
	})

	t.Run("restore keeps identifiers test", func(t *testing.T) {
		l, err := ledger.New()
		require.NoError(t, err)

		record := &revision.Record{
			ID:        revision.NewID(),
			Kind:      revision.Deletion,
			Content:   "world",
			Author:    bob,
			CreatedAt: gotime.Date(2026, 2, 3, 4, 5, 6, 0, gotime.UTC),
		}
		restored, err := l.Restore(record)
		assert.NoError(t, err)
		assert.True(t, restored)

		restored, err = l.Restore(record)
		assert.NoError(t, err)
		assert.False(t, restored)

		stored, ok := l.Get(record.ID)
		assert.True(t, ok)
		assert.Equal(t, revision.Pending, stored.Status)
		assert.True(t, record.CreatedAt.Equal(stored.CreatedAt))
		assert.Equal(t, 1, l.Len())
	})

	t.Run("clear drops records test", func(t *testing.T) {
		l, err := ledger.New()
		require.NoError(t, err)

		id, _ := l.Add(revision.Insertion, "a", alice, "1")
		assert.NoError(t, l.Clear())
		assert.Equal(t, 0, l.Len())
		_, ok := l.Get(id)
		assert.False(t, ok)

		next, _ := l.Add(revision.Insertion, "a", alice, "1")
		assert.NotEqual(t, id, next)
	})

	t.Run("subscribe to changes test", func(t *testing.T) {
		l, err := ledger.New()
		require.NoError(t, err)

		sub := l.Subscribe(10)
		id, _ := l.Add(revision.Insertion, "a", alice, "")
		_, _ = l.UpdateContent(id, "ab")
		_, _ = l.SetStatus(id, revision.Accepted)
		assert.NoError(t, l.Clear())

		var types []ledger.EventType
		for i := 0; i < 4; i++ {
			event := <-sub.Events()
			types = append(types, event.Type)
		}
		assert.Equal(t, []ledger.EventType{
			ledger.EventAdded,
			ledger.EventUpdated,
			ledger.EventStatusChanged,
			ledger.EventCleared,
		}, types)

		assert.True(t, l.Unsubscribe(sub.ID()))
		_, err = l.Add(revision.Insertion, "b", alice, "")
		assert.NoError(t, err)
	})

	t.Run("slow subscriber does not block edits test", func(t *testing.T) {
		l, err := ledger.New()
		require.NoError(t, err)

		sub := l.Subscribe(1)
		for i := 0; i < 5; i++ {
			_, err := l.Add(revision.Insertion, "a", alice, "")
			assert.NoError(t, err)
		}
		assert.Equal(t, 4, sub.Dropped())
	})
}

func ids(records []*revision.Record) []revision.ID {
	var result []revision.ID
	for _, record := range records {
		result = append(result, record.ID)
	}
	return result
}
