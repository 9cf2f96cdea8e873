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

package pubsub_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/redline/pkg/pubsub"
)

func TestSubscriptions(t *testing.T) {
	t.Run("publish and subscribe test", func(t *testing.T) {
		subs := pubsub.NewSubscriptions[string]("ledger")
		sub1 := subs.Subscribe(2)
		sub2 := subs.Subscribe(2)
		assert.Equal(t, 2, subs.Len())
		assert.NotEqual(t, sub1.ID(), sub2.ID())

		subs.Publish("added")
		assert.Equal(t, "added", <-sub1.Events())
		assert.Equal(t, "added", <-sub2.Events())
	})

	t.Run("full buffer drops events test", func(t *testing.T) {
		subs := pubsub.NewSubscriptions[int]("ledger")
		sub := subs.Subscribe(1)

		subs.Publish(1)
		subs.Publish(2)
		assert.Equal(t, 1, sub.Dropped())
		assert.Equal(t, 1, <-sub.Events())
	})

	t.Run("delete closes subscription test", func(t *testing.T) {
		subs := pubsub.NewSubscriptions[int]("ledger")
		sub := subs.Subscribe(1)

		assert.True(t, subs.Delete(sub.ID()))
		assert.False(t, subs.Delete(sub.ID()))
		assert.False(t, sub.Publish(1))

		_, ok := <-sub.Events()
		assert.False(t, ok)
		assert.Equal(t, "Subscriptions(ledger)", subs.String())
	})
}
