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

// Package pubsub provides in-process change notifications over buffered
// channels. Publishing never blocks the publisher: an event is dropped for a
// subscriber whose buffer is full.
package pubsub

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/xid"
)

// Subscription represents a subscription of a subscriber to events of type E.
type Subscription[E any] struct {
	id      string
	mu      sync.Mutex
	closed  bool
	dropped int
	events  chan E
}

// NewSubscription creates a new instance of Subscription with the given buffer size.
func NewSubscription[E any](bufSize int) *Subscription[E] {
	if bufSize < 0 {
		bufSize = 0
	}

	return &Subscription[E]{
		id:     xid.New().String(),
		events: make(chan E, bufSize),
	}
}

// ID returns the id of this subscription.
func (s *Subscription[E]) ID() string {
	return s.id
}

// Events returns the event channel of this subscription.
func (s *Subscription[E]) Events() <-chan E {
	return s.events
}

// Dropped returns the number of events dropped because the buffer was full.
func (s *Subscription[E]) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dropped
}

// Close closes all resources of this Subscription.
func (s *Subscription[E]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

// Publish delivers the given event to the subscriber without blocking.
func (s *Subscription[E]) Publish(event E) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.events <- event:
		return true
	default:
		s.dropped++
		return false
	}
}

// Subscriptions is a collection of Subscription[E].
type Subscriptions[E any] struct {
	name string

	mu   sync.RWMutex
	subs map[string]*Subscription[E]
}

// NewSubscriptions creates a new Subscriptions collection.
func NewSubscriptions[E any](name string) *Subscriptions[E] {
	return &Subscriptions[E]{
		name: name,
		subs: make(map[string]*Subscription[E]),
	}
}

// Subscribe creates and registers a new subscription.
func (s *Subscriptions[E]) Subscribe(bufSize int) *Subscription[E] {
	sub := NewSubscription[E](bufSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.ID()] = sub

	return sub
}

// Values returns the subscriptions ordered by id.
func (s *Subscriptions[E]) Values() []*Subscription[E] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make([]*Subscription[E], 0, len(s.subs))
	for _, sub := range s.subs {
		values = append(values, sub)
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].ID() < values[j].ID()
	})

	return values
}

// Publish publishes the given event to every subscription.
func (s *Subscriptions[E]) Publish(event E) {
	for _, sub := range s.Values() {
		sub.Publish(event)
	}
}

// Delete closes and deletes the subscription of the given id.
func (s *Subscriptions[E]) Delete(id string) bool {
	s.mu.Lock()
	sub, ok := s.subs[id]
	delete(s.subs, id)
	s.mu.Unlock()

	if ok {
		sub.Close()
	}
	return ok
}

// Len returns the length of these subscriptions.
func (s *Subscriptions[E]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.subs)
}

// Close closes every subscription.
func (s *Subscriptions[E]) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[string]*Subscription[E])
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

// String returns a string representation of this subscriptions collection.
func (s *Subscriptions[E]) String() string {
	return fmt.Sprintf("Subscriptions(%s)", s.name)
}
