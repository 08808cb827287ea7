// Copyright 2025 The span-map Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package spanmap provides an in-memory multimap from spans (intervals over
// an ordered key type) to values, answering point stabbing queries: "which
// values are mapped at key X". Spans may overlap arbitrarily, carry
// inclusive, exclusive or unbounded endpoints, and are stored with per-entry
// identity, so equal (span, value) pairs inserted twice are two entries.
//
// The map is backed by an augmented B-Tree keyed by span start, where every
// node tracks the maximum end bound of its subtree. A stabbing query prunes
// every subtree whose maximum end falls short of the query key, visiting
// only nodes that can contain a match, which makes query cost proportional
// to the tree height plus the number of matches rather than to the total
// number of stored spans.
//
// A SpanMap uses no internal synchronization. Any number of concurrent
// readers may query an unchanging map, but mutations require exclusive
// access, exactly as with the built-in map type.
package spanmap

import (
	"cmp"
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"

	"github.com/drmingdrmer/span-map/internal/invariants"
)

// An EntryHandle identifies one stored entry of a SpanMap. It is issued by
// Insert and consumed by Remove, and is only meaningful with the map that
// issued it.
type EntryHandle struct {
	seq uint64
}

// A SpanMap associates spans with values and answers point containment
// queries over them.
//
// The zero value of SpanMap is not usable; call New.
type SpanMap[K cmp.Ordered, V any] struct {
	tree btree[K, V]
	// entries indexes live entries by insertion sequence. It gives Remove
	// O(1) detection of stale handles and resolves handles back to entries
	// without walking the tree.
	entries swiss.Map[uint64, *entry[K, V]]
	nextSeq uint64
}

// New returns an empty SpanMap.
func New[K cmp.Ordered, V any]() *SpanMap[K, V] {
	m := &SpanMap[K, V]{}
	m.entries.Init(0)
	return m
}

// Insert adds a (span, value) entry to the map and returns a handle that
// identifies exactly that entry for later removal. Insert never fails:
// empty, reversed and duplicate spans are all accepted. An empty span
// counts toward Len but never matches any query.
func (m *SpanMap[K, V]) Insert(span Span[K], value V) EntryHandle {
	m.nextSeq++
	e := &entry[K, V]{span: span, value: value, seq: m.nextSeq}
	m.tree.insert(e)
	m.entries.Put(e.seq, e)
	return EntryHandle{seq: e.seq}
}

// Remove removes the entry identified by the handle, reporting whether it
// was still present. Removing an already-removed or unknown handle returns
// false and leaves the map unchanged.
func (m *SpanMap[K, V]) Remove(h EntryHandle) bool {
	e, ok := m.entries.Get(h.seq)
	if !ok {
		return false
	}
	if !m.tree.delete(e) {
		panic(errors.AssertionFailedf(
			"spanmap: entry %d present in handle registry but missing from tree", e.seq))
	}
	m.entries.Delete(h.seq)
	return true
}

// Get returns an iterator over all entries whose span contains key,
// positioned at the first match. The iteration order is unspecified; see
// Iterator.
func (m *SpanMap[K, V]) Get(key K) Iterator[K, V] {
	it := Iterator[K, V]{root: m.tree.root, key: key}
	it.First()
	return it
}

// GetAll collects the values of all entries whose span contains key. It is
// a convenience wrapper around Get; the slice order is unspecified.
func (m *SpanMap[K, V]) GetAll(key K) []V {
	var out []V
	for it := m.Get(key); it.Valid(); it.Next() {
		out = append(out, it.Value())
	}
	return out
}

// Values returns a range-over-func sequence of the values mapped at key.
func (m *SpanMap[K, V]) Values(key K) iter.Seq[V] {
	return func(yield func(V) bool) {
		for it := m.Get(key); it.Valid(); it.Next() {
			if !yield(it.Value()) {
				return
			}
		}
	}
}

// At returns a range-over-func sequence of the (span, value) pairs mapped
// at key.
func (m *SpanMap[K, V]) At(key K) iter.Seq2[Span[K], V] {
	return func(yield func(Span[K], V) bool) {
		for it := m.Get(key); it.Valid(); it.Next() {
			if !yield(it.Span(), it.Value()) {
				return
			}
		}
	}
}

// Ascend returns a range-over-func sequence of every entry in the map,
// ordered by start bound with ties broken by insertion order. Unlike Get's
// iteration order, this order is part of the contract.
func (m *SpanMap[K, V]) Ascend() iter.Seq2[Span[K], V] {
	return func(yield func(Span[K], V) bool) {
		if m.tree.root == nil {
			return
		}
		m.tree.root.ascend(func(e *entry[K, V]) bool {
			return yield(e.span, e.value)
		})
	}
}

// Span resolves a handle to the span of the entry it identifies, reporting
// false if the entry has been removed.
func (m *SpanMap[K, V]) Span(h EntryHandle) (Span[K], bool) {
	if e, ok := m.entries.Get(h.seq); ok {
		return e.span, true
	}
	return Span[K]{}, false
}

// Len returns the number of entries in the map, counting every insertion
// not yet removed, including entries with empty or duplicate spans.
func (m *SpanMap[K, V]) Len() int {
	if invariants.Enabled && m.tree.length != m.entries.Len() {
		panic(errors.AssertionFailedf(
			"spanmap: tree length %d diverged from handle registry length %d",
			m.tree.length, m.entries.Len()))
	}
	return m.tree.length
}

// Empty reports whether the map contains no entries.
func (m *SpanMap[K, V]) Empty() bool {
	return m.Len() == 0
}
