// Copyright 2025 The span-map Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package spanmap

import (
	"cmp"

	"github.com/cockroachdb/errors"
	"github.com/drmingdrmer/span-map/internal/invariants"
)

// stabFrame captures the traversal state within one node during a stabbing
// query: pos is the index currently being processed, length is the index of
// the first item whose start bound excludes the query key, and childDone
// records whether the child preceding items[pos] has already been visited.
type stabFrame[K cmp.Ordered, V any] struct {
	n         *node[K, V]
	pos       int16
	length    int16
	childDone bool
}

// stabStack represents a stack of stabFrames, which captures iteration state
// as a stabbing query descends the tree. Frames below a certain depth are
// held in an embedded array to avoid allocations for shallow trees.
type stabStack[K cmp.Ordered, V any] struct {
	// a contains aLen stack frames when the stack is short enough. If the
	// stack overflows the capacity of the array, the stack is moved to s and
	// aLen is set to -1.
	a    [3]stabFrame[K, V]
	aLen int16 // -1 when using s
	s    []stabFrame[K, V]
}

func (is *stabStack[K, V]) push(f stabFrame[K, V]) {
	if is.aLen == -1 {
		is.s = append(is.s, f)
	} else if int(is.aLen) == len(is.a) {
		is.s = make([]stabFrame[K, V], int(is.aLen)+1, 2*int(is.aLen))
		copy(is.s, is.a[:])
		is.s[int(is.aLen)] = f
		is.aLen = -1
	} else {
		is.a[is.aLen] = f
		is.aLen++
	}
}

// top returns a pointer to the frame on top of the stack, or nil if the
// stack is empty. The frame is mutated in place by the iterator.
func (is *stabStack[K, V]) top() *stabFrame[K, V] {
	if is.aLen == -1 {
		if len(is.s) == 0 {
			return nil
		}
		return &is.s[len(is.s)-1]
	}
	if is.aLen == 0 {
		return nil
	}
	return &is.a[is.aLen-1]
}

func (is *stabStack[K, V]) pop() {
	if is.aLen == -1 {
		is.s = is.s[:len(is.s)-1]
		return
	}
	is.aLen--
}

func (is *stabStack[K, V]) reset() {
	if is.aLen == -1 {
		is.s = is.s[:0]
	} else {
		is.aLen = 0
	}
}

// An Iterator enumerates the entries whose spans contain a single query key.
// It is lazy: matches are produced one at a time as the caller advances, and
// the memory held is proportional to the tree height, not to the map size.
//
// The order in which matches are produced is deterministic for a fixed tree
// shape but is not part of the contract; callers must not depend on it.
//
// An Iterator is invalidated by any mutation of the map that produced it.
// Typical usage:
//
//	for it := m.Get(k); it.Valid(); it.Next() {
//		_ = it.Value()
//	}
type Iterator[K cmp.Ordered, V any] struct {
	root *node[K, V]
	key  K
	cur  *entry[K, V]
	s    stabStack[K, V]
}

// makeStabFrame prepares the traversal frame for a node whose subtree may
// contain matches.
func makeStabFrame[K cmp.Ordered, V any](n *node[K, V], key K) stabFrame[K, V] {
	return stabFrame[K, V]{n: n, length: int16(n.searchStart(key))}
}

// First repositions the iterator at the first match. Get returns iterators
// already positioned there; First is only needed to restart iteration.
func (it *Iterator[K, V]) First() {
	it.s.reset()
	it.cur = nil
	if it.root == nil || !containsAsEnd(it.root.maxEnd, it.key) {
		// The whole tree's maximum end bound falls short of the key: nothing
		// can match.
		return
	}
	it.s.push(makeStabFrame(it.root, it.key))
	it.advance()
}

// Next advances the iterator to the next match, if any.
func (it *Iterator[K, V]) Next() {
	if it.cur == nil {
		return
	}
	it.advance()
}

// advance walks the frame stack until it finds the next entry whose span
// contains the key, or exhausts the tree. Within a node, position i is
// processed as: descend into children[i] if its maxEnd admits the key, then
// test items[i]. Positions at or beyond the frame's length hold starts that
// exclude the key, so only the child at the length position remains to be
// visited there.
func (it *Iterator[K, V]) advance() {
	it.cur = nil
	for {
		f := it.s.top()
		if f == nil {
			return
		}
		if !f.n.leaf && !f.childDone {
			f.childDone = true
			if c := f.n.children[f.pos]; containsAsEnd(c.maxEnd, it.key) {
				it.s.push(makeStabFrame(c, it.key))
				continue
			}
		}
		if f.pos < f.length {
			e := f.n.items[f.pos]
			f.pos++
			f.childDone = false
			if containsAsEnd(e.span.End, it.key) {
				// The start bound admits the key by construction (pos <
				// length), so this entry's span contains it.
				it.cur = e
				return
			}
			continue
		}
		it.s.pop()
	}
}

// Valid reports whether the iterator is positioned at a match.
func (it *Iterator[K, V]) Valid() bool {
	return it.cur != nil
}

// Span returns the span of the current match. It is illegal to call Span on
// an invalid iterator.
func (it *Iterator[K, V]) Span() Span[K] {
	if invariants.Enabled && it.cur == nil {
		panic(errors.AssertionFailedf("spanmap: Span called on invalid iterator"))
	}
	return it.cur.span
}

// Value returns the value of the current match. It is illegal to call Value
// on an invalid iterator.
func (it *Iterator[K, V]) Value() V {
	if invariants.Enabled && it.cur == nil {
		panic(errors.AssertionFailedf("spanmap: Value called on invalid iterator"))
	}
	return it.cur.value
}

// Handle returns the handle of the current match, usable with Remove.
func (it *Iterator[K, V]) Handle() EntryHandle {
	if invariants.Enabled && it.cur == nil {
		panic(errors.AssertionFailedf("spanmap: Handle called on invalid iterator"))
	}
	return EntryHandle{seq: it.cur.seq}
}

// ascend yields every entry in the subtree in (start bound, sequence)
// order, stopping early if yield returns false.
func (n *node[K, V]) ascend(yield func(*entry[K, V]) bool) bool {
	for i := int16(0); i < n.count; i++ {
		if !n.leaf && !n.children[i].ascend(yield) {
			return false
		}
		if !yield(n.items[i]) {
			return false
		}
	}
	if !n.leaf {
		return n.children[n.count].ascend(yield)
	}
	return true
}
