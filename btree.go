// Copyright 2025 The span-map Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package spanmap

import (
	"cmp"
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/drmingdrmer/span-map/internal/invariants"
)

const (
	degree   = 16
	maxItems = 2*degree - 1
	minItems = degree - 1
)

// entry is one stored (span, value) pair. Entries are never mutated after
// insertion; updating a value means remove-then-insert. Two entries with
// equal spans and values are still distinct entries.
type entry[K cmp.Ordered, V any] struct {
	span  Span[K]
	value V
	// seq is the per-map insertion sequence number. It breaks ties between
	// entries with equal start bounds, making the tree order total, and it
	// identifies the entry for handle-based removal.
	seq uint64
}

// cmpEntry orders entries by their span's start bound, breaking ties by
// insertion sequence. This is the search order of the interval index.
func cmpEntry[K cmp.Ordered, V any](a, b *entry[K, V]) int {
	if c := cmpStart(a.span.Start, b.span.Start); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

type leafNode[K cmp.Ordered, V any] struct {
	count int16
	leaf  bool
	// maxEnd is the maximum end bound, in the end-bound order, over the
	// entries stored in the subtree rooted at this node. It is what lets a
	// stabbing query discard a whole subtree in one comparison, and it must
	// be re-established after every structural change.
	maxEnd Bound[K]
	items  [maxItems]*entry[K, V]
}

type node[K cmp.Ordered, V any] struct {
	leafNode[K, V]
	children [maxItems + 1]*node[K, V]
}

//go:nocheckptr casts a ptr to a smaller struct to a ptr to a larger struct.
func leafToNode[K cmp.Ordered, V any](ln *leafNode[K, V]) *node[K, V] {
	return (*node[K, V])(unsafe.Pointer(ln))
}

func newLeafNode[K cmp.Ordered, V any]() *node[K, V] {
	n := leafToNode(new(leafNode[K, V]))
	n.leaf = true
	return n
}

func newNode[K cmp.Ordered, V any]() *node[K, V] {
	return new(node[K, V])
}

// insertAt inserts the provided entry and node at the provided index. This
// function is for use only as a helper function for internal B-Tree code.
// Clients should not invoke it directly.
func (n *node[K, V]) insertAt(index int, item *entry[K, V], nd *node[K, V]) {
	if index < int(n.count) {
		copy(n.items[index+1:n.count+1], n.items[index:n.count])
		if !n.leaf {
			copy(n.children[index+2:n.count+2], n.children[index+1:n.count+1])
		}
	}
	n.items[index] = item
	if !n.leaf {
		n.children[index+1] = nd
	}
	n.count++
}

// pushBack inserts the provided entry and node at the tail of the node's
// items. This function is for use only as a helper function for internal
// B-Tree code. Clients should not invoke it directly.
func (n *node[K, V]) pushBack(item *entry[K, V], nd *node[K, V]) {
	n.items[n.count] = item
	if !n.leaf {
		n.children[n.count+1] = nd
	}
	n.count++
}

// pushFront inserts the provided entry and node at the head of the node's
// items. This function is for use only as a helper function for internal
// B-Tree code. Clients should not invoke it directly.
func (n *node[K, V]) pushFront(item *entry[K, V], nd *node[K, V]) {
	if !n.leaf {
		copy(n.children[1:n.count+2], n.children[:n.count+1])
		n.children[0] = nd
	}
	copy(n.items[1:n.count+1], n.items[:n.count])
	n.items[0] = item
	n.count++
}

// removeAt removes a value at a given index, pulling all subsequent values
// back. This function is for use only as a helper function for internal
// B-Tree code. Clients should not invoke it directly.
func (n *node[K, V]) removeAt(index int) (*entry[K, V], *node[K, V]) {
	var child *node[K, V]
	if !n.leaf {
		child = n.children[index+1]
		copy(n.children[index+1:n.count], n.children[index+2:n.count+1])
		n.children[n.count] = nil
	}
	n.count--
	out := n.items[index]
	copy(n.items[index:n.count], n.items[index+1:n.count+1])
	n.items[n.count] = nil
	return out, child
}

// popBack removes and returns the last element in the list. This function is
// for use only as a helper function for internal B-Tree code. Clients should
// not invoke it directly.
func (n *node[K, V]) popBack() (*entry[K, V], *node[K, V]) {
	n.count--
	out := n.items[n.count]
	n.items[n.count] = nil
	if n.leaf {
		return out, nil
	}
	child := n.children[n.count+1]
	n.children[n.count+1] = nil
	return out, child
}

// popFront removes and returns the first element in the list. This function
// is for use only as a helper function for internal B-Tree code. Clients
// should not invoke it directly.
func (n *node[K, V]) popFront() (*entry[K, V], *node[K, V]) {
	n.count--
	var child *node[K, V]
	if !n.leaf {
		child = n.children[0]
		copy(n.children[:n.count+1], n.children[1:n.count+2])
		n.children[n.count+1] = nil
	}
	out := n.items[0]
	copy(n.items[:n.count], n.items[1:n.count+1])
	n.items[n.count] = nil
	return out, child
}

// find returns the index where the given entry should be inserted into this
// list. 'found' is true if the entry already exists in the list at the given
// index.
//
// This function is for use only as a helper function for internal B-Tree
// code. Clients should not invoke it directly.
func (n *node[K, V]) find(item *entry[K, V]) (index int, found bool) {
	// Logic copied from sort.Search, inlined to avoid the closure call on
	// this hot path.
	i, j := 0, int(n.count)
	for i < j {
		h := int(uint(i+j) >> 1) // avoid overflow when computing h
		// i ≤ h < j
		v := cmpEntry(item, n.items[h])
		if v == 0 {
			return h, true
		} else if v > 0 {
			i = h + 1
		} else {
			j = h
		}
	}
	return i, false
}

// searchStart returns the index of the first item whose start bound does not
// admit key. Because start-bound admission is downward-closed in the start
// order, every item and every child subtree at index >= the returned value
// (for items) holds only starts that exclude key.
func (n *node[K, V]) searchStart(key K) int {
	i, j := 0, int(n.count)
	for i < j {
		h := int(uint(i+j) >> 1)
		if containsAsStart(n.items[h].span.Start, key) {
			i = h + 1
		} else {
			j = h
		}
	}
	return i
}

// recomputeMaxEnd re-derives the node's maxEnd from its items and children.
// Children's maxEnd values must already be correct.
func (n *node[K, V]) recomputeMaxEnd() {
	if n.count == 0 {
		if n.leaf {
			// Transient state; the tree discards empty leaves.
			return
		}
		n.maxEnd = n.children[0].maxEnd
		return
	}
	m := n.items[0].span.End
	for _, e := range n.items[1:n.count] {
		if cmpEnd(e.span.End, m) > 0 {
			m = e.span.End
		}
	}
	if !n.leaf {
		for _, c := range n.children[:n.count+1] {
			if cmpEnd(c.maxEnd, m) > 0 {
				m = c.maxEnd
			}
		}
	}
	n.maxEnd = m
}

// adjustMaxEndForRemoval shrinks the node's maxEnd after the entry out was
// removed somewhere within its subtree. The subtree below must already be
// consistent. Only a removal of an entry carrying the current maximum can
// lower it, so anything else is a no-op.
func (n *node[K, V]) adjustMaxEndForRemoval(out *entry[K, V]) {
	if cmpEnd(out.span.End, n.maxEnd) == 0 {
		n.recomputeMaxEnd()
	}
}

// split splits the given node at the given index. The current node shrinks,
// and this function returns the entry that existed at that index and a new
// node containing all items/children after it.
//
// split is called when we want to perform a transformation like the one
// depicted in the following diagram.
//
//	Before:
//	                       +-----------+
//	             n *node   |   x y z   |
//	                       +--/-/-\-\--+
//
//	After:
//	                       +-----------+
//	                       |     y     |  n's parent
//	                       +----/-\----+
//	                           /   \
//	                          v     v
//	              +-----------+     +-----------+
//	      n *node |         x |     | z         | next *node
//	              +-----------+     +-----------+
//
// split does not perform the complete transformation; the caller is
// responsible for updating the parent appropriately, including adopting the
// returned entry's contribution to its maxEnd.
func (n *node[K, V]) split(i int) (*entry[K, V], *node[K, V]) {
	out := n.items[i]
	var next *node[K, V]
	if n.leaf {
		next = newLeafNode[K, V]()
	} else {
		next = newNode[K, V]()
	}
	next.count = n.count - int16(i+1)
	copy(next.items[:], n.items[i+1:n.count])
	clear(n.items[i:n.count])
	if !n.leaf {
		copy(next.children[:], n.children[i+1:n.count+1])
		for j := int16(i + 1); j <= n.count; j++ {
			n.children[j] = nil
		}
	}
	n.count = int16(i)
	// Both halves lost entries; rebuild their augmentations from scratch.
	n.recomputeMaxEnd()
	next.recomputeMaxEnd()
	return out, next
}

// insert inserts an entry into the subtree rooted at this node, making sure
// no nodes in the subtree exceed maxItems entries.
func (n *node[K, V]) insert(item *entry[K, V]) {
	// The new entry joins this subtree, so its end bound joins the node's
	// aggregation. This is the only maxEnd update insertion needs: an insert
	// can only ever extend the maximum.
	if n.count == 0 || cmpEnd(item.span.End, n.maxEnd) > 0 {
		n.maxEnd = item.span.End
	}
	i, found := n.find(item)
	if found {
		// Insertion sequence numbers are unique, so the tree order is total
		// and collisions are impossible.
		panic(errors.AssertionFailedf("spanmap: duplicate insertion sequence %d", item.seq))
	}
	if n.leaf {
		n.insertAt(i, item, nil)
		return
	}
	if n.children[i].count >= maxItems {
		splitItem, splitNode := n.children[i].split(maxItems / 2)
		n.insertAt(i, splitItem, splitNode)
		if cmpEntry(item, n.items[i]) > 0 {
			i++ // we want the second split node
		}
	}
	n.children[i].insert(item)
}

// removeMax removes and returns the maximum entry from the subtree rooted at
// this node. This function is for use only as a helper function for internal
// B-Tree code. Clients should not invoke it directly.
func (n *node[K, V]) removeMax() *entry[K, V] {
	if n.leaf {
		n.count--
		out := n.items[n.count]
		n.items[n.count] = nil
		n.adjustMaxEndForRemoval(out)
		return out
	}
	if n.children[n.count].count <= minItems {
		n.rebalanceOrMerge(int(n.count))
		return n.removeMax()
	}
	out := n.children[n.count].removeMax()
	n.adjustMaxEndForRemoval(out)
	return out
}

// remove removes an entry from the subtree rooted at this node. Returns the
// entry that was removed, and false if no equal entry was present.
func (n *node[K, V]) remove(item *entry[K, V]) (out *entry[K, V], found bool) {
	i, found := n.find(item)
	if n.leaf {
		if found {
			out, _ = n.removeAt(i)
			n.adjustMaxEndForRemoval(out)
			return out, true
		}
		return nil, false
	}
	if n.children[i].count <= minItems {
		// Child not large enough to remove from.
		n.rebalanceOrMerge(i)
		return n.remove(item)
	}
	child := n.children[i]
	if found {
		// Replace the entry being removed with the max entry in our left
		// child.
		out = n.items[i]
		n.items[i] = child.removeMax()
		n.adjustMaxEndForRemoval(out)
		return out, true
	}
	// Entry is not in this node and child is large enough to remove from.
	out, found = child.remove(item)
	if found {
		n.adjustMaxEndForRemoval(out)
	}
	return out, found
}

// rebalanceOrMerge grows child 'i' to ensure it has sufficient room to
// remove an entry from it while keeping it at or above minItems. The
// children it touches are reaugmented before it returns; the receiver's own
// maxEnd is unchanged because entries only move within its subtree.
func (n *node[K, V]) rebalanceOrMerge(i int) {
	switch {
	case i > 0 && n.children[i-1].count > minItems:
		// Rebalance from left sibling.
		//
		//          +-----------+
		//          |     y     |
		//          +----/-\----+
		//              /   \
		//             v     v
		// +-----------+     +-----------+
		// |         x |     |           |
		// +----------\+     +-----------+
		//             \
		//              v
		//              a
		//
		// After:
		//
		//          +-----------+
		//          |     x     |
		//          +----/-\----+
		//              /   \
		//             v     v
		// +-----------+     +-----------+
		// |           |     | y         |
		// +-----------+     +/----------+
		//                   /
		//                  v
		//                  a
		//
		left := n.children[i-1]
		child := n.children[i]
		x, grandChild := left.popBack()
		y := n.items[i-1]
		child.pushFront(y, grandChild)
		n.items[i-1] = x
		left.recomputeMaxEnd()
		child.recomputeMaxEnd()

	case i < int(n.count) && n.children[i+1].count > minItems:
		// Rebalance from right sibling.
		//
		//          +-----------+
		//          |     y     |
		//          +----/-\----+
		//              /   \
		//             v     v
		// +-----------+     +-----------+
		// |           |     | x         |
		// +-----------+     +/----------+
		//                   /
		//                  v
		//                  a
		//
		// After:
		//
		//          +-----------+
		//          |     x     |
		//          +----/-\----+
		//              /   \
		//             v     v
		// +-----------+     +-----------+
		// |         y |     |           |
		// +----------\+     +-----------+
		//             \
		//              v
		//              a
		//
		right := n.children[i+1]
		child := n.children[i]
		x, grandChild := right.popFront()
		y := n.items[i]
		child.pushBack(y, grandChild)
		n.items[i] = x
		right.recomputeMaxEnd()
		child.recomputeMaxEnd()

	default:
		// Merge with either the left or right sibling.
		//
		//          +-----------+
		//          |   u y v   |
		//          +----/-\----+
		//              /   \
		//             v     v
		// +-----------+     +-----------+
		// |         x |     | z         |
		// +-----------+     +-----------+
		//
		// After:
		//
		//          +-----------+
		//          |    u v    |
		//          +-----|-----+
		//                |
		//                v
		//          +-----------+
		//          |   x y z   |
		//          +-----------+
		//
		if i >= int(n.count) {
			i = int(n.count - 1)
		}
		child := n.children[i]
		mergeItem, mergeChild := n.removeAt(i)
		child.items[child.count] = mergeItem
		copy(child.items[child.count+1:], mergeChild.items[:mergeChild.count])
		if !child.leaf {
			copy(child.children[child.count+1:], mergeChild.children[:mergeChild.count+1])
		}
		child.count += mergeChild.count + 1
		child.recomputeMaxEnd()
	}
}

// btree is the interval index: a B-Tree ordered by (start bound, insertion
// sequence), augmented with the per-node maxEnd bound that stabbing queries
// prune on.
//
// Write operations are not safe for concurrent mutation by multiple
// goroutines, but Read operations are.
type btree[K cmp.Ordered, V any] struct {
	root   *node[K, V]
	length int
}

// insert adds the given entry to the tree.
func (t *btree[K, V]) insert(e *entry[K, V]) {
	if t.root == nil {
		t.root = newLeafNode[K, V]()
	} else if t.root.count >= maxItems {
		splitItem, splitNode := t.root.split(maxItems / 2)
		newRoot := newNode[K, V]()
		newRoot.count = 1
		newRoot.items[0] = splitItem
		newRoot.children[0] = t.root
		newRoot.children[1] = splitNode
		newRoot.recomputeMaxEnd()
		t.root = newRoot
	}
	t.root.insert(e)
	t.length++
	if invariants.Enabled {
		t.root.verifyMaxEnd()
	}
}

// delete removes the entry equal to e (same start bound and sequence) from
// the tree, reporting whether it was present. Deleting an absent entry
// leaves the tree untouched.
func (t *btree[K, V]) delete(e *entry[K, V]) bool {
	if t.root == nil || t.root.count == 0 {
		return false
	}
	_, found := t.root.remove(e)
	if found {
		t.length--
	}
	if t.root.count == 0 {
		if t.root.leaf {
			t.root = nil
		} else {
			t.root = t.root.children[0]
		}
	}
	if invariants.Enabled && t.root != nil {
		t.root.verifyMaxEnd()
	}
	return found
}

// verifyMaxEnd asserts the augmentation invariant over the whole subtree.
// It is expensive and runs only under invariant builds or from tests.
func (n *node[K, V]) verifyMaxEnd() {
	m := n.items[0].span.End
	for _, e := range n.items[1:n.count] {
		if cmpEnd(e.span.End, m) > 0 {
			m = e.span.End
		}
	}
	if !n.leaf {
		for _, c := range n.children[:n.count+1] {
			c.verifyMaxEnd()
			if cmpEnd(c.maxEnd, m) > 0 {
				m = c.maxEnd
			}
		}
	}
	if cmpEnd(m, n.maxEnd) != 0 {
		panic(errors.AssertionFailedf(
			"spanmap: node maxEnd %s diverged from recomputed %s",
			boundEndString(n.maxEnd), boundEndString(m)))
	}
}

// String returns a string description of the tree. The format is similar to
// the https://en.wikipedia.org/wiki/Newick_format.
func (t *btree[K, V]) String() string {
	if t.length == 0 {
		return ";"
	}
	var b strings.Builder
	t.root.writeString(&b)
	return b.String()
}

func (n *node[K, V]) writeString(b *strings.Builder) {
	if n.leaf {
		for i := int16(0); i < n.count; i++ {
			if i != 0 {
				b.WriteString(",")
			}
			b.WriteString(n.items[i].span.String())
		}
		return
	}
	for i := int16(0); i <= n.count; i++ {
		b.WriteString("(")
		n.children[i].writeString(b)
		b.WriteString(")")
		if i < n.count {
			b.WriteString(n.items[i].span.String())
		}
	}
}
