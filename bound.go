// Copyright 2025 The span-map Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package spanmap

import (
	"cmp"

	"github.com/cockroachdb/redact"
)

// boundKind discriminates the three kinds of span endpoints.
type boundKind int8

const (
	inclusive boundKind = iota
	exclusive
	unbounded
)

// Bound is one endpoint of a Span: a key that is part of the span
// (Included), a key that is just outside it (Excluded), or no constraint at
// all (Unbounded). A Bound is directional: the same Bound value means
// different things as a span's start versus its end, and the two orderings
// below reflect that.
//
// The zero value of Bound is Included(zero K).
type Bound[K cmp.Ordered] struct {
	key  K
	kind boundKind
}

// Included returns a bound that admits key itself.
func Included[K cmp.Ordered](key K) Bound[K] {
	return Bound[K]{key: key, kind: inclusive}
}

// Excluded returns a bound that admits keys strictly beyond key.
func Excluded[K cmp.Ordered](key K) Bound[K] {
	return Bound[K]{key: key, kind: exclusive}
}

// Unbounded returns a bound that admits every key.
func Unbounded[K cmp.Ordered]() Bound[K] {
	return Bound[K]{kind: unbounded}
}

// IsUnbounded reports whether the bound admits every key.
func (b Bound[K]) IsUnbounded() bool {
	return b.kind == unbounded
}

// Key returns the bound's key and whether the bound has one (Unbounded
// bounds do not).
func (b Bound[K]) Key() (K, bool) {
	return b.key, b.kind != unbounded
}

// containsAsStart reports whether a span starting at b admits key: the start
// does not exclude key from below.
func containsAsStart[K cmp.Ordered](b Bound[K], key K) bool {
	switch b.kind {
	case inclusive:
		return b.key <= key
	case exclusive:
		return b.key < key
	default:
		return true
	}
}

// containsAsEnd reports whether a span ending at b admits key: the end does
// not exclude key from above.
func containsAsEnd[K cmp.Ordered](b Bound[K], key K) bool {
	switch b.kind {
	case inclusive:
		return key <= b.key
	case exclusive:
		return key < b.key
	default:
		return true
	}
}

// cmpStart compares two bounds in the start-bound order: Unbounded sorts
// below every finite bound, and at equal keys Included sorts before
// Excluded, so that [k,...) starts no later than (k,...). The order is
// total and is the primary sort key of the interval index.
func cmpStart[K cmp.Ordered](a, b Bound[K]) int {
	if a.kind == unbounded || b.kind == unbounded {
		if a.kind == b.kind {
			return 0
		}
		if a.kind == unbounded {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.key, b.key); c != 0 {
		return c
	}
	return cmp.Compare(a.kind, b.kind)
}

// cmpEnd compares two bounds in the end-bound order: the mirror of
// cmpStart. Unbounded sorts above every finite bound, and at equal keys
// Excluded sorts before Included, so that (...,k) ends no later than
// (...,k].
func cmpEnd[K cmp.Ordered](a, b Bound[K]) int {
	if a.kind == unbounded || b.kind == unbounded {
		if a.kind == b.kind {
			return 0
		}
		if a.kind == unbounded {
			return 1
		}
		return -1
	}
	if c := cmp.Compare(a.key, b.key); c != 0 {
		return c
	}
	return cmp.Compare(b.kind, a.kind)
}

// safeFormatStart writes the conventional interval notation for b as a
// span's start, e.g. "[1" or "(1" or "(-∞".
func (b Bound[K]) safeFormatStart(w redact.SafePrinter) {
	switch b.kind {
	case inclusive:
		w.Printf("[%v", b.key)
	case exclusive:
		w.Printf("(%v", b.key)
	default:
		w.SafeString("(-∞")
	}
}

// safeFormatEnd writes the conventional interval notation for b as a span's
// end, e.g. "5]" or "5)" or "∞)".
func (b Bound[K]) safeFormatEnd(w redact.SafePrinter) {
	switch b.kind {
	case inclusive:
		w.Printf("%v]", b.key)
	case exclusive:
		w.Printf("%v)", b.key)
	default:
		w.SafeString("∞)")
	}
}

// boundEndString renders b in end-bound notation, for diagnostics.
func boundEndString[K cmp.Ordered](b Bound[K]) string {
	return redact.StringWithoutMarkers(endFormatter[K]{b})
}

type endFormatter[K cmp.Ordered] struct {
	b Bound[K]
}

// SafeFormat implements redact.SafeFormatter.
func (f endFormatter[K]) SafeFormat(w redact.SafePrinter, _ rune) {
	f.b.safeFormatEnd(w)
}
