// Copyright 2025 The span-map Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package spanmap

import (
	"cmp"

	"github.com/cockroachdb/redact"
)

// Span is an interval over the key type K, delimited by a start and an end
// Bound. Spans may be empty (no key satisfies both bounds); empty spans are
// legal everywhere and simply never match a query.
type Span[K cmp.Ordered] struct {
	Start Bound[K]
	End   Bound[K]
}

// NewSpan constructs a span from explicit bounds.
func NewSpan[K cmp.Ordered](start, end Bound[K]) Span[K] {
	return Span[K]{Start: start, End: end}
}

// Closed returns the span [start, end].
func Closed[K cmp.Ordered](start, end K) Span[K] {
	return Span[K]{Start: Included(start), End: Included(end)}
}

// HalfOpen returns the span [start, end).
func HalfOpen[K cmp.Ordered](start, end K) Span[K] {
	return Span[K]{Start: Included(start), End: Excluded(end)}
}

// Open returns the span (start, end).
func Open[K cmp.Ordered](start, end K) Span[K] {
	return Span[K]{Start: Excluded(start), End: Excluded(end)}
}

// AtLeast returns the span [key, ∞).
func AtLeast[K cmp.Ordered](key K) Span[K] {
	return Span[K]{Start: Included(key), End: Unbounded[K]()}
}

// GreaterThan returns the span (key, ∞).
func GreaterThan[K cmp.Ordered](key K) Span[K] {
	return Span[K]{Start: Excluded(key), End: Unbounded[K]()}
}

// AtMost returns the span (-∞, key].
func AtMost[K cmp.Ordered](key K) Span[K] {
	return Span[K]{Start: Unbounded[K](), End: Included(key)}
}

// LessThan returns the span (-∞, key).
func LessThan[K cmp.Ordered](key K) Span[K] {
	return Span[K]{Start: Unbounded[K](), End: Excluded(key)}
}

// All returns the span (-∞, ∞), containing every key.
func All[K cmp.Ordered]() Span[K] {
	return Span[K]{Start: Unbounded[K](), End: Unbounded[K]()}
}

// Point returns the span [key, key], containing exactly one key.
func Point[K cmp.Ordered](key K) Span[K] {
	return Closed(key, key)
}

// Contains reports whether key lies within the span.
func (s Span[K]) Contains(key K) bool {
	return containsAsStart(s.Start, key) && containsAsEnd(s.End, key)
}

// Empty reports whether no key can lie within the span, i.e. the span's
// resolved lower limit is at or beyond its upper limit. Empty spans arise
// from reversed bounds ([5, 3]) and from degenerate ones ((5, 5)); both are
// accepted by Insert and never match any query.
func (s Span[K]) Empty() bool {
	if s.Start.kind == unbounded || s.End.kind == unbounded {
		return false
	}
	if c := cmp.Compare(s.Start.key, s.End.key); c != 0 {
		return c > 0
	}
	// Equal keys: only [k, k] admits k.
	return s.Start.kind != inclusive || s.End.kind != inclusive
}

// SafeFormat implements redact.SafeFormatter.
func (s Span[K]) SafeFormat(w redact.SafePrinter, _ rune) {
	s.Start.safeFormatStart(w)
	w.SafeString(", ")
	s.End.safeFormatEnd(w)
}

// String implements fmt.Stringer, rendering the span in conventional
// interval notation, e.g. "[1, 5)" or "(-∞, ∞)".
func (s Span[K]) String() string {
	return redact.StringWithoutMarkers(s)
}
