// Copyright 2025 The span-map Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package spanmap

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func sortedValues(m *SpanMap[int, string], key int) []string {
	vals := m.GetAll(key)
	sort.Strings(vals)
	return vals
}

func TestSpanMapBasic(t *testing.T) {
	m := New[int, string]()
	require.True(t, m.Empty())
	require.Equal(t, 0, m.Len())
	require.Empty(t, m.GetAll(42))

	h := m.Insert(HalfOpen(5, 10), "a")
	require.False(t, m.Empty())
	require.Equal(t, 1, m.Len())

	// Boundary exactness for [5, 10).
	require.Empty(t, m.GetAll(4))
	require.Equal(t, []string{"a"}, m.GetAll(5))
	require.Equal(t, []string{"a"}, m.GetAll(9))
	require.Empty(t, m.GetAll(10))

	require.True(t, m.Remove(h))
	require.True(t, m.Empty())
	require.Empty(t, m.GetAll(5))
}

func TestSpanMapOverlap(t *testing.T) {
	m := New[int, string]()
	m.Insert(HalfOpen(0, 10), "a")
	m.Insert(HalfOpen(5, 15), "b")

	require.Equal(t, []string{"a"}, sortedValues(m, 3))
	require.Equal(t, []string{"a", "b"}, sortedValues(m, 7))
	require.Equal(t, []string{"b"}, sortedValues(m, 12))
	require.Empty(t, m.GetAll(15))

	m2 := New[int, string]()
	m2.Insert(AtMost(5), "a")
	m2.Insert(HalfOpen(3, 7), "b")
	require.Equal(t, []string{"a", "b"}, sortedValues(m2, 4))
	require.Equal(t, []string{"a"}, sortedValues(m2, 2))
	require.Equal(t, []string{"b"}, sortedValues(m2, 6))
}

func TestSpanMapUnbounded(t *testing.T) {
	m := New[int, string]()
	m.Insert(AtMost(5), "low")
	m.Insert(GreaterThan(5), "high")
	m.Insert(All[int](), "all")

	require.Equal(t, []string{"all", "low"}, sortedValues(m, math.MinInt))
	require.Equal(t, []string{"all", "low"}, sortedValues(m, 5))
	require.Equal(t, []string{"all", "high"}, sortedValues(m, 6))
	require.Equal(t, []string{"all", "high"}, sortedValues(m, math.MaxInt))
}

func TestSpanMapRemove(t *testing.T) {
	m := New[int, string]()
	h1 := m.Insert(HalfOpen(0, 10), "a")
	h2 := m.Insert(HalfOpen(0, 10), "a")
	require.Equal(t, 2, m.Len())

	// Two entries with identical spans and values are distinct.
	require.Equal(t, []string{"a", "a"}, sortedValues(m, 5))

	require.True(t, m.Remove(h1))
	require.Equal(t, 1, m.Len())
	require.Equal(t, []string{"a"}, sortedValues(m, 5))

	// A handle is consumed by removal.
	require.False(t, m.Remove(h1))
	require.Equal(t, 1, m.Len())

	require.True(t, m.Remove(h2))
	require.False(t, m.Remove(h2))
	require.True(t, m.Empty())

	// Unknown handles are rejected.
	require.False(t, m.Remove(EntryHandle{seq: 999}))
}

func TestSpanMapEmptySpans(t *testing.T) {
	m := New[int, string]()
	h1 := m.Insert(Open(5, 5), "degenerate")
	h2 := m.Insert(Closed(9, 3), "reversed")
	require.Equal(t, 2, m.Len())

	// Empty spans count toward Len but never match.
	for _, key := range []int{3, 4, 5, 6, 9} {
		require.Empty(t, m.GetAll(key), "key %d", key)
	}

	require.True(t, m.Remove(h1))
	require.True(t, m.Remove(h2))
	require.True(t, m.Empty())
}

func TestSpanMapSpanLookup(t *testing.T) {
	m := New[int, string]()
	h := m.Insert(HalfOpen(1, 5), "a")

	s, ok := m.Span(h)
	require.True(t, ok)
	require.Equal(t, "[1, 5)", s.String())

	require.True(t, m.Remove(h))
	_, ok = m.Span(h)
	require.False(t, ok)
}

func TestSpanMapIterator(t *testing.T) {
	m := New[int, string]()
	m.Insert(HalfOpen(0, 10), "a")
	m.Insert(HalfOpen(5, 15), "b")
	m.Insert(HalfOpen(20, 30), "c")

	var got []string
	it := m.Get(7)
	for ; it.Valid(); it.Next() {
		require.True(t, it.Span().Contains(7))
		got = append(got, it.Value())
	}
	sort.Strings(got)
	require.Equal(t, []string{"a", "b"}, got)

	// First restarts iteration.
	it.First()
	require.True(t, it.Valid())

	// Handles from the iterator are usable with Remove.
	it = m.Get(7)
	require.True(t, m.Remove(it.Handle()))
	require.Equal(t, 2, m.Len())
	require.Len(t, m.GetAll(7), 1)
}

func TestSpanMapSeqs(t *testing.T) {
	m := New[int, string]()
	m.Insert(HalfOpen(0, 10), "a")
	m.Insert(HalfOpen(5, 15), "b")

	var vals []string
	for v := range m.Values(7) {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	require.Equal(t, []string{"a", "b"}, vals)

	for s, v := range m.At(7) {
		require.True(t, s.Contains(7), "%s does not contain 7 (value %q)", s, v)
	}

	// Early termination.
	n := 0
	for range m.Values(7) {
		n++
		break
	}
	require.Equal(t, 1, n)
}

func TestSpanMapAscend(t *testing.T) {
	m := New[int, string]()
	m.Insert(HalfOpen(5, 15), "b")
	m.Insert(HalfOpen(0, 10), "a")
	m.Insert(AtMost(3), "low")
	m.Insert(HalfOpen(0, 2), "a2")

	var got []string
	for s, v := range m.Ascend() {
		_ = s
		got = append(got, v)
	}
	// Start-bound order, insertion order breaking the tie between the two
	// spans starting at 0.
	require.Equal(t, []string{"low", "a", "a2", "b"}, got)

	// Early termination.
	n := 0
	for range m.Ascend() {
		n++
		if n == 2 {
			break
		}
	}
	require.Equal(t, 2, n)
}

func TestSpanMapStrings(t *testing.T) {
	m := New[string, int]()
	m.Insert(HalfOpen("apple", "banana"), 1)
	m.Insert(AtLeast("cherry"), 2)

	require.Equal(t, []int{1}, m.GetAll("apricot"))
	require.Empty(t, m.GetAll("banana"))
	require.Equal(t, []int{2}, m.GetAll("zebra"))
}

// TestSpanMapRandomized cross-checks the map against a brute-force list of
// live entries under a random workload.
func TestSpanMapRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	randSpan := func() Span[int] {
		start := rng.Intn(1000)
		width := rng.Intn(100)
		switch rng.Intn(8) {
		case 0:
			return Closed(start, start+width)
		case 1:
			return Open(start, start+width)
		case 2:
			return AtLeast(start)
		case 3:
			return LessThan(start)
		default:
			return HalfOpen(start, start+width)
		}
	}

	type liveEntry struct {
		span   Span[int]
		value  int
		handle EntryHandle
	}

	m := New[int, int]()
	var live []liveEntry
	const ops = 5000
	for i := 0; i < ops; i++ {
		switch {
		case len(live) == 0 || rng.Intn(10) < 6:
			s := randSpan()
			h := m.Insert(s, i)
			live = append(live, liveEntry{span: s, value: i, handle: h})
		default:
			j := rng.Intn(len(live))
			require.True(t, m.Remove(live[j].handle))
			require.False(t, m.Remove(live[j].handle))
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
		}
		require.Equal(t, len(live), m.Len())

		if i%50 == 0 {
			key := rng.Intn(1100) - 50
			var want []int
			for _, e := range live {
				if e.span.Contains(key) {
					want = append(want, e.value)
				}
			}
			got := m.GetAll(key)
			sort.Ints(want)
			sort.Ints(got)
			require.Equal(t, want, got, "stab(%d) diverged at op %d", key, i)
		}
	}
}

func BenchmarkSpanMapInsert(b *testing.B) {
	rng := rand.New(rand.NewSource(0))
	starts := make([]int, b.N)
	for i := range starts {
		starts[i] = rng.Intn(1 << 20)
	}
	b.ResetTimer()
	m := New[int, int]()
	for i := 0; i < b.N; i++ {
		m.Insert(HalfOpen(starts[i], starts[i]+100), i)
	}
}

func BenchmarkSpanMapGetAll(b *testing.B) {
	forBenchmarkSizes(b, func(b *testing.B, count int) {
		rng := rand.New(rand.NewSource(0))
		m := New[int, int]()
		for i := 0; i < count; i++ {
			start := rng.Intn(1 << 20)
			m.Insert(HalfOpen(start, start+100), i)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			for it := m.Get(rng.Intn(1 << 20)); it.Valid(); it.Next() {
			}
		}
	})
}
