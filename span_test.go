// Copyright 2025 The span-map Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package spanmap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpanString(t *testing.T) {
	testCases := []struct {
		s    Span[int]
		want string
	}{
		{Closed(1, 5), "[1, 5]"},
		{HalfOpen(1, 5), "[1, 5)"},
		{Open(1, 5), "(1, 5)"},
		{NewSpan(Excluded(1), Included(5)), "(1, 5]"},
		{Point(7), "[7, 7]"},
		{AtLeast(3), "[3, ∞)"},
		{GreaterThan(3), "(3, ∞)"},
		{AtMost(3), "(-∞, 3]"},
		{LessThan(3), "(-∞, 3)"},
		{All[int](), "(-∞, ∞)"},
	}
	for _, c := range testCases {
		require.Equal(t, c.want, c.s.String())
		require.Equal(t, c.want, fmt.Sprint(c.s))
	}
}

func TestSpanContains(t *testing.T) {
	testCases := []struct {
		s    Span[int]
		key  int
		want bool
	}{
		{HalfOpen(5, 10), 4, false},
		{HalfOpen(5, 10), 5, true},
		{HalfOpen(5, 10), 9, true},
		{HalfOpen(5, 10), 10, false},
		{Closed(5, 10), 10, true},
		{Open(5, 10), 5, false},
		{Open(5, 10), 6, true},
		{Point(7), 7, true},
		{Point(7), 8, false},
		{AtLeast(3), 2, false},
		{AtLeast(3), 3, true},
		{AtMost(3), 3, true},
		{AtMost(3), 4, false},
		{LessThan(3), 2, true},
		{LessThan(3), 3, false},
		{All[int](), -1 << 62, true},
		// Empty spans contain nothing.
		{HalfOpen(5, 5), 5, false},
		{Closed(5, 3), 4, false},
	}
	for _, c := range testCases {
		require.Equal(t, c.want, c.s.Contains(c.key), "%s.Contains(%d)", c.s, c.key)
	}
}

func TestSpanEmpty(t *testing.T) {
	testCases := []struct {
		s    Span[int]
		want bool
	}{
		{Closed(1, 5), false},
		{Closed(5, 5), false},
		{HalfOpen(5, 5), true},
		{Open(5, 5), true},
		{NewSpan(Excluded(5), Included(5)), true},
		{Closed(5, 3), true},
		{Open(3, 5), false},
		{AtLeast(5), false},
		{AtMost(5), false},
		{All[int](), false},
		// Adjacent keys with both endpoints excluded: (5, 6) is empty over
		// the integers, but the container cannot know that K is discrete,
		// so it is only unmatchable, not Empty.
		{Open(5, 6), false},
	}
	for _, c := range testCases {
		require.Equal(t, c.want, c.s.Empty(), "%s.Empty()", c.s)
	}
}
