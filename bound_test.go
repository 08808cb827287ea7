// Copyright 2025 The span-map Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package spanmap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCmpStart(t *testing.T) {
	testCases := []struct {
		a, b Bound[int]
		want int
	}{
		{Unbounded[int](), Unbounded[int](), 0},
		{Unbounded[int](), Included(math.MinInt), -1},
		{Unbounded[int](), Excluded(math.MinInt), -1},
		{Included(1), Included(1), 0},
		{Excluded(1), Excluded(1), 0},
		{Included(1), Included(2), -1},
		{Excluded(1), Included(2), -1},
		// At equal keys the inclusive start admits the key itself, so it
		// sorts first.
		{Included(5), Excluded(5), -1},
		{Excluded(5), Included(6), -1},
	}
	for _, c := range testCases {
		require.Equal(t, c.want, cmpStart(c.a, c.b), "cmpStart(%v, %v)", c.a, c.b)
		require.Equal(t, -c.want, cmpStart(c.b, c.a), "cmpStart(%v, %v)", c.b, c.a)
	}
}

func TestCmpEnd(t *testing.T) {
	testCases := []struct {
		a, b Bound[int]
		want int
	}{
		{Unbounded[int](), Unbounded[int](), 0},
		{Unbounded[int](), Included(math.MaxInt), 1},
		{Unbounded[int](), Excluded(math.MaxInt), 1},
		{Included(1), Included(1), 0},
		{Excluded(1), Excluded(1), 0},
		{Included(1), Included(2), -1},
		{Included(1), Excluded(2), -1},
		// At equal keys the exclusive end stops short of the key, so it
		// sorts first.
		{Excluded(5), Included(5), -1},
		{Included(5), Excluded(6), -1},
	}
	for _, c := range testCases {
		require.Equal(t, c.want, cmpEnd(c.a, c.b), "cmpEnd(%v, %v)", c.a, c.b)
		require.Equal(t, -c.want, cmpEnd(c.b, c.a), "cmpEnd(%v, %v)", c.b, c.a)
	}
}

func TestBoundContains(t *testing.T) {
	testCases := []struct {
		b              Bound[int]
		key            int
		asStart, asEnd bool
	}{
		{Included(5), 4, false, true},
		{Included(5), 5, true, true},
		{Included(5), 6, true, false},
		{Excluded(5), 4, false, true},
		{Excluded(5), 5, false, false},
		{Excluded(5), 6, true, false},
		{Unbounded[int](), math.MinInt, true, true},
		{Unbounded[int](), math.MaxInt, true, true},
	}
	for _, c := range testCases {
		require.Equal(t, c.asStart, containsAsStart(c.b, c.key),
			"containsAsStart(%v, %d)", c.b, c.key)
		require.Equal(t, c.asEnd, containsAsEnd(c.b, c.key),
			"containsAsEnd(%v, %d)", c.b, c.key)
	}
}

func TestBoundKey(t *testing.T) {
	k, ok := Included(7).Key()
	require.True(t, ok)
	require.Equal(t, 7, k)
	k, ok = Excluded(7).Key()
	require.True(t, ok)
	require.Equal(t, 7, k)
	_, ok = Unbounded[int]().Key()
	require.False(t, ok)

	require.True(t, Unbounded[int]().IsUnbounded())
	require.False(t, Included(0).IsUnbounded())
}
