// Copyright 2025 The span-map Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package randvar generates random draws from uniform and Zipf
// distributions, for synthesizing span workloads.
package randvar

import "golang.org/x/exp/rand"

// NewRand creates a new random number generator seeded with seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Dynamic is a random number generator over [0, max).
type Dynamic interface {
	Uint64(rng *rand.Rand) uint64
}
