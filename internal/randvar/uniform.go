// Copyright 2025 The span-map Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package randvar

import "golang.org/x/exp/rand"

// Uniform generates draws from a uniform distribution over [min, max].
type Uniform struct {
	min, max uint64
}

// NewUniform constructs a new Uniform generator over [min, max].
func NewUniform(min, max uint64) *Uniform {
	return &Uniform{min: min, max: max}
}

// Uint64 returns a random value between min and max, drawn from a uniform
// distribution.
func (g *Uniform) Uint64(rng *rand.Rand) uint64 {
	return rng.Uint64n(g.max-g.min+1) + g.min
}
