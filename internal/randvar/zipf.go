// Copyright 2025 The span-map Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package randvar

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

// Zipf generates draws from a Zipf distribution over [min, max]. The
// algorithm follows "Quickly Generating Billion-Record Synthetic Databases"
// by Gray, Sundaresan, Englert, Baclawski, and Weinberger, SIGMOD 1994.
// Unlike rand.Zipf, it supports any theta != 1.
type Zipf struct {
	min, max     uint64
	theta, alpha float64
	eta, zetaN   float64
}

// NewZipf constructs a new Zipf generator over [min, max] with skew theta.
// Returns an error if the parameters are outside the accepted range.
func NewZipf(min, max uint64, theta float64) (*Zipf, error) {
	if min > max {
		return nil, fmt.Errorf("min %d > max %d", min, max)
	}
	if theta < 0.0 || theta == 1.0 {
		return nil, fmt.Errorf("0 <= theta, and theta != 1")
	}
	z := &Zipf{
		min:   min,
		max:   max,
		theta: theta,
		alpha: 1.0 / (1.0 - theta),
	}
	zeta2 := computeZeta(2, theta)
	z.zetaN = computeZeta(max+1-min, theta)
	z.eta = (1 - math.Pow(2.0/float64(max+1-min), 1.0-theta)) / (1.0 - zeta2/z.zetaN)
	return z, nil
}

// computeZeta computes
// zeta(n, theta) = (1/1)^theta + (1/2)^theta + ... + (1/n)^theta.
func computeZeta(n uint64, theta float64) float64 {
	var sum float64
	for i := uint64(1); i <= n; i++ {
		sum += 1.0 / math.Pow(float64(i), theta)
	}
	return sum
}

// Uint64 draws a new value between min and max, with probabilities
// according to the Zipf distribution.
func (z *Zipf) Uint64(rng *rand.Rand) uint64 {
	u := rng.Float64()
	uz := u * z.zetaN
	if uz < 1.0 {
		return z.min
	}
	if uz < 1.0+math.Pow(0.5, z.theta) {
		return z.min + 1
	}
	spread := float64(z.max + 1 - z.min)
	return z.min + uint64(int64(spread*math.Pow(z.eta*u-z.eta+1.0, z.alpha)))
}
