// Copyright 2025 The span-map Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package main

import (
	"fmt"
	"log"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	spanmap "github.com/drmingdrmer/span-map"
	"github.com/drmingdrmer/span-map/internal/randvar"
)

const (
	minLatency = 10 * time.Nanosecond
	maxLatency = 10 * time.Second
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "run a mixed read/write workload against a span map",
	Args:  cobra.ExactArgs(0),
	Run:   runBench,
}

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), 1)
}

func record(h *hdrhistogram.Histogram, elapsed time.Duration) {
	if elapsed < minLatency {
		elapsed = minLatency
	} else if elapsed > maxLatency {
		elapsed = maxLatency
	}
	if err := h.RecordValue(elapsed.Nanoseconds()); err != nil {
		log.Fatalf("recording value: %s", err)
	}
}

func newKeyGen() randvar.Dynamic {
	switch distribution {
	case "uniform":
		return randvar.NewUniform(0, keyspace-1)
	case "zipf":
		z, err := randvar.NewZipf(0, keyspace-1, 0.99)
		if err != nil {
			log.Fatal(err)
		}
		return z
	default:
		log.Fatalf("unknown distribution %q", distribution)
		return nil
	}
}

func runBench(cmd *cobra.Command, args []string) {
	rng := randvar.NewRand(seed)
	keyGen := newKeyGen()
	widthGen := randvar.NewUniform(1, spanWidth)

	m := spanmap.New[uint64, int]()
	handles := make([]spanmap.EntryHandle, 0, benchCount)
	insertSpan := func(i int) {
		start := keyGen.Uint64(rng)
		h := m.Insert(spanmap.HalfOpen(start, start+widthGen.Uint64(rng)), i)
		handles = append(handles, h)
	}
	for i := 0; i < benchCount; i++ {
		insertSpan(i)
	}

	fmt.Printf("preloaded %d spans over keyspace [0, %d), %s keys, span width <= %d\n",
		benchCount, keyspace, distribution, spanWidth)

	readHist := newHistogram()
	writeHist := newHistogram()

	var matched int
	var throughput []float64
	tickOps := 0
	tickStart := time.Now()
	start := tickStart

	for i := 0; i < benchOps; i++ {
		opStart := time.Now()
		if int(rng.Uint64n(100)) < readPercent {
			for v := range m.Values(keyGen.Uint64(rng)) {
				_ = v
				matched++
			}
			record(readHist, time.Since(opStart))
		} else {
			// Alternate removing a random live entry and inserting a
			// replacement, holding the map size steady.
			if i%2 == 0 && len(handles) > 0 {
				j := int(rng.Uint64n(uint64(len(handles))))
				m.Remove(handles[j])
				handles[j] = handles[len(handles)-1]
				handles = handles[:len(handles)-1]
			} else {
				insertSpan(i)
			}
			record(writeHist, time.Since(opStart))
		}

		tickOps++
		if since := time.Since(tickStart); since >= time.Second {
			throughput = append(throughput, float64(tickOps)/since.Seconds())
			if verbose {
				log.Printf("%8.1fs: %9.1f ops/sec", time.Since(start).Seconds(),
					float64(tickOps)/since.Seconds())
			}
			tickOps = 0
			tickStart = time.Now()
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("\nran %d ops in %.1fs (%.1f ops/sec), %d values matched\n",
		benchOps, elapsed.Seconds(), float64(benchOps)/elapsed.Seconds(), matched)
	fmt.Printf("final map size: %d entries\n\n", m.Len())

	fmt.Printf("%-8s %10s %10s %10s %10s %10s\n",
		"", "ops", "p50(ms)", "p95(ms)", "p99(ms)", "pMax(ms)")
	for _, h := range []struct {
		name string
		hist *hdrhistogram.Histogram
	}{
		{"read", readHist},
		{"write", writeHist},
	} {
		fmt.Printf("%-8s %10d %10.3f %10.3f %10.3f %10.3f\n",
			h.name, h.hist.TotalCount(),
			time.Duration(h.hist.ValueAtQuantile(50)).Seconds()*1000,
			time.Duration(h.hist.ValueAtQuantile(95)).Seconds()*1000,
			time.Duration(h.hist.ValueAtQuantile(99)).Seconds()*1000,
			time.Duration(h.hist.ValueAtQuantile(100)).Seconds()*1000)
	}

	if len(throughput) >= 2 {
		fmt.Printf("\nthroughput (ops/sec):\n%s\n",
			asciigraph.Plot(throughput, asciigraph.Height(10)))
	}
}
