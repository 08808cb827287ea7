// Copyright 2025 The span-map Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	benchCount   int
	benchOps     int
	readPercent  int
	spanWidth    uint64
	keyspace     uint64
	distribution string
	seed         uint64
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "spanmap [command] (flags)",
	Short: "spanmap benchmarking tool",
	Long:  ``,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntVarP(
		&benchCount, "count", "c", 100000, "number of spans to preload")
	benchCmd.Flags().IntVarP(
		&benchOps, "num-ops", "n", 1000000, "number of operations to run")
	benchCmd.Flags().IntVar(
		&readPercent, "read-percent", 95,
		"percent of operations that are stabbing queries; the rest alternate insert and remove")
	benchCmd.Flags().Uint64Var(
		&spanWidth, "span-width", 100, "maximum width of generated spans")
	benchCmd.Flags().Uint64Var(
		&keyspace, "keyspace", 1000000, "size of the key space spans are drawn from")
	benchCmd.Flags().StringVar(
		&distribution, "distribution", "uniform", "key distribution (uniform or zipf)")
	benchCmd.Flags().Uint64Var(
		&seed, "seed", 1, "random number generator seed")
	benchCmd.Flags().BoolVarP(
		&verbose, "verbose", "v", false, "print per-second progress")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
