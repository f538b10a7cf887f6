// Copyright 2019 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package tool implements the s2etrace commands: extraction of test cases and
// latency records from the results of an analysis run, and introspection of
// the raw traces.
package tool

import (
	"github.com/cockroachdb/s2etrace/internal/base"
	"github.com/spf13/cobra"
)

// Options configures the tools.
type Options struct {
	// Logger receives progress messages. Command output proper is written to
	// the command's output streams.
	Logger base.Logger
}

// EnsureDefaults fills in zero values with their defaults and returns o.
func (o *Options) EnsureDefaults() *Options {
	if o.Logger == nil {
		o.Logger = base.DefaultLogger{}
	}
	return o
}

// T is the container for all of the tools.
type T struct {
	Commands []*cobra.Command
	opts     Options
	project  projectFlags
	testcase *testcaseT
	latency  *latencyT
	trace    *traceT
}

// New creates a new set of tools.
func New(opts Options) *T {
	t := &T{opts: *opts.EnsureDefaults()}
	t.testcase = newTestCase(&t.opts, &t.project)
	t.latency = newLatency(&t.opts, &t.project)
	t.trace = newTrace(&t.opts, &t.project)
	t.Commands = []*cobra.Command{
		t.testcase.Root,
		t.latency.Root,
		t.trace.Root,
	}
	for _, cmd := range t.Commands {
		t.project.register(cmd)
	}
	return t
}
