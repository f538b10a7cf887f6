// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/s2etrace/exectrace"
	"github.com/spf13/cobra"
)

// traceT implements the execution trace introspection tools.
type traceT struct {
	Root     *cobra.Command
	Dump     *cobra.Command
	Describe *cobra.Command

	opts    *Options
	project *projectFlags
	trace   traceFlags
	limit   int
}

func newTrace(opts *Options, project *projectFlags) *traceT {
	t := &traceT{
		opts:    opts,
		project: project,
	}
	t.Root = &cobra.Command{
		Use:   "trace",
		Short: "execution trace introspection tools",
	}
	t.Dump = &cobra.Command{
		Use:   "dump",
		Short: "print the execution trace as a state tree",
		Long: `
Print the items of the execution trace arranged by state: the items of each
state produced by a fork are indented under that fork.
`,
		Args: cobra.NoArgs,
		Run:  t.runDump,
	}
	t.Describe = &cobra.Command{
		Use:   "describe",
		Short: "print an annotated dump of the execution trace frames",
		Args:  cobra.NoArgs,
		Run:   t.runDescribe,
	}

	t.Root.AddCommand(t.Dump, t.Describe)
	t.trace.register(t.Dump, true /* filter */)
	t.trace.register(t.Describe, false /* filter */)
	t.Describe.Flags().IntVar(&t.limit, "limit", 0,
		"maximum number of frames to describe per file (0 describes all)")
	return t
}

func (t *traceT) runDump(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	p, err := t.project.load()
	if err != nil {
		fatal(stderr, err)
		return
	}
	indir, err := p.InputDir(t.trace.indir)
	if err != nil {
		fatal(stderr, err)
		return
	}
	tree, err := exectrace.Load(indir, exectrace.LoadOptions{
		Logger:  t.opts.Logger,
		PathIDs: t.trace.stateIDs(),
	})
	if err != nil {
		fatal(stderr, err)
		return
	}
	if tree.Empty() {
		fmt.Fprintln(stdout, "empty trace")
		return
	}
	tree.Fprint(stdout)
}

func (t *traceT) runDescribe(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	p, err := t.project.load()
	if err != nil {
		fatal(stderr, err)
		return
	}
	indir, err := p.InputDir(t.trace.indir)
	if err != nil {
		fatal(stderr, err)
		return
	}
	paths, err := exectrace.FindTraceFiles(indir)
	if err != nil {
		fatal(stderr, err)
		return
	}
	for _, path := range paths {
		data, err := readTraceFile(path)
		if err != nil {
			fatal(stderr, err)
			return
		}
		fmt.Fprintf(stdout, "%s\n", path)
		fmt.Fprint(stdout, exectrace.Describe(data, t.limit))
	}
}

func readTraceFile(path string) (_ []byte, err error) {
	f, err := exectrace.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.CombineErrors(err, f.Close())
	}()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return data, nil
}
