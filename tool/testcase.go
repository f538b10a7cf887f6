// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/s2etrace/exectrace"
	"github.com/cockroachdb/s2etrace/testcase"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// testcaseT implements the test case tools.
type testcaseT struct {
	Root    *cobra.Command
	Extract *cobra.Command
	List    *cobra.Command

	opts    *Options
	project *projectFlags
	trace   traceFlags
	outdir  string
	format  formatFlag
	quiet   bool
}

func newTestCase(opts *Options, project *projectFlags) *testcaseT {
	c := &testcaseT{
		opts:    opts,
		project: project,
	}
	c.Root = &cobra.Command{
		Use:   "testcase",
		Short: "test case extraction tools",
	}
	c.Extract = &cobra.Command{
		Use:   "extract",
		Short: "extract the test cases of an execution trace",
		Long: `
Extract every test case recorded in the execution trace of a results
directory, writing one document per test case (testcase-000000.json,
testcase-000001.json, ...) ordered by state id. Each test case is also
printed unless --quiet is given. Documents left over from an earlier
extraction that found more test cases are reported.
`,
		Args: cobra.NoArgs,
		Run:  c.runExtract,
	}
	c.List = &cobra.Command{
		Use:   "ls",
		Short: "list the test cases of an execution trace",
		Args:  cobra.NoArgs,
		Run:   c.runList,
	}

	c.Root.AddCommand(c.Extract, c.List)
	for _, cmd := range []*cobra.Command{c.Extract, c.List} {
		c.trace.register(cmd, true /* filter */)
	}
	c.Extract.Flags().StringVar(&c.outdir, "outdir", "",
		"directory to write the test cases to (default: the input directory)")
	c.Extract.Flags().Var(&c.format, "format", "test case document format (json or yaml)")
	c.Extract.Flags().BoolVarP(&c.quiet, "quiet", "q", false, "do not print the test cases")
	return c
}

// extract loads the trace of the input directory and returns its test cases,
// sorted. An empty trace or a trace without test cases is an error.
func (c *testcaseT) extract(indir string) (*testcase.Set, error) {
	start := crtime.NowMono()
	tree, err := exectrace.Load(indir, exectrace.LoadOptions{
		Logger:  c.opts.Logger,
		PathIDs: c.trace.stateIDs(),
	})
	if err != nil {
		return nil, err
	}
	if tree.Empty() {
		return nil, errors.Newf("the execution trace in %s is empty", indir)
	}
	set := &testcase.Set{}
	testcase.Extract(tree, set)
	if set.Len() == 0 {
		return nil, errors.WithHint(
			errors.Newf("the execution trace in %s holds no test cases", indir),
			"enable the TestCaseGenerator plugin and rerun the analysis")
	}
	set.Sort()
	if c.project.verbose {
		c.opts.Logger.Infof("extracted %d test cases in %s", set.Len(), start.Elapsed())
	}
	return set, nil
}

func (c *testcaseT) runExtract(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	p, err := c.project.load()
	if err != nil {
		fatal(stderr, err)
		return
	}
	indir, err := p.InputDir(c.trace.indir)
	if err != nil {
		fatal(stderr, err)
		return
	}
	outdir, err := p.OutputDir(c.outdir, indir)
	if err != nil {
		fatal(stderr, err)
		return
	}
	set, err := c.extract(indir)
	if err != nil {
		fatal(stderr, err)
		return
	}
	paths, err := testcase.WriteAll(outdir, set, testcase.WriteOptions{
		Format: c.format.format,
		Logger: c.opts.Logger,
		Print:  !c.quiet,
		Out:    stdout,
	})
	if err != nil {
		fatal(stderr, err)
		return
	}
	fmt.Fprintf(stdout, "extracted %d test cases\n", len(paths))
	for _, path := range paths {
		fmt.Fprintf(stdout, "  %s\n", path)
	}
}

func (c *testcaseT) runList(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	p, err := c.project.load()
	if err != nil {
		fatal(stderr, err)
		return
	}
	indir, err := p.InputDir(c.trace.indir)
	if err != nil {
		fatal(stderr, err)
		return
	}
	set, err := c.extract(indir)
	if err != nil {
		fatal(stderr, err)
		return
	}
	tbl := tablewriter.NewWriter(stdout)
	tbl.SetHeader([]string{"#", "State", "Keys", "Size", "First key"})
	for i, tc := range set.All() {
		var size int
		first := ""
		for j, kv := range tc.KeyValues {
			size += kv.NumBytes()
			if j == 0 {
				first = kv.Key
			}
		}
		tbl.Append([]string{
			strconv.Itoa(i),
			strconv.FormatUint(uint64(tc.StateID), 10),
			strconv.Itoa(len(tc.KeyValues)),
			string(crhumanize.Bytes(int64(size), crhumanize.Compact, crhumanize.OmitI)),
			first,
		})
	}
	tbl.Render()
}
