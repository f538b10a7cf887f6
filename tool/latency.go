// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/s2etrace/internal/base"
	"github.com/cockroachdb/s2etrace/latency"
	"github.com/spf13/cobra"
)

// latencyT implements the latency trace tools.
type latencyT struct {
	Root     *cobra.Command
	Extract  *cobra.Command
	Summary  *cobra.Command
	Plot     *cobra.Command
	Describe *cobra.Command

	opts    *Options
	project *projectFlags
	trace   traceFlags
	outdir  string
	top     int
	width   int
	height  int
	record  int64
}

func newLatency(opts *Options, project *projectFlags) *latencyT {
	l := &latencyT{
		opts:    opts,
		project: project,
	}
	l.Root = &cobra.Command{
		Use:   "latency",
		Short: "latency trace tools",
	}
	l.Extract = &cobra.Command{
		Use:   "extract",
		Short: "convert the latency trace to CSV",
		Long: `
Convert the records of LatencyTracer.dat in a results directory to
LatencyTracer.csv, ordered by state id. A trace that ends in the middle of a
record is reported and the complete records before it are still written.
`,
		Args: cobra.NoArgs,
		Run:  l.runExtract,
	}
	l.Summary = &cobra.Command{
		Use:   "summary",
		Short: "print per-function execution time statistics",
		Args:  cobra.NoArgs,
		Run:   l.runSummary,
	}
	l.Plot = &cobra.Command{
		Use:   "plot",
		Short: "plot the mean execution time over the run",
		Args:  cobra.NoArgs,
		Run:   l.runPlot,
	}
	l.Describe = &cobra.Command{
		Use:   "describe",
		Short: "print an annotated dump of one latency record",
		Args:  cobra.NoArgs,
		Run:   l.runDescribe,
	}

	l.Root.AddCommand(l.Extract, l.Summary, l.Plot, l.Describe)
	for _, cmd := range []*cobra.Command{l.Extract, l.Summary, l.Plot, l.Describe} {
		l.trace.register(cmd, false /* filter */)
	}
	l.Extract.Flags().StringVar(&l.outdir, "outdir", "",
		"directory to write the CSV file to (default: the input directory)")
	l.Summary.Flags().IntVar(&l.top, "top", 20, "number of functions to show (0 shows all)")
	l.Plot.Flags().IntVar(&l.width, "width", 60, "number of points to plot")
	l.Plot.Flags().IntVar(&l.height, "height", 10, "plot height in lines")
	l.Describe.Flags().Int64Var(&l.record, "record", 0, "index of the record to describe")
	return l
}

// tracePath returns the path of the latency trace in the input directory.
func (l *latencyT) tracePath(p *Project) (indir, path string, _ error) {
	indir, err := p.InputDir(l.trace.indir)
	if err != nil {
		return "", "", err
	}
	path = base.MakeFilepath(indir, base.FileTypeLatencyTrace)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", "", errors.WithHint(errors.Newf("%s does not exist", path),
				"enable the LatencyTracer plugin and rerun the analysis")
		}
		return "", "", err
	}
	return indir, path, nil
}

// load decodes the latency trace and sorts its records. Truncation is logged
// and the records before it are returned.
func (l *latencyT) load() (*Project, string, latency.Records, error) {
	p, err := l.project.load()
	if err != nil {
		return nil, "", nil, err
	}
	indir, path, err := l.tracePath(p)
	if err != nil {
		return nil, "", nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", nil, err
	}
	defer f.Close()
	rs, err := latency.DecodeAll(f)
	switch {
	case errors.Is(err, latency.ErrTruncated):
		l.opts.Logger.Errorf("%s: %s", path, err)
	case err != nil:
		return nil, "", nil, errors.Wrapf(err, "reading %s", path)
	}
	if l.project.verbose {
		l.opts.Logger.Infof("read %d latency records from %s", len(rs), path)
	}
	rs.Sort()
	return p, indir, rs, nil
}

func (l *latencyT) runExtract(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	p, indir, rs, err := l.load()
	if err != nil {
		fatal(stderr, err)
		return
	}
	outdir, err := p.OutputDir(l.outdir, indir)
	if err != nil {
		fatal(stderr, err)
		return
	}
	path := base.MakeFilepath(outdir, base.FileTypeLatencyCSV)
	if err := latency.WriteCSVFile(path, rs); err != nil {
		fatal(stderr, err)
		return
	}
	fmt.Fprintf(stdout, "wrote %d latency records to %s\n", len(rs), path)
}

func (l *latencyT) runSummary(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	_, _, rs, err := l.load()
	if err != nil {
		fatal(stderr, err)
		return
	}
	latency.Summarize(rs).Render(stdout, l.top)
}

func (l *latencyT) runPlot(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	_, _, rs, err := l.load()
	if err != nil {
		fatal(stderr, err)
		return
	}
	if len(rs) == 0 {
		fmt.Fprintln(stdout, "no latency records")
		return
	}
	fmt.Fprintln(stdout, latency.Plot(rs, l.width, l.height))
}

func (l *latencyT) runDescribe(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	p, err := l.project.load()
	if err != nil {
		fatal(stderr, err)
		return
	}
	_, path, err := l.tracePath(p)
	if err != nil {
		fatal(stderr, err)
		return
	}
	f, err := os.Open(path)
	if err != nil {
		fatal(stderr, err)
		return
	}
	defer f.Close()
	b, err := latency.ReadRecordAt(f, l.record)
	if err != nil && !errors.Is(err, latency.ErrTruncated) {
		fatal(stderr, err)
		return
	}
	if err != nil {
		l.opts.Logger.Errorf("%s: %s", path, err)
	}
	fmt.Fprintf(stdout, "%s: record %d\n", path, l.record)
	fmt.Fprint(stdout, latency.Describe(b, l.record*latency.RecordSize))
}
