// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package latency

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/olekukonko/tablewriter"
)

// Bounds of the per-function latency histograms. Calls longer than
// maxLatency are recorded as maxLatency.
const (
	minLatency = time.Nanosecond
	maxLatency = time.Hour
)

// FunctionStats aggregates the calls to one function.
type FunctionStats struct {
	Address uint64
	Calls   int64
	// Total is the exact sum of the execution times.
	Total time.Duration
	// The quantiles are read from a histogram with 3 significant digits.
	P50 time.Duration
	P99 time.Duration
	Max time.Duration

	hist *hdrhistogram.Histogram
}

// Mean returns the average execution time of a call.
func (s *FunctionStats) Mean() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

// Summary holds the per-function statistics of a latency trace.
type Summary struct {
	// Functions is ordered by descending total time, then by address.
	Functions []FunctionStats
	Records   int
	Total     time.Duration
	// Clamped counts the calls whose execution time fell outside the
	// histogram bounds.
	Clamped int
}

// Summarize groups the records by function address. The records are not
// modified.
func Summarize(rs Records) *Summary {
	s := &Summary{Records: len(rs)}
	byAddr := make(map[uint64]*FunctionStats)
	for i := range rs {
		r := &rs[i]
		fs, ok := byAddr[r.Address]
		if !ok {
			fs = &FunctionStats{
				Address: r.Address,
				hist:    hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), 3),
			}
			byAddr[r.Address] = fs
		}
		d, clamped := toDuration(r.ExecutionTime)
		if clamped {
			s.Clamped++
		}
		fs.Calls++
		fs.Total += d
		s.Total += d
		_ = fs.hist.RecordValue(max(d.Nanoseconds(), minLatency.Nanoseconds()))
	}
	s.Functions = make([]FunctionStats, 0, len(byAddr))
	for _, fs := range byAddr {
		fs.P50 = time.Duration(fs.hist.ValueAtPercentile(50))
		fs.P99 = time.Duration(fs.hist.ValueAtPercentile(99))
		fs.Max = time.Duration(fs.hist.Max())
		s.Functions = append(s.Functions, *fs)
	}
	slices.SortFunc(s.Functions, func(a, b FunctionStats) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Address, b.Address)
	})
	return s
}

// toDuration converts an execution time in seconds, clamping it to the
// histogram bounds. Negative and NaN times count as zero.
func toDuration(seconds float64) (time.Duration, bool) {
	ns := seconds * float64(time.Second)
	switch {
	case math.IsNaN(ns) || ns < 0:
		return 0, true
	case ns > float64(maxLatency):
		return maxLatency, true
	}
	return time.Duration(math.Round(ns)), false
}

// Render writes the summary as a table, limited to the top functions when
// limit is positive.
func (s *Summary) Render(w io.Writer, limit int) {
	fns := s.Functions
	if limit > 0 && len(fns) > limit {
		fns = fns[:limit]
	}
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Function", "Calls", "Total", "Share", "Mean", "P50", "P99", "Max"})
	for i := range fns {
		fs := &fns[i]
		tbl.Append([]string{
			formatAddress(fs.Address),
			string(crhumanize.Count(fs.Calls, crhumanize.Compact)),
			fs.Total.String(),
			fmt.Sprint(crhumanize.Percent(fs.Total.Seconds(), s.Total.Seconds())),
			fs.Mean().String(),
			fs.P50.String(),
			fs.P99.String(),
			fs.Max.String(),
		})
	}
	tbl.Render()
	fmt.Fprintf(w, "%d records, %d functions, %s total\n", s.Records, len(s.Functions), s.Total)
	if s.Clamped > 0 {
		fmt.Fprintf(w, "%d execution times were outside [%s, %s] and were clamped\n",
			s.Clamped, time.Duration(0), maxLatency)
	}
}
