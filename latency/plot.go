// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package latency

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

// Timeline returns the mean execution time, in milliseconds, of the calls
// that began in each of n equal slices of the trace's clock_begin range.
// A slice in which no call began carries the value of the slice before it.
func Timeline(rs Records, n int) []float64 {
	if len(rs) == 0 || n < 1 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range rs {
		lo = min(lo, rs[i].ClockBegin)
		hi = max(hi, rs[i].ClockBegin)
	}
	sums := make([]float64, n)
	counts := make([]int, n)
	for i := range rs {
		b := 0
		if hi > lo {
			b = min(int((rs[i].ClockBegin-lo)/(hi-lo)*float64(n)), n-1)
		}
		sums[b] += rs[i].ExecutionTime * 1e3
		counts[b]++
	}
	values := make([]float64, n)
	for b := range values {
		switch {
		case counts[b] > 0:
			values[b] = sums[b] / float64(counts[b])
		case b > 0:
			values[b] = values[b-1]
		}
	}
	return values
}

// Plot returns an ASCII plot of the timeline with the given width and
// height, or "" if there are no records.
func Plot(rs Records, width, height int) string {
	values := Timeline(rs, width)
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Caption("mean execution time (ms) over clock_begin"))
}
