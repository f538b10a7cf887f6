// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package latency

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
)

// CSVHeader holds the column names of the CSV output.
var CSVHeader = []string{
	"state_id",
	"address",
	"return_address",
	"caller_address",
	"execution_time",
	"activity_id",
	"parent_id",
	"clock_begin",
}

// CSVWriter writes records as CSV rows. The header row is written before the
// first record, so an empty collection produces empty output. Rows end in
// "\r\n".
type CSVWriter struct {
	w      *csv.Writer
	header bool
	row    [8]string
}

// NewCSVWriter returns a CSVWriter writing to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	return &CSVWriter{w: cw}
}

// Write writes one record, preceded by the header if this is the first.
func (w *CSVWriter) Write(r Record) error {
	if !w.header {
		if err := w.w.Write(CSVHeader); err != nil {
			return err
		}
		w.header = true
	}
	w.row = [8]string{
		strconv.FormatInt(int64(r.StateID), 10),
		formatAddress(r.Address),
		formatAddress(r.ReturnAddress),
		formatAddress(r.CallerAddress),
		FormatFloat(r.ExecutionTime),
		strconv.FormatUint(r.ActivityID, 10),
		strconv.FormatUint(r.ParentID, 10),
		FormatFloat(r.ClockBegin),
	}
	return w.w.Write(w.row[:])
}

// Flush writes any buffered rows to the underlying writer.
func (w *CSVWriter) Flush() error {
	w.w.Flush()
	return w.w.Error()
}

// WriteCSV writes all records to w.
func WriteCSV(w io.Writer, rs Records) error {
	cw := NewCSVWriter(w)
	for _, r := range rs {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// WriteCSVFile atomically replaces path with the CSV form of rs.
func WriteCSVFile(path string, rs Records) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rs); err != nil {
		return err
	}
	return atomic.WriteFile(path, &buf)
}

func formatAddress(v uint64) string {
	return fmt.Sprintf("%#x", v)
}

// FormatFloat renders f in its shortest round-trip decimal form. Integral
// values keep a ".0" suffix, and exponent notation is used only for very
// large or very small magnitudes, so that 1 prints as "1.0", 0.25 as "0.25"
// and 1e16 as "1e+16".
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	// The decimal exponent of the shortest representation decides between
	// the two notations.
	e := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(e[strings.LastIndexByte(e, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return e
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
