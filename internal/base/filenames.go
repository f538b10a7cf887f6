// Copyright 2012 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultResultsDir is the directory, relative to the project, that holds the
// results of the most recent run.
const DefaultResultsDir = "s2e-last"

// TestCaseNum is the sequential index of an extracted test case. It is
// assigned in sorted order and is independent of the state id.
type TestCaseNum uint64

// String returns a string representation of the test case number.
func (n TestCaseNum) String() string { return fmt.Sprintf("%06d", n) }

// FileType enumerates the types of files found in a results directory.
type FileType int

// The FileType enumeration.
const (
	FileTypeExecutionTrace FileType = iota
	FileTypeLatencyTrace
	FileTypeLatencyCSV
	FileTypeTestCase
	FileTypeProject
)

var fileTypeStrings = [...]string{
	FileTypeExecutionTrace: "execution-trace",
	FileTypeLatencyTrace:   "latency-trace",
	FileTypeLatencyCSV:     "latency-csv",
	FileTypeTestCase:       "testcase",
	FileTypeProject:        "project",
}

// String implements fmt.Stringer.
func (ft FileType) String() string {
	if ft < 0 || int(ft) >= len(fileTypeStrings) {
		return "unknown"
	}
	return fileTypeStrings[ft]
}

const (
	executionTraceFilename = "ExecutionTracer.dat"
	latencyTraceFilename   = "LatencyTracer.dat"
	latencyCSVFilename     = "LatencyTracer.csv"
	projectFilename        = "project.json"
	testCasePrefix         = "testcase-"
)

// MakeFilename builds a filename for the file types that have a single
// well-known name.
func MakeFilename(fileType FileType) string {
	switch fileType {
	case FileTypeExecutionTrace:
		return executionTraceFilename
	case FileTypeLatencyTrace:
		return latencyTraceFilename
	case FileTypeLatencyCSV:
		return latencyCSVFilename
	case FileTypeProject:
		return projectFilename
	case FileTypeTestCase:
		panic("test case filenames are numbered; use MakeTestCaseFilename")
	}
	panic("unreachable")
}

// MakeFilepath builds a filepath from components.
func MakeFilepath(dirname string, fileType FileType) string {
	return filepath.Join(dirname, MakeFilename(fileType))
}

// MakeTestCaseFilename builds the name of the n-th test case document, e.g.
// "testcase-000000.json".
func MakeTestCaseFilename(n TestCaseNum, ext string) string {
	return testCasePrefix + n.String() + "." + ext
}

// ParseFilename parses the components from a filename. The number is only
// meaningful for FileTypeTestCase.
func ParseFilename(filename string) (fileType FileType, n TestCaseNum, ok bool) {
	filename = filepath.Base(filename)
	switch {
	case filename == executionTraceFilename:
		return FileTypeExecutionTrace, 0, true
	case filename == latencyTraceFilename:
		return FileTypeLatencyTrace, 0, true
	case filename == latencyCSVFilename:
		return FileTypeLatencyCSV, 0, true
	case filename == projectFilename:
		return FileTypeProject, 0, true
	case strings.HasPrefix(filename, testCasePrefix):
		s := filename[len(testCasePrefix):]
		i := strings.IndexByte(s, '.')
		if i != 6 || i == len(s)-1 {
			break
		}
		u, err := strconv.ParseUint(s[:i], 10, 64)
		if err != nil {
			break
		}
		return FileTypeTestCase, TestCaseNum(u), true
	}
	return 0, 0, false
}
