// Copyright 2019 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/crlib/crstrings"
	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/s2etrace/exectrace"
	"github.com/cockroachdb/s2etrace/internal/base"
	"github.com/cockroachdb/s2etrace/latency"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(wd))
	})
}

// runTool runs the tools with the given arguments and returns everything they
// printed.
func runTool(args ...string) string {
	out, _ := runToolLog(args...)
	return out
}

// runToolLog is like runTool but also returns what the tools logged.
func runToolLog(args ...string) (out, log string) {
	var buf bytes.Buffer
	logger := &base.InMemLogger{}
	osExit = func(int) {}
	defer func() {
		osExit = os.Exit
	}()

	c := &cobra.Command{}
	c.AddCommand(New(Options{Logger: logger}).Commands...)
	c.SetArgs(args)
	c.SetOut(&buf)
	c.SetErr(&buf)
	if err := c.Execute(); err != nil {
		return err.Error(), logger.String()
	}
	return buf.String(), logger.String()
}

// runTests runs the datadriven tests matching path. Every test file runs in
// its own empty project directory, which the fixture commands populate:
//
//	write-trace [dir]       the input lines are trace nodes (see exectrace.ParseNode)
//	write-latency [dir]     the input lines are latency records; "truncate=N"
//	                        appends N stray bytes
//	write-file <path>       the remaining input lines are the file contents
//	mkdir <path>            creates a directory
//	cat <path>              prints a file, with "\r\n" shown as "\n"
//	ls [dir]                lists a directory
//
// Any other command runs the tools; the input holds the remaining arguments. A
// bare "log" argument is not passed to the tools and instead appends what they
// logged to the output.
func runTests(t *testing.T, path string) {
	paths, err := filepath.Glob(path)
	require.NoError(t, err)
	root := filepath.Dir(path)
	for {
		next := filepath.Dir(root)
		if next == "." {
			break
		}
		root = next
	}

	for _, path := range paths {
		name, err := filepath.Rel(root, path)
		require.NoError(t, err)
		path, err = filepath.Abs(path)
		require.NoError(t, err)
		t.Run(name, func(t *testing.T) {
			chdir(t, t.TempDir())
			datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
				switch d.Cmd {
				case "write-trace":
					return writeTrace(t, d)
				case "write-latency":
					return writeLatency(t, d)
				case "write-file":
					p, contents, _ := strings.Cut(d.Input, "\n")
					require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
					require.NoError(t, os.WriteFile(p, []byte(contents+"\n"), 0644))
					return ""
				case "mkdir":
					require.NoError(t, os.MkdirAll(strings.TrimSpace(d.Input), 0755))
					return ""
				case "cat":
					data, err := os.ReadFile(strings.TrimSpace(d.Input))
					if err != nil {
						return err.Error()
					}
					return strings.ReplaceAll(string(data), "\r\n", "\n")
				case "ls":
					dir := strings.TrimSpace(d.Input)
					if dir == "" {
						dir = "."
					}
					entries, err := os.ReadDir(dir)
					if err != nil {
						return err.Error()
					}
					var buf strings.Builder
					for _, e := range entries {
						fmt.Fprintln(&buf, e.Name())
					}
					return buf.String()
				}

				args := []string{d.Cmd}
				showLog := false
				for _, arg := range d.CmdArgs {
					if arg.Key == "log" && len(arg.Vals) == 0 {
						showLog = true
						continue
					}
					args = append(args, arg.String())
				}
				args = append(args, strings.Fields(d.Input)...)
				out, log := runToolLog(args...)
				if showLog {
					out += "log:\n" + log
				}
				return out
			})
		})
	}
}

// fixtureDir returns the directory named by the first argument of a fixture
// command, or the default results directory.
func fixtureDir(t *testing.T, d *datadriven.TestData) string {
	dir := base.DefaultResultsDir
	for _, arg := range d.CmdArgs {
		if len(arg.Vals) == 0 {
			dir = arg.Key
		}
	}
	require.NoError(t, os.MkdirAll(dir, 0755))
	return dir
}

func writeTrace(t *testing.T, d *datadriven.TestData) string {
	dir := fixtureDir(t, d)
	nodes, err := exectrace.ParseNodes(d.Input)
	if err != nil {
		return err.Error()
	}
	f, err := os.Create(base.MakeFilepath(dir, base.FileTypeExecutionTrace))
	require.NoError(t, err)
	defer f.Close()
	w := exectrace.NewWriter(f)
	for _, n := range nodes {
		require.NoError(t, w.Write(n.Header, n.Item))
	}
	return ""
}

func writeLatency(t *testing.T, d *datadriven.TestData) string {
	dir := fixtureDir(t, d)
	var b []byte
	for _, line := range crstrings.Lines(d.Input) {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if n, ok := strings.CutPrefix(fields[0], "truncate="); ok {
			size, err := strconv.Atoi(n)
			require.NoError(t, err)
			b = append(b, make([]byte, size)...)
			continue
		}
		if len(fields) != 8 {
			d.Fatalf(t, "expected 8 fields: %q", line)
		}
		var u [8]uint64
		var f [8]float64
		for i, s := range fields {
			var err error
			if i == 4 || i == 7 {
				f[i], err = strconv.ParseFloat(s, 64)
			} else {
				u[i], err = strconv.ParseUint(s, 0, 64)
			}
			require.NoError(t, err)
		}
		b = latency.AppendRecord(b, latency.Record{
			StateID:       int32(u[0]),
			Address:       u[1],
			ReturnAddress: u[2],
			CallerAddress: u[3],
			ExecutionTime: f[4],
			ActivityID:    u[5],
			ParentID:      u[6],
			ClockBegin:    f[7],
		})
	}
	require.NoError(t, os.WriteFile(base.MakeFilepath(dir, base.FileTypeLatencyTrace), b, 0644))
	return ""
}

func TestTestCase(t *testing.T) {
	runTests(t, "testdata/testcase*")
}

func TestLatency(t *testing.T) {
	runTests(t, "testdata/latency*")
}

func TestTrace(t *testing.T) {
	runTests(t, "testdata/trace*")
}

func TestProject(t *testing.T) {
	runTests(t, "testdata/project*")
}

func TestCommandNames(t *testing.T) {
	var names []string
	for _, root := range New(Options{}).Commands {
		for _, cmd := range root.Commands() {
			names = append(names, root.Name()+" "+cmd.Name())
		}
	}
	slices.Sort(names)
	require.Equal(t, []string{
		"latency describe",
		"latency extract",
		"latency plot",
		"latency summary",
		"testcase extract",
		"testcase ls",
		"trace describe",
		"trace dump",
	}, names)
}
