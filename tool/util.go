// Copyright 2019 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/s2etrace/exectrace"
	"github.com/cockroachdb/s2etrace/testcase"
	"github.com/spf13/cobra"
)

var osExit = os.Exit

// fatal reports err, with any hints attached to it, and exits.
func fatal(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %s\n", err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "hint: %s\n", hint)
	}
	osExit(1)
}

// formatFlag is a pflag.Value for the test case document format.
type formatFlag struct {
	format testcase.Format
}

func (f *formatFlag) String() string {
	return f.format.String()
}

func (f *formatFlag) Type() string {
	return "format"
}

func (f *formatFlag) Set(s string) error {
	format, err := testcase.ParseFormat(s)
	if err != nil {
		return err
	}
	f.format = format
	return nil
}

// traceFlags are the flags of the commands that read the execution trace.
type traceFlags struct {
	indir   string
	pathIDs []uint
}

func (f *traceFlags) register(cmd *cobra.Command, filter bool) {
	cmd.Flags().StringVar(&f.indir, "indir", "",
		"results directory to read (default: the project's results directory)")
	if filter {
		cmd.Flags().UintSliceVarP(&f.pathIDs, "path-id", "p", nil,
			"only include the paths leading to this state; may be repeated")
	}
}

func (f *traceFlags) stateIDs() []exectrace.StateID {
	if len(f.pathIDs) == 0 {
		return nil
	}
	ids := make([]exectrace.StateID, len(f.pathIDs))
	for i, id := range f.pathIDs {
		ids[i] = exectrace.StateID(id)
	}
	return ids
}
