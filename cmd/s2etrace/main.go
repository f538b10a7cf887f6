// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"log"
	"os"

	"github.com/cockroachdb/s2etrace/tool"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "s2etrace [command] (flags)",
	Short: "S2E trace extraction tool",
	Long: `
s2etrace extracts test cases and latency records from the results directory
of an S2E analysis run.
`,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	t := tool.New(tool.Options{})
	rootCmd.AddCommand(t.Commands...)

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
