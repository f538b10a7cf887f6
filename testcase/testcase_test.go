// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package testcase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/s2etrace/exectrace"
	"github.com/cockroachdb/s2etrace/internal/base"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parseTree(t *testing.T, input string) *exectrace.Tree {
	nodes, err := exectrace.ParseNodes(input)
	require.NoError(t, err)
	return exectrace.Build(nodes)
}

func formatSet(set *Set) string {
	var b strings.Builder
	for i, tc := range set.All() {
		fmt.Fprintf(&b, "%d: state %d", i, tc.StateID)
		for _, kv := range tc.KeyValues {
			fmt.Fprintf(&b, " %s=0x%x", kv.Key, kv.Raw)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func TestExtract(t *testing.T) {
	var set *Set
	datadriven.RunTest(t, "testdata/extract", func(t *testing.T, d *datadriven.TestData) string {
		switch d.Cmd {
		case "extract":
			set = &Set{}
			Extract(parseTree(t, d.Input), set)
			if set.Len() == 0 {
				return "(none)\n"
			}
			return formatSet(set)

		case "sort":
			set.Sort()
			return formatSet(set)

		case "document":
			var index int
			d.ScanArgs(t, "index", &index)
			var buf bytes.Buffer
			for i, tc := range set.All() {
				if i == index {
					require.NoError(t, Encode(&buf, tc, FormatJSON))
				}
			}
			return buf.String()

		case "text":
			var b strings.Builder
			for _, tc := range set.All() {
				fmt.Fprintf(&b, "=========\n%s\n", tc)
			}
			return b.String()

		default:
			d.Fatalf(t, "unknown command %q", d.Cmd)
			return ""
		}
	})
}

func TestSortIdempotent(t *testing.T) {
	set := &Set{}
	Extract(parseTree(t, `
[0] FORK 3,1,2
[3] TESTCASE b=0x01 a=0x02
[1] TESTCASE b=0x03 b=0x04 a=0x05
[2] TESTCASE c=0x06
[1] TESTCASE a=0x07
`), set)
	set.Sort()
	first := formatSet(set)
	set.Sort()
	require.Equal(t, first, formatSet(set))
	require.Equal(t, `0: state 1 a=0x05 b=0x03 b=0x04
1: state 1 a=0x07
2: state 2 c=0x06
3: state 3 a=0x02 b=0x01
`, first)
}

func TestExtractDeep(t *testing.T) {
	const depth = 50000
	root := &exectrace.Tree{}
	cur := &root.Nodes
	for i := 1; i <= depth; i++ {
		f := &exectrace.ForkItem{Branches: []exectrace.Branch{{StateID: exectrace.StateID(i)}}}
		*cur = append(*cur, exectrace.Node{Item: f})
		cur = &f.Branches[0].Nodes
	}
	*cur = append(*cur, exectrace.Node{Item: &exectrace.TestCaseItem{
		Pairs: []exectrace.KeyValue{{Key: "leaf", Value: []byte{1}}},
	}})

	set := &Set{}
	Extract(root, set)
	require.Equal(t, 1, set.Len())
	for _, tc := range set.All() {
		require.Equal(t, exectrace.StateID(depth), tc.StateID)
	}
}

func TestExtractEmpty(t *testing.T) {
	set := &Set{}
	Extract(nil, set)
	Extract(&exectrace.Tree{}, set)
	require.Zero(t, set.Len())
}

func TestWriteAll(t *testing.T) {
	set := &Set{}
	Extract(parseTree(t, `
[0] FORK 5,2
[5] TESTCASE a=0x41424344 len=0x0400000000
[2] TESTCASE b=0xff
`), set)
	set.Sort()

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(format.String(), func(t *testing.T) {
			dir := t.TempDir()
			var log base.InMemLogger
			var out bytes.Buffer
			paths, err := WriteAll(dir, set, WriteOptions{
				Format: format,
				Logger: &log,
				Print:  true,
				Out:    &out,
			})
			require.NoError(t, err)
			require.Equal(t, []string{
				filepath.Join(dir, "testcase-000000."+format.Ext()),
				filepath.Join(dir, "testcase-000001."+format.Ext()),
			}, paths)
			require.Contains(t, log.String(), "wrote 2 test cases")
			require.Equal(t, 2, strings.Count(out.String(), "=========\n"))

			want := []Document{
				{StateID: 2, KeyValues: []KeyValueDocument{
					{Key: "b", NumBytes: 1, ValueBytes: "/w==", ValueInt: 255, ValueHex: "0xff", ValuePrintable: "."},
				}},
				{StateID: 5, KeyValues: []KeyValueDocument{
					{Key: "a", NumBytes: 4, ValueBytes: "QUJDRA==", ValueInt: 0x44434241, ValueHex: "0x41,0x42,0x43,0x44", ValuePrintable: "ABCD"},
					{Key: "len", NumBytes: 5, ValueBytes: "BAAAAAA=", ValueInt: 4, ValueHex: "0x04,0x00,0x00,0x00,0x00", ValuePrintable: "....."},
				}},
			}
			for i, path := range paths {
				data, err := os.ReadFile(path)
				require.NoError(t, err)
				var got Document
				if format == FormatJSON {
					require.NoError(t, json.Unmarshal(data, &got))
				} else {
					require.NoError(t, yaml.Unmarshal(data, &got))
				}
				if diff := pretty.Diff(want[i], got); len(diff) > 0 {
					t.Fatalf("%s:\n%s", path, strings.Join(diff, "\n"))
				}
			}
		})
	}
}

func TestWriteAllMissingDir(t *testing.T) {
	set := &Set{}
	set.Add(TestCase{KeyValues: []KeyValue{{Key: "x", Raw: []byte{1}}}})
	_, err := WriteAll(filepath.Join(t.TempDir(), "missing"), set, WriteOptions{Logger: &base.InMemLogger{}})
	require.Error(t, err)
}

func TestWriteAllStale(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"testcase-000001.json", "testcase-000002.yaml", "testcase-7.json", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	stale, err := FindStale(dir, 1)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "testcase-000001.json"),
		filepath.Join(dir, "testcase-000002.yaml"),
	}, stale)

	set := &Set{}
	set.Add(TestCase{StateID: 3, KeyValues: []KeyValue{{Key: "x", Raw: []byte{1}}}})
	set.Add(TestCase{StateID: 4, KeyValues: []KeyValue{{Key: "y", Raw: []byte{2}}}})
	var log base.InMemLogger
	_, err = WriteAll(dir, set, WriteOptions{Logger: &log})
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("wrote 2 test cases to %s\n%s is left over from an earlier extraction\n",
		dir, filepath.Join(dir, "testcase-000002.yaml")), log.String())

	_, err = FindStale(filepath.Join(dir, "missing"), 0)
	require.Error(t, err)
}

func TestEncodeASCII(t *testing.T) {
	tc := &TestCase{StateID: 1, KeyValues: []KeyValue{{Key: "v0_\u00e9\U0001f600\x7f", Raw: []byte{0xe9}}}}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tc, FormatJSON))
	for _, c := range buf.Bytes() {
		require.Less(t, c, byte(0x7f), "%s", buf.String())
	}
	require.Contains(t, buf.String(), `"key": "v0_\u00e9\ud83d\ude00\u007f",`)

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, tc.KeyValues[0].Key, doc.KeyValues[0].Key)
}

func TestParseFormat(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		got, err := ParseFormat(f.String())
		require.NoError(t, err)
		require.Equal(t, f, got)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
}
