// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package exectrace

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/require"
)

func TestTree(t *testing.T) {
	var tree *Tree
	datadriven.RunTest(t, "testdata/tree", func(t *testing.T, d *datadriven.TestData) string {
		switch d.Cmd {
		case "build":
			nodes, err := ParseNodes(d.Input)
			if err != nil {
				return err.Error()
			}
			tree = Build(nodes)
			if tree.Empty() {
				return "(empty)\n"
			}
			return tree.String()

		case "filter":
			var ids []StateID
			for _, arg := range d.CmdArgs {
				if arg.Key != "ids" {
					d.Fatalf(t, "unknown argument %q", arg.Key)
				}
				for _, v := range arg.Vals {
					id, err := strconv.ParseUint(v, 10, 32)
					require.NoError(t, err)
					ids = append(ids, StateID(id))
				}
			}
			filtered := tree.Filter(ids...)
			if filtered.Empty() {
				return "(empty)\n"
			}
			return filtered.String()

		case "parse":
			n, err := ParseNode(d.Input)
			if err != nil {
				return fmt.Sprintf("error: %v", err)
			}
			return n.String()

		default:
			d.Fatalf(t, "unknown command %q", d.Cmd)
			return ""
		}
	})
}

func TestFilterLeavesSourceIntact(t *testing.T) {
	nodes, err := ParseNodes(`
[0] FORK 1,2
[1] TESTCASE a=0x01
[2] TESTCASE a=0x02
`)
	require.NoError(t, err)
	tree := Build(nodes)
	before := tree.String()
	filtered := tree.Filter(2)
	require.Equal(t, before, tree.String())
	require.Len(t, filtered.Nodes, 1)
	f := filtered.Nodes[0].Item.(*ForkItem)
	require.Equal(t, []StateID{2}, f.ChildIDs())
	require.Len(t, f.Branches[0].Nodes, 1)

	require.Same(t, tree, tree.Filter())
}

func TestBuildDeep(t *testing.T) {
	// A long chain of forks, each continuing in its second child.
	const depth = 100000
	nodes := make([]Node, 0, 2*depth+1)
	for i := 0; i < depth; i++ {
		id := StateID(2 * i)
		if i > 0 {
			id = StateID(2*i - 1)
		}
		nodes = append(nodes, Node{
			Header: Header{StateID: id, Type: TypeFork},
			Item: &ForkItem{Branches: []Branch{
				{StateID: StateID(2*i + 2)}, {StateID: StateID(2*i + 1)},
			}},
		})
	}
	last := StateID(2*depth - 1)
	nodes = append(nodes, Node{
		Header: Header{StateID: last, Type: TypeTestCase},
		Item:   &TestCaseItem{Pairs: []KeyValue{{Key: "k", Value: []byte{1}}}},
	})
	tree := Build(nodes)
	filtered := tree.Filter(last)

	n := 0
	for cur := filtered.Nodes; len(cur) > 0; n++ {
		f, ok := cur[0].Item.(*ForkItem)
		if !ok {
			require.Equal(t, TypeTestCase, cur[0].Item.Type())
			break
		}
		require.Len(t, f.Branches, 1)
		cur = f.Branches[0].Nodes
	}
	require.Equal(t, depth, n)
}
