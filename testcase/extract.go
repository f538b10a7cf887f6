// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package testcase

import "github.com/cockroachdb/s2etrace/exectrace"

// Extract walks the tree and adds a test case to set for every TESTCASE item.
// Each test case is attributed to the state of the innermost fork branch that
// contains it, or to state 0 outside of any fork. Test cases are added in the
// order a depth-first walk visits them, with fork branches taken in
// declaration order. Items of other types are ignored.
//
// The walk keeps its own stack, so the nesting depth of forks is bounded by
// memory only.
func Extract(tree *exectrace.Tree, set *Set) {
	if tree.Empty() {
		return
	}
	type frame struct {
		nodes []exectrace.Node
		state exectrace.StateID
	}
	stack := []frame{{nodes: tree.Nodes}}
	for len(stack) > 0 {
		fr := &stack[len(stack)-1]
		if len(fr.nodes) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		n := fr.nodes[0]
		fr.nodes = fr.nodes[1:]
		switch it := n.Item.(type) {
		case *exectrace.TestCaseItem:
			set.Add(newTestCase(fr.state, it))
		case *exectrace.ForkItem:
			for i := len(it.Branches) - 1; i >= 0; i-- {
				stack = append(stack, frame{nodes: it.Branches[i].Nodes, state: it.Branches[i].StateID})
			}
		}
	}
}
