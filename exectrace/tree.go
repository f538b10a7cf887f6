// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package exectrace

import (
	"fmt"
	"io"
	"strings"
)

// Tree is an execution trace arranged by state. Nodes holds the items of the
// initial state up to and including its first fork; the items each state
// produced after a fork live in that fork's branches.
type Tree struct {
	Nodes []Node
}

// Empty returns true if the trace holds no items at all.
func (t *Tree) Empty() bool {
	return t == nil || len(t.Nodes) == 0
}

// Build arranges a flat sequence of nodes, in trace order, into a tree. Items
// are routed by the state id in their header: state 0 starts at the root, and
// a fork makes each of its branches the destination for the branch's state.
// Items of a state that was never declared by a fork are kept at the root.
//
// Build takes ownership of the fork items in nodes and fills their branches.
func Build(nodes []Node) *Tree {
	t := &Tree{}
	dests := map[StateID]*[]Node{0: &t.Nodes}
	for _, n := range nodes {
		dst, ok := dests[n.Header.StateID]
		if !ok {
			dst = &t.Nodes
		}
		*dst = append(*dst, n)
		if f, ok := n.Item.(*ForkItem); ok {
			for i := range f.Branches {
				f.Branches[i].Nodes = nil
				dests[f.Branches[i].StateID] = &f.Branches[i].Nodes
			}
		}
	}
	return t
}

// Filter returns a copy of the tree restricted to the paths that lead to one
// of the given states. A fork keeps a branch if the branch's state is one of
// ids or if a fork nested in the branch keeps one of its own branches. Items
// that are not inside any fork are shared by every path and always kept. With
// no ids, the tree is returned unchanged.
func (t *Tree) Filter(ids ...StateID) *Tree {
	if len(ids) == 0 || t == nil {
		return t
	}
	want := make(map[StateID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	// Record each branch's enclosing branch, then mark every requested branch
	// and its ancestors.
	parent := make(map[*Branch]*Branch)
	var requested []*Branch
	type frame struct {
		nodes []Node
		owner *Branch
	}
	stack := []frame{{nodes: t.Nodes}}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range fr.nodes {
			f, ok := n.Item.(*ForkItem)
			if !ok {
				continue
			}
			for i := range f.Branches {
				b := &f.Branches[i]
				parent[b] = fr.owner
				if want[b.StateID] {
					requested = append(requested, b)
				}
				stack = append(stack, frame{nodes: b.Nodes, owner: b})
			}
		}
	}
	keep := make(map[*Branch]bool)
	for _, b := range requested {
		for ; b != nil && !keep[b]; b = parent[b] {
			keep[b] = true
		}
	}

	// Copy the tree, dropping the branches that were not marked.
	out := &Tree{}
	type copyFrame struct {
		src []Node
		dst *[]Node
	}
	work := []copyFrame{{src: t.Nodes, dst: &out.Nodes}}
	for len(work) > 0 {
		fr := work[len(work)-1]
		work = work[:len(work)-1]
		*fr.dst = make([]Node, 0, len(fr.src))
		for _, n := range fr.src {
			f, ok := n.Item.(*ForkItem)
			if !ok {
				*fr.dst = append(*fr.dst, n)
				continue
			}
			nf := &ForkItem{Branches: make([]Branch, 0, len(f.Branches))}
			for i := range f.Branches {
				if keep[&f.Branches[i]] {
					nf.Branches = append(nf.Branches, Branch{StateID: f.Branches[i].StateID})
				}
			}
			// nf.Branches is fully populated before any pointer into it is
			// taken, so the pointers stay valid.
			for i, j := 0, 0; i < len(f.Branches); i++ {
				if keep[&f.Branches[i]] {
					work = append(work, copyFrame{src: f.Branches[i].Nodes, dst: &nf.Branches[j].Nodes})
					j++
				}
			}
			*fr.dst = append(*fr.dst, Node{Header: n.Header, Item: nf})
		}
	}
	return out
}

// Fprint writes an indented dump of the tree, one node per line. The items of
// each branch are listed under a "state N:" line beneath the fork that
// declared it.
func (t *Tree) Fprint(w io.Writer) {
	type frame struct {
		label string
		nodes []Node
		depth int
	}
	stack := []frame{{nodes: t.Nodes}}
	for len(stack) > 0 {
		fr := &stack[len(stack)-1]
		if fr.label != "" {
			fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", fr.depth-1), fr.label)
			fr.label = ""
			continue
		}
		if len(fr.nodes) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		n := fr.nodes[0]
		fr.nodes = fr.nodes[1:]
		depth := fr.depth
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), n)
		f, ok := n.Item.(*ForkItem)
		if !ok {
			continue
		}
		// Push in reverse so that branches print in declaration order.
		for i := len(f.Branches) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				label: fmt.Sprintf("state %d:", f.Branches[i].StateID),
				nodes: f.Branches[i].Nodes,
				depth: depth + 2,
			})
		}
	}
}

// String returns the dump produced by Fprint.
func (t *Tree) String() string {
	var b strings.Builder
	t.Fprint(&b)
	return b.String()
}
