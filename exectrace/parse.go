// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package exectrace

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/crlib/crstrings"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/s2etrace/internal/strparse"
)

// ParseItemType parses the name of an item type as printed by
// ItemType.String. A decimal number is accepted for any type.
func ParseItemType(s string) (ItemType, error) {
	for t, name := range itemTypeStrings {
		if s == name {
			return ItemType(t), nil
		}
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.Errorf("unknown item type %q", s)
	}
	return ItemType(v), nil
}

// ParseNode parses the debug form of a node, as printed by Node.String:
//
//	[0] FORK 1,2
//	[1] TESTCASE v0_x=0x0102 v1_y=0x
//	[2] CALL 0xc0ffee
//
// Items of other types take an optional hex payload.
func ParseNode(s string) (_ Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	p := strparse.MakeParser("[]=,", s)
	var n Node
	p.Expect("[")
	n.Header.StateID = StateID(p.Uint32())
	p.Expect("]")
	typ, err := ParseItemType(p.Next())
	if err != nil {
		p.Errf("%v", err)
	}
	n.Header.Type = typ
	switch typ {
	case TypeTestCase:
		item := &TestCaseItem{}
		for !p.Done() {
			kv := KeyValue{Key: p.Word()}
			p.Expect("=")
			kv.Value = p.Hex()
			item.Pairs = append(item.Pairs, kv)
		}
		n.Item = item
	case TypeFork:
		item := &ForkItem{}
		for !p.Done() {
			if len(item.Branches) > 0 {
				p.Expect(",")
			}
			item.Branches = append(item.Branches, Branch{StateID: StateID(p.Uint32())})
		}
		n.Item = item
	default:
		item := &OtherItem{ItemType: typ}
		if !p.Done() {
			item.Data = p.Hex()
		}
		if !p.Done() {
			p.Errf("unexpected trailing tokens %q", p.Remaining())
		}
		n.Item = item
	}
	return n, nil
}

// ParseNodes parses one node per non-blank line.
func ParseNodes(s string) ([]Node, error) {
	var nodes []Node
	for _, line := range crstrings.Lines(s) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		n, err := ParseNode(line)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
