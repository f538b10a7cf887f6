// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package exectrace

import (
	"fmt"
	"strings"
)

// StateID identifies one execution path. The initial state is 0; every fork
// names the states that continue after it.
type StateID uint32

// ItemType is the discriminant carried by every trace item header.
type ItemType uint32

// The ItemType enumeration, matching the tracer's numbering.
const (
	TypeModuleLoad ItemType = iota
	TypeModuleUnload
	TypeProcessUnload
	TypeCall
	TypeReturn
	TypeTBStart
	TypeTBEnd
	TypeModuleDesc
	TypeFork
	TypeCacheSim
	TypeTestCase
	TypeBranchCoverage
	TypeMemory
	TypePageFault
	TypeTLBMiss
	TypeInstructionCount
	TypeMemChecker
	TypeException
	TypeStateSwitch
	TypeTBStartX64
	TypeTBEndX64
	TypeBlock
	TypeOSInfo
	numItemTypes
)

var itemTypeStrings = [...]string{
	TypeModuleLoad:       "MOD_LOAD",
	TypeModuleUnload:     "MOD_UNLOAD",
	TypeProcessUnload:    "PROC_UNLOAD",
	TypeCall:             "CALL",
	TypeReturn:           "RET",
	TypeTBStart:          "TB_START",
	TypeTBEnd:            "TB_END",
	TypeModuleDesc:       "MODULE_DESC",
	TypeFork:             "FORK",
	TypeCacheSim:         "CACHESIM",
	TypeTestCase:         "TESTCASE",
	TypeBranchCoverage:   "BRANCHCOV",
	TypeMemory:           "MEMORY",
	TypePageFault:        "PAGEFAULT",
	TypeTLBMiss:          "TLBMISS",
	TypeInstructionCount: "ICOUNT",
	TypeMemChecker:       "MEM_CHECKER",
	TypeException:        "EXCEPTION",
	TypeStateSwitch:      "STATE_SWITCH",
	TypeTBStartX64:       "TB_START_X64",
	TypeTBEndX64:         "TB_END_X64",
	TypeBlock:            "BLOCK",
	TypeOSInfo:           "OSINFO",
}

// String implements fmt.Stringer.
func (t ItemType) String() string {
	if t < numItemTypes {
		return itemTypeStrings[t]
	}
	return fmt.Sprintf("TYPE(%d)", uint32(t))
}

// Header precedes every item in the trace.
type Header struct {
	StateID      StateID
	Timestamp    uint64
	AddressSpace uint64
	PID          uint64
	TID          uint64
	PC           uint64
	Type         ItemType
}

// Item is the payload of a trace entry. It is one of *TestCaseItem,
// *ForkItem or *OtherItem.
type Item interface {
	Type() ItemType
}

// KeyValue is one symbolic variable and the concrete bytes chosen for it.
type KeyValue struct {
	Key   string
	Value []byte
}

// TestCaseItem carries the concrete inputs that drive execution down the
// path of the state that emitted it.
type TestCaseItem struct {
	Pairs []KeyValue
}

// Type implements Item.
func (*TestCaseItem) Type() ItemType { return TypeTestCase }

// Branch is one child of a fork: the state id that continues after the fork
// and, once the tree is built, the items that state produced.
type Branch struct {
	StateID StateID
	Nodes   []Node
}

// ForkItem records a state splitting into several states. Branches appear in
// the order the fork declared them.
type ForkItem struct {
	Branches []Branch
}

// Type implements Item.
func (*ForkItem) Type() ItemType { return TypeFork }

// ChildIDs returns the state ids of the fork's branches.
func (f *ForkItem) ChildIDs() []StateID {
	ids := make([]StateID, len(f.Branches))
	for i := range f.Branches {
		ids[i] = f.Branches[i].StateID
	}
	return ids
}

// OtherItem is an item this package does not interpret. Its encoded payload
// is kept so that it can be written back unchanged.
type OtherItem struct {
	ItemType ItemType
	Data     []byte
}

// Type implements Item.
func (o *OtherItem) Type() ItemType { return o.ItemType }

// Node is a header together with its item.
type Node struct {
	Header Header
	Item   Item
}

// String returns a one line description of the node.
func (n Node) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s", n.Header.StateID, n.Item.Type())
	switch it := n.Item.(type) {
	case *TestCaseItem:
		for _, p := range it.Pairs {
			fmt.Fprintf(&b, " %s=0x%x", p.Key, p.Value)
		}
	case *ForkItem:
		for i, id := range it.ChildIDs() {
			if i == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d", id)
		}
	case *OtherItem:
		fmt.Fprintf(&b, " <%d>", len(it.Data))
	}
	return b.String()
}
