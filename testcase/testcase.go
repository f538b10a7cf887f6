// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package testcase extracts the concrete test cases recorded in an execution
// trace and writes them out as one structured document per test case.
package testcase

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/cockroachdb/s2etrace/exectrace"
	"github.com/cockroachdb/s2etrace/symval"
)

// KeyValue is one symbolic input of a test case: the name of the symbolic
// variable and the bytes the solver chose for it. Every other representation
// is derived from Raw.
type KeyValue struct {
	Key string
	Raw []byte
}

// NumBytes returns the width of the value.
func (kv KeyValue) NumBytes() int { return len(kv.Raw) }

// Int returns the value read as a little-endian signed integer; see symval.Int.
func (kv KeyValue) Int() int64 { return symval.Int(kv.Raw) }

// Hex returns the value as comma separated 0xHH tokens.
func (kv KeyValue) Hex() string { return symval.Hex(kv.Raw) }

// Printable returns the value with unprintable bytes replaced by '.'.
func (kv KeyValue) Printable() string { return symval.Printable(kv.Raw) }

// Base64 returns the value in standard base64.
func (kv KeyValue) Base64() string { return symval.Base64(kv.Raw) }

// String returns the multi-line description printed for a key/value pair.
func (kv KeyValue) String() string {
	return fmt.Sprintf("key: %s\nnum_bytes: %d\nvalue_bytes (base64 encoding): %s\nvalue_int: %d\nvalue_hex: %s\nvalue_string: %s",
		kv.Key, kv.NumBytes(), kv.Base64(), kv.Int(), kv.Hex(), kv.Printable())
}

// TestCase is the set of inputs that leads execution down the path of one
// state.
type TestCase struct {
	StateID   exectrace.StateID
	KeyValues []KeyValue
}

func newTestCase(id exectrace.StateID, item *exectrace.TestCaseItem) TestCase {
	tc := TestCase{
		StateID:   id,
		KeyValues: make([]KeyValue, len(item.Pairs)),
	}
	for i, p := range item.Pairs {
		tc.KeyValues[i] = KeyValue{Key: p.Key, Raw: p.Value}
	}
	return tc
}

// String returns the multi-line description printed for a test case as it is
// extracted.
func (tc *TestCase) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "state_id: %d\n", tc.StateID)
	for i := range tc.KeyValues {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(tc.KeyValues[i].String())
	}
	return b.String()
}

// Set accumulates the test cases found in a trace, in discovery order until
// Sort is called.
type Set struct {
	cases []TestCase
}

// Add appends a test case.
func (s *Set) Add(tc TestCase) {
	s.cases = append(s.cases, tc)
}

// Len returns the number of test cases.
func (s *Set) Len() int {
	return len(s.cases)
}

// All returns an iterator over the test cases in their current order.
func (s *Set) All() iter.Seq2[int, *TestCase] {
	return func(yield func(int, *TestCase) bool) {
		for i := range s.cases {
			if !yield(i, &s.cases[i]) {
				return
			}
		}
	}
}

// Sort orders the key/values of every test case by key, then the test cases
// by state id. Both sorts are stable: equal keys keep their trace order, and
// test cases of the same state keep their discovery order.
func (s *Set) Sort() {
	for i := range s.cases {
		slices.SortStableFunc(s.cases[i].KeyValues, func(a, b KeyValue) int {
			return strings.Compare(a.Key, b.Key)
		})
	}
	slices.SortStableFunc(s.cases, func(a, b TestCase) int {
		return cmp.Compare(a.StateID, b.StateID)
	})
}
