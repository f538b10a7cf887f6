// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package latency decodes the function call records written by the latency
// tracer plugin and converts them to CSV.
//
// The trace file is a sequence of fixed-size records with no header or
// padding. Each record is laid out as follows, little-endian:
//
//	+----------+---------+-------------+-------------+
//	| state_id | address | ret_address | caller_addr |
//	| int32    | uint64  | uint64      | uint64      |
//	+----------+---------+-------------+-------------+
//	+-------------+-------------+-----------+-------------+
//	| exec_time   | activity_id | parent_id | clock_begin |
//	| float64     | uint64      | uint64    | float64     |
//	+-------------+-------------+-----------+-------------+
package latency

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"math"
	"slices"
)

// RecordSize is the encoded size of a Record.
const RecordSize = 4 + 3*8 + 8 + 2*8 + 8

// Record is one timed function call.
type Record struct {
	StateID       int32
	Address       uint64
	ReturnAddress uint64
	CallerAddress uint64
	// ExecutionTime is the duration of the call in seconds.
	ExecutionTime float64
	ActivityID    uint64
	ParentID      uint64
	ClockBegin    float64
}

// DecodeRecord decodes a record from the first RecordSize bytes of b.
func DecodeRecord(b []byte) Record {
	_ = b[RecordSize-1]
	le := binary.LittleEndian
	return Record{
		StateID:       int32(le.Uint32(b[0:])),
		Address:       le.Uint64(b[4:]),
		ReturnAddress: le.Uint64(b[12:]),
		CallerAddress: le.Uint64(b[20:]),
		ExecutionTime: math.Float64frombits(le.Uint64(b[28:])),
		ActivityID:    le.Uint64(b[36:]),
		ParentID:      le.Uint64(b[44:]),
		ClockBegin:    math.Float64frombits(le.Uint64(b[52:])),
	}
}

// AppendRecord appends the encoding of r to b.
func AppendRecord(b []byte, r Record) []byte {
	le := binary.LittleEndian
	b = le.AppendUint32(b, uint32(r.StateID))
	b = le.AppendUint64(b, r.Address)
	b = le.AppendUint64(b, r.ReturnAddress)
	b = le.AppendUint64(b, r.CallerAddress)
	b = le.AppendUint64(b, math.Float64bits(r.ExecutionTime))
	b = le.AppendUint64(b, r.ActivityID)
	b = le.AppendUint64(b, r.ParentID)
	b = le.AppendUint64(b, math.Float64bits(r.ClockBegin))
	return b
}

// String implements fmt.Stringer.
func (r Record) String() string {
	return fmt.Sprintf("[%d]: <%#x, %#x, %#x, %f, %d, %d, %f>",
		r.StateID, r.Address, r.ReturnAddress, r.CallerAddress,
		r.ExecutionTime, r.ActivityID, r.ParentID, r.ClockBegin)
}

// Records is a collection of records in file order until sorted.
type Records []Record

// Sort orders the records by state id. Records of the same state keep their
// file order.
func (rs Records) Sort() {
	slices.SortStableFunc(rs, func(a, b Record) int {
		return cmp.Compare(a.StateID, b.StateID)
	})
}
