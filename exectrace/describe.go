// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package exectrace

import (
	"encoding/binary"

	"github.com/cockroachdb/s2etrace/internal/binfmt"
	"google.golang.org/protobuf/encoding/protowire"
)

var headerFieldNames = map[protowire.Number]string{
	headerStateID:      "state_id",
	headerTimestamp:    "timestamp",
	headerAddressSpace: "address_space",
	headerPID:          "pid",
	headerTID:          "tid",
	headerPC:           "pc",
	headerType:         "type",
}

// Describe returns an annotated hex listing of the frames in data, at most
// limit of them when limit is positive. A damaged frame ends the listing with
// the remaining bytes dumped as text.
func Describe(data []byte, limit int) string {
	f := binfmt.New(data)
	for i := 0; f.More() && (limit <= 0 || i < limit); i++ {
		f.Comment("frame %d", i)
		if !describeMessage(f, "header", describeHeader) ||
			!describeMessage(f, "item", nil) {
			f.Comment("truncated frame")
			f.HexTextln(f.Remaining())
			break
		}
	}
	return f.String()
}

// describeMessage formats one length-prefixed message. The message body is
// formatted by fn, or dumped as text when fn is nil or cannot make sense of
// it.
func describeMessage(f *binfmt.Formatter, name string, fn func(f *binfmt.Formatter, end int) bool) bool {
	if f.Remaining() < frameLenSize {
		return false
	}
	size := int(f.PeekUint(frameLenSize))
	if f.Remaining()-frameLenSize < size {
		return false
	}
	f.Uint(frameLenSize, "%s length", name)
	end := f.Offset() + size
	if fn == nil || !fn(f, end) {
		if n := end - f.Offset(); n > 0 {
			f.HexTextln(n)
		}
	}
	return true
}

func describeHeader(f *binfmt.Formatter, end int) bool {
	for f.Offset() < end {
		tag, n := binary.Uvarint(f.Data()[f.Offset():end])
		if n <= 0 {
			return false
		}
		num, typ := protowire.DecodeTag(tag)
		name, ok := headerFieldNames[num]
		if !ok || typ != protowire.VarintType {
			return false
		}
		f.Uvarint("tag: field %d", num)
		v, n := binary.Uvarint(f.Data()[f.Offset():end])
		if n <= 0 {
			return false
		}
		if num == headerType {
			f.Uvarint("%s=%s", name, ItemType(v))
		} else {
			f.Uvarint("%s", name)
		}
	}
	return true
}
