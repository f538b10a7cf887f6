// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package latency

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/s2etrace/internal/binfmt"
)

// ReadRecordAt reads the bytes of the i-th record of a trace. If the trace
// ends in the middle of the record, the available bytes are returned along
// with an error wrapping ErrTruncated.
func ReadRecordAt(r io.ReaderAt, i int64) ([]byte, error) {
	buf := make([]byte, RecordSize)
	n, err := r.ReadAt(buf, i*RecordSize)
	switch {
	case n == RecordSize:
		return buf, nil
	case n > 0 && (err == io.EOF || err == nil):
		return buf[:n], errors.Wrapf(ErrTruncated, "record %d has %d of %d bytes", i, n, RecordSize)
	case err == io.EOF:
		return nil, errors.Newf("record %d is past the end of the trace", i)
	default:
		return nil, err
	}
}

// Describe returns an annotated hex listing of the encoded record b, which
// starts at offset off in the trace. Offsets in the listing are relative to
// the start of the trace. A short record is listed as far as it goes.
func Describe(b []byte, off int64) string {
	f := binfmt.New(b)
	f.SetOffsetBase(off)
	fields := []struct {
		name  string
		width int
		float bool
	}{
		{name: "state_id", width: 4},
		{name: "address", width: 8},
		{name: "return_address", width: 8},
		{name: "caller_address", width: 8},
		{name: "execution_time", width: 8, float: true},
		{name: "activity_id", width: 8},
		{name: "parent_id", width: 8},
		{name: "clock_begin", width: 8, float: true},
	}
	for _, field := range fields {
		if f.Remaining() < field.width {
			f.Comment("truncated: %d of %d bytes", len(b), RecordSize)
			if f.More() {
				f.HexTextln(f.Remaining())
			}
			break
		}
		if field.float {
			f.Float64("%s", field.name)
		} else {
			f.Uint(field.width, "%s", field.name)
		}
	}
	return f.String()
}
