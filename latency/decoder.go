// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package latency

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/s2etrace/internal/base"
)

// ErrTruncated is returned when the trace ends in the middle of a record. It
// is marked with base.ErrCorruption.
var ErrTruncated = base.MarkCorruptionError(errors.New("latency: truncated record"))

// Decoder reads records from a latency trace, one at a time.
type Decoder struct {
	r   io.Reader
	off int64
	buf [RecordSize]byte
}

// NewDecoder returns a decoder that reads records from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Offset returns the offset of the next record.
func (d *Decoder) Offset() int64 {
	return d.off
}

// Next returns the next record. It returns io.EOF when the trace ends on a
// record boundary, and an error wrapping ErrTruncated when it ends in the
// middle of a record. A partial record is never returned.
func (d *Decoder) Next() (Record, error) {
	n, err := io.ReadFull(d.r, d.buf[:])
	switch err {
	case nil:
	case io.EOF:
		return Record{}, io.EOF
	case io.ErrUnexpectedEOF:
		return Record{}, errors.Wrapf(ErrTruncated,
			"expected %d bytes at offset %d, got %d", RecordSize, d.off, n)
	default:
		return Record{}, err
	}
	d.off += RecordSize
	return DecodeRecord(d.buf[:]), nil
}

// DecodeAll reads every record until the end of the trace. On error, the
// records decoded before the error are returned along with it.
func DecodeAll(r io.Reader) (Records, error) {
	d := NewDecoder(r)
	var rs Records
	for {
		rec, err := d.Next()
		if err == io.EOF {
			return rs, nil
		} else if err != nil {
			return rs, err
		}
		rs = append(rs, rec)
	}
}
