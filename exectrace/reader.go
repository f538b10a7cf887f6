// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package exectrace reads the execution traces written by the tracer plugin
// and assembles them into a tree of forked states.
//
// A trace file is a sequence of frames, each holding a header message and an
// item message:
//
//	+-------------+--------+-----------+------+
//	| header len  | header | item len  | item |
//	| (u32, LE)   |        | (u32, LE) |      |
//	+-------------+--------+-----------+------+
//
// Both messages use the protocol buffer wire format. The header carries the
// state id and the item type; the item type selects how the item message is
// decoded.
package exectrace

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/s2etrace/internal/base"
)

// frameLenSize is the size of the length prefix before each message.
const frameLenSize = 4

// maxMessageSize bounds the length prefix so that a damaged length does not
// turn into a huge allocation.
const maxMessageSize = 64 << 20

// Reader reads nodes from a trace file, one frame at a time.
type Reader struct {
	r   io.Reader
	off int64
	buf []byte
	tmp [frameLenSize]byte
}

// NewReader returns a reader that decodes frames from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Offset returns the offset of the next frame.
func (r *Reader) Offset() int64 {
	return r.off
}

// Next returns the next node in the trace. It returns io.EOF when the trace
// ends on a frame boundary. A frame that is cut short or does not decode
// returns an error marked with base.ErrCorruption.
func (r *Reader) Next() (Node, error) {
	start := r.off
	hdr, err := r.readMessage(true /* first */)
	if err != nil {
		return Node{}, err
	}
	h, err := decodeHeader(hdr)
	if err != nil {
		return Node{}, base.MarkCorruptionError(errors.Wrapf(err, "frame at offset %d", start))
	}
	data, err := r.readMessage(false /* first */)
	if err != nil {
		return Node{}, err
	}
	item, err := decodeItem(h.Type, data)
	if err != nil {
		return Node{}, base.MarkCorruptionError(errors.Wrapf(err, "frame at offset %d", start))
	}
	return Node{Header: h, Item: item}, nil
}

// readMessage reads one length-prefixed message. The returned slice is valid
// until the next call. When first is set, running out of input before the
// length prefix is a clean end of the trace.
func (r *Reader) readMessage(first bool) ([]byte, error) {
	n, err := io.ReadFull(r.r, r.tmp[:])
	r.off += int64(n)
	if err != nil {
		if err == io.EOF && first {
			return nil, io.EOF
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, base.CorruptionErrorf("truncated length prefix at offset %d", r.off-int64(n))
		}
		return nil, err
	}
	size := binary.LittleEndian.Uint32(r.tmp[:])
	if size > maxMessageSize {
		return nil, base.CorruptionErrorf("message length %d at offset %d exceeds %d",
			size, r.off-frameLenSize, maxMessageSize)
	}
	if cap(r.buf) < int(size) {
		r.buf = make([]byte, size)
	}
	r.buf = r.buf[:size]
	n, err = io.ReadFull(r.r, r.buf)
	r.off += int64(n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, base.CorruptionErrorf("truncated message at offset %d: expected %d bytes, got %d",
				r.off-int64(n), size, n)
		}
		return nil, err
	}
	return r.buf, nil
}

// ReadAll reads every node until the end of the trace. The nodes read before
// an error are returned along with it.
func ReadAll(r io.Reader) ([]Node, error) {
	rr := NewReader(r)
	var nodes []Node
	for {
		n, err := rr.Next()
		if err == io.EOF {
			return nodes, nil
		} else if err != nil {
			return nodes, err
		}
		nodes = append(nodes, n)
	}
}

// Writer writes nodes in the trace file format.
type Writer struct {
	w   io.Writer
	buf []byte
}

// NewWriter returns a writer that encodes frames to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes a single frame. The header's type is taken from the item.
func (w *Writer) Write(h Header, item Item) error {
	h.Type = item.Type()
	w.buf = w.buf[:0]
	w.buf = appendFrame(w.buf, appendHeader(nil, &h))
	w.buf = appendFrame(w.buf, appendItem(nil, item))
	_, err := w.w.Write(w.buf)
	return err
}

func appendFrame(b, msg []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(len(msg)))
	return append(b, msg...)
}
