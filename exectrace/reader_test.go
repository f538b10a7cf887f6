// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package exectrace

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/cockroachdb/s2etrace/internal/base"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func encodeNodes(t *testing.T, nodes []Node) []byte {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, n := range nodes {
		require.NoError(t, w.Write(n.Header, n.Item))
	}
	return buf.Bytes()
}

func TestReaderRoundTrip(t *testing.T) {
	nodes := []Node{
		{
			Header: Header{StateID: 0, Timestamp: 100, AddressSpace: 0x1000, PID: 4, TID: 5, PC: 0x401000},
			Item:   &OtherItem{ItemType: TypeCall, Data: []byte{1, 2, 3}},
		},
		{
			Header: Header{StateID: 0, Timestamp: 101},
			Item:   &ForkItem{Branches: []Branch{{StateID: 0}, {StateID: 1}, {StateID: 300}}},
		},
		{
			Header: Header{StateID: 1, Timestamp: 102},
			Item: &TestCaseItem{Pairs: []KeyValue{
				{Key: "v0_x_0", Value: []byte{0x11, 0x22}},
				{Key: "v1_empty_1", Value: []byte{}},
			}},
		},
		{
			Header: Header{StateID: 300},
			Item:   &ForkItem{},
		},
	}
	data := encodeNodes(t, nodes)

	r := NewReader(bytes.NewReader(data))
	for i := range nodes {
		n, err := r.Next()
		require.NoError(t, err)
		want := nodes[i]
		want.Header.Type = want.Item.Type()
		require.Equal(t, want, n)
	}
	_, err := r.Next()
	require.Equal(t, io.EOF, err)
	require.Equal(t, int64(len(data)), r.Offset())
}

func TestReaderTruncated(t *testing.T) {
	nodes := []Node{
		{Item: &ForkItem{Branches: []Branch{{StateID: 1}, {StateID: 2}}}},
		{Header: Header{StateID: 2}, Item: &TestCaseItem{Pairs: []KeyValue{{Key: "k", Value: []byte("v")}}}},
	}
	first := len(encodeNodes(t, nodes[:1]))
	data := encodeNodes(t, nodes)

	for cut := 0; cut < len(data); cut++ {
		got, err := ReadAll(bytes.NewReader(data[:cut]))
		switch cut {
		case 0:
			require.NoError(t, err)
			require.Empty(t, got)
		case first:
			require.NoError(t, err)
			require.Len(t, got, 1)
		default:
			require.Error(t, err, "cut=%d", cut)
			require.True(t, base.IsCorruptionError(err), "cut=%d: %v", cut, err)
			if cut > first {
				require.Len(t, got, 1)
			} else {
				require.Empty(t, got)
			}
		}
	}
}

func TestReaderOversizedMessage(t *testing.T) {
	data := binary.LittleEndian.AppendUint32(nil, maxMessageSize+1)
	_, err := NewReader(bytes.NewReader(data)).Next()
	require.True(t, base.IsCorruptionError(err))
	require.Contains(t, err.Error(), "exceeds")
}

func TestReaderBadMessage(t *testing.T) {
	// A header whose only field is a truncated varint.
	var data []byte
	data = appendFrame(data, []byte{0x08, 0x80})
	data = appendFrame(data, nil)
	_, err := NewReader(bytes.NewReader(data)).Next()
	require.True(t, base.IsCorruptionError(err))
	require.Contains(t, err.Error(), "frame at offset 0")
}

func TestDecodeForkUnpacked(t *testing.T) {
	var b []byte
	for _, id := range []uint64{7, 3, 9} {
		b = protowire.AppendTag(b, forkChildren, protowire.VarintType)
		b = protowire.AppendVarint(b, id)
	}
	// Unknown fields are skipped.
	b = protowire.AppendTag(b, 15, protowire.BytesType)
	b = protowire.AppendString(b, "ignored")
	f, err := decodeFork(b)
	require.NoError(t, err)
	require.Equal(t, []StateID{7, 3, 9}, f.ChildIDs())
}

func TestDecodeHeaderSkipsUnknownFields(t *testing.T) {
	h := Header{StateID: 42, PC: 0xdeadbeef, Type: TypeTestCase}
	b := appendHeader(nil, &h)
	b = protowire.AppendTag(b, 20, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, 1)
	got, err := decodeHeader(b)
	require.NoError(t, err)
	require.Equal(t, h, got)
}
