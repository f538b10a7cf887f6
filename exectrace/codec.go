// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package exectrace

import (
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Header field numbers.
const (
	headerStateID      protowire.Number = 1
	headerTimestamp    protowire.Number = 2
	headerAddressSpace protowire.Number = 3
	headerPID          protowire.Number = 4
	headerTID          protowire.Number = 5
	headerPC           protowire.Number = 6
	headerType         protowire.Number = 7
)

// Item field numbers.
const (
	forkChildren  protowire.Number = 1
	testCaseItems protowire.Number = 1
	pairKey       protowire.Number = 1
	pairValue     protowire.Number = 2
)

var errTruncatedMessage = errors.New("truncated message")

func appendHeader(b []byte, h *Header) []byte {
	b = appendVarintField(b, headerStateID, uint64(h.StateID))
	b = appendVarintField(b, headerTimestamp, h.Timestamp)
	b = appendVarintField(b, headerAddressSpace, h.AddressSpace)
	b = appendVarintField(b, headerPID, h.PID)
	b = appendVarintField(b, headerTID, h.TID)
	b = appendVarintField(b, headerPC, h.PC)
	b = appendVarintField(b, headerType, uint64(h.Type))
	return b
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendItem(b []byte, item Item) []byte {
	switch it := item.(type) {
	case *TestCaseItem:
		var pair []byte
		for _, p := range it.Pairs {
			pair = pair[:0]
			pair = protowire.AppendTag(pair, pairKey, protowire.BytesType)
			pair = protowire.AppendString(pair, p.Key)
			pair = protowire.AppendTag(pair, pairValue, protowire.BytesType)
			pair = protowire.AppendBytes(pair, p.Value)
			b = protowire.AppendTag(b, testCaseItems, protowire.BytesType)
			b = protowire.AppendBytes(b, pair)
		}
	case *ForkItem:
		if len(it.Branches) == 0 {
			return b
		}
		var packed []byte
		for i := range it.Branches {
			packed = protowire.AppendVarint(packed, uint64(it.Branches[i].StateID))
		}
		b = protowire.AppendTag(b, forkChildren, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	case *OtherItem:
		b = append(b, it.Data...)
	}
	return b
}

// consumeFields calls fn for every field in b. fn returns the number of bytes
// of the field value it consumed, or -1 to have the value skipped.
func consumeFields(
	b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) (int, error),
) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		n, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if n < 0 {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
		}
		b = b[n:]
	}
	return nil
}

func decodeHeader(b []byte) (Header, error) {
	var h Header
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		if typ != protowire.VarintType || num < headerStateID || num > headerType {
			return -1, nil
		}
		x, n := protowire.ConsumeVarint(v)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		switch num {
		case headerStateID:
			h.StateID = StateID(x)
		case headerTimestamp:
			h.Timestamp = x
		case headerAddressSpace:
			h.AddressSpace = x
		case headerPID:
			h.PID = x
		case headerTID:
			h.TID = x
		case headerPC:
			h.PC = x
		case headerType:
			h.Type = ItemType(x)
		}
		return n, nil
	})
	return h, errors.Wrap(err, "decoding header")
}

func decodeItem(typ ItemType, b []byte) (Item, error) {
	switch typ {
	case TypeTestCase:
		item, err := decodeTestCase(b)
		return item, errors.Wrap(err, "decoding test case")
	case TypeFork:
		item, err := decodeFork(b)
		return item, errors.Wrap(err, "decoding fork")
	default:
		return &OtherItem{ItemType: typ, Data: append([]byte(nil), b...)}, nil
	}
}

func decodeTestCase(b []byte) (*TestCaseItem, error) {
	item := &TestCaseItem{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		if num != testCaseItems || typ != protowire.BytesType {
			return -1, nil
		}
		msg, n := protowire.ConsumeBytes(v)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		var kv KeyValue
		err := consumeFields(msg, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
			if typ != protowire.BytesType || (num != pairKey && num != pairValue) {
				return -1, nil
			}
			s, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			if num == pairKey {
				kv.Key = string(s)
			} else {
				kv.Value = append([]byte{}, s...)
			}
			return n, nil
		})
		if err != nil {
			return 0, err
		}
		if kv.Value == nil {
			kv.Value = []byte{}
		}
		item.Pairs = append(item.Pairs, kv)
		return n, nil
	})
	return item, err
}

func decodeFork(b []byte) (*ForkItem, error) {
	item := &ForkItem{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		if num != forkChildren {
			return -1, nil
		}
		switch typ {
		case protowire.VarintType:
			x, n := protowire.ConsumeVarint(v)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			item.Branches = append(item.Branches, Branch{StateID: StateID(x)})
			return n, nil
		case protowire.BytesType:
			packed, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			for len(packed) > 0 {
				x, m := protowire.ConsumeVarint(packed)
				if m < 0 {
					return 0, errTruncatedMessage
				}
				item.Branches = append(item.Branches, Branch{StateID: StateID(x)})
				packed = packed[m:]
			}
			return n, nil
		}
		return -1, nil
	})
	return item, err
}
