// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package symval interprets the raw bytes a solver assigned to a symbolic
// variable. Every function is total: any byte slice, including an empty one,
// has a well defined interpretation.
package symval

import (
	"encoding/base64"
	"encoding/binary"
	"strings"
)

// MaxIntWidth is the widest value, in bytes, that Int can represent. Wider
// values collapse to zero.
const MaxIntWidth = 8

// Int interprets b as a little-endian signed integer. Values of up to 4 bytes
// are zero extended to 4 bytes and read as an int32; values of 5 to 8 bytes
// are zero extended to 8 bytes and read as an int64. Values wider than 8 bytes
// are not representable and yield 0.
//
// The width is chosen from len(b) alone, so a 5 byte value is read as a 64 bit
// integer and its top bit never acts as a sign bit. Consumers of the existing
// output depend on this, so it is preserved.
func Int(b []byte) int64 {
	var buf [MaxIntWidth]byte
	switch n := len(b); {
	case n > MaxIntWidth:
		return 0
	case n <= 4:
		copy(buf[:4], b)
		return int64(int32(binary.LittleEndian.Uint32(buf[:4])))
	default:
		copy(buf[:], b)
		return int64(binary.LittleEndian.Uint64(buf[:]))
	}
}

const hexDigits = "0123456789abcdef"

// Hex renders each byte as "0xHH" in its original order, separated by commas.
func Hex(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(5*len(b) - 1)
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("0x")
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0xf])
	}
	return sb.String()
}

// IsPrintable reports whether c is kept verbatim by Printable: the graphic
// ASCII characters, space, and the whitespace controls \t \n \v \f \r.
func IsPrintable(c byte) bool {
	switch {
	case c >= 0x20 && c <= 0x7e:
		return true
	case c >= '\t' && c <= '\r':
		return true
	}
	return false
}

// Printable maps every byte that is not printable to '.'. The result has
// exactly one character per input byte.
func Printable(b []byte) string {
	s := make([]byte, len(b))
	for i, c := range b {
		if IsPrintable(c) {
			s[i] = c
		} else {
			s[i] = '.'
		}
	}
	return string(s)
}

// base64LineWidth is the MIME line length: 57 input bytes per line.
const base64LineWidth = 76

// Base64 returns the standard padded base64 encoding of b, broken into lines
// of 76 characters separated by '\n'. There is no trailing newline.
func Base64(b []byte) string {
	enc := base64.StdEncoding.EncodeToString(b)
	if len(enc) <= base64LineWidth {
		return enc
	}
	var sb strings.Builder
	sb.Grow(len(enc) + len(enc)/base64LineWidth)
	for len(enc) > base64LineWidth {
		sb.WriteString(enc[:base64LineWidth])
		sb.WriteByte('\n')
		enc = enc[base64LineWidth:]
	}
	sb.WriteString(enc)
	return sb.String()
}
