// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package binfmt exposes utilities for formatting binary data with descriptive
// comments.
package binfmt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// lineWidth is the maximum width, in hex digits, of the binary data on one
// line.
const lineWidth = 40

// New constructs a new binary formatter.
func New(data []byte) *Formatter {
	offsetWidth := strconv.Itoa(max(int(math.Log10(float64(len(data)-1)))+1, 1))
	return &Formatter{
		data:            data,
		offsetFormatStr: "%0" + offsetWidth + "d-%0" + offsetWidth + "d: ",
	}
}

// Formatter is a utility for formatting binary data with descriptive comments.
type Formatter struct {
	buf   bytes.Buffer
	lines [][2]string // (binary data, comment) tuples
	data  []byte
	off   int

	offsetBase int64

	offsetFormatStr string
}

// SetOffsetBase makes the printed offsets relative to base instead of to the
// start of the data, for formatting a slice of a larger file.
func (f *Formatter) SetOffsetBase(base int64) {
	f.offsetBase = base
	width := strconv.Itoa(max(int(math.Log10(float64(base+int64(len(f.data))-1)))+1, 1))
	f.offsetFormatStr = "%0" + width + "d-%0" + width + "d: "
}

// More returns true if there is more data in the byte slice that can be formatted.
func (f *Formatter) More() bool {
	return f.off < len(f.data)
}

// Remaining returns the number of unformatted bytes remaining in the byte slice.
func (f *Formatter) Remaining() int {
	return len(f.data) - f.off
}

// Offset returns the current offset within the original data slice.
func (f *Formatter) Offset() int {
	return f.off
}

// Data returns the original data slice. Offset may be used to retrieve the
// current offset within the slice.
func (f *Formatter) Data() []byte {
	return f.data
}

// PeekUint reads a little-endian unsigned integer of the specified width at the
// current offset.
func (f *Formatter) PeekUint(w int) uint64 {
	switch w {
	case 1:
		return uint64(f.data[f.off])
	case 2:
		return uint64(binary.LittleEndian.Uint16(f.data[f.off:]))
	case 4:
		return uint64(binary.LittleEndian.Uint32(f.data[f.off:]))
	case 8:
		return binary.LittleEndian.Uint64(f.data[f.off:])
	default:
		panic("unsupported width")
	}
}

// Uint formats the next w bytes as a little-endian unsigned integer, prefixing
// the comment with its decimal value.
func (f *Formatter) Uint(w int, format string, args ...interface{}) uint64 {
	v := f.PeekUint(w)
	f.HexBytesln(w, "u%d(%d): %s", w*8, v, fmt.Sprintf(format, args...))
	return v
}

// Float64 formats the next 8 bytes as a little-endian IEEE 754 double,
// prefixing the comment with its value.
func (f *Formatter) Float64(format string, args ...interface{}) float64 {
	v := math.Float64frombits(f.PeekUint(8))
	f.HexBytesln(8, "f64(%g): %s", v, fmt.Sprintf(format, args...))
	return v
}

// HexBytesln formats the next n bytes in hexadecimal format, appending the
// formatted comment string to each line and ending on a newline.
func (f *Formatter) HexBytesln(n int, format string, args ...interface{}) int {
	commentLine := strings.TrimSpace(fmt.Sprintf(format, args...))
	consumed := n
	printLine := func() {
		bytesInLine := min(lineWidth/2, n)
		f.printOffsets(bytesInLine)
		f.printf("x %0"+strconv.Itoa(bytesInLine*2)+"x", f.data[f.off:f.off+bytesInLine])
		f.newline(f.buf.String(), commentLine)
		f.off += bytesInLine
		n -= bytesInLine
	}
	printLine()
	commentLine = "(continued...)"
	for n > 0 {
		printLine()
	}
	return consumed
}

// HexTextln formats the next n bytes in hexadecimal format, appending a comment
// to each line showing the ASCII equivalent characters for each byte for bytes
// that are human-readable.
func (f *Formatter) HexTextln(n int) int {
	consumed := n
	for n > 0 {
		bytesInLine := min(lineWidth/2, n)
		f.printOffsets(bytesInLine)
		f.printf("x %0"+strconv.Itoa(bytesInLine*2)+"x", f.data[f.off:f.off+bytesInLine])
		f.newline(f.buf.String(), asciiChars(f.data[f.off:f.off+bytesInLine]))
		f.off += bytesInLine
		n -= bytesInLine
	}
	return consumed
}

// Uvarint decodes the bytes at the current offset as a uvarint, formatting them
// in hexadecimal and prefixing the comment with the encoded decimal value. It
// returns the number of bytes consumed, or 0 if no valid uvarint is present.
func (f *Formatter) Uvarint(format string, args ...interface{}) (uint64, int) {
	v, n := binary.Uvarint(f.data[f.off:])
	if n <= 0 {
		return 0, 0
	}
	f.HexBytesln(n, "uvarint(%d): %s", v, fmt.Sprintf(format, args...))
	return v, n
}

// Comment adds a line holding only a comment.
func (f *Formatter) Comment(format string, args ...interface{}) {
	f.newline("", fmt.Sprintf(format, args...))
}

// String returns the current formatted output.
func (f *Formatter) String() string {
	f.buf.Reset()
	// Identify the max width of the binary data so that we can add padding to
	// align comments on the right.
	binaryLineWidth := 0
	for _, lineData := range f.lines {
		binaryLineWidth = max(binaryLineWidth, len(lineData[0]))
	}
	for _, lineData := range f.lines {
		fmt.Fprint(&f.buf, lineData[0])
		if len(lineData[1]) > 0 {
			if len(lineData[0]) == 0 {
				// There's no binary data on this line, just a comment. Print
				// the comment left-aligned.
				fmt.Fprint(&f.buf, "# ")
			} else {
				// Align the comment to the right of the binary data.
				fmt.Fprint(&f.buf, strings.Repeat(" ", binaryLineWidth-len(lineData[0])))
				fmt.Fprint(&f.buf, " # ")
			}
			fmt.Fprint(&f.buf, lineData[1])
		}
		fmt.Fprintln(&f.buf)
	}
	return f.buf.String()
}

func (f *Formatter) newline(binaryData, comment string) {
	f.lines = append(f.lines, [2]string{binaryData, comment})
	f.buf.Reset()
}

func (f *Formatter) printOffsets(n int) {
	start := f.offsetBase + int64(f.off)
	f.printf(f.offsetFormatStr, start, start+int64(n))
}

func (f *Formatter) printf(format string, args ...interface{}) {
	fmt.Fprintf(&f.buf, format, args...)
}

func asciiChars(b []byte) string {
	s := make([]byte, len(b))
	for i := range b {
		if b[i] >= 32 && b[i] <= 126 {
			s[i] = b[i]
		} else {
			s[i] = '.'
		}
	}
	return string(s)
}
