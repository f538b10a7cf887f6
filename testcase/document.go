// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package testcase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/s2etrace/internal/base"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of test case documents.
type Format int

// The Format enumeration.
const (
	FormatJSON Format = iota
	FormatYAML
)

// ParseFormat parses a format name as accepted by the --format flag.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "yaml":
		return FormatYAML, nil
	}
	return 0, errors.Newf("unknown test case format %q (expected json or yaml)", s)
}

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// Ext returns the file extension of documents in this format.
func (f Format) Ext() string {
	return f.String()
}

// Document is the serialized form of a test case. Field order is part of the
// output format.
type Document struct {
	StateID   uint32             `json:"state_id" yaml:"state_id"`
	KeyValues []KeyValueDocument `json:"key_values" yaml:"key_values"`
}

// KeyValueDocument is the serialized form of a KeyValue.
type KeyValueDocument struct {
	Key            string `json:"key" yaml:"key"`
	NumBytes       int    `json:"num_bytes" yaml:"num_bytes"`
	ValueBytes     string `json:"value_bytes" yaml:"value_bytes"`
	ValueInt       int64  `json:"value_int" yaml:"value_int"`
	ValueHex       string `json:"value_hex" yaml:"value_hex"`
	ValuePrintable string `json:"value_printable" yaml:"value_printable"`
}

// MakeDocument returns the document for a test case.
func MakeDocument(tc *TestCase) Document {
	doc := Document{
		StateID:   uint32(tc.StateID),
		KeyValues: make([]KeyValueDocument, len(tc.KeyValues)),
	}
	for i, kv := range tc.KeyValues {
		doc.KeyValues[i] = KeyValueDocument{
			Key:            kv.Key,
			NumBytes:       kv.NumBytes(),
			ValueBytes:     kv.Base64(),
			ValueInt:       kv.Int(),
			ValueHex:       kv.Hex(),
			ValuePrintable: kv.Printable(),
		}
	}
	return doc
}

// Encode writes the document for a test case to w. JSON documents are pure
// ASCII: other characters are written as \uXXXX escapes.
func Encode(w io.Writer, tc *TestCase, format Format) error {
	doc := MakeDocument(tc)
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		if err := enc.Encode(doc); err != nil {
			return err
		}
		_, err := w.Write(appendASCII(nil, buf.Bytes()))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(4)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.AssertionFailedf("unknown format %d", format)
}

// appendASCII appends src to dst with every byte outside the printable ASCII
// range above 0x7e escaped. Runes outside the basic multilingual plane become
// a surrogate pair. src must be encoded JSON, where such bytes only occur
// inside strings.
func appendASCII(dst, src []byte) []byte {
	for len(src) > 0 {
		if c := src[0]; c < 0x7f {
			dst = append(dst, c)
			src = src[1:]
			continue
		}
		r, size := utf8.DecodeRune(src)
		src = src[size:]
		if r > 0xffff {
			r1, r2 := utf16.EncodeRune(r)
			dst = fmt.Appendf(dst, `\u%04x\u%04x`, r1, r2)
			continue
		}
		dst = fmt.Appendf(dst, `\u%04x`, r)
	}
	return dst
}

// WriteOptions configures WriteAll.
type WriteOptions struct {
	Format Format
	Logger base.Logger
	// Print writes every test case to Out as it is written.
	Print bool
	Out   io.Writer
}

// WriteAll writes one document per test case into dir, named by the test
// case's position in the set: testcase-000000.json, testcase-000001.json and
// so on. The set should be sorted first. Each file is replaced atomically.
// WriteAll returns the paths written.
func WriteAll(dir string, set *Set, opts WriteOptions) ([]string, error) {
	if opts.Logger == nil {
		opts.Logger = base.DefaultLogger{}
	}
	paths := make([]string, 0, set.Len())
	var buf bytes.Buffer
	for i, tc := range set.All() {
		if opts.Print && opts.Out != nil {
			if _, err := io.WriteString(opts.Out, "=========\n"+tc.String()+"\n"); err != nil {
				return paths, err
			}
		}
		buf.Reset()
		if err := Encode(&buf, tc, opts.Format); err != nil {
			return paths, errors.Wrapf(err, "encoding test case for state %d", tc.StateID)
		}
		path := filepath.Join(dir, base.MakeTestCaseFilename(base.TestCaseNum(i), opts.Format.Ext()))
		if err := atomic.WriteFile(path, &buf); err != nil {
			return paths, errors.Wrapf(err, "writing %s", path)
		}
		paths = append(paths, path)
	}
	opts.Logger.Infof("wrote %d test cases to %s", len(paths), dir)
	stale, err := FindStale(dir, len(paths))
	if err != nil {
		return paths, err
	}
	for _, path := range stale {
		opts.Logger.Errorf("%s is left over from an earlier extraction", path)
	}
	return paths, nil
}

// FindStale returns the test case documents in dir, in any format, numbered n
// or above. After writing n test cases these are left over from an earlier
// extraction that found more.
func FindStale(dir string, n int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var stale []string
	for _, e := range entries {
		fileType, num, ok := base.ParseFilename(e.Name())
		if ok && fileType == base.FileTypeTestCase && int(num) >= n {
			stale = append(stale, filepath.Join(dir, e.Name()))
		}
	}
	return stale, nil
}
