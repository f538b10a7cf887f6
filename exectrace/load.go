// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package exectrace

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/s2etrace/internal/base"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// ErrTraceNotFound is returned by Load when a results directory holds no
// execution trace.
var ErrTraceNotFound = errors.New("execution trace not found")

// Compression suffixes recognized by Open in addition to the plain file.
const (
	zstdSuffix   = ".zst"
	snappySuffix = ".sz"
)

// Open opens a trace file for reading, transparently decompressing files with
// a ".zst" (zstd) or ".sz" (snappy framing format) suffix.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(path, zstdSuffix):
		d, err := zstd.NewReader(bufio.NewReader(f))
		if err != nil {
			return nil, errors.CombineErrors(errors.Wrapf(err, "opening %s", path), f.Close())
		}
		return &decompressedFile{Reader: d, close: func() error {
			d.Close()
			return f.Close()
		}}, nil
	case strings.HasSuffix(path, snappySuffix):
		return &decompressedFile{Reader: snappy.NewReader(bufio.NewReader(f)), close: f.Close}, nil
	default:
		return &decompressedFile{Reader: bufio.NewReader(f), close: f.Close}, nil
	}
}

type decompressedFile struct {
	io.Reader
	close func() error
}

func (f *decompressedFile) Close() error {
	return f.close()
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Logger receives a line for each trace file read. Defaults to
	// base.DefaultLogger.
	Logger base.Logger
	// PathIDs restricts the tree to the paths leading to these states. Empty
	// keeps every path.
	PathIDs []StateID
}

// FindTraceFiles returns the trace files of a results directory. A single
// node run leaves one trace directly in dir; a multi-node run leaves one per
// numbered node subdirectory, which are returned in node order.
func FindTraceFiles(dir string) ([]string, error) {
	if path, ok := findTraceFile(dir); ok {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type nodeDir struct {
		num  uint64
		path string
	}
	var nodes []nodeDir
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		num, err := strconv.ParseUint(e.Name(), 10, 32)
		if err != nil {
			continue
		}
		if path, ok := findTraceFile(filepath.Join(dir, e.Name())); ok {
			nodes = append(nodes, nodeDir{num: num, path: path})
		}
	}
	if len(nodes) == 0 {
		return nil, errors.WithHint(
			errors.Wrapf(ErrTraceNotFound, "%s", dir),
			"enable the ExecutionTracer and TestCaseGenerator plugins and rerun the analysis")
	}
	slices.SortFunc(nodes, func(a, b nodeDir) int {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return +1
		}
		return 0
	})
	paths := make([]string, len(nodes))
	for i := range nodes {
		paths[i] = nodes[i].path
	}
	return paths, nil
}

func findTraceFile(dir string) (string, bool) {
	name := base.MakeFilename(base.FileTypeExecutionTrace)
	for _, suffix := range []string{"", zstdSuffix, snappySuffix} {
		path := filepath.Join(dir, name+suffix)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// Load reads every trace file of a results directory and builds the state
// tree. Items from several node files are concatenated in node order before
// the tree is built.
func Load(dir string, opts LoadOptions) (*Tree, error) {
	if opts.Logger == nil {
		opts.Logger = base.DefaultLogger{}
	}
	paths, err := FindTraceFiles(dir)
	if err != nil {
		return nil, err
	}
	var nodes []Node
	for _, path := range paths {
		n, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		opts.Logger.Infof("read %d trace items from %s", len(n), path)
		nodes = append(nodes, n...)
	}
	return Build(nodes).Filter(opts.PathIDs...), nil
}

func loadFile(path string) (_ []Node, err error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.CombineErrors(err, f.Close()) }()
	nodes, err := ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return nodes, nil
}
