// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/s2etrace/internal/base"
	"github.com/spf13/cobra"
	"github.com/tailscale/hujson"
)

// Project describes the analysis project the tools operate on.
type Project struct {
	// Dir is the project directory. Relative input directories are resolved
	// against it.
	Dir string `json:"-"`
	// Name is informational.
	Name string `json:"project_name"`
	// ResultsDir is the directory holding the results of the run to
	// examine when no input directory is given.
	ResultsDir string `json:"results_dir"`
}

// LoadProject reads the project descriptor in dir. The descriptor is
// optional and may contain comments and trailing commas.
func LoadProject(dir string) (*Project, error) {
	p := &Project{Dir: dir}
	path := base.MakeFilepath(dir, base.FileTypeProject)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No descriptor.
	case err != nil:
		return nil, err
	default:
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
		if err := json.Unmarshal(std, p); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
	}
	if p.ResultsDir == "" {
		p.ResultsDir = base.DefaultResultsDir
	}
	return p, nil
}

// Path resolves a directory relative to the project directory.
func (p *Project) Path(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(p.Dir, dir)
}

// InputDir resolves the input directory of a command, defaulting to the
// project's results directory. It fails if the directory does not exist.
func (p *Project) InputDir(indir string) (string, error) {
	if indir == "" {
		indir = p.ResultsDir
	}
	dir := p.Path(indir)
	if err := requireDir(dir); err != nil {
		return "", errors.WithHint(errors.Wrap(err, "results directory"),
			"pass --indir or run the tool from the project directory")
	}
	return dir, nil
}

// OutputDir resolves the output directory of a command, defaulting to the
// input directory. An explicit output directory must already exist.
func (p *Project) OutputDir(outdir, indir string) (string, error) {
	if outdir == "" {
		return indir, nil
	}
	if err := requireDir(outdir); err != nil {
		return "", errors.Wrap(err, "output directory")
	}
	return outdir, nil
}

func requireDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errors.Newf("%s does not exist", dir)
		}
		return err
	}
	if !info.IsDir() {
		return errors.Newf("%s is not a directory", dir)
	}
	return nil
}

// projectFlags holds the flags shared by every command.
type projectFlags struct {
	dir     string
	verbose bool
}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.dir, "project", ".", "project directory")
	cmd.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "verbose output")
}

func (f *projectFlags) load() (*Project, error) {
	return LoadProject(f.dir)
}
