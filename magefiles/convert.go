//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert builds the CLI and converts the HEIC files under dir, e.g.
// `mage convert ./testdata/photos`.
func Convert(dir string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "convert", "--log-level", "info", dir)
}
