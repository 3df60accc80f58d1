// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enumerate discovers the HEIC files a batch will convert.
// A root path may be a single file or a directory; directories are walked
// top-level only or fully depending on the recursive flag.
package enumerate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/karrick/godirwalk"

	"github.com/pdiddy/photoix/pkg/types"
)

// headerSize is enough bytes for filetype to recognise an ISO-BMFF ftyp box.
const headerSize = 261

// DefaultExtensions are matched when Options.Extensions is empty.
var DefaultExtensions = []string{".heic"}

// Options tunes enumeration.
type Options struct {
	// Recursive walks all subdirectories. When false only the top level of
	// the root directory is listed.
	Recursive bool

	// Extensions to match case-insensitively, each with a leading dot.
	Extensions []string

	// VerifyContent drops files whose header does not carry a HEIF signature.
	VerifyContent bool
}

// Match reports whether name carries one of the configured extensions.
func (o Options) Match(name string) bool {
	exts := o.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Enumerate returns the HEIC files under root in traversal order. A root
// that is neither a file nor a directory returns types.ErrInvalidPath. A
// valid root with no matches returns an empty slice and a nil error.
func Enumerate(root string, recursive bool) ([]string, error) {
	return EnumerateWith(root, Options{Recursive: recursive})
}

// EnumerateWith is Enumerate with explicit options.
func EnumerateWith(root string, opts Options) ([]string, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty path", types.ErrInvalidPath)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrInvalidPath, root, err)
	}

	switch {
	case info.Mode().IsRegular():
		if !opts.Match(root) || !opts.accept(root) {
			return []string{}, nil
		}
		return []string{root}, nil
	case info.IsDir():
		return walk(root, opts)
	default:
		return nil, fmt.Errorf("%w: %s is not a regular file or directory", types.ErrInvalidPath, root)
	}
}

func walk(root string, opts Options) ([]string, error) {
	files := []string{}
	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if path == root {
				return nil
			}
			isDir, err := de.IsDirOrSymlinkToDir()
			if err != nil {
				return nil
			}
			if isDir {
				// Symlinked directories are not followed by the walker.
				if !opts.Recursive && !de.IsSymlink() {
					return godirwalk.SkipThis
				}
				return nil
			}
			if !opts.Match(de.Name()) {
				return nil
			}
			if de.IsSymlink() {
				fi, err := os.Stat(path)
				if err != nil || !fi.Mode().IsRegular() {
					return nil
				}
			} else if !de.IsRegular() {
				return nil
			}
			if opts.accept(path) {
				files = append(files, path)
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			// Unreadable subdirectories are skipped, not fatal.
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

func (o Options) accept(path string) bool {
	if !o.VerifyContent {
		return true
	}
	ok, err := Sniff(path)
	return err == nil && ok
}

// Sniff reports whether the file at path starts with a HEIF signature.
func Sniff(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading header of %s: %w", path, err)
	}
	return filetype.Is(head[:n], "heif"), nil
}
