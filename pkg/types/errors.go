// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Errors shared across packages. None of them is fatal to the process:
// ErrInvalidPath and ErrNoFilesFound stop a batch before it starts,
// conversion and relocation errors are scoped to one file, and
// ErrConfigRead degrades to default settings.
var (
	ErrInvalidPath        = errors.New("invalid path")
	ErrNoFilesFound       = errors.New("no HEIC files found")
	ErrConversionFailed   = errors.New("conversion failed")
	ErrRelocationFailed   = errors.New("relocation failed")
	ErrDestinationExists  = errors.New("destination already exists")
	ErrConfigRead         = errors.New("reading settings")
	ErrUnsupportedBackend = errors.New("unsupported backend")
)
