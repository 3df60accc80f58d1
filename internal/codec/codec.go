// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package codec implements the single-file HEIC to JPEG conversion primitive
// with pluggable backends: a native Go decoder and external command line
// tools (libheif's heif-convert, macOS sips).
package codec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/photoix/pkg/types"
)

// Codec converts one HEIC file into a JPEG.
type Codec interface {
	// Name returns the backend name.
	Name() string

	// Convert writes the JPEG for src at dst. It returns an error wrapping
	// types.ErrDestinationExists when dst exists and opts.Overwrite is false.
	// With opts.RemoveSource the source is deleted once dst is in place.
	Convert(ctx context.Context, src, dst string, opts Options) error
}

// Options controls a single conversion.
type Options struct {
	Overwrite    bool
	RemoveSource bool
	Quality      int
	AutoOrient   bool
}

// OptionsFor builds codec options for req under cfg.
func OptionsFor(req types.ConversionRequest, cfg types.ConverterConfig) Options {
	return Options{
		Overwrite:    req.Overwrite,
		RemoveSource: req.RemoveSource,
		Quality:      cfg.EffectiveQuality(),
		AutoOrient:   cfg.AutoOrient,
	}
}

// produceFunc writes the converted image to tmpPath, which ends in ".jpg".
type produceFunc func(ctx context.Context, tmpPath string) error

// convertAtomically runs produce into a temporary file beside dst and renames
// it into place, so a failed conversion never leaves a partial JPEG behind.
func convertAtomically(ctx context.Context, src, dst string, opts Options, produce produceFunc) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("%w: source %s: %v", types.ErrConversionFailed, src, err)
	}
	if !opts.Overwrite {
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("%w: %s", types.ErrDestinationExists, dst)
		}
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", types.ErrConversionFailed, dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".photoix-*.jpg")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", types.ErrConversionFailed, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := produce(ctx, tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %v", types.ErrConversionFailed, src, err)
	}
	if info, err := os.Stat(tmpPath); err != nil || info.Size() == 0 {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: empty output", types.ErrConversionFailed, src)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: writing %s: %v", types.ErrConversionFailed, dst, err)
	}

	if opts.RemoveSource {
		if err := os.Remove(src); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: removing source %s: %v", types.ErrConversionFailed, src, err)
		}
	}
	return nil
}
