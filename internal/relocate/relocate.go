// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relocate moves converted files into a target directory. A plain
// rename is tried first; when source and target live on different volumes
// the file is copied, synced, verified against the original and only then
// is the original deleted.
package relocate

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/photoix/pkg/types"
)

// renameFunc is swapped in tests to simulate a cross-device rename.
var renameFunc = os.Rename

// Destination returns the path Move would place src at inside dstDir.
func Destination(src, dstDir string) string {
	return filepath.Join(dstDir, filepath.Base(src))
}

// Move relocates src into dstDir, keeping its base name, and returns the new
// path. An existing file at the destination is replaced only when overwrite
// is true. All failures wrap types.ErrRelocationFailed.
func Move(src, dstDir string, overwrite bool) (string, error) {
	if dstDir == "" {
		return "", fmt.Errorf("%w: empty target directory", types.ErrRelocationFailed)
	}
	dst := Destination(src, dstDir)

	srcAbs, _ := filepath.Abs(src)
	dstAbs, _ := filepath.Abs(dst)
	if srcAbs == dstAbs {
		return dst, nil
	}

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", types.ErrRelocationFailed, dstDir, err)
	}
	if _, err := os.Stat(dst); err == nil {
		if !overwrite {
			return "", fmt.Errorf("%w: %v: %s", types.ErrRelocationFailed, types.ErrDestinationExists, dst)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: checking %s: %v", types.ErrRelocationFailed, dst, err)
	}

	if err := renameFunc(src, dst); err == nil {
		return dst, nil
	}

	// Rename fails across volumes; fall back to copy, verify, delete.
	if err := copyVerified(src, dst); err != nil {
		return "", fmt.Errorf("%w: %s -> %s: %v", types.ErrRelocationFailed, src, dst, err)
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("%w: removing original %s: %v", types.ErrRelocationFailed, src, err)
	}
	return dst, nil
}

// copyVerified copies src to a temp file beside dst, syncs it, compares size
// and SHA-256 with the source and renames it into place.
func copyVerified(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".photoix-move-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	srcHash := sha256.New()
	n, err := io.Copy(tmp, io.TeeReader(in, srcHash))
	if err != nil {
		cleanup()
		return fmt.Errorf("copying: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("syncing: %w", err)
	}
	if n != info.Size() {
		cleanup()
		return fmt.Errorf("size mismatch: copied %d of %d bytes", n, info.Size())
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return err
	}
	dstHash := sha256.New()
	if _, err := io.Copy(dstHash, tmp); err != nil {
		cleanup()
		return fmt.Errorf("verifying: %w", err)
	}
	if string(srcHash.Sum(nil)) != string(dstHash.Sum(nil)) {
		cleanup()
		return errors.New("checksum mismatch after copy")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
