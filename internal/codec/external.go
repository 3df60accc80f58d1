// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codec

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pdiddy/photoix/pkg/types"
)

const (
	binHeifConvert = "heif-convert"
	binSips        = "sips"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// External converts by invoking a command line tool. heif-convert and sips
// share the same flow; they differ only in binary name and argument layout.
type External struct {
	bin  string
	args func(src, dst string, quality int) []string
	exec executor
}

func (e *External) Name() string { return e.bin }

// Available reports whether the tool binary exists on PATH.
func (e *External) Available() bool {
	_, err := e.exec.LookPath(e.bin)
	return err == nil
}

func (e *External) Convert(ctx context.Context, src, dst string, opts Options) error {
	return convertAtomically(ctx, src, dst, opts, func(ctx context.Context, tmpPath string) error {
		args := e.args(src, tmpPath, quality(opts.Quality))
		out, err := e.exec.Run(ctx, e.bin, args...)
		if err != nil {
			return fmt.Errorf("running %s: %w (%s)", e.bin, err, strings.TrimSpace(string(out)))
		}
		return nil
	})
}

func newHeifConvert(exec executor) *External {
	return &External{
		bin: binHeifConvert,
		args: func(src, dst string, q int) []string {
			return []string{"-q", strconv.Itoa(q), src, dst}
		},
		exec: exec,
	}
}

func newSips(exec executor) *External {
	return &External{
		bin: binSips,
		args: func(src, dst string, q int) []string {
			return []string{"-s", "format", "jpeg", "-s", "formatOptions", strconv.Itoa(q), src, "--out", dst}
		},
		exec: exec,
	}
}

var defaultExec = &osExecutor{}

// New returns the codec for backend. BackendAuto prefers heif-convert, then
// sips, and falls back to the native decoder. Requesting an external tool
// that is not installed is an error.
func New(backend types.Backend) (Codec, error) {
	return newCodec(backend, defaultExec)
}

func newCodec(backend types.Backend, exec executor) (Codec, error) {
	switch backend {
	case types.BackendNative:
		return NewNative(), nil
	case types.BackendHeifConvert, types.BackendSips:
		tool := newHeifConvert(exec)
		if backend == types.BackendSips {
			tool = newSips(exec)
		}
		if !tool.Available() {
			return nil, fmt.Errorf("%s not found on PATH", tool.bin)
		}
		return tool, nil
	case types.BackendAuto, "":
		for _, tool := range []*External{newHeifConvert(exec), newSips(exec)} {
			if tool.Available() {
				return tool, nil
			}
		}
		return NewNative(), nil
	}
	return nil, fmt.Errorf("%w: %q (use auto, native, heif-convert or sips)", types.ErrUnsupportedBackend, backend)
}
