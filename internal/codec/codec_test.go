// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codec

import (
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/photoix/pkg/types"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool
	calls         [][]string
	runFunc       func(name string, args []string) ([]byte, error)
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.runFunc != nil {
		return m.runFunc(name, args)
	}
	return nil, nil
}

// writeOutput simulates a tool writing its output to the last path argument.
func writeOutput(name string, args []string) ([]byte, error) {
	return nil, os.WriteFile(args[len(args)-1], []byte("jpeg"), 0o644)
}

func setupSource(t *testing.T) (src, dst string) {
	t.Helper()
	dir := t.TempDir()
	src = filepath.Join(dir, "IMG_0001.HEIC")
	require.NoError(t, os.WriteFile(src, []byte("heic"), 0o644))
	return src, types.OutputPathFor(src)
}

func TestNewCodec(t *testing.T) {
	tests := []struct {
		name     string
		backend  types.Backend
		bins     map[string]bool
		wantName string
		wantErr  error
	}{
		{name: "auto prefers heif-convert", backend: types.BackendAuto, bins: map[string]bool{"heif-convert": true, "sips": true}, wantName: "heif-convert"},
		{name: "auto falls back to sips", backend: types.BackendAuto, bins: map[string]bool{"sips": true}, wantName: "sips"},
		{name: "auto falls back to native", backend: "", bins: map[string]bool{}, wantName: "native"},
		{name: "explicit native", backend: types.BackendNative, wantName: "native"},
		{name: "explicit sips", backend: types.BackendSips, bins: map[string]bool{"sips": true}, wantName: "sips"},
		{name: "missing tool", backend: types.BackendHeifConvert, bins: map[string]bool{}, wantErr: errors.New("not found on PATH")},
		{name: "unknown backend", backend: "gimp", wantErr: types.ErrUnsupportedBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newCodec(tt.backend, &mockExecutor{availableBins: tt.bins})
			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, types.ErrUnsupportedBackend) {
					assert.ErrorIs(t, err, types.ErrUnsupportedBackend)
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, c.Name())
		})
	}
}

func TestExternalConvert(t *testing.T) {
	tests := []struct {
		name     string
		mk       func(executor) *External
		wantArgs []string
	}{
		{name: "heif-convert", mk: func(e executor) *External { return newHeifConvert(e) }, wantArgs: []string{"heif-convert", "-q", "80"}},
		{name: "sips", mk: func(e executor) *External { return newSips(e) }, wantArgs: []string{"sips", "-s", "format", "jpeg", "-s", "formatOptions", "80"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst := setupSource(t)
			exec := &mockExecutor{runFunc: writeOutput}
			c := tt.mk(exec)

			err := c.Convert(context.Background(), src, dst, Options{Quality: 80})
			require.NoError(t, err)

			require.Len(t, exec.calls, 1)
			call := exec.calls[0]
			assert.Equal(t, tt.wantArgs, call[:len(tt.wantArgs)])
			assert.Contains(t, call, src)
			assert.True(t, strings.HasSuffix(call[len(call)-1], ".jpg"), "tool output should be a .jpg temp file")

			data, err := os.ReadFile(dst)
			require.NoError(t, err)
			assert.Equal(t, "jpeg", string(data))
			assert.FileExists(t, src)
		})
	}
}

func TestExternalConvert_ToolFailure(t *testing.T) {
	src, dst := setupSource(t)
	exec := &mockExecutor{runFunc: func(string, []string) ([]byte, error) {
		return []byte("Could not read HEIF file"), errors.New("exit status 1")
	}}

	err := newHeifConvert(exec).Convert(context.Background(), src, dst, Options{})
	require.ErrorIs(t, err, types.ErrConversionFailed)
	assert.Contains(t, err.Error(), "Could not read HEIF file")
	assert.NoFileExists(t, dst)

	entries, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be cleaned up")
}

func TestExternalConvert_EmptyOutput(t *testing.T) {
	src, dst := setupSource(t)
	exec := &mockExecutor{}

	err := newSips(exec).Convert(context.Background(), src, dst, Options{})
	require.ErrorIs(t, err, types.ErrConversionFailed)
	assert.NoFileExists(t, dst)
}

func TestConvert_DestinationExists(t *testing.T) {
	src, dst := setupSource(t)
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o644))
	exec := &mockExecutor{runFunc: writeOutput}

	err := newHeifConvert(exec).Convert(context.Background(), src, dst, Options{})
	require.ErrorIs(t, err, types.ErrDestinationExists)
	assert.Empty(t, exec.calls)

	data, _ := os.ReadFile(dst)
	assert.Equal(t, "old", string(data))

	err = newHeifConvert(exec).Convert(context.Background(), src, dst, Options{Overwrite: true})
	require.NoError(t, err)
	data, _ = os.ReadFile(dst)
	assert.Equal(t, "jpeg", string(data))
}

func TestConvert_RemoveSource(t *testing.T) {
	src, dst := setupSource(t)
	exec := &mockExecutor{runFunc: writeOutput}

	err := newHeifConvert(exec).Convert(context.Background(), src, dst, Options{RemoveSource: true})
	require.NoError(t, err)
	assert.NoFileExists(t, src)
	assert.FileExists(t, dst)
}

func TestConvert_RemoveSourceKeptOnFailure(t *testing.T) {
	src, dst := setupSource(t)
	exec := &mockExecutor{runFunc: func(string, []string) ([]byte, error) { return nil, errors.New("boom") }}

	err := newHeifConvert(exec).Convert(context.Background(), src, dst, Options{RemoveSource: true})
	require.Error(t, err)
	assert.FileExists(t, src)
}

func TestConvert_MissingSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "gone.heic")
	err := NewNative().Convert(context.Background(), src, types.OutputPathFor(src), Options{})
	require.ErrorIs(t, err, types.ErrConversionFailed)
}

func TestNativeConvert_InvalidHEIC(t *testing.T) {
	src, dst := setupSource(t)
	err := NewNative().Convert(context.Background(), src, dst, Options{})
	require.ErrorIs(t, err, types.ErrConversionFailed)
	assert.NoFileExists(t, dst)
}

func TestNativeConvert_RealHEIC(t *testing.T) {
	heic, err := os.ReadFile(filepath.Join("testdata", "camel.heic"))
	require.NoError(t, err)

	tests := []struct {
		name string
		opts Options
	}{
		{name: "as stored", opts: Options{}},
		{name: "auto orient without exif", opts: Options{AutoOrient: true, Quality: 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := filepath.Join(t.TempDir(), "camel.heic")
			require.NoError(t, os.WriteFile(src, heic, 0o644))
			dst := types.OutputPathFor(src)

			require.NoError(t, NewNative().Convert(context.Background(), src, dst, tt.opts))

			img, err := imaging.Open(dst)
			require.NoError(t, err)
			assert.Equal(t, 1596, img.Bounds().Dx())
			assert.Equal(t, 1064, img.Bounds().Dy())
			assert.FileExists(t, src)
		})
	}
}

func TestNativeConvert_RealHEICRemoveSource(t *testing.T) {
	heic, err := os.ReadFile(filepath.Join("testdata", "camel.heic"))
	require.NoError(t, err)
	src := filepath.Join(t.TempDir(), "IMG_0002.HEIC")
	require.NoError(t, os.WriteFile(src, heic, 0o644))
	dst := types.OutputPathFor(src)

	require.NoError(t, NewNative().Convert(context.Background(), src, dst, Options{RemoveSource: true}))
	assert.FileExists(t, dst)
	assert.NoFileExists(t, src)
}

func TestNativeConvert_Cancelled(t *testing.T) {
	src, dst := setupSource(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewNative().Convert(ctx, src, dst, Options{})
	require.ErrorIs(t, err, types.ErrConversionFailed)
	assert.Contains(t, err.Error(), context.Canceled.Error())
}

func TestApplyOrientation(t *testing.T) {
	img := imaging.New(4, 2, color.White)
	tests := []struct {
		orientation int
		wantW       int
		wantH       int
	}{
		{1, 4, 2}, {2, 4, 2}, {3, 4, 2}, {4, 4, 2},
		{5, 2, 4}, {6, 2, 4}, {7, 2, 4}, {8, 2, 4},
		{0, 4, 2}, {9, 4, 2},
	}
	for _, tt := range tests {
		got := applyOrientation(img, tt.orientation)
		b := got.Bounds()
		assert.Equal(t, image.Pt(tt.wantW, tt.wantH), image.Pt(b.Dx(), b.Dy()), "orientation %d", tt.orientation)
	}
}

// exifWithOrientation builds a HEIF-style Exif item: a 4-byte header offset,
// the "Exif\0\0" marker, and a little-endian TIFF block holding one
// Orientation entry.
func exifWithOrientation(o uint16) []byte {
	tiff := make([]byte, 8+2+12+4)
	copy(tiff[0:4], "II*\x00")
	binary.LittleEndian.PutUint32(tiff[4:8], 8)
	binary.LittleEndian.PutUint16(tiff[8:10], 1)
	entry := tiff[10:22]
	binary.LittleEndian.PutUint16(entry[0:2], 0x0112)
	binary.LittleEndian.PutUint16(entry[2:4], 3)
	binary.LittleEndian.PutUint32(entry[4:8], 1)
	binary.LittleEndian.PutUint16(entry[8:10], o)

	raw := []byte{0, 0, 0, 6}
	raw = append(raw, []byte("Exif\x00\x00")...)
	return append(raw, tiff...)
}

func TestOrientationFromExif(t *testing.T) {
	assert.Equal(t, 6, orientationFromExif(exifWithOrientation(6)))
	assert.Equal(t, 1, orientationFromExif(exifWithOrientation(42)))
	assert.Equal(t, 1, orientationFromExif([]byte("garbage")))
	assert.Equal(t, 1, orientationFromExif(nil))
}

func TestOptionsFor(t *testing.T) {
	req := types.ConversionRequest{Overwrite: true, RemoveSource: true}
	opts := OptionsFor(req, types.ConverterConfig{AutoOrient: true})
	assert.Equal(t, Options{Overwrite: true, RemoveSource: true, Quality: types.DefaultQuality, AutoOrient: true}, opts)
}
