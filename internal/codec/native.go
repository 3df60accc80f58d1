// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codec

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/jdeng/goheif"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/pdiddy/photoix/pkg/types"
)

// Decoded frames must own their pixels: imaging reads them after goheif has
// released the libde265 decoder.
func init() {
	goheif.SafeEncoding = true
}

// Native decodes HEIC in-process with goheif and encodes JPEG with imaging.
type Native struct{}

// NewNative returns the in-process codec. It has no external requirements.
func NewNative() *Native { return &Native{} }

func (n *Native) Name() string { return string(types.BackendNative) }

func (n *Native) Convert(ctx context.Context, src, dst string, opts Options) error {
	return convertAtomically(ctx, src, dst, opts, func(ctx context.Context, tmpPath string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, orientation, err := decode(src, opts.AutoOrient)
		if err != nil {
			return err
		}
		if opts.AutoOrient {
			img = applyOrientation(img, orientation)
		}

		out, err := os.Create(tmpPath)
		if err != nil {
			return err
		}
		if err := imaging.Encode(out, img, imaging.JPEG, imaging.JPEGQuality(quality(opts.Quality))); err != nil {
			out.Close()
			return fmt.Errorf("encoding jpeg: %w", err)
		}
		if err := out.Sync(); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
}

func decode(src string, wantOrientation bool) (image.Image, int, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	img, err := goheif.Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding heic: %w", err)
	}
	if !wantOrientation {
		return img, 1, nil
	}
	raw, err := goheif.ExtractExif(f)
	if err != nil {
		return img, 1, nil
	}
	return img, orientationFromExif(raw), nil
}

// orientationFromExif returns the EXIF orientation tag in raw, or 1 when it
// is missing or unreadable. HEIF Exif items prefix the TIFF header with an
// offset field, so decoding starts at the byte-order mark.
func orientationFromExif(raw []byte) int {
	start := tiffHeaderIndex(raw)
	if start < 0 {
		return 1
	}
	x, err := exif.Decode(bytes.NewReader(raw[start:]))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}

func tiffHeaderIndex(raw []byte) int {
	little := bytes.Index(raw, []byte("II*\x00"))
	big := bytes.Index(raw, []byte("MM\x00*"))
	switch {
	case little < 0:
		return big
	case big < 0:
		return little
	case little < big:
		return little
	}
	return big
}

// applyOrientation rotates or flips img so that it displays upright for the
// given EXIF orientation value.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

func quality(q int) int {
	return types.ConverterConfig{Quality: q}.EffectiveQuality()
}

