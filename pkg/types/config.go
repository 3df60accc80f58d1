// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Backend identifies the tool that decodes HEIC and writes JPEG.
type Backend string

const (
	BackendAuto        Backend = "auto"
	BackendNative      Backend = "native"
	BackendHeifConvert Backend = "heif-convert"
	BackendSips        Backend = "sips"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 90

// ConverterConfig holds the options of one conversion batch.
type ConverterConfig struct {
	// Recursive walks subdirectories when the root is a directory.
	Recursive bool `json:"recursive" yaml:"recursive"`

	// Overwrite replaces existing JPEG files.
	Overwrite bool `json:"overwrite" yaml:"overwrite"`

	// RemoveSource deletes each HEIC file after it converts successfully.
	RemoveSource bool `json:"remove_source" yaml:"remove_source"`

	// MoveTargetDir receives finished JPEG files when set.
	MoveTargetDir string `json:"move_target_dir,omitempty" yaml:"move_target_dir,omitempty"`

	// Backend selects the codec: auto, native, heif-convert or sips.
	Backend Backend `json:"backend" yaml:"backend"`

	// Quality is the JPEG quality, 1-100 (default 90).
	Quality int `json:"quality" yaml:"quality"`

	// AutoOrient applies the EXIF orientation to the pixels before encoding.
	AutoOrient bool `json:"auto_orient" yaml:"auto_orient"`

	// VerifyContent drops files whose header is not HEIF despite the extension.
	VerifyContent bool `json:"verify_content" yaml:"verify_content"`
}

// EffectiveQuality returns Quality clamped to 1-100, or DefaultQuality when unset.
func (c ConverterConfig) EffectiveQuality() int {
	switch {
	case c.Quality <= 0:
		return DefaultQuality
	case c.Quality > 100:
		return 100
	}
	return c.Quality
}
