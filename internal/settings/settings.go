// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package settings persists user preferences in a small YAML key-value file.
// Settings are loaded once into an explicit value and passed to whatever
// renders user-facing text; nothing reads them implicitly.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/photoix/pkg/types"
)

const fileName = "settings.yaml"

// DefaultPath returns the settings file location under the user config
// directory, or the working directory when that cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return fileName
	}
	return filepath.Join(dir, "photoix", fileName)
}

// Load reads settings from path. When the file is missing, unreadable,
// malformed or names an unknown language, Load returns the default settings
// together with an error wrapping types.ErrConfigRead; callers surface it as
// a warning and carry on with the returned value.
func Load(path string) (types.Settings, error) {
	defaults := types.DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, fmt.Errorf("%w %s: %v", types.ErrConfigRead, path, err)
	}

	var s types.Settings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return defaults, fmt.Errorf("%w %s: %v", types.ErrConfigRead, path, err)
	}
	if !s.Language.Valid() {
		return defaults, fmt.Errorf("%w %s: unknown language %q", types.ErrConfigRead, path, s.Language)
	}
	return s, nil
}

// Save writes s to path, creating parent directories. The file is replaced
// atomically so a crash never leaves a truncated settings file.
func Save(path string, s types.Settings) error {
	if !s.Language.Valid() {
		return fmt.Errorf("unknown language %q", s.Language)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp settings file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// SetLanguage loads the settings at path, changes the language and saves
// them back. A missing or corrupt file is replaced. It returns the reloaded
// settings.
func SetLanguage(path string, lang types.Language) (types.Settings, error) {
	if !lang.Valid() {
		return types.Settings{}, fmt.Errorf("unknown language %q: choose English or Bangla", lang)
	}
	s, err := Load(path)
	if err != nil && !errors.Is(err, types.ErrConfigRead) {
		return types.Settings{}, err
	}
	s.Language = lang
	if err := Save(path, s); err != nil {
		return types.Settings{}, err
	}
	return Load(path)
}
