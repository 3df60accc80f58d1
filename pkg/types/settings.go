// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Language selects the label catalog used for user-facing text.
type Language string

const (
	LanguageEnglish Language = "English"
	LanguageBangla  Language = "Bangla"
)

// DefaultLanguage is used when no valid setting is stored.
const DefaultLanguage = LanguageEnglish

// Languages lists the recognized languages in menu order.
var Languages = []Language{LanguageEnglish, LanguageBangla}

// Valid reports whether l is a recognized language.
func (l Language) Valid() bool {
	for _, known := range Languages {
		if l == known {
			return true
		}
	}
	return false
}

// Settings is the persisted user configuration.
type Settings struct {
	Language Language `json:"language" yaml:"language"`
}

// DefaultSettings returns the settings used when the file is absent or unusable.
func DefaultSettings() Settings {
	return Settings{Language: DefaultLanguage}
}
