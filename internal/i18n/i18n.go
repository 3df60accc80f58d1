// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package i18n holds the static user-facing labels for each supported
// language.
package i18n

import "github.com/pdiddy/photoix/pkg/types"

// Labels is one language's set of user-facing strings. Fields ending in F
// are fmt format strings.
type Labels struct {
	Title           string
	ConvertingF     string // source path
	ConvertedF      string // final path
	SkippedF        string // output path
	FailedF         string // source path, reason
	InvalidPathF    string // path
	NoFilesFound    string
	ProgressF       string // percent, ETA label
	EtaF            string // seconds
	Finished        string
	FinishedMovedF  string // move directory
	SummaryF        string // converted, skipped, failed, total
	TotalFilesF     string // count
	MovePathSetF    string // directory
	LanguageChanged string
	Cancelled       string
	WatchingF       string // directory, debounce
}

var english = Labels{
	Title:           "Photoix HEIC to JPEG Converter",
	ConvertingF:     "Converting %s",
	ConvertedF:      "Successfully converted %s",
	SkippedF:        "Skipped %s (already exists)",
	FailedF:         "Failed %s: %s",
	InvalidPathF:    "Invalid path: %s",
	NoFilesFound:    "No HEIC files found",
	ProgressF:       "%d%% - %s",
	EtaF:            "Estimated time remaining: %d seconds",
	Finished:        "Conversion finished.",
	FinishedMovedF:  "Conversion finished. Files moved to %s",
	SummaryF:        "Batch summary: %d converted, %d skipped, %d failed (total: %d)",
	TotalFilesF:     "Total Files: %d",
	MovePathSetF:    "Set move path to: %s",
	LanguageChanged: "Language changed",
	Cancelled:       "Conversion cancelled.",
	WatchingF:       "Watching %s (debounce %s)",
}

var bangla = Labels{
	Title:           "Photoix HEIC to JPEG Converter",
	ConvertingF:     "রুপান্তর হচ্ছে %s",
	ConvertedF:      "সফলভাবে রুপান্তরিত %s",
	SkippedF:        "বাদ দেওয়া হয়েছে %s (আগে থেকেই আছে)",
	FailedF:         "ব্যর্থ %s: %s",
	InvalidPathF:    "অবৈধ পথ: %s",
	NoFilesFound:    "কোনো HEIC ফাইল পাওয়া যায়নি",
	ProgressF:       "%d%% - %s",
	EtaF:            "আনুমানিক বাকি সময়: %d সেকেন্ড",
	Finished:        "রুপান্তর সম্পন্ন হয়েছে।",
	FinishedMovedF:  "রুপান্তর সম্পন্ন হয়েছে। ফাইলগুলি %s এ সরানো হয়েছে",
	SummaryF:        "সারসংক্ষেপ: %d রুপান্তরিত, %d বাদ, %d ব্যর্থ (মোট: %d)",
	TotalFilesF:     "মোট ফাইলগুলি: %d",
	MovePathSetF:    "মুভ পাথ সেট করা হয়েছে: %s",
	LanguageChanged: "ভাষা পরিবর্তন করা হয়েছে",
	Cancelled:       "রুপান্তর বাতিল করা হয়েছে।",
	WatchingF:       "%s পর্যবেক্ষণ করা হচ্ছে (বিরতি %s)",
}

// For returns the labels for lang, falling back to English for unknown values.
func For(lang types.Language) Labels {
	if lang == types.LanguageBangla {
		return bangla
	}
	return english
}
