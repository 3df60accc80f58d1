// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"strings"
	"time"
)

// OutputExt is the extension given to every converted file.
const OutputExt = ".jpg"

// OutcomeStatus indicates the result of one conversion attempt.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// ConversionRequest describes the conversion of one discovered input file.
// It is built once when a batch starts and is not modified afterwards.
type ConversionRequest struct {
	// SourcePath is the HEIC file to convert.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// OutputPath is the JPEG written beside the source, before any relocation.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Overwrite allows an existing JPEG at OutputPath (or in MoveTargetDir)
	// to be replaced.
	Overwrite bool `json:"overwrite" yaml:"overwrite"`

	// RemoveSource deletes the HEIC file after a successful conversion.
	RemoveSource bool `json:"remove_source" yaml:"remove_source"`

	// MoveTargetDir, when set, receives the finished JPEG.
	MoveTargetDir string `json:"move_target_dir,omitempty" yaml:"move_target_dir,omitempty"`
}

// OutputPathFor returns the JPEG path for source: same directory, same base
// name, OutputExt extension.
func OutputPathFor(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + OutputExt
}

// NewRequest builds the request for source using the batch options in cfg.
func NewRequest(source string, cfg ConverterConfig) ConversionRequest {
	return ConversionRequest{
		SourcePath:    source,
		OutputPath:    OutputPathFor(source),
		Overwrite:     cfg.Overwrite,
		RemoveSource:  cfg.RemoveSource,
		MoveTargetDir: cfg.MoveTargetDir,
	}
}

// ConversionOutcome is the per-file result published by the worker.
type ConversionOutcome struct {
	Request ConversionRequest `json:"request" yaml:"request"`
	Status  OutcomeStatus     `json:"status" yaml:"status"`

	// FinalPath is where the JPEG ended up: inside MoveTargetDir when it was
	// relocated, OutputPath otherwise. Empty when the conversion failed.
	FinalPath string `json:"final_path,omitempty" yaml:"final_path,omitempty"`

	// Error describes the failure or the skip reason.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchProgress is derived from the worker's counters after every outcome.
type BatchProgress struct {
	Completed          int           `json:"completed" yaml:"completed"`
	Total              int           `json:"total" yaml:"total"`
	Elapsed            time.Duration `json:"elapsed" yaml:"elapsed"`
	EstimatedRemaining time.Duration `json:"estimated_remaining" yaml:"estimated_remaining"`
}

// Percent returns floor(Completed/Total*100). An empty batch reports 100.
func (p BatchProgress) Percent() int {
	if p.Total <= 0 {
		return 100
	}
	return p.Completed * 100 / p.Total
}

// NewBatchProgress computes progress and a linear ETA: the average duration
// per completed file multiplied by the number of files left.
func NewBatchProgress(completed, total int, elapsed time.Duration) BatchProgress {
	p := BatchProgress{Completed: completed, Total: total, Elapsed: elapsed}
	if completed > 0 && total > completed {
		p.EstimatedRemaining = elapsed / time.Duration(completed) * time.Duration(total-completed)
	}
	return p
}

// BatchSummary holds the counts of a finished batch.
type BatchSummary struct {
	Total     int           `json:"total" yaml:"total"`
	Converted int           `json:"converted" yaml:"converted"`
	Skipped   int           `json:"skipped" yaml:"skipped"`
	Failed    int           `json:"failed" yaml:"failed"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
	Cancelled bool          `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
}

// Processed returns the number of files that produced an outcome.
func (s BatchSummary) Processed() int {
	return s.Converted + s.Skipped + s.Failed
}

// HasFailures reports whether any file failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Add counts one outcome.
func (s *BatchSummary) Add(status OutcomeStatus) {
	switch status {
	case OutcomeSuccess:
		s.Converted++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// EventKind identifies what an Event carries.
type EventKind string

const (
	EventStart    EventKind = "start"
	EventOutcome  EventKind = "outcome"
	EventProgress EventKind = "progress"
	EventFinished EventKind = "finished"
)

// Event is a notification published by the batch worker. Exactly one of
// Outcome, Progress or Summary is set for outcome, progress and finished
// events; start events carry only Index and Source.
type Event struct {
	Kind     EventKind          `json:"kind"`
	Index    int                `json:"index"`
	Source   string             `json:"source,omitempty"`
	Outcome  *ConversionOutcome `json:"outcome,omitempty"`
	Progress *BatchProgress     `json:"progress,omitempty"`
	Summary  *BatchSummary      `json:"summary,omitempty"`
}
