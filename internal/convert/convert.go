// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs batches of HEIC to JPEG conversions. A Worker walks
// its requests strictly in order, delegates each file to a codec, optionally
// relocates the output, and publishes start, outcome, progress and finished
// events to an Observer. A failure on one file never stops the batch.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/pdiddy/photoix/internal/codec"
	"github.com/pdiddy/photoix/internal/enumerate"
	"github.com/pdiddy/photoix/internal/relocate"
	"github.com/pdiddy/photoix/pkg/types"
)

// Observer receives the events of a batch. Notify is called from the
// worker's goroutine, in order.
type Observer interface {
	Notify(types.Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(types.Event)

func (f ObserverFunc) Notify(e types.Event) { f(e) }

// Observers fans events out to each non-nil observer in order.
func Observers(obs ...Observer) Observer {
	return ObserverFunc(func(e types.Event) {
		for _, o := range obs {
			if o != nil {
				o.Notify(e)
			}
		}
	})
}

// Worker converts batches of requests with a single codec.
type Worker struct {
	codec  codec.Codec
	cfg    types.ConverterConfig
	logger hclog.Logger

	now  func() time.Time
	move func(src, dstDir string, overwrite bool) (string, error)
}

// NewWorker creates a worker. A nil logger discards log output.
func NewWorker(c codec.Codec, cfg types.ConverterConfig, logger hclog.Logger) *Worker {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Worker{
		codec:  c,
		cfg:    cfg,
		logger: logger.Named("worker"),
		now:    time.Now,
		move:   relocate.Move,
	}
}

// PrepareBatch enumerates root and builds one request per HEIC file found.
// It returns types.ErrInvalidPath or types.ErrNoFilesFound before any
// conversion is attempted.
func PrepareBatch(root string, cfg types.ConverterConfig) ([]types.ConversionRequest, error) {
	files, err := enumerate.EnumerateWith(root, enumerate.Options{
		Recursive:     cfg.Recursive,
		VerifyContent: cfg.VerifyContent,
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", types.ErrNoFilesFound, root)
	}
	reqs := make([]types.ConversionRequest, len(files))
	for i, f := range files {
		reqs[i] = types.NewRequest(f, cfg)
	}
	return reqs, nil
}

// Run converts reqs in order, publishing events to obs, and returns the
// batch summary. The total is fixed to len(reqs). When ctx is cancelled the
// worker stops before the next file; the finished event is still published.
func (w *Worker) Run(ctx context.Context, reqs []types.ConversionRequest, obs Observer) types.BatchSummary {
	if obs == nil {
		obs = ObserverFunc(func(types.Event) {})
	}

	total := len(reqs)
	summary := types.BatchSummary{Total: total}
	start := w.now()
	w.logger.Info("batch started", "files", total, "backend", w.codec.Name())

	for i, req := range reqs {
		if ctx.Err() != nil {
			summary.Cancelled = true
			w.logger.Warn("batch cancelled", "completed", i, "total", total)
			break
		}

		obs.Notify(types.Event{Kind: types.EventStart, Index: i, Source: req.SourcePath})

		outcome := w.ConvertOne(ctx, req)
		summary.Add(outcome.Status)
		obs.Notify(types.Event{Kind: types.EventOutcome, Index: i, Source: req.SourcePath, Outcome: &outcome})

		progress := types.NewBatchProgress(i+1, total, w.now().Sub(start))
		obs.Notify(types.Event{Kind: types.EventProgress, Index: i, Progress: &progress})
	}

	summary.Elapsed = w.now().Sub(start)
	w.logger.Info("batch finished",
		"converted", summary.Converted, "skipped", summary.Skipped,
		"failed", summary.Failed, "elapsed", summary.Elapsed)
	obs.Notify(types.Event{Kind: types.EventFinished, Index: summary.Processed(), Summary: &summary})
	return summary
}

// Start runs the batch on a background goroutine and returns its events.
// The channel is buffered for the whole batch, so the worker never blocks
// on a slow consumer, and it is closed after the finished event.
func (w *Worker) Start(ctx context.Context, reqs []types.ConversionRequest) <-chan types.Event {
	events := make(chan types.Event, 3*len(reqs)+1)
	go func() {
		defer close(events)
		w.Run(ctx, reqs, ObserverFunc(func(e types.Event) { events <- e }))
	}()
	return events
}

// ConvertOne converts a single request and relocates the result when the
// request names a move target directory. Without overwrite, a JPEG already
// present in the move target counts as converted and the codec is not run.
func (w *Worker) ConvertOne(ctx context.Context, req types.ConversionRequest) types.ConversionOutcome {
	outcome := types.ConversionOutcome{Request: req}
	log := w.logger.With("source", req.SourcePath)

	if req.MoveTargetDir != "" && !req.Overwrite {
		moved := relocate.Destination(req.OutputPath, req.MoveTargetDir)
		if _, err := os.Stat(moved); err == nil {
			outcome.Status = types.OutcomeSkipped
			outcome.FinalPath = moved
			outcome.Error = fmt.Errorf("%w: %s", types.ErrDestinationExists, moved).Error()
			log.Debug("skipped", "reason", "already relocated", "target", moved)
			return outcome
		}
	}

	err := w.codec.Convert(ctx, req.SourcePath, req.OutputPath, codec.OptionsFor(req, w.cfg))
	switch {
	case errors.Is(err, types.ErrDestinationExists):
		outcome.Status = types.OutcomeSkipped
		outcome.FinalPath = req.OutputPath
		outcome.Error = err.Error()
		log.Debug("skipped", "reason", err)
		return outcome
	case err != nil:
		outcome.Status = types.OutcomeFailed
		outcome.Error = err.Error()
		log.Error("conversion failed", "error", err)
		return outcome
	}

	finalPath := req.OutputPath
	if req.MoveTargetDir != "" {
		moved, err := w.move(req.OutputPath, req.MoveTargetDir, req.Overwrite)
		if err != nil {
			outcome.Status = types.OutcomeFailed
			outcome.Error = err.Error()
			log.Error("relocation failed", "target", req.MoveTargetDir, "error", err)
			return outcome
		}
		finalPath = moved
	}
	outcome.FinalPath = finalPath

	outcome.Status = types.OutcomeSuccess
	log.Debug("converted", "final_path", outcome.FinalPath)
	return outcome
}
