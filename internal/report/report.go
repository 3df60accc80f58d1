// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders batch events for people and machines: localized,
// optionally colored console lines, or one JSON object per event.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/pdiddy/photoix/internal/i18n"
	"github.com/pdiddy/photoix/pkg/types"
)

// Console writes one localized line per event.
type Console struct {
	w       io.Writer
	labels  i18n.Labels
	moveDir string

	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	red    func(a ...interface{}) string
	cyan   func(a ...interface{}) string
}

// ConsoleOptions configures a Console.
type ConsoleOptions struct {
	// MoveDir is mentioned in the closing line when set.
	MoveDir string
	// NoColor disables ANSI colors regardless of the terminal.
	NoColor bool
}

// NewConsole creates a console observer writing to w with the given labels.
func NewConsole(w io.Writer, labels i18n.Labels, opts ConsoleOptions) *Console {
	return &Console{
		w:       w,
		labels:  labels,
		moveDir: opts.MoveDir,
		green:   paint(opts.NoColor, color.FgGreen),
		yellow:  paint(opts.NoColor, color.FgYellow),
		red:     paint(opts.NoColor, color.FgRed),
		cyan:    paint(opts.NoColor, color.FgCyan),
	}
}

func paint(noColor bool, attr color.Attribute) func(a ...interface{}) string {
	c := color.New(attr)
	if noColor {
		c.DisableColor()
	}
	return c.SprintFunc()
}

// Notify implements convert.Observer.
func (c *Console) Notify(e types.Event) {
	l := c.labels
	switch e.Kind {
	case types.EventStart:
		fmt.Fprintln(c.w, fmt.Sprintf(l.ConvertingF, e.Source))
	case types.EventOutcome:
		o := e.Outcome
		switch o.Status {
		case types.OutcomeSuccess:
			fmt.Fprintln(c.w, c.green(fmt.Sprintf(l.ConvertedF, o.FinalPath)))
		case types.OutcomeSkipped:
			fmt.Fprintln(c.w, c.yellow(fmt.Sprintf(l.SkippedF, o.Request.OutputPath)))
		case types.OutcomeFailed:
			fmt.Fprintln(c.w, c.red(fmt.Sprintf(l.FailedF, o.Request.SourcePath, o.Error)))
		}
	case types.EventProgress:
		fmt.Fprintln(c.w, c.cyan(ProgressLine(l, *e.Progress)))
	case types.EventFinished:
		s := e.Summary
		fmt.Fprintln(c.w)
		fmt.Fprintf(c.w, l.SummaryF+"\n", s.Converted, s.Skipped, s.Failed, s.Total)
		switch {
		case s.Cancelled:
			fmt.Fprintln(c.w, c.yellow(l.Cancelled))
		case c.moveDir != "":
			fmt.Fprintln(c.w, fmt.Sprintf(l.FinishedMovedF, c.moveDir))
		default:
			fmt.Fprintln(c.w, l.Finished)
		}
	}
}

// ProgressLine formats progress as "<percent>% - <ETA label>", the ETA in
// whole seconds.
func ProgressLine(l i18n.Labels, p types.BatchProgress) string {
	eta := fmt.Sprintf(l.EtaF, int(p.EstimatedRemaining/time.Second))
	return fmt.Sprintf(l.ProgressF, p.Percent(), eta)
}

// JSON writes each event as a single-line JSON object.
type JSON struct {
	enc *json.Encoder
}

// NewJSON creates a JSON-lines observer writing to w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

// Notify implements convert.Observer. Encoding errors are dropped; the
// batch must not depend on its observers.
func (j *JSON) Notify(e types.Event) {
	_ = j.enc.Encode(e)
}
