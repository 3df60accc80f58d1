package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/photoix/internal/codec"
	"github.com/pdiddy/photoix/internal/convert"
	"github.com/pdiddy/photoix/internal/i18n"
	"github.com/pdiddy/photoix/internal/journal"
	"github.com/pdiddy/photoix/internal/report"
	"github.com/pdiddy/photoix/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file-or-directory>",
	Short: "Convert HEIC files to JPEG",
	Long: `Convert finds the HEIC files at the given path and converts each one to a
JPEG with the same base name beside it. A failure on one file is reported
and the batch moves on to the next.

Use --remove to delete each HEIC file after it converts, --overwrite to
replace existing JPEG files, and --move-to to collect the results in one
directory. Press Ctrl-C to stop after the current file.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: bindConverterFlags,
	RunE:    runConvert,
}

func init() {
	addConverterFlags(convertCmd.Flags())
	convertCmd.Flags().Bool("journal", false, "record outcomes in the history database")
	convertCmd.Flags().Bool("json", false, "print events as JSON lines instead of text")

	rootCmd.AddCommand(convertCmd)
}

// addConverterFlags registers the batch options shared by convert and watch.
func addConverterFlags(fs *pflag.FlagSet) {
	fs.Bool("remove", false, "remove converted HEIC files")
	fs.Bool("overwrite", false, "overwrite existing JPEG files")
	fs.Bool("recursive", true, "search subdirectories")
	fs.String("move-to", "", "move converted JPEG files into this directory")
	fs.String("backend", string(types.BackendAuto), "conversion backend: auto, native, heif-convert, or sips")
	fs.Int("quality", types.DefaultQuality, "JPEG quality (1-100)")
	fs.Bool("auto-orient", false, "rotate pixels according to the EXIF orientation")
	fs.Bool("verify-content", false, "skip files whose content is not HEIF")
}

// bindConverterFlags binds the running command's flags to viper so that
// config file and PHOTOIX_CONVERT_* values act as defaults. Binding happens
// per run because convert and watch share the same keys.
func bindConverterFlags(cmd *cobra.Command, args []string) error {
	for key, flag := range map[string]string{
		"convert.remove":         "remove",
		"convert.overwrite":      "overwrite",
		"convert.recursive":      "recursive",
		"convert.move_to":        "move-to",
		"convert.backend":        "backend",
		"convert.quality":        "quality",
		"convert.auto_orient":    "auto-orient",
		"convert.verify_content": "verify-content",
	} {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

func converterConfig() types.ConverterConfig {
	return types.ConverterConfig{
		Recursive:     viper.GetBool("convert.recursive"),
		Overwrite:     viper.GetBool("convert.overwrite"),
		RemoveSource:  viper.GetBool("convert.remove"),
		MoveTargetDir: viper.GetString("convert.move_to"),
		Backend:       types.Backend(viper.GetString("convert.backend")),
		Quality:       viper.GetInt("convert.quality"),
		AutoOrient:    viper.GetBool("convert.auto_orient"),
		VerifyContent: viper.GetBool("convert.verify_content"),
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := converterConfig()
	root := args[0]
	out := cmd.OutOrStdout()
	labels := i18n.For(userSettings.Language)
	jsonOutput, _ := cmd.Flags().GetBool("json")
	useJournal, _ := cmd.Flags().GetBool("journal")

	reqs, err := convert.PrepareBatch(root, cfg)
	switch {
	case errors.Is(err, types.ErrInvalidPath):
		fmt.Fprintf(out, labels.InvalidPathF+"\n", root)
		return err
	case errors.Is(err, types.ErrNoFilesFound):
		fmt.Fprintln(out, labels.NoFilesFound)
		return err
	case err != nil:
		return err
	}
	if !jsonOutput {
		fmt.Fprintf(out, labels.TotalFilesF+"\n", len(reqs))
		if cfg.MoveTargetDir != "" {
			fmt.Fprintf(out, labels.MovePathSetF+"\n", cfg.MoveTargetDir)
		}
	}

	c, err := codec.New(cfg.Backend)
	if err != nil {
		return err
	}
	logger.Info("using backend", "backend", c.Name())

	observers := []convert.Observer{eventPrinter(out, labels, cfg, jsonOutput)}
	if useJournal {
		j, err := journal.Open(journalPath(), logger)
		if err != nil {
			return err
		}
		defer j.Close()
		batchID, err := j.BeginBatch(ctx, root, len(reqs))
		if err != nil {
			return err
		}
		observers = append(observers, j.Observer(ctx, batchID))
	}

	summary := runBatch(ctx, convert.NewWorker(c, cfg, logger), reqs, convert.Observers(observers...))
	switch {
	case summary.Cancelled:
		return context.Canceled
	case summary.HasFailures():
		return fmt.Errorf("%d file(s) failed conversion", summary.Failed)
	}
	return nil
}

// runBatch starts the worker in the background and forwards its events to
// obs from the calling goroutine.
func runBatch(ctx context.Context, w *convert.Worker, reqs []types.ConversionRequest, obs convert.Observer) types.BatchSummary {
	var summary types.BatchSummary
	for e := range w.Start(ctx, reqs) {
		obs.Notify(e)
		if e.Kind == types.EventFinished {
			summary = *e.Summary
		}
	}
	return summary
}

func eventPrinter(w io.Writer, labels i18n.Labels, cfg types.ConverterConfig, jsonOutput bool) convert.Observer {
	if jsonOutput {
		return report.NewJSON(w)
	}
	return report.NewConsole(w, labels, report.ConsoleOptions{
		MoveDir: cfg.MoveTargetDir,
		NoColor: viper.GetBool("no_color"),
	})
}
