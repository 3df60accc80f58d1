package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/photoix/internal/codec"
	"github.com/pdiddy/photoix/internal/convert"
	"github.com/pdiddy/photoix/internal/i18n"
	"github.com/pdiddy/photoix/internal/journal"
	"github.com/pdiddy/photoix/internal/watch"
	"github.com/pdiddy/photoix/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Convert HEIC files as they appear in a directory",
	Long: `Watch monitors a directory and converts each new HEIC file once it has
stopped changing. It accepts the same options as convert and runs until
interrupted.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: bindConverterFlags,
	RunE:    runWatch,
}

func init() {
	addConverterFlags(watchCmd.Flags())
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "how long a file must stay unchanged before converting")
	watchCmd.Flags().Bool("journal", false, "record outcomes in the history database")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := converterConfig()
	debounce, _ := cmd.Flags().GetDuration("debounce")
	useJournal, _ := cmd.Flags().GetBool("journal")
	labels := i18n.For(userSettings.Language)
	out := cmd.OutOrStdout()

	c, err := codec.New(cfg.Backend)
	if err != nil {
		return err
	}
	worker := convert.NewWorker(c, cfg, logger)

	var j *journal.Journal
	if useJournal {
		if j, err = journal.Open(journalPath(), logger); err != nil {
			return err
		}
		defer j.Close()
	}

	w, err := watch.New(args[0], watch.Options{Recursive: cfg.Recursive, Debounce: debounce}, logger)
	if err != nil {
		return err
	}
	defer w.Close()
	fmt.Fprintf(out, labels.WatchingF+"\n", args[0], debounce.Round(time.Millisecond))

	return w.Run(ctx, func(ctx context.Context, path string) {
		obs := []convert.Observer{eventPrinter(out, labels, cfg, false)}
		if j != nil {
			batchID, err := j.BeginBatch(ctx, path, 1)
			if err != nil {
				logger.Warn("journal unavailable for file", "path", path, "error", err)
			} else {
				obs = append(obs, j.Observer(ctx, batchID))
			}
		}
		reqs := []types.ConversionRequest{types.NewRequest(path, cfg)}
		runBatch(ctx, worker, reqs, convert.Observers(obs...))
	})
}
