package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/photoix/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded conversion batches and outcomes",
	Long: `History lists the batches and per-file outcomes recorded by convert
--journal and watch --journal, newest first.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of rows to show")
	historyCmd.Flags().Bool("batches", false, "list batches instead of per-file outcomes")
	historyCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	batches, _ := cmd.Flags().GetBool("batches")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	j, err := journal.Open(journalPath(), logger)
	if err != nil {
		return err
	}
	defer j.Close()

	if batches {
		rows, err := j.Batches(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return encodeJSON(out, rows)
		}
		return formatBatches(out, rows)
	}

	rows, err := j.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return encodeJSON(out, rows)
	}
	return formatEntries(out, rows)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatEntries(w io.Writer, entries []journal.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-20s  %-7s  %-40s  %s\n", "Recorded", "Status", "Source", "Result")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, e := range entries {
		result := e.FinalPath
		if e.Error != "" {
			result = e.Error
		}
		fmt.Fprintf(w, "%-20s  %-7s  %-40s  %s\n",
			e.RecordedAt.Local().Format("2006-01-02 15:04:05"), e.Status, truncate(e.Source, 40), result)
	}
	fmt.Fprintf(w, "\n%d results\n", len(entries))
	return nil
}

func formatBatches(w io.Writer, batches []journal.Batch) error {
	if len(batches) == 0 {
		fmt.Fprintln(w, "No history recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-20s  %5s  %5s  %5s  %5s  %s\n", "Batch", "Started", "Total", "Done", "Skip", "Fail", "Root")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, b := range batches {
		root := b.Root
		if b.Cancelled {
			root += " (cancelled)"
		}
		fmt.Fprintf(w, "%-36s  %-20s  %5d  %5d  %5d  %5d  %s\n",
			b.ID, b.StartedAt.Local().Format("2006-01-02 15:04:05"), b.Total, b.Converted, b.Skipped, b.Failed, root)
	}
	fmt.Fprintf(w, "\n%d batches\n", len(batches))
	return nil
}

// truncate keeps the last n-3 runes of s behind an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "..." + string(r[len(r)-(n-3):])
}
