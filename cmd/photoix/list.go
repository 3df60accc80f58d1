package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/photoix/internal/enumerate"
	"github.com/pdiddy/photoix/internal/i18n"
	"github.com/pdiddy/photoix/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list <file-or-directory>",
	Short: "List the HEIC files a conversion would process",
	Long: `List prints every HEIC file found at the given path, in the order a
conversion would process them, followed by the total count.`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().Bool("recursive", true, "search subdirectories")
	listCmd.Flags().Bool("verify-content", false, "skip files whose content is not HEIF")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	recursive, _ := cmd.Flags().GetBool("recursive")
	verify, _ := cmd.Flags().GetBool("verify-content")
	labels := i18n.For(userSettings.Language)
	out := cmd.OutOrStdout()

	files, err := enumerate.EnumerateWith(args[0], enumerate.Options{
		Recursive:     recursive,
		VerifyContent: verify,
	})
	if errors.Is(err, types.ErrInvalidPath) {
		fmt.Fprintf(out, labels.InvalidPathF+"\n", args[0])
		return err
	}
	if err != nil {
		return err
	}

	for _, f := range files {
		fmt.Fprintln(out, f)
	}
	fmt.Fprintf(out, labels.TotalFilesF+"\n", len(files))
	return nil
}
