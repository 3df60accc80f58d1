package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/photoix/internal/i18n"
	"github.com/pdiddy/photoix/internal/settings"
	"github.com/pdiddy/photoix/pkg/types"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change persisted settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "settings file: %s\n", settingsPath())
		fmt.Fprintf(out, "language: %s\n", userSettings.Language)
		return nil
	},
}

var settingsLanguageCmd = &cobra.Command{
	Use:       "language <English|Bangla>",
	Short:     "Set the language used for messages",
	Args:      cobra.ExactArgs(1),
	ValidArgs: languageNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.SetLanguage(settingsPath(), types.Language(args[0]))
		if err != nil {
			return err
		}
		// Reload explicitly so the confirmation is already in the new language.
		userSettings = s
		fmt.Fprintln(cmd.OutOrStdout(), i18n.For(s.Language).LanguageChanged+": "+string(s.Language))
		return nil
	},
}

func languageNames() []string {
	names := make([]string, len(types.Languages))
	for i, l := range types.Languages {
		names[i] = string(l)
	}
	return names
}

func init() {
	settingsLanguageCmd.Long = "Set the language used for messages. Choices: " + strings.Join(languageNames(), ", ") + "."

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLanguageCmd)

	rootCmd.AddCommand(settingsCmd)
}
