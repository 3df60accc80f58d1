// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the photoix CLI, a batch HEIC to JPEG
// converter. Each operation is a subcommand: convert, list, watch, history,
// settings and version.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/photoix/internal/journal"
	"github.com/pdiddy/photoix/internal/settings"
	"github.com/pdiddy/photoix/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured in PersistentPreRunE from --log-level and --log-json.
var logger hclog.Logger = hclog.NewNullLogger()

// userSettings holds the settings file loaded at startup. Commands receive
// values derived from it; nothing below cmd/ reads it directly.
var userSettings = types.DefaultSettings()

// rootCmd is the base command for the photoix CLI.
var rootCmd = &cobra.Command{
	Use:   "photoix",
	Short: "Convert HEIC images to JPEG",
	Long: `photoix converts HEIC images to JPEG. Point it at a file or a directory;
it finds every .heic file, converts them one after another, and reports
progress with an estimated time remaining.

Converted files can replace their originals (--remove) or be moved into a
separate directory (--move-to). Messages are shown in English or Bangla
according to the language stored with "photoix settings language".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
		}

		logger = hclog.New(&hclog.LoggerOptions{
			Name:       "photoix",
			Level:      hclog.LevelFromString(viper.GetString("log.level")),
			Output:     os.Stderr,
			JSONFormat: viper.GetBool("log.json"),
		})

		s, err := settings.Load(settingsPath())
		if err != nil {
			// Settings problems never block a run; English is used instead.
			logger.Warn("using default settings", "error", err)
		}
		userSettings = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./photoix.yaml or ~/.config/photoix/config.yaml)")
	pf.String("settings", "", "settings file holding the language (default: user config dir)")
	pf.String("journal-path", "", "SQLite history database (default: user config dir)")
	pf.String("log-level", "warn", "log level: trace, debug, info, warn, error")
	pf.Bool("log-json", false, "write logs as JSON")
	pf.Bool("no-color", false, "disable colored output")

	_ = viper.BindPFlag("settings.path", pf.Lookup("settings"))
	_ = viper.BindPFlag("journal.path", pf.Lookup("journal-path"))
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.json", pf.Lookup("log-json"))
	_ = viper.BindPFlag("no_color", pf.Lookup("no-color"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("photoix")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "photoix"))
		}
	}

	viper.SetEnvPrefix("PHOTOIX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func settingsPath() string {
	if p := viper.GetString("settings.path"); p != "" {
		return p
	}
	return settings.DefaultPath()
}

func journalPath() string {
	if p := viper.GetString("journal.path"); p != "" {
		return p
	}
	return journal.DefaultPath()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
