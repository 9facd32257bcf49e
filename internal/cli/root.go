// Package cli provides the Cobra command structure for textsheets.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/textsheets/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	debug      bool
	configPath string
	color      string
	logFormat  string
}

// NewRootCommand creates the root textsheets command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	global := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "textsheets",
		Short: "Spreadsheet-style formulas over plain text",
		Long: `textsheets evaluates sheets of formulas over plain-text documents.

Each sheet is a table whose rows are derived from the text: the first column
produces highlights (spans of the document), later columns refine them with
formulas that look at neighbouring highlights, earlier sheets and even other
documents. Results are reported as highlights, tables, JSON or spreadsheets,
and can be followed live while a document is edited.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if global.logFormat != "" {
				logging.SetDefault(logging.NewWithFormat(cmd.ErrOrStderr(), "info", global.logFormat))
			}
			if global.debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&global.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&global.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&global.color, "color", "auto",
		"colorize output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&global.logFormat, "log-format", "",
		"log format: text, json, logfmt")

	rootCmd.AddCommand(newEvalCommand())
	rootCmd.AddCommand(newApplyCommand())
	rootCmd.AddCommand(newFunctionsCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(global.color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
