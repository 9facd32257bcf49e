package cli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/textsheets/internal/logging"
	"github.com/yaklabco/textsheets/pkg/analysis"
	"github.com/yaklabco/textsheets/pkg/config"
	"github.com/yaklabco/textsheets/pkg/fsutil"
	"github.com/yaklabco/textsheets/pkg/reporter"
	"github.com/yaklabco/textsheets/pkg/runner"
)

type evalFlags struct {
	format     string
	output     string
	include    []string
	exclude    []string
	sortColumn string
	sortDesc   bool
	sheetSort  string
	strict     bool
	compact    bool
	noSummary  bool
}

func newEvalCommand() *cobra.Command {
	var cfg config.Config
	flags := &evalFlags{}

	cmd := &cobra.Command{
		Use:   "eval [paths...]",
		Short: "Evaluate sheets over documents",
		Long:  evalLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, args, &cfg, flags)
		},
	}

	addEvalFlags(cmd, &cfg, flags)

	return cmd
}

const evalLongDescription = `Evaluate the configured sheets over documents and report the results.

Without paths, evaluates the documents named in the configuration, or every
text file under the current directory when none are configured. Paths add
files and directories; discovered files get every configured sheet.

Examples:
  textsheets eval                          # Evaluate configured documents
  textsheets eval notes/                   # Evaluate every document under notes/
  textsheets eval --format table           # One table per sheet
  textsheets eval --format json            # Machine-readable output
  textsheets eval --format xlsx -o out.xlsx  # One worksheet per sheet
  textsheets eval --sort quantity --desc   # Order rows by a column
  textsheets eval --strict                 # Fail when any cell fails`

func runEval(cmd *cobra.Command, args []string, cliCfg *config.Config, flags *evalFlags) error {
	if flagChanged(cmd, "format") {
		cliCfg.Format = config.OutputFormat(flags.format)
	}

	resolved, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}
	cfg := resolved.Config
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUsage, err)
	}
	if format.IsBinary() && flags.output == "" && isTerminal(cmd.OutOrStdout()) {
		return fmt.Errorf("%w: %s output needs --output or a redirect", ErrInvalidUsage, format)
	}

	sheetSort := analysis.SortField(flags.sheetSort)
	if !sheetSort.IsValid() {
		return fmt.Errorf("%w: invalid --sheet-sort %q; must be one of: rows, alpha, errors",
			ErrInvalidUsage, flags.sheetSort)
	}

	runOpts := runner.Options{
		Paths:        args,
		WorkingDir:   resolved.WorkDir,
		IncludeGlobs: flags.include,
		ExcludeGlobs: flags.exclude,
		Jobs:         cfg.Jobs,
		Config:       cfg,
	}

	logger.Debug("starting evaluation",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	result, err := runner.New().Run(ctx, runOpts)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	var out io.Writer = cmd.OutOrStdout()
	var buf bytes.Buffer
	if flags.output != "" {
		out = &buf
		colorMode = "never"
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      out,
		ErrorWriter: cmd.ErrOrStderr(),
		Format:      format,
		Color:       colorMode,
		ShowSummary: !flags.noSummary,
		ShowHidden:  cfg.ShowHidden,
		Compact:     flags.compact,
		SortColumn:  flags.sortColumn,
		SortDesc:    flags.sortDesc,
		SheetSortBy: sheetSort,
		WorkingDir:  resolved.WorkDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	if flags.output != "" {
		if err := fsutil.WriteAtomic(ctx, flags.output, buf.Bytes(), fsutil.DefaultFileMode); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		logger.Debug("report written", logging.FieldOutput, flags.output)
	}

	return errorForExitCode(ExitCodeFromResult(result, flags.strict))
}

func addEvalFlags(cmd *cobra.Command, cfg *config.Config, flags *evalFlags) {
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, table, json, xlsx, summary")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().IntVar(&cfg.MaxLookupDepth, "max-lookup-depth", 0,
		"maximum nesting of DATA_FROM_DOC lookups (0 = configured)")
	cmd.Flags().BoolVar(&cfg.ShowHidden, "show-hidden", false, "include hidden columns")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "glob patterns documents must match")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "glob patterns to skip")
	cmd.Flags().StringVar(&flags.sortColumn, "sort", "", "order rows by this column")
	cmd.Flags().BoolVar(&flags.sortDesc, "desc", false, "reverse --sort order")
	cmd.Flags().StringVar(&flags.sheetSort, "sheet-sort", string(analysis.SortByRows),
		"order of the per-sheet summary: rows, alpha, errors")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit non-zero when any cell fails")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")
	cmd.Flags().BoolVar(&flags.noSummary, "no-summary", false, "omit the summary line")
}
