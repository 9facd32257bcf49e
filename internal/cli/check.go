package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/textsheets/internal/configloader"
	"github.com/yaklabco/textsheets/internal/ui/pretty"
	"github.com/yaklabco/textsheets/pkg/config"
)

// ErrCheckFailed is returned when check finds problems.
var ErrCheckFailed = errors.New("configuration check failed")

type checkFlags struct {
	strict bool
}

func newCheckCommand() *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [config]",
		Short: "Validate a configuration and its formulas",
		Long: `Validate a configuration file: sheet and column names, document entries and
the syntax of every formula. Formula syntax errors are warnings, since they
only fail their own cells at evaluation time; use --strict to fail on them.

Without an argument, checks the configuration textsheets would load here.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat warnings as errors")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, flags *checkFlags) error {
	var (
		cfg    *config.Config
		source string
	)

	if len(args) == 1 {
		fileCfg, err := configloader.LoadFile(args[0])
		if err != nil {
			return errors.Join(errConfig, err)
		}
		cfg = configloader.MergeAll(config.NewConfig(), fileCfg)
		source = args[0]
	} else {
		ctx := commandContext(cmd)
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return fmt.Errorf("get config flag: %w", err)
		}
		loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
			ExplicitPath:   configPath,
			IgnoreEnv:      true,
			SkipValidation: true,
		})
		if err != nil {
			return errors.Join(errConfig, err)
		}
		cfg = loadResult.Config
		if len(loadResult.LoadedFrom) > 0 {
			source = loadResult.LoadedFrom[len(loadResult.LoadedFrom)-1]
		}
	}

	validation := configloader.ValidateWithFile(cfg, source)

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, out))

	for _, e := range validation.Errors {
		fmt.Fprintf(out, "%s %s\n", styles.Error.Render("error:"), e.Error())
	}
	for _, w := range validation.Warnings {
		fmt.Fprintf(out, "%s %s\n", styles.Warning.Render("warning:"), w.Error())
	}

	formulas := 0
	for _, sheet := range cfg.Sheets {
		formulas += len(sheet.Properties)
	}

	failed := !validation.Valid() || (flags.strict && validation.HasWarnings())
	summary := fmt.Sprintf("%d sheets, %d formulas, %d documents: %d errors, %d warnings",
		len(cfg.Sheets), formulas, len(cfg.Documents), len(validation.Errors), len(validation.Warnings))
	if failed {
		fmt.Fprintln(out, styles.Failure.Render(summary))
		return ErrCheckFailed
	}
	fmt.Fprintln(out, styles.Success.Render("OK ")+summary)
	return nil
}
