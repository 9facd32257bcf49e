package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/textsheets/internal/configloader"
	"github.com/yaklabco/textsheets/internal/logging"
	"github.com/yaklabco/textsheets/pkg/config"
)

// errConfig wraps every configuration loading failure.
var errConfig = errors.New("failed to load configuration")

// loaded is the resolved configuration of one command run.
type loaded struct {
	Config  *config.Config
	WorkDir string
}

// commandContext returns the command's context with the default logger attached.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, logging.Default())
}

// loadConfig resolves the layered configuration with cliCfg on top and
// applies its logging settings, unless the log flags were given.
func loadConfig(cmd *cobra.Command, cliCfg *config.Config) (*loaded, error) {
	ctx := commandContext(cmd)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, errors.Join(errConfig, err)
	}

	cfg := loadResult.Config
	applyLogSettings(cmd, cfg)

	logger := logging.Default()
	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}
	logger.Debug("configuration loaded",
		logging.FieldFormat, cfg.Format,
		logging.FieldJobs, cfg.Jobs,
		logging.FieldDepth, cfg.MaxLookupDepth,
		"sheets", len(cfg.Sheets),
		"documents", len(cfg.Documents),
	)

	return &loaded{Config: cfg, WorkDir: workDir}, nil
}

func applyLogSettings(cmd *cobra.Command, cfg *config.Config) {
	if !flagChanged(cmd, "log-format") && cfg.LogFormat != "" && cfg.LogFormat != logging.FormatText {
		logging.SetDefault(logging.NewWithFormat(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat))
	}
	if !flagChanged(cmd, "debug") && cfg.LogLevel != "" {
		logging.SetLevel(cfg.LogLevel)
	}
}

func flagChanged(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	return flag != nil && flag.Changed
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
