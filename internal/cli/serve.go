package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/textsheets/internal/logging"
	"github.com/yaklabco/textsheets/pkg/live"
	"github.com/yaklabco/textsheets/pkg/sheets"
	"github.com/yaklabco/textsheets/pkg/workspace"
)

type serveFlags struct {
	addr string
}

func newServeCommand() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve live sessions over WebSocket",
		Long: `Start an HTTP server that follows documents while clients edit them.

Clients connect to ` + live.Path + ` and exchange JSON messages. An "open" message
attaches the connection to a configured document, or to a new document when it
carries text. Each "edit" message is answered first with the previous
highlights carried through the edits ("remapped"), then with the highlights of
a fresh evaluation ("highlights"). GET /healthz reports liveness.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "127.0.0.1:8740", "address to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, flags *serveFlags) error {
	resolved, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	cfg := resolved.Config

	logger := logging.Default()
	if !flagChanged(cmd, "log-format") && isTerminal(cmd.ErrOrStderr()) {
		logger = logging.NewInteractive()
		logger.SetLevel(logging.Default().GetLevel())
	}
	ctx := logging.WithLogger(commandContext(cmd), logger)

	ws, err := workspace.Load(ctx, cfg, resolved.WorkDir)
	if err != nil {
		return err
	}
	engine := sheets.NewEngine(ws, sheets.Options{MaxLookupDepth: cfg.MaxLookupDepth})

	server := live.NewServer(ws, engine, live.Options{
		Sheets: cfg.Sheets,
		Logger: logger,
	})

	logger.Debug("workspace loaded", "documents", len(ws.Documents()), "sheets", len(cfg.Sheets))
	return server.ListenAndServe(ctx, flags.addr)
}
