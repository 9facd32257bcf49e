package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/textsheets/internal/logging"
	"github.com/yaklabco/textsheets/pkg/document"
	"github.com/yaklabco/textsheets/pkg/formula"
	"github.com/yaklabco/textsheets/pkg/sheets"
	"github.com/yaklabco/textsheets/pkg/workspace"
)

// Runner evaluates the documents of a run. Its formula table is shared by
// every run, so repeated formulas parse once.
type Runner struct {
	formulas *formula.Table
}

// New creates a Runner.
func New() *Runner {
	return &Runner{formulas: formula.NewTable()}
}

// Run opens the configured documents and the discovered files in one
// workspace and evaluates each of them. Discovered files that are not
// configured documents get every configured sheet. Outcomes are in
// workspace order regardless of completion order.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.config()
	logger := logging.FromContext(ctx)

	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	ws, err := workspace.Load(ctx, cfg, workDir)
	if err != nil {
		return nil, err
	}

	configured := make(map[string]bool, len(cfg.Documents))
	for _, doc := range ws.Documents() {
		if path, err := ws.Path(doc.ID); err == nil {
			configured[path] = true
		}
	}

	var files []string
	if len(opts.Paths) > 0 || len(cfg.Documents) == 0 {
		opts.WorkingDir = workDir
		files, err = Discover(ctx, opts)
		if err != nil {
			return nil, err
		}
	}

	for _, path := range files {
		if configured[path] {
			continue
		}
		name, relErr := filepath.Rel(workDir, path)
		if relErr != nil {
			name = path
		}
		if _, err := ws.LoadFile(ctx, filepath.ToSlash(name), path, cfg.Sheets); err != nil {
			return nil, err
		}
	}

	docs := ws.Documents()
	result := &Result{
		Documents: make([]DocumentOutcome, 0, len(docs)),
		Workspace: ws,
	}
	result.Stats.DocumentsDiscovered = len(docs)

	logger.Debug("documents discovered", logging.FieldDocumentsDiscovered, len(docs))

	if len(docs) == 0 {
		return result, nil
	}

	engine := sheets.NewEngine(ws, sheets.Options{
		MaxLookupDepth: cfg.MaxLookupDepth,
		Formulas:       r.formulas,
	})

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	outcomes := make([]DocumentOutcome, len(docs))
	done := make([]bool, len(docs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)

	for idx, doc := range docs {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return nil
			}
			outcomes[idx] = evaluate(groupCtx, ws, engine, doc)
			done[idx] = true
			return nil
		})
	}
	_ = group.Wait()

	for idx, outcome := range outcomes {
		if done[idx] {
			result.accumulate(outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	return result, nil
}

func evaluate(
	ctx context.Context,
	ws *workspace.Workspace,
	engine *sheets.Engine,
	doc *document.Document,
) DocumentOutcome {
	outcome := DocumentOutcome{Name: doc.Name}
	if path, err := ws.Path(doc.ID); err == nil {
		outcome.Path = path
	}

	ctx, logger := logging.WithFields(ctx, logging.FieldRoot, doc.Name)

	_, configs, err := ws.Get(doc.ID)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	res, err := engine.EvaluateSheets(ctx, doc, configs)
	if err != nil {
		logger.Debug("document failed", logging.FieldError, err)
		outcome.Error = err
		return outcome
	}
	outcome.Result = res
	return outcome
}
