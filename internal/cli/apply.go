package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/textsheets/internal/logging"
	"github.com/yaklabco/textsheets/internal/ui/pretty"
	"github.com/yaklabco/textsheets/pkg/analysis"
	"github.com/yaklabco/textsheets/pkg/document"
	"github.com/yaklabco/textsheets/pkg/edit"
	"github.com/yaklabco/textsheets/pkg/fsutil"
	"github.com/yaklabco/textsheets/pkg/session"
	"github.com/yaklabco/textsheets/pkg/sheets"
	"github.com/yaklabco/textsheets/pkg/workspace"
)

type applyFlags struct {
	format string
	write  bool
	backup bool
	diff   bool
}

// applyReport is the JSON shape of an apply run.
type applyReport struct {
	Document   string                    `json:"document"`
	Text       string                    `json:"text"`
	Diff       string                    `json:"diff,omitempty"`
	Remapped   []analysis.HighlightEntry `json:"remapped"`
	Highlights []analysis.HighlightEntry `json:"highlights"`
	CellErrors []analysis.CellErrorEntry `json:"cellErrors,omitempty"`
	Written    bool                      `json:"written"`
}

func newApplyCommand() *cobra.Command {
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply <document> <edits.yaml>",
		Short: "Apply an edit script to a document",
		Long: `Apply a YAML edit script to a document and show how its highlights move.

The document is a configured document name or a file path. The script lists
edits by offset into the current text:

  edits:
    - start: 0
      end: 1
      text: "3"
    - start: 12
      text: " (sifted)"

The previous highlights are carried through the edits first, then the sheets
are evaluated again over the new text. Both sets are printed. With --write the
new text replaces the file, unless the file changed since it was read.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "save the edited text back to the document file")
	cmd.Flags().BoolVar(&flags.backup, "backup", false, "keep the original next to the file when writing")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "show the edits as a unified diff")

	return cmd
}

func runApply(cmd *cobra.Command, target, scriptPath string, flags *applyFlags) error {
	if flags.format != "text" && flags.format != "json" {
		return fmt.Errorf("%w: invalid format %q: must be text or json", ErrInvalidUsage, flags.format)
	}

	resolved, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	cfg := resolved.Config
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	script, _, err := fsutil.ReadFile(ctx, scriptPath)
	if err != nil {
		return fmt.Errorf("read edit script: %w", err)
	}
	edits, err := edit.ParseScript(script)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidUsage, scriptPath, err)
	}

	ws, err := workspace.Load(ctx, cfg, resolved.WorkDir)
	if err != nil {
		return err
	}
	doc, err := openTarget(cmd, ws, target, resolved)
	if err != nil {
		return err
	}

	before := doc.FullText()
	engine := sheets.NewEngine(ws, sheets.Options{MaxLookupDepth: cfg.MaxLookupDepth})
	sess, err := session.New(ctx, ws, engine, doc.ID)
	if err != nil {
		return err
	}

	change, err := sess.Notify(ctx, edits)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUsage, err)
	}

	logger.Debug("edits applied",
		logging.FieldDocument, doc.Name,
		logging.FieldEdits, len(change.Edits.Edits()),
	)

	written := false
	if flags.write {
		written, err = ws.Save(ctx, doc.ID, flags.backup)
		if err != nil {
			return fmt.Errorf("save document: %w", err)
		}
		if written {
			logger.Info("document saved", logging.FieldDocument, doc.Name)
		}
	}

	edited, _, err := ws.Get(doc.ID)
	if err != nil {
		return err
	}

	report := applyReport{
		Document:   edited.Name,
		Text:       edited.FullText(),
		Remapped:   analysis.Highlights(change.Remapped, edited, false),
		Highlights: analysis.Highlights(change.Result.Highlights, edited, true),
		Written:    written,
	}
	if flags.diff {
		report.Diff = change.Edits.Diff(edited.Name, before)
	}
	for _, cellErr := range change.Result.CellErrors {
		report.CellErrors = append(report.CellErrors, analysis.CellErrorEntry{
			Document: edited.Name,
			Sheet:    cellErr.SheetName,
			Column:   cellErr.Column,
			Row:      cellErr.Row,
			Message:  cellErr.Err.Error(),
		})
	}

	if flags.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return nil
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, cmd.OutOrStdout()))
	return writeApplyText(cmd.OutOrStdout(), styles, report)
}

// openTarget resolves a configured document by name, or loads a file.
func openTarget(
	cmd *cobra.Command,
	ws *workspace.Workspace,
	target string,
	resolved *loaded,
) (*document.Document, error) {
	if doc, _, ok := ws.ResolveDocument(target); ok {
		return doc, nil
	}

	path := target
	if !filepath.IsAbs(path) {
		path = filepath.Join(resolved.WorkDir, path)
	}
	for _, doc := range ws.Documents() {
		if docPath, err := ws.Path(doc.ID); err == nil && docPath == path {
			return doc, nil
		}
	}

	doc, err := ws.LoadFile(commandContext(cmd), "", path, resolved.Config.Sheets)
	if errors.Is(err, workspace.ErrDuplicateName) {
		return ws.LoadFile(commandContext(cmd), target, path, resolved.Config.Sheets)
	}
	return doc, err
}

func writeApplyText(w io.Writer, styles *pretty.Styles, report applyReport) (err error) {
	out := bufio.NewWriter(w)
	defer func() {
		if flushErr := out.Flush(); flushErr != nil && err == nil {
			err = fmt.Errorf("flush output: %w", flushErr)
		}
	}()

	fmt.Fprintln(out, styles.DocumentName.Render(report.Document))
	writeDiff(out, styles, report.Diff)
	writeSection(out, styles, "remapped", report.Remapped)
	writeSection(out, styles, "highlights", report.Highlights)
	for _, cellErr := range report.CellErrors {
		fmt.Fprintf(out, "  %s\n", styles.CellError.Render(fmt.Sprintf("cell error: %s.%s row %d: %s",
			cellErr.Sheet, cellErr.Column, cellErr.Row, cellErr.Message)))
	}
	if report.Written {
		fmt.Fprintln(out, styles.Success.Render("saved"))
	}
	return nil
}

func writeSection(out io.Writer, styles *pretty.Styles, title string, entries []analysis.HighlightEntry) {
	fmt.Fprintf(out, "%s (%d)\n", styles.SummaryTitle.Render(title), len(entries))
	for _, entry := range entries {
		span := fmt.Sprintf("[%d, %d)", entry.Span[0], entry.Span[1])
		fmt.Fprintf(out, "  %s  %s  %s\n",
			styles.Span.Render(span),
			styles.SheetName.Render(entry.Sheet),
			styles.Value.Render(strings.ReplaceAll(entry.Text, "\n", `\n`)),
		)
	}
}

func writeDiff(out io.Writer, styles *pretty.Styles, diff string) {
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprintln(out, styles.Bold.Render(line))
		case strings.HasPrefix(line, "@@"):
			fmt.Fprintln(out, styles.Span.Render(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(out, styles.Success.Render(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(out, styles.Failure.Render(line))
		default:
			fmt.Fprintln(out, line)
		}
	}
}
