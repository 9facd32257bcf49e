// Package session follows one open document through edits. Each edit
// notification remaps the previous highlights as a cheap approximation and
// then re-runs the sheet pipeline once.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/yaklabco/textsheets/internal/logging"
	"github.com/yaklabco/textsheets/pkg/edit"
	"github.com/yaklabco/textsheets/pkg/highlight"
	"github.com/yaklabco/textsheets/pkg/sheets"
	"github.com/yaklabco/textsheets/pkg/workspace"
)

// Session holds one document of a workspace and its latest result.
// It is safe for concurrent use; notifications are serialized.
type Session struct {
	mu        sync.Mutex
	workspace *workspace.Workspace
	engine    *sheets.Engine
	docID     string
	last      *sheets.Result
}

// Change is the outcome of one edit notification.
type Change struct {
	// Remapped are the previous highlights carried through the edits.
	Remapped []*highlight.Highlight

	// Result is the fresh pipeline run over the edited text.
	Result *sheets.Result

	// Edits are the applied edits, sorted by start.
	Edits *edit.ChangeSet
}

// New opens a session on a workspace document and evaluates it once.
func New(ctx context.Context, ws *workspace.Workspace, engine *sheets.Engine, docID string) (*Session, error) {
	s := &Session{workspace: ws, engine: engine, docID: docID}
	if _, err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// DocumentID returns the id of the followed document.
func (s *Session) DocumentID() string {
	return s.docID
}

// Result returns the latest pipeline result.
func (s *Session) Result() *sheets.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Refresh re-runs the pipeline over the current document, for example
// after its sheets changed.
func (s *Session) Refresh(ctx context.Context) (*sheets.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, configs, err := s.workspace.Get(s.docID)
	if err != nil {
		return nil, err
	}
	result, err := s.engine.EvaluateSheets(ctx, doc, configs)
	if err != nil {
		return nil, err
	}
	s.last = result
	return result, nil
}

// Notify applies edits to the document. Invalid or overlapping edits are
// rejected before anything changes. The previous highlights are remapped
// through the edits, the workspace snapshot is replaced, and the pipeline
// runs once over the new text.
func (s *Session) Notify(ctx context.Context, edits []edit.TextEdit) (*Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := logging.FromContext(ctx)

	doc, configs, err := s.workspace.Get(s.docID)
	if err != nil {
		return nil, err
	}

	text, changes, err := edit.ApplyText(doc.FullText(), edits)
	if err != nil {
		return nil, fmt.Errorf("apply edits: %w", err)
	}

	var previous []*highlight.Highlight
	if s.last != nil {
		previous = s.last.Highlights
	}
	remapped := highlight.RemapAssoc(previous, changes)

	doc, err = s.workspace.Update(s.docID, text)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.EvaluateSheets(ctx, doc, configs)
	if err != nil {
		return nil, err
	}
	s.last = result

	logger.Debug("document changed",
		logging.FieldDocument, doc.Name,
		logging.FieldEdits, len(changes.Edits()),
		logging.FieldHighlightsTotal, len(result.Highlights))

	return &Change{Remapped: remapped, Result: result, Edits: changes}, nil
}
