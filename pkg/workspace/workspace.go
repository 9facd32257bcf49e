// Package workspace keeps the open documents and the sheets attached to
// each of them. It resolves documents by name for cross-document lookups.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/yaklabco/textsheets/pkg/config"
	"github.com/yaklabco/textsheets/pkg/document"
	"github.com/yaklabco/textsheets/pkg/fsutil"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrDocumentNotFound indicates no open document has the given id or name.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDuplicateName indicates another open document already has the name.
	ErrDuplicateName = errors.New("duplicate document name")

	// ErrNotFileBacked indicates the document was not loaded from a file.
	ErrNotFileBacked = errors.New("document has no file")
)

type entry struct {
	doc    *document.Document
	sheets []config.SheetConfig

	// stamp is set for documents loaded from a file.
	stamp *fsutil.Stamp
}

// Workspace is a registry of open documents. It is safe for concurrent use.
type Workspace struct {
	mu     sync.RWMutex
	byID   map[string]*entry
	byName map[string]string
	order  []string
}

// New creates an empty workspace.
func New() *Workspace {
	return &Workspace{
		byID:   make(map[string]*entry),
		byName: make(map[string]string),
	}
}

// Load opens every document of cfg. Relative paths resolve against baseDir.
func Load(ctx context.Context, cfg *config.Config, baseDir string) (*Workspace, error) {
	ws := New()
	for _, docCfg := range cfg.Documents {
		sheets, err := cfg.SheetsFor(docCfg)
		if err != nil {
			return nil, err
		}

		path := docCfg.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		if _, err := ws.LoadFile(ctx, docCfg.Name, path, sheets); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

// Open adds a document with a fresh id.
func (w *Workspace) Open(name, text string, sheets []config.SheetConfig) (*document.Document, error) {
	doc := document.New(uuid.NewString(), name, text)
	if err := w.add(&entry{doc: doc, sheets: sheets}); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadFile reads path and adds it as a document. An empty name means the
// file's base name.
func (w *Workspace) LoadFile(
	ctx context.Context,
	name, path string,
	sheets []config.SheetConfig,
) (*document.Document, error) {
	content, stamp, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	if name == "" {
		name = filepath.Base(path)
	}

	doc := document.New(uuid.NewString(), name, string(content))
	if err := w.add(&entry{doc: doc, sheets: sheets, stamp: stamp}); err != nil {
		return nil, err
	}
	return doc, nil
}

func (w *Workspace) add(e *entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, taken := w.byName[e.doc.Name]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateName, e.doc.Name)
	}
	w.byID[e.doc.ID] = e
	w.byName[e.doc.Name] = e.doc.ID
	w.order = append(w.order, e.doc.ID)
	return nil
}

// Get returns the current snapshot of a document and its sheets.
func (w *Workspace) Get(id string) (*document.Document, []config.SheetConfig, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	e, ok := w.byID[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: id %q", ErrDocumentNotFound, id)
	}
	return e.doc, e.sheets, nil
}

// ResolveDocument finds a document by name.
func (w *Workspace) ResolveDocument(name string) (*document.Document, []config.SheetConfig, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	id, ok := w.byName[name]
	if !ok {
		return nil, nil, false
	}
	e := w.byID[id]
	return e.doc, e.sheets, true
}

// Documents returns the open documents in the order they were added.
func (w *Workspace) Documents() []*document.Document {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*document.Document, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.byID[id].doc)
	}
	return out
}

// Update replaces a document's text and returns the new snapshot.
func (w *Workspace) Update(id, text string) (*document.Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %q", ErrDocumentNotFound, id)
	}
	e.doc = e.doc.WithText(text)
	return e.doc, nil
}

// SetSheets replaces the sheets attached to a document.
func (w *Workspace) SetSheets(id string, sheets []config.SheetConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.byID[id]
	if !ok {
		return fmt.Errorf("%w: id %q", ErrDocumentNotFound, id)
	}
	e.sheets = sheets
	return nil
}

// Close removes a document.
func (w *Workspace) Close(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.byID[id]
	if !ok {
		return fmt.Errorf("%w: id %q", ErrDocumentNotFound, id)
	}
	delete(w.byID, id)
	delete(w.byName, e.doc.Name)
	for idx, other := range w.order {
		if other == id {
			w.order = append(w.order[:idx], w.order[idx+1:]...)
			break
		}
	}
	return nil
}

// Path returns the file a document was loaded from.
func (w *Workspace) Path(id string) (string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	e, ok := w.byID[id]
	if !ok {
		return "", fmt.Errorf("%w: id %q", ErrDocumentNotFound, id)
	}
	if e.stamp == nil {
		return "", fmt.Errorf("%w: %q", ErrNotFileBacked, e.doc.Name)
	}
	return e.stamp.Path, nil
}

// Save writes a file-backed document's current text back to its file,
// refusing when the file changed since it was read. With backup set, the
// original is kept in a sidecar file first. It reports whether it wrote.
func (w *Workspace) Save(ctx context.Context, id string, backup bool) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.byID[id]
	if !ok {
		return false, fmt.Errorf("%w: id %q", ErrDocumentNotFound, id)
	}
	if e.stamp == nil {
		return false, fmt.Errorf("%w: %q", ErrNotFileBacked, e.doc.Name)
	}

	if backup {
		if _, err := fsutil.Backup(ctx, e.stamp.Path); err != nil {
			return false, err
		}
	}

	wrote, err := fsutil.SaveOver(ctx, e.stamp, []byte(e.doc.FullText()))
	if err != nil || !wrote {
		return wrote, err
	}

	_, stamp, err := fsutil.ReadFile(ctx, e.stamp.Path)
	if err != nil {
		return true, err
	}
	e.stamp = stamp
	return true, nil
}
