package live

import (
	"github.com/yaklabco/textsheets/pkg/analysis"
	"github.com/yaklabco/textsheets/pkg/edit"
)

// Message types exchanged over a live connection.
const (
	TypeOpen       = "open"
	TypeEdit       = "edit"
	TypeClose      = "close"
	TypeOpened     = "opened"
	TypeRemapped   = "remapped"
	TypeHighlights = "highlights"
	TypeError      = "error"
)

// Request is a client message.
type Request struct {
	Type string `json:"type"`

	// Document names the document to open. An existing workspace document
	// is followed as is unless Text is set.
	Document string `json:"document,omitempty"`

	// Text is the initial text for open.
	Text *string `json:"text,omitempty"`

	// Edits are applied to the open document, all at once.
	Edits []edit.TextEdit `json:"edits,omitempty"`
}

// Response is a server message.
type Response struct {
	Type string `json:"type"`

	// Connection identifies the client connection.
	Connection string `json:"connection,omitempty"`

	// Document is the followed document's id.
	Document string `json:"document,omitempty"`

	Highlights []analysis.HighlightEntry `json:"highlights,omitempty"`
	CellErrors []analysis.CellErrorEntry `json:"cellErrors,omitempty"`

	Error string `json:"error,omitempty"`
}
