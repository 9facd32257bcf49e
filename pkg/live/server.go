// Package live serves sessions over websockets. A client opens a document,
// streams edits, and receives the remapped highlights immediately followed
// by the re-evaluated ones.
package live

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yaklabco/textsheets/internal/logging"
	"github.com/yaklabco/textsheets/pkg/analysis"
	"github.com/yaklabco/textsheets/pkg/config"
	"github.com/yaklabco/textsheets/pkg/session"
	"github.com/yaklabco/textsheets/pkg/sheets"
	"github.com/yaklabco/textsheets/pkg/workspace"
)

// Path is where the websocket endpoint is mounted.
const Path = "/ws"

const shutdownTimeout = 5 * time.Second

// ErrNoDocument is returned for edits before an open.
var ErrNoDocument = errors.New("no document open")

// Options configures a Server.
type Options struct {
	// Sheets are attached to documents a client opens by text.
	Sheets []config.SheetConfig

	// Logger defaults to the process logger.
	Logger *log.Logger
}

// Server accepts websocket connections, each following one document.
type Server struct {
	workspace *workspace.Workspace
	engine    *sheets.Engine
	opts      Options
	upgrader  websocket.Upgrader
	logger    *log.Logger

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

// NewServer creates a server over a workspace.
func NewServer(ws *workspace.Workspace, engine *sheets.Engine, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Server{
		workspace: ws,
		engine:    engine,
		opts:      opts,
		logger:    logger,
		conns:     make(map[string]*websocket.Conn),
	}
}

// Handler returns the HTTP handler with the websocket endpoint mounted.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.handleConn)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: shutdownTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving live sessions", logging.FieldAddr, addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.closeAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// Connections returns the number of open connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
}

func (s *Server) handleConn(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", logging.FieldError, err)
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.conns[id] = conn
	s.mu.Unlock()

	c := &connection{
		server: s,
		id:     id,
		conn:   conn,
		logger: s.logger.With(logging.FieldConn, id),
	}
	defer func() {
		c.close()
		s.mu.Lock()
		delete(s.conns, id)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	c.logger.Debug("connection opened")
	c.serve(logging.WithLogger(r.Context(), c.logger))
}

// connection is one client and the session it follows.
type connection struct {
	server *Server
	id     string
	conn   *websocket.Conn
	logger *log.Logger

	session *session.Session

	// owned is set when the connection created the document.
	owned bool
}

func (c *connection) serve(ctx context.Context) {
	for {
		var req Request
		if err := c.conn.ReadJSON(&req); err != nil {
			c.logger.Debug("connection closed", logging.FieldError, err)
			return
		}

		responses, err := c.handle(ctx, req)
		if err != nil {
			responses = []Response{{Type: TypeError, Connection: c.id, Error: err.Error()}}
		}

		for _, resp := range responses {
			if err := c.conn.WriteJSON(resp); err != nil {
				c.logger.Warn("write failed", logging.FieldError, err)
				return
			}
		}
	}
}

func (c *connection) handle(ctx context.Context, req Request) ([]Response, error) {
	switch req.Type {
	case TypeOpen:
		return c.open(ctx, req)
	case TypeEdit:
		return c.edit(ctx, req)
	case TypeClose:
		c.close()
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", req.Type)
	}
}

func (c *connection) open(ctx context.Context, req Request) ([]Response, error) {
	if req.Document == "" {
		return nil, errors.New("open: document name is required")
	}
	c.close()

	ws := c.server.workspace
	doc, _, found := ws.ResolveDocument(req.Document)
	switch {
	case found && req.Text != nil:
		if _, err := ws.Update(doc.ID, *req.Text); err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
	case !found:
		text := ""
		if req.Text != nil {
			text = *req.Text
		}
		opened, err := ws.Open(req.Document, text, c.server.opts.Sheets)
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		doc = opened
		c.owned = true
	}

	sess, err := session.New(ctx, ws, c.server.engine, doc.ID)
	if err != nil {
		if c.owned {
			if closeErr := ws.Close(doc.ID); closeErr != nil {
				c.logger.Debug("close document", logging.FieldError, closeErr)
			}
			c.owned = false
		}
		return nil, fmt.Errorf("open: %w", err)
	}
	c.session = sess
	c.logger.Debug("document opened", logging.FieldDocument, req.Document)

	return []Response{
		{Type: TypeOpened, Connection: c.id, Document: doc.ID},
		highlightsResponse(c.id, sess.Result()),
	}, nil
}

func (c *connection) edit(ctx context.Context, req Request) ([]Response, error) {
	if c.session == nil {
		return nil, ErrNoDocument
	}

	change, err := c.session.Notify(ctx, req.Edits)
	if err != nil {
		return nil, err
	}

	return []Response{
		{
			Type:       TypeRemapped,
			Connection: c.id,
			Document:   change.Result.DocumentID,
			Highlights: analysis.Highlights(change.Remapped, change.Result.Document, false),
		},
		highlightsResponse(c.id, change.Result),
	}, nil
}

// close drops the followed document, removing it from the workspace when
// this connection created it.
func (c *connection) close() {
	if c.session == nil {
		return
	}
	if c.owned {
		if err := c.server.workspace.Close(c.session.DocumentID()); err != nil {
			c.logger.Debug("close document", logging.FieldError, err)
		}
	}
	c.session = nil
	c.owned = false
}

func highlightsResponse(connID string, result *sheets.Result) Response {
	resp := Response{
		Type:       TypeHighlights,
		Connection: connID,
		Document:   result.DocumentID,
		Highlights: analysis.Highlights(result.Highlights, result.Document, true),
	}
	for _, cellErr := range result.CellErrors {
		resp.CellErrors = append(resp.CellErrors, analysis.CellErrorEntry{
			Document: result.Document.Name,
			Sheet:    cellErr.SheetName,
			Column:   cellErr.Column,
			Row:      cellErr.Row,
			Message:  cellErr.Err.Error(),
		})
	}
	return resp
}
