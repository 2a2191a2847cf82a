// Package server exposes the chat surface over websockets: submissions go
// in, conversation messages and history operations come back.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gorilla/websocket"

	"github.com/franckalain/dermscan/internal/analyzer"
	"github.com/franckalain/dermscan/internal/conversation"
	"github.com/franckalain/dermscan/internal/history"
	"github.com/franckalain/dermscan/internal/models"
	"github.com/franckalain/dermscan/internal/scoring"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, this should be more restrictive
	},
}

// Server routes websocket messages to per-connection conversations and the
// shared history store.
type Server struct {
	store    history.Store
	analyzer analyzer.Analyzer
	debug    bool
}

// New creates a server.
func New(store history.Store, a analyzer.Analyzer, debug bool) *Server {
	if debug {
		log.SetLevel(log.DebugLevel)
		log.Debug("debug logging enabled")
	}
	return &Server{
		store:    store,
		analyzer: a,
		debug:    debug,
	}
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start(port, staticDir string) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		log.Infof("starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		log.Info("shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Each connection is one chat session with its own log. Messages on a
	// connection are handled serially, so the analyzing flag fully gates
	// concurrent submissions.
	conv := conversation.New(s.analyzer)

	for {
		var msg struct {
			Type string            `json:"type"`
			Data map[string]string `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debugf("websocket read ended: %v", err)
			}
			return
		}

		switch msg.Type {
		case "analyze":
			s.handleAnalyze(r.Context(), conn, conv, msg.Data)
		case "get_history":
			s.handleGetHistory(r.Context(), conn)
		case "save_analysis":
			s.handleSaveAnalysis(r.Context(), conn, conv, msg.Data)
		case "load_saved":
			s.handleLoadSaved(r.Context(), conn, conv, msg.Data)
		case "delete_analysis":
			s.handleDeleteAnalysis(r.Context(), conn, msg.Data)
		case "clear_history":
			s.handleClearHistory(r.Context(), conn)
		default:
			s.sendError(conn, "Unknown message type")
		}
	}
}

func (s *Server) handleAnalyze(ctx context.Context, conn *websocket.Conn, conv *conversation.Log, data map[string]string) {
	text, image := data["text"], data["image"]

	err := conv.Submit(ctx, text, image, func(m models.ChatMessage) {
		s.sendMessage(conn, "message", m)
	})
	switch {
	case errors.Is(err, conversation.ErrEmptySubmission):
		s.sendError(conn, "Nothing to analyze: provide ingredient text or an image")
	case errors.Is(err, conversation.ErrBusy):
		s.sendError(conn, "An analysis is already in progress")
	case err != nil:
		log.Errorf("submission abandoned: %v", err)
	}
}

// historyItem decorates a saved analysis with its derived score band so
// list indicators need no client-side logic.
type historyItem struct {
	models.SavedAnalysis
	Band scoring.Band `json:"band"`
}

func (s *Server) handleGetHistory(ctx context.Context, conn *websocket.Conn) {
	items, err := s.store.List(ctx)
	if err != nil {
		log.Errorf("failed to list history: %v", err)
		s.sendError(conn, "Failed to retrieve history")
		return
	}

	decorated := make([]historyItem, 0, len(items))
	for _, item := range items {
		decorated = append(decorated, historyItem{
			SavedAnalysis: item,
			Band:          scoring.ScoreBand(item.Result.OverallScore),
		})
	}
	s.sendMessage(conn, "history", decorated)
}

func (s *Server) handleSaveAnalysis(ctx context.Context, conn *websocket.Conn, conv *conversation.Log, data map[string]string) {
	messageID, name := data["message_id"], data["name"]

	msg, ok := conv.Find(messageID)
	if !ok || msg.Analysis == nil {
		s.sendError(conn, "No analysis found for that message")
		return
	}

	entry, err := s.store.Add(ctx, *msg.Analysis, name)
	if errors.Is(err, history.ErrEmptyName) {
		s.sendError(conn, "A name is required to save an analysis")
		return
	}
	if err != nil {
		log.Errorf("failed to save analysis: %v", err)
		s.sendError(conn, "Failed to save. Storage might be full.")
		return
	}

	log.Infof("saved analysis %q (%s)", entry.Name, entry.ID)
	s.sendMessage(conn, "analysis_saved", entry)
}

func (s *Server) handleLoadSaved(ctx context.Context, conn *websocket.Conn, conv *conversation.Log, data map[string]string) {
	id := data["id"]

	items, err := s.store.List(ctx)
	if err != nil {
		log.Errorf("failed to list history: %v", err)
		s.sendError(conn, "Failed to retrieve history")
		return
	}

	for _, item := range items {
		if item.ID == id {
			s.sendMessage(conn, "message", conv.LoadSaved(item))
			return
		}
	}
	s.sendError(conn, "Saved analysis not found")
}

func (s *Server) handleDeleteAnalysis(ctx context.Context, conn *websocket.Conn, data map[string]string) {
	if err := s.store.Remove(ctx, data["id"]); err != nil {
		log.Errorf("failed to delete saved analysis: %v", err)
		s.sendError(conn, "Failed to delete saved analysis")
		return
	}
	s.handleGetHistory(ctx, conn)
}

func (s *Server) handleClearHistory(ctx context.Context, conn *websocket.Conn) {
	if err := s.store.Clear(ctx); err != nil {
		log.Errorf("failed to clear history: %v", err)
		s.sendError(conn, "Failed to clear history")
		return
	}
	s.sendMessage(conn, "history", []historyItem{})
}

func (s *Server) sendMessage(conn *websocket.Conn, messageType string, data any) {
	msg := map[string]any{
		"type": messageType,
		"data": data,
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Errorf("failed to send %s message: %v", messageType, err)
	}
}

func (s *Server) sendError(conn *websocket.Conn, message string) {
	msg := map[string]any{
		"type":    "error",
		"message": message,
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Errorf("failed to send error message: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
