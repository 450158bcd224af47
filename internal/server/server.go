package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"librarydesk/internal/app"
	"librarydesk/internal/ratelimit"
	"librarydesk/internal/util"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
	// ChatLimiter throttles POST /chat per client IP. Nil disables limiting.
	ChatLimiter *ratelimit.FixedWindowLimiter
}

// Server exposes the chat endpoints.
type Server struct {
	app         *app.App
	chatLimiter *ratelimit.FixedWindowLimiter
	mux         *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:         cfg.App,
		chatLimiter: cfg.ChatLimiter,
		mux:         http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/chat", s.handleChat)
	s.mux.HandleFunc("/sessions", s.handleSessions)
}

// handleRoot is the liveness probe.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Library AI Server is active",
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.chatLimiter != nil && !s.chatLimiter.Allow(util.ClientIP(r)) {
		s.audit(r, "chat", "rate_limited")
		writeError(w, http.StatusTooManyRequests, "too many chat requests")
		return
	}
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.audit(r, "chat", "fail", "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	turn, err := s.app.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, app.ErrEmptyMessage) {
			s.audit(r, "chat", "fail", "reason", "empty_message")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.audit(r, "chat", "fail", "reason", err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.audit(r, "chat", "success", "session_id", turn.SessionID)
	writeJSON(w, http.StatusOK, turn)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	ids, err := s.app.ListSessions(r.Context())
	if err != nil {
		s.audit(r, "sessions", "fail", "reason", err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rows := make([]sessionRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, sessionRow{SessionID: id})
	}
	s.audit(r, "sessions", "success", "count", len(rows))
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) audit(r *http.Request, op, result string, args ...any) {
	fields := append([]any{"op", op, "result", result, "remote", util.ClientIP(r)}, args...)
	slog.Info("audit", fields...)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type sessionRow struct {
	SessionID string `json:"session_id"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
