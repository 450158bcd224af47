package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"librarydesk/internal/agent"
	"librarydesk/internal/util"
	"librarydesk/pkg/domain"
	"librarydesk/pkg/store"
)

// Config holds runtime configuration for the session service.
type Config struct {
	DatabaseURL string
	Store       store.Store
	Dispatcher  agent.Dispatcher
}

// App orchestrates chat turns: session resolution, history, dispatch, and
// message persistence.
type App struct {
	store      store.Store
	dispatcher agent.Dispatcher
}

// New constructs the session service with database-backed storage.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	return &App{store: dataStore, dispatcher: cfg.Dispatcher}, nil
}

// ChatTurn is the result of one processed chat message.
type ChatTurn struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

// Chat processes one turn: it resolves the session, loads its history,
// persists the user message, delegates to the dispatcher, and persists the
// assistant response. A dispatch failure is returned to the caller; the
// user message stays persisted.
func (a *App) Chat(ctx context.Context, sessionID, message string) (ChatTurn, error) {
	if strings.TrimSpace(message) == "" {
		return ChatTurn{}, ErrEmptyMessage
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	history, err := a.store.ListMessages(ctx, sessionID)
	if err != nil {
		return ChatTurn{}, fmt.Errorf("load history: %w", err)
	}

	if err := a.store.AppendMessage(ctx, domain.Message{
		ID:        util.NewID(),
		SessionID: sessionID,
		Role:      "user",
		Content:   message,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return ChatTurn{}, fmt.Errorf("save user message: %w", err)
	}

	reply, err := a.dispatcher.Reply(ctx, message, history)
	if err != nil {
		return ChatTurn{}, fmt.Errorf("dispatch: %w", err)
	}

	if err := a.store.AppendMessage(ctx, domain.Message{
		ID:        util.NewID(),
		SessionID: sessionID,
		Role:      "assistant",
		Content:   reply.Text,
		ToolCalls: reply.ToolCalls,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return ChatTurn{}, fmt.Errorf("save assistant message: %w", err)
	}

	return ChatTurn{SessionID: sessionID, Response: reply.Text}, nil
}

// ListSessions returns the distinct session identifiers, most recent first.
func (a *App) ListSessions(ctx context.Context) ([]string, error) {
	ids, err := a.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
