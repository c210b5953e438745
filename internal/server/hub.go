// Package server exposes matches to a local UI over websocket. Each
// connection gets its own match against the built-in bot.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hexclash/hexclash-server-go/internal/config"
	"github.com/hexclash/hexclash-server-go/internal/game"
)

// MatchFactory creates a fresh, unstarted match for a new connection.
type MatchFactory func(logger *zap.Logger) (*game.Manager, error)

// Hub tracks live sessions.
type Hub struct {
	logger   *zap.Logger
	cfg      config.ServerConfig
	newMatch MatchFactory
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// NewHub creates a hub that builds one match per connection with newMatch.
func NewHub(cfg config.ServerConfig, newMatch MatchFactory, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SendQueue <= 0 {
		cfg.SendQueue = 256
	}
	return &Hub{
		logger:   logger,
		cfg:      cfg,
		newMatch: newMatch,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBuffer,
			WriteBufferSize: cfg.WriteBuffer,
			// The UI is served from a different local origin during development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: make(map[string]*Session),
	}
}

// Handler routes /ws to the websocket endpoint and /healthz to a liveness
// probe.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{"sessions": h.SessionCount()})
	})
	return mux
}

// ServeWS upgrades the request and starts a session.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	logger := h.logger.With(zap.String("session_id", id))

	m, err := h.newMatch(logger)
	if err != nil {
		logger.Error("failed to create match", zap.Error(err))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "match unavailable"))
		conn.Close()
		return
	}

	s := newSession(id, conn, m, h.cfg.SendQueue, logger)
	h.register(s)

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		s.writePump()
	}()
	go func() {
		defer h.wg.Done()
		s.readPump()
		h.unregister(s)
	}()
}

func (h *Hub) register(s *Session) {
	h.mu.Lock()
	h.sessions[s.id] = s
	n := len(h.sessions)
	h.mu.Unlock()
	h.logger.Info("session registered", zap.String("session_id", s.id), zap.Int("sessions", n))
}

func (h *Hub) unregister(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s.id]
	delete(h.sessions, s.id)
	n := len(h.sessions)
	h.mu.Unlock()
	if !ok {
		return
	}
	s.close()
	h.logger.Info("session unregistered", zap.String("session_id", s.id), zap.Int("sessions", n))
}

// SessionCount returns the number of connected clients.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close disconnects every session and waits for their goroutines.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		h.unregister(s)
	}
	h.wg.Wait()
}

// ListenAndServe serves the hub on cfg.Address until ctx is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              h.cfg.Address,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("starting websocket server", zap.String("address", h.cfg.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("websocket server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	h.Close()
	if err != nil {
		return fmt.Errorf("shutdown websocket server: %w", err)
	}
	return nil
}
