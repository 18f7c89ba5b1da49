// Package rest exposes a Database over a JSON HTTP API built on gorilla/mux.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

// Server serves one database.
type Server struct {
	db     *database.Database
	logger *slog.Logger
	router *mux.Router
}

// NewServer builds the router. A nil logger discards request errors.
func NewServer(db *database.Database, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{db: db, logger: logger, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)

	api.HandleFunc("/notes", s.handleListNotes).Methods(http.MethodGet)
	api.HandleFunc("/notes", s.handleCreateNote).Methods(http.MethodPost)
	api.HandleFunc("/notes/{id}", s.handleGetNote).Methods(http.MethodGet)
	api.HandleFunc("/notes/{id}", s.handleUpdateNote).Methods(http.MethodPatch)
	api.HandleFunc("/notes/{id}", s.handleDeleteNote).Methods(http.MethodDelete)
	api.HandleFunc("/notes/{id}/tags", s.handleTagNote).Methods(http.MethodPost)
	api.HandleFunc("/notes/{id}/tags/{tag}", s.handleUntagNote).Methods(http.MethodDelete)
	api.HandleFunc("/notes/{id}/history", s.handleListHistory).Methods(http.MethodGet)

	api.HandleFunc("/notebooks", s.handleListNotebooks).Methods(http.MethodGet)
	api.HandleFunc("/notebooks", s.handleCreateNotebook).Methods(http.MethodPost)
	api.HandleFunc("/notebooks/{id}", s.handleGetNotebook).Methods(http.MethodGet)
	api.HandleFunc("/notebooks/{id}", s.handleDeleteNotebook).Methods(http.MethodDelete)
	api.HandleFunc("/notebooks/{id}/topics", s.handleAddTopic).Methods(http.MethodPost)
	api.HandleFunc("/notebooks/{id}/topics/{topic}/notes", s.handleTopicNotes).Methods(http.MethodGet)
	api.HandleFunc("/notebooks/{id}/topics/{topic}/notes", s.handleAddToTopic).Methods(http.MethodPost)

	api.HandleFunc("/tags", s.handleListTags).Methods(http.MethodGet)
	api.HandleFunc("/tags/{tag}", s.handleRemoveTag).Methods(http.MethodDelete)

	api.HandleFunc("/trash", s.handleListTrash).Methods(http.MethodGet)
	api.HandleFunc("/trash", s.handleClearTrash).Methods(http.MethodDelete)
	api.HandleFunc("/trash/{id}/restore", s.handleRestore).Methods(http.MethodPost)
	api.HandleFunc("/trash/{id}", s.handlePurge).Methods(http.MethodDelete)

	api.HandleFunc("/history/{session}/restore", s.handleRestoreSession).Methods(http.MethodPost)
	api.HandleFunc("/reminders", s.handleListReminders).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains active
// requests for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	s.logger.Info("http server listening", "addr", addr)

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrTagNotFound), errors.Is(err, core.ErrTopicNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateTag):
		status = http.StatusConflict
	case errors.Is(err, core.ErrReadOnly):
		status = http.StatusForbidden
	case errors.Is(err, core.ErrNotebookTitleRequired),
		errors.Is(err, core.ErrTagTitleRequired),
		errors.Is(err, core.ErrInvalidContentType),
		errors.Is(err, core.ErrInvalidTarget),
		errors.Is(err, core.ErrPinLimit),
		errors.Is(err, core.ErrReminderInvalid),
		errors.Is(err, core.ErrUnknownItemType):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondError(w, status, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	return true
}
