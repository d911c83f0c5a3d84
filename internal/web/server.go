// Package web exposes the decision lifecycle over HTTP: create,
// review, execute, and an SSE tail of the execution audit log.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/adkite/adkite/internal/domain"
	"github.com/adkite/adkite/internal/storage/decisions"
)

const (
	orgHeader          = "X-Org-ID"
	streamPollInterval = 2 * time.Second
)

type decisionStore interface {
	Create(ctx context.Context, d *domain.Decision) error
	Get(ctx context.Context, id, orgID string) (*domain.Decision, error)
	ListPending(ctx context.Context, orgID string) ([]*domain.Decision, error)
	Approve(ctx context.Context, id, orgID, reviewer string) error
	Reject(ctx context.Context, id, orgID, reviewer string) error
	Acknowledge(ctx context.Context, id, orgID string, rating int) error
}

type decisionExecutor interface {
	ExecuteDecision(ctx context.Context, id, orgID string) (domain.Payload, error)
}

// AuditReader tails persisted execution events for the SSE stream. A
// nil reader disables the stream endpoint.
type AuditReader interface {
	EventsAfter(index uint64) ([]domain.ExecutionEventRecord, error)
}

// Server is the HTTP API for the decision execution engine.
type Server struct {
	addr     string
	store    decisionStore
	executor decisionExecutor
	audit    AuditReader
	logger   *zap.Logger
}

// NewServer builds the API server.
func NewServer(addr string, store decisionStore, executor decisionExecutor, audit AuditReader, logger *zap.Logger) *Server {
	return &Server{addr: addr, store: store, executor: executor, audit: audit, logger: logger}
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/decisions", func(r chi.Router) {
			r.Post("/", s.handleCreate)
			r.Get("/", s.handleListPending)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGet)
				r.Post("/approve", s.handleApprove)
				r.Post("/reject", s.handleReject)
				r.Post("/acknowledge", s.handleAcknowledge)
				r.Post("/execute", s.handleExecute)
			})
		})
		r.Get("/executions/stream", s.handleExecutionStream)
	})
	return r
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	orgID, ok := s.org(w, r)
	if !ok {
		return
	}
	var d domain.Decision
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed decision payload: "+err.Error())
		return
	}
	d.OrgID = orgID
	if err := s.store.Create(r.Context(), &d); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	orgID, ok := s.org(w, r)
	if !ok {
		return
	}
	list, err := s.store.ListPending(r.Context(), orgID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []*domain.Decision{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	orgID, ok := s.org(w, r)
	if !ok {
		return
	}
	d, err := s.store.Get(r.Context(), chi.URLParam(r, "id"), orgID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

type reviewRequest struct {
	Reviewer string `json:"reviewer"`
	Rating   int    `json:"rating"`
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.review(w, r, s.store.Approve)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.review(w, r, s.store.Reject)
}

func (s *Server) review(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id, orgID, reviewer string) error) {
	orgID, ok := s.org(w, r)
	if !ok {
		return
	}
	var req reviewRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if err := fn(r.Context(), chi.URLParam(r, "id"), orgID, req.Reviewer); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	orgID, ok := s.org(w, r)
	if !ok {
		return
	}
	var req reviewRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if err := s.store.Acknowledge(r.Context(), chi.URLParam(r, "id"), orgID, req.Rating); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	orgID, ok := s.org(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	result, err := s.executor.ExecuteDecision(r.Context(), id, orgID)
	if err != nil {
		s.writeExecError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleExecutionStream tails the audit log over SSE.
func (s *Server) handleExecutionStream(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		s.writeError(w, http.StatusServiceUnavailable, "audit log not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()
	poll := time.NewTicker(streamPollInterval)
	defer poll.Stop()

	lastIndex := uint64(0)
	send := func() error {
		records, err := s.audit.EventsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			payload, err := json.Marshal(record.Event)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: execution\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := send(); err != nil {
		s.logger.Error("execution stream initial load failed", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-poll.C:
			if err := send(); err != nil {
				s.logger.Error("execution stream poll failed", zap.Error(err))
				return
			}
		}
	}
}

func (s *Server) org(w http.ResponseWriter, r *http.Request) (string, bool) {
	orgID := r.Header.Get(orgHeader)
	if orgID == "" {
		s.writeError(w, http.StatusBadRequest, orgHeader+" header is required")
		return "", false
	}
	return orgID, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, decisions.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, decisions.ErrInvalidTransition):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeExecError(w http.ResponseWriter, err error) {
	if errors.Is(err, decisions.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	status := http.StatusInternalServerError
	switch domain.CodeOf(err) {
	case domain.ErrCodeValidation, domain.ErrCodeUnsupported:
		status = http.StatusBadRequest
	case domain.ErrCodeConnectionInactive:
		status = http.StatusConflict
	case domain.ErrCodeConfiguration:
		status = http.StatusInternalServerError
	case domain.ErrCodeExternalAPI, domain.ErrCodeRollbackFailure:
		status = http.StatusBadGateway
	}
	s.writeJSON(w, status, map[string]string{
		"code":  string(domain.CodeOf(err)),
		"error": err.Error(),
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}
