package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/yousafkhamza/devops-mcq-bot/internal/domain/entities"
	"github.com/yousafkhamza/devops-mcq-bot/internal/service"
)

// SessionRegistry resolves the live quiz session for a chat.
type SessionRegistry interface {
	Lookup(chatID int64) (*service.Session, bool)
}

// Server exposes the report endpoint and the guard-signal intake used by
// companion clients to report environment events (tab hidden, blocked
// shortcuts) for a running session.
type Server struct {
	logger   *zap.Logger
	registry SessionRegistry
	srv      *http.Server
}

func NewServer(addr string, logger *zap.Logger, registry SessionRegistry) *Server {
	s := &Server{
		logger:   logger,
		registry: registry,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/chats/{chat_id}/report", s.handleReport).Methods(http.MethodGet)
	r.HandleFunc("/api/chats/{chat_id}/signals", s.handleSignal).Methods(http.MethodPost)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info("http api started", zap.String("addr", s.srv.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	report, err := session.Report()
	if err != nil {
		writeError(w, http.StatusConflict, "session has not finished")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

type signalRequest struct {
	Type string `json:"type"`
}

type signalResponse struct {
	Action service.Action `json:"action"`
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req signalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	signal, ok := entities.ParseSignal(req.Type)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown signal type")
		return
	}

	action := session.Guard().Handle(signal)
	s.logger.Info("guard signal",
		zap.String("signal", string(signal)),
		zap.String("action", string(action)),
	)

	writeJSON(w, http.StatusOK, signalResponse{Action: action})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	chatID, err := strconv.ParseInt(mux.Vars(r)["chat_id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat id")
		return nil, false
	}

	session, ok := s.registry.Lookup(chatID)
	if !ok {
		writeError(w, http.StatusNotFound, "no session for chat")
		return nil, false
	}
	return session, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
