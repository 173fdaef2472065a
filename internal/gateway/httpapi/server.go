package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pablasso/taskloop/internal/gateway"
	"github.com/pablasso/taskloop/internal/logging"
	"github.com/pablasso/taskloop/internal/task"
)

const (
	requestIDHeader = "X-Request-ID"
	maxRequestBytes = 1 << 20
)

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves the gateway contracts over HTTP.
type Server struct {
	gateway gateway.Gateway
	logger  zerolog.Logger
	mux     *http.ServeMux
}

// NewServer wraps gw in HTTP handlers.
func NewServer(gw gateway.Gateway) *Server {
	s := &Server{
		gateway: gw,
		logger:  logging.Component("api"),
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("POST "+ExecutePath, s.handleExecute)
	s.mux.HandleFunc("POST "+CreatePath, s.handleCreate)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, requestID)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	s.mux.ServeHTTP(rec, r)

	s.logger.Info().
		Str("request_id", requestID).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("duration", time.Since(start)).
		Msg("request")
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("api server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req gateway.ExecuteRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Objective) == "" || strings.TrimSpace(req.Task) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "objective and task are required"})
		return
	}

	resp, err := s.gateway.Execute(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req gateway.GenerateRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Objective) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "objective is required"})
		return
	}

	resp, err := s.gateway.Generate(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if resp.Response == nil {
		resp.Response = []task.Task{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		status = 499
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("gateway call failed")
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
