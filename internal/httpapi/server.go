package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/calltime/callboard/internal/callboard/service"
	"github.com/calltime/callboard/internal/callboard/types"
)

// maxRequestBody caps the POST body size. A fully marked-up call list of
// a few hundred records encodes to well under 100 KiB of JSON, so 1 MiB
// is generous.
const maxRequestBody = 1 << 20

type Dependencies struct {
	Logger        *log.Logger
	Addr          string
	StatusService *service.StatusService
	Metrics       *Metrics // optional
	WriteToken    string   // optional; when set, POST /status requires it
}

type Server struct {
	httpServer    *http.Server
	logger        *log.Logger
	mux           *http.ServeMux
	statusService *service.StatusService
	metrics       *Metrics
	writeToken    string
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:        d.Logger,
		mux:           mux,
		statusService: d.StatusService,
		metrics:       d.Metrics,
		writeToken:    d.WriteToken,
	}

	// Browser clients hardcode /status, so both operations live on the
	// one path and the handler dispatches on method itself — the mux's
	// built-in 405 would answer with a plain-text body instead of the
	// JSON error shape clients expect.
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	var handler http.Handler = mux
	if d.Metrics != nil {
		handler = metricsMiddleware(d.Metrics, handler)
	}
	handler = loggingMiddleware(d.Logger, handler)
	handler = requestIDMiddleware(handler)
	handler = corsMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleFetch(w, r)
	case http.MethodPost:
		s.handleReplace(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	doc, degraded := s.statusService.Fetch(r.Context(), clientInfo(r))
	if degraded && s.metrics != nil {
		s.metrics.degradedFetches.Inc()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "invalid or missing write token")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	items, err := s.statusService.Replace(r.Context(), clientInfo(r), body)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPayload) {
			writeError(w, http.StatusBadRequest, "request body must be valid non-null JSON")
			return
		}
		s.logger.Printf("replace error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save call status")
		return
	}

	if s.metrics != nil {
		s.metrics.savedItems.Add(float64(items))
	}

	writeJSON(w, http.StatusOK, types.ReplaceResponse{
		Success: true,
		Message: "call status saved",
		Items:   items,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// authorized checks the shared write token when one is configured.
// Without a token the write path is open, matching the legacy report
// page which sends no credentials.
func (s *Server) authorized(r *http.Request) bool {
	if s.writeToken == "" {
		return true
	}
	tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(tok), []byte(s.writeToken)) == 1
}

func clientInfo(r *http.Request) service.Client {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return service.Client{RemoteAddr: host, RequestID: requestID(r.Context())}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, types.ErrorResponse{Error: message})
}
