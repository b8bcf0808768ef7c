// Package chi exposes the gateway's HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/madhava-cloud/gateway/internal/domain"
	healthuc "github.com/madhava-cloud/gateway/internal/usecase/health"
)

// maxAlertLimit caps the page size of the alert history endpoint.
const maxAlertLimit = 500

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	query         QueryService
	chat          ChatService
	health        HealthService
	alerts        AlertHistory
	snapshots     SnapshotReader
	stream        AlertStream
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	query QueryService,
	chat ChatService,
	health HealthService,
	alerts AlertHistory,
	snapshots SnapshotReader,
	stream AlertStream,
	logger *zap.Logger,
) *Server {
	s := &Server{
		query:     query,
		chat:      chat,
		health:    health,
		alerts:    alerts,
		snapshots: snapshots,
		stream:    stream,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidDomain, http.StatusBadRequest, "invalid_domain"),
		sentinelHandler(domain.ErrMissingQuery, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrMissingPrompt, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrGenerationFailed, http.StatusBadGateway, "llm_unavailable"),
		sentinelHandler(domain.ErrEmbeddingFailed, http.StatusBadGateway, "llm_unavailable"),
	}
	return s
}

// Register mounts all API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.Root)
	r.Get("/healthz", s.Healthz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Post("/query", s.Query)
	r.Post("/chat", s.Chat)
	r.Get("/status", s.Status)
	r.Get("/metrics/{domain}", s.DomainMetrics)
	r.Get("/alerts", s.Alerts)
	r.Get("/ws/alerts", s.AlertsStream)
}

type queryRequest struct {
	Query   string         `json:"query"`
	Domain  string         `json:"domain"`
	UserID  string         `json:"user_id"`
	Filters map[string]any `json:"filters"`
}

// Query handles POST /query: the full pipeline for one question.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	resp, err := s.query.Process(r.Context(), domain.Query{
		Text:    req.Query,
		Domain:  domain.Domain(req.Domain),
		UserID:  req.UserID,
		Filters: req.Filters,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type chatRequest struct {
	Prompt string `json:"prompt"`
}

type chatResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// Chat handles POST /chat: direct generation without retrieval.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if req.Prompt == "" {
		s.handleDomainError(w, domain.ErrMissingPrompt)
		return
	}

	answer, err := s.chat.GenerateResponse(r.Context(), req.Prompt, nil, "")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  answer,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type statusResponse struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Timestamp string            `json:"timestamp"`
}

// Status handles GET /status: aggregated component health.
func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	services := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		services[name] = string(result)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, statusResponse{
		Status:    string(report.Status),
		Services:  services,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type domainMetricsResponse struct {
	Domain    string            `json:"domain"`
	Metrics   domain.MetricsBag `json:"metrics"`
	Timestamp string            `json:"timestamp"`
}

// DomainMetrics handles GET /metrics/{domain}: the latest extracted snapshot.
func (s *Server) DomainMetrics(w http.ResponseWriter, r *http.Request) {
	d, err := domain.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	bag, err := s.snapshots.Get(r.Context(), d)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainMetricsResponse{
		Domain:    string(d),
		Metrics:   bag,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type alertsResponse struct {
	Alerts []domain.Alert `json:"alerts"`
	Count  int            `json:"count"`
}

// Alerts handles GET /alerts: the alert history, newest first. Supports
// domain, severity, and limit query parameters.
func (s *Server) Alerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if d := q.Get("domain"); d != "" {
		if _, err := domain.ParseDomain(d); err != nil {
			s.handleDomainError(w, err)
			return
		}
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxAlertLimit {
			writeError(w, http.StatusBadRequest, "validation_failed",
				"limit must be between 1 and "+strconv.Itoa(maxAlertLimit))
			return
		}
		limit = n
	}

	alerts, err := s.alerts.History(r.Context(), q.Get("domain"), q.Get("severity"), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, alertsResponse{Alerts: alerts, Count: len(alerts)})
}

// Root handles GET /: a bare banner confirming the gateway is up.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "M.A.D.H.A.V.A Gateway is running",
	})
}

// Healthz handles GET /healthz: a bare liveness probe.
func (s *Server) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// serverErrorResponse is the body for unexpected internal failures. Unlike
// client errors it carries a timestamp, so callers can correlate with logs.
type serverErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// WriteServerError emits the 5xx body shape. Exported for the composition
// root's panic recoverer, which must produce the same shape.
func WriteServerError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, serverErrorResponse{
		Error:     errCode,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidDomain,
		domain.ErrMissingQuery,
		domain.ErrMissingPrompt,
		domain.ErrGenerationFailed,
		domain.ErrEmbeddingFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	WriteServerError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
