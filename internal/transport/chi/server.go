package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
	logpkg "github.com/kailas-cloud/beliefgraph/internal/logger"
	healthuc "github.com/kailas-cloud/beliefgraph/internal/usecase/health"
	narrativeuc "github.com/kailas-cloud/beliefgraph/internal/usecase/narrative"
	resolveuc "github.com/kailas-cloud/beliefgraph/internal/usecase/resolve"
	sessionuc "github.com/kailas-cloud/beliefgraph/internal/usecase/session"
)

const (
	maxBodyBytes    = 1 << 20
	maxTopN         = 50
	defaultSimilarK = 10
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves resolver sessions over JSON.
type Server struct {
	resolve       *resolveuc.Service
	sessions      *sessionuc.Registry
	narrative     *narrativeuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	resolve *resolveuc.Service,
	sessions *sessionuc.Registry,
	narrative *narrativeuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		resolve:   resolve,
		sessions:  sessions,
		narrative: narrative,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, ErrorCodeSessionNotFound),
		sentinelHandler(domain.ErrUnknownNode, http.StatusNotFound, ErrorCodeConceptNotFound),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
	}
	return s
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", s.CreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Delete("/", s.DeleteSession)
			r.Post("/resolve", s.Resolve)
			r.Post("/reset", s.ResetSession)
			r.Get("/seen", s.SeenConcepts)
		})
		r.Get("/concepts/{name}/similar", s.SimilarConcepts)
		r.Post("/narrative/context", s.NarrativeContext)
	})
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	w.Header().Set("Location", "/api/v1/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt.UTC(),
		State:     string(sess.Resolver.State()),
	})
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Resolve handles POST /sessions/{id}/resolve. A query without any match
// is a 200 with empty suggestions.
func (s *Server) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TopN < 0 || req.TopN > maxTopN {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			fmt.Sprintf("topn must be between 0 and %d", maxTopN))
		return
	}

	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res := sess.Resolver.Resolve(req.Query, req.TopN)
	logpkg.FromContext(r.Context()).Debug("Query resolved",
		zap.String("session_id", id),
		zap.String("central", res.Central),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("suggestions", len(res.Suggestions)),
	)
	writeJSON(w, http.StatusOK, resolveToResponse(res))
}

// ResetSession handles POST /sessions/{id}/reset.
func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	sess.Resolver.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// SeenConcepts handles GET /sessions/{id}/seen.
func (s *Server) SeenConcepts(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seenResponse{
		State: string(sess.Resolver.State()),
		Seen:  sess.Resolver.Seen(),
	})
}

// SimilarConcepts handles GET /concepts/{name}/similar?k=.
func (s *Server) SimilarConcepts(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "malformed concept name")
		return
	}
	k := defaultSimilarK
	if raw := r.URL.Query().Get("k"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "k must be an integer")
			return
		}
		k = v
	}

	neighbors, err := s.resolve.Similar(name, k)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, similarToResponse(name, neighbors))
}

// pathParam returns a decoded URL parameter. chi routes on RawPath when the
// request carries escapes such as %2F, and then hands back the raw segment.
func pathParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return "", fmt.Errorf("unescape %s: %w", key, err)
	}
	return decoded, nil
}

// NarrativeContext handles POST /narrative/context.
func (s *Server) NarrativeContext(w http.ResponseWriter, r *http.Request) {
	var req narrativeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	brief, err := s.narrative.Compose(req.Concepts, req.Summary)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, briefToResponse(brief))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message. Validation errors carry
// their detail; everything else is reduced to its sentinel.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrUnknownNode,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
