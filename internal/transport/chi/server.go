package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookclub/internal/domain"
	healthuc "github.com/kailas-cloud/bookclub/internal/usecase/health"
)

// maxBodyBytes caps the answer request body.
const maxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the bookclub HTTP API.
type Server struct {
	answers       Answerer
	catalog       Catalog
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(answers Answerer, catalog Catalog, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		answers: answers,
		catalog: catalog,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		unknownModelHandler,
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeValidation),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingBackend),
		sentinelHandler(domain.ErrRetrievalBackend, http.StatusBadGateway, codeRetrieval),
		sentinelHandler(domain.ErrGenerationFailed, http.StatusBadGateway, codeGeneration),
	}
	return s
}

// Answer handles POST /api/v1/answer.
func (s *Server) Answer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	rec, err := s.answers.Answer(ctx, req.toUsecase())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, NewAnswerResponse(rec))
}

// ListCategories handles GET /api/v1/categories.
func (s *Server) ListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: s.catalog.Categories()})
}

// ListAuthors handles GET /api/v1/categories/{category}/authors.
func (s *Server) ListAuthors(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "category")

	authors, err := s.catalog.Authors(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if authors == nil {
		authors = []string{}
	}

	writeJSON(w, http.StatusOK, AuthorsResponse{Category: name, Authors: authors, Count: len(authors)})
}

// ListModels handles GET /api/v1/models.
func (s *Server) ListModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, modelsToResponse(s.catalog.Models()))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// NotFound answers unknown routes with a JSON error.
func (s *Server) NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, codeNotFound, "route not found")
}

// MethodNotAllowed answers known routes called with the wrong method.
func (s *Server) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrUnknownModel,
		domain.ErrNotFound,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
		domain.ErrRetrievalBackend,
		domain.ErrGenerationFailed,
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

// unknownModelHandler names the rejected model: the id came from the caller, so echoing it leaks nothing.
func unknownModelHandler(w http.ResponseWriter, err error, _ string) bool {
	var ume *domain.UnknownModelError
	if errors.As(err, &ume) {
		writeError(w, http.StatusBadRequest, codeUnknownModel, ume.Error())
		return true
	}
	if errors.Is(err, domain.ErrUnknownModel) {
		writeError(w, http.StatusBadRequest, codeUnknownModel, domain.ErrUnknownModel.Error())
		return true
	}
	return false
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
