package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/teammaker/internal/domain"
	"github.com/kailas-cloud/teammaker/internal/domain/strategy"
	logpkg "github.com/kailas-cloud/teammaker/internal/logger"
	"github.com/kailas-cloud/teammaker/internal/transport/api"
	generateuc "github.com/kailas-cloud/teammaker/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/teammaker/internal/usecase/health"
	searchuc "github.com/kailas-cloud/teammaker/internal/usecase/search"
	tableuc "github.com/kailas-cloud/teammaker/internal/usecase/table"
)

// DefaultMaxUploadBytes bounds request bodies when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

// statusClientClosedRequest reports a request abandoned by its client.
const statusClientClosedRequest = 499

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the team generation HTTP API.
type Server struct {
	tables        *tableuc.Service
	generate      *generateuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	validate      *validator.Validate
	maxBodyBytes  int64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. maxBodyBytes <= 0 uses DefaultMaxUploadBytes.
func NewServer(
	tables *tableuc.Service,
	generate *generateuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	maxBodyBytes int64,
	logger *zap.Logger,
) *Server {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxUploadBytes
	}
	s := &Server{
		tables:       tables,
		generate:     generate,
		search:       search,
		health:       health,
		validate:     newValidator(),
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		payloadTooLargeHandler,
		sentinelHandler(domain.ErrTableNotFound, http.StatusNotFound, api.KindTableNotFound),
		sentinelHandler(domain.ErrMalformedInput, http.StatusBadRequest, api.KindMalformedInput),
		sentinelHandler(domain.ErrEncoding, http.StatusBadRequest, api.KindEncoding),
		sentinelHandler(domain.ErrUnknownColumn, http.StatusBadRequest, api.KindUnknownColumn),
		sentinelHandler(domain.ErrInvalidWeight, http.StatusBadRequest, api.KindInvalidWeight),
		sentinelHandler(domain.ErrMissingCategory, http.StatusBadRequest, api.KindMissingCategory),
		sentinelHandler(domain.ErrDuplicateCategory, http.StatusBadRequest, api.KindDuplicateCategory),
		sentinelHandler(domain.ErrInvalidTeamCount, http.StatusBadRequest, api.KindInvalidTeamCount),
		sentinelHandler(domain.ErrInvalidTrialBudget, http.StatusBadRequest, api.KindInvalidTrialBudget),
		sentinelHandler(domain.ErrUnknownStrategy, http.StatusBadRequest, api.KindUnknownStrategy),
		validationHandler,
		contextHandler,
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/upload", s.Upload)
	r.Post("/generate", s.Generate)
	r.Post("/search", s.Search)
	r.Get("/tables/{tableID}", s.GetTable)
	r.Delete("/tables/{tableID}", s.DeleteTable)
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
}

// Upload handles POST /upload.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	opts, err := bindUploadParams(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	data, err := readUpload(http.MaxBytesReader(w, r.Body, s.maxBodyBytes), r.Header.Get("Content-Type"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	info, err := s.tables.Upload(r.Context(), data, opts)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.NewTableResponse(info.ID, info.Header, info.Rows))
}

// Generate handles POST /generate.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	id, err := parseTableID(req.TableID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.generate.Generate(r.Context(), generateuc.Request{
		TableID:    id,
		Teams:      req.NumTeams,
		Strategy:   strategy.Strategy(req.Strategy),
		Categories: categorySpecs(req.Categories),
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.NewGenerateResponse(res.Partition, res.Table))
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req api.SearchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	id, err := parseTableID(req.TableID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	out, err := s.search.Search(r.Context(), searchuc.Request{
		TableID:    id,
		Teams:      req.NumTeams,
		Strategy:   strategy.Strategy(req.Strategy),
		Categories: categorySpecs(req.Categories),
		Target:     req.TargetCategoryIndex,
		Budget:     req.TrialBudget,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.NewSearchResponse(out.Result, out.Table, out.Target))
}

// GetTable handles GET /tables/{tableID}.
func (s *Server) GetTable(w http.ResponseWriter, r *http.Request) {
	id, err := bindTableID(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	info, err := s.tables.Describe(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.NewTableResponse(info.ID, info.Header, info.Rows))
}

// DeleteTable handles DELETE /tables/{tableID}.
func (s *Server) DeleteTable(w http.ResponseWriter, r *http.Request) {
	id, err := bindTableID(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if err := s.tables.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
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

	writeJSON(w, httpStatus, api.HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// decode reads a size-limited JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return mbe
		}
		if errors.Is(err, io.EOF) {
			return invalidf("request body is empty")
		}
		return invalidf("invalid request body: %v", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return invalidf("%s", describeValidation(err))
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind api.ErrorKind, message string) {
	writeJSON(w, status, api.ErrorResponse{
		Kind:    kind,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, kind api.ErrorKind) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, kind, msg)
		return true
	}
}

func payloadTooLargeHandler(w http.ResponseWriter, err error, _ string) bool {
	var mbe *http.MaxBytesError
	if !errors.As(err, &mbe) {
		return false
	}
	writeError(w, http.StatusRequestEntityTooLarge, api.KindPayloadTooLarge,
		fmt.Sprintf("request body exceeds %d bytes", mbe.Limit))
	return true
}

func validationHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, errInvalidRequest) {
		return false
	}
	writeError(w, http.StatusBadRequest, api.KindValidation, msg)
	return true
}

func contextHandler(w http.ResponseWriter, err error, _ string) bool {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, api.KindTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		writeError(w, statusClientClosedRequest, api.KindCanceled, "request canceled")
	default:
		return false
	}
	return true
}

// handleDomainError maps err onto an error response. Engine errors carry
// caller-facing detail, so their full message is returned.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	msg := err.Error()
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("request rejected", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, api.KindInternal, "internal error")
}
