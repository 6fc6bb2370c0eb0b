// Package httpadapter exposes certificate submission, status and document
// retrieval over HTTP.
package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"certforge/internal/domain"
	"certforge/internal/logger"
	"certforge/internal/ports"
	"certforge/internal/workers/composerunner"
)

const (
	maxBodyBytes       = 10 << 20
	defaultWaitTimeout = 30
	maxWaitTimeout     = 300
	settlePoll         = 200 * time.Millisecond
)

type Server struct {
	certs     ports.Certificates
	reports   ports.Reports
	jobs      ports.JobRepository
	processor composerunner.Processor
	gatherer  prometheus.Gatherer
	log       logger.Logger
}

// New builds the HTTP surface. gatherer backs /metrics and may be nil to omit the route.
func New(certs ports.Certificates, reports ports.Reports, jobs ports.JobRepository, processor composerunner.Processor, gatherer prometheus.Gatherer, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{certs: certs, reports: reports, jobs: jobs, processor: processor, gatherer: gatherer, log: log}
}

// Routes returns the router serving every endpoint.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/healthz", s.healthz)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/certificates", func(r chi.Router) {
		r.Post("/", s.submit)
		r.Get("/{id}", s.status)
		r.Get("/{id}/document", s.document)
		r.Get("/{id}/quality", s.quality)
	})
	return r
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("HTTP request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Duration("elapsed", time.Since(start)),
			logger.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type acceptedResponse struct {
	CertificateID string `json:"certificateId"`
}

type statusResponse struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	Progress     float64    `json:"progress"`
	QualityScore *int       `json:"qualityScore,omitempty"`
	FileName     *string    `json:"fileName,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
}

type qualityResponse struct {
	CertificateID  string                `json:"certificateId"`
	FileName       string                `json:"fileName"`
	Pages          int                   `json:"pages"`
	Metrics        domain.QualityMetrics `json:"metrics"`
	CriticalIssues []string              `json:"criticalIssues"`
	Warnings       []string              `json:"warnings"`
	ComposedAt     time.Time             `json:"composedAt"`
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	var sub domain.Submission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}
	wait, timeout, err := waitParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.certs.Submit(r.Context(), sub)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !wait {
		writeJSON(w, http.StatusAccepted, acceptedResponse{CertificateID: id})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()
	err = composerunner.ProcessInline(ctx, s.jobs, s.processor, id)
	if errors.Is(err, composerunner.ErrNotQueued) {
		// A worker owns the job; wait for it instead of composing twice.
		st, err := s.awaitSettled(ctx, id)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			writeJSON(w, http.StatusAccepted, acceptedResponse{CertificateID: id})
		case err != nil:
			s.fail(w, err)
		default:
			writeJSON(w, http.StatusOK, toStatus(st))
		}
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	st, err := s.certs.Status(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatus(st))
}

// awaitSettled polls the certificate until it completes, fails or ctx ends.
func (s *Server) awaitSettled(ctx context.Context, id string) (domain.CertificateStatus, error) {
	ticker := time.NewTicker(settlePoll)
	defer ticker.Stop()
	for {
		st, err := s.certs.Status(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return st, ctxErr
			}
			return st, err
		}
		if st.Settled() {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ticker.C:
		}
	}
}

func waitParams(r *http.Request) (bool, time.Duration, error) {
	q := r.URL.Query()
	wait := false
	if v := q.Get("wait"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, 0, fmt.Errorf("wait: %w", err)
		}
		wait = b
	}
	secs := defaultWaitTimeout
	if v := q.Get("timeout"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return false, 0, errors.New("timeout: must be a positive number of seconds")
		}
		secs = min(n, maxWaitTimeout)
	}
	return wait, time.Duration(secs) * time.Second, nil
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	st, err := s.certs.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatus(st))
}

func (s *Server) document(w http.ResponseWriter, r *http.Request) {
	a, err := s.reports.Document(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Content)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.FileName}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Content)
}

func (s *Server) quality(w http.ResponseWriter, r *http.Request) {
	a, err := s.reports.Quality(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, qualityResponse{
		CertificateID:  a.CertificateID,
		FileName:       a.FileName,
		Pages:          a.Pages,
		Metrics:        a.Metrics,
		CriticalIssues: orEmpty(a.CriticalIssues),
		Warnings:       orEmpty(a.Warnings),
		ComposedAt:     a.CreatedAt,
	})
}

func toStatus(st domain.CertificateStatus) statusResponse {
	return statusResponse{
		ID:           st.ID,
		Status:       st.Status,
		Progress:     st.Progress,
		QualityScore: st.QualityScore,
		FileName:     st.FileName,
		CreatedAt:    st.CreatedAt,
		FinishedAt:   st.FinishedAt,
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "composition timed out")
	default:
		s.log.Error("Request failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
