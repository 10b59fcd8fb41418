package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/matzehuels/netvis/pkg/errors"
	"github.com/matzehuels/netvis/pkg/pipeline"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: s.cfg.Version})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	data, opts, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	opts.Formats = []string{pipeline.FormatJSON}

	res, err := s.cfg.Runner.Execute(r.Context(), data, opts)
	if err != nil {
		s.respondPipelineError(w, r, err)
		return
	}
	writeArtifact(w, res, pipeline.FormatJSON)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		respondError(w, r, http.StatusBadRequest, string(apperrors.GetCode(err)), apperrors.UserMessage(err))
		return
	}

	data, opts, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	opts.Formats = []string{format}

	res, err := s.cfg.Runner.Execute(r.Context(), data, opts)
	if err != nil {
		s.respondPipelineError(w, r, err)
		return
	}
	writeArtifact(w, res, format)
}

// readRequest reads the save from the body and builds the options from the
// server defaults plus query overrides. On failure it has already responded.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) ([]byte, pipeline.Options, bool) {
	opts := s.cfg.Options
	opts.Logger = s.cfg.Runner.Logger
	if err := applyQuery(&opts, r.URL.Query()); err != nil {
		respondError(w, r, http.StatusBadRequest, string(apperrors.GetCode(err)), apperrors.UserMessage(err))
		return nil, opts, false
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "", "request body too large")
			return nil, opts, false
		}
		respondError(w, r, http.StatusBadRequest, string(apperrors.ErrCodeInvalidInput), "read body: "+err.Error())
		return nil, opts, false
	}
	if len(data) == 0 {
		respondError(w, r, http.StatusBadRequest, string(apperrors.ErrCodeInvalidInput), "request body must contain a save")
		return nil, opts, false
	}
	return data, opts, true
}

// applyQuery overrides opts from query parameters.
func applyQuery(opts *pipeline.Options, q url.Values) error {
	floats := []struct {
		name string
		dst  *float64
	}{
		{"root_ring", &opts.Layout.RootRing},
		{"child_radius", &opts.Layout.ChildRadius},
		{"shrink", &opts.Layout.Shrink},
		{"min_radius", &opts.Layout.MinRadius},
	}
	for _, f := range floats {
		if v := q.Get(f.name); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return apperrors.New(apperrors.ErrCodeInvalidInput, "%s must be a number, got %q", f.name, v)
			}
			*f.dst = n
		}
	}
	if v := q.Get("seed_step"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "seed_step must be an integer, got %q", v)
		}
		opts.Layout.SeedStep = n
	}
	if v := q.Get("background"); v != "" {
		opts.Background = v
	}
	bools := []struct {
		name string
		dst  *bool
	}{
		{"hide_labels", &opts.HideLabels},
		{"refresh", &opts.Refresh},
	}
	for _, b := range bools {
		if v := q.Get(b.name); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return apperrors.New(apperrors.ErrCodeInvalidInput, "%s must be a boolean, got %q", b.name, v)
			}
			*b.dst = parsed
		}
	}
	return nil
}

func writeArtifact(w http.ResponseWriter, res *pipeline.Result, format string) {
	cacheStatus := "miss"
	if res.CacheInfo.LayoutHit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("X-Cache", cacheStatus)
	w.Header().Set("X-Layout-Hash", res.LayoutHash)
	w.Header().Set("X-Warnings", strconv.Itoa(res.Stats.Warnings))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// respondPipelineError maps coded errors to HTTP statuses.
func (s *Server) respondPipelineError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeParse, apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidConfig, apperrors.ErrCodeUnsupported:
		status = http.StatusBadRequest
	}

	msg := apperrors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.cfg.Logger.Error("pipeline failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
		msg = "internal error"
		code = apperrors.ErrCodeInternal
	}
	respondError(w, r, status, string(code), msg)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Code:      code,
		Message:   message,
		RequestID: RequestIDFromContext(r.Context()),
	})
}
