package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/facetlayout/pkg/buildinfo"
	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	fio "github.com/matzehuels/facetlayout/pkg/io"
	"github.com/matzehuels/facetlayout/pkg/pipeline"
	"github.com/matzehuels/facetlayout/pkg/render"
)

// layoutResponse is the body of POST /v1/layout.
type layoutResponse struct {
	RunID     string      `json:"run_id"`
	InputHash string      `json:"input_hash"`
	Cached    bool        `json:"cached"`
	Warning   string      `json:"warning,omitempty"`
	Stats     statsBody   `json:"stats"`
	Layout    *fio.Layout `json:"layout"`
}

type statsBody struct {
	Classifiers   int   `json:"classifiers"`
	Features      int   `json:"features"`
	Relationships int   `json:"relationships"`
	Drawn         int   `json:"drawn"`
	Dropped       int   `json:"dropped"`
	LayoutMillis  int64 `json:"layout_ms"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleLayout routes the posted document and responds with its layout.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Formats = nil

	result, ok := s.execute(w, r, opts)
	if !ok {
		return
	}

	resp := layoutResponse{
		RunID:     result.RunID,
		InputHash: result.InputHash,
		Cached:    result.CacheInfo.LayoutHit,
		Layout:    result.Layout,
		Stats: statsBody{
			Classifiers:   result.Stats.Classifiers,
			Features:      result.Stats.Features,
			Relationships: result.Stats.Relationships,
			Drawn:         result.Stats.Drawn,
			Dropped:       result.Stats.Dropped,
			LayoutMillis:  result.Stats.LayoutTime.Milliseconds(),
		},
	}
	if result.Warning != nil {
		resp.Warning = apperrors.UserMessage(result.Warning)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRender routes the posted document and responds with the drawing.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := render.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := s.options(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	result, ok := s.execute(w, r, opts)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", render.ContentType(format))
	w.Header().Set("X-Run-ID", result.RunID)
	if result.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// execute reads the request body and runs the pipeline. It writes the error
// response itself and reports false on failure.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, opts pipeline.Options) (*pipeline.Result, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if len(body) == 0 {
		writeError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "empty request body"))
		return nil, false
	}

	opts.Logger = s.logger.With("request", RequestID(r.Context()))
	result, err := s.runner.Execute(r.Context(), body, opts)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return result, true
}

// options applies query parameters on top of the server defaults.
func (s *Server) options(q url.Values) (pipeline.Options, error) {
	opts := s.defaults
	opts.Formats = append([]string(nil), s.defaults.Formats...)

	if q.Has("variant") {
		opts.Variant = q.Get("variant")
	}
	if q.Has("renderer") {
		opts.Renderer = q.Get("renderer")
	}
	if v := q.Get("padding"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p < 0 {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid padding: %q", v)
		}
		opts.Render.Padding = p
	}
	for name, dst := range map[string]*bool{
		"show_implicit": &opts.Render.ShowImplicit,
		"refresh":       &opts.Refresh,
	} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid %s: %q", name, v)
			}
			*dst = b
		}
	}
	return opts, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// isBodyTooLarge reports whether err comes from the body size limit.
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
