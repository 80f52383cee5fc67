package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/tablelayout/pkg/buildinfo"
	"github.com/matzehuels/tablelayout/pkg/errors"
	"github.com/matzehuels/tablelayout/pkg/pipeline"
	"github.com/matzehuels/tablelayout/pkg/program"
	"github.com/matzehuels/tablelayout/pkg/render/layout"
	"github.com/matzehuels/tablelayout/pkg/store"
)

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// =============================================================================
// Impose
// =============================================================================

// imposeRequest carries either a JSON document or document source text.
type imposeRequest struct {
	Document     json.RawMessage  `json:"document,omitempty"`
	Source       string           `json:"source,omitempty"`
	SourceFormat string           `json:"source_format,omitempty"` // toml (default), json or lua
	Options      pipeline.Options `json:"options"`
}

type imposeResponse struct {
	ProgramHash string            `json:"program_hash"`
	Layout      layout.Layout     `json:"layout"`
	Artifacts   map[string][]byte `json:"artifacts"`
	Cache       cacheInfo         `json:"cache"`
	Stats       statsInfo         `json:"stats"`
}

type cacheInfo struct {
	LayoutHit bool `json:"layout_hit"`
	RenderHit bool `json:"render_hit"`
}

type statsInfo struct {
	Cells    int     `json:"cells"`
	Boxes    int     `json:"boxes"`
	LayoutMS float64 `json:"layout_ms"`
	RenderMS float64 `json:"render_ms"`
}

func (s *Server) handleImpose(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req imposeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	var doc *program.Document
	switch {
	case len(req.Document) > 0 && req.Source != "":
		err = errors.New(errors.ErrCodeInvalidInput, "give either document or source, not both")
	case len(req.Document) > 0:
		doc, err = pipeline.Load(r.Context(), req.Document, program.FormatJSON)
	case req.Source != "":
		format := req.SourceFormat
		if format == "" {
			format = program.FormatTOML
		}
		doc, err = pipeline.Load(r.Context(), []byte(req.Source), format)
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "document or source is required")
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), doc, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imposeResponse{
		ProgramHash: res.ProgramHash,
		Layout:      res.Layout,
		Artifacts:   res.Artifacts,
		Cache:       cacheInfo{LayoutHit: res.CacheInfo.LayoutHit, RenderHit: res.CacheInfo.RenderHit},
		Stats: statsInfo{
			Cells:    res.Stats.CellCount,
			Boxes:    res.Stats.BoxCount,
			LayoutMS: ms(res.Stats.LayoutTime),
			RenderMS: ms(res.Stats.RenderTime),
		},
	})
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// =============================================================================
// Programs
// =============================================================================

type programSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Hash      string    `json:"hash"`
	Cells     int       `json:"cells"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]programSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, programSummary{
			ID:        rec.ID,
			Name:      rec.Document.Name,
			Hash:      rec.Hash,
			Cells:     rec.Document.CellCount(),
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"programs": out})
}

func (s *Server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.store.Put(r.Context(), store.NewID(), doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/programs/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePutProgram(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.store.Put(r.Context(), chi.URLParam(r, "id"), doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteProgram(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProgramLayout imposes a stored document. Without a format query
// parameter it returns the layout as JSON; otherwise the rendered artifact.
func (s *Server) handleProgramLayout(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, format, err := layoutOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("X-Program-Hash", rec.Hash)
	if format == "" {
		l, hit, err := s.runner.GenerateLayoutWithCacheInfo(r.Context(), rec.Document, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("X-Cache", cacheHeader(hit))
		writeJSON(w, http.StatusOK, l)
		return
	}

	opts.Formats = []string{format}
	res, err := s.runner.Execute(r.Context(), rec.Document, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("X-Cache", cacheHeader(res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// layoutOptions reads pipeline options from the query string.
func layoutOptions(r *http.Request) (pipeline.Options, string, error) {
	q := r.URL.Query()
	var opts pipeline.Options
	var err error

	floats := []struct {
		name string
		dst  *float64
	}{{"width", &opts.Width}, {"height", &opts.Height}, {"scale", &opts.Scale}}
	for _, f := range floats {
		if v := q.Get(f.name); v != "" {
			if *f.dst, err = strconv.ParseFloat(v, 64); err != nil {
				return opts, "", errors.New(errors.ErrCodeInvalidInput, "%s: not a number: %q", f.name, v)
			}
		}
	}

	bools := []struct {
		name string
		dst  *bool
	}{{"slots", &opts.Slots}, {"grid", &opts.Grid}, {"refresh", &opts.Refresh}}
	for _, b := range bools {
		if v := q.Get(b.name); v != "" {
			if *b.dst, err = strconv.ParseBool(v); err != nil {
				return opts, "", errors.New(errors.ErrCodeInvalidInput, "%s: not a boolean: %q", b.name, v)
			}
		}
	}
	if v := q.Get("labels"); v != "" {
		labels, err := strconv.ParseBool(v)
		if err != nil {
			return opts, "", errors.New(errors.ErrCodeInvalidInput, "labels: not a boolean: %q", v)
		}
		opts.NoLabels = !labels
	}

	format := q.Get("format")
	if format != "" {
		if err := pipeline.ValidateFormat(format); err != nil {
			return opts, "", err
		}
	}
	return opts, format, nil
}

// =============================================================================
// Request bodies
// =============================================================================

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return data, nil
}

// readDocument decodes a document body; the Content-Type selects the
// format and defaults to JSON.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*program.Document, error) {
	body, err := s.readBody(w, r)
	if err != nil {
		return nil, err
	}
	return pipeline.Load(r.Context(), body, documentFormat(r.Header.Get("Content-Type")))
}

func documentFormat(contentType string) string {
	mt, _, _ := mime.ParseMediaType(contentType)
	switch mt {
	case "application/toml", "text/toml":
		return program.FormatTOML
	case "text/x-lua", "application/x-lua", "text/lua":
		return program.FormatLua
	}
	return program.FormatJSON
}
