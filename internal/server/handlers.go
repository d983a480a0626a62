package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/fractalview/pkg/buildinfo"
	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/fractal"
	"github.com/matzehuels/fractalview/pkg/view"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req := defaultRender(s.cfg)
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := req.options()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Logger = loggerFrom(r.Context())

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "image/png")
	h.Set("Content-Length", strconv.Itoa(len(res.PNG)))
	if res.CacheInfo.RenderHit {
		h.Set("X-Cache", "hit")
	} else {
		h.Set("X-Cache", "miss")
		for v, f := range res.InsideFraction {
			h.Set("X-Inside-"+v.String(), strconv.FormatFloat(f, 'f', 6, 64))
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.PNG)
}

func (s *Server) handleDimension(w http.ResponseWriter, r *http.Request) {
	req := defaultDimension(s.cfg)
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := req.options()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Logger = loggerFrom(r.Context())

	res, err := s.runner.Dimension(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.CacheHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	writeJSON(w, http.StatusOK, res)
}

// trackResponse is the orbit of one point.
type trackResponse struct {
	Variant fractal.Variant `json:"variant"`
	Count   int             `json:"count"`
	Inside  bool            `json:"inside"`
	Orbit   []cplx.Number   `json:"orbit"`
}

// handleTrack answers GET /api/track?point=…&variant=…&c=…&z_start=…
// &power=…&iterations=…&include_start=….
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := s.cfg.Params()

	point, err := cplx.Parse(q.Get("point"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if v := q.Get("variant"); v != "" {
		if p.Variant, err = fractal.ParseVariant(v); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "variant"))
			return
		}
	}
	var c, zStart cplx.Number
	for _, f := range []struct {
		name string
		dst  *cplx.Number
	}{{"c", &c}, {"z_start", &zStart}} {
		if raw := q.Get(f.name); raw != "" {
			if *f.dst, err = cplx.Parse(raw); err != nil {
				s.writeError(w, r, err)
				return
			}
		}
	}
	if raw := q.Get("power"); raw != "" {
		if p.Power, err = strconv.ParseFloat(raw, 64); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "power"))
			return
		}
	}
	if raw := q.Get("iterations"); raw != "" {
		if p.MaxIterations, err = strconv.Atoi(raw); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "iterations"))
			return
		}
	}
	includeStart := q.Get("include_start") == "true"
	if err := p.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	if p.Variant == fractal.Julia {
		zStart = point
	} else {
		c = point
	}
	count, _ := fractal.IteratePoint(zStart, c, p.Power, p.MaxIterations)
	writeJSON(w, http.StatusOK, trackResponse{
		Variant: p.Variant,
		Count:   count,
		Inside:  count >= p.MaxIterations,
		Orbit:   fractal.Track(zStart, c, p.Power, p.MaxIterations, includeStart),
	})
}

// =============================================================================
// Saved views
// =============================================================================

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	views, err := s.views.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if views == nil {
		views = []*view.View{}
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleLoadView(w http.ResponseWriter, r *http.Request) {
	v, err := s.views.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleSaveView stores the records of the body under the path name. The
// name, ID and timestamps in the body are ignored.
func (s *Server) handleSaveView(w http.ResponseWriter, r *http.Request) {
	var body view.View
	if err := decode(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := view.New(chi.URLParam(r, "name"), body.Records)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.views.Save(r.Context(), v); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	if err := s.views.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
