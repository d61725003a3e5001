package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/seenimoa/notegraph/internal/document"
	"github.com/seenimoa/notegraph/internal/graph"
	"github.com/seenimoa/notegraph/internal/output"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, plugins := s.snapshot()
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":     "ok",
			"version":    Version,
			"plugins":    len(plugins.List()),
			"ws_clients": s.wsHub.ClientCount(),
		},
	})
}

// handleRender expands every marker in the posted text.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	resp, err := s.expand(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

// expand runs one render request and records its marker outcomes.
func (s *Server) expand(req RenderRequest) (RenderResponse, error) {
	t, _ := s.snapshot()

	var (
		resp RenderResponse
		err  error
	)
	if req.HTML {
		resp.Output, resp.Stats, err = document.ExpandFragment(strings.NewReader(req.Text), t)
		if err != nil {
			return RenderResponse{}, err
		}
	} else {
		resp.Output, resp.Stats = t.Expand(req.Text)
	}

	s.metrics.ObserveStats(resp.Stats)
	log.WithFields(log.Fields{
		"markers":  resp.Markers,
		"rendered": resp.Rendered,
		"dropped":  resp.Dropped,
	}).Debug("expanded text")
	return resp, nil
}

// handleChart renders a single chart from query parameters:
// data (marker payload), title, grid and, for png, scale.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	format, err := output.Normalize(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, gen := s.chartState()
	opts := t.Options()

	q := r.URL.Query()
	grid := opts.GridEnabled
	if v := q.Get("grid"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "grid must be a boolean")
			return
		}
		grid = b
	}

	params := output.Params{Scale: 1}
	if v := q.Get("scale"); v != "" {
		params.Scale, err = strconv.ParseFloat(v, 64)
		if err == nil {
			err = output.CheckScale(params.Scale)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid scale: "+err.Error())
			return
		}
	}

	key := fmt.Sprintf("%d|%s|%q|%t|%g|%q", gen, format, q.Get("data"), grid, params.Scale, q.Get("title"))
	body, hit := s.charts.Get(key)
	if !hit {
		spec, err := graph.NewChart(q.Get("data"), q.Get("title"), grid)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		var buf bytes.Buffer
		if err := output.Write(&buf, format, spec, opts, params); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, graph.ErrNoData) {
				status = http.StatusUnprocessableEntity
			}
			writeError(w, status, err.Error())
			return
		}
		body = buf.Bytes()
		s.charts.Set(key, body)
	}

	s.metrics.ObserveChart(format)
	if format == output.XLSX {
		w.Header().Set("Content-Disposition", `attachment; filename="chart.xlsx"`)
	}
	w.Header().Set("Content-Type", output.ContentType(format))
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck
}

func (s *Server) handlePlugins(w http.ResponseWriter, r *http.Request) {
	_, plugins := s.snapshot()
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    plugins.List(),
	})
}
