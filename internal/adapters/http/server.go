package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/internal/metrics"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/geometry"
	"github.com/aretw0/lattice/pkg/index"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes workflow persistence and the derived canvas queries over
// JSON/HTTP. It is stateless: every request loads from the store, so multiple
// frontends can share one backend.
type Server struct {
	store    ports.WorkflowStore
	resolver domain.PortResolver
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithPortResolver overrides the box layout used for geometry endpoints.
func WithPortResolver(resolve domain.PortResolver) Option {
	return func(s *Server) {
		s.resolver = resolve
	}
}

// WithMetrics enables Prometheus instrumentation of saves and index builds.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewHandler builds the HTTP handler. The gatherer serves /metrics; pass nil
// to disable the endpoint.
func NewHandler(store ports.WorkflowStore, gatherer prometheus.Gatherer, opts ...Option) http.Handler {
	s := &Server{
		store:    store,
		resolver: geometry.BoxResolver,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/workflows", func(r chi.Router) {
		r.Get("/", s.list)
		r.Get("/{id}", s.get)
		r.Put("/{id}", s.put)
		r.Delete("/{id}", s.delete)
		r.Get("/{id}/geometry", s.geometry)
		r.Get("/{id}/ports/nearest", s.nearestPort)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (*domain.Workflow, bool) {
	id := chi.URLParam(r, "id")
	wf, err := s.store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			s.writeError(w, http.StatusNotFound, err)
		} else {
			s.logger.Error("workflow load failed", "workflow", id, "error", err)
			s.writeError(w, http.StatusInternalServerError, err)
		}
		return nil, false
	}
	return wf, true
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"workflows": ids})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.load(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, wf)
}

func (s *Server) put(w http.ResponseWriter, r *http.Request) {
	var wf domain.Workflow
	if err := json.NewDecoder(r.Body).Decode(&wf); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	wf.ID = chi.URLParam(r, "id")

	if err := wf.Validate(); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	start := time.Now()
	err := s.store.Save(r.Context(), &wf)
	s.metrics.ObserveSave(time.Since(start).Seconds(), err)
	if err != nil {
		s.logger.Error("workflow save failed", "workflow", wf.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// connectionGeometry is the wire shape of one rendered connection.
type connectionGeometry struct {
	ConnectionID   string       `json:"connection_id"`
	Path           string       `json:"path"`
	Midpoint       domain.Point `json:"midpoint"`
	ControlFrom    domain.Point `json:"control_from"`
	ControlTo      domain.Point `json:"control_to"`
	HitStrokeWidth float64      `json:"hit_stroke_width"`
}

func (s *Server) geometry(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.load(w, r)
	if !ok {
		return
	}

	lookup := index.NodeLookup(wf.Nodes)
	out := make([]connectionGeometry, 0, len(wf.Connections))
	for _, c := range wf.Connections {
		src, okSrc := lookup[c.From.NodeID]
		dst, okDst := lookup[c.To.NodeID]
		if !okSrc || !okDst {
			// Dangling references are a validation failure, not a render failure.
			continue
		}
		spec := geometry.ConnectionPath(
			s.resolver(src, c.From.Port, domain.DirectionOutput),
			s.resolver(dst, c.To.Port, domain.DirectionInput),
		)
		out = append(out, connectionGeometry{
			ConnectionID:   c.ID,
			Path:           spec.Path,
			Midpoint:       spec.Midpoint,
			ControlFrom:    spec.ControlFrom,
			ControlTo:      spec.ControlTo,
			HitStrokeWidth: geometry.HitStrokeWidth,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"connections": out})
}

func (s *Server) nearestPort(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.load(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("x and y query parameters are required numbers"))
		return
	}
	radius := index.DefaultCellSize / 2.0
	if raw := q.Get("radius"); raw != "" {
		var err error
		if radius, err = strconv.ParseFloat(raw, 64); err != nil {
			s.writeError(w, http.StatusBadRequest, errors.New("radius must be a number"))
			return
		}
	}

	cell := radius
	if cell < 1 {
		cell = 1
	}
	start := time.Now()
	idx := index.BuildSpatial(wf.Nodes, s.resolver, cell)
	s.metrics.ObserveRebuild(time.Since(start).Seconds(), idx.Len())
	loc, found := idx.Nearest(x, y, radius)
	if !found {
		s.writeJSON(w, http.StatusOK, map[string]any{"found": false})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"found": true,
		"port": map[string]any{
			"node":      loc.NodeID,
			"port":      loc.Port,
			"direction": loc.Direction,
			"x":         loc.X,
			"y":         loc.Y,
		},
	})
}
