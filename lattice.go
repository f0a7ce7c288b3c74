package lattice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/internal/metrics"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/autosave"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/geometry"
	"github.com/aretw0/lattice/pkg/index"
	"github.com/aretw0/lattice/pkg/ports"
)

// Settings are the numeric knobs of the editor core. They have no
// environment or CLI surface of their own; hosts load them however they like
// (internal/config reads them from YAML for the bundled commands).
type Settings struct {
	// CellSize is the spatial grid pitch. Keep it on the order of SnapRadius
	// so the 3x3 neighborhood covers the snap disc.
	CellSize float64
	// SnapRadius is the maximum distance at which a pointer snaps to a port.
	SnapRadius float64
	// Debounce is the autosave quiet period.
	Debounce time.Duration
	// Toolbar describes the connection edit toolbar for anchor clamping.
	Toolbar geometry.Toolbar
}

// DefaultSettings returns the values the editor ships with.
func DefaultSettings() Settings {
	return Settings{
		CellSize:   100,
		SnapRadius: 32,
		Debounce:   2 * time.Second,
		Toolbar:    geometry.Toolbar{Width: 120, Height: 36, Margin: 8},
	}
}

// Option configures an Editor.
type Option func(*Editor)

// WithStore sets the persistence backend (default: in-memory).
func WithStore(store ports.WorkflowStore) Option {
	return func(e *Editor) {
		e.store = store
	}
}

// WithLogger sets a structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithPortResolver injects the rendering layer's port layout. Defaults to
// the headless box layout.
func WithPortResolver(resolve domain.PortResolver) Option {
	return func(e *Editor) {
		e.resolver = resolve
	}
}

// WithSettings overrides the default editor settings.
func WithSettings(s Settings) Option {
	return func(e *Editor) {
		e.settings = s
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Editor) {
		e.metrics = m
	}
}

// Editor owns one workflow and every structure derived from it. Mutating
// methods rebuild the lookup and spatial indices and notify the autosave
// coordinator; queries only read. All methods are safe for concurrent use,
// though a browser-style host will typically drive it from one goroutine.
type Editor struct {
	store    ports.WorkflowStore
	resolver domain.PortResolver
	settings Settings
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	wf      *domain.Workflow
	lookup  map[string]domain.Node
	spatial *index.Spatial

	saver *autosave.Coordinator
}

// New creates an Editor for the given workflow (an empty one when nil).
func New(wf *domain.Workflow, opts ...Option) *Editor {
	e := &Editor{
		resolver: geometry.BoxResolver,
		settings: DefaultSettings(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}
	if wf == nil {
		wf = domain.NewWorkflow("", "")
	}
	e.wf = wf
	e.rebuild()

	e.saver = autosave.New(e.snapshot, e.persist, e.settings.Debounce,
		autosave.WithLogger(e.logger))
	return e
}

// snapshot serializes the current workflow for the autosave coordinator.
func (e *Editor) snapshot() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wf.Snapshot()
}

// persist writes the exact snapshot the coordinator took at save time; the
// live workflow may already have moved on.
func (e *Editor) persist(ctx context.Context, snap []byte) error {
	var wf domain.Workflow
	if err := json.Unmarshal(snap, &wf); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	start := time.Now()
	err := e.store.Save(ctx, &wf)
	e.metrics.ObserveSave(time.Since(start).Seconds(), err)
	if err != nil {
		return err
	}
	e.logger.Debug("workflow saved", "workflow", wf.ID, "nodes", len(wf.Nodes))
	return nil
}

// rebuild recomputes the derived indices. Caller must hold e.mu or be the
// constructor.
func (e *Editor) rebuild() {
	start := time.Now()
	e.lookup = index.NodeLookup(e.wf.Nodes)
	e.spatial = index.BuildSpatial(e.wf.Nodes, e.resolver, e.settings.CellSize)
	e.metrics.ObserveRebuild(time.Since(start).Seconds(), e.spatial.Len())
}

// mutate runs fn against the workflow, rebuilds the indices when it
// succeeded, and notifies the autosave coordinator.
func (e *Editor) mutate(fn func(wf *domain.Workflow) error) error {
	e.mu.Lock()
	err := fn(e.wf)
	if err == nil {
		e.rebuild()
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.saver.Observe()
	return nil
}

// Load replaces the editor's workflow with one from the store. The loaded
// state counts as saved: autosave stays quiet until something changes.
func (e *Editor) Load(ctx context.Context, id string) error {
	wf, err := e.store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load workflow %q: %w", id, err)
	}

	e.mu.Lock()
	e.wf = wf
	e.rebuild()
	e.mu.Unlock()

	if err := e.saver.Reset(); err != nil {
		return err
	}
	e.logger.Info("workflow loaded", "workflow", id, "nodes", len(wf.Nodes))
	return nil
}

// AddNode inserts a node into the canvas.
func (e *Editor) AddNode(n domain.Node) error {
	return e.mutate(func(wf *domain.Workflow) error {
		wf.AddNode(n)
		return nil
	})
}

// MoveNode drags a node to a new position.
func (e *Editor) MoveNode(id string, pos domain.Point) error {
	return e.mutate(func(wf *domain.Workflow) error {
		return wf.MoveNode(id, pos)
	})
}

// RemoveNode deletes a node and, by cascade, its connections.
func (e *Editor) RemoveNode(id string) error {
	return e.mutate(func(wf *domain.Workflow) error {
		return wf.RemoveNode(id)
	})
}

// Connect wires an output port to an input port.
func (e *Editor) Connect(from, to domain.PortRef) (domain.Connection, error) {
	var conn domain.Connection
	err := e.mutate(func(wf *domain.Workflow) error {
		var err error
		conn, err = wf.Connect(from, to)
		return err
	})
	return conn, err
}

// Disconnect removes a connection.
func (e *Editor) Disconnect(id string) error {
	return e.mutate(func(wf *domain.Workflow) error {
		return wf.Disconnect(id)
	})
}

// Node retrieves a node through the O(1) lookup index.
func (e *Editor) Node(id string) (domain.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.lookup[id]
	return n, ok
}

// Workflow returns a deep copy of the current state for transport layers.
func (e *Editor) Workflow() *domain.Workflow {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wf.Clone()
}

// NearestPort answers the pointer-snap query: the closest port within the
// configured snap radius, or false when none is near enough.
func (e *Editor) NearestPort(x, y float64) (domain.PortLocation, bool) {
	e.mu.Lock()
	spatial := e.spatial
	e.mu.Unlock()
	return spatial.Nearest(x, y, e.settings.SnapRadius)
}

// ConnectionGeometry computes the render-ready path for a connection.
func (e *Editor) ConnectionGeometry(connID string) (geometry.PathSpec, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, c := range e.wf.Connections {
		if c.ID != connID {
			continue
		}
		src, ok := e.lookup[c.From.NodeID]
		if !ok {
			return geometry.PathSpec{}, fmt.Errorf("connection %q: source %q: %w", connID, c.From.NodeID, domain.ErrNodeNotFound)
		}
		dst, ok := e.lookup[c.To.NodeID]
		if !ok {
			return geometry.PathSpec{}, fmt.Errorf("connection %q: target %q: %w", connID, c.To.NodeID, domain.ErrNodeNotFound)
		}
		from := e.resolver(src, c.From.Port, domain.DirectionOutput)
		to := e.resolver(dst, c.To.Port, domain.DirectionInput)
		return geometry.ConnectionPath(from, to), nil
	}
	return geometry.PathSpec{}, fmt.Errorf("connection %q: %w", connID, domain.ErrConnectionNotFound)
}

// ToolbarAnchor places the connection toolbar: the path midpoint clamped
// into the viewport.
func (e *Editor) ToolbarAnchor(connID string, vp geometry.Viewport) (domain.Point, error) {
	spec, err := e.ConnectionGeometry(connID)
	if err != nil {
		return domain.Point{}, err
	}
	return geometry.ClampToolbarAnchor(spec.Midpoint, vp, e.settings.Toolbar), nil
}

// Flush forces an immediate save, surfacing any failure to the caller.
func (e *Editor) Flush(ctx context.Context) error {
	return e.saver.ForceSave(ctx)
}

// HasUnsavedChanges reports whether the workflow differs from its last
// successfully saved snapshot.
func (e *Editor) HasUnsavedChanges() bool {
	return e.saver.HasUnsavedChanges()
}

// SaveStatus exposes the autosave state machine: idle, pending, or saving.
func (e *Editor) SaveStatus() autosave.Status {
	return e.saver.Status()
}

// LastSaved returns the time of the last successful save.
func (e *Editor) LastSaved() time.Time {
	return e.saver.LastSaved()
}

// SaveErr returns the most recent persistence error, nil after a successful
// save.
func (e *Editor) SaveErr() error {
	return e.saver.Err()
}

// Close tears the editor down. Pending autosave timers become no-ops; an
// in-flight save completes without touching the closed editor.
func (e *Editor) Close() {
	e.saver.Close()
}
