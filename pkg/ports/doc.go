// Package ports defines the boundary interfaces of the editor core. The
// editor is agnostic to how workflows are persisted; adapters under
// pkg/adapters and internal/adapters satisfy these interfaces.
package ports
