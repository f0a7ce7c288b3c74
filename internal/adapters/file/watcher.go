package file

import (
	"context"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// Watch emits the ID of every workflow whose file changes on disk, so a host
// can pick up edits made outside the editor (sync tools, other instances).
// The channel closes when ctx is cancelled. Temp files from atomic saves are
// filtered out.
func (s *Store) Watch(ctx context.Context, logger *slog.Logger) (<-chan string, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(s.BasePath); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				name := filepath.Base(event.Name)
				if !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, "tmp-") {
					continue
				}
				id := strings.TrimSuffix(name, ".json")
				select {
				case out <- id:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("workflow watcher error", "err", err)
			}
		}
	}()
	return out, nil
}
