package settings

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an atomic replace produces.
var watchDebounce = 200 * time.Millisecond

// Watch delivers a freshly loaded Record whenever the active settings file
// changes on disk, so externally edited settings take effect without a
// restart. The watcher observes the containing directory because editors
// and the store itself replace the file by rename. It stops when ctx is
// done; the returned channel is then closed.
func (s *Store) Watch(ctx context.Context) (<-chan Record, error) {
	dir, _, err := s.loc.active()
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	ch := make(chan Record, 1)
	go func() {
		defer close(ch)
		defer w.Close()
		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != settingsFileName {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				pending = time.After(watchDebounce)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("settings watcher error", "error", err)
			case <-pending:
				pending = nil
				rec, err := s.Load()
				if err != nil {
					// Corrupt mid-edit file: the record is defaulted and
					// still deliverable.
					slog.Warn("reloading changed settings", "error", err)
				}
				// Keep only the newest record when the consumer is behind.
				select {
				case ch <- rec:
				default:
					select {
					case <-ch:
					default:
					}
					select {
					case ch <- rec:
					default:
					}
				}
			}
		}
	}()
	return ch, nil
}
