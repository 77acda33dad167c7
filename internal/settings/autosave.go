package settings

import (
	"context"
	"log/slog"
	"time"
)

// AutoSaver flushes the host's in-memory record on a fixed interval. The
// host restarts it when the user picks a different interval, mirroring the
// auto-save menu. Saves go through Store.Save and therefore serialize with
// manual saves on the store mutex.
type AutoSaver struct {
	store    *Store
	current  func() Record
	interval time.Duration
}

// NewAutoSaver returns a flusher saving current() every minutes minutes.
// Out-of-set intervals fall back to the default; 0 disables auto-save.
func NewAutoSaver(store *Store, minutes int, current func() Record) *AutoSaver {
	return &AutoSaver{
		store:    store,
		current:  current,
		interval: time.Duration(clampAutoSave(minutes)) * time.Minute,
	}
}

// Run blocks until ctx is done, saving on each tick. Failed saves are
// logged and retried on the next tick; they never stop the loop. Returns
// immediately when auto-save is disabled.
func (a *AutoSaver) Run(ctx context.Context) {
	if a.interval <= 0 {
		return
	}
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.store.Save(a.current()); err != nil {
				slog.Warn("auto-save failed, keeping in-memory settings", "error", err)
			}
		}
	}
}
