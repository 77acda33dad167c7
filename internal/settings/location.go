package settings

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// LocationKind says which of the two candidate locations a path refers to.
type LocationKind string

const (
	// LocationPrimary is the directory containing the running executable.
	LocationPrimary LocationKind = "primary"
	// LocationFallback is the per-user application-data directory.
	LocationFallback LocationKind = "fallback"
)

// executableDir returns the directory of the running binary, falling back to
// the working directory when the executable path cannot be determined.
func executableDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// userConfigDir returns the per-user application-data directory for appName:
//
//   - Windows: %LOCALAPPDATA%\<AppName>
//   - macOS:   ~/Library/Application Support/<AppName>
//   - else:    $XDG_CONFIG_HOME/<AppName>, defaulting to ~/.config/<AppName>
//
// The empty string means no per-user directory is resolvable (no home).
func userConfigDir(appName string) string {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return ""
			}
			base = filepath.Join(home, "AppData", "Local")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return ""
			}
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, appName)
}

// dirWritable probes dir with a create-and-delete marker file. The probe
// leaves no residue and reports false instead of failing when the directory
// is missing, read-only, or otherwise unwritable.
func dirWritable(dir string) bool {
	if dir == "" {
		return false
	}
	marker := filepath.Join(dir, ".write-probe-"+uuid.NewString())
	if err := os.WriteFile(marker, nil, 0o600); err != nil {
		return false
	}
	// Best effort; a failed remove still means the directory is writable.
	_ = os.Remove(marker)
	return true
}

type resolved struct {
	dir  string
	kind LocationKind
}

// resolver picks the active settings directory. The result is cached for
// diagnostics but recomputed on demand, since installation permissions can
// change while the app runs (e.g. the app gets moved into a protected
// folder between sessions).
type resolver struct {
	primaryDir  string
	fallbackDir string

	group singleflight.Group

	mu   sync.Mutex
	last *resolved
}

// resolve re-probes and returns the active directory. Concurrent callers
// (interactive save racing the auto-save timer) share one probe.
func (l *resolver) resolve() (string, LocationKind, error) {
	v, err, _ := l.group.Do("active", func() (any, error) {
		r, err := l.probe()
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.last = &r
		l.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return "", "", err
	}
	r := v.(resolved)
	return r.dir, r.kind, nil
}

// active returns the cached resolution, computing it on first use.
func (l *resolver) active() (string, LocationKind, error) {
	l.mu.Lock()
	last := l.last
	l.mu.Unlock()
	if last != nil {
		return last.dir, last.kind, nil
	}
	return l.resolve()
}

func (l *resolver) probe() (resolved, error) {
	if dirWritable(l.primaryDir) {
		return resolved{dir: l.primaryDir, kind: LocationPrimary}, nil
	}
	if l.fallbackDir == "" {
		return resolved{}, ErrPathUnresolvable
	}
	if err := os.MkdirAll(l.fallbackDir, 0o700); err != nil {
		return resolved{}, ErrPathUnresolvable
	}
	if !dirWritable(l.fallbackDir) {
		return resolved{}, ErrPathUnresolvable
	}
	return resolved{dir: l.fallbackDir, kind: LocationFallback}, nil
}
