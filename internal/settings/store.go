// Package settings persists the editor preferences record and resolves
// where on disk it lives.
//
// Two candidate locations exist: the directory beside the executable
// (primary) and a per-user application-data directory (fallback). The
// primary is used while it is writable; when it stops being writable the
// store migrates to the fallback without touching the stale primary file.
// Writes are atomic (temp file, then rename), so the file on disk is always
// either the old or the new complete record.
package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const (
	settingsFileName = "settings.json"

	// legacyFileName was written by pre-1.0 releases. Load absorbs it into
	// settings.json and removes it.
	legacyFileName = "config.json"
)

// SaveOutcome reports where a save actually landed.
type SaveOutcome struct {
	Path     string
	Location LocationKind

	// Migrated is set when the save went to the fallback while a stale
	// settings file still exists at the primary location. The stale file is
	// left in place; the fallback copy is canonical from here on.
	Migrated bool
}

// Store loads and saves the preferences record. A single mutex serializes
// saves against the auto-save timer; call frequency is seconds to minutes,
// so nothing finer is needed.
type Store struct {
	mu  sync.Mutex
	loc *resolver
}

// NewStore resolves the candidate locations for appName and returns a
// ready-to-use store. ErrPathUnresolvable is returned only when neither
// candidate directory exists; the caller may continue with an in-memory
// record and no persistence.
func NewStore(appName string) (*Store, error) {
	return NewStoreWithDirs(executableDir(), userConfigDir(appName))
}

// NewStoreWithDirs builds a store over explicit candidate directories.
// It exists so tests and embedding hosts can point the store at a sandbox.
func NewStoreWithDirs(primaryDir, fallbackDir string) (*Store, error) {
	if primaryDir == "" && fallbackDir == "" {
		return nil, ErrPathUnresolvable
	}
	return &Store{
		loc: &resolver{primaryDir: primaryDir, fallbackDir: fallbackDir},
	}, nil
}

// Candidates returns the primary and fallback settings file paths. The
// fallback path is empty when no per-user directory is resolvable.
func (s *Store) Candidates() (primary, fallback string) {
	if s.loc.primaryDir != "" {
		primary = filepath.Join(s.loc.primaryDir, settingsFileName)
	}
	if s.loc.fallbackDir != "" {
		fallback = filepath.Join(s.loc.fallbackDir, settingsFileName)
	}
	return primary, fallback
}

// PrimaryWritable probes the primary directory. Diagnostic hook.
func (s *Store) PrimaryWritable() bool {
	return dirWritable(s.loc.primaryDir)
}

// ActiveLocation returns the settings file path a save would currently
// target. Diagnostic hook; the result may change between calls when
// directory permissions change.
func (s *Store) ActiveLocation() (string, error) {
	dir, _, err := s.loc.active()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFileName), nil
}

// Load reads the preferences record. The primary file wins over the
// fallback when both exist. A missing file yields Defaults with a nil
// error; an unparseable file yields Defaults with a *CorruptFileError the
// host may surface as a warning. Load never fails outright: the returned
// Record is always usable.
func (s *Store) Load() (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dir := range []string{s.loc.primaryDir, s.loc.fallbackDir} {
		if dir == "" {
			continue
		}
		rec, found, err := readRecord(filepath.Join(dir, settingsFileName))
		if err != nil {
			return Defaults(), err
		}
		if found {
			return rec, nil
		}
	}

	// No settings file anywhere: absorb a legacy config.json if one is
	// left over from an old release.
	for _, dir := range []string{s.loc.primaryDir, s.loc.fallbackDir} {
		if dir == "" {
			continue
		}
		legacyPath := filepath.Join(dir, legacyFileName)
		rec, found, err := readRecord(legacyPath)
		if err != nil || !found {
			continue
		}
		if _, err := s.saveLocked(rec); err == nil {
			if err := os.Remove(legacyPath); err != nil {
				slog.Warn("could not remove legacy settings file", "path", legacyPath, "error", err)
			}
		}
		return rec, nil
	}

	return Defaults(), nil
}

// readRecord parses one candidate file. found is false when the file does
// not exist; err is a *CorruptFileError when it exists but cannot be parsed.
func readRecord(path string) (rec Record, found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("could not read settings file, skipping", "path", path, "error", err)
		}
		return Record{}, false, nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Record{}, true, &CorruptFileError{Path: path, Err: err}
	}
	return decodeRecord(m), true, nil
}

// Save re-resolves the active location (permissions may have changed since
// load), then writes the record atomically. If a primary write fails despite
// the probe having just succeeded, the fallback is retried once before a
// *WriteFailedError is surfaced. Failures never disturb the in-memory
// record or any existing file.
func (s *Store) Save(r Record) (SaveOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(r)
}

func (s *Store) saveLocked(r Record) (SaveOutcome, error) {
	dir, kind, err := s.loc.resolve()
	if err != nil {
		return SaveOutcome{}, fmt.Errorf("resolving settings location: %w", err)
	}

	data, err := json.MarshalIndent(encodeRecord(r.normalized()), "", "  ")
	if err != nil {
		return SaveOutcome{}, fmt.Errorf("encoding settings: %w", err)
	}

	if werr := writeFileAtomic(filepath.Join(dir, settingsFileName), data); werr != nil {
		// The probe succeeded moments ago, so this is a race with a
		// permission change (or the disk filled). Retry on the fallback.
		if kind == LocationPrimary && s.loc.fallbackDir != "" && s.loc.fallbackDir != dir {
			if err := os.MkdirAll(s.loc.fallbackDir, 0o700); err != nil {
				return SaveOutcome{}, &WriteFailedError{PrimaryErr: werr, FallbackErr: err}
			}
			if err := writeFileAtomic(filepath.Join(s.loc.fallbackDir, settingsFileName), data); err != nil {
				return SaveOutcome{}, &WriteFailedError{PrimaryErr: werr, FallbackErr: err}
			}
			dir, kind = s.loc.fallbackDir, LocationFallback
		} else {
			return SaveOutcome{}, &WriteFailedError{
				PrimaryErr:  fmt.Errorf("primary location %s not writable", s.loc.primaryDir),
				FallbackErr: werr,
			}
		}
	}

	outcome := SaveOutcome{
		Path:     filepath.Join(dir, settingsFileName),
		Location: kind,
	}
	if kind == LocationFallback && s.loc.primaryDir != "" {
		outcome.Migrated = fileExists(filepath.Join(s.loc.primaryDir, settingsFileName))
	}
	return outcome, nil
}

// writeFileAtomic writes data to a uniquely named temp file in the target's
// directory, then renames it over the target. An interrupted write leaves
// the previous target intact.
func writeFileAtomic(target string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(target), ".settings-"+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
