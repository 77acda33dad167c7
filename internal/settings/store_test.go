package settings

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestStore(t *testing.T) (st *Store, primary, fallback string) {
	t.Helper()
	primary = t.TempDir()
	fallback = filepath.Join(t.TempDir(), "Neight")
	st, err := NewStoreWithDirs(primary, fallback)
	if err != nil {
		t.Fatal(err)
	}
	return st, primary, fallback
}

func writeSettingsFile(t *testing.T, dir, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, settingsFileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewStoreWithDirsRequiresACandidate(t *testing.T) {
	if _, err := NewStoreWithDirs("", ""); !errors.Is(err, ErrPathUnresolvable) {
		t.Errorf("err = %v, want ErrPathUnresolvable", err)
	}
}

func TestLoadFreshEnvironment(t *testing.T) {
	st, _, _ := newTestStore(t)

	rec, err := st.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(rec, Defaults()) {
		t.Errorf("fresh load = %+v, want defaults", rec)
	}
}

// End-to-end: defaults out of nothing, one file at primary after a save,
// modified record survives a reload unchanged.
func TestSaveLoadRoundTrip(t *testing.T) {
	st, primary, fallback := newTestStore(t)

	rec := Defaults()
	rec.FontSize = 16
	rec.WordWrap = false
	rec.LastFile = "/tmp/draft.txt"

	outcome, err := st.Save(rec)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if outcome.Location != LocationPrimary {
		t.Errorf("Location = %s, want primary", outcome.Location)
	}
	if outcome.Migrated {
		t.Error("Migrated = true on a plain primary save")
	}
	if want := filepath.Join(primary, settingsFileName); outcome.Path != want {
		t.Errorf("Path = %q, want %q", outcome.Path, want)
	}

	// Exactly one file, no temp residue, nothing at the fallback.
	entries, err := os.ReadDir(primary)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != settingsFileName {
		t.Errorf("primary dir contents = %v, want just %s", entries, settingsFileName)
	}
	if _, err := os.Stat(fallback); !os.IsNotExist(err) {
		t.Error("fallback directory created although primary was writable")
	}

	got, err := st.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("reload mismatch:\n got %+v\nwant %+v", got, rec)
	}
}

func TestLoadPrefersPrimary(t *testing.T) {
	st, primary, fallback := newTestStore(t)
	writeSettingsFile(t, primary, `{"font_size": 20}`)
	writeSettingsFile(t, fallback, `{"font_size": 30}`)

	rec, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if rec.FontSize != 20 {
		t.Errorf("FontSize = %d, want the primary file's 20", rec.FontSize)
	}
}

func TestLoadFallbackWhenPrimaryAbsent(t *testing.T) {
	st, _, fallback := newTestStore(t)
	writeSettingsFile(t, fallback, `{"font_size": 30}`)

	rec, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if rec.FontSize != 30 {
		t.Errorf("FontSize = %d, want 30 from the fallback file", rec.FontSize)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	st, primary, _ := newTestStore(t)
	path := writeSettingsFile(t, primary, `{"font_size": 20`)

	rec, err := st.Load()
	var corrupt *CorruptFileError
	if !errors.As(err, &corrupt) {
		t.Fatalf("err = %v, want *CorruptFileError", err)
	}
	if corrupt.Path != path {
		t.Errorf("CorruptFileError.Path = %q, want %q", corrupt.Path, path)
	}
	if !reflect.DeepEqual(rec, Defaults()) {
		t.Errorf("corrupt load = %+v, want defaults (still usable)", rec)
	}
}

func TestLoadClampsAutoSaveInterval(t *testing.T) {
	st, primary, _ := newTestStore(t)
	writeSettingsFile(t, primary, `{"autosave_interval_minutes": 7}`)

	rec, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if rec.AutoSaveMinutes != 5 {
		t.Errorf("AutoSaveMinutes = %d, want clamped default 5", rec.AutoSaveMinutes)
	}
}

func TestSaveToReadOnlyPrimary(t *testing.T) {
	requireChmod(t)
	st, primary, fallback := newTestStore(t)
	makeReadOnly(t, primary)

	rec := Defaults()
	rec.FontSize = 22
	outcome, err := st.Save(rec)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if outcome.Location != LocationFallback {
		t.Errorf("Location = %s, want fallback", outcome.Location)
	}
	if outcome.Migrated {
		t.Error("Migrated = true without a stale primary file")
	}

	got, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.FontSize != 22 {
		t.Errorf("FontSize = %d, want 22 from %s", got.FontSize, fallback)
	}
}

func TestMigrationLeavesPrimaryFileIntact(t *testing.T) {
	requireChmod(t)
	st, primary, fallback := newTestStore(t)
	stale := `{"font_size": 11}`
	stalePath := writeSettingsFile(t, primary, stale)
	makeReadOnly(t, primary)

	rec := Defaults()
	rec.FontSize = 44
	outcome, err := st.Save(rec)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if outcome.Location != LocationFallback {
		t.Errorf("Location = %s, want fallback", outcome.Location)
	}
	if !outcome.Migrated {
		t.Error("Migrated = false, want true with a stale primary file present")
	}

	data, err := os.ReadFile(stalePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != stale {
		t.Errorf("stale primary file modified:\n got %s\nwant %s", data, stale)
	}
	if _, err := os.Stat(filepath.Join(fallback, settingsFileName)); err != nil {
		t.Errorf("no settings file at fallback: %v", err)
	}

	// Reads still prefer the stale primary copy; documented design choice.
	got, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.FontSize != 11 {
		t.Errorf("FontSize = %d, want 11 from the primary file", got.FontSize)
	}
}

func TestInterruptedWriteLeavesTargetIntact(t *testing.T) {
	st, primary, _ := newTestStore(t)

	rec := Defaults()
	rec.FontFamily = "Fira Code"
	if _, err := st.Save(rec); err != nil {
		t.Fatal(err)
	}

	// A crash between "write temp file" and "rename" leaves a stray temp
	// file with half a record. The target must be unaffected.
	tmp := filepath.Join(primary, ".settings-crashed.tmp")
	if err := os.WriteFile(tmp, []byte(`{"font_family": "Half`), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := st.Load()
	if err != nil {
		t.Fatalf("load after simulated crash: %v", err)
	}
	if got.FontFamily != "Fira Code" {
		t.Errorf("FontFamily = %q, want the previously saved value", got.FontFamily)
	}
}

func TestSaveUnresolvableLocation(t *testing.T) {
	requireChmod(t)
	primary := t.TempDir()
	makeReadOnly(t, primary)
	parent := t.TempDir()
	makeReadOnly(t, parent)
	st, err := NewStoreWithDirs(primary, filepath.Join(parent, "Neight"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := st.Save(Defaults()); !errors.Is(err, ErrPathUnresolvable) {
		t.Errorf("err = %v, want ErrPathUnresolvable", err)
	}
}

func TestLegacyConfigMigration(t *testing.T) {
	st, primary, _ := newTestStore(t)
	legacyPath := filepath.Join(primary, legacyFileName)
	legacy := `{"last_opened_file": "/old/notes.txt", "autosave_interval": 2}`
	if err := os.WriteFile(legacyPath, []byte(legacy), 0o600); err != nil {
		t.Fatal(err)
	}

	rec, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if rec.LastFile != "/old/notes.txt" {
		t.Errorf("LastFile = %q", rec.LastFile)
	}
	if rec.AutoSaveMinutes != 2 {
		t.Errorf("AutoSaveMinutes = %d, want 2", rec.AutoSaveMinutes)
	}

	if _, err := os.Stat(legacyPath); !os.IsNotExist(err) {
		t.Error("legacy config.json still present after migration")
	}
	if _, err := os.Stat(filepath.Join(primary, settingsFileName)); err != nil {
		t.Errorf("settings.json not written during migration: %v", err)
	}

	got, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("post-migration load mismatch:\n got %+v\nwant %+v", got, rec)
	}
}

func TestSavedFileIsFlatJSON(t *testing.T) {
	st, primary, _ := newTestStore(t)
	if _, err := st.Save(Defaults()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(primary, settingsFileName))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("saved file is not a JSON object: %v", err)
	}
	for _, key := range ValidKeys() {
		if _, ok := m[key]; !ok {
			t.Errorf("saved file missing key %q", key)
		}
	}
}

func TestCandidatesAndActiveLocation(t *testing.T) {
	st, primary, fallback := newTestStore(t)

	p, f := st.Candidates()
	if p != filepath.Join(primary, settingsFileName) {
		t.Errorf("primary candidate = %q", p)
	}
	if f != filepath.Join(fallback, settingsFileName) {
		t.Errorf("fallback candidate = %q", f)
	}

	active, err := st.ActiveLocation()
	if err != nil {
		t.Fatal(err)
	}
	if active != p {
		t.Errorf("ActiveLocation = %q, want primary %q", active, p)
	}
	if !st.PrimaryWritable() {
		t.Error("PrimaryWritable = false for a temp dir")
	}
}
