package settings

// Documented defaults. A record loaded from an empty or absent file is
// exactly Defaults().
const (
	DefaultFontFamily      = "Consolas"
	DefaultFontSize        = 12
	DefaultWindowWidth     = 1000
	DefaultWindowHeight    = 650
	DefaultAutoSaveMinutes = 5

	minWindowWidth  = 300
	minWindowHeight = 200
)

// allowedAutoSave are the auto-save intervals the UI offers, in minutes.
// 0 means the auto-save timer is disabled.
var allowedAutoSave = []int{0, 2, 5, 15, 30}

// Record holds the editor preferences persisted across sessions. It is a
// plain value: copying it is cheap and mutation never touches disk until
// Store.Save is called.
type Record struct {
	LastFile        string
	FontFamily      string
	FontSize        int
	WordWrap        bool
	WindowWidth     int
	WindowHeight    int
	WindowMaximized bool
	AutoSaveMinutes int
	LastDirectory   string
}

// Defaults returns the record used when no settings file exists.
func Defaults() Record {
	return Record{
		FontFamily:      DefaultFontFamily,
		FontSize:        DefaultFontSize,
		WordWrap:        true,
		WindowWidth:     DefaultWindowWidth,
		WindowHeight:    DefaultWindowHeight,
		AutoSaveMinutes: DefaultAutoSaveMinutes,
	}
}

// clampAutoSave maps any value outside the allowed interval set to the
// default. The set itself (including 0 = disabled) passes through.
func clampAutoSave(minutes int) int {
	for _, m := range allowedAutoSave {
		if minutes == m {
			return minutes
		}
	}
	return DefaultAutoSaveMinutes
}

// normalized returns a copy with every field forced into its valid domain.
// Save runs records through this so the file never holds values Load would
// have to repair.
func (r Record) normalized() Record {
	if r.FontFamily == "" {
		r.FontFamily = DefaultFontFamily
	}
	if r.FontSize <= 0 {
		r.FontSize = DefaultFontSize
	}
	if r.WindowWidth < minWindowWidth {
		r.WindowWidth = DefaultWindowWidth
	}
	if r.WindowHeight < minWindowHeight {
		r.WindowHeight = DefaultWindowHeight
	}
	r.AutoSaveMinutes = clampAutoSave(r.AutoSaveMinutes)
	return r
}
