package settings

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
)

// keySpec binds one flat settings key to a Record field. aliases are key
// names written by earlier releases; they are read but never written back.
type keySpec struct {
	key     string
	typ     keyType
	aliases []string
	apply   func(r *Record, v any)
	extract func(r Record) any
}

var specs = []keySpec{
	{
		key: "last_file", typ: kString, aliases: []string{"last_opened_file"},
		apply:   func(r *Record, v any) { r.LastFile = v.(string) },
		extract: func(r Record) any { return r.LastFile },
	},
	{
		key: "font_family", typ: kString,
		apply:   func(r *Record, v any) { r.FontFamily = v.(string) },
		extract: func(r Record) any { return r.FontFamily },
	},
	{
		key: "font_size", typ: kInt,
		apply: func(r *Record, v any) {
			if s := v.(int); s > 0 {
				r.FontSize = s
			}
		},
		extract: func(r Record) any { return r.FontSize },
	},
	{
		key: "word_wrap", typ: kBool,
		apply:   func(r *Record, v any) { r.WordWrap = v.(bool) },
		extract: func(r Record) any { return r.WordWrap },
	},
	{
		key: "window_width", typ: kInt,
		apply: func(r *Record, v any) {
			if w := v.(int); w >= minWindowWidth {
				r.WindowWidth = w
			}
		},
		extract: func(r Record) any { return r.WindowWidth },
	},
	{
		key: "window_height", typ: kInt,
		apply: func(r *Record, v any) {
			if h := v.(int); h >= minWindowHeight {
				r.WindowHeight = h
			}
		},
		extract: func(r Record) any { return r.WindowHeight },
	},
	{
		key: "window_maximized", typ: kBool,
		apply:   func(r *Record, v any) { r.WindowMaximized = v.(bool) },
		extract: func(r Record) any { return r.WindowMaximized },
	},
	{
		key: "autosave_interval_minutes", typ: kInt, aliases: []string{"autosave_interval"},
		apply:   func(r *Record, v any) { r.AutoSaveMinutes = clampAutoSave(v.(int)) },
		extract: func(r Record) any { return r.AutoSaveMinutes },
	},
	{
		key: "last_directory", typ: kString, aliases: []string{"default_directory"},
		apply:   func(r *Record, v any) { r.LastDirectory = v.(string) },
		extract: func(r Record) any { return r.LastDirectory },
	},
}

// decodeRecord maps a parsed settings object onto a Record. Missing keys keep
// their defaults; present-but-malformed values warn and keep their defaults.
// It never fails as a whole.
func decodeRecord(data map[string]any) Record {
	r := Defaults()

	// Old releases nested the geometry under "window_size".
	if size, ok := data["window_size"].(map[string]any); ok {
		if _, flat := data["window_width"]; !flat {
			if w, ok := asInt(size["width"]); ok && w >= minWindowWidth {
				r.WindowWidth = w
			}
		}
		if _, flat := data["window_height"]; !flat {
			if h, ok := asInt(size["height"]); ok && h >= minWindowHeight {
				r.WindowHeight = h
			}
		}
	}

	for _, s := range specs {
		raw, ok := data[s.key]
		if !ok {
			for _, alias := range s.aliases {
				if raw, ok = data[alias]; ok {
					break
				}
			}
		}
		if !ok {
			continue
		}
		switch s.typ {
		case kString:
			if v, ok := asString(raw); ok {
				s.apply(&r, v)
			} else {
				slog.Warn("malformed settings key, using default", "key", s.key, "value", raw)
			}
		case kInt:
			if v, ok := asInt(raw); ok {
				s.apply(&r, v)
			} else {
				slog.Warn("malformed settings key, using default", "key", s.key, "value", raw)
			}
		case kBool:
			if v, ok := asBool(raw); ok {
				s.apply(&r, v)
			} else {
				slog.Warn("malformed settings key, using default", "key", s.key, "value", raw)
			}
		}
	}
	return r
}

// encodeRecord produces the flat object written to disk. Every recognized
// key is present so the file documents itself.
func encodeRecord(r Record) map[string]any {
	out := make(map[string]any, len(specs))
	for _, s := range specs {
		out[s.key] = s.extract(r)
	}
	return out
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asInt accepts JSON numbers and stringly-typed integers; old files written
// by hand contain both.
func asInt(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) || val < math.MinInt || val > math.MaxInt {
			return 0, false
		}
		return int(val), true
	case int:
		return val, true
	case string:
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func asBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return false, false
		}
		return b, true
	default:
		return false, false
	}
}

// KeyInfo describes a settings key for display purposes.
type KeyInfo struct {
	Key   string
	Value string
}

// ShowAll returns every key/value pair of the record, sorted by key.
func ShowAll(r Record) []KeyInfo {
	var result []KeyInfo
	for _, s := range specs {
		result = append(result, KeyInfo{
			Key:   s.key,
			Value: fmt.Sprintf("%v", s.extract(r)),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// GetKey returns the current value of a single key.
func GetKey(r Record, key string) (string, error) {
	for _, s := range specs {
		if s.key == key {
			return fmt.Sprintf("%v", s.extract(r)), nil
		}
	}
	return "", fmt.Errorf("unknown settings key: %q (valid keys: %v)", key, ValidKeys())
}

// SetKey parses value according to the key's type and applies it to r.
// Unknown keys and unparseable values are rejected; out-of-set auto-save
// intervals are rejected rather than silently clamped, since the caller
// typed the value deliberately.
func SetKey(r *Record, key, value string) error {
	for _, s := range specs {
		if s.key != key {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(r, value)
			return nil
		case kInt:
			i, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid integer value for %s: %w", key, err)
			}
			if key == "autosave_interval_minutes" && clampAutoSave(i) != i {
				return fmt.Errorf("invalid auto-save interval %d: must be one of %v", i, allowedAutoSave)
			}
			s.apply(r, i)
			return nil
		case kBool:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid boolean value for %s: %w", key, err)
			}
			s.apply(r, b)
			return nil
		}
	}
	return fmt.Errorf("unknown settings key: %q (valid keys: %v)", key, ValidKeys())
}

// ValidKeys returns the recognized settings key names, sorted.
func ValidKeys() []string {
	keys := make([]string, 0, len(specs))
	for _, s := range specs {
		keys = append(keys, s.key)
	}
	sort.Strings(keys)
	return keys
}
