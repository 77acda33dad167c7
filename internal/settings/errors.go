package settings

import (
	"errors"
	"fmt"
)

// ErrPathUnresolvable means neither the primary nor the fallback settings
// directory can be written or created. Persistence is unavailable, but the
// host keeps running with its in-memory record.
var ErrPathUnresolvable = errors.New("no writable settings location")

// CorruptFileError reports a settings file that exists but cannot be parsed.
// Load recovers by returning defaults; the error is returned alongside the
// usable record so the host can surface a warning.
type CorruptFileError struct {
	Path string
	Err  error
}

func (e *CorruptFileError) Error() string {
	return fmt.Sprintf("corrupt settings file %s: %v", e.Path, e.Err)
}

func (e *CorruptFileError) Unwrap() error { return e.Err }

// WriteFailedError means both the primary write and the fallback retry
// failed. The in-memory record is unaffected.
type WriteFailedError struct {
	PrimaryErr  error
	FallbackErr error
}

func (e *WriteFailedError) Error() string {
	return fmt.Sprintf("settings write failed: primary: %v; fallback: %v", e.PrimaryErr, e.FallbackErr)
}

func (e *WriteFailedError) Unwrap() error { return e.FallbackErr }
