package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyOutput     = "output"
	KeySection    = "section"
	KeyFolder     = "folder"
	KeyPattern    = "pattern"
	KeyItem       = "item"
	KeyKind       = "kind"
	KeyCount      = "count"
	KeyReason     = "reason"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Folder(f string) slog.Attr       { return slog.String(KeyFolder, f) }
func Pattern(p string) slog.Attr      { return slog.String(KeyPattern, p) }
func Item(name string) slog.Attr      { return slog.String(KeyItem, name) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Reason(r string) slog.Attr       { return slog.String(KeyReason, r) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
