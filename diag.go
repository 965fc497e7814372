package dyntable

import "log/slog"

var diagLog *slog.Logger

// SetDiagnostics installs a logger that receives suppressed resolution
// failures (tag attribute misses, ordering fields that could not be
// resolved). The default is nil: failures stay silent and render
// output is unaffected either way. Install once at startup.
func SetDiagnostics(l *slog.Logger) { diagLog = l }

func diag(msg string, args ...any) {
	if diagLog != nil {
		diagLog.Debug(msg, args...)
	}
}
