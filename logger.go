package pixcodec

import (
	"log/slog"

	"github.com/woozymasta/pixcodec/internal/logging"
)

// SetLogger configures the logger shared by pixcodec and its codec packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Levels used:
//   - [slog.LevelDebug]: decode summaries (format, size, strategy)
//   - [slog.LevelWarn]: approximations such as PSD blend modes or short DDS mip chains
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger {
	return logging.Logger()
}
