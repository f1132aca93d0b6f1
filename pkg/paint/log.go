package paint

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// loggerPtr stores the active logger. Trees are single threaded but several
// trees may log from different goroutines.
var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// SetLogger configures the logger used by the layer tree. By default the
// package produces no log output. Pass nil to restore the silent default.
//
// Log levels used:
//   - Debug: stacking list rebuilds, compositing updates, layer destruction
//   - Warn: recoverable oddities such as non-invertible transforms met
//     during hit testing
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
}

// Logger returns the logger currently used by the package.
func Logger() *zap.Logger {
	return loggerPtr.Load()
}

func logger() *zap.Logger {
	return loggerPtr.Load()
}
