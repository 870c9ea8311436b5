package above

import (
	"sync"

	"go.uber.org/zap"

	"github.com/a3st/ABOVE/adapter"
	"github.com/a3st/ABOVE/bridge"
	"github.com/a3st/ABOVE/devtools"
	"github.com/a3st/ABOVE/gojaengine"
	"github.com/a3st/ABOVE/window"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the root package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures logging for this package and every subpackage.
// This must be called before any app operations.
func SetLogger(l *zap.Logger) {
	logger = l
	adapter.SetLogger(l.Named("adapter"))
	bridge.SetLogger(l.Named("bridge"))
	devtools.SetLogger(l.Named("devtools"))
	gojaengine.SetLogger(l.Named("gojaengine"))
	window.SetLogger(l.Named("window"))
}
