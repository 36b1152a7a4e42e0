package godb

import "go.uber.org/zap"

// logger is the package-wide structured logger. It defaults to a no-op
// logger so importing this package never prints anything unless the host
// program opts in via SetLogger.
var logger *zap.Logger = zap.NewNop()

// SetLogger installs l as the package-wide logger used by the buffer pool
// to report page faults, flushes, and aborted transactions. Passing nil
// restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}
