package zapbridge

import (
	"errors"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/logctx"
)

// TraceLevel is the zap level records below FINE are written at.
// Value: -2 (Debug is -1, Info is 0)
const TraceLevel = zapcore.Level(-2)

// ZapLevel maps a logctx severity onto the zap level a bridged record is
// written at.
func ZapLevel(l *logctx.Level) zapcore.Level {
	switch v := l.Value(); {
	case v >= logctx.FatalLevel.Value():
		return zapcore.FatalLevel
	case v >= logctx.SevereLevel.Value():
		return zapcore.ErrorLevel
	case v >= logctx.WarningLevel.Value():
		return zapcore.WarnLevel
	case v >= logctx.InfoLevel.Value():
		return zapcore.InfoLevel
	case v >= logctx.FineLevel.Value():
		return zapcore.DebugLevel
	default:
		return TraceLevel
	}
}

// CoreHandler publishes records to a zapcore.Core.
type CoreHandler struct {
	core zapcore.Core
}

// NewCoreHandler wraps a zap core as a logctx handler.
func NewCoreHandler(core zapcore.Core) *CoreHandler {
	return &CoreHandler{core: core}
}

// NewZapHandler publishes records through an existing zap logger's core. The
// logger's own options (sampling, constant fields) apply; its exit hooks do
// not, because records are written to the core directly.
func NewZapHandler(logger *zap.Logger) *CoreHandler {
	return &CoreHandler{core: logger.Core()}
}

// Core returns the wrapped core.
func (h *CoreHandler) Core() zapcore.Core { return h.core }

func (h *CoreHandler) Publish(r *logctx.Record) error {
	entry := zapcore.Entry{
		Level:      ZapLevel(r.Level),
		Time:       r.Time,
		LoggerName: r.LoggerName,
		Message:    r.Message,
	}
	if !h.core.Enabled(entry.Level) {
		return nil
	}
	return h.core.Write(entry, r.Fields)
}

// Close flushes the core. Sync errors against stdout and stderr are ignored;
// on Linux those descriptors report EINVAL or ENOTTY.
func (h *CoreHandler) Close() error {
	err := h.core.Sync()
	if err != nil && isStdoutSyncError(err) {
		return nil
	}
	return err
}

func isStdoutSyncError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EINVAL || errno == syscall.ENOTTY
	}
	return false
}
