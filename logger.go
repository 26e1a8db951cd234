package logctx

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// Logger is a handle onto one named node of a context. Handles are cheap
// and interchangeable: every Logger returned for a name sees the same
// state, so storing one and requesting one on demand are equivalent.
type Logger struct {
	node *LoggerNode
}

// Name returns the dot-separated logger name. The root logger's name is "".
func (l *Logger) Name() string { return l.node.fullName }

// LogContext returns the context this logger belongs to.
func (l *Logger) LogContext() *Context { return l.node.ctx }

// GetLevel returns the explicitly configured level, or nil while the logger
// inherits from its parent.
func (l *Logger) GetLevel() *Level { return l.node.level.Load() }

// GetEffectiveLevel returns the numeric severity threshold currently in
// force, after inheritance and the initializer's floor.
func (l *Logger) GetEffectiveLevel() int { return int(l.node.effective.Load()) }

// SetLevel installs an explicit level; nil restores inheritance from the
// parent. The change propagates to every descendant that does not override.
func (l *Logger) SetLevel(level *Level) error {
	if err := checkAccess(CapabilityControl); err != nil {
		return err
	}
	l.node.setLevel(level)
	return nil
}

// IsLoggable reports whether a record at the given level would currently
// pass this logger's threshold.
func (l *Logger) IsLoggable(level *Level) bool {
	return level != nil && l.node.isLoggable(level)
}

// Log publishes a record at the given level if it passes the effective
// threshold. Delivery is fire-and-forget: handler errors are counted in
// Metrics, never returned here.
func (l *Logger) Log(level *Level, msg string, fields ...zapcore.Field) {
	if level == nil || !l.node.isLoggable(level) {
		return
	}
	l.node.publish(&Record{
		Time:       time.Now(),
		Level:      level,
		LoggerName: l.node.fullName,
		Message:    msg,
		Fields:     fields,
	})
}

func (l *Logger) Trace(msg string, fields ...zapcore.Field) { l.Log(TraceLevel, msg, fields...) }

func (l *Logger) Debug(msg string, fields ...zapcore.Field) { l.Log(DebugLevel, msg, fields...) }

func (l *Logger) Info(msg string, fields ...zapcore.Field) { l.Log(InfoLevel, msg, fields...) }

func (l *Logger) Warn(msg string, fields ...zapcore.Field) { l.Log(WarnLevel, msg, fields...) }

func (l *Logger) Error(msg string, fields ...zapcore.Field) { l.Log(ErrorLevel, msg, fields...) }

// Fatal logs at FATAL severity. It does not terminate the process.
func (l *Logger) Fatal(msg string, fields ...zapcore.Field) { l.Log(FatalLevel, msg, fields...) }

// AddHandler appends a handler to this logger.
func (l *Logger) AddHandler(h Handler) error {
	if err := checkAccess(CapabilityControl); err != nil {
		return err
	}
	if h == nil {
		return ErrNilHandler
	}
	l.node.addHandler(h)
	return nil
}

// RemoveHandler removes the first handler equal to h and reports whether
// one was removed. Handlers of uncomparable dynamic types cannot be matched.
func (l *Logger) RemoveHandler(h Handler) (bool, error) {
	if err := checkAccess(CapabilityControl); err != nil {
		return false, err
	}
	return l.node.removeHandler(h), nil
}

// SetHandlers replaces this logger's handlers.
func (l *Logger) SetHandlers(hs []Handler) error {
	if err := checkAccess(CapabilityControl); err != nil {
		return err
	}
	for _, h := range hs {
		if h == nil {
			return ErrNilHandler
		}
	}
	l.node.setHandlers(hs)
	return nil
}

// GetHandlers returns a copy of this logger's own handlers; inherited
// handlers are not included.
func (l *Logger) GetHandlers() []Handler { return l.node.getHandlers() }

// SetUseParentHandlers controls whether records published here also reach
// the ancestors' handlers.
func (l *Logger) SetUseParentHandlers(use bool) error {
	if err := checkAccess(CapabilityControl); err != nil {
		return err
	}
	l.node.useParentHandlers.Store(use)
	return nil
}

// GetUseParentHandlers reports whether records published here also reach
// the ancestors' handlers.
func (l *Logger) GetUseParentHandlers() bool { return l.node.useParentHandlers.Load() }

// GetAttachment returns the value attached to this logger under key, or nil.
func (l *Logger) GetAttachment(key *AttachmentKey) any {
	return l.node.attachments.get(key)
}

// Attach maps key to value on this logger, returning the previously
// attached value or nil.
func (l *Logger) Attach(key *AttachmentKey, value any) (any, error) {
	if err := checkAccess(CapabilityControl); err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrNilKey
	}
	if value == nil {
		return nil, ErrNilValue
	}
	return l.node.attachments.attach(key, value), nil
}

// AttachIfAbsent maps key to value only when the key has no mapping on this
// logger. It returns nil on success, or the existing value untouched.
func (l *Logger) AttachIfAbsent(key *AttachmentKey, value any) (any, error) {
	if err := checkAccess(CapabilityControl); err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrNilKey
	}
	if value == nil {
		return nil, ErrNilValue
	}
	return l.node.attachments.attachIfAbsent(key, value), nil
}

// Detach removes key's mapping on this logger and returns the removed
// value, or nil.
func (l *Logger) Detach(key *AttachmentKey) (any, error) {
	if err := checkAccess(CapabilityControl); err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrNilKey
	}
	return l.node.attachments.detach(key), nil
}

// Pin excludes this logger's node from weak reclamation until Unpin. It
// reports whether the node was newly pinned; in strong contexts pinning is
// a no-op returning false.
func (l *Logger) Pin() bool { return l.node.ctx.pin(l.node) }

// Unpin releases an earlier Pin and reports whether the node was pinned.
// In strong contexts it is a no-op returning false.
func (l *Logger) Unpin() bool { return l.node.ctx.unpin(l.node) }
