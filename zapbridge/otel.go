package zapbridge

import (
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

// NewOTelHandler returns a handler exporting records through the
// OpenTelemetry log bridge under the given instrumentation scope name.
func NewOTelHandler(name string, provider log.LoggerProvider) *CoreHandler {
	core := otelzap.NewCore(name,
		otelzap.WithLoggerProvider(provider),
	)
	return NewCoreHandler(core)
}

// NewTeeHandler returns a handler duplicating every record to all cores.
func NewTeeHandler(cores ...zapcore.Core) *CoreHandler {
	return NewCoreHandler(zapcore.NewTee(cores...))
}
