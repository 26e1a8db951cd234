package zapbridge

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newEncoder creates JSON or console encoder.
func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}

// NewJSONHandler returns a handler writing JSON lines to w for records the
// enabler accepts. ZapLevel(min) of a logctx level works as the enabler.
func NewJSONHandler(w io.Writer, enab zapcore.LevelEnabler) *CoreHandler {
	return NewCoreHandler(zapcore.NewCore(newEncoder("json"), zapcore.AddSync(w), enab))
}

// NewConsoleHandler returns a handler writing human-readable lines to w for
// records the enabler accepts.
func NewConsoleHandler(w io.Writer, enab zapcore.LevelEnabler) *CoreHandler {
	return NewCoreHandler(zapcore.NewCore(newEncoder("console"), zapcore.AddSync(w), enab))
}
