// Package zapbridge connects logctx handlers to zap cores.
//
// # Overview
//
// A CoreHandler publishes logctx records through any zapcore.Core, so
// everything built for zap works as a logctx handler: encoders, sinks,
// samplers, the OpenTelemetry log bridge, and tees of all of these.
//
// # Level mapping
//
// logctx severities are mapped onto zap's smaller scale:
//
//	FATAL and above       -> zapcore.FatalLevel
//	SEVERE, ERROR         -> zapcore.ErrorLevel
//	WARNING, WARN         -> zapcore.WarnLevel
//	INFO                  -> zapcore.InfoLevel
//	CONFIG, FINE, DEBUG   -> zapcore.DebugLevel
//	FINER and below       -> TraceLevel (-2)
//
// The handler drives the core directly, so records mapped to
// zapcore.FatalLevel are written without zap's exit hooks.
//
// # Usage
//
//	lg := ctx.GetLogger("app")
//	lg.AddHandler(zapbridge.NewJSONHandler(os.Stdout, zapcore.InfoLevel))
//	lg.Info("ready", zap.String("version", version))
package zapbridge
