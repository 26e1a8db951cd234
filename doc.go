// Package logctx provides isolated, hierarchical logging contexts.
//
// # Overview
//
// A Context is a self-contained logger namespace:
//   - A tree of dot-named loggers ("", "app", "app.db", ...)
//   - A level registry resolving names to Level instances
//   - Arbitrary attachments on the context and on each logger
//   - An ordered close pipeline for tied-down resources
//
// Contexts never share state, so independent tenants, modules, or embedded
// containers inside one process can each own a context and configure
// logging without affecting the others. Reads on the hot path (level
// checks, attachment lookups, handler fan-out) are wait-free snapshot
// loads; writers copy and swap.
//
// # Usage
//
// Create a context and log through it:
//
//	ctx, err := logctx.Create(true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	lg := ctx.GetLogger("app.db")
//	lg.AddHandler(zapbridge.NewConsoleHandler(os.Stdout, zapbridge.TraceLevel))
//	lg.Info("connected", zap.String("dsn", dsn))
//
// Levels gate by numeric severity and inherit down the tree:
//
//	ctx.GetLogger("app").SetLevel(logctx.WarnLevel)
//	ctx.GetLogger("app.db").IsLoggable(logctx.InfoLevel) // false, inherited
//
// Attachments carry per-context or per-logger metadata:
//
//	var tenantKey = logctx.NewAttachmentKey("tenant")
//	ctx.Attach(tenantKey, "acme")
//	ctx.GetAttachment(tenantKey) // "acme"
//
// # Retention
//
// A context is created strong or weak, permanently. Strong contexts keep
// every logger alive until Close. In weak contexts a logger that nothing
// references may be reclaimed, configuration included; Pin holds a logger
// against that:
//
//	lg := ctx.GetLogger("job.worker")
//	lg.Pin()
//	defer lg.Unpin()
//
// # The system context and selection
//
// GetLogContext returns the calling code's current context. By default
// that is the lazily created, process-wide system context; installing a
// Selector redirects it, which is how per-tenant or per-module routing is
// done:
//
//	logctx.SetLogContextSelector(logctx.SelectorFunc(func() *logctx.Context {
//	    return contextForCurrentTenant()
//	}))
//
// # Access control
//
// Every mutating operation consults the process-wide AccessPolicy before
// touching state. The default policy allows everything; hosts that embed
// untrusted code install a restrictive one with SetAccessPolicy and guarded
// operations then fail with ErrAccessDenied.
//
// # Close
//
// Close resets every logger bottom-up, runs the registered close handlers
// in insertion order, closes closeable context attachments, and clears the
// pin set. The first close handler error aborts the remainder. Close is
// deliberately not idempotent; see Context.Close.
package logctx
