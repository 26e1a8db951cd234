// Package logconf loads logging configuration from YAML and the
// environment and applies it to a logctx context.
//
// # Configuration
//
// A config file declares custom levels, named handlers, and per-logger
// settings:
//
//	levels:
//	  - name: AUDIT
//	    value: 950
//
//	handlers:
//	  - name: console
//	    type: console
//	    output: stderr
//	  - name: audit-file
//	    type: json
//	    output: /var/log/app/audit.log
//	    min_level: AUDIT
//	    rate_limit: 100
//
//	root:
//	  level: INFO
//	  handlers: [console]
//
//	loggers:
//	  - name: app.audit
//	    level: AUDIT
//	    handlers: [audit-file]
//	    use_parent_handlers: false
//	    pin: true
//
// Environment variables override file values. They use the LOGCTX_ prefix
// with an underscore separator:
//
//	LOGCTX_ROOT_LEVEL=DEBUG   overrides root.level
//
// # Reloading
//
// A Watcher observes the config file and reapplies it when it changes, so
// level and handler changes take effect without a restart:
//
//	w, err := logconf.NewWatcher(path, ctx)
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//	if err := w.Start(context.Background()); err != nil {
//	    return err
//	}
package logconf
