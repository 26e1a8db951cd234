package logconf

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/logctx"
	"github.com/fyrsmithlabs/logctx/zapbridge"
)

// Apply configures a context from cfg: custom levels are registered first,
// then handlers are built, then the root and named loggers are configured.
// Level names resolve against the context's registry, so a level declared in
// cfg.Levels can be referenced by the loggers and handlers of the same file.
//
// Files opened for handler output are registered as close handlers on the
// context, so closing the context releases them. Reapplying a config
// replaces logger handlers; previously opened files stay registered until
// the context closes.
func Apply(c *logctx.Context, cfg *Config) error {
	for _, spec := range cfg.Levels {
		if err := c.RegisterLevel(logctx.NewLevel(spec.Name, spec.Value), true); err != nil {
			return fmt.Errorf("registering level %q: %w", spec.Name, err)
		}
	}

	handlers := make(map[string]logctx.Handler, len(cfg.Handlers))
	for _, spec := range cfg.Handlers {
		h, err := buildHandler(c, spec)
		if err != nil {
			return fmt.Errorf("building handler %q: %w", spec.Name, err)
		}
		handlers[spec.Name] = h
	}

	if err := applyLogger(c, c.GetLogger(""), cfg.Root.Level, cfg.Root.Handlers, nil, handlers); err != nil {
		return fmt.Errorf("configuring root logger: %w", err)
	}

	for _, spec := range cfg.Loggers {
		lg := c.GetLogger(spec.Name)
		if err := applyLogger(c, lg, spec.Level, spec.Handlers, spec.UseParentHandlers, handlers); err != nil {
			return fmt.Errorf("configuring logger %q: %w", spec.Name, err)
		}
		if spec.Pin {
			lg.Pin()
		}
	}

	return nil
}

func applyLogger(c *logctx.Context, lg *logctx.Logger, levelName string, handlerNames []string, useParent *bool, handlers map[string]logctx.Handler) error {
	if levelName != "" {
		level, err := c.GetLevelForName(levelName)
		if err != nil {
			return err
		}
		if err := lg.SetLevel(level); err != nil {
			return err
		}
	}

	if len(handlerNames) > 0 {
		hs := make([]logctx.Handler, 0, len(handlerNames))
		for _, name := range handlerNames {
			h, ok := handlers[name]
			if !ok {
				return fmt.Errorf("unknown handler %q", name)
			}
			hs = append(hs, h)
		}
		if err := lg.SetHandlers(hs); err != nil {
			return err
		}
	}

	if useParent != nil {
		if err := lg.SetUseParentHandlers(*useParent); err != nil {
			return err
		}
	}

	return nil
}

func buildHandler(c *logctx.Context, spec HandlerSpec) (logctx.Handler, error) {
	enab := zapcore.LevelEnabler(zapbridge.TraceLevel)
	if spec.MinLevel != "" {
		min, err := c.GetLevelForName(spec.MinLevel)
		if err != nil {
			return nil, err
		}
		enab = zapbridge.ZapLevel(min)
	}

	w, err := openOutput(c, spec.Output)
	if err != nil {
		return nil, err
	}

	var h logctx.Handler
	switch spec.Type {
	case "console":
		h = zapbridge.NewConsoleHandler(w, enab)
	default:
		h = zapbridge.NewJSONHandler(w, enab)
	}

	if spec.RateLimit > 0 {
		h = logctx.NewRateLimitedHandler(h, rate.Limit(spec.RateLimit), spec.RateBurst)
	}

	return h, nil
}

func openOutput(c *logctx.Context, output string) (io.Writer, error) {
	switch output {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output: %w", err)
	}
	if err := c.AddCloseHandler(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}
