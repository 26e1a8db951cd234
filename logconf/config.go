package logconf

import (
	"errors"
	"fmt"
)

// Config is the full logging configuration for one context.
type Config struct {
	Levels   []LevelSpec   `koanf:"levels"`
	Handlers []HandlerSpec `koanf:"handlers"`
	Root     RootSpec      `koanf:"root"`
	Loggers  []LoggerSpec  `koanf:"loggers"`
}

// LevelSpec registers a custom named level.
type LevelSpec struct {
	Name  string `koanf:"name"`
	Value int    `koanf:"value"`
}

// HandlerSpec declares a named output handler that loggers can reference.
type HandlerSpec struct {
	Name   string `koanf:"name"`
	Type   string `koanf:"type"`   // "json" or "console" (default: json)
	Output string `koanf:"output"` // "stdout", "stderr", or a file path (default: stdout)

	// MinLevel drops records below the named level at this handler,
	// independent of any logger threshold. The gate applies at zap level
	// granularity. Empty passes everything through.
	MinLevel string `koanf:"min_level"`

	// RateLimit caps delivery at this many records per second; 0 disables
	// limiting. RateBurst is the burst allowance (default: 1).
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// RootSpec configures the root logger.
type RootSpec struct {
	Level    string   `koanf:"level"`
	Handlers []string `koanf:"handlers"`
}

// LoggerSpec configures one named logger.
type LoggerSpec struct {
	Name     string   `koanf:"name"`
	Level    string   `koanf:"level"`
	Handlers []string `koanf:"handlers"`

	// UseParentHandlers controls propagation to ancestor handlers. Unset
	// leaves the logger's current setting alone.
	UseParentHandlers *bool `koanf:"use_parent_handlers"`

	// Pin excludes the logger from weak reclamation, keeping this
	// configuration alive in weak contexts even while nothing references
	// the logger.
	Pin bool `koanf:"pin"`
}

// Validate checks the configuration for internal consistency.
//
// Returns an error if:
//   - A level or handler spec has no name, or a name repeats
//   - A handler type is not "json" or "console"
//   - A rate limit or burst is negative
//   - A logger spec has no name (configure the root via the root section)
//   - A logger references an undeclared handler
func (c *Config) Validate() error {
	levelNames := make(map[string]bool, len(c.Levels))
	for _, spec := range c.Levels {
		if spec.Name == "" {
			return errors.New("level spec missing name")
		}
		if levelNames[spec.Name] {
			return fmt.Errorf("duplicate level spec: %q", spec.Name)
		}
		levelNames[spec.Name] = true
	}

	handlerNames := make(map[string]bool, len(c.Handlers))
	for _, spec := range c.Handlers {
		if spec.Name == "" {
			return errors.New("handler spec missing name")
		}
		if handlerNames[spec.Name] {
			return fmt.Errorf("duplicate handler spec: %q", spec.Name)
		}
		handlerNames[spec.Name] = true

		if spec.Type != "json" && spec.Type != "console" {
			return fmt.Errorf("handler %q: unknown type %q (must be json or console)", spec.Name, spec.Type)
		}
		if spec.RateLimit < 0 {
			return fmt.Errorf("handler %q: negative rate limit", spec.Name)
		}
		if spec.RateBurst < 0 {
			return fmt.Errorf("handler %q: negative rate burst", spec.Name)
		}
	}

	for _, name := range c.Root.Handlers {
		if !handlerNames[name] {
			return fmt.Errorf("root logger references undeclared handler %q", name)
		}
	}

	for _, spec := range c.Loggers {
		if spec.Name == "" {
			return errors.New("logger spec missing name (use the root section for the root logger)")
		}
		for _, name := range spec.Handlers {
			if !handlerNames[name] {
				return fmt.Errorf("logger %q references undeclared handler %q", spec.Name, name)
			}
		}
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	for i := range cfg.Handlers {
		if cfg.Handlers[i].Type == "" {
			cfg.Handlers[i].Type = "json"
		}
		if cfg.Handlers[i].Output == "" {
			cfg.Handlers[i].Output = "stdout"
		}
		if cfg.Handlers[i].RateLimit > 0 && cfg.Handlers[i].RateBurst == 0 {
			cfg.Handlers[i].RateBurst = 1
		}
	}
}
