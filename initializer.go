package logctx

// Initializer seeds contexts created with it: the retention mode, and the
// level floor, starting level, and starting handlers of each fresh node.
// The methods are consulted during logger creation, so they must be safe
// for concurrent use and should be cheap.
type Initializer interface {
	// UseStrongReferences forces strong retention for contexts created
	// with this initializer, even when the creator asked for weak.
	UseStrongReferences() bool

	// InitialLevel returns the explicit level a freshly created node
	// starts with, or nil for none. The root node is named "".
	InitialLevel(loggerName string) *Level

	// MinimumLevel returns a severity floor for the node: records below it
	// are never publishable regardless of configured levels. Nil means no
	// floor.
	MinimumLevel(loggerName string) *Level

	// InitialHandlers returns handlers preinstalled on a freshly created
	// node, or nil for none.
	InitialHandlers(loggerName string) []Handler
}

// DefaultInitializer is the neutral Initializer: weak retention, no
// starting levels, no floors, no handlers. Embed it to override a subset
// of the methods.
type DefaultInitializer struct{}

func (DefaultInitializer) UseStrongReferences() bool { return false }

func (DefaultInitializer) InitialLevel(string) *Level { return nil }

func (DefaultInitializer) MinimumLevel(string) *Level { return nil }

func (DefaultInitializer) InitialHandlers(string) []Handler { return nil }
