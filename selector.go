package logctx

import (
	"sync"
	"sync/atomic"
)

// Selector chooses the context returned by GetLogContext. Installing one
// lets an application route different callers, tenants, or deployment
// units to different contexts without threading a *Context everywhere.
type Selector interface {
	GetLogContext() *Context
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func() *Context

func (f SelectorFunc) GetLogContext() *Context { return f() }

type selectorHolder struct{ s Selector }

var (
	systemOnce sync.Once
	systemCtx  *Context

	registerMu         sync.Mutex
	defaultInitializer Initializer
	systemBuilt        bool

	currentSelector atomic.Pointer[selectorHolder]
)

var defaultSelector Selector = SelectorFunc(SystemLogContext)

func init() { currentSelector.Store(&selectorHolder{s: defaultSelector}) }

// SystemLogContext returns the process-wide default context, creating it on
// first use. The system context is never closed by this package.
func SystemLogContext() *Context {
	systemOnce.Do(func() {
		registerMu.Lock()
		init := defaultInitializer
		systemBuilt = true
		registerMu.Unlock()
		if init == nil {
			init = DefaultInitializer{}
		}
		systemCtx = newContext(false, init)
	})
	return systemCtx
}

// RegisterDefaultInitializer supplies the Initializer the system context is
// built with. Like database/sql.Register it is meant for program start-up:
// it panics when init is nil, when called twice, or when the system context
// already exists.
func RegisterDefaultInitializer(init Initializer) {
	if init == nil {
		panic("logctx: RegisterDefaultInitializer with nil initializer")
	}
	registerMu.Lock()
	defer registerMu.Unlock()
	if systemBuilt {
		panic("logctx: default initializer registered after system context creation")
	}
	if defaultInitializer != nil {
		panic("logctx: default initializer registered twice")
	}
	defaultInitializer = init
}

// GetLogContext returns the context chosen by the current selector. With no
// selector installed that is the system context.
func GetLogContext() *Context {
	return currentSelector.Load().s.GetLogContext()
}

// SetLogContextSelector installs the process-wide selector strategy.
func SetLogContextSelector(s Selector) error {
	if err := checkAccess(CapabilitySetSelector); err != nil {
		return err
	}
	if s == nil {
		return ErrNilSelector
	}
	currentSelector.Store(&selectorHolder{s: s})
	return nil
}

// GetLogContextSelector returns the selector currently in force.
func GetLogContextSelector() Selector {
	return currentSelector.Load().s
}

// Create returns a new, empty context with the given retention mode.
func Create(strong bool) (*Context, error) {
	return CreateWithInitializer(strong, DefaultInitializer{})
}

// CreateWithInitializer returns a new context seeded by init. The context
// uses strong retention when either the flag or the initializer asks for
// it; the mode is fixed for the context's lifetime.
func CreateWithInitializer(strong bool, init Initializer) (*Context, error) {
	if err := checkAccess(CapabilityCreateContext); err != nil {
		return nil, err
	}
	if init == nil {
		return nil, ErrNilInitializer
	}
	return newContext(strong, init), nil
}
