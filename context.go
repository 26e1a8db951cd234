package logctx

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Context is an isolated logger namespace: its own name-to-logger tree, its
// own level registry, and its own attachment space. Contexts never share
// state; the same dotted name resolves to unrelated loggers in different
// contexts.
//
// The retention mode is fixed at creation. In a strong context every logger
// ever created stays reachable until close. In a weak context loggers that
// nothing references, and that are not pinned, can be reclaimed along with
// their configuration.
type Context struct {
	id          uuid.UUID
	strong      bool
	initializer Initializer

	root   *LoggerNode
	levels *levelRegistry

	attachments attachmentStore

	// pinned holds nodes excluded from weak reclamation. It stays empty in
	// strong contexts.
	pinned sync.Map

	// treeLock serializes operations that touch more than one node: close,
	// effective-level propagation, and the close handler set.
	treeLock      sync.Mutex
	closeHandlers []io.Closer
}

func newContext(strong bool, init Initializer) *Context {
	c := &Context{
		id:          uuid.New(),
		strong:      strong || init.UseStrongReferences(),
		initializer: init,
	}
	c.levels = newLevelRegistry()
	c.attachments.init()
	c.root = newLoggerNode(c, nil, "")
	if c.root.level.Load() == nil {
		c.root.level.Store(InfoLevel)
		c.root.effective.Store(c.root.resolveEffective(int64(InfoLevel.value)))
	}
	NewMetrics().ContextsCreated.Inc()
	return c
}

// ID returns the context's unique identifier.
func (c *Context) ID() string { return c.id.String() }

// GetLogger returns the logger for the dot-separated name, creating it and
// any missing ancestors. The root logger is named "".
func (c *Context) GetLogger(name string) *Logger {
	return &Logger{node: c.root.getOrCreate(name)}
}

// GetLoggerIfExists returns the logger for name only if it already exists,
// and nil otherwise. Weak loggers that have been reclaimed do not exist.
func (c *Context) GetLoggerIfExists(name string) *Logger {
	n := c.root.getIfExists(name)
	if n == nil {
		return nil
	}
	return &Logger{node: n}
}

// GetLoggerNames returns the names of the loggers that currently exist, the
// root's "" included. Names of reclaimed loggers are omitted; loggers
// created while the walk is in progress may or may not appear.
func (c *Context) GetLoggerNames() []string {
	out := make([]string, 0, 16)
	c.root.collectNames(&out)
	return out
}

// GetAttachment returns the value attached to this context under key, or
// nil when there is none.
func (c *Context) GetAttachment(key *AttachmentKey) any {
	return c.attachments.get(key)
}

// GetLoggerAttachment reads an attachment from the named logger without
// creating it. It returns nil when the logger does not exist or carries no
// such attachment.
func (c *Context) GetLoggerAttachment(loggerName string, key *AttachmentKey) any {
	n := c.root.getIfExists(loggerName)
	if n == nil {
		return nil
	}
	return n.attachments.get(key)
}

// Attach maps key to value on this context, returning the previously
// attached value or nil.
func (c *Context) Attach(key *AttachmentKey, value any) (any, error) {
	if err := checkAccess(CapabilityControl); err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrNilKey
	}
	if value == nil {
		return nil, ErrNilValue
	}
	return c.attachments.attach(key, value), nil
}

// AttachIfAbsent maps key to value only when key has no current mapping.
// It returns nil on success; when the key is already mapped it returns the
// existing value and changes nothing. Of any set of racing callers exactly
// one succeeds.
func (c *Context) AttachIfAbsent(key *AttachmentKey, value any) (any, error) {
	if err := checkAccess(CapabilityControl); err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrNilKey
	}
	if value == nil {
		return nil, ErrNilValue
	}
	return c.attachments.attachIfAbsent(key, value), nil
}

// Detach removes key's mapping and returns the removed value, or nil when
// the key was not mapped.
func (c *Context) Detach(key *AttachmentKey) (any, error) {
	if err := checkAccess(CapabilityControl); err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrNilKey
	}
	return c.attachments.detach(key), nil
}

// GetLevelForName resolves a registered level by name. It returns
// ErrLevelNotFound when no live registration exists; a weakly registered
// level whose instance has been reclaimed counts as absent.
func (c *Context) GetLevelForName(name string) (*Level, error) {
	return c.levels.forName(name)
}

// RegisterLevel maps level's name to this exact instance, replacing any
// previous registration of the name. With strong set the registry keeps the
// instance alive; otherwise the registration lapses once the caller drops
// it.
func (c *Context) RegisterLevel(level *Level, strong bool) error {
	if err := checkAccess(CapabilityControl); err != nil {
		return err
	}
	if level == nil {
		return ErrNilLevel
	}
	c.levels.register(level, strong)
	NewMetrics().LevelsRegistered.Inc()
	return nil
}

// UnregisterLevel removes level's registration, but only while the name
// still maps to this exact instance. If the name has since been re-registered
// with another instance the call is a no-op; the newer registration stays.
func (c *Context) UnregisterLevel(level *Level) error {
	if err := checkAccess(CapabilityControl); err != nil {
		return err
	}
	if level == nil {
		return ErrNilLevel
	}
	c.levels.unregister(level)
	return nil
}

func (c *Context) pin(n *LoggerNode) bool {
	if c.strong {
		return false
	}
	_, loaded := c.pinned.LoadOrStore(n, struct{}{})
	if !loaded {
		NewMetrics().PinnedNodes.Inc()
	}
	return !loaded
}

func (c *Context) unpin(n *LoggerNode) bool {
	if c.strong {
		return false
	}
	_, loaded := c.pinned.LoadAndDelete(n)
	if loaded {
		NewMetrics().PinnedNodes.Dec()
	}
	return loaded
}

// AddCloseHandler registers a handler invoked during Close, after the
// loggers have been torn down. Handlers run in the order they were added;
// adding a handler already in the set changes nothing.
func (c *Context) AddCloseHandler(handler io.Closer) error {
	if err := checkAccess(CapabilityControl); err != nil {
		return err
	}
	if handler == nil {
		return ErrNilHandler
	}
	c.treeLock.Lock()
	defer c.treeLock.Unlock()
	c.addCloseHandlerLocked(handler)
	return nil
}

func (c *Context) addCloseHandlerLocked(handler io.Closer) {
	for _, existing := range c.closeHandlers {
		if sameDynamic(existing, handler) {
			return
		}
	}
	c.closeHandlers = append(c.closeHandlers, handler)
}

// GetCloseHandlers returns a copy of the current close handler set in
// invocation order.
func (c *Context) GetCloseHandlers() ([]io.Closer, error) {
	if err := checkAccess(CapabilityControl); err != nil {
		return nil, err
	}
	c.treeLock.Lock()
	defer c.treeLock.Unlock()
	out := make([]io.Closer, len(c.closeHandlers))
	copy(out, c.closeHandlers)
	return out, nil
}

// SetCloseHandlers replaces the close handler set with the given handlers,
// keeping their order and dropping duplicates.
func (c *Context) SetCloseHandlers(handlers []io.Closer) error {
	if err := checkAccess(CapabilityControl); err != nil {
		return err
	}
	for _, h := range handlers {
		if h == nil {
			return ErrNilHandler
		}
	}
	c.treeLock.Lock()
	defer c.treeLock.Unlock()
	c.closeHandlers = nil
	for _, h := range handlers {
		c.addCloseHandlerLocked(h)
	}
	return nil
}

// Close tears the context down under the tree lock: every logger is reset
// bottom-up, the close handlers run in insertion order, closeable context
// attachments are closed best-effort, and the pin set empties. The first
// close handler error stops the sequence and is returned; the attachments
// and pins are then left for a later call.
//
// Close is not idempotent. A second call runs the whole sequence again,
// close handlers included. Close handlers must not call back into
// structural operations of the same context.
func (c *Context) Close() error {
	c.treeLock.Lock()
	defer c.treeLock.Unlock()
	c.root.closeLocked()
	for _, handler := range c.closeHandlers {
		if err := handler.Close(); err != nil {
			return fmt.Errorf("close handler: %w", err)
		}
	}
	for _, value := range c.attachments.clear() {
		if closer, ok := value.(io.Closer); ok {
			_ = closer.Close()
		}
	}
	pins := 0
	c.pinned.Range(func(_, _ any) bool { pins++; return true })
	if pins > 0 {
		c.pinned.Clear()
		NewMetrics().PinnedNodes.Sub(float64(pins))
	}
	NewMetrics().ContextsClosed.Inc()
	return nil
}
