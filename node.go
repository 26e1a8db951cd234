package logctx

import (
	"math"
	"strings"
	"sync/atomic"
)

var noHandlers = &[]Handler{}

// LoggerNode is the in-tree state for one dotted name. All logger state
// lives here; Logger values are interchangeable handles onto a node.
//
// A node holds its parent strongly, so a live logger keeps its whole
// ancestor chain alive. Whether children are held strongly or weakly is the
// context's retention mode.
type LoggerNode struct {
	ctx    *Context
	parent *LoggerNode

	fullName string
	children childMap

	attachments attachmentStore

	handlers          atomic.Pointer[[]Handler]
	useParentHandlers atomic.Bool

	// level is the explicitly configured level, nil when inheriting.
	// effective caches the resolved severity threshold; it is recomputed
	// under the context tree lock whenever an explicit level changes.
	level     atomic.Pointer[Level]
	effective atomic.Int64

	// minValue is a floor on the effective threshold, fixed at creation
	// from the context initializer.
	minValue int64
}

func newLoggerNode(ctx *Context, parent *LoggerNode, segment string) *LoggerNode {
	fullName := segment
	if parent != nil && parent.fullName != "" {
		fullName = parent.fullName + "." + segment
	}
	n := &LoggerNode{ctx: ctx, parent: parent, fullName: fullName}
	n.children = newChildMap(ctx.strong)
	n.attachments.init()
	n.handlers.Store(noHandlers)
	n.useParentHandlers.Store(true)

	init := ctx.initializer
	n.minValue = math.MinInt32
	if min := init.MinimumLevel(fullName); min != nil {
		n.minValue = int64(min.value)
	}
	if hs := init.InitialHandlers(fullName); len(hs) > 0 {
		own := make([]Handler, len(hs))
		copy(own, hs)
		n.handlers.Store(&own)
	}
	if l := init.InitialLevel(fullName); l != nil {
		n.level.Store(l)
	}

	inherited := int64(InfoLevel.value)
	if parent != nil {
		inherited = parent.effective.Load()
	}
	n.effective.Store(n.resolveEffective(inherited))
	return n
}

// resolveEffective computes the severity threshold given the inherited
// value: an explicit level overrides, then the minimum floor applies.
func (n *LoggerNode) resolveEffective(inherited int64) int64 {
	v := inherited
	if l := n.level.Load(); l != nil {
		v = int64(l.value)
	}
	if v < n.minValue {
		v = n.minValue
	}
	return v
}

// getOrCreate resolves a dotted name relative to this node, creating any
// missing nodes on the way. Creation rides the child map's snapshot swap;
// racing creators for one segment all end up with the single winning node.
func (n *LoggerNode) getOrCreate(name string) *LoggerNode {
	if name == "" {
		return n
	}
	segment := name
	rest := ""
	if i := strings.IndexByte(name, '.'); i >= 0 {
		segment = name[:i]
		rest = name[i+1:]
	}
	child := n.children.load(segment)
	if child == nil {
		candidate := newLoggerNode(n.ctx, n, segment)
		child = n.children.loadOrStore(segment, candidate)
		if child == candidate {
			NewMetrics().LoggersCreated.Inc()
		}
	}
	return child.getOrCreate(rest)
}

// getIfExists resolves a dotted name without creating anything. Weak
// children that have been reclaimed read as absent.
func (n *LoggerNode) getIfExists(name string) *LoggerNode {
	if name == "" {
		return n
	}
	segment := name
	rest := ""
	if i := strings.IndexByte(name, '.'); i >= 0 {
		segment = name[:i]
		rest = name[i+1:]
	}
	child := n.children.load(segment)
	if child == nil {
		return nil
	}
	return child.getIfExists(rest)
}

// setLevel installs the explicit level (nil restores inheritance) and
// recomputes cached thresholds for every descendant that inherits, all
// under the tree lock so overlapping updates cannot interleave.
func (n *LoggerNode) setLevel(l *Level) {
	n.ctx.treeLock.Lock()
	defer n.ctx.treeLock.Unlock()
	n.level.Store(l)
	n.updateEffectiveLocked()
}

func (n *LoggerNode) updateEffectiveLocked() {
	inherited := int64(InfoLevel.value)
	if n.parent != nil {
		inherited = n.parent.effective.Load()
	}
	n.effective.Store(n.resolveEffective(inherited))
	for _, child := range n.children.snapshot() {
		if child.level.Load() != nil {
			continue
		}
		child.updateEffectiveLocked()
	}
}

func (n *LoggerNode) isLoggable(l *Level) bool {
	return int64(l.value) >= n.effective.Load()
}

func (n *LoggerNode) addHandler(h Handler) {
	for {
		old := n.handlers.Load()
		next := make([]Handler, len(*old)+1)
		copy(next, *old)
		next[len(*old)] = h
		if n.handlers.CompareAndSwap(old, &next) {
			return
		}
		NewMetrics().SnapshotRetries.Inc()
	}
}

func (n *LoggerNode) removeHandler(h Handler) bool {
	for {
		old := n.handlers.Load()
		idx := -1
		for i, existing := range *old {
			if sameDynamic(existing, h) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		next := make([]Handler, 0, len(*old)-1)
		next = append(next, (*old)[:idx]...)
		next = append(next, (*old)[idx+1:]...)
		if n.handlers.CompareAndSwap(old, &next) {
			return true
		}
		NewMetrics().SnapshotRetries.Inc()
	}
}

func (n *LoggerNode) setHandlers(hs []Handler) {
	next := make([]Handler, len(hs))
	copy(next, hs)
	n.handlers.Store(&next)
}

func (n *LoggerNode) getHandlers() []Handler {
	cur := *n.handlers.Load()
	out := make([]Handler, len(cur))
	copy(out, cur)
	return out
}

// publish hands the record to this node's handlers, then walks up the
// parent chain while each node delegates to its parent's handlers.
func (n *LoggerNode) publish(r *Record) {
	for node := n; node != nil; node = node.parent {
		for _, h := range *node.handlers.Load() {
			if err := h.Publish(r); err != nil {
				NewMetrics().PublishFailures.Inc()
			}
		}
		if !node.useParentHandlers.Load() {
			return
		}
	}
}

func (n *LoggerNode) collectNames(out *[]string) {
	*out = append(*out, n.fullName)
	for _, child := range n.children.snapshot() {
		child.collectNames(out)
	}
}

// closeLocked resets the subtree bottom-up: children first, then this
// node's handlers (cleared, not closed: handlers may be shared), explicit
// level, attachments, and child map.
func (n *LoggerNode) closeLocked() {
	for _, child := range n.children.snapshot() {
		child.closeLocked()
	}
	n.children.clear()
	n.handlers.Store(noHandlers)
	n.useParentHandlers.Store(true)
	n.level.Store(nil)
	n.effective.Store(n.resolveEffective(int64(InfoLevel.value)))
	n.attachments.clear()
}
