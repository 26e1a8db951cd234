package logctx

import (
	"sync/atomic"
	"weak"
)

// childMap stores a node's children keyed by name segment. Both
// implementations copy-and-swap whole snapshots, so lookups during logger
// creation never block.
type childMap interface {
	load(segment string) *LoggerNode

	// loadOrStore returns the live node for segment, storing candidate and
	// returning it when there is none. Exactly one of any set of racing
	// candidates for a segment wins.
	loadOrStore(segment string, candidate *LoggerNode) *LoggerNode

	snapshot() []*LoggerNode
	clear()
}

// newChildMap picks the retention flavor for a context: strong contexts keep
// every child reachable forever, weak contexts let unreferenced, unpinned
// subtrees be reclaimed.
func newChildMap(strong bool) childMap {
	if strong {
		return newStrongChildMap()
	}
	return newWeakChildMap()
}

type strongChildMap struct {
	snap atomic.Pointer[map[string]*LoggerNode]
}

func newStrongChildMap() *strongChildMap {
	m := &strongChildMap{}
	empty := map[string]*LoggerNode{}
	m.snap.Store(&empty)
	return m
}

func (m *strongChildMap) load(segment string) *LoggerNode {
	return (*m.snap.Load())[segment]
}

func (m *strongChildMap) loadOrStore(segment string, candidate *LoggerNode) *LoggerNode {
	for {
		old := m.snap.Load()
		if existing, ok := (*old)[segment]; ok {
			return existing
		}
		next := make(map[string]*LoggerNode, len(*old)+1)
		for k, v := range *old {
			next[k] = v
		}
		next[segment] = candidate
		if m.snap.CompareAndSwap(old, &next) {
			return candidate
		}
		NewMetrics().SnapshotRetries.Inc()
	}
}

func (m *strongChildMap) snapshot() []*LoggerNode {
	cur := *m.snap.Load()
	out := make([]*LoggerNode, 0, len(cur))
	for _, n := range cur {
		out = append(out, n)
	}
	return out
}

func (m *strongChildMap) clear() {
	empty := map[string]*LoggerNode{}
	m.snap.Store(&empty)
}

// weakChildMap holds children through weak pointers. An entry whose node has
// been reclaimed reads as absent and is swept out by the next write. A node
// stays live while anything still references it: a Logger handle, a live
// descendant (children hold their parent strongly), or the context pin set.
type weakChildMap struct {
	snap atomic.Pointer[map[string]weak.Pointer[LoggerNode]]
}

func newWeakChildMap() *weakChildMap {
	m := &weakChildMap{}
	empty := map[string]weak.Pointer[LoggerNode]{}
	m.snap.Store(&empty)
	return m
}

func (m *weakChildMap) load(segment string) *LoggerNode {
	if ref, ok := (*m.snap.Load())[segment]; ok {
		return ref.Value()
	}
	return nil
}

func (m *weakChildMap) loadOrStore(segment string, candidate *LoggerNode) *LoggerNode {
	for {
		old := m.snap.Load()
		if ref, ok := (*old)[segment]; ok {
			if existing := ref.Value(); existing != nil {
				return existing
			}
		}
		next := make(map[string]weak.Pointer[LoggerNode], len(*old)+1)
		for k, ref := range *old {
			if k == segment || ref.Value() == nil {
				continue
			}
			next[k] = ref
		}
		next[segment] = weak.Make(candidate)
		if m.snap.CompareAndSwap(old, &next) {
			return candidate
		}
		NewMetrics().SnapshotRetries.Inc()
	}
}

func (m *weakChildMap) snapshot() []*LoggerNode {
	cur := *m.snap.Load()
	out := make([]*LoggerNode, 0, len(cur))
	for _, ref := range cur {
		if n := ref.Value(); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m *weakChildMap) clear() {
	empty := map[string]weak.Pointer[LoggerNode]{}
	m.snap.Store(&empty)
}
