package logctx

import (
	"fmt"
	"math"
	"sync/atomic"
	"weak"
)

// Level is a named severity. Levels are compared by numeric value when
// deciding whether a record is publishable, but the registry tracks them by
// instance: re-registering a name replaces the previous instance, and
// unregistering only succeeds against the exact instance currently mapped.
type Level struct {
	name  string
	value int
}

// NewLevel returns a new level instance. Two levels created with the same
// name and value are still distinct instances.
func NewLevel(name string, value int) *Level {
	return &Level{name: name, value: value}
}

// Name returns the level's registered name.
func (l *Level) Name() string { return l.name }

// Value returns the level's numeric severity. Higher values are more severe.
func (l *Level) Value() int { return l.value }

func (l *Level) String() string { return l.name }

// Core levels, numbered to interoperate with java.util.logging severities.
var (
	OffLevel     = NewLevel("OFF", math.MaxInt32)
	SevereLevel  = NewLevel("SEVERE", 1000)
	WarningLevel = NewLevel("WARNING", 900)
	InfoLevel    = NewLevel("INFO", 800)
	ConfigLevel  = NewLevel("CONFIG", 700)
	FineLevel    = NewLevel("FINE", 500)
	FinerLevel   = NewLevel("FINER", 400)
	FinestLevel  = NewLevel("FINEST", 300)
	AllLevel     = NewLevel("ALL", math.MinInt32)
)

// Syslog-style aliases. INFO is shared with the core set; the remaining five
// map onto the core numbering so either vocabulary can gate the other.
var (
	FatalLevel = NewLevel("FATAL", 1100)
	ErrorLevel = NewLevel("ERROR", 1000)
	WarnLevel  = NewLevel("WARN", 900)
	DebugLevel = NewLevel("DEBUG", 500)
	TraceLevel = NewLevel("TRACE", 400)
)

var standardLevels = []*Level{
	OffLevel, FatalLevel, SevereLevel, ErrorLevel, WarningLevel, WarnLevel,
	InfoLevel, ConfigLevel, FineLevel, DebugLevel, FinerLevel, TraceLevel,
	FinestLevel, AllLevel,
}

// StandardLevels returns the levels every new context starts out with,
// ordered from most to least severe.
func StandardLevels() []*Level {
	out := make([]*Level, len(standardLevels))
	copy(out, standardLevels)
	return out
}

// levelRef is one registry entry. Strong entries keep their level alive;
// weak entries report nil once the instance has been reclaimed and are
// swept out on the next write.
type levelRef interface {
	level() *Level
}

type strongLevelRef struct{ l *Level }

func (r strongLevelRef) level() *Level { return r.l }

type weakLevelRef struct{ p weak.Pointer[Level] }

func (r weakLevelRef) level() *Level { return r.p.Value() }

// levelRegistry maps names to level instances. The map behind the pointer is
// never mutated in place: every write copies, edits, and swaps, so readers
// always see a complete snapshot without taking a lock.
type levelRegistry struct {
	snap atomic.Pointer[map[string]levelRef]
}

func newLevelRegistry() *levelRegistry {
	r := &levelRegistry{}
	m := make(map[string]levelRef, len(standardLevels))
	for _, l := range standardLevels {
		m[l.name] = strongLevelRef{l}
	}
	r.snap.Store(&m)
	return r
}

func (r *levelRegistry) forName(name string) (*Level, error) {
	if ref, ok := (*r.snap.Load())[name]; ok {
		if l := ref.level(); l != nil {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrLevelNotFound, name)
}

// register maps level.Name() to level, replacing any previous entry. Dead
// weak entries anywhere in the map are dropped as part of the same swap.
func (r *levelRegistry) register(l *Level, strong bool) {
	var ref levelRef
	if strong {
		ref = strongLevelRef{l}
	} else {
		ref = weakLevelRef{weak.Make(l)}
	}
	for {
		old := r.snap.Load()
		next := make(map[string]levelRef, len(*old)+1)
		for name, existing := range *old {
			if name == l.name || existing.level() == nil {
				continue
			}
			next[name] = existing
		}
		next[l.name] = ref
		if r.snap.CompareAndSwap(old, &next) {
			return
		}
		NewMetrics().SnapshotRetries.Inc()
	}
}

// unregister removes the entry for level.Name() only while it still refers
// to this exact instance. A stale instance, a reclaimed weak entry, or an
// unknown name all leave the registry untouched.
func (r *levelRegistry) unregister(l *Level) {
	for {
		old := r.snap.Load()
		existing, ok := (*old)[l.name]
		if !ok || existing.level() != l {
			return
		}
		next := make(map[string]levelRef, len(*old))
		for name, ref := range *old {
			if name == l.name {
				continue
			}
			next[name] = ref
		}
		if r.snap.CompareAndSwap(old, &next) {
			return
		}
		NewMetrics().SnapshotRetries.Inc()
	}
}
