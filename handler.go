package logctx

import (
	"reflect"
	"sync/atomic"
	"time"

	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

// Record is one published log event. Field encoding is delegated to the
// handler; the zapcore field vocabulary is used so handlers can feed any
// zap encoder or core without conversion.
type Record struct {
	Time       time.Time
	Level      *Level
	LoggerName string
	Message    string
	Fields     []zapcore.Field
}

// Handler consumes records published through a logger. Publish must be safe
// for concurrent use. Publish errors are counted, not returned to the
// logging call site.
type Handler interface {
	Publish(r *Record) error
	Close() error
}

// HandlerFunc adapts a function to Handler with a no-op Close.
type HandlerFunc func(*Record) error

func (f HandlerFunc) Publish(r *Record) error { return f(r) }

func (f HandlerFunc) Close() error { return nil }

// sameDynamic reports whether a and b hold the same dynamic value. Values
// of uncomparable dynamic types (HandlerFunc among them) never match, so
// they cannot be deduplicated or removed by value.
func sameDynamic(a, b any) bool {
	ta := reflect.TypeOf(a)
	tb := reflect.TypeOf(b)
	if ta == nil || ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// RateLimitedHandler drops records beyond a sustained rate instead of
// letting a log storm overwhelm the downstream handler. Dropped records are
// counted and otherwise discarded silently.
type RateLimitedHandler struct {
	next    Handler
	limiter *rate.Limiter
	dropped atomic.Int64
}

// NewRateLimitedHandler wraps next with a token bucket admitting limit
// records per second with the given burst.
func NewRateLimitedHandler(next Handler, limit rate.Limit, burst int) *RateLimitedHandler {
	return &RateLimitedHandler{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (h *RateLimitedHandler) Publish(r *Record) error {
	if !h.limiter.Allow() {
		h.dropped.Add(1)
		return nil
	}
	return h.next.Publish(r)
}

// Dropped returns the number of records discarded so far.
func (h *RateLimitedHandler) Dropped() int64 { return h.dropped.Load() }

func (h *RateLimitedHandler) Close() error { return h.next.Close() }
