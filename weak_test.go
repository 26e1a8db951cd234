package logctx

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gcUntil drives full collections until cond holds. Weak reclamation is up
// to the runtime, so the reclamation tests poll instead of assuming a fixed
// number of cycles.
func gcUntil(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		runtime.GC()
		return cond()
	}, 5*time.Second, 10*time.Millisecond)
}

// The helpers below must not be inlined: an inlined call could leave the
// created node reachable from the caller's frame for the rest of the test.

//go:noinline
func createTransientLogger(ctx *Context, name string) string {
	return ctx.GetLogger(name).Name()
}

//go:noinline
func createConfiguredLogger(ctx *Context, name string, h Handler) error {
	lg := ctx.GetLogger(name)
	if err := lg.SetLevel(FineLevel); err != nil {
		return err
	}
	return lg.AddHandler(h)
}

//go:noinline
func createPinnedLogger(ctx *Context, name string) (bool, error) {
	lg := ctx.GetLogger(name)
	pinned := lg.Pin()
	return pinned, lg.SetLevel(FinestLevel)
}

//go:noinline
func registerTransientLevel(ctx *Context, name string, value int) error {
	return ctx.RegisterLevel(NewLevel(name, value), false)
}

func TestWeakContext_ReclaimsUnreferencedLoggers(t *testing.T) {
	ctx, err := Create(false)
	require.NoError(t, err)

	name := createTransientLogger(ctx, "transient.leaf")
	require.Equal(t, "transient.leaf", name)
	require.NotNil(t, ctx.GetLoggerIfExists("transient.leaf"))

	gcUntil(t, func() bool {
		return ctx.GetLoggerIfExists("transient.leaf") == nil
	})
}

func TestWeakContext_RecreatedLoggerStartsFresh(t *testing.T) {
	ctx, err := Create(false)
	require.NoError(t, err)

	require.NoError(t, createConfiguredLogger(ctx, "cfg.leaf", &captureHandler{}))
	gcUntil(t, func() bool {
		return ctx.GetLoggerIfExists("cfg.leaf") == nil
	})

	lg := ctx.GetLogger("cfg.leaf")
	assert.Nil(t, lg.GetLevel(), "configuration does not survive reclamation")
	assert.Empty(t, lg.GetHandlers())
	assert.Equal(t, InfoLevel.Value(), lg.GetEffectiveLevel())
}

func TestWeakContext_PinnedLoggerSurvivesCollection(t *testing.T) {
	ctx, err := Create(false)
	require.NoError(t, err)

	pinned, err := createPinnedLogger(ctx, "pinned.leaf")
	require.NoError(t, err)
	require.True(t, pinned)

	for i := 0; i < 5; i++ {
		runtime.GC()
	}

	lg := ctx.GetLoggerIfExists("pinned.leaf")
	require.NotNil(t, lg, "a pinned logger must survive collection")
	assert.Same(t, FinestLevel, lg.GetLevel())

	require.True(t, lg.Unpin())
	lg = nil
	gcUntil(t, func() bool {
		return ctx.GetLoggerIfExists("pinned.leaf") == nil
	})
}

func TestStrongContext_RetainsLoggers(t *testing.T) {
	ctx, err := Create(true)
	require.NoError(t, err)

	require.NoError(t, createConfiguredLogger(ctx, "kept.leaf", &captureHandler{}))
	for i := 0; i < 3; i++ {
		runtime.GC()
	}

	lg := ctx.GetLoggerIfExists("kept.leaf")
	require.NotNil(t, lg)
	assert.Same(t, FineLevel, lg.GetLevel())
	assert.Len(t, lg.GetHandlers(), 1)
}

func TestWeakLevelRegistration_Lapses(t *testing.T) {
	ctx, err := Create(true)
	require.NoError(t, err)

	require.NoError(t, registerTransientLevel(ctx, "EPHEMERAL", 650))
	gcUntil(t, func() bool {
		_, err := ctx.GetLevelForName("EPHEMERAL")
		return err != nil
	})

	_, err = ctx.GetLevelForName("EPHEMERAL")
	assert.ErrorIs(t, err, ErrLevelNotFound)
}

func TestStrongLevelRegistration_Persists(t *testing.T) {
	ctx, err := Create(true)
	require.NoError(t, err)

	require.NoError(t, ctx.RegisterLevel(NewLevel("DURABLE", 660), true))
	for i := 0; i < 3; i++ {
		runtime.GC()
	}

	level, err := ctx.GetLevelForName("DURABLE")
	require.NoError(t, err)
	assert.Equal(t, 660, level.Value())
}
