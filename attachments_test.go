package logctx

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttach_ReturnsPrevious(t *testing.T) {
	ctx, err := Create(true)
	require.NoError(t, err)
	key := NewAttachmentKey("tenant")

	prev, err := ctx.Attach(key, "acme")
	require.NoError(t, err)
	assert.Nil(t, prev)

	prev, err = ctx.Attach(key, "globex")
	require.NoError(t, err)
	assert.Equal(t, "acme", prev)
	assert.Equal(t, "globex", ctx.GetAttachment(key))
}

func TestAttach_InvalidArguments(t *testing.T) {
	ctx, err := Create(true)
	require.NoError(t, err)
	key := NewAttachmentKey("k")

	tests := []struct {
		name    string
		op      func() (any, error)
		wantErr error
	}{
		{"attach nil key", func() (any, error) { return ctx.Attach(nil, "v") }, ErrNilKey},
		{"attach nil value", func() (any, error) { return ctx.Attach(key, nil) }, ErrNilValue},
		{"attach-if-absent nil key", func() (any, error) { return ctx.AttachIfAbsent(nil, "v") }, ErrNilKey},
		{"attach-if-absent nil value", func() (any, error) { return ctx.AttachIfAbsent(key, nil) }, ErrNilValue},
		{"detach nil key", func() (any, error) { return ctx.Detach(nil) }, ErrNilKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op()
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetAttachment_NilKey(t *testing.T) {
	ctx, err := Create(true)
	require.NoError(t, err)
	assert.Nil(t, ctx.GetAttachment(nil))
}

func TestAttachmentKeys_ComparedByIdentity(t *testing.T) {
	ctx, err := Create(true)
	require.NoError(t, err)

	k1 := NewAttachmentKey("same-name")
	k2 := NewAttachmentKey("same-name")

	_, err = ctx.Attach(k1, "one")
	require.NoError(t, err)
	assert.Nil(t, ctx.GetAttachment(k2), "distinct keys with equal names must not collide")
}

func TestAttachIfAbsent_PreservesExisting(t *testing.T) {
	ctx, err := Create(true)
	require.NoError(t, err)
	key := NewAttachmentKey("region")

	existing, err := ctx.AttachIfAbsent(key, "eu-west")
	require.NoError(t, err)
	assert.Nil(t, existing)

	existing, err = ctx.AttachIfAbsent(key, "us-east")
	require.NoError(t, err)
	assert.Equal(t, "eu-west", existing)
	assert.Equal(t, "eu-west", ctx.GetAttachment(key))
}

func TestDetach_ReturnsRemoved(t *testing.T) {
	ctx, err := Create(true)
	require.NoError(t, err)
	key := NewAttachmentKey("token")

	removed, err := ctx.Detach(key)
	require.NoError(t, err)
	assert.Nil(t, removed)

	_, err = ctx.Attach(key, 42)
	require.NoError(t, err)

	removed, err = ctx.Detach(key)
	require.NoError(t, err)
	assert.Equal(t, 42, removed)
	assert.Nil(t, ctx.GetAttachment(key))
}

func TestDetach_LastEntryRestoresCanonicalEmpty(t *testing.T) {
	ctx, err := Create(true)
	require.NoError(t, err)

	initial := ctx.attachments.snap.Load()
	assert.Same(t, emptyAttachments, initial)

	key := NewAttachmentKey("only")
	_, err = ctx.Attach(key, "v")
	require.NoError(t, err)
	assert.NotSame(t, emptyAttachments, ctx.attachments.snap.Load())

	_, err = ctx.Detach(key)
	require.NoError(t, err)
	assert.Same(t, emptyAttachments, ctx.attachments.snap.Load(),
		"removing the final entry must install the canonical empty snapshot")
}

func TestAttachIfAbsent_ConcurrentSingleWinner(t *testing.T) {
	ctx, err := Create(true)
	require.NoError(t, err)
	key := NewAttachmentKey("winner")

	const n = 32
	results := make([]any, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := ctx.AttachIfAbsent(key, i)
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}
	wg.Wait()

	winners := 0
	final := ctx.GetAttachment(key)
	for i, got := range results {
		if got == nil {
			winners++
			assert.Equal(t, i, final, "the winner's value must be the one attached")
		}
	}
	assert.Equal(t, 1, winners, "exactly one racing caller may succeed")
}

func TestAttachments_ConcurrentReadersNeverBlocked(t *testing.T) {
	ctx, err := Create(true)
	require.NoError(t, err)

	const writers = 8
	keys := make([]*AttachmentKey, writers)
	for i := range keys {
		keys[i] = NewAttachmentKey("w" + strconv.Itoa(i))
	}

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for iter := 0; iter < 100; iter++ {
				_, err := ctx.Attach(keys[i], iter)
				assert.NoError(t, err)
				if iter%3 == 0 {
					_, err = ctx.Detach(keys[i])
					assert.NoError(t, err)
				}
			}
			_, err := ctx.Attach(keys[i], "final")
			assert.NoError(t, err)
		}(i)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for iter := 0; iter < 400; iter++ {
				for _, k := range keys {
					_ = ctx.GetAttachment(k)
				}
			}
		}()
	}
	wg.Wait()

	for _, k := range keys {
		assert.Equal(t, "final", ctx.GetAttachment(k))
	}
}

func TestLoggerAttachments_IndependentOfContext(t *testing.T) {
	ctx, err := Create(true)
	require.NoError(t, err)
	key := NewAttachmentKey("shared-key")

	lg := ctx.GetLogger("svc")
	_, err = ctx.Attach(key, "on-context")
	require.NoError(t, err)
	_, err = lg.Attach(key, "on-logger")
	require.NoError(t, err)

	assert.Equal(t, "on-context", ctx.GetAttachment(key))
	assert.Equal(t, "on-logger", lg.GetAttachment(key))
	assert.Equal(t, "on-logger", ctx.GetLoggerAttachment("svc", key))
}

func TestGetLoggerAttachment_MissingLogger(t *testing.T) {
	ctx, err := Create(true)
	require.NoError(t, err)
	key := NewAttachmentKey("k")

	assert.Nil(t, ctx.GetLoggerAttachment("never.created", key))
}
