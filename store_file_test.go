package session_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	session "github.com/samichen99/hap-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRequiresPath(t *testing.T) {
	_, err := session.NewFileStore("  ")
	assert.Error(t, err)
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "token")

	store, err := session.NewFileStore(path)
	require.NoError(t, err)

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, "tok-1"))

	credential, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", credential)

	// Survives a second store instance, the point of durable storage.
	reopened, err := session.NewFileStore(path)
	require.NoError(t, err)
	credential, ok, err = reopened.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", credential)

	require.NoError(t, store.Clear(ctx))
	_, ok, err = store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Clear(ctx))
}

func TestFileStoreEmptyFileIsAbsent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	store, err := session.NewFileStore(path)
	require.NoError(t, err)

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreWatchObservesExternalChanges(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token")

	store, err := session.NewFileStore(path, session.WithFileStorePollInterval(10*time.Millisecond))
	require.NoError(t, err)

	// Seed the store's view of the slot.
	require.NoError(t, store.Save(ctx, "mine"))

	var mu sync.Mutex
	var events []session.StoreEvent
	stop, err := store.Watch(ctx, func(e session.StoreEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer stop()

	// Another process swaps the credential behind our back.
	require.NoError(t, os.WriteFile(path, []byte("theirs"), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e.Present && e.Credential == "theirs" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	// And then removes it entirely.
	require.NoError(t, os.Remove(path))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if !e.Present {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestFileStoreWatchStopEndsDelivery(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token")

	store, err := session.NewFileStore(path, session.WithFileStorePollInterval(10*time.Millisecond))
	require.NoError(t, err)

	var mu sync.Mutex
	count := 0
	stop, err := store.Watch(ctx, func(session.StoreEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NoError(t, err)

	stop()
	stop() // idempotent

	require.NoError(t, store.Save(ctx, "tok"))
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, count)
}
