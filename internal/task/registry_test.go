package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterCancelFinish(t *testing.T) {
	r := NewRegistry()
	tok := NewToken(context.Background())

	id := r.Register("metadata", tok)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.Cancel(id))
	assert.False(t, r.Cancel(id), "second cancel on a live entry returns false")
	assert.Equal(t, TokenCancelRequested, tok.State())

	r.Finish(id)
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Cancel(id), "finished handles are unknown")
}

func TestRegistry_CancelUnknownHandle(t *testing.T) {
	r := NewRegistry()

	assert.False(t, r.Cancel(uuid.New()))
	assert.False(t, r.Cancel(uuid.Nil))
}

func TestRegistry_HandlesAreNotReusedWhileLive(t *testing.T) {
	r := NewRegistry()

	var mu sync.Mutex
	seen := make(map[uuid.UUID]bool)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := r.Register("hash", NewToken(context.Background()))
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, seen[id])
			seen[id] = true
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, r.Len())
}

func TestRegistry_Snapshot(t *testing.T) {
	r := NewRegistry()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	first := r.Register("metadata", NewToken(context.Background()))
	second := r.Register("image", NewToken(context.Background()))
	r.SetStatus(second, TaskStatusRunning)
	require.True(t, r.Cancel(first))

	snap := r.Snapshot()
	require.Len(t, snap, 2)

	assert.Equal(t, first, snap[0].Handle)
	assert.Equal(t, "metadata", snap[0].Type)
	assert.Equal(t, TaskStatusCreated, snap[0].Status)
	assert.Equal(t, TokenCancelRequested, snap[0].Token)
	assert.Equal(t, base.Add(time.Second), snap[0].RegisteredAt)

	assert.Equal(t, second, snap[1].Handle)
	assert.Equal(t, TaskStatusRunning, snap[1].Status)
	assert.Equal(t, TokenActive, snap[1].Token)

	r.SetStatus(uuid.New(), TaskStatusRunning)
	assert.Equal(t, 2, r.Len())
}
