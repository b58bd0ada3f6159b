package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_MutualExclusion(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	const workers = 20
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "applicantReviewed:42")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			// Read-modify-write without further synchronization; the lock
			// is the only thing keeping this race free.
			current := counter
			time.Sleep(time.Millisecond)
			counter = current + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestMemoryLocker_IndependentKeys(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	release1, err := locker.Acquire(ctx, "applicantReviewed:1")
	require.NoError(t, err)
	defer release1()

	// A different subject must not block.
	done := make(chan struct{})
	go func() {
		release2, err := locker.Acquire(ctx, "applicantReviewed:2")
		assert.NoError(t, err)
		release2()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent key blocked on held lock")
	}
}

func TestMemoryLocker_AcquireRespectsContext(t *testing.T) {
	locker := NewMemoryLocker()

	release, err := locker.Acquire(context.Background(), "key")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, "key")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryLocker_ReleaseAllowsReacquire(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "key")
	require.NoError(t, err)
	release()

	acquireCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	release2, err := locker.Acquire(acquireCtx, "key")
	require.NoError(t, err)
	release2()
}
