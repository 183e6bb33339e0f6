package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLocker_SerializesSameKey(t *testing.T) {
	locker := NewInMemoryLocker()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "user:1", time.Second)
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Empty(t, locker.locks, "released keys are forgotten")
}

func TestInMemoryLocker_DifferentKeysDoNotBlock(t *testing.T) {
	locker := NewInMemoryLocker()
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, "user:a", time.Second)
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	releaseB, err := locker.Acquire(ctx, "user:b", time.Second)
	require.NoError(t, err)
	releaseB()
}

func TestInMemoryLocker_TimesOut(t *testing.T) {
	locker := NewInMemoryLocker()

	release, err := locker.Acquire(context.Background(), "guest:g", time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "guest:g", time.Second)
	assert.ErrorIs(t, err, shared.ErrLockNotAcquired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release()

	again, err := locker.Acquire(context.Background(), "guest:g", time.Second)
	require.NoError(t, err, "double release must not leave the key locked")
	again()
}
