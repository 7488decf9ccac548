package engine_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/filmreview/engine"
	"github.com/use-agent/filmreview/mock"
)

// countingLauncher launches mock instances and counts launches and closes.
type countingLauncher struct {
	launched atomic.Int32
	closed   atomic.Int32
	failNext atomic.Bool
}

func (c *countingLauncher) launcher() *mock.Launcher {
	return &mock.Launcher{
		LaunchFn: func(ctx context.Context) (engine.Instance, error) {
			if c.failNext.CompareAndSwap(true, false) {
				return nil, errors.New("chromium not found")
			}
			c.launched.Add(1)
			return &mock.Instance{
				CloseFn: func() error {
					c.closed.Add(1)
					return nil
				},
			}, nil
		},
	}
}

func newPool(t *testing.T, cfg engine.PoolConfig) (*engine.BrowserPool, *countingLauncher) {
	t.Helper()
	c := &countingLauncher{}
	p := engine.NewBrowserPool(cfg, c.launcher())
	t.Cleanup(func() { _ = p.Shutdown() })
	return p, c
}

func TestBrowserPool_ReusesReleasedInstance(t *testing.T) {
	t.Parallel()
	p, c := newPool(t, engine.PoolConfig{Max: 3, Min: 1, IdleTimeout: time.Minute})
	ctx := context.Background()

	first, err := p.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Release(first))

	second, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int32(1), c.launched.Load())
	require.NoError(t, p.Release(second))
}

func TestBrowserPool_BlocksAtMaxUntilRelease(t *testing.T) {
	t.Parallel()
	p, c := newPool(t, engine.PoolConfig{Max: 2, Min: 1, IdleTimeout: time.Minute})
	ctx := context.Background()

	a, err := p.Acquire(ctx)
	require.NoError(t, err)
	b, err := p.Acquire(ctx)
	require.NoError(t, err)

	got := make(chan *engine.PooledInstance, 1)
	go func() {
		inst, err := p.Acquire(ctx)
		if err == nil {
			got <- inst
		}
	}()

	require.Eventually(t, func() bool { return p.Stats().Pending == 1 }, time.Second, 5*time.Millisecond)
	select {
	case <-got:
		t.Fatal("acquire beyond max must block")
	case <-time.After(30 * time.Millisecond):
	}

	require.NoError(t, p.Release(a))
	select {
	case inst := <-got:
		assert.Equal(t, a.ID, inst.ID)
		require.NoError(t, p.Release(inst))
	case <-time.After(time.Second):
		t.Fatal("waiter was not handed the released instance")
	}

	assert.Equal(t, int32(2), c.launched.Load())
	require.NoError(t, p.Release(b))
}

func TestBrowserPool_WaitersServedInOrder(t *testing.T) {
	t.Parallel()
	p, _ := newPool(t, engine.PoolConfig{Max: 1, Min: 1, IdleTimeout: time.Minute})
	ctx := context.Background()

	held, err := p.Acquire(ctx)
	require.NoError(t, err)

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 1; i <= 3; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			inst, err := p.Acquire(ctx)
			if err != nil {
				return
			}
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			_ = p.Release(inst)
		}(i)
		require.Eventually(t, func() bool { return p.Stats().Pending == i }, time.Second, time.Millisecond)
	}

	require.NoError(t, p.Release(held))
	wg.Wait()
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestBrowserPool_EvictsIdleAboveMin(t *testing.T) {
	t.Parallel()
	p, c := newPool(t, engine.PoolConfig{Max: 3, Min: 1, IdleTimeout: 20 * time.Millisecond})
	ctx := context.Background()

	var held []*engine.PooledInstance
	for i := 0; i < 3; i++ {
		inst, err := p.Acquire(ctx)
		require.NoError(t, err)
		held = append(held, inst)
	}
	for _, inst := range held {
		require.NoError(t, p.Release(inst))
	}

	require.Eventually(t, func() bool { return c.closed.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	stats := p.Stats()
	assert.Equal(t, 1, stats.Total, "the minimum survives idle eviction")
	assert.Equal(t, 1, stats.Available)
	assert.Equal(t, int32(2), c.closed.Load())
}

func TestBrowserPool_ReacquireCancelsEviction(t *testing.T) {
	t.Parallel()
	p, c := newPool(t, engine.PoolConfig{Max: 2, Min: 0, IdleTimeout: 30 * time.Millisecond})
	ctx := context.Background()

	inst, err := p.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Release(inst))

	again, err := p.Acquire(ctx)
	require.NoError(t, err)
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, int32(0), c.closed.Load(), "checked-out instance must not be evicted")
	require.NoError(t, p.Release(again))
	require.Eventually(t, func() bool { return c.closed.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestBrowserPool_ShutdownRejectsWaiters(t *testing.T) {
	t.Parallel()
	p, c := newPool(t, engine.PoolConfig{Max: 1, Min: 1, IdleTimeout: time.Minute})
	ctx := context.Background()

	held, err := p.Acquire(ctx)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := p.Acquire(ctx)
		errCh <- err
	}()
	require.Eventually(t, func() bool { return p.Stats().Pending == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, p.Shutdown())
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, engine.ErrPoolClosed)
	case <-time.After(time.Second):
		t.Fatal("waiter was not rejected")
	}

	_, err = p.Acquire(ctx)
	assert.ErrorIs(t, err, engine.ErrPoolClosed)

	require.NoError(t, p.Release(held))
	assert.Equal(t, int32(1), c.closed.Load(), "instance released after shutdown is closed")
}

func TestBrowserPool_ShutdownClosesIdle(t *testing.T) {
	t.Parallel()
	p, c := newPool(t, engine.PoolConfig{Max: 2, Min: 2, IdleTimeout: time.Minute})

	require.NoError(t, p.Warm(context.Background()))
	assert.Equal(t, 2, p.Stats().Available)

	require.NoError(t, p.Shutdown())
	assert.Equal(t, int32(2), c.closed.Load())
	assert.Equal(t, 0, p.Stats().Total)
}

func TestBrowserPool_DoubleReleaseFails(t *testing.T) {
	t.Parallel()
	p, _ := newPool(t, engine.PoolConfig{Max: 1, Min: 1, IdleTimeout: time.Minute})

	inst, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Release(inst))
	assert.ErrorIs(t, p.Release(inst), engine.ErrNotCheckedOut)
	assert.ErrorIs(t, p.Release(nil), engine.ErrNotCheckedOut)
}

func TestBrowserPool_LaunchFailureFreesSlot(t *testing.T) {
	t.Parallel()
	p, c := newPool(t, engine.PoolConfig{Max: 1, Min: 1, IdleTimeout: time.Minute})
	c.failNext.Store(true)

	_, err := p.Acquire(context.Background())
	require.ErrorIs(t, err, engine.ErrLaunchFailed)
	assert.Equal(t, 0, p.Stats().Total)

	inst, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Release(inst))
}

func TestBrowserPool_CancelledWaiterLeavesQueue(t *testing.T) {
	t.Parallel()
	p, _ := newPool(t, engine.PoolConfig{Max: 1, Min: 1, IdleTimeout: time.Minute})

	held, err := p.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, p.Stats().Pending)

	require.NoError(t, p.Release(held))
	assert.Equal(t, 1, p.Stats().Available)
}
