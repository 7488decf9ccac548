package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrPoolClosed is returned by Acquire after Shutdown and delivered to
	// every caller still waiting when Shutdown runs.
	ErrPoolClosed = errors.New("browser pool is shut down")

	// ErrNotCheckedOut is returned when releasing an instance that is idle,
	// unknown or already released.
	ErrNotCheckedOut = errors.New("instance is not checked out")

	// ErrLaunchFailed wraps launcher errors.
	ErrLaunchFailed = errors.New("browser launch failed")
)

// PoolConfig holds the sizing of a BrowserPool.
type PoolConfig struct {
	Max         int
	Min         int
	IdleTimeout time.Duration
}

// PooledInstance is a browser instance handed out by the pool. Between
// Acquire and Release it belongs to the caller.
type PooledInstance struct {
	ID       int64
	Instance Instance

	inUse     bool
	idleGen   uint64
	idleTimer *time.Timer
}

// grant is what a waiter receives: an instance, a reserved launch slot, or
// an error.
type grant struct {
	inst   *PooledInstance
	launch bool
	err    error
}

type waiter struct {
	ch chan grant
}

// BrowserPool bounds the number of live browser instances. Idle instances
// are reused most-recently-released first, callers beyond Max wait in FIFO
// order, and idle instances above Min are closed after IdleTimeout.
type BrowserPool struct {
	cfg      PoolConfig
	launcher Launcher

	mu        sync.Mutex
	all       map[int64]*PooledInstance // launched and not yet closed
	idle      []*PooledInstance         // stack, top is most recent
	waiters   []*waiter                 // queue, head is oldest
	launching int                       // slots reserved by in-flight launches
	nextID    int64
	closed    bool
}

// NewBrowserPool creates an empty pool. Nothing is launched until the first
// Acquire or Warm.
func NewBrowserPool(cfg PoolConfig, launcher Launcher) *BrowserPool {
	if cfg.Max < 1 {
		cfg.Max = 1
	}
	if cfg.Min < 0 {
		cfg.Min = 0
	}
	if cfg.Min > cfg.Max {
		cfg.Min = cfg.Max
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Second
	}
	return &BrowserPool{
		cfg:      cfg,
		launcher: launcher,
		all:      make(map[int64]*PooledInstance),
	}
}

// Acquire returns an instance for exclusive use. It reuses an idle instance,
// launches a new one while fewer than Max exist, or blocks until another
// caller releases one. Every successful Acquire must be paired with exactly
// one Release.
func (p *BrowserPool) Acquire(ctx context.Context) (*PooledInstance, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}

	if n := len(p.idle); n > 0 {
		inst := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.checkoutLocked(inst)
		p.mu.Unlock()
		slog.Debug("pool: reused idle instance", "id", inst.ID)
		return inst, nil
	}

	if len(p.all)+p.launching < p.cfg.Max {
		p.launching++
		p.mu.Unlock()
		return p.launch(ctx)
	}

	w := &waiter{ch: make(chan grant, 1)}
	p.waiters = append(p.waiters, w)
	pending := len(p.waiters)
	p.mu.Unlock()
	slog.Debug("pool: at capacity, waiting", "pending", pending)

	select {
	case g := <-w.ch:
		return p.accept(ctx, g)
	case <-ctx.Done():
		p.mu.Lock()
		removed := p.removeWaiterLocked(w)
		p.mu.Unlock()
		if !removed {
			// A grant was sent before we could leave the queue.
			p.abandon(<-w.ch)
		}
		return nil, ctx.Err()
	}
}

// Release returns inst to the pool. A waiting caller receives it directly;
// otherwise it becomes idle and may be evicted after IdleTimeout. After
// Shutdown the instance is closed instead.
func (p *BrowserPool) Release(inst *PooledInstance) error {
	if inst == nil {
		return ErrNotCheckedOut
	}

	p.mu.Lock()
	if cur, ok := p.all[inst.ID]; !ok || cur != inst || !inst.inUse {
		p.mu.Unlock()
		return ErrNotCheckedOut
	}

	if p.closed {
		inst.inUse = false
		delete(p.all, inst.ID)
		p.mu.Unlock()
		return inst.Instance.Close()
	}

	if len(p.waiters) > 0 {
		w := p.waiters[0]
		p.waiters = p.waiters[1:]
		w.ch <- grant{inst: inst}
		p.mu.Unlock()
		slog.Debug("pool: handed instance to waiter", "id", inst.ID)
		return nil
	}

	inst.inUse = false
	inst.idleGen++
	gen := inst.idleGen
	inst.idleTimer = time.AfterFunc(p.cfg.IdleTimeout, func() { p.evict(inst, gen) })
	p.idle = append(p.idle, inst)
	p.mu.Unlock()
	return nil
}

// Warm launches instances until at least Min exist and leaves them idle.
func (p *BrowserPool) Warm(ctx context.Context) error {
	acquired := make([]*PooledInstance, 0, p.cfg.Min)
	var err error
	for i := 0; i < p.cfg.Min; i++ {
		var inst *PooledInstance
		inst, err = p.Acquire(ctx)
		if err != nil {
			break
		}
		acquired = append(acquired, inst)
	}
	for _, inst := range acquired {
		if rerr := p.Release(inst); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}
	return err
}

// Shutdown closes every idle instance and fails every waiter with
// ErrPoolClosed. Instances still checked out are closed when released.
func (p *BrowserPool) Shutdown() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true

	idle := p.idle
	p.idle = nil
	for _, inst := range idle {
		if inst.idleTimer != nil {
			inst.idleTimer.Stop()
		}
		delete(p.all, inst.ID)
	}

	for _, w := range p.waiters {
		w.ch <- grant{err: ErrPoolClosed}
	}
	p.waiters = nil
	p.mu.Unlock()

	var errs []error
	for _, inst := range idle {
		if err := inst.Instance.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close instance %d: %w", inst.ID, err))
		}
	}
	slog.Info("pool: shut down", "closed", len(idle))
	return errors.Join(errs...)
}

// Stats returns a snapshot of the pool.
func (p *BrowserPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Total:     len(p.all) + p.launching,
		Available: len(p.idle),
		InUse:     len(p.all) - len(p.idle),
		Pending:   len(p.waiters),
		Max:       p.cfg.Max,
		Min:       p.cfg.Min,
	}
}

// PoolStats is a point-in-time view of pool occupancy.
type PoolStats struct {
	Total     int
	Available int
	InUse     int
	Pending   int
	Max       int
	Min       int
}

// launch starts an instance in a slot the caller already reserved.
func (p *BrowserPool) launch(ctx context.Context) (*PooledInstance, error) {
	bi, err := p.launcher.Launch(ctx)

	p.mu.Lock()
	p.launching--
	if err != nil {
		p.passSlotLocked()
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrLaunchFailed, err)
	}
	if p.closed {
		p.mu.Unlock()
		_ = bi.Close()
		return nil, ErrPoolClosed
	}
	p.nextID++
	inst := &PooledInstance{ID: p.nextID, Instance: bi, inUse: true}
	p.all[inst.ID] = inst
	total := len(p.all)
	p.mu.Unlock()

	slog.Debug("pool: launched instance", "id", inst.ID, "total", total)
	return inst, nil
}

// passSlotLocked offers a freed launch slot to the oldest waiter.
func (p *BrowserPool) passSlotLocked() {
	if p.closed || len(p.waiters) == 0 {
		return
	}
	w := p.waiters[0]
	p.waiters = p.waiters[1:]
	p.launching++
	w.ch <- grant{launch: true}
}

func (p *BrowserPool) accept(ctx context.Context, g grant) (*PooledInstance, error) {
	switch {
	case g.err != nil:
		return nil, g.err
	case g.launch:
		return p.launch(ctx)
	default:
		return g.inst, nil
	}
}

// abandon returns a grant received by a caller that gave up waiting.
func (p *BrowserPool) abandon(g grant) {
	switch {
	case g.inst != nil:
		if err := p.Release(g.inst); err != nil {
			slog.Warn("pool: release abandoned instance", "id", g.inst.ID, "error", err)
		}
	case g.launch:
		p.mu.Lock()
		p.launching--
		p.passSlotLocked()
		p.mu.Unlock()
	}
}

func (p *BrowserPool) checkoutLocked(inst *PooledInstance) {
	inst.inUse = true
	inst.idleGen++
	if inst.idleTimer != nil {
		inst.idleTimer.Stop()
		inst.idleTimer = nil
	}
}

func (p *BrowserPool) removeWaiterLocked(w *waiter) bool {
	for i, cur := range p.waiters {
		if cur == w {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			return true
		}
	}
	return false
}

// evict closes inst if it is still idle from the release that scheduled
// this timer and the pool holds more than Min idle instances.
func (p *BrowserPool) evict(inst *PooledInstance, gen uint64) {
	p.mu.Lock()
	if p.closed || inst.inUse || inst.idleGen != gen || len(p.idle) <= p.cfg.Min {
		p.mu.Unlock()
		return
	}
	for i, cur := range p.idle {
		if cur == inst {
			p.idle = append(p.idle[:i], p.idle[i+1:]...)
			break
		}
	}
	delete(p.all, inst.ID)
	inst.idleTimer = nil
	p.mu.Unlock()

	if err := inst.Instance.Close(); err != nil {
		slog.Warn("pool: close idle instance", "id", inst.ID, "error", err)
		return
	}
	slog.Debug("pool: evicted idle instance", "id", inst.ID)
}
