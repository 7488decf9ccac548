package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"
)

// Dispatcher coordinates staged engine racing for article fetches.
// It starts the lightest engine first and escalates to heavier engines if
// earlier ones fail, time out, or return a document the AcceptFunc rejects.
type Dispatcher struct {
	engines          []Engine
	escalationDelays []time.Duration
	memory           *HostMemory
	accept           AcceptFunc
}

// NewDispatcher creates a Dispatcher. engines[i] starts escalationDelays[i]
// after the race begins; missing delays default to zero. accept may be nil.
func NewDispatcher(engines []Engine, escalationDelays []time.Duration, memory *HostMemory, accept AcceptFunc) *Dispatcher {
	delays := make([]time.Duration, len(engines))
	copy(delays, escalationDelays)
	if accept == nil {
		accept = func(*FetchResult) error { return nil }
	}
	return &Dispatcher{
		engines:          engines,
		escalationDelays: delays,
		memory:           memory,
		accept:           accept,
	}
}

// Dispatch returns the first accepted result. If every engine fails it
// returns the last error.
func (d *Dispatcher) Dispatch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	host := hostOf(req.URL)

	if remembered := d.memory.Get(host); remembered != "" {
		for _, eng := range d.engines {
			if eng.Name() != remembered {
				continue
			}
			slog.Debug("host memory hit", "host", host, "engine", remembered)
			result, err := d.fetch(ctx, eng, req)
			if err == nil {
				return result, nil
			}
			slog.Info("remembered engine failed, running full race",
				"host", host, "engine", remembered, "error", err)
			d.memory.Forget(host)
			break
		}
	}

	return d.race(ctx, req, host)
}

func (d *Dispatcher) fetch(ctx context.Context, eng Engine, req *FetchRequest) (*FetchResult, error) {
	result, err := eng.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := d.accept(result); err != nil {
		return nil, fmt.Errorf("%s: %w", eng.Name(), err)
	}
	if result.EngineName == "" {
		result.EngineName = eng.Name()
	}
	return result, nil
}

func (d *Dispatcher) race(ctx context.Context, req *FetchRequest, host string) (*FetchResult, error) {
	type raceResult struct {
		result *FetchResult
		err    error
	}

	raceCtx, raceCancel := context.WithCancel(ctx)
	defer raceCancel()

	results := make(chan raceResult, len(d.engines))
	var wg sync.WaitGroup

	for i, eng := range d.engines {
		wg.Add(1)
		go func(e Engine, delay time.Duration) {
			defer wg.Done()

			if delay > 0 {
				timer := time.NewTimer(delay)
				defer timer.Stop()
				select {
				case <-raceCtx.Done():
					return
				case <-timer.C:
				}
			}
			if raceCtx.Err() != nil {
				return
			}

			slog.Debug("engine starting", "engine", e.Name(), "url", req.URL)
			result, err := d.fetch(raceCtx, e, req)
			if err != nil {
				slog.Debug("engine failed", "engine", e.Name(), "url", req.URL, "error", err)
			}
			results <- raceResult{result: result, err: err}
		}(eng, d.escalationDelays[i])
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var lastErr error
	for rr := range results {
		if rr.err != nil {
			lastErr = rr.err
			continue
		}
		raceCancel()
		slog.Debug("engine won race", "engine", rr.result.EngineName, "url", req.URL)
		d.memory.Set(host, rr.result.EngineName)
		return rr.result, nil
	}

	if lastErr == nil {
		lastErr = ctx.Err()
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("dispatcher: all engines failed for %s", req.URL)
	}
	return nil, lastErr
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
