package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/use-agent/bestseller/models"
)

// Dispatcher coordinates multi-engine racing with staged escalation.
// It starts the cheapest engine first and escalates to heavier ones when
// earlier ones fail, come back without items, or run too long.
type Dispatcher struct {
	engines          []Engine
	escalationDelays []time.Duration
}

// NewDispatcher creates a Dispatcher with the given engines and escalation delays.
// engines[i] starts after escalationDelays[i] from the race beginning.
// Missing delays are zero.
func NewDispatcher(engines []Engine, escalationDelays []time.Duration) *Dispatcher {
	delays := make([]time.Duration, len(engines))
	copy(delays, escalationDelays)
	return &Dispatcher{
		engines:          engines,
		escalationDelays: delays,
	}
}

// Engines returns the engines in escalation order.
func (d *Dispatcher) Engines() []Engine { return d.engines }

// Dispatch races the engines for req.
//
// The first result that wins (see wins) cancels the rest. An engine that
// finishes without a winning result releases the next waiting engine
// early. When nothing wins, the latest partial result is returned,
// preferring one that found the container; when every engine errors, the
// last error is.
func (d *Dispatcher) Dispatch(ctx context.Context, req *models.ExtractRequest) (*Result, error) {
	if len(d.engines) == 0 {
		return nil, fmt.Errorf("dispatcher: no engines configured")
	}

	type raceResult struct {
		result *Result
		err    error
	}

	raceCtx, raceCancel := context.WithCancel(ctx)
	defer raceCancel()

	results := make(chan raceResult, len(d.engines))
	advance := make(chan struct{}, len(d.engines))
	var wg sync.WaitGroup

	for i, eng := range d.engines {
		delay := d.escalationDelays[i]
		wg.Add(1)
		go func(e Engine, delay time.Duration) {
			defer wg.Done()

			if delay > 0 {
				timer := time.NewTimer(delay)
				defer timer.Stop()
				select {
				case <-raceCtx.Done():
					return
				case <-advance:
				case <-timer.C:
				}
			}

			// Check if another engine already won.
			if raceCtx.Err() != nil {
				return
			}

			slog.Debug("engine starting", "engine", e.Name(), "url", req.URL)
			result, err := e.Extract(raceCtx, req)
			if err == nil && result == nil {
				err = fmt.Errorf("%s: returned no result", e.Name())
			}
			if err != nil {
				slog.Debug("engine failed", "engine", e.Name(), "url", req.URL, "error", err)
			}
			results <- raceResult{result: result, err: err}
		}(eng, delay)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var partial *Result
	var lastErr error
	for rr := range results {
		if rr.err == nil && wins(rr.result) {
			raceCancel()
			slog.Info("engine won race", "engine", rr.result.EngineName, "url", req.URL)
			return rr.result, nil
		}

		if rr.err != nil {
			lastErr = rr.err
		} else {
			if partial == nil || rr.result.ContainerFound() || !partial.ContainerFound() {
				partial = rr.result
			}
			slog.Info("engine finished without items", "engine", rr.result.EngineName,
				"url", req.URL, "container", rr.result.ContainerFound())
		}
		advance <- struct{}{}
	}

	if partial != nil {
		return partial, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("dispatcher: all engines failed for %s", req.URL)
	}
	return nil, lastErr
}

// wins reports whether r ends the race. A container without items is a
// server-rendered placeholder the browser may still hydrate.
func wins(r *Result) bool {
	return r.ContainerFound() && len(r.Items) > 0
}
