package detector

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Registry maps collector names to constructors.
type Registry map[string]Factory

// Factory builds a collector instance.
type Factory func() Collector

// CanonicalOrder is the order collectors run in. Later collectors read flags
// written by earlier ones, so the order is part of the contract.
var CanonicalOrder = []string{
	"quick-check",
	"user-agent",
	"bridge",
	"features",
	"app-patterns",
	"custom-tabs",
	"safari-view-controller",
	"iframe",
}

// DefaultRegistry contains built-in collectors.
var DefaultRegistry = Registry{
	"quick-check":            func() Collector { return quickCheck{} },
	"user-agent":             func() Collector { return userAgentCollector{} },
	"bridge":                 func() Collector { return bridgeCollector{} },
	"features":               func() Collector { return featureCollector{} },
	"app-patterns":           func() Collector { return appPatternCollector{} },
	"custom-tabs":            func() Collector { return customTabCollector{} },
	"safari-view-controller": func() Collector { return safariViewControllerCollector{} },
	"iframe":                 func() Collector { return iframeCollector{} },
}

// BuildPipeline instantiates the named collectors in canonical order,
// regardless of the order the names were given in. No names means all.
func (r Registry) BuildPipeline(names []string) ([]Collector, error) {
	want := map[string]struct{}{}
	for _, name := range names {
		if _, ok := r[name]; !ok {
			return nil, fmt.Errorf("unknown collector: %s", name)
		}
		want[name] = struct{}{}
	}

	var pipeline []Collector
	for _, name := range CanonicalOrder {
		factory, ok := r[name]
		if !ok {
			continue
		}
		if len(want) > 0 {
			if _, selected := want[name]; !selected {
				continue
			}
		}
		pipeline = append(pipeline, factory())
	}
	return pipeline, nil
}

// Outcome is the detection result for one snapshot.
type Outcome struct {
	Source string `json:"source"`
	Result Result `json:"result"`
}

// RunBatch detects every snapshot independently, with at most workers
// detections in flight. Results keep the input order.
func RunBatch(ctx context.Context, engine *Engine, snapshots []Snapshot, workers int) ([]Outcome, error) {
	if len(snapshots) == 0 {
		return nil, nil
	}
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]Outcome, len(snapshots))
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	launched := 0
	var runErr error
	for i, snap := range snapshots {
		if err := sem.Acquire(ctx, 1); err != nil {
			runErr = err
			break
		}
		launched++
		wg.Add(1)
		go func(i int, snap Snapshot) {
			defer wg.Done()
			defer sem.Release(1)
			outcomes[i] = Outcome{Source: snap.Source, Result: engine.Detect(snap.Environment)}
		}(i, snap)
	}
	wg.Wait()

	return outcomes[:launched], runErr
}
