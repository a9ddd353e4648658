// Package health reports the state of the service's dependencies.
package health

import (
	"context"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"
)

const (
	StatusOK            = "ok"
	StatusError         = "error"
	StatusNotConfigured = "not_configured"
)

// Checker checks one dependency. A nil Checker means the dependency is not
// configured.
type Checker func(ctx context.Context) error

// Result is the outcome of one check.
type Result struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// Healthy reports whether no check failed. Unconfigured checks do not count.
func Healthy(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusError {
			return false
		}
	}
	return true
}

// Run executes all checks concurrently, each bounded by timeout, and returns
// the results sorted by name.
func Run(ctx context.Context, checks map[string]Checker, timeout time.Duration) []Result {
	p := pool.NewWithResults[Result]()
	for name, check := range checks {
		p.Go(func() Result {
			return run(ctx, name, check, timeout)
		})
	}
	results := p.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}

func run(ctx context.Context, name string, check Checker, timeout time.Duration) Result {
	if check == nil {
		return Result{Name: name, Status: StatusNotConfigured}
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := check(ctx)
	result := Result{Name: name, Status: StatusOK, LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		result.Status = StatusError
		result.Error = err.Error()
	}
	return result
}
