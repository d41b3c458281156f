// Package orchestrate fans out independent adapter calls with bounded
// parallelism, per-host politeness, per-call deadlines, and cancellation.
// It is thin and optional: serialized execution is always a valid way to run
// the same calls.
package orchestrate

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/quantfetch/quantfetch/pkg/fault"
)

// Call is one unit of work. Host names the target host for politeness
// accounting; leave it empty for calls with no dominant host.
type Call struct {
	Host    string
	Timeout time.Duration // optional per-call deadline
	Do      func(ctx context.Context) (any, error)
}

// HostOf extracts the hostname from a URL for use as a Call.Host.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Result pairs a call's value with its error; exactly one is meaningful.
type Result struct {
	Value any
	Err   error
}

// Runner runs batches of calls. The zero value runs everything serially
// with no politeness limits.
type Runner struct {
	// MaxInFlight caps concurrent calls overall; <=0 means serial.
	MaxInFlight int
	// PerHostRate caps request starts per host per second; <=0 disables.
	PerHostRate float64
	// PerHostBurst is the limiter burst, minimum 1.
	PerHostBurst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Run executes the calls and returns results in submission order. On
// cancellation every outstanding call observes its context and returns a
// Cancelled fault; completed results are kept.
func (r *Runner) Run(ctx context.Context, calls []Call) []Result {
	results := make([]Result, len(calls))

	parallelism := r.MaxInFlight
	if parallelism <= 0 {
		parallelism = 1
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, call := range calls {
		g.Go(func() error {
			results[i] = r.runOne(groupCtx, call)
			// Individual failures never cancel sibling calls.
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Runner) runOne(ctx context.Context, call Call) Result {
	if err := ctx.Err(); err != nil {
		return Result{Err: fault.Wrap(fault.Cancelled, "orchestrate", "run", err)}
	}

	if call.Host != "" && r.PerHostRate > 0 {
		if err := r.limiter(call.Host).Wait(ctx); err != nil {
			return Result{Err: fault.Wrap(fault.Cancelled, "orchestrate", "run", err)}
		}
	}

	callCtx := ctx
	if call.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, call.Timeout)
		defer cancel()
	}

	v, err := call.Do(callCtx)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Value: v}
}

func (r *Runner) limiter(host string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limiters == nil {
		r.limiters = make(map[string]*rate.Limiter)
	}
	l, ok := r.limiters[host]
	if !ok {
		burst := r.PerHostBurst
		if burst < 1 {
			burst = 1
		}
		l = rate.NewLimiter(rate.Limit(r.PerHostRate), burst)
		r.limiters[host] = l
	}
	return l
}
