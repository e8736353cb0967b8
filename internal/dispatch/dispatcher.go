package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"github.com/Iron-Ham/smrelease/internal/logging"
)

// Unbounded disables the concurrency limit. Any limit <= 0 is unbounded.
const Unbounded = 0

// Result summarizes one Run.
type Result struct {
	Started   int // units that began executing
	Succeeded int
	Failed    int
	Peak      int // highest number of units observed in flight at once
}

// Dispatcher runs units from a Supply with at most Limit in flight.
// A Dispatcher may be reused; each Run is independent.
type Dispatcher struct {
	Limit  int
	Logger *logging.Logger
}

// New creates a Dispatcher with the given limit.
func New(limit int, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Dispatcher{Limit: limit, Logger: logger}
}

// Run executes units with at most limit in flight and returns once every
// started unit has finished.
func Run(ctx context.Context, supply Supply, limit int) error {
	_, err := New(limit, nil).Run(ctx, supply)
	return err
}

// run holds the state shared by the workers of a single Run.
type run struct {
	ctx    context.Context
	supply Supply

	claimMu     sync.Mutex
	stopped     atomic.Bool
	interrupted atomic.Bool

	inFlight  atomic.Int64
	peak      atomic.Int64
	started   atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
}

// claim pops the next unit. Claims are serialized so a unit is handed to
// exactly one worker.
func (r *run) claim() (Task, bool) {
	r.claimMu.Lock()
	defer r.claimMu.Unlock()

	if r.stopped.Load() {
		return nil, false
	}
	if r.ctx.Err() != nil {
		r.interrupted.Store(true)
		return nil, false
	}
	return r.supply.Next()
}

func (r *run) exec(t Task) error {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	r.started.Add(1)

	if err := t(r.ctx); err != nil {
		r.stopped.Store(true)
		r.failed.Add(1)
		return err
	}
	r.succeeded.Add(1)
	return nil
}

// worker claims and awaits units until the supply is exhausted or claiming
// stops. It returns every failure it observed.
func (r *run) worker() error {
	var errs []error
	for {
		t, ok := r.claim()
		if !ok {
			return errors.Join(errs...)
		}
		if err := r.exec(t); err != nil {
			errs = append(errs, err)
		}
	}
}

// Run executes every unit the supply yields. See the package documentation
// for the failure policy.
func (d *Dispatcher) Run(ctx context.Context, supply Supply) (Result, error) {
	r := &run{ctx: ctx, supply: supply}
	p := pool.New().WithErrors()

	if d.Limit <= Unbounded {
		for {
			t, ok := r.claim()
			if !ok {
				break
			}
			p.Go(func() error { return r.exec(t) })
		}
	} else {
		for i := 0; i < d.Limit; i++ {
			p.Go(r.worker)
		}
	}

	err := p.Wait()
	if err == nil && r.interrupted.Load() {
		err = ctx.Err()
	}

	res := Result{
		Started:   int(r.started.Load()),
		Succeeded: int(r.succeeded.Load()),
		Failed:    int(r.failed.Load()),
		Peak:      int(r.peak.Load()),
	}
	d.logger().Debug("dispatch finished",
		"limit", d.Limit,
		"started", res.Started,
		"succeeded", res.Succeeded,
		"failed", res.Failed,
		"peak", res.Peak,
	)
	return res, err
}

func (d *Dispatcher) logger() *logging.Logger {
	if d.Logger == nil {
		return logging.NopLogger()
	}
	return d.Logger
}
