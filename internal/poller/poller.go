package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/luciusscala/hackmitmentra/internal/job"
	"github.com/luciusscala/hackmitmentra/internal/metrics"
)

// DefaultInterval is used when no interval is configured
const DefaultInterval = 5 * time.Second

// ErrAlreadyRunning is returned when Run is called on an active poller
var ErrAlreadyRunning = errors.New("poller already running")

// Fetcher loads the current job collection from the media backend
type Fetcher interface {
	ListJobs(ctx context.Context) ([]job.Job, error)
}

// UpdateFunc observes every applied successful fetch. prev is the list it
// replaced; hadData is false when next is the first collection ever loaded.
type UpdateFunc func(prev, next []job.Job, hadData bool)

// Config holds poller configuration
type Config struct {
	Name           string
	Interval       time.Duration
	RequestTimeout time.Duration
	MaxBackoff     time.Duration // 0 keeps the interval fixed
	Logger         *slog.Logger
	OnUpdate       UpdateFunc
}

// State is what a view renders from. Jobs is shared and must not be modified.
type State struct {
	Loading   bool
	Err       error
	Jobs      []job.Job
	HasData   bool
	FetchedAt time.Time
	Seq       uint64
}

// Poller keeps an in-memory job list in step with the backend on a fixed cadence.
//
// Every fetch is stamped with a sequence number when issued. A settled fetch
// is applied only if no newer fetch has settled before it, so overlapping
// requests resolve to the latest one issued.
type Poller struct {
	name           string
	fetcher        Fetcher
	interval       time.Duration
	requestTimeout time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
	onUpdate       UpdateFunc

	mu       sync.RWMutex
	state    State
	failures int

	updateMu sync.Mutex
	issued   atomic.Uint64
	running  atomic.Bool
	refresh  chan struct{}
	inflight sync.WaitGroup
	now      func() time.Time
}

// New creates a new Poller
func New(fetcher Fetcher, cfg *Config) *Poller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Poller{
		name:           cfg.Name,
		fetcher:        fetcher,
		interval:       interval,
		requestTimeout: cfg.RequestTimeout,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With(slog.String("view", cfg.Name)),
		onUpdate:       cfg.OnUpdate,
		state:          State{Loading: true},
		refresh:        make(chan struct{}, 1),
		now:            time.Now,
	}
}

// Name returns the view this poller serves
func (p *Poller) Name() string {
	return p.name
}

// Running reports whether Run is active
func (p *Poller) Running() bool {
	return p.running.Load()
}

// State returns a snapshot of the current state
func (p *Poller) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Run fetches immediately, then once per interval, until ctx is done.
// It returns after the timer is stopped and every in-flight fetch has settled.
func (p *Poller) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer p.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	ticker := time.NewTicker(p.interval)
	defer func() {
		ticker.Stop()
		cancel()
		p.inflight.Wait()
		p.logger.Info("Poller stopped")
	}()

	// a retry requested while inactive is covered by the initial fetch
	select {
	case <-p.refresh:
	default:
	}

	p.logger.Info("Poller started",
		slog.Duration("interval", p.interval),
		slog.Duration("max_backoff", p.maxBackoff),
	)

	p.launch(ctx)
	current := p.interval

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.launch(ctx)
		case <-p.refresh:
			p.logger.Debug("Manual refresh requested")
			p.launch(ctx)
		}

		if next := p.nextInterval(); next != current {
			p.logger.Debug("Poll interval changed",
				slog.Duration("from", current),
				slog.Duration("to", next),
			)
			ticker.Reset(next)
			current = next
		}
	}
}

// Refresh asks a running poller for an immediate fetch. It never blocks;
// requests made while one is already pending are coalesced.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Poll issues one fetch, applies its result and returns the resulting state
func (p *Poller) Poll(ctx context.Context) State {
	seq := p.issued.Add(1)

	reqCtx := ctx
	if p.requestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, p.requestTimeout)
		defer cancel()
	}

	start := time.Now()
	jobs, err := p.fetcher.ListJobs(reqCtx)
	metrics.PollFetchDurationSeconds.WithLabelValues(p.name).Observe(time.Since(start).Seconds())

	if ctx.Err() != nil {
		// deactivated while the request was in flight
		p.logger.Debug("Discarding fetch settled after deactivation", slog.Uint64("seq", seq))
		return p.State()
	}

	p.apply(seq, jobs, err)
	return p.State()
}

func (p *Poller) launch(ctx context.Context) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		p.Poll(ctx)
	}()
}

func (p *Poller) apply(seq uint64, jobs []job.Job, err error) {
	p.mu.Lock()
	if seq <= p.state.Seq {
		applied := p.state.Seq
		p.mu.Unlock()
		metrics.PollStaleDiscardedTotal.WithLabelValues(p.name).Inc()
		p.logger.Debug("Discarding stale fetch",
			slog.Uint64("seq", seq),
			slog.Uint64("applied_seq", applied),
		)
		return
	}

	prev := p.state
	p.state.Seq = seq
	p.state.Loading = false

	if err != nil {
		p.state.Err = err
		p.failures++
		failures := p.failures
		p.mu.Unlock()

		metrics.PollFetchesTotal.WithLabelValues(p.name, "error").Inc()
		p.logger.Warn("Job list fetch failed",
			slog.Uint64("seq", seq),
			slog.Int("consecutive_failures", failures),
			slog.Bool("has_data", prev.HasData),
			slog.String("error", err.Error()),
		)
		return
	}

	if jobs == nil {
		jobs = []job.Job{}
	}
	p.state.Jobs = jobs
	p.state.Err = nil
	p.state.HasData = true
	p.state.FetchedAt = p.now()
	p.failures = 0
	p.mu.Unlock()

	metrics.PollFetchesTotal.WithLabelValues(p.name, "success").Inc()
	p.recordCategories(jobs)
	p.logger.Debug("Job list updated",
		slog.Uint64("seq", seq),
		slog.Int("count", len(jobs)),
	)

	if p.onUpdate != nil {
		p.updateMu.Lock()
		defer p.updateMu.Unlock()
		p.onUpdate(prev.Jobs, jobs, prev.HasData)
	}
}

func (p *Poller) nextInterval() time.Duration {
	p.mu.RLock()
	failures := p.failures
	p.mu.RUnlock()
	return backoffInterval(p.interval, p.maxBackoff, failures)
}

// backoffInterval doubles the base interval per consecutive failure up to limit.
// A limit not above the base disables backoff.
func backoffInterval(base, limit time.Duration, failures int) time.Duration {
	if limit <= base || failures <= 0 {
		return base
	}

	next := base
	for i := 0; i < failures; i++ {
		next *= 2
		if next >= limit {
			return limit
		}
	}
	return next
}

func (p *Poller) recordCategories(jobs []job.Job) {
	counts := map[job.Category]int{
		job.CategoryCompleted:  0,
		job.CategoryProcessing: 0,
		job.CategoryFailed:     0,
		job.CategoryUnknown:    0,
	}
	for _, j := range jobs {
		counts[j.Status.Category()]++
	}
	for category, n := range counts {
		metrics.JobsByCategory.WithLabelValues(p.name, string(category)).Set(float64(n))
	}
}
