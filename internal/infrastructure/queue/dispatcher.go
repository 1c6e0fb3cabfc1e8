package queue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ticketing/user-service/internal/api/metrics"
	"github.com/ticketing/user-service/internal/core/ports"
)

const (
	defaultWorkers     = 4
	defaultMaxAttempts = 3
	defaultTimeout     = 5 * time.Second
	defaultBackoff     = 500 * time.Millisecond
	channelBuffer      = 256
)

// ErrQueueFull is returned when the worker owning a username has no room left.
var ErrQueueFull = errors.New("identity sync queue is full")

// ErrDispatcherStopped is returned by enqueues after Stop.
var ErrDispatcherStopped = errors.New("identity sync dispatcher stopped")

type jobKind string

const (
	jobCreate     jobKind = "create"
	jobDeactivate jobKind = "deactivate"
)

type job struct {
	kind     jobKind
	username string
	payload  ports.UserPayload
}

// Options tunes the dispatcher. Zero values fall back to defaults.
type Options struct {
	Workers     int
	MaxAttempts int
	// Timeout bounds each individual attempt against the identity provider.
	Timeout time.Duration
	// Backoff is the delay before the second attempt; it doubles afterwards.
	Backoff time.Duration
}

// Dispatcher implements ports.IdentityProvider by queueing calls for a
// fixed set of workers. Jobs are routed with consistent hashing on the
// username, so an account's create always reaches the provider before its
// deactivation.
type Dispatcher struct {
	workers []chan job
	target  ports.IdentityProvider
	opts    Options
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher forwarding to target.
func NewDispatcher(target ports.IdentityProvider, opts Options, log zerolog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	d := &Dispatcher{
		workers: make([]chan job, opts.Workers),
		target:  target,
		opts:    opts,
		log:     log.With().Str("component", "identity_dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit when ctx is cancelled
// or after Stop has drained their channel.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Stop rejects further jobs and waits for queued ones to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// CreateAccount queues account creation. It never blocks.
func (d *Dispatcher) CreateAccount(_ context.Context, payload ports.UserPayload) error {
	return d.enqueue(job{kind: jobCreate, username: payload.UserName, payload: payload})
}

// DeactivateAccount queues account deactivation. It never blocks.
func (d *Dispatcher) DeactivateAccount(_ context.Context, username string) error {
	return d.enqueue(job{kind: jobDeactivate, username: username})
}

func (d *Dispatcher) enqueue(j job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}

	idx := d.shardIndex(j.username)
	select {
	case d.workers[idx] <- j:
		metrics.IdentityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		metrics.IdentitySyncTotal.WithLabelValues(string(j.kind), "rejected").Inc()
		return fmt.Errorf("%s %q: %w", j.kind, j.username, ErrQueueFull)
	}
}

// shardIndex maps a username deterministically to a worker index.
func (d *Dispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			metrics.IdentityQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

			start := time.Now()
			err := d.process(ctx, j)
			metrics.IdentitySyncDuration.WithLabelValues(string(j.kind)).Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.IdentitySyncTotal.WithLabelValues(string(j.kind), "failed").Inc()
				d.log.Error().Err(err).
					Str("username", j.username).
					Str("kind", string(j.kind)).
					Int("worker_id", id).
					Msg("identity sync gave up")
				continue
			}
			metrics.IdentitySyncTotal.WithLabelValues(string(j.kind), "ok").Inc()
		}
	}
}

// process runs j with up to MaxAttempts attempts, doubling the backoff
// between them. Errors that report Retryable() == false stop immediately.
func (d *Dispatcher) process(ctx context.Context, j job) error {
	backoff := d.opts.Backoff
	var err error
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		err = d.attempt(ctx, j)
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt == d.opts.MaxAttempts {
			break
		}
		d.log.Warn().Err(err).Str("username", j.username).Int("attempt", attempt).Msg("identity sync failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

func (d *Dispatcher) attempt(ctx context.Context, j job) error {
	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	switch j.kind {
	case jobCreate:
		return d.target.CreateAccount(ctx, j.payload)
	case jobDeactivate:
		return d.target.DeactivateAccount(ctx, j.username)
	default:
		return fmt.Errorf("unknown job kind %q", j.kind)
	}
}

func retryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return true
}
