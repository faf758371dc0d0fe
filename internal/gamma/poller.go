// internal/gamma/poller.go
package gamma

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrTimeout indicates the attempt budget was exhausted before the job
	// reached a terminal status.
	ErrTimeout = errors.New("gamma: generation timed out")
	// ErrGenerationFailed indicates the remote service reported the job as
	// failed.
	ErrGenerationFailed = errors.New("gamma: generation failed")
	// ErrCancelled indicates the caller cancelled the job before completion.
	ErrCancelled = errors.New("gamma: generation cancelled")
)

// StatusClient is the slice of the Gamma client the poller needs.
type StatusClient interface {
	GetGeneration(ctx context.Context, id string) (*Generation, error)
}

// Outcome is the recorded terminal result of a polled job.
type Outcome struct {
	Generation *Generation
	Err        error
}

// Poller drives asynchronous generation jobs to a terminal state. Each job
// is polled by its own loop; loops share only the cancellation flags and the
// recorded outcomes, both guarded by one mutex.
type Poller struct {
	client      StatusClient
	interval    time.Duration
	maxAttempts int

	// sleep is replaceable in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error

	mu        sync.Mutex
	cancelled map[string]bool
	outcomes  map[string]*Outcome
}

func NewPoller(client StatusClient, interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 24
	}
	return &Poller{
		client:      client,
		interval:    interval,
		maxAttempts: maxAttempts,
		sleep:       sleepCtx,
		cancelled:   make(map[string]bool),
		outcomes:    make(map[string]*Outcome),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Cancel marks a job so its polling loop stops before the next attempt. No
// further network calls are made for a cancelled job.
func (p *Poller) Cancel(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled[id] = true
}

// Outcome returns the recorded terminal result for a job, if any.
func (p *Poller) Outcome(id string) (*Outcome, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out, ok := p.outcomes[id]
	return out, ok
}

func (p *Poller) isCancelled(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled[id]
}

func (p *Poller) record(id string, out *Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// A terminal outcome is written once; a late completion never overrides
	// an already-reported timeout.
	if _, exists := p.outcomes[id]; !exists {
		p.outcomes[id] = out
	}
}

// Wait polls the job until it completes, fails, times out, or is cancelled.
// A transient status-check error is surfaced immediately; the caller decides
// whether to start over. Timeout is reported distinctly from failure.
func (p *Poller) Wait(ctx context.Context, id string) (*Generation, error) {
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if p.isCancelled(id) {
			return nil, ErrCancelled
		}

		gen, err := p.client.GetGeneration(ctx, id)
		if err != nil {
			return nil, err
		}

		switch gen.Status {
		case StatusCompleted:
			p.record(id, &Outcome{Generation: gen})
			return gen, nil
		case StatusFailed:
			p.record(id, &Outcome{Generation: gen, Err: ErrGenerationFailed})
			return gen, ErrGenerationFailed
		}

		if attempt == p.maxAttempts-1 {
			break
		}
		if err := p.sleep(ctx, p.interval); err != nil {
			return nil, err
		}
	}

	p.record(id, &Outcome{Err: ErrTimeout})
	return nil, ErrTimeout
}
