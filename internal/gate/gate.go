// Package gate blocks start-up until a required configuration becomes
// available, polling at a fixed interval for a bounded number of attempts.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	util "github.com/CodeAndHammer/gamescope/internal/util"
)

// ErrInitFailed is wrapped by the error Wait returns once attempts run out.
var ErrInitFailed = errors.New("initialization failed")

type State string

const (
	StatePending State = "pending"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

type Policy struct {
	Interval    time.Duration
	MaxAttempts int
}

func (p Policy) normalized() Policy {
	if p.Interval <= 0 {
		p.Interval = 100 * time.Millisecond
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	return p
}

// Gate tracks one configuration wait. It is safe to read its state from other
// goroutines while Wait is running.
type Gate struct {
	name   string
	policy Policy

	// OnAttempt, when set, is called after every probe.
	OnAttempt func(name string, err error)

	mu       sync.RWMutex
	state    State
	attempts int
	err      error
}

func New(name string, policy Policy) *Gate {
	return &Gate{name: name, policy: policy.normalized(), state: StatePending}
}

func (g *Gate) Name() string { return g.name }

func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *Gate) Attempts() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.attempts
}

func (g *Gate) Err() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.err
}

// Wait runs probe until it succeeds, the attempts are exhausted, or ctx is
// done. The gate ends in StateReady or StateFailed.
func (g *Gate) Wait(ctx context.Context, probe func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(g.policy.Interval), uint64(g.policy.MaxAttempts-1)),
		ctx,
	)

	op := func() error {
		err := probe()
		g.mu.Lock()
		g.attempts++
		g.mu.Unlock()
		if g.OnAttempt != nil {
			g.OnAttempt(g.name, err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		util.LogWarn("%s configuration not available (%v), retrying in %v", g.name, err, next)
	}

	err := backoff.RetryNotify(op, policy, notify)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.state = StateFailed
		g.err = fmt.Errorf("%w: %s after %d attempts: %w", ErrInitFailed, g.name, g.attempts, err)
		return g.err
	}
	g.state = StateReady
	g.err = nil
	util.LogInfo("%s configuration ready after %d attempt%s", g.name, g.attempts, util.Plural(g.attempts))
	return nil
}
