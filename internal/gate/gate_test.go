package gate

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errNotYet = errors.New("not yet")

func TestWaitSucceedsAfterRetries(t *testing.T) {
	g := New("catalog", Policy{Interval: time.Millisecond, MaxAttempts: 5})
	calls := 0
	err := g.Wait(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errNotYet
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.State() != StateReady {
		t.Errorf("state = %s, want ready", g.State())
	}
	if g.Attempts() != 3 {
		t.Errorf("attempts = %d, want 3", g.Attempts())
	}
}

func TestWaitFailsAfterMaxAttempts(t *testing.T) {
	g := New("auth", Policy{Interval: time.Millisecond, MaxAttempts: 4})
	var seen []error
	g.OnAttempt = func(_ string, err error) { seen = append(seen, err) }
	err := g.Wait(context.Background(), func() error { return errNotYet })
	if !errors.Is(err, ErrInitFailed) {
		t.Fatalf("expected ErrInitFailed, got %v", err)
	}
	if !errors.Is(err, errNotYet) {
		t.Errorf("expected last probe error to be wrapped, got %v", err)
	}
	if g.Attempts() != 4 || len(seen) != 4 {
		t.Errorf("attempts = %d, hook calls = %d, want 4", g.Attempts(), len(seen))
	}
	if g.State() != StateFailed {
		t.Errorf("state = %s, want failed", g.State())
	}
	if g.Err() == nil {
		t.Error("expected Err to be recorded")
	}
}

func TestWaitStopsOnContextCancel(t *testing.T) {
	g := New("catalog", Policy{Interval: 50 * time.Millisecond, MaxAttempts: 1000})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := g.Wait(ctx, func() error { return errNotYet })
	if !errors.Is(err, ErrInitFailed) {
		t.Fatalf("expected ErrInitFailed, got %v", err)
	}
	if g.Attempts() > 2 {
		t.Errorf("expected polling to stop early, got %d attempts", g.Attempts())
	}
}

func TestPolicyDefaults(t *testing.T) {
	p := Policy{}.normalized()
	if p.Interval != 100*time.Millisecond || p.MaxAttempts != 1 {
		t.Errorf("unexpected defaults: %+v", p)
	}
}
