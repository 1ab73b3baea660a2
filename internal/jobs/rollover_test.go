package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeRoller struct {
	mu     sync.Mutex
	calls  int
	period string
	err    error
}

func (f *fakeRoller) RolloverIfNeeded(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.calls == 1, f.err
}

func (f *fakeRoller) Period() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.period
}

func (f *fakeRoller) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRolloverJob_ChecksOnStartAndTick(t *testing.T) {
	roller := &fakeRoller{period: "2025-02"}
	job := NewRolloverJob(roller, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for roller.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if roller.count() < 3 {
		t.Errorf("expected at least 3 checks, got %d", roller.count())
	}
}

func TestRolloverJob_ToleratesErrors(t *testing.T) {
	roller := &fakeRoller{period: "2025-02", err: errors.New("disk full")}
	job := NewRolloverJob(roller, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := job.Run(ctx); err != nil {
		t.Errorf("Run returned %v", err)
	}
	if roller.count() != 1 {
		t.Errorf("expected the startup check, got %d calls", roller.count())
	}
}

func TestNewRolloverJob_DefaultInterval(t *testing.T) {
	job := NewRolloverJob(&fakeRoller{}, 0)
	if job.interval != time.Hour {
		t.Errorf("expected 1h default, got %s", job.interval)
	}
}
