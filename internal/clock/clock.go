// Package clock abstracts time so that every wait in the engine can be run
// against a virtual clock in tests.
package clock

import (
	"context"
	"sync"
	"time"
)

// Clock is the source of time for pollers and settle delays.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

// Real is backed by the time package.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Fake is a virtual clock. Sleep returns immediately after moving the clock
// forward, so a test that waits thirty seconds finishes instantly.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	slept   time.Duration
	onSleep []func(now time.Time)
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Advance(d)
	f.mu.Lock()
	f.slept += d
	f.mu.Unlock()
	return nil
}

// Advance moves the clock forward and runs the registered hooks.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now
	hooks := append([]func(time.Time){}, f.onSleep...)
	f.mu.Unlock()
	for _, h := range hooks {
		h(now)
	}
}

// OnAdvance registers a hook called with the new time after every advance.
func (f *Fake) OnAdvance(h func(now time.Time)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSleep = append(f.onSleep, h)
}

// Slept returns the total duration passed to Sleep.
func (f *Fake) Slept() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slept
}
