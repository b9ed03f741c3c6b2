package clock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFakeSleepAdvances(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)
	var seen time.Time
	f.OnAdvance(func(now time.Time) { seen = now })
	if err := f.Sleep(context.Background(), 30*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.Now().Sub(start); got != 30*time.Second {
		t.Fatalf("expected clock to move 30s but got %v", got)
	}
	if !seen.Equal(f.Now()) {
		t.Fatalf("expected hook to see %v but got %v", f.Now(), seen)
	}
	if f.Slept() != 30*time.Second {
		t.Fatalf("expected 30s slept but got %v", f.Slept())
	}
}

func TestFakeSleepCancelled(t *testing.T) {
	f := NewFake(time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.Sleep(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled but got %v", err)
	}
}

func TestRealSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (Real{}).Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled but got %v", err)
	}
}
