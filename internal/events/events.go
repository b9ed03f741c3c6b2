// Package events carries the outbound notifications of a run: progress,
// completion, fatal errors and forwarded log lines.
package events

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goapply/goapply/internal/types"
)

// Action names the kind of an event on the wire.
type Action string

const (
	ActionProgress Action = "updateProgress"
	ActionComplete Action = "automationComplete"
	ActionError    Action = "automationError"
	ActionLog      Action = "log"
)

// Event is one outbound notification. Only the fields relevant to its
// action are serialized.
type Event struct {
	Action           Action
	RunID            string
	Platform         types.Platform
	Total            int
	TotalJobsToApply int
	Error            string
	Data             string
	Time             time.Time
}

func Progress(runID string, p types.Platform, total, target int) Event {
	return Event{Action: ActionProgress, RunID: runID, Platform: p, Total: total, TotalJobsToApply: target}
}

func Complete(runID string, p types.Platform, total int) Event {
	return Event{Action: ActionComplete, RunID: runID, Platform: p, Total: total}
}

func Error(runID string, p types.Platform, err error) Event {
	return Event{Action: ActionError, RunID: runID, Platform: p, Error: err.Error()}
}

func Log(data string) Event {
	return Event{Action: ActionLog, Data: data}
}

func (e Event) MarshalJSON() ([]byte, error) {
	m := map[string]any{"action": e.Action}
	switch e.Action {
	case ActionProgress:
		m["total"] = e.Total
		m["totalJobsToApply"] = e.TotalJobsToApply
		m["platform"] = e.Platform
	case ActionComplete:
		m["total"] = e.Total
		m["platform"] = e.Platform
	case ActionError:
		m["error"] = e.Error
	case ActionLog:
		m["data"] = e.Data
	}
	if e.RunID != "" {
		m["runId"] = e.RunID
	}
	if !e.Time.IsZero() {
		m["time"] = e.Time.UTC().Format(time.RFC3339)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Emitter accepts events without blocking the caller.
type Emitter interface {
	Emit(e Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Emit(Event) {}

// componentKey marks log records written by this package so that the
// forwarding handler does not turn them into events again.
const componentKey = "component"

func logger() *slog.Logger {
	return slog.Default()
}

func attrSelf() slog.Attr {
	return slog.String(componentKey, "events")
}

// Bus queues events in a buffered channel that a single goroutine drains
// into the transport. A full buffer drops the event.
type Bus struct {
	transport Transport
	ch        chan Event
	done      chan struct{}
	dropped   atomic.Int64
	closeOnce sync.Once
	// mu guards closed against Emit racing Close.
	mu     sync.RWMutex
	closed bool
	now       func() time.Time
}

func NewBus(t Transport, size int) *Bus {
	if size <= 0 {
		size = 256
	}
	b := &Bus{
		transport: t,
		ch:        make(chan Event, size),
		done:      make(chan struct{}),
		now:       time.Now,
	}
	go b.loop()
	return b
}

func (b *Bus) Emit(e Event) {
	if e.Time.IsZero() {
		e.Time = b.now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.dropped.Add(1)
		return
	}
	select {
	case b.ch <- e:
	default:
		b.dropped.Add(1)
	}
}

// Close stops accepting events and waits until the queued ones are
// delivered. Events emitted after Close are counted as dropped.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.ch)
		b.mu.Unlock()
		<-b.done
		if n := b.dropped.Load(); n > 0 {
			logger().Warn("events were dropped because the queue was full", slog.Int64("count", n), attrSelf())
		}
	})
}

// Dropped returns the number of events lost to a full queue.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

func (b *Bus) loop() {
	defer close(b.done)
	for e := range b.ch {
		if err := b.transport.Send(e); err != nil {
			logger().Warn("failed to deliver event", slog.String("action", string(e.Action)), slog.String("err", err.Error()), attrSelf())
		}
	}
}
