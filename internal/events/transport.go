package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Transport delivers a single event. Implementations are called from one
// goroutine at a time by the Bus.
type Transport interface {
	Send(e Event) error
}

// LogTransport writes events to the structured log. Log events are skipped
// since they originate from the log already.
type LogTransport struct {
	Logger *slog.Logger
}

func (t LogTransport) Send(e Event) error {
	if e.Action == ActionLog {
		return nil
	}
	l := t.Logger
	if l == nil {
		l = logger()
	}
	attrs := []any{slog.String("action", string(e.Action)), attrSelf()}
	if e.Platform != "" {
		attrs = append(attrs, slog.String("platform", string(e.Platform)))
	}
	switch e.Action {
	case ActionProgress:
		attrs = append(attrs, slog.Int("total", e.Total), slog.Int("target", e.TotalJobsToApply))
	case ActionComplete:
		attrs = append(attrs, slog.Int("total", e.Total))
	case ActionError:
		attrs = append(attrs, slog.String("err", e.Error))
	}
	l.Info("event", attrs...)
	return nil
}

// JSONLines writes one JSON document per event.
type JSONLines struct {
	mu sync.Mutex
	w  io.Writer
}

func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{w: w}
}

func (t *JSONLines) Send(e Event) error {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(e); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.w.Write(buffer.Bytes())
	return err
}

// Webhook posts every event as JSON to a URL.
type Webhook struct {
	URL      string
	User     string
	Password string
	Client   *http.Client
}

func NewWebhook(url, user, password string) *Webhook {
	return &Webhook{
		URL:      url,
		User:     user,
		Password: password,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *Webhook) Send(e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, t.URL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if t.User != "" {
		req.SetBasicAuth(t.User, t.Password)
	}
	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("error while sending event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook responded with status %d: %s", resp.StatusCode, b)
	}
	return nil
}

// Fanout sends each event to all transports and joins their errors.
type Fanout []Transport

func (f Fanout) Send(e Event) error {
	var errs []error
	for _, t := range f {
		if err := t.Send(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) Send(e Event) error {
	r.Emit(e)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Actions returns the events with the given action in emission order.
func (r *Recorder) Actions(a Action) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Action == a {
			out = append(out, e)
		}
	}
	return out
}
