package events

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/goapply/goapply/internal/types"
)

func TestNewTransport(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		withSSE bool
		want    int
		wantErr string
	}{
		{name: "none", config: Config{}, want: 0},
		{name: "log and stdout", config: Config{Transports: []TransportType{"log", " STDOUT "}}, want: 2},
		{name: "webhook", config: Config{Transports: []TransportType{"webhook"}, WebhookURL: "http://localhost:9000/events"}, want: 1},
		{name: "webhook without url", config: Config{Transports: []TransportType{"webhook"}}, wantErr: "webhook_url"},
		{name: "sse when serving", config: Config{Transports: []TransportType{"sse"}}, withSSE: true, want: 1},
		{name: "sse without server", config: Config{Transports: []TransportType{"sse"}}, wantErr: "only available when serving"},
		{name: "unknown", config: Config{Transports: []TransportType{"kafka"}}, wantErr: "not implemented"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var b *Broadcaster
			if tc.withSSE {
				b = NewBroadcaster(1)
			}
			tr, err := NewTransport(tc.config, &bytes.Buffer{}, b)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q but got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := len(tr.(Fanout)); got != tc.want {
				t.Fatalf("expected %d transports but got %d", tc.want, got)
			}
		})
	}
}

func TestNewTransportWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	tr, err := NewTransport(Config{Transports: []TransportType{StdoutTransportType}}, &buf, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Send(Complete("", types.PlatformUnstop, 4)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"action":"automationComplete","platform":"unstop","total":4}` + "\n"
	if buf.String() != want {
		t.Fatalf("expected %q but got %q", want, buf.String())
	}
}

func TestConfigLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelWarn, false},
		{"info", slog.LevelInfo, false},
		{"ERROR", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tc := range tests {
		got, err := Config{ForwardLevel: tc.in}.Level()
		if (err != nil) != tc.wantErr {
			t.Fatalf("expected error %v for %q but got %v", tc.wantErr, tc.in, err)
		}
		if !tc.wantErr && got != tc.want {
			t.Fatalf("expected level %v for %q but got %v", tc.want, tc.in, got)
		}
	}
}
