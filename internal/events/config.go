package events

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// TransportType names one delivery target of the event bus.
type TransportType string

const (
	LogTransportType     TransportType = "log"
	StdoutTransportType  TransportType = "stdout"
	WebhookTransportType TransportType = "webhook"
	SSETransportType     TransportType = "sse"
)

// Config selects the transports events are fanned out to.
type Config struct {
	Transports      []TransportType `yaml:"transports" env:"EVENTS_TRANSPORTS" env-separator:"," env-default:"log"`
	WebhookURL      string          `yaml:"webhook_url" env:"EVENTS_WEBHOOK_URL"`
	WebhookUser     string          `yaml:"webhook_user" env:"EVENTS_WEBHOOK_USER"`
	WebhookPassword string          `yaml:"webhook_password" env:"EVENTS_WEBHOOK_PASSWORD"`
	BufferSize      int             `yaml:"buffer_size" env-default:"256"`
	// ForwardLogs sends log records at or above ForwardLevel as log events.
	ForwardLogs  bool   `yaml:"forward_logs" env:"EVENTS_FORWARD_LOGS"`
	ForwardLevel string `yaml:"forward_level" env-default:"warn"`
}

// Level parses ForwardLevel. An empty level means warn.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.ForwardLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := l.UnmarshalText([]byte(c.ForwardLevel)); err != nil {
		return 0, fmt.Errorf("invalid forward level %q: %w", c.ForwardLevel, err)
	}
	return l, nil
}

// NewTransport builds the fan-out over the configured transports. stdout
// receives the JSON lines and b the server sent events; b may be nil when
// no sse transport is configured.
func NewTransport(c Config, stdout io.Writer, b *Broadcaster) (Transport, error) {
	var fan Fanout
	var errs []error
	for _, t := range c.Transports {
		switch TransportType(strings.ToLower(strings.TrimSpace(string(t)))) {
		case LogTransportType:
			fan = append(fan, LogTransport{})
		case StdoutTransportType:
			fan = append(fan, NewJSONLines(stdout))
		case WebhookTransportType:
			if c.WebhookURL == "" {
				errs = append(errs, errors.New("webhook transport needs a webhook_url"))
				continue
			}
			fan = append(fan, NewWebhook(c.WebhookURL, c.WebhookUser, c.WebhookPassword))
		case SSETransportType:
			if b == nil {
				errs = append(errs, errors.New("sse transport is only available when serving"))
				continue
			}
			fan = append(fan, b)
		case "":
		default:
			errs = append(errs, fmt.Errorf("event transport of type '%s' not implemented", t))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return fan, nil
}
