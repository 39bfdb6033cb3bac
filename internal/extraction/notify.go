package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Event announces that a record reached a terminal status.
type Event struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"video_id"`
	Status     string    `json:"status"`
	Source     string    `json:"source,omitempty"`
	Files      int       `json:"files"`
	Repository string    `json:"repository_url,omitempty"`
	At         time.Time `json:"at"`
}

// Notifier publishes completion events.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, Event) error { return nil }
func (NopNotifier) Close() error                         { return nil }

// NATSNotifier publishes events as JSON on <prefix>.<status>.
type NATSNotifier struct {
	nc     *nats.Conn
	prefix string
}

// ConnectNATS dials url and returns a notifier publishing under prefix.
func ConnectNATS(url, prefix string) (*NATSNotifier, error) {
	nc, err := nats.Connect(url,
		nats.Name("go_ytcode"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("extraction: nats disconnected", slog.Any("error", err))
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	if prefix == "" {
		prefix = "ytcode.extractions"
	}
	slog.Info("extraction: nats connected", slog.String("url", url), slog.String("subject", prefix+".>"))
	return &NATSNotifier{nc: nc, prefix: prefix}, nil
}

func (n *NATSNotifier) Publish(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	subject := n.prefix + "." + ev.Status
	if err := n.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

func (n *NATSNotifier) Close() error {
	return n.nc.Drain()
}
