// Package eventlog implements the append-only event log over NATS JetStream.
// All events go to one configured subject; the stream retains them for
// downstream consumers. Publication is at-least-once: the relay only marks
// an outbox row published after the JetStream ack.
package eventlog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nats-io/nats.go"

	"github.com/Haleralex/ledgerhub/internal/application/ports"
)

var _ ports.EventLog = (*JetStreamLog)(nil)

// Config names the stream the relay appends to.
type Config struct {
	URL     string
	Stream  string
	Subject string
}

// JetStreamLog appends payloads to a JetStream stream.
type JetStreamLog struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	subject string
}

// Connect dials NATS, obtains a JetStream context, and ensures the stream
// exists with the configured subject.
func Connect(ctx context.Context, cfg Config) (*JetStreamLog, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("ledgerhub-relay"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	// Idempotent stream bootstrap.
	_, err = js.StreamInfo(cfg.Stream)
	if err != nil {
		if err != nats.ErrStreamNotFound {
			conn.Close()
			return nil, fmt.Errorf("failed to look up stream %s: %w", cfg.Stream, err)
		}
		_, err = js.AddStream(&nats.StreamConfig{
			Name:      cfg.Stream,
			Subjects:  []string{cfg.Subject},
			Storage:   nats.FileStorage,
			Retention: nats.LimitsPolicy,
		})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create stream %s: %w", cfg.Stream, err)
		}
	}

	return &JetStreamLog{conn: conn, js: js, subject: cfg.Subject}, nil
}

// Conn exposes the underlying connection for health checks.
func (l *JetStreamLog) Conn() *nats.Conn {
	return l.conn
}

// Append publishes one payload and returns the stream sequence JetStream
// assigned to it.
func (l *JetStreamLog) Append(ctx context.Context, payload []byte) (string, error) {
	ack, err := l.js.Publish(l.subject, payload, nats.Context(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to publish to %s: %w", l.subject, err)
	}
	return strconv.FormatUint(ack.Sequence, 10), nil
}

// Close drains the connection, letting in-flight publishes finish.
func (l *JetStreamLog) Close() error {
	if err := l.conn.Drain(); err != nil {
		l.conn.Close()
		return err
	}
	return nil
}
