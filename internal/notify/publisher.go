// Package notify publishes build and accessibility events to NATS. Without
// a configured server every call is a no-op.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/retry"
)

// Publisher sends pipeline events.
type Publisher interface {
	PublishBuild(ctx context.Context, e BuildEvent) error
	PublishAccessibility(ctx context.Context, r model.AccessibilityResult) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) PublishBuild(context.Context, BuildEvent) error                        { return nil }
func (Noop) PublishAccessibility(context.Context, model.AccessibilityResult) error { return nil }
func (Noop) Close() error                                                          { return nil }

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes JSON events on <subject>.<kind>.
type NATSPublisher struct {
	conn    conn
	subject string
	policy  retry.Policy
	logger  *slog.Logger
}

// New connects to cfg.NATSURL. An empty URL yields Noop.
func New(cfg config.NotifyConfig, logger *slog.Logger) (Publisher, error) {
	if cfg.NATSURL == "" {
		return Noop{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("sitebuilder"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("NATS publisher connected", slog.String("url", cfg.NATSURL), slog.String("subject", cfg.Subject))
	p := newNATSPublisher(nc, cfg.Subject, logger)
	p.policy = retryPolicy(cfg)
	return p, nil
}

func retryPolicy(cfg config.NotifyConfig) retry.Policy {
	n := cfg.Retries
	switch {
	case n == 0:
		n = -1
	case n < 0:
		n = 0
	}
	return retry.NewPolicy(retry.Exponential, cfg.RetryDelay, 0, n)
}

func newNATSPublisher(c conn, subject string, logger *slog.Logger) *NATSPublisher {
	if subject == "" {
		subject = "sitebuilder"
	}
	return &NATSPublisher{conn: c, subject: subject, policy: retry.DefaultPolicy(), logger: logger}
}

// Subject returns the subject events of kind are published on.
func (p *NATSPublisher) Subject(kind string) string {
	return p.subject + "." + kind
}

func (p *NATSPublisher) PublishBuild(ctx context.Context, e BuildEvent) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return p.publish(ctx, KindBuildCompleted, e)
}

func (p *NATSPublisher) PublishAccessibility(ctx context.Context, r model.AccessibilityResult) error {
	e := accessibilityEvent(r)
	e.Timestamp = time.Now().UTC()
	return p.publish(ctx, KindAccessibilityResult, e)
}

func (p *NATSPublisher) publish(ctx context.Context, kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", kind, err)
	}
	subject := p.Subject(kind)
	attempts := 0
	err = p.policy.Do(ctx, nil, func() error {
		attempts++
		if err := p.conn.Publish(subject, data); err != nil {
			return fmt.Errorf("failed to publish event: %w", err)
		}
		flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := p.conn.FlushWithContext(flushCtx); err != nil {
			return fmt.Errorf("failed to flush NATS connection: %w", err)
		}
		return nil
	})
	if err != nil {
		p.logger.Warn("Event not delivered", slog.String("subject", subject), slog.Int("attempts", attempts))
		return err
	}
	p.logger.Debug("Published event", slog.String("subject", subject), slog.Int("bytes", len(data)))
	return nil
}

// Close closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
