package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/retry"
)

type message struct {
	subject string
	data    []byte
}

type fakeConn struct {
	sent       []message
	publishErr error
	failures   int // publishes failing before publishErr sticks
	calls      int
	closed     bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errors.New("nats: timeout")
	}
	if f.publishErr != nil {
		return f.publishErr
	}
	f.sent = append(f.sent, message{subject, data})
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error { return nil }
func (f *fakeConn) Close()                                 { f.closed = true }

func TestNewWithoutURLIsNoop(t *testing.T) {
	p, err := New(config.NotifyConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, p)
	assert.NoError(t, p.PublishBuild(context.Background(), BuildEvent{}))
	assert.NoError(t, p.Close())
}

func TestPublishBuild(t *testing.T) {
	c := &fakeConn{}
	p := newNATSPublisher(c, "courses", slog.Default())

	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	err := p.PublishBuild(context.Background(), BuildEvent{
		BuildID: "b1", Outcome: model.OutcomeWarning, StartedAt: started, Pages: 4,
		Warnings: []string{"convert: pandoc not found"},
	})
	require.NoError(t, err)
	require.Len(t, c.sent, 1)
	assert.Equal(t, "courses.build.completed", c.sent[0].subject)

	var got map[string]any
	require.NoError(t, json.Unmarshal(c.sent[0].data, &got))
	assert.Equal(t, "b1", got["build_id"])
	assert.Equal(t, "warning", got["outcome"])
	assert.EqualValues(t, 4, got["pages"])
	assert.NotEmpty(t, got["timestamp"])
}

func TestPublishAccessibility(t *testing.T) {
	c := &fakeConn{}
	p := newNATSPublisher(c, "", slog.Default())

	err := p.PublishAccessibility(context.Background(), model.AccessibilityResult{
		ContentID: 7, OutputPath: "guides/intro.html", Checker: "pa11y", WCAGLevel: "AA", ErrorCount: 2,
	})
	require.NoError(t, err)
	require.Len(t, c.sent, 1)
	assert.Equal(t, "sitebuilder.accessibility.result", c.sent[0].subject)

	var got AccessibilityEvent
	require.NoError(t, json.Unmarshal(c.sent[0].data, &got))
	assert.Equal(t, "guides/intro.html", got.OutputPath)
	assert.Equal(t, 2, got.ErrorCount)
	assert.False(t, got.Passed)

	require.NoError(t, p.Close())
	assert.True(t, c.closed)
}

func TestPublishError(t *testing.T) {
	c := &fakeConn{publishErr: errors.New("connection closed")}
	p := newNATSPublisher(c, "x", slog.Default())
	p.policy = retry.NewPolicy(retry.Fixed, time.Millisecond, time.Millisecond, 2)
	err := p.PublishBuild(context.Background(), BuildEvent{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection closed")
	assert.Equal(t, 3, c.calls)
}

func TestPublishRetriesTransientFailure(t *testing.T) {
	c := &fakeConn{failures: 1}
	p := newNATSPublisher(c, "x", slog.Default())
	p.policy = retry.NewPolicy(retry.Fixed, time.Millisecond, time.Millisecond, 2)
	require.NoError(t, p.PublishBuild(context.Background(), BuildEvent{BuildID: "b1"}))
	assert.Equal(t, 2, c.calls)
	require.Len(t, c.sent, 1)
}

func TestRetryPolicyFromConfig(t *testing.T) {
	assert.Equal(t, retry.DefaultPolicy().MaxRetries, retryPolicy(config.NotifyConfig{}).MaxRetries)
	assert.Zero(t, retryPolicy(config.NotifyConfig{Retries: -1}).MaxRetries)

	p := retryPolicy(config.NotifyConfig{Retries: 5, RetryDelay: 50 * time.Millisecond})
	assert.Equal(t, 5, p.MaxRetries)
	assert.Equal(t, 50*time.Millisecond, p.Initial)
}

func TestNewUnreachableServer(t *testing.T) {
	_, err := New(config.NotifyConfig{NATSURL: "nats://127.0.0.1:1", Subject: "s"}, nil)
	require.Error(t, err)
}
