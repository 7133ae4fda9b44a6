package kafka

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakyHandler struct {
	failures int
	calls    int
	err      error
	panics   bool
}

func (h *flakyHandler) Topic() string { return "signal-requests" }

func (h *flakyHandler) Handle(_ context.Context, _ []byte) error {
	h.calls++
	if h.panics {
		panic("boom")
	}
	if h.calls <= h.failures {
		return h.err
	}
	return nil
}

func newTestConsumer(t *testing.T, retries int) *Consumer {
	t.Helper()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(retries, time.Millisecond, 2*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	return c
}

func TestProcessRetriesUntilSuccess(t *testing.T) {
	c := newTestConsumer(t, 3)
	h := &flakyHandler{failures: 2, err: errors.New("transient")}
	if err := c.process(context.Background(), h, []byte(`{}`)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if h.calls != 3 {
		t.Fatalf("calls=%d want 3", h.calls)
	}
}

func TestProcessGivesUpAfterRetries(t *testing.T) {
	c := newTestConsumer(t, 2)
	h := &flakyHandler{failures: 10, err: errors.New("down")}
	if err := c.process(context.Background(), h, nil); err == nil {
		t.Fatalf("expected error")
	}
	if h.calls != 3 {
		t.Fatalf("calls=%d want 3", h.calls)
	}
}

func TestProcessStopsOnPermanentAndPanic(t *testing.T) {
	c := newTestConsumer(t, 5)
	h := &flakyHandler{failures: 10, err: ErrPermanent}
	_ = c.process(context.Background(), h, nil)
	if h.calls != 1 {
		t.Fatalf("permanent error retried: calls=%d", h.calls)
	}

	p := &flakyHandler{panics: true}
	if err := c.process(context.Background(), p, nil); !errors.Is(err, ErrPermanent) {
		t.Fatalf("panic should surface as permanent, got %v", err)
	}
}

func TestBackoffWithJitterBounds(t *testing.T) {
	for attempt := 1; attempt < 40; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 200*time.Millisecond, attempt)
		if d <= 0 || d > 200*time.Millisecond {
			t.Fatalf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	if _, err := NewConsumer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}
