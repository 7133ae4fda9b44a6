package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestLimiterBurstAndRefill(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(2, 3, WithClock(c.now))

	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("request %d rejected inside burst", i)
		}
	}
	if l.Allow("a") {
		t.Fatalf("burst exceeded")
	}
	if !l.Allow("b") {
		t.Fatalf("clients must not share buckets")
	}

	c.t = c.t.Add(500 * time.Millisecond)
	if !l.Allow("a") {
		t.Fatalf("bucket did not refill")
	}
}

func TestLimiterSweepsIdleClients(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(1, 1, WithClock(c.now), WithIdleTTL(time.Minute))

	l.Allow("a")
	l.Allow("b")
	c.t = c.t.Add(2 * time.Minute)
	l.Allow("c")
	if l.Len() != 1 {
		t.Fatalf("tracked=%d want 1", l.Len())
	}
}

func TestMiddlewareRejectsWith429(t *testing.T) {
	e := echo.New()
	l := New(0.001, 1)
	e.POST("/x", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, Middleware(l, "gen"))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}
	if got := send(); got != http.StatusCreated {
		t.Fatalf("first=%d", got)
	}
	if got := send(); got != http.StatusTooManyRequests {
		t.Fatalf("second=%d", got)
	}
}
