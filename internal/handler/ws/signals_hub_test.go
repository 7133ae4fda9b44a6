package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FinSignal/internal/domain/models"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/signals" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitClients(t *testing.T, h *SignalsHub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients=%d want %d", h.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubDeliversMatchingSignals(t *testing.T) {
	hub := NewSignalsHub([]string{"*"})
	e := echo.New()
	hub.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()
	defer hub.Close()

	all := dial(t, srv, "")
	defer all.Close()
	ethOnly := dial(t, srv, "?symbol=eth")
	defer ethOnly.Close()
	waitClients(t, hub, 2)

	_ = hub.PublishSignal(context.Background(), models.Signal{ID: "1", TokenSymbol: "BTC", SignalType: models.SignalBuy})
	_ = hub.PublishSignal(context.Background(), models.Signal{ID: "2", TokenSymbol: "ETH", SignalType: models.SignalSell})

	read := func(c *websocket.Conn) models.Signal {
		t.Helper()
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := c.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var s models.Signal
		if err := json.Unmarshal(data, &s); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return s
	}

	if got := read(all); got.ID != "1" {
		t.Fatalf("first for all=%s", got.ID)
	}
	if got := read(all); got.ID != "2" {
		t.Fatalf("second for all=%s", got.ID)
	}
	if got := read(ethOnly); got.ID != "2" || got.TokenSymbol != "ETH" {
		t.Fatalf("eth subscriber got %+v", got)
	}
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub := NewSignalsHub([]string{"*"})
	e := echo.New()
	hub.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn := dial(t, srv, "")
	waitClients(t, hub, 1)
	_ = conn.Close()
	waitClients(t, hub, 0)

	if err := hub.PublishSignal(context.Background(), models.Signal{ID: "x"}); err != nil {
		t.Fatalf("publish with no clients: %v", err)
	}
	_ = hub.Close()
}
