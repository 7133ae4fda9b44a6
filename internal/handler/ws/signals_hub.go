package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	xlogger "FinSignal/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64
)

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	symbol string
}

// SignalsHub streams persisted signals to WebSocket subscribers. A client may
// subscribe to one symbol with ?symbol=; otherwise it receives every signal.
// Slow clients whose buffer fills up are disconnected.
type SignalsHub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	closed   bool
	l        *xlogger.Logger
}

func NewSignalsHub(allowOrigins []string) *SignalsHub {
	h := &SignalsHub{clients: make(map[*client]struct{})}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowOrigins),
	}
	return h
}

func (h *SignalsHub) SetLogger(l *xlogger.Logger) { h.l = l }

func (h *SignalsHub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/signals", h.Serve)
}

// Serve upgrades the request and registers the connection.
func (h *SignalsHub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		return nil
	}
	cl := &client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		symbol: domrepo.NormalizeSymbol(c.QueryParam("symbol")),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	go h.writePump(cl)
	go h.readPump(cl)
	return nil
}

// PublishSignal queues s for every matching subscriber. It never blocks on a
// slow client.
func (h *SignalsHub) PublishSignal(_ context.Context, s models.Signal) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	var slow []*client
	h.mu.RLock()
	for cl := range h.clients {
		if cl.symbol != "" && cl.symbol != s.TokenSymbol {
			continue
		}
		select {
		case cl.send <- data:
		default:
			slow = append(slow, cl)
		}
	}
	h.mu.RUnlock()

	for _, cl := range slow {
		if h.l != nil {
			h.l.Warn("ws client too slow, disconnecting", xlogger.String("remote", cl.conn.RemoteAddr().String()))
		}
		h.remove(cl)
	}
	return nil
}

// ClientCount reports the number of connected subscribers.
func (h *SignalsHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every subscriber and rejects new ones.
func (h *SignalsHub) Close() error {
	h.mu.Lock()
	h.closed = true
	all := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		all = append(all, cl)
	}
	h.mu.Unlock()

	for _, cl := range all {
		h.remove(cl)
	}
	return nil
}

func (h *SignalsHub) remove(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
}

func (h *SignalsHub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(cl)
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(cl)
				return
			}
		}
	}
}

// readPump discards client messages and detects disconnects.
func (h *SignalsHub) readPump(cl *client) {
	defer h.remove(cl)

	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func originChecker(allow []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allow))
	for _, o := range allow {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

var _ domrepo.SignalPublisher = (*SignalsHub)(nil)
