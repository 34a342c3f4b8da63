// Package websocket relays event bus traffic to connected WebSocket
// clients. Each connection owns one bus subscription and an independent
// write path, so a stalled or failed connection never affects delivery to
// the others. A freshly accepted connection receives a system.connected
// greeting before any broadcast traffic.
package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carebus/carebus/internal/platform/eventbus"
)

// Conn abstracts a WebSocket connection for testability. The gorilla
// *websocket.Conn satisfies it directly.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

const defaultWriteTimeout = 10 * time.Second

// Option configures a Gateway.
type Option func(*Gateway)

// WithWriteTimeout bounds each send to a subscriber; a connection that
// cannot accept a frame within this window is dropped.
func WithWriteTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.writeTimeout = d }
}

// WithConnectionHooks registers callbacks for client attach/detach, used
// to drive the connected-clients gauge.
func WithConnectionHooks(onConnect, onDisconnect func()) Option {
	return func(g *Gateway) {
		g.onConnect = onConnect
		g.onDisconnect = onDisconnect
	}
}

// Gateway owns the set of live client connections and their subscriptions.
type Gateway struct {
	bus          *eventbus.Bus
	logger       zerolog.Logger
	writeTimeout time.Duration
	onConnect    func()
	onDisconnect func()

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	id   string
	conn Conn
	sub  *eventbus.Subscription
	once sync.Once
}

// NewGateway creates a Gateway relaying events from the given bus.
func NewGateway(bus *eventbus.Bus, logger zerolog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		bus:          bus,
		logger:       logger,
		writeTimeout: defaultWriteTimeout,
		clients:      make(map[string]*client),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RegisterRoutes registers the WebSocket endpoint.
func (g *Gateway) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", g.HandleConnect)
}

// HandleConnect upgrades an HTTP connection to WebSocket, greets the
// client, subscribes it to the bus, and starts its read/write pumps.
func (g *Gateway) HandleConnect(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	g.Attach(ws)
	return nil
}

// Attach wires a connection into the gateway. Split from HandleConnect so
// tests can drive the gateway with a fake Conn.
func (g *Gateway) Attach(conn Conn) {
	cl := &client{
		id:   uuid.New().String(),
		conn: conn,
	}

	// Greeting goes out before the subscription exists, so it is always the
	// first frame and never interleaves with broadcast traffic.
	greeting, _ := eventbus.NewEnvelope(eventbus.TagSystemConnected, map[string]string{
		"message": "connected to clinical realtime bus",
	})
	conn.SetWriteDeadline(time.Now().Add(g.writeTimeout))
	if err := conn.WriteJSON(greeting); err != nil {
		conn.Close()
		return
	}

	cl.sub = g.bus.Subscribe()

	g.mu.Lock()
	g.clients[cl.id] = cl
	g.mu.Unlock()

	if g.onConnect != nil {
		g.onConnect()
	}
	g.logger.Debug().Str("client_id", cl.id).Msg("websocket client connected")

	go g.writePump(cl)
	go g.readPump(cl)
}

// detach cancels the client's subscription and closes its connection.
// Idempotent; safe to call from both pumps.
func (g *Gateway) detach(cl *client) {
	cl.once.Do(func() {
		g.bus.Unsubscribe(cl.sub)
		cl.conn.Close()

		g.mu.Lock()
		delete(g.clients, cl.id)
		g.mu.Unlock()

		if g.onDisconnect != nil {
			g.onDisconnect()
		}
		g.logger.Debug().Str("client_id", cl.id).Msg("websocket client disconnected")
	})
}

// writePump drains the client's delivery queue onto its transport. A write
// error or timeout drops only this client.
func (g *Gateway) writePump(cl *client) {
	defer g.detach(cl)

	for env := range cl.sub.C() {
		cl.conn.SetWriteDeadline(time.Now().Add(g.writeTimeout))
		if err := cl.conn.WriteJSON(env); err != nil {
			g.logger.Debug().Str("client_id", cl.id).Err(err).Msg("websocket write failed")
			return
		}
	}
}

// readPump watches for transport closure. Inbound payloads are ignored;
// the stream is broadcast-only.
func (g *Gateway) readPump(cl *client) {
	defer g.detach(cl)

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// ClientCount returns the number of attached clients.
func (g *Gateway) ClientCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.clients)
}
