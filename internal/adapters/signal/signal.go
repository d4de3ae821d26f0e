package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"huddle/internal/app"
	"huddle/internal/config"
	"huddle/internal/core"
	"huddle/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the websocket side of the relay: upgrade, pumps and
// the decode step that turns frames into router calls.
type Controller struct {
	Router *app.Router
	cfg    *config.Config
}

func NewController(cfg *config.Config, router *app.Router) *Controller {
	return &Controller{Router: router, cfg: cfg}
}

// wsConn wraps a websocket connection behind a buffered send channel
// so the router never blocks on a slow client.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request and runs the connection until either
// side goes away. The connectionID is minted here, once per upgrade;
// a reconnect gets a fresh one.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	id := domain.ConnID(uuid.NewString())
	clientToken := c.GetString("client_token")
	log.Info().Str("module", "signal").Str("conn", string(id)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, id, clientToken, conn)
}

// RegistrySink is the production Sink: it encodes a payload and hands
// it to the target's live connection. Unknown targets and saturated
// send buffers swallow the payload; delivery is best-effort and never
// retried.
type RegistrySink struct {
	Reg *app.Registry
}

func (s *RegistrySink) Send(to domain.ConnID, v any) {
	conn, ok := s.Reg.Conn(to)
	if !ok {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sink marshal")
		return
	}
	if err := conn.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(to)).Msg("dropped outbound frame")
	}
}
