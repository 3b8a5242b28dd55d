package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/models"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/engine"
	applogger "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/logger"
)

// Client is one WebSocket connection. It implements engine.Subscriber:
// feed updates arrive on a bounded channel drained by writePump, and a
// full channel drops the oldest pending update in favor of the newest.
type Client struct {
	id     string
	conn   *websocket.Conn
	eng    *engine.Engine
	log    *applogger.Logger
	cfg    StreamConfig
	closed sync.Once

	updates chan models.FeedUpdate
	control chan models.ServerMessage
}

func newClient(id string, conn *websocket.Conn, eng *engine.Engine, l *applogger.Logger, cfg StreamConfig) *Client {
	return &Client{
		id:      id,
		conn:    conn,
		eng:     eng,
		log:     l,
		cfg:     cfg,
		updates: make(chan models.FeedUpdate, cfg.SendBuffer),
		control: make(chan models.ServerMessage, 16),
	}
}

// ID returns the connection identifier.
func (c *Client) ID() string { return c.id }

// Deliver enqueues a feed update without blocking. When the buffer is
// full the oldest pending update is discarded so the newest wins; the
// return value reports whether anything was dropped.
func (c *Client) Deliver(u models.FeedUpdate) bool {
	select {
	case c.updates <- u:
		return true
	default:
	}

	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- u:
	default:
	}
	return false
}

// sendControl queues an ack, snapshot, or error frame. Control frames
// are few and ordered; a stalled connection gets closed by write
// deadlines rather than blocking the reader forever.
func (c *Client) sendControl(msg models.ServerMessage) {
	select {
	case c.control <- msg:
	default:
		c.log.Warn("control frame dropped", applogger.String("conn", c.id))
	}
}

// teardown runs the full disconnect cleanup exactly once, no matter
// whether the read side or the write side noticed the failure first.
func (c *Client) teardown() {
	c.closed.Do(func() {
		c.eng.Detach(c.id)
		_ = c.conn.Close()
	})
}

// readPump consumes client frames until the connection dies, then
// triggers cleanup. Runs on its own goroutine, one per connection.
func (c *Client) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket read error",
					applogger.String("conn", c.id), applogger.Error(err))
			}
			return
		}
		c.handleFrame(raw)
	}
}

// writePump owns all writes to the connection: pings, control frames,
// and market updates. One writer per connection, per gorilla's rules.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.teardown()
	}()

	for {
		// Control frames drain first: a subscribe ack must hit the wire
		// before any update for the key it acknowledges.
		select {
		case msg := <-c.control:
			if err := c.writeJSON(msg); err != nil {
				return
			}
			continue
		default:
		}

		select {
		case msg := <-c.control:
			if err := c.writeJSON(msg); err != nil {
				return
			}
		case u := <-c.updates:
			if err := c.writeJSON(models.UpdateMessage(u)); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeJSON(msg models.ServerMessage) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
	return c.conn.WriteJSON(msg)
}

func (c *Client) handleFrame(raw []byte) {
	var req models.ClientRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.sendControl(models.ErrorMessage(codeBadRequest, "malformed JSON"))
		return
	}
	c.handleRequest(req)
}
