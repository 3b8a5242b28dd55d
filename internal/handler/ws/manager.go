// Package ws implements the WebSocket transport: the upgrade endpoint,
// the per-connection read/write pumps, and the subscribe/unsubscribe
// protocol spoken over each connection.
package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/models"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/engine"
	apphttp "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/http"
	applogger "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/logger"
)

// Error codes sent in error frames.
const (
	codeBadRequest = "BAD_REQUEST"
	codeInvalidKey = "INVALID_KEY"
	codeClosed     = "SHUTTING_DOWN"
)

// StreamConfig bounds each connection's buffers and deadlines.
type StreamConfig struct {
	SendBuffer     int
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

// Manager upgrades HTTP requests into engine-attached WebSocket
// connections.
type Manager struct {
	eng      *engine.Engine
	log      *applogger.Logger
	cfg      StreamConfig
	upgrader websocket.Upgrader
}

// NewManager creates a WebSocket connection manager.
func NewManager(eng *engine.Engine, l *applogger.Logger, cfg StreamConfig) *Manager {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}
	return &Manager{
		eng: eng,
		log: l,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// HandleConnection upgrades the request and runs the connection until
// it closes.
func (m *Manager) HandleConnection(c echo.Context) error {
	conn, err := m.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		m.log.Warn("websocket upgrade failed", applogger.Error(err))
		return err
	}

	client := newClient(uuid.NewString(), conn, m.eng, m.log, m.cfg)
	if err := m.eng.Attach(client); err != nil {
		_ = conn.WriteJSON(models.ErrorMessage(codeClosed, "server is shutting down"))
		_ = conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return nil
}

// handleRequest dispatches one validated client frame.
func (c *Client) handleRequest(req models.ClientRequest) {
	if errs := apphttp.ValidateStruct(context.Background(), &req); len(errs) > 0 {
		c.sendControl(models.ErrorMessage(codeBadRequest, errs[0].Message))
		return
	}

	class, err := models.ParseAssetClass(strings.ToUpper(strings.TrimSpace(req.AssetClass)))
	if err != nil {
		c.sendControl(models.ErrorMessage(codeInvalidKey, err.Error()))
		return
	}
	symbol := strings.TrimSpace(req.Symbol)
	if symbol == "" {
		c.sendControl(models.ErrorMessage(codeInvalidKey, "symbol must not be empty"))
		return
	}
	key := models.FeedKey{Class: class, Symbol: symbol}

	switch req.Action {
	case models.ActionSubscribe:
		c.subscribe(key)
	case models.ActionUnsubscribe:
		c.unsubscribe(key)
	}
}

// subscribe registers interest and, when a recent snapshot exists,
// serves it right after the ack so the client is not left waiting for
// the next poll tick.
func (c *Client) subscribe(key models.FeedKey) {
	if err := c.eng.Subscribe(c.id, key); err != nil {
		if errors.Is(err, engine.ErrEngineClosed) {
			c.sendControl(models.ErrorMessage(codeClosed, "server is shutting down"))
		} else {
			c.sendControl(models.ErrorMessage(codeInvalidKey, err.Error()))
		}
		return
	}
	c.sendControl(models.AckMessage(models.MsgSubscribed, key))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if snap, ok := c.eng.Snapshot(ctx, key); ok {
		c.sendControl(models.UpdateMessage(models.FeedUpdate{
			Key:       key,
			Payload:   snap.Payload,
			Timestamp: snap.FetchedAt,
		}))
	}
}

func (c *Client) unsubscribe(key models.FeedKey) {
	c.eng.Unsubscribe(c.id, key)
	c.sendControl(models.AckMessage(models.MsgUnsubscribed, key))
}
