// Package api exposes the HTTP surface: the WebSocket upgrade route,
// health and status probes, and read-only snapshot lookups.
package api

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/models"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/engine"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/handler/ws"
	xhttp "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/http"
	xlogger "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/logger"
)

// Handler wires engine state and the WebSocket manager into Echo routes.
type Handler struct {
	logger *xlogger.Logger
	eng    *engine.Engine
	wsm    *ws.Manager
}

// NewHandler creates the HTTP handler.
func NewHandler(l *xlogger.Logger, eng *engine.Engine, wsm *ws.Manager) *Handler {
	return &Handler{logger: l, eng: eng, wsm: wsm}
}

// RegisterRoutes attaches all routes to the Echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.wsm.HandleConnection)
	e.GET("/healthz", h.Health)

	g := e.Group("/api/v1")
	g.GET("/status", h.Status)
	g.GET("/classes", h.Classes)
	g.GET("/snapshot/:class/:symbol", h.Snapshot)
}

// Health is a liveness probe.
func (h *Handler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// Status reports connection and active-feed counts.
func (h *Handler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.eng.Status())
}

// Classes lists the supported asset classes with their poll cadence.
func (h *Handler) Classes(c echo.Context) error {
	type classInfo struct {
		Class        models.AssetClass `json:"asset_class"`
		PollInterval string            `json:"poll_interval"`
	}
	classes := models.AssetClasses()
	out := make([]classInfo, 0, len(classes))
	for _, cl := range classes {
		out = append(out, classInfo{Class: cl, PollInterval: cl.PollInterval().String()})
	}
	return xhttp.SuccessResponse(c, out)
}

// Snapshot serves the last cached payload for a feed, if one exists.
func (h *Handler) Snapshot(c echo.Context) error {
	class, err := models.ParseAssetClass(strings.ToUpper(c.Param("class")))
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	symbol := strings.TrimSpace(c.Param("symbol"))
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol must not be empty")
	}

	key := models.FeedKey{Class: class, Symbol: symbol}
	snap, ok := h.eng.Snapshot(c.Request().Context(), key)
	if !ok {
		return xhttp.NotFoundResponse(c, "no snapshot for "+key.String())
	}
	return xhttp.SuccessResponse(c, snap)
}
