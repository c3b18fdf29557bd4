package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumina-ai/lumina/internal/vectorstore"
)

// IndexHandler exposes vector index operations for operators.
type IndexHandler struct {
	vectors vectorstore.Store
}

func NewIndexHandler(vectors vectorstore.Store) *IndexHandler {
	return &IndexHandler{vectors: vectors}
}

func (h *IndexHandler) Register(g *echo.Group) {
	g.GET("/index/stats", h.stats)
	g.DELETE("/index", h.clear)
}

func (h *IndexHandler) stats(c echo.Context) error {
	stats, err := h.vectors.Stats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ok(c, stats, "")
}

func (h *IndexHandler) clear(c echo.Context) error {
	if err := h.vectors.Clear(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ok(c, nil, "Index cleared")
}
