package server

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/lumina-ai/lumina/internal/ingest"
	"github.com/lumina-ai/lumina/internal/store"
)

// IngestHandler serves on-demand ingestion and the source registry.
type IngestHandler struct {
	pipeline *ingest.Pipeline
	store    *store.Store
}

func NewIngestHandler(pipeline *ingest.Pipeline, st *store.Store) *IngestHandler {
	return &IngestHandler{pipeline: pipeline, store: st}
}

func (h *IngestHandler) Register(g *echo.Group) {
	g.POST("/ingest", h.ingest)
	g.GET("/sources", h.listSources)
	g.POST("/sources", h.createSource)
}

type ingestRequest struct {
	URL      string `json:"url"`
	ClientID string `json:"client_id"`
}

func (h *IngestHandler) ingest(c echo.Context) error {
	var req ingestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body must contain JSON data")
	}
	if err := validateIngest(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.pipeline.IngestURL(c.Request().Context(), req.URL, req.ClientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError,
			fmt.Sprintf("Ingestion failed at %s stage: %v", ingest.ReasonOf(err), err))
	}
	return ok(c, result, fmt.Sprintf("Ingested %d chunks", result.StoredCount))
}

func validateIngest(req ingestRequest) error {
	if req.URL == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url must be a valid http(s) URL")
	}
	if req.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	return nil
}

type sourceRequest struct {
	URL         string `json:"url"`
	ClientID    string `json:"client_id"`
	RefreshCron string `json:"refresh_cron"`
}

func (h *IngestHandler) createSource(c echo.Context) error {
	var req sourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body must contain JSON data")
	}
	if err := validateIngest(ingestRequest{URL: req.URL, ClientID: req.ClientID}); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.RefreshCron == "" {
		req.RefreshCron = "@daily"
	}
	id, err := h.store.UpsertSource(c.Request().Context(), req.ClientID, req.URL, req.RefreshCron)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return created(c, map[string]string{"id": id}, "Source registered")
}

func (h *IngestHandler) listSources(c echo.Context) error {
	sources, err := h.store.ListSources(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]map[string]interface{}, 0, len(sources))
	for _, s := range sources {
		item := map[string]interface{}{
			"id":           s.ID,
			"client_id":    s.ClientID,
			"url":          s.URL,
			"refresh_cron": s.RefreshCron,
			"created_at":   s.CreatedAt,
		}
		if s.LastIngestedAt.Valid {
			item["last_ingested_at"] = s.LastIngestedAt.Time
		}
		out = append(out, item)
	}
	return ok(c, out, "Successfully retrieved sources")
}
