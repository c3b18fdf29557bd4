package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lumina-ai/lumina/internal/store"
)

// LeadsHandler serves captured-lead CRUD.
type LeadsHandler struct {
	store *store.Store
}

func NewLeadsHandler(st *store.Store) *LeadsHandler {
	return &LeadsHandler{store: st}
}

func (h *LeadsHandler) Register(g *echo.Group) {
	g.GET("/leads", h.list)
	g.POST("/leads", h.create)
}

type leadView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *LeadsHandler) list(c echo.Context) error {
	leads, err := h.store.ListLeads(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]leadView, 0, len(leads))
	for _, l := range leads {
		out = append(out, leadView{
			ID:        l.ID,
			Name:      l.Name.String,
			Email:     l.Email,
			Company:   l.Company.String,
			Phone:     l.Phone.String,
			Status:    l.Status,
			Notes:     l.Notes.String,
			CreatedAt: l.CreatedAt,
		})
	}
	return ok(c, out, "Successfully retrieved leads")
}

type leadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
}

func (h *LeadsHandler) create(c echo.Context) error {
	var req leadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body must contain JSON data")
	}
	if req.Name == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name and email are required fields")
	}
	id, err := h.store.CreateLead(c.Request().Context(), req.Name, req.Email, req.Company, req.Phone, req.Notes)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return created(c, map[string]string{"id": id}, "Lead created successfully")
}
