package scheduling

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carebus/carebus/internal/platform/auth"
	"github.com/carebus/carebus/internal/platform/memstore"
	"github.com/carebus/carebus/pkg/pagination"
)

// IdempotencyKeyHeader carries the client-supplied deduplication token
// for appointment creation.
const IdempotencyKeyHeader = "Idempotency-Key"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers appointment endpoints. All of them require an
// authenticated caller.
func (h *Handler) RegisterRoutes(api *echo.Group, authmw echo.MiddlewareFunc) {
	g := api.Group("/appointments", authmw)
	g.POST("", h.Create, auth.RequireRole("patient", "hospital_admin"))
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/cancel", h.Cancel)
}

func (h *Handler) Create(c echo.Context) error {
	key := c.Request().Header.Get(IdempotencyKeyHeader)
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Idempotency-Key header is required")
	}

	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	creator := auth.UserIDFromContext(c.Request().Context())
	appt, isNew, err := h.svc.Create(c.Request().Context(), in, key, creator)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if isNew {
		return c.JSON(http.StatusCreated, appt)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) Get(c echo.Context) error {
	appt, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) List(c echo.Context) error {
	appointments := h.svc.List(c.Request().Context())
	p := pagination.FromContext(c)
	start, end := p.Slice(len(appointments))
	return c.JSON(http.StatusOK, pagination.NewResponse(appointments[start:end], len(appointments), p.Limit, p.Offset))
}

func (h *Handler) Cancel(c echo.Context) error {
	appt, err := h.svc.Cancel(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, memstore.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, appt)
}
