package emergency

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carebus/carebus/internal/platform/auth"
	"github.com/carebus/carebus/internal/platform/memstore"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers emergency case endpoints. Raising a case is open
// to patients and operators; advancing one is an operator action.
func (h *Handler) RegisterRoutes(api *echo.Group, authmw echo.MiddlewareFunc) {
	g := api.Group("/emergency/cases", authmw)
	g.POST("", h.Create, auth.RequireRole("patient", "emergency_operator"))
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/:edge", h.Advance, auth.RequireRole("emergency_operator", "hospital_admin"))
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	creator := auth.UserIDFromContext(c.Request().Context())
	created, err := h.svc.Create(c.Request().Context(), in, creator)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Get(c echo.Context) error {
	cs, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "case not found")
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.List(c.Request().Context()))
}

func (h *Handler) Advance(c echo.Context) error {
	edge := Edge(c.Param("edge"))
	if !ValidEdge(edge) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown transition edge: "+string(edge))
	}

	cs, err := h.svc.Advance(c.Request().Context(), c.Param("id"), edge)
	if err != nil {
		var illegal *IllegalTransitionError
		switch {
		case errors.Is(err, memstore.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		case errors.As(err, &illegal):
			return echo.NewHTTPError(http.StatusConflict, illegal.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, cs)
}
