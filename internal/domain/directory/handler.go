package directory

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carebus/carebus/internal/platform/auth"
	"github.com/carebus/carebus/internal/platform/memstore"
	"github.com/carebus/carebus/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers directory endpoints. Listing is public; the
// availability update is restricted to doctors.
func (h *Handler) RegisterRoutes(api *echo.Group, authmw echo.MiddlewareFunc) {
	api.GET("/doctors", h.ListDoctors)
	api.GET("/hospitals", h.ListHospitals)
	api.PUT("/doctors/me/availability", h.SetAvailability, authmw, auth.RequireRole("doctor"))
}

func (h *Handler) ListDoctors(c echo.Context) error {
	filter := DoctorFilter{
		City:      c.QueryParam("city"),
		Specialty: c.QueryParam("specialty"),
		Language:  c.QueryParam("language"),
	}
	if v := c.QueryParam("available_now"); v != "" {
		available := v == "true"
		filter.AvailableNow = &available
	}

	doctors := h.svc.ListDoctors(c.Request().Context(), filter)
	p := pagination.FromContext(c)
	start, end := p.Slice(len(doctors))
	return c.JSON(http.StatusOK, pagination.NewResponse(doctors[start:end], len(doctors), p.Limit, p.Offset))
}

func (h *Handler) ListHospitals(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.ListHospitals(c.Request().Context()))
}

type availabilityRequest struct {
	DoctorID string       `json:"doctorId"`
	State    Availability `json:"state"`
}

func (h *Handler) SetAvailability(c echo.Context) error {
	var req availabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	doctor, err := h.svc.SetAvailability(c.Request().Context(), req.DoctorID, req.State)
	if err != nil {
		if errors.Is(err, memstore.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, doctor)
}
