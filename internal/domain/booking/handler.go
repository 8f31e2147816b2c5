package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentalcare/clinic/internal/platform/auth"
	"github.com/dentalcare/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "dentist", "patient"))
	readGroup.GET("/appointments", h.List)
	readGroup.GET("/appointments/:id", h.Get)
	readGroup.GET("/patients/:id/appointments", h.ListByPatient)
	readGroup.GET("/patients/:id/appointments/stats", h.PatientStats)
	readGroup.GET("/dentists/:id/appointments", h.ListByDentist)
	readGroup.GET("/dentists/:id/appointments/stats", h.DentistStats)
	readGroup.GET("/dentists/:id/appointments/weekly-count", h.WeeklyCount)

	writeGroup := api.Group("", auth.RequireRole("admin", "dentist", "patient"))
	writeGroup.POST("/appointments", h.Book)
	writeGroup.PATCH("/appointments/:id", h.Update)

	adminGroup := api.Group("", auth.RequireRole("admin"))
	adminGroup.DELETE("/appointments/:id", h.Delete)
}

// mapError translates booking failures onto HTTP statuses. Guard failures
// are conflicts, caller mistakes are bad requests.
func mapError(err error) *echo.HTTPError {
	var (
		limitErr *LimitExceededError
		billErr  *OutstandingBillError
		valErr   *ValidationError
	)
	switch {
	case errors.As(err, &limitErr):
		return echo.NewHTTPError(http.StatusConflict, "Appointment Limit Exceeded: "+err.Error())
	case errors.As(err, &billErr):
		return echo.NewHTTPError(http.StatusConflict, "Outstanding Bills: "+err.Error())
	case errors.As(err, &valErr):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) Book(c echo.Context) error {
	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, err := h.svc.Book(c.Request().Context(), &req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	appt, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	appts, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	appts, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, Status(c.QueryParam("status")), pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, pg.Limit, pg.Offset))
}

func (h *Handler) PatientStats(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	stats, err := h.svc.PatientStats(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListByDentist(c echo.Context) error {
	dentistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	appts, total, err := h.svc.ListByDentist(c.Request().Context(), dentistID, Status(c.QueryParam("status")), pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, pg.Limit, pg.Offset))
}

func (h *Handler) DentistStats(c echo.Context) error {
	dentistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	stats, err := h.svc.DentistStats(c.Request().Context(), dentistID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) WeeklyCount(c echo.Context) error {
	dentistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	at := time.Now()
	if raw := c.QueryParam("at"); raw != "" {
		at, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid at timestamp")
		}
	}
	count, err := h.svc.WeeklyCount(c.Request().Context(), dentistID, at)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	weekStart, weekEnd := WeekWindow(at)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"dentist_id": dentistID,
		"week_start": weekStart,
		"week_end":   weekEnd,
		"count":      count,
		"limit":      WeeklyLimit,
	})
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, err := h.svc.Update(c.Request().Context(), id, &req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
