package visit

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:id/visits", h.ListVisits)
	api.POST("/patients/:id/visits", h.LogVisit)
}

func (h *Handler) ListVisits(c echo.Context) error {
	visits, err := h.svc.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if visits == nil {
		visits = []*Visit{}
	}
	return c.JSON(http.StatusOK, visits)
}

func (h *Handler) LogVisit(c echo.Context) error {
	var v Visit
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v.PatientID = c.Param("id")
	if err := h.svc.Log(c.Request().Context(), &v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, v)
}
