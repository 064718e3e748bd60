package alert

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
	api.GET("/patients/:id/alerts", h.ListAlerts)
	api.POST("/patients/:id/alerts", h.AddAlert)
}

func (h *Handler) ListAlerts(c echo.Context) error {
	alerts, err := h.svc.ListActive(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if alerts == nil {
		alerts = []*MedicalAlert{}
	}
	return c.JSON(http.StatusOK, alerts)
}

func (h *Handler) AddAlert(c echo.Context) error {
	var a MedicalAlert
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.PatientID = c.Param("id")
	if err := h.svc.Add(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}
