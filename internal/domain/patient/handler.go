package patient

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eyenotes/emr/pkg/pagination"
)

// DetailSource supplies the visit history and alert lists embedded in the
// single-patient response. Adapters over the visit and alert services
// implement it in main.
type DetailSource interface {
	VisitHistory(ctx context.Context, patientID string) (interface{}, error)
	ActiveAlerts(ctx context.Context, patientID string) (interface{}, error)
}

type Handler struct {
	svc    *Service
	detail DetailSource
}

func NewHandler(svc *Service, detail DetailSource) *Handler {
	return &Handler{svc: svc, detail: detail}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/:id", h.GetPatient)
	api.GET("/patients/mr/:mrNumber", h.CheckMR)
	api.POST("/patients", h.CreatePatient)
	api.PUT("/patients/:id", h.UpdatePatient)
}

// detailResponse is a Patient plus the visit history and alerts the record
// screen shows alongside the demographics.
type detailResponse struct {
	*Patient
	VisitHistory  interface{} `json:"visitHistory,omitempty"`
	MedicalAlerts interface{} `json:"medicalAlerts,omitempty"`
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetPatient(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.svc.Get(ctx, c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := detailResponse{Patient: p}
	if h.detail != nil {
		if visits, err := h.detail.VisitHistory(ctx, p.ID); err == nil {
			resp.VisitHistory = visits
		}
		if alerts, err := h.detail.ActiveAlerts(ctx, p.ID); err == nil {
			resp.MedicalAlerts = alerts
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) CheckMR(c echo.Context) error {
	result, err := h.svc.CheckMR(c.Request().Context(), c.Param("mrNumber"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Register(c.Request().Context(), &p); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = c.Param("id")
	if err := h.svc.Update(c.Request().Context(), &p); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		}
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}
