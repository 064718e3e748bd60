package emr

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eyenotes/emr/internal/platform/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:id/emr", h.All)
	api.GET("/patients/:id/emr/:section", h.Get)
	api.POST("/patients/:id/emr/:section", h.Save)
	api.DELETE("/patients/:id/emr/:section", h.Delete)
}

type saveRequest struct {
	Data      json.RawMessage `json:"data"`
	CreatedBy string          `json:"createdBy"`
}

func (h *Handler) Save(c echo.Context) error {
	kind, err := ParseKind(c.Param("section"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req saveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Data) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "data is required")
	}

	// The signed-in user is the author of record; the body's createdBy is
	// only honored when the request carries no identity.
	author := auth.CurrentUser(c)
	if author == "" {
		author = req.CreatedBy
	}

	rec, err := h.service.Save(c.Request().Context(), c.Param("id"), kind, req.Data, author)
	if err != nil {
		if _, ok := err.(*SchemaError); ok {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rec.Result())
}

func (h *Handler) Get(c echo.Context) error {
	kind, err := ParseKind(c.Param("section"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.service.Get(c.Request().Context(), c.Param("id"), kind)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) All(c echo.Context) error {
	sections, err := h.service.All(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"sections": sections})
}

func (h *Handler) Delete(c echo.Context) error {
	kind, err := ParseKind(c.Param("section"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.Delete(c.Request().Context(), c.Param("id"), kind); err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "section record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
