package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler serves clinician login. Any non-empty username is accepted and
// issued a token carrying that name; there is no user directory yet.
// TODO: verify credentials against the staff table once one exists.
type Handler struct {
	secret []byte
	ttl    time.Duration
}

func NewHandler(secret []byte, ttl time.Duration) *Handler {
	return &Handler{secret: secret, ttl: ttl}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/login", h.Login)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}
	token, err := IssueToken(h.secret, req.Username, "clinician", h.ttl)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, Name: req.Username})
}
