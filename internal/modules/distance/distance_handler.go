package distance

import (
	"net/http"
	"strings"

	"franchise-crm/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Handler exposes distance lookups over HTTP.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler expects a validator with the "pincode" tag registered.
func NewHandler(svc ServiceInterface, validate *validator.Validate) *Handler {
	return &Handler{svc: svc, validate: validate}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/distance", h.GetDistance)
	g.POST("/distance/batch", h.GetBatchDistances)
}

// GetDistance answers GET /distance?from=X&to=Y. Geocoding failures still
// produce 200 with success=false and method "estimation".
func (h *Handler) GetDistance(c echo.Context) error {
	q := models.DistanceQuery{
		From: strings.TrimSpace(c.QueryParam("from")),
		To:   strings.TrimSpace(c.QueryParam("to")),
	}
	if q.From == "" || q.To == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "missing pincodes: from and to are required"})
	}
	if err := h.validate.Struct(q); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	result := h.svc.Calculate(c.Request().Context(), q.From, q.To)
	return c.JSON(http.StatusOK, result)
}

// GetBatchDistances answers POST /distance/batch.
func (h *Handler) GetBatchDistances(c echo.Context) error {
	var req models.BatchDistanceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	results := h.svc.CalculateBatch(c.Request().Context(), req.From, req.To)
	return c.JSON(http.StatusOK, models.BatchDistanceResponse{
		RequestID: uuid.NewString(),
		From:      req.From,
		Results:   results,
	})
}
