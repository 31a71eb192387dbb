package pincode

import (
	"errors"
	"net/http"
	"strings"

	"franchise-crm/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

func NewHandler(svc ServiceInterface, validate *validator.Validate) *Handler {
	return &Handler{svc: svc, validate: validate}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/pincodes/:pincode", h.GetPincode)
}

// GetPincode answers GET /pincodes/:pincode with area, city and state.
func (h *Handler) GetPincode(c echo.Context) error {
	code := strings.TrimSpace(c.Param("pincode"))
	if err := h.validate.Var(code, "required,pincode"); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: models.ErrInvalidPostalCode.Error()})
	}

	info, err := h.svc.Lookup(c.Request().Context(), code)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Could not find area, city and state for this pincode"})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "pincode lookup failed"})
	}
	return c.JSON(http.StatusOK, info)
}
