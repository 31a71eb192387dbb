package pricing

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"franchise-crm/internal/middleware"
	"franchise-crm/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

func NewHandler(svc ServiceInterface, validate *validator.Validate) *Handler {
	return &Handler{svc: svc, validate: validate}
}

// RegisterRoutes mounts the pricing routes. Rule listing and authoring run
// behind auth; compute and quote are public.
func (h *Handler) RegisterRoutes(g *echo.Group, auth ...echo.MiddlewareFunc) {
	p := g.Group("/distance-pricing")
	p.GET("/compute", h.Compute)
	p.POST("/quote", h.Quote)

	writers := append(append([]echo.MiddlewareFunc{}, auth...), middleware.RequireRole(models.RoleSuperAdmin, models.RoleFranchiseAdmin, models.RoleStaff))
	p.GET("/rules", h.ListRules, auth...)
	p.GET("/tiers", h.ListTiers, auth...)
	p.POST("/rules", h.SaveRule, writers...)
	p.POST("/tiers", h.SaveTier, writers...)
}

// maxKm bounds the km query parameter so rounding cannot overflow int.
const maxKm = math.MaxInt32

// Compute answers GET /distance-pricing/compute?franchise_id=&variant_id=&km=&base=.
// franchise_id is optional; without it only unowned rules apply.
func (h *Handler) Compute(c echo.Context) error {
	variantID := queryParam(c, "variant_id", "variantId")
	franchiseID := queryParam(c, "franchise_id", "franchiseId")
	km, kmErr := strconv.ParseFloat(c.QueryParam("km"), 64)
	base, baseErr := decimal.NewFromString(c.QueryParam("base"))
	if variantID == "" || kmErr != nil || baseErr != nil || math.IsNaN(km) || km < 0 || km > maxKm {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "variant_id, km and base required"})
	}

	q, err := h.svc.Compute(c.Request().Context(), franchiseID, variantID, int(math.Round(km)), base)
	if err != nil {
		return h.fail(c, err, "compute failed")
	}
	return c.JSON(http.StatusOK, q)
}

func queryParam(c echo.Context, names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(c.QueryParam(n)); v != "" {
			return v
		}
	}
	return ""
}

// Quote answers POST /distance-pricing/quote.
func (h *Handler) Quote(c echo.Context) error {
	var req models.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	req.From = strings.TrimSpace(req.From)
	req.To = strings.TrimSpace(req.To)
	req.FranchiseID = strings.TrimSpace(req.FranchiseID)
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}
	if req.BasePrice.IsNegative() {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "base_price must be >= 0"})
	}

	resp, err := h.svc.Quote(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err, "quote failed")
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListRules(c echo.Context) error {
	return h.list(c, false)
}

func (h *Handler) ListTiers(c echo.Context) error {
	return h.list(c, true)
}

func (h *Handler) list(c echo.Context, global bool) error {
	caller, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Authentication required"})
	}
	rules, err := h.svc.ListRules(c.Request().Context(), caller, c.QueryParam("variant_id"), global)
	if err != nil {
		return h.fail(c, err, "failed to list rules")
	}
	return c.JSON(http.StatusOK, rules)
}

func (h *Handler) SaveRule(c echo.Context) error {
	return h.save(c, false)
}

func (h *Handler) SaveTier(c echo.Context) error {
	return h.save(c, true)
}

func (h *Handler) save(c echo.Context, global bool) error {
	caller, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Authentication required"})
	}
	var req models.SaveRuleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	rule, err := h.svc.SaveRule(c.Request().Context(), caller, req, global)
	if err != nil {
		return h.fail(c, err, "failed to save rule")
	}
	status := http.StatusOK
	if req.ID == nil {
		status = http.StatusCreated
	}
	return c.JSON(status, rule)
}

func (h *Handler) fail(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, models.ErrInvalidRule), errors.Is(err, models.ErrInvalidRuleRange):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	case errors.Is(err, models.ErrForbidden):
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "You don't have access to this pricing rule"})
	case errors.Is(err, models.ErrNotFound):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "pricing rule not found"})
	case errors.Is(err, models.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Message: err.Error()})
	}
	c.Logger().Errorf("pricing: %v", err)
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: fallback})
}
