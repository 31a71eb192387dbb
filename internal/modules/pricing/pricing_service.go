package pricing

import (
	"context"
	"fmt"
	"strings"

	"franchise-crm/internal/models"
	"franchise-crm/internal/modules/distance"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ServiceInterface prices deliveries and manages the rule tables.
type ServiceInterface interface {
	// Compute prices base for variantID at distanceKm using the unowned rules
	// plus those of franchiseID. Without a store every quote has source "none".
	Compute(ctx context.Context, franchiseID, variantID string, distanceKm int, base decimal.Decimal) (*models.PricingQuote, error)
	// Quote resolves the distance between two pincodes and prices it.
	Quote(ctx context.Context, req models.QuoteRequest) (*models.QuoteResponse, error)
	ListRules(ctx context.Context, caller models.Principal, variantID string, global bool) ([]models.PricingRule, error)
	// SaveRule creates (req.ID nil) or updates a per-variant rule, or a
	// global tier when global is true.
	SaveRule(ctx context.Context, caller models.Principal, req models.SaveRuleRequest, global bool) (*models.PricingRule, error)
}

type service struct {
	repo      RepositoryInterface // optional
	distances distance.ServiceInterface
	log       echo.Logger
}

func NewService(repo RepositoryInterface, distances distance.ServiceInterface, logger echo.Logger) ServiceInterface {
	return &service{repo: repo, distances: distances, log: logger}
}

func (s *service) Compute(ctx context.Context, franchiseID, variantID string, distanceKm int, base decimal.Decimal) (*models.PricingQuote, error) {
	var variantRules, tiers []models.PricingRule
	if s.repo != nil {
		var err error
		if variantID != "" {
			variantRules, err = s.repo.ListRules(ctx, RuleFilter{VariantID: variantID, FranchiseID: franchiseID, ActiveOnly: true})
			if err != nil {
				return nil, fmt.Errorf("Compute: variant rules: %w", err)
			}
		}
		tiers, err = s.repo.ListRules(ctx, RuleFilter{GlobalOnly: true, FranchiseID: franchiseID, ActiveOnly: true})
		if err != nil {
			return nil, fmt.Errorf("Compute: global tiers: %w", err)
		}
	}

	q := BuildQuote(base, distanceKm, variantRules, tiers)
	return &q, nil
}

func (s *service) Quote(ctx context.Context, req models.QuoteRequest) (*models.QuoteResponse, error) {
	d := s.distances.Calculate(ctx, req.From, req.To)
	if d.Method == models.MethodEstimation {
		s.log.Infof("pricing: quoting %s-%s on an estimated %d km", req.From, req.To, d.DistanceKm)
	}

	q, err := s.Compute(ctx, req.FranchiseID, req.VariantID, d.DistanceKm, req.BasePrice)
	if err != nil {
		return nil, err
	}
	return &models.QuoteResponse{
		Distance:          d,
		DistanceEstimated: d.Method == models.MethodEstimation,
		Quote:             *q,
	}, nil
}

func (s *service) ListRules(ctx context.Context, caller models.Principal, variantID string, global bool) ([]models.PricingRule, error) {
	if s.repo == nil {
		return nil, models.ErrStoreUnavailable
	}
	f := RuleFilter{VariantID: strings.TrimSpace(variantID), GlobalOnly: global}
	if caller.IsSuperAdmin() {
		f.AllFranchises = true
	} else {
		if caller.FranchiseID == "" {
			return nil, models.ErrForbidden
		}
		f.FranchiseID = caller.FranchiseID
	}
	rules, err := s.repo.ListRules(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("ListRules: %w", err)
	}
	if rules == nil {
		rules = []models.PricingRule{}
	}
	return rules, nil
}

func (s *service) SaveRule(ctx context.Context, caller models.Principal, req models.SaveRuleRequest, global bool) (*models.PricingRule, error) {
	if !canWriteRules(caller.Role) || (!caller.IsSuperAdmin() && caller.FranchiseID == "") {
		return nil, models.ErrForbidden
	}
	if s.repo == nil {
		return nil, models.ErrStoreUnavailable
	}
	if err := checkRule(req, global); err != nil {
		return nil, err
	}

	franchiseID := caller.FranchiseID
	if req.FranchiseID != "" && req.FranchiseID != caller.FranchiseID {
		if !caller.IsSuperAdmin() {
			return nil, models.ErrForbidden
		}
		franchiseID = req.FranchiseID
	}

	if req.ID == nil {
		rule := ruleFromRequest(req, franchiseID, global)
		if err := s.repo.CreateRule(ctx, rule); err != nil {
			return nil, fmt.Errorf("SaveRule: create: %w", err)
		}
		s.log.Infof("pricing: rule %s created by %s", rule.ID, caller.UserID)
		return rule, nil
	}

	existing, err := s.repo.FindRule(ctx, *req.ID)
	if err != nil {
		return nil, fmt.Errorf("SaveRule: find: %w", err)
	}
	if !caller.IsSuperAdmin() && existing.FranchiseID != caller.FranchiseID {
		return nil, models.ErrForbidden
	}
	if existing.IsGlobal() != global {
		return nil, fmt.Errorf("%w: rule %s cannot change between variant rule and global tier", models.ErrInvalidRule, existing.ID)
	}
	if req.VariantID != "" && req.VariantID != existing.VariantID {
		return nil, fmt.Errorf("%w: variant_id cannot be changed", models.ErrInvalidRule)
	}

	if req.FranchiseID == "" || !caller.IsSuperAdmin() {
		franchiseID = existing.FranchiseID
	}
	rule := ruleFromRequest(req, franchiseID, global)
	rule.ID = existing.ID
	rule.VariantID = existing.VariantID
	if req.IsActive == nil {
		rule.IsActive = existing.IsActive
	}
	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("SaveRule: update: %w", err)
	}
	s.log.Infof("pricing: rule %s updated by %s", rule.ID, caller.UserID)
	return rule, nil
}

func canWriteRules(role string) bool {
	switch role {
	case models.RoleSuperAdmin, models.RoleFranchiseAdmin, models.RoleStaff:
		return true
	}
	return false
}

// checkRule covers what struct tags cannot: cross-field ranges, decimal
// signs and the variant/global split.
func checkRule(req models.SaveRuleRequest, global bool) error {
	if global && req.VariantID != "" {
		return fmt.Errorf("%w: global tiers take no variant_id", models.ErrInvalidRule)
	}
	if !global && req.ID == nil && strings.TrimSpace(req.VariantID) == "" {
		return fmt.Errorf("%w: variant_id is required", models.ErrInvalidRule)
	}
	if req.MinKm < 0 {
		return fmt.Errorf("%w: min_km must be >= 0", models.ErrInvalidRule)
	}
	if req.MaxKm != nil && *req.MaxKm <= req.MinKm {
		return models.ErrInvalidRuleRange
	}
	if req.Value.IsNegative() {
		return fmt.Errorf("%w: value must be >= 0", models.ErrInvalidRule)
	}
	switch req.Mode {
	case models.SurchargeFlat, models.SurchargeMultiplier:
	default:
		return fmt.Errorf("%w: mode must be flat or multiplier", models.ErrInvalidRule)
	}
	return nil
}

func ruleFromRequest(req models.SaveRuleRequest, franchiseID string, global bool) *models.PricingRule {
	rule := &models.PricingRule{
		FranchiseID:  franchiseID,
		MinKm:        req.MinKm,
		MaxKm:        req.MaxKm,
		Mode:         req.Mode,
		Value:        req.Value,
		IsActive:     true,
		DisplayOrder: req.DisplayOrder,
	}
	if !global {
		rule.VariantID = strings.TrimSpace(req.VariantID)
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	return rule
}
