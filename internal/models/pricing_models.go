package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SurchargeMode selects how a matched rule adjusts the base price.
type SurchargeMode string

const (
	SurchargeFlat       SurchargeMode = "flat"
	SurchargeMultiplier SurchargeMode = "multiplier"
)

// Pricing sources reported by the compute endpoints.
const (
	PricingSourceVariant = "variant"
	PricingSourceGlobal  = "global"
	PricingSourceNone    = "none"
)

// PricingRule maps an inclusive distance band to a surcharge. Rules with an
// empty VariantID are global tiers. A nil MaxKm means the band is open-ended.
type PricingRule struct {
	ID           uuid.UUID       `json:"id"`
	FranchiseID  string          `json:"franchise_id,omitempty"`
	VariantID    string          `json:"variant_id,omitempty"`
	MinKm        int             `json:"min_km"`
	MaxKm        *int            `json:"max_km"`
	Mode         SurchargeMode   `json:"mode"`
	Value        decimal.Decimal `json:"value"`
	IsActive     bool            `json:"is_active"`
	DisplayOrder int             `json:"display_order"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsGlobal reports whether the rule is a franchise-wide tier rather than a
// per-variant rule.
func (r PricingRule) IsGlobal() bool {
	return r.VariantID == ""
}

// Covers reports whether distanceKm falls inside the rule's inclusive band.
func (r PricingRule) Covers(distanceKm int) bool {
	if distanceKm < r.MinKm {
		return false
	}
	return r.MaxKm == nil || distanceKm <= *r.MaxKm
}

// SaveRuleRequest creates (ID nil) or updates a pricing rule. VariantID is
// required for per-variant rules and must be empty for global tiers.
type SaveRuleRequest struct {
	ID           *uuid.UUID      `json:"id,omitempty"`
	FranchiseID  string          `json:"franchise_id,omitempty"`
	VariantID    string          `json:"variant_id"`
	MinKm        int             `json:"min_km" validate:"gte=0"`
	MaxKm        *int            `json:"max_km,omitempty" validate:"omitempty,gte=0"`
	Mode         SurchargeMode   `json:"mode" validate:"required,oneof=flat multiplier"`
	Value        decimal.Decimal `json:"value"`
	IsActive     *bool           `json:"is_active,omitempty"`
	DisplayOrder int             `json:"display_order" validate:"gte=0"`
}

// QuoteRequest prices a variant for delivery between two pincodes.
type QuoteRequest struct {
	From        string          `json:"from" validate:"required,pincode"`
	To          string          `json:"to" validate:"required,pincode"`
	FranchiseID string          `json:"franchise_id"`
	VariantID   string          `json:"variant_id"`
	BasePrice   decimal.Decimal `json:"base_price"`
}

// PricingQuote is the result of matching a distance against the rule tables.
type PricingQuote struct {
	DistanceKm int             `json:"distance_km"`
	BasePrice  decimal.Decimal `json:"base_price"`
	Addon      decimal.Decimal `json:"addon"`
	FinalPrice decimal.Decimal `json:"final_price"`
	Source     string          `json:"source"`
	Rule       *PricingRule    `json:"rule,omitempty"`
}

// QuoteResponse combines the distance lookup with the priced result.
// DistanceEstimated is set when the distance came from the pincode estimator.
type QuoteResponse struct {
	Distance          DistanceResult `json:"distance"`
	DistanceEstimated bool           `json:"distance_estimated"`
	Quote             PricingQuote   `json:"quote"`
}
