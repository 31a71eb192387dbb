package pricing

import (
	"franchise-crm/internal/models"

	"github.com/shopspring/decimal"
)

// MatchRule returns the first rule, in list order, whose inclusive band
// covers distanceKm. Overlapping bands are not detected; the earlier rule wins.
func MatchRule(distanceKm int, rules []models.PricingRule) (*models.PricingRule, bool) {
	for i := range rules {
		if rules[i].Covers(distanceKm) {
			return &rules[i], true
		}
	}
	return nil, false
}

// ApplySurcharge prices base at distanceKm against rules. A flat rule adds
// its value, a multiplier rule scales base by it, and no match leaves base
// unchanged.
func ApplySurcharge(base decimal.Decimal, distanceKm int, rules []models.PricingRule) decimal.Decimal {
	rule, ok := MatchRule(distanceKm, rules)
	if !ok {
		return base
	}
	return applyRule(base, rule)
}

func applyRule(base decimal.Decimal, rule *models.PricingRule) decimal.Decimal {
	switch rule.Mode {
	case models.SurchargeMultiplier:
		return base.Mul(rule.Value)
	default:
		return base.Add(rule.Value)
	}
}

// BuildQuote tries variant rules first and falls back to global tiers only
// when no variant rule covers the distance.
func BuildQuote(base decimal.Decimal, distanceKm int, variantRules, globalTiers []models.PricingRule) models.PricingQuote {
	q := models.PricingQuote{
		DistanceKm: distanceKm,
		BasePrice:  base,
		Addon:      decimal.Zero,
		FinalPrice: base,
		Source:     models.PricingSourceNone,
	}

	rule, ok := MatchRule(distanceKm, variantRules)
	if ok {
		q.Source = models.PricingSourceVariant
	} else if rule, ok = MatchRule(distanceKm, globalTiers); ok {
		q.Source = models.PricingSourceGlobal
	}
	if !ok {
		return q
	}

	q.Rule = rule
	q.FinalPrice = applyRule(base, rule)
	q.Addon = q.FinalPrice.Sub(base)
	return q
}
