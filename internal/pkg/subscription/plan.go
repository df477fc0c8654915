package subscription

import (
	"strings"

	"github.com/timenowsbs/timenow/app/models"
	"github.com/timenowsbs/timenow/internal/pkg/entitlements"
	"github.com/timenowsbs/timenow/internal/pkg/env"
)

// defaultPriceMap binds the known Stripe price identifiers to plans. The
// checkout path and the reconciler both read from this table; client-supplied
// price IDs are never trusted.
var defaultPriceMap = map[string]string{
	"price_1Sm5uBPbEDCmjAtiBG2dTK5P": models.PlanStandard, // standard monthly
	"price_1Sm5uUPbEDCmjAtisgHV0seJ": models.PlanStandard, // standard annual
	"price_1Smp3QPbEDCmjAtikX1XefQc": models.PlanPremium,  // premium monthly
	"price_1Smp3nPbEDCmjAtijMPZe3Jp": models.PlanPremium,  // premium annual
}

// PriceMap returns the active price-to-plan table. STRIPE_PRICE_MAP may
// override it with "priceID=plan,priceID=plan" pairs.
func PriceMap() map[string]string {
	raw := strings.TrimSpace(env.GetEnv("STRIPE_PRICE_MAP", ""))
	if raw == "" {
		return defaultPriceMap
	}
	m := make(map[string]string, len(defaultPriceMap))
	for k, v := range defaultPriceMap {
		m[k] = v
	}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		id := strings.TrimSpace(parts[0])
		plan := string(entitlements.Normalize(parts[1]))
		if id != "" {
			m[id] = plan
		}
	}
	return m
}

// resolvePlan resolves the plan for a created/updated event: an explicit
// metadata tag wins, then the static price table, then the standard fallback.
func resolvePlan(planTag, priceID string, priceMap map[string]string) string {
	if tag := strings.ToLower(strings.TrimSpace(planTag)); tag != "" {
		return string(entitlements.Normalize(tag))
	}
	if plan, ok := priceMap[strings.TrimSpace(priceID)]; ok {
		return plan
	}
	return models.PlanStandard
}

// normalizeStatus collapses any non-active processor status to inactive.
func normalizeStatus(status string) string {
	if strings.ToLower(strings.TrimSpace(status)) == models.SubscriptionStatusActive {
		return models.SubscriptionStatusActive
	}
	return models.SubscriptionStatusInactive
}

// deriveStatus computes the entitlement view from a stored row.
func deriveStatus(sub *models.Subscription) Status {
	if sub == nil {
		return Status{
			Status: models.SubscriptionStatusFree,
			Plan:   models.PlanFree,
		}
	}
	view := Status{
		Status: sub.Status,
		Plan:   sub.PlanName,
	}
	if sub.ProcessorCustomerID != nil {
		view.ProcessorCustomerID = *sub.ProcessorCustomerID
	}
	if sub.ProcessorSubscriptionID != nil {
		view.ProcessorSubscriptionID = *sub.ProcessorSubscriptionID
	}
	active := sub.Status == models.SubscriptionStatusActive
	view.IsPremium = active && sub.PlanName == models.PlanPremium
	view.IsStandard = active && sub.PlanName == models.PlanStandard
	return view
}
