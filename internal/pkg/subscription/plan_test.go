package subscription

import (
	"testing"

	"github.com/timenowsbs/timenow/app/models"
)

func TestResolvePlan(t *testing.T) {
	priceMap := map[string]string{
		"price_std":  models.PlanStandard,
		"price_prem": models.PlanPremium,
	}

	tests := []struct {
		name    string
		planTag string
		priceID string
		want    string
	}{
		{name: "metadata tag wins over price map", planTag: "premium", priceID: "price_std", want: models.PlanPremium},
		{name: "metadata tag is case-insensitive", planTag: "PREMIUM", priceID: "", want: models.PlanPremium},
		{name: "mapped price without tag", planTag: "", priceID: "price_prem", want: models.PlanPremium},
		{name: "unmapped price falls back to standard", planTag: "", priceID: "price_unknown", want: models.PlanStandard},
		{name: "no tag and no price falls back to standard", planTag: "", priceID: "", want: models.PlanStandard},
		{name: "unknown tag normalizes to free", planTag: "enterprise", priceID: "price_prem", want: models.PlanFree},
	}

	for _, tt := range tests {
		if got := resolvePlan(tt.planTag, tt.priceID, priceMap); got != tt.want {
			t.Fatalf("%s: resolvePlan(%q, %q) = %q, want %q", tt.name, tt.planTag, tt.priceID, got, tt.want)
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "active", want: models.SubscriptionStatusActive},
		{in: "ACTIVE", want: models.SubscriptionStatusActive},
		{in: "past_due", want: models.SubscriptionStatusInactive},
		{in: "trialing", want: models.SubscriptionStatusInactive},
		{in: "", want: models.SubscriptionStatusInactive},
	}

	for _, tt := range tests {
		if got := normalizeStatus(tt.in); got != tt.want {
			t.Fatalf("normalizeStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeriveStatus(t *testing.T) {
	if view := deriveStatus(nil); view.IsPremium || view.IsStandard || view.Status != "free" || view.Plan != "free" {
		t.Fatalf("expected all-free default view, got %+v", view)
	}

	cus := "cus_123"
	view := deriveStatus(&models.Subscription{
		PlanName:            models.PlanPremium,
		Status:              models.SubscriptionStatusActive,
		ProcessorCustomerID: &cus,
	})
	if !view.IsPremium || view.IsStandard {
		t.Fatalf("expected premium view, got %+v", view)
	}
	if view.ProcessorCustomerID != "cus_123" {
		t.Fatalf("expected customer id in view, got %q", view.ProcessorCustomerID)
	}

	view = deriveStatus(&models.Subscription{
		PlanName: models.PlanPremium,
		Status:   models.SubscriptionStatusInactive,
	})
	if view.IsPremium {
		t.Fatalf("inactive premium must not be entitled, got %+v", view)
	}

	view = deriveStatus(&models.Subscription{
		PlanName: models.PlanStandard,
		Status:   models.SubscriptionStatusActive,
	})
	if !view.IsStandard || view.IsPremium {
		t.Fatalf("expected standard view, got %+v", view)
	}
}

func TestPriceIDForPlan(t *testing.T) {
	id, err := PriceIDForPlan("standard", "monthly")
	if err != nil || id == "" {
		t.Fatalf("expected a configured standard monthly price, got %q err %v", id, err)
	}

	// Interval defaults to monthly.
	def, err := PriceIDForPlan("standard", "")
	if err != nil || def != id {
		t.Fatalf("expected default interval monthly, got %q err %v", def, err)
	}

	if _, err := PriceIDForPlan("free", "monthly"); err == nil {
		t.Fatalf("expected no price for the free plan")
	}
	if _, err := PriceIDForPlan("premium", "weekly"); err == nil {
		t.Fatalf("expected no price for an unknown interval")
	}
}
