package models

import "time"

// Payment processor constants used across subscription-related models.
const (
	ProcessorStripe   = "stripe"
	ProcessorRazorpay = "razorpay"
	ProcessorPayPal   = "paypal"
)

const (
	PlanFree     = "free"
	PlanStandard = "standard"
	PlanPremium  = "premium"
)

const (
	SubscriptionStatusFree     = "free"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusInactive = "inactive"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription holds the reconciled billing state for one user. There is at
// most one row per user and at most one row per processor customer; the
// reconciler is the only writer besides the checkout-return binding.
type Subscription struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	UserID                  uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Processor               string    `gorm:"type:varchar(20);not null;default:'stripe'" json:"processor"`
	ProcessorCustomerID     *string   `gorm:"type:varchar(191);default:null;index:ux_subscriptions_processor_customer,unique" json:"processor_customer_id,omitempty"`
	ProcessorSubscriptionID *string   `gorm:"type:varchar(191);default:null;index" json:"processor_subscription_id,omitempty"`
	PlanName                string    `gorm:"type:varchar(50);not null;default:'free';index" json:"plan_name"`
	Status                  string    `gorm:"type:varchar(32);not null;default:'free';index" json:"status"`
	CreatedAt               time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsPaid reports whether the row carries a paid plan.
func (s *Subscription) IsPaid() bool {
	return s.PlanName == PlanStandard || s.PlanName == PlanPremium
}
