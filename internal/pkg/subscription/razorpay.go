package subscription

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/timenowsbs/timenow/app/models"
)

// VerifyRazorpayWebhookSignature checks the X-Razorpay-Signature header,
// which is the plain HMAC-SHA256 hex digest of the raw body.
func VerifyRazorpayWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" {
		return false
	}
	decoded, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decoded)
}

type razorpayEventEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Subscription struct {
			Entity struct {
				ID         string            `json:"id"`
				PlanID     string            `json:"plan_id"`
				CustomerID string            `json:"customer_id"`
				Status     string            `json:"status"`
				Notes      map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"subscription"`
		Payment struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseRazorpayEvent maps Razorpay subscription webhooks onto the tagged
// Event shape. Razorpay reports "active"/"halted"/"cancelled" style statuses;
// anything non-active collapses to inactive downstream.
func ParseRazorpayEvent(payload []byte) (Event, error) {
	var env razorpayEventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Event{}, fmt.Errorf("invalid razorpay payload: %w", err)
	}

	ev := Event{
		Processor: models.ProcessorRazorpay,
		RawType:   env.Event,
	}
	entity := env.Payload.Subscription.Entity

	switch env.Event {
	case "subscription.activated", "subscription.authenticated":
		ev.Kind = EventSubscriptionCreated
	case "subscription.updated", "subscription.charged", "subscription.resumed", "subscription.halted":
		ev.Kind = EventSubscriptionUpdated
	case "subscription.cancelled", "subscription.completed":
		ev.Kind = EventSubscriptionDeleted
	default:
		ev.Kind = EventUnhandled
		return ev, nil
	}

	ev.CustomerID = entity.CustomerID
	ev.SubscriptionID = entity.ID
	ev.PriceID = entity.PlanID
	ev.PlanTag = entity.Notes["planType"]
	ev.Status = razorpayStatus(env.Event, entity.Status)
	return ev, nil
}

func razorpayStatus(eventName, entityStatus string) string {
	switch eventName {
	case "subscription.activated", "subscription.authenticated", "subscription.charged", "subscription.resumed":
		return models.SubscriptionStatusActive
	case "subscription.cancelled", "subscription.completed":
		return models.SubscriptionStatusCanceled
	}
	if strings.ToLower(strings.TrimSpace(entityStatus)) == "active" {
		return models.SubscriptionStatusActive
	}
	return models.SubscriptionStatusInactive
}
