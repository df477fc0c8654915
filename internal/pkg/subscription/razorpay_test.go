package subscription

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/timenowsbs/timenow/app/models"
)

func TestVerifyRazorpayWebhookSignature(t *testing.T) {
	payload := []byte(`{"event":"subscription.activated"}`)
	secret := "rzp_secret"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	validSig := hex.EncodeToString(mac.Sum(nil))

	if !VerifyRazorpayWebhookSignature(payload, validSig, secret) {
		t.Fatalf("expected signature to validate")
	}
	if VerifyRazorpayWebhookSignature(payload, "deadbeef", secret) {
		t.Fatalf("expected invalid signature to fail")
	}
	if VerifyRazorpayWebhookSignature(payload, validSig, "") {
		t.Fatalf("expected empty secret to fail")
	}
}

func TestParseRazorpayEvent(t *testing.T) {
	raw := []byte(`{
		"event": "subscription.activated",
		"payload": {
			"subscription": {
				"entity": {
					"id": "sub_rzp1",
					"plan_id": "plan_rzp1",
					"customer_id": "cust_rzp1",
					"status": "active",
					"notes": { "planType": "standard" }
				}
			}
		}
	}`)

	ev, err := ParseRazorpayEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Kind != EventSubscriptionCreated || ev.Processor != models.ProcessorRazorpay {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.CustomerID != "cust_rzp1" || ev.PlanTag != "standard" {
		t.Fatalf("unexpected fields: %+v", ev)
	}
	if ev.Status != models.SubscriptionStatusActive {
		t.Fatalf("activation must map to active status, got %q", ev.Status)
	}

	cancelled, err := ParseRazorpayEvent([]byte(`{"event":"subscription.cancelled","payload":{"subscription":{"entity":{"id":"sub_x","customer_id":"cust_x"}}}}`))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if cancelled.Kind != EventSubscriptionDeleted || cancelled.Status != models.SubscriptionStatusCanceled {
		t.Fatalf("unexpected cancellation mapping: %+v", cancelled)
	}

	other, err := ParseRazorpayEvent([]byte(`{"event":"payment.captured"}`))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if other.Kind != EventUnhandled {
		t.Fatalf("unrelated events must map to unhandled, got %+v", other)
	}
}
