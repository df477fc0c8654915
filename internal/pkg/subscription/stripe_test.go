package subscription

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"
)

func signStripePayload(payload []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyStripeWebhookSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	secret := "whsec_test"
	now := time.Unix(1700000000, 0)

	header := signStripePayload(payload, secret, now.Unix())
	if !verifyStripeSignatureAt(payload, header, secret, now) {
		t.Fatalf("expected valid signature to verify")
	}

	if verifyStripeSignatureAt(payload, header, "whsec_other", now) {
		t.Fatalf("expected wrong secret to fail")
	}
	if verifyStripeSignatureAt([]byte(`{"id":"evt_2"}`), header, secret, now) {
		t.Fatalf("expected tampered payload to fail")
	}
	if verifyStripeSignatureAt(payload, header, secret, now.Add(10*time.Minute)) {
		t.Fatalf("expected stale timestamp to fail")
	}
	if verifyStripeSignatureAt(payload, "", secret, now) {
		t.Fatalf("expected empty header to fail")
	}
	if verifyStripeSignatureAt(payload, "t=abc,v1=deadbeef", secret, now) {
		t.Fatalf("expected malformed timestamp to fail")
	}
}

func TestParseStripeEventSubscriptionUpdated(t *testing.T) {
	raw := []byte(`{
		"id": "evt_42",
		"type": "customer.subscription.updated",
		"data": {
			"object": {
				"id": "sub_42",
				"customer": "cus_42",
				"status": "active",
				"metadata": { "planType": "premium" },
				"items": { "data": [ { "price": { "id": "price_abc" } } ] }
			}
		}
	}`)

	ev, err := ParseStripeEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Kind != EventSubscriptionUpdated {
		t.Fatalf("expected subscription.updated kind, got %q", ev.Kind)
	}
	if ev.CustomerID != "cus_42" || ev.SubscriptionID != "sub_42" {
		t.Fatalf("unexpected ids: %+v", ev)
	}
	if ev.PlanTag != "premium" || ev.PriceID != "price_abc" || ev.Status != "active" {
		t.Fatalf("unexpected plan resolution inputs: %+v", ev)
	}
}

func TestParseStripeEventKinds(t *testing.T) {
	tests := []struct {
		eventType string
		want      EventKind
	}{
		{eventType: "customer.subscription.created", want: EventSubscriptionCreated},
		{eventType: "customer.subscription.deleted", want: EventSubscriptionDeleted},
		{eventType: "invoice.payment_succeeded", want: EventInvoiceSucceeded},
		{eventType: "invoice.payment_failed", want: EventInvoiceFailed},
		{eventType: "checkout.session.completed", want: EventUnhandled},
		{eventType: "charge.refunded", want: EventUnhandled},
	}

	for _, tt := range tests {
		raw := []byte(fmt.Sprintf(`{"id":"evt_x","type":%q,"data":{"object":{"id":"obj_1"}}}`, tt.eventType))
		ev, err := ParseStripeEvent(raw)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.eventType, err)
		}
		if ev.Kind != tt.want {
			t.Fatalf("%s: kind = %q, want %q", tt.eventType, ev.Kind, tt.want)
		}
	}

	if _, err := ParseStripeEvent([]byte(`not json`)); err == nil {
		t.Fatalf("expected malformed payload to fail")
	}
	if _, err := ParseStripeEvent([]byte(`{"id":"evt_y"}`)); err == nil {
		t.Fatalf("expected missing event type to fail")
	}
}
