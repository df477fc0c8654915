package subscription

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/timenowsbs/timenow/app/models"
)

// Tolerance for the timestamp embedded in Stripe signature headers.
const stripeSignatureTolerance = 5 * time.Minute

// VerifyStripeWebhookSignature checks a Stripe-Signature header
// ("t=<unix>,v1=<hex>") against the shared endpoint secret. The signed
// payload is "<t>.<body>" with HMAC-SHA256.
func VerifyStripeWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	return verifyStripeSignatureAt(payload, signatureHeader, webhookSecret, time.Now())
}

func verifyStripeSignatureAt(payload []byte, signatureHeader, webhookSecret string, now time.Time) bool {
	header := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if header == "" || secret == "" {
		return false
	}

	var timestamp int64
	var signatures [][]byte
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return false
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(kv[1])
			if err == nil {
				signatures = append(signatures, sig)
			}
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return false
	}

	age := now.Sub(time.Unix(timestamp, 0))
	if age > stripeSignatureTolerance || age < -stripeSignatureTolerance {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	expected := mac.Sum(nil)
	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return true
		}
	}
	return false
}

type stripeEventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object stripeEventObject `json:"object"`
	} `json:"data"`
}

type stripeEventObject struct {
	ID       string            `json:"id"`
	Customer string            `json:"customer"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
	Items    struct {
		Data []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// ParseStripeEvent turns a raw Stripe webhook payload into the tagged Event
// shape the reconciler consumes.
func ParseStripeEvent(payload []byte) (Event, error) {
	var env stripeEventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Event{}, fmt.Errorf("invalid stripe payload: %w", err)
	}
	if strings.TrimSpace(env.Type) == "" {
		return Event{}, errors.New("stripe payload carries no event type")
	}

	ev := Event{
		Processor: models.ProcessorStripe,
		EventID:   env.ID,
		RawType:   env.Type,
	}

	switch env.Type {
	case "customer.subscription.created":
		ev.Kind = EventSubscriptionCreated
	case "customer.subscription.updated":
		ev.Kind = EventSubscriptionUpdated
	case "customer.subscription.deleted":
		ev.Kind = EventSubscriptionDeleted
	case "invoice.payment_succeeded":
		ev.Kind = EventInvoiceSucceeded
		ev.InvoiceID = env.Data.Object.ID
		return ev, nil
	case "invoice.payment_failed":
		ev.Kind = EventInvoiceFailed
		ev.InvoiceID = env.Data.Object.ID
		return ev, nil
	default:
		ev.Kind = EventUnhandled
		return ev, nil
	}

	obj := env.Data.Object
	ev.CustomerID = obj.Customer
	ev.SubscriptionID = obj.ID
	ev.Status = obj.Status
	ev.PlanTag = obj.Metadata["planType"]
	if len(obj.Items.Data) > 0 {
		ev.PriceID = obj.Items.Data[0].Price.ID
	}
	return ev, nil
}
