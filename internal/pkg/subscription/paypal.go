package subscription

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/timenowsbs/timenow/app/models"
)

// PayPal webhooks are recorded and acknowledged but not reconciled yet;
// checkout flows for international users settle through Stripe metadata.
// TODO: wire PayPal cert-chain verification once a live webhook ID exists.

type paypalEventEnvelope struct {
	ID           string `json:"id"`
	EventType    string `json:"event_type"`
	ResourceType string `json:"resource_type"`
}

// ParsePayPalEvent extracts just enough of a PayPal webhook to log and
// deduplicate it; every kind maps to Unhandled.
func ParsePayPalEvent(payload []byte) (Event, error) {
	var env paypalEventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Event{}, fmt.Errorf("invalid paypal payload: %w", err)
	}
	if strings.TrimSpace(env.EventType) == "" {
		return Event{}, fmt.Errorf("paypal payload carries no event type")
	}
	return Event{
		Kind:      EventUnhandled,
		Processor: models.ProcessorPayPal,
		EventID:   env.ID,
		RawType:   env.EventType,
	}, nil
}
