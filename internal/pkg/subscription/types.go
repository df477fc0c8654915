package subscription

// EventKind enumerates the processor event kinds the reconciler understands.
// Payloads are parsed into this tagged shape at the webhook boundary before
// any reconciliation happens.
type EventKind string

const (
	EventSubscriptionCreated EventKind = "subscription.created"
	EventSubscriptionUpdated EventKind = "subscription.updated"
	EventSubscriptionDeleted EventKind = "subscription.deleted"
	EventInvoiceSucceeded    EventKind = "invoice.succeeded"
	EventInvoiceFailed       EventKind = "invoice.failed"
	EventUnhandled           EventKind = "unhandled"
)

// Event is the processor-agnostic shape handed to Service.Reconcile.
type Event struct {
	Kind           EventKind
	Processor      string
	EventID        string
	RawType        string
	CustomerID     string
	SubscriptionID string
	PriceID        string
	PlanTag        string // explicit plan from event metadata, if any
	Status         string // processor-reported status string
	InvoiceID      string
}

// Status is the derived entitlement view the rest of the application reads.
type Status struct {
	IsPremium               bool   `json:"is_premium"`
	IsStandard              bool   `json:"is_standard"`
	Status                  string `json:"status"`
	Plan                    string `json:"plan"`
	ProcessorCustomerID     string `json:"processor_customer_id,omitempty"`
	ProcessorSubscriptionID string `json:"processor_subscription_id,omitempty"`
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Processor        string
	ProcessorEventID string
	EventType        string
	PayloadJSON      string
	SignatureValid   bool
}
