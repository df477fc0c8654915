package subscription

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"

	"github.com/timenowsbs/timenow/app/models"
	"gorm.io/gorm"
)

// Service keeps stored subscription rows consistent with the payment
// processor's view and answers entitlement queries for the rest of the app.
type Service struct {
	repo     Repository
	priceMap map[string]string
}

// NewService creates a reconciler service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, priceMap: PriceMap()}
}

// NewServiceFromDB creates a reconciler service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// GetStatus returns the derived entitlement view for a user. A missing row is
// a normal state: the all-free default is returned without writing anything.
func (s *Service) GetStatus(ctx context.Context, userID uint) (Status, error) {
	_ = ctx
	if userID == 0 {
		return deriveStatus(nil), errors.New("user_id is required")
	}

	sub, err := s.repo.GetSubscriptionByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return deriveStatus(nil), nil
		}
		log.Printf("subscription: status lookup failed for user %d: %v", userID, err)
		return deriveStatus(nil), nil
	}
	return deriveStatus(sub), nil
}

// Reconcile applies one parsed processor event to the store. Events for
// unknown customers are dropped with a log line; the reconciler never invents
// a user binding it cannot verify. Applying the same event twice is
// idempotent.
func (s *Service) Reconcile(ctx context.Context, ev Event) error {
	_ = ctx
	switch ev.Kind {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		plan := resolvePlan(ev.PlanTag, ev.PriceID, s.priceMap)
		status := normalizeStatus(ev.Status)
		return s.applyToCustomer(ev, plan, status)

	case EventSubscriptionDeleted:
		return s.applyToCustomer(ev, models.PlanFree, models.SubscriptionStatusCanceled)

	case EventInvoiceSucceeded:
		log.Printf("subscription: payment succeeded for invoice %s", ev.InvoiceID)
		return nil

	case EventInvoiceFailed:
		log.Printf("subscription: payment failed for invoice %s", ev.InvoiceID)
		return nil

	default:
		log.Printf("subscription: ignoring unhandled event type %q", ev.RawType)
		return nil
	}
}

func (s *Service) applyToCustomer(ev Event, plan, status string) error {
	customerID := strings.TrimSpace(ev.CustomerID)
	if customerID == "" {
		return errors.New("event carries no customer id")
	}

	sub, err := s.repo.GetSubscriptionByCustomerID(customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("subscription: no row for customer %s, dropping %s event", customerID, ev.Kind)
			return nil
		}
		return err
	}

	sub.PlanName = plan
	sub.Status = status
	if subID := strings.TrimSpace(ev.SubscriptionID); subID != "" {
		sub.ProcessorSubscriptionID = &subID
	}
	if p := strings.ToLower(strings.TrimSpace(ev.Processor)); p != "" {
		sub.Processor = p
	}
	return s.repo.SaveSubscription(sub)
}

// CreateOrUpdate optimistically binds a processor customer to a user right
// after the checkout return, before any webhook has necessarily arrived.
// Upserts on user_id; races with Reconcile by design (last write wins, the
// next status read self-heals).
func (s *Service) CreateOrUpdate(ctx context.Context, userID uint, customerID, plan string) (*models.Subscription, error) {
	_ = ctx
	if userID == 0 {
		return nil, errors.New("user_id is required")
	}

	planName := resolveCheckoutPlan(plan)
	status := models.SubscriptionStatusActive
	if planName == models.PlanFree {
		status = models.SubscriptionStatusFree
	}

	sub := &models.Subscription{
		UserID:    userID,
		Processor: models.ProcessorStripe,
		PlanName:  planName,
		Status:    status,
	}
	if c := strings.TrimSpace(customerID); c != "" {
		sub.ProcessorCustomerID = &c
	}
	if err := s.repo.UpsertSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// RecordWebhookEvent persists webhook payloads idempotently. Events without a
// processor-provided ID are deduplicated on a payload hash.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error) {
	_ = ctx
	processor := strings.ToLower(strings.TrimSpace(in.Processor))
	if processor == "" {
		return false, nil, errors.New("processor is required")
	}
	eventID := strings.TrimSpace(in.ProcessorEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEvent{
		Processor:        processor,
		ProcessorEventID: eventID,
		EventType:        strings.TrimSpace(in.EventType),
		PayloadJSON:      in.PayloadJSON,
		SignatureValid:   in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

func resolveCheckoutPlan(plan string) string {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case models.PlanStandard:
		return models.PlanStandard
	case models.PlanPremium:
		return models.PlanPremium
	default:
		return models.PlanFree
	}
}
