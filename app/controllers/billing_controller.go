package controllers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/timenowsbs/timenow/app/models"
	"github.com/timenowsbs/timenow/internal/pkg/constants"
	"github.com/timenowsbs/timenow/internal/pkg/database"
	"github.com/timenowsbs/timenow/internal/pkg/env"
	"github.com/timenowsbs/timenow/internal/pkg/session"
	"github.com/timenowsbs/timenow/internal/pkg/subscription"
	"github.com/timenowsbs/timenow/internal/pkg/usercontext"
)

// HandleStripeWebhook verifies, dedupes and reconciles Stripe events. The
// response is 2xx for everything the processor should not retry; only a bad
// signature or an unparseable payload earns a 400. An unsigned delivery is
// rejected before anything is persisted, so it never consumes the dedupe
// slot for its event ID and the processor's signed retry still reconciles.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	if !subscription.VerifyStripeWebhookSignature(rawBody, signature, secret) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
	}

	svc := subscription.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	ev, parseErr := subscription.ParseStripeEvent(rawBody)

	created, stored, err := svc.RecordWebhookEvent(ctx, subscription.WebhookEventInput{
		Processor:        models.ProcessorStripe,
		ProcessorEventID: ev.EventID,
		EventType:        ev.RawType,
		PayloadJSON:      string(rawBody),
		SignatureValid:   true,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if parseErr != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, parseErr)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}
	if ev.Kind == subscription.EventUnhandled {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	reconcileErr := svc.Reconcile(ctx, ev)
	_ = svc.MarkWebhookProcessed(ctx, stored.ID, reconcileErr)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// HandleRazorpayWebhook mirrors the Stripe flow with Razorpay's body
// signature. Unsigned deliveries are rejected before any persistence.
func HandleRazorpayWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("X-Razorpay-Signature"))
	secret := env.GetEnv("RAZORPAY_WEBHOOK_SECRET", "")

	if !subscription.VerifyRazorpayWebhookSignature(rawBody, signature, secret) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
	}

	svc := subscription.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	ev, parseErr := subscription.ParseRazorpayEvent(rawBody)

	created, stored, err := svc.RecordWebhookEvent(ctx, subscription.WebhookEventInput{
		Processor:        models.ProcessorRazorpay,
		ProcessorEventID: ev.EventID,
		EventType:        ev.RawType,
		PayloadJSON:      string(rawBody),
		SignatureValid:   true,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if parseErr != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, parseErr)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}
	if ev.Kind == subscription.EventUnhandled {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	reconcileErr := svc.Reconcile(ctx, ev)
	_ = svc.MarkWebhookProcessed(ctx, stored.ID, reconcileErr)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// HandlePayPalWebhook records PayPal deliveries and acknowledges them. No
// PayPal event kind drives reconciliation yet.
func HandlePayPalWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	svc := subscription.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	ev, parseErr := subscription.ParsePayPalEvent(rawBody)
	if parseErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	created, stored, err := svc.RecordWebhookEvent(ctx, subscription.WebhookEventInput{
		Processor:        models.ProcessorPayPal,
		ProcessorEventID: ev.EventID,
		EventType:        ev.RawType,
		PayloadJSON:      string(rawBody),
		SignatureValid:   false,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
}

// HandleCheckoutSuccess binds the returning checkout to the session user.
// Identity comes from the active session only; the query carries the session
// id and the purchased plan.
func HandleCheckoutSuccess(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect(constants.LoginRoute, fiber.StatusSeeOther)
	}

	sessionID := strings.TrimSpace(c.Query("session_id"))
	plan := strings.TrimSpace(c.Query("plan"))
	if plan == "" {
		plan = session.GetSessionValue(c, "checkout_plan")
	}
	if sessionID == "" || plan == "" {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Checkout return is missing session or plan"}).Redirect(constants.PricingRoute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	// The customer binding comes from the processor, never from the query.
	customerID := ""
	client := subscription.NewStripeClientFromEnv()
	if checkout, err := client.RetrieveCheckoutSession(ctx, sessionID); err == nil {
		customerID = checkout.Customer
	}

	svc := subscription.NewServiceFromDB(database.GetDB())
	sub, err := svc.CreateOrUpdate(ctx, userCtx.UserID, customerID, plan)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Subscription could not be updated"}).Redirect(constants.PricingRoute)
	}

	_ = session.SetSessionValue(c, "user_plan", sub.PlanName)
	msg := fmt.Sprintf("Thanks! Your %s plan is active.", sub.PlanName)
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": msg}).Redirect(constants.UserProfileRoute)
}
