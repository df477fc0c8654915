package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The webhook handlers must reject unsigned deliveries before touching the
// store. No database is wired up in these tests, so any persistence attempt
// on the rejection path would blow up instead of returning the 400.
func TestStripeWebhookRejectsBadSignatureBeforePersisting(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	app := fiber.New()
	app.Post("/webhooks/stripe", HandleStripeWebhook)

	body := `{"id":"evt_123","type":"customer.subscription.updated"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "invalid_signature")
}

func TestStripeWebhookRejectsMissingSignatureHeader(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	app := fiber.New()
	app.Post("/webhooks/stripe", HandleStripeWebhook)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{"id":"evt_123"}`))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRazorpayWebhookRejectsBadSignatureBeforePersisting(t *testing.T) {
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "rzp_test")

	app := fiber.New()
	app.Post("/webhooks/razorpay", HandleRazorpayWebhook)

	body := `{"event":"subscription.activated"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", "deadbeef")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "invalid_signature")
}
