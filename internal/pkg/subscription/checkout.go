package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/timenowsbs/timenow/app/models"
	"github.com/timenowsbs/timenow/internal/pkg/env"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com"

// Billing intervals offered on the pricing page.
const (
	IntervalMonthly = "monthly"
	IntervalAnnual  = "annual"
)

// planPrices is the server-side plan+interval to price table. Checkout never
// accepts a client-supplied price identifier.
var planPrices = map[string]string{
	models.PlanStandard + ":" + IntervalMonthly: "price_1Sm5uBPbEDCmjAtiBG2dTK5P",
	models.PlanStandard + ":" + IntervalAnnual:  "price_1Sm5uUPbEDCmjAtisgHV0seJ",
	models.PlanPremium + ":" + IntervalMonthly:  "price_1Smp3QPbEDCmjAtikX1XefQc",
	models.PlanPremium + ":" + IntervalAnnual:   "price_1Smp3nPbEDCmjAtijMPZe3Jp",
}

// PriceIDForPlan resolves a plan and billing interval to the configured
// processor price identifier.
func PriceIDForPlan(plan, interval string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(plan))
	i := strings.ToLower(strings.TrimSpace(interval))
	if i == "" {
		i = IntervalMonthly
	}
	priceID, ok := planPrices[p+":"+i]
	if !ok {
		return "", fmt.Errorf("no price configured for plan %q interval %q", plan, interval)
	}
	return priceID, nil
}

// StripeClient creates checkout sessions against the Stripe API.
type StripeClient struct {
	SecretKey  string
	APIBaseURL string

	HTTPClient *http.Client
}

// CheckoutSession is the subset of the session object the app needs.
type CheckoutSession struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Customer string `json:"customer"`
}

func NewStripeClientFromEnv() *StripeClient {
	return &StripeClient{
		SecretKey:  strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		APIBaseURL: strings.TrimRight(env.GetEnv("STRIPE_API_BASE_URL", defaultStripeAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateCheckoutSession starts a subscription checkout for the given plan.
// The plan tag travels in the subscription metadata so the webhook can
// resolve it without a price lookup.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, plan, interval, successURL, cancelURL string) (*CheckoutSession, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not configured")
	}
	priceID, err := PriceIDForPlan(plan, interval)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	form.Set("subscription_data[metadata][planType]", strings.ToLower(strings.TrimSpace(plan)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stripe checkout session failed with status %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("invalid checkout session response: %w", err)
	}
	if session.ID == "" || session.URL == "" {
		return nil, errors.New("checkout session response is missing id or url")
	}
	return &session, nil
}

// RetrieveCheckoutSession loads a completed checkout session so the return
// handler can read the processor customer binding.
func (c *StripeClient) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not configured")
	}
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, errors.New("session id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBaseURL+"/v1/checkout/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stripe checkout session lookup failed with status %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("invalid checkout session response: %w", err)
	}
	return &session, nil
}
