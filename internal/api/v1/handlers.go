package apiv1

import (
	"context"
	"log"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/timenowsbs/timenow/app/controllers"
	"github.com/timenowsbs/timenow/internal/pkg/database"
	"github.com/timenowsbs/timenow/internal/pkg/env"
	"github.com/timenowsbs/timenow/internal/pkg/middleware"
	"github.com/timenowsbs/timenow/internal/pkg/session"
	"github.com/timenowsbs/timenow/internal/pkg/subscription"
	"github.com/timenowsbs/timenow/internal/pkg/usercontext"
)

// Pong is the ping endpoint response body.
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer carries the JSON API handlers.
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// RegisterHandlers attaches the v1 surface to the given router group.
func RegisterHandlers(r fiber.Router, s *APIServer) {
	r.Get("/ping", s.GetPing)

	r.Get("/subscription", middleware.RequireAPISessionAuth, s.GetSubscription)
	r.Post("/checkout", middleware.RequireAPISessionAuth, s.PostCheckout)

	r.Get("/blog/posts", controllers.HandleBlogPosts)
	r.Get("/blog/posts/:slug", controllers.HandleBlogPostShow)
	r.Get("/blog/posts/:id/comments", controllers.HandleBlogCommentsList)
	r.Post("/blog/posts/:id/comments", controllers.HandleBlogCommentCreate)
	r.Put("/blog/comments/:id", middleware.RequireAPISessionAuth, controllers.HandleBlogCommentUpdate)
	r.Delete("/blog/comments/:id", middleware.RequireAPISessionAuth, controllers.HandleBlogCommentDelete)
	r.Post("/blog/posts/:id/vote", controllers.HandleBlogVote)
	r.Get("/blog/posts/:id/vote", controllers.HandleBlogUserVote)
	r.Get("/blog/posts/:id/stats", controllers.HandleBlogStats)

	r.Get("/widget/config", middleware.RequireAPISessionAuth, controllers.HandleWidgetConfigGet)
	r.Put("/widget/config", middleware.RequireAPISessionAuth, controllers.HandleWidgetConfigPut)

	r.Post("/feedback", controllers.HandleFeedbackCreate)
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetSubscription returns the derived subscription view for the session user.
// A user without any subscription row gets the free default.
func (s *APIServer) GetSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	svc := subscription.NewServiceFromDB(database.GetDB())
	status, err := svc.GetStatus(c.Context(), userCtx.UserID)
	if err != nil {
		log.Printf("Error loading subscription for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_unavailable"})
	}

	return c.JSON(status)
}

// PostCheckout starts a processor checkout session for the requested plan.
// The price is resolved server-side from the plan and interval; client price
// identifiers are never accepted.
func (s *APIServer) PostCheckout(c *fiber.Ctx) error {
	var body struct {
		Plan     string `json:"plan"`
		Interval string `json:"interval"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	base := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:"+env.GetEnv("APP_PORT", "4000"))
	successURL := checkoutSuccessURL(base, body.Plan)
	cancelURL := base + "/pricing"

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client := subscription.NewStripeClientFromEnv()
	checkout, err := client.CreateCheckoutSession(ctx, body.Plan, body.Interval, successURL, cancelURL)
	if err != nil {
		log.Printf("Error creating checkout session: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "checkout_failed"})
	}

	// Remember the plan for the return handler in case the query is stripped.
	_ = session.SetSessionValue(c, "checkout_plan", body.Plan)

	return c.JSON(fiber.Map{"id": checkout.ID, "url": checkout.URL})
}

// checkoutSuccessURL builds the processor return URL. The session id stays a
// literal {CHECKOUT_SESSION_ID} placeholder for the processor to substitute;
// the plan is client input and gets escaped.
func checkoutSuccessURL(base, plan string) string {
	return base + "/checkout/success?session_id={CHECKOUT_SESSION_ID}&plan=" + url.QueryEscape(plan)
}
