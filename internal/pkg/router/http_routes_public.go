package router

import (
	"github.com/timenowsbs/timenow/app/controllers"
	"github.com/timenowsbs/timenow/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// API routes moved to ApiRouter (internal/pkg/router/api_router.go)

	// Flash helpers
	app.Get("/flash/comment-rate-limit", loggedInMiddleware, controllers.HandleFlashCommentRateLimit)
	app.Get("/flash/error", loggedInMiddleware, controllers.HandleFlashGenericError)

	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Social OAuth
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Payment processor webhooks (no CSRF, signature-verified in controller)
	app.Post("/webhooks/stripe", controllers.HandleStripeWebhook)
	app.Post("/webhooks/razorpay", controllers.HandleRazorpayWebhook)
	app.Post("/webhooks/paypal", controllers.HandlePayPalWebhook)
}
