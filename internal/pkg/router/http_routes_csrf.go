package router

import (
	"strings"
	"time"

	"github.com/timenowsbs/timenow/app/controllers"
	"github.com/timenowsbs/timenow/internal/pkg/constants"
	"github.com/timenowsbs/timenow/internal/pkg/env"
	"github.com/timenowsbs/timenow/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Path(), "/webhooks/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/", loggedInMiddleware, controllers.HandleHome)
	group.Get(constants.LoginRoute, loggedInMiddleware, controllers.HandleAuthLogin)
	group.Post(constants.LoginRoute, loggedInMiddleware, controllers.HandleAuthLogin)
	group.Get(constants.RegisterRoute, loggedInMiddleware, controllers.HandleAuthRegister)
	group.Post(constants.RegisterRoute, loggedInMiddleware, controllers.HandleAuthRegister)
	group.Get("/activate", loggedInMiddleware, controllers.HandleAuthActivate)
	group.Get(constants.UserProfileRoute, middleware.RequireAuth, controllers.HandleUserProfile)
	group.Get("/user/settings", middleware.RequireAuth, controllers.HandleUserSettings)
	group.Post("/user/settings", middleware.RequireAuth, controllers.HandleUserSettings)

	// Checkout return from the payment processor
	group.Get(constants.CheckoutSuccessRoute, middleware.RequireAuth, controllers.HandleCheckoutSuccess)
}
