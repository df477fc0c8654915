package constants

// Static route constants
const (
	PublicRoute          = "/"
	LoginRoute           = "/login"
	RegisterRoute        = "/register"
	PricingRoute         = "/pricing"
	UserProfileRoute     = "/user/profile"
	CheckoutSuccessRoute = "/checkout/success"
)
