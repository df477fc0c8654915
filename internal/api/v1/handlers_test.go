package apiv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckoutSuccessURLEscapesPlan(t *testing.T) {
	base := "https://timenow.sbs"

	assert.Equal(t,
		"https://timenow.sbs/checkout/success?session_id={CHECKOUT_SESSION_ID}&plan=premium",
		checkoutSuccessURL(base, "premium"))

	// Hostile plan values must not break out of the query string.
	assert.Equal(t,
		"https://timenow.sbs/checkout/success?session_id={CHECKOUT_SESSION_ID}&plan=premium%26admin%3D1%23frag",
		checkoutSuccessURL(base, "premium&admin=1#frag"))
}
