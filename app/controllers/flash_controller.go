package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
)

// HandleFlashCommentRateLimit sets a flash error and redirects to home
func HandleFlashCommentRateLimit(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type":    "error",
		"message": "Comment limit reached. Please wait a moment and try again.",
	}
	flash.WithError(c, fm)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleFlashGenericError shows a generic error from the query string
// Query: ?msg=...
func HandleFlashGenericError(c *fiber.Ctx) error {
	msg := c.Query("msg", "Something went wrong. Please try again.")
	if len(msg) > 300 {
		msg = msg[:300]
	}
	fm := fiber.Map{
		"type":    "error",
		"message": msg,
	}
	flash.WithError(c, fm)
	return c.Redirect("/", fiber.StatusSeeOther)
}
