package controllers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/timenowsbs/timenow/app/models"
	"github.com/timenowsbs/timenow/internal/pkg/database"
	"github.com/timenowsbs/timenow/internal/pkg/env"
	"github.com/timenowsbs/timenow/internal/pkg/mail"
	"github.com/timenowsbs/timenow/internal/pkg/usercontext"
)

// HandleFeedbackCreate stores a feedback submission and forwards a copy to
// the operators' inbox. Works for anonymous visitors too.
func HandleFeedbackCreate(c *fiber.Ctx) error {
	var body struct {
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	userCtx := usercontext.GetUserContext(c)
	fb := models.Feedback{
		UserID:  userCtx.UserID,
		Email:   body.Email,
		Message: body.Message,
	}
	if err := fb.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed"})
	}

	if err := database.GetDB().Create(&fb).Error; err != nil {
		log.Printf("Error storing feedback: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "feedback_failed"})
	}

	if to := env.GetEnv("FEEDBACK_MAIL_TO", ""); to != "" {
		subject := fmt.Sprintf("New feedback #%d", fb.ID)
		mailBody := fmt.Sprintf("From: %s (user %d)\r\n\r\n%s\r\n", fb.Email, fb.UserID, fb.Message)
		go func() {
			if err := mail.SendMail(to, subject, mailBody); err != nil {
				log.Printf("Error forwarding feedback %d: %v", fb.ID, err)
			}
		}()
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
}
