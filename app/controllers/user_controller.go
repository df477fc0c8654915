package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/timenowsbs/timenow/app/models"
	"github.com/timenowsbs/timenow/internal/pkg/constants"
	"github.com/timenowsbs/timenow/internal/pkg/database"
	"github.com/timenowsbs/timenow/internal/pkg/session"
	"github.com/timenowsbs/timenow/internal/pkg/subscription"
	"github.com/timenowsbs/timenow/internal/pkg/usercontext"
)

// HandleUserProfile returns the session user's account data, comment count
// and the derived subscription view.
func HandleUserProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userCtx.UserID).Error; err != nil {
		flash.WithError(c, fiber.Map{"message": "User not found"})
		return c.Redirect(constants.PublicRoute)
	}

	var commentCount int64
	db.Model(&models.BlogComment{}).Where("user_id = ?", userCtx.UserID).Count(&commentCount)

	subSvc := subscription.NewServiceFromDB(db)
	status, err := subSvc.GetStatus(c.Context(), userCtx.UserID)
	if err != nil {
		log.Printf("Error loading subscription for user %d: %v", userCtx.UserID, err)
	}

	return c.JSON(fiber.Map{
		"user":          user,
		"comment_count": commentCount,
		"subscription":  status,
	})
}

// HandleUserSettings updates profile fields. Password changes require the
// current password.
func HandleUserSettings(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userCtx.UserID).Error; err != nil {
		flash.WithError(c, fiber.Map{"message": "User not found"})
		return c.Redirect(constants.PublicRoute)
	}

	if c.Method() != fiber.MethodPost {
		return c.JSON(fiber.Map{"user": user})
	}

	fm := fiber.Map{"type": "error"}

	if name := c.FormValue("username"); name != "" {
		user.Name = name
	}
	if tz := c.FormValue("timezone"); tz != "" {
		user.Timezone = tz
	}

	if newPassword := c.FormValue("new_password"); newPassword != "" {
		if !user.CheckPassword(c.FormValue("current_password")) {
			fm["message"] = "Current password is wrong"
			return flash.WithError(c, fm).Redirect(constants.UserProfileRoute)
		}
		if err := user.SetPassword(newPassword); err != nil {
			fm["message"] = "Password could not be updated"
			return flash.WithError(c, fm).Redirect(constants.UserProfileRoute)
		}
	}

	if err := user.Validate(); err != nil {
		fm["message"] = "Invalid profile data"
		return flash.WithError(c, fm).Redirect(constants.UserProfileRoute)
	}
	if err := db.Save(&user).Error; err != nil {
		log.Printf("Error saving settings for user %d: %v", user.ID, err)
		fm["message"] = "Settings could not be saved"
		return flash.WithError(c, fm).Redirect(constants.UserProfileRoute)
	}

	_ = session.SetSessionValue(c, USER_NAME, user.Name)

	fm = fiber.Map{"type": "success", "message": "Settings saved"}
	return flash.WithSuccess(c, fm).Redirect(constants.UserProfileRoute)
}
