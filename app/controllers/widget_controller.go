package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/timenowsbs/timenow/app/models"
	"github.com/timenowsbs/timenow/internal/pkg/database"
	"github.com/timenowsbs/timenow/internal/pkg/entitlements"
	"github.com/timenowsbs/timenow/internal/pkg/metrics/counter"
	"github.com/timenowsbs/timenow/internal/pkg/usercontext"
)

// HandleWidgetConfigGet returns the session user's synced widget setup,
// creating the default row on first access.
func HandleWidgetConfigGet(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	wc, err := models.GetOrCreateWidgetConfig(database.GetDB(), userCtx.UserID)
	if err != nil {
		log.Printf("Error loading widget config for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "config_unavailable"})
	}

	plan := entitlements.Normalize(userCtx.Plan)
	return c.JSON(fiber.Map{
		"config":        wc.Document(),
		"allowed_tools": entitlements.AllowedWidgetTools(plan),
		"custom_colors": entitlements.CanUseCustomColors(plan),
		"max_tasks":     entitlements.MaxPlannerTasks(plan),
	})
}

// HandleWidgetConfigPut replaces the stored widget config after re-checking
// the caller's entitlements. Client-side gating is advisory only; the write
// path is where the tier actually gets enforced.
func HandleWidgetConfigPut(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var doc models.WidgetConfigDocument
	if err := c.BodyParser(&doc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	plan := entitlements.Normalize(userCtx.Plan)

	for _, tool := range doc.Tools {
		if !entitlements.ToolAllowed(plan, tool) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "tool_not_in_plan",
				"tool":  tool,
			})
		}
	}
	if doc.CustomColors != nil && !entitlements.CanUseCustomColors(plan) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "custom_colors_not_in_plan"})
	}
	if max := entitlements.MaxPlannerTasks(plan); max > 0 && len(doc.Tasks) > max {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":     "task_limit_reached",
			"max_tasks": max,
		})
	}

	db := database.GetDB()
	wc, err := models.GetOrCreateWidgetConfig(db, userCtx.UserID)
	if err != nil {
		log.Printf("Error loading widget config for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "config_unavailable"})
	}
	if err := wc.SetDocument(doc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}
	if err := db.Save(wc).Error; err != nil {
		log.Printf("Error saving widget config for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "config_save_failed"})
	}

	for _, tool := range doc.Tools {
		if err := counter.AddToolUsage(tool); err != nil {
			log.Printf("Error counting tool usage %s: %v", tool, err)
		}
	}

	return c.JSON(fiber.Map{"config": wc.Document()})
}
