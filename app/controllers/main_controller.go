package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/timenowsbs/timenow/internal/pkg/env"
	"github.com/timenowsbs/timenow/internal/pkg/metrics/counter"
	"github.com/timenowsbs/timenow/internal/pkg/statistics"
)

// HandleHome reports service liveness plus the cached landing-page numbers.
func HandleHome(c *fiber.Ctx) error {
	stats := statistics.GetStatisticsData()

	toolUsage, err := counter.ToolUsageSnapshot()
	if err != nil {
		toolUsage = map[string]int64{}
	}

	return c.JSON(fiber.Map{
		"app": "timenow",
		"env": env.GetEnv("APP_ENV", "prod"),
		"stats": fiber.Map{
			"total_users":    stats.TotalUsers,
			"total_comments": stats.TotalComments,
			"today_comments": stats.TodayComments,
			"tool_usage":     toolUsage,
		},
	})
}
