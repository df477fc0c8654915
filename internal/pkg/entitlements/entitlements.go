package entitlements

import "strings"

type Plan string

const (
	PlanFree     Plan = "free"
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

// Normalize folds arbitrary plan strings onto a known plan, defaulting to free.
func Normalize(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanStandard):
		return PlanStandard
	case string(PlanPremium):
		return PlanPremium
	default:
		return PlanFree
	}
}

// Rank orders plans for best-plan selection.
func Rank(plan Plan) int {
	switch plan {
	case PlanPremium:
		return 2
	case PlanStandard:
		return 1
	default:
		return 0
	}
}

// MaxPlannerTasks returns the daily planner task limit for a plan.
// Zero means unlimited.
func MaxPlannerTasks(plan Plan) int {
	if plan == PlanFree {
		return 5
	}
	return 0
}

// AllowedWidgetTools returns which widget tools a plan may enable.
func AllowedWidgetTools(plan Plan) []string {
	base := []string{"timer", "stopwatch", "planner", "converter"}
	switch plan {
	case PlanPremium:
		return append(base, "worldclock", "countdown")
	case PlanStandard:
		return append(base, "worldclock")
	default:
		return base
	}
}

// CanUseCustomColors reports whether widget color overrides are available.
func CanUseCustomColors(plan Plan) bool {
	return plan == PlanPremium
}

// ToolAllowed checks a single tool name against the plan's allowance.
func ToolAllowed(plan Plan, tool string) bool {
	for _, t := range AllowedWidgetTools(plan) {
		if t == strings.ToLower(strings.TrimSpace(tool)) {
			return true
		}
	}
	return false
}
