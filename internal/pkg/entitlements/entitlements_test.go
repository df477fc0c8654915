package entitlements

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Plan
	}{
		{in: "free", want: PlanFree},
		{in: "standard", want: PlanStandard},
		{in: "premium", want: PlanPremium},
		{in: "PREMIUM", want: PlanPremium},
		{in: " standard ", want: PlanStandard},
		{in: "enterprise", want: PlanFree},
		{in: "", want: PlanFree},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRank(t *testing.T) {
	if Rank(PlanFree) >= Rank(PlanStandard) {
		t.Fatalf("expected standard to outrank free")
	}
	if Rank(PlanStandard) >= Rank(PlanPremium) {
		t.Fatalf("expected premium to outrank standard")
	}
}

func TestMaxPlannerTasks(t *testing.T) {
	if got := MaxPlannerTasks(PlanFree); got != 5 {
		t.Fatalf("free plan task limit = %d, want 5", got)
	}
	if got := MaxPlannerTasks(PlanStandard); got != 0 {
		t.Fatalf("standard plan must be unlimited, got %d", got)
	}
	if got := MaxPlannerTasks(PlanPremium); got != 0 {
		t.Fatalf("premium plan must be unlimited, got %d", got)
	}
}

func TestToolAllowed(t *testing.T) {
	if !ToolAllowed(PlanFree, "timer") {
		t.Fatalf("timer must be available on free")
	}
	if ToolAllowed(PlanFree, "worldclock") {
		t.Fatalf("worldclock must not be available on free")
	}
	if !ToolAllowed(PlanStandard, "worldclock") {
		t.Fatalf("worldclock must be available on standard")
	}
	if ToolAllowed(PlanStandard, "countdown") {
		t.Fatalf("countdown must be premium only")
	}
	if !ToolAllowed(PlanPremium, "countdown") {
		t.Fatalf("countdown must be available on premium")
	}
}

func TestCanUseCustomColors(t *testing.T) {
	if CanUseCustomColors(PlanFree) || CanUseCustomColors(PlanStandard) {
		t.Fatalf("custom colors are premium only")
	}
	if !CanUseCustomColors(PlanPremium) {
		t.Fatalf("premium must allow custom colors")
	}
}
