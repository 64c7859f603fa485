// Package taxonomy defines the canonical label set that encodes the
// planning schema on top of plain tracker labels, and provisions it.
//
// Labels follow the category:value convention. The tracker has no notion of
// entity types; an issue is a plan, phase, or closeout purely because of its
// plan:* label.
package taxonomy

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/plantrack/internal/tracker"
)

// Label categories.
const (
	CategoryPlan     = "plan"
	CategoryPriority = "priority"
	CategoryStatus   = "status"
	CategoryArea     = "area"
)

// plan:* values.
const (
	PlanOverview = "overview"
	PlanPhase    = "phase"
	PlanCloseout = "closeout"
)

// status:* values, in lifecycle order.
const (
	StatusPlanning   = "planning"
	StatusInProgress = "in-progress"
	StatusBlocked    = "blocked"
	StatusReview     = "review"
	StatusCompleted  = "completed"
)

// Priorities lists valid priority:* values from most to least urgent.
func Priorities() []string {
	return []string{"critical", "high", "medium", "low"}
}

// Statuses lists valid status:* values in lifecycle order.
func Statuses() []string {
	return []string{StatusPlanning, StatusInProgress, StatusBlocked, StatusReview, StatusCompleted}
}

// Domains lists valid area:* values in canonical order.
func Domains() []string {
	return []string{"physics", "data", "plotting", "testing", "infrastructure", "docs"}
}

// Name builds a category:value label name.
func Name(category, value string) string {
	return category + ":" + value
}

// NormalizePriority lowercases and validates a priority value.
func NormalizePriority(v string) (string, error) {
	return normalizeEnum(CategoryPriority, v, Priorities())
}

// NormalizeDomain lowercases and validates a domain value.
func NormalizeDomain(v string) (string, error) {
	return normalizeEnum(CategoryArea, v, Domains())
}

// NormalizeStatus lowercases and validates a status value.
func NormalizeStatus(v string) (string, error) {
	return normalizeEnum(CategoryStatus, v, Statuses())
}

func normalizeEnum(category, v string, valid []string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(v))
	for _, ok := range valid {
		if lower == ok {
			return lower, nil
		}
	}
	return "", fmt.Errorf("invalid %s %q (valid: %s)", category, v, strings.Join(valid, ", "))
}

// All returns the full canonical label set in provisioning order.
func All() []tracker.Label {
	return []tracker.Label{
		{Name: Name(CategoryPlan, PlanOverview), Color: "1D76DB", Description: "Top-level plan"},
		{Name: Name(CategoryPlan, PlanPhase), Color: "0E8A16", Description: "Phase of a plan"},
		{Name: Name(CategoryPlan, PlanCloseout), Color: "5319E7", Description: "Plan completion record"},

		{Name: Name(CategoryPriority, "critical"), Color: "B60205", Description: "Drop everything"},
		{Name: Name(CategoryPriority, "high"), Color: "D93F0B", Description: "High priority"},
		{Name: Name(CategoryPriority, "medium"), Color: "FBCA04", Description: "Medium priority"},
		{Name: Name(CategoryPriority, "low"), Color: "C2E0C6", Description: "Low priority"},

		{Name: Name(CategoryStatus, StatusPlanning), Color: "C5DEF5", Description: "Being planned"},
		{Name: Name(CategoryStatus, StatusInProgress), Color: "0052CC", Description: "Work underway"},
		{Name: Name(CategoryStatus, StatusBlocked), Color: "E99695", Description: "Blocked on something"},
		{Name: Name(CategoryStatus, StatusReview), Color: "F9D0C4", Description: "Awaiting review"},
		{Name: Name(CategoryStatus, StatusCompleted), Color: "0E8A16", Description: "Done"},

		{Name: Name(CategoryArea, "physics"), Color: "5319E7", Description: "Physics engine"},
		{Name: Name(CategoryArea, "data"), Color: "1D76DB", Description: "Data handling"},
		{Name: Name(CategoryArea, "plotting"), Color: "0E8A16", Description: "Plotting and output"},
		{Name: Name(CategoryArea, "testing"), Color: "FBCA04", Description: "Test infrastructure"},
		{Name: Name(CategoryArea, "infrastructure"), Color: "D4C5F9", Description: "Build and tooling"},
		{Name: Name(CategoryArea, "docs"), Color: "006B75", Description: "Documentation"},
	}
}
