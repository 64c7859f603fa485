// Package dashboard is a stateless read-time view over the tracker. Every
// render re-queries; there is no cache and no pagination handling beyond
// what one underlying query provides.
package dashboard

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/plantrack/internal/taxonomy"
	"github.com/fyrsmithlabs/plantrack/internal/tracker"
)

// UnknownBadge is rendered when an entity lacks a label for a category.
const UnknownBadge = "UNKNOWN"

// Dashboard aggregates and classifies plan entities for display.
type Dashboard struct {
	client tracker.Client
	logger *zap.Logger
}

// New creates a Dashboard.
func New(client tracker.Client, logger *zap.Logger) *Dashboard {
	return &Dashboard{client: client, logger: logger.Named("dashboard")}
}

// Row is one plan overview with its derived badges.
type Row struct {
	Issue    *tracker.Issue
	Status   string
	Priority string
	Area     string
}

// statusPrecedence is the fixed badge precedence for the status category.
// When an entity somehow carries several status labels, the earliest entry
// here wins.
var statusPrecedence = []string{
	taxonomy.StatusCompleted,
	taxonomy.StatusInProgress,
	taxonomy.StatusBlocked,
	taxonomy.StatusReview,
	taxonomy.StatusPlanning,
}

// badge scans the label set for the first category value in precedence
// order. Absence renders UNKNOWN, never an error.
func badge(issue *tracker.Issue, category string, precedence []string) string {
	for _, value := range precedence {
		if issue.HasLabel(taxonomy.Name(category, value)) {
			return value
		}
	}
	return UnknownBadge
}

func newRow(issue *tracker.Issue) Row {
	return Row{
		Issue:    issue,
		Status:   badge(issue, taxonomy.CategoryStatus, statusPrecedence),
		Priority: badge(issue, taxonomy.CategoryPriority, taxonomy.Priorities()),
		Area:     badge(issue, taxonomy.CategoryArea, taxonomy.Domains()),
	}
}

// Overviews lists plan overviews with derived badges. statusFilter, when
// non-empty, restricts the listing to one status value and is validated
// before any query.
func (d *Dashboard) Overviews(ctx context.Context, statusFilter string) ([]Row, error) {
	labels := []string{taxonomy.Name(taxonomy.CategoryPlan, taxonomy.PlanOverview)}
	if statusFilter != "" {
		status, err := taxonomy.NormalizeStatus(statusFilter)
		if err != nil {
			return nil, err
		}
		labels = append(labels, taxonomy.Name(taxonomy.CategoryStatus, status))
	}

	issues, err := d.client.ListIssues(ctx, tracker.ListOptions{State: "all", Labels: labels})
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, newRow(issue))
	}
	return rows, nil
}

// PhasesFor heuristically finds the phases of an overview: phase entities
// whose title or body references "#<n>", plus a text-search fallback over
// cross-link comments. A soft match; false negatives are a documented
// limitation when comment text diverges from the expected pattern.
func (d *Dashboard) PhasesFor(ctx context.Context, overview int) ([]*tracker.Issue, error) {
	phaseLabel := taxonomy.Name(taxonomy.CategoryPlan, taxonomy.PlanPhase)

	phases, err := d.client.ListIssues(ctx, tracker.ListOptions{State: "all", Labels: []string{phaseLabel}})
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var out []*tracker.Issue
	for _, p := range phases {
		if containsRef(p.Title, overview) || containsRef(p.Body, overview) {
			seen[p.Number] = true
			out = append(out, p)
		}
	}

	// Fallback: the cross-link may live only in a comment, which the list
	// query cannot see but text search can.
	found, err := d.client.SearchIssues(ctx, fmt.Sprintf("#%d", overview))
	if err != nil {
		d.logger.Warn("soft-link search failed, phase list may be incomplete", zap.Error(err))
		return out, nil
	}
	for _, f := range found {
		if f.HasLabel(phaseLabel) && !seen[f.Number] {
			seen[f.Number] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// containsRef reports whether text references "#<n>" with a proper
// boundary, so "#4" does not match "#42".
func containsRef(text string, number int) bool {
	ref := fmt.Sprintf("#%d", number)
	for idx := 0; ; {
		i := strings.Index(text[idx:], ref)
		if i < 0 {
			return false
		}
		end := idx + i + len(ref)
		if end == len(text) || text[end] < '0' || text[end] > '9' {
			return true
		}
		idx = end
	}
}

// Summary holds total and per-category overview counts.
type Summary struct {
	Total      int
	ByStatus   map[string]int
	ByPriority map[string]int
	ByArea     map[string]int
}

// Summarize computes counts with one filtered query per category value; the
// tracker exposes no aggregate queries, so this is O(k) round trips for k
// label values.
func (d *Dashboard) Summarize(ctx context.Context) (*Summary, error) {
	overviewLabel := taxonomy.Name(taxonomy.CategoryPlan, taxonomy.PlanOverview)

	all, err := d.client.ListIssues(ctx, tracker.ListOptions{State: "all", Labels: []string{overviewLabel}})
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Total:      len(all),
		ByStatus:   make(map[string]int),
		ByPriority: make(map[string]int),
		ByArea:     make(map[string]int),
	}

	count := func(category, value string) (int, error) {
		issues, err := d.client.ListIssues(ctx, tracker.ListOptions{
			State:  "all",
			Labels: []string{overviewLabel, taxonomy.Name(category, value)},
		})
		if err != nil {
			return 0, err
		}
		return len(issues), nil
	}

	for _, v := range taxonomy.Statuses() {
		n, err := count(taxonomy.CategoryStatus, v)
		if err != nil {
			return nil, err
		}
		summary.ByStatus[v] = n
	}
	for _, v := range taxonomy.Priorities() {
		n, err := count(taxonomy.CategoryPriority, v)
		if err != nil {
			return nil, err
		}
		summary.ByPriority[v] = n
	}
	for _, v := range taxonomy.Domains() {
		n, err := count(taxonomy.CategoryArea, v)
		if err != nil {
			return nil, err
		}
		summary.ByArea[v] = n
	}
	return summary, nil
}

// Recommendation flags one overview for attention.
type Recommendation struct {
	Number int
	Title  string
	Reason string
}

// Recommend applies fixed, side-effect-free heuristics to a snapshot of
// overview rows.
func Recommend(rows []Row) []Recommendation {
	var recs []Recommendation
	for _, row := range rows {
		switch {
		case row.Status == taxonomy.StatusBlocked:
			recs = append(recs, rec(row, "blocked: review blockers"))
		case row.Status == taxonomy.StatusReview:
			recs = append(recs, rec(row, "in review: needs approval"))
		case row.Priority == "critical" && row.Status == taxonomy.StatusInProgress:
			recs = append(recs, rec(row, "critical work in flight: check resourcing"))
		case row.Status == taxonomy.StatusPlanning:
			recs = append(recs, rec(row, "still planning: ready to advance"))
		}
	}
	return recs
}

func rec(row Row, reason string) Recommendation {
	return Recommendation{Number: row.Issue.Number, Title: row.Issue.Title, Reason: reason}
}
