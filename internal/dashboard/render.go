package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/plantrack/internal/taxonomy"
)

// Mode selects which sections a render includes.
type Mode int

const (
	// ModeFull renders overviews, summary, and recommendations.
	ModeFull Mode = iota
	// ModeSummary renders only the counts.
	ModeSummary
	// ModeDetailed is ModeFull plus a phase listing per overview.
	ModeDetailed
	// ModeRecommendations renders only the recommendations.
	ModeRecommendations
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45")).MarginTop(1)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	badgeBase = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	statusColors = map[string]string{
		taxonomy.StatusCompleted:  "46",
		taxonomy.StatusInProgress: "39",
		taxonomy.StatusBlocked:    "196",
		taxonomy.StatusReview:     "214",
		taxonomy.StatusPlanning:   "110",
		UnknownBadge:              "240",
	}
	priorityColors = map[string]string{
		"critical":   "196",
		"high":       "208",
		"medium":     "226",
		"low":        "114",
		UnknownBadge: "240",
	}
)

func statusBadge(value string) string {
	color, ok := statusColors[value]
	if !ok {
		color = statusColors[UnknownBadge]
	}
	return badgeBase.Foreground(lipgloss.Color(color)).Render(strings.ToUpper(value))
}

func priorityBadge(value string) string {
	color, ok := priorityColors[value]
	if !ok {
		color = priorityColors[UnknownBadge]
	}
	return badgeBase.Foreground(lipgloss.Color(color)).Render(strings.ToUpper(value))
}

// Render queries the tracker and writes the requested sections. Each call
// is a fresh snapshot.
func (d *Dashboard) Render(ctx context.Context, w io.Writer, mode Mode, statusFilter string) error {
	fmt.Fprintln(w, titleStyle.Render("Plan Dashboard"))

	var rows []Row
	if mode != ModeSummary {
		var err error
		rows, err = d.Overviews(ctx, statusFilter)
		if err != nil {
			return err
		}
	}

	if mode == ModeFull || mode == ModeDetailed {
		fmt.Fprintln(w, sectionStyle.Render("Overviews"))
		if len(rows) == 0 {
			fmt.Fprintln(w, dimStyle.Render("  no plans found"))
		}
		for _, row := range rows {
			fmt.Fprintf(w, "  #%-4d %s %s %s %s\n",
				row.Issue.Number,
				statusBadge(row.Status),
				priorityBadge(row.Priority),
				dimStyle.Render("["+row.Area+"]"),
				row.Issue.Title,
			)
			if mode == ModeDetailed {
				if err := d.renderPhases(ctx, w, row.Issue.Number); err != nil {
					return err
				}
			}
		}
	}

	if mode == ModeFull || mode == ModeDetailed || mode == ModeSummary {
		summary, err := d.Summarize(ctx)
		if err != nil {
			return err
		}
		renderSummary(w, summary)
	}

	if mode != ModeSummary {
		fmt.Fprintln(w, sectionStyle.Render("Recommendations"))
		recs := Recommend(rows)
		if len(recs) == 0 {
			fmt.Fprintln(w, dimStyle.Render("  nothing needs attention"))
		}
		for _, r := range recs {
			fmt.Fprintf(w, "  #%-4d %s — %s\n", r.Number, r.Title, r.Reason)
		}
	}

	return nil
}

func (d *Dashboard) renderPhases(ctx context.Context, w io.Writer, overview int) error {
	phases, err := d.PhasesFor(ctx, overview)
	if err != nil {
		return err
	}
	if len(phases) == 0 {
		fmt.Fprintln(w, dimStyle.Render("        no linked phases found"))
		return nil
	}
	for _, p := range phases {
		status := badge(p, taxonomy.CategoryStatus, statusPrecedence)
		fmt.Fprintf(w, "        #%-4d %s %s\n", p.Number, statusBadge(status), p.Title)
	}
	return nil
}

func renderSummary(w io.Writer, s *Summary) {
	fmt.Fprintln(w, sectionStyle.Render("Summary"))
	fmt.Fprintf(w, "  total plans: %d\n", s.Total)

	line := func(name string, order []string, counts map[string]int) {
		parts := make([]string, 0, len(order))
		for _, v := range order {
			parts = append(parts, fmt.Sprintf("%s=%d", v, counts[v]))
		}
		fmt.Fprintf(w, "  by %s: %s\n", name, strings.Join(parts, "  "))
	}
	line("status", taxonomy.Statuses(), s.ByStatus)
	line("priority", taxonomy.Priorities(), s.ByPriority)
	line("area", taxonomy.Domains(), s.ByArea)
}
