package dashboard

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/plantrack/internal/tracker"
	"github.com/fyrsmithlabs/plantrack/internal/tracker/trackertest"
)

func seedOverview(fake *trackertest.Fake, number int, title string, labels ...string) {
	fake.Seed(&tracker.Issue{
		Number: number,
		Title:  title,
		Labels: append([]string{"plan:overview"}, labels...),
	})
}

func TestBadgePrecedence_StatusNotDerivedFromPriority(t *testing.T) {
	fake := trackertest.New()
	seedOverview(fake, 1, "blocked plan", "status:blocked", "priority:critical")

	rows, err := New(fake, zap.NewNop()).Overviews(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "blocked", rows[0].Status)
	assert.Equal(t, "critical", rows[0].Priority)
}

func TestBadge_MultipleStatusLabelsUseFixedPrecedence(t *testing.T) {
	fake := trackertest.New()
	seedOverview(fake, 1, "confused plan", "status:planning", "status:completed")

	rows, err := New(fake, zap.NewNop()).Overviews(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "completed", rows[0].Status)
}

func TestBadge_MissingLabelRendersUnknown(t *testing.T) {
	fake := trackertest.New()
	seedOverview(fake, 1, "bare plan")

	rows, err := New(fake, zap.NewNop()).Overviews(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, UnknownBadge, rows[0].Status)
	assert.Equal(t, UnknownBadge, rows[0].Priority)
	assert.Equal(t, UnknownBadge, rows[0].Area)
}

func TestOverviews_StatusFilter(t *testing.T) {
	fake := trackertest.New()
	seedOverview(fake, 1, "blocked plan", "status:blocked")
	seedOverview(fake, 2, "done plan", "status:completed")

	d := New(fake, zap.NewNop())

	rows, err := d.Overviews(context.Background(), "Blocked")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Issue.Number)

	_, err = d.Overviews(context.Background(), "nonsense")
	require.Error(t, err, "unknown status filter must fail before querying")
}

func TestSummarize_Fixture(t *testing.T) {
	fake := trackertest.New()
	seedOverview(fake, 1, "blocked plan", "status:blocked", "priority:high", "area:physics")
	seedOverview(fake, 2, "done plan", "status:completed", "priority:low", "area:docs")

	summary, err := New(fake, zap.NewNop()).Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.ByStatus["blocked"])
	assert.Equal(t, 1, summary.ByStatus["completed"])
	assert.Equal(t, 0, summary.ByStatus["planning"])
	assert.Equal(t, 1, summary.ByPriority["high"])
	assert.Equal(t, 1, summary.ByArea["physics"])
}

func TestRecommend_FlagsExactlyTheBlockedOne(t *testing.T) {
	fake := trackertest.New()
	seedOverview(fake, 1, "blocked plan", "status:blocked")
	seedOverview(fake, 2, "done plan", "status:completed")

	rows, err := New(fake, zap.NewNop()).Overviews(context.Background(), "")
	require.NoError(t, err)

	recs := Recommend(rows)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].Number)
	assert.Contains(t, recs[0].Reason, "blocked")
}

func TestRecommend_AllHeuristics(t *testing.T) {
	rows := []Row{
		{Issue: &tracker.Issue{Number: 1, Title: "a"}, Status: "blocked"},
		{Issue: &tracker.Issue{Number: 2, Title: "b"}, Status: "review"},
		{Issue: &tracker.Issue{Number: 3, Title: "c"}, Status: "in-progress", Priority: "critical"},
		{Issue: &tracker.Issue{Number: 4, Title: "d"}, Status: "planning"},
		{Issue: &tracker.Issue{Number: 5, Title: "e"}, Status: "completed"},
		{Issue: &tracker.Issue{Number: 6, Title: "f"}, Status: "in-progress", Priority: "low"},
	}

	recs := Recommend(rows)
	require.Len(t, recs, 4)
	assert.Equal(t, 1, recs[0].Number)
	assert.Equal(t, 2, recs[1].Number)
	assert.Equal(t, 3, recs[2].Number)
	assert.Equal(t, 4, recs[3].Number)
}

func TestPhasesFor_TitleBodyAndCommentMatches(t *testing.T) {
	fake := trackertest.New()
	seedOverview(fake, 42, "parent plan", "status:in-progress")

	// Linked via body.
	fake.Seed(&tracker.Issue{
		Number: 43, Title: "Phase 1: Setup",
		Body:   "Part of plan #42",
		Labels: []string{"plan:phase"},
	})
	// Linked only via a comment; found through the search fallback.
	commentLinked := fake.Seed(&tracker.Issue{
		Number: 44, Title: "Phase 2: Build",
		Labels: []string{"plan:phase"},
	})
	require.NoError(t, fake.AddComment(context.Background(), commentLinked.Number, "Part of plan #42"))
	// Phase of an unrelated plan: #421 must not match #42.
	fake.Seed(&tracker.Issue{
		Number: 45, Title: "Phase 1: Other",
		Body:   "Part of plan #421",
		Labels: []string{"plan:phase"},
	})
	// Not a phase at all.
	fake.Seed(&tracker.Issue{
		Number: 46, Title: "random issue mentioning #42",
		Labels: []string{"status:planning"},
	})

	phases, err := New(fake, zap.NewNop()).PhasesFor(context.Background(), 42)
	require.NoError(t, err)

	numbers := make([]int, 0, len(phases))
	for _, p := range phases {
		numbers = append(numbers, p.Number)
	}
	assert.ElementsMatch(t, []int{43, 44}, numbers)
}

func TestContainsRef(t *testing.T) {
	assert.True(t, containsRef("Part of plan #42", 42))
	assert.True(t, containsRef("#42: details", 42))
	assert.False(t, containsRef("Part of plan #421", 42))
	assert.True(t, containsRef("#421 and also #42", 42))
	assert.False(t, containsRef("no reference", 42))
}

func TestRender_SummaryMode(t *testing.T) {
	fake := trackertest.New()
	seedOverview(fake, 1, "blocked plan", "status:blocked")
	seedOverview(fake, 2, "done plan", "status:completed")

	var buf bytes.Buffer
	err := New(fake, zap.NewNop()).Render(context.Background(), &buf, ModeSummary, "")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "total plans: 2")
	assert.Contains(t, out, "blocked=1")
	assert.Contains(t, out, "completed=1")
	assert.NotContains(t, out, "Recommendations")
}

func TestRender_FullMode(t *testing.T) {
	fake := trackertest.New()
	seedOverview(fake, 1, "blocked plan", "status:blocked", "priority:critical", "area:physics")

	var buf bytes.Buffer
	err := New(fake, zap.NewNop()).Render(context.Background(), &buf, ModeFull, "")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "blocked plan")
	assert.Contains(t, out, "BLOCKED")
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "Recommendations")
	assert.Contains(t, out, "review blockers")
}

func TestRender_DetailedModeListsPhases(t *testing.T) {
	fake := trackertest.New()
	seedOverview(fake, 42, "parent plan", "status:in-progress")
	fake.Seed(&tracker.Issue{
		Number: 43, Title: "Phase 1: Setup",
		Body:   "Part of plan #42",
		Labels: []string{"plan:phase", "status:planning"},
	})

	var buf bytes.Buffer
	err := New(fake, zap.NewNop()).Render(context.Background(), &buf, ModeDetailed, "")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Phase 1: Setup")
}
