package plan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/plantrack/internal/tracker"
	"github.com/fyrsmithlabs/plantrack/internal/tracker/trackertest"
)

type stubGenerator struct {
	body string
	err  error
}

func (g *stubGenerator) Generate(context.Context, string, string, string) (string, error) {
	return g.body, g.err
}

func newManager(t *testing.T, fake *trackertest.Fake, cfg Config) *Manager {
	t.Helper()
	m := NewManager(fake, cfg, zap.NewNop())
	m.ensureBranch = func(path, name string) (bool, error) { return true, nil }
	return m
}

func TestCreateOverview_LabelsAndAssignment(t *testing.T) {
	fake := trackertest.New()
	m := newManager(t, fake, Config{GitPath: "."})

	ov, err := m.CreateOverview(context.Background(), Request{
		Title:    "Fix gravity solver",
		Priority: "HIGH",
		Domain:   "Physics",
	})
	require.NoError(t, err)

	issue, err := fake.GetIssue(context.Background(), ov.Number)
	require.NoError(t, err)
	assert.Equal(t, "Fix gravity solver", issue.Title)
	assert.ElementsMatch(t, []string{
		"plan:overview", "status:planning", "priority:high", "area:physics",
	}, issue.Labels)
	assert.Equal(t, []string{"testuser"}, issue.Assignees)
	assert.Equal(t, "plan-1-fix-gravity-solver", ov.Branch)
	assert.True(t, ov.BranchCreated)
	assert.False(t, ov.Degraded)
}

func TestCreateOverview_CaseNormalization(t *testing.T) {
	for _, in := range []string{"HIGH", "High", "high"} {
		fake := trackertest.New()
		m := newManager(t, fake, Config{})

		ov, err := m.CreateOverview(context.Background(), Request{Title: "t", Priority: in})
		require.NoError(t, err, "input %q", in)

		issue, _ := fake.GetIssue(context.Background(), ov.Number)
		assert.Contains(t, issue.Labels, "priority:high", "input %q", in)
	}
}

func TestCreateOverview_UnknownPriorityAbortsBeforeCreation(t *testing.T) {
	fake := trackertest.New()
	m := newManager(t, fake, Config{})

	_, err := m.CreateOverview(context.Background(), Request{Title: "t", Priority: "urgent"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid priority")
	assert.Zero(t, fake.IssueCount(), "no entity may be created on validation failure")
}

func TestCreateOverview_EmptyTitleRejected(t *testing.T) {
	fake := trackertest.New()
	m := newManager(t, fake, Config{})

	_, err := m.CreateOverview(context.Background(), Request{Title: "   "})
	require.Error(t, err)
	assert.Zero(t, fake.IssueCount())
}

func TestCreateOverview_DefaultsApplied(t *testing.T) {
	fake := trackertest.New()
	m := newManager(t, fake, Config{})

	ov, err := m.CreateOverview(context.Background(), Request{Title: "t"})
	require.NoError(t, err)

	issue, _ := fake.GetIssue(context.Background(), ov.Number)
	assert.Contains(t, issue.Labels, "priority:medium")
	assert.Contains(t, issue.Labels, "area:infrastructure")
}

func TestCreateOverview_GeneratorFallbackIsDegradedNotFatal(t *testing.T) {
	fake := trackertest.New()
	m := newManager(t, fake, Config{Generator: &stubGenerator{err: errors.New("model offline")}})

	ov, err := m.CreateOverview(context.Background(), Request{Title: "Tune integrator"})
	require.NoError(t, err)
	assert.True(t, ov.Degraded)

	issue, _ := fake.GetIssue(context.Background(), ov.Number)
	assert.Contains(t, issue.Body, "Tune integrator")
	assert.Contains(t, issue.Body, "Priority")
}

func TestCreateOverview_GeneratorBodyUsed(t *testing.T) {
	fake := trackertest.New()
	m := newManager(t, fake, Config{Generator: &stubGenerator{body: "generated body"}})

	ov, err := m.CreateOverview(context.Background(), Request{Title: "t"})
	require.NoError(t, err)
	assert.False(t, ov.Degraded)

	issue, _ := fake.GetIssue(context.Background(), ov.Number)
	assert.Equal(t, "generated body", issue.Body)
}

func TestCreateOverview_IssueFailureSkipsBranch(t *testing.T) {
	fake := trackertest.New()
	fake.CreateIssueErr = func(tracker.NewIssue) error { return errors.New("api down") }

	branchCalls := 0
	m := NewManager(fake, Config{GitPath: "."}, zap.NewNop())
	m.ensureBranch = func(path, name string) (bool, error) {
		branchCalls++
		return true, nil
	}

	_, err := m.CreateOverview(context.Background(), Request{Title: "t"})
	require.Error(t, err)
	assert.Zero(t, branchCalls, "no branch action after creation failure")
}

func TestCreateOverview_BranchFailureReportsPartialState(t *testing.T) {
	fake := trackertest.New()
	m := NewManager(fake, Config{GitPath: "."}, zap.NewNop())
	m.ensureBranch = func(path, name string) (bool, error) {
		return false, errors.New("worktree dirty")
	}

	ov, err := m.CreateOverview(context.Background(), Request{Title: "t"})
	require.Error(t, err)
	require.NotNil(t, ov, "the created issue must be surfaced")
	assert.Contains(t, err.Error(), "branch setup failed")
	assert.Equal(t, 1, fake.IssueCount())
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Fix gravity solver", "fix-gravity-solver"},
		{"N-body  (v2)!!", "n-body-v2"},
		{"  spaces  everywhere  ", "spaces-everywhere"},
		{"UPPER_case_mix", "upper-case-mix"},
		{"___", ""},
		{"trailing punctuation...", "trailing-punctuation"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "input %q", tt.in)
	}
}

func TestBranchName(t *testing.T) {
	assert.Equal(t, "plan-42-fix-gravity", BranchName(42, "Fix Gravity"))
}
