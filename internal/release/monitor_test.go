package release

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/plantrack/internal/tracker"
	"github.com/fyrsmithlabs/plantrack/internal/tracker/trackertest"
)

const trackingBody = `Release tracking

**Version**: 2.5.0rc1
**SHA256**: abc123def456
**Source URL**: https://example.test/releases/2.5.0rc1
`

func seedTracking(fake *trackertest.Fake, body string, age time.Duration) {
	fake.Seed(&tracker.Issue{
		Number:    10,
		Title:     "Release 2.5.0rc1",
		Body:      body,
		Labels:    []string{"release-tracking"},
		CreatedAt: time.Now().Add(-age),
	})
}

// spyDownstream counts downstream calls on top of the fake.
type spyDownstream struct {
	*trackertest.Fake
	listCalls int
}

func (s *spyDownstream) ListPullRequests(ctx context.Context, state string) ([]*tracker.PullRequest, error) {
	s.listCalls++
	return s.Fake.ListPullRequests(ctx, state)
}

func newMonitor(fake *trackertest.Fake, down tracker.Downstream) *Monitor {
	return NewMonitor(fake, down, Config{}, zap.NewNop())
}

func TestExtractFields(t *testing.T) {
	f, err := ExtractFields(trackingBody, "default-url")
	require.NoError(t, err)
	assert.Equal(t, "2.5.0rc1", f.Version)
	assert.Equal(t, "abc123def456", f.SHA256)
	assert.Equal(t, "https://example.test/releases/2.5.0rc1", f.SourceURL)
}

func TestExtractFields_Defaults(t *testing.T) {
	f, err := ExtractFields("**Version**: 1.0.0\n", "https://default.test")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", f.Version)
	assert.Equal(t, "unknown", f.SHA256)
	assert.Equal(t, "https://default.test", f.SourceURL)
}

func TestExtractFields_MissingVersionIsFatal(t *testing.T) {
	_, err := ExtractFields("**SHA256**: abc\n", "d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Version")
}

func TestExtractFields_CaseInsensitiveMarkers(t *testing.T) {
	f, err := ExtractFields("**version**: 1.2.3\n", "d")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", f.Version)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    string
	}{
		{time.Hour, "before the earliest expected"},
		{3 * time.Hour, "within the typical window"},
		{7 * time.Hour, "past the latest typical window"},
		{12 * time.Hour, "past the latest typical window"}, // boundary: 12h is not yet critical
		{13 * time.Hour, "manual intervention recommended"},
	}
	for _, tt := range tests {
		assert.Contains(t, Classify(tt.elapsed), tt.want, "elapsed=%s", tt.elapsed)
	}
}

func TestCheck_MergedPRWinsRegardlessOfElapsed(t *testing.T) {
	fake := trackertest.New()
	seedTracking(fake, trackingBody, 48*time.Hour)
	fake.PullRequests = []*tracker.PullRequest{
		{Number: 100, Title: "Update recipe to v2.5.0rc1", Merged: true},
	}

	outcome, err := newMonitor(fake, fake).Check(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, ExitReleased, outcome.Code)
	require.NotNil(t, outcome.MergedPR)
	assert.Equal(t, 100, outcome.MergedPR.Number)
}

func TestCheck_OpenPRReportsChecksAndWaits(t *testing.T) {
	fake := trackertest.New()
	seedTracking(fake, trackingBody, time.Hour)
	fake.PullRequests = []*tracker.PullRequest{
		{Number: 101, Title: "2.5.0RC1 rebuild", Merged: false},
		{Number: 102, Title: "unrelated bump", Merged: false},
	}
	fake.Checks[101] = []*tracker.CheckRun{
		{Name: "linux-64", Status: "completed", Conclusion: "success"},
		{Name: "osx-arm64", Status: "in_progress"},
	}

	outcome, err := newMonitor(fake, fake).Check(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, ExitWaiting, outcome.Code)
	require.Len(t, outcome.OpenPRs, 1)
	assert.Equal(t, 101, outcome.OpenPRs[0].PR.Number)
	assert.Len(t, outcome.OpenPRs[0].Checks, 2)
}

func TestCheck_NoPRWithinWindowWaits(t *testing.T) {
	fake := trackertest.New()
	seedTracking(fake, trackingBody, 3*time.Hour)

	outcome, err := newMonitor(fake, fake).Check(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, ExitWaiting, outcome.Code)
	assert.Contains(t, outcome.Status, "typical window")
}

func TestCheck_ThirteenHoursNoPRNeedsAction(t *testing.T) {
	fake := trackertest.New()
	seedTracking(fake, trackingBody, 13*time.Hour)

	outcome, err := newMonitor(fake, fake).Check(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, ExitActionNeeded, outcome.Code)
	assert.Contains(t, outcome.Status, "intervention recommended")
}

func TestCheck_MissingVersionFailsBeforeDownstreamSearch(t *testing.T) {
	fake := trackertest.New()
	seedTracking(fake, "no markers here", time.Hour)
	spy := &spyDownstream{Fake: fake}

	_, err := newMonitor(fake, spy).Check(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Version")
	assert.Zero(t, spy.listCalls, "downstream must not be queried on validation failure")
}

func TestCheck_UnreachableTrackingIssue(t *testing.T) {
	fake := trackertest.New()
	spy := &spyDownstream{Fake: fake}

	_, err := newMonitor(fake, spy).Check(context.Background(), 404)
	require.Error(t, err)
	assert.Zero(t, spy.listCalls)
}
