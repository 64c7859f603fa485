// Package release polls one tracking issue and classifies downstream
// release progress from elapsed time and pull-request state.
package release

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/plantrack/internal/tracker"
)

// Exit codes. Code 2 covers both validation failures and "needs human
// attention"; distinct codes were considered and deliberately kept merged
// so callers have one "page somebody" signal.
const (
	ExitReleased     = 0
	ExitWaiting      = 1
	ExitActionNeeded = 2
)

// Elapsed-time thresholds against the tracking issue's creation time.
const (
	EarliestExpected = 2 * time.Hour
	LatestTypical    = 6 * time.Hour
	Critical         = 12 * time.Hour
)

// Field markers in the tracking issue body.
var (
	versionRe   = regexp.MustCompile(`(?mi)^\*\*Version\*\*:\s*(\S+)`)
	sha256Re    = regexp.MustCompile(`(?mi)^\*\*SHA256\*\*:\s*(\S+)`)
	sourceURLRe = regexp.MustCompile(`(?mi)^\*\*Source URL\*\*:\s*(\S+)`)
)

// Fields are the structured values embedded in a tracking issue body.
type Fields struct {
	Version   string
	SHA256    string
	SourceURL string
}

// ExtractFields parses the fixed field markers from a tracking issue body.
// Version is required; SHA256 and SourceURL fall back to defaults.
func ExtractFields(body, defaultSourceURL string) (*Fields, error) {
	m := versionRe.FindStringSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("tracking issue body has no **Version** field")
	}
	f := &Fields{Version: m[1], SHA256: "unknown", SourceURL: defaultSourceURL}

	if m := sha256Re.FindStringSubmatch(body); m != nil {
		f.SHA256 = m[1]
	}
	if m := sourceURLRe.FindStringSubmatch(body); m != nil {
		f.SourceURL = m[1]
	}
	return f, nil
}

// Classify selects the human-readable status line for an elapsed duration.
func Classify(elapsed time.Duration) string {
	rounded := elapsed.Round(time.Minute)
	switch {
	case elapsed < EarliestExpected:
		return fmt.Sprintf("%s elapsed — before the earliest expected window (2h); nothing to do yet", rounded)
	case elapsed < LatestTypical:
		return fmt.Sprintf("%s elapsed — within the typical window (2h–6h)", rounded)
	case elapsed <= Critical:
		return fmt.Sprintf("%s elapsed — past the latest typical window (6h), keep watching", rounded)
	default:
		return fmt.Sprintf("%s elapsed — critical (>12h); manual intervention recommended", rounded)
	}
}

// PRStatus pairs an open pull request with its CI checks.
type PRStatus struct {
	PR     *tracker.PullRequest
	Checks []*tracker.CheckRun
}

// Outcome is the result of one monitor run.
type Outcome struct {
	Code    int
	Status  string
	Fields  *Fields
	Elapsed time.Duration

	MergedPR *tracker.PullRequest
	OpenPRs  []PRStatus
}

// Config carries the monitor's defaults.
type Config struct {
	// DefaultSourceURL fills the Source URL field when the tracking issue
	// omits it.
	DefaultSourceURL string
}

// Monitor checks downstream release progress for a tracking issue.
type Monitor struct {
	client     tracker.Client
	downstream tracker.Downstream
	cfg        Config
	logger     *zap.Logger

	// now is swapped out in tests.
	now func() time.Time
}

// NewMonitor creates a Monitor.
func NewMonitor(client tracker.Client, downstream tracker.Downstream, cfg Config, logger *zap.Logger) *Monitor {
	if cfg.DefaultSourceURL == "" {
		cfg.DefaultSourceURL = "unknown"
	}
	return &Monitor{
		client:     client,
		downstream: downstream,
		cfg:        cfg,
		logger:     logger.Named("release"),
		now:        time.Now,
	}
}

// Check runs one poll. Validation failures (unreachable tracking issue,
// missing Version field) return an error before any downstream search and
// map to exit code 2. A nil error always comes with a non-nil Outcome
// carrying codes 0, 1, or 2.
func (m *Monitor) Check(ctx context.Context, issueNumber int) (*Outcome, error) {
	issue, err := m.client.GetIssue(ctx, issueNumber)
	if err != nil {
		return nil, fmt.Errorf("cannot load tracking issue: %w", err)
	}

	fields, err := ExtractFields(issue.Body, m.cfg.DefaultSourceURL)
	if err != nil {
		return nil, err
	}

	elapsed := m.now().Sub(issue.CreatedAt)
	m.logger.Debug("checking release",
		zap.String("version", fields.Version),
		zap.Duration("elapsed", elapsed),
	)

	outcome := &Outcome{Fields: fields, Elapsed: elapsed}

	// Merge check first: a merged PR means released, regardless of elapsed
	// time.
	merged, err := m.findMerged(ctx, fields.Version)
	if err != nil {
		return nil, err
	}
	if merged != nil {
		outcome.Code = ExitReleased
		outcome.MergedPR = merged
		outcome.Status = fmt.Sprintf("released: PR #%d merged (%s)", merged.Number, merged.Title)
		return outcome, nil
	}

	open, err := m.findOpen(ctx, fields.Version)
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		outcome.Code = ExitWaiting
		outcome.OpenPRs = open
		outcome.Status = fmt.Sprintf("waiting: %d open PR(s) in flight for %s", len(open), fields.Version)
		return outcome, nil
	}

	outcome.Status = Classify(elapsed)
	if elapsed > Critical {
		outcome.Code = ExitActionNeeded
	} else {
		outcome.Code = ExitWaiting
	}
	return outcome, nil
}

func (m *Monitor) findMerged(ctx context.Context, version string) (*tracker.PullRequest, error) {
	prs, err := m.downstream.ListPullRequests(ctx, "closed")
	if err != nil {
		return nil, fmt.Errorf("downstream PR search failed: %w", err)
	}
	for _, pr := range prs {
		if pr.Merged && titleMatches(pr.Title, version) {
			return pr, nil
		}
	}
	return nil, nil
}

func (m *Monitor) findOpen(ctx context.Context, version string) ([]PRStatus, error) {
	prs, err := m.downstream.ListPullRequests(ctx, "open")
	if err != nil {
		return nil, fmt.Errorf("downstream PR search failed: %w", err)
	}

	var out []PRStatus
	for _, pr := range prs {
		if !titleMatches(pr.Title, version) {
			continue
		}
		checks, err := m.downstream.PullRequestChecks(ctx, pr.Number)
		if err != nil {
			m.logger.Warn("could not fetch checks", zap.Int("pr", pr.Number), zap.Error(err))
		}
		out = append(out, PRStatus{PR: pr, Checks: checks})
	}
	return out, nil
}

// titleMatches is a case-insensitive substring match of the version in a PR
// title.
func titleMatches(title, version string) bool {
	return strings.Contains(strings.ToLower(title), strings.ToLower(version))
}
