// Package tracker wraps the GitHub Issues API behind the small surface the
// planning commands need. The tracker is the sole system of record: there is
// no local persistence, every read is a fresh query.
package tracker

import (
	"context"
	"time"
)

// Issue is a tracker entity. Plans, phases, and closeouts are all issues,
// distinguished only by their labels.
type Issue struct {
	Number    int
	Title     string
	Body      string
	Labels    []string
	Assignees []string
	State     string
	CreatedAt time.Time
	ClosedAt  *time.Time
	HTMLURL   string
}

// HasLabel reports whether the issue carries the exact label name.
func (i *Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// NewIssue is the creation request for an issue.
type NewIssue struct {
	Title     string
	Body      string
	Labels    []string
	Assignees []string
}

// Label is a (name, color, description) triple. Names follow the
// category:value convention.
type Label struct {
	Name        string
	Color       string
	Description string
}

// ListOptions filters an issue listing.
type ListOptions struct {
	// State is "open", "closed", or "all". Empty means "open".
	State string
	// Labels restricts results to issues carrying every listed label.
	Labels []string
}

// Client is the tracker collaborator. Implementations must treat every call
// as individually atomic; multi-step sequences built on top of it are not.
type Client interface {
	// CreateIssue creates one issue and returns it with its assigned number.
	CreateIssue(ctx context.Context, in NewIssue) (*Issue, error)

	// EnsureLabel creates a label, treating "already exists" as success.
	// Returns true when the label was newly created.
	EnsureLabel(ctx context.Context, label Label) (bool, error)

	// AddComment appends a comment to an issue.
	AddComment(ctx context.Context, number int, body string) error

	// GetIssue fetches one issue by number.
	GetIssue(ctx context.Context, number int) (*Issue, error)

	// ListIssues lists issues matching the filter.
	ListIssues(ctx context.Context, opts ListOptions) ([]*Issue, error)

	// SearchIssues runs a free-text search scoped to the tracking repository.
	SearchIssues(ctx context.Context, query string) ([]*Issue, error)

	// Viewer returns the login of the authenticated user, used for
	// self-assignment.
	Viewer(ctx context.Context) (string, error)
}

// PullRequest is a downstream-repository pull request.
type PullRequest struct {
	Number    int
	Title     string
	Author    string
	HeadSHA   string
	CreatedAt time.Time
	HTMLURL   string
	Merged    bool
}

// CheckRun is one CI check attached to a pull request head.
type CheckRun struct {
	Name       string
	Status     string
	Conclusion string
}

// Downstream is the downstream-repository collaborator used by the release
// monitor.
type Downstream interface {
	// ListPullRequests lists pull requests in the given state
	// ("open", "closed", or "all").
	ListPullRequests(ctx context.Context, state string) ([]*PullRequest, error)

	// PullRequestChecks returns the CI checks for a pull request's head.
	PullRequestChecks(ctx context.Context, number int) ([]*CheckRun, error)
}
