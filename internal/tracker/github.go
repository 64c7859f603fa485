package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/fyrsmithlabs/plantrack/internal/config"
)

// GitHub implements Client and Downstream against one owner/repo pair.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
	logger *zap.Logger
	retry  *RetryConfig

	viewerOnce sync.Once
	viewer     string
	viewerErr  error
}

// NewGitHub creates an authenticated tracker client. A missing token is a
// prerequisite error; callers surface it before doing any other work.
func NewGitHub(ctx context.Context, owner, repo string, token config.Secret, logger *zap.Logger) (*GitHub, error) {
	if owner == "" || repo == "" {
		return nil, errors.New("tracking repository not configured: set github.owner and github.repo")
	}
	if !token.IsSet() {
		return nil, errors.New("GitHub token not set: export GITHUB_TOKEN or set github.token in the config file")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.Value()})
	tc := oauth2.NewClient(ctx, ts)

	return &GitHub{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
		logger: logger.Named("tracker").With(zap.String("repo", owner+"/"+repo)),
		retry:  DefaultRetryConfig(),
	}, nil
}

func (g *GitHub) CreateIssue(ctx context.Context, in NewIssue) (*Issue, error) {
	var created *github.Issue
	_, err := retryOperation(ctx, g.retry, g.logger, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		created, resp, err = g.client.Issues.Create(ctx, g.owner, g.repo, &github.IssueRequest{
			Title:     github.String(in.Title),
			Body:      github.String(in.Body),
			Labels:    &in.Labels,
			Assignees: &in.Assignees,
		})
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create issue %q: %w", in.Title, err)
	}
	return fromGitHubIssue(created), nil
}

func (g *GitHub) EnsureLabel(ctx context.Context, label Label) (bool, error) {
	_, err := retryOperation(ctx, g.retry, g.logger, func() (*github.Response, error) {
		_, resp, err := g.client.Issues.CreateLabel(ctx, g.owner, g.repo, &github.Label{
			Name:        github.String(label.Name),
			Color:       github.String(label.Color),
			Description: github.String(label.Description),
		})
		return resp, err
	})
	if err != nil {
		if isAlreadyExists(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create label %q: %w", label.Name, err)
	}
	return true, nil
}

func (g *GitHub) AddComment(ctx context.Context, number int, body string) error {
	_, err := retryOperation(ctx, g.retry, g.logger, func() (*github.Response, error) {
		_, resp, err := g.client.Issues.CreateComment(ctx, g.owner, g.repo, number, &github.IssueComment{
			Body: github.String(body),
		})
		return resp, err
	})
	if err != nil {
		return fmt.Errorf("failed to comment on issue #%d: %w", number, err)
	}
	return nil
}

func (g *GitHub) GetIssue(ctx context.Context, number int) (*Issue, error) {
	var issue *github.Issue
	_, err := retryOperation(ctx, g.retry, g.logger, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		issue, resp, err = g.client.Issues.Get(ctx, g.owner, g.repo, number)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get issue #%d: %w", number, err)
	}
	return fromGitHubIssue(issue), nil
}

func (g *GitHub) ListIssues(ctx context.Context, opts ListOptions) ([]*Issue, error) {
	state := opts.State
	if state == "" {
		state = "open"
	}

	listOpts := &github.IssueListByRepoOptions{
		State:       state,
		Labels:      opts.Labels,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var out []*Issue
	for {
		var page []*github.Issue
		resp, err := retryOperation(ctx, g.retry, g.logger, func() (*github.Response, error) {
			var resp *github.Response
			var err error
			page, resp, err = g.client.Issues.ListByRepo(ctx, g.owner, g.repo, listOpts)
			return resp, err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list issues: %w", err)
		}
		for _, issue := range page {
			// The issues API returns pull requests too; this layer only
			// deals in issues.
			if issue.IsPullRequest() {
				continue
			}
			out = append(out, fromGitHubIssue(issue))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		listOpts.Page = resp.NextPage
	}
	return out, nil
}

func (g *GitHub) SearchIssues(ctx context.Context, query string) ([]*Issue, error) {
	scoped := fmt.Sprintf("%s repo:%s/%s is:issue", query, g.owner, g.repo)

	var result *github.IssuesSearchResult
	_, err := retryOperation(ctx, g.retry, g.logger, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		result, resp, err = g.client.Search.Issues(ctx, scoped, &github.SearchOptions{
			ListOptions: github.ListOptions{PerPage: 100},
		})
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("issue search failed: %w", err)
	}

	out := make([]*Issue, 0, len(result.Issues))
	for _, issue := range result.Issues {
		out = append(out, fromGitHubIssue(issue))
	}
	return out, nil
}

func (g *GitHub) Viewer(ctx context.Context) (string, error) {
	g.viewerOnce.Do(func() {
		user, _, err := g.client.Users.Get(ctx, "")
		if err != nil {
			g.viewerErr = fmt.Errorf("failed to resolve authenticated user: %w", err)
			return
		}
		g.viewer = user.GetLogin()
	})
	return g.viewer, g.viewerErr
}

func (g *GitHub) ListPullRequests(ctx context.Context, state string) ([]*PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var out []*PullRequest
	for {
		var page []*github.PullRequest
		resp, err := retryOperation(ctx, g.retry, g.logger, func() (*github.Response, error) {
			var resp *github.Response
			var err error
			page, resp, err = g.client.PullRequests.List(ctx, g.owner, g.repo, opts)
			return resp, err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}
		for _, pr := range page {
			out = append(out, fromGitHubPR(pr))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (g *GitHub) PullRequestChecks(ctx context.Context, number int) ([]*CheckRun, error) {
	var pr *github.PullRequest
	_, err := retryOperation(ctx, g.retry, g.logger, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		pr, resp, err = g.client.PullRequests.Get(ctx, g.owner, g.repo, number)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request #%d: %w", number, err)
	}

	sha := pr.GetHead().GetSHA()
	if sha == "" {
		return nil, nil
	}

	var runs *github.ListCheckRunsResults
	_, err = retryOperation(ctx, g.retry, g.logger, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		runs, resp, err = g.client.Checks.ListCheckRunsForRef(ctx, g.owner, g.repo, sha, &github.ListCheckRunsOptions{
			ListOptions: github.ListOptions{PerPage: 100},
		})
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list checks for pull request #%d: %w", number, err)
	}

	out := make([]*CheckRun, 0, len(runs.CheckRuns))
	for _, run := range runs.CheckRuns {
		out = append(out, &CheckRun{
			Name:       run.GetName(),
			Status:     run.GetStatus(),
			Conclusion: run.GetConclusion(),
		})
	}
	return out, nil
}

// isAlreadyExists detects the 422 validation error GitHub returns when
// creating a label that already exists.
func isAlreadyExists(err error) bool {
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) {
		return false
	}
	if ghErr.Response == nil || ghErr.Response.StatusCode != http.StatusUnprocessableEntity {
		return false
	}
	for _, e := range ghErr.Errors {
		if e.Code == "already_exists" {
			return true
		}
	}
	return false
}

func fromGitHubIssue(issue *github.Issue) *Issue {
	if issue == nil {
		return nil
	}

	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}

	assignees := make([]string, 0, len(issue.Assignees))
	for _, a := range issue.Assignees {
		assignees = append(assignees, a.GetLogin())
	}

	var closedAt *time.Time
	if issue.ClosedAt != nil {
		t := issue.ClosedAt.Time
		closedAt = &t
	}

	return &Issue{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		Labels:    labels,
		Assignees: assignees,
		State:     issue.GetState(),
		CreatedAt: issue.GetCreatedAt().Time,
		ClosedAt:  closedAt,
		HTMLURL:   issue.GetHTMLURL(),
	}
}

func fromGitHubPR(pr *github.PullRequest) *PullRequest {
	return &PullRequest{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		Author:    pr.GetUser().GetLogin(),
		HeadSHA:   pr.GetHead().GetSHA(),
		CreatedAt: pr.GetCreatedAt().Time,
		HTMLURL:   pr.GetHTMLURL(),
		Merged:    pr.MergedAt != nil,
	}
}
