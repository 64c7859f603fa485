// Package trackertest provides an in-memory tracker for tests.
package trackertest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fyrsmithlabs/plantrack/internal/tracker"
)

// Fake is an in-memory implementation of tracker.Client and
// tracker.Downstream. Zero value is not usable; call New.
type Fake struct {
	mu sync.Mutex

	nextNumber int
	issues     map[int]*tracker.Issue
	comments   map[int][]string
	labels     map[string]tracker.Label

	PullRequests []*tracker.PullRequest
	Checks       map[int][]*tracker.CheckRun

	ViewerLogin string

	// Error hooks. When set and returning a non-nil error, the
	// corresponding call fails without mutating state.
	CreateIssueErr func(in tracker.NewIssue) error
	EnsureLabelErr func(name string) error
	AddCommentErr  func(number int) error
}

// New returns an empty fake with issue numbering starting at 1.
func New() *Fake {
	return &Fake{
		nextNumber:  1,
		issues:      make(map[int]*tracker.Issue),
		comments:    make(map[int][]string),
		labels:      make(map[string]tracker.Label),
		Checks:      make(map[int][]*tracker.CheckRun),
		ViewerLogin: "testuser",
	}
}

// Seed inserts an issue with a fixed number, for fixtures. It returns the
// stored issue so tests can tweak fields like CreatedAt.
func (f *Fake) Seed(issue *tracker.Issue) *tracker.Issue {
	f.mu.Lock()
	defer f.mu.Unlock()

	if issue.State == "" {
		issue.State = "open"
	}
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = time.Now()
	}
	f.issues[issue.Number] = issue
	if issue.Number >= f.nextNumber {
		f.nextNumber = issue.Number + 1
	}
	return issue
}

func (f *Fake) CreateIssue(_ context.Context, in tracker.NewIssue) (*tracker.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateIssueErr != nil {
		if err := f.CreateIssueErr(in); err != nil {
			return nil, err
		}
	}

	issue := &tracker.Issue{
		Number:    f.nextNumber,
		Title:     in.Title,
		Body:      in.Body,
		Labels:    append([]string(nil), in.Labels...),
		Assignees: append([]string(nil), in.Assignees...),
		State:     "open",
		CreatedAt: time.Now(),
		HTMLURL:   fmt.Sprintf("https://example.test/issues/%d", f.nextNumber),
	}
	f.nextNumber++
	f.issues[issue.Number] = issue
	return issue, nil
}

func (f *Fake) EnsureLabel(_ context.Context, label tracker.Label) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.EnsureLabelErr != nil {
		if err := f.EnsureLabelErr(label.Name); err != nil {
			return false, err
		}
	}

	if _, ok := f.labels[label.Name]; ok {
		return false, nil
	}
	f.labels[label.Name] = label
	return true, nil
}

func (f *Fake) AddComment(_ context.Context, number int, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.AddCommentErr != nil {
		if err := f.AddCommentErr(number); err != nil {
			return err
		}
	}

	if _, ok := f.issues[number]; !ok {
		return fmt.Errorf("issue #%d not found", number)
	}
	f.comments[number] = append(f.comments[number], body)
	return nil
}

func (f *Fake) GetIssue(_ context.Context, number int) (*tracker.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	issue, ok := f.issues[number]
	if !ok {
		return nil, fmt.Errorf("issue #%d not found", number)
	}
	return issue, nil
}

func (f *Fake) ListIssues(_ context.Context, opts tracker.ListOptions) ([]*tracker.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := opts.State
	if state == "" {
		state = "open"
	}

	var out []*tracker.Issue
	for _, issue := range f.issues {
		if state != "all" && issue.State != state {
			continue
		}
		matches := true
		for _, want := range opts.Labels {
			if !issue.HasLabel(want) {
				matches = false
				break
			}
		}
		if matches {
			out = append(out, issue)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// SearchIssues mimics the tracker's term-based text search: the query is
// tokenized and every token must appear as a whole token in the issue's
// title, body, or comments. "#42" therefore does not match "#421".
func (f *Fake) SearchIssues(_ context.Context, query string) ([]*tracker.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	want := tokenize(query)
	var out []*tracker.Issue
	for _, issue := range f.issues {
		text := issue.Title + "\n" + issue.Body
		for _, c := range f.comments[issue.Number] {
			text += "\n" + c
		}
		if containsAllTokens(tokenize(text), want) {
			out = append(out, issue)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func containsAllTokens(have, want []string) bool {
	set := make(map[string]bool, len(have))
	for _, t := range have {
		set[t] = true
	}
	for _, t := range want {
		if !set[t] {
			return false
		}
	}
	return true
}

func (f *Fake) Viewer(context.Context) (string, error) {
	return f.ViewerLogin, nil
}

func (f *Fake) ListPullRequests(_ context.Context, state string) ([]*tracker.PullRequest, error) {
	var out []*tracker.PullRequest
	for _, pr := range f.PullRequests {
		switch state {
		case "open":
			if pr.Merged {
				continue
			}
		case "closed":
			if !pr.Merged {
				continue
			}
		}
		out = append(out, pr)
	}
	return out, nil
}

func (f *Fake) PullRequestChecks(_ context.Context, number int) ([]*tracker.CheckRun, error) {
	return f.Checks[number], nil
}

// IssueCount returns the number of stored issues.
func (f *Fake) IssueCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.issues)
}

// CommentsOn returns the comments recorded against an issue.
func (f *Fake) CommentsOn(number int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.comments[number]...)
}

// LabelCount returns the number of labels that exist.
func (f *Fake) LabelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.labels)
}

// IssuesByNumber returns all stored issues sorted by number.
func (f *Fake) IssuesByNumber() []*tracker.Issue {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*tracker.Issue, 0, len(f.issues))
	for _, issue := range f.issues {
		out = append(out, issue)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
