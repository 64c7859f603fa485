// Package plan creates plan overview entities and their working branches.
package plan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/plantrack/internal/gitrepo"
	"github.com/fyrsmithlabs/plantrack/internal/taxonomy"
	"github.com/fyrsmithlabs/plantrack/internal/tracker"
)

// BodyGenerator produces an issue body for a new plan. Implementations may
// call out to anything; a failure only degrades to the built-in template.
type BodyGenerator interface {
	Generate(ctx context.Context, title, priority, domain string) (string, error)
}

// Request describes the plan to create. Priority and Domain may be empty
// (defaults apply) or any case (normalized to lowercase).
type Request struct {
	Title    string
	Priority string
	Domain   string
}

// Overview is the result of a successful plan creation.
type Overview struct {
	Number int
	URL    string
	Branch string
	// BranchCreated is false when the branch already existed and was
	// switched to.
	BranchCreated bool
	// Degraded is true when the body generator failed and the template
	// fallback was used.
	Degraded bool
}

// Config carries the manager's collaborators and defaults.
type Config struct {
	// Generator is optional; nil always uses the template body.
	Generator BodyGenerator
	// GitPath is the local working copy. Empty disables branch creation.
	GitPath string
	// DefaultPriority and DefaultDomain fill empty request fields.
	DefaultPriority string
	DefaultDomain   string
}

// Manager creates plan overviews.
type Manager struct {
	client tracker.Client
	cfg    Config
	logger *zap.Logger

	// ensureBranch is swapped out in tests.
	ensureBranch func(path, name string) (bool, error)
}

// NewManager creates a Manager.
func NewManager(client tracker.Client, cfg Config, logger *zap.Logger) *Manager {
	if cfg.DefaultPriority == "" {
		cfg.DefaultPriority = "medium"
	}
	if cfg.DefaultDomain == "" {
		cfg.DefaultDomain = "infrastructure"
	}
	return &Manager{
		client:       client,
		cfg:          cfg,
		logger:       logger.Named("plan"),
		ensureBranch: gitrepo.EnsureBranch,
	}
}

// CreateOverview validates the request, creates the plan issue, and derives
// its working branch. Validation happens before any mutating call; issue
// creation failure is fatal and no branch action is attempted after it.
func (m *Manager) CreateOverview(ctx context.Context, req Request) (*Overview, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errors.New("plan title must not be empty")
	}

	if req.Priority == "" {
		req.Priority = m.cfg.DefaultPriority
	}
	priority, err := taxonomy.NormalizePriority(req.Priority)
	if err != nil {
		return nil, err
	}

	if req.Domain == "" {
		req.Domain = m.cfg.DefaultDomain
	}
	domain, err := taxonomy.NormalizeDomain(req.Domain)
	if err != nil {
		return nil, err
	}

	body, degraded := m.body(ctx, title, priority, domain)

	viewer, err := m.client.Viewer(ctx)
	if err != nil {
		return nil, err
	}

	issue, err := m.client.CreateIssue(ctx, tracker.NewIssue{
		Title: title,
		Body:  body,
		Labels: []string{
			taxonomy.Name(taxonomy.CategoryPlan, taxonomy.PlanOverview),
			taxonomy.Name(taxonomy.CategoryStatus, taxonomy.StatusPlanning),
			taxonomy.Name(taxonomy.CategoryPriority, priority),
			taxonomy.Name(taxonomy.CategoryArea, domain),
		},
		Assignees: []string{viewer},
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("created plan overview",
		zap.Int("number", issue.Number),
		zap.String("priority", priority),
		zap.String("domain", domain),
	)

	overview := &Overview{
		Number:   issue.Number,
		URL:      issue.HTMLURL,
		Degraded: degraded,
	}

	if m.cfg.GitPath == "" {
		return overview, nil
	}

	overview.Branch = BranchName(issue.Number, title)
	created, err := m.ensureBranch(m.cfg.GitPath, overview.Branch)
	if err != nil {
		// The issue exists at this point; surface the partial state.
		return overview, fmt.Errorf("plan #%d created but branch setup failed: %w", issue.Number, err)
	}
	overview.BranchCreated = created
	return overview, nil
}

// body runs the generator, falling back to the template on absence or error.
func (m *Manager) body(ctx context.Context, title, priority, domain string) (string, bool) {
	if m.cfg.Generator == nil {
		return templateBody(title, priority, domain), false
	}
	body, err := m.cfg.Generator.Generate(ctx, title, priority, domain)
	if err != nil {
		m.logger.Warn("body generator failed, using template", zap.Error(err))
		return templateBody(title, priority, domain), true
	}
	return body, false
}

// BranchName derives the working branch for a plan: the issue number
// prefixed to a slug of the title.
func BranchName(number int, title string) string {
	return fmt.Sprintf("plan-%d-%s", number, Slugify(title))
}

const maxSlugLen = 50

// Slugify lowercases the title and collapses every run of non-alphanumeric
// characters into a single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

func templateBody(title, priority, domain string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", title)
	b.WriteString("### Overview\n\n")
	fmt.Fprintf(&b, "- **Priority**: %s\n", priority)
	fmt.Fprintf(&b, "- **Domain**: %s\n", domain)
	b.WriteString("- **Status**: planning\n\n")
	b.WriteString("### Phases\n\n")
	b.WriteString("_Add phases with `plantrack phases add`._\n")
	return b.String()
}
