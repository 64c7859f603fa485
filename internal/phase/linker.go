package phase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/plantrack/internal/taxonomy"
	"github.com/fyrsmithlabs/plantrack/internal/tracker"
)

// Linker creates phases and closeouts under a validated parent plan.
type Linker struct {
	client tracker.Client
	logger *zap.Logger
}

// NewLinker creates a Linker.
func NewLinker(client tracker.Client, logger *zap.Logger) *Linker {
	return &Linker{client: client, logger: logger.Named("phase")}
}

// Created records one successfully created phase.
type Created struct {
	Ordinal int
	Number  int
	Title   string
	URL     string
}

// Failure records one phase that could not be created.
type Failure struct {
	Ordinal int
	Name    string
	Err     error
}

// Result tallies one AddPhases invocation.
type Result struct {
	Requested int
	Created   []Created
	Failed    []Failure
}

// Summary renders the final tally, e.g. "2 of 3 requested phases created".
func (r *Result) Summary() string {
	return fmt.Sprintf("%d of %d requested phases created", len(r.Created), r.Requested)
}

// validatePlan ensures the parent exists and is a plan overview.
func (l *Linker) validatePlan(ctx context.Context, parent int) (*tracker.Issue, error) {
	issue, err := l.client.GetIssue(ctx, parent)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve parent #%d: %w", parent, err)
	}
	if !issue.HasLabel(taxonomy.Name(taxonomy.CategoryPlan, taxonomy.PlanOverview)) {
		return nil, fmt.Errorf("issue #%d is not a valid plan (missing plan:overview label)", parent)
	}
	return issue, nil
}

// AddPhases creates one phase per spec under the parent plan. Ordinals are
// 1-based and scoped to this invocation; re-running against the same parent
// restarts numbering (open limitation, not patched here).
//
// A single phase's failure is logged and the loop continues; the Result
// carries the final tally. Validation of the parent is fatal.
func (l *Linker) AddPhases(ctx context.Context, parent int, specs []Spec) (*Result, error) {
	parentIssue, err := l.validatePlan(ctx, parent)
	if err != nil {
		return nil, err
	}

	viewer, err := l.client.Viewer(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Requested: len(specs)}
	for i, spec := range specs {
		ordinal := i + 1
		created, err := l.createPhase(ctx, parentIssue, ordinal, spec, viewer)
		if err != nil {
			l.logger.Error("phase creation failed",
				zap.Int("ordinal", ordinal),
				zap.String("name", spec.Name),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, Failure{Ordinal: ordinal, Name: spec.Name, Err: err})
			continue
		}
		result.Created = append(result.Created, *created)
	}
	return result, nil
}

// createPhase creates one phase issue and writes the two cross-link
// comments. The three calls are not atomic: a failure after creation leaves
// a partially linked phase, which the dashboard treats as non-corrupting.
func (l *Linker) createPhase(ctx context.Context, parent *tracker.Issue, ordinal int, spec Spec, viewer string) (*Created, error) {
	title := fmt.Sprintf("Phase %d: %s", ordinal, spec.Name)

	issue, err := l.client.CreateIssue(ctx, tracker.NewIssue{
		Title: title,
		Body:  phaseBody(parent.Number, spec),
		Labels: []string{
			taxonomy.Name(taxonomy.CategoryPlan, taxonomy.PlanPhase),
			taxonomy.Name(taxonomy.CategoryStatus, taxonomy.StatusPlanning),
		},
		Assignees: []string{viewer},
	})
	if err != nil {
		return nil, err
	}

	if err := l.client.AddComment(ctx, parent.Number,
		fmt.Sprintf("Phase %d: %s (#%d)", ordinal, spec.Name, issue.Number)); err != nil {
		l.logger.Warn("forward cross-link failed, phase left partially linked",
			zap.Int("phase", issue.Number), zap.Error(err))
	}
	if err := l.client.AddComment(ctx, issue.Number,
		fmt.Sprintf("Part of plan #%d: %s", parent.Number, parent.Title)); err != nil {
		l.logger.Warn("reciprocal cross-link failed, phase left partially linked",
			zap.Int("phase", issue.Number), zap.Error(err))
	}

	l.logger.Info("created phase",
		zap.Int("parent", parent.Number),
		zap.Int("number", issue.Number),
		zap.Int("ordinal", ordinal),
	)
	return &Created{Ordinal: ordinal, Number: issue.Number, Title: title, URL: issue.HTMLURL}, nil
}

// CreateCloseout creates the completion-record entity for a plan, with the
// same cross-link pattern as a phase. Title defaults to "Closeout: <plan
// title>".
func (l *Linker) CreateCloseout(ctx context.Context, parent int, title string) (*Created, error) {
	parentIssue, err := l.validatePlan(ctx, parent)
	if err != nil {
		return nil, err
	}

	viewer, err := l.client.Viewer(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("Closeout: %s", parentIssue.Title)
	}

	issue, err := l.client.CreateIssue(ctx, tracker.NewIssue{
		Title: title,
		Body:  closeoutBody(parentIssue.Number),
		Labels: []string{
			taxonomy.Name(taxonomy.CategoryPlan, taxonomy.PlanCloseout),
			taxonomy.Name(taxonomy.CategoryStatus, taxonomy.StatusPlanning),
		},
		Assignees: []string{viewer},
	})
	if err != nil {
		return nil, err
	}

	if err := l.client.AddComment(ctx, parentIssue.Number,
		fmt.Sprintf("Closeout: %s (#%d)", title, issue.Number)); err != nil {
		l.logger.Warn("forward cross-link failed", zap.Int("closeout", issue.Number), zap.Error(err))
	}
	if err := l.client.AddComment(ctx, issue.Number,
		fmt.Sprintf("Part of plan #%d: %s", parentIssue.Number, parentIssue.Title)); err != nil {
		l.logger.Warn("reciprocal cross-link failed", zap.Int("closeout", issue.Number), zap.Error(err))
	}

	return &Created{Ordinal: 1, Number: issue.Number, Title: title, URL: issue.HTMLURL}, nil
}

func phaseBody(parent int, spec Spec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Part of plan #%d\n\n", parent)
	fmt.Fprintf(&b, "- **Estimated duration**: %s\n", spec.Duration)
	fmt.Fprintf(&b, "- **Depends on**: %s\n", spec.DependsOn)
	return b.String()
}

func closeoutBody(parent int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Part of plan #%d\n\n", parent)
	b.WriteString("### Completion checklist\n\n")
	b.WriteString("- [ ] All phases completed\n")
	b.WriteString("- [ ] Results reviewed\n")
	b.WriteString("- [ ] Follow-up work filed\n")
	return b.String()
}
