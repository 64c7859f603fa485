package taxonomy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/plantrack/internal/tracker"
)

// Report tallies the outcome of one provisioning run.
type Report struct {
	Created  []string
	Existing []string
}

// Provision ensures every canonical label exists in the tracking repository.
//
// The operation is idempotent: a label that already exists counts as success.
// Any other failure aborts immediately with an error naming the offending
// label; labels created earlier in the run are kept, so a re-run completes
// the set.
func Provision(ctx context.Context, client tracker.Client, logger *zap.Logger) (*Report, error) {
	report := &Report{}
	for _, label := range All() {
		created, err := client.EnsureLabel(ctx, label)
		if err != nil {
			return report, fmt.Errorf("provisioning label %q: %w", label.Name, err)
		}
		if created {
			report.Created = append(report.Created, label.Name)
			logger.Info("created label", zap.String("label", label.Name))
		} else {
			report.Existing = append(report.Existing, label.Name)
			logger.Debug("label already exists", zap.String("label", label.Name))
		}
	}
	return report, nil
}
