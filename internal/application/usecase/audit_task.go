package usecase

import (
	"context"
	"fmt"

	"github.com/catalogaudit/storybook-a11y-go/internal/domain/entity"
	"github.com/catalogaudit/storybook-a11y-go/internal/domain/repository"
)

// AuditTarget runs one render-and-audit cycle in the given browser context:
// navigate, inject the auditor, collect its report. Every fault is folded
// into a failed outcome for this target; nothing escapes to the pool.
func AuditTarget(ctx context.Context, bc repository.BrowserContext, target entity.Target) entity.AuditOutcome {
	if err := bc.Navigate(ctx, target.URL); err != nil {
		return entity.FailedOutcome(fmt.Errorf("navigation to %s: %w", target.URL, err))
	}

	if err := bc.InjectAuditor(ctx); err != nil {
		return entity.FailedOutcome(fmt.Errorf("auditor injection: %w", err))
	}

	violations, err := bc.CollectViolations(ctx)
	if err != nil {
		return entity.FailedOutcome(fmt.Errorf("auditor result retrieval: %w", err))
	}

	if len(violations) == 0 {
		return entity.CleanOutcome()
	}
	return entity.ViolationsOutcome(violations)
}
