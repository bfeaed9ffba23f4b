package repository

import (
	"context"

	"github.com/catalogaudit/storybook-a11y-go/internal/domain/entity"
	"github.com/catalogaudit/storybook-a11y-go/internal/shared/types"
)

// BrowserContext is one isolated page execution context checked out of the
// pool arena. Script injection and navigation in one context cannot leak
// into another. A context is exclusively owned by a single in-flight task
// at a time.
type BrowserContext interface {
	// Navigate drives the context to the URL and waits until the page has
	// settled, bounded by the configured navigation timeout.
	Navigate(ctx context.Context, url string) error
	// InjectAuditor installs the auditor's executable payload into the
	// current page.
	InjectAuditor(ctx context.Context) error
	// CollectViolations invokes the auditor against the root content
	// container and returns its violation report in original order.
	CollectViolations(ctx context.Context) ([]entity.Violation, error)
	// Close releases the underlying page resources.
	Close() error
}

// BrowserRepository defines the interface for driving the browser engine.
type BrowserRepository interface {
	// Launch starts the browser engine. Failure is fatal to the run.
	Launch(ctx context.Context, opts types.BrowserOptions) error
	// DiscoverTargets queries the catalog endpoint for the full ordered
	// set of (kind, story) targets.
	DiscoverTargets(ctx context.Context, endpoint string) ([]entity.Target, error)
	// NewContext opens a fresh isolated page context for pooled use.
	NewContext(ctx context.Context) (BrowserContext, error)
	// Close tears down the browser engine and all remaining contexts.
	Close()
}
