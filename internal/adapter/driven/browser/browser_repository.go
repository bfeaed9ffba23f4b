package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/catalogaudit/storybook-a11y-go/internal/domain/entity"
	"github.com/catalogaudit/storybook-a11y-go/internal/domain/repository"
	"github.com/catalogaudit/storybook-a11y-go/internal/shared/types"
)

// inventoryReadyExpr is polled until the catalog's client-side inventory API
// is queryable.
const inventoryReadyExpr = `window.__STORYBOOK_CLIENT_API__ !== undefined && typeof window.__STORYBOOK_CLIENT_API__.getStorybook === 'function'`

// inventoryExtractExpr returns the full group/story tree in catalog order.
const inventoryExtractExpr = `window.__STORYBOOK_CLIENT_API__.getStorybook().map(function(g) {
	return {kind: g.kind, stories: (g.stories || []).map(function(s) { return {name: s.name}; })};
})`

// BrowserRepositoryImpl drives headless Chrome over the DevTools protocol.
// One exec allocator and one browser session live for the whole run; each
// pooled audit context is its own tab, so script state never leaks between
// targets.
type BrowserRepositoryImpl struct {
	logger *zap.Logger

	opts       types.BrowserOptions
	auditorSrc string

	allocCtx      context.Context
	allocCancel   context.CancelFunc
	sessionCtx    context.Context
	sessionCancel context.CancelFunc
}

// NewBrowserRepository creates a new browser repository. Nothing is started
// until Launch.
func NewBrowserRepository(logger *zap.Logger) repository.BrowserRepository {
	return &BrowserRepositoryImpl{logger: logger}
}

// Launch reads the auditor payload, starts the Chrome process and opens the
// control session. Any failure here aborts the run before discovery.
func (r *BrowserRepositoryImpl) Launch(ctx context.Context, opts types.BrowserOptions) error {
	if opts.AuditorScript == "" {
		return fmt.Errorf("no auditor script configured")
	}
	src, err := os.ReadFile(opts.AuditorScript)
	if err != nil {
		return fmt.Errorf("failed to read auditor script %s: %w", opts.AuditorScript, err)
	}
	r.opts = opts
	r.auditorSrc = string(src)

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if opts.BrowserPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.BrowserPath))
	}

	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(ctx, allocOpts...)
	r.sessionCtx, r.sessionCancel = chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(r.logger.Sugar().Debugf))

	// An empty Run forces the browser process to start now so an
	// unavailable engine fails the run before any pool exists.
	if err := chromedp.Run(r.sessionCtx); err != nil {
		r.Close()
		return &types.LaunchError{Err: err}
	}

	r.logger.Info("browser launched", zap.String("exec_path", opts.BrowserPath))
	return nil
}

// DiscoverTargets navigates the control session to the endpoint, waits for
// the inventory API and extracts the ordered (kind, story) tree. No retries:
// a dead or incompatible endpoint is fatal to the whole run.
func (r *BrowserRepositoryImpl) DiscoverTargets(ctx context.Context, endpoint string) ([]entity.Target, error) {
	if r.sessionCtx == nil {
		return nil, &types.DiscoveryError{Endpoint: endpoint, Err: fmt.Errorf("browser not launched")}
	}

	tctx, cancel := context.WithTimeout(r.sessionCtx, r.opts.NavTimeout)
	defer cancel()

	var ready bool
	var inventory []StoryKind
	err := chromedp.Run(tctx,
		chromedp.Navigate(endpoint),
		chromedp.Poll(inventoryReadyExpr, &ready, chromedp.WithPollingTimeout(r.opts.NavTimeout)),
		chromedp.Evaluate(inventoryExtractExpr, &inventory),
	)
	if err != nil {
		return nil, &types.DiscoveryError{Endpoint: endpoint, Err: err}
	}

	targets, err := TargetsFromInventory(endpoint, inventory)
	if err != nil {
		return nil, &types.DiscoveryError{Endpoint: endpoint, Err: err}
	}

	r.logger.Info("discovery complete",
		zap.String("endpoint", endpoint), zap.Int("targets", len(targets)))
	return targets, nil
}

// NewContext opens a fresh tab for pooled use. The tab is materialized
// immediately so arena construction surfaces failures instead of the first
// audit task.
func (r *BrowserRepositoryImpl) NewContext(ctx context.Context) (repository.BrowserContext, error) {
	if r.sessionCtx == nil {
		return nil, fmt.Errorf("browser not launched")
	}

	tabCtx, tabCancel := chromedp.NewContext(r.sessionCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, err
	}

	return &browserContext{
		ctx:        tabCtx,
		cancel:     tabCancel,
		auditorSrc: r.auditorSrc,
		global:     r.opts.AuditorGlobal,
		root:       r.opts.RootSelector,
		navTimeout: r.opts.NavTimeout,
	}, nil
}

// Close tears down the session and the Chrome process. Safe to call after a
// failed Launch.
func (r *BrowserRepositoryImpl) Close() {
	if r.sessionCancel != nil {
		r.sessionCancel()
	}
	if r.allocCancel != nil {
		r.allocCancel()
	}
}

// browserContext is one tab, exclusively owned by a single in-flight task.
type browserContext struct {
	ctx        context.Context
	cancel     context.CancelFunc
	auditorSrc string
	global     string
	root       string
	navTimeout time.Duration
}

// Navigate drives the tab to the URL and waits until the document is ready,
// bounded by the navigation timeout.
func (c *browserContext) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tctx, cancel := context.WithTimeout(c.ctx, c.navTimeout)
	defer cancel()

	return chromedp.Run(tctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// InjectAuditor installs the auditor payload into the current page.
func (c *browserContext) InjectAuditor(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tctx, cancel := context.WithTimeout(c.ctx, c.navTimeout)
	defer cancel()

	return chromedp.Run(tctx, chromedp.Evaluate(c.auditorSrc, nil))
}

// CollectViolations invokes the auditor's run entry point against the root
// content container and decodes its report. Any shape mismatch surfaces as
// an error, which the task maps to a failed outcome.
func (c *browserContext) CollectViolations(ctx context.Context) ([]entity.Violation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tctx, cancel := context.WithTimeout(c.ctx, c.navTimeout)
	defer cancel()

	expr := fmt.Sprintf(`(function() {
		var root = document.querySelector(%q) || document.body;
		return window[%q].run(root);
	})()`, c.root, c.global)

	var result struct {
		Violations []entity.Violation `json:"violations"`
	}
	err := chromedp.Run(tctx, chromedp.Evaluate(expr, &result,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}))
	if err != nil {
		return nil, err
	}
	return result.Violations, nil
}

// Close releases the tab.
func (c *browserContext) Close() error {
	c.cancel()
	return nil
}
