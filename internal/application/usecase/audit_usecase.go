package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/catalogaudit/storybook-a11y-go/internal/application/aggregator"
	"github.com/catalogaudit/storybook-a11y-go/internal/application/pool"
	"github.com/catalogaudit/storybook-a11y-go/internal/domain/entity"
	"github.com/catalogaudit/storybook-a11y-go/internal/domain/repository"
	"github.com/catalogaudit/storybook-a11y-go/internal/shared/types"
	"github.com/catalogaudit/storybook-a11y-go/pkg/console"
)

const (
	defaultConcurrency   = 10
	defaultAuditorGlobal = "axe"
	defaultRootSelector  = "#root"
	defaultNavTimeout    = 30 * time.Second
	defaultRunTimeout    = 15 * time.Minute
)

// CatalogServer serves a static catalog build on a loopback address so a
// storybook-static directory can be audited without a separate web server.
type CatalogServer interface {
	// Serve starts serving dir and returns the endpoint URL.
	Serve(dir string) (string, error)
	Shutdown(ctx context.Context) error
}

// AuditUseCase orchestrates the whole run: discovery, pool creation,
// enqueue, drain, aggregation and the final verdict. It is the only
// component with end-to-end failure authority.
type AuditUseCase struct {
	browserRepo   repository.BrowserRepository
	exportRepo    repository.ExportRepository
	configRepo    repository.ConfigRepository
	catalogServer CatalogServer
	console       types.ConsoleInterface
	logger        *zap.Logger
}

// NewAuditUseCase creates a new audit use case.
func NewAuditUseCase(
	browserRepo repository.BrowserRepository,
	exportRepo repository.ExportRepository,
	configRepo repository.ConfigRepository,
	catalogServer CatalogServer,
	console types.ConsoleInterface,
	logger *zap.Logger,
) *AuditUseCase {
	return &AuditUseCase{
		browserRepo:   browserRepo,
		exportRepo:    exportRepo,
		configRepo:    configRepo,
		catalogServer: catalogServer,
		console:       console,
		logger:        logger,
	}
}

// ResolveArgs merges the optional configuration file under the CLI flags
// and applies defaults. Flags win over the file; the file wins over defaults.
func (uc *AuditUseCase) ResolveArgs(args *types.CLIArgs) error {
	if args.ConfigFile != "" {
		cfg, err := uc.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return err
		}
		uc.mergeConfig(args, cfg)
	}

	if args.Concurrency <= 0 {
		args.Concurrency = defaultConcurrency
	}
	if args.AuditorGlobal == "" {
		args.AuditorGlobal = defaultAuditorGlobal
	}
	if args.RootSelector == "" {
		args.RootSelector = defaultRootSelector
	}
	if args.NavTimeout <= 0 {
		args.NavTimeout = defaultNavTimeout
	}
	// Zero keeps the default overall bound; a negative value disables it.
	if args.RunTimeout == 0 {
		args.RunTimeout = defaultRunTimeout
	} else if args.RunTimeout < 0 {
		args.RunTimeout = 0
	}

	if args.Endpoint == "" && args.CatalogDir == "" {
		return fmt.Errorf("either an endpoint URL or a catalog directory is required")
	}
	return nil
}

func (uc *AuditUseCase) mergeConfig(args *types.CLIArgs, cfg *types.Config) {
	if args.Endpoint == "" {
		args.Endpoint = cfg.Endpoint
	}
	if args.CatalogDir == "" {
		args.CatalogDir = cfg.CatalogDir
	}
	if args.Concurrency == 0 {
		args.Concurrency = cfg.Concurrency
	}
	if args.BrowserPath == "" {
		args.BrowserPath = cfg.BrowserPath
	}
	if args.AuditorScript == "" {
		args.AuditorScript = cfg.AuditorScript
	}
	if args.AuditorGlobal == "" {
		args.AuditorGlobal = cfg.AuditorGlobal
	}
	if args.RootSelector == "" {
		args.RootSelector = cfg.RootSelector
	}
	if args.NavTimeout == 0 && cfg.NavTimeout > 0 {
		args.NavTimeout = time.Duration(cfg.NavTimeout) * time.Second
	}
	if args.RunTimeout == 0 && cfg.RunTimeout > 0 {
		args.RunTimeout = time.Duration(cfg.RunTimeout) * time.Second
	}
	if !args.Strict {
		args.Strict = cfg.Strict
	}
	if !args.AllNodes {
		args.AllNodes = cfg.AllNodes
	}
	if args.ReportName == "" {
		args.ReportName = cfg.ReportName
	}
	if len(args.ReportType) == 0 {
		args.ReportType = cfg.ReportType
	}
	if args.Dir == "" && cfg.Dir != "" {
		args.Dir = cfg.Dir
	}
}

// RunAudit executes the full audit run and returns the finalized tally.
// A nil error with a failing tally means the run itself completed; mapping
// the tally to the process exit status is the caller's job.
func (uc *AuditUseCase) RunAudit(ctx context.Context, args *types.CLIArgs) (*entity.RunTally, error) {
	if err := uc.ResolveArgs(args); err != nil {
		return nil, err
	}

	if args.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, args.RunTimeout)
		defer cancel()
	}

	runID := uuid.New().String()
	uc.logger.Info("starting audit run",
		zap.String("run_id", runID),
		zap.Int("concurrency", args.Concurrency))

	endpoint := args.Endpoint
	if args.CatalogDir != "" {
		served, err := uc.catalogServer.Serve(args.CatalogDir)
		if err != nil {
			return nil, fmt.Errorf("failed to serve catalog directory: %w", err)
		}
		defer func() {
			if err := uc.catalogServer.Shutdown(context.Background()); err != nil {
				uc.logger.Warn("catalog server shutdown", zap.Error(err))
			}
		}()
		endpoint = served
		uc.console.LogInfo("Serving catalog from %s at %s", args.CatalogDir, endpoint)
	}

	status := uc.console.Status("Launching browser...")
	browserOpts := types.BrowserOptions{
		BrowserPath:   args.BrowserPath,
		AuditorScript: args.AuditorScript,
		AuditorGlobal: args.AuditorGlobal,
		RootSelector:  args.RootSelector,
		NavTimeout:    args.NavTimeout,
	}
	if err := uc.browserRepo.Launch(ctx, browserOpts); err != nil {
		status.Stop()
		return nil, err
	}
	defer uc.browserRepo.Close()

	status.Update("Discovering targets...")
	targets, err := uc.browserRepo.DiscoverTargets(ctx, endpoint)
	if err != nil {
		status.Stop()
		return nil, err
	}
	if len(targets) == 0 {
		status.Stop()
		return nil, &types.DiscoveryError{Endpoint: endpoint, Err: types.ErrNoTargetsFound}
	}
	status.Stop()
	uc.console.LogInfo("Discovered %d targets", len(targets))

	contexts, err := uc.buildArena(ctx, args.Concurrency, len(targets))
	if err != nil {
		return nil, err
	}

	// The aggregator owns the progress handle: the bar is not safe for
	// concurrent use, so it advances under the same mutex as the tally.
	progress := uc.console.ProgressWithTotal(len(targets))
	agg := aggregator.New(uc.console, uc.logger, args.AllNodes, progress)

	p := pool.New(ctx, contexts, AuditTarget, agg.Report, uc.logger)
	for _, target := range targets {
		if err := p.Enqueue(target); err != nil {
			p.Shutdown()
			return nil, err
		}
	}
	p.Drain()
	p.Shutdown()
	progress.Stop()

	tally, rows := agg.Finalize()
	uc.printSummary(tally, rows, args.Strict)

	if args.ReportName != "" {
		uc.exportReports(uc.buildReport(runID, endpoint, tally, rows), args)
	}

	return tally, nil
}

// buildArena opens the pooled browser contexts. The arena never exceeds the
// configured concurrency nor the number of targets.
func (uc *AuditUseCase) buildArena(ctx context.Context, concurrency, targetCount int) ([]repository.BrowserContext, error) {
	size := concurrency
	if targetCount < size {
		size = targetCount
	}

	contexts := make([]repository.BrowserContext, 0, size)
	for i := 0; i < size; i++ {
		bc, err := uc.browserRepo.NewContext(ctx)
		if err != nil {
			for _, opened := range contexts {
				if cerr := opened.Close(); cerr != nil {
					uc.logger.Warn("failed to close browser context", zap.Error(cerr))
				}
			}
			return nil, fmt.Errorf("failed to open browser context %d: %w", i, err)
		}
		contexts = append(contexts, bc)
	}
	return contexts, nil
}

func (uc *AuditUseCase) printSummary(tally *entity.RunTally, rows []entity.ReportRow, strict bool) {
	uc.console.Print(uc.createSummaryTable(rows).Render())

	uc.printVerdict(tally, strict)
}

// createSummaryTable lays out one row per audited target with its
// colorized result, in the order the targets were reported.
func (uc *AuditUseCase) createSummaryTable(rows []entity.ReportRow) types.TableInterface {
	table := uc.console.CreateTable()
	table.AddColumn("Target")
	table.AddColumn("Status")
	table.AddColumn("Violations")

	for _, row := range rows {
		table.AddRow(
			console.BrightCyan(row.Kind+"/"+row.Story),
			colorizeStatus(row.Status),
			fmt.Sprintf("%d", row.ViolationCount),
		)
	}

	return table
}

func colorizeStatus(status string) string {
	switch entity.OutcomeStatus(status) {
	case entity.OutcomeClean:
		return console.BrightGreen(status)
	case entity.OutcomeViolations:
		return console.BoldRed(status)
	default:
		return console.BrightYellow(status)
	}
}

func (uc *AuditUseCase) printVerdict(tally *entity.RunTally, strict bool) {

	if tally.FailedTargets > 0 {
		uc.console.LogWarning("%d of %d targets could not be audited", tally.FailedTargets, tally.TotalTargets)
	}

	if tally.Passed(strict) {
		uc.console.LogSuccess("All accessibility checks passed (%d targets)", tally.TotalTargets)
		return
	}

	if tally.ViolationCount > 0 {
		uc.console.LogError("%d accessibility checks failed", tally.ViolationCount)
	} else {
		uc.console.LogError("%d targets failed to run (strict mode)", tally.FailedTargets)
	}
}

func (uc *AuditUseCase) buildReport(runID, endpoint string, tally *entity.RunTally, rows []entity.ReportRow) *entity.AuditReport {
	return &entity.AuditReport{
		RunID:          runID,
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		Endpoint:       endpoint,
		TotalTargets:   tally.TotalTargets,
		ViolationCount: tally.ViolationCount,
		FailedTargets:  tally.FailedTargets,
		Rows:           rows,
	}
}

// exportReports writes the finalized report in each requested format.
// Export failures are logged but never change the run verdict.
func (uc *AuditUseCase) exportReports(report *entity.AuditReport, args *types.CLIArgs) {
	for _, reportType := range args.ReportType {
		switch reportType {
		case "csv":
			csvPath, err := uc.exportRepo.ExportReportToCSV(report, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export report to CSV: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported report to CSV: %s", csvPath)
			}
		case "json":
			jsonPath, err := uc.exportRepo.ExportReportToJSON(report, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export report to JSON: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported report to JSON: %s", jsonPath)
			}
		case "pdf":
			pdfPath, err := uc.exportRepo.ExportReportToPDF(report, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export report to PDF: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported report to PDF: %s", pdfPath)
			}
		default:
			uc.console.LogWarning("Unknown report type: %s", reportType)
		}
	}
}
