package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/catalogaudit/storybook-a11y-go/internal/application/usecase"
	"github.com/catalogaudit/storybook-a11y-go/internal/shared/types"
	"github.com/catalogaudit/storybook-a11y-go/pkg/version"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd      *cobra.Command
	auditUseCase *usecase.AuditUseCase
	version      string
}

// NewCLIApp creates a new CLI application.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:     "a11y-audit",
		Short:   "Accessibility audit for storybook-style component catalogs",
		Version: formattedVersion,
		RunE:    app.runCommand,
	}

	rootCmd.SetVersionTemplate(`{{printf "a11y-audit version: %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringP("endpoint", "e", "", "URL of a running catalog to audit")
	rootCmd.PersistentFlags().StringP("catalog-dir", "d", "", "Static catalog build directory to serve and audit")
	rootCmd.PersistentFlags().IntP("concurrency", "c", 0, "Maximum number of concurrent browser contexts (default 10)")
	rootCmd.PersistentFlags().StringP("browser-path", "b", "", "Path to the browser executable (default: resolved from PATH)")
	rootCmd.PersistentFlags().StringP("auditor-script", "a", "", "Path to the accessibility auditor script payload (e.g. axe.min.js)")
	rootCmd.PersistentFlags().String("auditor-global", "", "Global name of the auditor entry point (default: axe)")
	rootCmd.PersistentFlags().StringP("root-selector", "r", "", "CSS selector of the root content container (default: #root)")
	rootCmd.PersistentFlags().DurationP("nav-timeout", "t", 0, "Per-navigation timeout (default 30s)")
	rootCmd.PersistentFlags().Duration("run-timeout", 0, "Overall run timeout (default 15m); a negative value disables the bound")
	rootCmd.PersistentFlags().Bool("strict", false, "Fail the run when any target could not be audited")
	rootCmd.PersistentFlags().Bool("all-nodes", false, "Print every implicated node per violation instead of the first")
	rootCmd.PersistentFlags().StringP("report-name", "n", "", "Base name for the exported report file (without extension)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "y", nil, "Report types to export: csv, json, pdf")
	rootCmd.PersistentFlags().String("dir", "", "Directory to save the report files (default: current directory)")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	configFile, _ := app.rootCmd.Flags().GetString("config-file")
	endpoint, _ := app.rootCmd.Flags().GetString("endpoint")
	catalogDir, _ := app.rootCmd.Flags().GetString("catalog-dir")
	concurrency, _ := app.rootCmd.Flags().GetInt("concurrency")
	browserPath, _ := app.rootCmd.Flags().GetString("browser-path")
	auditorScript, _ := app.rootCmd.Flags().GetString("auditor-script")
	auditorGlobal, _ := app.rootCmd.Flags().GetString("auditor-global")
	rootSelector, _ := app.rootCmd.Flags().GetString("root-selector")
	navTimeout, _ := app.rootCmd.Flags().GetDuration("nav-timeout")
	runTimeout, _ := app.rootCmd.Flags().GetDuration("run-timeout")
	strict, _ := app.rootCmd.Flags().GetBool("strict")
	allNodes, _ := app.rootCmd.Flags().GetBool("all-nodes")
	reportName, _ := app.rootCmd.Flags().GetString("report-name")
	reportType, _ := app.rootCmd.Flags().GetStringSlice("report-type")
	dir, _ := app.rootCmd.Flags().GetString("dir")

	if catalogDir != "" {
		absDir, err := filepath.Abs(catalogDir)
		if err != nil {
			return nil, err
		}
		catalogDir = absDir
	}
	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	args := &types.CLIArgs{
		ConfigFile:    configFile,
		Endpoint:      endpoint,
		CatalogDir:    catalogDir,
		Concurrency:   concurrency,
		BrowserPath:   browserPath,
		AuditorScript: auditorScript,
		AuditorGlobal: auditorGlobal,
		RootSelector:  rootSelector,
		NavTimeout:    navTimeout,
		RunTimeout:    runTimeout,
		Strict:        strict,
		AllNodes:      allNodes,
		ReportName:    reportName,
		ReportType:    reportType,
		Dir:           dir,
	}

	return args, nil
}

// runCommand is the main entry point for the CLI command.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	displayWelcomeBanner(app.version)

	go version.CheckLatestVersion(app.version)

	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	ctx := context.Background()
	tally, err := app.auditUseCase.RunAudit(ctx, cliArgs)
	if err != nil {
		return err
	}

	if !tally.Passed(cliArgs.Strict) {
		failed := tally.ViolationCount
		if failed == 0 {
			failed = tally.FailedTargets
		}
		return fmt.Errorf("%w: %d", types.ErrChecksFailed, failed)
	}
	return nil
}

// SetAuditUseCase sets the audit use case for the CLI app.
func (app *CLIApp) SetAuditUseCase(useCase *usecase.AuditUseCase) {
	app.auditUseCase = useCase
}
