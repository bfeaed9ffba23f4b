package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/catalogaudit/storybook-a11y-go/internal/adapter/driven/browser"
	"github.com/catalogaudit/storybook-a11y-go/internal/adapter/driven/catalog"
	"github.com/catalogaudit/storybook-a11y-go/internal/adapter/driven/config"
	"github.com/catalogaudit/storybook-a11y-go/internal/adapter/driven/export"
	"github.com/catalogaudit/storybook-a11y-go/internal/adapter/driving/cli"
	"github.com/catalogaudit/storybook-a11y-go/internal/application/usecase"
	"github.com/catalogaudit/storybook-a11y-go/pkg/console"
	"github.com/catalogaudit/storybook-a11y-go/pkg/version"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	app := cli.NewCLIApp(version.Version)

	browserRepo := browser.NewBrowserRepository(logger)
	exportRepo := export.NewExportRepository()
	configRepo := config.NewConfigRepository()
	catalogServer := catalog.NewServer(logger)
	consoleImpl := console.NewConsole()

	auditUseCase := usecase.NewAuditUseCase(
		browserRepo,
		exportRepo,
		configRepo,
		catalogServer,
		consoleImpl,
		logger,
	)

	app.SetAuditUseCase(auditUseCase)

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
