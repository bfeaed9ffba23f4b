package repository

import (
	"github.com/catalogaudit/storybook-a11y-go/internal/domain/entity"
)

// ExportRepository defines the interface for exporting finalized audit reports.
type ExportRepository interface {
	ExportReportToCSV(report *entity.AuditReport, filename string, outputDir string) (string, error)
	ExportReportToJSON(report *entity.AuditReport, filename string, outputDir string) (string, error)
	ExportReportToPDF(report *entity.AuditReport, filename string, outputDir string) (string, error)
}
