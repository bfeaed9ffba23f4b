package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/catalogaudit/storybook-a11y-go/internal/domain/entity"
	"github.com/catalogaudit/storybook-a11y-go/internal/domain/repository"
)

// ExportRepositoryImpl implements the ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository creates a new ExportRepository implementation.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

func (r *ExportRepositoryImpl) ExportReportToCSV(report *entity.AuditReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"Kind", "Story", "URL", "Status", "Violations", "Details"}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, row := range report.Rows {
		record := []string{
			row.Kind,
			row.Story,
			row.URL,
			row.Status,
			strconv.Itoa(row.ViolationCount),
			row.Details,
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportReportToJSON(report *entity.AuditReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportReportToPDF(report *entity.AuditReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Accessibility Audit Report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Run ID: %s", report.RunID)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Generated: %s", report.GeneratedAt)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Endpoint: %s", report.Endpoint)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Targets: %d   Violations: %d   Task failures: %d",
		report.TotalTargets, report.ViolationCount, report.FailedTargets))
	pdf.Ln(10)

	headerColor := [3]int{40, 40, 120}
	headerTextColor := [3]int{255, 255, 255}

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 9)

	colWidths := []float64{40, 35, 22, 15, 78}
	headers := []string{"Kind", "Story", "Status", "Count", "Details"}
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetTextColor(50, 50, 50)
	pdf.SetFont("Arial", "", 8)
	for _, row := range report.Rows {
		details := row.Details
		if len(details) > 90 {
			details = details[:87] + "..."
		}
		pdf.CellFormat(colWidths[0], 6, tr(truncate(row.Kind, 28)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 6, tr(truncate(row.Story, 24)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], 6, row.Status, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[3], 6, strconv.Itoa(row.ViolationCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[4], 6, tr(details), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}
