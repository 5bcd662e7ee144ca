package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

// WriteEvaluationPDF renders an evaluation as a one-page report and returns
// the file path.
func WriteEvaluationPDF(dir string, p Profile, subject string, eval Evaluation) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, fmt.Sprintf("evaluation-%s.pdf", uuid.NewString()))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Competency Assessment Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Profile: %s (%s)", p.Name, p.ScopeType.DisplayName()))
	pdf.Ln(7)
	if subject != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Subject: %s", subject))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Success score: %.1f (minimum %.1f, target %.1f)",
		eval.SuccessScore, p.MinSuccessScore, p.TargetSuccessScore))
	pdf.Ln(7)

	verdict := "Below minimum"
	if eval.MeetsTarget {
		verdict = "Meets target"
	} else if eval.MeetsMinimum {
		verdict = "Meets minimum"
	}
	pdf.Cell(0, 8, fmt.Sprintf("Verdict: %s", verdict))
	pdf.Ln(7)
	if len(eval.CriticalFailures) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, fmt.Sprintf("Critical failures: %d dimension(s)", len(eval.CriticalFailures)))
		pdf.SetFont("Helvetica", "", 12)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(90, 8, "Dimension")
	pdf.Cell(30, 8, "Score")
	pdf.Cell(60, 8, "Status")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, result := range eval.PerDimension {
		pdf.Cell(90, 7, result.Name)
		if result.RawScore != nil {
			pdf.Cell(30, 7, fmt.Sprintf("%.1f", *result.RawScore))
		} else {
			pdf.Cell(30, 7, "-")
		}
		label := result.Status.DisplayName()
		if result.Critical && result.Status == StatusBelowMinimum {
			label += " (critical)"
		}
		pdf.Cell(60, 7, label)
		pdf.Ln(7)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}
