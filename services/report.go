package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

// RenderSuggestionReport writes a one page PDF listing the suggestions into
// dir and returns its path.
func RenderSuggestionReport(dir, studentName string, s *Suggestions, generatedAt time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating report directory: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Counsellor Suggestions", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Counsellor Suggestions")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Prepared for: %s", studentName)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", generatedAt.Format("Jan 2, 2006 3:04 PM")))
	pdf.Ln(12)

	headers := []struct {
		title string
		width float64
	}{
		{"#", 10}, {"Counsellor", 50}, {"Specialization", 60}, {"Fee", 25}, {"Score", 25},
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(232, 240, 248)
	for _, h := range headers {
		pdf.CellFormat(h.width, 8, h.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for i, c := range s.Counsellors {
		pdf.CellFormat(headers[0].width, 8, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(headers[1].width, 8, tr(truncate(c.Name, 28)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(headers[2].width, 8, tr(truncate(c.Specialization, 34)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(headers[3].width, 8, fmt.Sprintf("%.2f", c.Fees), "1", 0, "R", false, 0, "")
		pdf.CellFormat(headers[4].width, 8, fmt.Sprintf("%.2f", c.RankingScore), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	if len(s.Counsellors) == 0 {
		pdf.CellFormat(170, 8, "No counsellors are listed right now.", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, "Suggestions are based on your questionnaire answers and are not a clinical assessment. "+
		"If you are in crisis, contact your campus emergency line.", "", "L", false)

	path := filepath.Join(dir, fmt.Sprintf("suggestions_%s.pdf", uuid.NewString()))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("error generating suggestion report PDF: %w", err)
	}
	return path, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
