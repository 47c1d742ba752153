package services

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"counsellor-matching/logger"
	"counsellor-matching/models"
	"counsellor-matching/utils"

	"github.com/xuri/excelize/v2"
)

// RowError explains why a spreadsheet row was skipped.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ParseRosterFile reads a counsellor roster spreadsheet from disk.
func ParseRosterFile(filePath string) ([]models.CounsellorImport, []RowError, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	return parseRoster(f)
}

// ParseRoster reads a counsellor roster spreadsheet from r, such as an
// uploaded file.
func ParseRoster(r io.Reader) ([]models.CounsellorImport, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	return parseRoster(f)
}

func parseRoster(f *excelize.File) ([]models.CounsellorImport, []RowError, error) {
	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, nil, fmt.Errorf("no sheets found in Excel file")
	}
	sheetName := sheetList[0]

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no data in sheet")
	}

	cols := detectColumns(rows[0])
	logger.Debug("Roster sheet %q columns: %v", sheetName, cols)
	if cols["email"] < 0 {
		return nil, nil, fmt.Errorf("roster must have an email column")
	}

	var (
		imports []models.CounsellorImport
		skipped []RowError
		seen    = map[string]bool{}
	)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1
		if isBlankRow(row) {
			continue
		}

		c, err := rosterRow(row, cols)
		if err != nil {
			skipped = append(skipped, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		key := strings.ToLower(c.Email)
		if seen[key] {
			skipped = append(skipped, RowError{Row: rowNum, Reason: "duplicate email " + c.Email})
			continue
		}
		seen[key] = true
		imports = append(imports, c)
	}

	logger.Info("Parsed roster: %d counsellors, %d rows skipped", len(imports), len(skipped))
	return imports, skipped, nil
}

func rosterRow(row []string, cols map[string]int) (models.CounsellorImport, error) {
	c := models.CounsellorImport{
		FullName:       extractField(row, cols["name"]),
		Email:          extractField(row, cols["email"]),
		Specialization: extractField(row, cols["specialization"]),
		Affiliation:    extractField(row, cols["affiliation"]),
	}
	if err := utils.ValidateEmail(c.Email); err != nil {
		return c, err
	}

	if fees := extractField(row, cols["fees"]); fees != "" {
		v, err := strconv.ParseFloat(strings.TrimPrefix(strings.ReplaceAll(fees, ",", ""), "₹"), 64)
		if err != nil || v < 0 {
			return c, fmt.Errorf("invalid fees %q", fees)
		}
		c.Fees = v
	}

	if exp := extractField(row, cols["experience"]); exp != "" {
		v, err := strconv.Atoi(exp)
		if err != nil || v < 0 {
			return c, fmt.Errorf("invalid experience %q", exp)
		}
		c.ExperienceYears = &v
	}

	if avail := extractField(row, cols["available"]); avail != "" {
		v, err := parseYesNo(avail)
		if err != nil {
			return c, err
		}
		c.IsAvailable = &v
	}
	return c, nil
}

// detectColumns finds column indices by matching header names. Missing
// columns map to -1.
func detectColumns(headers []string) map[string]int {
	indices := make(map[string]int, len(utils.RosterHeaders))
	for field := range utils.RosterHeaders {
		indices[field] = -1
	}

	for i, header := range headers {
		lower := strings.ToLower(strings.TrimSpace(header))
		for field, names := range utils.RosterHeaders {
			if indices[field] >= 0 {
				continue
			}
			for _, n := range names {
				if lower == n {
					indices[field] = i
				}
			}
		}
	}
	return indices
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "available":
		return true, nil
	case "no", "n", "false", "0", "unavailable":
		return false, nil
	}
	return false, fmt.Errorf("invalid availability %q", s)
}

// extractField safely extracts a field from a row
func extractField(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
