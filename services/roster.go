package services

import (
	"context"
	"io"

	"counsellor-matching/errors"
	"counsellor-matching/logger"
	"counsellor-matching/models"
)

// RosterStore upserts imported counsellors.
type RosterStore interface {
	Import(ctx context.Context, rows []models.CounsellorImport) (models.ImportResult, error)
}

// RosterImportSummary is returned by POST /counsellors/import.
type RosterImportSummary struct {
	models.ImportResult
	Skipped []RowError `json:"skipped"`
}

type RosterService struct {
	store RosterStore
}

func NewRosterService(store RosterStore) *RosterService {
	return &RosterService{store: store}
}

// Import parses an .xlsx roster and upserts its valid rows.
func (s *RosterService) Import(ctx context.Context, r io.Reader) (*RosterImportSummary, error) {
	const op errors.Op = "services.RosterService.Import"

	rows, skipped, err := ParseRoster(r)
	if err != nil {
		return nil, errors.E(op, errors.Invalid, err.Error())
	}
	if skipped == nil {
		skipped = []RowError{}
	}
	if len(rows) == 0 {
		return &RosterImportSummary{Skipped: skipped}, nil
	}

	res, err := s.store.Import(ctx, rows)
	if err != nil {
		return nil, errors.E(op, err)
	}
	logger.Info("Roster import: %d created, %d updated, %d skipped", res.Created, res.Updated, len(skipped))
	return &RosterImportSummary{ImportResult: res, Skipped: skipped}, nil
}
