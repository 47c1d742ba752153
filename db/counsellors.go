package db

import (
	"context"
	"database/sql"
	"strings"

	"counsellor-matching/errors"
	"counsellor-matching/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CounsellorRepository reads and writes the counsellors table. It satisfies
// ranking.RosterSource and ranking.BasicRosterSource.
type CounsellorRepository struct {
	db *sql.DB
}

func NewCounsellorRepository(db *sql.DB) *CounsellorRepository {
	return &CounsellorRepository{db: db}
}

const counsellorColumns = `c.id, c.profile_id, c.specialization, c.affiliation, c.fees, c.experience_years, c.is_available`

// ListRoster returns up to limit counsellors joined with their profile names.
func (r *CounsellorRepository) ListRoster(ctx context.Context, limit int) ([]models.Counsellor, error) {
	query := `
		SELECT ` + counsellorColumns + `, p.full_name, p.email
		FROM counsellors c
		LEFT JOIN profiles p ON p.id = c.profile_id
		ORDER BY c.created_at, c.id
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Counsellor
	for rows.Next() {
		var (
			c               models.Counsellor
			fullName, email sql.NullString
		)
		if err := scanCounsellor(rows, &c, &fullName, &email); err != nil {
			return nil, err
		}
		c.FullName = fullName.String
		c.Email = email.String
		c.Name = models.DisplayName(c.FullName, c.Email)
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListBasicRoster reads counsellors without touching profiles. Names are
// left to the generic display label.
func (r *CounsellorRepository) ListBasicRoster(ctx context.Context) ([]models.Counsellor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+counsellorColumns+` FROM counsellors c ORDER BY c.created_at, c.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Counsellor
	for rows.Next() {
		var c models.Counsellor
		if err := scanCounsellor(rows, &c); err != nil {
			return nil, err
		}
		c.Name = models.DisplayName("", "")
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID returns one counsellor with profile data or a NotFound error.
func (r *CounsellorRepository) GetByID(ctx context.Context, id string) (*models.Counsellor, error) {
	const op errors.Op = "db.CounsellorRepository.GetByID"
	query := `
		SELECT ` + counsellorColumns + `, p.full_name, p.email
		FROM counsellors c
		LEFT JOIN profiles p ON p.id = c.profile_id
		WHERE c.id = $1`

	var (
		c               models.Counsellor
		fullName, email sql.NullString
	)
	err := scanCounsellor(r.db.QueryRowContext(ctx, query, id), &c, &fullName, &email)
	if err == sql.ErrNoRows {
		return nil, errors.E(op, errors.NotFound, "counsellor not found")
	}
	if err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}
	c.FullName = fullName.String
	c.Email = email.String
	c.Name = models.DisplayName(c.FullName, c.Email)
	return &c, nil
}

// NamesByIDs maps counsellor id to display name for the given ids.
func (r *CounsellorRepository) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, p.full_name, p.email
		FROM counsellors c
		LEFT JOIN profiles p ON p.id = c.profile_id
		WHERE c.id::text = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var fullName, email sql.NullString
		if err := rows.Scan(&id, &fullName, &email); err != nil {
			return nil, err
		}
		names[id] = models.DisplayName(fullName.String, email.String)
	}
	return names, rows.Err()
}

// Import upserts spreadsheet rows in one transaction. Profiles are keyed by
// email; a counsellor already linked to the profile is updated in place.
func (r *CounsellorRepository) Import(ctx context.Context, rows []models.CounsellorImport) (models.ImportResult, error) {
	const op errors.Op = "db.CounsellorRepository.Import"
	var res models.ImportResult

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return res, errors.E(op, errors.Internal, err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		var profileID string
		err := tx.QueryRowContext(ctx, `
			INSERT INTO profiles (id, full_name, email, role)
			VALUES ($1, $2, $3, 'counsellor')
			ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name, role = 'counsellor'
			RETURNING id`,
			uuid.New(), row.FullName, strings.ToLower(row.Email)).Scan(&profileID)
		if err != nil {
			return res, errors.E(op, errors.Internal, "profile upsert failed for "+row.Email, err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE counsellors
			SET specialization = $2, affiliation = $3, fees = $4, experience_years = $5, is_available = $6
			WHERE profile_id = $1`,
			profileID, row.Specialization, nullString(row.Affiliation), row.Fees,
			nullInt(row.ExperienceYears), nullBool(row.IsAvailable))
		if err != nil {
			return res, errors.E(op, errors.Internal, err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			res.Updated++
			continue
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO counsellors (id, profile_id, specialization, affiliation, fees, experience_years, is_available)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(), profileID, row.Specialization, nullString(row.Affiliation), row.Fees,
			nullInt(row.ExperienceYears), nullBool(row.IsAvailable))
		if err != nil {
			return res, errors.E(op, errors.Internal, err)
		}
		res.Created++
	}

	if err := tx.Commit(); err != nil {
		return models.ImportResult{}, errors.E(op, errors.Internal, err)
	}
	return res, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanCounsellor scans counsellorColumns followed by any extra destinations.
func scanCounsellor(s rowScanner, c *models.Counsellor, extra ...interface{}) error {
	var (
		profileID   sql.NullString
		affiliation sql.NullString
		experience  sql.NullInt64
		available   sql.NullBool
	)
	dest := []interface{}{&c.ID, &profileID, &c.Specialization, &affiliation, &c.Fees, &experience, &available}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	c.ProfileID = profileID.String
	c.Affiliation = stringPtr(affiliation)
	c.ExperienceYears = intPtr(experience)
	c.IsAvailable = boolPtr(available)
	return nil
}
