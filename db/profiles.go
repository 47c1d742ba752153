package db

import (
	"context"
	"database/sql"

	"counsellor-matching/errors"
	"counsellor-matching/models"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	const op errors.Op = "db.ProfileRepository.GetByID"

	var (
		p                      models.Profile
		fullName, email, phone sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, phone, role, created_at
		FROM profiles
		WHERE id = $1`, id).Scan(&p.ID, &fullName, &email, &phone, &p.Role, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.E(op, errors.NotFound, "profile not found")
	}
	if err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}
	p.FullName = fullName.String
	p.Email = email.String
	p.Phone = stringPtr(phone)
	return &p, nil
}
