package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pettracker/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pet (
			pet_id, name, species, breed, gender, weight,
			owner_user_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		p.ID,
		p.Name,
		p.Species,
		toNullString(p.Breed),
		string(p.Gender),
		toNullFloat(p.Weight),
		p.OwnerUserID,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			pet_id, name, species, breed, gender, weight,
			owner_user_id,
			created_at, updated_at
		FROM pet
		WHERE pet_id = $1
	`, id)

	p, err := scanPet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, err
	}
	return p, nil
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			pet_id, name, species, breed, gender, weight,
			owner_user_id,
			created_at, updated_at
		FROM pet
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pet
		SET
			name = $2,
			species = $3,
			breed = $4,
			gender = $5,
			weight = $6,
			updated_at = $7
		WHERE pet_id = $1
	`,
		p.ID,
		p.Name,
		p.Species,
		toNullString(p.Breed),
		string(p.Gender),
		toNullFloat(p.Weight),
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

// Delete borra la mascota; los eventos caen por el ON DELETE CASCADE
// del esquema (los task records los limpia antes el servicio).
func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pet WHERE pet_id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var (
		p      pets.Pet
		breed  sql.NullString
		weight sql.NullFloat64
		gender string
	)
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Species,
		&breed,
		&gender,
		&weight,
		&p.OwnerUserID,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}

	p.Gender = pets.Gender(gender)
	if breed.Valid {
		p.Breed = breed.String
	}
	if weight.Valid {
		w := weight.Float64
		p.Weight = &w
	}
	return p, nil
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
