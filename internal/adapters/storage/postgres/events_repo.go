package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pettracker/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

func (r *EventsRepo) Create(ctx context.Context, e events.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO event (
			event_id, title, content, scheduled_at,
			pet_id, is_happened,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.ID,
		e.Title,
		toNullString(e.Content),
		e.ScheduledAt,
		e.PetID,
		e.IsHappened,
		e.CreatedAt,
		e.UpdatedAt,
	)
	return err
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return events.Event{}, events.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			event_id, title, content, scheduled_at,
			pet_id, is_happened,
			created_at, updated_at
		FROM event
		WHERE event_id = $1
	`, id)

	e, err := scanEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, err
	}
	return e, nil
}

func (r *EventsRepo) ListByPets(ctx context.Context, petIDs []string) ([]events.Event, error) {
	if len(petIDs) == 0 {
		return []events.Event{}, nil
	}

	placeholders := make([]string, 0, len(petIDs))
	args := make([]any, 0, len(petIDs))
	for i, id := range petIDs {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, id)
	}

	// created_at asc como desempate para que el orden sea estable
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			event_id, title, content, scheduled_at,
			pet_id, is_happened,
			created_at, updated_at
		FROM event
		WHERE pet_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY scheduled_at DESC, created_at ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, rows.Err()
}

func (r *EventsRepo) Update(ctx context.Context, e events.Event) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE event
		SET
			title = $2,
			content = $3,
			scheduled_at = $4,
			is_happened = $5,
			updated_at = $6
		WHERE event_id = $1
	`,
		e.ID,
		e.Title,
		toNullString(e.Content),
		e.ScheduledAt,
		e.IsHappened,
		e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventsRepo) MarkHappened(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE event
		SET is_happened = TRUE, updated_at = NOW()
		WHERE event_id = $1
	`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM event WHERE event_id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventsRepo) DeleteByPet(ctx context.Context, petID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM event WHERE pet_id = $1`, petID)
	return err
}

func scanEvent(row rowScanner) (events.Event, error) {
	var (
		e       events.Event
		content sql.NullString
	)
	if err := row.Scan(
		&e.ID,
		&e.Title,
		&content,
		&e.ScheduledAt,
		&e.PetID,
		&e.IsHappened,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return events.Event{}, err
	}

	if content.Valid {
		e.Content = content.String
	}
	return e, nil
}
