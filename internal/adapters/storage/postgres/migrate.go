package postgres

import (
	"context"
	"database/sql"
)

// Esquema de las cuatro tablas. task_record no lleva FK a event a
// propósito: el worker borra el record aunque el evento ya no exista.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id         UUID PRIMARY KEY,
		username        TEXT NOT NULL UNIQUE,
		email           TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		is_active       BOOLEAN NOT NULL DEFAULT FALSE,
		is_admin        BOOLEAN NOT NULL DEFAULT FALSE,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pet (
		pet_id        UUID PRIMARY KEY,
		name          VARCHAR(30) NOT NULL,
		species       VARCHAR(30) NOT NULL,
		breed         VARCHAR(30),
		gender        VARCHAR(10) NOT NULL,
		weight        DOUBLE PRECISION,
		owner_user_id UUID NOT NULL REFERENCES users (user_id),
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS event (
		event_id     UUID PRIMARY KEY,
		title        VARCHAR(100) NOT NULL,
		content      VARCHAR(300),
		scheduled_at TIMESTAMPTZ NOT NULL,
		pet_id       UUID NOT NULL REFERENCES pet (pet_id) ON DELETE CASCADE,
		is_happened  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS task_record (
		task_id  UUID PRIMARY KEY,
		event_id UUID NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_event_pet ON event (pet_id)`,
	`CREATE INDEX IF NOT EXISTS idx_task_record_event ON task_record (event_id)`,
}

// Apply ejecuta las migraciones en orden. Todas son idempotentes.
func Apply(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
