package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pettracker/internal/domain/events"
)

// TaskRecordRepo persiste la relación tarea encolada -> evento. El worker
// la usa para decidir si un job sacado de la cola sigue vigente.
type TaskRecordRepo struct {
	db *sql.DB
}

func NewTaskRecordRepo(db *sql.DB) *TaskRecordRepo {
	return &TaskRecordRepo{db: db}
}

func (r *TaskRecordRepo) Create(ctx context.Context, t events.TaskRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO task_record (task_id, event_id) VALUES ($1, $2)
	`, t.TaskID, t.EventID)
	return err
}

func (r *TaskRecordRepo) GetByID(ctx context.Context, taskID string) (events.TaskRecord, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return events.TaskRecord{}, events.ErrNotFound
	}

	var t events.TaskRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT task_id, event_id FROM task_record WHERE task_id = $1
	`, taskID).Scan(&t.TaskID, &t.EventID)
	if err != nil {
		if err == sql.ErrNoRows {
			return events.TaskRecord{}, events.ErrNotFound
		}
		return events.TaskRecord{}, err
	}
	return t, nil
}

func (r *TaskRecordRepo) ListByEvent(ctx context.Context, eventID string) ([]events.TaskRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, event_id FROM task_record WHERE event_id = $1
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.TaskRecord, 0)
	for rows.Next() {
		var t events.TaskRecord
		if err := rows.Scan(&t.TaskID, &t.EventID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

func (r *TaskRecordRepo) Delete(ctx context.Context, taskID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM task_record WHERE task_id = $1`, taskID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *TaskRecordRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM task_record WHERE event_id = $1`, eventID)
	return err
}
