package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"pettracker/internal/domain/events"
)

type taskRecordRepo struct {
	mu   sync.RWMutex
	byID map[string]events.TaskRecord
}

func NewTaskRecordRepo() events.TaskRecords {
	return &taskRecordRepo{
		byID: make(map[string]events.TaskRecord),
	}
}

func (r *taskRecordRepo) Create(ctx context.Context, t events.TaskRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(t.TaskID) == "" {
		return errors.New("task id required")
	}
	if _, exists := r.byID[t.TaskID]; exists {
		return errors.New("task record already exists")
	}
	r.byID[t.TaskID] = t
	return nil
}

func (r *taskRecordRepo) GetByID(ctx context.Context, taskID string) (events.TaskRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[taskID]
	if !ok {
		return events.TaskRecord{}, events.ErrNotFound
	}
	return t, nil
}

func (r *taskRecordRepo) ListByEvent(ctx context.Context, eventID string) ([]events.TaskRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]events.TaskRecord, 0)
	for _, t := range r.byID {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *taskRecordRepo) Delete(ctx context.Context, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[taskID]; !exists {
		return events.ErrNotFound
	}
	delete(r.byID, taskID)
	return nil
}

func (r *taskRecordRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.byID {
		if t.EventID == eventID {
			delete(r.byID, id)
		}
	}
	return nil
}
