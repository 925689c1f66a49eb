package events

import "context"

type Repository interface {
	Create(ctx context.Context, e Event) error
	GetByID(ctx context.Context, id string) (Event, error)
	// ListByPets devuelve los eventos de esas mascotas ordenados por
	// scheduled_at descendente (orden estable ante empates).
	ListByPets(ctx context.Context, petIDs []string) ([]Event, error)
	Update(ctx context.Context, e Event) error
	MarkHappened(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	DeleteByPet(ctx context.Context, petID string) error
}

type TaskRecords interface {
	Create(ctx context.Context, t TaskRecord) error
	GetByID(ctx context.Context, taskID string) (TaskRecord, error)
	ListByEvent(ctx context.Context, eventID string) ([]TaskRecord, error)
	Delete(ctx context.Context, taskID string) error
	DeleteByEvent(ctx context.Context, eventID string) error
}
