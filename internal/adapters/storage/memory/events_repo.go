package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pettracker/internal/domain/events"
)

type eventRepo struct {
	mu   sync.RWMutex
	byID map[string]events.Event
}

func NewEventRepo() events.Repository {
	return &eventRepo{
		byID: make(map[string]events.Event),
	}
}

func (r *eventRepo) Create(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("event id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("event already exists")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	return e, nil
}

func (r *eventRepo) ListByPets(ctx context.Context, petIDs []string) ([]events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]struct{}, len(petIDs))
	for _, id := range petIDs {
		wanted[id] = struct{}{}
	}

	out := make([]events.Event, 0)
	for _, e := range r.byID {
		if _, ok := wanted[e.PetID]; ok {
			out = append(out, e)
		}
	}

	// scheduled_at desc; desempate por created_at asc para orden estable
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.After(out[j].ScheduledAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *eventRepo) Update(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[e.ID]; !exists {
		return events.ErrNotFound
	}
	r.byID[e.ID] = e
	return nil
}

func (r *eventRepo) MarkHappened(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.byID[id]
	if !exists {
		return events.ErrNotFound
	}
	e.IsHappened = true
	r.byID[id] = e
	return nil
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return events.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *eventRepo) DeleteByPet(ctx context.Context, petID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.byID {
		if e.PetID == petID {
			delete(r.byID, id)
		}
	}
	return nil
}
