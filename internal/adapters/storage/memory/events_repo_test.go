package memory

import (
	"context"
	"testing"
	"time"

	"pettracker/internal/domain/events"
)

func TestEventRepo_ListByPets_OrdersByScheduleWithCreationTiebreak(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepo()

	base := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	sameSlot := time.Date(2030, 3, 10, 15, 30, 0, 0, time.UTC)

	seed := []events.Event{
		{ID: "old", PetID: "pet-1", Title: "checkup",
			ScheduledAt: sameSlot.Add(-24 * time.Hour),
			CreatedAt:   base, UpdatedAt: base},
		// Dos eventos al mismo minuto: el creado primero lista primero
		{ID: "tie-first", PetID: "pet-1", Title: "vaccine",
			ScheduledAt: sameSlot,
			CreatedAt:   base.Add(1 * time.Minute), UpdatedAt: base.Add(1 * time.Minute)},
		{ID: "tie-second", PetID: "pet-1", Title: "grooming",
			ScheduledAt: sameSlot,
			CreatedAt:   base.Add(2 * time.Minute), UpdatedAt: base.Add(2 * time.Minute)},
		{ID: "other-pet", PetID: "pet-2", Title: "bath",
			ScheduledAt: sameSlot, CreatedAt: base, UpdatedAt: base},
	}
	for _, e := range seed {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create %s: %v", e.ID, err)
		}
	}

	got, err := repo.ListByPets(ctx, []string{"pet-1"})
	if err != nil {
		t.Fatalf("ListByPets error: %v", err)
	}

	want := []string{"tie-first", "tie-second", "old"}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s (full order: %v)", i, id, got[i].ID, eventIDs(got))
		}
	}
}

func eventIDs(items []events.Event) []string {
	out := make([]string, 0, len(items))
	for _, e := range items {
		out = append(out, e.ID)
	}
	return out
}
