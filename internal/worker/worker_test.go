package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pettracker/internal/adapters/storage/memory"
	"pettracker/internal/domain/events"
	"pettracker/internal/platform/logger"
	"pettracker/internal/ports/mail"
	"pettracker/internal/ports/queue"
)

type captureSender struct {
	sent []mail.Message
	err  error
}

func (c *captureSender) Send(_ context.Context, m mail.Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, m)
	return nil
}

func testLogger() logger.Logger {
	return logger.New(logger.Options{Level: logger.Error})
}

func seedEvent(t *testing.T, repo events.Repository, id string) events.Event {
	t.Helper()
	e := events.Event{
		ID:          id,
		Title:       "vaccine",
		Content:     "rabies shot",
		PetID:       "pet-1",
		ScheduledAt: time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC),
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}

func TestHandleSendsMailMarksHappenedAndDeletesRecord(t *testing.T) {
	ctx := context.Background()
	eventRepo := memory.NewEventRepo()
	taskRepo := memory.NewTaskRecordRepo()
	sender := &captureSender{}

	seedEvent(t, eventRepo, "ev-1")
	require.NoError(t, taskRepo.Create(ctx, events.TaskRecord{TaskID: "task-1", EventID: "ev-1"}))

	w := New(eventRepo, taskRepo, sender, testLogger())
	w.Handle(ctx, queue.Job{
		TaskID:  "task-1",
		EventID: "ev-1",
		Email:   "owner@example.com",
		Body: queue.EventBody{
			Title:   "vaccine",
			Content: "rabies shot",
			Pet:     "Firulais",
		},
	})

	require.Len(t, sender.sent, 1)
	require.Equal(t, "owner@example.com", sender.sent[0].To)
	require.Equal(t, mail.TemplateEventNotification, sender.sent[0].Template)
	require.Equal(t, "Firulais", sender.sent[0].Data["pet"])

	got, err := eventRepo.GetByID(ctx, "ev-1")
	require.NoError(t, err)
	require.True(t, got.IsHappened, "event should be marked happened")

	_, err = taskRepo.GetByID(ctx, "task-1")
	require.ErrorIs(t, err, events.ErrNotFound, "task record should be gone")
}

func TestHandleDropsStaleJob(t *testing.T) {
	ctx := context.Background()
	eventRepo := memory.NewEventRepo()
	taskRepo := memory.NewTaskRecordRepo()
	sender := &captureSender{}

	seedEvent(t, eventRepo, "ev-1")
	// Sin task record: el evento fue reprogramado y el job quedó huérfano.

	w := New(eventRepo, taskRepo, sender, testLogger())
	w.Handle(ctx, queue.Job{TaskID: "task-gone", EventID: "ev-1", Email: "owner@example.com"})

	require.Empty(t, sender.sent, "stale job must not send mail")

	got, err := eventRepo.GetByID(ctx, "ev-1")
	require.NoError(t, err)
	require.False(t, got.IsHappened)
}

func TestHandleDeletesRecordWhenEventMissing(t *testing.T) {
	ctx := context.Background()
	eventRepo := memory.NewEventRepo()
	taskRepo := memory.NewTaskRecordRepo()
	sender := &captureSender{}

	require.NoError(t, taskRepo.Create(ctx, events.TaskRecord{TaskID: "task-1", EventID: "ev-gone"}))

	w := New(eventRepo, taskRepo, sender, testLogger())
	w.Handle(ctx, queue.Job{TaskID: "task-1", EventID: "ev-gone", Email: "owner@example.com"})

	require.Empty(t, sender.sent)

	_, err := taskRepo.GetByID(ctx, "task-1")
	require.ErrorIs(t, err, events.ErrNotFound, "record is cleaned up even without the event")
}

// failingMarkRepo simula una base caída solo para MarkHappened.
type failingMarkRepo struct {
	events.Repository
}

func (r failingMarkRepo) MarkHappened(context.Context, string) error {
	return errors.New("db down")
}

func TestHandleMarkFailureSuppressesMail(t *testing.T) {
	ctx := context.Background()
	eventRepo := memory.NewEventRepo()
	taskRepo := memory.NewTaskRecordRepo()
	sender := &captureSender{}

	seedEvent(t, eventRepo, "ev-1")
	require.NoError(t, taskRepo.Create(ctx, events.TaskRecord{TaskID: "task-1", EventID: "ev-1"}))

	w := New(failingMarkRepo{eventRepo}, taskRepo, sender, testLogger())
	w.Handle(ctx, queue.Job{TaskID: "task-1", EventID: "ev-1", Email: "owner@example.com"})

	require.Empty(t, sender.sent, "mail must not go out when the event could not be marked")

	got, err := eventRepo.GetByID(ctx, "ev-1")
	require.NoError(t, err)
	require.False(t, got.IsHappened)

	_, err = taskRepo.GetByID(ctx, "task-1")
	require.ErrorIs(t, err, events.ErrNotFound, "record cleanup still runs")
}

func TestHandleMailFailureStillMarksHappened(t *testing.T) {
	ctx := context.Background()
	eventRepo := memory.NewEventRepo()
	taskRepo := memory.NewTaskRecordRepo()
	sender := &captureSender{err: errors.New("smtp down")}

	seedEvent(t, eventRepo, "ev-1")
	require.NoError(t, taskRepo.Create(ctx, events.TaskRecord{TaskID: "task-1", EventID: "ev-1"}))

	w := New(eventRepo, taskRepo, sender, testLogger())
	w.Handle(ctx, queue.Job{TaskID: "task-1", EventID: "ev-1", Email: "owner@example.com"})

	got, err := eventRepo.GetByID(ctx, "ev-1")
	require.NoError(t, err)
	require.True(t, got.IsHappened)

	_, err = taskRepo.GetByID(ctx, "task-1")
	require.ErrorIs(t, err, events.ErrNotFound)
}
