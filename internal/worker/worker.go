// Package worker consume los jobs de notificación y envía los recordatorios
// por correo. Un job sacado de la cola solo es válido si su task record
// sigue en la base: al reprogramar un evento se borra el record viejo y el
// job huérfano se descarta acá.
package worker

import (
	"context"
	"errors"

	"pettracker/internal/domain/events"
	"pettracker/internal/platform/logger"
	"pettracker/internal/ports/mail"
	"pettracker/internal/ports/queue"
)

type Worker struct {
	events events.Repository
	tasks  events.TaskRecords
	sender mail.Sender
	log    logger.Logger
}

func New(eventsRepo events.Repository, tasks events.TaskRecords, sender mail.Sender, log logger.Logger) *Worker {
	return &Worker{
		events: eventsRepo,
		tasks:  tasks,
		sender: sender,
		log:    log,
	}
}

// Handle procesa un job reclamado de la cola. Nunca devuelve error: un
// recordatorio que falla se loguea y se descarta, no hay reintentos.
func (w *Worker) Handle(ctx context.Context, job queue.Job) {
	_, err := w.tasks.GetByID(ctx, job.TaskID)
	if errors.Is(err, events.ErrNotFound) {
		// El evento fue reprogramado o borrado después de encolar.
		w.log.Info("stale job dropped", map[string]any{"task_id": job.TaskID})
		return
	}
	if err != nil {
		w.log.Error("task record lookup failed", map[string]any{
			"task_id": job.TaskID,
			"error":   err.Error(),
		})
		return
	}

	_, err = w.events.GetByID(ctx, job.EventID)
	if err != nil {
		w.log.Error("event lookup failed", map[string]any{
			"event_id": job.EventID,
			"error":    err.Error(),
		})
	} else if err := w.events.MarkHappened(ctx, job.EventID); err != nil {
		// Si no pudimos marcarlo, tampoco mandamos el correo: el estado
		// persistido manda sobre la notificación.
		w.log.Error("mark happened failed", map[string]any{
			"event_id": job.EventID,
			"error":    err.Error(),
		})
	} else if err := w.sender.Send(ctx, mail.Message{
		To:       job.Email,
		Subject:  job.Body.Title,
		Template: mail.TemplateEventNotification,
		Data: map[string]any{
			"pet":     job.Body.Pet,
			"title":   job.Body.Title,
			"content": job.Body.Content,
		},
	}); err != nil {
		w.log.Error("notification mail failed", map[string]any{
			"event_id": job.EventID,
			"error":    err.Error(),
		})
	}

	// El record se borra aunque el evento ya no exista; si no, quedaría
	// basura en task_record para siempre.
	if err := w.tasks.Delete(ctx, job.TaskID); err != nil && !errors.Is(err, events.ErrNotFound) {
		w.log.Error("task record delete failed", map[string]any{
			"task_id": job.TaskID,
			"error":   err.Error(),
		})
	}
}
