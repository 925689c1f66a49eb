package queue

import (
	"context"
	"time"
)

// EventBody es el snapshot desnormalizado que viaja dentro del job.
// Se arma al agendar para que el worker pueda mandar el correo sin
// volver a consultar pet/usuario.
type EventBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Pet     string `json:"pet"`
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Day     int    `json:"day"`
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
}

// Job es la unidad de trabajo diferida que consume el worker.
type Job struct {
	TaskID  string    `json:"task_id"`
	EventID string    `json:"event_id"`
	Email   string    `json:"email"`
	Body    EventBody `json:"body"`
}

// Scheduler agenda un job para ejecutarse en el instante eta (UTC).
type Scheduler interface {
	Schedule(ctx context.Context, job Job, eta time.Time) error
}
