package events

import "time"

// Event es un recordatorio agendado para una mascota.
// ScheduledAt guarda los componentes de fecha/hora tal como los dio
// el usuario (wall clock); la zona horaria solo interviene al calcular
// el ETA del job de notificación.
type Event struct {
	ID      string
	Title   string
	Content string // opcional
	PetID   string

	ScheduledAt time.Time
	IsHappened  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskRecord es el espejo en base de datos de un job de notificación
// pendiente. Se crea junto con el envío a la cola y se borra cuando el
// job termina o cuando un update/delete del evento lo deja obsoleto.
type TaskRecord struct {
	TaskID  string
	EventID string
}
