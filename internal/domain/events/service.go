package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"pettracker/internal/domain/users"
	"pettracker/internal/ports/queue"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// PetSource expone lo mínimo de pets que necesita este módulo,
// para evitar ciclos de imports (pets <-> events).
type PetSource interface {
	OwnedPetIDs(ctx context.Context, ownerUserID string) ([]string, error)
	OwnedPetName(ctx context.Context, petID, ownerUserID string) (string, error)
}

type Service struct {
	repo  Repository
	tasks TaskRecords
	pets  PetSource
	queue queue.Scheduler
	now   func() time.Time
}

func NewService(repo Repository, tasks TaskRecords, pets PetSource, scheduler queue.Scheduler) *Service {
	return &Service{
		repo:  repo,
		tasks: tasks,
		pets:  pets,
		queue: scheduler,
		now:   time.Now,
	}
}

type CreateInput struct {
	Title    string
	Content  string
	PetID    string
	Year     int
	Month    int
	Day      int
	Hour     int
	Minute   int
	Timezone string
}

// Create persiste el evento y agenda el job de notificación.
// PetID ajeno al usuario => ErrNotFound.
func (s *Service) Create(ctx context.Context, user users.User, in CreateInput) (Event, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Event{}, ErrInvalidInput
	}

	petName, err := s.pets.OwnedPetName(ctx, in.PetID, user.ID)
	if err != nil {
		return Event{}, ErrNotFound
	}

	scheduledAt, err := buildSchedule(in.Year, in.Month, in.Day, in.Hour, in.Minute)
	if err != nil {
		return Event{}, err
	}

	// La zona horaria se valida antes de tocar la base: un create que
	// falla no deja nada persistido.
	loc, err := loadLocation(in.Timezone)
	if err != nil {
		return Event{}, err
	}

	now := s.now()
	e := Event{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Content:     strings.TrimSpace(in.Content),
		PetID:       in.PetID,
		ScheduledAt: scheduledAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return Event{}, err
	}

	if err := s.schedule(ctx, e, user.Email, petName, loc); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Get devuelve el evento solo si su mascota pertenece al usuario.
func (s *Service) Get(ctx context.Context, eventID string, user users.User) (Event, error) {
	e, err := s.repo.GetByID(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return Event{}, err
	}

	owned, err := s.ownsPet(ctx, e.PetID, user.ID)
	if err != nil {
		return Event{}, err
	}
	if !owned {
		return Event{}, ErrNotFound
	}
	return e, nil
}

// List devuelve todos los eventos de las mascotas del usuario,
// ordenados por scheduled_at descendente.
func (s *Service) List(ctx context.Context, user users.User) ([]Event, error) {
	petIDs, err := s.pets.OwnedPetIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByPets(ctx, petIDs)
}

// UpdateInput es el patch tipado para PATCH /event/. nil = no tocar.
// Los componentes de fecha se mergean sobre el scheduled_at existente:
// cambiar solo Year conserva mes/día/hora/minuto.
type UpdateInput struct {
	Title    *string
	Content  *string
	Year     *int
	Month    *int
	Day      *int
	Hour     *int
	Minute   *int
	Timezone *string
}

// Update aplica el patch, borra los task records viejos del evento y
// agenda un job nuevo. El job viejo en la cola no se cancela: cuando
// dispare, el worker no va a encontrar su task record y no hará nada.
func (s *Service) Update(ctx context.Context, eventID string, user users.User, in UpdateInput) (Event, error) {
	e, err := s.Get(ctx, eventID, user)
	if err != nil {
		return Event{}, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return Event{}, ErrInvalidInput
		}
		e.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		e.Content = strings.TrimSpace(*in.Content)
	}

	sa := e.ScheduledAt
	y, mo, d := sa.Year(), int(sa.Month()), sa.Day()
	h, mi := sa.Hour(), sa.Minute()
	if in.Year != nil {
		y = *in.Year
	}
	if in.Month != nil {
		mo = *in.Month
	}
	if in.Day != nil {
		d = *in.Day
	}
	if in.Hour != nil {
		h = *in.Hour
	}
	if in.Minute != nil {
		mi = *in.Minute
	}

	scheduledAt, err := buildSchedule(y, mo, d, h, mi)
	if err != nil {
		return Event{}, err
	}

	// Igual que en Create: zona horaria inválida corta acá, antes de
	// pisar el evento o borrar task records.
	tz := "UTC"
	if in.Timezone != nil {
		tz = *in.Timezone
	}
	loc, err := loadLocation(tz)
	if err != nil {
		return Event{}, err
	}

	e.ScheduledAt = scheduledAt
	e.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, e); err != nil {
		return Event{}, err
	}

	if err := s.tasks.DeleteByEvent(ctx, e.ID); err != nil {
		return Event{}, err
	}

	petName, err := s.pets.OwnedPetName(ctx, e.PetID, user.ID)
	if err != nil {
		return Event{}, ErrNotFound
	}

	if err := s.schedule(ctx, e, user.Email, petName, loc); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Delete borra los task records pendientes y después el evento.
func (s *Service) Delete(ctx context.Context, eventID string, user users.User) (string, error) {
	e, err := s.Get(ctx, eventID, user)
	if err != nil {
		return "", err
	}

	if err := s.tasks.DeleteByEvent(ctx, e.ID); err != nil {
		return "", err
	}
	if err := s.repo.Delete(ctx, e.ID); err != nil {
		return "", err
	}
	return e.ID, nil
}

// DeleteByPet borra los eventos de una mascota con sus task records.
// Lo usa el módulo de pets para la cascada del delete (via pets.EventPurger).
func (s *Service) DeleteByPet(ctx context.Context, petID string) error {
	items, err := s.repo.ListByPets(ctx, []string{petID})
	if err != nil {
		return err
	}

	for _, e := range items {
		if err := s.tasks.DeleteByEvent(ctx, e.ID); err != nil {
			return err
		}
	}
	return s.repo.DeleteByPet(ctx, petID)
}

func (s *Service) ownsPet(ctx context.Context, petID, userID string) (bool, error) {
	petIDs, err := s.pets.OwnedPetIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, id := range petIDs {
		if id == petID {
			return true, nil
		}
	}
	return false, nil
}

// schedule crea el task record espejo y manda el job a la cola con
// eta = scheduled_at interpretado en loc, en UTC.
func (s *Service) schedule(ctx context.Context, e Event, email, petName string, loc *time.Location) error {
	taskID := uuid.NewString()
	if err := s.tasks.Create(ctx, TaskRecord{TaskID: taskID, EventID: e.ID}); err != nil {
		return err
	}

	sa := e.ScheduledAt
	eta := time.Date(sa.Year(), sa.Month(), sa.Day(), sa.Hour(), sa.Minute(), 0, 0, loc).UTC()

	return s.queue.Schedule(ctx, queue.Job{
		TaskID:  taskID,
		EventID: e.ID,
		Email:   email,
		Body: queue.EventBody{
			Title:   e.Title,
			Content: e.Content,
			Pet:     petName,
			Year:    sa.Year(),
			Month:   int(sa.Month()),
			Day:     sa.Day(),
			Hour:    sa.Hour(),
			Minute:  sa.Minute(),
		},
	}, eta)
}

// buildSchedule valida los componentes armando la fecha y chequeando
// que no se hayan normalizado (rechaza 30 de febrero y rangos fuera
// de lugar). Los componentes quedan guardados como wall clock en UTC.
func buildSchedule(year, month, day, hour, minute int) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, ErrInvalidInput
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, ErrInvalidInput
	}
	return t, nil
}

// loadLocation resuelve la zona horaria IANA; vacía equivale a UTC.
func loadLocation(timezone string) (*time.Location, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, ErrInvalidInput
	}
	return loc, nil
}
