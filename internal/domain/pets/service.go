package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// EventPurger borra los eventos (y sus task records) de una mascota.
// La implementa events.Service; la interfaz vive acá para evitar
// ciclos de imports (pets <-> events).
type EventPurger interface {
	DeleteByPet(ctx context.Context, petID string) error
}

type Service struct {
	repo   Repository
	events EventPurger
	now    func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// SetEventPurger engancha la cascada de eventos. Se llama después de
// construir el servicio de eventos porque ambos se referencian.
func (s *Service) SetEventPurger(p EventPurger) {
	s.events = p
}

type CreateInput struct {
	Name    string
	Species string
	Breed   string
	Gender  Gender
	Weight  *float64
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Species) == "" {
		return Pet{}, ErrInvalidInput
	}
	if !ValidGender(in.Gender) {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		Species:     strings.TrimSpace(in.Species),
		Breed:       strings.TrimSpace(in.Breed),
		Gender:      in.Gender,
		Weight:      in.Weight,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// GetOwned devuelve la mascota solo si pertenece al usuario.
// Mascota ajena se reporta igual que inexistente.
func (s *Service) GetOwned(ctx context.Context, petID, ownerUserID string) (Pet, error) {
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(petID))
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerUserID != ownerUserID {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// UpdateInput es el patch tipado para PATCH /pet/. nil = no tocar.
type UpdateInput struct {
	Name    *string
	Species *string
	Breed   *string
	Gender  *Gender
	Weight  *float64
}

func (s *Service) Update(ctx context.Context, petID, ownerUserID string, in UpdateInput) (Pet, error) {
	p, err := s.GetOwned(ctx, petID, ownerUserID)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Species != nil {
		if strings.TrimSpace(*in.Species) == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Species = strings.TrimSpace(*in.Species)
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Gender != nil {
		if !ValidGender(*in.Gender) {
			return Pet{}, ErrInvalidInput
		}
		p.Gender = *in.Gender
	}
	if in.Weight != nil {
		p.Weight = in.Weight
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// Delete borra la mascota y, en cascada, sus eventos y task records.
func (s *Service) Delete(ctx context.Context, petID, ownerUserID string) (string, error) {
	p, err := s.GetOwned(ctx, petID, ownerUserID)
	if err != nil {
		return "", err
	}

	if s.events != nil {
		if err := s.events.DeleteByPet(ctx, p.ID); err != nil {
			return "", err
		}
	}

	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return "", err
	}
	return p.ID, nil
}
