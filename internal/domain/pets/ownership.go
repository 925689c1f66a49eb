package pets

import "context"

// OwnedPetIDs devuelve los ids de las mascotas del usuario.
// Lo consume el módulo de eventos para sus chequeos de ownership
// sin importar este paquete al revés (pets <-> events).
func (s *Service) OwnedPetIDs(ctx context.Context, ownerUserID string) ([]string, error) {
	items, err := s.repo.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// OwnedPetName devuelve el nombre de la mascota solo si pertenece
// al usuario; ajena o inexistente => ErrNotFound.
func (s *Service) OwnedPetName(ctx context.Context, petID, ownerUserID string) (string, error) {
	p, err := s.GetOwned(ctx, petID, ownerUserID)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}
