package users

import "time"

// User representa una cuenta del sistema.
// Se crea inactiva hasta confirmar el email; el borrado es soft
// (IsActive en false), nunca se destruye la fila.
type User struct {
	ID             string
	Username       string
	Email          string
	HashedPassword string

	IsActive bool
	IsAdmin  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
