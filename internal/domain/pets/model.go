package pets

import "time"

// Gender define el sexo de la mascota.
// @Enum male, female
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ValidGender reporta si g es un valor soportado.
func ValidGender(g Gender) bool {
	return g == GenderMale || g == GenderFemale
}

// Pet representa una mascota registrada en el sistema.
// Pertenece exclusivamente a un usuario.
type Pet struct {
	ID          string
	OwnerUserID string

	Name    string
	Species string
	Breed   string // opcional
	Gender  Gender
	Weight  *float64 // opcional, en kg

	CreatedAt time.Time
	UpdatedAt time.Time
}
