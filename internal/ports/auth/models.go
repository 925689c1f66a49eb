package auth

// Claims representa la información extraída de un token.
// En tokens de acceso/refresh solo viene Email (claim "sub").
// En tokens de confirmación de cambio de email viene además UserID
// (el usuario que pidió el cambio) y Email es la dirección destino.
type Claims struct {
	Email  string
	UserID string
}
