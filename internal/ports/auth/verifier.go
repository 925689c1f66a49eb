package auth

import "context"

// Verifier verifica un token firmado y devuelve claims o error.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// Issuer emite los tokens que usa el backend.
// ConfirmationToken sirve para verificación de cuenta, cambio de email
// y reset de contraseña; currentUserID puede ir vacío.
type Issuer interface {
	AccessToken(email string) (string, error)
	RefreshToken(email string) (string, error)
	ConfirmationToken(email, currentUserID string) (string, error)
}
