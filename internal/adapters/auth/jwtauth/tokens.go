package jwtauth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pettracker/internal/ports/auth"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims del token HS256. El sub lleva el email del usuario.
// current_user_id solo aparece en tokens de confirmación de cambio de email.
type tokenClaims struct {
	CurrentUserID string `json:"current_user_id,omitempty"`
	jwt.RegisteredClaims
}

// Tokens emite y verifica los JWT del sistema (implementa
// auth.Issuer y auth.Verifier).
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	confirmTTL time.Duration
	now        func() time.Time
}

type Options struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ConfirmTTL time.Duration
}

func New(opts Options) *Tokens {
	return &Tokens{
		secret:     []byte(opts.Secret),
		accessTTL:  opts.AccessTTL,
		refreshTTL: opts.RefreshTTL,
		confirmTTL: opts.ConfirmTTL,
		now:        time.Now,
	}
}

func (t *Tokens) AccessToken(email string) (string, error) {
	return t.issue(email, "", t.accessTTL)
}

func (t *Tokens) RefreshToken(email string) (string, error) {
	return t.issue(email, "", t.refreshTTL)
}

// ConfirmationToken arma el token que viaja por correo.
// email es la dirección destino del claim sub; currentUserID
// identifica al usuario que pidió un cambio de email (vacío en
// verificación de cuenta y reset de contraseña).
func (t *Tokens) ConfirmationToken(email, currentUserID string) (string, error) {
	return t.issue(email, currentUserID, t.confirmTTL)
}

func (t *Tokens) issue(email, currentUserID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", ErrInvalidToken
	}

	now := t.now()
	claims := tokenClaims{
		CurrentUserID: currentUserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify valida firma y expiración y devuelve los claims.
func (t *Tokens) Verify(ctx context.Context, token string) (auth.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || strings.TrimSpace(claims.Subject) == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	return auth.Claims{
		Email:  claims.Subject,
		UserID: claims.CurrentUserID,
	}, nil
}
