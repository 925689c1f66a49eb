package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"pettracker/internal/ports/auth"
	"pettracker/internal/ports/mail"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrWrongPassword = errors.New("wrong password")
	ErrInvalidToken  = errors.New("invalid token")
	ErrMailDelivery  = errors.New("mail delivery failed")
)

type Service struct {
	repo     Repository
	hasher   *Hasher
	issuer   auth.Issuer
	verifier auth.Verifier
	sender   mail.Sender
	now      func() time.Time
}

func NewService(repo Repository, issuer auth.Issuer, verifier auth.Verifier, sender mail.Sender) *Service {
	return &Service{
		repo:     repo,
		hasher:   NewHasher(),
		issuer:   issuer,
		verifier: verifier,
		sender:   sender,
		now:      time.Now,
	}
}

// TokenPair es el resultado del login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Register crea una cuenta inactiva y manda el correo de confirmación.
// Si ya existe una cuenta inactiva con ese email, actualiza username y
// contraseña y reenvía el correo. Cuenta activa => ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return ErrInvalidInput
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsActive {
			return ErrAlreadyExists
		}
		existing.Username = username
		existing.HashedPassword = hashed
		existing.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, existing); err != nil {
			return err
		}
	case errors.Is(err, ErrNotFound):
		now := s.now()
		u := User{
			ID:             uuid.NewString(),
			Username:       username,
			Email:          email,
			HashedPassword: hashed,
			IsActive:       false,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return err
		}
	default:
		return err
	}

	return s.sendConfirmation(ctx, email, "", username,
		"Confirm your PetTracker registration", mail.TemplateEmailConfirmation)
}

// VerifyEmail activa la cuenta con el token recibido por correo.
func (s *Service) VerifyEmail(ctx context.Context, token string) (User, error) {
	claims, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return User{}, ErrInvalidToken
	}

	u, err := s.repo.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidToken
		}
		return User{}, err
	}

	if !u.IsActive {
		u.IsActive = true
		u.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, u); err != nil {
			return User{}, err
		}
	}
	return u, nil
}

// Login valida credenciales y emite access + refresh tokens.
// Usuario inexistente o inactivo se reporta igual que contraseña
// incorrecta para no filtrar cuentas.
func (s *Service) Login(ctx context.Context, username, password string) (TokenPair, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, ErrWrongPassword
		}
		return TokenPair{}, err
	}
	if !u.IsActive {
		return TokenPair{}, ErrWrongPassword
	}
	if !s.hasher.Verify(u.HashedPassword, password) {
		return TokenPair{}, ErrWrongPassword
	}

	access, err := s.issuer.AccessToken(u.Email)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.issuer.RefreshToken(u.Email)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh emite un access token nuevo para un usuario ya autenticado.
func (s *Service) Refresh(u User) (string, error) {
	return s.issuer.AccessToken(u.Email)
}

// CurrentUser resuelve el usuario activo detrás de unos claims.
func (s *Service) CurrentUser(ctx context.Context, email string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if !u.IsActive {
		return User{}, ErrNotFound
	}
	return u, nil
}

// Deactivate hace el soft-delete de la cuenta.
func (s *Service) Deactivate(ctx context.Context, u User) error {
	u.IsActive = false
	u.UpdatedAt = s.now()
	return s.repo.Update(ctx, u)
}

func (s *Service) ChangeUsername(ctx context.Context, u User, newUsername string) (User, error) {
	newUsername = strings.TrimSpace(newUsername)
	if newUsername == "" {
		return User{}, ErrInvalidInput
	}
	if u.Username == newUsername {
		return u, nil
	}

	u.Username = newUsername
	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, u User, oldPassword, newPassword string) (User, error) {
	if newPassword == "" {
		return User{}, ErrInvalidInput
	}
	if !s.hasher.Verify(u.HashedPassword, oldPassword) {
		return User{}, ErrWrongPassword
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return User{}, err
	}
	u.HashedPassword = hashed
	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// ChangeEmail manda a la dirección nueva un token de confirmación que
// lleva el email destino y el id del usuario actual. No muta nada aún.
func (s *Service) ChangeEmail(ctx context.Context, u User, newEmail string) error {
	newEmail = strings.TrimSpace(newEmail)
	if newEmail == "" {
		return ErrInvalidInput
	}
	if u.Email == newEmail {
		return ErrAlreadyExists
	}

	if other, err := s.repo.GetByEmail(ctx, newEmail); err == nil && other.IsActive {
		return ErrAlreadyExists
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	return s.sendConfirmation(ctx, newEmail, u.ID, u.Username,
		"Confirm your PetTracker email change", mail.TemplateEmailChangeConfirm)
}

// ConfirmEmailChange aplica el cambio de email usando el token.
func (s *Service) ConfirmEmailChange(ctx context.Context, token string) (User, error) {
	claims, err := s.verifier.Verify(ctx, token)
	if err != nil || claims.UserID == "" {
		return User{}, ErrInvalidToken
	}

	u, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidToken
		}
		return User{}, err
	}
	if !u.IsActive {
		return User{}, ErrNotFound
	}

	u.Email = claims.Email
	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// ResetPassword manda el correo con el token de reset. Responde igual
// exista o no la cuenta.
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrInvalidInput
	}
	return s.sendConfirmation(ctx, email, "", "",
		"Reset your PetTracker password", mail.TemplatePasswordReset)
}

// ChangePasswordOnReset cambia la contraseña con el token de reset.
func (s *Service) ChangePasswordOnReset(ctx context.Context, token, newPassword string) (User, error) {
	if newPassword == "" {
		return User{}, ErrInvalidInput
	}

	claims, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return User{}, ErrInvalidToken
	}

	u, err := s.repo.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidToken
		}
		return User{}, err
	}
	if !u.IsActive {
		return User{}, ErrNotFound
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return User{}, err
	}
	u.HashedPassword = hashed
	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) sendConfirmation(ctx context.Context, to, currentUserID, username, subject, template string) error {
	token, err := s.issuer.ConfirmationToken(to, currentUserID)
	if err != nil {
		return err
	}

	err = s.sender.Send(ctx, mail.Message{
		To:       to,
		Subject:  subject,
		Template: template,
		Data: map[string]any{
			"username": username,
			"token":    token,
		},
	})
	if err != nil {
		return ErrMailDelivery
	}
	return nil
}
