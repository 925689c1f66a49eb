package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pettracker/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/user", func(ur chi.Router) {
		ur.Post("/", registerHandler(svc))
		ur.Patch("/verification", verifyEmailHandler(svc))
		ur.Get("/", getUserHandler(svc))
		ur.Delete("/", deleteUserHandler(svc))

		ur.Post("/auth/login", loginHandler(svc))
		ur.Post("/auth/refresh-token", refreshTokenHandler(svc))
		ur.Post("/auth/reset-password", resetPasswordHandler(svc))
		ur.Patch("/auth/reset-password/confirmation", resetPasswordConfirmHandler(svc))

		ur.Patch("/change-username", changeUsernameHandler(svc))
		ur.Patch("/change-password", changePasswordHandler(svc))
		ur.Patch("/change-email", changeEmailHandler(svc))
		ur.Patch("/change-email/confirmation", confirmEmailChangeHandler(svc))
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// currentUser resuelve el usuario activo detrás del bearer token.
// Devuelve false si ya respondió 401.
func currentUser(w http.ResponseWriter, r *http.Request, svc *Service) (User, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.Email) == "" {
		writeDetail(w, http.StatusUnauthorized, "unauthorized")
		return User{}, false
	}

	u, err := svc.CurrentUser(r.Context(), claims.Email)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "unauthorized")
		return User{}, false
	}
	return u, true
}

func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid json")
			return
		}

		err := svc.Register(r.Context(), req.Username, req.Email, req.Password)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]string{
				"detail": "confirmation email sent",
			})
		case errors.Is(err, ErrInvalidInput):
			writeDetail(w, http.StatusUnprocessableEntity, "username, email and password are required")
		case errors.Is(err, ErrAlreadyExists):
			writeDetail(w, http.StatusConflict, "user already exists")
		case errors.Is(err, ErrMailDelivery):
			writeDetail(w, http.StatusUnprocessableEntity, "could not send confirmation email")
		default:
			writeDetail(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func verifyEmailHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")

		u, err := svc.VerifyEmail(r.Context(), token)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, toUserResponse(u))
		case errors.Is(err, ErrInvalidToken):
			writeDetail(w, http.StatusBadRequest, "could not validate credentials")
		default:
			writeDetail(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func getUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, svc)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func deleteUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, svc)
		if !ok {
			return
		}

		if err := svc.Deactivate(r.Context(), u); err != nil {
			writeDetail(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted_user_id": u.ID})
	}
}

// loginHandler recibe username y password form-encoded.
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid form")
			return
		}

		pair, err := svc.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, tokenResponse{
				AccessToken:  pair.AccessToken,
				RefreshToken: pair.RefreshToken,
				TokenType:    "bearer",
			})
		case errors.Is(err, ErrWrongPassword):
			writeDetail(w, http.StatusUnauthorized, "incorrect username or password")
		default:
			writeDetail(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func refreshTokenHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, svc)
		if !ok {
			return
		}

		access, err := svc.Refresh(u)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{
			AccessToken: access,
			TokenType:   "bearer",
		})
	}
}

type changeUsernameRequest struct {
	NewUsername string `json:"new_username"`
}

func changeUsernameHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, svc)
		if !ok {
			return
		}

		var req changeUsernameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid json")
			return
		}

		updated, err := svc.ChangeUsername(r.Context(), u, req.NewUsername)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, toUserResponse(updated))
		case errors.Is(err, ErrInvalidInput):
			writeDetail(w, http.StatusUnprocessableEntity, "new_username is required")
		case errors.Is(err, ErrAlreadyExists):
			writeDetail(w, http.StatusConflict, "username already taken")
		default:
			writeDetail(w, http.StatusInternalServerError, "internal error")
		}
	}
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func changePasswordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, svc)
		if !ok {
			return
		}

		var req changePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid json")
			return
		}

		updated, err := svc.ChangePassword(r.Context(), u, req.OldPassword, req.NewPassword)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, toUserResponse(updated))
		case errors.Is(err, ErrInvalidInput):
			writeDetail(w, http.StatusUnprocessableEntity, "new_password is required")
		case errors.Is(err, ErrWrongPassword):
			writeDetail(w, http.StatusUnauthorized, "incorrect old password")
		default:
			writeDetail(w, http.StatusInternalServerError, "internal error")
		}
	}
}

type changeEmailRequest struct {
	NewEmail string `json:"new_email"`
}

func changeEmailHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, svc)
		if !ok {
			return
		}

		var req changeEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid json")
			return
		}

		err := svc.ChangeEmail(r.Context(), u, req.NewEmail)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]string{
				"detail": "confirmation email sent",
			})
		case errors.Is(err, ErrInvalidInput):
			writeDetail(w, http.StatusUnprocessableEntity, "new_email is required")
		case errors.Is(err, ErrAlreadyExists):
			writeDetail(w, http.StatusConflict, "email already in use")
		case errors.Is(err, ErrMailDelivery):
			writeDetail(w, http.StatusUnprocessableEntity, "could not send confirmation email")
		default:
			writeDetail(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func confirmEmailChangeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")

		u, err := svc.ConfirmEmailChange(r.Context(), token)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, toUserResponse(u))
		case errors.Is(err, ErrInvalidToken):
			writeDetail(w, http.StatusBadRequest, "could not validate credentials")
		case errors.Is(err, ErrNotFound):
			writeDetail(w, http.StatusNotFound, "user not found")
		case errors.Is(err, ErrAlreadyExists):
			writeDetail(w, http.StatusConflict, "email already in use")
		default:
			writeDetail(w, http.StatusInternalServerError, "internal error")
		}
	}
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

func resetPasswordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid json")
			return
		}

		err := svc.ResetPassword(r.Context(), req.Email)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]string{
				"detail": "password reset email sent",
			})
		case errors.Is(err, ErrInvalidInput):
			writeDetail(w, http.StatusUnprocessableEntity, "email is required")
		case errors.Is(err, ErrMailDelivery):
			writeDetail(w, http.StatusUnprocessableEntity, "could not send password reset email")
		default:
			writeDetail(w, http.StatusInternalServerError, "internal error")
		}
	}
}

type resetPasswordConfirmRequest struct {
	NewPassword string `json:"new_password"`
}

func resetPasswordConfirmHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")

		var req resetPasswordConfirmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, err := svc.ChangePasswordOnReset(r.Context(), token, req.NewPassword)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, toUserResponse(u))
		case errors.Is(err, ErrInvalidInput):
			writeDetail(w, http.StatusUnprocessableEntity, "new_password is required")
		case errors.Is(err, ErrInvalidToken):
			writeDetail(w, http.StatusBadRequest, "could not validate credentials")
		case errors.Is(err, ErrNotFound):
			writeDetail(w, http.StatusNotFound, "user not found")
		default:
			writeDetail(w, http.StatusInternalServerError, "internal error")
		}
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// (users/pets/events) para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
