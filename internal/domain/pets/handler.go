package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pettracker/internal/domain/users"
	"pettracker/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service, usersSvc *users.Service) {
	r.Route("/pet", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc, usersSvc))
		pr.Get("/", getPetHandler(svc, usersSvc))
		pr.Get("/list-of-pets", listPetsHandler(svc, usersSvc))
		pr.Delete("/", deletePetHandler(svc, usersSvc))
		pr.Patch("/", updatePetHandler(svc, usersSvc))
	})
}

type createPetRequest struct {
	Name    string   `json:"name"`
	Species string   `json:"species"`
	Breed   string   `json:"breed"`
	Gender  string   `json:"gender"` // male | female
	Weight  *float64 `json:"weight"`
}

type petResponse struct {
	ID        string    `json:"pet_id"`
	Name      string    `json:"name"`
	Species   string    `json:"species"`
	Breed     string    `json:"breed,omitempty"`
	Gender    string    `json:"gender"`
	Weight    *float64  `json:"weight,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name    *string  `json:"name"`
	Species *string  `json:"species"`
	Breed   *string  `json:"breed"`
	Gender  *string  `json:"gender"`
	Weight  *float64 `json:"weight"`
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:        p.ID,
		Name:      p.Name,
		Species:   p.Species,
		Breed:     p.Breed,
		Gender:    string(p.Gender),
		Weight:    p.Weight,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// currentUser resuelve el usuario activo detrás del bearer token.
// Devuelve false si ya respondió 401.
func currentUser(w http.ResponseWriter, r *http.Request, usersSvc *users.Service) (users.User, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.Email) == "" {
		writeDetail(w, http.StatusUnauthorized, "unauthorized")
		return users.User{}, false
	}

	u, err := usersSvc.CurrentUser(r.Context(), claims.Email)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "unauthorized")
		return users.User{}, false
	}
	return u, true
}

func createPetHandler(svc *Service, usersSvc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, usersSvc)
		if !ok {
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.Create(r.Context(), u.ID, CreateInput{
			Name:    req.Name,
			Species: req.Species,
			Breed:   req.Breed,
			Gender:  Gender(req.Gender),
			Weight:  req.Weight,
		})
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "name, species and a valid gender are required")
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

func getPetHandler(svc *Service, usersSvc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, usersSvc)
		if !ok {
			return
		}

		p, err := svc.GetOwned(r.Context(), r.URL.Query().Get("pet_id"), u.ID)
		if err != nil {
			writeDetail(w, http.StatusNotFound, "pet not found")
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func listPetsHandler(svc *Service, usersSvc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, usersSvc)
		if !ok {
			return
		}

		items, err := svc.ListByOwner(r.Context(), u.ID)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func deletePetHandler(svc *Service, usersSvc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, usersSvc)
		if !ok {
			return
		}

		id, err := svc.Delete(r.Context(), r.URL.Query().Get("pet_id"), u.ID)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]string{"deleted_pet_id": id})
		case errors.Is(err, ErrNotFound):
			writeDetail(w, http.StatusNotFound, "pet not found")
		default:
			writeDetail(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func updatePetHandler(svc *Service, usersSvc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, usersSvc)
		if !ok {
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updatePetRequest
		if err := dec.Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid json")
			return
		}

		var gender *Gender
		if req.Gender != nil {
			g := Gender(*req.Gender)
			gender = &g
		}

		p, err := svc.Update(r.Context(), r.URL.Query().Get("pet_id"), u.ID, UpdateInput{
			Name:    req.Name,
			Species: req.Species,
			Breed:   req.Breed,
			Gender:  gender,
			Weight:  req.Weight,
		})
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, toPetResponse(p))
		case errors.Is(err, ErrNotFound):
			writeDetail(w, http.StatusNotFound, "pet not found")
		case errors.Is(err, ErrInvalidInput):
			writeDetail(w, http.StatusUnprocessableEntity, "invalid field value")
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
