package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pettracker/internal/domain/users"
	"pettracker/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service, usersSvc *users.Service) {
	r.Route("/event", func(er chi.Router) {
		er.Post("/", createEventHandler(svc, usersSvc))
		er.Get("/", getEventHandler(svc, usersSvc))
		er.Get("/list-of-events", listEventsHandler(svc, usersSvc))
		er.Delete("/", deleteEventHandler(svc, usersSvc))
		er.Patch("/", updateEventHandler(svc, usersSvc))
	})
}

type createEventRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	PetID    string `json:"pet_id"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Day      int    `json:"day"`
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	Timezone string `json:"timezone"`
}

// eventDetailResponse es la vista detallada (incluye content).
type eventDetailResponse struct {
	EventID    string `json:"event_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	PetID      string `json:"pet_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Day        int    `json:"day"`
	Hour       int    `json:"hour"`
	Minute     int    `json:"minute"`
	IsHappened bool   `json:"is_happened"`
}

// eventSummaryResponse es la vista de listado (sin content).
type eventSummaryResponse struct {
	EventID    string `json:"event_id"`
	Title      string `json:"title"`
	PetID      string `json:"pet_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Day        int    `json:"day"`
	Hour       int    `json:"hour"`
	Minute     int    `json:"minute"`
	IsHappened bool   `json:"is_happened"`
}

type updateEventRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Year     *int    `json:"year"`
	Month    *int    `json:"month"`
	Day      *int    `json:"day"`
	Hour     *int    `json:"hour"`
	Minute   *int    `json:"minute"`
	Timezone *string `json:"timezone"`
}

func toDetailResponse(e Event) eventDetailResponse {
	sa := e.ScheduledAt
	return eventDetailResponse{
		EventID:    e.ID,
		Title:      e.Title,
		Content:    e.Content,
		PetID:      e.PetID,
		Year:       sa.Year(),
		Month:      int(sa.Month()),
		Day:        sa.Day(),
		Hour:       sa.Hour(),
		Minute:     sa.Minute(),
		IsHappened: e.IsHappened,
	}
}

func toSummaryResponse(e Event) eventSummaryResponse {
	sa := e.ScheduledAt
	return eventSummaryResponse{
		EventID:    e.ID,
		Title:      e.Title,
		PetID:      e.PetID,
		Year:       sa.Year(),
		Month:      int(sa.Month()),
		Day:        sa.Day(),
		Hour:       sa.Hour(),
		Minute:     sa.Minute(),
		IsHappened: e.IsHappened,
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

// createEventHandler godoc
// @Summary Crear evento
// @Description Registra un recordatorio para una mascota del usuario y agenda la notificación por correo.
// @Tags events
// @Accept json
// @Produce json
// @Param payload body createEventRequest true "Datos del evento; la fecha va descompuesta en year/month/day/hour/minute más timezone IANA"
// @Success 201 {object} eventDetailResponse
// @Failure 404 {string} string "pet not found"
// @Router /event/ [post]
func createEventHandler(svc *Service, usersSvc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, usersSvc)
		if !ok {
			return
		}

		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid json")
			return
		}

		e, err := svc.Create(r.Context(), u, CreateInput{
			Title:    req.Title,
			Content:  req.Content,
			PetID:    req.PetID,
			Year:     req.Year,
			Month:    req.Month,
			Day:      req.Day,
			Hour:     req.Hour,
			Minute:   req.Minute,
			Timezone: req.Timezone,
		})
		switch {
		case err == nil:
			writeJSON(w, http.StatusCreated, toDetailResponse(e))
		case errors.Is(err, ErrNotFound):
			writeDetail(w, http.StatusNotFound, "pet not found")
		case errors.Is(err, ErrInvalidInput):
			writeDetail(w, http.StatusUnprocessableEntity, "invalid event data")
		default:
			writeDetail(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func getEventHandler(svc *Service, usersSvc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, usersSvc)
		if !ok {
			return
		}

		e, err := svc.Get(r.Context(), r.URL.Query().Get("event_id"), u)
		if err != nil {
			writeDetail(w, http.StatusNotFound, "event not found")
			return
		}

		writeJSON(w, http.StatusOK, toDetailResponse(e))
	}
}

func listEventsHandler(svc *Service, usersSvc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, usersSvc)
		if !ok {
			return
		}

		items, err := svc.List(r.Context(), u)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]eventSummaryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toSummaryResponse(e))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func deleteEventHandler(svc *Service, usersSvc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, usersSvc)
		if !ok {
			return
		}

		id, err := svc.Delete(r.Context(), r.URL.Query().Get("event_id"), u)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]string{"deleted_event_id": id})
		case errors.Is(err, ErrNotFound):
			writeDetail(w, http.StatusNotFound, "event not found")
		default:
			writeDetail(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func updateEventHandler(svc *Service, usersSvc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, usersSvc)
		if !ok {
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateEventRequest
		if err := dec.Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid json")
			return
		}

		e, err := svc.Update(r.Context(), r.URL.Query().Get("event_id"), u, UpdateInput{
			Title:    req.Title,
			Content:  req.Content,
			Year:     req.Year,
			Month:    req.Month,
			Day:      req.Day,
			Hour:     req.Hour,
			Minute:   req.Minute,
			Timezone: req.Timezone,
		})
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, toDetailResponse(e))
		case errors.Is(err, ErrNotFound):
			writeDetail(w, http.StatusNotFound, "event not found")
		case errors.Is(err, ErrInvalidInput):
			writeDetail(w, http.StatusUnprocessableEntity, "invalid event data")
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
