package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	mem "pettracker/internal/adapters/storage/memory"
	pg "pettracker/internal/adapters/storage/postgres"
	"pettracker/internal/domain/events"
	"pettracker/internal/domain/pets"
	"pettracker/internal/domain/users"
	"pettracker/internal/middleware"
	"pettracker/internal/ports/auth"
	"pettracker/internal/ports/mail"
	"pettracker/internal/ports/queue"
)

type Options struct {
	Issuer   auth.Issuer
	Verifier auth.Verifier

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcionales: si faltan se usan no-ops (útil en dev y tests que no
	// ejercitan correo ni cola).
	Mailer    mail.Sender
	Scheduler queue.Scheduler
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.Verifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		userRepo  users.Repository
		petRepo   pets.Repository
		eventRepo events.Repository
		taskRepo  events.TaskRecords
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		userRepo = pg.NewUsersRepo(db)
		petRepo = pg.NewPetsRepo(db)
		eventRepo = pg.NewEventsRepo(db)
		taskRepo = pg.NewTaskRecordRepo(db)
	} else {
		userRepo = mem.NewUserRepo()
		petRepo = mem.NewPetRepo()
		eventRepo = mem.NewEventRepo()
		taskRepo = mem.NewTaskRecordRepo()
	}

	mailer := opts.Mailer
	if mailer == nil {
		mailer = noopMailer{}
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = noopScheduler{}
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo, opts.Issuer, opts.Verifier, mailer)
	petsSvc := pets.NewService(petRepo)
	eventsSvc := events.NewService(eventRepo, taskRepo, petsSvc, scheduler)

	// pets borra en cascada los eventos de la mascota; se cablea después
	// de construir ambos services para no cruzar constructores.
	petsSvc.SetEventPurger(eventsSvc)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	pets.RegisterRoutes(r, petsSvc, usersSvc)
	events.RegisterRoutes(r, eventsSvc, usersSvc)

	return r
}

type noopMailer struct{}

func (noopMailer) Send(context.Context, mail.Message) error { return nil }

type noopScheduler struct{}

func (noopScheduler) Schedule(context.Context, queue.Job, time.Time) error { return nil }
