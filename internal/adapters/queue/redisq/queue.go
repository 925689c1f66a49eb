// Package redisq implementa la cola de notificaciones diferidas sobre un
// sorted set de Redis: el score es el instante de entrega en epoch seconds
// y el member es el job serializado en JSON.
package redisq

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"pettracker/internal/platform/logger"
	"pettracker/internal/ports/queue"
)

type Queue struct {
	client *redis.Client
	key    string
	log    logger.Logger
	now    func() time.Time
}

func New(client *redis.Client, key string, log logger.Logger) *Queue {
	return &Queue{
		client: client,
		key:    key,
		log:    log,
		now:    time.Now,
	}
}

// Schedule encola el job para ser entregado en eta (o apenas despues si el
// consumer viene atrasado). Implementa queue.Scheduler.
func (q *Queue) Schedule(ctx context.Context, job queue.Job, eta time.Time) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return q.client.ZAdd(ctx, q.key, &redis.Z{
		Score:  float64(eta.UTC().Unix()),
		Member: string(raw),
	}).Err()
}

// Handler procesa un job ya reclamado. Los errores los maneja el propio
// handler; la cola no reintenta.
type Handler interface {
	Handle(ctx context.Context, job queue.Job)
}

// Consume sondea el sorted set cada poll y entrega al handler los jobs cuyo
// score ya venció. Bloquea hasta que el contexto se cancele.
func (q *Queue) Consume(ctx context.Context, poll time.Duration, h Handler) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			q.drain(ctx, h)
		}
	}
}

func (q *Queue) drain(ctx context.Context, h Handler) {
	members, err := q.client.ZRangeByScore(ctx, q.key, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(q.now().UTC().Unix(), 10),
	}).Result()
	if err != nil {
		q.log.Error("queue poll failed", map[string]any{"error": err.Error()})
		return
	}

	for _, member := range members {
		// ZREM como claim: si otro consumer lo sacó primero devuelve 0
		// y el job no se procesa dos veces.
		n, err := q.client.ZRem(ctx, q.key, member).Result()
		if err != nil {
			q.log.Error("queue claim failed", map[string]any{"error": err.Error()})
			continue
		}
		if n == 0 {
			continue
		}

		var job queue.Job
		if err := json.Unmarshal([]byte(member), &job); err != nil {
			q.log.Error("queue job malformed, dropped", map[string]any{"error": err.Error()})
			continue
		}

		h.Handle(ctx, job)
	}
}
