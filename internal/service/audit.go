package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/licensa/dlexam-backend/internal/config"
	"github.com/licensa/dlexam-backend/internal/model"
)

// Auditor queues session lifecycle events to Redis for the audit worker.
// Queuing is best-effort: a Redis failure is logged and the request proceeds.
type Auditor struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewAuditor creates a new Auditor.
func NewAuditor(rdb *redis.Client, log zerolog.Logger) *Auditor {
	return &Auditor{rdb: rdb, log: log.With().Str("component", "auditor").Logger()}
}

// Record queues one audit event.
func (a *Auditor) Record(ctx context.Context, eventType model.AuditEventType, sessionID, actorID, detail string) {
	if a == nil || a.rdb == nil {
		return
	}

	event := model.AuditEvent{
		Type:       eventType,
		SessionID:  sessionID,
		ActorID:    actorID,
		Detail:     detail,
		OccurredAt: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		a.log.Error().Err(err).Str("type", string(eventType)).Msg("marshal audit event")
		return
	}

	if err := a.rdb.RPush(ctx, config.WorkerKey.AuditEventsQueue, payload).Err(); err != nil {
		a.log.Warn().Err(err).Str("type", string(eventType)).Msg("queue audit event")
	}
}
