// Package audit persists authorization decisions without ever blocking them.
// Events are handed to the task queue and written to the audit table by the
// worker; enqueue failures are logged and dropped.
package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/troopvault/tv-backend/internal/logging"
	"github.com/troopvault/tv-backend/internal/privileges"
	"github.com/troopvault/tv-backend/internal/queue"
)

// QueueRecorder implements privileges.Recorder by enqueueing each event as an
// asynq task. It never returns an error to the caller.
type QueueRecorder struct {
	queue *queue.TaskQueue
}

func NewQueueRecorder(q *queue.TaskQueue) *QueueRecorder {
	return &QueueRecorder{queue: q}
}

func (r *QueueRecorder) Record(_ context.Context, event privileges.AuditEvent) {
	payload := toPayload(event)
	if _, err := r.queue.Enqueue(queue.TypeAuditRecord, payload); err != nil {
		logging.Error("audit enqueue failed",
			"actor_id", event.ActorID,
			"action", string(event.Action),
			"privilege", event.PrivilegeCode,
			"error", err,
		)
	}
}

// LogRecorder writes audit events to the structured log. Used when the task
// queue is unavailable, for example in the seeder or in tests.
type LogRecorder struct{}

func (LogRecorder) Record(_ context.Context, event privileges.AuditEvent) {
	logging.Info("authorization decision",
		"actor_id", event.ActorID,
		"troop_id", event.TroopID,
		"action", string(event.Action),
		"privilege", event.PrivilegeCode,
		"required_level", event.RequiredLevel,
		"scope", event.ActualScope.String(),
		"target_owner_id", event.TargetOwnerID,
	)
}

func toPayload(event privileges.AuditEvent) queue.AuditRecordPayload {
	var target *uuid.UUID
	if event.TargetOwnerID != uuid.Nil {
		t := event.TargetOwnerID
		target = &t
	}
	var troop *uuid.UUID
	if event.TroopID != uuid.Nil {
		tr := event.TroopID
		troop = &tr
	}

	return queue.AuditRecordPayload{
		ActorID:       event.ActorID,
		TroopID:       troop,
		Action:        string(event.Action),
		PrivilegeCode: event.PrivilegeCode,
		RequiredLevel: event.RequiredLevel,
		ActualScope:   event.ActualScope.String(),
		TargetOwnerID: target,
		OccurredAt:    event.At,
	}
}
