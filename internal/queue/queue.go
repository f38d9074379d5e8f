package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/troopvault/tv-backend/internal/config"
	"github.com/troopvault/tv-backend/internal/logging"
	"github.com/troopvault/tv-backend/internal/store"
)

type TaskQueue struct {
	client *asynq.Client
}

func NewQueue(cfg *config.RedisConfig) (*TaskQueue, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Activate and test the connection
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis queue: %w", err)
	}

	logging.Info("Connected to Redis task queue")

	return &TaskQueue{client: client}, nil
}

func (q *TaskQueue) Enqueue(taskType string, data interface{}) (*asynq.TaskInfo, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	task := asynq.NewTask(taskType, payload)

	return q.client.Enqueue(task)
}

func (q *TaskQueue) Close() error {
	return q.client.Close()
}

const (
	TypeEmailDelivery = "email:delivery"
	TypeAuditRecord   = "audit:record"
)

type EmailDeliveryPayload struct {
	To      string
	Subject string
	Body    string
}

// AuditRecordPayload is the queued form of an authorization audit event.
// The worker writes it to the append-only audit table.
type AuditRecordPayload struct {
	ActorID       uuid.UUID  `json:"actor_id"`
	TroopID       *uuid.UUID `json:"troop_id,omitempty"`
	Action        string     `json:"action"`
	PrivilegeCode string     `json:"privilege_code"`
	RequiredLevel int        `json:"required_level"`
	ActualScope   string     `json:"actual_scope"`
	TargetOwnerID *uuid.UUID `json:"target_owner_id,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// EmailSender delivers queued email tasks.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// AuditSink persists queued audit events.
type AuditSink interface {
	InsertAuditEvent(ctx context.Context, e store.AuditEvent) error
}

type Worker struct {
	server *asynq.Server
	email  EmailSender
	audit  AuditSink
}

func NewWorker(cfg *config.RedisConfig, email EmailSender, audit AuditSink) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logging.Error("process task failed", "type", task.Type(), "payload", string(task.Payload()), "error", err)
			}),
		},
	)

	return &Worker{
		server: server,
		email:  email,
		audit:  audit,
	}
}

func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailDelivery, w.HandleEmailDelivery)
	mux.HandleFunc(TypeAuditRecord, w.HandleAuditRecord)

	return w.server.Start(mux)
}

func (w *Worker) Close() {
	if w.server != nil {
		w.server.Shutdown()
	}
}

func (w *Worker) HandleEmailDelivery(ctx context.Context, t *asynq.Task) error {
	var p EmailDeliveryPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	logging.Info("Sending email", "to", p.To, "subject", p.Subject)
	if err := w.email.SendEmail(ctx, p.To, p.Subject, p.Body); err != nil {
		return fmt.Errorf("email send failed: %w", err)
	}

	return nil
}

func (w *Worker) HandleAuditRecord(ctx context.Context, t *asynq.Task) error {
	var p AuditRecordPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	event := store.AuditEvent{
		ActorID:       p.ActorID,
		TroopID:       p.TroopID,
		Action:        p.Action,
		PrivilegeCode: p.PrivilegeCode,
		RequiredLevel: p.RequiredLevel,
		ActualScope:   p.ActualScope,
		TargetOwnerID: p.TargetOwnerID,
		OccurredAt:    p.OccurredAt,
	}
	if err := w.audit.InsertAuditEvent(ctx, event); err != nil {
		return fmt.Errorf("audit insert failed: %w", err)
	}

	return nil
}
