package privileges

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditAction classifies an authorization-relevant decision.
type AuditAction string

const (
	ActionGrant   AuditAction = "grant"
	ActionDeny    AuditAction = "deny"
	ActionBypass  AuditAction = "bypass"
	ActionAnomaly AuditAction = "anomaly" // override referenced an unknown privilege code
)

// AuditEvent is the structured record handed to the audit collaborator for
// every authorization-relevant decision. TroopID is the troop the decision
// was made in; resolver anomalies reported outside any request leave it zero.
type AuditEvent struct {
	ActorID       uuid.UUID
	TroopID       uuid.UUID
	Action        AuditAction
	PrivilegeCode string
	RequiredLevel int
	ActualScope   Scope
	TargetOwnerID uuid.UUID
	At            time.Time
}

// Recorder receives audit events. Implementations must be best-effort: a
// slow or failing recorder never changes an authorization outcome, and the
// Gate does not wait on delivery guarantees.
type Recorder interface {
	Record(ctx context.Context, event AuditEvent)
}

// NopRecorder discards all events.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, AuditEvent) {}
