package privileges

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuthContext is the authenticated actor for one request. It is owned by
// the request-handling layer and passed by reference for the duration of a
// single Authorize call. TroopID is the troop whose membership row produced
// Role: scope checks are evaluated against that troop only, so a privilege
// granted in one troop is never exercisable in another.
type AuthContext struct {
	UserID          uuid.UUID
	TroopID         uuid.UUID
	Role            UnitRole
	AuthenticatedAt time.Time
}

// MembershipView supplies the linkage needed for scope matching. The Gate
// owns no I/O; implementations typically read troop membership rows. Den and
// troop linkage are evaluated within the given troop; households are family
// groupings independent of any unit.
type MembershipView interface {
	SameHousehold(ctx context.Context, actor, target uuid.UUID) (bool, error)
	SameDen(ctx context.Context, troopID, actor, target uuid.UUID) (bool, error)
	SameTroop(ctx context.Context, troopID, actor, target uuid.UUID) (bool, error)
}

// Effect is the outcome class of an authorization decision. Unauthenticated
// and Forbidden are distinct on purpose: the first means "log in", the
// second means "request elevated access".
type Effect int

const (
	EffectUnauthenticated Effect = iota
	EffectForbidden
	EffectAllowed
)

func (e Effect) String() string {
	switch e {
	case EffectAllowed:
		return "allowed"
	case EffectForbidden:
		return "forbidden"
	default:
		return "unauthenticated"
	}
}

// Decision is the typed outcome of Authorize. Reason is safe to surface to
// clients: it names the denied action class but never the scope values that
// produced the denial.
type Decision struct {
	Effect Effect
	Reason string
	Scope  Scope // effective scope that produced the decision
	Bypass bool  // admin global override was applied
}

func (d Decision) Allowed() bool {
	return d.Effect == EffectAllowed
}

// Gate performs the request-time authorization checks: authentication, role
// level, resource scope, in that order, failing at the first check that does
// not pass. It is stateless and safe for concurrent use; its only side
// effect is best-effort audit notification.
type Gate struct {
	resolver *Resolver
	members  MembershipView
	recorder Recorder
	now      func() time.Time
}

func NewGate(resolver *Resolver, members MembershipView, recorder Recorder) *Gate {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Gate{
		resolver: resolver,
		members:  members,
		recorder: recorder,
		now:      time.Now,
	}
}

// Authorize decides whether actor may perform the privilege named by code
// against the resource owned by targetOwnerID. Overrides are the actor's
// own override rows, loaded by the caller before invoking the Gate.
//
// The admin role bypasses the resource-scope check entirely. That is the
// one deliberate exception to the scope lattice, made explicit here and
// recorded as a "bypass" audit event rather than left implicit in level
// comparison ordering.
func (g *Gate) Authorize(ctx context.Context, actor *AuthContext, requiredLevel int, code string, overrides []PrivilegeOverride, targetOwnerID uuid.UUID) Decision {
	if actor == nil || actor.UserID == uuid.Nil {
		return Decision{Effect: EffectUnauthenticated, Reason: "authentication required"}
	}

	if actor.Role.Level() < requiredLevel {
		return g.deny(ctx, actor, requiredLevel, code, ScopeNone, targetOwnerID, "insufficient role")
	}

	if actor.Role == RoleAdmin {
		g.record(ctx, actor, ActionBypass, requiredLevel, code, ScopeTroop, targetOwnerID)
		return Decision{Effect: EffectAllowed, Scope: ScopeTroop, Bypass: true}
	}

	scope, err := g.resolver.EffectiveScope(ctx, actor.Role, overrides, code)
	if err != nil {
		// Strict-mode override rejection or an unknown code: fail closed.
		return g.deny(ctx, actor, requiredLevel, code, ScopeNone, targetOwnerID, "not permitted")
	}

	ok := false
	switch scope {
	case ScopeNone:
		ok = false
	case ScopeSelf:
		ok = targetOwnerID == actor.UserID
	case ScopeHousehold:
		ok, err = g.members.SameHousehold(ctx, actor.UserID, targetOwnerID)
	case ScopeDen:
		ok, err = g.members.SameDen(ctx, actor.TroopID, actor.UserID, targetOwnerID)
	case ScopeTroop:
		ok, err = g.members.SameTroop(ctx, actor.TroopID, actor.UserID, targetOwnerID)
	}
	if err != nil || !ok {
		return g.deny(ctx, actor, requiredLevel, code, scope, targetOwnerID, "not permitted")
	}

	g.record(ctx, actor, ActionGrant, requiredLevel, code, scope, targetOwnerID)
	return Decision{Effect: EffectAllowed, Scope: scope}
}

func (g *Gate) deny(ctx context.Context, actor *AuthContext, requiredLevel int, code string, scope Scope, target uuid.UUID, reason string) Decision {
	g.record(ctx, actor, ActionDeny, requiredLevel, code, scope, target)
	return Decision{Effect: EffectForbidden, Reason: reason, Scope: scope}
}

func (g *Gate) record(ctx context.Context, actor *AuthContext, action AuditAction, requiredLevel int, code string, scope Scope, target uuid.UUID) {
	g.recorder.Record(ctx, AuditEvent{
		ActorID:       actor.UserID,
		TroopID:       actor.TroopID,
		Action:        action,
		PrivilegeCode: code,
		RequiredLevel: requiredLevel,
		ActualScope:   scope,
		TargetOwnerID: target,
		At:            g.now().UTC(),
	})
}
