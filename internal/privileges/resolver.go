package privileges

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownOverride is returned in strict mode when an override references
// a privilege code that is not in the catalog.
var ErrUnknownOverride = errors.New("override references unknown privilege code")

// PrivilegeOverride is an administrator-set exception to a role default for
// one member and one privilege. At most one override per (member, code) is
// meaningful; when duplicates are supplied the last one wins.
type PrivilegeOverride struct {
	MemberID      uuid.UUID `json:"member_id"`
	PrivilegeCode string    `json:"privilege_code"`
	Scope         Scope     `json:"scope"`
}

// EffectivePrivilege is the override-aware view of one catalog entry for one
// member. It is computed fresh on every resolution and never cached.
type EffectivePrivilege struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	Future         bool   `json:"future"`
	DefaultScope   Scope  `json:"default_scope"`
	EffectiveScope Scope  `json:"effective_scope"`
	HasOverride    bool   `json:"has_override"`
}

// OverridePolicy controls how the resolver treats overrides referencing
// unknown privilege codes. Lenient mode ignores them (they are typically
// stale rows surviving a catalog change) and reports an anomaly event;
// strict mode fails the resolution.
type OverridePolicy int

const (
	OverrideLenient OverridePolicy = iota
	OverrideStrict
)

// Resolver combines the role default table with per-member overrides into
// effective privileges. It is stateless apart from its immutable
// configuration and safe for concurrent use.
type Resolver struct {
	defaults *RoleDefaults
	policy   OverridePolicy
	recorder Recorder
}

type ResolverOption func(*Resolver)

// WithOverridePolicy selects strict or lenient handling of unknown override
// codes.
func WithOverridePolicy(policy OverridePolicy) ResolverOption {
	return func(r *Resolver) { r.policy = policy }
}

// WithRecorder sets the audit collaborator notified of override anomalies.
func WithRecorder(rec Recorder) ResolverOption {
	return func(r *Resolver) { r.recorder = rec }
}

func NewResolver(defaults *RoleDefaults, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		defaults: defaults,
		policy:   OverrideLenient,
		recorder: NopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns one EffectivePrivilege per catalog entry, in catalog
// order. An override equal to the role default is still reported with
// HasOverride=true so administrators can tell "explicitly set" from
// "inherited".
func (r *Resolver) Resolve(ctx context.Context, role UnitRole, overrides []PrivilegeOverride) ([]EffectivePrivilege, error) {
	byCode, err := r.indexOverrides(ctx, overrides)
	if err != nil {
		return nil, err
	}

	out := make([]EffectivePrivilege, 0, len(catalog))
	for _, def := range catalog {
		def := r.effective(role, def, byCode)
		out = append(out, def)
	}
	return out, nil
}

// EffectiveScope is the single-privilege fast path. It agrees exactly with
// the corresponding entry of Resolve for the same inputs.
func (r *Resolver) EffectiveScope(ctx context.Context, role UnitRole, overrides []PrivilegeOverride, code string) (Scope, error) {
	if !Known(code) {
		return ScopeNone, fmt.Errorf("effective scope: unknown privilege code %q", code)
	}
	byCode, err := r.indexOverrides(ctx, overrides)
	if err != nil {
		return ScopeNone, err
	}
	def := catalog[catalogByCode[code]]
	return r.effective(role, def, byCode).EffectiveScope, nil
}

func (r *Resolver) effective(role UnitRole, def PrivilegeDefinition, byCode map[string]Scope) EffectivePrivilege {
	defaultScope := r.defaults.DefaultScope(role, def.Code)
	effective := EffectivePrivilege{
		Code:           def.Code,
		Name:           def.Name,
		Category:       def.Category,
		Future:         def.Future,
		DefaultScope:   defaultScope,
		EffectiveScope: defaultScope,
	}
	if scope, ok := byCode[def.Code]; ok {
		effective.EffectiveScope = scope
		effective.HasOverride = true
	}
	return effective
}

// indexOverrides builds the code -> scope map in a single pass; later
// entries win over earlier ones for the same code. Unknown codes are either
// rejected (strict) or reported as anomalies and dropped (lenient).
func (r *Resolver) indexOverrides(ctx context.Context, overrides []PrivilegeOverride) (map[string]Scope, error) {
	if len(overrides) == 0 {
		return nil, nil
	}
	byCode := make(map[string]Scope, len(overrides))
	for _, o := range overrides {
		if !Known(o.PrivilegeCode) {
			if r.policy == OverrideStrict {
				return nil, fmt.Errorf("%w: %q", ErrUnknownOverride, o.PrivilegeCode)
			}
			r.recorder.Record(ctx, AuditEvent{
				ActorID:       o.MemberID,
				Action:        ActionAnomaly,
				PrivilegeCode: o.PrivilegeCode,
				ActualScope:   o.Scope,
				At:            time.Now().UTC(),
			})
			continue
		}
		byCode[o.PrivilegeCode] = o.Scope
	}
	return byCode, nil
}
