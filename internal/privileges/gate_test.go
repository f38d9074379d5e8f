package privileges_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/troopvault/tv-backend/internal/privileges"
)

// fakeMembers is an in-memory MembershipView: households link users
// directly, den and troop linkage is tracked per troop.
type fakeMembers struct {
	households map[uuid.UUID]uuid.UUID               // user -> household
	dens       map[uuid.UUID]map[uuid.UUID]uuid.UUID // troop -> user -> den
	troops     map[uuid.UUID]map[uuid.UUID]bool      // troop -> members
	err        error
}

func (f *fakeMembers) SameHousehold(_ context.Context, a, b uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	ha, ok1 := f.households[a]
	hb, ok2 := f.households[b]
	return ok1 && ok2 && ha == hb, nil
}

func (f *fakeMembers) SameDen(_ context.Context, troopID, a, b uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	da, ok1 := f.dens[troopID][a]
	db, ok2 := f.dens[troopID][b]
	return ok1 && ok2 && da == db, nil
}

func (f *fakeMembers) SameTroop(_ context.Context, troopID, a, b uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.troops[troopID][a] && f.troops[troopID][b], nil
}

type gateFixture struct {
	gate     *privileges.Gate
	recorder *captureRecorder
	members  *fakeMembers

	troopID uuid.UUID
	parent  uuid.UUID
	child   uuid.UUID
	other   uuid.UUID
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	troopID := uuid.New()
	parent := uuid.New()
	child := uuid.New()
	other := uuid.New()
	household := uuid.New()
	den := uuid.New()

	members := &fakeMembers{
		households: map[uuid.UUID]uuid.UUID{parent: household, child: household},
		dens: map[uuid.UUID]map[uuid.UUID]uuid.UUID{
			troopID: {parent: den, child: den, other: den},
		},
		troops: map[uuid.UUID]map[uuid.UUID]bool{
			troopID: {parent: true, child: true, other: true},
		},
	}

	defaults, err := privileges.NewRoleDefaults()
	require.NoError(t, err)

	recorder := &captureRecorder{}
	resolver := privileges.NewResolver(defaults, privileges.WithRecorder(recorder))
	return &gateFixture{
		gate:     privileges.NewGate(resolver, members, recorder),
		recorder: recorder,
		members:  members,
		troopID:  troopID,
		parent:   parent,
		child:    child,
		other:    other,
	}
}

func (f *gateFixture) actorWith(id uuid.UUID, role privileges.UnitRole) *privileges.AuthContext {
	return &privileges.AuthContext{UserID: id, TroopID: f.troopID, Role: role, AuthenticatedAt: time.Now()}
}

func TestGateUnauthenticatedDominates(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t)

	t.Run("nil actor", func(t *testing.T) {
		d := f.gate.Authorize(ctx, nil, privileges.LevelMember, privileges.ViewEvents, nil, f.child)
		assert.Equal(t, privileges.EffectUnauthenticated, d.Effect)
		assert.False(t, d.Allowed())
	})

	t.Run("zero user id", func(t *testing.T) {
		actor := f.actorWith(uuid.Nil, privileges.RoleAdmin)
		d := f.gate.Authorize(ctx, actor, privileges.LevelMember, privileges.ViewEvents, nil, f.child)
		assert.Equal(t, privileges.EffectUnauthenticated, d.Effect)
	})
}

func TestGateRoleLevel(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t)

	t.Run("member blocked from leader endpoints", func(t *testing.T) {
		actor := f.actorWith(f.child, privileges.RoleMember)
		d := f.gate.Authorize(ctx, actor, privileges.LevelLeader, privileges.ViewSales, nil, f.child)
		assert.Equal(t, privileges.EffectForbidden, d.Effect)
		assert.NotEmpty(t, d.Reason)
	})

	t.Run("leader passes leader gate", func(t *testing.T) {
		actor := f.actorWith(f.other, privileges.RoleTroopLeader)
		d := f.gate.Authorize(ctx, actor, privileges.LevelLeader, privileges.ViewSales, nil, f.child)
		assert.True(t, d.Allowed())
	})
}

func TestGateAdminBypass(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t)

	admin := f.actorWith(uuid.New(), privileges.RoleAdmin)

	// Admin is not linked to any household, den, or even the troop, and is
	// still allowed against an arbitrary target.
	d := f.gate.Authorize(ctx, admin, privileges.LevelMember, privileges.ViewScoutProfiles, nil, f.other)
	require.True(t, d.Allowed())
	assert.True(t, d.Bypass)

	bypasses := f.recorder.byAction(privileges.ActionBypass)
	require.Len(t, bypasses, 1)
	assert.Equal(t, admin.UserID, bypasses[0].ActorID)
	assert.Equal(t, f.other, bypasses[0].TargetOwnerID)
	assert.Equal(t, privileges.ViewScoutProfiles, bypasses[0].PrivilegeCode)
}

func TestGateHouseholdScope(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t)

	parent := f.actorWith(f.parent, privileges.RoleParent)

	t.Run("own linked child allowed", func(t *testing.T) {
		d := f.gate.Authorize(ctx, parent, privileges.LevelMember, privileges.RecordSales, nil, f.child)
		assert.True(t, d.Allowed())
		assert.Equal(t, privileges.ScopeHousehold, d.Scope)
	})

	t.Run("unrelated member forbidden", func(t *testing.T) {
		d := f.gate.Authorize(ctx, parent, privileges.LevelMember, privileges.RecordSales, nil, f.other)
		assert.Equal(t, privileges.EffectForbidden, d.Effect)
	})
}

func TestGateSelfScope(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t)

	scout := f.actorWith(f.child, privileges.RoleMember)

	t.Run("own records allowed", func(t *testing.T) {
		d := f.gate.Authorize(ctx, scout, privileges.LevelMember, privileges.RecordSales, nil, f.child)
		assert.True(t, d.Allowed())
		assert.Equal(t, privileges.ScopeSelf, d.Scope)
	})

	t.Run("someone else's records forbidden", func(t *testing.T) {
		d := f.gate.Authorize(ctx, scout, privileges.LevelMember, privileges.RecordSales, nil, f.other)
		assert.Equal(t, privileges.EffectForbidden, d.Effect)
	})
}

func TestGateNoneScopeNeverPasses(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t)

	scout := f.actorWith(f.child, privileges.RoleMember)

	// member default for manage_members is none; even the actor's own id is
	// denied.
	for _, target := range []uuid.UUID{f.child, f.parent, f.other} {
		d := f.gate.Authorize(ctx, scout, privileges.LevelMember, privileges.ManageMembers, nil, target)
		assert.Equal(t, privileges.EffectForbidden, d.Effect, "target=%s", target)
	}
}

func TestGateOverrideWidensScope(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t)

	scout := f.actorWith(f.child, privileges.RoleMember)
	overrides := []privileges.PrivilegeOverride{
		{MemberID: f.child, PrivilegeCode: privileges.ExportData, Scope: privileges.ScopeTroop},
	}

	d := f.gate.Authorize(ctx, scout, privileges.LevelMember, privileges.ExportData, overrides, f.other)
	assert.True(t, d.Allowed())
	assert.Equal(t, privileges.ScopeTroop, d.Scope)
}

func TestGateScopeIsPerTroop(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t)

	// The leader and a stranger share a different troop and a den inside
	// it. The leader's authority comes from f.troopID, where the stranger
	// has no membership, so troop- and den-wide privileges must not reach
	// them.
	otherTroop := uuid.New()
	sharedDen := uuid.New()
	stranger := uuid.New()
	f.members.troops[otherTroop] = map[uuid.UUID]bool{f.parent: true, stranger: true}
	f.members.dens[otherTroop] = map[uuid.UUID]uuid.UUID{f.parent: sharedDen, stranger: sharedDen}

	leader := f.actorWith(f.parent, privileges.RoleTroopLeader)

	t.Run("troop scope", func(t *testing.T) {
		d := f.gate.Authorize(ctx, leader, privileges.LevelMember, privileges.RecordSales, nil, stranger)
		assert.Equal(t, privileges.EffectForbidden, d.Effect)
	})

	t.Run("den scope", func(t *testing.T) {
		overrides := []privileges.PrivilegeOverride{
			{MemberID: f.parent, PrivilegeCode: privileges.RecordSales, Scope: privileges.ScopeDen},
		}
		d := f.gate.Authorize(ctx, leader, privileges.LevelMember, privileges.RecordSales, overrides, stranger)
		assert.Equal(t, privileges.EffectForbidden, d.Effect)
	})

	t.Run("same checks pass in the shared troop", func(t *testing.T) {
		inOther := &privileges.AuthContext{UserID: f.parent, TroopID: otherTroop, Role: privileges.RoleTroopLeader}
		d := f.gate.Authorize(ctx, inOther, privileges.LevelMember, privileges.RecordSales, nil, stranger)
		assert.True(t, d.Allowed())
	})
}

func TestGateMembershipErrorFailsClosed(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t)
	f.members.err = errors.New("linkage lookup failed")

	parent := f.actorWith(f.parent, privileges.RoleParent)
	d := f.gate.Authorize(ctx, parent, privileges.LevelMember, privileges.RecordSales, nil, f.child)
	assert.Equal(t, privileges.EffectForbidden, d.Effect)
}

func TestGateDenialsAreAudited(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t)

	parent := f.actorWith(f.parent, privileges.RoleParent)
	d := f.gate.Authorize(ctx, parent, privileges.LevelMember, privileges.RecordSales, nil, f.other)
	require.Equal(t, privileges.EffectForbidden, d.Effect)

	denies := f.recorder.byAction(privileges.ActionDeny)
	require.Len(t, denies, 1)
	assert.Equal(t, f.parent, denies[0].ActorID)
	assert.Equal(t, f.other, denies[0].TargetOwnerID)
	assert.Equal(t, privileges.RecordSales, denies[0].PrivilegeCode)
	assert.Equal(t, privileges.ScopeHousehold, denies[0].ActualScope)
	assert.Equal(t, privileges.LevelMember, denies[0].RequiredLevel)
	assert.False(t, denies[0].At.IsZero())
}

func TestGateReasonDoesNotLeakScope(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t)

	parent := f.actorWith(f.parent, privileges.RoleParent)
	d := f.gate.Authorize(ctx, parent, privileges.LevelMember, privileges.RecordSales, nil, f.other)
	require.Equal(t, privileges.EffectForbidden, d.Effect)
	assert.NotContains(t, d.Reason, "household")
	assert.NotContains(t, d.Reason, "scope")
}
