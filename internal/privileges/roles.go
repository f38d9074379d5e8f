package privileges

// UnitRole is the single role a member holds within a troop.
type UnitRole string

const (
	RoleMember       UnitRole = "member"        // Scout / ordinary member
	RoleParent       UnitRole = "parent"        // Parent or guardian
	RoleAssistant    UnitRole = "assistant"     // Den-level helper
	RoleCookieLeader UnitRole = "cookie_leader" // Cookie-program lead
	RoleCoLeader     UnitRole = "co_leader"     // Assistant troop leader
	RoleTroopLeader  UnitRole = "troop_leader"  // Troop leader
	RoleAdmin        UnitRole = "admin"         // Council administrator
)

// Trust levels used by the coarse role-level gate.
const (
	LevelMember = 1
	LevelLeader = 2
	LevelAdmin  = 3
)

var roleLevels = map[UnitRole]int{
	RoleMember:       LevelMember,
	RoleParent:       LevelMember,
	RoleAssistant:    LevelLeader,
	RoleCookieLeader: LevelLeader,
	RoleCoLeader:     LevelLeader,
	RoleTroopLeader:  LevelLeader,
	RoleAdmin:        LevelAdmin,
}

// Roles returns the fixed role set in ascending trust order.
func Roles() []UnitRole {
	return []UnitRole{
		RoleMember,
		RoleParent,
		RoleAssistant,
		RoleCookieLeader,
		RoleCoLeader,
		RoleTroopLeader,
		RoleAdmin,
	}
}

// Known reports whether r is one of the fixed roles.
func (r UnitRole) Known() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the role's trust level. Unknown roles get the lowest level,
// so a bad role value can narrow access but never widen it.
func (r UnitRole) Level() int {
	if level, ok := roleLevels[r]; ok {
		return level
	}
	return LevelMember
}

// ParseRole validates a stored role string. Unknown values are returned
// as-is along with ok=false; lookups against the default table fall back to
// the member row for them.
func ParseRole(raw string) (UnitRole, bool) {
	role := UnitRole(raw)
	return role, role.Known()
}
