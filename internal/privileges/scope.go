package privileges

import "fmt"

// Scope is the breadth of data a granted privilege exposes. It is a closed
// enumeration: values outside the five constants below are rejected at
// construction by ParseScope and reported invalid by Valid.
//
// The ordering of the constants is a breadth ranking used for display and
// table authoring only. Scope matching in the Gate is an explicit per-value
// decision, never a numeric comparison.
type Scope uint8

const (
	ScopeNone Scope = iota // no access
	ScopeSelf              // acting member's own records only
	ScopeHousehold         // members linked to the actor's household
	ScopeDen               // members of the actor's den
	ScopeTroop             // the entire troop
)

var scopeNames = map[Scope]string{
	ScopeNone:      "none",
	ScopeSelf:      "self",
	ScopeHousehold: "household",
	ScopeDen:       "den",
	ScopeTroop:     "troop",
}

func (s Scope) String() string {
	if name, ok := scopeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scope(%d)", uint8(s))
}

func (s Scope) Valid() bool {
	_, ok := scopeNames[s]
	return ok
}

// ParseScope accepts the canonical names and the single-letter forms used by
// the legacy roster exports ("T", "D", "H", "S", "none").
func ParseScope(raw string) (Scope, error) {
	switch raw {
	case "troop", "T":
		return ScopeTroop, nil
	case "den", "D":
		return ScopeDen, nil
	case "household", "H":
		return ScopeHousehold, nil
	case "self", "S":
		return ScopeSelf, nil
	case "none":
		return ScopeNone, nil
	}
	return ScopeNone, fmt.Errorf("invalid scope %q", raw)
}

// MarshalText makes Scope render as its canonical name in JSON responses.
func (s Scope) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid scope %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Scope) UnmarshalText(text []byte) error {
	parsed, err := ParseScope(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
