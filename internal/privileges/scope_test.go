package privileges_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/troopvault/tv-backend/internal/privileges"
)

func TestParseScope(t *testing.T) {
	t.Run("canonical names", func(t *testing.T) {
		for _, name := range []string{"troop", "den", "household", "self", "none"} {
			scope, err := privileges.ParseScope(name)
			require.NoError(t, err)
			assert.Equal(t, name, scope.String())
		}
	})

	t.Run("legacy letters", func(t *testing.T) {
		cases := map[string]privileges.Scope{
			"T": privileges.ScopeTroop,
			"D": privileges.ScopeDen,
			"H": privileges.ScopeHousehold,
			"S": privileges.ScopeSelf,
		}
		for raw, want := range cases {
			scope, err := privileges.ParseScope(raw)
			require.NoError(t, err)
			assert.Equal(t, want, scope)
		}
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		for _, raw := range []string{"", "global", "Troop", "t", "NONE"} {
			_, err := privileges.ParseScope(raw)
			assert.Error(t, err, "expected %q to be rejected", raw)
		}
	})
}

func TestScopeTextRoundTrip(t *testing.T) {
	for _, scope := range []privileges.Scope{
		privileges.ScopeNone,
		privileges.ScopeSelf,
		privileges.ScopeHousehold,
		privileges.ScopeDen,
		privileges.ScopeTroop,
	} {
		text, err := scope.MarshalText()
		require.NoError(t, err)

		var back privileges.Scope
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, scope, back)
	}
}

func TestScopeValid(t *testing.T) {
	assert.True(t, privileges.ScopeNone.Valid())
	assert.True(t, privileges.ScopeTroop.Valid())
	assert.False(t, privileges.Scope(42).Valid())
}
