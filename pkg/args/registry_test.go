package args

import (
	"testing"

	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRegistry_DeclareDuplicate(t *testing.T) {
	r := NewRegistry("kobuki_description")
	require.NoError(t, r.Declare("gazebo", "false", "Enable gazebo plugins"))

	err := r.Declare("gazebo", "true", "again")
	require.ErrorIs(t, err, domain.ErrDuplicateArgument)

	var dup *domain.DuplicateArgumentError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "gazebo", dup.Name)
	assert.Equal(t, "kobuki_description", dup.Plan)

	// The first declaration wins.
	a, err := r.Lookup("gazebo")
	require.NoError(t, err)
	assert.Equal(t, "false", a.Default)
}

func TestRegistry_ResolveDefaultsAndOverrides(t *testing.T) {
	r := NewRegistry("p")
	require.NoError(t, r.Declare("lidar", "false", ""))
	require.NoError(t, r.Declare("namespace", "", ""))

	resolved, err := r.Resolve(map[string]string{"lidar": "true", "extra": "x"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"lidar": "true", "namespace": ""}, resolved.Map())
	assert.Equal(t, []string{"lidar", "namespace"}, resolved.Names())
	assert.Equal(t, []string{"extra"}, r.Unused(map[string]string{"lidar": "true", "extra": "x"}))

	_, err = resolved.Get("extra")
	assert.ErrorIs(t, err, domain.ErrUnknownArgument)
}

func TestRegistry_LookupUnknown(t *testing.T) {
	r := NewRegistry("p")
	_, err := r.Lookup("camera")
	assert.ErrorIs(t, err, domain.ErrUnknownArgument)
}

func TestRegistry_Choices(t *testing.T) {
	r := NewRegistry("p")
	require.NoError(t, r.DeclareArgument(domain.Argument{
		Name: "world", Default: "empty", Choices: []string{"empty", "house"},
	}))

	_, err := r.Resolve(map[string]string{"world": "moon"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	resolved, err := r.Resolve(map[string]string{"world": "house"})
	require.NoError(t, err)
	v, _ := resolved.Get("world")
	assert.Equal(t, "house", v)
}

func TestRegistry_RejectsMalformedNames(t *testing.T) {
	r := NewRegistry("p")
	assert.ErrorIs(t, r.Declare("artifacts.x", "", ""), domain.ErrInvalidArgument)
	assert.Empty(t, r.Declarations())
}

func TestRegistry_OverrideTakesPrecedence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z][a-z0-9_]{0,8}`), 1, 8, rapid.ID[string]).Draw(t, "names")

		r := NewRegistry("p")
		defaults := make(map[string]string)
		for _, n := range names {
			d := rapid.StringMatching(`[a-z0-9.]{0,6}`).Draw(t, "default_"+n)
			defaults[n] = d
			if err := r.Declare(n, d, ""); err != nil {
				t.Fatalf("declare %s: %v", n, err)
			}
		}

		overrides := make(map[string]string)
		for _, n := range names {
			if rapid.Bool().Draw(t, "override_"+n) {
				overrides[n] = rapid.StringMatching(`[a-z0-9.]{0,6}`).Draw(t, "value_"+n)
			}
		}

		resolved, err := r.Resolve(overrides)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		for _, n := range names {
			got, err := resolved.Get(n)
			if err != nil {
				t.Fatalf("get %s: %v", n, err)
			}
			want := defaults[n]
			if v, ok := overrides[n]; ok {
				want = v
			}
			if got != want {
				t.Fatalf("%s = %q, want %q", n, got, want)
			}
		}
	})
}
