package deps_test

import (
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_store/deps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBag_LookupFallsBackToParent(t *testing.T) {
	root := deps.NewBag(map[string]any{"api": "prod", "retries": 3})
	child := root.With(map[string]any{"api": "stub"})

	api, err := deps.Get[string](child, "api")
	require.NoError(t, err)
	assert.Equal(t, "stub", api)

	assert.Equal(t, 3, deps.MustGet[int](child, "retries"))

	api, err = deps.Get[string](root, "api")
	require.NoError(t, err)
	assert.Equal(t, "prod", api)
}

func TestBag_Errors(t *testing.T) {
	b := deps.NewBag(map[string]any{"retries": 3})

	_, err := deps.Get[int](b, "missing")
	assert.ErrorIs(t, err, deps.ErrNoSuchDependency)

	_, err = deps.Get[string](b, "retries")
	assert.ErrorIs(t, err, deps.ErrDependencyType)
	assert.EqualError(t, err, "dependency has unexpected type: retries holds int, want string")

	_, err = deps.Get[deps.Clock](b, "retries")
	assert.ErrorContains(t, err, "want deps.Clock")

	_, ok := deps.Find[string](b, "retries")
	assert.False(t, ok)

	assert.PanicsWithError(t, "no such dependency: missing", func() { deps.MustGet[int](b, "missing") })
}

func TestBag_CopiesValues(t *testing.T) {
	values := map[string]any{"k": 1}
	b := deps.NewBag(values)
	values["k"] = 2

	assert.Equal(t, 1, deps.MustGet[int](b, "k"))
}

func TestClockOf(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b := deps.NewBag(map[string]any{
		deps.ClockKey: deps.Clock(deps.ClockFunc(func() time.Time { return fixed })),
	})

	assert.Equal(t, fixed, deps.ClockOf(b).Now())
	assert.IsType(t, deps.SystemClock{}, deps.ClockOf(deps.NewBag(nil)))
}
