package effects_test

import (
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_store/effects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnimated(t *testing.T) {
	eff, ok := effects.Animated(250*time.Millisecond, "done").(effects.AfterDelayEffect[string])
	require.True(t, ok)

	assert.Equal(t, 250*time.Millisecond, eff.Delay)
	assert.Equal(t, []string{"done"}, collect(t, eff.Execute))
}

func TestTransition_SharesID(t *testing.T) {
	tr := effects.NewTransition[string]("modal", 200*time.Millisecond, 100*time.Millisecond)

	present, ok := tr.Present("presented").(effects.DebouncedEffect[string])
	require.True(t, ok)
	assert.Equal(t, "modal", present.ID)
	assert.Equal(t, 200*time.Millisecond, present.Delay)
	assert.Equal(t, []string{"presented"}, collect(t, present.Execute))

	dismiss, ok := tr.Dismiss("dismissed").(effects.DebouncedEffect[string])
	require.True(t, ok)
	assert.Equal(t, "modal", dismiss.ID)
	assert.Equal(t, 100*time.Millisecond, dismiss.Delay)

	cancel, ok := tr.Cancel().(effects.CancelEffect[string])
	require.True(t, ok)
	assert.Equal(t, "modal", cancel.ID)
}
