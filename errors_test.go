package quiver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiver-di/quiver"
)

func TestErrorCodeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "UNBREAKABLE_CYCLE", quiver.ErrCodeUnbreakableCycle.String())
	assert.Equal(t, "RESOURCE_ACQUISITION_FAILURE", quiver.ErrCodeResourceFailure.String())
	assert.Equal(t, "UNKNOWN(999)", quiver.ErrorCode(999).String())
}

func TestErrorRendering(t *testing.T) {
	t.Parallel()

	key := quiver.NewKey("pkg.DB", "")
	_, err := quiver.Compile([]quiver.Binding{
		quiver.Provide(key, nil, quiver.On(quiver.NewKey("pkg.Missing", ""))),
	}, quiver.Everything())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNRESOLVED_DEPENDENCY")
	assert.Contains(t, err.Error(), "pkg.DB")
	assert.Contains(t, err.Error(), "pkg.Missing")
	assert.Contains(t, err.Error(), "->")
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	key := quiver.NewKey("pkg.DB", "")

	plan, err := quiver.Compile([]quiver.Binding{
		quiver.Provide(key, func(ctx context.Context, deps quiver.Deps) (any, error) {
			return nil, cause
		}),
	}, quiver.Everything())
	require.NoError(t, err)

	_, err = quiver.Produce(context.Background(), plan)
	require.Error(t, err)
	assert.True(t, quiver.IsProviderFailure(err))
	assert.ErrorIs(t, err, cause)

	var typed *quiver.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, quiver.ErrCodeProviderFailure, typed.Code)
	assert.Equal(t, key, typed.Key)
}

// TestErrorIsMatchesByCode verifies errors.Is treats two engine errors with
// the same code as equivalent.
func TestErrorIsMatchesByCode(t *testing.T) {
	t.Parallel()

	missing := quiver.NewKey("pkg.Gone", "")
	_, err := quiver.Compile(nil, quiver.RootsOf(missing))
	require.Error(t, err)

	assert.True(t, quiver.IsMissingBinding(err))
	assert.False(t, quiver.IsUnresolvedDependency(err))
	assert.False(t, quiver.IsProviderFailure(err))
}
