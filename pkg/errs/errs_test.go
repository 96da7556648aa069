package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("order %d not found", 7)))
	assert.Equal(t, KindConflict, KindOf(Conflict("stale version")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := InvalidTransition("cannot move from Delivered")
	outer := fmt.Errorf("handling request: %w", inner)

	assert.Equal(t, KindInvalidTransition, KindOf(outer))
}

func TestUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable(cause, "storage failure")

	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "storage failure")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMessageFormatting(t *testing.T) {
	err := Forbidden("role %s may not set status %s", "customer", "Accepted")

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "role customer may not set status Accepted", e.Msg)
}
