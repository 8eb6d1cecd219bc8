package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "field is required")
	require.Error(t, err)
	assert.Equal(t, "field is required", err.Error())
	assert.True(t, HasCode(err, CodeValidation))
	assert.False(t, HasCode(err, CodeNotFound))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load report")

	assert.True(t, errors.Is(err, cause), "wrapped cause should be reachable via errors.Is")
	assert.Equal(t, "failed to load report: connection refused", err.Error())
	assert.True(t, HasCode(err, CodeInternal))
}

func TestWrap_NilCause(t *testing.T) {
	err := Wrap(nil, CodeConflict, "already exists")
	require.Error(t, err)
	assert.Equal(t, "already exists", err.Error())
	assert.True(t, HasCode(err, CodeConflict))
}

func TestHasCode_WalksChain(t *testing.T) {
	inner := New(CodeNotFound, "report not found")
	outer := Wrap(inner, CodeInternal, "load failed")

	assert.True(t, HasCode(outer, CodeInternal))
	assert.True(t, HasCode(outer, CodeNotFound), "inner code should be visible through the chain")
	assert.False(t, HasCode(outer, CodeConflict))
}

func TestHasCode_PlainError(t *testing.T) {
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestHasCode_FmtWrapped(t *testing.T) {
	inner := New(CodeConflict, "duplicate upload")
	outer := fmt.Errorf("submit: %w", inner)

	assert.True(t, HasCode(outer, CodeConflict), "code should survive fmt.Errorf wrapping")
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(New(CodeValidation, "bad")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))

	inner := New(CodeNotFound, "missing")
	outer := Wrap(inner, CodeInternal, "load")
	assert.Equal(t, CodeInternal, CodeOf(outer), "outermost code wins")
}

func TestIs_AliasesHasCode(t *testing.T) {
	err := New(CodeUnauthorized, "missing token")
	assert.True(t, Is(err, CodeUnauthorized))
	assert.False(t, Is(err, CodeForbidden))
}

func TestErrorIs_MatchesByCodeAndMessage(t *testing.T) {
	err := New(CodeUnauthorized, "invalid token")

	require.ErrorIs(t, err, New(CodeUnauthorized, "invalid token"))
	assert.NotErrorIs(t, err, New(CodeUnauthorized, "token has expired"))
	assert.NotErrorIs(t, err, New(CodeForbidden, "invalid token"))

	wrapped := fmt.Errorf("request: %w", err)
	require.ErrorIs(t, wrapped, New(CodeUnauthorized, "invalid token"))
}
