package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsKind(t *testing.T) {
	err := NewError(ErrConflict, "User with email or username already exists")

	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, "User with email or username already exists", err.Error())
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapError(ErrorInternal, "Something went wrong while registering the user", cause)

	assert.ErrorIs(t, err, ErrorInternal)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestError_SurvivesFmtWrap(t *testing.T) {
	err := fmt.Errorf("register: %w", NewError(ErrUpload, "Avatar file is required"))

	assert.ErrorIs(t, err, ErrUpload)
	assert.Equal(t, "Avatar file is required", MessageOf(err, "fallback"))
}

func TestMessageOf_Fallback(t *testing.T) {
	assert.Equal(t, "fallback", MessageOf(errors.New("raw"), "fallback"))
	assert.Equal(t, "fallback", MessageOf(NewError(ErrValidation, ""), "fallback"))
}
