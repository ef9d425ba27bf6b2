package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewExternalError(ErrCodeGemini, "Gemini", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, err.IsExternal())
	assert.False(t, err.IsInternal())
	assert.Equal(t, "Gemini request failed", err.Message)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestAsAppErrorThroughWrapping(t *testing.T) {
	inner := NewUserNotFoundError(5)
	wrapped := fmt.Errorf("load: %w", inner)

	appErr, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.True(t, appErr.IsNotFound())
	assert.True(t, HasCode(wrapped, ErrCodeUserNotFound))

	_, ok = AsAppError(stderrors.New("plain"))
	assert.False(t, ok)
	_, ok = AsAppError(nil)
	assert.False(t, ok)
}

func TestClassification(t *testing.T) {
	assert.True(t, New(ErrCodeInvalidPreference, "bad").IsValidation())
	assert.True(t, NewForbiddenError("signature").IsUnauthorized())
	assert.True(t, NewTransactionError("delete", stderrors.New("x")).IsInternal())
	assert.Equal(t, "delete_data", NewInvalidTransitionError("menu1", "delete_data").Details["event"])
}
