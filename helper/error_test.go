package helper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	t.Run("Wraps error with operation", func(t *testing.T) {
		base := errors.New("connection refused")
		err := NewError("ping database", base)

		require.Error(t, err)
		assert.Equal(t, "ping database: connection refused", err.Error())
		assert.ErrorIs(t, err, base, "Expected wrapped error to be reachable with errors.Is")
	})

	t.Run("Nil error stays nil", func(t *testing.T) {
		assert.NoError(t, NewError("noop", nil))
	})

	t.Run("Nested errors keep the chain", func(t *testing.T) {
		base := errors.New("timeout")
		err := NewError("outer", fmt.Errorf("middle: %w", NewError("inner", base)))

		assert.ErrorIs(t, err, base)

		var wrapped *Error
		require.ErrorAs(t, err, &wrapped)
		assert.Equal(t, "outer", wrapped.Operation)
	})
}
